package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/novatax/internal/common"
	"github.com/Veraticus/novatax/internal/llm"
	"github.com/Veraticus/novatax/internal/model"
	"github.com/Veraticus/novatax/internal/tax"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable viper reads.
const EnvPrefix = "NOVATAX"

// Config is the typed view of viper settings.
type Config struct {
	Database DatabaseConfig
	Remote   RemoteConfig
	LLM      LLMConfig
	Tax      TaxConfig
	Server   ServerConfig
	Logging  LoggingConfig
	UserID   string
}

// DatabaseConfig locates the local SQLite cache.
type DatabaseConfig struct {
	Path string
}

// RemoteConfig points at the hosted Postgres datastore. An empty URL runs
// local-only.
type RemoteConfig struct {
	URL string
}

// LLMConfig selects and tunes the AI collaborator.
type LLMConfig struct {
	Provider    string
	APIKey      string
	Model       string
	MaxRetries  int
	RateLimit   int
	Temperature float64
	Timeout     time.Duration
}

// TaxConfig configures rate resolution and prediction.
type TaxConfig struct {
	DefaultJurisdiction string
	PredictionTimeout   time.Duration
	Overrides           []model.JurisdictionTaxProfile
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadDotEnv loads variables from a .env file in the working directory, if
// present. Variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "novatax", "novatax.db"))
	v.SetDefault("remote.url", "")
	v.SetDefault("llm.provider", llm.ProviderGemini)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.rate_limit", 60)
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("tax.default_jurisdiction", tax.DefaultJurisdiction)
	v.SetDefault("tax.prediction_timeout", 10*time.Second)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("user", "local")
}

// Bind sets up environment lookup on v so that NOVATAX_LLM_API_KEY maps to
// llm.api_key.
func Bind(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads a Config from v and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Database: DatabaseConfig{Path: ExpandPath(v.GetString("database.path"))},
		Remote:   RemoteConfig{URL: v.GetString("remote.url")},
		LLM: LLMConfig{
			Provider:    strings.ToLower(v.GetString("llm.provider")),
			APIKey:      v.GetString("llm.api_key"),
			Model:       v.GetString("llm.model"),
			MaxRetries:  v.GetInt("llm.max_retries"),
			RateLimit:   v.GetInt("llm.rate_limit"),
			Temperature: v.GetFloat64("llm.temperature"),
			Timeout:     v.GetDuration("llm.timeout"),
		},
		Tax: TaxConfig{
			DefaultJurisdiction: v.GetString("tax.default_jurisdiction"),
			PredictionTimeout:   v.GetDuration("tax.prediction_timeout"),
		},
		Server:  ServerConfig{Addr: v.GetString("server.addr")},
		Logging: LoggingConfig{Level: v.GetString("logging.level"), Format: v.GetString("logging.format")},
		UserID:  v.GetString("user"),
	}

	if err := v.UnmarshalKey("tax.overrides", &cfg.Tax.Overrides); err != nil {
		return Config{}, fmt.Errorf("%w: tax.overrides: %w", common.ErrInvalidConfig, err)
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = apiKeyFromEnv(cfg.LLM.Provider)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	switch c.LLM.Provider {
	case "", llm.ProviderGemini, llm.ProviderOpenAI, llm.ProviderAnthropic:
	default:
		return fmt.Errorf("%w: unsupported llm.provider %q", common.ErrInvalidConfig, c.LLM.Provider)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	if c.UserID == "" {
		return fmt.Errorf("%w: user", common.ErrMissingConfig)
	}
	if c.Tax.PredictionTimeout < 0 {
		return fmt.Errorf("%w: tax.prediction_timeout must not be negative", common.ErrInvalidConfig)
	}
	return nil
}

// LLMClientConfig converts to the collaborator's configuration.
func (c Config) LLMClientConfig() llm.Config {
	return llm.Config{
		Provider:    c.LLM.Provider,
		APIKey:      c.LLM.APIKey,
		Model:       c.LLM.Model,
		MaxRetries:  c.LLM.MaxRetries,
		RateLimit:   c.LLM.RateLimit,
		Temperature: c.LLM.Temperature,
		Timeout:     c.LLM.Timeout,
	}
}

// Resolver builds the tax rate resolver with configured overrides.
func (c Config) Resolver() (*tax.Resolver, error) {
	r, err := tax.NewResolver(c.Tax.DefaultJurisdiction, c.Tax.Overrides...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	return r, nil
}

// PredictorConfig converts to the tax predictor's configuration.
func (c Config) PredictorConfig() tax.PredictorConfig {
	return tax.PredictorConfig{Timeout: c.Tax.PredictionTimeout}
}

// apiKeyFromEnv falls back to each provider's conventional variable.
func apiKeyFromEnv(provider string) string {
	switch provider {
	case llm.ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case llm.ProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	default:
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			return key
		}
		return os.Getenv("GOOGLE_API_KEY")
	}
}

// ExpandPath resolves a database or export path from flags and config. A
// leading "~" becomes the home directory (left as is when there is none),
// and $VAR references are substituted afterwards.
func ExpandPath(path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && rest[0] != '/' && rest[0] != filepath.Separator) {
		return os.ExpandEnv(path)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return os.ExpandEnv(path)
	}
	return os.ExpandEnv(filepath.Join(home, rest))
}
