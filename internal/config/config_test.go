package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/novatax/internal/common"
	"github.com/Veraticus/novatax/internal/model"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	Bind(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(cfg.Database.Path, filepath.Join(".local", "share", "novatax", "novatax.db")))
	assert.Empty(t, cfg.Remote.URL)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
	assert.Equal(t, "United States", cfg.Tax.DefaultJurisdiction)
	assert.Equal(t, 10*time.Second, cfg.Tax.PredictionTimeout)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "local", cfg.UserID)
	assert.Empty(t, cfg.Tax.Overrides)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("NOVATAX_LLM_PROVIDER", "OpenAI")
	t.Setenv("NOVATAX_REMOTE_URL", "postgres://localhost/novatax")
	t.Setenv("NOVATAX_TAX_PREDICTION_TIMEOUT", "3s")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "postgres://localhost/novatax", cfg.Remote.URL)
	assert.Equal(t, 3*time.Second, cfg.Tax.PredictionTimeout)
	assert.Equal(t, 3*time.Second, cfg.PredictorConfig().Timeout)
	assert.Equal(t, "sk-test", cfg.LLMClientConfig().APIKey)
}

func TestLoad_ExplicitKeyWins(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")

	v := newViper()
	v.Set("llm.api_key", "from-config")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "from-config", cfg.LLM.APIKey)
}

func TestLoad_TaxOverrides(t *testing.T) {
	v := newViper()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
tax:
  default_jurisdiction: Saudi Arabia
  overrides:
    - jurisdiction: Atlantis
      standard: 0.12
      reduced: 0.04
`)))

	cfg, err := Load(v)
	require.NoError(t, err)
	require.Len(t, cfg.Tax.Overrides, 1)
	assert.Equal(t, model.JurisdictionTaxProfile{Jurisdiction: "Atlantis", StandardRate: 0.12, ReducedRate: 0.04}, cfg.Tax.Overrides[0])

	r, err := cfg.Resolver()
	require.NoError(t, err)
	assert.InDelta(t, 0.04, r.ResolveRate("Atlantis", model.CategoryFood), 1e-9)
	assert.InDelta(t, 0.15, r.ResolveRate("Nowhere", model.CategoryGoods), 1e-9)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		set     map[string]any
		wantErr error
	}{
		{name: "unknown provider", set: map[string]any{"llm.provider": "mystery"}, wantErr: common.ErrInvalidConfig},
		{name: "empty database path", set: map[string]any{"database.path": ""}, wantErr: common.ErrMissingConfig},
		{name: "empty user", set: map[string]any{"user": ""}, wantErr: common.ErrMissingConfig},
		{name: "negative timeout", set: map[string]any{"tax.prediction_timeout": "-1s"}, wantErr: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := Load(v)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResolver_InvalidOverride(t *testing.T) {
	cfg := Config{Tax: TaxConfig{Overrides: []model.JurisdictionTaxProfile{{Jurisdiction: "Bad", StandardRate: 2}}}}

	_, err := cfg.Resolver()
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("NOVATAX_DOTENV_MARKER=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("NOVATAX_DOTENV_MARKER") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("NOVATAX_DOTENV_MARKER"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("NOVATAX_DATA_ROOT", "/srv/data")

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "~", want: home},
		{in: "~/novatax.db", want: filepath.Join(home, "novatax.db")},
		{in: "$NOVATAX_DATA_ROOT/novatax.db", want: "/srv/data/novatax.db"},
		{in: "/abs/path.db", want: "/abs/path.db"},
		{in: "~other/novatax.db", want: "~other/novatax.db"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}
