package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/novatax/internal/common"
	"github.com/Veraticus/novatax/internal/config"
	"github.com/Veraticus/novatax/internal/currency"
	"github.com/Veraticus/novatax/internal/llm"
	"github.com/Veraticus/novatax/internal/model"
	"github.com/Veraticus/novatax/internal/storage"
	"github.com/Veraticus/novatax/internal/tax"
	"github.com/spf13/viper"
)

// app bundles what most commands need: config, the repository and the rate
// table.
type app struct {
	repo     *storage.Repository
	remote   *storage.PostgresStore
	resolver *tax.Resolver
	logger   *slog.Logger
	cfg      config.Config
}

// openApp loads configuration and opens the local cache, plus the hosted
// datastore when remote.url is set. An unreachable remote is logged and the
// app runs local-only.
func openApp(ctx context.Context) (*app, func(), error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}

	resolver, err := cfg.Resolver()
	if err != nil {
		return nil, nil, err
	}

	local, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := local.Migrate(ctx); err != nil {
		_ = local.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger := slog.Default()
	a := &app{cfg: cfg, resolver: resolver, logger: logger}

	var remote storage.RemoteStore
	if cfg.Remote.URL != "" {
		pg, err := storage.ConnectPostgres(ctx, cfg.Remote.URL)
		switch {
		case err != nil:
			logger.Warn("Hosted datastore unreachable, running local-only", "error", err)
		default:
			if err := pg.Migrate(ctx); err != nil {
				logger.Warn("Hosted datastore migration failed, running local-only", "error", err)
				pg.Close()
			} else {
				a.remote = pg
				remote = pg
			}
		}
	}

	a.repo = storage.NewRepository(local, remote, logger)

	cleanup := func() {
		if a.remote != nil {
			a.remote.Close()
		}
		if err := local.Close(); err != nil {
			logger.Warn("Failed to close database", "error", err)
		}
	}
	return a, cleanup, nil
}

// profile returns the active user's profile. A user with no saved profile
// gets one derived from the default jurisdiction.
func (a *app) profile(ctx context.Context) model.UserProfile {
	for _, p := range a.repo.LoadProfiles(ctx) {
		if p.ID == a.cfg.UserID {
			return p
		}
	}

	country := a.cfg.Tax.DefaultJurisdiction
	return model.UserProfile{
		ID:              a.cfg.UserID,
		Name:            a.cfg.UserID,
		Country:         country,
		BaseCurrency:    currency.ForJurisdiction(country).String(),
		Language:        "en",
		FilingFrequency: model.FilingQuarterly,
	}
}

// collaborator builds the configured AI client.
func (a *app) collaborator(ctx context.Context) (*llm.Collaborator, error) {
	c, err := llm.NewCollaborator(ctx, a.cfg.LLMClientConfig(), a.logger)
	if err != nil {
		return nil, common.NewUserError("AI collaborator is not configured", err)
	}
	return c, nil
}

// predictor builds a rate predictor over the AI collaborator.
func (a *app) predictor(ctx context.Context) (*tax.Predictor, error) {
	c, err := a.collaborator(ctx)
	if err != nil {
		return nil, err
	}
	return tax.NewPredictor(c, a.cfg.PredictorConfig(), a.logger)
}

func writeLine(w io.Writer, s string) {
	if _, err := fmt.Fprintln(w, s); err != nil {
		slog.Error("failed to write output", "error", err)
	}
}
