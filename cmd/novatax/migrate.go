package main

import (
	"fmt"

	"github.com/Veraticus/novatax/internal/cli"
	"github.com/Veraticus/novatax/internal/config"
	"github.com/Veraticus/novatax/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the local cache schema, and the hosted datastore
schema when remote.url is set.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current schema version without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	status, _ := cmd.Flags().GetBool("status")

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if !status {
		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	version, err := store.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	writeLine(out, fmt.Sprintf("Local cache %s at schema version %d of %d", cfg.Database.Path, version, storage.ExpectedSchemaVersion))

	if cfg.Remote.URL == "" || status {
		return nil
	}

	remote, err := storage.ConnectPostgres(ctx, cfg.Remote.URL)
	if err != nil {
		return err
	}
	defer remote.Close()

	if err := remote.Migrate(ctx); err != nil {
		return fmt.Errorf("remote migration failed: %w", err)
	}
	writeLine(out, cli.FormatSuccess("Hosted datastore schema is up to date"))
	return nil
}
