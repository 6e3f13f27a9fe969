package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Veraticus/novatax/internal/api"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the JSON API and Prometheus metrics. Writes queued while the hosted
datastore was unreachable are replayed at startup.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default: server.addr)")
	cmd.Flags().Bool("no-predict", false, "disable AI tax rate prediction")
	cmd.Flags().Bool("no-metrics", false, "disable the /metrics endpoint")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, cleanup, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if synced, err := a.repo.Sync(ctx); err != nil {
		a.logger.Warn("Pending writes not synced", "synced", synced, "error", err)
	} else if synced > 0 {
		a.logger.Info("Synced pending writes", "count", synced)
	}

	srv := api.NewServer(a.repo, a.resolver, a.logger)
	if noMetrics, _ := cmd.Flags().GetBool("no-metrics"); !noMetrics {
		srv.EnableMetrics()
	}
	if noPredict, _ := cmd.Flags().GetBool("no-predict"); !noPredict {
		predictor, err := a.predictor(ctx)
		if err != nil {
			a.logger.Warn("Rate prediction disabled", "error", err)
		} else {
			defer predictor.Close()
			srv.SetPredictor(predictor)
		}
	}

	addr := a.cfg.Server.Addr
	if flagAddr, _ := cmd.Flags().GetString("addr"); flagAddr != "" {
		addr = flagAddr
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("API listening", "addr", addr, "remote", a.remote != nil)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.logger.Info("Shutting down API")
	return httpServer.Shutdown(shutdownCtx)
}
