// Package api exposes transactions, summaries and tax lookups over HTTP.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Veraticus/novatax/internal/common"
	"github.com/Veraticus/novatax/internal/metrics"
	"github.com/Veraticus/novatax/internal/service"
	"github.com/Veraticus/novatax/internal/tax"
)

// Store is the persistence the API serves from.
type Store interface {
	service.TransactionStore
	service.ProfileStore
}

// Server is the NovaTax HTTP API server.
type Server struct {
	store          Store
	resolver       *tax.Resolver
	predictor      service.TaxPredictor
	logger         *slog.Logger
	metricsEnabled bool
}

// NewServer creates a new API server. A nil resolver uses the built-in table.
func NewServer(store Store, resolver *tax.Resolver, logger *slog.Logger) *Server {
	if resolver == nil {
		resolver = tax.DefaultResolver()
	}
	return &Server{
		store:    store,
		resolver: resolver,
		logger:   common.LoggerOrDefault(logger),
	}
}

// SetPredictor enables AI rate prediction on /api/tax/predict.
func (s *Server) SetPredictor(p service.TaxPredictor) { s.predictor = p }

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(countRequests)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/transactions", s.handleListTransactions)
			r.Post("/transactions", s.handleCreateTransaction)
			r.Delete("/transactions", s.handleWipeTransactions)
			r.Get("/summary", s.handleSummary)
		})
		r.Get("/profiles", s.handleListProfiles)
		r.Put("/profiles/{profileID}", s.handleSaveProfile)
		r.Get("/tax/rate", s.handleTaxRate)
		r.Get("/tax/jurisdictions", s.handleJurisdictions)
		r.Post("/tax/predict", s.handleTaxPredict)
		r.Get("/currency/convert", s.handleConvert)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// countRequests records every request under its chi route pattern.
func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
	})
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode response", "error", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"status":  status,
		},
	})
}
