// ABOUTME: JSON REST API server for contacts, deals, and the dashboard
// ABOUTME: Builds the chi router with logging, metrics, and recovery middleware
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/harperreed/dealdesk/hook"
	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/service"
)

// DegradedHeader is set on list responses served while the backend was
// unreachable.
const DegradedHeader = "X-Dealdesk-Degraded"

type Config struct {
	Contacts service.ContactStore
	Deals    service.DealStore
	Logger   *zap.Logger

	// Registerer receives the HTTP metrics; Gatherer backs /metrics. Both
	// default to the prometheus globals.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// Server keeps one contact hook and one deal hook for its lifetime. Lists are
// served from them and every write goes through them, so the held lists
// track writes without a reload.
type Server struct {
	contacts    service.ContactStore
	deals       service.DealStore
	contactHook *hook.Hook[models.Contact, models.ContactInput]
	dealHook    *hook.Hook[models.Deal, models.DealInput]
	logger      *zap.Logger
	metrics  *httpMetrics
	gatherer prometheus.Gatherer
}

func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.DefaultRegisterer
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		contacts:    cfg.Contacts,
		deals:       cfg.Deals,
		contactHook: hook.NewContacts(cfg.Contacts, cfg.Logger),
		dealHook:    hook.NewDeals(cfg.Deals, cfg.Logger),
		logger:      cfg.Logger,
		metrics:     newHTTPMetrics(cfg.Registerer),
		gatherer:    cfg.Gatherer,
	}
}

// Router returns the HTTP handler for every route.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(s.metrics.middleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(api chi.Router) {
		api.Route("/contacts", func(r chi.Router) {
			r.Get("/", s.listContacts)
			r.Post("/", s.createContact)
			r.Get("/{id}", s.getContact)
			r.Put("/{id}", s.updateContact)
			r.Delete("/{id}", s.deleteContact)
		})
		api.Route("/deals", func(r chi.Router) {
			r.Get("/", s.listDeals)
			r.Post("/", s.createDeal)
			r.Get("/{id}", s.getDeal)
			r.Put("/{id}", s.updateDeal)
			r.Delete("/{id}", s.deleteDeal)
		})
		api.Get("/dashboard", s.dashboard)
	})

	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down web server: %w", err)
		}
		return nil
	}
}
