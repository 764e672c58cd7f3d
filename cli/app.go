// ABOUTME: Wires entity stores for the configured backend
// ABOUTME: Opens the mock store, hosted HTTP client, or local SQLite database
package cli

import (
	"database/sql"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/harperreed/dealdesk/backend"
	"github.com/harperreed/dealdesk/config"
	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/memstore"
	"github.com/harperreed/dealdesk/records"
	"github.com/harperreed/dealdesk/service"
)

// App holds the stores every command works against.
type App struct {
	Contacts service.ContactStore
	Deals    service.DealStore
	Registry *prometheus.Registry

	database *sql.DB
}

// Open builds the stores for cfg.Backend.
func Open(cfg *config.Config, logger *zap.Logger) (*App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app := &App{Registry: reg}

	switch cfg.Backend {
	case config.BackendMock:
		opts := []memstore.Option{
			memstore.WithLatency(cfg.Mock.MinLatency, cfg.Mock.MaxLatency),
			memstore.WithLogger(logger),
		}
		contacts, err := memstore.NewContacts(opts...)
		if err != nil {
			return nil, err
		}
		deals, err := memstore.NewDeals(opts...)
		if err != nil {
			return nil, err
		}
		app.Contacts, app.Deals = contacts, deals

	case config.BackendHosted:
		client := backend.NewHTTPClient(backend.HTTPConfig{
			BaseURL:   cfg.API.URL,
			ProjectID: cfg.API.ProjectID,
			PublicKey: cfg.API.PublicKey,
			Timeout:   cfg.API.Timeout,
		}, logger)
		app.useClient(backend.Instrument(client, backend.NewMetrics(reg)), logger)

	case config.BackendLocal:
		if err := cfg.EnsureDBDir(); err != nil {
			return nil, err
		}
		database, err := db.OpenDatabase(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		app.database = database
		logger.Debug("opened local database", zap.String("path", cfg.DBPath))
		app.useClient(backend.Instrument(db.NewClient(database, logger), backend.NewMetrics(reg)), logger)

	default:
		return nil, fmt.Errorf("%w: unknown backend %q", config.ErrInvalid, cfg.Backend)
	}

	return app, nil
}

func (a *App) useClient(client backend.Client, logger *zap.Logger) {
	opts := []service.Option{
		service.WithLogger(logger),
		service.WithNotifier(records.LogNotifier{Logger: logger}),
	}
	a.Contacts = service.NewContactService(client, opts...)
	a.Deals = service.NewDealService(client, opts...)
}

// Close releases the local database, if one was opened.
func (a *App) Close() error {
	if a.database == nil {
		return nil
	}
	return a.database.Close()
}
