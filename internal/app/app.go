package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/lexgraph-backend/internal/data/db"
	"github.com/yungbote/lexgraph-backend/internal/data/repos"
	httpx "github.com/yungbote/lexgraph-backend/internal/http"
	"github.com/yungbote/lexgraph-backend/internal/observability"
	"github.com/yungbote/lexgraph-backend/internal/platform/envutil"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
)

const shutdownGrace = 5 * time.Second

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Metrics  *observability.Metrics
	Clients  Clients
	Repos    repos.Set
	Services Services
	Server   *httpx.Server

	shutdownOtel func(context.Context) error
}

// New loads configuration from the environment, opens the store and external
// clients, and wires the full object graph. Migrations are not run here.
func New(ctx context.Context) (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	shutdown := observability.InitOTel(ctx, log, cfg.Otel)
	metrics := observability.Init(log)

	theDB, err := openDB(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	a, err := Build(log, cfg, theDB, clients, metrics)
	if err != nil {
		clients.Close()
		log.Sync()
		return nil, err
	}
	a.shutdownOtel = shutdown
	return a, nil
}

// Build wires repos, services and the HTTP server over an open database.
func Build(log *logger.Logger, cfg Config, theDB *gorm.DB, clients Clients, metrics *observability.Metrics) (*App, error) {
	reposet := repos.NewSet(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, clients, metrics)
	if err != nil {
		return nil, err
	}
	handlerset := wireHandlers(log, theDB, serviceset, clients.Events)
	server := httpx.NewServer(httpx.RouterConfig{
		Log:              log,
		Metrics:          metrics,
		AllowOrigins:     cfg.AllowOrigins,
		HealthHandler:    handlerset.Health,
		IngestionHandler: handlerset.Ingestion,
		GraphHandler:     handlerset.Graph,
		TemplateHandler:  handlerset.Template,
		QueryHandler:     handlerset.Query,
		LegalHandler:     handlerset.Legal,
		EventsHandler:    handlerset.Events,
	})
	return &App{
		Log:      log,
		DB:       theDB,
		Cfg:      cfg,
		Metrics:  metrics,
		Clients:  clients,
		Repos:    reposet,
		Services: serviceset,
		Server:   server,
	}, nil
}

func openDB(log *logger.Logger, cfg Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case DriverSQLite:
		s, err := db.NewSQLiteService(cfg.SQLitePath, log)
		if err != nil {
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		return s.DB(), nil
	default:
		pg, err := db.NewPostgresService(cfg.Postgres, log)
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		return pg.DB(), nil
	}
}

func (a *App) Migrate() error {
	if a == nil || a.DB == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Running migrations...", "driver", a.DB.Dialector.Name())
	return db.AutoMigrateAll(a.DB)
}

// Seed installs the default jurisdiction tree; it is idempotent.
func (a *App) Seed(ctx context.Context) (int, error) {
	if a == nil {
		return 0, fmt.Errorf("app not initialized")
	}
	return a.Services.Jurisdictions.Seed(ctx)
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(ctx, a.Cfg.HTTPAddr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.shutdownOtel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := a.shutdownOtel(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
