package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"wishTracker/internal/config"
	"wishTracker/internal/handlers"
	"wishTracker/internal/logger"
	"wishTracker/internal/middleware"
	"wishTracker/internal/repository/wish/inmemory"
	"wishTracker/internal/repository/wish/postgres"
	"wishTracker/internal/seed"
	"wishTracker/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config     *config.Config
	server     *http.Server
	router     *chi.Mux
	repository service.WishRepository
	service    *service.WishService
	shutdowns  []func(context.Context) error
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(context.Context) error, 0),
	}
}

// Init builds every layer bottom-up: logger, repository, service, seed data, router.
// On failure the resources acquired so far are released.
func (a *App) Init(ctx context.Context) (*App, error) {
	ready, err := a.init(ctx)
	if err != nil {
		if relErr := a.release(ctx); relErr != nil {
			logger.Error("App: release after failed init", relErr)
		}
		return nil, err
	}
	return ready, nil
}

func (a *App) init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func(context.Context) error {
		logger.Info("App: flushing logs")
		logger.Sync()
		return nil
	})

	if err := a.initRepository(ctx); err != nil {
		return nil, err
	}

	svc := service.NewWishService(a.repository, a.config.Tracker.Categories)
	a.service = &svc

	if err := a.seed(ctx); err != nil {
		return nil, err
	}

	a.router = a.buildRouter()
	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      otelhttp.NewHandler(a.router, "wish-tracker"),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	logger.Info("App: initialized",
		zap.String("repository", a.config.Repository.Type),
		zap.String("addr", a.server.Addr))
	return a, nil
}

func (a *App) initRepository(ctx context.Context) error {
	switch a.config.Repository.Type {
	case config.RepositoryPostgres:
		db := a.config.Database
		storage, err := postgres.New(ctx, db.URL, postgres.Options{
			MaxConns:        db.MaxConnections,
			MinConns:        db.MinConnections,
			MaxConnIdleTime: db.IdleTimeout,
			ConnectAttempts: db.ConnectAttempts,
		})
		if err != nil {
			return fmt.Errorf("init postgres repository: %w", err)
		}
		if err := storage.Migrate(ctx); err != nil {
			storage.Close()
			return fmt.Errorf("migrate: %w", err)
		}
		a.repository = storage
		a.shutdowns = append(a.shutdowns, func(context.Context) error {
			storage.Close()
			return nil
		})
	default:
		a.repository = inmemory.NewWishStorage()
		logger.Info("App: using in-memory repository")
	}
	return nil
}

// seed loads the configured fixture file into an empty repository only,
// so restarting against PostgreSQL does not duplicate it.
func (a *App) seed(ctx context.Context) error {
	path := a.config.Tracker.SeedFile
	if path == "" {
		return nil
	}

	existing, err := a.service.ListWishes(ctx)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("App: repository not empty, skipping seed", zap.Int("count", len(existing)))
		return nil
	}

	wishes, err := seed.Load(path)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if err := a.service.Import(ctx, wishes); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	logger.Info("App: seed loaded", zap.String("file", path), zap.Int("count", len(wishes)))
	return nil
}

func (a *App) buildRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.config.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300,
	}))
	if a.config.Server.RequestTimeout > 0 {
		r.Use(middleware.Timeout(a.config.Server.RequestTimeout))
	}
	r.Use(middleware.RateLimit(a.config.Server.RateLimitRPM))

	r.Mount("/", handlers.NewWishHandler(a.service).Routes())
	return r
}

// Handler exposes the instrumented router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves until ctx is cancelled or the server fails, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("App: server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Shutdown()
	})

	return g.Wait()
}

// Shutdown stops the server and then releases resources.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	logger.Info("App: shutting down")

	var err error
	if a.server != nil {
		err = multierr.Append(err, a.server.Shutdown(ctx))
	}
	return multierr.Append(err, a.release(ctx))
}

// release runs the shutdown hooks in reverse order of acquisition, once.
func (a *App) release(ctx context.Context) error {
	var err error
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.shutdowns[i](ctx))
	}
	a.shutdowns = nil
	return err
}
