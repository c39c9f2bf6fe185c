package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/eugenenazirov/devops-api/internal/api"
	"github.com/eugenenazirov/devops-api/internal/component"
	"github.com/eugenenazirov/devops-api/internal/config"
	"github.com/eugenenazirov/devops-api/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	cfg     config.Config
	storage storage.Storage
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server

	cancelWatch context.CancelFunc
	watchDone   sync.WaitGroup
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store := storage.NewMemoryStorage()
	if cfg.ComponentFile != "" {
		c, err := component.Load(cfg.ComponentFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load component definition: %w", err)
		}
		if err := store.SetComponent(c); err != nil {
			return nil, fmt.Errorf("failed to store component definition: %w", err)
		}
		logger.Info("component definition loaded",
			zap.String("path", cfg.ComponentFile),
			zap.String("name", c.Name),
			zap.String("version", c.Version),
		)
	}

	handler := api.NewHandler(cfg, store)
	router := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		cfg:     cfg,
		storage: store,
		handler: handler,
		router:  router,
		logger:  logger,
		server:  NewServer(cfg, router),
	}, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
// With reload enabled it also watches the component definition for changes.
func (a *App) Start() error {
	a.logger.Info(fmt.Sprintf("starting %s v%s", a.cfg.AppName, a.cfg.AppVersion),
		zap.Bool("debug", a.cfg.Debug),
		zap.String("log_level", string(a.cfg.LogLevel)),
	)

	if a.cfg.Reload && a.cfg.ComponentFile != "" {
		a.startWatch()
	}

	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop ends the component watcher, if any, and waits for it to exit.
func (a *App) Stop() {
	if a.cancelWatch != nil {
		a.cancelWatch()
	}
	a.watchDone.Wait()
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

func (a *App) startWatch() {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelWatch = cancel

	a.watchDone.Add(1)
	go func() {
		defer a.watchDone.Done()
		err := component.Watch(ctx, a.cfg.ComponentFile, a.logger, func(c component.SoftwareComponent) {
			if err := a.storage.SetComponent(c); err != nil {
				a.logger.Warn("reloaded component rejected", zap.Error(err))
			}
		})
		if err != nil {
			a.logger.Error("component watcher stopped", zap.Error(err))
		}
	}()
}
