package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/webnyman/three-legged-Oauth/config"
	"github.com/webnyman/three-legged-Oauth/internal/application/services"
	"github.com/webnyman/three-legged-Oauth/internal/domain/session"
	"github.com/webnyman/three-legged-Oauth/internal/infrastructure/cache/redis"
	"github.com/webnyman/three-legged-Oauth/internal/infrastructure/crypto"
	"github.com/webnyman/three-legged-Oauth/internal/infrastructure/httpclient"
	"github.com/webnyman/three-legged-Oauth/internal/infrastructure/memory"
	"github.com/webnyman/three-legged-Oauth/internal/infrastructure/persistence/postgres"
	apphttp "github.com/webnyman/three-legged-Oauth/internal/interfaces/http"
	"github.com/webnyman/three-legged-Oauth/internal/interfaces/http/handlers"
	"github.com/webnyman/three-legged-Oauth/internal/interfaces/http/middleware"
	"github.com/webnyman/three-legged-Oauth/internal/interfaces/http/render"
	"github.com/webnyman/three-legged-Oauth/pkg/jwt"
	"github.com/webnyman/three-legged-Oauth/pkg/logger"
	"github.com/webnyman/three-legged-Oauth/pkg/registry"
)

const jwtIssuer = "gitlab-dashboard"

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg := config.Load()

	if cfg.Session.CookieSecret == "" {
		return fmt.Errorf("SESSION_COOKIE_SECRET must be set")
	}
	if cfg.OAuth.ClientID == "" || cfg.OAuth.ClientSecret == "" {
		return fmt.Errorf("OAUTH_CLIENT_ID and OAUTH_CLIENT_SECRET must be set")
	}

	// Initialize logger
	log, logWriter, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()
	logger.SetDefault(log)

	log.Info("Starting dashboard service...",
		logger.Component("main"),
	)

	// Initialize the session store backend
	store, checks, closeStore, err := buildSessionStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// Wire components
	reg := registry.New()
	if err := registerComponents(reg, cfg, store, checks, log); err != nil {
		return fmt.Errorf("failed to wire components: %w", err)
	}
	reg.Freeze()

	// Resolve the whole graph up front so a wiring mistake fails at
	// startup, not on the first request.
	for _, name := range []string{
		apphttp.ComponentSessionManager,
		apphttp.ComponentUserHandler,
		apphttp.ComponentHomeHandler,
		apphttp.ComponentHealthHandler,
	} {
		if _, err := reg.Resolve(name); err != nil {
			return fmt.Errorf("failed to resolve %s: %w", name, err)
		}
	}

	// Start log cleanup job if enabled
	if logWriter != nil {
		logWriter.StartCleanupJob(ctx)
		log.Info("Log cleanup job started",
			logger.Component("main"),
			logger.Int("retention_days", cfg.Logging.RetentionDays),
		)
	}

	// Create and start server
	router := apphttp.NewRouter(cfg, reg, log)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return startServer(server, log)
}

func initLogger(cfg *config.Config) (logger.Logger, *logger.SQLiteWriter, error) {
	logCfg := logger.Config{
		Level:           cfg.Logging.Level,
		Environment:     cfg.Logging.Environment,
		EnableConsole:   true,
		EnableSQLite:    cfg.Logging.SQLiteEnabled,
		SQLiteDBPath:    cfg.Logging.SQLiteDBPath,
		AsyncBufferSize: cfg.Logging.AsyncBufferSize,
		RetentionDays:   cfg.Logging.RetentionDays,
		FlushInterval:   100 * time.Millisecond,
		BatchSize:       100,
	}

	var writer *logger.SQLiteWriter
	var err error

	if logCfg.EnableSQLite {
		writer, err = logger.NewSQLiteWriter(logCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create SQLite log writer: %w", err)
		}
	}

	log, err := logger.New(logCfg, writer)
	if err != nil {
		if writer != nil {
			writer.Close()
		}
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, writer, nil
}

// buildSessionStore constructs the configured session store backend and the
// health checks that go with it. The memory backend has no external
// dependency and registers no checks.
func buildSessionStore(
	ctx context.Context,
	cfg *config.Config,
	log logger.Logger,
) (session.Store, map[string]handlers.HealthChecker, func(), error) {
	checks := make(map[string]handlers.HealthChecker)
	noop := func() {}

	switch cfg.Session.Store {
	case "memory":
		store := memory.NewSessionStore(cfg.Session.TTL)
		store.StartJanitor(ctx, 10*time.Minute)
		log.Info("Using in-memory session store", logger.Component("infrastructure"))
		return store, checks, noop, nil

	case "redis":
		client, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("Connected to Redis",
			logger.Component("infrastructure"),
			logger.String("host", cfg.Redis.Host),
			logger.Int("port", cfg.Redis.Port),
		)
		checks["redis"] = client
		return redis.NewSessionStore(client, cfg.Session.TTL), checks, func() { client.Close() }, nil

	case "postgres":
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Info("Connected to PostgreSQL",
			logger.Component("infrastructure"),
			logger.String("host", cfg.Database.Host),
			logger.Int("port", cfg.Database.Port),
		)
		store, err := postgres.NewSessionStore(db, cfg.Session.TTL)
		if err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("failed to prepare session table: %w", err)
		}
		store.StartSweeper(ctx, time.Hour)
		checks["database"] = db
		return store, checks, db.Close, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}

// registerComponents declares the component graph. Everything is a
// singleton; the handlers at the top of the graph are resolved by the
// router.
func registerComponents(
	reg *registry.Registry,
	cfg *config.Config,
	store session.Store,
	checks map[string]handlers.HealthChecker,
	log logger.Logger,
) error {
	singleton := func(deps ...string) registry.Options {
		return registry.Options{Dependencies: deps, Singleton: true}
	}

	entries := []struct {
		name    string
		factory registry.Factory
		opts    registry.Options
	}{
		{
			name: "http_client",
			factory: func(deps ...any) (any, error) {
				return httpclient.New(cfg.OAuth.RequestTimeout), nil
			},
			opts: singleton(),
		},
		{
			name: "renderer",
			factory: func(deps ...any) (any, error) {
				return render.NewJSONRenderer(), nil
			},
			opts: singleton(),
		},
		{
			name: "token_generator",
			factory: func(deps ...any) (any, error) {
				return crypto.NewTokenGenerator(), nil
			},
			opts: singleton(),
		},
		{
			name: "jwt_manager",
			factory: func(deps ...any) (any, error) {
				return jwt.NewManager(jwtIssuer, []byte(cfg.Session.CookieSecret), cfg.Session.TTL), nil
			},
			opts: singleton(),
		},
		{
			name: "session_store",
			factory: func(deps ...any) (any, error) {
				return store, nil
			},
			opts: singleton(),
		},
		{
			name: apphttp.ComponentSessionManager,
			factory: func(deps ...any) (any, error) {
				return middleware.NewSessionManager(
					deps[0].(session.Store),
					deps[1].(*jwt.Manager),
					cfg.Session.CookieName,
					cfg.Session.SecureCookies,
					log,
				), nil
			},
			opts: singleton("session_store", "jwt_manager"),
		},
		{
			name: "user_service",
			factory: func(deps ...any) (any, error) {
				return services.NewUserService(&cfg.OAuth, deps[0].(*httpclient.Client), log), nil
			},
			opts: singleton("http_client"),
		},
		{
			name: apphttp.ComponentUserHandler,
			factory: func(deps ...any) (any, error) {
				return handlers.NewUserHandler(
					deps[0].(*services.UserService),
					deps[1].(*middleware.SessionManager),
					deps[2].(*crypto.TokenGenerator),
					deps[3].(render.Renderer),
					log,
				), nil
			},
			opts: singleton("user_service", apphttp.ComponentSessionManager, "token_generator", "renderer"),
		},
		{
			name: apphttp.ComponentHomeHandler,
			factory: func(deps ...any) (any, error) {
				return handlers.NewHomeHandler(deps[0].(render.Renderer)), nil
			},
			opts: singleton("renderer"),
		},
		{
			name: apphttp.ComponentHealthHandler,
			factory: func(deps ...any) (any, error) {
				return handlers.NewHealthHandler(checks), nil
			},
			opts: singleton(),
		},
	}

	for _, e := range entries {
		if err := reg.Register(e.name, e.factory, e.opts); err != nil {
			return err
		}
	}
	return nil
}

func startServer(server *http.Server, log logger.Logger) error {
	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		log.Info("Server listening",
			logger.Component("server"),
			logger.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("Shutting down server...",
			logger.Component("server"),
			logger.String("signal", sig.String()),
		)
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited", logger.Component("server"))
	return nil
}
