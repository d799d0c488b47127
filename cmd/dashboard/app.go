package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/trajectory-hub/student-dashboard/config"
	"github.com/trajectory-hub/student-dashboard/internal/application/auth"
	"github.com/trajectory-hub/student-dashboard/internal/application/query"
	"github.com/trajectory-hub/student-dashboard/internal/application/sessionstore"
	"github.com/trajectory-hub/student-dashboard/internal/domain/session"
	"github.com/trajectory-hub/student-dashboard/internal/infrastructure/external/backend"
	"github.com/trajectory-hub/student-dashboard/internal/infrastructure/persistence/file"
	"github.com/trajectory-hub/student-dashboard/internal/infrastructure/persistence/memory"
	"github.com/trajectory-hub/student-dashboard/internal/infrastructure/persistence/postgres"
	"github.com/trajectory-hub/student-dashboard/internal/infrastructure/persistence/redis"
	"github.com/trajectory-hub/student-dashboard/internal/infrastructure/persistence/sqlite"
	"github.com/trajectory-hub/student-dashboard/internal/interface/http/handlers"
	"github.com/trajectory-hub/student-dashboard/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION WIRING
// ══════════════════════════════════════════════════════════════════════════════

// app is one process's object graph: config, logger, token store,
// session store, backend client, auth manager and dashboard.
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	store     *sessionstore.Store
	client    *backend.Client
	manager   *auth.Manager
	dashboard *query.Dashboard

	// storePinger is set for networked token stores.
	storePinger handlers.Pinger

	closers []func()
}

func newApp(ctx context.Context, command string, logOut io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg, command, logOut)
	a := &app{cfg: cfg, logger: log}
	a.closers = append(a.closers, func() { _ = log.Sync() })

	tokens, err := a.openTokenStore(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	a.store = sessionstore.New(tokens, sessionstore.WithLogger(log))

	clientCfg := backend.DefaultClientConfig(cfg.Backend.URL)
	clientCfg.Timeout = cfg.Backend.RequestTimeout
	clientCfg.Logger = log
	a.client = backend.NewClient(clientCfg, a.store)

	a.manager = auth.NewManager(a.store, a.client, log)
	a.dashboard = query.NewDashboard(a.client,
		query.WithBehavioralDays(cfg.Backend.BehavioralDays),
		query.WithLogger(log),
		// A rejected credential ends the session.
		query.WithAuthFailureHook(a.manager.Logout),
	)

	log.Debug("application wired",
		zap.String("backend", cfg.Backend.URL),
		zap.String("session_store", string(cfg.Session.Store)),
	)
	return a, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// setupLogger logs to logOut so stdout stays clean for command output.
// Short-lived commands log warnings only unless LOG_LEVEL is set.
func setupLogger(cfg *config.Config, command string, logOut io.Writer) *zap.Logger {
	level := cfg.Observability.LogLevel
	if command != "serve" {
		if _, set := os.LookupEnv("LOG_LEVEL"); !set {
			level = "warn"
		}
	}
	return logger.New(logger.Options{
		Level:     level,
		Format:    cfg.Observability.LogFormat,
		Output:    logOut,
		AddCaller: cfg.IsDevelopment(),
	}).With(zap.String("app", cfg.App.Name), zap.String("version", version))
}

// openTokenStore builds the TokenStore selected by SESSION_STORE.
func (a *app) openTokenStore(ctx context.Context) (session.TokenStore, error) {
	cfg := a.cfg
	switch cfg.Session.Store {
	case config.SessionMemory:
		return memory.NewTokenStore(), nil

	case config.SessionRedis:
		store, err := redis.Connect(redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		}, cfg.Session.TTL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = store.Close() })
		a.storePinger = store
		return store, nil

	case config.SessionPostgres:
		conn, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, conn.Close)
		if err := conn.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		a.storePinger = conn
		return postgres.NewTokenStore(conn), nil

	case config.SessionSQLite:
		store, err := sqlite.Open(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = store.Close() })
		return store, nil

	default:
		path := cfg.Session.File
		if path == "" {
			p, err := file.DefaultPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		return file.NewTokenStore(path, cfg.Session.EncryptionKey), nil
	}
}
