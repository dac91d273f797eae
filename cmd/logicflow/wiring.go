package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aretw0/logicflow"
	"github.com/aretw0/logicflow/internal/adapters/file"
	"github.com/aretw0/logicflow/internal/config"
	library "github.com/aretw0/logicflow/pkg/adapters/loam"
	"github.com/aretw0/logicflow/pkg/adapters/memory"
	"github.com/aretw0/logicflow/pkg/adapters/ollama"
	"github.com/aretw0/logicflow/pkg/adapters/postgres"
	"github.com/aretw0/logicflow/pkg/adapters/redis"
	"github.com/aretw0/logicflow/pkg/observability"
	"github.com/aretw0/logicflow/pkg/persistence/middleware"
	"github.com/aretw0/logicflow/pkg/ports"
	"github.com/aretw0/logicflow/pkg/session"
)

// backends are the stores selected by the store section of the config.
type backends struct {
	flows    ports.FlowStore
	sessions ports.ConversationStore
	locker   ports.DistributedLocker
	closers  []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackends(ctx context.Context, cfg config.StoreConfig) (*backends, error) {
	b := &backends{}
	switch cfg.Backend {
	case "memory":
		b.flows = memory.NewFlowStore()
		b.sessions = memory.NewStore()

	case "file":
		b.flows = file.NewFlowStore(filepath.Join(cfg.Path, "flows"))
		b.sessions = file.New(filepath.Join(cfg.Path, "sessions"))

	case "redis":
		if cfg.RedisURL == "" {
			return nil, errors.New("store.redis_url is required for the redis backend")
		}
		store, err := b.useRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		b.flows = redis.NewFlowStore(store.Client(), cfg.Prefix)

	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, errors.New("store.postgres_dsn is required for the postgres backend")
		}
		pg, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		b.flows = pg
		b.closers = append(b.closers, pg.Close)

		// Postgres holds flows only; sessions go to redis when configured.
		if cfg.RedisURL != "" {
			if _, err := b.useRedis(ctx, cfg); err != nil {
				b.Close()
				return nil, err
			}
		} else {
			b.sessions = file.New(filepath.Join(cfg.Path, "sessions"))
		}

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	if err := b.protectSessions(cfg); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

// protectSessions layers redaction and encryption over the session store.
func (b *backends) protectSessions(cfg config.StoreConfig) error {
	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		mw, err := middleware.NewPIIMiddleware(cfg.Redact)
		if err != nil {
			return err
		}
		mws = append(mws, mw)
	}
	active, fallback, err := cfg.Keys()
	if err != nil {
		return err
	}
	if active != nil {
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
		if err != nil {
			return err
		}
		mws = append(mws, mw)
	}
	b.sessions = middleware.Chain(b.sessions, mws...)
	return nil
}

// useRedis keeps sessions in redis and enables the distributed session lock.
func (b *backends) useRedis(ctx context.Context, cfg config.StoreConfig) (*redis.Store, error) {
	store, err := redis.NewFromURL(cfg.RedisURL, redis.WithPrefix(cfg.Prefix), redis.WithTTL(cfg.TTL))
	if err != nil {
		return nil, err
	}
	if err := store.Client().Ping(ctx).Err(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("redis unavailable: %w", err)
	}
	b.sessions = store
	b.locker = redis.NewLocker(store.Client(), cfg.Prefix)
	b.closers = append(b.closers, func() { _ = store.Close() })
	return store, nil
}

// openLibrary opens the configured library directory. A missing directory
// yields no library.
func openLibrary(cfg config.Config) (ports.FlowStore, error) {
	if cfg.Library.Path == "" {
		return nil, nil
	}
	if _, err := os.Stat(cfg.Library.Path); errors.Is(err, fs.ErrNotExist) {
		settings.logger.Debug("library directory not found", "path", cfg.Library.Path)
		return nil, nil
	}
	return library.Open(cfg.Library.Path, cfg.Parser)
}

// newMetrics registers the compiler metrics plus the Go runtime collectors
// on a private registry.
func newMetrics() *observability.Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return observability.NewMetrics(reg)
}

// newCompiler builds the facade from settings. Without backends, chat
// history lives in memory.
func newCompiler(b *backends, metrics *observability.Metrics) *logicflow.Compiler {
	cfg := settings.cfg
	opts := []logicflow.Option{
		logicflow.WithLogger(settings.logger),
		logicflow.WithMode(cfg.Parser),
		logicflow.WithPromptOptions(cfg.Prompt),
		logicflow.WithHooks(observability.NewHooks(metrics, settings.logger)),
	}

	if cfg.Assistant.Endpoint != "" {
		opts = append(opts, logicflow.WithAssistant(ollama.New(cfg.Assistant.Endpoint,
			ollama.WithModel(cfg.Assistant.Model),
			ollama.WithAPIKey(cfg.Assistant.APIKey),
			ollama.WithTimeout(cfg.Assistant.Timeout),
			ollama.WithTopP(cfg.Assistant.TopP),
		)))
	}

	if b != nil && b.sessions != nil {
		sessOpts := []session.Option{session.WithLogger(settings.logger)}
		if b.locker != nil {
			sessOpts = append(sessOpts, session.WithLocker(b.locker))
		}
		opts = append(opts, logicflow.WithSessions(session.NewManager(b.sessions, sessOpts...)))
	}
	return logicflow.New(opts...)
}
