package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/recoverly/flowedit"
	"github.com/recoverly/flowedit/internal/adapters/file"
	"github.com/recoverly/flowedit/internal/config"
	"github.com/recoverly/flowedit/pkg/adapters/memory"
	"github.com/recoverly/flowedit/pkg/adapters/process"
	redisAdapter "github.com/recoverly/flowedit/pkg/adapters/redis"
	"github.com/recoverly/flowedit/pkg/observability"
	"github.com/recoverly/flowedit/pkg/persistence/middleware"
	"github.com/recoverly/flowedit/pkg/ports"
	"github.com/recoverly/flowedit/pkg/session"
)

// redisPingTimeout bounds the startup connectivity check.
const redisPingTimeout = 5 * time.Second

// Runtime is the engine built from a configuration, plus what must be
// released when the command ends.
type Runtime struct {
	Engine *flowedit.Engine
	Config *config.Config
	Logger *slog.Logger

	closers []func() error
}

// Close releases store connections.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i]())
	}
	return errors.Join(errs...)
}

// NewRuntime builds the store stack, the optional deploy hook and the engine.
// extra options are applied last, so callers can add publishers or metrics.
func NewRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger, extra ...flowedit.Option) (*Runtime, error) {
	rt := &Runtime{Config: cfg, Logger: logger}

	store, sessionOpts, err := rt.buildStore(ctx)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	if cfg.Deploy.Command != "" {
		sessionOpts = append(sessionOpts, session.WithExecutionEngine(process.NewDeployer(cfg.Deploy.Command,
			process.WithArgs(cfg.Deploy.Args...),
			process.WithEnv(cfg.Deploy.Env),
			process.WithBaseDir(cfg.Deploy.Dir),
			process.WithTimeout(cfg.Deploy.Timeout),
			process.WithLogger(logger),
		)))
	}

	opts := []flowedit.Option{
		flowedit.WithStore(store),
		flowedit.WithLogger(logger),
		flowedit.WithHistoryCapacity(cfg.History.Capacity),
		flowedit.WithLifecycleHooks(observability.LoggingHooks(logger)),
		flowedit.WithSessionOptions(sessionOpts...),
	}
	if cfg.Templates.Dir != "" {
		opts = append(opts, flowedit.WithTemplatesDir(cfg.Templates.Dir))
	}
	opts = append(opts, extra...)

	eng, err := flowedit.New(opts...)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	rt.Engine = eng
	return rt, nil
}

// buildStore creates the configured backend and wraps it with the store middleware.
func (rt *Runtime) buildStore(ctx context.Context) (ports.AutomationStore, []session.Option, error) {
	cfg := rt.Config
	var (
		store       ports.AutomationStore
		sessionOpts []session.Option
	)

	switch cfg.Store {
	case config.StoreMemory, "":
		store = memory.NewStore()
	case config.StoreFile:
		store = file.New(cfg.File.Dir)
	case config.StoreRedis:
		rs := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redisAdapter.WithPrefix(cfg.Redis.Prefix),
			redisAdapter.WithTTL(cfg.Redis.TTL),
		)
		rt.closers = append(rt.closers, rs.Close)

		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := rs.Client().Ping(pingCtx).Err(); err != nil {
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		if cfg.Redis.Lock {
			sessionOpts = append(sessionOpts, session.WithLocker(redisAdapter.NewLocker(rs.Client(), cfg.Redis.Prefix)))
		}
		store = rs
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	var mws []middleware.Middleware
	if cfg.Breaker.Enabled {
		bc := middleware.DefaultBreakerConfig()
		bc.Name = cfg.Store + "-store"
		bc.ConsecutiveFailures = cfg.Breaker.ConsecutiveFailures
		if cfg.Breaker.Timeout > 0 {
			bc.Timeout = cfg.Breaker.Timeout
		}
		bc.Logger = rt.Logger
		mws = append(mws, middleware.NewBreakerMiddleware(bc))
	}
	if len(cfg.Redact) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(cfg.Redact))
	}

	rt.Logger.Debug("automation store ready", "store", cfg.Store, "breaker", cfg.Breaker.Enabled, "redact", len(cfg.Redact))
	return middleware.Chain(store, mws...), sessionOpts, nil
}
