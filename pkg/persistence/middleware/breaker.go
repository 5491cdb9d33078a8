package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/recoverly/flowedit/internal/logging"
	"github.com/recoverly/flowedit/pkg/domain"
	"github.com/recoverly/flowedit/pkg/ports"
	"github.com/sony/gobreaker"
)

// ErrStoreUnavailable is returned while the breaker is open or probing.
var ErrStoreUnavailable = errors.New("automation store unavailable")

// BreakerConfig tunes the circuit breaker around a store.
type BreakerConfig struct {
	Name string

	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval clears the failure counts while closed. Zero never clears.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32

	Logger *slog.Logger
}

// DefaultBreakerConfig returns conservative defaults for a network store.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:                "automation-store",
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

type breakerMiddleware struct {
	next ports.AutomationStore
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerMiddleware creates a middleware that stops calling a failing store.
// Lookups of missing automations are normal outcomes and never count as failures.
func NewBreakerMiddleware(cfg BreakerConfig) Middleware {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = DefaultBreakerConfig().ConsecutiveFailures
	}
	logger := cfg.Logger

	return func(next ports.AutomationStore) ports.AutomationStore {
		cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("store circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, domain.ErrAutomationNotFound) || errors.Is(err, context.Canceled)
			},
		})
		return &breakerMiddleware{next: next, cb: cb}
	}
}

func (m *breakerMiddleware) run(fn func() (any, error)) (any, error) {
	res, err := m.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return res, err
}

func (m *breakerMiddleware) Save(ctx context.Context, a *domain.Automation) error {
	_, err := m.run(func() (any, error) { return nil, m.next.Save(ctx, a) })
	return err
}

func (m *breakerMiddleware) Load(ctx context.Context, id string) (*domain.Automation, error) {
	res, err := m.run(func() (any, error) { return m.next.Load(ctx, id) })
	if err != nil {
		return nil, err
	}
	return res.(*domain.Automation), nil
}

func (m *breakerMiddleware) Delete(ctx context.Context, id string) error {
	_, err := m.run(func() (any, error) { return nil, m.next.Delete(ctx, id) })
	return err
}

func (m *breakerMiddleware) List(ctx context.Context) ([]string, error) {
	res, err := m.run(func() (any, error) { return m.next.List(ctx) })
	if err != nil {
		return nil, err
	}
	return res.([]string), nil
}
