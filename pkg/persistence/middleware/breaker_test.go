package middleware_test

import (
	"context"
	"testing"
	"time"

	"github.com/recoverly/flowedit/pkg/domain"
	"github.com/recoverly/flowedit/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerMiddleware_TripsAndRecovers(t *testing.T) {
	underlying := NewMockStore()
	cfg := middleware.DefaultBreakerConfig()
	cfg.ConsecutiveFailures = 2
	cfg.Timeout = 50 * time.Millisecond
	store := middleware.NewBreakerMiddleware(cfg)(underlying)
	ctx := context.Background()

	underlying.fail = true
	for i := 0; i < 2; i++ {
		_, err := store.List(ctx)
		require.ErrorIs(t, err, errBackend)
	}

	calls := underlying.calls
	_, err := store.Load(ctx, "any")
	assert.ErrorIs(t, err, middleware.ErrStoreUnavailable)
	assert.Equal(t, calls, underlying.calls, "open breaker must not reach the store")

	underlying.fail = false
	time.Sleep(80 * time.Millisecond)

	require.NoError(t, store.Save(ctx, &domain.Automation{ID: "a"}))
	got, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)
}

func TestBreakerMiddleware_NotFoundIsNotAFailure(t *testing.T) {
	cfg := middleware.DefaultBreakerConfig()
	cfg.ConsecutiveFailures = 1
	store := middleware.NewBreakerMiddleware(cfg)(NewMockStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Load(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrAutomationNotFound)
	}
	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestChain_OrderOutermostFirst(t *testing.T) {
	underlying := NewMockStore()
	store := middleware.Chain(underlying,
		middleware.NewBreakerMiddleware(middleware.DefaultBreakerConfig()),
		middleware.NewPIIMiddleware([]string{"phone"}),
	)
	a := &domain.Automation{ID: "x", Graph: domain.Graph{Nodes: []domain.Node{
		{ID: "a1", Kind: "action-call", Parameters: map[string]any{"phone": "1"}},
	}}}
	require.NoError(t, store.Save(context.Background(), a))
	assert.Equal(t, middleware.Mask, underlying.data["x"].Graph.Nodes[0].Parameters["phone"])
}
