package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/recoverly/flowedit/pkg/adapters/memory"
	"github.com/recoverly/flowedit/pkg/domain"
	"github.com/recoverly/flowedit/pkg/editor"
	"github.com/recoverly/flowedit/pkg/ports"
	"github.com/recoverly/flowedit/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
	saves int
	mu    sync.Mutex
}

func NewSlowStore() *SlowStore {
	return &SlowStore{Store: memory.NewStore()}
}

func (s *SlowStore) Save(ctx context.Context, a *domain.Automation) error {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	s.saves++
	s.mu.Unlock()
	return s.Store.Save(ctx, a)
}

type fakeEngine struct {
	mu       sync.Mutex
	deployed []*domain.Automation
	err      error
}

func (e *fakeEngine) Deploy(ctx context.Context, a *domain.Automation) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.deployed = append(e.deployed, a)
	return e.err
}

type recordingPublisher struct {
	diffs []*domain.GraphDiff
}

func (p *recordingPublisher) Publish(d *domain.GraphDiff) { p.diffs = append(p.diffs, d) }

type countingLocker struct {
	mu    sync.Mutex
	locks int
	held  map[string]bool
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return nil, errors.New("lock already held")
	}
	l.held[key] = true
	l.locks++
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}, nil
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("sess-%d", n)
	}
}

func TestManager_OpenCreatesAndReopens(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store, session.WithIDGenerator(sequentialIDs()))
	ctx := context.Background()

	initial := domain.Graph{Nodes: []domain.Node{{ID: "t1", Kind: "no-contact", Parameters: map[string]any{"days": float64(10)}}}}
	info, err := mgr.Open(ctx, session.OpenRequest{AutomationID: "auto-1", TenantID: "acme", Name: "Ghosted", Initial: &initial})
	require.NoError(t, err)
	assert.Equal(t, "sess-1", info.SessionID)
	assert.Equal(t, "acme", info.TenantID)
	assert.False(t, info.Dirty)
	assert.False(t, info.CanUndo)

	stored, err := store.Load(ctx, "auto-1")
	require.NoError(t, err, "open reserves the automation")
	assert.Equal(t, "Ghosted", stored.Name)
	n, _ := stored.Graph.Node("t1")
	assert.Equal(t, 10, n.Parameters["days"])

	// A second open of the same automation loads it; request metadata is ignored.
	again, err := mgr.Open(ctx, session.OpenRequest{AutomationID: "auto-1", TenantID: "other"})
	require.NoError(t, err)
	assert.Equal(t, "acme", again.TenantID)
	assert.Len(t, mgr.List(), 2)
}

func TestManager_OpenValidation(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	_, err := mgr.Open(ctx, session.OpenRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)

	_, err = mgr.Open(ctx, session.OpenRequest{AutomationID: "new"})
	assert.ErrorIs(t, err, domain.ErrInvalidOperation, "tenant is required on creation")

	broken := domain.Graph{Edges: []domain.Edge{{ID: "e", Source: "a", Target: "b"}}}
	_, err = mgr.Open(ctx, session.OpenRequest{AutomationID: "new", TenantID: "t", Initial: &broken})
	assert.ErrorIs(t, err, domain.ErrDanglingReference)
}

func TestManager_EditUndoRedoSave(t *testing.T) {
	store := memory.NewStore()
	engine := &fakeEngine{}
	pub := &recordingPublisher{}
	var saves int
	mgr := session.NewManager(store,
		session.WithExecutionEngine(engine),
		session.WithPublisher(pub),
		session.WithHooks(domain.LifecycleHooks{OnSave: func(*domain.EditEvent) { saves++ }}),
	)
	ctx := context.Background()

	info, err := mgr.Open(ctx, session.OpenRequest{AutomationID: "auto-1", TenantID: "acme"})
	require.NoError(t, err)
	sid := info.SessionID

	info, err = mgr.Apply(ctx, sid, editor.AddNode("t1", "overdue-invoice", domain.Position{}, map[string]any{"days": 3}))
	require.NoError(t, err)
	assert.True(t, info.Dirty)
	assert.True(t, info.CanUndo)

	_, err = mgr.Apply(ctx, sid, editor.AddEdge("e1", "t1", "nowhere"))
	require.ErrorIs(t, err, domain.ErrDanglingReference)

	info, moved, err := mgr.Undo(ctx, sid)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Empty(t, info.Graph.Nodes)
	assert.False(t, info.Dirty)

	_, moved, err = mgr.Undo(ctx, sid)
	require.NoError(t, err)
	assert.False(t, moved, "undo at the oldest snapshot is a no-op")

	info, moved, err = mgr.Redo(ctx, sid)
	require.NoError(t, err)
	assert.True(t, moved)
	require.Len(t, info.Graph.Nodes, 1)

	saved, err := mgr.Save(ctx, sid)
	require.NoError(t, err)
	assert.Len(t, saved.Graph.Nodes, 1)
	assert.Equal(t, 1, saves)

	snap, err := mgr.Snapshot(ctx, sid)
	require.NoError(t, err)
	assert.False(t, snap.Dirty)
	assert.True(t, snap.CanUndo, "saving does not touch history")

	stored, err := store.Load(ctx, "auto-1")
	require.NoError(t, err)
	assert.True(t, stored.Graph.Equal(saved.Graph))

	require.Len(t, engine.deployed, 1)
	assert.Equal(t, "auto-1", engine.deployed[0].ID)

	require.Len(t, pub.diffs, 3, "add, undo and redo each publish one diff")
	assert.Equal(t, []string{"t1"}, pub.diffs[0].AddedNodes)
	assert.Equal(t, []string{"t1"}, pub.diffs[1].RemovedNodes)
	assert.Equal(t, "auto-1", pub.diffs[2].AutomationID)
}

func TestManager_SaveReportsDeployFailure(t *testing.T) {
	store := memory.NewStore()
	boom := errors.New("engine offline")
	mgr := session.NewManager(store, session.WithExecutionEngine(&fakeEngine{err: boom}))
	ctx := context.Background()

	info, err := mgr.Open(ctx, session.OpenRequest{AutomationID: "a", TenantID: "t"})
	require.NoError(t, err)
	_, err = mgr.Apply(ctx, info.SessionID, editor.AddNode("n", "broken-agreement", domain.Position{}, nil))
	require.NoError(t, err)

	_, err = mgr.Save(ctx, info.SessionID)
	require.ErrorIs(t, err, boom)

	stored, loadErr := store.Load(ctx, "a")
	require.NoError(t, loadErr)
	assert.Len(t, stored.Graph.Nodes, 1, "the store write happens before deploy")
}

func TestManager_UnknownSession(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	_, err := mgr.Apply(ctx, "ghost", editor.RemoveNode("x"))
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, _, err = mgr.Undo(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = mgr.Save(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, mgr.Close(ctx, "ghost"), domain.ErrSessionNotFound)
}

func TestManager_CloseDropsSession(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	info, err := mgr.Open(ctx, session.OpenRequest{AutomationID: "a", TenantID: "t"})
	require.NoError(t, err)
	require.NoError(t, mgr.Close(ctx, info.SessionID))

	_, err = mgr.Snapshot(ctx, info.SessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Empty(t, mgr.List())
}

func TestManager_ConcurrentEditsAreSerialised(t *testing.T) {
	store := NewSlowStore()
	locker := &countingLocker{}
	mgr := session.NewManager(store, session.WithLocker(locker))
	ctx := context.Background()

	info, err := mgr.Open(ctx, session.OpenRequest{AutomationID: "race", TenantID: "t"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	const writers = 20
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := mgr.Apply(ctx, info.SessionID, editor.AddNode(fmt.Sprintf("n%d", i), "action-send-message", domain.Position{}, nil))
			assert.NoError(t, err)
			_, err = mgr.Save(ctx, info.SessionID)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	snap, err := mgr.Snapshot(ctx, info.SessionID)
	require.NoError(t, err)
	assert.Len(t, snap.Graph.Nodes, writers, "no edit may be lost")

	stored, err := store.Load(ctx, "race")
	require.NoError(t, err)
	assert.Len(t, stored.Graph.Nodes, writers)

	// One lock for Open plus one per Save.
	assert.Equal(t, writers+1, locker.locks)
}

func TestManager_ConcurrentOpenCreatesOnce(t *testing.T) {
	store := NewSlowStore()
	mgr := session.NewManager(store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Open(ctx, session.OpenRequest{AutomationID: "atomic-init", TenantID: "t"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.saves, "only the first open initialises the automation")
	assert.Len(t, mgr.List(), 4)
}
