package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/recoverly/flowedit/internal/logging"
	"github.com/recoverly/flowedit/pkg/domain"
	"github.com/recoverly/flowedit/pkg/editor"
	"github.com/recoverly/flowedit/pkg/history"
	"github.com/recoverly/flowedit/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica can hold an automation lock.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// openSession is one live editor plus the metadata needed to save it.
type openSession struct {
	id        string
	meta      domain.Automation // Graph unused; the editor owns it
	editor    *editor.Session
	saved     domain.Graph
	openedAt  time.Time
	savedAt   time.Time
	lastTouch time.Time // guarded by Manager.smu
}

// Info describes an open session after an operation.
type Info struct {
	SessionID    string       `json:"session_id"`
	AutomationID string       `json:"automation_id"`
	TenantID     string       `json:"tenant_id"`
	Name         string       `json:"name,omitempty"`
	CanUndo      bool         `json:"can_undo"`
	CanRedo      bool         `json:"can_redo"`
	HistoryLen   int          `json:"history_len"`
	HistoryPos   int          `json:"history_pos"`
	Dirty        bool         `json:"dirty"`
	Graph        domain.Graph `json:"graph"`
}

// Summary is the lightweight listing form of an open session.
type Summary struct {
	SessionID    string    `json:"session_id"`
	AutomationID string    `json:"automation_id"`
	TenantID     string    `json:"tenant_id"`
	OpenedAt     time.Time `json:"opened_at"`
	LastTouch    time.Time `json:"last_touch"`
}

// OpenRequest selects the automation to edit. TenantID, Name and Initial are
// only used when the automation does not exist yet.
type OpenRequest struct {
	AutomationID string
	TenantID     string
	Name         string
	Initial      *domain.Graph
}

// Manager orchestrates editor sessions, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.AutomationStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	smu      sync.RWMutex
	sessions map[string]*openSession

	locker    ports.DistributedLocker // Optional distributed locker
	lockTTL   time.Duration
	engine    ports.ExecutionEngine // Optional downstream engine
	publisher ports.ChangePublisher // Optional diff feed
	hooks     domain.LifecycleHooks
	capacity  int
	logger    *slog.Logger

	newID func() string
	now   func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking around saves.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the lease of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithExecutionEngine hands every saved automation to engine.
func WithExecutionEngine(engine ports.ExecutionEngine) Option {
	return func(m *Manager) {
		m.engine = engine
	}
}

// WithPublisher streams graph diffs to publisher.
func WithPublisher(p ports.ChangePublisher) Option {
	return func(m *Manager) {
		m.publisher = p
	}
}

// WithHooks registers lifecycle hooks on every session the manager opens.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = h
	}
}

// WithHistoryCapacity bounds the undo history of every session.
func WithHistoryCapacity(n int) Option {
	return func(m *Manager) {
		m.capacity = n
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithIDGenerator replaces the uuid session ID source. Tests use it for stable IDs.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		m.newID = fn
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.AutomationStore, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		locks:    make(map[string]*lockEntry),
		sessions: make(map[string]*openSession),
		lockTTL:  DefaultLockTTL,
		capacity: history.DefaultCapacity,
		logger:   logging.NewNop(), // Default to no-op
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// withLocal serialises fn with every other holder of key in this process.
func (m *Manager) withLocal(key string, fn func() error) error {
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()
	return fn()
}

// WithLock executes fn while holding the lock for an automation, locally and,
// when a locker is configured, across replicas.
func (m *Manager) WithLock(ctx context.Context, automationID string, fn func(context.Context) error) error {
	return m.withLocal("automation:"+automationID, func() error {
		if m.locker != nil {
			unlock, err := m.locker.Lock(ctx, automationID, m.lockTTL)
			if err != nil {
				return fmt.Errorf("failed to acquire distributed lock: %w", err)
			}
			defer func() {
				if err := unlock(ctx); err != nil {
					m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
						"automation_id", automationID,
						"err", err,
					)
				}
			}()
		}
		return fn(ctx)
	})
}

// Open loads the automation, creating and persisting it when it does not exist,
// and starts an editor session on it.
func (m *Manager) Open(ctx context.Context, req OpenRequest) (*Info, error) {
	if req.AutomationID == "" {
		return nil, &domain.InvalidOperationError{Op: "open", Reason: "automation id is required"}
	}

	var a *domain.Automation
	err := m.WithLock(ctx, req.AutomationID, func(ctx context.Context) error {
		var err error
		a, err = m.store.Load(ctx, req.AutomationID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrAutomationNotFound) {
			return fmt.Errorf("failed to check automation existence: %w", err)
		}

		if req.TenantID == "" {
			return &domain.InvalidOperationError{Op: "open", Reason: "tenant id is required for a new automation"}
		}
		a = &domain.Automation{
			ID:        req.AutomationID,
			TenantID:  req.TenantID,
			Name:      req.Name,
			UpdatedAt: m.now().UTC(),
		}
		if req.Initial != nil {
			if err := req.Initial.Validate(); err != nil {
				return err
			}
			a.Graph = req.Initial.Normalized()
		}

		// Persist immediately to reserve the ID
		if err := m.store.Save(ctx, a); err != nil {
			return fmt.Errorf("failed to initialize automation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := a.Graph.Validate(); err != nil {
		return nil, fmt.Errorf("stored automation %s is inconsistent: %w", a.ID, err)
	}

	sid := m.newID()
	meta := *a
	meta.Graph = domain.Graph{}
	now := m.now()
	s := &openSession{
		id:   sid,
		meta: meta,
		editor: editor.New(a.Graph,
			editor.WithCapacity(m.capacity),
			editor.WithHooks(m.hooks),
			editor.WithLogger(m.logger),
			editor.WithAutomationID(a.ID),
		),
		saved:     a.Graph.Clone(),
		openedAt:  now,
		lastTouch: now,
	}

	m.smu.Lock()
	m.sessions[sid] = s
	m.smu.Unlock()

	m.logger.Info("editor session opened", "session_id", sid, "automation_id", a.ID, "tenant_id", a.TenantID)
	return s.info(), nil
}

// touch finds an open session and records the access time.
func (m *Manager) touch(sessionID string) (*openSession, error) {
	m.smu.Lock()
	defer m.smu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	s.lastTouch = m.now()
	return s, nil
}

// withSession runs fn on an open session under its lock.
func (m *Manager) withSession(sessionID string, fn func(*openSession) error) error {
	return m.withLocal("session:"+sessionID, func() error {
		s, err := m.touch(sessionID)
		if err != nil {
			return err
		}
		return fn(s)
	})
}

// Apply runs one edit on a session. A rejected edit returns the error and
// leaves the session untouched.
func (m *Manager) Apply(ctx context.Context, sessionID string, e editor.Edit) (*Info, error) {
	var info *Info
	err := m.withSession(sessionID, func(s *openSession) error {
		before := s.editor.Export()
		if _, err := s.editor.Apply(e); err != nil {
			return err
		}
		m.publish(s, before)
		info = s.info()
		return nil
	})
	return info, err
}

// Undo steps a session back. The bool is false when there was nothing to undo.
func (m *Manager) Undo(ctx context.Context, sessionID string) (*Info, bool, error) {
	return m.step(sessionID, (*editor.Session).Undo)
}

// Redo steps a session forward. The bool is false when there was nothing to redo.
func (m *Manager) Redo(ctx context.Context, sessionID string) (*Info, bool, error) {
	return m.step(sessionID, (*editor.Session).Redo)
}

func (m *Manager) step(sessionID string, move func(*editor.Session) (domain.Graph, bool)) (*Info, bool, error) {
	var (
		info  *Info
		moved bool
	)
	err := m.withSession(sessionID, func(s *openSession) error {
		before := s.editor.Export()
		if _, moved = move(s.editor); moved {
			m.publish(s, before)
		}
		info = s.info()
		return nil
	})
	return info, moved, err
}

// Snapshot returns the current state of a session.
func (m *Manager) Snapshot(ctx context.Context, sessionID string) (*Info, error) {
	var info *Info
	err := m.withSession(sessionID, func(s *openSession) error {
		info = s.info()
		return nil
	})
	return info, err
}

// Save persists the live graph of a session and hands it to the execution
// engine, if one is configured. History is not affected.
func (m *Manager) Save(ctx context.Context, sessionID string) (*domain.Automation, error) {
	var saved *domain.Automation
	err := m.withSession(sessionID, func(s *openSession) error {
		a := s.meta
		a.Graph = s.editor.Export()
		a.UpdatedAt = m.now().UTC()

		err := m.WithLock(ctx, a.ID, func(ctx context.Context) error {
			return m.store.Save(ctx, &a)
		})
		if err != nil {
			return fmt.Errorf("failed to save automation %s: %w", a.ID, err)
		}

		s.saved = a.Graph.Clone()
		s.savedAt = a.UpdatedAt
		m.hooks.Emit(&domain.EditEvent{
			Timestamp:    a.UpdatedAt,
			Type:         domain.EventSave,
			AutomationID: a.ID,
			HistoryLen:   s.editor.HistoryLen(),
			HistoryPos:   s.editor.HistoryPosition(),
		})
		m.logger.Info("automation saved", "session_id", s.id, "automation_id", a.ID, "nodes", len(a.Graph.Nodes), "edges", len(a.Graph.Edges))

		saved = a.Clone()
		if m.engine != nil {
			if err := m.engine.Deploy(ctx, a.Clone()); err != nil {
				return fmt.Errorf("automation %s saved but deploy failed: %w", a.ID, err)
			}
		}
		return nil
	})
	return saved, err
}

// Close discards a session. Unsaved edits are lost.
func (m *Manager) Close(ctx context.Context, sessionID string) error {
	return m.withLocal("session:"+sessionID, func() error {
		m.smu.Lock()
		defer m.smu.Unlock()
		s, ok := m.sessions[sessionID]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
		}
		delete(m.sessions, sessionID)
		m.logger.Info("editor session closed", "session_id", sessionID, "automation_id", s.meta.ID)
		return nil
	})
}

// List returns the open sessions ordered by opening time.
func (m *Manager) List() []Summary {
	m.smu.RLock()
	out := make([]Summary, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, Summary{
			SessionID:    s.id,
			AutomationID: s.meta.ID,
			TenantID:     s.meta.TenantID,
			OpenedAt:     s.openedAt,
			LastTouch:    s.lastTouch,
		})
	}
	m.smu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].OpenedAt.Equal(out[j].OpenedAt) {
			return out[i].SessionID < out[j].SessionID
		}
		return out[i].OpenedAt.Before(out[j].OpenedAt)
	})
	return out
}

// Load reads a stored automation without opening a session.
func (m *Manager) Load(ctx context.Context, automationID string) (*domain.Automation, error) {
	return m.store.Load(ctx, automationID)
}

// Delete removes a stored automation.
func (m *Manager) Delete(ctx context.Context, automationID string) error {
	return m.WithLock(ctx, automationID, func(ctx context.Context) error {
		return m.store.Delete(ctx, automationID)
	})
}

// Automations lists stored automation IDs.
func (m *Manager) Automations(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying automation store.
func (m *Manager) Store() ports.AutomationStore {
	return m.store
}

func (m *Manager) publish(s *openSession, before domain.Graph) {
	if m.publisher == nil {
		return
	}
	if diff := domain.Diff(before, s.editor.Export()); diff != nil {
		diff.AutomationID = s.meta.ID
		m.publisher.Publish(diff)
	}
}

func (s *openSession) info() *Info {
	g := s.editor.Export()
	return &Info{
		SessionID:    s.id,
		AutomationID: s.meta.ID,
		TenantID:     s.meta.TenantID,
		Name:         s.meta.Name,
		CanUndo:      s.editor.CanUndo(),
		CanRedo:      s.editor.CanRedo(),
		HistoryLen:   s.editor.HistoryLen(),
		HistoryPos:   s.editor.HistoryPosition(),
		Dirty:        !g.Equal(s.saved),
		Graph:        g,
	}
}
