package editor

import (
	"log/slog"
	"time"

	"github.com/recoverly/flowedit/internal/logging"
	"github.com/recoverly/flowedit/pkg/domain"
	"github.com/recoverly/flowedit/pkg/history"
)

// Session owns one live graph and its history, 1:1.
// It is not safe for concurrent use; multi-session hosts serialise access.
type Session struct {
	automationID string
	graph        domain.Graph
	history      *history.History
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
}

// Option configures a Session.
type Option func(*sessionConfig)

type sessionConfig struct {
	automationID string
	capacity     int
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
}

// WithCapacity bounds the session's undo history. See history.WithCapacity.
func WithCapacity(n int) Option {
	return func(c *sessionConfig) { c.capacity = n }
}

// WithHooks registers lifecycle hooks fired after edits, undo and redo.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(c *sessionConfig) { c.hooks = h }
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *sessionConfig) { c.logger = l }
}

// WithAutomationID tags events and log lines with the automation being edited.
func WithAutomationID(id string) Option {
	return func(c *sessionConfig) { c.automationID = id }
}

// New opens a session on a copy of initial, which becomes the first snapshot.
func New(initial domain.Graph, opts ...Option) *Session {
	cfg := sessionConfig{
		capacity: history.DefaultCapacity,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	start := initial.Clone()
	return &Session{
		automationID: cfg.automationID,
		graph:        start,
		history:      history.New(start, history.WithCapacity(cfg.capacity)),
		hooks:        cfg.hooks,
		logger:       cfg.logger,
	}
}

// Apply runs an edit against the live graph and commits the result to history.
// A rejected edit returns the unchanged graph together with the error.
func (s *Session) Apply(e Edit) (domain.Graph, error) {
	next, err := e.Apply(s.graph)
	if err != nil {
		s.logger.Debug("edit rejected", "automation_id", s.automationID, "op", e.Op, "err", err)
		s.emit(domain.EventEditRejected, string(e.Op), err)
		return s.graph.Clone(), err
	}

	s.graph = next
	s.history.Push(next)
	s.logger.Debug("edit applied", "automation_id", s.automationID, "op", e.Op, "history_pos", s.history.Position())
	s.emit(domain.EventEdit, string(e.Op), nil)
	return s.graph.Clone(), nil
}

// Undo replaces the live graph with the previous snapshot.
// At the start of history it reports false and returns the zero Graph.
func (s *Session) Undo() (domain.Graph, bool) {
	g, ok := s.history.Undo()
	if !ok {
		return domain.Graph{}, false
	}
	s.graph = g
	s.emit(domain.EventUndo, "", nil)
	return s.graph.Clone(), true
}

// Redo replaces the live graph with the next snapshot.
// At the end of history it reports false and returns the zero Graph.
func (s *Session) Redo() (domain.Graph, bool) {
	g, ok := s.history.Redo()
	if !ok {
		return domain.Graph{}, false
	}
	s.graph = g
	s.emit(domain.EventRedo, "", nil)
	return s.graph.Clone(), true
}

func (s *Session) CanUndo() bool { return s.history.CanUndo() }

func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// Export returns a copy of the live graph, the form handed to storage.
func (s *Session) Export() domain.Graph { return s.graph.Clone() }

// AutomationID returns the automation this session edits, if one was set.
func (s *Session) AutomationID() string { return s.automationID }

// HistoryLen and HistoryPosition expose the history shape for status displays.
func (s *Session) HistoryLen() int { return s.history.Len() }

func (s *Session) HistoryPosition() int { return s.history.Position() }

func (s *Session) emit(t domain.EventType, op string, err error) {
	s.hooks.Emit(&domain.EditEvent{
		Timestamp:    time.Now(),
		Type:         t,
		AutomationID: s.automationID,
		Op:           op,
		Err:          err,
		HistoryLen:   s.history.Len(),
		HistoryPos:   s.history.Position(),
	})
}
