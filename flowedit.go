package flowedit

import (
	"context"
	"fmt"
	"log/slog"

	loamAdapter "github.com/recoverly/flowedit/pkg/adapters/loam"
	"github.com/recoverly/flowedit/pkg/adapters/memory"
	"github.com/recoverly/flowedit/pkg/domain"
	"github.com/recoverly/flowedit/pkg/observability"
	"github.com/recoverly/flowedit/pkg/ports"
	"github.com/recoverly/flowedit/pkg/session"
)

// Engine is the high-level entry point for the flowedit library.
// It wires a store, a template catalogue and a session manager.
type Engine struct {
	manager      *session.Manager
	store        ports.AutomationStore
	templates    ports.TemplateLoader
	templatesDir string
	metrics      *observability.Metrics
	hooks        []domain.LifecycleHooks
	capacity     int
	sessionOpts  []session.Option
	logger       *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore sets the automation store. The default is an in-memory store.
func WithStore(store ports.AutomationStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithTemplates injects a template catalogue, bypassing the built-in one.
func WithTemplates(l ports.TemplateLoader) Option {
	return func(e *Engine) {
		e.templates = l
	}
}

// WithTemplatesDir reads templates from a Loam directory of Markdown/JSON files.
func WithTemplatesDir(dir string) Option {
	return func(e *Engine) {
		e.templatesDir = dir
	}
}

// WithLifecycleHooks registers observability hooks. May be given more than once.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = append(e.hooks, hooks)
	}
}

// WithMetrics records edit activity on the given collectors.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithHistoryCapacity bounds the undo history of every session.
func WithHistoryCapacity(n int) Option {
	return func(e *Engine) {
		e.capacity = n
	}
}

// WithSessionOptions passes extra options (locker, deployer, publisher) to the session manager.
func WithSessionOptions(opts ...session.Option) Option {
	return func(e *Engine) {
		e.sessionOpts = append(e.sessionOpts, opts...)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes a new Engine.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.DiscardHandler)
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}

	if eng.templates == nil {
		if eng.templatesDir != "" {
			l, err := loamAdapter.Open(eng.templatesDir)
			if err != nil {
				return nil, fmt.Errorf("failed to open templates: %w", err)
			}
			eng.templates = l
		} else {
			l, err := memory.NewLoader(BuiltinTemplates()...)
			if err != nil {
				return nil, fmt.Errorf("built-in templates: %w", err)
			}
			eng.templates = l
		}
	}

	hooks := eng.hooks
	if eng.metrics != nil {
		hooks = append(hooks, eng.metrics.Hooks())
	}

	sessionOpts := []session.Option{
		session.WithLogger(eng.logger),
		session.WithHooks(domain.Chain(hooks...)),
	}
	if eng.capacity > 0 {
		sessionOpts = append(sessionOpts, session.WithHistoryCapacity(eng.capacity))
	}
	sessionOpts = append(sessionOpts, eng.sessionOpts...)

	eng.manager = session.NewManager(eng.store, sessionOpts...)
	return eng, nil
}

// Sessions returns the session manager that hosts the editor sessions.
func (e *Engine) Sessions() *session.Manager {
	return e.manager
}

// Templates returns the template catalogue.
func (e *Engine) Templates() ports.TemplateLoader {
	return e.templates
}

// Store returns the automation store.
func (e *Engine) Store() ports.AutomationStore {
	return e.store
}

// Metrics returns the collectors set with WithMetrics, or nil.
func (e *Engine) Metrics() *observability.Metrics {
	return e.metrics
}

// OpenRequest describes a session to open. TemplateID seeds a new automation.
type OpenRequest struct {
	AutomationID string
	TenantID     string
	Name         string
	TemplateID   string
}

// Open starts an editor session. When TemplateID is set and the automation
// does not exist yet, the template graph becomes its initial graph.
func (e *Engine) Open(ctx context.Context, req OpenRequest) (*session.Info, error) {
	open := session.OpenRequest{
		AutomationID: req.AutomationID,
		TenantID:     req.TenantID,
		Name:         req.Name,
	}
	if req.TemplateID != "" {
		t, err := e.templates.GetTemplate(ctx, req.TemplateID)
		if err != nil {
			return nil, err
		}
		open.Initial = &t.Graph
		if open.Name == "" {
			open.Name = t.Name
		}
	}
	return e.manager.Open(ctx, open)
}
