// Package mcp exposes editor sessions as Model Context Protocol tools, so an
// agent can build and revise automations the way an operator does in the UI.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/recoverly/flowedit"
	"github.com/recoverly/flowedit/internal/logging"
	"github.com/recoverly/flowedit/pkg/domain"
	"github.com/recoverly/flowedit/pkg/editor"
	"github.com/recoverly/flowedit/pkg/ports"
	"github.com/recoverly/flowedit/pkg/session"
)

const automationURIPrefix = "flowedit://automations/"

// SessionArgs selects an open session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// OpenArgs are the arguments of open_session.
type OpenArgs struct {
	AutomationID string `json:"automation_id"`
	TenantID     string `json:"tenant_id"`
	Name         string `json:"name"`
	TemplateID   string `json:"template_id"`
}

// EditArgs are the arguments of apply_edit.
type EditArgs struct {
	SessionID string         `json:"session_id"`
	Edit      map[string]any `json:"edit"`
}

// DisplayArgs are the arguments of resolve_display.
type DisplayArgs struct {
	Kind       string         `json:"kind"`
	Label      string         `json:"label"`
	Parameters map[string]any `json:"parameters"`
}

// StepResult is a session after undo or redo. Moved is false at the history boundary.
type StepResult struct {
	session.Info
	Moved bool `json:"moved" jsonschema_description:"False when there was nothing to undo or redo"`
}

// TemplateList wraps template IDs; structured tool output must be an object.
type TemplateList struct {
	Templates []string `json:"templates"`
}

// Server wraps a session manager and exposes it as an MCP Server.
type Server struct {
	sessions  *session.Manager
	templates ports.TemplateLoader
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance. templates may be nil.
func NewServer(mgr *session.Manager, templates ports.TemplateLoader, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		sessions:  mgr,
		templates: templates,
		logger:    logger,
		mcpServer: server.NewMCPServer("flowedit-mcp", flowedit.Version,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
			server.WithRecovery(),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionIDArg() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("ID returned by open_session"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("open_session",
		mcp.WithDescription("Open an editor session on an automation. A missing automation is created, optionally from a template."),
		mcp.WithString("automation_id", mcp.Required(), mcp.Description("Automation to edit")),
		mcp.WithString("tenant_id", mcp.Description("Owning tenant; required when the automation does not exist")),
		mcp.WithString("name", mcp.Description("Display name for a new automation")),
		mcp.WithString("template_id", mcp.Description("Template to start a new automation from")),
		mcp.WithOutputSchema[session.Info](),
	), mcp.NewStructuredToolHandler(s.handleOpen))

	editOps := make([]string, len(editor.Ops))
	for i, op := range editor.Ops {
		editOps[i] = string(op)
	}
	s.mcpServer.AddTool(mcp.NewTool("apply_edit",
		mcp.WithDescription("Apply one edit to the live graph. Rejected edits leave the graph and the history unchanged."),
		sessionIDArg(),
		mcp.WithObject("edit", mcp.Required(),
			mcp.Description("Edit with an 'op' ("+strings.Join(editOps, ", ")+") plus node_id, kind, position {x,y}, parameters, label, edge_id, source, target, source_anchor, target_anchor as the op requires"),
			mcp.AdditionalProperties(true),
		),
		mcp.WithOutputSchema[session.Info](),
	), mcp.NewStructuredToolHandler(s.handleApply))

	s.mcpServer.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Step back one edit."),
		sessionIDArg(),
		mcp.WithOutputSchema[StepResult](),
	), mcp.NewStructuredToolHandler(s.handleUndo))

	s.mcpServer.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Step forward one edit."),
		sessionIDArg(),
		mcp.WithOutputSchema[StepResult](),
	), mcp.NewStructuredToolHandler(s.handleRedo))

	s.mcpServer.AddTool(mcp.NewTool("snapshot",
		mcp.WithDescription("Return the live graph and history state of a session."),
		sessionIDArg(),
		mcp.WithOutputSchema[session.Info](),
	), mcp.NewStructuredToolHandler(s.handleSnapshot))

	s.mcpServer.AddTool(mcp.NewTool("save_session",
		mcp.WithDescription("Persist the live graph of a session and deploy it."),
		sessionIDArg(),
		mcp.WithOutputSchema[domain.Automation](),
	), mcp.NewStructuredToolHandler(s.handleSave))

	s.mcpServer.AddTool(mcp.NewTool("close_session",
		mcp.WithDescription("Close a session. Unsaved edits are lost."),
		sessionIDArg(),
	), s.handleClose)

	s.mcpServer.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List the IDs of the automation templates."),
		mcp.WithOutputSchema[TemplateList](),
	), mcp.NewStructuredToolHandler(s.handleListTemplates))

	s.mcpServer.AddTool(mcp.NewTool("resolve_display",
		mcp.WithDescription("Resolve the icon, label and parameter line a node of the given kind renders with."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Node kind, e.g. overdue-invoice or action-send-message")),
		mcp.WithString("label", mcp.Description("Explicit label override")),
		mcp.WithObject("parameters", mcp.Description("Node parameters"), mcp.AdditionalProperties(true)),
		mcp.WithOutputSchema[domain.Display](),
	), mcp.NewStructuredToolHandler(s.handleResolveDisplay))
}

func (s *Server) handleOpen(ctx context.Context, _ mcp.CallToolRequest, args OpenArgs) (session.Info, error) {
	req := session.OpenRequest{
		AutomationID: args.AutomationID,
		TenantID:     args.TenantID,
		Name:         args.Name,
	}
	if args.TemplateID != "" {
		if s.templates == nil {
			return session.Info{}, fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, args.TemplateID)
		}
		t, err := s.templates.GetTemplate(ctx, args.TemplateID)
		if err != nil {
			return session.Info{}, err
		}
		req.Initial = &t.Graph
		if req.Name == "" {
			req.Name = t.Name
		}
	}
	info, err := s.sessions.Open(ctx, req)
	if err != nil {
		return session.Info{}, err
	}
	return *info, nil
}

func (s *Server) handleApply(ctx context.Context, _ mcp.CallToolRequest, args EditArgs) (session.Info, error) {
	e, err := editor.DecodeEdit(args.Edit)
	if err != nil {
		return session.Info{}, err
	}
	info, err := s.sessions.Apply(ctx, args.SessionID, e)
	if err != nil {
		s.logger.Warn("MCP apply_edit rejected", "session_id", args.SessionID, "op", string(e.Op), "error", err)
		return session.Info{}, err
	}
	return *info, nil
}

func (s *Server) handleUndo(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (StepResult, error) {
	return stepResult(s.sessions.Undo(ctx, args.SessionID))
}

func (s *Server) handleRedo(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (StepResult, error) {
	return stepResult(s.sessions.Redo(ctx, args.SessionID))
}

func stepResult(info *session.Info, moved bool, err error) (StepResult, error) {
	if err != nil {
		return StepResult{}, err
	}
	return StepResult{Info: *info, Moved: moved}, nil
}

func (s *Server) handleSnapshot(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (session.Info, error) {
	info, err := s.sessions.Snapshot(ctx, args.SessionID)
	if err != nil {
		return session.Info{}, err
	}
	return *info, nil
}

func (s *Server) handleSave(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (domain.Automation, error) {
	a, err := s.sessions.Save(ctx, args.SessionID)
	if err != nil {
		return domain.Automation{}, err
	}
	return *a, nil
}

func (s *Server) handleClose(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.sessions.Close(ctx, id); err != nil {
		return mcp.NewToolResultErrorFromErr("close failed", err), nil
	}
	return mcp.NewToolResultText("closed " + id), nil
}

func (s *Server) handleListTemplates(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (TemplateList, error) {
	if s.templates == nil {
		return TemplateList{Templates: []string{}}, nil
	}
	ids, err := s.templates.ListTemplates(ctx)
	if err != nil {
		return TemplateList{}, err
	}
	return TemplateList{Templates: ids}, nil
}

func (s *Server) handleResolveDisplay(_ context.Context, _ mcp.CallToolRequest, args DisplayArgs) (domain.Display, error) {
	if args.Kind == "" {
		return domain.Display{}, errors.New("kind is required")
	}
	n := domain.Node{
		Kind:       domain.Kind(args.Kind),
		Label:      args.Label,
		Parameters: args.Parameters,
	}
	return domain.ResolveDisplay(n), nil
}

func (s *Server) registerResources() {
	// EXPOSE: flowedit://templates
	s.mcpServer.AddResource(mcp.NewResource("flowedit://templates", "Automation templates",
		mcp.WithResourceDescription("IDs of the templates new automations can start from"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		list, err := s.handleListTemplates(ctx, mcp.CallToolRequest{}, struct{}{})
		if err != nil {
			return nil, fmt.Errorf("failed to list templates: %w", err)
		}
		return jsonResource(request.Params.URI, list)
	})

	// EXPOSE: flowedit://automations/{id}
	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(automationURIPrefix+"{id}", "Saved automation",
		mcp.WithTemplateDescription("The last saved graph of an automation"),
		mcp.WithTemplateMIMEType("application/json"),
	), s.readAutomation)
}

func (s *Server) readAutomation(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id := strings.TrimPrefix(request.Params.URI, automationURIPrefix)
	if id == "" || id == request.Params.URI {
		return nil, fmt.Errorf("invalid automation URI %q", request.Params.URI)
	}
	a, err := s.sessions.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return jsonResource(request.Params.URI, a)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}
