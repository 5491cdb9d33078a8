package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/recoverly/flowedit"
	"github.com/recoverly/flowedit/internal/presentation/tui"
	"github.com/recoverly/flowedit/pkg/session"
	"golang.org/x/term"
)

// EditOptions selects the automation an interactive session works on.
type EditOptions struct {
	AutomationID string
	TenantID     string
	Name         string
	TemplateID   string
	// ImportPath seeds a new automation from a JSON/YAML automation file.
	ImportPath string
	// Script runs the commands of a file instead of reading stdin.
	Script string
}

// RunEdit opens an editor session and drives it from stdin (or a script).
// The session is closed on exit; unsaved edits are discarded with a warning.
func RunEdit(ctx *SignalContext, rt *Runtime, opts EditOptions, stdin io.Reader, stdout io.Writer) error {
	interactive := opts.Script == "" && isTerminal(stdin)
	if interactive {
		tui.PrintBanner(stdout, flowedit.Version)
	}

	in := stdin
	if opts.Script != "" {
		f, err := os.Open(opts.Script)
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		in = f
	}

	info, err := openForEdit(ctx, rt, opts)
	if err != nil {
		return err
	}
	mgr := rt.Engine.Sessions()
	rt.Logger.Info("edit session started", "session_id", info.SessionID, "automation_id", info.AutomationID)
	printSystemMessage(stdout, "Editing %s (%d nodes, %d edges). Type help for commands.",
		info.AutomationID, len(info.Graph.Nodes), len(info.Graph.Edges))

	repl := &REPL{
		Sessions:  mgr,
		SessionID: info.SessionID,
		Out:       stdout,
		Prompt:    interactive,
	}
	if interactive {
		if render, err := tui.NewRenderer(0); err == nil {
			repl.Render = render
		}
	}

	runErr := repl.Run(ctx, newCancelReader(in, ctx.Done()))

	if snap, err := mgr.Snapshot(ctx, info.SessionID); err == nil && snap.Dirty {
		printSystemMessage(stdout, "Discarding unsaved changes to %s.", snap.AutomationID)
	}
	if ctx.Signal() == os.Interrupt {
		printSystemMessage(stdout, "Interrupted.")
	}
	_ = mgr.Close(ctx, info.SessionID)
	return runErr
}

func openForEdit(ctx *SignalContext, rt *Runtime, opts EditOptions) (*session.Info, error) {
	if opts.ImportPath == "" {
		return rt.Engine.Open(ctx, flowedit.OpenRequest{
			AutomationID: opts.AutomationID,
			TenantID:     opts.TenantID,
			Name:         opts.Name,
			TemplateID:   opts.TemplateID,
		})
	}

	a, err := flowedit.LoadAutomationFile(opts.ImportPath)
	if err != nil {
		return nil, err
	}
	req := session.OpenRequest{
		AutomationID: firstNonEmpty(opts.AutomationID, a.ID),
		TenantID:     firstNonEmpty(opts.TenantID, a.TenantID),
		Name:         firstNonEmpty(opts.Name, a.Name),
		Initial:      &a.Graph,
	}
	return rt.Engine.Sessions().Open(ctx, req)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
