package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/recoverly/flowedit/internal/presentation/graph"
	"github.com/recoverly/flowedit/internal/presentation/tui"
	"github.com/recoverly/flowedit/pkg/domain"
	"github.com/recoverly/flowedit/pkg/editor"
	"github.com/recoverly/flowedit/pkg/session"
)

const replHelp = `Commands:
  add <id|-> <kind> [x y]                 add a node ("-" generates an id)
  rm <node>                               remove a node and its edges
  move <node> <x> <y>                     move a node
  set <node> <param> <value...>           set one parameter
  label <node> [text...]                  set or clear the display label
  connect <edge|-> <from> <to> [out] [in] add an edge, with optional anchors
  disconnect <edge>                       remove an edge
  retarget <edge> <from|-> <to|->         move edge endpoints ("-" keeps one)
  edit <json>                             apply a raw edit object
  undo | redo                             step through history
  show | graph | json                     print summary, mermaid or JSON
  save                                    persist the automation
  help | quit
`

// REPL edits one open session line by line.
type REPL struct {
	Sessions  *session.Manager
	SessionID string
	Out       io.Writer
	// Render formats markdown for show. Nil prints it raw.
	Render func(string) (string, error)
	// Prompt prints "> " before each line; off for pipes.
	Prompt bool
	NewID  func(prefix string) string

	last []string
}

// Run reads commands from in until quit, EOF or cancellation.
// Rejected edits are reported and the loop continues.
func (r *REPL) Run(ctx context.Context, in io.Reader) error {
	if r.NewID == nil {
		r.NewID = func(prefix string) string { return prefix + "-" + uuid.NewString()[:8] }
	}
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 1024), 16*MaxLineSize)

	for {
		if r.Prompt {
			fmt.Fprint(r.Out, "> ")
		}
		if !scanner.Scan() {
			err := scanner.Err()
			if err == nil || isInterrupted(err) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return nil
		}

		line, err := sanitizeLine(scanner.Text())
		if err != nil {
			fmt.Fprintf(r.Out, "! %v\n", err)
			continue
		}
		quit, err := r.Exec(ctx, line)
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				return err
			}
			fmt.Fprintf(r.Out, "! %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// Exec runs one command line.
func (r *REPL) Exec(ctx context.Context, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		fmt.Fprint(r.Out, replHelp)
		return false, nil
	case "undo", "redo":
		return false, r.step(ctx, cmd)
	case "show":
		return false, r.show(ctx)
	case "graph":
		return false, r.graph(ctx)
	case "json":
		return false, r.json(ctx)
	case "save":
		a, err := r.Sessions.Save(ctx, r.SessionID)
		if err != nil {
			return false, err
		}
		printSystemMessage(r.Out, "Saved %s (%d nodes, %d edges).", a.ID, len(a.Graph.Nodes), len(a.Graph.Edges))
		return false, nil
	case "edit":
		raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))
		var m map[string]any
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return false, fmt.Errorf("edit expects a JSON object: %w", err)
		}
		e, err := editor.DecodeEdit(m)
		if err != nil {
			return false, err
		}
		return false, r.apply(ctx, e)
	}

	e, err := r.parseEdit(cmd, args)
	if err != nil {
		return false, err
	}
	return false, r.apply(ctx, e)
}

func (r *REPL) parseEdit(cmd string, args []string) (editor.Edit, error) {
	switch cmd {
	case "add":
		if len(args) != 2 && len(args) != 4 {
			return editor.Edit{}, usage("add <id|-> <kind> [x y]")
		}
		kind := domain.Kind(args[1])
		id := args[0]
		if id == "-" {
			id = r.NewID(string(kind.Family()))
		}
		pos, err := r.position(args[2:])
		if err != nil {
			return editor.Edit{}, err
		}
		return editor.AddNode(id, kind, pos, nil), nil
	case "rm":
		if len(args) != 1 {
			return editor.Edit{}, usage("rm <node>")
		}
		return editor.RemoveNode(args[0]), nil
	case "move":
		if len(args) != 3 {
			return editor.Edit{}, usage("move <node> <x> <y>")
		}
		pos, err := r.position(args[1:])
		if err != nil {
			return editor.Edit{}, err
		}
		return editor.MoveNode(args[0], pos), nil
	case "set":
		if len(args) < 3 {
			return editor.Edit{}, usage("set <node> <param> <value...>")
		}
		return editor.UpdateParameters(args[0], map[string]any{
			args[1]: parseValue(strings.Join(args[2:], " ")),
		}), nil
	case "label":
		if len(args) < 1 {
			return editor.Edit{}, usage("label <node> [text...]")
		}
		return editor.SetLabel(args[0], strings.Join(args[1:], " ")), nil
	case "connect":
		if len(args) < 3 || len(args) > 5 {
			return editor.Edit{}, usage("connect <edge|-> <from> <to> [out] [in]")
		}
		id := args[0]
		if id == "-" {
			id = r.NewID("edge")
		}
		e := editor.AddEdge(id, args[1], args[2])
		if len(args) > 3 {
			e.SourceAnchor = args[3]
		}
		if len(args) > 4 {
			e.TargetAnchor = args[4]
		}
		return e, nil
	case "disconnect":
		if len(args) != 1 {
			return editor.Edit{}, usage("disconnect <edge>")
		}
		return editor.RemoveEdge(args[0]), nil
	case "retarget":
		if len(args) != 3 {
			return editor.Edit{}, usage("retarget <edge> <from|-> <to|->")
		}
		return editor.RetargetEdge(args[0], domain.Endpoints{
			Source: keep(args[1]),
			Target: keep(args[2]),
		}), nil
	}
	return editor.Edit{}, fmt.Errorf("unknown command %q (try help)", cmd)
}

func (r *REPL) apply(ctx context.Context, e editor.Edit) error {
	info, err := r.Sessions.Apply(ctx, r.SessionID, e)
	if err != nil {
		return err
	}
	r.status(string(e.Op), info)
	return nil
}

func (r *REPL) step(ctx context.Context, cmd string) error {
	move := r.Sessions.Undo
	if cmd == "redo" {
		move = r.Sessions.Redo
	}
	info, moved, err := move(ctx, r.SessionID)
	if err != nil {
		return err
	}
	if !moved {
		fmt.Fprintf(r.Out, "nothing to %s\n", cmd)
		return nil
	}
	r.status(cmd, info)
	return nil
}

// status prints one line per committed change. "*" marks unsaved work.
func (r *REPL) status(what string, info *session.Info) {
	dirty := ""
	if info.Dirty {
		dirty = " *"
	}
	fmt.Fprintf(r.Out, "%s: %d nodes, %d edges, history %d/%d%s\n",
		what, len(info.Graph.Nodes), len(info.Graph.Edges), info.HistoryPos+1, info.HistoryLen, dirty)
}

func (r *REPL) snapshot(ctx context.Context) (*session.Info, error) {
	return r.Sessions.Snapshot(ctx, r.SessionID)
}

func (r *REPL) show(ctx context.Context) error {
	info, err := r.snapshot(ctx)
	if err != nil {
		return err
	}
	md := tui.Summary(&domain.Automation{
		ID:       info.AutomationID,
		TenantID: info.TenantID,
		Name:     info.Name,
		Graph:    info.Graph,
	})
	if r.Render != nil {
		if md, err = r.Render(md); err != nil {
			return err
		}
	}
	fmt.Fprintln(r.Out, strings.TrimRight(md, "\n"))
	return nil
}

func (r *REPL) graph(ctx context.Context) error {
	info, err := r.snapshot(ctx)
	if err != nil {
		return err
	}
	var overlay *graph.Overlay
	if r.last != nil {
		overlay = &graph.Overlay{Changed: changedSince(r.last, info.Graph)}
	}
	r.last = nodeKeys(info.Graph)
	fmt.Fprint(r.Out, graph.GenerateMermaid(info.Graph, overlay))
	return nil
}

func (r *REPL) json(ctx context.Context) error {
	info, err := r.snapshot(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(r.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(info.Graph)
}

func (r *REPL) position(args []string) (domain.Position, error) {
	if len(args) == 0 {
		return domain.Position{}, nil
	}
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return domain.Position{}, fmt.Errorf("invalid x %q", args[0])
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return domain.Position{}, fmt.Errorf("invalid y %q", args[1])
	}
	return domain.Position{X: x, Y: y}, nil
}

// nodeKeys fingerprints every node so the next graph command can highlight changes.
func nodeKeys(g domain.Graph) []string {
	keys := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		b, _ := json.Marshal(n)
		keys = append(keys, string(b))
	}
	return keys
}

func changedSince(prev []string, g domain.Graph) []string {
	seen := make(map[string]bool, len(prev))
	for _, k := range prev {
		seen[k] = true
	}
	var changed []string
	for i, k := range nodeKeys(g) {
		if !seen[k] {
			changed = append(changed, g.Nodes[i].ID)
		}
	}
	return changed
}

func parseValue(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

func keep(s string) string {
	if s == "-" {
		return ""
	}
	return s
}

func usage(s string) error {
	return fmt.Errorf("usage: %s", s)
}
