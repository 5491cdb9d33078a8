package editor

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/recoverly/flowedit/pkg/domain"
)

// Op names an edit operation.
type Op string

const (
	OpAddNode          Op = "add-node"
	OpRemoveNode       Op = "remove-node"
	OpMoveNode         Op = "move-node"
	OpUpdateParameters Op = "update-parameters"
	OpSetLabel         Op = "set-label"
	OpAddEdge          Op = "add-edge"
	OpRemoveEdge       Op = "remove-edge"
	OpRetargetEdge     Op = "retarget-edge"
)

// Ops lists every supported operation in a stable order.
var Ops = []Op{
	OpAddNode, OpRemoveNode, OpMoveNode, OpUpdateParameters, OpSetLabel,
	OpAddEdge, OpRemoveEdge, OpRetargetEdge,
}

// Edit is one user-issued structural change. Which fields matter depends on Op.
type Edit struct {
	Op Op `json:"op" mapstructure:"op"`

	NodeID     string           `json:"node_id,omitempty" mapstructure:"node_id"`
	Kind       domain.Kind      `json:"kind,omitempty" mapstructure:"kind"`
	Position   *domain.Position `json:"position,omitempty" mapstructure:"position"`
	Parameters map[string]any   `json:"parameters,omitempty" mapstructure:"parameters"`
	Label      *string          `json:"label,omitempty" mapstructure:"label"`

	EdgeID       string `json:"edge_id,omitempty" mapstructure:"edge_id"`
	Source       string `json:"source,omitempty" mapstructure:"source"`
	Target       string `json:"target,omitempty" mapstructure:"target"`
	SourceAnchor string `json:"source_anchor,omitempty" mapstructure:"source_anchor"`
	TargetAnchor string `json:"target_anchor,omitempty" mapstructure:"target_anchor"`
}

// Apply runs the edit against g and returns the resulting graph.
// On error the returned graph is g itself.
func (e Edit) Apply(g domain.Graph) (domain.Graph, error) {
	switch e.Op {
	case OpAddNode:
		n, err := domain.NewNode(e.NodeID, e.Kind)
		if err != nil {
			return g, err
		}
		if e.Position != nil {
			n.Position = *e.Position
		}
		n.Parameters = e.Parameters
		if e.Label != nil {
			n.Label = *e.Label
		}
		return g.AddNode(n)

	case OpRemoveNode:
		return g.RemoveNode(e.NodeID)

	case OpMoveNode:
		if e.Position == nil {
			return g, &domain.InvalidOperationError{Op: string(e.Op), Reason: "position is required"}
		}
		return g.MoveNode(e.NodeID, *e.Position)

	case OpUpdateParameters:
		if len(e.Parameters) == 0 {
			return g, &domain.InvalidOperationError{Op: string(e.Op), Reason: "parameters are required"}
		}
		return g.UpdateParameters(e.NodeID, e.Parameters)

	case OpSetLabel:
		label := ""
		if e.Label != nil {
			label = *e.Label
		}
		return g.SetLabel(e.NodeID, label)

	case OpAddEdge:
		return g.AddEdge(domain.Edge{
			ID:           e.EdgeID,
			Source:       e.Source,
			Target:       e.Target,
			SourceAnchor: e.SourceAnchor,
			TargetAnchor: e.TargetAnchor,
		})

	case OpRemoveEdge:
		return g.RemoveEdge(e.EdgeID)

	case OpRetargetEdge:
		to := domain.Endpoints{
			Source:       e.Source,
			Target:       e.Target,
			SourceAnchor: e.SourceAnchor,
			TargetAnchor: e.TargetAnchor,
		}
		if to == (domain.Endpoints{}) {
			return g, &domain.InvalidOperationError{Op: string(e.Op), Reason: "no endpoint to change"}
		}
		return g.RetargetEdge(e.EdgeID, to)

	case "":
		return g, &domain.InvalidOperationError{Op: "edit", Reason: "op is required"}
	}
	return g, &domain.InvalidOperationError{Op: string(e.Op), Reason: "unsupported operation"}
}

// AddNode builds an add-node edit.
func AddNode(id string, kind domain.Kind, pos domain.Position, params map[string]any) Edit {
	return Edit{Op: OpAddNode, NodeID: id, Kind: kind, Position: &pos, Parameters: params}
}

// RemoveNode builds a remove-node edit.
func RemoveNode(id string) Edit { return Edit{Op: OpRemoveNode, NodeID: id} }

// MoveNode builds a move-node edit.
func MoveNode(id string, pos domain.Position) Edit {
	return Edit{Op: OpMoveNode, NodeID: id, Position: &pos}
}

// UpdateParameters builds an update-parameters edit. A nil value removes the key.
func UpdateParameters(id string, params map[string]any) Edit {
	return Edit{Op: OpUpdateParameters, NodeID: id, Parameters: params}
}

// SetLabel builds a set-label edit. An empty label clears the override.
func SetLabel(id, label string) Edit {
	return Edit{Op: OpSetLabel, NodeID: id, Label: &label}
}

// AddEdge builds an add-edge edit.
func AddEdge(id, source, target string) Edit {
	return Edit{Op: OpAddEdge, EdgeID: id, Source: source, Target: target}
}

// RemoveEdge builds a remove-edge edit.
func RemoveEdge(id string) Edit { return Edit{Op: OpRemoveEdge, EdgeID: id} }

// RetargetEdge builds a retarget-edge edit.
func RetargetEdge(id string, to domain.Endpoints) Edit {
	return Edit{
		Op:           OpRetargetEdge,
		EdgeID:       id,
		Source:       to.Source,
		Target:       to.Target,
		SourceAnchor: to.SourceAnchor,
		TargetAnchor: to.TargetAnchor,
	}
}

// DecodeEdit converts a generic map (a decoded JSON body or MCP tool arguments)
// into an Edit. Unknown keys are rejected so that typos surface as errors.
func DecodeEdit(raw map[string]any) (Edit, error) {
	var e Edit
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &e,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return Edit{}, fmt.Errorf("failed to build edit decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return Edit{}, &domain.InvalidOperationError{Op: "decode", Reason: "malformed edit", Err: err}
	}
	return e, nil
}
