package domain

import (
	"github.com/recoverly/flowedit/pkg/schema"
)

// Position is the editor layout of a node. It has no semantic effect.
type Position struct {
	X float64 `json:"x" yaml:"x" mapstructure:"x"`
	Y float64 `json:"y" yaml:"y" mapstructure:"y"`
}

// Node represents a vertex of the automation graph.
type Node struct {
	ID         string         `json:"id" yaml:"id" mapstructure:"id"`
	Kind       Kind           `json:"kind" yaml:"kind" mapstructure:"kind"`
	Position   Position       `json:"position" yaml:"position" mapstructure:"position"`
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty" mapstructure:"parameters"`

	// Label overrides the display label resolved from the kind.
	Label string `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
}

// NewNode creates a node. The id must be non-empty; the kind is never rejected,
// unrecognised tags simply classify as FamilyUnknown.
func NewNode(id string, kind Kind) (Node, error) {
	if id == "" {
		return Node{}, invalid("add-node", "node id is required")
	}
	return Node{ID: id, Kind: kind}, nil
}

// Family is shorthand for n.Kind.Family().
func (n Node) Family() Family { return n.Kind.Family() }

// ParameterSchema returns the parameter schema for a kind.
// Kinds without declared parameters return nil, which accepts anything.
func ParameterSchema(kind Kind) schema.Schema {
	switch kind.Family() {
	case FamilyTrigger:
		if ParseTrigger(string(kind)).TakesDays() {
			return schema.Schema{ParamDays: schema.NonNegativeInt()}
		}
	case FamilyCondition:
		return schema.Schema{ParamExpression: schema.Expression()}
	case FamilyAction:
		return schema.Schema{
			ParamTemplate:     schema.String(),
			ParamDelayMinutes: schema.NonNegativeInt(),
		}
	case FamilyUnknown:
	}
	return nil
}

// Parameter names used by the built-in families.
const (
	ParamExpression   = "expression"
	ParamTemplate     = "template"
	ParamDelayMinutes = "delay_minutes"
)

// checkParameters normalises and validates parameters for a kind. The result is
// a deep copy and shares no containers with params.
func checkParameters(op string, kind Kind, params map[string]any) (map[string]any, error) {
	s := ParameterSchema(kind)
	normalized := schema.Normalize(s, cloneMap(params))
	if err := schema.Validate(s, normalized); err != nil {
		return nil, &InvalidOperationError{Op: op, Reason: "parameters rejected", Err: err}
	}
	return normalized, nil
}

func (n Node) clone() Node {
	n.Parameters = cloneMap(n.Parameters)
	return n
}
