package schema

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/expr-lang/expr"
)

// Type defines the contract for parameter validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// IntType validates integer values, optionally bounded below.
type IntType struct {
	min    int
	hasMin bool
}

func (t *IntType) Name() string {
	if t.hasMin {
		return fmt.Sprintf("int>=%d", t.min)
	}
	return "int"
}

func (t *IntType) Validate(value any) error {
	i, ok := AsInt(value)
	if !ok {
		return fmt.Errorf("expected int, got %T", value)
	}
	if t.hasMin && i < t.min {
		return fmt.Errorf("must be >= %d, got %d", t.min, i)
	}
	return nil
}

// ExpressionType validates that a value is a boolean expression that compiles.
// Variables are not bound at edit time, so only syntax and result type are checked.
type ExpressionType struct{}

func (t *ExpressionType) Name() string { return "expression" }

func (t *ExpressionType) Validate(value any) error {
	src, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected expression string, got %T", value)
	}
	if _, err := expr.Compile(src, expr.AllowUndefinedVariables(), expr.AsBool()); err != nil {
		return fmt.Errorf("invalid expression: %w", err)
	}
	return nil
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// NonNegativeInt creates an integer validator that rejects values below zero.
func NonNegativeInt() Type { return &IntType{min: 0, hasMin: true} }

// Expression creates a boolean expression validator.
func Expression() Type { return &ExpressionType{} }

// AsInt converts the integer-like value shapes produced by Go callers and
// JSON/YAML decoders into an int. Fractional floats are rejected.
func AsInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		return int(v), true
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), true
		}
		if f, err := v.Float64(); err == nil {
			return floatToInt(f)
		}
		return 0, false
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
