package schema

import (
	"encoding/json"
	"testing"
)

func TestIntType_ValueShapes(t *testing.T) {
	typ := &IntType{}

	if typ.Name() != "int" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "int")
	}

	tests := []struct {
		value   any
		wantErr bool
	}{
		{42, false},
		{int8(42), false},
		{int64(-3), false},
		{uint16(7), false},
		{float64(42), false},   // whole number from encoding/json
		{float64(42.5), true},  // not whole
		{json.Number("12"), false},
		{json.Number("1.5"), true},
		{"42", true},
		{true, true},
		{nil, true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestNonNegativeIntType(t *testing.T) {
	typ := NonNegativeInt()

	if typ.Name() != "int>=0" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "int>=0")
	}

	tests := []struct {
		value   any
		wantErr bool
	}{
		{0, false},
		{30, false},
		{float64(5), false},
		{-1, true},
		{float64(-2), true},
		{"5", true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestExpressionType(t *testing.T) {
	typ := Expression()

	tests := []struct {
		value   any
		wantErr bool
	}{
		{"days_overdue > 3", false},
		{"amount >= 100 && status == 'open'", false},
		{"true", false},
		{"days_overdue >", true},
		{"1 + 2", true}, // not boolean
		{42, true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestStringType(t *testing.T) {
	if err := String().Validate("hello"); err != nil {
		t.Errorf("String().Validate(hello) = %v", err)
	}
	if err := String().Validate(3); err == nil {
		t.Error("String().Validate(3) should fail")
	}
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
		ok    bool
	}{
		{"int", 5, 5, true},
		{"float whole", float64(10), 10, true},
		{"float fraction", 1.25, 0, false},
		{"json number", json.Number("3"), 3, true},
		{"string", "3", 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsInt(tt.value)
			if ok != tt.ok || got != tt.want {
				t.Errorf("AsInt(%v) = (%d, %v), want (%d, %v)", tt.value, got, ok, tt.want, tt.ok)
			}
		})
	}
}
