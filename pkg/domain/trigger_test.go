package domain

import (
	"encoding/json"
	"testing"
)

func TestResolveTriggerDisplay(t *testing.T) {
	tests := []struct {
		name   string
		kind   string
		label  string
		params map[string]any
		want   Display
	}{
		{
			name:   "Overdue Invoice With Days",
			kind:   "overdue-invoice",
			params: map[string]any{"days": 5},
			want:   Display{Icon: IconInvoice, Label: "Overdue Invoice", ParameterText: "5 days"},
		},
		{
			name:   "Days From JSON",
			kind:   "no-contact",
			params: map[string]any{"days": float64(12)},
			want:   Display{Icon: IconContact, Label: "No Contact", ParameterText: "12 days"},
		},
		{
			name:   "Days As json.Number",
			kind:   "overdue-invoice",
			params: map[string]any{"days": json.Number("0")},
			want:   Display{Icon: IconInvoice, Label: "Overdue Invoice", ParameterText: "0 days"},
		},
		{
			name: "Missing Days Omits Line",
			kind: "overdue-invoice",
			want: Display{Icon: IconInvoice, Label: "Overdue Invoice"},
		},
		{
			name:   "Invalid Days Omits Line",
			kind:   "overdue-invoice",
			params: map[string]any{"days": "soon"},
			want:   Display{Icon: IconInvoice, Label: "Overdue Invoice"},
		},
		{
			name:   "Negative Days Omits Line",
			kind:   "no-contact",
			params: map[string]any{"days": -3},
			want:   Display{Icon: IconContact, Label: "No Contact"},
		},
		{
			name:   "Unparameterised Kind Ignores Days",
			kind:   "broken-agreement",
			params: map[string]any{"days": 4},
			want:   Display{Icon: IconAgreement, Label: "Broken Agreement"},
		},
		{
			name:   "Explicit Label Wins",
			kind:   "overdue-invoice",
			label:  "Late > 30d",
			params: map[string]any{"days": 30},
			want:   Display{Icon: IconInvoice, Label: "Late > 30d", ParameterText: "30 days"},
		},
		{
			name: "Unknown Kind Falls Back",
			kind: "unknown-kind",
			want: Display{Icon: IconGeneric, Label: GenericTriggerLabel},
		},
		{
			name:   "Unknown Kind Never Shows Days",
			kind:   "payment-received",
			params: map[string]any{"days": 2},
			want:   Display{Icon: IconGeneric, Label: GenericTriggerLabel},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveTriggerDisplay(tt.kind, tt.label, tt.params)
			if got != tt.want {
				t.Errorf("ResolveTriggerDisplay() = %+v, want %+v", got, tt.want)
			}
			// Referential transparency: same inputs, same output.
			if again := ResolveTriggerDisplay(tt.kind, tt.label, tt.params); again != got {
				t.Errorf("second call = %+v, want %+v", again, got)
			}
		})
	}
}

func TestParseTrigger_UnknownKeepsRawTag(t *testing.T) {
	trig := ParseTrigger("promise-to-pay")
	if trig.Known() {
		t.Fatal("expected unknown trigger")
	}
	if trig.String() != "promise-to-pay" {
		t.Errorf("Raw = %q, want %q", trig.String(), "promise-to-pay")
	}
}

func TestKindFamily(t *testing.T) {
	tests := []struct {
		kind Kind
		want Family
	}{
		{"overdue-invoice", FamilyTrigger},
		{"broken-agreement", FamilyTrigger},
		{"no-contact", FamilyTrigger},
		{"action-send-message", FamilyAction},
		{"condition-expression", FamilyCondition},
		{"action-", FamilyUnknown},
		{"mystery", FamilyUnknown},
		{"", FamilyUnknown},
	}

	for _, tt := range tests {
		if got := tt.kind.Family(); got != tt.want {
			t.Errorf("Kind(%q).Family() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestResolveDisplay(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want Display
	}{
		{
			name: "Action Label From Kind",
			node: Node{ID: "a1", Kind: "action-send-whatsapp"},
			want: Display{Icon: IconAction, Label: "Send Whatsapp"},
		},
		{
			name: "Action Explicit Label",
			node: Node{ID: "a1", Kind: "action-send-message", Label: "Remind"},
			want: Display{Icon: IconAction, Label: "Remind"},
		},
		{
			name: "Condition",
			node: Node{ID: "c1", Kind: "condition-expression"},
			want: Display{Icon: IconCondition, Label: "Expression"},
		},
		{
			name: "Trigger",
			node: Node{ID: "t1", Kind: "overdue-invoice", Parameters: map[string]any{"days": 3}},
			want: Display{Icon: IconInvoice, Label: "Overdue Invoice", ParameterText: "3 days"},
		},
		{
			name: "Unknown",
			node: Node{ID: "x", Kind: "from-the-future"},
			want: Display{Icon: IconGeneric, Label: GenericTriggerLabel},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveDisplay(tt.node); got != tt.want {
				t.Errorf("ResolveDisplay() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
