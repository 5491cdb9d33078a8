package domain

import (
	"fmt"

	"github.com/recoverly/flowedit/pkg/schema"
)

// TriggerKind enumerates the trigger taxonomy.
type TriggerKind int

const (
	// TriggerUnknown is any tag outside the taxonomy. The raw tag is kept on Trigger.
	TriggerUnknown TriggerKind = iota
	TriggerOverdueInvoice
	TriggerBrokenAgreement
	TriggerNoContact
)

// Wire tags of the known trigger kinds.
const (
	TagOverdueInvoice  = "overdue-invoice"
	TagBrokenAgreement = "broken-agreement"
	TagNoContact       = "no-contact"
)

// IconCategory is the iconographic group a renderer uses for a node.
type IconCategory string

const (
	IconInvoice   IconCategory = "invoice"
	IconAgreement IconCategory = "agreement"
	IconContact   IconCategory = "contact"
	IconCondition IconCategory = "condition"
	IconAction    IconCategory = "action"
	IconGeneric   IconCategory = "generic"
)

// GenericTriggerLabel is shown for trigger tags outside the taxonomy.
const GenericTriggerLabel = "Trigger"

// ParamDays is the numeric parameter of the day-based triggers.
const ParamDays = "days"

// Trigger is a parsed trigger tag. Unknown tags parse to TriggerUnknown with Raw set.
type Trigger struct {
	Kind TriggerKind
	Raw  string
}

// ParseTrigger maps a tag onto the taxonomy. It never fails.
func ParseTrigger(tag string) Trigger {
	switch tag {
	case TagOverdueInvoice:
		return Trigger{Kind: TriggerOverdueInvoice, Raw: tag}
	case TagBrokenAgreement:
		return Trigger{Kind: TriggerBrokenAgreement, Raw: tag}
	case TagNoContact:
		return Trigger{Kind: TriggerNoContact, Raw: tag}
	default:
		return Trigger{Kind: TriggerUnknown, Raw: tag}
	}
}

// Known reports whether the trigger belongs to the taxonomy.
func (t Trigger) Known() bool { return t.Kind != TriggerUnknown }

func (t Trigger) String() string { return t.Raw }

// Label returns the taxonomy default label.
func (t Trigger) Label() string {
	switch t.Kind {
	case TriggerOverdueInvoice:
		return "Overdue Invoice"
	case TriggerBrokenAgreement:
		return "Broken Agreement"
	case TriggerNoContact:
		return "No Contact"
	case TriggerUnknown:
		return GenericTriggerLabel
	}
	return GenericTriggerLabel
}

// Icon returns the icon category of the trigger.
func (t Trigger) Icon() IconCategory {
	switch t.Kind {
	case TriggerOverdueInvoice:
		return IconInvoice
	case TriggerBrokenAgreement:
		return IconAgreement
	case TriggerNoContact:
		return IconContact
	case TriggerUnknown:
		return IconGeneric
	}
	return IconGeneric
}

// TakesDays reports whether the trigger is parameterised by a day count.
func (t Trigger) TakesDays() bool {
	switch t.Kind {
	case TriggerOverdueInvoice, TriggerNoContact:
		return true
	case TriggerBrokenAgreement, TriggerUnknown:
		return false
	}
	return false
}

// Display is the render-ready description of a node.
type Display struct {
	Icon          IconCategory `json:"icon"`
	Label         string       `json:"label"`
	ParameterText string       `json:"parameter_text,omitempty"`
}

// ResolveTriggerDisplay resolves the display of a trigger node.
// An explicit label wins over the taxonomy default. A valid days parameter on a
// kind that supports it renders as "<days> days"; anything else omits the line.
// The function is total and pure, so it is safe to call on every render pass.
func ResolveTriggerDisplay(tag, explicitLabel string, parameters map[string]any) Display {
	trig := ParseTrigger(tag)

	d := Display{
		Icon:  trig.Icon(),
		Label: trig.Label(),
	}
	if explicitLabel != "" {
		d.Label = explicitLabel
	}

	if trig.TakesDays() {
		if raw, ok := parameters[ParamDays]; ok {
			if days, ok := schema.AsInt(raw); ok && days >= 0 {
				d.ParameterText = fmt.Sprintf("%d days", days)
			}
		}
	}
	return d
}
