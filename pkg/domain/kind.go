package domain

import "strings"

// Kind is the raw kind tag stored on a node (e.g. "overdue-invoice", "action-send-message").
type Kind string

// Family groups node kinds by the role they play in an automation.
type Family string

const (
	FamilyTrigger   Family = "trigger"
	FamilyCondition Family = "condition"
	FamilyAction    Family = "action"
	// FamilyUnknown tags kinds this build does not recognise. They are kept verbatim.
	FamilyUnknown Family = "unknown"
)

const (
	actionPrefix    = "action-"
	conditionPrefix = "condition-"
)

// Family classifies the kind. It never fails: unrecognised tags are FamilyUnknown.
func (k Kind) Family() Family {
	switch {
	case ParseTrigger(string(k)).Known():
		return FamilyTrigger
	case strings.HasPrefix(string(k), actionPrefix) && len(k) > len(actionPrefix):
		return FamilyAction
	case strings.HasPrefix(string(k), conditionPrefix) && len(k) > len(conditionPrefix):
		return FamilyCondition
	default:
		return FamilyUnknown
	}
}

func (k Kind) String() string { return string(k) }
