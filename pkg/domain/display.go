package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ResolveDisplay resolves the display of any node.
// Triggers and unknown kinds go through ResolveTriggerDisplay, so an unrecognised
// kind still renders as a generic trigger. Actions and conditions derive their
// default label from the kind suffix ("action-send-message" -> "Send Message").
func ResolveDisplay(n Node) Display {
	switch n.Kind.Family() {
	case FamilyAction:
		return familyDisplay(n, IconAction, actionPrefix)
	case FamilyCondition:
		return familyDisplay(n, IconCondition, conditionPrefix)
	case FamilyTrigger, FamilyUnknown:
		return ResolveTriggerDisplay(string(n.Kind), n.Label, n.Parameters)
	}
	return ResolveTriggerDisplay(string(n.Kind), n.Label, n.Parameters)
}

func familyDisplay(n Node, icon IconCategory, prefix string) Display {
	label := n.Label
	if label == "" {
		words := strings.ReplaceAll(strings.TrimPrefix(string(n.Kind), prefix), "-", " ")
		// Casers carry state, so one is built per call.
		label = cases.Title(language.English).String(words)
	}
	return Display{Icon: icon, Label: label}
}
