package flowedit

import (
	"github.com/recoverly/flowedit/pkg/domain"
	"github.com/recoverly/flowedit/pkg/dsl"
)

// BuiltinTemplates returns the starting graphs offered when no template
// directory is configured. Each call returns fresh copies.
func BuiltinTemplates() []domain.Template {
	return []domain.Template{
		{
			ID:          "overdue-reminder",
			Name:        "Overdue reminder",
			Description: "Send a reminder five days after an invoice falls overdue.",
			Graph:       overdueReminder(),
		},
		{
			ID:          "broken-agreement-escalation",
			Name:        "Broken agreement escalation",
			Description: "Escalate large balances when a payment agreement is broken, otherwise remind.",
			Graph:       brokenAgreementEscalation(),
		},
		{
			ID:          "no-contact-follow-up",
			Name:        "No contact follow-up",
			Description: "Call the debtor after ten days without contact, then message an hour later.",
			Graph:       noContactFollowUp(),
		},
	}
}

func overdueReminder() domain.Graph {
	b := dsl.New()
	b.Trigger("t1", domain.TagOverdueInvoice).Days(5).Go("a1")
	b.Action("a1", "send-message").At(240, 0).Label("Send reminder").Template("overdue-reminder")
	return b.MustBuild()
}

func brokenAgreementEscalation() domain.Graph {
	b := dsl.New()
	b.Trigger("t1", domain.TagBrokenAgreement).Days(2).Go("c1")
	b.Condition("c1", "balance > 1000").At(240, 0).Label("Large balance?").
		Branch("yes", "a1").
		Branch("no", "a2")
	b.Action("a1", "assign-agent").At(480, -80).Label("Escalate to agent")
	b.Action("a2", "send-message").At(480, 80).Label("Remind").Template("agreement-broken")
	return b.MustBuild()
}

func noContactFollowUp() domain.Graph {
	b := dsl.New()
	b.Trigger("t1", domain.TagNoContact).Days(10).Go("a1")
	b.Action("a1", "schedule-call").At(240, 0).Label("Schedule call").Go("a2")
	b.Action("a2", "send-message").At(480, 0).Label("Follow-up message").
		Template("no-contact").
		Delay(60)
	return b.MustBuild()
}
