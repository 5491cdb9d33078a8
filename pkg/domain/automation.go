package domain

import "time"

// Automation is the persisted form of one automation graph.
// Every automation belongs to exactly one tenant.
type Automation struct {
	ID        string    `json:"id" yaml:"id"`
	TenantID  string    `json:"tenant_id" yaml:"tenant_id"`
	Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
	Graph     Graph     `json:"graph" yaml:"graph"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Clone returns a deep copy of the automation.
func (a *Automation) Clone() *Automation {
	if a == nil {
		return nil
	}
	out := *a
	out.Graph = a.Graph.Clone()
	return &out
}

// Template is a reusable starting graph for new automations.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Graph       Graph  `json:"graph"`
}
