// Package manifest describes the per-workspace tool catalog: which tools a
// workspace may call, their argument shapes, and the policy metadata the
// policy engine and broker enforce.
package manifest

import "time"

// ArgType is the closed set of primitive argument types.
type ArgType string

const (
	ArgString  ArgType = "string"
	ArgInteger ArgType = "integer"
	ArgNumber  ArgType = "number"
	ArgBoolean ArgType = "boolean"
)

// ArgSpec declares one argument of a tool.
type ArgSpec struct {
	Name     string  `yaml:"name" json:"name"`
	Type     ArgType `yaml:"type" json:"type"`
	Required bool    `yaml:"required" json:"required"`
	// Slot names the conversation slot the policy engine may inject when the
	// planner left the argument empty. Empty means no slot binding.
	Slot string `yaml:"slot,omitempty" json:"slot,omitempty"`
}

// ToolPolicy is the policy metadata attached to a manifest entry.
type ToolPolicy struct {
	MaxRPSPerWorkspace float64 `yaml:"max_rps_per_workspace" json:"max_rps_per_workspace"`
	RequiresWorkspace  bool    `yaml:"requires_workspace" json:"requires_workspace"`
	Idempotent         bool    `yaml:"idempotent" json:"idempotent"`
	Write              bool    `yaml:"write" json:"write"`
}

// Entry is one callable tool of a workspace.
type Entry struct {
	Name      string     `yaml:"name" json:"name"`
	Args      []ArgSpec  `yaml:"args" json:"args"`
	Policy    ToolPolicy `yaml:"policy" json:"policy"`
	TimeoutMS int        `yaml:"timeout_ms" json:"timeout_ms"`
}

// Timeout returns the per-call timeout, or def when the entry carries none.
func (e Entry) Timeout(def time.Duration) time.Duration {
	if e.TimeoutMS <= 0 {
		return def
	}
	return time.Duration(e.TimeoutMS) * time.Millisecond
}

// RequiredArgs returns the names of required arguments, in declaration order.
func (e Entry) RequiredArgs() []string {
	var names []string
	for _, a := range e.Args {
		if a.Required {
			names = append(names, a.Name)
		}
	}
	return names
}

// Manifest is the tool list of one workspace. A workspace with no manifest
// is represented by an empty Manifest: every planned call fails policy.
type Manifest struct {
	WorkspaceID string
	Entries     []Entry
}

// Lookup returns the entry for a tool name.
func (m Manifest) Lookup(tool string) (Entry, bool) {
	for _, e := range m.Entries {
		if e.Name == tool {
			return e, true
		}
	}
	return Entry{}, false
}

// Names returns every tool name, in catalog order.
func (m Manifest) Names() []string {
	names := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		names = append(names, e.Name)
	}
	return names
}
