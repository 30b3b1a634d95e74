package config

import (
	"context"
	"fmt"
	"sort"

	"github.com/turnos-ai/orchestrator/pkg/manifest"
)

// VerticalServicios is the only vertical with a built-in tool set today.
const VerticalServicios = "servicios"

// Catalog is the merged tool catalog: built-in servicios entries plus
// per-workspace YAML overlays. It implements manifest.Source.
type Catalog struct {
	Workspaces map[string]WorkspaceOverlay `yaml:"workspaces"`
}

// WorkspaceOverlay declares one tenant and its deviations from the built-in
// catalog. A workspace absent from the catalog has NO manifest: every plan
// for it fails policy, so unknown tenants never reach a tool.
type WorkspaceOverlay struct {
	Vertical string                  `yaml:"vertical"`
	Disable  []string                `yaml:"disable,omitempty"`
	Tools    map[string]ToolOverride `yaml:"tools,omitempty"`
	Extra    []manifest.Entry        `yaml:"extra,omitempty"`
}

// ToolOverride adjusts a built-in entry for one workspace. Nil fields keep
// the built-in value.
type ToolOverride struct {
	TimeoutMS *int               `yaml:"timeout_ms,omitempty"`
	MaxRPS    *float64           `yaml:"max_rps_per_workspace,omitempty"`
	Args      []manifest.ArgSpec `yaml:"args,omitempty"`
}

// Fetch implements manifest.Source. Unknown workspaces yield an empty list.
func (c *Catalog) Fetch(_ context.Context, workspaceID string) ([]manifest.Entry, error) {
	overlay, ok := c.Workspaces[workspaceID]
	if !ok {
		return nil, nil
	}

	disabled := make(map[string]bool, len(overlay.Disable))
	for _, name := range overlay.Disable {
		disabled[name] = true
	}

	var entries []manifest.Entry
	if overlay.Vertical == VerticalServicios || overlay.Vertical == "" {
		for _, e := range builtinCatalog() {
			if disabled[e.Name] {
				continue
			}
			if override, ok := overlay.Tools[e.Name]; ok {
				e = applyOverride(e, override)
			}
			entries = append(entries, e)
		}
	}
	for _, e := range overlay.Extra {
		if !disabled[e.Name] {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func applyOverride(e manifest.Entry, o ToolOverride) manifest.Entry {
	if o.TimeoutMS != nil {
		e.TimeoutMS = *o.TimeoutMS
	}
	if o.MaxRPS != nil {
		e.Policy.MaxRPSPerWorkspace = *o.MaxRPS
	}
	if len(o.Args) > 0 {
		e.Args = o.Args
	}
	return e
}

// WorkspaceIDs returns the declared workspace ids, sorted.
func (c *Catalog) WorkspaceIDs() []string {
	ids := make([]string, 0, len(c.Workspaces))
	for id := range c.Workspaces {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// validate rejects overlays that reference tools absent from the built-in
// catalog and extra entries without a name or argument types.
func (c *Catalog) validate() error {
	builtin := make(map[string]bool)
	for _, e := range builtinCatalog() {
		builtin[e.Name] = true
	}

	for wsID, overlay := range c.Workspaces {
		for _, name := range overlay.Disable {
			if !builtin[name] {
				return fmt.Errorf("workspace %s disables unknown tool %q", wsID, name)
			}
		}
		for name := range overlay.Tools {
			if !builtin[name] {
				return fmt.Errorf("workspace %s overrides unknown tool %q", wsID, name)
			}
		}
		for _, e := range overlay.Extra {
			if e.Name == "" {
				return fmt.Errorf("workspace %s declares an extra tool without a name", wsID)
			}
			for _, a := range e.Args {
				switch a.Type {
				case manifest.ArgString, manifest.ArgInteger, manifest.ArgNumber, manifest.ArgBoolean:
				default:
					return fmt.Errorf("workspace %s tool %s arg %s: unknown type %q",
						wsID, e.Name, a.Name, a.Type)
				}
			}
		}
	}
	return nil
}
