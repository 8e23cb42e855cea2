// Package engine dispatches wrapper invocations through the full pipeline:
// schema validation, security gating, the mutation confirmation protocol,
// the transport call, and response compression. The engine is stateless
// between invocations; the audit sink is the only shared mutable resource
// and is reached through its narrow append interface.
package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/toolgate/toolgate/internal/filter"
	"github.com/toolgate/toolgate/internal/gate"
	"github.com/toolgate/toolgate/internal/validate"
)

// Descriptor declares one wrapped operation on a tool-provider server.
// Descriptors are immutable after registration and looked up by
// "<server>.<operation>" at dispatch time.
type Descriptor struct {
	Server      string
	Operation   string
	Description string
	Input       *validate.Object
	Checks      []gate.Check
	Filter      filter.Spec
	Mutating    bool
	// Preview extracts the current and proposed identity fields for the
	// confirmation preview and the audit entry. Required when Mutating.
	Preview func(args map[string]any) (current, proposed map[string]any)
}

// Name returns the dispatch identity.
func (d *Descriptor) Name() string { return d.Server + "." + d.Operation }

// Registry holds the registered descriptors. Registration happens once at
// wiring time; lookups afterwards are read-only.
type Registry struct {
	tools map[string]*Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Descriptor)}
}

// Register adds d, rejecting duplicates and malformed descriptors. Mutating
// descriptors get the confirmed flag appended to their input schema so the
// two-call protocol needs no per-wrapper plumbing.
func (r *Registry) Register(d *Descriptor) error {
	switch {
	case d.Server == "" || d.Operation == "":
		return fmt.Errorf("descriptor missing server or operation name")
	case strings.Contains(d.Server, ".") || strings.Contains(d.Operation, "."):
		return fmt.Errorf("%s.%s: server and operation must not contain dots", d.Server, d.Operation)
	case d.Input == nil:
		return fmt.Errorf("%s: missing input schema", d.Name())
	case d.Mutating && d.Preview == nil:
		return fmt.Errorf("%s: mutating descriptor requires a Preview func", d.Name())
	}
	if _, exists := r.tools[d.Name()]; exists {
		return fmt.Errorf("%s: already registered", d.Name())
	}
	if d.Mutating {
		d.Input = d.Input.WithField(validate.Field{
			Name:        "confirmed",
			Type:        validate.Bool,
			Description: "Set true to execute; omitted or false returns a preview",
		})
	}
	r.tools[d.Name()] = d
	return nil
}

// Lookup returns the descriptor for name, or nil.
func (r *Registry) Lookup(name string) *Descriptor {
	return r.tools[name]
}

// All returns the descriptors sorted by name.
func (r *Registry) All() []*Descriptor {
	out := make([]*Descriptor, 0, len(r.tools))
	for _, d := range r.tools {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
