package ogm

import (
	"reflect"
	"time"

	"go.uber.org/multierr"
)

// Node is a mutable in-memory entity instance bound to a registered kind.
// A Node is not safe for concurrent mutation; share persisted data, not
// instances.
type Node struct {
	kind *Kind

	// elementID is the database identity, empty until first save.
	elementID string

	props map[string]any
	// snapshot holds the stored values as of the last load or save, used to
	// compute partial updates. Nil means the node was never persisted.
	snapshot map[string]any
}

// NewNode returns a fresh, unsaved instance of the named kind from the
// default registry.
func NewNode(kind string) (*Node, error) {
	k, ok := defaultRegistry.Kind(kind)
	if !ok {
		return nil, &UnmappedKindError{Labels: []string{kind}}
	}
	return k.New(), nil
}

// New returns a fresh, unsaved instance of the kind.
func (k *Kind) New() *Node {
	return &Node{kind: k, props: make(map[string]any)}
}

// Kind returns the descriptor the node is bound to.
func (n *Node) Kind() *Kind { return n.kind }

// ElementID returns the database identity, or "" for an unsaved node.
func (n *Node) ElementID() string { return n.elementID }

// Persisted reports whether the node has a database identity.
func (n *Node) Persisted() bool { return n.elementID != "" }

// Set assigns a property value. The name must be declared on the kind; the
// value is validated eagerly so mistakes surface at the assignment site.
func (n *Node) Set(name string, value any) error {
	spec, err := n.kind.Property(name)
	if err != nil {
		return err
	}
	if value != nil {
		if err := spec.Type.Validate(value); err != nil {
			return &ValidationError{
				Kind:       n.kind.name,
				Violations: []PropertyViolation{{Property: name, Reason: err.Error()}},
			}
		}
	}
	n.props[name] = value
	return nil
}

// Get returns the current value of a declared property. Absent values
// return nil.
func (n *Node) Get(name string) (any, error) {
	if _, err := n.kind.Property(name); err != nil {
		return nil, err
	}
	return n.props[name], nil
}

// Values returns a copy of all currently assigned properties.
func (n *Node) Values() map[string]any {
	out := make(map[string]any, len(n.props))
	for k, v := range n.props {
		out[k] = v
	}
	return out
}

// encodeForSave applies defaults and auto timestamps, validates every
// declared property, and returns the encoded stored representation. All
// violations are gathered so the caller sees the full picture at once.
func (n *Node) encodeForSave(now time.Time) (map[string]any, error) {
	encoded := make(map[string]any, len(n.props))
	var violations []PropertyViolation
	for _, spec := range n.kind.props {
		v, present := n.props[spec.Name]
		if spec.AutoNowAdd && !n.Persisted() {
			v, present = now, true
		}
		if spec.AutoNow {
			v, present = now, true
		}
		if (!present || v == nil) && spec.Default != nil {
			if fn, ok := spec.Default.(func() any); ok {
				v = fn()
			} else {
				v = spec.Default
			}
			present = true
		}
		if !present || v == nil {
			if spec.Required {
				violations = append(violations, PropertyViolation{
					Property: spec.Name,
					Reason:   "required property is absent",
				})
			}
			continue
		}
		if err := spec.Type.Validate(v); err != nil {
			violations = append(violations, PropertyViolation{Property: spec.Name, Reason: err.Error()})
			continue
		}
		stored, err := spec.Type.Encode(v)
		if err != nil {
			violations = append(violations, PropertyViolation{Property: spec.Name, Reason: err.Error()})
			continue
		}
		encoded[spec.Name] = stored
		// Defaults and auto timestamps become part of the instance state.
		n.props[spec.Name] = v
	}
	if len(violations) > 0 {
		return nil, &ValidationError{Kind: n.kind.name, Violations: violations}
	}
	return encoded, nil
}

// changes diffs the encoded state against the last snapshot. It returns the
// properties to set and the property names to remove.
func (n *Node) changes(encoded map[string]any) (set map[string]any, unset []string) {
	if n.snapshot == nil {
		return encoded, nil
	}
	set = make(map[string]any)
	for name, v := range encoded {
		prev, had := n.snapshot[name]
		if !had || !reflect.DeepEqual(prev, v) {
			set[name] = v
		}
	}
	for name := range n.snapshot {
		if _, still := encoded[name]; !still {
			unset = append(unset, name)
		}
	}
	return set, unset
}

// markSaved records the stored state after a successful write.
func (n *Node) markSaved(elementID string, encoded map[string]any) {
	n.elementID = elementID
	snap := make(map[string]any, len(encoded))
	for k, v := range encoded {
		snap[k] = v
	}
	n.snapshot = snap
}

// markDeleted clears the database identity after a successful delete. The
// instance stays usable as a detached value holder.
func (n *Node) markDeleted() {
	n.elementID = ""
	n.snapshot = nil
}

// decodeInto fills the node from stored properties. Stored keys with no
// declared property are dropped; decode failures are aggregated.
func (n *Node) decodeInto(elementID string, stored map[string]any) error {
	var errs error
	props := make(map[string]any, len(stored))
	snap := make(map[string]any, len(stored))
	for _, spec := range n.kind.props {
		raw, ok := stored[spec.Name]
		if !ok || raw == nil {
			continue
		}
		v, err := spec.Type.Decode(raw)
		if err != nil {
			errs = multierr.Append(errs, &ValidationError{
				Kind:       n.kind.name,
				Violations: []PropertyViolation{{Property: spec.Name, Reason: err.Error()}},
			})
			continue
		}
		props[spec.Name] = v
		snap[spec.Name] = raw
	}
	if errs != nil {
		return errs
	}
	n.elementID = elementID
	n.props = props
	n.snapshot = snap
	return nil
}
