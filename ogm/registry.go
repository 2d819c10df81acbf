package ogm

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps kind names and label sets to registered descriptors.
// The zero value is not usable; call NewRegistry.
type Registry struct {
	mu           sync.RWMutex
	byName       map[string]*Kind
	fingerprints map[string]string
	// ordered holds kinds in registration order for deterministic resolve
	// tie-breaks and Kinds() listings.
	ordered []*Kind
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:       make(map[string]*Kind),
		fingerprints: make(map[string]string),
	}
}

// defaultRegistry backs the package-level registration functions.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by the package-level
// Register and Resolve functions.
func DefaultRegistry() *Registry { return defaultRegistry }

// Register validates and installs a kind descriptor. Registering the same
// name with an identical shape is a no-op returning the existing descriptor;
// a differing shape returns a SchemaConflictError.
func (r *Registry) Register(spec KindSpec) (*Kind, error) {
	if spec.Name == "" {
		return nil, &SchemaConflictError{Kind: spec.Name, Detail: "kind name must not be empty"}
	}
	if err := checkSpec(spec); err != nil {
		return nil, err
	}
	fp := fingerprint(spec)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byName[spec.Name]; ok {
		if r.fingerprints[spec.Name] == fp {
			return existing, nil
		}
		return nil, &SchemaConflictError{
			Kind:   spec.Name,
			Detail: "already registered with a different shape",
		}
	}
	k := newKind(spec, len(r.ordered))
	r.byName[spec.Name] = k
	r.fingerprints[spec.Name] = fp
	r.ordered = append(r.ordered, k)
	return k, nil
}

// MustRegister is Register that panics on error. Intended for package-scope
// schema declarations where a bad spec is a programming error.
func (r *Registry) MustRegister(spec KindSpec) *Kind {
	k, err := r.Register(spec)
	if err != nil {
		panic(err)
	}
	return k
}

// Kind returns the descriptor registered under name.
func (r *Registry) Kind(name string) (*Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.byName[name]
	return k, ok
}

// Kinds returns all registered descriptors in registration order.
func (r *Registry) Kinds() []*Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Kind(nil), r.ordered...)
}

// Resolve maps a stored label set to the registered kind whose labels are
// the largest subset of it. When several kinds match with the same size the
// earliest registered wins. Edge kinds never participate.
func (r *Registry) Resolve(labels []string) (*Kind, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *Kind
	for _, k := range r.ordered {
		if k.edge || !k.labelsSubsetOf(labels) {
			continue
		}
		if best == nil || len(k.labels) > len(best.labels) {
			best = k
		}
	}
	if best == nil {
		sorted := append([]string(nil), labels...)
		sort.Strings(sorted)
		return nil, &UnmappedKindError{Labels: sorted}
	}
	return best, nil
}

// checkSpec validates internal consistency of a spec before installation.
func checkSpec(spec KindSpec) error {
	seen := make(map[string]bool, len(spec.Properties))
	for _, p := range spec.Properties {
		if p.Name == "" {
			return &SchemaConflictError{Kind: spec.Name, Detail: "property with empty name"}
		}
		if p.Type == nil {
			return &SchemaConflictError{Kind: spec.Name, Detail: fmt.Sprintf("property %q has no type", p.Name)}
		}
		if seen[p.Name] {
			return &SchemaConflictError{Kind: spec.Name, Detail: fmt.Sprintf("duplicate property %q", p.Name)}
		}
		if (p.AutoNow || p.AutoNowAdd) && p.Type.Name() != "datetime" {
			return &SchemaConflictError{
				Kind:   spec.Name,
				Detail: fmt.Sprintf("property %q: auto timestamps require a datetime type", p.Name),
			}
		}
		seen[p.Name] = true
	}
	seenRel := make(map[string]bool, len(spec.Relationships))
	for _, rel := range spec.Relationships {
		if rel.Name == "" || rel.Type == "" || rel.Target == "" {
			return &SchemaConflictError{
				Kind:   spec.Name,
				Detail: fmt.Sprintf("relationship %q needs a name, type, and target", rel.Name),
			}
		}
		if seenRel[rel.Name] {
			return &SchemaConflictError{Kind: spec.Name, Detail: fmt.Sprintf("duplicate relationship %q", rel.Name)}
		}
		seenRel[rel.Name] = true
	}
	return nil
}

// Register installs a kind in the default registry.
func Register(spec KindSpec) (*Kind, error) { return defaultRegistry.Register(spec) }

// MustRegister installs a kind in the default registry, panicking on error.
func MustRegister(spec KindSpec) *Kind { return defaultRegistry.MustRegister(spec) }

// Resolve maps a label set to a kind in the default registry.
func Resolve(labels []string) (*Kind, error) { return defaultRegistry.Resolve(labels) }
