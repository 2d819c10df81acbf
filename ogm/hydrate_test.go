package ogm

import (
	"errors"
	"testing"
)

// TestHydrator_ResolvesMostSpecificKind verifies label resolution picks the
// narrowest registered descriptor.
func TestHydrator_ResolvesMostSpecificKind(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(KindSpec{
		Name:       "Person",
		Properties: []PropertySpec{{Name: "name", Type: String()}},
	})
	r.MustRegister(KindSpec{
		Name:   "Actor",
		Labels: []string{"Person", "Actor"},
		Properties: []PropertySpec{
			{Name: "name", Type: String()},
			{Name: "stage_name", Type: String()},
		},
	})
	h := NewHydrator(r)
	n, err := h.Node(RawNode{
		ElementID: "4:db:7",
		Labels:    []string{"Person", "Actor"},
		Props:     map[string]any{"name": "Ada", "stage_name": "A."},
	})
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if n.Kind().Name() != "Actor" {
		t.Errorf("kind = %q, want Actor", n.Kind().Name())
	}
	if v, _ := n.Get("stage_name"); v != "A." {
		t.Errorf("stage_name = %v", v)
	}
	if n.ElementID() != "4:db:7" {
		t.Errorf("element id = %q", n.ElementID())
	}
}

// TestHydrator_DropsUndeclaredProperties verifies stored keys with no
// declared property never surface on the instance.
func TestHydrator_DropsUndeclaredProperties(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(KindSpec{
		Name:       "Person",
		Properties: []PropertySpec{{Name: "name", Type: String()}},
	})
	h := NewHydrator(r)
	n, err := h.Node(RawNode{
		ElementID: "4:db:1",
		Labels:    []string{"Person"},
		Props:     map[string]any{"name": "Ada", "legacy_field": 99},
	})
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if _, err := n.Get("legacy_field"); err == nil {
		t.Errorf("undeclared property survived hydration")
	}
	if len(n.Values()) != 1 {
		t.Errorf("values = %v, want only name", n.Values())
	}
}

// TestHydrator_UnmappedLabels verifies an unregistered label set is a typed
// error, not silent data loss.
func TestHydrator_UnmappedLabels(t *testing.T) {
	h := NewHydrator(NewRegistry())
	_, err := h.Node(RawNode{Labels: []string{"Relic"}})
	var unmapped *UnmappedKindError
	if !errors.As(err, &unmapped) {
		t.Fatalf("expected UnmappedKindError, got %v", err)
	}
}

// TestHydrator_IndependentInstances verifies hydrating the same stored node
// twice yields instances that do not share state.
func TestHydrator_IndependentInstances(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(KindSpec{
		Name:       "Person",
		Properties: []PropertySpec{{Name: "name", Type: String()}},
	})
	h := NewHydrator(r)
	raw := RawNode{ElementID: "4:db:1", Labels: []string{"Person"}, Props: map[string]any{"name": "Ada"}}
	a, err := h.Node(raw)
	if err != nil {
		t.Fatalf("hydrate a: %v", err)
	}
	b, err := h.Node(raw)
	if err != nil {
		t.Fatalf("hydrate b: %v", err)
	}
	if a == b {
		t.Fatalf("expected independent instances")
	}
	if err := a.Set("name", "Eve"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, _ := b.Get("name"); v != "Ada" {
		t.Errorf("mutation leaked between instances: %v", v)
	}
}

// TestHydrator_RelationshipProperties verifies edge kinds decode
// relationship properties.
func TestHydrator_RelationshipProperties(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(KindSpec{
		Name: "Role",
		Edge: true,
		Properties: []PropertySpec{
			{Name: "character", Type: String()},
			{Name: "billing", Type: Integer()},
		},
	})
	h := NewHydrator(r)
	props, err := h.Relationship(RawRelationship{
		ElementID: "5:db:1",
		Type:      "ACTED_IN",
		Props:     map[string]any{"character": "Queen", "billing": int64(1)},
	}, "Role")
	if err != nil {
		t.Fatalf("hydrate relationship: %v", err)
	}
	if props["character"] != "Queen" || props["billing"] != int64(1) {
		t.Errorf("props = %v", props)
	}
}
