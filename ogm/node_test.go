package ogm

import (
	"errors"
	"testing"
	"time"
)

func articleSpec() KindSpec {
	return KindSpec{
		Name: "Article",
		Properties: []PropertySpec{
			UniqueID("uid"),
			{Name: "title", Type: String(), Required: true},
			{Name: "words", Type: Integer()},
			{Name: "status", Type: Enum("draft", "published"), Default: "draft"},
			{Name: "created", Type: DateTime(), AutoNowAdd: true},
			{Name: "updated", Type: DateTime(), AutoNow: true},
		},
	}
}

// TestNode_SetUnknownProperty verifies assignment to an undeclared property
// fails at the call site.
func TestNode_SetUnknownProperty(t *testing.T) {
	r := NewRegistry()
	k := r.MustRegister(articleSpec())
	n := k.New()
	err := n.Set("colour", "red")
	var unknown *UnknownPropertyError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownPropertyError, got %v", err)
	}
}

// TestNode_SetValidatesEagerly verifies a bad value is rejected when
// assigned, not at save time.
func TestNode_SetValidatesEagerly(t *testing.T) {
	r := NewRegistry()
	k := r.MustRegister(articleSpec())
	n := k.New()
	if err := n.Set("words", "many"); err == nil {
		t.Errorf("expected a type error for a string assigned to an integer property")
	}
	if err := n.Set("status", "archived"); err == nil {
		t.Errorf("expected a choice error for an unknown enum value")
	}
}

// TestNode_EncodeAppliesDefaults verifies defaults, generated IDs, and auto
// timestamps are filled in at save time and become part of instance state.
func TestNode_EncodeAppliesDefaults(t *testing.T) {
	r := NewRegistry()
	k := r.MustRegister(articleSpec())
	n := k.New()
	if err := n.Set("title", "Graph Mapping"); err != nil {
		t.Fatalf("set title: %v", err)
	}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	encoded, err := n.encodeForSave(now)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if encoded["status"] != "draft" {
		t.Errorf("status = %v, want draft default", encoded["status"])
	}
	uid, _ := encoded["uid"].(string)
	if uid == "" {
		t.Errorf("expected a generated uid")
	}
	if encoded["created"] != now || encoded["updated"] != now {
		t.Errorf("auto timestamps not applied: created=%v updated=%v", encoded["created"], encoded["updated"])
	}
	if v, _ := n.Get("status"); v != "draft" {
		t.Errorf("default not reflected on the instance: %v", v)
	}
	again, err := n.encodeForSave(now)
	if err != nil {
		t.Fatalf("second encode: %v", err)
	}
	if again["uid"] != uid {
		t.Errorf("uid regenerated between saves: %v then %v", uid, again["uid"])
	}
}

// TestNode_EncodeReportsAllViolations verifies a save with several bad
// properties surfaces every violation in one error.
func TestNode_EncodeReportsAllViolations(t *testing.T) {
	r := NewRegistry()
	k := r.MustRegister(KindSpec{
		Name: "Strict",
		Properties: []PropertySpec{
			{Name: "name", Type: String(), Required: true},
			{Name: "mood", Type: Enum("happy", "sad"), Required: true},
		},
	})
	n := k.New()
	// Bypass eager validation to simulate values gone stale against a
	// tightened schema.
	n.props["mood"] = "furious"
	_, err := n.encodeForSave(time.Now())
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %d: %v", len(ve.Violations), ve)
	}
}

// TestNode_ChangesDiff verifies partial updates touch only what changed
// since the last save.
func TestNode_ChangesDiff(t *testing.T) {
	r := NewRegistry()
	k := r.MustRegister(KindSpec{
		Name: "Person",
		Properties: []PropertySpec{
			{Name: "name", Type: String()},
			{Name: "age", Type: Integer()},
		},
	})
	n := k.New()
	if err := n.Set("name", "Ada"); err != nil {
		t.Fatalf("set name: %v", err)
	}
	if err := n.Set("age", 36); err != nil {
		t.Fatalf("set age: %v", err)
	}
	encoded, err := n.encodeForSave(time.Now())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	n.markSaved("4:abc:1", encoded)

	if err := n.Set("age", 37); err != nil {
		t.Fatalf("set age: %v", err)
	}
	encoded, err = n.encodeForSave(time.Now())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	set, unset := n.changes(encoded)
	if len(set) != 1 || set["age"] != int64(37) {
		t.Errorf("set = %v, want only age=37", set)
	}
	if len(unset) != 0 {
		t.Errorf("unset = %v, want none", unset)
	}

	// Clearing a property surfaces it in unset.
	if err := n.Set("age", nil); err != nil {
		t.Fatalf("clear age: %v", err)
	}
	n.markSaved("4:abc:1", encoded)
	encoded, err = n.encodeForSave(time.Now())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, unset = n.changes(encoded)
	if len(unset) != 1 || unset[0] != "age" {
		t.Errorf("unset = %v, want [age]", unset)
	}
}
