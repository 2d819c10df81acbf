package ogm

import (
	"testing"
	"time"
)

type taggedPerson struct {
	Name    string    `neogm:"name,required,unique"`
	Age     int64     `neogm:"age,indexed"`
	Mood    string    `neogm:"mood,choices=happy|sad"`
	Joined  time.Time `neogm:"joined,autonowadd"`
	Home    Point     `neogm:""`
	Friends []string  `neogm:"friends,rel=FRIEND,target=Person,cardinality=zero-or-more"`
	Boss    string    `neogm:"boss,rel=REPORTS_TO,target=Person,cardinality=exactly-one,direction=out,ondelete=cascade"`
	secret  string
	Skip    string    `neogm:"-"`
}

// TestKindSpecFromStruct verifies tag parsing, type inference, and
// relationship declarations.
func TestKindSpecFromStruct(t *testing.T) {
	spec, err := KindSpecFromStruct[taggedPerson]("Person")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if len(spec.Properties) != 5 {
		t.Fatalf("properties = %d, want 5: %+v", len(spec.Properties), spec.Properties)
	}
	byName := map[string]PropertySpec{}
	for _, p := range spec.Properties {
		byName[p.Name] = p
	}
	if p := byName["name"]; p.Type.Name() != "string" || !p.Required || !p.Unique {
		t.Errorf("name spec wrong: %+v", p)
	}
	if p := byName["age"]; p.Type.Name() != "integer" || !p.Indexed {
		t.Errorf("age spec wrong: %+v", p)
	}
	if p := byName["mood"]; p.Type.Name() != "enum" {
		t.Errorf("mood spec wrong: %+v", p)
	}
	if p := byName["joined"]; p.Type.Name() != "datetime" || !p.AutoNowAdd {
		t.Errorf("joined spec wrong: %+v", p)
	}
	if p := byName["home"]; p.Type.Name() != "point" {
		t.Errorf("home spec wrong: %+v", p)
	}

	if len(spec.Relationships) != 2 {
		t.Fatalf("relationships = %d, want 2", len(spec.Relationships))
	}
	boss := spec.Relationships[1]
	if boss.Type != "REPORTS_TO" || boss.Target != "Person" ||
		boss.Cardinality != ExactlyOne || boss.OnDelete != CascadeDelete {
		t.Errorf("boss spec wrong: %+v", boss)
	}

	// The derived spec must register cleanly.
	r := NewRegistry()
	if _, err := r.Register(spec); err != nil {
		t.Fatalf("register derived spec: %v", err)
	}
}

// TestKindSpecFromStruct_RejectsBadTags verifies tag errors are reported.
func TestKindSpecFromStruct_RejectsBadTags(t *testing.T) {
	type badDirection struct {
		X string `neogm:"x,rel=R,target=T,direction=sideways"`
	}
	if _, err := KindSpecFromStruct[badDirection]("Bad"); err == nil {
		t.Errorf("expected an error for an unknown direction")
	}
	type missingTarget struct {
		X string `neogm:"x,rel=R"`
	}
	if _, err := KindSpecFromStruct[missingTarget]("Bad"); err == nil {
		t.Errorf("expected an error for a missing target")
	}
	if _, err := KindSpecFromStruct[int]("Bad"); err == nil {
		t.Errorf("expected an error for a non-struct type")
	}
}
