package ogm

import (
	"context"
	"strings"
	"testing"
)

// TestConstraintSpecs verifies derived DDL for unique and indexed
// properties.
func TestConstraintSpecs(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(KindSpec{
		Name: "Person",
		Properties: []PropertySpec{
			UniqueID("uid"),
			{Name: "name", Type: String(), Indexed: true},
			{Name: "age", Type: Integer()},
		},
	})
	r.MustRegister(KindSpec{
		Name:       "Role",
		Edge:       true,
		Properties: []PropertySpec{{Name: "title", Type: String(), Unique: true}},
	})

	specs := r.ConstraintSpecs()
	if len(specs) != 2 {
		t.Fatalf("specs = %d, want 2 (edge kinds excluded): %+v", len(specs), specs)
	}
	unique := specs[0]
	if !unique.Unique || unique.Property != "uid" {
		t.Errorf("first spec should be the uid constraint: %+v", unique)
	}
	want := "CREATE CONSTRAINT person_uid_unique IF NOT EXISTS FOR (n:`Person`) REQUIRE n.`uid` IS UNIQUE"
	if unique.Statement != want {
		t.Errorf("statement:\n%s\nwant:\n%s", unique.Statement, want)
	}
	index := specs[1]
	if index.Unique || !strings.HasPrefix(index.Statement, "CREATE INDEX person_name_index IF NOT EXISTS") {
		t.Errorf("second spec should be the name index: %+v", index)
	}
}

// TestInstallLabels verifies each statement runs in its own transaction.
func TestInstallLabels(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(KindSpec{
		Name: "Person",
		Properties: []PropertySpec{
			UniqueID("uid"),
			{Name: "name", Type: String(), Indexed: true},
		},
	})
	d := &fakeDriver{}
	db := NewDatabase(d, WithRegistry(r), WithRetry(quickRetry()))
	if err := db.InstallLabels(context.Background()); err != nil {
		t.Fatalf("install: %v", err)
	}
	if len(d.calls) != 2 || d.begun != 2 || d.committed != 2 {
		t.Errorf("calls=%d begun=%d committed=%d, want 2 each", len(d.calls), d.begun, d.committed)
	}
}
