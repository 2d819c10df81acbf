package ogm

import (
	"context"
	"errors"
	"testing"
)

func rawPerson(id, name string, age int64) RawNode {
	return RawNode{
		ElementID: id,
		Labels:    []string{"Person"},
		Props:     map[string]any{"name": name, "age": age},
	}
}

// TestQuery_AllHydratesRows verifies the full query-run-hydrate path.
func TestQuery_AllHydratesRows(t *testing.T) {
	r := movieRegistry(t)
	d := &fakeDriver{steps: []scriptStep{{rows: []Row{
		{"n0": rawPerson("4:db:1", "Ada", 36)},
		{"n0": rawPerson("4:db:2", "Eve", 30)},
	}}}}
	db := NewDatabase(d, WithRegistry(r), WithRetry(quickRetry()))

	people, err := r.Query("Person").Filter(Gt("age", 20)).All(context.Background(), db)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(people) != 2 {
		t.Fatalf("got %d people, want 2", len(people))
	}
	if v, _ := people[0].Get("name"); v != "Ada" {
		t.Errorf("first person = %v", v)
	}
	if !people[0].Persisted() {
		t.Errorf("hydrated node should carry its identity")
	}
	if d.calls[0].params["p0"] != int64(20) {
		t.Errorf("filter param not sent: %v", d.calls[0].params)
	}
}

// TestQuery_FirstAndFirstOrErr verifies the empty-result contract of both
// single-row terminals.
func TestQuery_FirstAndFirstOrErr(t *testing.T) {
	r := movieRegistry(t)
	d := &fakeDriver{steps: []scriptStep{{rows: nil}, {rows: nil}}}
	db := NewDatabase(d, WithRegistry(r), WithRetry(quickRetry()))

	n, err := r.Query("Person").First(context.Background(), db)
	if err != nil || n != nil {
		t.Errorf("First on empty = (%v, %v), want (nil, nil)", n, err)
	}
	_, err = r.Query("Person").FirstOrErr(context.Background(), db)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

// TestQuery_OneRejectsMultipleMatches verifies One's uniqueness contract.
func TestQuery_OneRejectsMultipleMatches(t *testing.T) {
	r := movieRegistry(t)
	d := &fakeDriver{steps: []scriptStep{{rows: []Row{
		{"n0": rawPerson("4:db:1", "Ada", 36)},
		{"n0": rawPerson("4:db:2", "Eve", 30)},
	}}}}
	db := NewDatabase(d, WithRegistry(r), WithRetry(quickRetry()))

	_, err := r.Query("Person").One(context.Background(), db)
	var nu *NotUniqueError
	if !errors.As(err, &nu) {
		t.Errorf("expected NotUniqueError, got %v", err)
	}
}

// TestQuery_CountAndExists verifies the aggregate terminals.
func TestQuery_CountAndExists(t *testing.T) {
	r := movieRegistry(t)
	d := &fakeDriver{steps: []scriptStep{
		{rows: []Row{{"total": int64(3)}}},
		{rows: []Row{{"total": int64(0)}}},
	}}
	db := NewDatabase(d, WithRegistry(r), WithRetry(quickRetry()))

	n, err := r.Query("Person").Count(context.Background(), db)
	if err != nil || n != 3 {
		t.Errorf("count = (%d, %v), want 3", n, err)
	}
	ok, err := r.Query("Person").Exists(context.Background(), db)
	if err != nil || ok {
		t.Errorf("exists = (%v, %v), want false", ok, err)
	}
}
