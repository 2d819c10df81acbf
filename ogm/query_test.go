package ogm

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func movieRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	r.MustRegister(KindSpec{
		Name: "Person",
		Properties: []PropertySpec{
			{Name: "name", Type: String(), Required: true},
			{Name: "age", Type: Integer()},
		},
		Relationships: []RelationshipSpec{
			{Name: "acted_in", Type: "ACTED_IN", Target: "Movie", Cardinality: ZeroOrMore},
			{Name: "directed", Type: "DIRECTED", Target: "Movie", Cardinality: ZeroOrMore},
		},
	})
	r.MustRegister(KindSpec{
		Name: "Movie",
		Properties: []PropertySpec{
			{Name: "title", Type: String(), Required: true},
			{Name: "released", Type: Integer()},
		},
	})
	return r
}

// TestQuery_CompileBasicFilter verifies the exact statement shape for a
// single-segment filtered query.
func TestQuery_CompileBasicFilter(t *testing.T) {
	r := movieRegistry(t)
	stmt, params, err := r.Query("Person").Filter(Eq("name", "Ada")).Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	want := "MATCH (n0:`Person`)\nWHERE n0.name = $p0\nRETURN n0"
	if stmt != want {
		t.Errorf("statement:\n%s\nwant:\n%s", stmt, want)
	}
	if params["p0"] != "Ada" {
		t.Errorf("params = %v, want p0=Ada", params)
	}
}

// TestQuery_CompileTraversal verifies traversal, segment-scoped filters,
// ordering, and paging compile into one statement.
func TestQuery_CompileTraversal(t *testing.T) {
	r := movieRegistry(t)
	q := r.Query("Person").
		Filter(Eq("name", "Ada")).
		Traverse("acted_in").
		Filter(Gt("released", 2000)).
		OrderBy("-released").
		Skip(10).
		Limit(5)
	stmt, params, err := q.Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	want := strings.Join([]string{
		"MATCH (n0:`Person`)-[r1:`ACTED_IN`]->(n1:`Movie`)",
		"WHERE (n0.name = $p0) AND (n1.released > $p1)",
		"RETURN n1",
		"ORDER BY n1.released DESC",
		"SKIP 10",
		"LIMIT 5",
	}, "\n")
	if stmt != want {
		t.Errorf("statement:\n%s\nwant:\n%s", stmt, want)
	}
	if params["p0"] != "Ada" || params["p1"] != int64(2000) {
		t.Errorf("params = %v", params)
	}
}

// TestQuery_CompileOptionalTraversal verifies an optional hop becomes its
// own OPTIONAL MATCH anchored on the bound variable.
func TestQuery_CompileOptionalTraversal(t *testing.T) {
	r := movieRegistry(t)
	stmt, _, err := r.Query("Person").TraverseOptional("acted_in").Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	want := strings.Join([]string{
		"MATCH (n0:`Person`)",
		"OPTIONAL MATCH (n0)-[r1:`ACTED_IN`]->(n1:`Movie`)",
		"RETURN n1",
	}, "\n")
	if stmt != want {
		t.Errorf("statement:\n%s\nwant:\n%s", stmt, want)
	}
}

// TestQuery_CompileDeterministic verifies recompiling the same chain yields
// byte-identical text and equal parameter bindings.
func TestQuery_CompileDeterministic(t *testing.T) {
	r := movieRegistry(t)
	q := r.Query("Person").Filter(And(Gt("age", 30), Lt("age", 60))).OrderBy("name")
	s1, p1, err := q.Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	s2, p2, err := q.Compile()
	if err != nil {
		t.Fatalf("recompile: %v", err)
	}
	if s1 != s2 {
		t.Errorf("statements differ:\n%s\n%s", s1, s2)
	}
	if !reflect.DeepEqual(p1, p2) {
		t.Errorf("params differ: %v vs %v", p1, p2)
	}
}

// TestQuery_StructuralSharing verifies extending a chain two ways leaves the
// shared prefix untouched.
func TestQuery_StructuralSharing(t *testing.T) {
	r := movieRegistry(t)
	base := r.Query("Person").Filter(Gt("age", 18))
	adults, _, err := base.Compile()
	if err != nil {
		t.Fatalf("compile base: %v", err)
	}
	a := base.Filter(Eq("name", "Ada"))
	b := base.Traverse("directed")
	if _, _, err := a.Compile(); err != nil {
		t.Fatalf("compile a: %v", err)
	}
	if _, _, err := b.Compile(); err != nil {
		t.Fatalf("compile b: %v", err)
	}
	again, _, err := base.Compile()
	if err != nil {
		t.Fatalf("recompile base: %v", err)
	}
	if adults != again {
		t.Errorf("extending the chain mutated the shared prefix:\n%s\n%s", adults, again)
	}
}

// TestQuery_StickyErrors verifies build errors surface at compile time and
// survive further chaining.
func TestQuery_StickyErrors(t *testing.T) {
	r := movieRegistry(t)

	_, _, err := r.Query("Ghost").Filter(Eq("name", "x")).Limit(1).Compile()
	var unmapped *UnmappedKindError
	if !errors.As(err, &unmapped) {
		t.Errorf("expected UnmappedKindError, got %v", err)
	}

	_, _, err = r.Query("Person").Traverse("nope").Compile()
	var unknownRel *UnknownRelationshipError
	if !errors.As(err, &unknownRel) {
		t.Errorf("expected UnknownRelationshipError, got %v", err)
	}

	_, _, err = r.Query("Person").Filter(Eq("shoe_size", 44)).Compile()
	var unknownProp *UnknownPropertyError
	if !errors.As(err, &unknownProp) {
		t.Errorf("expected UnknownPropertyError, got %v", err)
	}

	_, _, err = r.Query("Person").OrderBy("-shoe_size").Compile()
	if !errors.As(err, &unknownProp) {
		t.Errorf("expected UnknownPropertyError for ordering, got %v", err)
	}
}

// TestQuery_OrderBeforeTraversal verifies ordering declared before a
// traversal stays bound to the segment it was declared on instead of being
// rebound to the traversal tip.
func TestQuery_OrderBeforeTraversal(t *testing.T) {
	r := movieRegistry(t)
	stmt, _, err := r.Query("Person").OrderBy("age").Traverse("acted_in").Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	want := strings.Join([]string{
		"MATCH (n0:`Person`)-[r1:`ACTED_IN`]->(n1:`Movie`)",
		"RETURN n1",
		"ORDER BY n0.age",
	}, "\n")
	if stmt != want {
		t.Errorf("statement:\n%s\nwant:\n%s", stmt, want)
	}
}

// TestQuery_FilterValidatesEagerly verifies an unknown filter property is
// recorded on the chain at the Filter call, like OrderBy and Traverse do.
func TestQuery_FilterValidatesEagerly(t *testing.T) {
	r := movieRegistry(t)
	q := r.Query("Person").Filter(Eq("shoe_size", 44))
	var unknownProp *UnknownPropertyError
	if !errors.As(q.Err(), &unknownProp) {
		t.Fatalf("expected UnknownPropertyError from Err(), got %v", q.Err())
	}
}

// TestQuery_ValuesNeverInlined verifies filter values travel as parameters,
// never inside the statement text.
func TestQuery_ValuesNeverInlined(t *testing.T) {
	r := movieRegistry(t)
	hostile := `" OR 1=1 //`
	stmt, params, err := r.Query("Person").Filter(Eq("name", hostile)).Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if strings.Contains(stmt, "1=1") {
		t.Errorf("filter value leaked into statement text:\n%s", stmt)
	}
	if params["p0"] != hostile {
		t.Errorf("params = %v", params)
	}
}

// TestQuery_CompilePredicates covers the remaining predicate constructors.
func TestQuery_CompilePredicates(t *testing.T) {
	r := movieRegistry(t)
	q := r.Query("Person").Filter(
		Or(
			StartsWith("name", "A"),
			EndsWith("name", "z"),
			Contains("name", "d"),
		),
		Not(IsNull("age")),
		In("age", []int{30, 40}),
		Regex("name", "A.*"),
		NotNull("name"),
		Neq("age", 99),
		Gte("age", 1),
		Lte("age", 120),
	)
	stmt, params, err := q.Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	for _, frag := range []string{
		"STARTS WITH", "ENDS WITH", "CONTAINS",
		"NOT (n0.age IS NULL)", "n0.age IN $p", "=~", "n0.name IS NOT NULL",
		"<>", ">=", "<=",
	} {
		if !strings.Contains(stmt, frag) {
			t.Errorf("statement missing %q:\n%s", frag, stmt)
		}
	}
	if !reflect.DeepEqual(params["p3"], []any{int64(30), int64(40)}) {
		t.Errorf("IN list not encoded element-wise: %v", params)
	}
}

// TestQuery_CountAndDistinct verifies the count variant drops paging and
// honors Distinct.
func TestQuery_CountAndDistinct(t *testing.T) {
	r := movieRegistry(t)
	q := r.Query("Person").Filter(Gt("age", 18)).OrderBy("name").Limit(5).Distinct()
	stmt, _, err := q.buildCount()
	if err != nil {
		t.Fatalf("build count: %v", err)
	}
	want := strings.Join([]string{
		"MATCH (n0:`Person`)",
		"WHERE n0.age > $p0",
		"RETURN count(DISTINCT n0) AS total",
	}, "\n")
	if stmt != want {
		t.Errorf("statement:\n%s\nwant:\n%s", stmt, want)
	}

	full, _, err := q.Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !strings.Contains(full, "RETURN DISTINCT n0") {
		t.Errorf("expected RETURN DISTINCT:\n%s", full)
	}
}
