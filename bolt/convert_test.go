package bolt

import (
	"reflect"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/CaliLuke/go-neogm/ogm"
)

// TestConvertValue_Node verifies driver nodes become RawNode values.
func TestConvertValue_Node(t *testing.T) {
	got := convertValue(dbtype.Node{
		ElementId: "4:db:1",
		Labels:    []string{"Person"},
		Props:     map[string]any{"name": "Ada"},
	})
	want := ogm.RawNode{
		ElementID: "4:db:1",
		Labels:    []string{"Person"},
		Props:     map[string]any{"name": "Ada"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("convert = %+v, want %+v", got, want)
	}
}

// TestConvertValue_Relationship verifies driver relationships become
// RawRelationship values with both endpoint identities.
func TestConvertValue_Relationship(t *testing.T) {
	got := convertValue(dbtype.Relationship{
		ElementId:      "5:db:9",
		StartElementId: "4:db:1",
		EndElementId:   "4:db:2",
		Type:           "ACTED_IN",
		Props:          map[string]any{"character": "Queen"},
	})
	rel, ok := got.(ogm.RawRelationship)
	if !ok {
		t.Fatalf("converted to %T", got)
	}
	if rel.Type != "ACTED_IN" || rel.StartElementID != "4:db:1" || rel.EndElementID != "4:db:2" {
		t.Errorf("relationship = %+v", rel)
	}
}

// TestConvertValue_Containers verifies lists and maps convert element-wise
// while scalars pass through.
func TestConvertValue_Containers(t *testing.T) {
	got := convertValue([]any{
		int64(1),
		dbtype.Node{ElementId: "4:db:1", Labels: []string{"Person"}},
		map[string]any{"inner": dbtype.Node{ElementId: "4:db:2"}},
	})
	list, ok := got.([]any)
	if !ok || len(list) != 3 {
		t.Fatalf("converted to %T", got)
	}
	if list[0] != int64(1) {
		t.Errorf("scalar changed: %v", list[0])
	}
	if _, ok := list[1].(ogm.RawNode); !ok {
		t.Errorf("nested node not converted: %T", list[1])
	}
	inner := list[2].(map[string]any)["inner"]
	if _, ok := inner.(ogm.RawNode); !ok {
		t.Errorf("map value not converted: %T", inner)
	}
}

// TestConfig_Validate covers the pre-connection checks.
func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	cfg.URI = ""
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected missing URI to be rejected")
	}
	cfg = DefaultConfig()
	cfg.ConnectAttempts = 0
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected zero attempts to be rejected")
	}
}
