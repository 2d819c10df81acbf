package bolt

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/CaliLuke/go-neogm/ogm"
)

// convertValue maps driver record values into the representations the ogm
// layer consumes. Graph entities become Raw* values; containers convert
// element-wise; storage primitives pass through untouched.
func convertValue(v any) any {
	switch val := v.(type) {
	case dbtype.Node:
		return ogm.RawNode{
			ElementID: val.ElementId,
			Labels:    val.Labels,
			Props:     val.Props,
		}
	case dbtype.Relationship:
		return ogm.RawRelationship{
			ElementID:      val.ElementId,
			Type:           val.Type,
			StartElementID: val.StartElementId,
			EndElementID:   val.EndElementId,
			Props:          val.Props,
		}
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = convertValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = convertValue(item)
		}
		return out
	default:
		return v
	}
}
