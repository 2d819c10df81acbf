package ogm

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// KindSpecFromStruct derives a KindSpec from the fields of T using `neogm`
// struct tags. Property names default to the lowercased field name; types
// are inferred from the Go type and can be overridden with tag options.
//
// Property tags:
//
//	Name string `neogm:"name,required,unique"`
//	Age  int64  `neogm:"age,indexed"`
//	Mood string `neogm:"mood,choices=happy|sad"`
//
// Relationship tags declare an edge instead of a property:
//
//	Friends []Person `neogm:"friends,rel=FRIEND,target=Person,cardinality=zero-or-more"`
//
// Fields tagged "-" and unexported fields are skipped.
func KindSpecFromStruct[T any](name string, labels ...string) (KindSpec, error) {
	var zero T
	rt := reflect.TypeOf(zero)
	if rt == nil || rt.Kind() != reflect.Struct {
		return KindSpec{}, fmt.Errorf("kind %s: type parameter must be a struct, got %v", name, rt)
	}
	spec := KindSpec{Name: name, Labels: labels}
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("neogm")
		if tag == "-" {
			continue
		}
		parts := strings.Split(tag, ",")
		propName := parts[0]
		if propName == "" {
			propName = strings.ToLower(f.Name)
		}
		opts := parseTagOptions(parts[1:])

		if relType, isRel := opts["rel"]; isRel {
			rel, err := relationshipFromTag(name, propName, relType, opts)
			if err != nil {
				return KindSpec{}, err
			}
			spec.Relationships = append(spec.Relationships, rel)
			continue
		}
		prop, err := propertyFromField(name, propName, f.Type, opts)
		if err != nil {
			return KindSpec{}, err
		}
		spec.Properties = append(spec.Properties, prop)
	}
	return spec, nil
}

// MustKindSpecFromStruct is KindSpecFromStruct that panics on error.
func MustKindSpecFromStruct[T any](name string, labels ...string) KindSpec {
	spec, err := KindSpecFromStruct[T](name, labels...)
	if err != nil {
		panic(err)
	}
	return spec
}

// parseTagOptions splits tag options into a map; bare flags map to "".
func parseTagOptions(parts []string) map[string]string {
	opts := make(map[string]string, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if k, v, ok := strings.Cut(p, "="); ok {
			opts[k] = v
		} else {
			opts[p] = ""
		}
	}
	return opts
}

func propertyFromField(kind, name string, ft reflect.Type, opts map[string]string) (PropertySpec, error) {
	pt, err := propertyTypeFor(ft, opts)
	if err != nil {
		return PropertySpec{}, fmt.Errorf("kind %s, property %s: %w", kind, name, err)
	}
	_, required := opts["required"]
	_, unique := opts["unique"]
	_, indexed := opts["indexed"]
	_, autoNow := opts["autonow"]
	_, autoNowAdd := opts["autonowadd"]
	p := PropertySpec{
		Name:       name,
		Type:       pt,
		Required:   required,
		Unique:     unique,
		Indexed:    indexed,
		AutoNow:    autoNow,
		AutoNowAdd: autoNowAdd,
	}
	if def, ok := opts["default"]; ok {
		p.Default = def
	}
	return p, nil
}

var goTimeType = reflect.TypeOf(time.Time{})
var goPointType = reflect.TypeOf(Point{})

func propertyTypeFor(ft reflect.Type, opts map[string]string) (PropertyType, error) {
	if choices, ok := opts["choices"]; ok {
		return Enum(strings.Split(choices, "|")...), nil
	}
	if explicit, ok := opts["type"]; ok {
		switch explicit {
		case "string":
			return String(), nil
		case "integer":
			return Integer(), nil
		case "float":
			return Float(), nil
		case "boolean":
			return Boolean(), nil
		case "datetime":
			return DateTime(), nil
		case "point":
			return Spatial(), nil
		case "json":
			return JSON(), nil
		}
		return nil, fmt.Errorf("unknown property type %q", explicit)
	}
	if ft == goTimeType {
		return DateTime(), nil
	}
	if ft == goPointType {
		return Spatial(), nil
	}
	switch ft.Kind() {
	case reflect.String:
		return String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return Integer(), nil
	case reflect.Float32, reflect.Float64:
		return Float(), nil
	case reflect.Bool:
		return Boolean(), nil
	case reflect.Map, reflect.Slice, reflect.Struct:
		return JSON(), nil
	case reflect.Pointer:
		return propertyTypeFor(ft.Elem(), opts)
	}
	return nil, fmt.Errorf("unsupported field type %v", ft)
}

func relationshipFromTag(kind, name, relType string, opts map[string]string) (RelationshipSpec, error) {
	target := opts["target"]
	if relType == "" || target == "" {
		return RelationshipSpec{}, fmt.Errorf("kind %s, relationship %s: rel and target options are required", kind, name)
	}
	rel := RelationshipSpec{
		Name:       name,
		Type:       relType,
		Target:     target,
		Properties: opts["props"],
	}
	switch opts["direction"] {
	case "", "out":
		rel.Direction = Outgoing
	case "in":
		rel.Direction = Incoming
	case "either":
		rel.Direction = Either
	default:
		return RelationshipSpec{}, fmt.Errorf("kind %s, relationship %s: unknown direction %q", kind, name, opts["direction"])
	}
	switch opts["cardinality"] {
	case "", "zero-or-more":
		rel.Cardinality = ZeroOrMore
	case "zero-or-one":
		rel.Cardinality = ZeroOrOne
	case "exactly-one":
		rel.Cardinality = ExactlyOne
	case "one-or-more":
		rel.Cardinality = OneOrMore
	default:
		return RelationshipSpec{}, fmt.Errorf("kind %s, relationship %s: unknown cardinality %q", kind, name, opts["cardinality"])
	}
	if cascade, ok := opts["ondelete"]; ok {
		switch cascade {
		case "none":
			rel.OnDelete = CascadeNone
		case "cascade":
			rel.OnDelete = CascadeDelete
		default:
			return RelationshipSpec{}, fmt.Errorf("kind %s, relationship %s: unknown ondelete %q", kind, name, cascade)
		}
	}
	return rel, nil
}
