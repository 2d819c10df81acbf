// Package ogm provides the per-type encode/decode/validate contracts shared
// by entity hydration and query-parameter coercion.
package ogm

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// PropertyType is the capability set every property implements. Encode turns
// an application value into the storage primitive sent to the database,
// Decode is its inverse, and Validate reports why a value is unacceptable.
// Decode(Encode(v)) == v holds for every representable value.
type PropertyType interface {
	// Name returns the semantic type tag ("string", "integer", ...).
	Name() string
	// Encode converts an application value to its storage primitive.
	Encode(v any) (any, error)
	// Decode converts a storage primitive back to the application value.
	Decode(stored any) (any, error)
	// Validate reports an error describing why v is not acceptable, or nil.
	Validate(v any) error
}

// Point is a spatial coordinate with its coordinate reference system tag.
// The SRID is carried through encode/decode untouched; values are never
// reprojected.
type Point struct {
	X, Y float64
	SRID uint32
}

// Well-known spatial reference identifiers for 2D points.
const (
	SRIDWGS84     uint32 = 4326
	SRIDCartesian uint32 = 7203
)

// --- Constructors ---

// String returns the string property type.
func String() PropertyType { return stringType{} }

// Integer returns the 64-bit integer property type.
func Integer() PropertyType { return integerType{} }

// Float returns the 64-bit float property type.
func Float() PropertyType { return floatType{} }

// Boolean returns the boolean property type.
func Boolean() PropertyType { return booleanType{} }

// DateTime returns the timezone-aware datetime property type.
func DateTime() PropertyType { return dateTimeType{} }

// Spatial returns the spatial point property type.
func Spatial() PropertyType { return pointType{} }

// Enum returns an enumerated string property restricted to choices.
func Enum(choices ...string) PropertyType { return enumType{choices: choices} }

// JSON returns a property type that stores arbitrary values as a JSON string.
func JSON() PropertyType { return jsonType{} }

// --- string ---

type stringType struct{}

func (stringType) Name() string { return "string" }

func (stringType) Validate(v any) error {
	if _, ok := v.(string); !ok {
		return fmt.Errorf("expected string, got %T", v)
	}
	return nil
}

func (t stringType) Encode(v any) (any, error) {
	if err := t.Validate(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (stringType) Decode(stored any) (any, error) {
	s, ok := stored.(string)
	if !ok {
		return nil, fmt.Errorf("expected stored string, got %T", stored)
	}
	return s, nil
}

// --- integer ---

type integerType struct{}

func (integerType) Name() string { return "integer" }

// Validate rejects uint and uint64: both can hold values above MaxInt64,
// which would wrap negative when normalized to the storage primitive.
func (integerType) Validate(v any) error {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return nil
	}
	return fmt.Errorf("expected integer, got %T", v)
}

// Encode normalizes every integer width to int64, the storage primitive.
func (t integerType) Encode(v any) (any, error) {
	if err := t.Validate(v); err != nil {
		return nil, err
	}
	return reflect.ValueOf(v).Convert(reflect.TypeOf(int64(0))).Interface(), nil
}

func (integerType) Decode(stored any) (any, error) {
	switch n := stored.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	default:
		return nil, fmt.Errorf("expected stored integer, got %T", stored)
	}
}

// --- float ---

type floatType struct{}

func (floatType) Name() string { return "float" }

func (floatType) Validate(v any) error {
	switch v.(type) {
	case float64, float32:
		return nil
	}
	return fmt.Errorf("expected float, got %T", v)
}

func (t floatType) Encode(v any) (any, error) {
	if err := t.Validate(v); err != nil {
		return nil, err
	}
	if f32, ok := v.(float32); ok {
		return float64(f32), nil
	}
	return v, nil
}

func (floatType) Decode(stored any) (any, error) {
	switch n := stored.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	default:
		return nil, fmt.Errorf("expected stored float, got %T", stored)
	}
}

// --- boolean ---

type booleanType struct{}

func (booleanType) Name() string { return "boolean" }

func (booleanType) Validate(v any) error {
	if _, ok := v.(bool); !ok {
		return fmt.Errorf("expected boolean, got %T", v)
	}
	return nil
}

func (t booleanType) Encode(v any) (any, error) {
	if err := t.Validate(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (booleanType) Decode(stored any) (any, error) {
	b, ok := stored.(bool)
	if !ok {
		return nil, fmt.Errorf("expected stored boolean, got %T", stored)
	}
	return b, nil
}

// --- datetime ---

type dateTimeType struct{}

func (dateTimeType) Name() string { return "datetime" }

func (dateTimeType) Validate(v any) error {
	if _, ok := v.(time.Time); !ok {
		return fmt.Errorf("expected time.Time, got %T", v)
	}
	return nil
}

// Encode passes time.Time through unchanged; the driver serializes it as a
// zoned datetime, so the location survives the round trip.
func (t dateTimeType) Encode(v any) (any, error) {
	if err := t.Validate(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (dateTimeType) Decode(stored any) (any, error) {
	switch v := stored.(type) {
	case time.Time:
		return v, nil
	case dbtype.LocalDateTime:
		return v.Time(), nil
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("cannot parse datetime string %q: %w", v, err)
		}
		return parsed, nil
	default:
		return nil, fmt.Errorf("expected stored datetime, got %T", stored)
	}
}

// --- spatial point ---

type pointType struct{}

func (pointType) Name() string { return "point" }

func (pointType) Validate(v any) error {
	p, ok := v.(Point)
	if !ok {
		return fmt.Errorf("expected ogm.Point, got %T", v)
	}
	if p.SRID == 0 {
		return fmt.Errorf("point is missing its coordinate reference system (SRID)")
	}
	return nil
}

func (t pointType) Encode(v any) (any, error) {
	if err := t.Validate(v); err != nil {
		return nil, err
	}
	p := v.(Point)
	return dbtype.Point2D{SpatialRefId: p.SRID, X: p.X, Y: p.Y}, nil
}

func (pointType) Decode(stored any) (any, error) {
	p, ok := stored.(dbtype.Point2D)
	if !ok {
		return nil, fmt.Errorf("expected stored point, got %T", stored)
	}
	return Point{X: p.X, Y: p.Y, SRID: p.SpatialRefId}, nil
}

// --- enumerated ---

type enumType struct {
	choices []string
}

func (enumType) Name() string { return "enum" }

func (t enumType) Validate(v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", v)
	}
	for _, c := range t.choices {
		if c == s {
			return nil
		}
	}
	return &InvalidChoiceError{Value: s, Allowed: t.choices}
}

func (t enumType) Encode(v any) (any, error) {
	if err := t.Validate(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (t enumType) Decode(stored any) (any, error) {
	s, ok := stored.(string)
	if !ok {
		return nil, fmt.Errorf("expected stored string, got %T", stored)
	}
	return s, nil
}

// --- JSON blob ---

type jsonType struct{}

func (jsonType) Name() string { return "json" }

func (jsonType) Validate(v any) error {
	if _, err := json.Marshal(v); err != nil {
		return fmt.Errorf("value is not JSON-serializable: %w", err)
	}
	return nil
}

func (t jsonType) Encode(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("value is not JSON-serializable: %w", err)
	}
	return string(data), nil
}

func (jsonType) Decode(stored any) (any, error) {
	s, ok := stored.(string)
	if !ok {
		return nil, fmt.Errorf("expected stored JSON string, got %T", stored)
	}
	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("cannot parse stored JSON: %w", err)
	}
	return out, nil
}
