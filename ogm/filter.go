package ogm

import (
	"fmt"
	"reflect"

	"github.com/CaliLuke/go-neogm/cypher"
)

// Predicate is a filter condition over properties of a traversal segment.
// Predicates are immutable values; combine them with And, Or, and Not.
type Predicate interface {
	compile(k *Kind, varName string) (cypher.Cond, error)
}

type comparison struct {
	property string
	op       string
	value    any
	// raw skips the property-type encoder, for string operators like
	// CONTAINS and =~ whose operand is not a stored value of the property.
	raw bool
}

func (c comparison) compile(k *Kind, varName string) (cypher.Cond, error) {
	spec, err := k.Property(c.property)
	if err != nil {
		return nil, err
	}
	operand := c.value
	if !c.raw {
		encoded, err := encodeOperand(spec, c.value)
		if err != nil {
			return nil, err
		}
		operand = encoded
	}
	return cypher.Cmp(cypher.Property(varName, c.property), c.op, cypher.P(operand)), nil
}

// encodeOperand encodes a filter operand with the property's type. Slices
// are encoded element-wise so IN lists hold stored representations.
func encodeOperand(spec PropertySpec, value any) (any, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			enc, err := spec.Type.Encode(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = enc
		}
		return out, nil
	}
	return spec.Type.Encode(value)
}

type nullCheck struct {
	property string
	negated  bool
}

func (c nullCheck) compile(k *Kind, varName string) (cypher.Cond, error) {
	if _, err := k.Property(c.property); err != nil {
		return nil, err
	}
	return cypher.IsNull{Subject: cypher.Property(varName, c.property), Negated: c.negated}, nil
}

type junction struct {
	or    bool
	parts []Predicate
}

func (j junction) compile(k *Kind, varName string) (cypher.Cond, error) {
	conds := make([]cypher.Cond, len(j.parts))
	for i, p := range j.parts {
		c, err := p.compile(k, varName)
		if err != nil {
			return nil, err
		}
		conds[i] = c
	}
	if j.or {
		return cypher.Or{Conds: conds}, nil
	}
	return cypher.And{Conds: conds}, nil
}

type negation struct{ inner Predicate }

func (n negation) compile(k *Kind, varName string) (cypher.Cond, error) {
	c, err := n.inner.compile(k, varName)
	if err != nil {
		return nil, err
	}
	return cypher.Not{Inner: c}, nil
}

// Eq matches property = value.
func Eq(property string, value any) Predicate { return comparison{property, "=", value, false} }

// Neq matches property <> value.
func Neq(property string, value any) Predicate { return comparison{property, "<>", value, false} }

// Gt matches property > value.
func Gt(property string, value any) Predicate { return comparison{property, ">", value, false} }

// Gte matches property >= value.
func Gte(property string, value any) Predicate { return comparison{property, ">=", value, false} }

// Lt matches property < value.
func Lt(property string, value any) Predicate { return comparison{property, "<", value, false} }

// Lte matches property <= value.
func Lte(property string, value any) Predicate { return comparison{property, "<=", value, false} }

// In matches property IN values.
func In(property string, values any) Predicate { return comparison{property, "IN", values, false} }

// Contains matches string properties containing the fragment.
func Contains(property, fragment string) Predicate {
	return comparison{property, "CONTAINS", fragment, true}
}

// StartsWith matches string properties starting with the prefix.
func StartsWith(property, prefix string) Predicate {
	return comparison{property, "STARTS WITH", prefix, true}
}

// EndsWith matches string properties ending with the suffix.
func EndsWith(property, suffix string) Predicate {
	return comparison{property, "ENDS WITH", suffix, true}
}

// Regex matches string properties against a Cypher regular expression.
func Regex(property, pattern string) Predicate { return comparison{property, "=~", pattern, true} }

// IsNull matches absent properties.
func IsNull(property string) Predicate { return nullCheck{property: property} }

// NotNull matches present properties.
func NotNull(property string) Predicate { return nullCheck{property: property, negated: true} }

// And matches when every part matches.
func And(parts ...Predicate) Predicate { return junction{or: false, parts: parts} }

// Or matches when any part matches.
func Or(parts ...Predicate) Predicate { return junction{or: true, parts: parts} }

// Not inverts a predicate.
func Not(inner Predicate) Predicate { return negation{inner: inner} }
