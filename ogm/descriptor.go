// Package ogm describes declarative kind, property, and relationship schemas.
package ogm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Direction states which way a relationship is drawn from its source kind.
type Direction int

const (
	// Outgoing draws source -[:TYPE]-> target.
	Outgoing Direction = iota
	// Incoming draws source <-[:TYPE]- target.
	Incoming
	// Either matches the relationship regardless of direction.
	Either
)

// String returns the lowercase name of the direction.
func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "outgoing"
	case Incoming:
		return "incoming"
	case Either:
		return "either"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// Cardinality bounds how many relationship instances of a given type an
// entity may participate in.
type Cardinality int

const (
	// ZeroOrMore places no bound.
	ZeroOrMore Cardinality = iota
	// ZeroOrOne allows at most one edge.
	ZeroOrOne
	// ExactlyOne requires exactly one edge.
	ExactlyOne
	// OneOrMore requires at least one edge.
	OneOrMore
)

// Min returns the minimum number of edges the constraint requires.
func (c Cardinality) Min() int {
	if c == ExactlyOne || c == OneOrMore {
		return 1
	}
	return 0
}

// Max returns the maximum number of edges allowed, or -1 for unbounded.
func (c Cardinality) Max() int {
	if c == ZeroOrOne || c == ExactlyOne {
		return 1
	}
	return -1
}

// String returns the kebab-case name of the cardinality.
func (c Cardinality) String() string {
	switch c {
	case ZeroOrMore:
		return "zero-or-more"
	case ZeroOrOne:
		return "zero-or-one"
	case ExactlyOne:
		return "exactly-one"
	case OneOrMore:
		return "one-or-more"
	}
	return fmt.Sprintf("cardinality(%d)", int(c))
}

// CascadePolicy decides what Delete does with entities connected through a
// relationship whose minimum cardinality the delete would break.
type CascadePolicy int

const (
	// CascadeNone blocks the delete with a CardinalityViolationError.
	CascadeNone CascadePolicy = iota
	// CascadeDelete deletes the dependent entities in the same transaction.
	CascadeDelete
)

// PropertySpec declares one typed property of a kind.
type PropertySpec struct {
	// Name is the stored property name.
	Name string
	// Type is the semantic property type.
	Type PropertyType
	// Required rejects saves where the property is absent and has no default.
	Required bool
	// Unique requests a database uniqueness constraint on the property.
	Unique bool
	// Indexed requests a plain index on the property.
	Indexed bool
	// Default fills an absent value at save time. It may be a plain value
	// or a func() any evaluated per save.
	Default any
	// AutoNow refreshes a datetime property on every save.
	AutoNow bool
	// AutoNowAdd sets a datetime property once, when the instance is created.
	AutoNowAdd bool
}

// UniqueID returns a PropertySpec for a client-generated unique identifier:
// a unique-indexed string defaulting to a fresh UUID per instance.
func UniqueID(name string) PropertySpec {
	return PropertySpec{
		Name:    name,
		Type:    String(),
		Unique:  true,
		Default: func() any { return uuid.NewString() },
	}
}

// RelationshipSpec declares one named relationship of a kind.
type RelationshipSpec struct {
	// Name is the application-level name used in traversals and Connect.
	Name string
	// Type is the relationship type label stored in the database.
	Type string
	// Target is the kind name of the entity on the other end.
	Target string
	// Direction is the drawn direction from the declaring kind.
	Direction Direction
	// Cardinality bounds how many such edges the declaring entity may hold.
	Cardinality Cardinality
	// OnDelete decides cascade behavior when a delete would break the bound.
	OnDelete CascadePolicy
	// Properties optionally names a registered edge kind describing
	// properties attached to the relationship itself.
	Properties string
}

// KindSpec is the declarative input to registration.
type KindSpec struct {
	// Name is the kind name; it doubles as the primary label.
	Name string
	// Labels is the full label set. When empty it defaults to [Name].
	Labels []string
	// Edge marks the kind as a relationship-property descriptor: it maps to
	// a relationship type instead of a node label set.
	Edge bool
	// Properties are the typed properties, in declaration order.
	Properties []PropertySpec
	// Relationships are the declared relationships, in declaration order.
	Relationships []RelationshipSpec
}

// Kind is an immutable registered descriptor. All lookups are read-only, so
// a Kind is safe for concurrent use once returned by Register.
type Kind struct {
	name   string
	labels []string
	edge   bool

	props     []PropertySpec
	propIndex map[string]int

	rels     []RelationshipSpec
	relIndex map[string]int

	// order is the registration sequence number, used for resolve ties.
	order int
}

func newKind(spec KindSpec, order int) *Kind {
	labels := spec.Labels
	if len(labels) == 0 {
		labels = []string{spec.Name}
	}
	k := &Kind{
		name:      spec.Name,
		labels:    append([]string(nil), labels...),
		edge:      spec.Edge,
		props:     append([]PropertySpec(nil), spec.Properties...),
		propIndex: make(map[string]int, len(spec.Properties)),
		rels:      append([]RelationshipSpec(nil), spec.Relationships...),
		relIndex:  make(map[string]int, len(spec.Relationships)),
		order:     order,
	}
	for i, p := range k.props {
		k.propIndex[p.Name] = i
	}
	for i, r := range k.rels {
		k.relIndex[r.Name] = i
	}
	return k
}

// Name returns the kind name.
func (k *Kind) Name() string { return k.name }

// Labels returns a copy of the kind's label set.
func (k *Kind) Labels() []string { return append([]string(nil), k.labels...) }

// Edge reports whether the kind describes relationship properties.
func (k *Kind) Edge() bool { return k.edge }

// Properties returns the property specs in declaration order.
func (k *Kind) Properties() []PropertySpec { return append([]PropertySpec(nil), k.props...) }

// Relationships returns the relationship specs in declaration order.
func (k *Kind) Relationships() []RelationshipSpec {
	return append([]RelationshipSpec(nil), k.rels...)
}

// Property looks up a property spec by name.
func (k *Kind) Property(name string) (PropertySpec, error) {
	i, ok := k.propIndex[name]
	if !ok {
		return PropertySpec{}, &UnknownPropertyError{Kind: k.name, Property: name}
	}
	return k.props[i], nil
}

// Relationship looks up a relationship spec by name.
func (k *Kind) Relationship(name string) (RelationshipSpec, error) {
	i, ok := k.relIndex[name]
	if !ok {
		return RelationshipSpec{}, &UnknownRelationshipError{Kind: k.name, Relationship: name}
	}
	return k.rels[i], nil
}

// labelsSubsetOf reports whether every label of the kind appears in labels.
func (k *Kind) labelsSubsetOf(labels []string) bool {
	for _, own := range k.labels {
		found := false
		for _, l := range labels {
			if l == own {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// fingerprint renders the registration-relevant shape of a spec so conflicting
// re-registrations can be detected by string comparison. Defaults are
// excluded: two registrations differing only in default funcs are compatible.
func fingerprint(spec KindSpec) string {
	var b strings.Builder
	labels := spec.Labels
	if len(labels) == 0 {
		labels = []string{spec.Name}
	}
	sorted := append([]string(nil), labels...)
	sort.Strings(sorted)
	fmt.Fprintf(&b, "kind %s labels=%s edge=%t\n", spec.Name, strings.Join(sorted, ","), spec.Edge)
	for _, p := range spec.Properties {
		fmt.Fprintf(&b, "prop %s type=%s required=%t unique=%t indexed=%t autonow=%t autonowadd=%t\n",
			p.Name, p.Type.Name(), p.Required, p.Unique, p.Indexed, p.AutoNow, p.AutoNowAdd)
	}
	for _, r := range spec.Relationships {
		fmt.Fprintf(&b, "rel %s type=%s target=%s dir=%s card=%s cascade=%d props=%s\n",
			r.Name, r.Type, r.Target, r.Direction, r.Cardinality, r.OnDelete, r.Properties)
	}
	return b.String()
}
