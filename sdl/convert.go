package sdl

import (
	"fmt"
	"strconv"

	"github.com/CaliLuke/go-neogm/ogm"
)

// KindSpecs converts a parsed schema file into registrable kind specs, in
// declaration order.
func KindSpecs(file *File) ([]ogm.KindSpec, error) {
	specs := make([]ogm.KindSpec, 0, len(file.Decls))
	for _, d := range file.Decls {
		switch {
		case d.Node != nil:
			spec, err := nodeSpec(d.Node)
			if err != nil {
				return nil, err
			}
			specs = append(specs, spec)
		case d.Edge != nil:
			spec, err := edgeSpec(d.Edge)
			if err != nil {
				return nil, err
			}
			specs = append(specs, spec)
		}
	}
	return specs, nil
}

// Load parses schema text and converts it in one step.
func Load(input string) ([]ogm.KindSpec, error) {
	file, err := Parse(input)
	if err != nil {
		return nil, err
	}
	return KindSpecs(file)
}

// LoadFile parses a schema file from disk and converts it.
func LoadFile(path string) ([]ogm.KindSpec, error) {
	file, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return KindSpecs(file)
}

// Register loads schema text and registers every kind in the registry.
func Register(r *ogm.Registry, input string) ([]*ogm.Kind, error) {
	specs, err := Load(input)
	if err != nil {
		return nil, err
	}
	kinds := make([]*ogm.Kind, 0, len(specs))
	for _, spec := range specs {
		k, err := r.Register(spec)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func nodeSpec(decl *NodeDecl) (ogm.KindSpec, error) {
	spec := ogm.KindSpec{Name: decl.Name, Labels: decl.Labels}
	for _, m := range decl.Members {
		switch {
		case m.Rel != nil:
			rel, err := relationship(decl.Name, m.Rel)
			if err != nil {
				return ogm.KindSpec{}, err
			}
			spec.Relationships = append(spec.Relationships, rel)
		case m.Prop != nil:
			prop, err := property(decl.Name, m.Prop)
			if err != nil {
				return ogm.KindSpec{}, err
			}
			spec.Properties = append(spec.Properties, prop)
		}
	}
	return spec, nil
}

func edgeSpec(decl *EdgeDecl) (ogm.KindSpec, error) {
	spec := ogm.KindSpec{Name: decl.Name, Edge: true}
	for i := range decl.Props {
		prop, err := property(decl.Name, &decl.Props[i])
		if err != nil {
			return ogm.KindSpec{}, err
		}
		spec.Properties = append(spec.Properties, prop)
	}
	return spec, nil
}

func property(kind string, decl *PropDecl) (ogm.PropertySpec, error) {
	p := ogm.PropertySpec{Name: decl.Name}
	var choices []string
	for _, a := range decl.Annots {
		switch {
		case a.Required:
			p.Required = true
		case a.Unique:
			p.Unique = true
		case a.Indexed:
			p.Indexed = true
		case a.UID:
			if decl.Type != "string" {
				return p, fmt.Errorf("kind %s, property %s: @uid requires a string property, got %s", kind, decl.Name, decl.Type)
			}
			uid := ogm.UniqueID(decl.Name)
			uid.Required, uid.Indexed = p.Required, p.Indexed
			p = uid
		case a.AutoNow:
			p.AutoNow = true
		case a.AutoNowAdd:
			p.AutoNowAdd = true
		case a.Default != nil:
			v, err := unquote(a.Default.Value)
			if err != nil {
				return p, fmt.Errorf("kind %s, property %s: %w", kind, decl.Name, err)
			}
			p.Default = v
		case a.Choices != nil:
			for _, q := range a.Choices.Values {
				v, err := unquote(q)
				if err != nil {
					return p, fmt.Errorf("kind %s, property %s: %w", kind, decl.Name, err)
				}
				choices = append(choices, v)
			}
		case a.Card != nil, a.OnDelete != nil, a.Props != nil:
			return p, fmt.Errorf("kind %s, property %s: relationship annotation on a property", kind, decl.Name)
		}
	}
	if p.Type == nil {
		pt, err := propertyType(decl.Type, choices)
		if err != nil {
			return p, fmt.Errorf("kind %s, property %s: %w", kind, decl.Name, err)
		}
		p.Type = pt
	}
	return p, nil
}

func propertyType(name string, choices []string) (ogm.PropertyType, error) {
	if len(choices) > 0 {
		if name != "string" {
			return nil, fmt.Errorf("@choices requires a string property, got %s", name)
		}
		return ogm.Enum(choices...), nil
	}
	switch name {
	case "string":
		return ogm.String(), nil
	case "integer":
		return ogm.Integer(), nil
	case "float":
		return ogm.Float(), nil
	case "boolean":
		return ogm.Boolean(), nil
	case "datetime":
		return ogm.DateTime(), nil
	case "point":
		return ogm.Spatial(), nil
	case "json":
		return ogm.JSON(), nil
	}
	return nil, fmt.Errorf("unknown property type %q", name)
}

func relationship(kind string, decl *RelDecl) (ogm.RelationshipSpec, error) {
	rel := ogm.RelationshipSpec{
		Name:   decl.Name,
		Type:   decl.Type,
		Target: decl.Target,
	}
	switch decl.Direction {
	case "->":
		rel.Direction = ogm.Outgoing
	case "<-":
		rel.Direction = ogm.Incoming
	case "--":
		rel.Direction = ogm.Either
	default:
		return rel, fmt.Errorf("kind %s, relationship %s: unknown direction %q", kind, decl.Name, decl.Direction)
	}
	for _, a := range decl.Annots {
		switch {
		case a.Card != nil:
			switch a.Card.Value {
			case "zero-or-more":
				rel.Cardinality = ogm.ZeroOrMore
			case "zero-or-one":
				rel.Cardinality = ogm.ZeroOrOne
			case "exactly-one":
				rel.Cardinality = ogm.ExactlyOne
			case "one-or-more":
				rel.Cardinality = ogm.OneOrMore
			default:
				return rel, fmt.Errorf("kind %s, relationship %s: unknown cardinality %q", kind, decl.Name, a.Card.Value)
			}
		case a.OnDelete != nil:
			switch a.OnDelete.Value {
			case "none":
				rel.OnDelete = ogm.CascadeNone
			case "cascade":
				rel.OnDelete = ogm.CascadeDelete
			default:
				return rel, fmt.Errorf("kind %s, relationship %s: unknown ondelete %q", kind, decl.Name, a.OnDelete.Value)
			}
		case a.Props != nil:
			rel.Properties = a.Props.Value
		default:
			return rel, fmt.Errorf("kind %s, relationship %s: property annotation on a relationship", kind, decl.Name)
		}
	}
	return rel, nil
}

func unquote(s string) (string, error) {
	v, err := strconv.Unquote(s)
	if err != nil {
		return "", fmt.Errorf("bad string literal %s: %w", s, err)
	}
	return v, nil
}
