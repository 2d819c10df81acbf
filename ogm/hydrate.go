package ogm

// Hydrator turns raw stored entities into typed Node instances using a
// registry for label resolution. Hydrators are stateless and safe for
// concurrent use.
type Hydrator struct {
	registry *Registry
}

// NewHydrator returns a hydrator over the given registry.
func NewHydrator(r *Registry) *Hydrator { return &Hydrator{registry: r} }

// Node resolves the raw node's label set to a registered kind and decodes
// its properties. Stored properties the kind does not declare are dropped.
// Every call returns an independent instance, even for the same stored node.
func (h *Hydrator) Node(raw RawNode) (*Node, error) {
	k, err := h.registry.Resolve(raw.Labels)
	if err != nil {
		return nil, err
	}
	n := k.New()
	if err := n.decodeInto(raw.ElementID, raw.Props); err != nil {
		return nil, err
	}
	return n, nil
}

// Relationship decodes a raw relationship's properties against the named
// edge kind. With an empty kind name the properties pass through undecoded.
func (h *Hydrator) Relationship(raw RawRelationship, edgeKind string) (map[string]any, error) {
	if edgeKind == "" {
		return raw.Props, nil
	}
	k, ok := h.registry.Kind(edgeKind)
	if !ok {
		return nil, &UnmappedKindError{Labels: []string{edgeKind}}
	}
	n := k.New()
	if err := n.decodeInto(raw.ElementID, raw.Props); err != nil {
		return nil, err
	}
	return n.Values(), nil
}

// Column hydrates one node-valued column across a row set. Rows where the
// column is null are skipped.
func (h *Hydrator) Column(rows []Row, column string) ([]*Node, error) {
	out := make([]*Node, 0, len(rows))
	for _, row := range rows {
		raw, ok := row[column].(RawNode)
		if !ok {
			continue
		}
		n, err := h.Node(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
