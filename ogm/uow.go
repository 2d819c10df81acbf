package ogm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/CaliLuke/go-neogm/cypher"
)

// matchByID matches an already-identified entity into varName.
func matchByID(varName string, elementID string) cypher.MatchClause {
	return cypher.Match(
		cypher.PathOf(cypher.NodeP(varName)),
		cypher.Cmp(cypher.ElementID(varName), "=", cypher.P(elementID)),
	)
}

func runStatement(ctx context.Context, tx Tx, st cypher.Statement) ([]Row, error) {
	stmt, params, err := cypher.NewCompiler().Compile(st)
	if err != nil {
		return nil, err
	}
	return tx.Run(ctx, stmt, params)
}

// Save persists the node. Unsaved nodes are created with their full encoded
// property set; persisted nodes receive a partial update touching only the
// properties that changed since the last load or save. Defaults and auto
// timestamps are applied, and every property violation is reported at once.
func (db *Database) Save(ctx context.Context, n *Node) error {
	if n.kind.edge {
		return &SchemaConflictError{Kind: n.kind.name, Detail: "edge kinds describe relationship properties and cannot be saved as nodes"}
	}
	encoded, err := n.encodeForSave(time.Now())
	if err != nil {
		return err
	}
	if !n.Persisted() {
		return db.create(ctx, n, encoded)
	}
	return db.update(ctx, n, encoded)
}

func (db *Database) create(ctx context.Context, n *Node, encoded map[string]any) error {
	st := cypher.Statement{Clauses: []cypher.Clause{
		cypher.Create(cypher.PathOf(cypher.NodeP("n0", n.kind.labels...))),
		cypher.Set(cypher.SetItem{Var: "n0", Value: cypher.P(encoded)}),
		cypher.Return(cypher.ReturnItem{Expr: cypher.ElementID("n0"), Alias: "id"}),
	}}
	return db.Write(ctx, func(tx Tx) error {
		rows, err := runStatement(ctx, tx, st)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("create %s: no row returned", n.kind.name)
		}
		id, ok := rows[0]["id"].(string)
		if !ok {
			return fmt.Errorf("create %s: id column: expected string, got %T", n.kind.name, rows[0]["id"])
		}
		n.markSaved(id, encoded)
		db.log.Debug("created node", zap.String("kind", n.kind.name), zap.String("id", id))
		return nil
	})
}

func (db *Database) update(ctx context.Context, n *Node, encoded map[string]any) error {
	set, unset := n.changes(encoded)
	if len(set) == 0 && len(unset) == 0 {
		return nil
	}
	items := make([]cypher.SetItem, 0, len(set)+len(unset))
	for _, spec := range n.kind.props {
		if v, ok := set[spec.Name]; ok {
			items = append(items, cypher.SetItem{Var: "n0", Prop: spec.Name, Value: cypher.P(v)})
		}
	}
	// Assigning null removes the property.
	for _, name := range unset {
		items = append(items, cypher.SetItem{Var: "n0", Prop: name, Value: cypher.P(nil)})
	}
	st := cypher.Statement{Clauses: []cypher.Clause{
		matchByID("n0", n.elementID),
		cypher.Set(items...),
	}}
	return db.Write(ctx, func(tx Tx) error {
		if _, err := runStatement(ctx, tx, st); err != nil {
			return err
		}
		n.markSaved(n.elementID, encoded)
		db.log.Debug("updated node",
			zap.String("kind", n.kind.name),
			zap.String("id", n.elementID),
			zap.Int("changed", len(items)))
		return nil
	})
}

// Delete removes a persisted node and its attached relationships. When
// another registered kind requires a relationship into this node, the
// relationship's cascade policy decides: CascadeNone blocks the delete with
// a CardinalityViolationError, CascadeDelete removes the dependents in the
// same transaction.
func (db *Database) Delete(ctx context.Context, n *Node) error {
	if !n.Persisted() {
		return &NotFoundError{Kind: n.kind.name}
	}
	deps := db.dependentRelationships(n.kind)
	return db.Write(ctx, func(tx Tx) error {
		for _, d := range deps {
			if err := db.resolveDependents(ctx, tx, n, d); err != nil {
				return err
			}
		}
		st := cypher.Statement{Clauses: []cypher.Clause{
			matchByID("n0", n.elementID),
			cypher.Delete(true, "n0"),
		}}
		if _, err := runStatement(ctx, tx, st); err != nil {
			return err
		}
		n.markDeleted()
		return nil
	})
}

type dependentRel struct {
	source *Kind
	rel    RelationshipSpec
}

// dependentRelationships lists relationships of other kinds that target the
// given kind with a minimum cardinality of at least one.
func (db *Database) dependentRelationships(target *Kind) []dependentRel {
	var out []dependentRel
	for _, k := range db.registry.Kinds() {
		for _, rel := range k.Relationships() {
			if rel.Target == target.name && rel.Cardinality.Min() >= 1 {
				out = append(out, dependentRel{source: k, rel: rel})
			}
		}
	}
	return out
}

// resolveDependents finds entities whose edges of the required relationship
// all point at n, and either deletes them or refuses. Edges to other targets
// are counted with DISTINCT so parallel edges to n cannot multiply the rows
// and hide a stranded dependent.
func (db *Database) resolveDependents(ctx context.Context, tx Tx, n *Node, d dependentRel) error {
	dir := toCypherDirection(d.rel.Direction)
	match := cypher.Match(
		cypher.PathOf(
			cypher.NodeP("s", d.source.labels...),
			cypher.Hop{Rel: cypher.RelP("", d.rel.Type, dir), Target: cypher.NodeP("x")},
		),
		cypher.Cmp(cypher.ElementID("x"), "=", cypher.P(n.elementID)),
	)
	others := cypher.OptionalMatch(
		cypher.PathOf(
			cypher.NodeP("s"),
			cypher.Hop{Rel: cypher.RelP("r2", d.rel.Type, dir), Target: cypher.NodeP("t")},
		),
		cypher.Cmp(cypher.ElementID("t"), "<>", cypher.P(n.elementID)),
	)
	narrow := cypher.With(
		cypher.Cmp(cypher.Ident{Var: "others"}, "=", cypher.P(0)),
		cypher.ReturnItem{Expr: cypher.Ident{Var: "s"}},
		cypher.ReturnItem{Expr: cypher.CountDistinct("r2"), Alias: "others"},
	)
	if d.rel.OnDelete == CascadeDelete {
		st := cypher.Statement{Clauses: []cypher.Clause{match, others, narrow, cypher.Delete(true, "s")}}
		_, err := runStatement(ctx, tx, st)
		return err
	}
	st := cypher.Statement{Clauses: []cypher.Clause{
		match, others, narrow,
		cypher.Return(cypher.ReturnItem{Expr: cypher.Count("s"), Alias: "total"}),
	}}
	rows, err := runStatement(ctx, tx, st)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		if total, ok := asInt64(rows[0]["total"]); ok && total > 0 {
			return &CardinalityViolationError{
				Kind:         d.source.name,
				Relationship: d.rel.Name,
				Cardinality:  d.rel.Cardinality,
				Actual:       0,
			}
		}
	}
	return nil
}

// Connect creates a relationship edge between two persisted nodes. The
// relationship must be declared on from's kind and to must be of its target
// kind. Upper cardinality bounds are enforced before the edge is created.
// Properties are validated against the relationship's edge kind when one is
// declared.
func (db *Database) Connect(ctx context.Context, from *Node, relationship string, to *Node, props map[string]any) error {
	rel, err := from.kind.Relationship(relationship)
	if err != nil {
		return err
	}
	if to.kind.name != rel.Target {
		return &SchemaConflictError{
			Kind:   from.kind.name,
			Detail: fmt.Sprintf("relationship %q targets %s, got %s", relationship, rel.Target, to.kind.name),
		}
	}
	if !from.Persisted() || !to.Persisted() {
		return &NotFoundError{Kind: from.kind.name}
	}
	encodedProps, err := db.encodeEdgeProps(rel, props)
	if err != nil {
		return err
	}
	return db.Write(ctx, func(tx Tx) error {
		if max := rel.Cardinality.Max(); max >= 0 {
			count, err := db.edgeCount(ctx, tx, from, rel)
			if err != nil {
				return err
			}
			if count >= int64(max) {
				return &CardinalityViolationError{
					Kind:         from.kind.name,
					Relationship: rel.Name,
					Cardinality:  rel.Cardinality,
					Actual:       int(count) + 1,
				}
			}
		}
		clauses := []cypher.Clause{
			matchByID("a", from.elementID),
			matchByID("b", to.elementID),
			cypher.Create(cypher.PathOf(
				cypher.NodeP("a"),
				cypher.Hop{
					Rel:    cypher.RelP("r", rel.Type, toCypherDirection(rel.Direction)),
					Target: cypher.NodeP("b"),
				},
			)),
		}
		if len(encodedProps) > 0 {
			clauses = append(clauses, cypher.Set(cypher.SetItem{Var: "r", Value: cypher.P(encodedProps)}))
		}
		_, err := runStatement(ctx, tx, cypher.Statement{Clauses: clauses})
		return err
	})
}

// Disconnect removes the edge between two persisted nodes. Lower cardinality
// bounds are enforced: removing the last edge of an exactly-one or
// one-or-more relationship is refused.
func (db *Database) Disconnect(ctx context.Context, from *Node, relationship string, to *Node) error {
	rel, err := from.kind.Relationship(relationship)
	if err != nil {
		return err
	}
	if !from.Persisted() || !to.Persisted() {
		return &NotFoundError{Kind: from.kind.name}
	}
	return db.Write(ctx, func(tx Tx) error {
		if min := rel.Cardinality.Min(); min > 0 {
			count, err := db.edgeCount(ctx, tx, from, rel)
			if err != nil {
				return err
			}
			if count <= int64(min) {
				return &CardinalityViolationError{
					Kind:         from.kind.name,
					Relationship: rel.Name,
					Cardinality:  rel.Cardinality,
					Actual:       int(count) - 1,
				}
			}
		}
		return db.deleteEdge(ctx, tx, from, rel, to)
	})
}

// Reconnect atomically moves a relationship from one target to another. The
// edge count is unchanged, so cardinality bounds cannot be violated; this is
// the way to repoint an exactly-one relationship.
func (db *Database) Reconnect(ctx context.Context, from *Node, relationship string, oldTo, newTo *Node) error {
	rel, err := from.kind.Relationship(relationship)
	if err != nil {
		return err
	}
	if newTo.kind.name != rel.Target {
		return &SchemaConflictError{
			Kind:   from.kind.name,
			Detail: fmt.Sprintf("relationship %q targets %s, got %s", relationship, rel.Target, newTo.kind.name),
		}
	}
	if !from.Persisted() || !oldTo.Persisted() || !newTo.Persisted() {
		return &NotFoundError{Kind: from.kind.name}
	}
	return db.Write(ctx, func(tx Tx) error {
		if err := db.deleteEdge(ctx, tx, from, rel, oldTo); err != nil {
			return err
		}
		st := cypher.Statement{Clauses: []cypher.Clause{
			matchByID("a", from.elementID),
			matchByID("b", newTo.elementID),
			cypher.Create(cypher.PathOf(
				cypher.NodeP("a"),
				cypher.Hop{
					Rel:    cypher.RelP("r", rel.Type, toCypherDirection(rel.Direction)),
					Target: cypher.NodeP("b"),
				},
			)),
		}}
		_, err := runStatement(ctx, tx, st)
		return err
	})
}

func (db *Database) edgeCount(ctx context.Context, tx Tx, from *Node, rel RelationshipSpec) (int64, error) {
	st := cypher.Statement{Clauses: []cypher.Clause{
		cypher.Match(
			cypher.PathOf(
				cypher.NodeP("a"),
				cypher.Hop{
					Rel:    cypher.RelP("r", rel.Type, toCypherDirection(rel.Direction)),
					Target: cypher.NodeP(""),
				},
			),
			cypher.Cmp(cypher.ElementID("a"), "=", cypher.P(from.elementID)),
		),
		cypher.Return(cypher.ReturnItem{Expr: cypher.Count("r"), Alias: "total"}),
	}}
	rows, err := runStatement(ctx, tx, st)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	total, ok := asInt64(rows[0]["total"])
	if !ok {
		return 0, fmt.Errorf("count column: expected an integer, got %T", rows[0]["total"])
	}
	return total, nil
}

func (db *Database) deleteEdge(ctx context.Context, tx Tx, from *Node, rel RelationshipSpec, to *Node) error {
	st := cypher.Statement{Clauses: []cypher.Clause{
		cypher.Match(
			cypher.PathOf(
				cypher.NodeP("a"),
				cypher.Hop{
					Rel:    cypher.RelP("r", rel.Type, toCypherDirection(rel.Direction)),
					Target: cypher.NodeP("b"),
				},
			),
			cypher.And{Conds: []cypher.Cond{
				cypher.Cmp(cypher.ElementID("a"), "=", cypher.P(from.elementID)),
				cypher.Cmp(cypher.ElementID("b"), "=", cypher.P(to.elementID)),
			}},
		),
		cypher.Delete(false, "r"),
	}}
	_, err := runStatement(ctx, tx, st)
	return err
}

// encodeEdgeProps validates and encodes relationship properties against the
// declared edge kind. Without a declared edge kind, properties pass through
// untyped.
func (db *Database) encodeEdgeProps(rel RelationshipSpec, props map[string]any) (map[string]any, error) {
	if len(props) == 0 {
		return nil, nil
	}
	if rel.Properties == "" {
		return props, nil
	}
	edge, ok := db.registry.Kind(rel.Properties)
	if !ok {
		return nil, &UnmappedKindError{Labels: []string{rel.Properties}}
	}
	inst := edge.New()
	for name, v := range props {
		if err := inst.Set(name, v); err != nil {
			return nil, err
		}
	}
	return inst.encodeForSave(time.Now())
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}
