package ogm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/CaliLuke/go-neogm/cypher"
)

// Runner executes one read statement and returns its rows. *Database
// implements it; tests substitute fakes.
type Runner interface {
	Read(ctx context.Context, statement string, params map[string]any) ([]Row, error)
}

type orderTerm struct {
	// variable is the bound query variable of the segment the term was
	// declared on. Ordering declared before a Traverse keeps sorting on
	// the earlier segment's properties.
	variable string
	property string
	desc     bool
}

type compiledQuery struct {
	statement string
	params    map[string]any
	err       error
}

// QuerySet is a lazy, immutable query over one kind, optionally extended by
// traversals. Every chaining method returns a new QuerySet sharing its
// ancestors, so partial chains can be reused and extended independently.
// Compilation happens once per QuerySet and is cached.
type QuerySet struct {
	registry *Registry

	kind     *Kind
	parent   *QuerySet
	rel      *RelationshipSpec
	optional bool
	depth    int

	filters []Predicate

	order    []orderTerm
	skip     int
	limit    int
	distinct bool

	err error

	compileOnce sync.Once
	compiled    compiledQuery
}

// Query starts a query over the named kind in the default registry.
func Query(kind string) *QuerySet { return defaultRegistry.Query(kind) }

// Query starts a query over the named kind.
func (r *Registry) Query(kind string) *QuerySet {
	q := &QuerySet{registry: r, skip: -1, limit: -1}
	k, ok := r.Kind(kind)
	if !ok {
		q.err = &UnmappedKindError{Labels: []string{kind}}
		return q
	}
	q.kind = k
	return q
}

// Query starts a query over the kind in the default registry.
func (k *Kind) Query() *QuerySet {
	return &QuerySet{registry: defaultRegistry, kind: k, skip: -1, limit: -1}
}

// clone copies the chain node without its compile cache.
func (q *QuerySet) clone() *QuerySet {
	return &QuerySet{
		registry: q.registry,
		kind:     q.kind,
		parent:   q.parent,
		rel:      q.rel,
		optional: q.optional,
		depth:    q.depth,
		filters:  q.filters,
		order:    q.order,
		skip:     q.skip,
		limit:    q.limit,
		distinct: q.distinct,
		err:      q.err,
	}
}

// Filter narrows the current traversal segment. Filters added after a
// Traverse apply to the traversal's target, not to the root.
func (q *QuerySet) Filter(preds ...Predicate) *QuerySet {
	if q.err != nil {
		return q
	}
	next := q.clone()
	for _, p := range preds {
		if _, err := p.compile(q.kind, nodeVar(q.depth)); err != nil {
			next.err = err
			return next
		}
	}
	next.filters = append(append([]Predicate(nil), q.filters...), preds...)
	return next
}

// Traverse follows a declared relationship of the current segment's kind.
// The result's segment is the relationship target; rows missing the edge are
// excluded.
func (q *QuerySet) Traverse(relationship string) *QuerySet {
	return q.traverse(relationship, false)
}

// TraverseOptional follows a relationship without requiring it: rows where
// the edge is absent survive with a null target.
func (q *QuerySet) TraverseOptional(relationship string) *QuerySet {
	return q.traverse(relationship, true)
}

func (q *QuerySet) traverse(relationship string, optional bool) *QuerySet {
	if q.err != nil {
		return q
	}
	rel, err := q.kind.Relationship(relationship)
	if err != nil {
		next := q.clone()
		next.err = err
		return next
	}
	target, ok := q.registry.Kind(rel.Target)
	if !ok {
		next := q.clone()
		next.err = &UnmappedKindError{Labels: []string{rel.Target}}
		return next
	}
	return &QuerySet{
		registry: q.registry,
		kind:     target,
		parent:   q,
		rel:      &rel,
		optional: optional,
		depth:    q.depth + 1,
		order:    q.order,
		skip:     q.skip,
		limit:    q.limit,
		distinct: q.distinct,
	}
}

// OrderBy sorts results by the named properties of the current segment.
// Prefix a name with "-" for descending order. Later calls replace earlier
// ordering. Ordering declared before a Traverse stays bound to the segment
// it was declared on.
func (q *QuerySet) OrderBy(properties ...string) *QuerySet {
	if q.err != nil {
		return q
	}
	next := q.clone()
	terms := make([]orderTerm, 0, len(properties))
	for _, p := range properties {
		t := orderTerm{variable: nodeVar(q.depth), property: p}
		if strings.HasPrefix(p, "-") {
			t = orderTerm{variable: nodeVar(q.depth), property: p[1:], desc: true}
		}
		if _, err := q.kind.Property(t.property); err != nil {
			next.err = err
			return next
		}
		terms = append(terms, t)
	}
	next.order = terms
	return next
}

// Skip drops the first n results.
func (q *QuerySet) Skip(n int) *QuerySet {
	if q.err != nil {
		return q
	}
	next := q.clone()
	next.skip = n
	return next
}

// Limit caps the number of results.
func (q *QuerySet) Limit(n int) *QuerySet {
	if q.err != nil {
		return q
	}
	next := q.clone()
	next.limit = n
	return next
}

// Distinct deduplicates returned entities.
func (q *QuerySet) Distinct() *QuerySet {
	if q.err != nil {
		return q
	}
	next := q.clone()
	next.distinct = true
	return next
}

// Err returns the first error recorded while building the chain.
func (q *QuerySet) Err() error { return q.err }

func nodeVar(depth int) string { return fmt.Sprintf("n%d", depth) }
func relVar(depth int) string  { return fmt.Sprintf("r%d", depth) }

func toCypherDirection(d Direction) cypher.Direction {
	switch d {
	case Incoming:
		return cypher.DirIn
	case Either:
		return cypher.DirBoth
	}
	return cypher.DirOut
}

// segments returns the chain from root to tip.
func (q *QuerySet) segments() []*QuerySet {
	segs := make([]*QuerySet, q.depth+1)
	for s := q; s != nil; s = s.parent {
		segs[s.depth] = s
	}
	return segs
}

// matchClauses builds the MATCH and OPTIONAL MATCH clauses for the chain.
// Consecutive segments with the same optionality share one clause; an
// optional group starts from the previous segment's already-bound variable.
func (q *QuerySet) matchClauses() ([]cypher.Clause, error) {
	segs := q.segments()
	var clauses []cypher.Clause

	var path cypher.Path
	var conds []cypher.Cond
	groupOptional := false

	flush := func() {
		clause := cypher.MatchClause{Path: path, Optional: groupOptional}
		if len(conds) == 1 {
			clause.Where = conds[0]
		} else if len(conds) > 1 {
			clause.Where = cypher.And{Conds: conds}
		}
		clauses = append(clauses, clause)
		conds = nil
	}

	for i, seg := range segs {
		if i == 0 {
			path = cypher.PathOf(cypher.NodeP(nodeVar(0), seg.kind.labels...))
		} else {
			if seg.optional != groupOptional {
				flush()
				groupOptional = seg.optional
				path = cypher.PathOf(cypher.NodeP(nodeVar(i-1)))
			}
			path.Hops = append(path.Hops, cypher.Hop{
				Rel:    cypher.RelP(relVar(i), seg.rel.Type, toCypherDirection(seg.rel.Direction)),
				Target: cypher.NodeP(nodeVar(i), seg.kind.labels...),
			})
		}
		for _, p := range seg.filters {
			c, err := p.compile(seg.kind, nodeVar(i))
			if err != nil {
				return nil, err
			}
			conds = append(conds, c)
		}
	}
	flush()
	return clauses, nil
}

// Compile renders the query to a parameterized statement. The result is
// cached: compiling the same QuerySet again returns identical text and
// parameter bindings.
func (q *QuerySet) Compile() (string, map[string]any, error) {
	q.compileOnce.Do(func() { q.compiled = q.build() })
	c := q.compiled
	if c.err != nil {
		return "", nil, c.err
	}
	params := make(map[string]any, len(c.params))
	for k, v := range c.params {
		params[k] = v
	}
	return c.statement, params, nil
}

func (q *QuerySet) build() compiledQuery {
	if q.err != nil {
		return compiledQuery{err: q.err}
	}
	clauses, err := q.matchClauses()
	if err != nil {
		return compiledQuery{err: err}
	}
	tip := nodeVar(q.depth)
	ret := cypher.Return(cypher.ReturnItem{Expr: cypher.Ident{Var: tip}})
	ret.Distinct = q.distinct
	clauses = append(clauses, ret)
	if len(q.order) > 0 {
		items := make([]cypher.OrderItem, len(q.order))
		for i, t := range q.order {
			items[i] = cypher.OrderItem{Expr: cypher.Property(t.variable, t.property), Desc: t.desc}
		}
		clauses = append(clauses, cypher.OrderByClause{Items: items})
	}
	if q.skip >= 0 {
		clauses = append(clauses, cypher.Skip(q.skip))
	}
	if q.limit >= 0 {
		clauses = append(clauses, cypher.Limit(q.limit))
	}
	stmt, params, err := cypher.NewCompiler().Compile(cypher.Statement{Clauses: clauses})
	return compiledQuery{statement: stmt, params: params, err: err}
}

// buildCount renders a count variant of the query. Ordering and paging are
// dropped: they cannot change the count.
func (q *QuerySet) buildCount() (string, map[string]any, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	clauses, err := q.matchClauses()
	if err != nil {
		return "", nil, err
	}
	tip := nodeVar(q.depth)
	counted := cypher.Count(tip)
	if q.distinct {
		counted = cypher.CountDistinct(tip)
	}
	clauses = append(clauses, cypher.Return(cypher.ReturnItem{Expr: counted, Alias: "total"}))
	return cypher.NewCompiler().Compile(cypher.Statement{Clauses: clauses})
}

// All runs the query and hydrates every returned entity.
func (q *QuerySet) All(ctx context.Context, r Runner) ([]*Node, error) {
	stmt, params, err := q.Compile()
	if err != nil {
		return nil, err
	}
	rows, err := r.Read(ctx, stmt, params)
	if err != nil {
		return nil, err
	}
	h := NewHydrator(q.registry)
	tip := nodeVar(q.depth)
	out := make([]*Node, 0, len(rows))
	for _, row := range rows {
		v, ok := row[tip]
		if !ok || v == nil {
			continue
		}
		raw, ok := v.(RawNode)
		if !ok {
			return nil, fmt.Errorf("column %s: expected a node, got %T", tip, v)
		}
		n, err := h.Node(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// First runs the query with a limit of one and returns the first entity,
// or nil when there is none.
func (q *QuerySet) First(ctx context.Context, r Runner) (*Node, error) {
	nodes, err := q.Limit(1).All(ctx, r)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return nodes[0], nil
}

// FirstOrErr is First that returns a NotFoundError instead of nil.
func (q *QuerySet) FirstOrErr(ctx context.Context, r Runner) (*Node, error) {
	n, err := q.First(ctx, r)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, &NotFoundError{Kind: q.kind.name}
	}
	return n, nil
}

// One runs the query expecting exactly one match. Zero matches return a
// NotFoundError; more than one a NotUniqueError.
func (q *QuerySet) One(ctx context.Context, r Runner) (*Node, error) {
	nodes, err := q.Limit(2).All(ctx, r)
	if err != nil {
		return nil, err
	}
	switch len(nodes) {
	case 0:
		return nil, &NotFoundError{Kind: q.kind.name}
	case 1:
		return nodes[0], nil
	}
	return nil, &NotUniqueError{Kind: q.kind.name, Count: 2}
}

// Count runs a count variant of the query.
func (q *QuerySet) Count(ctx context.Context, r Runner) (int64, error) {
	stmt, params, err := q.buildCount()
	if err != nil {
		return 0, err
	}
	rows, err := r.Read(ctx, stmt, params)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	switch v := rows[0]["total"].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("count column: expected an integer, got %T", rows[0]["total"])
	}
}

// Exists reports whether the query matches anything.
func (q *QuerySet) Exists(ctx context.Context, r Runner) (bool, error) {
	n, err := q.Count(ctx, r)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
