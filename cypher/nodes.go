// Package cypher defines the Abstract Syntax Tree (AST) for Cypher statements.
//
// It decouples statement construction from string formatting, providing a
// structured way to build parameterized Cypher programmatically. Values never
// appear inline in the compiled text; the compiler binds every Param node to a
// generated parameter name and returns the parameter table alongside the
// statement.
package cypher

// Node is the marker interface for all AST nodes.
type Node interface {
	node()
}

// --- Expressions ---

// Expr is the marker interface for nodes usable in value position.
type Expr interface {
	Node
	expr()
}

// Param represents a bound parameter. The compiler assigns it a name
// ($p0, $p1, ...) in traversal order and records Value in the parameter table.
type Param struct {
	// Value is the already-encoded storage primitive to bind.
	Value any
}

func (Param) node() {}
func (Param) expr() {}

// Prop represents a property access such as n0.age.
type Prop struct {
	// Var is the pattern variable that owns the property.
	Var string
	// Name is the property name.
	Name string
}

func (Prop) node() {}
func (Prop) expr() {}

// Ident represents a bare pattern variable reference.
type Ident struct {
	// Var is the variable name.
	Var string
}

func (Ident) node() {}
func (Ident) expr() {}

// FuncCall represents a function invocation such as elementId(n0) or count(n0).
type FuncCall struct {
	// Name is the function name.
	Name string
	// Args are the function arguments.
	Args []Expr
	// Distinct prefixes the arguments with DISTINCT, for aggregates.
	Distinct bool
}

func (FuncCall) node() {}
func (FuncCall) expr() {}

// --- Conditions ---

// Cond is the marker interface for boolean condition nodes used in WHERE.
type Cond interface {
	Node
	cond()
}

// Comparison applies a binary operator between two expressions.
// Op is one of =, <>, >, >=, <, <=, =~, IN, STARTS WITH, ENDS WITH, CONTAINS.
type Comparison struct {
	Left  Expr
	Op    string
	Right Expr
}

func (Comparison) node() {}
func (Comparison) cond() {}

// IsNull tests an expression for null (or non-null when Negated).
type IsNull struct {
	Subject Expr
	Negated bool
}

func (IsNull) node() {}
func (IsNull) cond() {}

// And is a conjunction of conditions.
type And struct {
	Conds []Cond
}

func (And) node() {}
func (And) cond() {}

// Or is a disjunction of conditions.
type Or struct {
	Conds []Cond
}

func (Or) node() {}
func (Or) cond() {}

// Not negates a condition.
type Not struct {
	Inner Cond
}

func (Not) node() {}
func (Not) cond() {}

// --- Patterns ---

// Direction is the drawn direction of a relationship pattern segment.
type Direction int

const (
	// DirOut draws -[r]->.
	DirOut Direction = iota
	// DirIn draws <-[r]-.
	DirIn
	// DirBoth draws -[r]- (undirected).
	DirBoth
)

// NodePattern matches or creates a node with a variable and label set.
type NodePattern struct {
	// Var is the pattern variable ("" for anonymous).
	Var string
	// Labels is the label set attached to the node.
	Labels []string
}

func (NodePattern) node() {}

// RelPattern is the relationship segment of a path.
type RelPattern struct {
	// Var is the pattern variable ("" for anonymous).
	Var string
	// Type is the relationship type label.
	Type string
	// Direction is the drawn direction relative to the preceding node.
	Direction Direction
}

func (RelPattern) node() {}

// Hop is one relationship segment plus its target node.
type Hop struct {
	Rel    RelPattern
	Target NodePattern
}

func (Hop) node() {}

// Path is a node pattern followed by zero or more hops.
type Path struct {
	Start NodePattern
	Hops  []Hop
}

func (Path) node() {}

// --- Clauses ---

// Clause is the marker interface for top-level Cypher clauses.
type Clause interface {
	Node
	clause()
}

// MatchClause represents MATCH (or OPTIONAL MATCH) with an optional WHERE.
type MatchClause struct {
	Path     Path
	Optional bool
	// Where is nil when the clause carries no predicate.
	Where Cond
}

func (MatchClause) node()   {}
func (MatchClause) clause() {}

// CreateClause represents CREATE over a path pattern.
type CreateClause struct {
	Path Path
}

func (CreateClause) node()   {}
func (CreateClause) clause() {}

// SetItem is one assignment in a SET clause. With Prop == "" the whole
// entity is replaced: SET n = $props.
type SetItem struct {
	Var   string
	Prop  string
	Value Expr
}

func (SetItem) node() {}

// SetClause represents SET with one or more assignments.
type SetClause struct {
	Items []SetItem
}

func (SetClause) node()   {}
func (SetClause) clause() {}

// DeleteClause represents DELETE or DETACH DELETE of pattern variables.
type DeleteClause struct {
	Vars   []string
	Detach bool
}

func (DeleteClause) node()   {}
func (DeleteClause) clause() {}

// ReturnItem is one projection in a RETURN or WITH clause.
type ReturnItem struct {
	Expr Expr
	// Alias is the output column name ("" keeps the expression text).
	Alias string
}

func (ReturnItem) node() {}

// ReturnClause represents RETURN with optional DISTINCT.
type ReturnClause struct {
	Items    []ReturnItem
	Distinct bool
}

func (ReturnClause) node()   {}
func (ReturnClause) clause() {}

// WithClause represents WITH, carrying projections between query parts.
type WithClause struct {
	Items []ReturnItem
	// Where is nil when the clause carries no predicate.
	Where Cond
}

func (WithClause) node()   {}
func (WithClause) clause() {}

// OrderItem is one sort key in an ORDER BY clause.
type OrderItem struct {
	Expr Expr
	Desc bool
}

func (OrderItem) node() {}

// OrderByClause represents ORDER BY with one or more sort keys.
type OrderByClause struct {
	Items []OrderItem
}

func (OrderByClause) node()   {}
func (OrderByClause) clause() {}

// SkipClause represents SKIP.
type SkipClause struct {
	Count int
}

func (SkipClause) node()   {}
func (SkipClause) clause() {}

// LimitClause represents LIMIT.
type LimitClause struct {
	Count int
}

func (LimitClause) node()   {}
func (LimitClause) clause() {}

// Statement is an ordered sequence of clauses forming one executable query.
type Statement struct {
	Clauses []Clause
}

func (Statement) node() {}
