// Package cypher provides builder helpers for ergonomic AST construction.
package cypher

// Match creates a MatchClause over a path with an optional WHERE condition.
func Match(path Path, where Cond) MatchClause {
	return MatchClause{Path: path, Where: where}
}

// OptionalMatch creates an OPTIONAL MATCH clause over a path.
func OptionalMatch(path Path, where Cond) MatchClause {
	return MatchClause{Path: path, Optional: true, Where: where}
}

// Create creates a CreateClause over a path.
func Create(path Path) CreateClause {
	return CreateClause{Path: path}
}

// Set creates a SetClause with the given assignments.
func Set(items ...SetItem) SetClause {
	return SetClause{Items: items}
}

// Delete creates a DeleteClause for the given variables.
func Delete(detach bool, vars ...string) DeleteClause {
	return DeleteClause{Vars: vars, Detach: detach}
}

// Return creates a ReturnClause with the given projections.
func Return(items ...ReturnItem) ReturnClause {
	return ReturnClause{Items: items}
}

// ReturnDistinct creates a RETURN DISTINCT clause with the given projections.
func ReturnDistinct(items ...ReturnItem) ReturnClause {
	return ReturnClause{Items: items, Distinct: true}
}

// With creates a WithClause with the given projections and optional WHERE.
func With(where Cond, items ...ReturnItem) WithClause {
	return WithClause{Items: items, Where: where}
}

// OrderBy creates an OrderByClause with the given sort keys.
func OrderBy(items ...OrderItem) OrderByClause {
	return OrderByClause{Items: items}
}

// Skip creates a SkipClause with the given count.
func Skip(count int) SkipClause {
	return SkipClause{Count: count}
}

// Limit creates a LimitClause with the given count.
func Limit(count int) LimitClause {
	return LimitClause{Count: count}
}

// NodeP creates a NodePattern with the given variable and labels.
func NodeP(varName string, labels ...string) NodePattern {
	return NodePattern{Var: varName, Labels: labels}
}

// RelP creates a RelPattern with the given variable, type, and direction.
func RelP(varName, relType string, dir Direction) RelPattern {
	return RelPattern{Var: varName, Type: relType, Direction: dir}
}

// PathOf creates a Path starting at a node pattern with the given hops.
func PathOf(start NodePattern, hops ...Hop) Path {
	return Path{Start: start, Hops: hops}
}

// Cmp creates a Comparison condition between two expressions.
func Cmp(left Expr, op string, right Expr) Comparison {
	return Comparison{Left: left, Op: op, Right: right}
}

// P creates a Param with the given value.
func P(value any) Param {
	return Param{Value: value}
}

// Property creates a Prop expression for var.name.
func Property(varName, name string) Prop {
	return Prop{Var: varName, Name: name}
}

// Call creates a FuncCall expression.
func Call(name string, args ...Expr) FuncCall {
	return FuncCall{Name: name, Args: args}
}

// ElementID creates an elementId(var) expression.
func ElementID(varName string) FuncCall {
	return Call("elementId", Ident{Var: varName})
}

// Labels creates a labels(var) expression.
func Labels(varName string) FuncCall {
	return Call("labels", Ident{Var: varName})
}

// Count creates a count(var) expression.
func Count(varName string) FuncCall {
	return Call("count", Ident{Var: varName})
}

// CountDistinct creates a count(DISTINCT var) expression.
func CountDistinct(varName string) FuncCall {
	return FuncCall{Name: "count", Args: []Expr{Ident{Var: varName}}, Distinct: true}
}
