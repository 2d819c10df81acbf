// Package cypher compiles AST nodes into parameterized Cypher text.
package cypher

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Compiler compiles a Statement into Cypher text plus its parameter table.
// A Compiler is single-use: parameter names are assigned in traversal order,
// so compiling the same tree with a fresh Compiler yields byte-identical
// output.
type Compiler struct {
	params map[string]any
	next   int
}

// NewCompiler creates an empty Compiler.
func NewCompiler() *Compiler {
	return &Compiler{params: make(map[string]any)}
}

// Compile compiles a statement into Cypher text and its parameter table.
// Clauses are joined with newlines in order.
func (c *Compiler) Compile(st Statement) (string, map[string]any, error) {
	parts := make([]string, 0, len(st.Clauses))
	for _, cl := range st.Clauses {
		s, err := c.compileClause(cl)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n"), c.params, nil
}

// bind records a parameter value and returns its $name reference.
func (c *Compiler) bind(value any) string {
	name := "p" + strconv.Itoa(c.next)
	c.next++
	c.params[name] = value
	return "$" + name
}

// --- Clauses ---

func (c *Compiler) compileClause(clause Clause) (string, error) {
	switch cl := clause.(type) {
	case MatchClause:
		path, err := c.compilePath(cl.Path)
		if err != nil {
			return "", err
		}
		kw := "MATCH "
		if cl.Optional {
			kw = "OPTIONAL MATCH "
		}
		if cl.Where == nil {
			return kw + path, nil
		}
		where, err := c.compileCond(cl.Where)
		if err != nil {
			return "", err
		}
		return kw + path + "\nWHERE " + where, nil

	case CreateClause:
		path, err := c.compilePath(cl.Path)
		if err != nil {
			return "", err
		}
		return "CREATE " + path, nil

	case SetClause:
		items := make([]string, 0, len(cl.Items))
		for _, item := range cl.Items {
			val, err := c.compileExpr(item.Value)
			if err != nil {
				return "", err
			}
			if item.Prop == "" {
				items = append(items, escapeIdent(item.Var)+" = "+val)
			} else {
				items = append(items, escapeIdent(item.Var)+"."+escapeIdent(item.Prop)+" = "+val)
			}
		}
		return "SET " + strings.Join(items, ", "), nil

	case DeleteClause:
		vars := make([]string, len(cl.Vars))
		for i, v := range cl.Vars {
			vars[i] = escapeIdent(v)
		}
		kw := "DELETE "
		if cl.Detach {
			kw = "DETACH DELETE "
		}
		return kw + strings.Join(vars, ", "), nil

	case ReturnClause:
		items, err := c.compileReturnItems(cl.Items)
		if err != nil {
			return "", err
		}
		kw := "RETURN "
		if cl.Distinct {
			kw = "RETURN DISTINCT "
		}
		return kw + items, nil

	case WithClause:
		items, err := c.compileReturnItems(cl.Items)
		if err != nil {
			return "", err
		}
		if cl.Where == nil {
			return "WITH " + items, nil
		}
		where, err := c.compileCond(cl.Where)
		if err != nil {
			return "", err
		}
		return "WITH " + items + "\nWHERE " + where, nil

	case OrderByClause:
		keys := make([]string, 0, len(cl.Items))
		for _, item := range cl.Items {
			expr, err := c.compileExpr(item.Expr)
			if err != nil {
				return "", err
			}
			if item.Desc {
				expr += " DESC"
			}
			keys = append(keys, expr)
		}
		return "ORDER BY " + strings.Join(keys, ", "), nil

	case SkipClause:
		return "SKIP " + strconv.Itoa(cl.Count), nil

	case LimitClause:
		return "LIMIT " + strconv.Itoa(cl.Count), nil

	default:
		return "", fmt.Errorf("cypher: unknown clause type: %T", clause)
	}
}

func (c *Compiler) compileReturnItems(items []ReturnItem) (string, error) {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		expr, err := c.compileExpr(item.Expr)
		if err != nil {
			return "", err
		}
		if item.Alias != "" {
			expr += " AS " + escapeIdent(item.Alias)
		}
		parts = append(parts, expr)
	}
	return strings.Join(parts, ", "), nil
}

// --- Patterns ---

func (c *Compiler) compilePath(p Path) (string, error) {
	var b strings.Builder
	b.WriteString(c.compileNodePattern(p.Start))
	for _, hop := range p.Hops {
		rel := c.compileRelPattern(hop.Rel)
		switch hop.Rel.Direction {
		case DirOut:
			b.WriteString("-" + rel + "->")
		case DirIn:
			b.WriteString("<-" + rel + "-")
		case DirBoth:
			b.WriteString("-" + rel + "-")
		default:
			return "", fmt.Errorf("cypher: unknown direction: %d", hop.Rel.Direction)
		}
		b.WriteString(c.compileNodePattern(hop.Target))
	}
	return b.String(), nil
}

func (c *Compiler) compileNodePattern(n NodePattern) string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(escapeIdent(n.Var))
	for _, label := range n.Labels {
		b.WriteString(":" + escapeLabel(label))
	}
	b.WriteString(")")
	return b.String()
}

func (c *Compiler) compileRelPattern(r RelPattern) string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(escapeIdent(r.Var))
	if r.Type != "" {
		b.WriteString(":" + escapeLabel(r.Type))
	}
	b.WriteString("]")
	return b.String()
}

// --- Conditions ---

// compileCond always parenthesizes composite conditions so operator
// precedence never depends on the reader's memory of Cypher binding rules.
func (c *Compiler) compileCond(cond Cond) (string, error) {
	switch cn := cond.(type) {
	case Comparison:
		left, err := c.compileExpr(cn.Left)
		if err != nil {
			return "", err
		}
		right, err := c.compileExpr(cn.Right)
		if err != nil {
			return "", err
		}
		return left + " " + cn.Op + " " + right, nil

	case IsNull:
		subject, err := c.compileExpr(cn.Subject)
		if err != nil {
			return "", err
		}
		if cn.Negated {
			return subject + " IS NOT NULL", nil
		}
		return subject + " IS NULL", nil

	case And:
		return c.compileJunction(cn.Conds, " AND ")

	case Or:
		return c.compileJunction(cn.Conds, " OR ")

	case Not:
		inner, err := c.compileCond(cn.Inner)
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil

	default:
		return "", fmt.Errorf("cypher: unknown condition type: %T", cond)
	}
}

func (c *Compiler) compileJunction(conds []Cond, op string) (string, error) {
	if len(conds) == 0 {
		return "", fmt.Errorf("cypher: empty boolean junction")
	}
	parts := make([]string, 0, len(conds))
	for _, cond := range conds {
		s, err := c.compileCond(cond)
		if err != nil {
			return "", err
		}
		parts = append(parts, "("+s+")")
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return strings.Join(parts, op), nil
}

// --- Expressions ---

func (c *Compiler) compileExpr(e Expr) (string, error) {
	switch ex := e.(type) {
	case Param:
		return c.bind(ex.Value), nil
	case Prop:
		return escapeIdent(ex.Var) + "." + escapeIdent(ex.Name), nil
	case Ident:
		return escapeIdent(ex.Var), nil
	case FuncCall:
		args := make([]string, 0, len(ex.Args))
		for _, a := range ex.Args {
			s, err := c.compileExpr(a)
			if err != nil {
				return "", err
			}
			args = append(args, s)
		}
		inner := strings.Join(args, ", ")
		if ex.Distinct {
			inner = "DISTINCT " + inner
		}
		return ex.Name + "(" + inner + ")", nil
	default:
		return "", fmt.Errorf("cypher: unknown expression type: %T", e)
	}
}

// --- Identifier escaping ---

var plainIdent = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// escapeIdent quotes a variable or property name with backticks when it is
// not a plain identifier. Backticks inside the name are doubled.
func escapeIdent(name string) string {
	if name == "" || plainIdent.MatchString(name) {
		return name
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// escapeLabel quotes a label or relationship type. Labels are always
// backtick-quoted so compiled text is stable regardless of the label's shape.
func escapeLabel(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
