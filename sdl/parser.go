// Package sdl parses graph schema declarations into registrable kind specs.
//
// A schema file declares node and edge kinds:
//
//	node Person {
//	    uid: string @uid
//	    name: string @required @unique
//	    age: integer @indexed
//	    mood: string @choices("happy", "sad")
//	    acted_in: ACTED_IN -> Movie @card(zero-or-more) @props(Role)
//	}
//
//	edge Role {
//	    character: string
//	}
package sdl

import (
	"fmt"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// --- Participle grammar structs ---

// File is the top-level grammar: a sequence of kind declarations.
type File struct {
	Decls []Decl `parser:"@@*"`
}

// Decl is one of: a node kind or an edge kind.
type Decl struct {
	Node *NodeDecl `parser:"  @@"`
	Edge *EdgeDecl `parser:"| @@"`
}

// NodeDecl parses: node Name [: Label [, Label]*] { member* }
type NodeDecl struct {
	Name    string   `parser:"'node' @Ident"`
	Labels  []string `parser:"( ':' @Ident ( ',' @Ident )* )?"`
	Members []Member `parser:"'{' @@* '}'"`
}

// EdgeDecl parses: edge Name { property* }
// Edge kinds carry relationship properties; they declare no relationships.
type EdgeDecl struct {
	Name  string     `parser:"'edge' @Ident"`
	Props []PropDecl `parser:"'{' @@* '}'"`
}

// Member is one of: a relationship declaration or a property declaration.
// Relationships are tried first; they are distinguished by the direction
// token after the type name.
type Member struct {
	Rel  *RelDecl  `parser:"  @@"`
	Prop *PropDecl `parser:"| @@"`
}

// PropDecl parses: name : type annotation*
type PropDecl struct {
	Name   string       `parser:"@Ident ':'"`
	Type   string       `parser:"@Ident"`
	Annots []Annotation `parser:"@@*"`
}

// RelDecl parses: name : TYPE (-> | <- | --) Target annotation*
type RelDecl struct {
	Name      string       `parser:"@Ident ':'"`
	Type      string       `parser:"@Ident"`
	Direction string       `parser:"@(Arrow | BackArrow | Undirected)"`
	Target    string       `parser:"@Ident"`
	Annots    []Annotation `parser:"@@*"`
}

// Annotation parses: @required, @unique, @indexed, @uid, @autonow,
// @autonowadd, @default("..."), @choices("a", "b"), @card(bound),
// @ondelete(policy), @props(EdgeKind)
type Annotation struct {
	Required   bool           `parser:"  @'@required'"`
	Unique     bool           `parser:"| @'@unique'"`
	Indexed    bool           `parser:"| @'@indexed'"`
	UID        bool           `parser:"| @'@uid'"`
	AutoNow    bool           `parser:"| @'@autonow'"`
	AutoNowAdd bool           `parser:"| @'@autonowadd'"`
	Default    *DefaultAnnot  `parser:"| @@"`
	Choices    *ChoicesAnnot  `parser:"| @@"`
	Card       *CardAnnot     `parser:"| @@"`
	OnDelete   *OnDeleteAnnot `parser:"| @@"`
	Props      *PropsAnnot    `parser:"| @@"`
}

// DefaultAnnot parses: @default("value")
type DefaultAnnot struct {
	Value string `parser:"'@default' '(' @String ')'"`
}

// ChoicesAnnot parses: @choices("a", "b", ...)
type ChoicesAnnot struct {
	Values []string `parser:"'@choices' '(' @String ( ',' @String )* ')'"`
}

// CardAnnot parses: @card(zero-or-more | zero-or-one | exactly-one | one-or-more)
type CardAnnot struct {
	Value string `parser:"'@card' '(' @Ident ')'"`
}

// OnDeleteAnnot parses: @ondelete(none | cascade)
type OnDeleteAnnot struct {
	Value string `parser:"'@ondelete' '(' @Ident ')'"`
}

// PropsAnnot parses: @props(EdgeKindName)
type PropsAnnot struct {
	Value string `parser:"'@props' '(' @Ident ')'"`
}

var schemaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|#[^\n]*`},
	{Name: "Whitespace", Pattern: `[\s]+`},
	{Name: "Keyword", Pattern: `\b(node|edge)\b`},
	{Name: "AnnotKW", Pattern: `@(required|unique|indexed|uid|autonowadd|autonow|default|choices|card|ondelete|props)`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Arrow", Pattern: `->`},
	{Name: "BackArrow", Pattern: `<-`},
	{Name: "Undirected", Pattern: `--`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_-]*`},
	{Name: "Punct", Pattern: `[{}:,()]`},
})

// Parse parses schema text into its grammar tree.
func Parse(input string) (*File, error) {
	parser, err := participle.Build[File](
		participle.Lexer(schemaLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(4),
	)
	if err != nil {
		return nil, fmt.Errorf("build parser: %w", err)
	}
	file, err := parser.ParseString("schema", input)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return file, nil
}

// ParseFile reads and parses a schema file from disk.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Parse(string(data))
}
