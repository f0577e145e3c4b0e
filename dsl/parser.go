package dsl

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{8})`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `(?:\d+\.\d+|\d+)(?:px|pt|mm|cm|in|%|x)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][(),.=+\-*/%<>!?;:]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	kinds = kindsOf(dslLexer)

	documentParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document is the parsed form of a quire source: `doc <Name> <Version> { ... }`.
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'doc' @Ident"`
	Version  string         `parser:"@Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section is one top-level part of a document. Header and footer hold the
// flow repeated on every page; each page section continues the main flow on
// a new page.
type Section struct {
	Meta      *Block       `parser:"  'meta' @@"`
	Resources *Block       `parser:"| 'resources' @@"`
	Header    *Block       `parser:"| 'header' @@"`
	Footer    *Block       `parser:"| 'footer' @@"`
	Page      *PageSection `parser:"| 'page' @@"`
}

var sectionKinds = []struct {
	name string
	set  func(*Section) bool
}{
	{"meta", func(s *Section) bool { return s.Meta != nil }},
	{"resources", func(s *Section) bool { return s.Resources != nil }},
	{"header", func(s *Section) bool { return s.Header != nil }},
	{"footer", func(s *Section) bool { return s.Footer != nil }},
	{"page", func(s *Section) bool { return s.Page != nil }},
}

// Kind returns the section keyword, or "unknown".
func (s *Section) Kind() string {
	if s == nil {
		return "unknown"
	}
	for _, k := range sectionKinds {
		if k.set(s) {
			return k.name
		}
	}
	return "unknown"
}

// PageSection is `page <Size> <params...> { flow }`. Params are read by the
// compiler (orientation, margin, mode, word-break, max-pages).
type PageSection struct {
	Size   string    `parser:"@Ident"`
	Params []*Lexeme `parser:"@@*"`
	Block  *Block    `parser:"@@"`
}

// Block is a braced statement list; `;` or newlines separate statements.
type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Statement is one of key: value, a command, or a bare string.
type Statement struct {
	Assignment *Assignment  `parser:"  @@"`
	Command    *Command     `parser:"| @@"`
	Text       *TextLiteral `parser:"| @@"`
}

// Assignment is `key: value`, used by meta and resource bodies.
type Assignment struct {
	Key   string `parser:"@Ident"`
	Value *Value `parser:"':' Newline* @@"`
}

// Command is a name, its arguments up to the end of the statement, and an
// optional body, eg. `p bold size 12pt { "text" }`.
type Command struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"@Ident"`
	Args  []*Lexeme      `parser:"@@*"`
	Block *Block         `parser:"( Newline* @@ )?"`
}

// TextLiteral is a bare string inside a flow; it becomes text elements.
type TextLiteral struct {
	Value StringLiteral `parser:"@String"`
}

// Value is the right-hand side of an assignment.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Array  *ArrayValue    `parser:"| @@"`
	Expr   *Expression    `parser:"| @@"`
}

// ArrayValue is `[ a, b ]`; commas, semicolons and newlines all separate items.
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | ';' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// Expression records the raw tokens of a property value that is neither a
// literal nor an array, eg. `item.name` or `data.items[0]`.
type Expression struct {
	Parts []*Lexeme
}

// Parse implements participle.Parseable for Expression.
func (e *Expression) Parse(lex *lexer.PeekingLexer) error {
	var depth nesting
	for tok := lex.Peek(); !depth.ends(tok); tok = lex.Peek() {
		l, err := kinds.lexeme(lex.Next())
		if err != nil {
			return err
		}
		depth.track(l)
		e.Parts = append(e.Parts, l)
	}
	if len(e.Parts) == 0 {
		return participle.NextMatch
	}
	return nil
}

// Lexeme captures a single lexical token (used by commands/expressions).
type Lexeme struct {
	Type  string         `json:"type"`
	Value string         `json:"value"`
	Raw   string         `json:"raw"`
	Pos   lexer.Position `json:"-"`
}

// Parse implements participle.Parseable so Lexeme can act as a grammar atom.
// Command arguments run until the end of the line, a brace or `;`.
func (l *Lexeme) Parse(lex *lexer.PeekingLexer) error {
	if kinds.boundary(lex.Peek()) {
		return participle.NextMatch
	}
	got, err := kinds.lexeme(lex.Next())
	if err != nil {
		return err
	}
	*l = *got
	return nil
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("字符串字面量为空")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return fmt.Errorf("字符串 %s 无法解析: %w", values[0], err)
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses DSL content from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses DSL content from a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}

// ParseFile parses a DSL file; positions in errors carry its name.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return documentParser.Parse(path, f)
}

// tokenKinds 缓存语法中用到的 token 类型。
type tokenKinds struct {
	names   map[lexer.TokenType]string
	newline lexer.TokenType
	lbrace  lexer.TokenType
	rbrace  lexer.TokenType
	symbol  lexer.TokenType
	str     lexer.TokenType
}

func kindsOf(def lexer.Definition) tokenKinds {
	symbols := def.Symbols()
	k := tokenKinds{names: make(map[lexer.TokenType]string, len(symbols))}
	for name, tt := range symbols {
		k.names[tt] = name
	}
	pick := func(name string) lexer.TokenType {
		tt, ok := symbols[name]
		if !ok {
			panic(fmt.Sprintf("词法规则缺少 %s", name))
		}
		return tt
	}
	k.newline = pick("Newline")
	k.lbrace = pick("LBrace")
	k.rbrace = pick("RBrace")
	k.symbol = pick("Symbol")
	k.str = pick("String")
	return k
}

// boundary 判断 tok 是否结束一条命令的参数。
func (k tokenKinds) boundary(tok *lexer.Token) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	switch tok.Type {
	case k.newline, k.lbrace, k.rbrace:
		return true
	case k.symbol:
		return tok.Value == ";"
	}
	return false
}

func (k tokenKinds) lexeme(tok *lexer.Token) (*Lexeme, error) {
	if tok == nil || tok.EOF() {
		return nil, participle.NextMatch
	}
	name, ok := k.names[tok.Type]
	if !ok {
		name = fmt.Sprintf("#%d", tok.Type)
	}
	l := &Lexeme{Type: name, Value: tok.Value, Raw: tok.Value, Pos: tok.Pos}
	if tok.Type == k.str {
		v, err := strconv.Unquote(tok.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: 字符串 %s 无法解析: %w", tok.Pos, tok.Value, err)
		}
		l.Value = v
	}
	return l, nil
}

// nesting 记录表达式内未闭合的圆括号与方括号。
type nesting struct {
	paren, bracket int
}

// ends 判断表达式是否在 tok 之前结束：括号外的参数边界或逗号，以及多出来的 ]。
func (n nesting) ends(tok *lexer.Token) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	if tok.Type == kinds.symbol && tok.Value == "]" {
		return n.bracket == 0
	}
	if n.paren > 0 || n.bracket > 0 {
		return false
	}
	return kinds.boundary(tok) || (tok.Type == kinds.symbol && tok.Value == ",")
}

func (n *nesting) track(l *Lexeme) {
	if l.Type != "Symbol" {
		return
	}
	switch l.Raw {
	case "(":
		n.paren++
	case ")":
		n.paren = max(n.paren-1, 0)
	case "[":
		n.bracket++
	case "]":
		n.bracket = max(n.bracket-1, 0)
	}
}
