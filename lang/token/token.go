// Package token defines the lexical tokens of the summus source language
// and the Token value that carries a token's kind, position,
// interned/owned representation, decoded literal payload and the two
// layout flags the parser's error heuristics read.
package token

import "github.com/sumuslang/summus/lang/types"

// Kind identifies the lexical class of a Token.
type Kind int8

//nolint:revive
const (
	ILLEGAL Kind = iota
	EOF

	IDENT  // x
	INT    // 123, 0x7B
	FLOAT  // 1.5, 1.5e10
	STRING // reserved for future use; no literal syntax produces it yet
	BOOL   // true, false

	// Punctuation. The arithmetic operator kind-shift encoding is a
	// parser/AST concern (ast.Kind), not a lexical one, so no ordering
	// constraint applies here beyond readability.
	PLUS   // +
	MINUS  // -
	STAR   // *
	SLASH  // /
	EQ     // =
	SEMI   // ;
	LPAREN // (
	RPAREN // )
	LBRACE // {
	RBRACE // }
	COMMA  // ,
	DOT    // .
	COLON  // :
	BANG   // !
	LT      // <
	GT      // >
	PERCENT // %

	// Multi-character punctuation.
	EQEQ  // ==
	NEQ   // !=
	LE    // <=
	GE    // >=
	ARROW // ->

	// Reserved words. Type names and the true/false literals are also
	// recognized at scan time but get their own kinds below.
	DIV
	MOD
	AND
	OR
	XOR
	NOT
	RETURN
	IF
	THEN
	ELSE
	WHILE
	DO
	TYPENAME // Bool, UInt8, ..., Float64 - see lang/types.Lookup

	maxKind
)

var kindNames = [...]string{
	ILLEGAL:  "illegal token",
	EOF:      "end of file",
	IDENT:    "identifier",
	INT:      "int literal",
	FLOAT:    "float literal",
	STRING:   "string literal",
	BOOL:     "bool literal",
	PLUS:     "+",
	MINUS:    "-",
	STAR:     "*",
	SLASH:    "/",
	EQ:       "=",
	SEMI:     ";",
	LPAREN:   "(",
	RPAREN:   ")",
	LBRACE:   "{",
	RBRACE:   "}",
	COMMA:    ",",
	DOT:      ".",
	COLON:    ":",
	BANG:     "!",
	LT:       "<",
	GT:       ">",
	PERCENT:  "%",
	EQEQ:     "==",
	NEQ:      "!=",
	LE:       "<=",
	GE:       ">=",
	ARROW:    "->",
	DIV:      "div",
	MOD:      "mod",
	AND:      "and",
	OR:       "or",
	XOR:      "xor",
	NOT:      "not",
	RETURN:   "return",
	IF:       "if",
	THEN:     "then",
	ELSE:     "else",
	WHILE:    "while",
	DO:       "do",
	TYPENAME: "type name",
}

// keywords maps reserved-word spelling to its Kind. Type names are not
// listed here; the scanner seeds its symbol trie with this table and, in
// the same trie, every built-in type name as TYPENAME, so one lookup
// classifies keywords, type names and plain identifiers.
var keywords = map[string]Kind{
	"div":    DIV,
	"mod":    MOD,
	"and":    AND,
	"or":     OR,
	"xor":    XOR,
	"not":    NOT,
	"return": RETURN,
	"if":     IF,
	"then":   THEN,
	"else":   ELSE,
	"while":  WHILE,
	"do":     DO,
	"true":   BOOL,
	"false":  BOOL,
}

// LookupKeyword returns the Kind for a reserved word spelling, and ok=false
// if lit is not a reserved word (i.e. it is a plain identifier, or must be
// checked against the type-name table by the caller).
func LookupKeyword(lit string) (Kind, bool) {
	k, ok := keywords[lit]
	return k, ok
}

// Keywords returns the reserved-word table, spelling to kind, for seeding
// the scanner's symbol dictionary. The returned map is shared; callers
// must not modify it.
func Keywords() map[string]Kind { return keywords }

// String returns the display form of the token kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) || kindNames[k] == "" {
		return "unknown token"
	}
	return kindNames[k]
}

// IsPunct reports whether k is one of the single- or multi-character
// punctuation kinds.
func (k Kind) IsPunct() bool {
	return k >= PLUS && k <= ARROW
}

// Value is the discriminated payload carried by a Token. Exactly one field
// is meaningful, selected by the owning Token's Kind.
type Value struct {
	Uint  uint64
	Int   int64
	Float float64
	Bool  bool
	Str   string

	// IntKind is the smallest unsigned integer types.Kind that fits Uint,
	// chosen by the lexer at scan time. Only meaningful when the owning
	// Token's Kind is INT.
	IntKind types.Kind
}

// Token is a single lexical token: its kind, source position, textual
// representation, and decoded literal payload. Identifier and keyword text
// is interned (shared storage, safe to compare by pointer-equal repr for
// the fast path); literal text is an owned copy.
type Token struct {
	Kind Kind
	Pos  Position
	Repr string
	Val  Value

	// IsFirstOnLine is set when this token is the first one scanned after one
	// or more newlines, used by the parser to decide whether a missing token
	// should be reported at the previous token's position.
	IsFirstOnLine bool
	// CanBeNewSymbol is set on tokens that can start a new declaration or
	// statement, letting the parser distinguish "missing semicolon" from
	// "missing operand" during error recovery.
	CanBeNewSymbol bool
}

// Literal returns the text that should appear in an error message for this
// token: punctuation and keywords print their spelling, identifiers and
// literals print their source text.
func (t *Token) Literal() string {
	if t.Repr != "" {
		return t.Repr
	}
	return t.Kind.String()
}
