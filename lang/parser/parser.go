// Package parser implements the recursive-descent, operator-precedence
// parser that turns a summus token stream into an untyped AST. Error
// recovery panics to the nearest synchronization point: a malformed
// declaration or statement posts one diagnostic and the parser skips
// forward to the next ';', block boundary or EOF rather than cascading.
package parser

import (
	"errors"
	"fmt"

	"github.com/sumuslang/summus/lang/ast"
	"github.com/sumuslang/summus/lang/msgs"
	"github.com/sumuslang/summus/lang/scanner"
	"github.com/sumuslang/summus/lang/token"
)

// errSync is panicked by expect and other error bail-outs and recovered at the
// nearest statement or declaration boundary.
var errSync = errors.New("summus/parser: sync")

// maxExprDepth caps expression nesting: an expression nested deeper than
// this is too complicated to compile and aborts the unit rather than
// recursing the host stack unboundedly.
const maxExprDepth = 100

// Parser consumes tokens from a Scanner and builds an *ast.Node tree.
type Parser struct {
	scan *scanner.Scanner
	sink *msgs.Sink

	tok      *token.Token // current token, already scanned
	peeked   *token.Token // one token of lookahead, if primed by peek()
	prev     *token.Token // token consumed just before tok, for errPos

	lastErrorLine int // suppresses more than one diagnostic per source line
	scopeDepth    int // current lexical nesting depth, stamped onto Decl/Param nodes
	exprDepth     int

	global *ast.Node // the Kind=Scope node of the top-level block; every function body chains to this, not to its lexically enclosing block, since the language has no closures
}

// New returns a Parser that reads tokens from s and posts diagnostics to
// sink.
func New(s *scanner.Scanner, sink *msgs.Sink) *Parser {
	p := &Parser{scan: s, sink: sink, lastErrorLine: -1}
	p.advance()
	return p
}

// Parse runs the parser to completion and returns the program's root node.
// The root's Next is the top-level block, the module's global scope.
func (p *Parser) Parse() *ast.Node {
	startTok := p.tok
	prog := ast.New(ast.Program, startTok)
	block := p.parseBlockBody(nil, startTok, token.EOF, true)
	prog.Next = block
	return prog
}

func (p *Parser) advance() {
	p.prev = p.tok
	if p.peeked != nil {
		p.tok = p.peeked
		p.peeked = nil
		return
	}
	p.tok = p.scan.NextToken()
}

// peek returns the token after the current one without consuming it,
// caching it so the next advance() call returns it instead of re-scanning;
// used where one token of lookahead beyond the current one is needed:
// telling "ident :" (a decl) or "ident =" (an assignment) from an
// expression, spotting "cast (", and treating an unknown name followed by
// '=' or ';' in a declaration as a type name.
func (p *Parser) peek() *token.Token {
	if p.peeked == nil {
		p.peeked = p.scan.NextToken()
	}
	return p.peeked
}

// newScope allocates a Kind=Scope node nested under parent (nil for the
// global scope) and bumps the nesting depth for the duration the caller is
// parsing inside it; the caller must call p.exitScope when done.
func (p *Parser) newScope(parent *ast.Node) *ast.Node {
	sc := ast.New(ast.Scope, p.tok)
	sc.PrevScope = parent
	sc.ScopeLevel = p.scopeDepth
	p.scopeDepth++
	return sc
}

func (p *Parser) exitScope() {
	p.scopeDepth--
}

// addDecl appends d to scope's Decls list (chained via NextDecl), in
// source/insertion order, using the scope's LastDecl tail pointer for O(1)
// append.
func addDecl(scope, d *ast.Node) {
	if scope.Decls == nil {
		scope.Decls = d
	} else {
		scope.LastDecl.NextDecl = d
	}
	scope.LastDecl = d
}

func (p *Parser) error(pos token.Position, kind msgs.Kind, format string, args ...interface{}) {
	if p.lastErrorLine == pos.Line {
		return
	}
	p.lastErrorLine = pos.Line
	p.sink.Post(kind, pos, format, args...)
}

// errPos returns the position a missing-token diagnostic should be
// attributed to: the current token's position, unless the current token is
// the first on its line, in which case the *previous* token's position is
// used so the error doesn't point at an unrelated column on the next line.
func (p *Parser) errPos() token.Position {
	if p.tok.IsFirstOnLine && p.prev != nil {
		return p.prev.Pos
	}
	return p.tok.Pos
}

func (p *Parser) errorExpected(expected string) {
	p.error(p.errPos(), msgs.NoExpectedToken, "expected %s but got %s", expected, p.tok.Literal())
}

// expect consumes the current token if it has kind k, otherwise posts a
// diagnostic and unwinds to the nearest recovery point via errSync.
func (p *Parser) expect(k token.Kind) *token.Token {
	if p.tok.Kind != k {
		p.errorExpected(k.String())
		panic(errSync)
	}
	tok := p.tok
	p.advance()
	return tok
}

// accept consumes and returns the current token if it has kind k, without
// posting an error otherwise.
func (p *Parser) accept(k token.Kind) (*token.Token, bool) {
	if p.tok.Kind != k {
		return nil, false
	}
	tok := p.tok
	p.advance()
	return tok, true
}

// recoverAndSync runs as a deferred recover() at every statement and
// top-level-item boundary; it swallows errSync (already reported) and
// reports+rethrows anything else (a genuine programming error), then
// synchronizes the token stream to the next safe restart point.
func (p *Parser) recoverAndSync() {
	if r := recover(); r != nil {
		if r != errSync {
			panic(r)
		}
		p.syncAfterError()
	}
}

// syncAfterError skips tokens until a semicolon (consumed), a block
// boundary ('{' or '}', not consumed) or EOF.
func (p *Parser) syncAfterError() {
	for {
		switch p.tok.Kind {
		case token.SEMI:
			p.advance()
			return
		case token.LBRACE, token.RBRACE, token.EOF:
			return
		default:
			p.advance()
		}
	}
}

// FatalError is panicked when the parser hits a condition compilation
// cannot continue from (currently only the expression nesting cap). The
// driver recovers it at the compilation-unit boundary and turns it into a
// printed diagnostic plus a non-zero exit, the same treatment arena
// exhaustion gets.
type FatalError struct {
	Pos    token.Position
	Reason string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: fatal: %s", e.Pos, e.Reason)
}

func (p *Parser) fatalDepth(pos token.Position) {
	panic(&FatalError{Pos: pos, Reason: fmt.Sprintf("logical expression too complicated: nesting exceeds %d", maxExprDepth)})
}
