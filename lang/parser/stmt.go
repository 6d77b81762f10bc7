package parser

import (
	"github.com/sumuslang/summus/lang/ast"
	"github.com/sumuslang/summus/lang/msgs"
	"github.com/sumuslang/summus/lang/token"
)

// parseBlock parses a brace-delimited block, pushing a new scope nested
// under parentScope.
//
//	block := '{' { decl | stmt } '}'
func (p *Parser) parseBlock(parentScope *ast.Node) *ast.Node {
	lbrace := p.expect(token.LBRACE)
	b := p.parseBlockBody(parentScope, lbrace, token.RBRACE, false)
	p.expect(token.RBRACE)
	return b
}

// parseBlockBody parses the statement/decl sequence common to every block,
// including the implicit top-level one (which has no surrounding braces
// and ends at EOF rather than '}'). setGlobal is true exactly once, for the
// top-level block, recording its scope as the one every function body
// resolves global names against (no closures, so a nested function never
// sees its lexically enclosing block's locals).
func (p *Parser) parseBlockBody(parentScope *ast.Node, startTok *token.Token, endKind token.Kind, setGlobal bool) *ast.Node {
	b := ast.New(ast.Block, startTok)
	b.Scope = p.newScope(parentScope)
	if setGlobal {
		p.global = b.Scope
	}

	var lastStmt *ast.Node
	for p.tok.Kind != endKind {
		if p.tok.Kind == token.EOF {
			p.error(p.tok.Pos, msgs.NoExpectedToken, "unexpected end of file, expected %s", endKind.String())
			break
		}
		stmt := p.parseDeclOrStmt(b.Scope)
		if stmt == nil {
			continue // recovered from an error with nothing to attach
		}
		if lastStmt == nil {
			b.Stmts = stmt
		} else {
			lastStmt.Next = stmt
		}
		lastStmt = stmt
	}
	p.exitScope()
	return b
}

// parseStmt parses the "stmt" production.
//
//	stmt := block | assignment | return | if | while | expr ';'
func (p *Parser) parseStmt(scope *ast.Node) *ast.Node {
	switch p.tok.Kind {
	case token.LBRACE:
		return p.parseBlock(scope)
	case token.RETURN:
		return p.parseReturnStmt()
	case token.IF:
		return p.parseIfStmt(scope)
	case token.WHILE:
		return p.parseWhileStmt(scope)
	default:
		return p.parseSimpleStmt()
	}
}

// parseSimpleStmt parses either an assignment or a bare expression
// statement:
//
//	assignment := ident '=' expr ';'
//	expr ';'
//
// The single '=' token is also cmp-expr's equality comparator, so the
// grammar only distinguishes the two by position: "ident '=' ..." is only
// ever an assignment in statement position. That requires committing to
// the assignment form on a 2-token lookahead, before any part of the
// right-hand side is parsed - falling through to parseExpr otherwise would
// have cmp-expr swallow the '=' as an equality test against whatever
// follows, and assignment would never be reachable.
func (p *Parser) parseSimpleStmt() *ast.Node {
	if p.tok.Kind == token.IDENT && p.peek().Kind == token.EQ {
		nameTok := p.tok
		p.advance()
		p.advance()
		target := ast.New(ast.Ident, nameTok)
		target.IsIdent = true
		assign := ast.New(ast.Assignment, nameTok)
		assign.Left = target
		assign.Right = p.parseExpr()
		p.expect(token.SEMI)
		return assign
	}
	expr := p.parseExpr()
	p.expect(token.SEMI)
	return expr
}

// parseReturnStmt parses "return [ expr ] ';'".
func (p *Parser) parseReturnStmt() *ast.Node {
	tok := p.expect(token.RETURN)
	ret := ast.New(ast.Return, tok)
	if p.tok.Kind != token.SEMI {
		ret.Left = p.parseExpr()
	}
	p.expect(token.SEMI)
	return ret
}

// parseIfStmt parses "'if' expr ('then' stmt | block) ['else' stmt]".
func (p *Parser) parseIfStmt(scope *ast.Node) *ast.Node {
	tok := p.expect(token.IF)
	n := ast.New(ast.If, tok)
	n.Cond = p.parseExpr()
	if p.tok.Kind == token.LBRACE {
		n.Body = p.parseBlock(scope)
	} else {
		p.expect(token.THEN)
		n.Body = p.parseStmt(scope)
	}
	if _, ok := p.accept(token.ELSE); ok {
		n.ElseBody = p.parseStmt(scope)
	}
	return n
}

// parseWhileStmt parses "'while' expr ('do' stmt | block)".
func (p *Parser) parseWhileStmt(scope *ast.Node) *ast.Node {
	tok := p.expect(token.WHILE)
	n := ast.New(ast.While, tok)
	n.Cond = p.parseExpr()
	if p.tok.Kind == token.LBRACE {
		n.Body = p.parseBlock(scope)
	} else {
		p.expect(token.DO)
		n.Body = p.parseStmt(scope)
	}
	return n
}
