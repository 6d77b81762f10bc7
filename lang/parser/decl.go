package parser

import (
	"github.com/sumuslang/summus/lang/ast"
	"github.com/sumuslang/summus/lang/msgs"
	"github.com/sumuslang/summus/lang/token"
	"github.com/sumuslang/summus/lang/types"
)

// parseDeclOrStmt dispatches the "decl | stmt" alternative every
// top-level-item and block production needs, disambiguated with one token
// of lookahead: "ident :" starts a decl, anything else is a statement. A
// panic from deep inside either branch is caught here and turned into a
// synchronization skip, so one malformed item doesn't abort the whole
// block.
func (p *Parser) parseDeclOrStmt(scope *ast.Node) (node *ast.Node) {
	defer p.recoverAndSync()
	if p.tok.Kind == token.IDENT && p.peek().Kind == token.COLON {
		return p.parseDecl(scope)
	}
	return p.parseStmt(scope)
}

// parseDecl parses the "decl" production: a name, a colon, an optional
// type, then one of a variable initializer, a constant initializer or a
// function definition.
//
//	decl := ident ':' [ type ] ( '=' expr | ':' const-expr | func-def ) ';'
func (p *Parser) parseDecl(scope *ast.Node) *ast.Node {
	nameTok := p.expect(token.IDENT)
	p.expect(token.COLON)

	declType := types.Unknown
	hasType := false
	if p.tok.Kind == token.TYPENAME ||
		(p.tok.Kind == token.IDENT && (p.peek().Kind == token.EQ || p.peek().Kind == token.SEMI)) {
		// An identifier in type position is a misspelled type name, not a
		// missing one; parseType reports it as UnknownType.
		declType = p.parseType()
		hasType = true
	}

	d := ast.New(ast.Decl, nameTok)
	d.IsIdent = true
	d.Level = p.scopeDepth

	switch {
	case p.tok.Kind == token.LPAREN && !hasType:
		if p.scopeDepth > 1 {
			p.error(nameTok.Pos, msgs.FuncUnderScope, "function %s defined under a scope", nameTok.Repr)
		}
		fn := p.parseFuncDef()
		fn.Token = nameTok
		d.Left = fn
		addDecl(scope, d)
		return d // func-def owns its own terminator (block or ';'); no extra ';' here.

	case p.tok.Kind == token.SEMI && hasType:
		// "x : Int32;" declares x with the type's zero value, as if the
		// source had spelled the initializer out.
		p.advance()
		d.Left = ast.ZeroValue(nameTok.Pos, declType)
		d.Type = declType
		addDecl(scope, d)
		return d

	case p.tok.Kind == token.COLON && !hasType:
		p.advance()
		d.IsConst = true
		d.Left = p.parseExpr()
		p.expect(token.SEMI)
		addDecl(scope, d)
		return d

	case p.tok.Kind == token.EQ:
		p.advance()
		d.Left = p.parseExpr()
		d.Type = declType
		p.expect(token.SEMI)
		addDecl(scope, d)
		return d

	default:
		p.errorExpected("'=', ':' or '('")
		panic(errSync)
	}
}

// parseFuncDef parses the "func-def" production: a parameter list, an
// optional return type, and either a body block or a bare ';' marking an
// external, body-less function.
//
//	func-def := '(' [ param { ',' param } ] ')' [ '->' type ] ( block | ';' )
func (p *Parser) parseFuncDef() *ast.Node {
	lparen := p.expect(token.LPAREN)
	fn := ast.New(ast.Func, lparen)

	var params, lastParam *ast.Node
	count := 0
	if p.tok.Kind != token.RPAREN {
		for {
			param := p.parseParam()
			count++
			if params == nil {
				params = param
			} else {
				lastParam.Next = param
			}
			lastParam = param
			if _, ok := p.accept(token.COMMA); !ok {
				break
			}
		}
	}
	p.expect(token.RPAREN)
	if params != nil {
		params.ParamCount = count
	}
	fn.Params = params

	fn.ReturnType = types.Void
	if _, ok := p.accept(token.ARROW); ok {
		fn.ReturnType = p.parseType()
	}

	if p.tok.Kind == token.LBRACE {
		fn.Body = p.parseBlock(p.global)
		fn.Body.Scope.ReturnType = fn.ReturnType
	} else {
		p.expect(token.SEMI)
	}
	return fn
}

// parseParam parses a single "ident ':' type" parameter.
func (p *Parser) parseParam() *ast.Node {
	nameTok := p.expect(token.IDENT)
	p.expect(token.COLON)
	param := ast.New(ast.Param, nameTok)
	param.IsIdent = true
	param.Level = p.scopeDepth + 1 // visible inside the function body, one level deeper than the decl site
	param.Type = p.parseType()
	return param
}

// parseType resolves a TYPENAME token to its built-in types.Kind. An
// identifier in type position (spelled like a type but not one of the
// built-ins - there is no user-defined type declaration in this language)
// is reported as UnknownType rather than a bare syntax error, and parsing
// continues with Unknown.
func (p *Parser) parseType() types.Kind {
	if p.tok.Kind == token.IDENT {
		p.error(p.tok.Pos, msgs.UnknownType, "unknown type %s", p.tok.Repr)
		p.advance()
		return types.Unknown
	}
	if p.tok.Kind != token.TYPENAME {
		p.errorExpected("type name")
		panic(errSync)
	}
	k, _ := types.Lookup(p.tok.Repr)
	p.advance()
	return k
}
