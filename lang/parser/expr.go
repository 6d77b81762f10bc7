package parser

import (
	"github.com/sumuslang/summus/lang/ast"
	"github.com/sumuslang/summus/lang/msgs"
	"github.com/sumuslang/summus/lang/token"
	"github.com/sumuslang/summus/lang/types"
)

// parseExpr is the entry point into the precedence ladder:
//
//	expr := or-expr
func (p *Parser) parseExpr() *ast.Node {
	return p.parseOr()
}

// or-expr := and-expr { ('or'|'xor') and-expr }
func (p *Parser) parseOr() *ast.Node {
	left := p.parseAnd()
	for p.tok.Kind == token.OR || p.tok.Kind == token.XOR {
		tok := p.tok
		kind := ast.OrOp
		if tok.Kind == token.XOR {
			kind = ast.XorOp
		}
		p.advance()
		right := p.parseAnd()
		left = binOp(kind, tok, left, right)
	}
	return left
}

// and-expr := cmp-expr { 'and' cmp-expr }
func (p *Parser) parseAnd() *ast.Node {
	left := p.parseCmp()
	for p.tok.Kind == token.AND {
		tok := p.tok
		p.advance()
		right := p.parseCmp()
		left = binOp(ast.AndOp, tok, left, right)
	}
	return left
}

func cmpKind(k token.Kind) (ast.Kind, bool) {
	switch k {
	case token.EQ:
		return ast.Eq, true
	case token.NEQ:
		return ast.NotEq, true
	case token.LT:
		return ast.Lt, true
	case token.LE:
		return ast.LtEq, true
	case token.GT:
		return ast.Gt, true
	case token.GE:
		return ast.GtEq, true
	default:
		return 0, false
	}
}

// cmp-expr := add-expr [ ('='|'!='|'<'|'<='|'>'|'>=') add-expr ]
//
// Comparisons are non-associative: a second comparator immediately after
// the first is a parse error, not a left-to-right chain.
func (p *Parser) parseCmp() *ast.Node {
	left := p.parseAdd()
	kind, ok := cmpKind(p.tok.Kind)
	if !ok {
		return left
	}
	tok := p.tok
	p.advance()
	right := p.parseAdd()
	n := binOp(kind, tok, left, right)

	if _, chained := cmpKind(p.tok.Kind); chained {
		p.error(p.tok.Pos, msgs.GotUnexpectedToken, "chained comparisons are not allowed; got %s", p.tok.Literal())
		p.advance()
		p.parseAdd()
	}
	return n
}

// add-expr := mul-expr { ('+'|'-') mul-expr }
func (p *Parser) parseAdd() *ast.Node {
	left := p.parseMul()
	for p.tok.Kind == token.PLUS || p.tok.Kind == token.MINUS {
		tok := p.tok
		kind := ast.Add
		if tok.Kind == token.MINUS {
			kind = ast.Sub
		}
		p.advance()
		right := p.parseMul()
		left = binOp(kind, tok, left, right)
	}
	return left
}

// mul-expr := unary { ('*'|'/'|'div'|'mod') unary }
func (p *Parser) parseMul() *ast.Node {
	left := p.parseUnary()
	for {
		var kind ast.Kind
		switch p.tok.Kind {
		case token.STAR:
			kind = ast.Mul
		case token.SLASH:
			kind = ast.FDiv
		case token.DIV:
			kind = ast.SDiv
		case token.MOD:
			kind = ast.SRem
		default:
			return left
		}
		tok := p.tok
		p.advance()
		right := p.parseUnary()
		left = binOp(kind, tok, left, right)
	}
}

// unary := ['+'|'-'|'not'|'!'] factor
func (p *Parser) parseUnary() *ast.Node {
	switch p.tok.Kind {
	case token.PLUS:
		p.advance()
		return p.parseFactor()
	case token.MINUS:
		tok := p.tok
		p.advance()
		operand := p.parseFactor()
		n := ast.New(ast.Neg, tok)
		n.Left = operand
		return n
	case token.NOT, token.BANG:
		tok := p.tok
		isBang := tok.Kind == token.BANG
		p.advance()
		operand := p.parseFactor()
		n := ast.New(ast.Not, tok)
		n.Left = operand
		if isBang {
			// A '!' where 'not' is meant gets its own diagnostic, distinct
			// from a plain unexpected character, since the author very likely
			// meant boolean negation.
			p.sink.Post(msgs.BangUsedAsNot, tok.Pos, "'!' used as 'not'")
		}
		return n
	default:
		return p.parseFactor()
	}
}

// factor := literal | ident | call | '(' expr ')'
//
// cast(type)(expr) is also recognized here: "cast" is not a reserved word,
// but an identifier spelled "cast" immediately followed by two parenthesized
// groups is the explicit conversion syntax, not a call to a function
// literally named "cast".
func (p *Parser) parseFactor() *ast.Node {
	switch p.tok.Kind {
	case token.INT:
		tok := p.tok
		p.advance()
		n := ast.New(ast.IntLit, tok)
		n.IntVal = tok.Val.Uint
		n.Type = tok.Val.IntKind
		n.IsConst = true
		return n

	case token.FLOAT:
		tok := p.tok
		p.advance()
		n := ast.New(ast.FloatLit, tok)
		n.FloatVal = tok.Val.Float
		n.Type = types.SoftFloat64
		n.IsConst = true
		return n

	case token.BOOL:
		tok := p.tok
		p.advance()
		n := ast.New(ast.BoolLit, tok)
		n.BoolVal = tok.Val.Bool
		n.Type = types.Bool
		n.IsConst = true
		return n

	case token.IDENT:
		if p.tok.Repr == "cast" && p.peek().Kind == token.LPAREN {
			return p.parseCast()
		}
		return p.parseIdentOrCall()

	case token.LPAREN:
		return p.parseParenExpr()

	default:
		p.errorExpected("an expression")
		panic(errSync)
	}
}

func (p *Parser) parseParenExpr() *ast.Node {
	p.expect(token.LPAREN)
	p.exprDepth++
	if p.exprDepth > maxExprDepth {
		p.fatalDepth(p.tok.Pos)
	}
	inner := p.parseExpr()
	p.exprDepth--
	p.expect(token.RPAREN)
	return inner
}

// parseIdentOrCall parses a bare identifier reference or, if followed by
// '(', a call:
//
//	call := ident '(' [ expr { ',' expr } ] ')'
func (p *Parser) parseIdentOrCall() *ast.Node {
	nameTok := p.tok
	p.advance()
	if p.tok.Kind != token.LPAREN {
		n := ast.New(ast.Ident, nameTok)
		n.IsIdent = true
		return n
	}

	p.advance() // consume '('
	call := ast.New(ast.Call, nameTok)
	var args, lastArg *ast.Node
	if p.tok.Kind != token.RPAREN {
		for {
			arg := p.parseExpr()
			if args == nil {
				args = arg
			} else {
				lastArg.Next = arg
			}
			lastArg = arg
			if _, ok := p.accept(token.COMMA); !ok {
				break
			}
		}
	}
	p.expect(token.RPAREN)
	call.Args = args
	return call
}

// parseCast parses "cast(type)(expr)", storing the target type directly on
// the Cast node - there is no separate type sub-node, the node's own Type
// field doubles as the cast target.
func (p *Parser) parseCast() *ast.Node {
	tok := p.tok
	p.advance() // 'cast'
	p.expect(token.LPAREN)
	targetType := p.parseType()
	p.expect(token.RPAREN)
	p.expect(token.LPAREN)
	operand := p.parseExpr()
	p.expect(token.RPAREN)

	n := ast.New(ast.Cast, tok)
	n.Type = targetType
	n.Left = operand
	return n
}

func binOp(kind ast.Kind, tok *token.Token, left, right *ast.Node) *ast.Node {
	n := ast.New(kind, tok)
	n.IsBinOp = true
	n.Left = left
	n.Right = right
	return n
}
