package infer

import (
	"github.com/sumuslang/summus/lang/ast"
	"github.com/sumuslang/summus/lang/msgs"
	"github.com/sumuslang/summus/lang/token"
	"github.com/sumuslang/summus/lang/types"
)

func isLogicalKind(k ast.Kind) bool {
	return k == ast.AndOp || k == ast.OrOp || k == ast.XorOp
}

func isCmpKind(k ast.Kind) bool {
	return k >= ast.Eq && k <= ast.LtEq
}

// expr infers the type of an expression tree in post order, refining the
// parser's generic operator kinds once operand types are known. It always
// leaves e.Type set (possibly Unknown after an error) and returns it.
func (ti *state) expr(e *ast.Node) types.Kind {
	var leftType, rightType, resType types.Kind

	switch {
	case e.Kind.IsArithOp() || isLogicalKind(e.Kind) || isCmpKind(e.Kind):
		if e.Type != types.Unknown && e.Type != types.Bool {
			return e.Type // already resolved through a shared constant expression
		}
		leftType = ti.expr(e.Left)
		rightType = ti.expr(e.Right)
		e.IsConst = e.Left.IsConst && e.Right.IsConst
		resType = commonType(leftType, rightType)
		if e.Type == types.Unknown {
			if isLogicalKind(e.Kind) || isCmpKind(e.Kind) {
				e.Type = types.Bool
			} else {
				e.Type = resType
			}
		}
	case e.Kind == ast.Neg || e.Kind == ast.Not || e.Kind == ast.Cast:
		leftType = ti.expr(e.Left)
		e.IsConst = e.Left.IsConst
	}

	switch e.Kind {
	case ast.Add, ast.Sub:
		if resType.IsFloat() {
			e.Kind = e.Kind.ToFloatKind()
		}
	case ast.Mul:
		if resType.IsFloat() {
			e.Kind = ast.FMul
		}
	case ast.SDiv, ast.SRem:
		if resType.IsUnsigned() {
			e.Kind = e.Kind.ToUnsignedKind()
		}
		if resType.IsFloat() {
			// div and mod are integer operators; force both operands into
			// integers and retype the node from what is left.
			ti.sink.PostGotBadOperands(e.Span(), e.Token.Literal(), resType.String())
			ti.fixDivModOperands(e)
			e.Type = commonType(e.Left.Type, e.Right.Type)
		}
	case ast.FDiv, ast.FRem:
		if !resType.IsFloat() {
			// Integer operands of / and % make the whole subexpression a
			// float of as-yet-undecided width.
			e.Type = types.SoftFloat64
		}
	case ast.Eq, ast.NotEq, ast.Gt, ast.GtEq, ast.Lt, ast.LtEq:
		if leftType.IsInt() && rightType.IsInt() && leftType.IsUnsigned() != rightType.IsUnsigned() {
			ti.sink.Post(msgs.ComparingSignedAndUnsigned, e.Span(),
				"comparing signed and unsigned values")
			cast := ast.New(ast.Cast, nil)
			cast.IsConst = e.IsConst
			cast.Type = resType
			if leftType.IsUnsigned() {
				cast.Left = e.Left
				cast.Token = e.Left.Token
				e.Left = cast
			} else {
				cast.Left = e.Right
				cast.Token = e.Right.Token
				e.Right = cast
			}
		}
	case ast.Neg:
		e.Type = leftType
		if signed, ok := types.SignedEquivalent(e.Type); ok {
			e.Type = signed
		} else if e.Type == types.Bool {
			e.Type = types.Int32 // the fix pass reconciles the operand
		}
	case ast.Not:
		e.Type = types.Bool
	case ast.Call:
		ti.call(e)
	case ast.Ident:
		ti.ident(e)
	case ast.Const:
		// A constant reference revisited through a shared initializer; its
		// declaration may not have been resolved the first time around.
		if e.Type == types.Unknown {
			decl, _ := ti.idents.Get(e.Token.Repr).(*ast.Node)
			if decl == nil {
				ti.sink.Post(msgs.UndefinedIdentifier, e.Token.Pos,
					"undefined identifier %s", e.Token.Repr)
			} else {
				if !decl.IsProcessed {
					ti.processDeclExpr(decl)
				}
				e.Type = decl.Type
			}
		}
	case ast.Cast, ast.Param, ast.IntLit, ast.FloatLit, ast.BoolLit,
		ast.AndOp, ast.OrOp, ast.XorOp:
		// nothing else to do
	}
	return e.Type
}

// ident resolves an identifier reference through the scope chain.
func (ti *state) ident(e *ast.Node) {
	decl, _ := ti.idents.Get(e.Token.Repr).(*ast.Node)
	switch {
	case decl == nil:
		ti.sink.Post(msgs.UndefinedIdentifier, e.Token.Pos,
			"undefined identifier %s", e.Token.Repr)
		e.Type = types.Unknown
	case decl.Kind == ast.Param:
		if ti.acceptOnlyConsts {
			ti.sink.Post(msgs.NonConstInConstExpression, e.Token.Pos,
				"non constant value used in constant expression")
		}
		e.Type = decl.Type
		e.Level = decl.Level
	default:
		if decl.Left != nil && decl.Left.Kind == ast.Func {
			ti.sink.Post(msgs.InvalidExprUsed, e.Token.Pos,
				"function %s used as a value", e.Token.Repr)
			e.Type = types.Unknown
			return
		}
		if decl.IsConst {
			e.Kind = ast.Const
			e.IsConst = true
			ti.processDeclExpr(decl)
		} else if ti.acceptOnlyConsts {
			ti.sink.Post(msgs.NonConstInConstExpression, e.Token.Pos,
				"non constant value used in constant expression")
		}
		if e.Type == types.Unknown {
			e.Type = decl.Type
		}
		e.Level = decl.Level
	}
}

// call resolves a call's callee name, infers its arguments and picks the
// overload the arguments match.
func (ti *state) call(e *ast.Node) {
	decl, _ := ti.idents.Get(e.Token.Repr).(*ast.Node)
	switch {
	case decl == nil:
		ti.sink.Post(msgs.UndefinedIdentifier, e.Token.Pos,
			"undefined identifier %s", e.Token.Repr)
		e.Type = types.Unknown
		e.ReturnType = types.Unknown
	case decl.Kind == ast.Param || decl.Left == nil || decl.Left.Kind != ast.Func:
		ti.sink.Post(msgs.NotAFunction, e.Token.Pos, "%s is not a function", e.Token.Repr)
		e.Type = types.Unknown
		e.ReturnType = types.Unknown
	default:
		for arg := e.Args; arg != nil; arg = arg.Next {
			ti.expr(arg)
		}
		ti.resolveCall(e, decl.Left)
		if ti.acceptOnlyConsts {
			ti.sink.Post(msgs.NonConstInConstExpression, e.Token.Pos,
				"non constant value used in constant expression")
		}
	}
}

// commonType picks the type a binary operator's result should have. Two
// integers of the same signedness keep the wider one; mixed signedness
// picks a signed type wide enough to represent both sides without
// reinterpreting the unsigned one, widening a step (capped at Int64) when
// the unsigned side is at least as wide as the signed side. Anything else
// is decided by promotion-rank order, with Bool widening to UInt8.
func commonType(left, right types.Kind) types.Kind {
	li, ri := types.Of(left), types.Of(right)
	if li.IsInt && ri.IsInt {
		if li.IsUnsigned != ri.IsUnsigned {
			signedW, unsignedW := li.SizeInBytes, ri.SizeInBytes
			if li.IsUnsigned {
				signedW, unsignedW = ri.SizeInBytes, li.SizeInBytes
			}
			w := signedW
			if unsignedW >= signedW {
				w = unsignedW * 2
				if w > 8 {
					w = 8
				}
			}
			return signedOfWidth(w)
		}
		if ri.SizeInBytes > li.SizeInBytes {
			return right
		}
		if li.SizeInBytes > ri.SizeInBytes {
			return left
		}
		return right
	}
	t := left
	if right > left {
		t = right
	}
	if t == types.Bool {
		return types.UInt8
	}
	return t
}

func signedOfWidth(w int) types.Kind {
	switch w {
	case 1:
		return types.Int8
	case 2:
		return types.Int16
	case 4:
		return types.Int32
	default:
		return types.Int64
	}
}

// fixDivModOperands repairs a div/mod node that ended up with float
// operands: a float literal is rewritten into an integer literal in place,
// any other float operand is wrapped in a cast to an at-least-32-bit
// integer type.
func (ti *state) fixDivModOperands(e *ast.Node) {
	var good, bad **ast.Node
	if e.Left.Type.IsInt() {
		good, bad = &e.Left, &e.Right
	} else if e.Right.Type.IsInt() {
		good, bad = &e.Right, &e.Left
	}

	if good == nil {
		e.Left = castTo(e.Left, types.Int32)
		e.Right = castTo(e.Right, types.Int32)
		return
	}

	b := *bad
	if b.Kind == ast.FloatLit {
		b.Kind = ast.IntLit
		if b.Token != nil {
			b.Token.Kind = token.INT
		}
		if b.FloatVal >= 0 && (*good).Type.IsUnsigned() {
			b.IntVal = uint64(b.FloatVal)
			b.Type = (*good).Type
		} else {
			b.IntVal = uint64(int64(b.FloatVal))
			if (*good).Type.SizeInBytes() > 4 {
				b.Type = types.Int64
			} else {
				b.Type = types.Int32
			}
		}
		return
	}

	t := (*good).Type
	if t.SizeInBytes() < 4 {
		t = types.Int32
	}
	*bad = castTo(b, t)
}

// castTo wraps n in a cast node to type t, carrying n's position and
// const-ness.
func castTo(n *ast.Node, t types.Kind) *ast.Node {
	cast := ast.New(ast.Cast, &token.Token{Kind: token.IDENT, Repr: t.String(), Pos: n.Span()})
	cast.Type = t
	cast.IsConst = n.IsConst
	cast.Left = n
	return cast
}

// deduceTypeFrom picks the type a declaration without an explicit type
// gets from its initializer: plain references and calls pass their type
// through; computed expressions avoid needlessly narrow variable types by
// promoting sub-32-bit integers and collapsing soft floats to Float32.
func deduceTypeFrom(val *ast.Node) types.Kind {
	switch val.Kind {
	case ast.Ident, ast.Param, ast.Call:
		return val.Type
	}
	switch val.Type {
	case types.SoftFloat64:
		return types.Float32
	case types.Int8, types.Int16:
		return types.Int32
	case types.UInt8, types.UInt16:
		return types.UInt32
	default:
		return val.Type
	}
}
