// Package fix implements the second semantic pass: a top-down walk that
// reconciles every expression with the type its context expects, now that
// inference has decided what everything is. Mismatches are repaired by the
// first applicable rule: literals are retyped or truncated in place,
// anything else is wrapped in a cast, non-bool expressions in bool context
// become an explicit compare against zero, and soft float literals commit
// to a concrete width. Replacement nodes are written through the parent's
// child-pointer slot, so helpers here take **ast.Node fields rather than
// nodes.
package fix

import (
	"github.com/sumuslang/summus/lang/ast"
	"github.com/sumuslang/summus/lang/msgs"
	"github.com/sumuslang/summus/lang/token"
	"github.com/sumuslang/summus/lang/types"
)

type fixer struct {
	sink *msgs.Sink
}

// Run executes the fix pass over the program rooted at prog. When it
// returns, no node carries SoftFloat64 and every parent/child pair either
// agrees on type or is separated by a cast to the parent's context type.
func Run(prog *ast.Node, sink *msgs.Sink) {
	global := prog.Next
	if global == nil || global.Kind != ast.Block {
		return
	}
	f := &fixer{sink: sink}
	f.globalSymbols(global.Scope.Decls)
	f.block(global)

	// Whatever soft floats the walk above didn't reach through a typed
	// context default to Float32.
	ast.Inspect(prog, func(n *ast.Node) bool {
		if n.Type == types.SoftFloat64 {
			n.Type = types.Float32
		}
		return true
	})
}

// globalSymbols fixes constant initializers and descends into function
// bodies; variable initializers are handled when the statement walk
// reaches their declaration.
func (f *fixer) globalSymbols(decls *ast.Node) {
	for d := decls; d != nil; d = d.NextDecl {
		if fn := d.Left; fn != nil && fn.Kind == ast.Func {
			if fn.Body != nil {
				f.localSymbols(fn.Body.Scope.Decls)
				f.block(fn.Body)
			}
		} else if d.IsConst && d.Left != nil {
			f.expr(&d.Left, d.Type, false)
		}
	}
}

func (f *fixer) localSymbols(decls *ast.Node) {
	for d := decls; d != nil; d = d.NextDecl {
		if d.IsConst && d.Left != nil {
			f.expr(&d.Left, d.Type, false)
		}
	}
}

func (f *fixer) block(b *ast.Node) {
	field := &b.Stmts
	for *field != nil {
		f.stmtAt(field)
		field = &(*field).Next
	}
}

// stmtAt fixes one statement through its owning slot, so a statement that
// is itself an expression can be rewritten in place.
func (f *fixer) stmtAt(field **ast.Node) {
	stmt := *field
	switch stmt.Kind {
	case ast.Block:
		f.localSymbols(stmt.Scope.Decls)
		f.block(stmt)
	case ast.Assignment:
		if stmt.Right != nil {
			f.expr(&stmt.Right, stmt.Type, false)
		}
	case ast.Return:
		if stmt.Left != nil {
			if stmt.Type == types.SoftFloat64 {
				stmt.Type = types.Float32
			}
			f.expr(&stmt.Left, stmt.Type, false)
		}
	case ast.If, ast.While:
		f.expr(&stmt.Cond, types.Bool, false)
		f.stmtAt(&stmt.Body)
		if stmt.ElseBody != nil {
			f.stmtAt(&stmt.ElseBody)
		}
	case ast.Decl:
		if !stmt.IsConst && stmt.Left != nil && stmt.Left.Kind != ast.Func {
			f.expr(&stmt.Left, stmt.Type, false)
		}
	default:
		if stmt.Type == types.SoftFloat64 {
			stmt.Type = types.Float32
		}
		f.expr(field, stmt.Type, stmt.Kind == ast.Cast)
	}
}

// expr reconciles the expression in *field with the type its parent
// context expects, then descends into the expression's own children with
// the contexts it establishes.
func (f *fixer) expr(field **ast.Node, parentType types.Kind, isParentCast bool) {
	e := *field
	if parentType != e.Type {
		field = f.coerce(field, parentType, isParentCast)
	}

	switch {
	case e.Kind.IsArithOp() || e.Kind == ast.AndOp || e.Kind == ast.OrOp || e.Kind == ast.XorOp:
		f.expr(&e.Left, e.Type, false)
		f.expr(&e.Right, e.Type, false)
	case e.Kind >= ast.Eq && e.Kind <= ast.LtEq:
		// Operands of a comparison share the wider of their two types, not
		// the comparison's own Bool.
		opType := e.Left.Type
		if e.Right.Type > opType {
			opType = e.Right.Type
		}
		if opType == types.SoftFloat64 {
			opType = types.Float32
		}
		f.expr(&e.Left, opType, false)
		f.expr(&e.Right, opType, false)
	case e.Kind == ast.Neg || e.Kind == ast.Not:
		f.expr(&e.Left, e.Type, false)
	case e.Kind == ast.Cast:
		f.expr(&e.Left, e.Type, true)
		if e.Left.Type == e.Type {
			// The cast dissolved into its operand; splice it out.
			child := e.Left
			child.Next = e.Next
			*field = child
		}
	case e.Kind == ast.Call:
		if e.Params != nil {
			param := e.Params
			argField := &e.Args
			for i := 0; i < e.Params.ParamCount && *argField != nil; i++ {
				f.expr(argField, param.Type, false)
				argField = &(*argField).Next
				param = param.Next
			}
		}
	}
}

// coerce applies the context-repair rules to the node in *field and
// returns the slot the walk should keep descending through (past any cast
// it inserted). Rules are keyed by the parent/child type class pair;
// literals absorb the context in place, everything else gets a cast.
func (f *fixer) coerce(field **ast.Node, parentType types.Kind, isParentCast bool) **ast.Node {
	node := *field
	var cast *ast.Node
	nt := node.Type

	switch {
	case parentType.IsInt() && nt.IsFloat():
		shown := nt
		if shown == types.SoftFloat64 {
			shown = types.Float32
		}
		if !isParentCast {
			cast = castNode(node, parentType)
			f.sink.PostConversionLoss(node.Span(), shown.String(), parentType.String())
		}

	case parentType.IsFloat() && nt.IsInt():
		if node.Kind == ast.IntLit {
			node.Kind = ast.FloatLit
			node.Type = parentType
			node.FloatVal = float64(node.IntVal)
			if node.Token != nil {
				node.Token.Kind = token.FLOAT
			}
		} else if !isParentCast {
			cast = castNode(node, parentType)
		}

	case parentType.IsInt() && nt.IsInt():
		switch {
		case parentType.IsUnsigned() == nt.IsUnsigned():
			if types.Rank(parentType) > types.Rank(nt) {
				if node.Kind == ast.IntLit || node.IsBinOp {
					node.Type = parentType
				} else if !isParentCast {
					cast = castNode(node, parentType)
				}
			} else {
				if node.Kind == ast.IntLit {
					node.IntVal = convertLiteral(node.IntVal, parentType)
					f.sink.PostConversionLoss(node.Span(), nt.String(), parentType.String())
					node.Type = parentType
				} else if !isParentCast {
					// No warning: operations on big numbers can yield small ones.
					cast = castNode(node, parentType)
				}
			}
		case node.Kind != ast.IntLit:
			if !isParentCast {
				cast = castNode(node, parentType)
			}
		default:
			old := int64(node.IntVal)
			node.IntVal = convertLiteral(node.IntVal, parentType)
			if old < 0 || old != int64(node.IntVal) {
				f.sink.PostConversionLoss(node.Span(), nt.String(), parentType.String())
			}
			node.Type = parentType
		}

	case parentType.IsFloat() && nt.IsFloat():
		if nt == types.SoftFloat64 {
			node.Type = parentType
		} else if !isParentCast {
			cast = castNode(node, parentType)
		}

	case parentType.IsBool() && !nt.IsBool():
		switch node.Kind {
		case ast.IntLit:
			node.Kind = ast.BoolLit
			node.Type = parentType
			node.BoolVal = node.IntVal != 0
		case ast.FloatLit:
			node.Kind = ast.BoolLit
			node.Type = parentType
			node.BoolVal = node.FloatVal != 0
		default:
			*field = f.notZero(node, parentType)
		}

	case !parentType.IsBool() && nt.IsBool() && !isParentCast:
		f.sink.Post(msgs.UnexpectedBool, node.Span(), "unexpected bool value")
	}

	if node.Type == types.SoftFloat64 {
		node.Type = types.Float32
	}

	if cast != nil {
		*field = cast
		field = &cast.Left
	}
	return field
}

// castNode wraps node in a cast to parentType, taking over node's place in
// any statement chain it heads.
func castNode(node *ast.Node, parentType types.Kind) *ast.Node {
	cast := ast.New(ast.Cast, &token.Token{Kind: token.IDENT, Repr: parentType.String(), Pos: node.Span()})
	cast.Type = parentType
	cast.IsConst = node.IsConst
	cast.Left = node
	cast.Next = node.Next
	node.Next = nil
	return cast
}

// notZero rewrites a non-bool node used in bool context into the
// "node != 0" comparison the backend expects, with a synthesized zero
// literal of the node's own type. The zero literal and the comparison each
// get their own token.
func (f *fixer) notZero(node *ast.Node, boolType types.Kind) *ast.Node {
	if node.Type == types.SoftFloat64 {
		node.Type = types.Float32
	}
	zero := ast.ZeroValue(node.Span(), node.Type)

	cmp := ast.New(ast.NotEq, &token.Token{Kind: token.NEQ, Repr: "!=", Pos: node.Span()})
	cmp.IsBinOp = true
	cmp.IsConst = node.IsConst
	cmp.Type = boolType
	cmp.Left = node
	cmp.Right = zero
	cmp.Next = node.Next
	node.Next = nil
	return cmp
}

// convertLiteral reinterprets an integer literal's bits as the target type
// t, truncating to t's width and sign. The result is stored back in the
// literal's uint64 payload as two's complement.
func convertLiteral(v uint64, t types.Kind) uint64 {
	switch t {
	case types.UInt8:
		return uint64(uint8(v))
	case types.UInt16:
		return uint64(uint16(v))
	case types.UInt32:
		return uint64(uint32(v))
	case types.Int8:
		return uint64(int64(int8(v)))
	case types.Int16:
		return uint64(int64(int16(v)))
	case types.Int32:
		return uint64(int64(int32(v)))
	default:
		return v
	}
}
