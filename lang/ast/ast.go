// Package ast defines the syntax tree the parser builds and the later
// passes mutate in place. Every node is a single flat Node struct tagged
// by Kind rather than an interface implemented by one type per node kind:
// all node variants share the common prefix fields and reuse the rest by
// position, which keeps generic traversal trivial. A flat tagged struct is
// also how Go's own SSA IR represents instructions (one Value type, one Op
// field, unused operand slots left zero), so the shape is well proven.
package ast

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/sumuslang/summus/lang/token"
	"github.com/sumuslang/summus/lang/types"
)

// Kind identifies what a Node represents. The arithmetic operator kinds
// from Add through FRem are deliberately contiguous and ordered
// (Add,FAdd,Sub,FSub,Mul,FMul,UDiv,SDiv,FDiv,URem,SRem,FRem) so the
// inference pass can refine "the integer version of this operator" to
// "the float version" (or signed to unsigned) with a fixed offset instead
// of a switch.
type Kind int8

const (
	Error Kind = iota
	Program
	Func
	Block
	Scope
	Decl
	Ident
	Const
	Assignment

	Add
	FAdd
	Sub
	FSub
	Mul
	FMul
	UDiv
	SDiv
	FDiv
	URem
	SRem
	FRem

	Neg
	TypeNode
	IntLit
	FloatLit
	BoolLit
	Cast
	Param
	Call
	Return

	AndOp
	XorOp
	OrOp

	Eq
	NotEq
	Gt
	GtEq
	Lt
	LtEq
	Not

	If
	While

	maxKind

	// ParamDefinition is a temporary kind used only while a function's
	// parameter list is being parsed, never seen by later passes; keeping it
	// past maxKind keeps it out of every table sized by maxKind.
	ParamDefinition = maxKind
)

var kindNames = [...]string{
	Error:      "error",
	Program:    "program",
	Func:       "func",
	Block:      "block",
	Scope:      "scope",
	Decl:       "decl",
	Ident:      "ident",
	Const:      "const",
	Assignment: "assignment",
	Add:        "add",
	FAdd:       "fadd",
	Sub:        "sub",
	FSub:       "fsub",
	Mul:        "mul",
	FMul:       "fmul",
	UDiv:       "udiv",
	SDiv:       "sdiv",
	FDiv:       "fdiv",
	URem:       "urem",
	SRem:       "srem",
	FRem:       "frem",
	Neg:        "neg",
	TypeNode:   "type",
	IntLit:     "int",
	FloatLit:   "float",
	BoolLit:    "bool",
	Cast:       "cast",
	Param:      "param",
	Call:       "call",
	Return:     "return",
	AndOp:      "and",
	XorOp:      "xor",
	OrOp:       "or",
	Eq:         "eq",
	NotEq:      "noteq",
	Gt:         "gt",
	GtEq:       "gteq",
	Lt:         "lt",
	LtEq:       "lteq",
	Not:        "not",
	If:         "if",
	While:      "while",
}

// String returns the display name of the node kind.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown node"
}

// IsArithOp reports whether k is one of the contiguous Add..FRem binary
// arithmetic operator kinds.
func (k Kind) IsArithOp() bool { return k >= Add && k <= FRem }

// kindShift is the fixed distance between an operator's integer and float
// forms (e.g. Add -> FAdd) in the Add..FRem block, used by the inference
// pass when it discovers an operand is actually floating point.
const kindShift = 1

// ToFloatKind returns the float counterpart of an integer arithmetic
// operator kind (Add -> FAdd, Sub -> FSub, ...). Calling it on a kind that
// isn't one of the plain (non-float, non-div/rem-signedness) arithmetic
// kinds is a programming error.
func (k Kind) ToFloatKind() Kind { return k + kindShift }

// ToUnsignedKind returns the unsigned counterpart of the signed division
// and remainder kinds (SDiv -> UDiv, SRem -> URem); any other kind is
// returned unchanged.
func (k Kind) ToUnsignedKind() Kind {
	if k == SDiv || k == SRem {
		return k - kindShift
	}
	return k
}

// Node is a single AST node. Not every field is meaningful for every Kind;
// which ones are is determined entirely by Kind - see the per-field
// comments below for which kinds use what.
type Node struct {
	Kind  Kind
	Token *token.Token
	Type  types.Kind

	// Common linkage, reused across kinds: Next chains sibling statements or
	// declarations, Left/Right are binary operator operands (Left doubles as
	// the sole operand of unary Neg/Not/Cast).
	Next  *Node
	Left  *Node
	Right *Node

	// Flags, reused across kinds.
	IsIdent          bool
	IsConst          bool
	IsBinOp          bool
	IsBeingProcessed bool // const value currently being resolved (cycle detection)
	IsProcessed      bool // const value already resolved
	EndsWithReturn   bool // Block: every path through it ends in a return

	// Scope-tracking, set on Ident/Decl/Param nodes so the inference pass
	// can tell redefinition-in-the-same-scope from shadowing-an-outer-scope
	// apart: Level is the nesting depth the identifier was declared at.
	Level int

	// Decl-only.
	NextDecl *Node

	// Scope-only.
	ScopeLevel int
	ReturnType types.Kind
	LastDecl   *Node
	PrevScope  *Node
	Decls      *Node

	// Block-only: Scope is the Kind=Scope node this block owns; Stmts is
	// its statement list, chained through Next.
	Scope *Node
	Stmts *Node

	// Func/Call-only.
	Body        *Node
	Params      *Node
	NextOverload *Node
	Args        *Node

	// Param-only.
	ParamCount int

	// If/While-only.
	Cond     *Node
	ElseBody *Node

	// Literal payloads (IntLit/FloatLit/BoolLit/Ident-as-const-value).
	IntVal   uint64
	FloatVal float64
	BoolVal  bool

	// MangledName is the overload-resolved name used to distinguish
	// same-named function overloads once their parameter types are known:
	// "add_int32_int32" rather than plain "add".
	MangledName string
}

// New allocates a zeroed Node of the given kind with its token set. Nodes
// are ordinary garbage-collected values: the AST doesn't outlive a single
// compiler invocation, and letting the collector reclaim it keeps the tree
// safely shareable independent of any arena lifetime.
func New(kind Kind, tok *token.Token) *Node {
	return &Node{Kind: kind, Token: tok, Type: types.Unknown}
}

// ZeroValue returns a freshly built literal Node holding the zero value for
// varType: 0 for integers, 0.0 for floats, false for Bool. It's used when a
// declared variable has no initializer, and by the fix pass's bool-context
// rewrite.
func ZeroValue(pos token.Position, varType types.Kind) *Node {
	info := types.Of(varType)
	switch {
	case info.IsBool:
		return &Node{Kind: BoolLit, Type: varType, BoolVal: false, IsConst: true,
			Token: &token.Token{Kind: tokKindFor(varType), Pos: pos}}
	case info.IsFloat:
		return &Node{Kind: FloatLit, Type: varType, FloatVal: 0, IsConst: true,
			Token: &token.Token{Kind: tokKindFor(varType), Pos: pos}}
	default:
		return &Node{Kind: IntLit, Type: varType, IntVal: 0, IsConst: true,
			Token: &token.Token{Kind: tokKindFor(varType), Pos: pos}}
	}
}

func tokKindFor(varType types.Kind) token.Kind {
	info := types.Of(varType)
	switch {
	case info.IsBool:
		return token.BOOL
	case info.IsFloat:
		return token.FLOAT
	default:
		return token.INT
	}
}

// Visitor is implemented by callers of Walk to observe every node in a
// tree. Visit is called on entry to n; if it returns a non-nil Visitor,
// Walk recurses into n's children with that Visitor (the Visitor
// returned by the recursive calls is discarded, matching ast.Walk's
// go/ast-style shape), then calls Visit(nil) on exit.
type Visitor interface {
	Visit(n *Node) Visitor
}

// Walk traverses the tree rooted at n in a fixed field order - Left,
// Right, Cond, Body, ElseBody, Args, Params, Decls, Stmts, then Next -
// calling v.Visit at each step. A nil n is a no-op.
func Walk(v Visitor, n *Node) {
	if n == nil {
		return
	}
	v = v.Visit(n)
	if v == nil {
		return
	}
	Walk(v, n.Left)
	Walk(v, n.Right)
	Walk(v, n.Cond)
	Walk(v, n.Body)
	Walk(v, n.ElseBody)
	Walk(v, n.Args)
	Walk(v, n.Params)
	Walk(v, n.Decls)
	Walk(v, n.Stmts)
	v.Visit(nil)
	Walk(v, n.Next)
}

type inspector func(*Node) bool

func (f inspector) Visit(n *Node) Visitor {
	if n == nil {
		return nil
	}
	if f(n) {
		return f
	}
	return nil
}

// Inspect walks the tree rooted at n, calling f for every node (nil
// excluded) in the same order as Walk; if f returns false, Inspect doesn't
// descend into that node's children.
func Inspect(n *Node, f func(*Node) bool) {
	Walk(inspector(f), n)
}

// Format renders n and (if deep is true) its Left/Right/children as a
// single-line s-expression, e.g. "(add (int 1) (int 2))". It's meant for
// error messages and debug traces, not as a parseable serialization.
func (n *Node) Format(deep bool) string {
	if n == nil {
		return "<nil>"
	}
	var b strings.Builder
	n.format(&b, deep)
	return b.String()
}

func (n *Node) format(b *strings.Builder, deep bool) {
	b.WriteByte('(')
	b.WriteString(n.Kind.String())
	switch n.Kind {
	case IntLit:
		fmt.Fprintf(b, " %d", n.IntVal)
	case FloatLit:
		fmt.Fprintf(b, " %g", n.FloatVal)
	case BoolLit:
		fmt.Fprintf(b, " %t", n.BoolVal)
	case Ident, Decl, Param, Func, Call:
		if n.Token != nil {
			fmt.Fprintf(b, " %s", n.Token.Literal())
		}
	}
	if n.Type != types.Unknown {
		fmt.Fprintf(b, ":%s", n.Type)
	}
	if deep {
		for _, child := range []*Node{n.Left, n.Right, n.Cond, n.Body, n.ElseBody} {
			if child != nil {
				b.WriteByte(' ')
				child.format(b, deep)
			}
		}
	}
	b.WriteByte(')')
}

// Span returns the source position associated with n, or the zero
// Position if n or its token is nil.
func (n *Node) Span() token.Position {
	if n == nil || n.Token == nil {
		return token.Position{}
	}
	return n.Token.Pos
}

// dumpConfig keeps DebugDump output stable across runs: pointer addresses
// and slice capacities change between invocations and would make two dumps
// of the same tree compare unequal.
var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// DebugDump renders n's entire field-by-field structure (every pointer
// followed recursively) using go-spew, backing the -pp1/-pp2/-pp3 dump
// points so a developer can see exactly what's on a node without every
// package growing its own ad hoc dumper. Output is deterministic for a
// given tree.
func DebugDump(n *Node) string {
	return dumpConfig.Sdump(n)
}
