package infer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sumuslang/summus/lang/arena"
	"github.com/sumuslang/summus/lang/ast"
	"github.com/sumuslang/summus/lang/infer"
	"github.com/sumuslang/summus/lang/msgs"
	"github.com/sumuslang/summus/lang/parser"
	"github.com/sumuslang/summus/lang/scanner"
	"github.com/sumuslang/summus/lang/types"
)

func inferSrc(t *testing.T, src string) (*ast.Node, *msgs.Sink) {
	t.Helper()
	a := arena.Create("infer-test", 0)
	sink := msgs.NewSink()
	s := scanner.New("t.smm", []byte(src), a, sink)
	p := parser.New(s, sink)
	prog := p.Parse()
	require.False(t, sink.HadErrors(), "parse errors: %s", sink)
	infer.Run(prog, sink, a)
	return prog, sink
}

// stmtAt returns the n-th (0-based) statement of the global block.
func stmtAt(t *testing.T, prog *ast.Node, n int) *ast.Node {
	t.Helper()
	stmt := prog.Next.Stmts
	for i := 0; i < n; i++ {
		require.NotNil(t, stmt, "fewer than %d statements", n+1)
		stmt = stmt.Next
	}
	require.NotNil(t, stmt)
	return stmt
}

func kindsOf(sink *msgs.Sink) []msgs.Kind {
	var kinds []msgs.Kind
	for _, m := range sink.Messages() {
		kinds = append(kinds, m.Kind)
	}
	return kinds
}

func TestDeclDeducesFloatFromMixedAdd(t *testing.T) {
	prog, sink := inferSrc(t, "x := 1 + 2.5;")
	require.False(t, sink.HadErrors(), sink.String())

	decl := stmtAt(t, prog, 0)
	require.Equal(t, ast.Decl, decl.Kind)
	require.Equal(t, types.Float32, decl.Type)

	add := decl.Left
	require.Equal(t, ast.FAdd, add.Kind)
	require.Equal(t, types.SoftFloat64, add.Type) // collapsed by the fix pass, not here
}

func TestComparisonOfSignedAndUnsigned(t *testing.T) {
	prog, sink := inferSrc(t, "u : UInt32 = 5; i : Int32 = -3; b := u < i;")

	require.Equal(t, 1, sink.WarningCount())
	require.Contains(t, kindsOf(sink), msgs.ComparingSignedAndUnsigned)
	require.False(t, sink.HadErrors(), sink.String())

	b := stmtAt(t, prog, 2)
	require.Equal(t, types.Bool, b.Type)

	lt := b.Left
	require.Equal(t, ast.Lt, lt.Kind)
	require.Equal(t, types.Bool, lt.Type)

	// The unsigned side acquires a cast to the common Int64 type.
	require.Equal(t, ast.Cast, lt.Left.Kind)
	require.Equal(t, types.Int64, lt.Left.Type)
	require.Equal(t, ast.Ident, lt.Left.Left.Kind)
	require.Equal(t, "u", lt.Left.Left.Token.Repr)
	require.Equal(t, ast.Ident, lt.Right.Kind)
	require.Equal(t, types.Int32, lt.Right.Type)
}

func TestOverloadSoftMatchKeepsLastCandidate(t *testing.T) {
	prog, sink := inferSrc(t, `
f : (a: Int32, b: Float64) -> Int8;
f : (a: Int32, b: Float32) -> Int16;
r := f(1000, 54.234);
`)
	require.False(t, sink.HadErrors(), sink.String())

	r := stmtAt(t, prog, 2)
	call := r.Left
	require.Equal(t, ast.Call, call.Kind)
	require.Equal(t, types.Int16, call.ReturnType)
	require.Equal(t, types.Int16, call.Type)
	require.NotNil(t, call.Params)
	require.Equal(t, types.Float32, call.Params.Next.Type)
	require.Equal(t, types.Int16, r.Type)
}

func TestOverloadExactMatchWins(t *testing.T) {
	prog, sink := inferSrc(t, `
f : (a: Int32) -> Int8;
f : (a: Float64) -> Int16;
x : Float64 = 1.5;
r := f(x);
`)
	require.False(t, sink.HadErrors(), sink.String())
	call := stmtAt(t, prog, 3).Left
	require.Equal(t, types.Int16, call.ReturnType)
}

func TestCallWithNoMatchingOverload(t *testing.T) {
	prog, sink := inferSrc(t, `
f : (a: Int32) -> Int8;
b : Bool = true;
r := f(b, b);
`)
	require.Contains(t, kindsOf(sink), msgs.GotBadArgs)
	call := stmtAt(t, prog, 2).Left
	require.Equal(t, types.Unknown, call.ReturnType)
	require.Equal(t, types.Unknown, call.Type)
}

func TestCircularConstants(t *testing.T) {
	prog, sink := inferSrc(t, "A :: B + 1; B :: A;")

	var circ int
	for _, k := range kindsOf(sink) {
		if k == msgs.CircularDefinition {
			circ++
		}
	}
	require.Equal(t, 2, circ, sink.String())

	for d := prog.Next.Scope.Decls; d != nil; d = d.NextDecl {
		require.Equal(t, types.Unknown, d.Type, "decl %s", d.Token.Repr)
	}
}

func TestUseBeforeDeclarationInMainCode(t *testing.T) {
	_, sink := inferSrc(t, "if x then return; else x = 0;\nx := 0;")

	var undef int
	for _, k := range kindsOf(sink) {
		if k == msgs.UndefinedIdentifier {
			undef++
		}
	}
	require.Equal(t, 2, undef, sink.String())
}

func TestFunctionsSeeGlobalsDeclaredBelow(t *testing.T) {
	_, sink := inferSrc(t, `
get : () -> Int32 { return g; }
g : Int32 = 4;
`)
	require.False(t, sink.HadErrors(), sink.String())
}

func TestConstIdentRewrittenToConst(t *testing.T) {
	prog, sink := inferSrc(t, "C :: 41; x := C + 1;")
	require.False(t, sink.HadErrors(), sink.String())

	add := stmtAt(t, prog, 1).Left
	require.Equal(t, ast.Const, add.Left.Kind)
	require.True(t, add.Left.IsConst)
	require.True(t, add.IsConst)
}

func TestSignedDivBecomesUnsignedOnUnsignedOperands(t *testing.T) {
	prog, sink := inferSrc(t, "a := 7 div 2;")
	require.False(t, sink.HadErrors(), sink.String())

	div := stmtAt(t, prog, 0).Left
	require.Equal(t, ast.UDiv, div.Kind)
	require.Equal(t, types.UInt8, div.Type)
}

func TestSlashOnIntsMakesSoftFloat(t *testing.T) {
	prog, sink := inferSrc(t, "q := 7 / 2;")
	require.False(t, sink.HadErrors(), sink.String())

	div := stmtAt(t, prog, 0).Left
	require.Equal(t, ast.FDiv, div.Kind)
	require.Equal(t, types.SoftFloat64, div.Type)
	require.Equal(t, types.Float32, stmtAt(t, prog, 0).Type)
}

func TestDivOnFloatsIsError(t *testing.T) {
	prog, sink := inferSrc(t, "z := 5.0 div 2;")
	require.Contains(t, kindsOf(sink), msgs.BadOperandsType)

	div := stmtAt(t, prog, 0).Left
	// The float literal was rewritten to an integer in place.
	require.Equal(t, ast.IntLit, div.Left.Kind)
	require.True(t, div.Left.Type.IsInt())
}

func TestNegationOfUnsignedIsSigned(t *testing.T) {
	prog, sink := inferSrc(t, "n := -3;")
	require.False(t, sink.HadErrors(), sink.String())

	neg := stmtAt(t, prog, 0).Left
	require.Equal(t, ast.Neg, neg.Kind)
	require.Equal(t, types.Int8, neg.Type)
	require.Equal(t, types.Int32, stmtAt(t, prog, 0).Type) // promoted by deduction
}

func TestNegationOfBoolIsInt32(t *testing.T) {
	prog, sink := inferSrc(t, "n := -true;")
	require.False(t, sink.HadErrors(), sink.String())
	require.Equal(t, types.Int32, stmtAt(t, prog, 0).Left.Type)
}

func TestMangledNames(t *testing.T) {
	prog, sink := inferSrc(t, `
max : (a: Int32, b: Int32) -> Int32 { return a; }
ext : (c: Int32);
m := max(1, 2);
`)
	require.False(t, sink.HadErrors(), sink.String())

	var maxFn, extFn *ast.Node
	for d := prog.Next.Scope.Decls; d != nil; d = d.NextDecl {
		if d.Left != nil && d.Left.Kind == ast.Func {
			switch d.Token.Repr {
			case "max":
				maxFn = d.Left
			case "ext":
				extFn = d.Left
			}
		}
	}
	require.NotNil(t, maxFn)
	require.NotNil(t, extFn)
	require.Equal(t, "max_int32_int32", maxFn.MangledName)
	require.Equal(t, "ext", extFn.MangledName) // extern, no body, not mangled

	call := stmtAt(t, prog, 2).Left
	require.Equal(t, "max_int32_int32", call.MangledName)
}

func TestRedefinitionOfGlobal(t *testing.T) {
	_, sink := inferSrc(t, "x := 1; x := 2;")
	require.Contains(t, kindsOf(sink), msgs.Redefinition)
}

func TestShadowingInNestedBlockIsAllowed(t *testing.T) {
	_, sink := inferSrc(t, "x := 1; { x := 2; x = 3; }")
	require.False(t, sink.HadErrors(), sink.String())
}

func TestAssignToConstIsError(t *testing.T) {
	_, sink := inferSrc(t, "C :: 5; C = 6;")
	require.Contains(t, kindsOf(sink), msgs.CantAssignToConst)
}

func TestCallOfNonFunction(t *testing.T) {
	_, sink := inferSrc(t, "x := 5; y := x(1);")
	require.Contains(t, kindsOf(sink), msgs.NotAFunction)
}

func TestFuncRedefinitionWithSameParams(t *testing.T) {
	_, sink := inferSrc(t, `
f : (a: Int32) -> Int8;
f : (a: Int32) -> Int16;
`)
	require.Contains(t, kindsOf(sink), msgs.FuncRedefinition)
}

func TestReturnTypeMismatchIsError(t *testing.T) {
	_, sink := inferSrc(t, "f : (a: Int32) -> Int32 { return true; }")
	require.Contains(t, kindsOf(sink), msgs.BadReturnStmtType)
}

func TestFuncBodyMustEndWithReturn(t *testing.T) {
	_, sink := inferSrc(t, "f : (a: Int32) -> Int32 { a = 1; }")
	require.Contains(t, kindsOf(sink), msgs.FuncMustReturnValue)
}

func TestUnreachableCodeAfterReturn(t *testing.T) {
	_, sink := inferSrc(t, "f : () -> Int32 { return 1; x := 2; }")
	require.Contains(t, kindsOf(sink), msgs.UnreachableCode)
}

func TestNoEffectStatementWarns(t *testing.T) {
	_, sink := inferSrc(t, "x := 1; x + 2;")
	require.Contains(t, kindsOf(sink), msgs.NoEffectStmt)
	require.False(t, sink.HadErrors(), sink.String())
}

func TestNonConstInConstExpression(t *testing.T) {
	_, sink := inferSrc(t, "x := 1; C :: x + 1;")
	require.Contains(t, kindsOf(sink), msgs.NonConstInConstExpression)
}
