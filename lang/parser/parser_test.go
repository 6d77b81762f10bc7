package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sumuslang/summus/lang/arena"
	"github.com/sumuslang/summus/lang/ast"
	"github.com/sumuslang/summus/lang/msgs"
	"github.com/sumuslang/summus/lang/parser"
	"github.com/sumuslang/summus/lang/scanner"
	"github.com/sumuslang/summus/lang/types"
)

func parseSrc(t *testing.T, src string) (*ast.Node, *msgs.Sink) {
	t.Helper()
	a := arena.Create("parser-test", 0)
	sink := msgs.NewSink()
	s := scanner.New("t.smm", []byte(src), a, sink)
	p := parser.New(s, sink)
	return p.Parse(), sink
}

func firstStmt(t *testing.T, prog *ast.Node) *ast.Node {
	t.Helper()
	require.NotNil(t, prog.Next)
	require.Equal(t, ast.Block, prog.Next.Kind)
	require.NotNil(t, prog.Next.Stmts)
	return prog.Next.Stmts
}

func TestParseEmptyProgram(t *testing.T) {
	prog, sink := parseSrc(t, "")
	require.False(t, sink.HadErrors())
	require.Equal(t, ast.Program, prog.Kind)
	require.Equal(t, ast.Block, prog.Next.Kind)
	require.Nil(t, prog.Next.Stmts)
}

func TestPrecedenceMulBindsTighterThanAdd(t *testing.T) {
	prog, sink := parseSrc(t, "x := 1 + 2 * 3;")
	require.False(t, sink.HadErrors())
	decl := firstStmt(t, prog)
	require.Equal(t,
		"(add (int 1:UInt8) (mul (int 2:UInt8) (int 3:UInt8)))",
		decl.Left.Format(true))
}

func TestLeftAssociativity(t *testing.T) {
	prog, sink := parseSrc(t, "x := 1 - 2 - 3;")
	require.False(t, sink.HadErrors())
	decl := firstStmt(t, prog)
	require.Equal(t,
		"(sub (sub (int 1:UInt8) (int 2:UInt8)) (int 3:UInt8))",
		decl.Left.Format(true))
}

func TestLogicalPrecedence(t *testing.T) {
	prog, sink := parseSrc(t, "x := a and b or c;")
	require.False(t, sink.HadErrors())
	decl := firstStmt(t, prog)
	or := decl.Left
	require.Equal(t, ast.OrOp, or.Kind)
	require.Equal(t, ast.AndOp, or.Left.Kind)
}

func TestChainedComparisonIsError(t *testing.T) {
	_, sink := parseSrc(t, "x := 1 < 2 < 3;")
	require.True(t, sink.HadErrors())
	require.Equal(t, msgs.GotUnexpectedToken, sink.Messages()[0].Kind)
}

func TestOperatorKindsFromTokens(t *testing.T) {
	prog, sink := parseSrc(t, "a := 1 / 2; b := 1 div 2; c := 1 mod 2;")
	require.False(t, sink.HadErrors())

	stmt := firstStmt(t, prog)
	require.Equal(t, ast.FDiv, stmt.Left.Kind)
	stmt = stmt.Next
	require.Equal(t, ast.SDiv, stmt.Left.Kind)
	stmt = stmt.Next
	require.Equal(t, ast.SRem, stmt.Left.Kind)
}

func TestVarDeclWithExplicitType(t *testing.T) {
	prog, sink := parseSrc(t, "x : Int32 = 5;")
	require.False(t, sink.HadErrors())
	decl := firstStmt(t, prog)
	require.Equal(t, ast.Decl, decl.Kind)
	require.Equal(t, types.Int32, decl.Type)
	require.False(t, decl.IsConst)
	require.Equal(t, ast.IntLit, decl.Left.Kind)
}

func TestZeroValueDecl(t *testing.T) {
	prog, sink := parseSrc(t, "x : Float32;")
	require.False(t, sink.HadErrors())
	decl := firstStmt(t, prog)
	require.Equal(t, types.Float32, decl.Type)
	require.Equal(t, ast.FloatLit, decl.Left.Kind)
	require.Zero(t, decl.Left.FloatVal)
}

func TestConstDecl(t *testing.T) {
	prog, sink := parseSrc(t, "C :: 41;")
	require.False(t, sink.HadErrors())
	decl := firstStmt(t, prog)
	require.True(t, decl.IsConst)
	require.Equal(t, ast.IntLit, decl.Left.Kind)
}

func TestDeclsAccumulateOnScopeInOrder(t *testing.T) {
	prog, sink := parseSrc(t, "a := 1; b := 2; c := 3;")
	require.False(t, sink.HadErrors())

	var names []string
	for d := prog.Next.Scope.Decls; d != nil; d = d.NextDecl {
		names = append(names, d.Token.Repr)
	}
	require.Equal(t, []string{"a", "b", "c"}, names)
}

func TestFuncDefWithParamsAndBody(t *testing.T) {
	prog, sink := parseSrc(t, "max : (a: Int32, b: Int32) -> Int32 { return a; }")
	require.False(t, sink.HadErrors())

	decl := firstStmt(t, prog)
	fn := decl.Left
	require.Equal(t, ast.Func, fn.Kind)
	require.Equal(t, "max", fn.Token.Repr)
	require.Equal(t, types.Int32, fn.ReturnType)

	require.NotNil(t, fn.Params)
	require.Equal(t, 2, fn.Params.ParamCount)
	require.Equal(t, "a", fn.Params.Token.Repr)
	require.Equal(t, types.Int32, fn.Params.Type)
	require.Equal(t, "b", fn.Params.Next.Token.Repr)

	require.NotNil(t, fn.Body)
	require.Equal(t, ast.Return, fn.Body.Stmts.Kind)
	require.Equal(t, types.Int32, fn.Body.Scope.ReturnType)
}

func TestExternFuncHasNilBody(t *testing.T) {
	prog, sink := parseSrc(t, "put : (c: Int32);")
	require.False(t, sink.HadErrors())
	fn := firstStmt(t, prog).Left
	require.Equal(t, ast.Func, fn.Kind)
	require.Nil(t, fn.Body)
	require.Equal(t, types.Void, fn.ReturnType)
}

func TestFuncUnderScopeIsError(t *testing.T) {
	_, sink := parseSrc(t, "{ f : () -> Int32 { return 1; } }")
	require.True(t, sink.HadErrors())
	require.Equal(t, msgs.FuncUnderScope, sink.Messages()[0].Kind)
}

func TestCallWithArgs(t *testing.T) {
	prog, sink := parseSrc(t, "r := f(1, 2.5, x);")
	require.False(t, sink.HadErrors())
	call := firstStmt(t, prog).Left
	require.Equal(t, ast.Call, call.Kind)

	var kinds []ast.Kind
	for arg := call.Args; arg != nil; arg = arg.Next {
		kinds = append(kinds, arg.Kind)
	}
	require.Equal(t, []ast.Kind{ast.IntLit, ast.FloatLit, ast.Ident}, kinds)
}

func TestCastSyntax(t *testing.T) {
	prog, sink := parseSrc(t, "x := cast(Int64)(y);")
	require.False(t, sink.HadErrors())
	cast := firstStmt(t, prog).Left
	require.Equal(t, ast.Cast, cast.Kind)
	require.Equal(t, types.Int64, cast.Type)
	require.Equal(t, ast.Ident, cast.Left.Kind)
}

func TestIfThenElse(t *testing.T) {
	prog, sink := parseSrc(t, "if x then y = 1; else y = 2;")
	require.False(t, sink.HadErrors())
	n := firstStmt(t, prog)
	require.Equal(t, ast.If, n.Kind)
	require.Equal(t, ast.Ident, n.Cond.Kind)
	require.Equal(t, ast.Assignment, n.Body.Kind)
	require.Equal(t, ast.Assignment, n.ElseBody.Kind)
}

func TestWhileWithBlock(t *testing.T) {
	prog, sink := parseSrc(t, "while x { y = 1; }")
	require.False(t, sink.HadErrors())
	n := firstStmt(t, prog)
	require.Equal(t, ast.While, n.Kind)
	require.Equal(t, ast.Block, n.Body.Kind)
	require.Nil(t, n.ElseBody)
}

func TestFloatLiteralIsSoft(t *testing.T) {
	prog, sink := parseSrc(t, "x := 2.5;")
	require.False(t, sink.HadErrors())
	require.Equal(t, types.SoftFloat64, firstStmt(t, prog).Left.Type)
}

func TestBangReportsUsedAsNot(t *testing.T) {
	prog, sink := parseSrc(t, "x := !y;")
	require.Equal(t, 1, sink.ErrorCount())
	require.Equal(t, msgs.BangUsedAsNot, sink.Messages()[0].Kind)
	require.Equal(t, ast.Not, firstStmt(t, prog).Left.Kind)
}

func TestRecoverySkipsToNextStatement(t *testing.T) {
	prog, sink := parseSrc(t, "x := * 1;\ny := 2;")
	require.True(t, sink.HadErrors())
	require.Equal(t, 1, sink.ErrorCount())

	// The second statement survives the first one's failure.
	var names []string
	for d := prog.Next.Scope.Decls; d != nil; d = d.NextDecl {
		names = append(names, d.Token.Repr)
	}
	require.Contains(t, names, "y")
}

func TestOneDiagnosticPerLine(t *testing.T) {
	_, sink := parseSrc(t, "x := * * * 1;")
	require.Equal(t, 1, sink.ErrorCount())
}

func TestMissingSemicolonReportedAtPreviousLine(t *testing.T) {
	_, sink := parseSrc(t, "x := 1\ny := 2;")
	require.True(t, sink.HadErrors())
	require.Equal(t, 1, sink.Messages()[0].Pos.Line)
}

func TestUnknownTypeNameReported(t *testing.T) {
	_, sink := parseSrc(t, "x : Number = 1;")
	require.True(t, sink.HadErrors())
	require.Equal(t, msgs.UnknownType, sink.Messages()[0].Kind)
}

func TestParamCountOnFirstParamOnly(t *testing.T) {
	prog, sink := parseSrc(t, "f : (a: Int32, b: Bool, c: Float64) -> Int32 { return a; }")
	require.False(t, sink.HadErrors())
	params := firstStmt(t, prog).Left.Params
	require.Equal(t, 3, params.ParamCount)
	require.Equal(t, 0, params.Next.ParamCount)
}

func TestBinaryAndUnaryShapes(t *testing.T) {
	prog, sink := parseSrc(t, "x := -(1 + 2);")
	require.False(t, sink.HadErrors())
	neg := firstStmt(t, prog).Left
	require.Equal(t, ast.Neg, neg.Kind)
	require.NotNil(t, neg.Left)
	require.Nil(t, neg.Right)
	add := neg.Left
	require.True(t, add.IsBinOp)
	require.NotNil(t, add.Left)
	require.NotNil(t, add.Right)
}
