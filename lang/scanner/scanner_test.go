package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sumuslang/summus/lang/arena"
	"github.com/sumuslang/summus/lang/msgs"
	"github.com/sumuslang/summus/lang/scanner"
	"github.com/sumuslang/summus/lang/token"
	"github.com/sumuslang/summus/lang/types"
)

func scanAll(t *testing.T, src string) ([]*token.Token, *msgs.Sink) {
	t.Helper()
	a := arena.Create("test", 0)
	sink := msgs.NewSink()
	s := scanner.New("t.smm", []byte(src), a, sink)
	var toks []*token.Token
	for {
		tok := s.NextToken()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks, sink
}

func TestScanPunctAndOperators(t *testing.T) {
	toks, sink := scanAll(t, "+ - * / == != <= >= -> = < > : ; , . ( ) { } !")
	require.False(t, sink.HadErrors())
	kinds := make([]token.Kind, 0, len(toks))
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	require.Equal(t, []token.Kind{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.EQEQ, token.NEQ,
		token.LE, token.GE, token.ARROW, token.EQ, token.LT, token.GT, token.COLON,
		token.SEMI, token.COMMA, token.DOT, token.LPAREN, token.RPAREN, token.LBRACE,
		token.RBRACE, token.BANG, token.EOF,
	}, kinds)
}

func TestScanIdentKeywordsAndTypes(t *testing.T) {
	toks, sink := scanAll(t, "foo while Int32 true false")
	require.False(t, sink.HadErrors())
	require.Equal(t, token.IDENT, toks[0].Kind)
	require.Equal(t, "foo", toks[0].Repr)
	require.Equal(t, token.WHILE, toks[1].Kind)
	require.Equal(t, token.TYPENAME, toks[2].Kind)
	require.Equal(t, "Int32", toks[2].Repr)
	require.Equal(t, token.BOOL, toks[3].Kind)
	require.True(t, toks[3].Val.Bool)
	require.Equal(t, token.BOOL, toks[4].Kind)
	require.False(t, toks[4].Val.Bool)
}

func TestInternSharesStorage(t *testing.T) {
	toks, _ := scanAll(t, "abc abc")
	require.Equal(t, toks[0].Repr, toks[1].Repr)
}

func TestScanIntegerLiterals(t *testing.T) {
	toks, sink := scanAll(t, "0 255 256 65536 4294967296 0xFF 0x10")
	require.False(t, sink.HadErrors())
	require.Equal(t, uint64(0), toks[0].Val.Uint)
	require.Equal(t, types.UInt8, toks[0].Val.IntKind)
	require.Equal(t, uint64(255), toks[1].Val.Uint)
	require.Equal(t, types.UInt8, toks[1].Val.IntKind)
	require.Equal(t, uint64(256), toks[2].Val.Uint)
	require.Equal(t, types.UInt16, toks[2].Val.IntKind)
	require.Equal(t, uint64(65536), toks[3].Val.Uint)
	require.Equal(t, types.UInt32, toks[3].Val.IntKind)
	require.Equal(t, uint64(4294967296), toks[4].Val.Uint)
	require.Equal(t, types.UInt64, toks[4].Val.IntKind)
	require.Equal(t, uint64(255), toks[5].Val.Uint)
	require.Equal(t, uint64(16), toks[6].Val.Uint)
}

func TestScanLeadingZeroIsError(t *testing.T) {
	_, sink := scanAll(t, "0123")
	require.True(t, sink.HadErrors())
	require.Equal(t, msgs.InvalidZeroNumber, sink.Messages()[0].Kind)
}

func TestScanFloatLiterals(t *testing.T) {
	toks, sink := scanAll(t, "1.5 0.5 1.5e10 1.5e+3 1.5e-3 0.")
	require.False(t, sink.HadErrors())
	require.Equal(t, 1.5, toks[0].Val.Float)
	require.Equal(t, 0.5, toks[1].Val.Float)
	require.Equal(t, 1.5e10, toks[2].Val.Float)
	require.Equal(t, 1.5e+3, toks[3].Val.Float)
	require.Equal(t, 1.5e-3, toks[4].Val.Float)
	require.Equal(t, 0.0, toks[5].Val.Float)
}

func TestScanInvalidFloatExponent(t *testing.T) {
	_, sink := scanAll(t, "1.5ex")
	require.True(t, sink.HadErrors())
	require.Equal(t, msgs.InvalidFloatExponent, sink.Messages()[0].Kind)
}

func TestScanUnexpectedCharacter(t *testing.T) {
	_, sink := scanAll(t, "x $ y")
	require.True(t, sink.HadErrors())
	require.Equal(t, msgs.InvalidCharacter, sink.Messages()[0].Kind)
}

func TestIsFirstOnLine(t *testing.T) {
	toks, _ := scanAll(t, "x = 1;\ny = 2;")
	require.False(t, toks[0].IsFirstOnLine) // x
	require.True(t, toks[4].IsFirstOnLine)  // y, first token on line 2
}

func TestCarriageReturnLineEndings(t *testing.T) {
	toks, sink := scanAll(t, "x = 1;\r\ny = 2;\rz = 3;")
	require.False(t, sink.HadErrors())
	var yTok *token.Token
	for _, tok := range toks {
		if tok.Kind == token.IDENT && tok.Repr == "y" {
			yTok = tok
		}
	}
	require.NotNil(t, yTok)
	require.Equal(t, 2, yTok.Pos.Line)
}
