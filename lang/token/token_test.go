package token_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sumuslang/summus/lang/token"
)

func TestLookupKeyword(t *testing.T) {
	k, ok := token.LookupKeyword("while")
	require.True(t, ok)
	require.Equal(t, token.WHILE, k)

	_, ok = token.LookupKeyword("notakeyword")
	require.False(t, ok)
}

func TestKindString(t *testing.T) {
	require.Equal(t, "+", token.PLUS.String())
	require.Equal(t, "==", token.EQEQ.String())
	require.Equal(t, "while", token.WHILE.String())
}

func TestTokenLiteral(t *testing.T) {
	tok := &token.Token{Kind: token.IDENT, Repr: "foo"}
	require.Equal(t, "foo", tok.Literal())

	tok2 := &token.Token{Kind: token.SEMI}
	require.Equal(t, ";", tok2.Literal())
}

func TestIsPunct(t *testing.T) {
	require.True(t, token.PLUS.IsPunct())
	require.True(t, token.ARROW.IsPunct())
	require.False(t, token.IF.IsPunct())
	require.False(t, token.IDENT.IsPunct())
}
