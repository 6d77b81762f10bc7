package arena_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sumuslang/summus/lang/arena"
)

func TestAllocMonotonic(t *testing.T) {
	a := arena.Create("test", 8*1024)
	require.Zero(t, a.Used())

	a.Alloc(10)
	u1 := a.Used()
	require.Greater(t, u1, 0)

	a.Alloc(20)
	u2 := a.Used()
	require.Greater(t, u2, u1) // P8: Used is monotonically increasing between Create and Reset
}

func TestAllocAlignment(t *testing.T) {
	a := arena.Create("align", 4*1024)
	b1 := a.Alloc(1)
	b2 := a.Alloc(1)
	// the two allocations must not overlap and must leave room for alignment
	require.NotSame(t, &b1[0], &b2[0])
}

func TestResetZeroesAndRewinds(t *testing.T) {
	a := arena.Create("reset", 4*1024)
	b := a.Alloc(16)
	for i := range b {
		b[i] = 0xFF
	}
	a.Reset()
	require.Zero(t, a.Used())

	b2 := a.Alloc(16)
	for _, c := range b2 {
		require.Zero(t, c)
	}
}

func TestStartEndAlloc(t *testing.T) {
	a := arena.Create("scratch", 4*1024)
	scratch := a.StartAlloc()
	n := copy(scratch, "hello_world")
	got := a.EndAlloc(n)
	require.Equal(t, "hello_world", string(got))
}

func TestExhaustionPanics(t *testing.T) {
	a := arena.Create("tiny", 1)
	require.Panics(t, func() {
		a.Alloc(100 * 1024)
	})
}

func TestInfoReport(t *testing.T) {
	a := arena.Create("info", 4*1024)
	a.Alloc(100)
	require.Contains(t, a.Info(), "info")
	require.Contains(t, a.Info(), "size=")
}
