package maincmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (code mainer.ExitCode, stdout, stderr string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	stdio := mainer.Stdio{
		Stdin:  bytes.NewReader(nil),
		Stdout: &outBuf,
		Stderr: &errBuf,
	}
	var c Cmd
	code = c.Main(append([]string{"summus"}, args...), stdio)
	return code, outBuf.String(), errBuf.String()
}

func writeSource(t *testing.T, src string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "in.smm")
	require.NoError(t, os.WriteFile(name, []byte(src), 0o600))
	return name
}

func TestSuccessExitsZero(t *testing.T) {
	name := writeSource(t, "x := 1 + 2;")
	code, stdout, stderr := runCmd(t, name)
	require.Equal(t, mainer.Success, code)
	require.Empty(t, stderr)
	require.NotEmpty(t, stdout) // backend handoff dump
}

func TestDiagnosticErrorExitsNonZero(t *testing.T) {
	name := writeSource(t, "x := nope;")
	code, stdout, stderr := runCmd(t, name)
	require.Equal(t, mainer.Failure, code)
	require.Contains(t, stderr, "undefined identifier nope")
	require.Empty(t, stdout) // backend not invoked on errors
}

func TestMissingInputFileExitsNonZero(t *testing.T) {
	code, _, stderr := runCmd(t)
	require.Equal(t, mainer.Failure, code)
	require.Contains(t, stderr, "no input file")
}

func TestExtraArgumentExitsNonZero(t *testing.T) {
	name := writeSource(t, "x := 1;")
	code, _, stderr := runCmd(t, name, "extra.smm")
	require.Equal(t, mainer.Failure, code)
	require.Contains(t, stderr, "unexpected argument")
}

func TestUnknownFlagExitsNonZero(t *testing.T) {
	name := writeSource(t, "x := 1;")
	code, _, _ := runCmd(t, "-bogus", name)
	require.Equal(t, mainer.Failure, code)
}

func TestDumpAfterParse(t *testing.T) {
	name := writeSource(t, "x := 1;")
	code, stdout, _ := runCmd(t, "-pp1", name)
	require.Equal(t, mainer.Success, code)
	require.NotEmpty(t, stdout)
}

func TestOnlyOneDumpFlagAllowed(t *testing.T) {
	name := writeSource(t, "x := 1;")
	code, _, stderr := runCmd(t, "-pp1", "-pp2", name)
	require.Equal(t, mainer.Failure, code)
	require.Contains(t, stderr, "at most one")
}

func TestOutputFlagWritesFile(t *testing.T) {
	name := writeSource(t, "x := 1;")
	outName := filepath.Join(t.TempDir(), "out.txt")
	code, stdout, _ := runCmd(t, "-o", outName, name)
	require.Equal(t, mainer.Success, code)
	require.Empty(t, stdout)

	b, err := os.ReadFile(outName)
	require.NoError(t, err)
	require.NotEmpty(t, b)
}

func TestWarningsAloneStillSucceed(t *testing.T) {
	name := writeSource(t, "x : Int8 = 300;")
	code, _, stderr := runCmd(t, name)
	require.Equal(t, mainer.Success, code)
	require.Contains(t, stderr, "may lose data")
}

func TestHelp(t *testing.T) {
	code, stdout, _ := runCmd(t, "--help")
	require.Equal(t, mainer.Success, code)
	require.Contains(t, stdout, "usage: summus")
}
