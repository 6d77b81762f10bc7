// Package maincmd implements the summus command-line interface: flag
// parsing, the compile run, diagnostic flushing and exit codes. The binary
// in cmd/summus is a thin shell around Cmd.Main.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mna/mainer"

	"github.com/sumuslang/summus/lang/ast"
	"github.com/sumuslang/summus/lang/driver"
)

const binName = "summus"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [-pp1|-pp2|-pp3] [-o OUTFILE] INFILE
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [-pp1|-pp2|-pp3] [-o OUTFILE] INFILE
       %[1]s -h|--help
       %[1]s -v|--version

Compiler for the %[1]s programming language. INFILE is the source file to
compile; pass '-' to read source from standard input a line at a time.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       -pp1                      Dump the syntax tree right after parsing
                                 and skip the backend output.
       -pp2                      Dump the syntax tree after type inference
                                 and skip the backend output.
       -pp3                      Dump the syntax tree after the semantic
                                 fix pass and skip the backend output.
       -o OUTFILE                Write the backend handoff to OUTFILE
                                 (default: standard output).

The exit code is 0 on success and 1 when any error was reported, the input
file is missing, or a flag is unknown.
`, binName)
)

// Cmd is the flag surface of the summus binary, parsed by mainer from the
// struct tags.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool   `flag:"h,help"`
	Version bool   `flag:"v,version"`
	PP1     bool   `flag:"pp1"`
	PP2     bool   `flag:"pp2"`
	PP3     bool   `flag:"pp3"`
	Output  string `flag:"o,output"`

	args []string
}

// SetArgs receives the positional arguments left after flag parsing.
func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

// Validate enforces the CLI contract: exactly one input file and at most
// one dump flag.
func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) == 0 {
		return errors.New("no input file specified")
	}
	if len(c.args) > 1 {
		return fmt.Errorf("unexpected argument: %s", c.args[1])
	}
	pp := 0
	for _, set := range []bool{c.PP1, c.PP2, c.PP3} {
		if set {
			pp++
		}
	}
	if pp > 1 {
		return errors.New("at most one of -pp1, -pp2, -pp3 may be given")
	}
	return nil
}

func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	return err
}

// errCompileFailed marks a run whose diagnostics were already flushed to
// stderr; nothing further is printed for it.
var errCompileFailed = errors.New("compilation failed")

// Main parses args, runs the compiler and returns the process exit code.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars: false,
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.Failure
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.compile(ctx, stdio); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// compile runs the pipeline over the one input file, dumping the tree at
// the requested checkpoint, flushing diagnostics, and writing the backend
// handoff when compilation is clean.
func (c *Cmd) compile(ctx context.Context, stdio mainer.Stdio) error {
	if err := ctx.Err(); err != nil {
		return printError(stdio, err)
	}

	infile := c.args[0]
	src, err := driver.ReadSource(infile)
	if err != nil {
		return printError(stdio, err)
	}

	dumpAt := driver.Checkpoint(0)
	switch {
	case c.PP1:
		dumpAt = driver.AfterParse
	case c.PP2:
		dumpAt = driver.AfterInference
	case c.PP3:
		dumpAt = driver.AfterFix
	}
	var obs driver.Observer
	if dumpAt != 0 {
		obs = func(cp driver.Checkpoint, u *driver.Unit) {
			if cp == dumpAt {
				fmt.Fprint(stdio.Stdout, ast.DebugDump(u.Prog))
			}
		}
	}

	u, err := driver.Compile(infile, src, obs)
	if u != nil {
		_ = u.Sink.Flush(stdio.Stderr)
	}
	if err != nil {
		return printError(stdio, err)
	}
	if u.Sink.HadErrors() {
		return errCompileFailed
	}
	if dumpAt != 0 {
		return nil // dump requested, backend handoff skipped
	}

	out := io.Writer(stdio.Stdout)
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return printError(stdio, err)
		}
		defer f.Close()
		out = f
	}
	fmt.Fprint(out, ast.DebugDump(u.Prog))
	return nil
}
