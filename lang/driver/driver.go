// Package driver wires the passes into the compilation pipeline: scan,
// parse, infer, fix, in that fixed order, with one arena and one message
// sink per compilation unit. Nothing here is thread-safe within a unit,
// but units share no state, so CompileFiles fans one goroutine out per
// input file.
package driver

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/sumuslang/summus/lang/arena"
	"github.com/sumuslang/summus/lang/ast"
	"github.com/sumuslang/summus/lang/fix"
	"github.com/sumuslang/summus/lang/infer"
	"github.com/sumuslang/summus/lang/msgs"
	"github.com/sumuslang/summus/lang/parser"
	"github.com/sumuslang/summus/lang/scanner"
)

// Checkpoint identifies a point between passes at which an Observer can
// look at the tree, matching the CLI's -pp1/-pp2/-pp3 dump points.
type Checkpoint int

const (
	AfterParse Checkpoint = iota + 1
	AfterInference
	AfterFix
)

// Observer is called after each pass completes with the unit in its
// current state. The observer must not retain or mutate the tree.
type Observer func(Checkpoint, *Unit)

// Unit is one compiled source file: its typed program tree and the
// diagnostics the passes posted. Prog is non-nil even when Sink holds
// errors; it is then a best-effort partial tree.
type Unit struct {
	Filename string
	Prog     *ast.Node
	Sink     *msgs.Sink
}

// Compile runs the full pipeline over src. Non-fatal conditions accumulate
// in the returned unit's Sink; a non-nil error means a fatal condition
// (arena exhaustion, expression-depth cap) aborted the pipeline and the
// unit is incomplete.
func Compile(filename string, src []byte, obs Observer) (u *Unit, err error) {
	defer func() {
		switch r := recover().(type) {
		case nil:
		case *arena.Error:
			err = r
		case *parser.FatalError:
			err = r
		default:
			panic(r)
		}
	}()

	size := 8 * len(src)
	if size < scanner.MaxSourceSize {
		size = scanner.MaxSourceSize
	}
	a := arena.Create(filename, size)
	sink := msgs.NewSink()
	u = &Unit{Filename: filename, Sink: sink}

	s := scanner.New(filename, src, a, sink)
	p := parser.New(s, sink)
	u.Prog = p.Parse()
	if obs != nil {
		obs(AfterParse, u)
	}

	infer.Run(u.Prog, sink, a)
	if obs != nil {
		obs(AfterInference, u)
	}

	fix.Run(u.Prog, sink)
	if obs != nil {
		obs(AfterFix, u)
	}
	return u, nil
}

// CompileFiles compiles every named file concurrently, one pipeline and
// one arena set per unit. The returned slice is indexed like files; a
// unit is nil if reading its file failed. The first error encountered is
// returned after every in-flight unit finishes.
func CompileFiles(ctx context.Context, files ...string) ([]*Unit, error) {
	units := make([]*Unit, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range files {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := ReadSource(name)
			if err != nil {
				return err
			}
			u, err := Compile(name, src, nil)
			units[i] = u
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return units, err
	}
	return units, nil
}

// ReadSource loads a compilation unit's source text. "-" reads standard
// input a line at a time; anything else is a file read whole, capped at
// the scanner's in-memory buffer limit.
func ReadSource(name string) ([]byte, error) {
	if name == "-" {
		return readLines(os.Stdin)
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	if len(b) > scanner.MaxSourceSize {
		return nil, fmt.Errorf("%s: source file exceeds the %d byte limit", name, scanner.MaxSourceSize)
	}
	return b, nil
}

func readLines(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		buf.Write(sc.Bytes())
		buf.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
