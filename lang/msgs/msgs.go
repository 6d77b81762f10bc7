// Package msgs implements the compiler's diagnostic sink: a closed
// enumeration of error, warning and hint kinds, each posted with a source
// position and rendered text, collected in insertion order and flushed all
// at once. Messages are small and short-lived enough to let the garbage
// collector own them rather than an arena.
package msgs

import (
	"fmt"
	"io"
	"strings"

	"github.com/sumuslang/summus/lang/token"
)

// Kind identifies one diagnostic from the closed taxonomy below, split
// into errors, warnings and hints. Warnings are looked up from the
// severities table and every other kind before hintsStart is an error, so
// reordering those can't silently reclassify a diagnostic; kinds declared
// from hintsStart on are hints by position.
type Kind int

const (
	Unknown Kind = iota

	// Lexical errors.
	InvalidDigit
	IntTooBig
	InvalidFloatExponent
	InvalidZeroNumber
	InvalidNumber
	InvalidCharacter
	BadStringEscape
	UnclosedString

	// Syntax and semantic errors.
	NoExpectedToken
	GotUnexpectedToken
	UndefinedIdentifier
	Redefinition
	OperandMustBeLVal
	UnknownType
	IdentTaken
	BadOperandsType
	GotBadArgs
	CantAssignToConst
	NonConstInConstExpression
	BadReturnStmtType
	FuncMustReturnValue
	UnreachableCode
	FuncUnderScope
	UnexpectedBool
	BangUsedAsNot
	NotAFunction
	InvalidExprUsed
	NoReturnValueNeeded
	FuncRedefinition
	CircularDefinition

	// Warnings.
	ConversionDataLoss
	NoEffectStmt
	ComparingSignedAndUnsigned

	// Hints.
	hintsStart
)

type severity int

const (
	severityError severity = iota
	severityWarning
	severityHint
)

var severities = map[Kind]severity{
	ConversionDataLoss:         severityWarning,
	NoEffectStmt:               severityWarning,
	ComparingSignedAndUnsigned: severityWarning,
}

func (k Kind) severity() severity {
	if k >= hintsStart {
		return severityHint
	}
	if s, ok := severities[k]; ok {
		return s
	}
	return severityError
}

var kindNames = map[Kind]string{
	Unknown:                   "unknown error",
	InvalidDigit:              "invalid digit",
	IntTooBig:                 "integer literal too big",
	InvalidFloatExponent:      "invalid float exponent",
	InvalidZeroNumber:         "invalid number starting with 0",
	InvalidNumber:             "invalid number",
	InvalidCharacter:          "invalid character",
	BadStringEscape:           "bad string escape",
	UnclosedString:            "unclosed string",
	NoExpectedToken:           "expected token not found",
	GotUnexpectedToken:        "unexpected token",
	UndefinedIdentifier:       "undefined identifier",
	Redefinition:              "redefinition",
	OperandMustBeLVal:         "operand must be an l-value",
	UnknownType:               "unknown type",
	IdentTaken:                "identifier already taken",
	BadOperandsType:           "bad operand type",
	GotBadArgs:                "bad arguments",
	CantAssignToConst:         "cannot assign to const",
	NonConstInConstExpression: "non const value in const expression",
	BadReturnStmtType:         "bad return statement type",
	FuncMustReturnValue:       "function must return a value",
	UnreachableCode:           "unreachable code",
	FuncUnderScope:            "function defined under a scope",
	UnexpectedBool:            "unexpected bool value",
	BangUsedAsNot:             "'!' used as 'not'",
	NotAFunction:              "not a function",
	InvalidExprUsed:           "invalid expression used",
	NoReturnValueNeeded:       "no return value needed",
	FuncRedefinition:          "function redefinition",
	CircularDefinition:        "circular definition",
	ConversionDataLoss:        "conversion may lose data",
	NoEffectStmt:              "statement has no effect",
	ComparingSignedAndUnsigned: "comparing signed and unsigned values",
}

// String returns the human-readable name of the diagnostic kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown diagnostic"
}

// IsError reports whether k is an error-severity diagnostic.
func (k Kind) IsError() bool { return k != Unknown && k.severity() == severityError }

// IsWarning reports whether k is a warning-severity diagnostic.
func (k Kind) IsWarning() bool { return k.severity() == severityWarning }

// IsHint reports whether k is a hint-severity diagnostic.
func (k Kind) IsHint() bool { return k.severity() == severityHint }

// Message is one posted diagnostic: its kind, source position and fully
// rendered text.
type Message struct {
	Kind Kind
	Pos  token.Position
	Text string
}

func (m *Message) String() string {
	var prefix string
	switch {
	case m.Kind.IsError():
		prefix = "error"
	case m.Kind.IsWarning():
		prefix = "warning"
	default:
		prefix = "hint"
	}
	return fmt.Sprintf("%s: %s: %s", m.Pos.String(), prefix, m.Text)
}

// Sink collects diagnostics posted during one compilation and counts them
// by severity. It is append-only: nothing is ever removed from it.
type Sink struct {
	items        []*Message
	errorCount   int
	warningCount int
	hintCount    int
}

// NewSink returns an empty Sink ready to receive diagnostics.
func NewSink() *Sink {
	return &Sink{}
}

// Post appends a formatted diagnostic of the given kind at pos.
func (s *Sink) Post(kind Kind, pos token.Position, format string, args ...interface{}) {
	s.append(kind, pos, fmt.Sprintf(format, args...))
}

// PostGotUnexpectedToken posts a "got X, expected Y" diagnostic, kept as
// its own method (rather than a generic Post call) so callers can't
// transpose the expected/got arguments.
func (s *Sink) PostGotUnexpectedToken(pos token.Position, expected, got string) {
	s.append(GotUnexpectedToken, pos, fmt.Sprintf("expected %s but got %s", expected, got))
}

// PostIdentTaken posts a "identifier already used as X" diagnostic.
func (s *Sink) PostIdentTaken(pos token.Position, identifier, takenAs string) {
	s.append(IdentTaken, pos, fmt.Sprintf("identifier %s is already taken as %s", identifier, takenAs))
}

// PostGotBadOperands posts a "operator can't be applied to type" diagnostic.
func (s *Sink) PostGotBadOperands(pos token.Position, operator, gotType string) {
	s.append(BadOperandsType, pos, fmt.Sprintf("operator %s can't be used with operand of type %s", operator, gotType))
}

// PostGotBadArgs posts a "no overload matches these argument types"
// diagnostic.
func (s *Sink) PostGotBadArgs(pos token.Position, gotSig, expectedSigs string) {
	s.append(GotBadArgs, pos, fmt.Sprintf("got arguments %s but expected one of %s", gotSig, expectedSigs))
}

// PostGotBadReturnType posts a "return type doesn't match declared type"
// diagnostic.
func (s *Sink) PostGotBadReturnType(pos token.Position, gotType, expectedType string) {
	s.append(BadReturnStmtType, pos, fmt.Sprintf("got return type %s but expected %s", gotType, expectedType))
}

// PostConversionLoss posts the "narrowing conversion may lose data" warning.
func (s *Sink) PostConversionLoss(pos token.Position, fromType, toType string) {
	s.append(ConversionDataLoss, pos, fmt.Sprintf("converting %s to %s may lose data", fromType, toType))
}

func (s *Sink) append(kind Kind, pos token.Position, text string) {
	s.items = append(s.items, &Message{Kind: kind, Pos: pos, Text: text})
	switch {
	case kind.IsError():
		s.errorCount++
	case kind.IsWarning():
		s.warningCount++
	default:
		s.hintCount++
	}
}

// HadErrors reports whether any error-severity diagnostic has been posted.
func (s *Sink) HadErrors() bool { return s.errorCount > 0 }

// ErrorCount, WarningCount and HintCount report the number of diagnostics
// posted at each severity.
func (s *Sink) ErrorCount() int   { return s.errorCount }
func (s *Sink) WarningCount() int { return s.warningCount }
func (s *Sink) HintCount() int    { return s.hintCount }

// Messages returns every posted diagnostic in insertion order. The
// returned slice must not be modified by the caller.
func (s *Sink) Messages() []*Message { return s.items }

// Flush writes every posted diagnostic, in insertion order, to w - one per
// line. It does not clear the sink.
func (s *Sink) Flush(w io.Writer) error {
	for _, m := range s.items {
		if _, err := fmt.Fprintln(w, m.String()); err != nil {
			return err
		}
	}
	return nil
}

// String renders every posted diagnostic as a single newline-joined block,
// handy for tests and golden-file comparisons.
func (s *Sink) String() string {
	var b strings.Builder
	_ = s.Flush(&b)
	return b.String()
}
