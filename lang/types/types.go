// Package types defines summus's closed set of built-in types and the
// predicates and rank ordering the inference and fix passes use to pick
// common types and widths.
package types

import "fmt"

// Kind enumerates every built-in type. Its order is significant: the
// unsigned-to-signed pairing used by several coercions relies on
// UInt8..UInt64 and Int8..Int64 lining up one-to-one, and rank ordering
// below relies on wider types of the same family sorting after narrower
// ones.
type Kind int8

const (
	Unknown Kind = iota
	Void
	Bool

	UInt8
	UInt16
	UInt32
	UInt64

	Int8
	Int16
	Int32
	Int64

	Float32
	Float64

	// SoftFloat64 is the provisional type given to a float literal before
	// the fix pass commits it to Float32 or Float64 depending on how it's
	// used.
	SoftFloat64

	maxKind
)

// Info holds the fixed attributes of a built-in type: its display name,
// size and the class predicates.
type Info struct {
	Kind         Kind
	SizeInBytes  int
	Name         string
	IsInt        bool
	IsUnsigned   bool
	IsFloat      bool
	IsBool       bool
}

// Builtins holds one Info per Kind, indexed by Kind.
var Builtins = [maxKind]Info{
	Unknown:     {Kind: Unknown, SizeInBytes: 0, Name: "<unknown>"},
	Void:        {Kind: Void, SizeInBytes: 0, Name: "Void"},
	Bool:        {Kind: Bool, SizeInBytes: 1, Name: "Bool", IsBool: true},
	UInt8:       {Kind: UInt8, SizeInBytes: 1, Name: "UInt8", IsInt: true, IsUnsigned: true},
	UInt16:      {Kind: UInt16, SizeInBytes: 2, Name: "UInt16", IsInt: true, IsUnsigned: true},
	UInt32:      {Kind: UInt32, SizeInBytes: 4, Name: "UInt32", IsInt: true, IsUnsigned: true},
	UInt64:      {Kind: UInt64, SizeInBytes: 8, Name: "UInt64", IsInt: true, IsUnsigned: true},
	Int8:        {Kind: Int8, SizeInBytes: 1, Name: "Int8", IsInt: true},
	Int16:       {Kind: Int16, SizeInBytes: 2, Name: "Int16", IsInt: true},
	Int32:       {Kind: Int32, SizeInBytes: 4, Name: "Int32", IsInt: true},
	Int64:       {Kind: Int64, SizeInBytes: 8, Name: "Int64", IsInt: true},
	Float32:     {Kind: Float32, SizeInBytes: 4, Name: "Float32", IsFloat: true},
	Float64:     {Kind: Float64, SizeInBytes: 8, Name: "Float64", IsFloat: true},
	SoftFloat64: {Kind: SoftFloat64, SizeInBytes: 8, Name: "Float64", IsFloat: true},
}

// byName maps every spelling a source program can use (currently all
// built-in type names) to its Kind, built once from Builtins so the table
// can never fall out of sync with it.
var byName map[string]Kind

func init() {
	byName = make(map[string]Kind, len(Builtins))
	for k := Unknown + 1; k < maxKind; k++ {
		if k == SoftFloat64 {
			continue // never spelled directly in source, only reached via inference
		}
		byName[Builtins[k].Name] = k
	}
}

// Lookup resolves a type name token's text to a built-in Kind. ok is false
// for any identifier that isn't a recognized type name; the parser then
// reports it as an unknown type.
func Lookup(name string) (Kind, bool) {
	k, ok := byName[name]
	return k, ok
}

// Of returns the Info describing k. Out-of-range kinds return the Unknown
// Info rather than panicking, since a defensively-unknown type is a valid
// intermediate state during error recovery.
func Of(k Kind) Info {
	if k < 0 || k >= maxKind {
		return Builtins[Unknown]
	}
	return Builtins[k]
}

// String returns the type's display name.
func (k Kind) String() string { return Of(k).Name }

// SizeInBytes returns the type's size.
func (k Kind) SizeInBytes() int { return Of(k).SizeInBytes }

// IsInt reports whether k is one of the signed or unsigned integer types.
func (k Kind) IsInt() bool { return Of(k).IsInt }

// IsUnsigned reports whether k is one of the unsigned integer types.
func (k Kind) IsUnsigned() bool { return Of(k).IsUnsigned }

// IsFloat reports whether k is Float32, Float64 or SoftFloat64.
func (k Kind) IsFloat() bool { return Of(k).IsFloat }

// IsBool reports whether k is Bool.
func (k Kind) IsBool() bool { return Of(k).IsBool }

// rank gives every built-in type a position in a single total order used
// to pick the "wider" of two types for a binary operator's common type:
// bool sorts below every numeric type, and within a family wider types
// sort after narrower ones. Cross-family relationships that sign/kind
// matching never needs beyond which-is-float are left at 0.
var rank = map[Kind]int{
	Bool:        0,
	UInt8:       1,
	Int8:        1,
	UInt16:      2,
	Int16:       2,
	UInt32:      3,
	Int32:       3,
	UInt64:      4,
	Int64:       4,
	Float32:     5,
	SoftFloat64: 6,
	Float64:     6,
}

// Rank returns k's position in the promotion order used to compare two
// types of the same numeric family by width.
func Rank(k Kind) int { return rank[k] }

// SignedEquivalent returns the signed integer type with the same width as
// an unsigned k (e.g. UInt16 -> Int16), and ok=false if k is not an
// unsigned integer type.
func SignedEquivalent(k Kind) (Kind, bool) {
	if !k.IsUnsigned() {
		return Unknown, false
	}
	return k - (UInt8 - Int8), true
}

// UnsignedEquivalent is the inverse of SignedEquivalent.
func UnsignedEquivalent(k Kind) (Kind, bool) {
	if !k.IsInt() || k.IsUnsigned() {
		return Unknown, false
	}
	return k + (UInt8 - Int8), true
}

// MangledSuffix returns the fragment of a type's name used when building a
// mangled function name for overload resolution: the type name,
// lower-cased at the first letter, e.g. "int32" for Int32.
func (k Kind) MangledSuffix() string {
	name := Of(k).Name
	if name == "" {
		return fmt.Sprintf("kind%d", k)
	}
	return string(name[0]+('a'-'A')) + name[1:]
}
