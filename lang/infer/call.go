package infer

import (
	"strings"
	"unsafe"

	"github.com/sumuslang/summus/lang/arena"
	"github.com/sumuslang/summus/lang/ast"
	"github.com/sumuslang/summus/lang/types"
)

// isUpcastPossible reports whether a value of type src can be implicitly
// widened to dst without changing its meaning: to a wider type of the same
// integer sign class or float family, from any integer to a float, from an
// unsigned integer to a strictly wider signed one, or from a soft float
// literal to either float width.
func isUpcastPossible(src, dst types.Kind) bool {
	if src == types.Unknown || dst == types.Unknown || src == types.Void || dst == types.Void {
		return false
	}
	si, di := types.Of(src), types.Of(dst)
	bothInts := si.IsInt && di.IsInt && si.IsUnsigned == di.IsUnsigned
	bothFloats := si.IsFloat && di.IsFloat
	floatAndSoft := src == types.SoftFloat64 && di.IsFloat
	sameKindDstBigger := floatAndSoft || ((bothInts || bothFloats) && dst > src)
	intToFloat := si.IsInt && di.IsFloat
	unsignedToWiderSigned := si.IsUnsigned && di.IsInt && !di.IsUnsigned &&
		di.SizeInBytes > si.SizeInBytes
	return sameKindDstBigger || intToFloat || unsignedToWiderSigned
}

// findMatching walks a function's overload chain looking for the one whose
// parameters match the given argument chain (arguments via Next; works the
// same when args is another function's parameter list, which is how
// redefinition checking reuses it). An exact match on every position wins
// immediately; with soft set, a candidate reachable through upcasts alone
// is remembered and returned as a fallback, the last such candidate
// winning when several qualify.
func findMatching(args, overloads *ast.Node, soft bool) *ast.Node {
	var softFn *ast.Node
	for cur := overloads; cur != nil; cur = cur.NextOverload {
		arg, param := args, cur.Params
		var curSoft *ast.Node
		compatible := true
		for param != nil && arg != nil {
			if param.Type != arg.Type {
				if isUpcastPossible(arg.Type, param.Type) {
					curSoft = cur
				} else {
					compatible = false
					break
				}
			}
			param, arg = param.Next, arg.Next
		}
		if !compatible || param != nil || arg != nil {
			continue // type clash or arity mismatch
		}
		if curSoft == nil {
			return cur // exact
		}
		softFn = curSoft
	}
	if !soft {
		return nil
	}
	return softFn
}

// resolveCall binds a call to the overload its arguments select, copying
// the winner's parameter list, return type and mangled name onto the call
// node; with no viable overload the call collapses to Unknown and a
// diagnostic lists the available signatures.
func (ti *state) resolveCall(call, overloads *ast.Node) {
	found := findMatching(call.Args, overloads, true)
	if found != nil {
		call.Type = found.ReturnType
		call.ReturnType = found.ReturnType
		call.Params = found.Params
		call.MangledName = found.MangledName
		return
	}
	call.Type = types.Unknown
	call.ReturnType = types.Unknown
	ti.sink.PostGotBadArgs(call.Token.Pos, callSignature(call), overloadSignatures(overloads))
}

// callSignature renders a call the way it was made, e.g.
// "f(UInt16,Float64)", for use in no-matching-overload diagnostics.
func callSignature(call *ast.Node) string {
	var b strings.Builder
	b.WriteString(call.Token.Repr)
	b.WriteByte('(')
	for arg := call.Args; arg != nil; arg = arg.Next {
		if arg != call.Args {
			b.WriteByte(',')
		}
		b.WriteString(arg.Type.String())
	}
	b.WriteByte(')')
	return b.String()
}

// overloadSignatures renders every overload's declared signature, one per
// line, for the "expected one of" half of the diagnostic.
func overloadSignatures(overloads *ast.Node) string {
	var b strings.Builder
	for fn := overloads; fn != nil; fn = fn.NextOverload {
		if fn != overloads {
			b.WriteString("\n ")
		}
		b.WriteString(fn.Token.Repr)
		b.WriteByte('(')
		for p := fn.Params; p != nil; p = p.Next {
			if p != fn.Params {
				b.WriteByte(',')
			}
			b.WriteString(p.Type.String())
		}
		b.WriteByte(')')
	}
	return b.String()
}

// mangledName builds a function's overload-unique name, its declared name
// with every parameter type appended ("max_int32_int32"). The string is
// assembled directly in the compilation unit's arena via the scratch
// allocation protocol since its final length is only known once built,
// and the returned string views those arena bytes rather than copying
// them out; they are never rewritten.
func (ti *state) mangledName(fn *ast.Node) string {
	need := len(fn.Token.Repr)
	for p := fn.Params; p != nil; p = p.Next {
		need += 1 + len(p.Type.MangledSuffix())
	}
	buf := ti.a.StartAlloc()
	if need > len(buf) {
		panic(&arena.Error{Op: "alloc", Info: ti.a.Name() + ": no room for mangled name (" + ti.a.Info() + ")"})
	}
	n := copy(buf, fn.Token.Repr)
	for p := fn.Params; p != nil; p = p.Next {
		n += copy(buf[n:], "_")
		n += copy(buf[n:], p.Type.MangledSuffix())
	}
	committed := ti.a.EndAlloc(n)
	return unsafe.String(&committed[0], len(committed))
}
