// Package infer implements the type-inference pass: a single post-order
// walk over the parsed tree that resolves identifiers through a scope-chain
// dictionary, deduces and propagates types, resolves function overloads and
// refines generic operator kinds into their typed forms (Add to FAdd, SDiv
// to UDiv). The pass mutates nodes in place; the fix pass that follows
// reconciles any remaining type mismatches with casts.
//
// The scope-chain dictionary is scratch state owned by the pass: its node
// slabs are dropped wholesale when inference returns. Only mangled names,
// which the backend reads, are assembled in the compilation unit's main
// arena.
package infer

import (
	"github.com/sumuslang/summus/lang/arena"
	"github.com/sumuslang/summus/lang/ast"
	"github.com/sumuslang/summus/lang/dict"
	"github.com/sumuslang/summus/lang/msgs"
	"github.com/sumuslang/summus/lang/types"
)

// state carries what every helper of the pass needs.
type state struct {
	idents *dict.Dict
	sink   *msgs.Sink
	a      *arena.Arena

	// funcDecls is the chain (via NextDecl) of global function declarations,
	// split off the global scope's declaration list so their bodies can be
	// processed after all of the main code has installed its variables.
	funcDecls *ast.Node

	// retType is the declared return type of the function whose body is
	// being walked; Unknown while in main code, where each return statement
	// deduces its own type from its expression.
	retType types.Kind

	isInMainCode     bool
	acceptOnlyConsts bool

	// declStack is the chain of constant declarations currently being
	// resolved, innermost last; re-entering a declaration already on it
	// means every entry from that point on is part of a definition cycle.
	declStack []*ast.Node

	// pushed collects the names the current block installed in the
	// dictionary, so block exit pops exactly what block entry and the
	// declaration statements pushed.
	pushed *[]string

	// curLevel is the ScopeLevel of the block being walked; 0 for the
	// global block, whose bindings are never popped.
	curLevel int
}

// Run executes the inference pass over the program rooted at prog, posting
// diagnostics to sink. The scope-chain dictionary is scratch state whose
// slabs the pass gives back as a unit on return; only mangled names are
// built in the unit's arena a, since they outlive the pass.
func Run(prog *ast.Node, sink *msgs.Sink, a *arena.Arena) {
	global := prog.Next
	if global == nil || global.Kind != ast.Block {
		return
	}

	ti := &state{
		idents:       dict.Create(),
		sink:         sink,
		a:            a,
		retType:      types.Unknown,
		isInMainCode: true,
	}

	ti.globalSymbols(global.Scope)

	var pushed []string
	ti.pushed = &pushed
	ti.stmts(global)

	ti.funcBodies()
}

// globalSymbols registers every global declaration, reorders the scope's
// declaration list so variables and constants come before functions,
// mangles function names, resolves constant initializers, and finally
// removes the variables again so that using one before its declaration
// statement is an error in main code while function bodies (processed
// last) can reference them freely.
func (ti *state) globalSymbols(scope *ast.Node) {
	var varHead, funcHead *ast.Node
	varTail, funcTail := &varHead, &funcHead

	d := scope.Decls
	for d != nil {
		next := d.NextDecl
		d.NextDecl = nil
		if ti.addDeclIfNew(d) {
			if fn := d.Left; fn != nil && fn.Kind == ast.Func {
				*funcTail = d
				funcTail = &d.NextDecl
				if fn.Body != nil {
					fn.MangledName = ti.mangledName(fn)
				} else {
					// A body-less function is external; its declared name is
					// used verbatim downstream.
					fn.MangledName = fn.Token.Repr
				}
			} else {
				*varTail = d
				varTail = &d.NextDecl
			}
		}
		d = next
	}
	*varTail = funcHead
	ti.funcDecls = funcHead
	scope.Decls = varHead
	scope.LastDecl = nil
	for d := varHead; d != nil; d = d.NextDecl {
		scope.LastDecl = d
	}

	// Constants may forward-reference each other within the scope, so they
	// all have to be registered above before any initializer is evaluated.
	ti.acceptOnlyConsts = true
	for d := varHead; d != nil; d = d.NextDecl {
		if d.IsConst {
			ti.processDeclExpr(d)
		}
	}
	ti.acceptOnlyConsts = false

	for d := varHead; d != nil; d = d.NextDecl {
		if fn := d.Left; fn != nil && fn.Kind == ast.Func {
			break
		}
		if !d.IsConst {
			ti.idents.Pop(d.Token.Repr)
		}
	}
}

// localSymbols registers and resolves a nested block's constants; its
// variables install themselves when their declaration statement is
// reached, same as at the global level.
func (ti *state) localSymbols(scope *ast.Node) {
	for d := scope.Decls; d != nil; d = d.NextDecl {
		if d.IsConst && ti.addDeclIfNew(d) {
			*ti.pushed = append(*ti.pushed, d.Token.Repr)
		}
	}
	ti.acceptOnlyConsts = true
	for d := scope.Decls; d != nil; d = d.NextDecl {
		if d.IsConst {
			ti.processDeclExpr(d)
		}
	}
	ti.acceptOnlyConsts = false
}

// block walks a nested block: its constants first, then its statements,
// undoing every binding the block installed on the way out so push/pop
// pairs stay balanced even when a declaration was rejected as a
// redefinition.
func (ti *state) block(b *ast.Node) {
	var pushed []string
	prevPushed, prevLevel := ti.pushed, ti.curLevel
	ti.pushed = &pushed
	ti.curLevel = b.Scope.ScopeLevel

	ti.localSymbols(b.Scope)
	ti.stmts(b)

	for i := len(pushed) - 1; i >= 0; i-- {
		ti.idents.Pop(pushed[i])
	}
	ti.pushed, ti.curLevel = prevPushed, prevLevel
}

// stmts walks a block's statement list in source order, unlinking
// statements the walk decides are dead (e.g. assignments to undefined
// names) and flagging code that follows a returning statement.
func (ti *state) stmts(b *ast.Node) {
	field := &b.Stmts
	var last *ast.Node
	reported := false
	for *field != nil {
		stmt := *field
		if last != nil && stmtEndsWithReturn(last) && !reported {
			ti.sink.Post(msgs.UnreachableCode, stmt.Span(), "unreachable code")
			reported = true
		}
		if !ti.stmt(stmt) {
			*field = stmt.Next
			continue
		}
		last = stmt
		field = &stmt.Next
	}
	b.EndsWithReturn = last != nil && stmtEndsWithReturn(last)
}

func stmtEndsWithReturn(stmt *ast.Node) bool {
	switch stmt.Kind {
	case ast.Return:
		return true
	case ast.Block:
		return stmt.EndsWithReturn
	case ast.If:
		return stmt.ElseBody != nil &&
			stmtEndsWithReturn(stmt.Body) && stmtEndsWithReturn(stmt.ElseBody)
	default:
		return false
	}
}

// stmt processes one statement; a false return means the statement should
// be removed from its block's list.
func (ti *state) stmt(stmt *ast.Node) bool {
	switch stmt.Kind {
	case ast.Block:
		ti.block(stmt)
		return true
	case ast.Assignment:
		return ti.assignment(stmt)
	case ast.Return:
		ti.returnStmt(stmt)
		return true
	case ast.If, ast.While:
		ti.expr(stmt.Cond)
		ti.stmt(stmt.Body)
		if stmt.ElseBody != nil {
			ti.stmt(stmt.ElseBody)
		}
		return true
	case ast.Decl:
		return ti.declStmt(stmt)
	default:
		ti.expr(stmt)
		if stmt.Kind != ast.Call {
			ti.sink.Post(msgs.NoEffectStmt, stmt.Span(), "statement has no effect")
		}
		return true
	}
}

// declStmt handles a declaration in statement position. Constants and
// functions were fully handled during symbol registration; a variable is
// resolved here and only now becomes visible, which is what makes a use
// above its declaration an undefined-identifier error.
func (ti *state) declStmt(stmt *ast.Node) bool {
	if fn := stmt.Left; fn != nil && fn.Kind == ast.Func {
		return true // body walked in funcBodies; local funcs were rejected at parse
	}
	if stmt.IsConst {
		return true
	}
	if !stmt.IsProcessed {
		if stmt.Left != nil {
			ti.expr(stmt.Left)
		}
		stmt.IsProcessed = true
	}
	if stmt.Type == types.Unknown && stmt.Left != nil {
		stmt.Type = deduceTypeFrom(stmt.Left)
	}
	if ti.curLevel == 0 {
		// Global variables were vetted by globalSymbols and popped again;
		// reinstall without re-checking.
		ti.idents.Push(stmt.Token.Repr, stmt)
	} else if ti.addDeclIfNew(stmt) {
		*ti.pushed = append(*ti.pushed, stmt.Token.Repr)
	}
	return true
}

// processDeclExpr resolves a declaration's initializer, deducing the
// declared type when the source didn't spell one. Re-entering a
// declaration that is already being resolved means every declaration on
// the stack from there up participates in a definition cycle: each one is
// reported and collapsed to Unknown, and the unwinding outer frames leave
// them alone.
func (ti *state) processDeclExpr(decl *ast.Node) {
	if decl.IsBeingProcessed {
		start := 0
		for i, d := range ti.declStack {
			if d == decl {
				start = i
				break
			}
		}
		for _, d := range ti.declStack[start:] {
			ti.sink.Post(msgs.CircularDefinition, d.Token.Pos,
				"%s is part of a circular definition", d.Token.Repr)
			d.Type = types.Unknown
			d.IsProcessed = true
		}
		return
	}
	if decl.IsProcessed {
		return
	}
	if decl.Left == nil {
		decl.Type = types.Unknown
		decl.IsProcessed = true
		return
	}

	decl.IsBeingProcessed = true
	ti.declStack = append(ti.declStack, decl)
	ti.expr(decl.Left)
	ti.declStack = ti.declStack[:len(ti.declStack)-1]
	decl.IsBeingProcessed = false

	if decl.IsProcessed {
		return // resolved as a cycle member while we were inside its initializer
	}
	if decl.Type == types.Unknown {
		decl.Type = deduceTypeFrom(decl.Left)
	}
	decl.IsProcessed = true
}

// addDeclIfNew installs decl in the dictionary unless its name is already
// bound at the same nesting level (a redefinition) or taken by a function.
// Functions sharing a name with distinct parameter lists are chained onto
// the first registration's overload list instead of being pushed again.
func (ti *state) addDeclIfNew(decl *ast.Node) bool {
	if decl.Left == nil || decl.Left.Kind != ast.Func {
		existing, _ := ti.idents.Get(decl.Token.Repr).(*ast.Node)
		if existing != nil {
			if existing.Left != nil && existing.Left.Kind == ast.Func {
				ti.sink.PostIdentTaken(decl.Token.Pos, decl.Token.Repr, "a function")
				return false
			}
			if existing.Level == decl.Level {
				ti.sink.Post(msgs.Redefinition, decl.Token.Pos, "redefinition of %s", decl.Token.Repr)
				return false
			}
		}
		ti.idents.Push(decl.Token.Repr, decl)
		return true
	}

	newFn := decl.Left
	existing, _ := ti.idents.Get(decl.Token.Repr).(*ast.Node)
	if existing == nil {
		ti.idents.Push(decl.Token.Repr, decl)
		return true
	}
	if existing.Kind == ast.Param || existing.Left == nil || existing.Left.Kind != ast.Func {
		ti.sink.PostIdentTaken(newFn.Token.Pos, newFn.Token.Repr, "a variable")
		return false
	}
	existingFn := existing.Left
	if findMatching(newFn.Params, existingFn, false) != nil {
		ti.sink.Post(msgs.FuncRedefinition, newFn.Token.Pos,
			"function %s with these parameter types is already defined", newFn.Token.Repr)
		return false
	}
	tail := &existingFn.NextOverload
	for *tail != nil {
		tail = &(*tail).NextOverload
	}
	*tail = newFn
	return true
}

// funcBodies walks every global function body after the whole main code
// has been processed, so bodies see every global regardless of declaration
// order. Parameters are pushed around the body like one extra scope.
func (ti *state) funcBodies() {
	ti.isInMainCode = false
	for d := ti.funcDecls; d != nil; d = d.NextDecl {
		fn := d.Left
		if fn.Body == nil {
			continue
		}
		for p := fn.Params; p != nil; p = p.Next {
			ti.idents.Push(p.Token.Repr, p)
		}
		prevRet := ti.retType
		ti.retType = fn.ReturnType
		ti.block(fn.Body)
		ti.retType = prevRet
		for p := fn.Params; p != nil; p = p.Next {
			ti.idents.Pop(p.Token.Repr)
		}
		if fn.ReturnType != types.Void && fn.ReturnType != types.Unknown && !fn.Body.EndsWithReturn {
			ti.sink.Post(msgs.FuncMustReturnValue, fn.Token.Pos,
				"function %s must return a value of type %s", fn.Token.Repr, fn.ReturnType)
		}
	}
	ti.isInMainCode = true
}

// assignment resolves the assignment target and types the statement; a
// false return drops the statement (target unknown, nothing to emit).
func (ti *state) assignment(stmt *ast.Node) bool {
	target := stmt.Left
	decl, _ := ti.idents.Get(target.Token.Repr).(*ast.Node)
	if decl == nil {
		ti.sink.Post(msgs.UndefinedIdentifier, target.Token.Pos,
			"undefined identifier %s", target.Token.Repr)
		if stmt.Right != nil {
			ti.expr(stmt.Right)
		}
		return false
	}
	if decl.Kind == ast.Param {
		target.Type = decl.Type
		target.Level = decl.Level
	} else {
		if decl.Left != nil && decl.Left.Kind == ast.Func {
			ti.sink.Post(msgs.OperandMustBeLVal, stmt.Token.Pos,
				"cannot assign to function %s", target.Token.Repr)
			return false
		}
		if decl.IsConst {
			ti.sink.Post(msgs.CantAssignToConst, stmt.Token.Pos,
				"cannot assign to constant %s", target.Token.Repr)
			target.Kind = ast.Const
			target.IsConst = true
		}
		target.Type = decl.Type
		target.Level = decl.Level
	}
	if stmt.Right == nil {
		return false
	}
	stmt.Type = target.Type
	ti.expr(stmt.Right)
	return true
}

// returnStmt types a return statement against the enclosing function's
// declared return type; in main code (retType Unknown) each return deduces
// its own type from the returned expression.
func (ti *state) returnStmt(stmt *ast.Node) {
	retType := ti.retType
	stmt.Type = retType
	if stmt.Left != nil {
		exprType := ti.expr(stmt.Left)
		switch {
		case exprType == types.Void:
			ti.sink.Post(msgs.InvalidExprUsed, stmt.Left.Span(), "expression has no value")
		case retType == types.Void:
			ti.sink.Post(msgs.NoReturnValueNeeded, stmt.Span(), "no return value needed")
		case retType == types.Unknown:
			stmt.Type = deduceTypeFrom(stmt.Left)
		case exprType != types.Unknown && exprType != retType && !isUpcastPossible(exprType, retType):
			shown := exprType
			if shown == types.SoftFloat64 {
				shown = types.Float32
			}
			ti.sink.PostGotBadReturnType(stmt.Span(), shown.String(), retType.String())
		}
		return
	}
	if retType != types.Void && retType != types.Unknown {
		ti.sink.Post(msgs.FuncMustReturnValue, stmt.Span(),
			"function must return a value of type %s", retType)
	}
}
