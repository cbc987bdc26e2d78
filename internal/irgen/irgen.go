// Package irgen lowers a type-checked AST to LLVM IR via
// github.com/llir/llvm, realizing internal/ir.Value/Block and implementing
// spec §4.6's SSA-per-symbol tracking: no mem2reg pass, each symbol holds an
// ordered (block, value) history, reads walk it backwards for the nearest
// dominating binding, and taking an address forces the symbol into an
// alloca slot thereafter. Grounded on the teacher's `generate` package
// (ComedicChimera/chai bootstrap/generate/*.go), which drives this same
// llir/llvm API (module.NewFunc, block.New*, ir.NewIncoming/block.NewPhi)
// from a generator holding a live "current block" cursor; generalized from
// the teacher's single mutable-value-per-identifier scheme (generate/
// gen_util.go's assignTo/lookup) to the history-walking, slot-on-demand
// scheme spec §4.6 specifies.
package irgen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	vast "viper/internal/ast"
	vir "viper/internal/ir"
	"viper/internal/mangle"
	"viper/internal/report"
	"viper/internal/scope"
	"viper/internal/types"
)

// Lowerer walks a type-checked AST and emits an *ir.Module. One Lowerer
// lowers exactly one compilation (an entry file plus every file its imports
// pulled in), sharing a single LLVM module and type registry across all of
// them, per spec §4.6's "the lowerer walks the AST and calls into an
// external IR builder."
type Lowerer struct {
	reg    *types.Registry
	module *ir.Module

	curFunc  *ir.Func
	curBlock *ir.Block

	// blockParent records each block's immediate dominator in the CFG this
	// lowerer builds (entry-then-if/else-then-merge — there are no loops in
	// the language, so a single-parent chain is always exact, not just an
	// approximation).
	blockParent map[*ir.Block]*ir.Block

	// touchLog records every symbol written (history-bound or
	// slot-stored) during lowering, in order, so an if/if-else merge can
	// recover exactly the symbols touched inside a branch by slicing the
	// log between a mark taken before and after lowering that branch.
	touchLog []*scope.Symbol

	// funcsByName maps an unqualified declared function name to its lowered
	// *ir.Func, so call expressions (which resolve through scope, not
	// through the mangled link name) can find their callee. The function's
	// actual LLVM-visible name is the mangled one (spec §4.7); this map is
	// purely an internal lookup aid.
	funcsByName map[string]*ir.Func
}

// New creates a Lowerer backed by a fresh LLVM module named moduleName.
func New(reg *types.Registry, moduleName string) *Lowerer {
	m := ir.NewModule()
	m.SourceFilename = moduleName
	return &Lowerer{
		reg:         reg,
		module:      m,
		blockParent: make(map[*ir.Block]*ir.Block),
		funcsByName: make(map[string]*ir.Func),
	}
}

// Module returns the LLVM module built so far, for the driver's emit phase
// (spec §4.6's `module.print`/`module.emit(writer)`).
func (lw *Lowerer) Module() *ir.Module { return lw.module }

// LowerFile lowers every function definition in f. Class declarations carry
// no executable code; namespaces recurse; imports were already resolved
// during parsing and contribute nothing further here.
func (lw *Lowerer) LowerFile(f *vast.File) {
	for _, g := range f.Globals {
		lw.lowerGlobal(g)
	}
}

func (lw *Lowerer) lowerGlobal(g vast.Node) {
	switch gl := g.(type) {
	case *vast.FuncDef:
		lw.lowerFuncDef(gl)
	case *vast.Namespace:
		for _, d := range gl.Decls {
			lw.lowerGlobal(d)
		}
	}
}

// -----------------------------------------------------------------------------
// Type conversion.

func (lw *Lowerer) llType(t types.Type) lltypes.Type {
	switch v := t.(type) {
	case *types.IntType:
		return lltypes.NewInt(uint64(v.Kind.Width()))
	case *types.BoolType:
		return lltypes.I1
	case *types.VoidType:
		return lltypes.Void
	case *types.PointerType:
		return lltypes.NewPointer(lw.llType(v.Elem))
	case *types.StructType:
		fields := make([]lltypes.Type, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = lw.llType(f.Type)
		}
		return lltypes.NewStruct(fields...)
	case *types.ErrorType:
		return lltypes.Void
	default:
		report.ICE("irgen: no LLVM type mapping for %s", t.String())
		return lltypes.Void
	}
}

// -----------------------------------------------------------------------------
// Function prologue (spec §4.6: "creates an entry basic block per function,
// binds each argument symbol ... and lowers the body").

func (lw *Lowerer) lowerFuncDef(fd *vast.FuncDef) {
	params := make([]*ir.Param, len(fd.Params))
	for i, p := range fd.Params {
		params[i] = ir.NewParam(p.Name, lw.llType(p.Type))
	}

	argTypes := make([]types.Type, len(fd.Params))
	for i, p := range fd.Params {
		argTypes[i] = p.Type
	}
	sig := lw.reg.Func(fd.RetType, argTypes)
	linkName := fd.Name
	if !fd.Exported {
		// Exported symbols keep a stable, demangled-at-link-time identity;
		// everything else gets the full mangled name (spec §4.7).
		linkName = mangle.Name([]string{fd.Name}, sig)
	}

	fn := lw.module.NewFunc(linkName, lw.llType(fd.RetType), params...)
	lw.funcsByName[fd.Name] = fn

	if fd.Body == nil {
		fn.Linkage = enum.LinkageExternal
		return
	}

	entry := fn.NewBlock("entry")
	lw.curFunc = fn
	lw.curBlock = entry
	lw.blockParent[entry] = nil

	for i, p := range fd.Params {
		lw.bindSymbol(p.Sym, entry, params[i])
	}

	lw.lowerBlock(fd.Body)

	if lw.curBlock.Term == nil {
		if _, isVoid := fd.RetType.(*types.VoidType); isVoid {
			lw.curBlock.NewRet(nil)
		} else {
			lw.curBlock.NewRet(constant.NewInt(lltypes.I32, 0))
		}
	}
}

// -----------------------------------------------------------------------------
// Statements.

func (lw *Lowerer) lowerBlock(blk *vast.Block) {
	for _, stmt := range blk.Stmts {
		lw.lowerStmt(stmt)
	}
}

func (lw *Lowerer) lowerStmt(stmt vast.Node) {
	switch s := stmt.(type) {
	case *vast.VarDecl:
		v := lw.lowerExpr(s.Init)
		lw.bindSymbol(s.Sym, lw.curBlock, v)

	case *vast.ReturnStmt:
		if s.Expr == nil {
			lw.curBlock.NewRet(nil)
			return
		}
		v := lw.lowerExpr(s.Expr)
		lw.curBlock.NewRet(v)

	case *vast.IfStmt:
		lw.lowerIf(s)

	case *vast.Block:
		lw.lowerBlock(s)

	case vast.Expr:
		lw.lowerExpr(s)
	}
}

// lowerIf implements spec §4.6's control-flow-merge phi insertion.
func (lw *Lowerer) lowerIf(s *vast.IfStmt) {
	cond := lw.lowerExpr(s.Cond)
	entry := lw.curBlock

	thenBlock := lw.curFunc.NewBlock("")
	mergeBlock := lw.curFunc.NewBlock("")
	lw.blockParent[thenBlock] = entry
	lw.blockParent[mergeBlock] = entry

	if s.Else == nil {
		entry.NewCondBr(cond, thenBlock, mergeBlock)

		lw.curBlock = thenBlock
		mark := lw.mark()
		lw.lowerStmt(s.Then)
		thenEnd := lw.curBlock
		if thenEnd.Term == nil {
			thenEnd.NewBr(mergeBlock)
		}
		touched := lw.touchedSince(mark)

		lw.curBlock = mergeBlock
		for _, sym := range touched {
			entryVal := lw.latest(sym, entry)
			thenVal := lw.latest(sym, thenEnd)
			if entryVal == thenVal {
				continue
			}
			phi := mergeBlock.NewPhi(
				ir.NewIncoming(thenVal, thenEnd),
				ir.NewIncoming(entryVal, entry),
			)
			lw.bindSymbol(sym, mergeBlock, phi)
		}
		return
	}

	elseBlock := lw.curFunc.NewBlock("")
	lw.blockParent[elseBlock] = entry
	entry.NewCondBr(cond, thenBlock, elseBlock)

	lw.curBlock = thenBlock
	markThen := lw.mark()
	lw.lowerStmt(s.Then)
	thenEnd := lw.curBlock
	if thenEnd.Term == nil {
		thenEnd.NewBr(mergeBlock)
	}
	touchedThen := lw.touchedSince(markThen)

	lw.curBlock = elseBlock
	markElse := lw.mark()
	lw.lowerStmt(s.Else)
	elseEnd := lw.curBlock
	if elseEnd.Term == nil {
		elseEnd.NewBr(mergeBlock)
	}
	touchedElse := lw.touchedSince(markElse)

	touched := dedupeSymbols(append(touchedThen, touchedElse...))

	lw.curBlock = mergeBlock
	for _, sym := range touched {
		thenVal := lw.latest(sym, thenEnd)
		elseVal := lw.latest(sym, elseEnd)
		if thenVal == elseVal {
			continue
		}
		phi := mergeBlock.NewPhi(
			ir.NewIncoming(thenVal, thenEnd),
			ir.NewIncoming(elseVal, elseEnd),
		)
		lw.bindSymbol(sym, mergeBlock, phi)
	}
}

func dedupeSymbols(syms []*scope.Symbol) []*scope.Symbol {
	seen := make(map[*scope.Symbol]bool, len(syms))
	out := make([]*scope.Symbol, 0, len(syms))
	for _, s := range syms {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// Symbol value history (spec §4.6 "SSA per-symbol tracking").

func (lw *Lowerer) mark() int { return len(lw.touchLog) }

func (lw *Lowerer) touchedSince(mark int) []*scope.Symbol {
	return dedupeSymbols(append([]*scope.Symbol(nil), lw.touchLog[mark:]...))
}

// bindSymbol records v as sym's value at bb: through its alloca slot if one
// has been materialized, otherwise appended to its value history.
func (lw *Lowerer) bindSymbol(sym *scope.Symbol, bb *ir.Block, v value.Value) {
	if sym.Slot != nil {
		bb.NewStore(v, unwrapV(sym.Slot))
	} else {
		sym.BindValue(vir.WrapBlock(bb), vir.WrapValue(v))
	}
	lw.touchLog = append(lw.touchLog, sym)
}

// latest returns sym's latest value reachable from bb: a load through its
// slot if materialized, otherwise the nearest dominating history entry.
func (lw *Lowerer) latest(sym *scope.Symbol, bb *ir.Block) value.Value {
	if sym.Slot != nil {
		return bb.NewLoad(lw.llType(sym.Type), unwrapV(sym.Slot))
	}
	v := sym.LatestValue(vir.WrapBlock(bb), lw.dominatesWrapped)
	if v == nil {
		report.ICE("irgen: symbol `%s` read before any binding reaches block", sym.Name)
		return constant.NewInt(lltypes.I32, 0)
	}
	return unwrapV(v)
}

func (lw *Lowerer) dominatesWrapped(def, use vir.Block) bool {
	db := unwrapB(def)
	ub := unwrapB(use)
	for b := ub; b != nil; b = lw.blockParent[b] {
		if b == db {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Expressions.

func (lw *Lowerer) lowerExpr(e vast.Expr) value.Value {
	switch ex := e.(type) {
	case *vast.IntLit:
		return constant.NewInt(lw.llType(ex.Type()).(*lltypes.IntType), int64(ex.Value64))

	case *vast.BoolLit:
		return constant.NewBool(ex.Value)

	case *vast.StringLit:
		def := constant.NewCharArrayFromString(ex.Value + "\x00")
		g := lw.module.NewGlobalDef("", def)
		return constant.NewGetElementPtr(def.Typ, g, constant.NewInt(lltypes.I64, 0), constant.NewInt(lltypes.I64, 0))

	case *vast.VarExpr:
		return lw.latest(ex.Sym, lw.curBlock)

	case *vast.UnaryExpr:
		return lw.lowerUnary(ex)

	case *vast.BinaryExpr:
		return lw.lowerBinary(ex)

	case *vast.CallExpr:
		return lw.lowerCall(ex)

	case *vast.MemberAccess:
		return lw.lowerMemberAccess(ex)

	case *vast.ImplicitCast:
		return lw.lowerCast(ex)

	default:
		report.ICE("irgen: unhandled expression node %T", e)
		return constant.NewInt(lltypes.I32, 0)
	}
}

// lowerUnary implements unary `-`, `*`, and `&` (spec §4.3, §4.6's
// "address-of materialization").
func (lw *Lowerer) lowerUnary(ex *vast.UnaryExpr) value.Value {
	switch ex.Op {
	case vast.UnaryNegate:
		v := lw.lowerExpr(ex.Operand)
		zero := constant.NewInt(v.Type().(*lltypes.IntType), 0)
		return lw.curBlock.NewSub(zero, v)

	case vast.UnaryDeref:
		ptr := lw.lowerExpr(ex.Operand)
		return lw.curBlock.NewLoad(lw.llType(ex.Type()), ptr)

	case vast.UnaryAddrOf:
		return lw.materializeAddress(ex.Operand)
	}

	report.ICE("irgen: unhandled unary operator")
	return nil
}

// materializeAddress implements spec §4.6's address-of materialization: the
// addressable operand's symbol is forced into an alloca slot (if it isn't
// one already), its current value is stored into it, and the slot's
// address is returned.
func (lw *Lowerer) materializeAddress(operand vast.Expr) value.Value {
	switch op := operand.(type) {
	case *vast.VarExpr:
		sym := op.Sym
		if sym.Slot == nil {
			cur := lw.latest(sym, lw.curBlock)
			slot := lw.curBlock.NewAlloca(lw.llType(sym.Type))
			lw.curBlock.NewStore(cur, slot)
			sym.Slot = vir.WrapValue(slot)
		}
		return unwrapV(sym.Slot)

	case *vast.UnaryExpr:
		if op.Op == vast.UnaryDeref {
			return lw.lowerExpr(op.Operand)
		}

	case *vast.MemberAccess:
		return lw.lowerMemberAddress(op)
	}

	report.ICE("irgen: operand of `&` is not addressable")
	return nil
}

func (lw *Lowerer) lowerBinary(ex *vast.BinaryExpr) value.Value {
	if ex.Op == vast.BinAssign {
		v := lw.lowerExpr(ex.Rhs)
		lw.assign(ex.Lhs, v)
		return v
	}

	l := lw.lowerExpr(ex.Lhs)
	r := lw.lowerExpr(ex.Rhs)

	signed := true
	if it, ok := ex.Lhs.Type().(*types.IntType); ok {
		signed = it.Kind.Signed()
	}

	switch ex.Op {
	case vast.BinAdd:
		return lw.curBlock.NewAdd(l, r)
	case vast.BinSub:
		return lw.curBlock.NewSub(l, r)
	case vast.BinMul:
		return lw.curBlock.NewMul(l, r)
	case vast.BinDiv:
		if signed {
			return lw.curBlock.NewSDiv(l, r)
		}
		return lw.curBlock.NewUDiv(l, r)
	case vast.BinLt:
		return lw.curBlock.NewICmp(cmpPred(enum.IPredSLT, enum.IPredULT, signed), l, r)
	case vast.BinGt:
		return lw.curBlock.NewICmp(cmpPred(enum.IPredSGT, enum.IPredUGT, signed), l, r)
	case vast.BinLe:
		return lw.curBlock.NewICmp(cmpPred(enum.IPredSLE, enum.IPredULE, signed), l, r)
	case vast.BinGe:
		return lw.curBlock.NewICmp(cmpPred(enum.IPredSGE, enum.IPredUGE, signed), l, r)
	case vast.BinEq:
		return lw.curBlock.NewICmp(enum.IPredEQ, l, r)
	case vast.BinNeq:
		return lw.curBlock.NewICmp(enum.IPredNE, l, r)
	}

	report.ICE("irgen: unhandled binary operator")
	return nil
}

func cmpPred(signedPred, unsignedPred enum.IPred, signed bool) enum.IPred {
	if signed {
		return signedPred
	}
	return unsignedPred
}

// assign implements the three lvalue forms spec §4.3 permits on the left of
// `=`: a bare variable, a dereference, or a member access.
func (lw *Lowerer) assign(lhs vast.Expr, v value.Value) {
	switch l := lhs.(type) {
	case *vast.VarExpr:
		lw.bindSymbol(l.Sym, lw.curBlock, v)

	case *vast.UnaryExpr:
		if l.Op == vast.UnaryDeref {
			ptr := lw.lowerExpr(l.Operand)
			lw.curBlock.NewStore(v, ptr)
			return
		}
		report.ICE("irgen: non-lvalue unary expression on assignment left side")

	case *vast.MemberAccess:
		addr := lw.lowerMemberAddress(l)
		lw.curBlock.NewStore(v, addr)

	default:
		report.ICE("irgen: non-lvalue expression on assignment left side")
	}
}

func (lw *Lowerer) lowerCall(ex *vast.CallExpr) value.Value {
	callee, ok := ex.Callee.(*vast.VarExpr)
	if !ok {
		report.ICE("irgen: indirect calls through a non-variable callee are not supported")
		return nil
	}

	fn := lw.lookupFunc(callee.Sym.Name)
	args := make([]value.Value, len(ex.Args))
	for i, a := range ex.Args {
		args[i] = lw.lowerExpr(a)
	}

	return lw.curBlock.NewCall(fn, args...)
}

func (lw *Lowerer) lookupFunc(name string) *ir.Func {
	if fn, ok := lw.funcsByName[name]; ok {
		return fn
	}
	report.ICE("irgen: no lowered function named `%s`", name)
	return nil
}

func (lw *Lowerer) lowerMemberAccess(ex *vast.MemberAccess) value.Value {
	addr := lw.lowerMemberAddress(ex)
	return lw.curBlock.NewLoad(lw.llType(ex.Type()), addr)
}

// lowerMemberAddress computes the address of a struct field for both `.`
// (address of a struct value materialized via `&`) and `->` (pointer
// already holds an address) access.
func (lw *Lowerer) lowerMemberAddress(ex *vast.MemberAccess) value.Value {
	var base value.Value
	if ex.Kind == vast.MemberArrow {
		base = lw.lowerExpr(ex.Operand)
	} else {
		base = lw.materializeAddress(ex.Operand)
	}

	return lw.curBlock.NewGetElementPtr(
		baseElemType(base),
		base,
		constant.NewInt(lltypes.I32, 0),
		constant.NewInt(lltypes.I32, int64(ex.FieldIndex)),
	)
}

func baseElemType(base value.Value) lltypes.Type {
	return base.Type().(*lltypes.PointerType).ElemType
}

func (lw *Lowerer) lowerCast(ex *vast.ImplicitCast) value.Value {
	v := lw.lowerExpr(ex.Operand)
	dest := lw.llType(ex.Type())

	srcInt, srcIsInt := ex.Operand.Type().(*types.IntType)
	if _, destIsBool := ex.Type().(*types.BoolType); destIsBool && srcIsInt {
		zero := constant.NewInt(v.Type().(*lltypes.IntType), 0)
		return lw.curBlock.NewICmp(enum.IPredNE, v, zero)
	}

	if _, srcIsBool := ex.Operand.Type().(*types.BoolType); srcIsBool {
		return lw.curBlock.NewZExt(v, dest)
	}

	if srcIsInt {
		destInt := ex.Type().(*types.IntType)
		if destInt.Kind.Width() > srcInt.Kind.Width() {
			if srcInt.Kind.Signed() {
				return lw.curBlock.NewSExt(v, dest)
			}
			return lw.curBlock.NewZExt(v, dest)
		}
		if destInt.Kind.Width() < srcInt.Kind.Width() {
			return lw.curBlock.NewTrunc(v, dest)
		}
		return v
	}

	return v
}

func unwrapV(v vir.Value) value.Value { return vir.Unwrap(v).(value.Value) }
func unwrapB(b vir.Block) *ir.Block   { return vir.UnwrapBlock(b).(*ir.Block) }
