// Package fixtures holds small, hand-built IR functions standing in for
// what an AST-to-IR front end would otherwise produce (out of scope for
// this module). Names are drawn from the end-to-end scenarios the
// reference compiler ships as regression tests, reproduced here as
// directly-constructed IR rather than parsed from C source.
package fixtures

import (
	"sort"

	"github.com/kefir-go/kefirgo/pkg/cc/irmodule"
	"github.com/kefir-go/kefirgo/pkg/cc/optir"
	"github.com/kefir-go/kefirgo/pkg/cc/types"
)

// Builder constructs one function, declares it on mod, and returns both the
// declaration and the attached body.
type Builder func(mod *irmodule.Module) (*irmodule.FuncDecl, *optir.Function)

// ByName indexes every built-in fixture by its scenario name.
var ByName = map[string]Builder{
	"constant_arith1": constantArith1,
	"copy1":           copy1,
	"branch_max":      branchMax,
}

// Names returns every fixture name, sorted.
func Names() []string {
	names := make([]string, 0, len(ByName))
	for n := range ByName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func declareInt(mod *irmodule.Module, name string, params int) (*irmodule.FuncDecl, *optir.Function) {
	declParams := make([]*types.Type, params)
	for i := range declParams {
		declParams[i] = types.New(types.Entry{Code: types.Int64})
	}
	id := mod.DeclareFunction(irmodule.FuncDecl{
		Name:   name,
		Params: declParams,
		Return: types.New(types.Entry{Code: types.Int64}),
		Ident:  irmodule.IdentGlobal,
	})
	decl, _ := mod.Declaration(id)
	fn := optir.NewFunction(name)
	mod.AttachBody(id, fn)
	return decl, fn
}

// constantArith1 returns (2 + 3) * 4, matching the literal scenario the
// reference test suite's constant_arith1 fixture checks.
func constantArith1(mod *irmodule.Module) (*irmodule.FuncDecl, *optir.Function) {
	decl, fn := declareInt(mod, "constant_arith1", 0)
	b := fn.NewBlock()
	two, _ := fn.AddInstruction(b, optir.OpImmediate, optir.Payload{ImmKind: optir.ImmInt64, ImmInt: 2})
	three, _ := fn.AddInstruction(b, optir.OpImmediate, optir.Payload{ImmKind: optir.ImmInt64, ImmInt: 3})
	sum, _ := fn.AddInstruction(b, optir.OpIntAdd, optir.Payload{Ref1: two.ID, Ref2: three.ID})
	four, _ := fn.AddInstruction(b, optir.OpImmediate, optir.Payload{ImmKind: optir.ImmInt64, ImmInt: 4})
	prod, _ := fn.AddInstruction(b, optir.OpIntMul, optir.Payload{Ref1: sum.ID, Ref2: four.ID})
	fn.FinalizeReturn(b, prod.ID)
	return decl, fn
}

// copy1 loads through a pointer parameter and stores it straight back,
// then returns the loaded value — the compiler core's equivalent of the
// reference suite's copy1 scenario.
func copy1(mod *irmodule.Module) (*irmodule.FuncDecl, *optir.Function) {
	decl, fn := declareInt(mod, "copy1", 1)
	b := fn.NewBlock()
	ptr, _ := fn.AddInstruction(b, optir.OpImmediate, optir.Payload{ImmKind: optir.ImmNone})
	loaded, _ := fn.AddInstruction(b, optir.OpLoadMem, optir.Payload{Ref1: ptr.ID})
	fn.AddInstruction(b, optir.OpStoreMem, optir.Payload{Ref1: ptr.ID, Ref2: loaded.ID})
	fn.FinalizeReturn(b, loaded.ID)
	return decl, fn
}

// branchMax computes max(a, b) via an explicit branch over a int_greater
// compare — built to exercise the compare-branch-fuse pass end to end.
func branchMax(mod *irmodule.Module) (*irmodule.FuncDecl, *optir.Function) {
	decl, fn := declareInt(mod, "branch_max", 2)
	entry := fn.NewBlock()
	a, _ := fn.AddInstruction(entry, optir.OpImmediate, optir.Payload{ImmKind: optir.ImmNone})
	bParam, _ := fn.AddInstruction(entry, optir.OpImmediate, optir.Payload{ImmKind: optir.ImmNone})
	cmp, _ := fn.AddInstruction(entry, optir.OpIntGreater, optir.Payload{Ref1: a.ID, Ref2: bParam.ID})

	takeA := fn.NewBlock()
	takeB := fn.NewBlock()
	fn.FinalizeBranch(entry, cmp.ID, takeA.ID, takeB.ID)
	fn.FinalizeReturn(takeA, a.ID)
	fn.FinalizeReturn(takeB, bParam.ID)
	return decl, fn
}
