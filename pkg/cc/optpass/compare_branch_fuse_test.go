package optpass

import (
	"testing"

	"github.com/kefir-go/kefirgo/pkg/cc/irtest"
	"github.com/kefir-go/kefirgo/pkg/cc/optir"
)

// buildMaxFunction constructs: fn(a, b) { if (a > b) return a; else return b; }
// where a and b are bound by irtest's parameter convention (an immediate
// instruction with ImmKind == ImmNone).
func buildMaxFunction(wrapNots int) *optir.Function {
	fn := optir.NewFunction("max")
	entry := fn.NewBlock()
	a, _ := fn.AddInstruction(entry, optir.OpImmediate, optir.Payload{ImmKind: optir.ImmNone})
	b, _ := fn.AddInstruction(entry, optir.OpImmediate, optir.Payload{ImmKind: optir.ImmNone})
	cmp, _ := fn.AddInstruction(entry, optir.OpIntGreater, optir.Payload{Ref1: a.ID, Ref2: b.ID})

	cond := cmp.ID
	for i := 0; i < wrapNots; i++ {
		not, _ := fn.AddInstruction(entry, optir.OpBoolNot, optir.Payload{Ref1: cond})
		cond = not.ID
	}

	takeA := fn.NewBlock()
	takeB := fn.NewBlock()
	fn.FinalizeBranch(entry, cond, takeA.ID, takeB.ID)
	fn.FinalizeReturn(takeA, a.ID)
	fn.FinalizeReturn(takeB, b.ID)
	return fn
}

func TestCompareBranchFuseRewritesTerminator(t *testing.T) {
	fn := buildMaxFunction(0)
	pass := CompareBranchFuse{}
	if err := pass.Apply(nil, fn); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	term := fn.Instruction(fn.Block(0).Control)
	if term.Opcode != optir.OpCompareBranch {
		t.Fatalf("terminator opcode = %s, want compare_branch", term.Opcode.Name())
	}
	if term.Payload.CompareOp != optir.OpIntGreater {
		t.Fatalf("fused predicate = %s, want int_greater", term.Payload.CompareOp.Name())
	}
}

func TestCompareBranchFusePreservesSemantics(t *testing.T) {
	vectors := [][2]int64{{3, 5}, {5, 3}, {4, 4}, {-1, 1}, {0, 0}}
	for wrapNots := 0; wrapNots <= 2; wrapNots++ {
		before := buildMaxFunction(wrapNots)
		after := buildMaxFunction(wrapNots)
		pass := CompareBranchFuse{}
		if err := pass.Apply(nil, after); err != nil {
			t.Fatalf("wrapNots=%d: Apply: %v", wrapNots, err)
		}
		for _, v := range vectors {
			wantVal, wantErr := irtest.Run(before, v[:])
			gotVal, gotErr := irtest.Run(after, v[:])
			if (wantErr == nil) != (gotErr == nil) {
				t.Fatalf("wrapNots=%d v=%v: error mismatch before=%v after=%v", wrapNots, v, wantErr, gotErr)
			}
			if wantVal != gotVal {
				t.Errorf("wrapNots=%d v=%v: before=%d after=%d, pass changed semantics", wrapNots, v, wantVal, gotVal)
			}
		}
	}
}
