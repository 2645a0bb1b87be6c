package optpass

import (
	"testing"

	"github.com/kefir-go/kefirgo/pkg/cc/optir"
)

func imm(fn *optir.Function, b *optir.Block, v int64) optir.InstrRef {
	i, _ := fn.AddInstruction(b, optir.OpImmediate, optir.Payload{ImmKind: optir.ImmInt64, ImmInt: v})
	return i.ID
}

func TestConstantFoldReplacesBinaryOpOnTwoImmediates(t *testing.T) {
	fn := optir.NewFunction("f")
	entry := fn.NewBlock()
	two := imm(fn, entry, 2)
	three := imm(fn, entry, 3)
	add, _ := fn.AddInstruction(entry, optir.OpIntAdd, optir.Payload{Ref1: two, Ref2: three})
	fn.FinalizeReturn(entry, add.ID)

	pass := ConstantFold{}
	if err := pass.Apply(nil, fn); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	term := fn.Instruction(fn.Block(0).Control)
	result := fn.Instruction(term.Payload.Ref1)
	if result.Opcode != optir.OpImmediate {
		t.Fatalf("return value opcode = %s, want immediate", result.Opcode.Name())
	}
	if result.Payload.ImmInt != 5 {
		t.Fatalf("folded value = %d, want 5", result.Payload.ImmInt)
	}
}

func TestConstantFoldLeavesNonImmediateOperandsAlone(t *testing.T) {
	fn := optir.NewFunction("f")
	entry := fn.NewBlock()
	param, _ := fn.AddInstruction(entry, optir.OpImmediate, optir.Payload{ImmKind: optir.ImmNone})
	two := imm(fn, entry, 2)
	add, _ := fn.AddInstruction(entry, optir.OpIntAdd, optir.Payload{Ref1: param.ID, Ref2: two})
	fn.FinalizeReturn(entry, add.ID)

	pass := ConstantFold{}
	if err := pass.Apply(nil, fn); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	term := fn.Instruction(fn.Block(0).Control)
	if term.Payload.Ref1 != add.ID {
		t.Fatalf("return operand changed even though add has a non-immediate operand")
	}
	if add.Forwarded != 0 {
		t.Fatalf("add instruction should not be forwarded")
	}
}
