package optpass

import (
	"github.com/kefir-go/kefirgo/pkg/cc/irmodule"
	"github.com/kefir-go/kefirgo/pkg/cc/optir"
)

// ConstantFold rewrites an arithmetic instruction whose operands are both
// `immediate` instructions into a single immediate carrying the computed
// result, then forwards every use of the old instruction to the new one.
type ConstantFold struct{}

func (ConstantFold) Name() string { return "constant-fold" }

func (ConstantFold) Apply(mod *irmodule.Module, fn *optir.Function) error {
	for _, b := range fn.Blocks() {
		for _, ref := range b.Code {
			instr := fn.Instruction(ref)
			if instr == nil || instr.Forwarded != 0 {
				continue
			}
			folded, ok := foldBinary(fn, instr)
			if !ok {
				continue
			}
			newInstr, err := fn.AddInstruction(b, optir.OpImmediate, optir.Payload{ImmKind: optir.ImmInt64, ImmInt: folded})
			if err != nil {
				return err
			}
			fn.ReplaceReferences(instr.ID, newInstr.ID)
			fn.Forget(instr.ID)
		}
	}
	return nil
}

func immediateValue(fn *optir.Function, ref optir.InstrRef) (int64, bool) {
	instr := fn.Instruction(ref)
	if instr == nil || instr.Opcode != optir.OpImmediate || instr.Payload.ImmKind != optir.ImmInt64 {
		return 0, false
	}
	return instr.Payload.ImmInt, true
}

func foldBinary(fn *optir.Function, instr *optir.Instruction) (int64, bool) {
	lhs, ok1 := immediateValue(fn, instr.Payload.Ref1)
	rhs, ok2 := immediateValue(fn, instr.Payload.Ref2)
	if !ok1 || !ok2 {
		return 0, false
	}
	switch instr.Opcode {
	case optir.OpIntAdd:
		return lhs + rhs, true
	case optir.OpIntSub:
		return lhs - rhs, true
	case optir.OpIntMul:
		return lhs * rhs, true
	case optir.OpIntAnd:
		return lhs & rhs, true
	case optir.OpIntOr:
		return lhs | rhs, true
	case optir.OpIntXor:
		return lhs ^ rhs, true
	default:
		return 0, false
	}
}
