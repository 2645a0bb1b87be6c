package optpass

import (
	"github.com/kefir-go/kefirgo/pkg/cc/irmodule"
	"github.com/kefir-go/kefirgo/pkg/cc/optir"
)

// CompareBranchFuse rewrites branch(cmp, true_target, false_target)
// terminators, where cmp is a compare instruction (in any block), into a
// single compare_branch instruction carrying the predicate and its two
// operands directly. The compare instruction itself stays in place.
// Ported in structure from kefir's cmp_branch_fuse optimizer pass: it also
// unwraps up to two levels of bool_not wrapping the condition, inverting
// the predicate once per unwrap; the branch targets keep their order.
type CompareBranchFuse struct{}

func (CompareBranchFuse) Name() string { return "compare-branch-fuse" }

// invertedPredicate maps each compare opcode to the opcode testing its
// logical negation, the same table kefir's pass consults when peeling a
// bool_not off the branch condition.
var invertedPredicate = map[optir.Opcode]optir.Opcode{
	optir.OpIntEquals:          optir.OpIntNotEquals,
	optir.OpIntNotEquals:       optir.OpIntEquals,
	optir.OpIntGreater:         optir.OpIntLesserOrEquals,
	optir.OpIntLesserOrEquals:  optir.OpIntGreater,
	optir.OpIntGreaterOrEquals: optir.OpIntLesser,
	optir.OpIntLesser:          optir.OpIntGreaterOrEquals,
	optir.OpIntAbove:           optir.OpIntBelowOrEquals,
	optir.OpIntBelowOrEquals:   optir.OpIntAbove,
	optir.OpIntAboveOrEquals:   optir.OpIntBelow,
	optir.OpIntBelow:           optir.OpIntAboveOrEquals,
}

func isCompare(op optir.Opcode) bool {
	_, ok := invertedPredicate[op]
	return ok
}

const maxBoolNotUnwrap = 2

func (CompareBranchFuse) Apply(mod *irmodule.Module, fn *optir.Function) error {
	for _, b := range fn.Blocks() {
		if !b.IsFinalized() {
			continue
		}
		term := fn.Instruction(b.Control)
		if term == nil || term.Opcode != optir.OpBranch {
			continue
		}
		cond := term.Payload.Ref1
		trueTarget, falseTarget := term.Payload.TrueTarget, term.Payload.FalseTarget

		condInstr := fn.Instruction(cond)
		inverted := false
		for depth := 0; depth < maxBoolNotUnwrap && condInstr != nil && condInstr.Opcode == optir.OpBoolNot; depth++ {
			cond = condInstr.Payload.Ref1
			condInstr = fn.Instruction(cond)
			inverted = !inverted
		}
		if condInstr == nil || !isCompare(condInstr.Opcode) {
			continue
		}
		predicate := condInstr.Opcode
		if inverted {
			predicate = invertedPredicate[predicate]
		}

		if err := fn.DropControl(b); err != nil {
			return err
		}
		if _, err := fn.FinalizeCompareBranch(b, predicate, condInstr.Payload.Ref1, condInstr.Payload.Ref2, trueTarget, falseTarget); err != nil {
			return err
		}
	}
	return nil
}
