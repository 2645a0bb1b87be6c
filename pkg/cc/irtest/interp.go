// Package irtest is a small tree-walking interpreter over the integer,
// compare, and control-flow subset of the optimizer IR, used the way the
// teacher's pkg/search verifier exhaustively checks candidate instruction
// sequences against a reference: here it runs a function before and after
// an optimization pass over a table of input vectors and checks the
// returned value is unchanged, proving the pass preserved semantics
// without needing an external assembler.
package irtest

import (
	"fmt"

	"github.com/kefir-go/kefirgo/pkg/cc/optir"
)

// Run interprets fn with the given parameter values (bound to the
// immediate-producing instructions listed in params, in order) and returns
// the value passed to its first executed return instruction.
func Run(fn *optir.Function, params []int64) (int64, error) {
	values := make(map[optir.InstrRef]int64)
	block := fn.Block(0)
	var prevBlock *optir.Block

	paramIdx := 0
	for steps := 0; steps < 1_000_000; steps++ {
		for _, ref := range block.Code {
			instr := fn.Instruction(ref)
			if instr == nil || instr.Forwarded != 0 {
				continue
			}
			v, isParam, err := evalParamOr(instr, params, &paramIdx)
			if err != nil {
				return 0, err
			}
			if isParam {
				values[instr.ID] = v
				continue
			}
			if instr.Opcode == optir.OpPhi {
				if prevBlock == nil {
					return 0, fmt.Errorf("phi %d evaluated with no predecessor block", instr.ID)
				}
				src := fn.PhiSources(instr.ID)[prevBlock.ID]
				values[instr.ID] = values[resolve(fn, src)]
				continue
			}
			val, err := eval(fn, instr, values)
			if err != nil {
				return 0, err
			}
			values[instr.ID] = val
		}

		term := fn.Instruction(block.Control)
		if term == nil {
			return 0, fmt.Errorf("block %d has no terminator", block.ID)
		}
		switch term.Opcode {
		case optir.OpReturn:
			if term.Payload.Ref1 == 0 {
				return 0, nil
			}
			return values[resolve(fn, term.Payload.Ref1)], nil
		case optir.OpJump:
			prevBlock = block
			block = fn.Block(term.Payload.TrueTarget)
		case optir.OpBranch:
			cond := values[resolve(fn, term.Payload.Ref1)]
			prevBlock = block
			if cond != 0 {
				block = fn.Block(term.Payload.TrueTarget)
			} else {
				block = fn.Block(term.Payload.FalseTarget)
			}
		case optir.OpCompareBranch:
			lhs := values[resolve(fn, term.Payload.Ref1)]
			rhs := values[resolve(fn, term.Payload.Ref2)]
			taken, err := evalCompare(term.Payload.CompareOp, lhs, rhs)
			if err != nil {
				return 0, err
			}
			prevBlock = block
			if taken {
				block = fn.Block(term.Payload.TrueTarget)
			} else {
				block = fn.Block(term.Payload.FalseTarget)
			}
		default:
			return 0, fmt.Errorf("unsupported terminator %s", term.Opcode.Name())
		}
	}
	return 0, fmt.Errorf("exceeded step limit (likely infinite loop)")
}

// resolve follows Forwarded chains to the live instruction a ref now
// refers to.
func resolve(fn *optir.Function, ref optir.InstrRef) optir.InstrRef {
	for {
		instr := fn.Instruction(ref)
		if instr == nil || instr.Forwarded == 0 || instr.Forwarded == ref {
			return ref
		}
		ref = instr.Forwarded
	}
}

// evalParamOr reports whether instr is a parameter placeholder — an
// immediate instruction whose ImmKind is ImmNone, by this harness's
// convention — consuming the next entry of params if so.
func evalParamOr(instr *optir.Instruction, params []int64, idx *int) (int64, bool, error) {
	if instr.Opcode != optir.OpImmediate || instr.Payload.ImmKind != optir.ImmNone {
		return 0, false, nil
	}
	if *idx >= len(params) {
		return 0, false, fmt.Errorf("function references more parameters than were supplied")
	}
	v := params[*idx]
	*idx++
	return v, true, nil
}

func eval(fn *optir.Function, instr *optir.Instruction, values map[optir.InstrRef]int64) (int64, error) {
	ref := func(r optir.InstrRef) int64 { return values[resolve(fn, r)] }
	p := instr.Payload
	switch instr.Opcode {
	case optir.OpImmediate:
		return p.ImmInt, nil
	case optir.OpIntAdd:
		return ref(p.Ref1) + ref(p.Ref2), nil
	case optir.OpIntSub:
		return ref(p.Ref1) - ref(p.Ref2), nil
	case optir.OpIntMul:
		return ref(p.Ref1) * ref(p.Ref2), nil
	case optir.OpIntAnd:
		return ref(p.Ref1) & ref(p.Ref2), nil
	case optir.OpIntOr:
		return ref(p.Ref1) | ref(p.Ref2), nil
	case optir.OpIntXor:
		return ref(p.Ref1) ^ ref(p.Ref2), nil
	case optir.OpIntNeg:
		return -ref(p.Ref1), nil
	case optir.OpIntNot:
		return ^ref(p.Ref1), nil
	case optir.OpBoolNot:
		if ref(p.Ref1) == 0 {
			return 1, nil
		}
		return 0, nil
	case optir.OpIntEquals, optir.OpIntNotEquals, optir.OpIntGreater, optir.OpIntGreaterOrEquals,
		optir.OpIntLesser, optir.OpIntLesserOrEquals, optir.OpIntAbove, optir.OpIntAboveOrEquals,
		optir.OpIntBelow, optir.OpIntBelowOrEquals:
		taken, err := evalCompare(instr.Opcode, ref(p.Ref1), ref(p.Ref2))
		if err != nil {
			return 0, err
		}
		if taken {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("irtest: unsupported opcode %s", instr.Opcode.Name())
	}
}

func evalCompare(op optir.Opcode, lhs, rhs int64) (bool, error) {
	switch op {
	case optir.OpIntEquals:
		return lhs == rhs, nil
	case optir.OpIntNotEquals:
		return lhs != rhs, nil
	case optir.OpIntGreater:
		return lhs > rhs, nil
	case optir.OpIntGreaterOrEquals:
		return lhs >= rhs, nil
	case optir.OpIntLesser:
		return lhs < rhs, nil
	case optir.OpIntLesserOrEquals:
		return lhs <= rhs, nil
	case optir.OpIntAbove:
		return uint64(lhs) > uint64(rhs), nil
	case optir.OpIntAboveOrEquals:
		return uint64(lhs) >= uint64(rhs), nil
	case optir.OpIntBelow:
		return uint64(lhs) < uint64(rhs), nil
	case optir.OpIntBelowOrEquals:
		return uint64(lhs) <= uint64(rhs), nil
	default:
		return false, fmt.Errorf("irtest: opcode %s is not a compare", op.Name())
	}
}
