package optpass

import (
	"github.com/kefir-go/kefirgo/pkg/cc/irmodule"
	"github.com/kefir-go/kefirgo/pkg/cc/optir"
)

// DCE removes dead pure instructions (no users, not a terminator, not
// memory- or call-effectful) by forwarding them away from the function.
// Only reachable blocks are scanned: a block with no predecessors (other
// than the entry block) is left in place and its instructions are not
// examined.
type DCE struct{}

func (DCE) Name() string { return "dce" }

var effectful = map[optir.Opcode]bool{
	optir.OpStoreMem:        true,
	optir.OpAtomicStore:     true,
	optir.OpAtomicXchg:      true,
	optir.OpAtomicCmpxchg:   true,
	optir.OpAtomicFetchAdd:  true,
	optir.OpCallDirect:      true,
	optir.OpCallIndirect:    true,
	optir.OpAlloca:          true,
	optir.OpScopePush:       true,
	optir.OpScopePop:        true,
	optir.OpVarargStart:     true,
	optir.OpVarargEnd:       true,
	optir.OpVarargCopy:      true,
	optir.OpInlineAsm:       true,
}

func (DCE) Apply(mod *irmodule.Module, fn *optir.Function) error {
	blocks := fn.Blocks()
	reachable := make(map[optir.BlockID]bool, len(blocks))
	reachable[0] = true
	for _, b := range blocks {
		if len(b.Preds) > 0 || b.ID == 0 {
			reachable[b.ID] = true
		}
	}

	changed := true
	for changed {
		changed = false
		for _, instr := range removableCandidates(fn, blocks, reachable) {
			if len(fn.Users(instr.ID)) == 0 {
				instr.Forwarded = instr.ID
				fn.Forget(instr.ID)
				changed = true
			}
		}
	}
	return nil
}

func removableCandidates(fn *optir.Function, blocks []*optir.Block, reachable map[optir.BlockID]bool) []*optir.Instruction {
	var out []*optir.Instruction
	for _, b := range blocks {
		if !reachable[b.ID] {
			continue
		}
		for _, ref := range b.Code {
			instr := fn.Instruction(ref)
			if instr == nil || instr.Forwarded != 0 || effectful[instr.Opcode] || instr.Opcode == optir.OpPhi {
				continue
			}
			out = append(out, instr)
		}
	}
	return out
}
