package optpass

import (
	"github.com/kefir-go/kefirgo/pkg/cc/irmodule"
	"github.com/kefir-go/kefirgo/pkg/cc/optir"
)

// TailCallMark marks a call_direct/call_indirect instruction as a tail
// call when it is the last instruction of its block and the block's return
// returns its result, letting the code generator lower it
// with a jump instead of a call-then-return sequence.
type TailCallMark struct{}

func (TailCallMark) Name() string { return "tail-call-mark" }

func (TailCallMark) Apply(mod *irmodule.Module, fn *optir.Function) error {
	for _, b := range fn.Blocks() {
		if !b.IsFinalized() {
			continue
		}
		term := fn.Instruction(b.Control)
		if term == nil || term.Opcode != optir.OpReturn || len(b.Code) == 0 {
			continue
		}
		last := fn.Instruction(b.Code[len(b.Code)-1])
		if last == nil || last.Forwarded != 0 {
			continue
		}
		if last.Opcode != optir.OpCallDirect && last.Opcode != optir.OpCallIndirect {
			continue
		}
		if term.Payload.Ref1 != last.ID {
			continue
		}
		last.Payload.IsTailCall = true
	}
	return nil
}
