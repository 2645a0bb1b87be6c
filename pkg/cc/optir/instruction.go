package optir

import "github.com/kefir-go/kefirgo/pkg/cc/types"

// InstrRef is a dense reference to an Instruction within a Function. Refs
// are never reused: a replaced instruction is marked Forwarded and its ref
// stays retired, so a stale reference from an earlier pass still resolves
// to the retired instruction (its Forwarded field set) and never aliases a
// new instruction.
type InstrRef int

// BlockID is a dense reference to a Block within a Function.
type BlockID int

// Instruction is one operation in the optimizer IR.
type Instruction struct {
	ID        InstrRef
	Block     BlockID
	Opcode    Opcode
	Payload   Payload
	Forwarded InstrRef // the replacement's ref once replaced; ID itself once removed outright
	Result    types.Code
}

// IsControl reports whether this instruction terminates its block.
func (i *Instruction) IsControl() bool { return i.Opcode.IsControl() }

// Uses returns the instruction refs this instruction reads, for use-def
// bookkeeping and dead-code elimination.
func (i *Instruction) Uses() []InstrRef {
	var out []InstrRef
	add := func(r InstrRef) {
		if r != 0 {
			out = append(out, r)
		}
	}
	switch i.Opcode.PayloadKind() {
	case PayloadRef1, PayloadBitIntRef1:
		add(i.Payload.Ref1)
	case PayloadRef2, PayloadBitIntRef2, PayloadOverflowArith, PayloadCompareRef2, PayloadTypedRef2:
		add(i.Payload.Ref1)
		add(i.Payload.Ref2)
	case PayloadCompareBranch:
		add(i.Payload.Ref1)
		add(i.Payload.Ref2)
	case PayloadBranch:
		add(i.Payload.Ref1)
	case PayloadCallRef:
		add(i.Payload.Ref1)
		out = append(out, i.Payload.CallArgs...)
	case PayloadLoadMem:
		add(i.Payload.Ref1)
	case PayloadStoreMem:
		add(i.Payload.Ref1)
		add(i.Payload.Ref2)
	case PayloadAtomicOp:
		add(i.Payload.Ref1)
		add(i.Payload.Ref2)
		add(i.Payload.Ref3)
	}
	return out
}
