package optir

import (
	"fmt"

	"github.com/kefir-go/kefirgo/pkg/cc/ccerr"
)

// Block is a basic block: an ordered list of non-control instructions plus
// exactly one terminator once finalized.
type Block struct {
	ID           BlockID
	Code         []InstrRef // insertion order, terminator excluded
	Control      InstrRef   // 0 until FinalizeXxx is called
	Preds, Succs []BlockID
}

func (b *Block) IsFinalized() bool { return b.Control != 0 }

// Function owns a dense set of blocks and instructions, a use-def table,
// and phi source-edge bookkeeping, per the optimizer IR container
// described for optimization passes to operate over.
type Function struct {
	Name string

	blocks    []*Block
	instrs    []*Instruction
	nextInstr InstrRef

	useDef map[InstrRef]map[InstrRef]struct{} // def -> set of users
	phis   map[InstrRef]map[BlockID]InstrRef  // phi ref -> predecessor block -> source
}

// NewFunction creates an empty function container.
func NewFunction(name string) *Function {
	return &Function{
		Name:      name,
		instrs:    []*Instruction{nil}, // index 0 reserved as "no ref"
		nextInstr: 1,
		useDef:    make(map[InstrRef]map[InstrRef]struct{}),
		phis:      make(map[InstrRef]map[BlockID]InstrRef),
	}
}

// NewBlock appends a fresh, unfinalized block.
func (f *Function) NewBlock() *Block {
	b := &Block{ID: BlockID(len(f.blocks))}
	f.blocks = append(f.blocks, b)
	return b
}

func (f *Function) Block(id BlockID) *Block { return f.blocks[id] }

// ForwardedCount returns the number of instructions (index 0 excluded)
// currently marked replaced or dead via Forwarded — a pass-agnostic way to measure how much a pass shrank a
// function, used by optpass.Stats.
func (f *Function) ForwardedCount() int {
	n := 0
	for _, instr := range f.instrs {
		if instr != nil && instr.Forwarded != 0 {
			n++
		}
	}
	return n
}

func (f *Function) Blocks() []*Block { return f.blocks }

func (f *Function) Instruction(ref InstrRef) *Instruction {
	if int(ref) <= 0 || int(ref) >= len(f.instrs) {
		return nil
	}
	return f.instrs[ref]
}

func (f *Function) recordUses(instr *Instruction) {
	for _, use := range instr.Uses() {
		users, ok := f.useDef[use]
		if !ok {
			users = make(map[InstrRef]struct{})
			f.useDef[use] = users
		}
		users[instr.ID] = struct{}{}
	}
}

func (f *Function) newInstr(b *Block, op Opcode, payload Payload) *Instruction {
	id := f.nextInstr
	f.nextInstr++
	instr := &Instruction{ID: id, Block: b.ID, Opcode: op, Payload: payload}
	f.instrs = append(f.instrs, instr)
	f.recordUses(instr)
	return instr
}

// AddInstruction appends a non-control instruction to b. b may already be
// finalized: Code excludes the terminator, which stays last.
func (f *Function) AddInstruction(b *Block, op Opcode, payload Payload) (*Instruction, error) {
	if op.IsControl() {
		return nil, ccerr.New(ccerr.Invalid, "opcode %s is a control instruction", op.Name())
	}
	instr := f.newInstr(b, op, payload)
	b.Code = append(b.Code, instr.ID)
	return instr, nil
}

// AddControlSideEffectFree is AddInstruction's counterpart for pure
// instructions the pipeline is free to reorder or eliminate when unused
// (kept distinct from AddInstruction only at the call-site level; the
// container itself tracks purity via Opcode, not placement).
func (f *Function) AddControlSideEffectFree(b *Block, op Opcode, payload Payload) (*Instruction, error) {
	return f.AddInstruction(b, op, payload)
}

func (f *Function) finalize(b *Block, op Opcode, payload Payload, succs ...BlockID) (*Instruction, error) {
	if b.IsFinalized() {
		return nil, ccerr.New(ccerr.InvalidState, "block %d already finalized", b.ID)
	}
	instr := f.newInstr(b, op, payload)
	b.Control = instr.ID
	b.Succs = succs
	for _, s := range succs {
		succ := f.blocks[s]
		succ.Preds = append(succ.Preds, b.ID)
	}
	return instr, nil
}

// FinalizeJump closes b with an unconditional jump to target.
func (f *Function) FinalizeJump(b *Block, target BlockID) (*Instruction, error) {
	return f.finalize(b, OpJump, Payload{TrueTarget: target}, target)
}

// FinalizeIndirect closes b with an indirect jump through addr, to one of
// the listed possible targets (used for computed-goto lowering).
func (f *Function) FinalizeIndirect(b *Block, addr InstrRef, possible []BlockID) (*Instruction, error) {
	return f.finalize(b, OpIndirectJump, Payload{Ref1: addr}, possible...)
}

// FinalizeBranch closes b with a conditional branch on cond.
func (f *Function) FinalizeBranch(b *Block, cond InstrRef, ifTrue, ifFalse BlockID) (*Instruction, error) {
	return f.finalize(b, OpBranch, Payload{Ref1: cond, TrueTarget: ifTrue, FalseTarget: ifFalse}, ifTrue, ifFalse)
}

// FinalizeCompareBranch closes b with a fused compare-and-branch, used by
// the compare-branch-fuse pass instead of FinalizeBranch.
func (f *Function) FinalizeCompareBranch(b *Block, cmp Opcode, lhs, rhs InstrRef, ifTrue, ifFalse BlockID) (*Instruction, error) {
	return f.finalize(b, OpCompareBranch, Payload{CompareOp: cmp, Ref1: lhs, Ref2: rhs, TrueTarget: ifTrue, FalseTarget: ifFalse}, ifTrue, ifFalse)
}

// FinalizeReturn closes b with a return of value (value may be 0 for void).
func (f *Function) FinalizeReturn(b *Block, value InstrRef) (*Instruction, error) {
	return f.finalize(b, OpReturn, Payload{Ref1: value})
}

// Phi creates a phi node in b with no source edges yet.
func (f *Function) Phi(b *Block) (*Instruction, error) {
	instr, err := f.AddInstruction(b, OpPhi, Payload{})
	if err != nil {
		return nil, err
	}
	f.phis[instr.ID] = make(map[BlockID]InstrRef)
	return instr, nil
}

// AttachPhiSource records that, coming from pred, phi's value is src.
func (f *Function) AttachPhiSource(phi InstrRef, pred BlockID, src InstrRef) error {
	edges, ok := f.phis[phi]
	if !ok {
		return ccerr.New(ccerr.Invalid, "instruction %d is not a phi", phi)
	}
	edges[pred] = src
	if users, ok := f.useDef[src]; ok {
		users[phi] = struct{}{}
	} else {
		f.useDef[src] = map[InstrRef]struct{}{phi: {}}
	}
	return nil
}

// PhiSources returns the predecessor-to-source-value map for a phi.
func (f *Function) PhiSources(phi InstrRef) map[BlockID]InstrRef { return f.phis[phi] }

// Users returns every instruction currently referencing def.
func (f *Function) Users(def InstrRef) []InstrRef {
	set := f.useDef[def]
	out := make([]InstrRef, 0, len(set))
	for u := range set {
		out = append(out, u)
	}
	return out
}

// ReplaceReferences rewrites every live use of old to point at replacement,
// and is idempotent: calling it again once old has no users is a no-op,
// not an error.
func (f *Function) ReplaceReferences(old, replacement InstrRef) {
	if oldInstr := f.instrs[old]; oldInstr != nil {
		oldInstr.Forwarded = replacement
	}
	users := f.useDef[old]
	if len(users) == 0 {
		return
	}
	for u := range users {
		instr := f.instrs[u]
		if instr == nil {
			continue
		}
		rewriteRef(&instr.Payload, old, replacement)
		if edges, ok := f.phis[u]; ok {
			for pred, src := range edges {
				if src == old {
					edges[pred] = replacement
				}
			}
		}
	}
	delete(f.useDef, old)
	if repUsers, ok := f.useDef[replacement]; ok {
		for u := range users {
			repUsers[u] = struct{}{}
		}
	} else {
		f.useDef[replacement] = users
	}
}

func rewriteRef(p *Payload, old, replacement InstrRef) {
	if p.Ref1 == old {
		p.Ref1 = replacement
	}
	if p.Ref2 == old {
		p.Ref2 = replacement
	}
	if p.Ref3 == old {
		p.Ref3 = replacement
	}
	for i, a := range p.CallArgs {
		if a == old {
			p.CallArgs[i] = replacement
		}
	}
}

// Forget removes id's own uses from its operands' use-def bookkeeping. DCE
// calls this once it has determined id is dead, so a chain of
// now-unreferenced definitions can be collected in the same fixpoint loop
// instead of requiring a second pass.
func (f *Function) Forget(id InstrRef) {
	instr := f.Instruction(id)
	if instr == nil {
		return
	}
	for _, use := range instr.Uses() {
		users, ok := f.useDef[use]
		if !ok {
			continue
		}
		delete(users, id)
		if len(users) == 0 {
			delete(f.useDef, use)
		}
	}
}

// DropControl un-finalizes b, detaching it from its successors' Preds
// lists, so a pass can rebuild its terminator (used by compare-branch-fuse
// and block-merge).
func (f *Function) DropControl(b *Block) error {
	if !b.IsFinalized() {
		return ccerr.New(ccerr.InvalidState, "block %d is not finalized", b.ID)
	}
	for _, s := range b.Succs {
		succ := f.blocks[s]
		filtered := succ.Preds[:0]
		for _, p := range succ.Preds {
			if p != b.ID {
				filtered = append(filtered, p)
			}
		}
		succ.Preds = filtered
	}
	f.markForwarded(b.Control, 0)
	b.Control = 0
	b.Succs = nil
	return nil
}

func (f *Function) markForwarded(ref, to InstrRef) {
	instr := f.instrs[ref]
	if instr == nil {
		return
	}
	if to == 0 {
		instr.Forwarded = ref
		return
	}
	instr.Forwarded = to
}

func (i InstrRef) String() string { return fmt.Sprintf("%%%d", int(i)) }
