// Package asmcmp is the near-machine intermediate form the code generator
// lowers optimizer IR into before handing it to xasmgen: virtual registers
// plus physical placement, a liveness map, a linear-scan register
// allocator, and the stack frame layout algorithm, all ported from kefir's
// codegen/asmcmp layer.
package asmcmp

import "github.com/kefir-go/kefirgo/pkg/cc/abi/amd64"

// VReg is a virtual register: a placeholder the register allocator later
// resolves to a physical register or a spill slot.
type VReg int

// VRegClass constrains which physical register pool a VReg may be
// assigned into.
type VRegClass int

const (
	ClassGP VRegClass = iota
	ClassSSE
	ClassSpillSlot
	ClassDirectSpill
)

// RelocKind tags how a Label operand's address should be computed.
type RelocKind int

const (
	RelocNone RelocKind = iota
	RelocPLT
	RelocGOTPCRel
	RelocTPOff
	RelocTLSGD
	RelocGOTTPOff
)

// OperandKind discriminates the tagged Operand union.
type OperandKind int

const (
	OperandPhysicalGP OperandKind = iota
	OperandPhysicalSSE
	OperandVirtual
	OperandImmediateS
	OperandImmediateU
	OperandLabel
	OperandRIPRelative
	OperandIndirect
)

// Operand is a tagged union over everything an asmcmp instruction can
// reference as a source or destination.
type Operand struct {
	Kind OperandKind

	PhysGP  amd64.GPReg
	PhysSSE amd64.SSEReg
	Virtual VReg

	ImmS int64
	ImmU uint64

	Label      string
	Reloc      RelocKind
	SegPrefix  string // "fs"/"gs" for TLS-segment-prefixed operands, else ""

	// Indirect/RIP-relative addressing: [Base + Disp] or [rip + Label].
	Base  *Operand
	Disp  int64
	Width int // access width in bytes, for indirect operands
}

func Physical(r amd64.GPReg) Operand  { return Operand{Kind: OperandPhysicalGP, PhysGP: r} }
func PhysicalSSE(r amd64.SSEReg) Operand { return Operand{Kind: OperandPhysicalSSE, PhysSSE: r} }
func Virt(v VReg) Operand             { return Operand{Kind: OperandVirtual, Virtual: v} }
func ImmSigned(v int64) Operand       { return Operand{Kind: OperandImmediateS, ImmS: v} }
func ImmUnsigned(v uint64) Operand    { return Operand{Kind: OperandImmediateU, ImmU: v} }
func Lbl(name string, reloc RelocKind) Operand {
	return Operand{Kind: OperandLabel, Label: name, Reloc: reloc}
}
func Indirect(base Operand, disp int64, width int) Operand {
	return Operand{Kind: OperandIndirect, Base: &base, Disp: disp, Width: width}
}
func SegmentPrefixed(seg string, base Operand, disp int64, width int) Operand {
	op := Indirect(base, disp, width)
	op.SegPrefix = seg
	return op
}
