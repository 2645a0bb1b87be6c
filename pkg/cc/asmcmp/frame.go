package asmcmp

import "github.com/kefir-go/kefirgo/pkg/cc/abi/amd64"

// Frame computes a function's stack-frame layout: four regions stacked
// downward from the saved base pointer — preserved callee-saved registers,
// the local variable area, the spill area, and a final pad bringing the
// total frame size to a multiple of 16 — ported field-for-field from
// kefir's codegen/amd64/stack_frame.c.
type Frame struct {
	PreservedRegs []amd64.GPReg

	LocalAreaSize      uint64
	LocalAreaAlignment uint64

	SpillSlotCount int
	SpillSlotSize  uint64

	// computed by Layout
	PreservedRegsSize uint64
	LocalAreaOffset   uint64
	SpillAreaOffset   uint64
	AllocatedSize     uint64 // passed to `sub rsp, N`
}

// padNegative rounds a negative-going offset so that base-alignment is
// preserved once the region is placed below it, mirroring kefir's
// PAD_NEGATIVE macro: pad(x, alignment) = (alignment - (x % alignment)) % alignment.
func padNegative(x, alignment uint64) uint64 {
	if alignment == 0 {
		return 0
	}
	return (alignment - (x % alignment)) % alignment
}

func align(x, alignment uint64) uint64 {
	if alignment == 0 {
		return x
	}
	return x + padNegative(x, alignment)
}

// Layout computes region offsets and the total allocated frame size.
// Offsets are sizes accumulated downward from rbp; the code generator
// negates them when emitting `[rbp - offset]` operands.
func (f *Frame) Layout() {
	f.PreservedRegsSize = uint64(len(f.PreservedRegs)) * 8

	offset := f.PreservedRegsSize
	if f.LocalAreaAlignment == 0 {
		f.LocalAreaAlignment = 8
	}
	offset = align(offset, f.LocalAreaAlignment)
	f.LocalAreaOffset = offset
	offset += f.LocalAreaSize

	if f.SpillSlotSize == 0 {
		f.SpillSlotSize = 8
	}
	offset = align(offset, f.SpillSlotSize)
	f.SpillAreaOffset = offset
	offset += uint64(f.SpillSlotCount) * f.SpillSlotSize

	f.AllocatedSize = align(offset, 16) - f.PreservedRegsSize
}

// Prologue emits the function entry sequence into s: push rbp; mov rbp, rsp; push each preserved register in
// declared order; sub rsp, AllocatedSize.
func (f *Frame) Prologue(s *Stream) {
	s.Emit("push", Physical(amd64.RBP))
	s.Emit("mov", Physical(amd64.RBP), Physical(amd64.RSP))
	for _, reg := range f.PreservedRegs {
		s.Emit("push", Physical(reg))
	}
	if f.AllocatedSize > 0 {
		s.Emit("sub", Physical(amd64.RSP), ImmUnsigned(f.AllocatedSize))
	}
}

// Epilogue emits the mirror-image teardown into s: add rsp, AllocatedSize; pop
// each preserved register in reverse order; pop rbp; ret.
func (f *Frame) Epilogue(s *Stream) {
	if f.AllocatedSize > 0 {
		s.Emit("add", Physical(amd64.RSP), ImmUnsigned(f.AllocatedSize))
	}
	for i := len(f.PreservedRegs) - 1; i >= 0; i-- {
		s.Emit("pop", Physical(f.PreservedRegs[i]))
	}
	s.Emit("pop", Physical(amd64.RBP))
	s.Emit("ret")
}
