package asmcmp

import (
	"testing"

	"github.com/kefir-go/kefirgo/pkg/cc/abi/amd64"
)

func TestFrameAllocatedSizeIs16ByteAligned(t *testing.T) {
	cases := []Frame{
		{PreservedRegs: nil, LocalAreaSize: 0, SpillSlotCount: 0},
		{PreservedRegs: []amd64.GPReg{amd64.RBX}, LocalAreaSize: 4, SpillSlotCount: 1},
		{PreservedRegs: []amd64.GPReg{amd64.RBX, amd64.R12, amd64.R13}, LocalAreaSize: 17, SpillSlotCount: 5},
	}
	for i := range cases {
		f := &cases[i]
		f.Layout()
		top := f.PreservedRegsSize + f.AllocatedSize
		if top%16 != 0 {
			t.Errorf("case %d: preserved+allocated = %d, not 16-byte aligned", i, top)
		}
	}
}

func TestFrameLayoutOrdersRegionsDownwardFromPreserved(t *testing.T) {
	f := &Frame{
		PreservedRegs:  []amd64.GPReg{amd64.RBX, amd64.R12},
		LocalAreaSize:  24,
		SpillSlotCount: 2,
	}
	f.Layout()
	if f.PreservedRegsSize != 16 {
		t.Fatalf("PreservedRegsSize = %d, want 16", f.PreservedRegsSize)
	}
	if f.LocalAreaOffset < f.PreservedRegsSize {
		t.Errorf("LocalAreaOffset %d precedes PreservedRegsSize %d", f.LocalAreaOffset, f.PreservedRegsSize)
	}
	if f.SpillAreaOffset < f.LocalAreaOffset+f.LocalAreaSize {
		t.Errorf("SpillAreaOffset %d overlaps the local area", f.SpillAreaOffset)
	}
}

func TestFramePrologueEmitsPushMovPushesAndSub(t *testing.T) {
	f := &Frame{PreservedRegs: []amd64.GPReg{amd64.RBX, amd64.R12}, LocalAreaSize: 8, SpillSlotCount: 0}
	f.Layout()
	s := NewStream()
	f.Prologue(s)

	if len(s.Instructions) < 4 {
		t.Fatalf("expected at least 4 prologue instructions, got %d", len(s.Instructions))
	}
	if s.Instructions[0].Mnemonic != "push" {
		t.Errorf("first instruction = %s, want push rbp", s.Instructions[0].Mnemonic)
	}
	if s.Instructions[1].Mnemonic != "mov" {
		t.Errorf("second instruction = %s, want mov rbp, rsp", s.Instructions[1].Mnemonic)
	}
	last := s.Instructions[len(s.Instructions)-1]
	if f.AllocatedSize > 0 && last.Mnemonic != "sub" {
		t.Errorf("last prologue instruction = %s, want sub rsp, N", last.Mnemonic)
	}
}

func TestFrameEpilogueMirrorsPrologue(t *testing.T) {
	f := &Frame{PreservedRegs: []amd64.GPReg{amd64.RBX, amd64.R12}, LocalAreaSize: 8, SpillSlotCount: 0}
	f.Layout()
	s := NewStream()
	f.Epilogue(s)

	last := s.Instructions[len(s.Instructions)-1]
	if last.Mnemonic != "ret" {
		t.Fatalf("last epilogue instruction = %s, want ret", last.Mnemonic)
	}
	secondLast := s.Instructions[len(s.Instructions)-2]
	if secondLast.Mnemonic != "pop" || secondLast.Operands[0].PhysGP != amd64.RBP {
		t.Errorf("second-to-last instruction = %+v, want pop rbp", secondLast)
	}
}
