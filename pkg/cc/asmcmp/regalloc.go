package asmcmp

import (
	"sort"

	"github.com/kefir-go/kefirgo/pkg/cc/abi/amd64"
)

// Assignment is where the register allocator placed a vreg: either a
// physical register or a numbered spill slot.
type Assignment struct {
	Spilled  bool
	GP       amd64.GPReg
	SSE      amd64.SSEReg
	SpillIdx int
}

// Allocator performs linear-scan register allocation over a Stream's
// vregs, using its LivenessMap to decide when a physical register frees
// up. It draws only from the pools it is given and makes no choice
// between callee-saved and caller-saved registers: a vreg gets whichever
// pool register the scan finds free.
type Allocator struct {
	gpPool  []amd64.GPReg
	ssePool []amd64.SSEReg
}

// NewAllocator builds an allocator drawing from the given physical
// register pools. The GP scan takes the most recently freed register
// first, starting from the last entry of gpPool; SSE vregs take ssePool
// entries by position.
func NewAllocator(gpPool []amd64.GPReg, ssePool []amd64.SSEReg) *Allocator {
	return &Allocator{gpPool: gpPool, ssePool: ssePool}
}

type interval struct {
	v          VReg
	begin, end int
}

// Allocate assigns every vreg referenced across instrs a physical register
// or spill slot. pinned pre-assigns specific vregs to specific physical
// registers (call argument/return-value placement) before the general
// linear scan runs.
func (a *Allocator) Allocate(s *Stream, classOf func(VReg) VRegClass, pinned map[VReg]amd64.GPReg) map[VReg]Assignment {
	var gpIntervals, sseIntervals []interval
	for v := range s.Liveness.byVReg {
		rng, ok := s.Liveness.GlobalActivityFor(v)
		if !ok {
			continue
		}
		iv := interval{v: v, begin: rng.Begin, end: rng.End}
		if classOf(v) == ClassSSE {
			sseIntervals = append(sseIntervals, iv)
		} else {
			gpIntervals = append(gpIntervals, iv)
		}
	}

	out := make(map[VReg]Assignment)
	for v, reg := range pinned {
		out[v] = Assignment{GP: reg}
	}

	a.scan(gpIntervals, a.gpPool, out)
	for i, iv := range sseIntervals {
		if _, ok := out[iv.v]; ok {
			continue
		}
		if i < len(a.ssePool) {
			out[iv.v] = Assignment{SSE: a.ssePool[i%len(a.ssePool)]}
		} else {
			out[iv.v] = Assignment{Spilled: true, SpillIdx: i - len(a.ssePool)}
		}
	}
	return out
}

func (a *Allocator) scan(intervals []interval, pool []amd64.GPReg, out map[VReg]Assignment) {
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].begin < intervals[j].begin })

	type active struct {
		iv  interval
		reg amd64.GPReg
	}
	var activeList []active
	free := append([]amd64.GPReg(nil), pool...)
	spillCount := 0

	for _, iv := range intervals {
		if _, ok := out[iv.v]; ok {
			continue // pre-pinned
		}
		// expire
		stillActive := activeList[:0]
		for _, act := range activeList {
			if act.iv.end <= iv.begin {
				free = append(free, act.reg)
			} else {
				stillActive = append(stillActive, act)
			}
		}
		activeList = stillActive

		if len(free) == 0 {
			out[iv.v] = Assignment{Spilled: true, SpillIdx: spillCount}
			spillCount++
			continue
		}
		reg := free[len(free)-1]
		free = free[:len(free)-1]
		out[iv.v] = Assignment{GP: reg}
		activeList = append(activeList, active{iv: iv, reg: reg})
	}
}
