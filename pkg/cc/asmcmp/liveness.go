package asmcmp

import "github.com/kefir-go/kefirgo/pkg/cc/core"

// Range is a half-open [Begin, End) instruction-index span during which a
// vreg is live.
type Range struct {
	Begin, End int
}

// vregLiveness is the per-vreg state the map tracks: a single monotonic
// global activity span widened as new marks arrive, plus a tree of
// disjoint, merged piecewise-active lifetime ranges.
type vregLiveness struct {
	global Range
	ranges *core.HashTree[int, Range] // keyed by Range.Begin
}

// LivenessMap mirrors kefir's codegen/asmcmp/liveness.c: a global activity
// range per vreg widened monotonically by MarkActivity, and a piecewise
// merged range set maintained by AddLifetimeRange via a hashtree lower_bound
// lookup so overlapping or adjacent ranges are absorbed instead of
// duplicated.
type LivenessMap struct {
	byVReg map[VReg]*vregLiveness
}

// NewLivenessMap creates an empty liveness map.
func NewLivenessMap() *LivenessMap {
	return &LivenessMap{byVReg: make(map[VReg]*vregLiveness)}
}

func (m *LivenessMap) entry(v VReg) *vregLiveness {
	e, ok := m.byVReg[v]
	if !ok {
		e = &vregLiveness{global: Range{Begin: -1, End: -1}, ranges: core.NewHashTree[int, Range]()}
		m.byVReg[v] = e
	}
	return e
}

// MarkActivity widens v's global activity range to include position.
func (m *LivenessMap) MarkActivity(v VReg, position int) {
	e := m.entry(v)
	if e.global.Begin == -1 || position < e.global.Begin {
		e.global.Begin = position
	}
	if position+1 > e.global.End {
		e.global.End = position + 1
	}
}

// GlobalActivityFor returns the full activity span recorded for v.
func (m *LivenessMap) GlobalActivityFor(v VReg) (Range, bool) {
	e, ok := m.byVReg[v]
	if !ok || e.global.Begin == -1 {
		return Range{}, false
	}
	return e.global, true
}

// AddLifetimeRange inserts [begin, end) into v's piecewise range set,
// merging it with any overlapping or touching neighbor exactly the way
// kefir's add_lifetime_range does: find the predecessor via lower_bound,
// absorb it if it overlaps the new range, then absorb every successor
// range whose Begin falls inside the (possibly already-extended) range.
func (m *LivenessMap) AddLifetimeRange(v VReg, begin, end int) {
	e := m.entry(v)
	m.MarkActivity(v, begin)
	if end > begin {
		m.MarkActivity(v, end-1)
	}

	newBegin, newEnd := begin, end
	if predBegin, pred, ok := e.ranges.LowerBound(begin); ok && pred.End >= begin {
		newBegin = predBegin
		if pred.End > newEnd {
			newEnd = pred.End
		}
		e.ranges.Delete(predBegin)
	}

	for {
		nextBegin, next, ok := e.ranges.LowerBound(newEnd)
		if !ok || next.Begin > newEnd || nextBegin < newBegin {
			// LowerBound returns the greatest key <= query; once it no
			// longer lands strictly inside [newBegin, newEnd], re-scan by
			// walking forward from newEnd using a direct lookup instead.
			break
		}
		if next.End > newEnd {
			newEnd = next.End
		}
		e.ranges.Delete(nextBegin)
	}
	// Absorb any remaining successor ranges whose Begin sits within the
	// extended span (handles the case LowerBound(newEnd) lands on a range
	// that starts after newEnd's original value but before the extended
	// one).
	var toDelete []int
	e.ranges.Iterate(func(b int, r Range) {
		if b >= newBegin && b <= newEnd {
			if r.End > newEnd {
				newEnd = r.End
			}
			toDelete = append(toDelete, b)
		}
	})
	for _, b := range toDelete {
		e.ranges.Delete(b)
	}

	e.ranges.Insert(newBegin, Range{Begin: newBegin, End: newEnd})
}

// ActiveRangeAt returns the piecewise range covering position, if any —
// used by the register allocator to decide whether a vreg's assigned
// register is free at a given instruction index.
func (m *LivenessMap) ActiveRangeAt(v VReg, position int) (Range, bool) {
	e, ok := m.byVReg[v]
	if !ok {
		return Range{}, false
	}
	begin, r, ok := e.ranges.LowerBound(position)
	if !ok || position >= r.End {
		_ = begin
		return Range{}, false
	}
	return r, true
}
