package asmcmp

import "testing"

func TestLivenessMarkActivityWidensGlobalRange(t *testing.T) {
	m := NewLivenessMap()
	v := VReg(1)
	m.MarkActivity(v, 5)
	m.MarkActivity(v, 2)
	m.MarkActivity(v, 9)
	rng, ok := m.GlobalActivityFor(v)
	if !ok {
		t.Fatal("GlobalActivityFor returned not-ok")
	}
	if rng.Begin != 2 || rng.End != 10 {
		t.Fatalf("global range = %+v, want {2 10}", rng)
	}
}

func TestAddLifetimeRangeMergesOverlapping(t *testing.T) {
	m := NewLivenessMap()
	v := VReg(1)
	m.AddLifetimeRange(v, 0, 5)
	m.AddLifetimeRange(v, 3, 8)

	r, ok := m.ActiveRangeAt(v, 4)
	if !ok {
		t.Fatal("expected an active range at position 4")
	}
	if r.Begin != 0 || r.End != 8 {
		t.Fatalf("merged range = %+v, want {0 8}", r)
	}
}

func TestAddLifetimeRangeMergesAdjacentChain(t *testing.T) {
	m := NewLivenessMap()
	v := VReg(1)
	m.AddLifetimeRange(v, 10, 12)
	m.AddLifetimeRange(v, 0, 2)
	m.AddLifetimeRange(v, 2, 10)

	r, ok := m.ActiveRangeAt(v, 5)
	if !ok {
		t.Fatal("expected an active range at position 5")
	}
	if r.Begin != 0 || r.End != 12 {
		t.Fatalf("merged range = %+v, want {0 12}", r)
	}
}

func TestActiveRangeAtFindsHole(t *testing.T) {
	m := NewLivenessMap()
	v := VReg(1)
	m.AddLifetimeRange(v, 0, 2)
	m.AddLifetimeRange(v, 10, 12)

	if _, ok := m.ActiveRangeAt(v, 5); ok {
		t.Fatal("expected no active range inside the gap")
	}
	if _, ok := m.ActiveRangeAt(v, 1); !ok {
		t.Fatal("expected an active range inside the first span")
	}
	if _, ok := m.ActiveRangeAt(v, 11); !ok {
		t.Fatal("expected an active range inside the second span")
	}
}
