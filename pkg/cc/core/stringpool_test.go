package core

import "testing"

func TestInternReturnsStableIDForRepeatedString(t *testing.T) {
	p := NewStringPool()
	a := p.Intern("foo")
	b := p.Intern("foo")
	if a != b {
		t.Fatalf("Intern(\"foo\") returned different ids: %d, %d", a, b)
	}
	if p.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", p.Len())
	}
}

func TestInternAssignsDistinctIDsToDistinctStrings(t *testing.T) {
	p := NewStringPool()
	a := p.Intern("foo")
	b := p.Intern("bar")
	if a == b {
		t.Fatal("distinct strings got the same id")
	}
	if p.String(a) != "foo" || p.String(b) != "bar" {
		t.Fatalf("String() round-trip failed: %q, %q", p.String(a), p.String(b))
	}
}

func TestStringOfUnknownIDReturnsEmpty(t *testing.T) {
	p := NewStringPool()
	if p.String(99) != "" {
		t.Fatal("expected empty string for an unknown id")
	}
}
