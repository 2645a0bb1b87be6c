package core

import "testing"

func TestStringBufferAccumulatesWrites(t *testing.T) {
	b := NewStringBuffer()
	b.WriteString("mov rax, 1")
	b.Newline()
	b.WriteString("ret")
	want := "mov rax, 1\nret"
	if b.String() != want {
		t.Fatalf("String() = %q, want %q", b.String(), want)
	}
	if b.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", b.Len(), len(want))
	}
}
