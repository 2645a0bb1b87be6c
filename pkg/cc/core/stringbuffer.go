package core

import "strings"

// StringBuffer is a growable text buffer used by xasmgen to accumulate
// emitted assembly before it is handed back to the caller as a single
// string.
type StringBuffer struct {
	b strings.Builder
}

func NewStringBuffer() *StringBuffer { return &StringBuffer{} }

func (b *StringBuffer) WriteString(s string) { b.b.WriteString(s) }

func (b *StringBuffer) WriteByte(c byte) error { return b.b.WriteByte(c) }

func (b *StringBuffer) Newline() { b.b.WriteByte('\n') }

func (b *StringBuffer) String() string { return b.b.String() }

func (b *StringBuffer) Len() int { return b.b.Len() }
