// Package xasmgen is the pluggable textual assembly emitter: one interface
// dispatched to three concrete dialect implementations, the same way the
// spec's virtual-dispatch-becomes-interface design note describes. Every
// concrete Generator shares baseGenerator for section/label/directive
// boilerplate and differs only in register/operand/immediate formatting.
package xasmgen

import (
	"fmt"

	"github.com/kefir-go/kefirgo/pkg/cc/asmcmp"
	"github.com/kefir-go/kefirgo/pkg/cc/core"
)

// SectionKind names an ELF section the generator can switch into.
type SectionKind int

const (
	SectionText SectionKind = iota
	SectionData
	SectionRodata
	SectionBSS
	SectionTBSS
	SectionTData
	SectionDebugInfo
	SectionDebugAbbrev
	SectionDebugLine
	SectionDebugLoclists
	SectionDebugStr
)

var sectionNames = map[SectionKind]string{
	SectionText:          ".text",
	SectionData:          ".data",
	SectionRodata:        ".rodata",
	SectionBSS:           ".bss",
	SectionTBSS:          ".tbss",
	SectionTData:         ".tdata",
	SectionDebugInfo:     ".debug_info",
	SectionDebugAbbrev:   ".debug_abbrev",
	SectionDebugLine:     ".debug_line",
	SectionDebugLoclists: ".debug_loclists",
	SectionDebugStr:      ".debug_str",
}

// Generator is the dialect-independent textual emission surface the code
// generator drives.
type Generator interface {
	Prologue()
	Instruction(mnemonic string, operands ...asmcmp.Operand)
	Label(name string)
	Section(kind SectionKind)
	Global(name string)
	Extern(name string)
	Align(n int)
	Comment(s string)
	String() string
}

// baseGenerator implements every dialect-independent piece of Generator,
// leaving only operand formatting (format) and mnemonic rewriting (mnem)
// to the embedding dialect.
type baseGenerator struct {
	buf    *core.StringBuffer
	format func(asmcmp.Operand) string
	mnem   func(string) string
}

func newBase(format func(asmcmp.Operand) string, mnem func(string) string) baseGenerator {
	return baseGenerator{buf: core.NewStringBuffer(), format: format, mnem: mnem}
}

func (g *baseGenerator) Prologue() {
	g.buf.WriteString("# generated by kefirgo\n")
}

func (g *baseGenerator) Instruction(mnemonic string, operands ...asmcmp.Operand) {
	g.buf.WriteString("\t")
	g.buf.WriteString(g.mnem(mnemonic))
	for i, op := range operands {
		if i == 0 {
			g.buf.WriteString(" ")
		} else {
			g.buf.WriteString(", ")
		}
		g.buf.WriteString(g.format(op))
	}
	g.buf.Newline()
}

func (g *baseGenerator) Label(name string) {
	g.buf.WriteString(name)
	g.buf.WriteString(":\n")
}

func (g *baseGenerator) Section(kind SectionKind) {
	g.buf.WriteString(fmt.Sprintf("\t.section %s\n", sectionNames[kind]))
}

func (g *baseGenerator) Global(name string) {
	g.buf.WriteString(fmt.Sprintf("\t.global %s\n", name))
}

func (g *baseGenerator) Extern(name string) {
	g.buf.WriteString(fmt.Sprintf("\t.extern %s\n", name))
}

func (g *baseGenerator) Align(n int) {
	g.buf.WriteString(fmt.Sprintf("\t.align %d\n", n))
}

func (g *baseGenerator) Comment(s string) {
	g.buf.WriteString("\t# ")
	g.buf.WriteString(s)
	g.buf.Newline()
}

func (g *baseGenerator) String() string { return g.buf.String() }
