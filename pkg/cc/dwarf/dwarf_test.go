package dwarf

import (
	"strings"
	"testing"

	"github.com/kefir-go/kefirgo/pkg/cc/irmodule"
	"github.com/kefir-go/kefirgo/pkg/cc/xasmgen"
)

func TestEmitSkipsSectionsWhenModuleHasNoDebugEntries(t *testing.T) {
	mod := irmodule.NewModule(nil)
	defer mod.Close()
	gen := xasmgen.NewATT()
	Emit(mod, gen)
	if gen.String() != "" {
		t.Fatalf("expected no output for a module with no debug entries, got %q", gen.String())
	}
}

func TestEmitWritesNestedSubprogramAndVariableDIEs(t *testing.T) {
	mod := irmodule.NewModule(nil)
	defer mod.Close()

	sub := Subprogram("main", ".Lmain_begin", ".Lmain_end", "main.c", 1, 1)
	sub.Children = append(sub.Children, Variable("x", "DW_OP_fbreg -8", "main.c", 2, 5))
	mod.AddDebugEntry(sub)

	gen := xasmgen.NewATT()
	Emit(mod, gen)
	out := gen.String()

	for _, want := range []string{".debug_abbrev", ".debug_info", ".debug_line", ".debug_loclists", ".debug_str", "main", "DW_OP_fbreg -8"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestLabelAndLexicalBlockConstructorsPopulateTag(t *testing.T) {
	lb := LexicalBlock(".Lblock_begin", ".Lblock_end")
	if lb.Tag != "lexical_block" {
		t.Fatalf("LexicalBlock().Tag = %q, want lexical_block", lb.Tag)
	}
	lbl := Label("loop_top", "main.c", 10, 1)
	if lbl.Tag != "label" || lbl.Name != "loop_top" {
		t.Fatalf("Label() = %+v, want tag=label name=loop_top", lbl)
	}
}
