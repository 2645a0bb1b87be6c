package optpass

import (
	"os"
	"testing"

	"github.com/kefir-go/kefirgo/pkg/cc/irmodule"
	"github.com/kefir-go/kefirgo/pkg/cc/optir"
)

func buildFoldableModule() *irmodule.Module {
	mod := irmodule.NewModule(nil)
	fn := optir.NewFunction("adder")
	entry := fn.NewBlock()
	two := imm(fn, entry, 2)
	three := imm(fn, entry, 3)
	add, _ := fn.AddInstruction(entry, optir.OpIntAdd, optir.Payload{Ref1: two, Ref2: three})
	fn.FinalizeReturn(entry, add.ID)

	id := mod.DeclareFunction(irmodule.FuncDecl{Name: "adder"})
	mod.AttachBody(id, fn)
	return mod
}

func TestRunWithStatsRecordsPerPassEffect(t *testing.T) {
	mod := buildFoldableModule()
	pipeline := NewPipeline(&ConstantFold{}, &DCE{})
	stats, err := pipeline.RunWithStats(mod)
	if err != nil {
		t.Fatalf("RunWithStats: %v", err)
	}
	if stats.Len() == 0 {
		t.Fatal("expected at least one recorded effect")
	}
	found := false
	for _, e := range stats.Effects() {
		if e.Pass == "dce" && e.Removed > 0 {
			found = true
		}
	}
	if !found {
		t.Error("expected dce to report removed instructions after folding the add away")
	}
}

func TestSaveLoadStatsRoundTrip(t *testing.T) {
	mod := buildFoldableModule()
	pipeline := DefaultPipeline()
	stats, err := pipeline.RunWithStats(mod)
	if err != nil {
		t.Fatalf("RunWithStats: %v", err)
	}

	path := t.TempDir() + "/stats.gob"
	if err := SaveStats(path, stats); err != nil {
		t.Fatalf("SaveStats: %v", err)
	}
	loaded, err := LoadStats(path)
	if err != nil {
		t.Fatalf("LoadStats: %v", err)
	}
	if loaded.Len() != stats.Len() {
		t.Fatalf("loaded.Len() = %d, want %d", loaded.Len(), stats.Len())
	}
	os.Remove(path)
}

func TestRunParallelMatchesSequentialResult(t *testing.T) {
	seq, err := DefaultPipeline().RunWithStats(buildFoldableModule())
	if err != nil {
		t.Fatalf("RunWithStats: %v", err)
	}
	mod := buildFoldableModule()
	stats, err := DefaultPipeline().RunParallel(mod, 2)
	if err != nil {
		t.Fatalf("RunParallel: %v", err)
	}
	if stats.Len() == 0 {
		t.Fatal("expected recorded effects from a parallel run")
	}
	got, want := stats.ByPass(), seq.ByPass()
	if len(got) != len(want) {
		t.Fatalf("parallel ByPass() = %v, sequential ByPass() = %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("parallel ByPass()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
