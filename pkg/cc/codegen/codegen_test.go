package codegen

import (
	"strings"
	"testing"

	"github.com/kefir-go/kefirgo/pkg/cc/fixtures"
	"github.com/kefir-go/kefirgo/pkg/cc/irmodule"
	"github.com/kefir-go/kefirgo/pkg/cc/optpass"
	"github.com/kefir-go/kefirgo/pkg/cc/xasmgen"
)

func TestGenerateConstantArith1ProducesTextForEveryDialect(t *testing.T) {
	for _, syntax := range []Syntax{SyntaxATT, SyntaxIntelNoPrefix, SyntaxIntelPrefix} {
		mod := irmodule.NewModule(nil)
		defer mod.Close()
		decl, fn := fixtures.ByName["constant_arith1"](mod)
		if _, err := optpass.DefaultPipeline().RunWithStats(mod); err != nil {
			t.Fatalf("RunWithStats: %v", err)
		}

		cfg := DefaultConfig()
		cfg.Syntax = syntax
		gen, err := NewGenerator(cfg)
		if err != nil {
			t.Fatalf("NewGenerator(%s): %v", syntax, err)
		}
		if err := Generate(mod, decl, fn, cfg, gen); err != nil {
			t.Fatalf("Generate(%s): %v", syntax, err)
		}
		out := gen.String()
		if !strings.Contains(out, "constant_arith1:") {
			t.Errorf("%s: expected a function label, got %q", syntax, out)
		}
		if !strings.Contains(out, "ret") {
			t.Errorf("%s: expected a ret instruction in the epilogue, got %q", syntax, out)
		}
	}
}

func TestGenerateBranchMaxEmitsBothTargetBlocks(t *testing.T) {
	mod := irmodule.NewModule(nil)
	defer mod.Close()
	decl, fn := fixtures.ByName["branch_max"](mod)
	if _, err := optpass.DefaultPipeline().RunWithStats(mod); err != nil {
		t.Fatalf("RunWithStats: %v", err)
	}

	cfg := DefaultConfig()
	gen, err := NewGenerator(cfg)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	if err := Generate(mod, decl, fn, cfg, gen); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	out := gen.String()
	if !strings.Contains(out, "branch_max") {
		t.Fatalf("expected the function label, got %q", out)
	}
	for _, label := range []string{".Lbranch_max_1:", ".Lbranch_max_2:"} {
		if !strings.Contains(out, label) {
			t.Errorf("expected target block label %s, got %q", label, out)
		}
	}
}

func TestNewGeneratorRejectsUnknownSyntax(t *testing.T) {
	_, err := NewGenerator(Config{Syntax: "bogus"})
	if err == nil {
		t.Fatal("expected an error for an unknown syntax")
	}
}

func TestNewGeneratorDefaultsEmptySyntaxToATT(t *testing.T) {
	gen, err := NewGenerator(Config{})
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	if _, ok := gen.(*xasmgen.ATT); !ok {
		t.Fatalf("expected empty syntax to select ATT, got %T", gen)
	}
}
