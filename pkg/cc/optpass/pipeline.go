// Package optpass implements the per-function optimization pass pipeline:
// a fixed, caller-supplied ordering of independent passes run one at a
// time over every function in a module.
package optpass

import (
	"github.com/kefir-go/kefirgo/pkg/cc/irmodule"
	"github.com/kefir-go/kefirgo/pkg/cc/optir"
)

// Pass transforms a single function in place.
type Pass interface {
	Name() string
	Apply(mod *irmodule.Module, fn *optir.Function) error
}

// Pipeline runs its passes, in order, over every function body in a
// module. Block visitation order within a pass is unspecified but stable
// (ascending dense BlockID), matching the index-iteration idiom the rest
// of this module follows.
type Pipeline struct {
	Passes []Pass
}

// NewPipeline builds a pipeline running passes in the given order.
func NewPipeline(passes ...Pass) *Pipeline {
	return &Pipeline{Passes: passes}
}

// Run applies every pass, in order, to every function body in mod.
func (p *Pipeline) Run(mod *irmodule.Module) error {
	for _, fn := range mod.Functions() {
		for _, pass := range p.Passes {
			if err := pass.Apply(mod, fn.Body); err != nil {
				return err
			}
		}
	}
	return nil
}

// RunWithStats behaves like Run but also records, per pass per function,
// how many additional instructions the pass marked dead — the same
// before/after bookkeeping a superoptimizer's rule table would keep for
// bytes and cycles saved, here kept for instructions removed instead.
func (p *Pipeline) RunWithStats(mod *irmodule.Module) (*Stats, error) {
	stats := NewStats()
	for _, fn := range mod.Functions() {
		for _, pass := range p.Passes {
			before := fn.Body.ForwardedCount()
			if err := pass.Apply(mod, fn.Body); err != nil {
				return stats, err
			}
			after := fn.Body.ForwardedCount()
			stats.Add(Effect{Pass: pass.Name(), Function: fn.Decl.Name, Removed: after - before})
		}
	}
	return stats, nil
}

// DefaultPipeline returns the pass ordering used at optimization level 1:
// constant folding before dead-code elimination (so the operand immediates
// a fold leaves without users are collected), compare-branch fusion once the
// surviving compares are final, then block merging and tail-call marking
// as cleanup passes that only help after the earlier passes have run.
func DefaultPipeline() *Pipeline {
	return NewPipeline(
		&ConstantFold{},
		&DCE{},
		&CompareBranchFuse{},
		&BlockMerge{},
		&TailCallMark{},
	)
}
