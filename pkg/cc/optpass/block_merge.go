package optpass

import (
	"github.com/kefir-go/kefirgo/pkg/cc/irmodule"
	"github.com/kefir-go/kefirgo/pkg/cc/optir"
)

// BlockMerge folds a block into its sole predecessor whenever that
// predecessor's only successor is this block — the pair can never be
// entered independently, so they are one block in everything but the IR's
// representation.
type BlockMerge struct{}

func (BlockMerge) Name() string { return "block-merge" }

func (BlockMerge) Apply(mod *irmodule.Module, fn *optir.Function) error {
	for _, b := range fn.Blocks() {
		if len(b.Preds) != 1 {
			continue
		}
		pred := fn.Block(b.Preds[0])
		if len(pred.Succs) != 1 || pred.Succs[0] != b.ID || pred.ID == b.ID {
			continue
		}
		predTerm := fn.Instruction(pred.Control)
		if predTerm == nil || predTerm.Opcode != optir.OpJump {
			continue
		}

		if err := fn.DropControl(pred); err != nil {
			return err
		}
		pred.Code = append(pred.Code, b.Code...)
		pred.Control = b.Control
		pred.Succs = b.Succs
		for _, s := range b.Succs {
			succ := fn.Block(s)
			for i, p := range succ.Preds {
				if p == b.ID {
					succ.Preds[i] = pred.ID
				}
			}
		}
		b.Code = nil
		b.Preds = nil
		b.Succs = nil
	}
	return nil
}
