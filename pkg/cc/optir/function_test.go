package optir

import "testing"

func imm(fn *Function, b *Block, v int64) InstrRef {
	i, _ := fn.AddInstruction(b, OpImmediate, Payload{ImmKind: ImmInt64, ImmInt: v})
	return i.ID
}

func TestAddInstructionRejectsControlOpcodes(t *testing.T) {
	fn := NewFunction("f")
	b := fn.NewBlock()
	if _, err := fn.AddInstruction(b, OpReturn, Payload{}); err == nil {
		t.Fatal("expected AddInstruction to reject a control opcode")
	}
}

func TestAddInstructionAcceptsPureInstructionOnFinalizedBlock(t *testing.T) {
	fn := NewFunction("f")
	b := fn.NewBlock()
	if _, err := fn.FinalizeReturn(b, 0); err != nil {
		t.Fatalf("FinalizeReturn: %v", err)
	}
	if instr, err := fn.AddInstruction(b, OpImmediate, Payload{ImmKind: ImmInt64, ImmInt: 1}); err != nil || len(b.Code) != 1 || b.Code[0] != instr.ID {
		t.Fatalf("expected AddInstruction to append a non-control instruction to a finalized block, got err=%v Code=%v", err, b.Code)
	}
}

func TestFinalizeBranchLinksSuccessorsAndPreds(t *testing.T) {
	fn := NewFunction("f")
	entry := fn.NewBlock()
	ifTrue := fn.NewBlock()
	ifFalse := fn.NewBlock()
	cond := imm(fn, entry, 1)

	ctrl, err := fn.FinalizeBranch(entry, cond, ifTrue.ID, ifFalse.ID)
	if err != nil {
		t.Fatalf("FinalizeBranch: %v", err)
	}
	if !entry.IsFinalized() || entry.Control != ctrl.ID {
		t.Fatal("expected entry to be finalized with the branch as its control instruction")
	}
	if len(entry.Succs) != 2 || entry.Succs[0] != ifTrue.ID || entry.Succs[1] != ifFalse.ID {
		t.Fatalf("entry.Succs = %v, want [%d %d]", entry.Succs, ifTrue.ID, ifFalse.ID)
	}
	if len(ifTrue.Preds) != 1 || ifTrue.Preds[0] != entry.ID {
		t.Fatalf("ifTrue.Preds = %v, want [%d]", ifTrue.Preds, entry.ID)
	}
	if len(ifFalse.Preds) != 1 || ifFalse.Preds[0] != entry.ID {
		t.Fatalf("ifFalse.Preds = %v, want [%d]", ifFalse.Preds, entry.ID)
	}
	if users := fn.Users(cond); len(users) != 1 || users[0] != ctrl.ID {
		t.Fatalf("Users(cond) = %v, want [%d]", users, ctrl.ID)
	}
}

func TestFinalizeRejectsAlreadyFinalizedBlock(t *testing.T) {
	fn := NewFunction("f")
	b := fn.NewBlock()
	if _, err := fn.FinalizeReturn(b, 0); err != nil {
		t.Fatalf("first FinalizeReturn: %v", err)
	}
	if _, err := fn.FinalizeReturn(b, 0); err == nil {
		t.Fatal("expected second FinalizeReturn on the same block to fail")
	}
}

func TestPhiAndAttachPhiSourceRecordEdgesAndUses(t *testing.T) {
	fn := NewFunction("f")
	pred1 := fn.NewBlock()
	pred2 := fn.NewBlock()
	merge := fn.NewBlock()

	v1 := imm(fn, pred1, 10)
	v2 := imm(fn, pred2, 20)
	phi, err := fn.Phi(merge)
	if err != nil {
		t.Fatalf("Phi: %v", err)
	}
	if err := fn.AttachPhiSource(phi.ID, pred1.ID, v1); err != nil {
		t.Fatalf("AttachPhiSource(pred1): %v", err)
	}
	if err := fn.AttachPhiSource(phi.ID, pred2.ID, v2); err != nil {
		t.Fatalf("AttachPhiSource(pred2): %v", err)
	}

	edges := fn.PhiSources(phi.ID)
	if edges[pred1.ID] != v1 || edges[pred2.ID] != v2 {
		t.Fatalf("PhiSources = %v, want {%d:%d, %d:%d}", edges, pred1.ID, v1, pred2.ID, v2)
	}
	if users := fn.Users(v1); len(users) != 1 || users[0] != phi.ID {
		t.Fatalf("Users(v1) = %v, want [%d]", users, phi.ID)
	}
	if users := fn.Users(v2); len(users) != 1 || users[0] != phi.ID {
		t.Fatalf("Users(v2) = %v, want [%d]", users, phi.ID)
	}
}

func TestAttachPhiSourceRejectsNonPhiInstruction(t *testing.T) {
	fn := NewFunction("f")
	b := fn.NewBlock()
	notPhi := imm(fn, b, 1)
	if err := fn.AttachPhiSource(notPhi, b.ID, notPhi); err == nil {
		t.Fatal("expected AttachPhiSource to reject a non-phi instruction ref")
	}
}

func TestReplaceReferencesRewritesUsesAndMergesUserSets(t *testing.T) {
	fn := NewFunction("f")
	b := fn.NewBlock()
	old := imm(fn, b, 1)
	replacement := imm(fn, b, 2)
	user, err := fn.AddInstruction(b, OpIntAdd, Payload{Ref1: old, Ref2: replacement})
	if err != nil {
		t.Fatalf("AddInstruction: %v", err)
	}

	fn.ReplaceReferences(old, replacement)

	if user.Payload.Ref1 != replacement {
		t.Fatalf("user.Payload.Ref1 = %d, want %d", user.Payload.Ref1, replacement)
	}
	if fn.Instruction(old).Forwarded != replacement {
		t.Fatalf("old.Forwarded = %d, want %d", fn.Instruction(old).Forwarded, replacement)
	}
	repUsers := fn.Users(replacement)
	found := false
	for _, u := range repUsers {
		if u == user.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("Users(replacement) = %v, want to include %d", repUsers, user.ID)
	}
	if users := fn.Users(old); len(users) != 0 {
		t.Fatalf("Users(old) = %v, want empty after replacement", users)
	}
}

func TestReplaceReferencesIsIdempotentOnceOldHasNoUsers(t *testing.T) {
	fn := NewFunction("f")
	b := fn.NewBlock()
	old := imm(fn, b, 1)
	replacement := imm(fn, b, 2)

	fn.ReplaceReferences(old, replacement)
	fn.ReplaceReferences(old, replacement) // must not panic, must stay a no-op

	if users := fn.Users(old); len(users) != 0 {
		t.Fatalf("Users(old) = %v, want empty", users)
	}
}

func TestReplaceReferencesUpdatesPhiSourceEdges(t *testing.T) {
	fn := NewFunction("f")
	pred := fn.NewBlock()
	merge := fn.NewBlock()
	old := imm(fn, pred, 1)
	replacement := imm(fn, pred, 2)
	phi, _ := fn.Phi(merge)
	if err := fn.AttachPhiSource(phi.ID, pred.ID, old); err != nil {
		t.Fatalf("AttachPhiSource: %v", err)
	}

	fn.ReplaceReferences(old, replacement)

	if got := fn.PhiSources(phi.ID)[pred.ID]; got != replacement {
		t.Fatalf("phi source for pred = %d, want %d", got, replacement)
	}
}

func TestForgetRemovesItsOwnUsesFromOperands(t *testing.T) {
	fn := NewFunction("f")
	b := fn.NewBlock()
	def := imm(fn, b, 1)
	dead, err := fn.AddInstruction(b, OpIntNeg, Payload{Ref1: def})
	if err != nil {
		t.Fatalf("AddInstruction: %v", err)
	}
	if users := fn.Users(def); len(users) != 1 {
		t.Fatalf("Users(def) before Forget = %v, want 1 entry", users)
	}

	fn.Forget(dead.ID)

	if users := fn.Users(def); len(users) != 0 {
		t.Fatalf("Users(def) after Forget = %v, want empty", users)
	}
}

func TestForgetOnUnknownRefIsANoOp(t *testing.T) {
	fn := NewFunction("f")
	fn.Forget(InstrRef(999)) // must not panic
}

func TestDropControlDetachesFromSuccessorsAndMarksForwarded(t *testing.T) {
	fn := NewFunction("f")
	entry := fn.NewBlock()
	target := fn.NewBlock()
	ctrl, err := fn.FinalizeJump(entry, target.ID)
	if err != nil {
		t.Fatalf("FinalizeJump: %v", err)
	}
	if len(target.Preds) != 1 || target.Preds[0] != entry.ID {
		t.Fatalf("target.Preds = %v, want [%d] before DropControl", target.Preds, entry.ID)
	}

	if err := fn.DropControl(entry); err != nil {
		t.Fatalf("DropControl: %v", err)
	}

	if entry.IsFinalized() {
		t.Fatal("expected entry to be un-finalized after DropControl")
	}
	if len(entry.Succs) != 0 {
		t.Fatalf("entry.Succs = %v, want empty after DropControl", entry.Succs)
	}
	if len(target.Preds) != 0 {
		t.Fatalf("target.Preds = %v, want empty after DropControl", target.Preds)
	}
	if fn.Instruction(ctrl.ID).Forwarded != ctrl.ID {
		t.Fatalf("dropped control's Forwarded = %d, want self-reference %d", fn.Instruction(ctrl.ID).Forwarded, ctrl.ID)
	}
}

func TestDropControlRejectsUnfinalizedBlock(t *testing.T) {
	fn := NewFunction("f")
	b := fn.NewBlock()
	if err := fn.DropControl(b); err == nil {
		t.Fatal("expected DropControl to reject an unfinalized block")
	}
}

func TestForwardedCountCountsOnlyForwardedInstructions(t *testing.T) {
	fn := NewFunction("f")
	b := fn.NewBlock()
	old := imm(fn, b, 1)
	replacement := imm(fn, b, 2)
	if _, err := fn.FinalizeReturn(b, replacement); err != nil {
		t.Fatalf("FinalizeReturn: %v", err)
	}
	if n := fn.ForwardedCount(); n != 0 {
		t.Fatalf("ForwardedCount() = %d, want 0 before any forwarding", n)
	}

	fn.ReplaceReferences(old, replacement)

	if n := fn.ForwardedCount(); n != 1 {
		t.Fatalf("ForwardedCount() = %d, want 1 after forwarding one instruction", n)
	}
}

func TestInstructionReturnsNilForOutOfRangeRefs(t *testing.T) {
	fn := NewFunction("f")
	if fn.Instruction(0) != nil {
		t.Fatal("Instruction(0) must be nil: index 0 is reserved as \"no ref\"")
	}
	if fn.Instruction(InstrRef(999)) != nil {
		t.Fatal("Instruction of an out-of-range ref must be nil")
	}
}
