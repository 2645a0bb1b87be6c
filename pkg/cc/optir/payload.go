package optir

import "github.com/kefir-go/kefirgo/pkg/cc/types"

// PayloadKind tags which fields of Payload are meaningful for a given
// instruction, mirroring kefir's kefir_opt_operation parameter union.
type PayloadKind int

const (
	PayloadNone PayloadKind = iota
	PayloadRef1
	PayloadRef2
	PayloadBitIntRef1
	PayloadBitIntRef2
	PayloadOverflowArith
	PayloadCompareRef2
	PayloadCompareBranch
	PayloadBranch
	PayloadCallRef
	PayloadLoadMem
	PayloadStoreMem
	PayloadAtomicOp
	PayloadImmediate
	PayloadTypedRef2
	PayloadBitfield
)

// MemOrder is the memory ordering an atomic or volatile access observes.
type MemOrder int

const (
	OrderRelaxed MemOrder = iota
	OrderAcquire
	OrderRelease
	OrderAcqRel
	OrderSeqCst
)

// Payload holds the operand data for one Instruction. Only the fields
// matching Opcode.PayloadKind() are populated; the rest are zero.
type Payload struct {
	Ref1, Ref2, Ref3 InstrRef

	BitWidth int
	Signed   bool

	CompareOp   Opcode // which compare produced/feeds a compare_branch
	TrueTarget  BlockID
	FalseTarget BlockID

	CallTarget  string // empty for indirect calls, resolved via Ref1
	CallArgs    []InstrRef
	IsTailCall  bool

	MemVolatile    bool
	MemNonTemporal bool
	MemOrder       MemOrder

	ResultType *types.Type
	FromType   *types.Type

	ImmInt   int64
	ImmUint  uint64
	ImmFloat float64
	ImmKind  ImmKind

	BitOffset int
	BitSize   int
}

// ImmKind distinguishes which field of an immediate Payload is populated.
type ImmKind int

const (
	ImmNone ImmKind = iota
	ImmInt64
	ImmUint64
	ImmFloat64
	ImmString
)
