// Package optir implements the block-structured SSA-ish optimizer IR: the
// opcode table is declared as a const enum plus a parallel metadata array,
// the same enum-plus-catalog split the teacher uses for its Z80 instruction
// set (pkg/inst/instruction.go + catalog.go), generalized here to carry a
// payload-shape tag instead of an encoding byte sequence.
package optir

// Opcode identifies the operation an Instruction performs.
type Opcode uint16

const (
	OpInvalid Opcode = iota

	// Integer arithmetic, widths folded into the instruction's declared
	// result type rather than the opcode itself.
	OpIntAdd
	OpIntSub
	OpIntMul
	OpIntMulSigned
	OpIntDivSigned
	OpIntDivUnsigned
	OpIntModSigned
	OpIntModUnsigned
	OpIntAnd
	OpIntOr
	OpIntXor
	OpIntShl
	OpIntShrSigned
	OpIntShrUnsigned
	OpIntNeg
	OpIntNot

	// Bit-precise ("BitInt") arithmetic: payload carries an explicit width.
	OpBitIntAdd
	OpBitIntSub
	OpBitIntMul
	OpBitIntNeg
	OpBitIntAnd
	OpBitIntOr
	OpBitIntXor

	// Overflow-checked arithmetic (spec property 6): result plus an
	// i1 overflow flag, operands carried in the OverflowArith payload.
	OpOverflowAdd
	OpOverflowSub
	OpOverflowMul

	// Float / complex arithmetic.
	OpFloatAdd
	OpFloatSub
	OpFloatMul
	OpFloatDiv
	OpFloatNeg
	OpComplexAdd
	OpComplexSub
	OpComplexMul
	OpComplexDiv

	// Compares, producing an i1. Signed/unsigned and ordered-vs-unsigned
	// ("above"/"below") variants are distinct opcodes because their
	// lowering and their compare-branch fusion rewrite differ.
	OpIntEquals
	OpIntNotEquals
	OpIntGreater
	OpIntGreaterOrEquals
	OpIntLesser
	OpIntLesserOrEquals
	OpIntAbove
	OpIntAboveOrEquals
	OpIntBelow
	OpIntBelowOrEquals
	OpBoolNot

	// Conversions.
	OpIntToFloat
	OpFloatToInt
	OpIntTruncate
	OpIntExtendSigned
	OpIntExtendUnsigned
	OpBitcast

	// Memory.
	OpLoadMem
	OpStoreMem
	OpAtomicLoad
	OpAtomicStore
	OpAtomicXchg
	OpAtomicCmpxchg
	OpAtomicFetchAdd

	// Calls and stack allocation.
	OpCallDirect
	OpCallIndirect
	OpAlloca
	OpScopePush
	OpScopePop

	// Varargs.
	OpVarargStart
	OpVarargGet
	OpVarargEnd
	OpVarargCopy

	// SSA bookkeeping.
	OpPhi
	OpImmediate

	// Terminators (IsControl == true).
	OpJump
	OpIndirectJump
	OpBranch
	OpCompareBranch
	OpReturn

	OpInlineAsm

	opcodeCount
)

// OpcodeInfo is the metadata every Opcode carries, analogous to the
// teacher's per-instruction catalog entry (mnemonic/cycles/encoding), here
// describing control-flow-ness and the payload shape the builder must fill
// in.
type OpcodeInfo struct {
	Name      string
	IsControl bool
	Payload   PayloadKind
}

var catalog [opcodeCount]OpcodeInfo

func reg(op Opcode, name string, isControl bool, kind PayloadKind) {
	catalog[op] = OpcodeInfo{Name: name, IsControl: isControl, Payload: kind}
}

func init() {
	reg(OpIntAdd, "int_add", false, PayloadRef2)
	reg(OpIntSub, "int_sub", false, PayloadRef2)
	reg(OpIntMul, "int_mul", false, PayloadRef2)
	reg(OpIntMulSigned, "int_mul_signed", false, PayloadRef2)
	reg(OpIntDivSigned, "int_div_signed", false, PayloadRef2)
	reg(OpIntDivUnsigned, "int_div_unsigned", false, PayloadRef2)
	reg(OpIntModSigned, "int_mod_signed", false, PayloadRef2)
	reg(OpIntModUnsigned, "int_mod_unsigned", false, PayloadRef2)
	reg(OpIntAnd, "int_and", false, PayloadRef2)
	reg(OpIntOr, "int_or", false, PayloadRef2)
	reg(OpIntXor, "int_xor", false, PayloadRef2)
	reg(OpIntShl, "int_shl", false, PayloadRef2)
	reg(OpIntShrSigned, "int_shr_signed", false, PayloadRef2)
	reg(OpIntShrUnsigned, "int_shr_unsigned", false, PayloadRef2)
	reg(OpIntNeg, "int_neg", false, PayloadRef1)
	reg(OpIntNot, "int_not", false, PayloadRef1)

	reg(OpBitIntAdd, "bitint_add", false, PayloadBitIntRef2)
	reg(OpBitIntSub, "bitint_sub", false, PayloadBitIntRef2)
	reg(OpBitIntMul, "bitint_mul", false, PayloadBitIntRef2)
	reg(OpBitIntNeg, "bitint_neg", false, PayloadBitIntRef1)
	reg(OpBitIntAnd, "bitint_and", false, PayloadBitIntRef2)
	reg(OpBitIntOr, "bitint_or", false, PayloadBitIntRef2)
	reg(OpBitIntXor, "bitint_xor", false, PayloadBitIntRef2)

	reg(OpOverflowAdd, "overflow_add", false, PayloadOverflowArith)
	reg(OpOverflowSub, "overflow_sub", false, PayloadOverflowArith)
	reg(OpOverflowMul, "overflow_mul", false, PayloadOverflowArith)

	reg(OpFloatAdd, "float_add", false, PayloadRef2)
	reg(OpFloatSub, "float_sub", false, PayloadRef2)
	reg(OpFloatMul, "float_mul", false, PayloadRef2)
	reg(OpFloatDiv, "float_div", false, PayloadRef2)
	reg(OpFloatNeg, "float_neg", false, PayloadRef1)
	reg(OpComplexAdd, "complex_add", false, PayloadRef2)
	reg(OpComplexSub, "complex_sub", false, PayloadRef2)
	reg(OpComplexMul, "complex_mul", false, PayloadRef2)
	reg(OpComplexDiv, "complex_div", false, PayloadRef2)

	reg(OpIntEquals, "int_equals", false, PayloadCompareRef2)
	reg(OpIntNotEquals, "int_not_equals", false, PayloadCompareRef2)
	reg(OpIntGreater, "int_greater", false, PayloadCompareRef2)
	reg(OpIntGreaterOrEquals, "int_greater_or_equals", false, PayloadCompareRef2)
	reg(OpIntLesser, "int_lesser", false, PayloadCompareRef2)
	reg(OpIntLesserOrEquals, "int_lesser_or_equals", false, PayloadCompareRef2)
	reg(OpIntAbove, "int_above", false, PayloadCompareRef2)
	reg(OpIntAboveOrEquals, "int_above_or_equals", false, PayloadCompareRef2)
	reg(OpIntBelow, "int_below", false, PayloadCompareRef2)
	reg(OpIntBelowOrEquals, "int_below_or_equals", false, PayloadCompareRef2)
	reg(OpBoolNot, "bool_not", false, PayloadRef1)

	reg(OpIntToFloat, "int_to_float", false, PayloadTypedRef2)
	reg(OpFloatToInt, "float_to_int", false, PayloadTypedRef2)
	reg(OpIntTruncate, "int_truncate", false, PayloadTypedRef2)
	reg(OpIntExtendSigned, "int_extend_signed", false, PayloadTypedRef2)
	reg(OpIntExtendUnsigned, "int_extend_unsigned", false, PayloadTypedRef2)
	reg(OpBitcast, "bitcast", false, PayloadTypedRef2)

	reg(OpLoadMem, "load_mem", false, PayloadLoadMem)
	reg(OpStoreMem, "store_mem", false, PayloadStoreMem)
	reg(OpAtomicLoad, "atomic_load", false, PayloadAtomicOp)
	reg(OpAtomicStore, "atomic_store", false, PayloadAtomicOp)
	reg(OpAtomicXchg, "atomic_xchg", false, PayloadAtomicOp)
	reg(OpAtomicCmpxchg, "atomic_cmpxchg", false, PayloadAtomicOp)
	reg(OpAtomicFetchAdd, "atomic_fetch_add", false, PayloadAtomicOp)

	reg(OpCallDirect, "call_direct", false, PayloadCallRef)
	reg(OpCallIndirect, "call_indirect", false, PayloadCallRef)
	reg(OpAlloca, "alloca", false, PayloadImmediate)
	reg(OpScopePush, "scope_push", false, PayloadNone)
	reg(OpScopePop, "scope_pop", false, PayloadNone)

	reg(OpVarargStart, "vararg_start", false, PayloadRef1)
	reg(OpVarargGet, "vararg_get", false, PayloadTypedRef2)
	reg(OpVarargEnd, "vararg_end", false, PayloadRef1)
	reg(OpVarargCopy, "vararg_copy", false, PayloadRef2)

	reg(OpPhi, "phi", false, PayloadNone)
	reg(OpImmediate, "immediate", false, PayloadImmediate)

	reg(OpJump, "jump", true, PayloadBranch)
	reg(OpIndirectJump, "indirect_jump", true, PayloadRef1)
	reg(OpBranch, "branch", true, PayloadBranch)
	reg(OpCompareBranch, "compare_branch", true, PayloadCompareBranch)
	reg(OpReturn, "return", true, PayloadRef1)

	reg(OpInlineAsm, "inline_asm", false, PayloadImmediate)
}

// Name returns the opcode's canonical lowercase name.
func (o Opcode) Name() string { return catalog[o].Name }

// IsControl reports whether o is a block terminator.
func (o Opcode) IsControl() bool { return catalog[o].IsControl }

// PayloadKind reports the Payload shape instructions of this opcode use.
func (o Opcode) PayloadKind() PayloadKind { return catalog[o].Payload }
