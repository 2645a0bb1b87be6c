package xasmgen

import (
	"fmt"
	"strconv"

	"github.com/kefir-go/kefirgo/pkg/cc/asmcmp"
)

// IntelNoPrefix emits Intel-syntax assembly with bare register names
// (rax, not %rax) and no $ immediate sigil — NASM's default dialect.
type IntelNoPrefix struct{ baseGenerator }

func NewIntelNoPrefix() *IntelNoPrefix {
	g := &IntelNoPrefix{}
	g.baseGenerator = newBase(g.operand, func(m string) string { return m })
	return g
}

func (g *IntelNoPrefix) operand(op asmcmp.Operand) string { return formatIntel(op, "") }

// IntelPrefix is IntelNoPrefix with a leading `%` sigil on physical
// register names, matching MASM/clang's -masm=intel-with-prefix-like
// variant.
type IntelPrefix struct{ baseGenerator }

func NewIntelPrefix() *IntelPrefix {
	g := &IntelPrefix{}
	g.baseGenerator = newBase(g.operand, func(m string) string { return m })
	return g
}

func (g *IntelPrefix) operand(op asmcmp.Operand) string { return formatIntel(op, "%") }

func formatIntel(op asmcmp.Operand, regSigil string) string {
	switch op.Kind {
	case asmcmp.OperandPhysicalGP:
		return regSigil + op.PhysGP.String()
	case asmcmp.OperandPhysicalSSE:
		return regSigil + op.PhysSSE.String()
	case asmcmp.OperandVirtual:
		return fmt.Sprintf("%%v%d", int(op.Virtual))
	case asmcmp.OperandImmediateS:
		return strconv.FormatInt(op.ImmS, 10)
	case asmcmp.OperandImmediateU:
		return strconv.FormatUint(op.ImmU, 10)
	case asmcmp.OperandLabel:
		return op.Label + tlsRelocSuffixIntel(op.Reloc)
	case asmcmp.OperandRIPRelative:
		return fmt.Sprintf("[rip + %s]", op.Label)
	case asmcmp.OperandIndirect:
		width := widthKeyword(op.Width)
		base := ""
		if op.Base != nil {
			base = formatIntel(*op.Base, regSigil)
		}
		seg := ""
		if op.SegPrefix != "" {
			seg = op.SegPrefix + ":"
		}
		if op.Disp == 0 {
			return fmt.Sprintf("%s %s[%s]", width, seg, base)
		}
		sign := "+"
		disp := op.Disp
		if disp < 0 {
			sign = "-"
			disp = -disp
		}
		return fmt.Sprintf("%s %s[%s %s %d]", width, seg, base, sign, disp)
	default:
		return "?"
	}
}

func widthKeyword(width int) string {
	switch width {
	case 1:
		return "byte"
	case 2:
		return "word"
	case 4:
		return "dword"
	case 8:
		return "qword"
	default:
		return "qword"
	}
}

func tlsRelocSuffixIntel(r asmcmp.RelocKind) string {
	switch r {
	case asmcmp.RelocPLT:
		return "@plt"
	case asmcmp.RelocGOTPCRel:
		return "@gotpcrel"
	case asmcmp.RelocTPOff:
		return "@tpoff"
	case asmcmp.RelocTLSGD:
		return "@tlsgd"
	case asmcmp.RelocGOTTPOff:
		return "@gottpoff"
	default:
		return ""
	}
}

// ATT emits AT&T-syntax assembly: `%`-prefixed registers, `$`-prefixed
// immediates, reversed operand order versus Intel, and `(base)` indirect
// addressing.
type ATT struct{ baseGenerator }

func NewATT() *ATT {
	g := &ATT{}
	g.baseGenerator = newBase(g.operand, attMnemonic)
	return g
}

func attMnemonic(m string) string { return m }

func (g *ATT) Instruction(mnemonic string, operands ...asmcmp.Operand) {
	reversed := make([]asmcmp.Operand, len(operands))
	for i, op := range operands {
		reversed[len(operands)-1-i] = op
	}
	g.baseGenerator.Instruction(attSuffix(mnemonic, operands), reversed...)
}

// attSuffix appends the AT&T size suffix whenever an operand is a memory
// reference of width 1, 2, 4 or 8. AT&T syntax needs it when the width
// can't be inferred from a register operand (a memory destination with an
// immediate source); elsewhere it is redundant but valid.
func attSuffix(mnemonic string, operands []asmcmp.Operand) string {
	for _, op := range operands {
		if op.Kind == asmcmp.OperandIndirect {
			switch op.Width {
			case 1:
				return mnemonic + "b"
			case 2:
				return mnemonic + "w"
			case 4:
				return mnemonic + "l"
			case 8:
				return mnemonic + "q"
			}
		}
	}
	return mnemonic
}

func (g *ATT) operand(op asmcmp.Operand) string {
	switch op.Kind {
	case asmcmp.OperandPhysicalGP:
		return "%" + op.PhysGP.String()
	case asmcmp.OperandPhysicalSSE:
		return "%" + op.PhysSSE.String()
	case asmcmp.OperandVirtual:
		return fmt.Sprintf("%%v%d", int(op.Virtual))
	case asmcmp.OperandImmediateS:
		return "$" + strconv.FormatInt(op.ImmS, 10)
	case asmcmp.OperandImmediateU:
		return "$" + strconv.FormatUint(op.ImmU, 10)
	case asmcmp.OperandLabel:
		return op.Label + tlsRelocSuffixATT(op.Reloc) + "(%rip)"
	case asmcmp.OperandRIPRelative:
		return fmt.Sprintf("%s(%%rip)", op.Label)
	case asmcmp.OperandIndirect:
		seg := ""
		if op.SegPrefix != "" {
			seg = "%" + op.SegPrefix + ":"
		}
		base := ""
		if op.Base != nil {
			base = g.operand(*op.Base)
		}
		if op.Disp == 0 {
			return fmt.Sprintf("%s(%s)", seg, base)
		}
		return fmt.Sprintf("%s%d(%s)", seg, op.Disp, base)
	default:
		return "?"
	}
}

func tlsRelocSuffixATT(r asmcmp.RelocKind) string {
	switch r {
	case asmcmp.RelocPLT:
		return "@PLT"
	case asmcmp.RelocGOTPCRel:
		return "@GOTPCREL"
	case asmcmp.RelocTPOff:
		return "@TPOFF"
	case asmcmp.RelocTLSGD:
		return "@TLSGD"
	case asmcmp.RelocGOTTPOff:
		return "@GOTTPOFF"
	default:
		return ""
	}
}
