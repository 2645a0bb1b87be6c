package codegen

import "github.com/kefir-go/kefirgo/pkg/cc/asmcmp"

// TLSSequenceKind selects which of the four SysV thread-local access
// sequences a reference to a TLS symbol lowers to.
type TLSSequenceKind int

const (
	TLSEmulated TLSSequenceKind = iota
	TLSGeneralDynamic
	TLSInitialExec
	TLSLocalExec
)

// SelectTLSSequence picks the access sequence for a TLS symbol, following
// the same decision kefir's code generator makes: emulated TLS is forced by
// configuration regardless of everything else; otherwise, a symbol defined
// in this translation unit and not position-independent uses the fast
// local-exec model, an external symbol under PIC uses initial-exec, and an
// external symbol without PIC still needs the fully general
// dynamic sequence because the compiler can't assume the symbol resolves
// inside the same module at link time.
func SelectTLSSequence(cfg Config, external, positionIndependent bool) TLSSequenceKind {
	if cfg.EmulatedTLS {
		return TLSEmulated
	}
	if !external && !positionIndependent {
		return TLSLocalExec
	}
	if external && positionIndependent {
		return TLSInitialExec
	}
	return TLSGeneralDynamic
}

// EmitTLSAddress emits the instruction sequence computing the runtime
// address of a thread-local symbol into dst, for the given sequence kind.
func EmitTLSAddress(s *asmcmp.Stream, kind TLSSequenceKind, symbol string, dst asmcmp.Operand) {
	switch kind {
	case TLSLocalExec:
		s.Emit("mov", dst, asmcmp.Lbl(symbol, asmcmp.RelocTPOff))
		s.Emit("add", dst, asmcmp.SegmentPrefixed("fs", asmcmp.Operand{}, 0, 8))
	case TLSInitialExec:
		s.Emit("mov", dst, asmcmp.Lbl(symbol, asmcmp.RelocGOTTPOff))
		s.Emit("add", dst, asmcmp.SegmentPrefixed("fs", asmcmp.Operand{}, 0, 8))
	case TLSGeneralDynamic:
		s.Emit("lea", dst, asmcmp.Lbl(symbol, asmcmp.RelocTLSGD))
		s.Emit("call", asmcmp.Lbl("__tls_get_addr", asmcmp.RelocPLT))
	case TLSEmulated:
		s.Emit("lea", dst, asmcmp.Lbl("__emutls_v."+symbol, asmcmp.RelocNone))
		s.Emit("call", asmcmp.Lbl("__emutls_get_address", asmcmp.RelocPLT))
	}
}
