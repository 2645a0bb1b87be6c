package amd64

import "github.com/kefir-go/kefirgo/pkg/cc/types"

// vaListTypeName is the struct name this module's (front-end-less) fixture
// builders use to mark a type descriptor as the SysV va_list layout: an
// array of one single-member-initialized struct, per the ABI's register
// save area bookkeeping structure. ClassifyReturn refuses to place a
// va_list by value because the reference ABI explicitly leaves that case
// undefined for a return (see SPEC_FULL.md's Open Question resolution).
const vaListTypeName = "__builtin_va_list"

func isVaListType(t *types.Type) bool {
	return len(t.Entries) > 0 && t.Entries[0].Name == vaListTypeName
}

// Location is where one eightbyte (or a whole MEMORY-class argument) ends
// up: a GP register, an SSE register, or a caller-stack slot.
type Location struct {
	InGP     bool
	GP       GPReg
	InSSE    bool
	SSE      SSEReg
	OnStack  bool
	StackOff uint64
}

// ParamPlacement is the full placement of one source-level parameter,
// potentially spanning multiple eightbytes (a two-eightbyte struct
// occupies two Locations).
type ParamPlacement struct {
	Locations []Location
	Memory    bool // classified MEMORY: passed wholly on the stack, address unchanged
}

// ReturnPlacement is the placement of a function's return value.
type ReturnPlacement struct {
	Locations         []Location
	ImplicitParameter bool // MEMORY return: caller passes a hidden pointer in RDI, callee echoes it back in RAX
}

// allocator tracks the GP/SSE/stack cursors while placing a parameter list,
// mirroring kefir's abi_amd64_payload bookkeeping.
type allocator struct {
	gpIdx, sseIdx int
	stackOff      uint64
}

func (a *allocator) place(classes []Class) ([]Location, bool) {
	neededGP, neededSSE := 0, 0
	for _, c := range classes {
		switch c {
		case Integer:
			neededGP++
		case SSE:
			neededSSE++
		case Memory, X87, X87Up, ComplexX87:
			return a.placeOnStack(classes), false
		}
	}
	if a.gpIdx+neededGP > len(IntegerParamOrder) || a.sseIdx+neededSSE > len(SSEParamOrder) {
		return a.placeOnStack(classes), false
	}
	locs := make([]Location, len(classes))
	for i, c := range classes {
		switch c {
		case Integer:
			locs[i] = Location{InGP: true, GP: IntegerParamOrder[a.gpIdx]}
			a.gpIdx++
		case SSE:
			locs[i] = Location{InSSE: true, SSE: SSEParamOrder[a.sseIdx]}
			a.sseIdx++
		case NoClass:
			// padding eightbyte inside a struct; no register consumed
		}
	}
	return locs, true
}

func (a *allocator) placeOnStack(classes []Class) []Location {
	locs := make([]Location, len(classes))
	for i := range classes {
		locs[i] = Location{OnStack: true, StackOff: a.stackOff}
		a.stackOff += 8
	}
	return locs
}

// ClassifyParameters places each parameter type in order, applying the
// SysV eightbyte classification and register-pool exhaustion rule: a
// multi-eightbyte aggregate that doesn't fully fit in the remaining
// registers is demoted wholesale to the stack, even if some of its
// eightbytes individually would have fit.
func ClassifyParameters(t *types.Type, paramIdx []int) []ParamPlacement {
	a := &allocator{}
	out := make([]ParamPlacement, len(paramIdx))
	for i, idx := range paramIdx {
		classes := classifyType(t, idx)
		locs, fit := a.place(classes)
		out[i] = ParamPlacement{Locations: locs, Memory: !fit}
	}
	return out
}

// ClassifyReturn places a function's return value. A va_list return type
// is rejected as not supported (this module's Open Question resolution).
// A return type with a MEMORY eightbyte yields an implicit hidden first
// parameter: the caller provides the destination
// address in RDI and the callee hands it back unchanged in RAX.
func ClassifyReturn(t *types.Type) (ReturnPlacement, error) {
	if isVaListType(t) {
		return ReturnPlacement{}, errUnsupportedVaListReturn
	}
	classes := classifyType(t, 0)
	if len(classes) == 0 {
		return ReturnPlacement{}, nil
	}
	for _, c := range classes {
		if c == Memory {
			return ReturnPlacement{ImplicitParameter: true}, nil
		}
	}
	gpOrder := []GPReg{RAX, RDX}
	sseOrder := []SSEReg{0, 1}
	var gpIdx, sseIdx int
	locs := make([]Location, len(classes))
	for i, c := range classes {
		switch c {
		case Integer:
			locs[i] = Location{InGP: true, GP: gpOrder[gpIdx]}
			gpIdx++
		case SSE:
			locs[i] = Location{InSSE: true, SSE: sseOrder[sseIdx]}
			sseIdx++
		case X87:
			locs[i] = Location{} // st0, handled specially by the codegen x87 path
		case X87Up, ComplexX87:
			locs[i] = Location{} // st0/st1 pair
		}
	}
	return ReturnPlacement{Locations: locs}, nil
}
