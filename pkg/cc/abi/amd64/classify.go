package amd64

import (
	"github.com/kefir-go/kefirgo/pkg/cc/ccerr"
	"github.com/kefir-go/kefirgo/pkg/cc/types"
)

// Class is an eightbyte's SysV classification.
type Class int

const (
	NoClass Class = iota
	Integer
	SSE
	SSEUp
	X87
	X87Up
	ComplexX87
	Memory
)

// merge implements the SysV classification merge rule (§3.2.3 step 4 of
// the real ABI document): MEMORY is contagious, INTEGER always wins over
// SSE, X87/ComplexX87 never merge with anything else, and otherwise SSE
// wins.
func merge(a, b Class) Class {
	if a == b {
		return a
	}
	if a == NoClass {
		return b
	}
	if b == NoClass {
		return a
	}
	if a == Memory || b == Memory {
		return Memory
	}
	if a == Integer || b == Integer {
		return Integer
	}
	if a == X87 || a == X87Up || a == ComplexX87 || b == X87 || b == X87Up || b == ComplexX87 {
		return Memory
	}
	return SSE
}

// classifyType returns one eightbyte class per 8-byte chunk of t, with
// the post-merge SSEUp-without-SSE cleanup step already applied.
func classifyType(t *types.Type, idx int) []Class {
	size, _ := Layout(t, idx)
	eightbytes := int((size + 7) / 8)
	if eightbytes == 0 {
		eightbytes = 1
	}
	classes := make([]Class, eightbytes)

	e := t.Entries[idx]
	switch e.Code {
	case types.Void:
		return nil
	case types.Float32, types.Float64:
		classes[0] = SSE
	case types.LongDouble:
		if eightbytes >= 2 {
			classes[0] = X87
			classes[1] = X87Up
		} else {
			classes[0] = X87
		}
	case types.ComplexFloat32, types.ComplexFloat64:
		for i := range classes {
			classes[i] = SSE
		}
	case types.ComplexLongDouble:
		for i := range classes {
			classes[i] = ComplexX87
		}
	case types.Struct, types.Union:
		for i := range classes {
			classes[i] = NoClass
		}
		for _, child := range t.Children(idx) {
			childClasses := classifyType(t, child)
			childOffset := memberByteOffset(t, idx, child)
			for i, c := range childClasses {
				ebIdx := (int(childOffset) + i*8) / 8
				if ebIdx < len(classes) {
					classes[ebIdx] = merge(classes[ebIdx], c)
				}
			}
		}
		if size > 32 {
			for i := range classes {
				classes[i] = Memory
			}
		}
	case types.Array:
		elemClasses := classifyType(t, t.ChildIndex(idx, 0))
		elemSize, _ := Layout(t, t.ChildIndex(idx, 0))
		for i := range classes {
			classes[i] = NoClass
		}
		for n := 0; n < e.Count; n++ {
			off := uint64(n) * elemSize
			for i, c := range elemClasses {
				ebIdx := int(off+uint64(i)*8) / 8
				if ebIdx < len(classes) {
					classes[ebIdx] = merge(classes[ebIdx], c)
				}
			}
		}
		if size > 32 {
			for i := range classes {
				classes[i] = Memory
			}
		}
	default:
		for i := range classes {
			classes[i] = Integer
		}
	}

	for i, c := range classes {
		if c == SSEUp && (i == 0 || classes[i-1] != SSE) {
			classes[i] = SSE
		}
	}
	return classes
}

func memberByteOffset(t *types.Type, parent, child int) uint64 {
	var offset uint64
	for _, c := range t.Children(parent) {
		sz, al := Layout(t, c)
		if al > 0 {
			offset = align(offset, al)
		}
		if c == child {
			return offset
		}
		offset += sz
	}
	return offset
}

func align(v, a uint64) uint64 {
	if a == 0 {
		return v
	}
	return (v + a - 1) / a * a
}

// Layout returns the size and natural alignment, in bytes, of the type
// descriptor entry at idx.
func Layout(t *types.Type, idx int) (size, alignment uint64) {
	e := t.Entries[idx]
	if e.Alignment != 0 {
		alignment = e.Alignment
	}
	switch e.Code {
	case types.Void:
		return 0, 1
	case types.Bool, types.Int8, types.UInt8:
		return 1, orDefault(alignment, 1)
	case types.Int16, types.UInt16:
		return 2, orDefault(alignment, 2)
	case types.Int32, types.UInt32, types.Float32:
		return 4, orDefault(alignment, 4)
	case types.Int64, types.UInt64, types.Float64, types.Pointer:
		return 8, orDefault(alignment, 8)
	case types.LongDouble:
		return 16, orDefault(alignment, 16)
	case types.ComplexFloat32:
		return 8, orDefault(alignment, 4)
	case types.ComplexFloat64:
		return 16, orDefault(alignment, 8)
	case types.ComplexLongDouble:
		return 32, orDefault(alignment, 16)
	case types.BitIntSigned, types.BitIntUnsigned:
		bytes := uint64((e.Width + 7) / 8)
		return bytes, orDefault(alignment, minUint64(bytes, 8))
	case types.Array:
		elemSize, elemAlign := Layout(t, idx+1)
		return uint64(e.Count) * elemSize, orDefault(alignment, elemAlign)
	case types.Struct:
		var sz, al uint64
		for _, c := range t.Children(idx) {
			csz, cal := Layout(t, c)
			al = maxUint64(al, cal)
			sz = align(sz, cal) + csz
		}
		sz = align(sz, al)
		return sz, orDefault(alignment, al)
	case types.Union:
		var sz, al uint64
		for _, c := range t.Children(idx) {
			csz, cal := Layout(t, c)
			sz = maxUint64(sz, csz)
			al = maxUint64(al, cal)
		}
		sz = align(sz, al)
		return sz, orDefault(alignment, al)
	default:
		return 8, orDefault(alignment, 8)
	}
}

func orDefault(v, def uint64) uint64 {
	if v == 0 {
		return def
	}
	return v
}

func minUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func maxUint64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

// MustClassify panics-free wrapper callers use when a type is already
// known well-formed; kept separate from classifyType so the recursive
// helper above never has to thread an error return through every case.
func MustClassify(t *types.Type, idx int) []Class { return classifyType(t, idx) }

var errUnsupportedVaListReturn = ccerr.New(ccerr.NotSupported, "returning a va_list by value is not supported")
