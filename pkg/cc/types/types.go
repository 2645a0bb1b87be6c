// Package types implements the compiler's type descriptor tree: a flat,
// pre-order-encoded representation of C types (scalars, pointers, arrays,
// structs/unions, functions) grounded on kefir's source/ir/type.c layout.
package types

// Code enumerates the scalar and aggregate typecodes a descriptor entry can
// carry.
type Code int

const (
	Void Code = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	UInt8
	UInt16
	UInt32
	UInt64
	Float32
	Float64
	LongDouble
	ComplexFloat32
	ComplexFloat64
	ComplexLongDouble
	BitIntSigned
	BitIntUnsigned
	Pointer
	Array
	Struct
	Union
	Function
)

// IsInteger reports whether c is one of the fixed-width or bit-precise
// integer typecodes.
func (c Code) IsInteger() bool {
	switch c {
	case Bool, Int8, Int16, Int32, Int64, UInt8, UInt16, UInt32, UInt64, BitIntSigned, BitIntUnsigned:
		return true
	}
	return false
}

// IsFloat reports whether c is a real or complex floating typecode.
func (c Code) IsFloat() bool {
	switch c {
	case Float32, Float64, LongDouble, ComplexFloat32, ComplexFloat64, ComplexLongDouble:
		return true
	}
	return false
}

// IsSigned reports whether c is a signed integer typecode (bit-precise
// width aside, which callers must track separately via Entry.Width).
func (c Code) IsSigned() bool {
	switch c {
	case Int8, Int16, Int32, Int64, BitIntSigned:
		return true
	}
	return false
}

// Entry is one node of the flattened, pre-order type tree. Struct/union
// entries are followed by exactly Count flattened children; array entries
// by exactly one.
type Entry struct {
	Code      Code
	Alignment uint64 // 0 means natural alignment
	Count     int    // array element count, or struct/union member count
	Width     int    // bit-precise integer width, 0 for fixed-width types
	Name      string // struct/union/member name, for debug info only
}

// Type is a flat pre-order encoding of a (possibly recursive, but never
// cyclic at the value level — recursion only via Pointer) C type.
type Type struct {
	Entries []Entry
}

// New creates a Type whose first entry is e.
func New(e Entry) *Type { return &Type{Entries: []Entry{e}} }

// Length returns the number of entries spanned starting at idx, including
// all of idx's flattened children.
func (t *Type) Length(idx int) int {
	if idx < 0 || idx >= len(t.Entries) {
		return 0
	}
	e := t.Entries[idx]
	switch e.Code {
	case Struct, Union:
		total := 1
		pos := idx + 1
		for i := 0; i < e.Count; i++ {
			l := t.Length(pos)
			total += l
			pos += l
		}
		return total
	case Array:
		return 1 + t.Length(idx+1)
	default:
		return 1
	}
}

// Children returns the indices of idx's immediate children (top-level
// members for struct/union, the single element type for array).
func (t *Type) Children(idx int) []int {
	if idx < 0 || idx >= len(t.Entries) {
		return nil
	}
	e := t.Entries[idx]
	switch e.Code {
	case Struct, Union:
		out := make([]int, 0, e.Count)
		pos := idx + 1
		for i := 0; i < e.Count; i++ {
			out = append(out, pos)
			pos += t.Length(pos)
		}
		return out
	case Array:
		return []int{idx + 1}
	default:
		return nil
	}
}

// ChildIndex returns the index of idx's n-th immediate child, or -1 if out
// of range.
func (t *Type) ChildIndex(idx, n int) int {
	children := t.Children(idx)
	if n < 0 || n >= len(children) {
		return -1
	}
	return children[n]
}

// SlotsOf returns the number of scalar leaves rooted at idx — the unit IR
// load/store operations are expressed in terms of.
func (t *Type) SlotsOf(idx int) int {
	if idx < 0 || idx >= len(t.Entries) {
		return 0
	}
	e := t.Entries[idx]
	switch e.Code {
	case Struct, Union:
		total := 0
		for _, c := range t.Children(idx) {
			total += t.SlotsOf(c)
		}
		return total
	case Array:
		return e.Count * t.SlotsOf(idx+1)
	default:
		return 1
	}
}

// SlotOf returns the scalar-slot prefix sum for idx's n-th child — the
// offset, in slots, of that child's first leaf.
func (t *Type) SlotOf(idx, n int) int {
	children := t.Children(idx)
	sum := 0
	for i := 0; i < n && i < len(children); i++ {
		sum += t.SlotsOf(children[i])
	}
	return sum
}

// Visitor dispatches over an Entry's Code, mirroring the teacher's
// table-of-function-pointers pattern as a Go interface instead of raw
// function pointers (kefir itself does this via a visitor vtable).
type Visitor interface {
	VisitVoid(t *Type, idx int)
	VisitInt(t *Type, idx int)
	VisitFloat(t *Type, idx int)
	VisitPointer(t *Type, idx int)
	VisitArray(t *Type, idx int)
	VisitStruct(t *Type, idx int)
	VisitUnion(t *Type, idx int)
	VisitFunction(t *Type, idx int)
}

// Walk dispatches Entries[idx] to the matching Visitor method.
func Walk(t *Type, idx int, v Visitor) {
	if idx < 0 || idx >= len(t.Entries) {
		return
	}
	switch t.Entries[idx].Code {
	case Void:
		v.VisitVoid(t, idx)
	case Bool, Int8, Int16, Int32, Int64, UInt8, UInt16, UInt32, UInt64, BitIntSigned, BitIntUnsigned:
		v.VisitInt(t, idx)
	case Float32, Float64, LongDouble, ComplexFloat32, ComplexFloat64, ComplexLongDouble:
		v.VisitFloat(t, idx)
	case Pointer:
		v.VisitPointer(t, idx)
	case Array:
		v.VisitArray(t, idx)
	case Struct:
		v.VisitStruct(t, idx)
	case Union:
		v.VisitUnion(t, idx)
	case Function:
		v.VisitFunction(t, idx)
	}
}
