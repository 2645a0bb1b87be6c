package types

import "testing"

func TestPromote(t *testing.T) {
	cases := []struct {
		name string
		in   Code
		want Code
	}{
		{"bool", Bool, Int32},
		{"int8", Int8, Int32},
		{"uint16", UInt16, Int32},
		{"int32 unchanged", Int32, Int32},
		{"uint32 unchanged", UInt32, UInt32},
		{"int64 unchanged", Int64, Int64},
		{"bitint signed untouched", BitIntSigned, BitIntSigned},
		{"bitint unsigned untouched", BitIntUnsigned, BitIntUnsigned},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Promote(c.in, 0, Void, false)
			if got != c.want {
				t.Errorf("Promote(%v) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}

func TestPromoteBitfield(t *testing.T) {
	if got := Promote(Int32, 10, Void, true); got != Int32 {
		t.Errorf("narrow bitfield promotes to %v, want Int32", got)
	}
	if got := Promote(UInt32, 32, UInt32, true); got != UInt32 {
		t.Errorf("full-width unsigned bitfield promotes to %v, want UInt32", got)
	}
	if got := Promote(Int32, 32, Int32, true); got != Int32 {
		t.Errorf("full-width signed bitfield promotes to %v, want Int32", got)
	}
	if got := Promote(Int64, 33, Int64, true); got != Int64 {
		t.Errorf("33-bit bitfield in a signed long holder promotes to %v, want Int64", got)
	}
	if got := Promote(UInt64, 40, UInt64, true); got != UInt64 {
		t.Errorf("40-bit bitfield in an unsigned long holder promotes to %v, want UInt64", got)
	}
}

func TestUsualArithmeticConversions(t *testing.T) {
	cases := []struct {
		name     string
		t1, t2   Code
		want     Code
	}{
		{"same rank same sign", Int32, Int32, Int32},
		{"wider signed wins", Int64, Int32, Int64},
		{"unsigned outranks signed same width", UInt32, Int32, UInt32},
		{"signed represents unsigned: int64 vs uint32", Int64, UInt32, Int64},
		{"float beats int", Float64, Int32, Float64},
		{"double beats float", Float64, Float32, Float64},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := UsualArithmeticConversions(c.t1, c.t2); got != c.want {
				t.Errorf("UsualArithmeticConversions(%v, %v) = %v, want %v", c.t1, c.t2, got, c.want)
			}
			if got := UsualArithmeticConversions(c.t2, c.t1); got != c.want {
				t.Errorf("UsualArithmeticConversions(%v, %v) = %v, want %v (commuted)", c.t2, c.t1, got, c.want)
			}
		})
	}
}

func TestOverflowAdd(t *testing.T) {
	res, overflowed := OverflowAdd(0x7FFFFFFF, 1, 32, true)
	if !overflowed {
		t.Error("INT32_MAX + 1 should overflow")
	}
	if res != 0x80000000 {
		t.Errorf("result = %#x, want %#x (wraparound bits still written)", res, 0x80000000)
	}

	res, overflowed = OverflowAdd(1, 1, 32, true)
	if overflowed {
		t.Error("1 + 1 should not overflow")
	}
	if res != 2 {
		t.Errorf("result = %d, want 2", res)
	}
}

func TestOverflowMulUnsigned(t *testing.T) {
	_, overflowed := OverflowMul(0xFFFFFFFF, 2, 32, false)
	if !overflowed {
		t.Error("UINT32_MAX * 2 should overflow")
	}
}
