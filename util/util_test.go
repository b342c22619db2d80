package util

import (
	"bytes"
	"reflect"
	"testing"
)

func TestFormatArray(t *testing.T) {
	tests := []struct {
		name  string
		label string
		vals  []int32
		want  string
	}{
		{
			"empty",
			"output array",
			nil,
			"output array [ ]",
		},
		{
			"inputs",
			"A input array",
			[]int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
			"A input array [ 0 1 2 3 4 5 6 7 8 9 ]",
		},
		{
			"negative",
			"B input array",
			[]int32{-1, 2147483647, -2147483648},
			"B input array [ -1 2147483647 -2147483648 ]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatArray(tt.label, tt.vals); got != tt.want {
				t.Errorf("FormatArray() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInt32sToBytes(t *testing.T) {
	got := Int32sToBytes([]int32{1, -1, 0x01020304})
	want := []byte{
		0x01, 0x00, 0x00, 0x00,
		0xff, 0xff, 0xff, 0xff,
		0x04, 0x03, 0x02, 0x01,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Int32sToBytes() = %x, want %x", got, want)
	}
}

func TestDigest(t *testing.T) {
	a := []int32{0, 1, 2}
	b := []int32{3, 4, 5}

	if Digest(a, b) != Digest(a, b) {
		t.Fatal("Digest is not deterministic")
	}
	if Digest(a, b) != Digest([]int32{0, 1, 2, 3, 4, 5}) {
		t.Error("Digest depends on how the values are split")
	}
	if Digest(a, b) == Digest(b, a) {
		t.Error("Digest ignores ordering")
	}
}

func TestMismatches(t *testing.T) {
	tests := []struct {
		name      string
		got, want []int32
		idx       []int
	}{
		{"equal", []int32{1, 2, 3}, []int32{1, 2, 3}, nil},
		{"one", []int32{1, 0, 3}, []int32{1, 2, 3}, []int{1}},
		{"short", []int32{1}, []int32{1, 2, 3}, []int{1, 2}},
		{"long", []int32{1, 2, 3, 4}, []int32{1, 2, 3}, []int{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mismatches(tt.got, tt.want); !reflect.DeepEqual(got, tt.idx) {
				t.Errorf("Mismatches() = %v, want %v", got, tt.idx)
			}
		})
	}
}
