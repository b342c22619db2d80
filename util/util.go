// Copyright (c) 2016-2023 The Decred developers.

package util

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/decred/dcrd/chaincfg/chainhash"
)

// FormatArray renders vals as a bracketed, space separated list preceded by
// label, e.g. "A input array [ 0 1 2 ]".
func FormatArray(label string, vals []int32) string {
	var b strings.Builder
	b.WriteString(label)
	b.WriteString(" [ ")
	for _, v := range vals {
		b.WriteString(strconv.FormatInt(int64(v), 10))
		b.WriteByte(' ')
	}
	b.WriteByte(']')
	return b.String()
}

// Int32sToBytes serializes vals in little endian order.
func Int32sToBytes(vals []int32) []byte {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(b[4*i:], uint32(v))
	}
	return b
}

// Digest returns the hash of the concatenated little endian encoding of
// every slice in order.
func Digest(arrays ...[]int32) chainhash.Hash {
	var buf []byte
	for _, a := range arrays {
		buf = append(buf, Int32sToBytes(a)...)
	}
	return chainhash.HashH(buf)
}

// Mismatches returns the indexes at which got and want differ.  Indexes
// present in only one of the slices are reported too.
func Mismatches(got, want []int32) []int {
	n := len(got)
	if len(want) > n {
		n = len(want)
	}
	var idx []int
	for i := 0; i < n; i++ {
		if i >= len(got) || i >= len(want) || got[i] != want[i] {
			idx = append(idx, i)
		}
	}
	return idx
}
