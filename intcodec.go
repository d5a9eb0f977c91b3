// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package yajbe

import "golang.org/x/exp/constraints"

// byteWidth is the smallest w in [1,8] such that v < 2^(8w); byteWidth(0)
// is defined as 1. It backs both the integer framing below and the shared
// length framing in lengthcodec.go, the way the `ints` package centralizes
// a single generic helper rather than duplicating it per call site.
func byteWidth[T constraints.Unsigned](v T) int {
	if v == 0 {
		return 1
	}
	n := 0
	for v > 0 {
		v >>= 8
		n++
	}
	return n
}

const (
	headIntPositive byte = 0b010_00000
	headIntNegative byte = 0b011_00000
)

// encodeInt writes value using the two-family signed integer framing of
// §4.2: positive values ≤24 and negative magnitudes ≤23 are encoded inline
// in the head byte; larger magnitudes spill into a trailing little-endian
// width. Zero is encoded as a negative zero (head 0x60), which falls out of
// the formula below without a special case.
func encodeInt(sink ByteSink, value int64) error {
	if value > 0 {
		return encodePositiveInt(sink, value)
	}
	return encodeNegativeInt(sink, value)
}

func encodePositiveInt(sink ByteSink, value int64) error {
	if value <= 24 {
		return sink.WriteU8(headIntPositive | byte(value-1))
	}
	v := uint64(value - 25)
	w := byteWidth(v)
	if err := sink.WriteU8(headIntPositive | byte(23+w)); err != nil {
		return err
	}
	return sink.WriteUint(v, w)
}

func encodeNegativeInt(sink ByteSink, value int64) error {
	u := uint64(-value)
	if u <= 23 {
		return sink.WriteU8(headIntNegative | byte(u))
	}
	u -= 24
	w := byteWidth(u)
	if err := sink.WriteU8(headIntNegative | byte(23+w)); err != nil {
		return err
	}
	return sink.WriteUint(u, w)
}

// decodeSmallInt recovers an INT_SMALL value straight from its head byte,
// no further reads required.
func decodeSmallInt(head byte) int64 {
	signed := head&0b0110_0000 == 0b0110_0000
	w := int64(head & 0x1f)
	if signed {
		return -w
	}
	return 1 + w
}

// decodeWideInt reads the trailing little-endian width for INT_POSITIVE /
// INT_NEGATIVE and applies the matching bias.
func decodeWideInt(source ByteSource, negative bool, width int) (int64, error) {
	v, err := source.ReadUint(width)
	if err != nil {
		return 0, err
	}
	if negative {
		return -(int64(v) + 24), nil
	}
	return int64(v) + 25, nil
}
