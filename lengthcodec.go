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

// encodeLength writes the shared inline-or-continuation length scheme used
// by value-side tokens: lengths up to inlineMax are folded straight into
// the head byte; larger lengths spill into a trailing little-endian width,
// sized by byteWidth. This is the value-side sibling of encodeFieldLength
// below; the two differ in both their inline thresholds and, per §9, the
// endianness of the multi-byte tier.
func encodeLength(sink ByteSink, headBits byte, inlineMax int, length uint64) error {
	if length <= uint64(inlineMax) {
		return sink.WriteU8(headBits | byte(length))
	}
	delta := length - uint64(inlineMax)
	w := byteWidth(delta)
	if err := sink.WriteU8(headBits | byte(inlineMax+w)); err != nil {
		return err
	}
	return sink.WriteUint(delta, w)
}

// fieldLengthInlineMax is the largest length (or field index) a field-name
// head byte can carry inline, per §4.8.
const fieldLengthInlineMax = 29

// encodeFieldLength writes a field-name token's length or index using its
// three-tier big-endian continuation scheme (inline, one extra byte, two
// extra big-endian bytes) instead of encodeLength's little-endian one.
func encodeFieldLength(sink ByteSink, headBits byte, length int) error {
	switch {
	case length < 30:
		return sink.WriteU8(headBits | byte(length))
	case length <= 284:
		if err := sink.WriteU8(headBits | 0x1e); err != nil {
			return err
		}
		return sink.WriteU8(byte(length - 29))
	case length <= 65819:
		if err := sink.WriteU8(headBits | 0x1f); err != nil {
			return err
		}
		d := length - 284
		if err := sink.WriteU8(byte(d / 256)); err != nil {
			return err
		}
		return sink.WriteU8(byte(d & 255))
	default:
		return ErrMalformed
	}
}

// decodeFieldLength reverses encodeFieldLength. head is the full head byte
// of the field-name token; only its low 5 bits are consulted here.
func decodeFieldLength(source ByteSource, head byte) (int, error) {
	l := int(head & 0x1f)
	if l < 30 {
		return l, nil
	}
	if l == 30 {
		b, err := source.ReadU8()
		if err != nil {
			return 0, err
		}
		return 29 + int(b), nil
	}
	b0, err := source.ReadU8()
	if err != nil {
		return 0, err
	}
	b1, err := source.ReadU8()
	if err != nil {
		return 0, err
	}
	return 284 + 256*int(b0) + int(b1), nil
}
