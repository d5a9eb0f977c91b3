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

// Kind is the classification of a single YAJBE token, derived from its head
// byte via the fixed 256-entry table in headtable.go.
type Kind byte

const (
	KindNull Kind = iota
	KindFalse
	KindTrue
	KindIntSmall
	KindIntPositive
	KindIntNegative
	KindSmallString
	KindString
	KindEnumConfig
	KindEnumString
	KindSmallBytes
	KindBytes
	KindFloatVLE
	KindFloat32
	KindFloat64
	KindBigDecimal
	KindArray
	KindArrayEOF
	KindObject
	KindObjectEOF
	KindEOF

	// kindInvalid marks a head byte with no assigned classification.
	// It never appears in a valid stream.
	kindInvalid Kind = 0xff
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindFalse:
		return "false"
	case KindTrue:
		return "true"
	case KindIntSmall:
		return "int_small"
	case KindIntPositive:
		return "int_positive"
	case KindIntNegative:
		return "int_negative"
	case KindSmallString:
		return "small_string"
	case KindString:
		return "string"
	case KindEnumConfig:
		return "enum_config"
	case KindEnumString:
		return "enum_string"
	case KindSmallBytes:
		return "small_bytes"
	case KindBytes:
		return "bytes"
	case KindFloatVLE:
		return "float_vle"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindBigDecimal:
		return "big_decimal"
	case KindArray:
		return "array"
	case KindArrayEOF:
		return "array_eof"
	case KindObject:
		return "object"
	case KindObjectEOF:
		return "object_eof"
	case KindEOF:
		return "eof"
	default:
		return "invalid"
	}
}

// reserved reports whether payload reads for k are out of scope for this
// codec; the decoder can still classify the head byte, but DecodeXxx on it
// fails with ErrUnsupportedTag.
func (k Kind) reserved() bool {
	switch k {
	case KindFloatVLE, KindBigDecimal, KindEnumConfig, KindEnumString:
		return true
	default:
		return false
	}
}
