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

import "math"

const (
	headNull  byte = 0x00
	headEOF   byte = 0x01 // streamed-container terminator sentinel
	headFalse byte = 0x02
	headTrue  byte = 0x03

	headFloat32 byte = 0x05
	headFloat64 byte = 0x06

	headArray  byte = 0b001_00000
	headObject byte = 0b001_10000

	headBytesFamily  byte = 0b100_00000
	headStringFamily byte = 0b110_00000

	containerInlineMax = 10
	bytesInlineMax     = 59
)

// ValueEncoder writes a stream of YAJBE value tokens to a ByteSink,
// delegating object field names to a FieldEncoder. It holds no state of
// its own beyond those two borrows.
type ValueEncoder struct {
	sink   ByteSink
	fields *FieldEncoder
}

// NewValueEncoder returns a ValueEncoder writing to sink. fields may be nil
// if the caller never encodes an object.
func NewValueEncoder(sink ByteSink, fields *FieldEncoder) *ValueEncoder {
	return &ValueEncoder{sink: sink, fields: fields}
}

func (e *ValueEncoder) EncodeNull() error { return e.sink.WriteU8(headNull) }

func (e *ValueEncoder) EncodeBool(v bool) error {
	if v {
		return e.sink.WriteU8(headTrue)
	}
	return e.sink.WriteU8(headFalse)
}

func (e *ValueEncoder) EncodeInt(v int64) error { return encodeInt(e.sink, v) }

func (e *ValueEncoder) EncodeFloat32(v float32) error {
	if err := e.sink.WriteU8(headFloat32); err != nil {
		return err
	}
	return e.sink.WriteUint(uint64(math.Float32bits(v)), 4)
}

func (e *ValueEncoder) EncodeFloat64(v float64) error {
	if err := e.sink.WriteU8(headFloat64); err != nil {
		return err
	}
	return e.sink.WriteUint(math.Float64bits(v), 8)
}

func (e *ValueEncoder) EncodeBytes(v []byte) error {
	if err := encodeLength(e.sink, headBytesFamily, bytesInlineMax, uint64(len(v))); err != nil {
		return err
	}
	return e.sink.WriteBytes(v)
}

func (e *ValueEncoder) EncodeString(s string) error {
	if err := encodeLength(e.sink, headStringFamily, bytesInlineMax, uint64(len(s))); err != nil {
		return err
	}
	return e.sink.WriteBytes([]byte(s))
}

// BeginArray writes a fixed-length array head for count items. The caller
// must then encode exactly count values.
func (e *ValueEncoder) BeginArray(count int) error {
	return encodeLength(e.sink, headArray, containerInlineMax, uint64(count))
}

// BeginStreamedArray writes an unknown-length array head; the caller
// terminates the container with EndStreamed.
func (e *ValueEncoder) BeginStreamedArray() error { return e.sink.WriteU8(headArray | 0x0f) }

// BeginObject writes a fixed-length object head for count field/value
// pairs.
func (e *ValueEncoder) BeginObject(count int) error {
	return encodeLength(e.sink, headObject, containerInlineMax, uint64(count))
}

// BeginStreamedObject writes an unknown-length object head.
func (e *ValueEncoder) BeginStreamedObject() error { return e.sink.WriteU8(headObject | 0x0f) }

// EndStreamed writes the sentinel byte that terminates a streamed array or
// object opened with BeginStreamedArray/BeginStreamedObject.
func (e *ValueEncoder) EndStreamed() error { return e.sink.WriteU8(headEOF) }

// EncodeField writes key as the next object field name, deduplicating and
// delta-compressing it against the FieldEncoder's dictionary. e must have
// been constructed with a non-nil FieldEncoder.
func (e *ValueEncoder) EncodeField(key []byte) error {
	return e.fields.EncodeField(e.sink, key)
}

// EncodeFieldString is EncodeField for a Go string key.
func (e *ValueEncoder) EncodeFieldString(key string) error {
	return e.fields.EncodeField(e.sink, []byte(key))
}
