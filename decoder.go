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

// unknownLength is the item_length sentinel Next sets for a streamed
// (unknown-length) array or object.
const unknownLength = uint64(1) << 63

// ValueDecoder reads YAJBE value tokens one at a time from a ByteSource.
// Next classifies the next head byte into (kind, length); a matching typed
// read then consumes the payload. Calling a typed read against the wrong
// kind returns ErrInvalidToken. Before the first Next the current kind is
// KindNull, so DecodeNull succeeds then and every other typed read returns
// ErrInvalidToken.
type ValueDecoder struct {
	source ByteSource
	fields *FieldDecoder

	head   byte
	kind   Kind
	length uint64
}

// NewValueDecoder returns a ValueDecoder reading from source. fields may be
// nil if the caller never decodes an object.
func NewValueDecoder(source ByteSource, fields *FieldDecoder) *ValueDecoder {
	return &ValueDecoder{source: source, fields: fields}
}

// Kind reports the classification of the token last read by Next.
func (d *ValueDecoder) Kind() Kind { return d.kind }

// Len reports the item_length Next computed for the current token. For a
// streamed array/object it is the unknownLength sentinel; use IsUnknownLen
// to test for it directly.
func (d *ValueDecoder) Len() uint64 { return d.length }

// IsUnknownLen reports whether the current token is a streamed array or
// object whose length is not known up front.
func (d *ValueDecoder) IsUnknownLen() bool { return d.length == unknownLength }

// Next reads one head byte and classifies it, populating Kind and Len for
// the subsequent typed read. It must not be called to read an object field
// name; use DecodeField for that, which reads its own head byte from the
// field-name token family.
func (d *ValueDecoder) Next() error {
	head, err := d.source.ReadU8()
	if err != nil {
		return err
	}
	d.head = head
	d.kind = classify(head)

	switch d.kind {
	case KindArray, KindObject:
		low := head & 0x0f
		if low <= containerInlineMax {
			d.length = uint64(low)
			return nil
		}
		width := int(low) - containerInlineMax
		v, err := d.source.ReadUint(width)
		if err != nil {
			return err
		}
		d.length = containerInlineMax + v

	case KindArrayEOF, KindObjectEOF:
		d.length = unknownLength

	case KindSmallBytes, KindSmallString:
		d.length = uint64(head & 0x3f)

	case KindBytes, KindString:
		width := int(head&0x3f) - bytesInlineMax
		v, err := d.source.ReadUint(width)
		if err != nil {
			return err
		}
		d.length = bytesInlineMax + v

	case KindIntSmall:
		d.length = 0

	case KindIntPositive, KindIntNegative:
		d.length = uint64(int(head&0x1f) - 23)

	case KindFloat32:
		d.length = 4

	case KindFloat64:
		d.length = 8

	default:
		// NULL, TRUE, FALSE, EOF, and the reserved tags carry no length.
		d.length = 0
	}
	return nil
}

// NextInContainer is Next specialised for stepping through a streamed
// array or object body: it reports whether the token read is the
// container's end-of-stream sentinel instead of making the caller compare
// Kind() against the sentinel's classification by hand. This is the
// explicit next_in_container the endianness/sentinel design note calls
// for as a cleaner alternative to overloading a single token kind.
func (d *ValueDecoder) NextInContainer() (kind Kind, end bool, err error) {
	if err := d.Next(); err != nil {
		return kindInvalid, false, err
	}
	if d.kind == KindEOF {
		return KindEOF, true, nil
	}
	return d.kind, false, nil
}

// checkReserved returns ErrUnsupportedTag when the current token is one of
// the reserved tags (FLOAT_VLE, BIG_DECIMAL, ENUM_CONFIG, ENUM_STRING)
// whose payload this codec does not implement, distinguishing that case
// from a plain kind mismatch (ErrInvalidToken).
func (d *ValueDecoder) checkReserved() error {
	if d.kind.reserved() {
		return ErrUnsupportedTag
	}
	return nil
}

// DecodeNull confirms the current token is NULL. There is no payload to
// read; it exists so null can go through the same Next-then-Decode shape as
// every other kind.
func (d *ValueDecoder) DecodeNull() error {
	if err := d.checkReserved(); err != nil {
		return err
	}
	if d.kind != KindNull {
		return ErrInvalidToken
	}
	return nil
}

func (d *ValueDecoder) DecodeBool() (bool, error) {
	if err := d.checkReserved(); err != nil {
		return false, err
	}
	switch d.kind {
	case KindTrue:
		return true, nil
	case KindFalse:
		return false, nil
	default:
		return false, ErrInvalidToken
	}
}

func (d *ValueDecoder) DecodeInt() (int64, error) {
	if err := d.checkReserved(); err != nil {
		return 0, err
	}
	switch d.kind {
	case KindIntSmall:
		return decodeSmallInt(d.head), nil
	case KindIntPositive:
		return decodeWideInt(d.source, false, int(d.length))
	case KindIntNegative:
		return decodeWideInt(d.source, true, int(d.length))
	default:
		return 0, ErrInvalidToken
	}
}

func (d *ValueDecoder) DecodeFloat32() (float32, error) {
	if err := d.checkReserved(); err != nil {
		return 0, err
	}
	if d.kind != KindFloat32 {
		return 0, ErrInvalidToken
	}
	bits, err := d.source.ReadUint(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(bits)), nil
}

func (d *ValueDecoder) DecodeFloat64() (float64, error) {
	if err := d.checkReserved(); err != nil {
		return 0, err
	}
	if d.kind != KindFloat64 {
		return 0, ErrInvalidToken
	}
	bits, err := d.source.ReadUint(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// DecodeBytes copies the current token's payload into buf, which must have
// length exactly Len().
func (d *ValueDecoder) DecodeBytes(buf []byte) error {
	if err := d.checkReserved(); err != nil {
		return err
	}
	if d.kind != KindBytes && d.kind != KindSmallBytes {
		return ErrInvalidToken
	}
	return d.source.ReadBytes(buf)
}

// BorrowBytes returns a zero-copy view of the current token's payload,
// valid only until the next ByteSource-advancing call.
func (d *ValueDecoder) BorrowBytes() ([]byte, error) {
	if err := d.checkReserved(); err != nil {
		return nil, err
	}
	if d.kind != KindBytes && d.kind != KindSmallBytes {
		return nil, ErrInvalidToken
	}
	return d.source.ReadSlice(int(d.length))
}

// DecodeString copies the current token's payload and returns it as a
// string.
func (d *ValueDecoder) DecodeString() (string, error) {
	if err := d.checkReserved(); err != nil {
		return "", err
	}
	if d.kind != KindString && d.kind != KindSmallString {
		return "", ErrInvalidToken
	}
	buf := make([]byte, d.length)
	if err := d.source.ReadBytes(buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// DecodeField reads an object field-name token (its own head byte, from a
// family Next never classifies) and returns the reconstructed name, a view
// into the FieldDecoder's arena valid until its next Reset.
func (d *ValueDecoder) DecodeField() ([]byte, error) {
	head, err := d.source.ReadU8()
	if err != nil {
		return nil, err
	}
	return d.fields.DecodeField(d.source, head)
}

// FieldString is DecodeField returning a copied Go string instead of an
// arena-backed borrow.
func (d *ValueDecoder) FieldString() (string, error) {
	b, err := d.DecodeField()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Reserved reports whether the current token's payload is one this codec
// declines to decode (FLOAT_VLE, BIG_DECIMAL, ENUM_CONFIG, ENUM_STRING).
// Any typed read against such a token fails with ErrUnsupportedTag.
func (d *ValueDecoder) Reserved() bool { return d.kind.reserved() }

// NextFieldOrEnd is DecodeField's counterpart to NextInContainer: it reads
// the next object-body head byte and reports whether it is the
// streamed-object terminator sentinel rather than a field name, so a
// caller stepping through a streamed OBJECT never has to read a field-name
// head byte itself to check. Field-name tokens and the terminator sentinel
// share the same position in the byte stream but belong to different head
// families (§4.8 vs §6), which is why this reads the byte directly instead
// of delegating to Next.
func (d *ValueDecoder) NextFieldOrEnd() (name []byte, end bool, err error) {
	head, err := d.source.ReadU8()
	if err != nil {
		return nil, false, err
	}
	if classify(head) == KindEOF {
		return nil, true, nil
	}
	name, err = d.fields.DecodeField(d.source, head)
	return name, false, err
}

// --- next_* convenience wrappers: Next() followed by the matching typed read. ---

func (d *ValueDecoder) NextNull() error {
	if err := d.Next(); err != nil {
		return err
	}
	return d.DecodeNull()
}

func (d *ValueDecoder) NextBool() (bool, error) {
	if err := d.Next(); err != nil {
		return false, err
	}
	return d.DecodeBool()
}

func (d *ValueDecoder) NextInt() (int64, error) {
	if err := d.Next(); err != nil {
		return 0, err
	}
	return d.DecodeInt()
}

func (d *ValueDecoder) NextFloat32() (float32, error) {
	if err := d.Next(); err != nil {
		return 0, err
	}
	return d.DecodeFloat32()
}

func (d *ValueDecoder) NextFloat64() (float64, error) {
	if err := d.Next(); err != nil {
		return 0, err
	}
	return d.DecodeFloat64()
}

func (d *ValueDecoder) NextString() (string, error) {
	if err := d.Next(); err != nil {
		return "", err
	}
	return d.DecodeString()
}

func (d *ValueDecoder) NextBytes(buf []byte) error {
	if err := d.Next(); err != nil {
		return err
	}
	return d.DecodeBytes(buf)
}
