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

import (
	"errors"
	"testing"
)

func TestNullRoundTrip(t *testing.T) {
	buf := make([]byte, 8)
	sink := NewMemSink(buf)
	enc := NewValueEncoder(sink, nil)
	if err := enc.EncodeNull(); err != nil {
		t.Fatal(err)
	}
	dec := NewValueDecoder(NewMemSource(sink.Bytes()), nil)
	if err := dec.Next(); err != nil {
		t.Fatal(err)
	}
	if dec.Kind() != KindNull {
		t.Errorf("kind = %s, want null", dec.Kind())
	}
}

// TestNextNull checks the next_null convenience wrapper both accepts a null
// token and rejects a non-null one with ErrInvalidToken.
func TestNextNull(t *testing.T) {
	buf := make([]byte, 8)
	sink := NewMemSink(buf)
	enc := NewValueEncoder(sink, nil)
	if err := enc.EncodeNull(); err != nil {
		t.Fatal(err)
	}
	if err := enc.EncodeBool(true); err != nil {
		t.Fatal(err)
	}

	dec := NewValueDecoder(NewMemSource(sink.Bytes()), nil)
	if err := dec.NextNull(); err != nil {
		t.Fatal(err)
	}
	if err := dec.NextNull(); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("NextNull on a bool token: err = %v, want ErrInvalidToken", err)
	}
}

// TestScenario5 encodes a fixed-length-1 array containing a streamed object
// with a mix of value types, then steps through the decode exactly the way
// the testable-properties scenario describes: next() sees ARRAY(1),
// OBJECT(streamed), then each key/value pair in order, then the terminator.
func TestScenario5(t *testing.T) {
	buf := make([]byte, 4096)
	sink := NewMemSink(buf)
	fe := NewFieldEncoder(16)
	enc := NewValueEncoder(sink, fe)

	if err := enc.BeginArray(1); err != nil {
		t.Fatal(err)
	}
	if err := enc.BeginStreamedObject(); err != nil {
		t.Fatal(err)
	}

	type field struct {
		name string
		kind string
		i    int64
		s    string
	}
	fields := []field{
		{name: "field_null", kind: "null"},
		{name: "bool_true", kind: "bool", i: 1},
		{name: "bool_false", kind: "bool", i: 0},
		{name: "field_int_0", kind: "int", i: 3},
		{name: "field_int_1", kind: "int", i: 1234},
		{name: "field_int_2", kind: "int", i: -543210},
		{name: "field_sm_str", kind: "str", s: "foo"},
	}
	for _, f := range fields {
		if err := enc.EncodeFieldString(f.name); err != nil {
			t.Fatal(err)
		}
		switch f.kind {
		case "null":
			if err := enc.EncodeNull(); err != nil {
				t.Fatal(err)
			}
		case "bool":
			if err := enc.EncodeBool(f.i != 0); err != nil {
				t.Fatal(err)
			}
		case "int":
			if err := enc.EncodeInt(f.i); err != nil {
				t.Fatal(err)
			}
		case "str":
			if err := enc.EncodeString(f.s); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := enc.EndStreamed(); err != nil {
		t.Fatal(err)
	}

	fd := NewFieldDecoder(16)
	dec := NewValueDecoder(NewMemSource(sink.Bytes()), fd)

	if err := dec.Next(); err != nil {
		t.Fatal(err)
	}
	if dec.Kind() != KindArray || dec.Len() != 1 {
		t.Fatalf("outer kind=%s len=%d, want array(1)", dec.Kind(), dec.Len())
	}

	if err := dec.Next(); err != nil {
		t.Fatal(err)
	}
	if dec.Kind() != KindObjectEOF || !dec.IsUnknownLen() {
		t.Fatalf("inner kind=%s unknownLen=%v, want streamed object open", dec.Kind(), dec.IsUnknownLen())
	}

	var got []field
	for {
		name, end, err := dec.NextFieldOrEnd()
		if err != nil {
			t.Fatal(err)
		}
		if end {
			break
		}
		if err := dec.Next(); err != nil {
			t.Fatal(err)
		}
		f := field{name: string(name)}
		switch dec.Kind() {
		case KindNull:
			f.kind = "null"
		case KindTrue, KindFalse:
			b, err := dec.DecodeBool()
			if err != nil {
				t.Fatal(err)
			}
			f.kind = "bool"
			if b {
				f.i = 1
			}
		case KindIntSmall, KindIntPositive, KindIntNegative:
			v, err := dec.DecodeInt()
			if err != nil {
				t.Fatal(err)
			}
			f.kind = "int"
			f.i = v
		case KindSmallString, KindString:
			s, err := dec.DecodeString()
			if err != nil {
				t.Fatal(err)
			}
			f.kind = "str"
			f.s = s
		default:
			t.Fatalf("unexpected value kind %s", dec.Kind())
		}
		got = append(got, f)
	}

	if len(got) != len(fields) {
		t.Fatalf("got %d fields, want %d", len(got), len(fields))
	}
	for i, want := range fields {
		g := got[i]
		if g.name != want.name || g.kind != want.kind || g.i != want.i || g.s != want.s {
			t.Errorf("field %d: got %+v, want %+v", i, g, want)
		}
	}
}

// TestScenario6IndexOverflow checks that an indexed-field token whose index
// exceeds the largest value the field-length framing can address (65819)
// is rejected as Malformed.
func TestScenario6IndexOverflow(t *testing.T) {
	buf := make([]byte, 8)
	sink := NewMemSink(buf)
	err := encodeFieldLength(sink, headFieldIndexed, 65820)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("index 65820: err = %v, want ErrMalformed", err)
	}
}

// TestScenario6Saturation checks that a FieldEncoder sized to capacity
// rejects a distinct key beyond that capacity with ErrOutOfSpace.
func TestScenario6Saturation(t *testing.T) {
	const capacity = 4
	fe := NewFieldEncoder(capacity)
	buf := make([]byte, 256)
	sink := NewMemSink(buf)
	for i := 0; i < capacity; i++ {
		key := []byte{byte('a' + i)}
		if err := fe.EncodeField(sink, key); err != nil {
			t.Fatalf("key %d: %v", i, err)
		}
	}
	if err := fe.EncodeField(sink, []byte("overflow")); !errors.Is(err, ErrOutOfSpace) {
		t.Fatalf("overflow key: err = %v, want ErrOutOfSpace", err)
	}
}

func TestTypedReadAgainstWrongKind(t *testing.T) {
	buf := make([]byte, 8)
	sink := NewMemSink(buf)
	enc := NewValueEncoder(sink, nil)
	if err := enc.EncodeBool(true); err != nil {
		t.Fatal(err)
	}
	dec := NewValueDecoder(NewMemSource(sink.Bytes()), nil)
	if err := dec.Next(); err != nil {
		t.Fatal(err)
	}
	if _, err := dec.DecodeInt(); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("DecodeInt on a bool token: err = %v, want ErrInvalidToken", err)
	}
}

func TestReservedTagRejected(t *testing.T) {
	buf := []byte{0x04} // FLOAT_VLE head byte, reserved
	dec := NewValueDecoder(NewMemSource(buf), nil)
	if err := dec.Next(); err != nil {
		t.Fatal(err)
	}
	if !dec.Reserved() {
		t.Fatalf("FLOAT_VLE head not reported as reserved")
	}
	if _, err := dec.DecodeFloat32(); !errors.Is(err, ErrUnsupportedTag) {
		t.Fatalf("DecodeFloat32 on FLOAT_VLE: err = %v, want ErrUnsupportedTag", err)
	}
}
