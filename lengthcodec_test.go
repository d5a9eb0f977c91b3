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
	"bytes"
	"errors"
	"testing"
)

func TestStringBytesRoundTrip(t *testing.T) {
	strs := []string{
		"",
		"foo",
		"a string exactly at the inline boundary of 59 bytes 1234567",
		string(make([]byte, 1000)),
	}
	buf := make([]byte, 4096)
	for _, s := range strs {
		sink := NewMemSink(buf)
		enc := NewValueEncoder(sink, nil)
		if err := enc.EncodeString(s); err != nil {
			t.Fatalf("EncodeString(%d bytes): %v", len(s), err)
		}
		dec := NewValueDecoder(NewMemSource(sink.Bytes()), nil)
		got, err := dec.NextString()
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got != s {
			t.Errorf("round trip mismatch for %d-byte string", len(s))
		}
	}
}

func TestBytesRoundTripBorrow(t *testing.T) {
	payload := bytes.Repeat([]byte{0xab}, 200)
	buf := make([]byte, 512)
	sink := NewMemSink(buf)
	enc := NewValueEncoder(sink, nil)
	if err := enc.EncodeBytes(payload); err != nil {
		t.Fatal(err)
	}
	dec := NewValueDecoder(NewMemSource(sink.Bytes()), nil)
	if err := dec.Next(); err != nil {
		t.Fatal(err)
	}
	got, err := dec.BorrowBytes()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("borrowed bytes mismatch")
	}
}

func TestArrayObjectInlineBoundary(t *testing.T) {
	buf := make([]byte, 64)
	for _, n := range []int{0, 1, containerInlineMax, containerInlineMax + 1, 300, 70000} {
		sink := NewMemSink(buf)
		if err := (&ValueEncoder{sink: sink}).BeginArray(n); err != nil {
			t.Fatalf("BeginArray(%d): %v", n, err)
		}
		dec := NewValueDecoder(NewMemSource(sink.Bytes()), nil)
		if err := dec.Next(); err != nil {
			t.Fatal(err)
		}
		if dec.Kind() != KindArray {
			t.Fatalf("n=%d: kind = %s, want array", n, dec.Kind())
		}
		if dec.Len() != uint64(n) {
			t.Errorf("n=%d: decoded len %d", n, dec.Len())
		}

		sink.Reset()
		if err := (&ValueEncoder{sink: sink}).BeginObject(n); err != nil {
			t.Fatalf("BeginObject(%d): %v", n, err)
		}
		dec = NewValueDecoder(NewMemSource(sink.Bytes()), nil)
		if err := dec.Next(); err != nil {
			t.Fatal(err)
		}
		if dec.Kind() != KindObject {
			t.Fatalf("n=%d: kind = %s, want object", n, dec.Kind())
		}
		if dec.Len() != uint64(n) {
			t.Errorf("n=%d: decoded object len %d", n, dec.Len())
		}
	}
}

func TestStreamedArraySentinel(t *testing.T) {
	buf := make([]byte, 64)
	sink := NewMemSink(buf)
	enc := NewValueEncoder(sink, nil)
	if err := enc.BeginStreamedArray(); err != nil {
		t.Fatal(err)
	}
	if err := enc.EncodeInt(1); err != nil {
		t.Fatal(err)
	}
	if err := enc.EncodeInt(2); err != nil {
		t.Fatal(err)
	}
	if err := enc.EndStreamed(); err != nil {
		t.Fatal(err)
	}

	dec := NewValueDecoder(NewMemSource(sink.Bytes()), nil)
	if err := dec.Next(); err != nil {
		t.Fatal(err)
	}
	if dec.Kind() != KindArrayEOF || !dec.IsUnknownLen() {
		t.Fatalf("kind=%s unknownLen=%v, want streamed array open", dec.Kind(), dec.IsUnknownLen())
	}

	var got []int64
	for {
		kind, end, err := dec.NextInContainer()
		if err != nil {
			t.Fatal(err)
		}
		if end {
			break
		}
		if kind != KindIntSmall {
			t.Fatalf("unexpected kind %s mid-stream", kind)
		}
		v, err := dec.DecodeInt()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, v)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("got %v, want [1 2]", got)
	}
}

func TestFieldLengthTiers(t *testing.T) {
	lengths := []int{0, 1, 29, 30, 284, 285, 65819}
	for _, l := range lengths {
		buf := make([]byte, 8)
		sink := NewMemSink(buf)
		if err := encodeFieldLength(sink, headFieldFull, l); err != nil {
			t.Fatalf("encodeFieldLength(%d): %v", l, err)
		}
		source := NewMemSource(sink.Bytes())
		head, err := source.ReadU8()
		if err != nil {
			t.Fatal(err)
		}
		got, err := decodeFieldLength(source, head)
		if err != nil {
			t.Fatalf("decodeFieldLength(%d): %v", l, err)
		}
		if got != l {
			t.Errorf("length %d round tripped as %d", l, got)
		}
	}
}

func TestFieldLengthOverflow(t *testing.T) {
	buf := make([]byte, 8)
	sink := NewMemSink(buf)
	err := encodeFieldLength(sink, headFieldFull, 65820)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("encodeFieldLength(65820) = %v, want ErrMalformed", err)
	}
}
