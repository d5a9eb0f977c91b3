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
	"bufio"
	"fmt"
	"io"
)

// ByteSink is the write-side capability a ValueEncoder and FieldEncoder
// consume. Every method either completes in full or returns an error,
// leaving the sink's cursor unchanged on failure.
type ByteSink interface {
	// WriteU8 writes a single byte.
	WriteU8(v byte) error

	// WriteUint writes the low 'width' bytes of value in little-endian
	// order. width must be in [1,8].
	WriteUint(value uint64, width int) error

	// WriteBytes writes buf verbatim.
	WriteBytes(buf []byte) error
}

// ByteSource is the read-side capability a ValueDecoder and FieldDecoder
// consume. Every method either completes in full or returns an error,
// leaving the source's cursor unchanged on failure.
type ByteSource interface {
	// ReadU8 reads a single byte.
	ReadU8() (byte, error)

	// ReadUint reads 'width' little-endian bytes and zero-extends them
	// to a uint64. width must be in [1,8].
	ReadUint(width int) (uint64, error)

	// ReadBytes fills buf completely from the source.
	ReadBytes(buf []byte) error

	// ReadSlice returns a view of the next n bytes borrowed directly from
	// the source's backing storage. The returned slice is valid only
	// until the next call that advances the source.
	ReadSlice(n int) ([]byte, error)
}

func writeUintWidth(value uint64, width int) ([8]byte, error) {
	var buf [8]byte
	if width < 1 || width > 8 {
		return buf, fmt.Errorf("yajbe: uint width %d out of range: %w", width, ErrMalformed)
	}
	for i := 0; i < width; i++ {
		buf[i] = byte(value >> (8 * i))
	}
	return buf, nil
}

func readUintWidth(buf []byte, width int) (uint64, error) {
	if width < 1 || width > 8 {
		return 0, fmt.Errorf("yajbe: uint width %d out of range: %w", width, ErrMalformed)
	}
	var value uint64
	for i := width - 1; i >= 0; i-- {
		value = (value << 8) | uint64(buf[i])
	}
	return value, nil
}

// MemSink is a ByteSink backed by a caller-owned, fixed-capacity buffer. No
// allocation is ever performed; once the buffer is full, every write fails
// with ErrOutOfSpace.
type MemSink struct {
	buf    []byte
	cursor int
}

// NewMemSink wraps buf as the backing storage for a MemSink. Writes start
// at offset 0 of buf.
func NewMemSink(buf []byte) *MemSink {
	return &MemSink{buf: buf}
}

// Bytes returns the portion of the backing buffer written so far.
func (s *MemSink) Bytes() []byte { return s.buf[:s.cursor] }

// Len reports how many bytes have been written.
func (s *MemSink) Len() int { return s.cursor }

// Reset rewinds the sink to the start of its backing buffer without
// releasing it.
func (s *MemSink) Reset() { s.cursor = 0 }

func (s *MemSink) WriteU8(v byte) error {
	if s.cursor >= len(s.buf) {
		return ErrOutOfSpace
	}
	s.buf[s.cursor] = v
	s.cursor++
	return nil
}

func (s *MemSink) WriteUint(value uint64, width int) error {
	enc, err := writeUintWidth(value, width)
	if err != nil {
		return err
	}
	if s.cursor+width > len(s.buf) {
		return ErrOutOfSpace
	}
	copy(s.buf[s.cursor:], enc[:width])
	s.cursor += width
	return nil
}

func (s *MemSink) WriteBytes(buf []byte) error {
	if s.cursor+len(buf) > len(s.buf) {
		return ErrOutOfSpace
	}
	s.cursor += copy(s.buf[s.cursor:], buf)
	return nil
}

// MemSource is a ByteSource backed by a caller-owned, fixed buffer. Unlike
// MemSink, ReadSlice lets it return zero-copy views into its own backing
// storage.
type MemSource struct {
	buf    []byte
	cursor int
}

// NewMemSource wraps buf as the backing storage for a MemSource. Reads
// start at offset 0 of buf.
func NewMemSource(buf []byte) *MemSource {
	return &MemSource{buf: buf}
}

// Remaining reports how many unread bytes are left in the source.
func (s *MemSource) Remaining() int { return len(s.buf) - s.cursor }

// Bytes returns the full backing buffer, regardless of how much of it has
// already been read.
func (s *MemSource) Bytes() []byte { return s.buf }

func (s *MemSource) ReadU8() (byte, error) {
	if s.cursor >= len(s.buf) {
		return 0, ErrOutOfSpace
	}
	v := s.buf[s.cursor]
	s.cursor++
	return v, nil
}

func (s *MemSource) ReadUint(width int) (uint64, error) {
	if width < 1 || width > 8 {
		return 0, fmt.Errorf("yajbe: uint width %d out of range: %w", width, ErrMalformed)
	}
	if s.cursor+width > len(s.buf) {
		return 0, ErrOutOfSpace
	}
	v, err := readUintWidth(s.buf[s.cursor:s.cursor+width], width)
	if err != nil {
		return 0, err
	}
	s.cursor += width
	return v, nil
}

func (s *MemSource) ReadBytes(buf []byte) error {
	if s.cursor+len(buf) > len(s.buf) {
		return ErrOutOfSpace
	}
	copy(buf, s.buf[s.cursor:s.cursor+len(buf)])
	s.cursor += len(buf)
	return nil
}

func (s *MemSource) ReadSlice(n int) ([]byte, error) {
	if s.cursor+n > len(s.buf) {
		return nil, ErrOutOfSpace
	}
	view := s.buf[s.cursor : s.cursor+n : s.cursor+n]
	s.cursor += n
	return view, nil
}

// ReaderSource adapts a *bufio.Reader to ByteSource, for decoding a stream
// whose full length isn't known (e.g. os.Stdin). ReadSlice is implemented
// with Peek+Discard, the same borrowed-view trick ion.Peek uses. ReadBytes
// reads through io.ReadFull, so when the input ends early the bytes read
// before the failure stay consumed.
type ReaderSource struct {
	r *bufio.Reader
}

// NewReaderSource wraps r. If r is not already a *bufio.Reader, one is
// allocated around it.
func NewReaderSource(r io.Reader) *ReaderSource {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &ReaderSource{r: br}
}

func (s *ReaderSource) ReadU8() (byte, error) {
	b, err := s.r.ReadByte()
	if err != nil {
		return 0, ioErrToOutOfSpace(err)
	}
	return b, nil
}

func (s *ReaderSource) ReadUint(width int) (uint64, error) {
	p, err := s.r.Peek(width)
	if err != nil {
		return 0, ioErrToOutOfSpace(err)
	}
	v, err := readUintWidth(p, width)
	if err != nil {
		return 0, err
	}
	if _, err := s.r.Discard(width); err != nil {
		return 0, ioErrToOutOfSpace(err)
	}
	return v, nil
}

func (s *ReaderSource) ReadBytes(buf []byte) error {
	_, err := io.ReadFull(s.r, buf)
	if err != nil {
		return ioErrToOutOfSpace(err)
	}
	return nil
}

func (s *ReaderSource) ReadSlice(n int) ([]byte, error) {
	p, err := s.r.Peek(n)
	if err != nil {
		return nil, ioErrToOutOfSpace(err)
	}
	if _, err := s.r.Discard(n); err != nil {
		return nil, ioErrToOutOfSpace(err)
	}
	return p, nil
}

func ioErrToOutOfSpace(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrOutOfSpace
	}
	return err
}

// WriterSink adapts an io.Writer to ByteSink, for encoding directly to a
// file or socket instead of a fixed in-memory buffer. A failed write may
// already have passed part of its bytes to w; WriterSink does not undo them.
type WriterSink struct {
	w io.Writer
}

// NewWriterSink wraps w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) WriteU8(v byte) error {
	_, err := s.w.Write([]byte{v})
	return err
}

func (s *WriterSink) WriteUint(value uint64, width int) error {
	enc, err := writeUintWidth(value, width)
	if err != nil {
		return err
	}
	_, err = s.w.Write(enc[:width])
	return err
}

func (s *WriterSink) WriteBytes(buf []byte) error {
	_, err := s.w.Write(buf)
	return err
}
