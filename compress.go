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

import "github.com/klauspost/compress/s2"

// CompressedSink buffers an entire encoded stream in memory and compresses
// it as a single S2 block on Finish, since S2's framing has no notion of
// appending to an already-compressed block. Use it when the whole stream
// fits in memory and will be written out (or stored) as one unit; for a
// stream too large to buffer, write to a WriterSink around an s2.Writer
// instead.
type CompressedSink struct {
	buf []byte
}

// NewCompressedSink returns an empty CompressedSink.
func NewCompressedSink() *CompressedSink { return &CompressedSink{} }

func (s *CompressedSink) WriteU8(v byte) error {
	s.buf = append(s.buf, v)
	return nil
}

func (s *CompressedSink) WriteUint(value uint64, width int) error {
	enc, err := writeUintWidth(value, width)
	if err != nil {
		return err
	}
	s.buf = append(s.buf, enc[:width]...)
	return nil
}

func (s *CompressedSink) WriteBytes(buf []byte) error {
	s.buf = append(s.buf, buf...)
	return nil
}

// Finish returns the S2-compressed form of everything written so far.
func (s *CompressedSink) Finish() []byte {
	return s2.Encode(nil, s.buf)
}

// CompressedSource decompresses a whole S2 block up front and serves reads
// from the result, the decompress-side counterpart to CompressedSink.
type CompressedSource struct {
	*MemSource
}

// NewCompressedSource decompresses compressed (an S2 block produced by
// CompressedSink.Finish or s2.Encode) and returns a source over the
// plaintext.
func NewCompressedSource(compressed []byte) (*CompressedSource, error) {
	n, err := s2.DecodedLen(compressed)
	if err != nil {
		return nil, err
	}
	plain := make([]byte, n)
	plain, err = s2.Decode(plain, compressed)
	if err != nil {
		return nil, err
	}
	return &CompressedSource{MemSource: NewMemSource(plain)}, nil
}
