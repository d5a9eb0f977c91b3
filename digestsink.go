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
	"hash"

	"golang.org/x/crypto/blake2b"
)

// DigestSink wraps a ByteSink and maintains a running BLAKE2b-256 digest of
// every byte written through it, so a caller can checksum an encoded
// stream without a second pass over the buffer.
type DigestSink struct {
	sink ByteSink
	h    hash.Hash
}

// NewDigestSink wraps sink with a fresh digest.
func NewDigestSink(sink ByteSink) *DigestSink {
	h, _ := blake2b.New256(nil)
	return &DigestSink{sink: sink, h: h}
}

// Sum returns the BLAKE2b-256 digest of everything written so far.
func (s *DigestSink) Sum() []byte { return s.h.Sum(nil) }

func (s *DigestSink) WriteU8(v byte) error {
	if err := s.sink.WriteU8(v); err != nil {
		return err
	}
	s.h.Write([]byte{v})
	return nil
}

func (s *DigestSink) WriteUint(value uint64, width int) error {
	enc, err := writeUintWidth(value, width)
	if err != nil {
		return err
	}
	if err := s.sink.WriteUint(value, width); err != nil {
		return err
	}
	s.h.Write(enc[:width])
	return nil
}

func (s *DigestSink) WriteBytes(buf []byte) error {
	if err := s.sink.WriteBytes(buf); err != nil {
		return err
	}
	s.h.Write(buf)
	return nil
}

// DigestSource wraps a ByteSource and maintains a running BLAKE2b-256
// digest of every byte read through it, so a decoder can verify a stream
// against an out-of-band digest as it consumes it.
type DigestSource struct {
	source ByteSource
	h      hash.Hash
}

// NewDigestSource wraps source with a fresh digest.
func NewDigestSource(source ByteSource) *DigestSource {
	h, _ := blake2b.New256(nil)
	return &DigestSource{source: source, h: h}
}

// Sum returns the BLAKE2b-256 digest of everything read so far.
func (s *DigestSource) Sum() []byte { return s.h.Sum(nil) }

func (s *DigestSource) ReadU8() (byte, error) {
	v, err := s.source.ReadU8()
	if err != nil {
		return 0, err
	}
	s.h.Write([]byte{v})
	return v, nil
}

func (s *DigestSource) ReadUint(width int) (uint64, error) {
	v, err := s.source.ReadUint(width)
	if err != nil {
		return 0, err
	}
	enc, err := writeUintWidth(v, width)
	if err != nil {
		return 0, err
	}
	s.h.Write(enc[:width])
	return v, nil
}

func (s *DigestSource) ReadBytes(buf []byte) error {
	if err := s.source.ReadBytes(buf); err != nil {
		return err
	}
	s.h.Write(buf)
	return nil
}

func (s *DigestSource) ReadSlice(n int) ([]byte, error) {
	view, err := s.source.ReadSlice(n)
	if err != nil {
		return nil, err
	}
	s.h.Write(view)
	return view, nil
}
