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
	"github.com/dchest/siphash"
	"golang.org/x/sys/cpu"
)

// Hasher computes the table hash FieldEncoder uses to place a key in its
// open-addressed table. The wire format never depends on the hash itself,
// only on byte equality (§4.7), so any well-distributing Hasher round-trips
// correctly; it only needs to agree with itself across a stream.
type Hasher interface {
	Hash(key []byte) uint32
}

// fnvOffsetBasis is both the FNV-1a offset basis and, unusually, the
// multiplier this table uses (the canonical FNV-1a prime is 0x01000193).
// Using the offset basis as the multiplier is a quirk of the upstream
// implementation's table hash, not a typo. The hash never reaches the wire
// and field indices are assigned in first-seen order whatever the hash, so
// it only decides where keys land in the encoder's table. See §9's "hash
// multiplier anomaly" note.
const fnvOffsetBasis uint32 = 0x811c9dc5

// useWideFNVLoop picks the 8-byte-unrolled FNV loop over the straight one
// on CPUs wide enough to make the unroll worthwhile. Both loops compute the
// identical hash; this is loop shape, not an algorithm change, mirroring
// how vm.avx512level gates opcode selection on a cpu feature rather than on
// the result it produces.
var useWideFNVLoop = cpu.X86.HasAVX2

func fnv1aHash(key []byte) uint32 {
	h := fnvOffsetBasis
	for _, b := range key {
		h ^= uint32(b)
		h *= fnvOffsetBasis
	}
	return h
}

func fnv1aHashWide(key []byte) uint32 {
	h := fnvOffsetBasis
	i := 0
	for ; i+8 <= len(key); i += 8 {
		chunk := key[i : i+8]
		for _, b := range chunk {
			h ^= uint32(b)
			h *= fnvOffsetBasis
		}
	}
	for ; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= fnvOffsetBasis
	}
	return h
}

// fnv1aHasher is the default Hasher, matching the upstream C
// implementation's internal table hash exactly.
type fnv1aHasher struct{}

func (fnv1aHasher) Hash(key []byte) uint32 {
	if useWideFNVLoop {
		return fnv1aHashWide(key)
	}
	return fnv1aHash(key)
}

// DefaultHasher is the Hasher NewFieldEncoder installs. FieldDecoder does
// not hash keys.
var DefaultHasher Hasher = fnv1aHasher{}

// SipHasher is an alternate Hasher for callers decoding field names from
// untrusted input who want resistance to hash-flooding attacks against the
// field-name table. It is never required for wire compatibility: the table
// hash is purely an implementation detail of the encoder's dictionary.
type SipHasher struct {
	K0, K1 uint64
}

func (h SipHasher) Hash(key []byte) uint32 {
	return uint32(siphash.Hash(h.K0, h.K1, key))
}
