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
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	headFieldFull         byte = 0b100_00000
	headFieldIndexed      byte = 0b101_00000
	headFieldPrefix       byte = 0b110_00000
	headFieldPrefixSuffix byte = 0b111_00000
)

type fieldEncoderEntry struct {
	name  []byte
	hash  uint32
	index int
}

// FieldEncoder deduplicates object field names into small integer indices
// and compresses each newly-seen key against the previously encoded one
// with a prefix/suffix delta. It holds a borrow on every key it has ever
// been asked to encode: the caller must keep those bytes alive for the
// life of the stream, the same contract the upstream field table places on
// its caller-owned entries.
type FieldEncoder struct {
	entries []fieldEncoderEntry
	mask    uint32
	count   int
	hasher  Hasher
	lastKey []byte
}

// NewFieldEncoder allocates a FieldEncoder with room for up to capacity
// distinct field names. capacity is rounded up to the next power of two,
// since the table is open-addressed and probes with a bitmask.
func NewFieldEncoder(capacity int) *FieldEncoder {
	cap := roundUpPow2(capacity)
	return &FieldEncoder{
		entries: make([]fieldEncoderEntry, cap),
		mask:    uint32(cap - 1),
		hasher:  DefaultHasher,
	}
}

// NewSeededFieldEncoder builds a FieldEncoder whose dictionary starts
// pre-populated from seed, a key→index map assigning a dense 0..n-1
// permutation of indices. This lets independent encoder instances across
// many streams agree on the same well-known field-name indices for a fixed
// schema without replaying the key sequence that would otherwise be needed
// to build up that assignment. seed is cloned defensively; the caller's
// map is never retained or mutated.
func NewSeededFieldEncoder(capacity int, seed map[string]int) (*FieldEncoder, error) {
	fe := NewFieldEncoder(capacity)
	if len(seed) == 0 {
		return fe, nil
	}
	cloned := maps.Clone(seed)
	type seedEntry struct {
		key string
		idx int
	}
	pairs := make([]seedEntry, 0, len(cloned))
	for k, idx := range cloned {
		pairs = append(pairs, seedEntry{k, idx})
	}
	slices.SortFunc(pairs, func(a, b seedEntry) bool { return a.idx < b.idx })

	for i, p := range pairs {
		if p.idx != i {
			return nil, fmt.Errorf("yajbe: seed indices must form a dense 0..n-1 permutation: %w", ErrMalformed)
		}
		key := []byte(p.key)
		idx, err := fe.add(fe.hasher.Hash(key), key)
		if err != nil {
			return nil, err
		}
		if idx != i {
			return nil, fmt.Errorf("yajbe: seed key %q collided with an earlier seed entry: %w", p.key, ErrMalformed)
		}
	}
	return fe, nil
}

// SetHasher overrides the table hash used for new keys. It must be called
// before any key is encoded; changing it mid-stream would desynchronize
// the table from any peer decoder (not that the decoder cares about the
// hash at all — but it would scramble this encoder's own probe sequence
// for keys added under the old hasher).
func (fe *FieldEncoder) SetHasher(h Hasher) { fe.hasher = h }

// Reset empties the dictionary and clears the last-key cursor, as if the
// FieldEncoder had just been constructed.
func (fe *FieldEncoder) Reset() {
	for i := range fe.entries {
		fe.entries[i] = fieldEncoderEntry{}
	}
	fe.count = 0
	fe.lastKey = nil
}

// Get returns the index previously assigned to key, or -1 if key has never
// been added to the table.
func (fe *FieldEncoder) Get(key []byte) int {
	return fe.get(fe.hasher.Hash(key), key)
}

func (fe *FieldEncoder) get(hash uint32, key []byte) int {
	mask := fe.mask
	h := hash & mask
	for i := uint32(0); i <= mask; i++ {
		e := &fe.entries[h]
		if e.name == nil {
			return -1
		}
		if e.hash == hash && bytes.Equal(e.name, key) {
			return e.index
		}
		h = (h + 1) & mask
	}
	return -1
}

// add inserts key into the table, returning its assigned index. If key is
// already present, its existing index is returned instead. The first
// fe.count inserted keys always occupy indices 0..fe.count-1, in
// first-seen order.
func (fe *FieldEncoder) add(hash uint32, key []byte) (int, error) {
	if fe.count == len(fe.entries) {
		return 0, ErrOutOfSpace
	}
	mask := fe.mask
	h := hash & mask
	for {
		e := &fe.entries[h]
		if e.name == nil {
			break
		}
		if e.hash == hash && bytes.Equal(e.name, key) {
			return e.index, nil
		}
		h = (h + 1) & mask
	}
	idx := fe.count
	fe.count++
	fe.entries[h] = fieldEncoderEntry{name: key, hash: hash, index: idx}
	return idx, nil
}

func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func commonSuffixLen(a, b []byte) int {
	na, nb := len(a), len(b)
	n := na
	if nb < n {
		n = nb
	}
	i := 0
	for i < n && a[na-1-i] == b[nb-1-i] {
		i++
	}
	return i
}

// EncodeField writes key to sink as an object field name, choosing the
// cheapest of the four token forms: indexed (key already seen), prefix,
// prefix+suffix, or full name. See §4.7 for the exact form-selection rules.
func (fe *FieldEncoder) EncodeField(sink ByteSink, key []byte) error {
	hash := fe.hasher.Hash(key)
	if idx := fe.get(hash, key); idx >= 0 {
		if err := encodeFieldLength(sink, headFieldIndexed, idx); err != nil {
			return err
		}
		fe.lastKey = key
		return nil
	}

	if err := fe.encodeNewField(sink, key); err != nil {
		return err
	}
	if _, err := fe.add(hash, key); err != nil {
		return err
	}
	fe.lastKey = key
	return nil
}

func (fe *FieldEncoder) encodeNewField(sink ByteSink, key []byte) error {
	if fe.lastKey == nil || len(fe.lastKey) <= 4 {
		return encodeFullField(sink, key)
	}

	prefix := commonPrefixLen(fe.lastKey, key)
	if prefix > 0xff {
		prefix = 0xff
	}
	suffix := commonSuffixLen(fe.lastKey[prefix:], key[prefix:])
	if suffix > 0xff {
		suffix = 0xff
	}

	switch {
	case suffix > 2:
		return encodePrefixSuffixField(sink, key, prefix, suffix)
	case prefix > 2:
		return encodePrefixField(sink, key, prefix)
	default:
		return encodeFullField(sink, key)
	}
}

func encodeFullField(sink ByteSink, key []byte) error {
	if err := encodeFieldLength(sink, headFieldFull, len(key)); err != nil {
		return err
	}
	return sink.WriteBytes(key)
}

func encodePrefixField(sink ByteSink, key []byte, prefix int) error {
	length := len(key) - prefix
	if err := encodeFieldLength(sink, headFieldPrefix, length); err != nil {
		return err
	}
	if err := sink.WriteU8(byte(prefix)); err != nil {
		return err
	}
	return sink.WriteBytes(key[prefix:])
}

func encodePrefixSuffixField(sink ByteSink, key []byte, prefix, suffix int) error {
	length := len(key) - prefix - suffix
	if err := encodeFieldLength(sink, headFieldPrefixSuffix, length); err != nil {
		return err
	}
	if err := sink.WriteU8(byte(prefix)); err != nil {
		return err
	}
	if err := sink.WriteU8(byte(suffix)); err != nil {
		return err
	}
	return sink.WriteBytes(key[prefix : len(key)-suffix])
}

func roundUpPow2(n int) int {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
