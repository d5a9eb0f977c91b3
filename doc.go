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

// Package yajbe implements YAJBE, a compact binary encoding for JSON-shaped
// values (null, booleans, integers, floats, byte strings, UTF-8 strings,
// arrays, objects).
//
// A ValueEncoder writes a sequence of typed tokens to a ByteSink; a
// ValueDecoder reads the same token stream back from a ByteSource one token
// at a time via Next, followed by a typed read of the payload. Object field
// names are not interned as plain strings: a FieldEncoder/FieldDecoder pair
// deduplicates them into a small-integer dictionary and further compresses
// each new key against the previously written key with a prefix/suffix
// delta, so repeated or structurally similar keys cost only a few bytes.
//
// The field tables and the decoder's name arena are allocated once, by their
// constructors, with a caller-chosen fixed capacity, and never grow; the
// in-memory byte sink/source run over caller-owned buffers. A single codec
// instance is not safe for concurrent use.
package yajbe
