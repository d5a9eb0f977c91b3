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

// classifyTable maps every possible head byte to its Kind. It is built once
// at init time instead of branching on bit patterns on every decode, the
// same shortcut the C reference implementation takes with its TOKEN_MAP.
var classifyTable [256]Kind

func init() {
	for i := range classifyTable {
		classifyTable[i] = kindInvalid
	}

	classifyTable[0x00] = KindNull
	classifyTable[0x01] = KindEOF // streamed-container terminator sentinel
	classifyTable[0x02] = KindFalse
	classifyTable[0x03] = KindTrue
	classifyTable[0x04] = KindFloatVLE
	classifyTable[0x05] = KindFloat32
	classifyTable[0x06] = KindFloat64
	classifyTable[0x07] = KindBigDecimal
	classifyTable[0x08] = KindEnumConfig
	classifyTable[0x09] = KindEnumString
	classifyTable[0x0a] = KindEnumString

	// 0010_0--- : array, fixed or streamed (low nibble 0x0f).
	for i := 0x20; i <= 0x2f; i++ {
		classifyTable[i] = KindArray
	}
	classifyTable[0x2f] = KindArrayEOF

	// 0011_0--- : object, fixed or streamed (low nibble 0x0f).
	for i := 0x30; i <= 0x3f; i++ {
		classifyTable[i] = KindObject
	}
	classifyTable[0x3f] = KindObjectEOF

	// 010xxxxx : positive int family. Low 5 bits <= 23 is an inline value;
	// 24..31 carries a trailing width.
	for i := 0x40; i <= 0x57; i++ {
		classifyTable[i] = KindIntSmall
	}
	for i := 0x58; i <= 0x5f; i++ {
		classifyTable[i] = KindIntPositive
	}

	// 011xxxxx : negative int family (same split).
	for i := 0x60; i <= 0x77; i++ {
		classifyTable[i] = KindIntSmall
	}
	for i := 0x78; i <= 0x7f; i++ {
		classifyTable[i] = KindIntNegative
	}

	// 10xxxxxx : bytes family. Low 6 bits <= 59 is inline; 60..63 carries
	// a trailing width.
	for i := 0x80; i <= 0xbb; i++ {
		classifyTable[i] = KindSmallBytes
	}
	for i := 0xbc; i <= 0xbf; i++ {
		classifyTable[i] = KindBytes
	}

	// 11xxxxxx : string family (same split).
	for i := 0xc0; i <= 0xfb; i++ {
		classifyTable[i] = KindSmallString
	}
	for i := 0xfc; i <= 0xff; i++ {
		classifyTable[i] = KindString
	}
}

// classify returns the Kind for a head byte read from the value stream.
// Field-name head bytes are not decoded through this table: FieldDecoder
// reads and interprets its own head byte directly. NextFieldOrEnd passes an
// object-body head byte through classify only to recognise the terminator.
func classify(head byte) Kind {
	return classifyTable[head]
}
