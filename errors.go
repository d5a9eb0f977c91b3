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

import "errors"

// Sentinel errors returned by the codec. Wrap with fmt.Errorf("...: %w", err)
// for context; compare with errors.Is.
var (
	// ErrOutOfSpace is returned when a sink cannot accept another byte, a
	// source has fewer bytes than requested, or a field table/name arena
	// is exhausted.
	ErrOutOfSpace = errors.New("yajbe: out of space")

	// ErrInvalidToken is returned when a typed read is attempted against
	// an item_type that does not match (e.g. DecodeInt on a STRING head).
	ErrInvalidToken = errors.New("yajbe: invalid token for requested type")

	// ErrUnsupportedTag is returned when a typed read is attempted for a
	// reserved tag (FLOAT_VLE, BIG_DECIMAL, ENUM_CONFIG, ENUM_STRING)
	// whose payload this codec does not implement.
	ErrUnsupportedTag = errors.New("yajbe: unsupported reserved tag")

	// ErrMalformed is returned for an unrecognised field-name head byte,
	// an integer width outside [1,8], or a field index beyond what the
	// wire format can address.
	ErrMalformed = errors.New("yajbe: malformed stream")
)
