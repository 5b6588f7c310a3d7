// Copyright 2025 The refsync Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pktline

import "github.com/pkg/errors"

var (
	// ErrReserved is returned when a packet header decodes to the reserved
	// value 0003.
	ErrReserved = errors.New("pktline: reserved length header 0003")

	// ErrTooLong is returned when a caller asks to write a Data payload
	// longer than MaxPayload.
	ErrTooLong = errors.New("pktline: payload exceeds maximum pkt-line length")

	// ErrShortRead is returned when the stream ends inside a declared
	// payload.
	ErrShortRead = errors.New("pktline: unexpected EOF inside packet payload")
)
