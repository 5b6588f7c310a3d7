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

import "io"

const hexDigits = "0123456789abcdef"

// putHeader writes the four-byte lowercase-hex header for n into buf.
func putHeader(buf []byte, n int) {
	buf[0] = hexDigits[(n>>12)&0xf]
	buf[1] = hexDigits[(n>>8)&0xf]
	buf[2] = hexDigits[(n>>4)&0xf]
	buf[3] = hexDigits[n&0xf]
}

// Encode writes p to w in pkt-line wire format. No trailing newline is
// added; callers that need one must include it in the Data payload.
func Encode(w io.Writer, p Packet) error {
	switch p.Kind {
	case KindFlush:
		_, err := w.Write([]byte("0000"))
		return err
	case KindDelimiter:
		_, err := w.Write([]byte("0001"))
		return err
	case KindResponseEnd:
		_, err := w.Write([]byte("0002"))
		return err
	default:
		return WriteData(w, p.Data)
	}
}

// WriteData encodes payload as a Data packet.
func WriteData(w io.Writer, payload []byte) error {
	if len(payload) > MaxPayload {
		return ErrTooLong
	}
	var hdr [4]byte
	putHeader(hdr[:], len(payload)+4)
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

// WriteString encodes s as a Data packet.
func WriteString(w io.Writer, s string) error {
	return WriteData(w, []byte(s))
}

// WriteFlush writes the flush sentinel.
func WriteFlush(w io.Writer) error {
	_, err := w.Write([]byte("0000"))
	return err
}

// WriteDelimiter writes the delimiter sentinel.
func WriteDelimiter(w io.Writer) error {
	_, err := w.Write([]byte("0001"))
	return err
}

// WriteResponseEnd writes the response-end sentinel.
func WriteResponseEnd(w io.Writer) error {
	_, err := w.Write([]byte("0002"))
	return err
}
