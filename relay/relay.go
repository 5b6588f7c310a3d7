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

// Package relay demultiplexes a side-band pkt-line stream from a source
// peer and re-multiplexes the pack bytes found on it into a destination
// stream.
package relay

import (
	"io"

	"github.com/refsync/refsync/pktline"
)

const (
	channelPack     = 0x01
	channelProgress = 0x02
	channelError    = 0x03
)

// EmptyPack is the canonical thirty-two-byte pack containing zero objects:
// the 'PACK' magic, version 2, object count 0, and the precomputed
// twenty-byte SHA-1 checksum of that twelve-byte header.
var EmptyPack = []byte{
	'P', 'A', 'C', 'K',
	0, 0, 0, 2,
	0, 0, 0, 0,
	0x02, 0x9d, 0x08, 0x82, 0x3b, 0xd8, 0xa8, 0xea, 0xb5, 0x10, 0xad, 0x6a,
	0xc7, 0x5c, 0x82, 0x3c, 0xfd, 0x3e, 0xd3, 0x1e,
}

// WriteEmptyPack writes the canonical empty pack to dst, used when a ref
// update needs a valid object even though nothing was actually fetched.
func WriteEmptyPack(dst io.Writer) error {
	_, err := dst.Write(EmptyPack)
	return err
}

// Copy reads side-band packets from src until a Flush (or any other
// non-Data packet, read defensively) and writes channel-1 bytes verbatim to
// dst. Channel-2 bytes are written to progress, channel-3 bytes to
// remoteErr; neither aborts the transfer. progress and remoteErr may be
// nil, in which case that channel's bytes are discarded.
func Copy(src io.Reader, dst, progress, remoteErr io.Writer) error {
	for {
		p, err := pktline.Decode(src, false)
		if err != nil {
			return err
		}
		if p.Kind != pktline.KindData {
			// Flush terminates the transfer; any other sentinel here is
			// unexpected and we stop defensively rather than loop forever.
			return nil
		}
		if len(p.Data) == 0 {
			continue
		}

		channel, body := p.Data[0], p.Data[1:]
		switch channel {
		case channelPack:
			if _, err := dst.Write(body); err != nil {
				return err
			}
		case channelProgress:
			if progress != nil {
				progress.Write(body)
			}
		case channelError:
			if remoteErr != nil {
				remoteErr.Write(body)
			}
		}
	}
}

// Buffer behaves like Copy but accumulates the side-band channel-1 bytes
// into a single in-memory buffer instead of writing to a destination
// stream, used by the report reader to collect the receive-pack reply.
func Buffer(src io.Reader, progress, remoteErr io.Writer) ([]byte, error) {
	var buf []byte
	collector := writerFunc(func(p []byte) (int, error) {
		buf = append(buf, p...)
		return len(p), nil
	})
	if err := Copy(src, collector, progress, remoteErr); err != nil {
		return nil, err
	}
	return buf, nil
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
