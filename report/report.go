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

// Package report parses the receive-pack report-status reply: a pkt-line
// stream encapsulated inside the relay's side-band channel 1, terminated by
// a flush, whose decoded lines are surfaced to the operator prefixed
// "remote: ".
package report

import (
	"bytes"

	"github.com/refsync/refsync/pktline"
)

// Lines decodes buf (the bytes collected from the relay's side-band
// channel 1 during the destination's reply) packet-by-packet, returning
// one string per Data line.
func Lines(buf []byte) ([]string, error) {
	r := bytes.NewReader(buf)
	var lines []string
	for {
		p, err := pktline.Decode(r, true)
		if err != nil {
			return lines, err
		}
		if p.Kind != pktline.KindData {
			return lines, nil
		}
		lines = append(lines, string(p.Data))
	}
}

// Prefixed renders lines the way the operator sees them.
func Prefixed(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = "remote: " + l
	}
	return out
}
