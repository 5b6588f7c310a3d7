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

// Package pbuf hashes object ids for de-duplication and assembles
// verb-plus-id pkt-line payloads, both from bytebufferpool scratch buffers
// (with xxhash for the hashing).
package pbuf

import (
	"github.com/cespare/xxhash/v2"
	"github.com/valyala/bytebufferpool"
)

var sep = []byte{'\xff'}

// Hash returns a stable hash for a want/have object id, used by Dedup so
// the orchestrator does not send the same id twice when a peer advertises
// it under multiple refs.
func Hash(id string) uint64 {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.WriteString(id)
	return xxhash.Sum64(buf.Bytes())
}

// Dedup returns ids with duplicate entries removed, preserving first-seen
// order. The order matters because the first "want" line is the only one
// permitted to carry capability attachments.
func Dedup(ids []string) []string {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		h := Hash(id)
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Line assembles a single pkt-line payload from a pooled buffer: the verb,
// a space, the id, and an optional trailing suffix (capability
// attachments or a newline), without per-call allocation churn.
func Line(verb, id, suffix string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.WriteString(verb)
	buf.WriteString(" ")
	buf.WriteString(id)
	buf.WriteString(suffix)
	return buf.String()
}
