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

// Package pushcmd diffs two ref maps and emits the corresponding
// receive-pack update commands.
package pushcmd

import (
	"io"
	"strings"

	"github.com/refsync/refsync/capability"
	"github.com/refsync/refsync/pktline"
)

// NullID is the all-zero object id denoting "no object."
const NullID = "0000000000000000000000000000000000000000"

// Activity classifies what, if anything, Emit produced.
type Activity int

const (
	// Nothing means no command was emitted; the capability list was never
	// attached.
	Nothing Activity = iota
	// Deleting means commands were emitted but none introduced a non-null
	// new id: the push is a pure deletion.
	Deleting
	// Sending means at least one command introduces a non-null new id, so
	// a pack body must follow.
	Sending
)

func isCandidate(name string) bool {
	return strings.HasPrefix(name, "refs/") && !strings.HasSuffix(name, "^{}")
}

func capSuffix(caps []capability.Attachment) string {
	var b strings.Builder
	for _, c := range caps {
		if b.Len() == 0 {
			b.WriteByte(0)
		} else {
			b.WriteByte(' ')
		}
		b.WriteString(c.Wire())
	}
	return b.String()
}

// Emit writes update commands for every ref whose existing and target
// object ids differ, across the union of existing and target ref names
// filtered to refs/* and non-peeled. The first emitted command carries the
// NUL-delimited capability suffix; a trailing Flush always follows.
func Emit(w io.Writer, existing, target map[string]string, caps []capability.Attachment) (Activity, error) {
	candidates := make(map[string]struct{})
	for name := range existing {
		if isCandidate(name) {
			candidates[name] = struct{}{}
		}
	}
	for name := range target {
		if isCandidate(name) {
			candidates[name] = struct{}{}
		}
	}

	suffix := capSuffix(caps)
	first := true
	needPack := false
	emitted := false

	for name := range candidates {
		oldID, ok := existing[name]
		if !ok {
			oldID = NullID
		}
		newID, ok := target[name]
		if !ok {
			newID = NullID
		}
		if oldID == newID {
			continue
		}

		emitted = true
		if newID != NullID {
			needPack = true
		}

		cmd := oldID + " " + newID + " " + name
		if first {
			cmd += suffix
			first = false
		}
		cmd += "\n"

		if err := pktline.WriteString(w, cmd); err != nil {
			return Nothing, err
		}
	}

	if err := pktline.WriteFlush(w); err != nil {
		return Nothing, err
	}

	switch {
	case !emitted:
		return Nothing, nil
	case needPack:
		return Sending, nil
	default:
		return Deleting, nil
	}
}
