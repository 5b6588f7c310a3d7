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

// Package advertisement parses the ref + capability banner a peer sends at
// the start of a smart-transport session.
package advertisement

import (
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/refsync/refsync/capability"
	"github.com/refsync/refsync/pktline"
)

// ErrUnexpectedPacket is returned when a Delimiter or ResponseEnd packet is
// encountered while an advertisement is being read; only Data and Flush are
// valid in that phase.
var ErrUnexpectedPacket = errors.New("advertisement: unexpected packet kind")

// ErrMalformedLine is returned when a Data line has no space separating the
// object id from the ref name.
var ErrMalformedLine = errors.New("advertisement: malformed ref line")

// emptyRepoSentinel is the synthetic ref name an empty repository uses to
// carry capabilities without advertising any real ref.
const emptyRepoSentinel = "capabilities^{}"

// Advertisement is a parsed ref map plus capability map, as produced once
// per peer at the start of a session.
type Advertisement struct {
	// Refs maps ref name to object id. Peeled names (suffixed ^{}) and the
	// empty-repository sentinel are excluded.
	Refs map[string]string

	// Caps maps capability to its value; caps present without a value have
	// no entry here and are recorded only in HasCap.
	Caps map[capability.Capability]string

	// HasCap distinguishes "present with no value" from "absent."
	HasCap map[capability.Capability]bool
}

func newAdvertisement() *Advertisement {
	return &Advertisement{
		Refs:   make(map[string]string),
		Caps:   make(map[capability.Capability]string),
		HasCap: make(map[capability.Capability]bool),
	}
}

func (a *Advertisement) setCap(c capability.Capability, value string, hasValue bool) {
	a.HasCap[c] = true
	if hasValue {
		a.Caps[c] = value
	}
}

// HasCapability reports whether c was advertised.
func (a *Advertisement) HasCapability(c capability.Capability) bool {
	return a.HasCap[c]
}

// Read consumes packets from r until a Flush, parsing each Data line into
// the ref map and capability map.
func Read(r io.Reader) (*Advertisement, error) {
	adv := newAdvertisement()

	for {
		p, err := pktline.Decode(r, true)
		if err != nil {
			return nil, errors.Wrap(err, "advertisement: reading packet")
		}

		switch p.Kind {
		case pktline.KindFlush:
			return adv, nil
		case pktline.KindDelimiter, pktline.KindResponseEnd:
			return nil, ErrUnexpectedPacket
		}

		if err := adv.parseLine(p.Data); err != nil {
			return nil, err
		}
	}
}

func (a *Advertisement) parseLine(line []byte) error {
	refPart := line
	var capsPart []byte
	if idx := bytes.IndexByte(line, 0); idx >= 0 {
		refPart = line[:idx]
		capsPart = line[idx+1:]
	}

	if len(capsPart) > 0 {
		a.parseCaps(string(capsPart))
	}

	sp := bytes.IndexByte(refPart, ' ')
	if sp < 0 {
		return ErrMalformedLine
	}
	id := string(refPart[:sp])
	refname := string(refPart[sp+1:])

	if refname == emptyRepoSentinel || strings.HasSuffix(refname, "^{}") {
		return nil
	}
	a.Refs[refname] = id
	return nil
}

func (a *Advertisement) parseCaps(s string) {
	for _, tok := range strings.Split(s, " ") {
		if tok == "" {
			continue
		}
		name, value, hasValue := tok, "", false
		if idx := strings.IndexByte(tok, '='); idx >= 0 {
			name, value, hasValue = tok[:idx], tok[idx+1:], true
		}
		c, ok := capability.Parse(name)
		if !ok {
			continue
		}
		a.setCap(c, value, hasValue)
	}
}
