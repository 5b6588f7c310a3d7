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

// Package capability is the closed enumeration of wire capability tokens
// recognized by the smart-transport protocol. It is a closed sum rather
// than a plain string set so that protocol-level checks (forbidding
// multi_ack on the negotiator, selecting side-band-64k for the relay) are
// exhaustive: unknown tokens on the wire are simply never ingested.
package capability

// Capability is a closed symbolic value drawn from the fixed token set
// below.
type Capability uint8

const (
	MultiAck Capability = iota
	MultiAckDetailed
	NoDone
	ThinPack
	SideBand
	SideBand64K
	OfsDelta
	Agent
	ObjectFormat
	SymRef
	Shallow
	DeepenSince
	DeepenNot
	DeepenRelative
	NoProgress
	IncludeTag
	ReportStatus
	ReportStatusV2
	DeleteRefs
	Quiet
	Atomic
	PushOptions
	AllowTipSha1InWant
	AllowReachableSha1InWant
	PushCert
	Filter
)

var tokens = map[Capability]string{
	MultiAck:                 "multi_ack",
	MultiAckDetailed:         "multi_ack_detailed",
	NoDone:                   "no-done",
	ThinPack:                 "thin-pack",
	SideBand:                 "side-band",
	SideBand64K:              "side-band-64k",
	OfsDelta:                 "ofs-delta",
	Agent:                    "agent",
	ObjectFormat:             "object-format",
	SymRef:                   "symref",
	Shallow:                  "shallow",
	DeepenSince:              "deepen-since",
	DeepenNot:                "deepen-not",
	DeepenRelative:           "deepen-relative",
	NoProgress:               "no-progress",
	IncludeTag:               "include-tag",
	ReportStatus:             "report-status",
	ReportStatusV2:           "report-status-v2",
	DeleteRefs:               "delete-refs",
	Quiet:                    "quiet",
	Atomic:                   "atomic",
	PushOptions:              "push-options",
	AllowTipSha1InWant:       "allow-tip-sha1-in-want",
	AllowReachableSha1InWant: "allow-reachable-sha1-in-want",
	PushCert:                 "push-cert",
	Filter:                   "filter",
}

var fromToken map[string]Capability

func init() {
	fromToken = make(map[string]Capability, len(tokens))
	for c, s := range tokens {
		fromToken[s] = c
	}
}

// Token returns the canonical ASCII wire token for c.
func (c Capability) Token() string {
	return tokens[c]
}

// String implements fmt.Stringer.
func (c Capability) String() string {
	if s, ok := tokens[c]; ok {
		return s
	}
	return "unknown"
}

// Parse maps a wire token to its symbol. It reports false for unrecognized
// tokens; callers must silently discard those rather than treat them as an
// error, per the advertisement parsing rules.
func Parse(token string) (Capability, bool) {
	c, ok := fromToken[token]
	return c, ok
}

// Attachment pairs a capability with its optional wire value, used by the
// negotiator and push emitter to build `token[=value]` strings.
type Attachment struct {
	Cap      Capability
	Value    string
	HasValue bool
}

// With returns an Attachment with no value.
func With(c Capability) Attachment {
	return Attachment{Cap: c}
}

// WithValue returns an Attachment carrying value.
func WithValue(c Capability, value string) Attachment {
	return Attachment{Cap: c, Value: value, HasValue: true}
}

// Wire renders the attachment as it appears on the wire: the bare token, or
// token=value when a value is present.
func (a Attachment) Wire() string {
	if a.HasValue {
		return a.Cap.Token() + "=" + a.Value
	}
	return a.Cap.Token()
}
