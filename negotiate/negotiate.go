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

// Package negotiate drives the want/have/done fetch dialogue against an
// upload-pack peer and confirms the terminating acknowledgement.
//
// Deliberately unimplemented: the multi_ack / multi_ack_detailed
// acknowledgement variants. By never advertising them, the remote is
// required to answer a single NAK after `done`, collapsing negotiation to
// a one-shot exchange instead of an interactive rounds-of-ACKs loop.
package negotiate

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/refsync/refsync/capability"
	"github.com/refsync/refsync/pktline"
)

// ErrForbiddenCapability is returned when the caller attaches multi_ack or
// multi_ack_detailed to the negotiator; neither is supported.
var ErrForbiddenCapability = errors.New("negotiate: multi_ack capabilities are not supported")

// ErrUnexpectedResponse is returned when the packet following `done` is not
// a bare "NAK" Data packet.
var ErrUnexpectedResponse = errors.New("negotiate: expected NAK after done")

// RemoteError wraps a fatal `ERR <message>` line sent by the remote
// instead of the expected NAK, surfaced distinctly from a malformed or
// unexpected response so callers can log the remote's stated reason.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("negotiate: remote error: %s", e.Message)
}

// Negotiator drives the fetch dialogue over a single peer's reader/writer
// pair.
type Negotiator struct {
	r io.Reader
	w io.Writer
}

// New returns a Negotiator bound to r and w.
func New(r io.Reader, w io.Writer) *Negotiator {
	return &Negotiator{r: r, w: w}
}

func forbidden(c capability.Attachment) bool {
	return c.Cap == capability.MultiAck || c.Cap == capability.MultiAckDetailed
}

// RequestPack runs the want/have/done dialogue. It reports whether a pack
// body is expected to follow. caps is attached only to the first `want`
// line, as mandated by the wire format.
func (n *Negotiator) RequestPack(want, have []string, caps []capability.Attachment) (bool, error) {
	for _, c := range caps {
		if forbidden(c) {
			return false, ErrForbiddenCapability
		}
	}

	sentWant := false
	for i, id := range want {
		cmd := "want " + id
		if i == 0 {
			for _, c := range caps {
				cmd += " " + c.Wire()
			}
		}
		if err := pktline.WriteString(n.w, cmd); err != nil {
			return false, errors.Wrap(err, "negotiate: writing want")
		}
		sentWant = true
	}

	if err := pktline.WriteFlush(n.w); err != nil {
		return false, errors.Wrap(err, "negotiate: writing flush")
	}

	if !sentWant {
		return false, nil
	}

	for _, id := range have {
		if err := pktline.WriteString(n.w, "have "+id); err != nil {
			return false, errors.Wrap(err, "negotiate: writing have")
		}
	}
	if err := pktline.WriteString(n.w, "done"); err != nil {
		return false, errors.Wrap(err, "negotiate: writing done")
	}

	p, err := pktline.Decode(n.r, true)
	if err != nil {
		return false, errors.Wrap(err, "negotiate: reading acknowledgement")
	}
	if p.Kind != pktline.KindData {
		return false, ErrUnexpectedResponse
	}
	if len(p.Data) >= 4 && string(p.Data[:4]) == "ERR " {
		return false, &RemoteError{Message: string(p.Data[4:])}
	}
	if string(p.Data) != "NAK" {
		return false, ErrUnexpectedResponse
	}

	return true, nil
}
