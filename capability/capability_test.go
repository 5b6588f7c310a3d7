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

package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenRoundTrip(t *testing.T) {
	tests := []struct {
		cap   Capability
		token string
	}{
		{ThinPack, "thin-pack"},
		{SideBand64K, "side-band-64k"},
		{Agent, "agent"},
		{ReportStatus, "report-status"},
		{OfsDelta, "ofs-delta"},
		{Atomic, "atomic"},
		{MultiAck, "multi_ack"},
		{MultiAckDetailed, "multi_ack_detailed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.token, tt.cap.Token())
		got, ok := Parse(tt.token)
		assert.True(t, ok)
		assert.Equal(t, tt.cap, got)
	}
}

func TestParseUnknownToken(t *testing.T) {
	_, ok := Parse("totally-made-up-capability")
	assert.False(t, ok)
}

func TestAttachmentWire(t *testing.T) {
	assert.Equal(t, "thin-pack", With(ThinPack).Wire())
	assert.Equal(t, "agent=refsync/0.1", WithValue(Agent, "refsync/0.1").Wire())
}
