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

package pushcmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refsync/refsync/capability"
	"github.com/refsync/refsync/pktline"
)

func decodeAll(t *testing.T, buf *bytes.Buffer) []pktline.Packet {
	t.Helper()
	var pkts []pktline.Packet
	for {
		p, err := pktline.Decode(buf, false)
		require.NoError(t, err)
		pkts = append(pkts, p)
		if p.IsFlush() {
			return pkts
		}
	}
}

func TestDeleteOnly(t *testing.T) {
	var buf bytes.Buffer
	existing := map[string]string{"refs/heads/main": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}
	activity, err := Emit(&buf, existing, map[string]string{}, []capability.Attachment{capability.With(capability.ReportStatus)})
	require.NoError(t, err)
	assert.Equal(t, Deleting, activity)

	pkts := decodeAll(t, &buf)
	require.Len(t, pkts, 2)
	assert.Equal(t, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa "+NullID+" refs/heads/main\x00report-status\n", string(pkts[0].Data))
	assert.True(t, pkts[1].IsFlush())
}

func TestNothingWhenNoDiff(t *testing.T) {
	var buf bytes.Buffer
	refs := map[string]string{"refs/heads/main": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}
	activity, err := Emit(&buf, refs, refs, []capability.Attachment{capability.With(capability.Atomic)})
	require.NoError(t, err)
	assert.Equal(t, Nothing, activity)

	pkts := decodeAll(t, &buf)
	require.Len(t, pkts, 1)
	assert.True(t, pkts[0].IsFlush())
}

func TestSendingWhenNewRef(t *testing.T) {
	var buf bytes.Buffer
	target := map[string]string{"refs/heads/main": "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"}
	activity, err := Emit(&buf, map[string]string{}, target, nil)
	require.NoError(t, err)
	assert.Equal(t, Sending, activity)
}

func TestNonRefsAndPeeledFiltered(t *testing.T) {
	var buf bytes.Buffer
	existing := map[string]string{
		"HEAD":              "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"refs/tags/v1^{}":   "cccccccccccccccccccccccccccccccccccccccc",
		"refs/heads/stable": "dddddddddddddddddddddddddddddddddddddddd",
	}
	activity, err := Emit(&buf, existing, map[string]string{}, nil)
	require.NoError(t, err)
	assert.Equal(t, Deleting, activity)

	pkts := decodeAll(t, &buf)
	require.Len(t, pkts, 2)
	assert.True(t, strings.Contains(string(pkts[0].Data), "refs/heads/stable"))
}

func TestCapabilityAttachedOnlyOnce(t *testing.T) {
	var buf bytes.Buffer
	existing := map[string]string{
		"refs/heads/a": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"refs/heads/b": "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
	}
	_, err := Emit(&buf, existing, map[string]string{}, []capability.Attachment{capability.With(capability.Atomic)})
	require.NoError(t, err)

	count := strings.Count(buf.String(), "\x00atomic")
	assert.Equal(t, 1, count)
}
