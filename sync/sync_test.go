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

package sync

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refsync/refsync/pktline"
	"github.com/refsync/refsync/pushcmd"
)

const (
	idA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
)

func sideband(t *testing.T, frames ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, f := range frames {
		require.NoError(t, pktline.WriteData(&buf, f))
	}
	require.NoError(t, pktline.WriteFlush(&buf))
	return buf.Bytes()
}

func reportBytes(t *testing.T, lines ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, l := range lines {
		require.NoError(t, pktline.WriteString(&buf, l+"\n"))
	}
	require.NoError(t, pktline.WriteFlush(&buf))
	return buf.Bytes()
}

func TestRunFetchesAndPushesNewRef(t *testing.T) {
	var src bytes.Buffer
	// Source advertisement: one ref, no caps of interest.
	require.NoError(t, pktline.WriteString(&src, idA+" refs/heads/main\x00side-band-64k"))
	require.NoError(t, pktline.WriteFlush(&src))
	// NAK acknowledgement after negotiation.
	require.NoError(t, pktline.WriteString(&src, "NAK"))
	// Side-band pack payload on channel 1.
	src.Write(sideband(t, append([]byte{0x01}, "PACKDATA"...)))

	var dst bytes.Buffer
	// Destination advertisement: empty repository.
	require.NoError(t, pktline.WriteString(&dst, "0000000000000000000000000000000000000000 capabilities^{}\x00report-status side-band-64k"))
	require.NoError(t, pktline.WriteFlush(&dst))
	// Push report, itself side-band wrapped since side-band-64k was requested.
	dst.Write(sideband(t, append([]byte{0x01}, reportBytes(t, "unpack ok", "ok refs/heads/main")...)))

	var dstOut bytes.Buffer
	srcPeer := Peer{Label: "source", Reader: &src, Writer: &bytes.Buffer{}}
	dstPeer := Peer{Label: "dest", Reader: &dst, Writer: &dstOut}

	result, err := Run(context.Background(), srcPeer, dstPeer, nil, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, pushcmd.Sending, result.PushActivity)
	assert.Equal(t, 1, result.WantCount)
	assert.Equal(t, 0, result.HaveCount)
	assert.Equal(t, []string{"unpack ok", "ok refs/heads/main"}, result.ReportLines)
	assert.Contains(t, dstOut.String(), idA)
}

func TestRunNoDifferenceProducesNothing(t *testing.T) {
	var src bytes.Buffer
	require.NoError(t, pktline.WriteString(&src, idA+" refs/heads/main\x00"))
	require.NoError(t, pktline.WriteFlush(&src))
	require.NoError(t, pktline.WriteString(&src, "NAK"))

	var dst bytes.Buffer
	require.NoError(t, pktline.WriteString(&dst, idA+" refs/heads/main\x00report-status"))
	require.NoError(t, pktline.WriteFlush(&dst))

	var dstOut bytes.Buffer
	srcPeer := Peer{Label: "source", Reader: &src, Writer: &bytes.Buffer{}}
	dstPeer := Peer{Label: "dest", Reader: &dst, Writer: &dstOut}

	result, err := Run(context.Background(), srcPeer, dstPeer, nil, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, pushcmd.Nothing, result.PushActivity)
	assert.Equal(t, 0, result.WantCount)
	assert.Empty(t, result.ReportLines)
}
