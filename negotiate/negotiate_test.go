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

package negotiate

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refsync/refsync/capability"
	"github.com/refsync/refsync/pktline"
)

func TestZeroWantsEndsDialogue(t *testing.T) {
	var out bytes.Buffer
	n := New(strings.NewReader(""), &out)

	packExpected, err := n.RequestPack(nil, nil, nil)
	require.NoError(t, err)
	assert.False(t, packExpected)
	assert.Equal(t, []byte("0000"), out.Bytes())
}

func TestHappyPath(t *testing.T) {
	var out bytes.Buffer
	var in bytes.Buffer
	require.NoError(t, pktline.WriteString(&in, "NAK"))

	n := New(&in, &out)
	caps := []capability.Attachment{
		capability.With(capability.ThinPack),
		capability.WithValue(capability.Agent, "x/1"),
	}
	packExpected, err := n.RequestPack([]string{"A"}, []string{"B"}, caps)
	require.NoError(t, err)
	assert.True(t, packExpected)

	var expected bytes.Buffer
	require.NoError(t, pktline.WriteString(&expected, "want A thin-pack agent=x/1"))
	require.NoError(t, pktline.WriteFlush(&expected))
	require.NoError(t, pktline.WriteString(&expected, "have B"))
	require.NoError(t, pktline.WriteString(&expected, "done"))
	assert.Equal(t, expected.Bytes(), out.Bytes())
}

func TestForbidsMultiAck(t *testing.T) {
	var out bytes.Buffer
	n := New(bytes.NewReader(nil), &out)
	_, err := n.RequestPack([]string{"A"}, nil, []capability.Attachment{capability.With(capability.MultiAck)})
	assert.ErrorIs(t, err, ErrForbiddenCapability)
}

func TestOnlyFirstWantCarriesCaps(t *testing.T) {
	var out bytes.Buffer
	var in bytes.Buffer
	require.NoError(t, pktline.WriteString(&in, "NAK"))

	n := New(&in, &out)
	caps := []capability.Attachment{capability.With(capability.ThinPack)}
	_, err := n.RequestPack([]string{"A", "B"}, nil, caps)
	require.NoError(t, err)

	p1, err := pktline.Decode(&out, true)
	require.NoError(t, err)
	assert.Equal(t, "want A thin-pack", string(p1.Data))

	p2, err := pktline.Decode(&out, true)
	require.NoError(t, err)
	assert.Equal(t, "want B", string(p2.Data))
}

func TestNonNAKResponseFails(t *testing.T) {
	var out bytes.Buffer
	var in bytes.Buffer
	require.NoError(t, pktline.WriteString(&in, "ACK something"))

	n := New(&in, &out)
	_, err := n.RequestPack([]string{"A"}, nil, nil)
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestRemoteErrSurfacedDistinctly(t *testing.T) {
	var out bytes.Buffer
	var in bytes.Buffer
	require.NoError(t, pktline.WriteString(&in, "ERR repository not found"))

	n := New(&in, &out)
	_, err := n.RequestPack([]string{"A"}, nil, nil)
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, "repository not found", remoteErr.Message)
}
