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

package relay

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refsync/refsync/pktline"
)

func sideband(t *testing.T, frames ...[]byte) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	for _, f := range frames {
		require.NoError(t, pktline.WriteData(&buf, f))
	}
	require.NoError(t, pktline.WriteFlush(&buf))
	return &buf
}

func TestSideBandDemux(t *testing.T) {
	src := sideband(t,
		append([]byte{0x01}, "hello"...),
		append([]byte{0x02}, "working"...),
		append([]byte{0x01}, "!"...),
	)

	var dst, progress bytes.Buffer
	err := Copy(src, &dst, &progress, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello!", dst.String())
	assert.Equal(t, "working", progress.String())
}

func TestRemoteErrorSurfacedNotFatal(t *testing.T) {
	src := sideband(t, append([]byte{0x03}, "remote says no"...))
	var dst, remoteErr bytes.Buffer
	err := Copy(src, &dst, nil, &remoteErr)
	require.NoError(t, err)
	assert.Empty(t, dst.String())
	assert.Equal(t, "remote says no", remoteErr.String())
}

func TestUnknownChannelIgnored(t *testing.T) {
	src := sideband(t, append([]byte{0x09}, "mystery"...))
	var dst bytes.Buffer
	err := Copy(src, &dst, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, dst.String())
}

func TestEmptyPackLiteral(t *testing.T) {
	require.Len(t, EmptyPack, 32)
	var buf bytes.Buffer
	require.NoError(t, WriteEmptyPack(&buf))
	assert.Equal(t, "PACK", string(buf.Bytes()[:4]))
	assert.Equal(t, []byte{0, 0, 0, 2}, buf.Bytes()[4:8])
	assert.Equal(t, []byte{0, 0, 0, 0}, buf.Bytes()[8:12])
}

func TestBufferCollectsPackBytes(t *testing.T) {
	src := sideband(t, append([]byte{0x01}, "abc"...), append([]byte{0x01}, "def"...))
	got, err := Buffer(src, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcdef"), got)
}
