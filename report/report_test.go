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

package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refsync/refsync/pktline"
)

func TestLinesAndPrefixed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, pktline.WriteString(&buf, "unpack ok\n"))
	require.NoError(t, pktline.WriteString(&buf, "ok refs/heads/main\n"))
	require.NoError(t, pktline.WriteFlush(&buf))

	lines, err := Lines(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"unpack ok", "ok refs/heads/main"}, lines)
	assert.Equal(t, []string{"remote: unpack ok", "remote: ok refs/heads/main"}, Prefixed(lines))
}
