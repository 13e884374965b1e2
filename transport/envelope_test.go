// Copyright 2020-2026 The Rawser Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package transport_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/overlookmotel/rawser/transport"
)

func TestEncodeDecodeUncompressed(t *testing.T) {
	t.Parallel()

	buf := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	wire := transport.Encode(buf, false)

	got, err := transport.Decode(wire)
	require.NoError(t, err)
	assert.Equal(t, buf, got)
}

func TestEncodeDecodeCompressed(t *testing.T) {
	t.Parallel()

	buf := bytes.Repeat([]byte("abcdefgh"), 1024)
	wire := transport.Encode(buf, true)
	assert.Less(t, len(wire), len(buf))

	got, err := transport.Decode(wire)
	require.NoError(t, err)
	assert.Equal(t, buf, got)
}

func TestEncodeSkipsCompressionWhenItWouldGrow(t *testing.T) {
	t.Parallel()

	// Already-high-entropy data: s2 can't shrink it, so Encode should leave
	// it uncompressed rather than pay the compression overhead for nothing.
	buf := []byte{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02, 0x03, 0x04}
	wire := transport.Encode(buf, true)
	assert.Equal(t, byte(0), wire[4], "compressed flag should be clear")

	got, err := transport.Decode(wire)
	require.NoError(t, err)
	assert.Equal(t, buf, got)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	t.Parallel()

	wire := transport.Encode([]byte("hello"), false)
	wire[0] ^= 0xff

	_, err := transport.Decode(wire)
	assert.Error(t, err)
}

func TestDecodeRejectsTruncated(t *testing.T) {
	t.Parallel()

	_, err := transport.Decode([]byte{1, 2, 3})
	assert.Error(t, err)
}
