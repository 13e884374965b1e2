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

package arena_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/overlookmotel/rawser/internal/arena"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	good := arena.DefaultParams
	require.NoError(t, good.Validate())

	bad := good
	bad.StorageAlign = 3
	assert.Error(t, bad.Validate())

	bad = good
	bad.MaxValueAlign = good.StorageAlign * 2
	assert.Error(t, bad.Validate())

	bad = good
	bad.ValueAlign = good.MaxValueAlign * 2
	assert.Error(t, bad.Validate())

	bad = good
	bad.MaxCapacity = 0
	assert.Error(t, bad.Validate())

	bad = good
	bad.MaxCapacity = good.MaxValueAlign + 1
	assert.Error(t, bad.Validate())
}

func TestPushBytesAligns(t *testing.T) {
	t.Parallel()

	a, err := arena.New(arena.DefaultParams)
	require.NoError(t, err)

	pos1 := a.PushBytes([]byte{1}, 1)
	assert.Equal(t, 0, pos1)

	pos2 := a.PushBytes([]byte{2, 3, 4, 5, 6, 7, 8}, 8)
	assert.True(t, pos2%8 == 0, "pos2 not aligned: %d", pos2)
	assert.GreaterOrEqual(t, pos2, pos1+1)
}

func TestGrowthIsPowerOfTwo(t *testing.T) {
	t.Parallel()

	a, err := arena.New(arena.DefaultParams)
	require.NoError(t, err)

	a.Reserve(100)
	assert.True(t, a.Cap() >= 100)
	assert.Equal(t, a.Cap()&(a.Cap()-1), 0, "cap %d is not a power of two", a.Cap())
}

func TestMaxCapacityExceeded(t *testing.T) {
	t.Parallel()

	p := arena.DefaultParams
	p.MaxCapacity = 8
	a, err := arena.New(p)
	require.NoError(t, err)

	assert.Panics(t, func() {
		a.Reserve(9)
	})
}

func TestWriteAtAndReadAt(t *testing.T) {
	t.Parallel()

	a, err := arena.New(arena.DefaultParams)
	require.NoError(t, err)

	pos := a.PushBytes([]byte{0, 0, 0, 0, 0, 0, 0, 0}, 8)
	a.WriteAt(pos, []byte{1, 2, 3, 4})
	assert.Equal(t, []byte{1, 2, 3, 4, 0, 0, 0, 0}, a.ReadAt(pos, 8))
}

func TestShrinkToFit(t *testing.T) {
	t.Parallel()

	a, err := arena.New(arena.DefaultParams)
	require.NoError(t, err)

	a.Reserve(1000)
	a.PushBytes([]byte{1, 2, 3, 4}, 4)
	lenBefore := a.Len()
	a.ShrinkToFit()
	assert.Equal(t, lenBefore, a.Len())
	assert.Less(t, a.Cap(), 1000)
}

func TestReset(t *testing.T) {
	t.Parallel()

	a, err := arena.New(arena.DefaultParams)
	require.NoError(t, err)

	a.PushBytes([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 8)
	capBefore := a.Cap()
	a.Reset()
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, capBefore, a.Cap())
}
