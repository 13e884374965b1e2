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

package leaf_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/overlookmotel/rawser"
	"github.com/overlookmotel/rawser/leaf"
)

type int32Slice struct {
	S leaf.OwnedSlice[int32Leaf]
}

func (t *int32Slice) Walk(s *rawser.Serializer) {
	leaf.WalkOwnedSlice(s, &t.S)
}

func TestWalkOwnedSliceEmptyShrinksCapacity(t *testing.T) {
	t.Parallel()

	src := make([]int32Leaf, 0, 4)
	root := &int32Slice{S: leaf.NewOwnedSlice(src)}

	s, err := rawser.New(&rawser.Complete{}, rawser.DefaultParams)
	require.NoError(t, err)
	rawser.SerializeValue(s, root)
	a := s.Finalize()

	out := (*int32Slice)(unsafe.Pointer(&a.Data()[0]))
	assert.Equal(t, 0, out.S.Len())
	assert.Equal(t, 0, cap(out.S.Slice()))
}

func TestWalkOwnedSliceRoundTrip(t *testing.T) {
	t.Parallel()

	src := make([]int32Leaf, 0, 8)
	for i := range 5 {
		src = append(src, int32Leaf{V: int32(i * 10)})
	}
	root := &int32Slice{S: leaf.NewOwnedSlice(src)}

	s, err := rawser.New(&rawser.Complete{}, rawser.DefaultParams)
	require.NoError(t, err)
	rawser.SerializeValue(s, root)
	a := s.Finalize()

	out := (*int32Slice)(unsafe.Pointer(&a.Data()[0]))
	require.Equal(t, 5, out.S.Len())
	assert.Equal(t, 5, cap(out.S.Slice()))
	for i, v := range out.S.Slice() {
		assert.Equal(t, int32(i*10), v.V)
	}
}
