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

type withOptionalBox struct {
	O leaf.Option[boxedInt32]
}

func (w *withOptionalBox) Walk(s *rawser.Serializer) {
	leaf.WalkOption(s, &w.O)
}

func TestWalkOptionAbsent(t *testing.T) {
	t.Parallel()

	root := &withOptionalBox{O: leaf.None[boxedInt32]()}
	s, err := rawser.New(&rawser.Complete{}, rawser.DefaultParams)
	require.NoError(t, err)
	rawser.SerializeValue(s, root)
	a := s.Finalize()

	out := (*withOptionalBox)(unsafe.Pointer(&a.Data()[0]))
	_, present := out.O.Value()
	assert.False(t, present)
}

func TestWalkOptionPresent(t *testing.T) {
	t.Parallel()

	inner := boxedInt32{V: leaf.NewBox(int32Leaf{V: 99})}
	root := &withOptionalBox{O: leaf.Some(inner)}

	s, err := rawser.New(&rawser.Complete{}, rawser.DefaultParams)
	require.NoError(t, err)
	rawser.SerializeValue(s, root)
	a := s.Finalize()

	out := (*withOptionalBox)(unsafe.Pointer(&a.Data()[0]))
	v, present := out.O.Value()
	require.True(t, present)
	got := v.V.Get()
	require.NotNil(t, got)
	assert.Equal(t, int32(99), got.V)
}
