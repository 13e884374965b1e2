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

package rawser_test

import (
	"encoding/binary"
	"fmt"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiendc/go-deepcopy"

	"github.com/overlookmotel/rawser"
	"github.com/overlookmotel/rawser/leaf"
)

func reinterpret[T any](data []byte) *T {
	return (*T)(unsafe.Pointer(&data[0]))
}

func roundUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// primitiveStruct has only primitive fields, so it embeds rawser.Leaf for a
// no-op Walk rather than writing one by hand.
type primitiveStruct struct {
	rawser.Leaf
	I8  int8
	I16 int16
	I32 int32
	I64 int64
	U8  uint8
	U16 uint16
	U32 uint32
	U64 uint64
	F32 float32
	F64 float64
	B   bool
	R   rune
}

func TestPrimitiveStructRoundTrip(t *testing.T) {
	t.Parallel()

	root := &primitiveStruct{
		I8: -12, I16: -1234, I32: -123456789, I64: -123456789012345,
		U8: 200, U16: 60000, U32: 4000000000, U64: 18000000000000000000,
		F32: 3.5, F64: 2.71828, B: true, R: 'λ',
	}

	s, err := rawser.New(&rawser.Complete{}, rawser.DefaultParams)
	require.NoError(t, err)
	rawser.SerializeValue(s, root)
	a := s.Finalize()

	want := roundUp(int(unsafe.Sizeof(*root)), rawser.DefaultParams.ValueAlign)
	assert.Equal(t, want, a.Len())

	out := reinterpret[primitiveStruct](a.Data())
	assert.Equal(t, *root, *out)
}

type int32Leaf struct {
	rawser.Leaf
	V int32
}

type boxedPrimitive struct {
	B leaf.Box[int32Leaf]
}

func (b *boxedPrimitive) Walk(s *rawser.Serializer) {
	leaf.WalkBox(s, &b.B)
}

func TestBoxedPrimitive(t *testing.T) {
	t.Parallel()

	root := &boxedPrimitive{B: leaf.NewBox(int32Leaf{V: 0x04050607})}

	s, err := rawser.New(&rawser.Complete{}, rawser.DefaultParams)
	require.NoError(t, err)
	rawser.SerializeValue(s, root)
	a := s.Finalize()

	wordSize := int(unsafe.Sizeof(uintptr(0)))
	ptrWord := *(*uintptr)(unsafe.Pointer(&a.Data()[0]))
	base := uintptr(unsafe.Pointer(&a.Data()[0]))
	pointeeOffset := int(ptrWord - base)

	wantOffset := roundUp(int(unsafe.Sizeof(*root)), rawser.DefaultParams.ValueAlign)
	assert.Equal(t, wantOffset, pointeeOffset)
	require.LessOrEqual(t, pointeeOffset+wordSize, a.Len())

	gotValue := int32(binary.LittleEndian.Uint32(a.Data()[pointeeOffset : pointeeOffset+4]))
	assert.Equal(t, int32(0x04050607), gotValue)

	out := reinterpret[boxedPrimitive](a.Data())
	got := out.B.Get()
	require.NotNil(t, got)
	assert.Equal(t, int32(0x04050607), got.V)
}

type emptySliceRoot struct {
	S leaf.OwnedSlice[int32Leaf]
}

func (e *emptySliceRoot) Walk(s *rawser.Serializer) {
	leaf.WalkOwnedSlice(s, &e.S)
}

func TestEmptyOwnedSliceWithSpareCapacity(t *testing.T) {
	t.Parallel()

	src := make([]int32Leaf, 0, 4)
	root := &emptySliceRoot{S: leaf.NewOwnedSlice(src)}

	s, err := rawser.New(&rawser.Complete{}, rawser.DefaultParams)
	require.NoError(t, err)
	rawser.SerializeValue(s, root)
	a := s.Finalize()

	wordSize := int(unsafe.Sizeof(uintptr(0)))
	assert.Equal(t, 3*wordSize, a.Len())

	out := reinterpret[emptySliceRoot](a.Data())
	assert.Equal(t, 0, out.S.Len())
	assert.Equal(t, 0, cap(out.S.Slice()))
}

type byteLeaf struct {
	rawser.Leaf
	V byte
}

type int8Leaf struct {
	rawser.Leaf
	V int8
}

// growingStruct forces several arena reallocations mid-walk when serialized
// with a tiny initial capacity: a boxed value, an owned byte slice, an owned
// string, and a second boxed value, each opening its own allocation.
type growingStruct struct {
	Boxed32 leaf.Box[int32Leaf]
	Bytes   leaf.OwnedSlice[byteLeaf]
	Str     leaf.OwnedString
	Boxed8  leaf.Box[int8Leaf]
}

func (g *growingStruct) Walk(s *rawser.Serializer) {
	leaf.WalkBox(s, &g.Boxed32)
	leaf.WalkOwnedSlice(s, &g.Bytes)
	leaf.WalkOwnedString(s, &g.Str)
	leaf.WalkBox(s, &g.Boxed8)
}

func TestGrowingStructSurvivesReallocation(t *testing.T) {
	t.Parallel()

	bytes := make([]byteLeaf, 0, 16)
	for i := range 10 {
		bytes = append(bytes, byteLeaf{V: byte(i)})
	}
	const text = "forty-three bytes of owned string data here"
	require.Len(t, text, 43)

	root := &growingStruct{
		Boxed32: leaf.NewBox(int32Leaf{V: 0x11223344}),
		Bytes:   leaf.NewOwnedSlice(bytes),
		Str:     leaf.NewOwnedString(text),
		Boxed8:  leaf.NewBox(int8Leaf{V: -5}),
	}

	s, err := rawser.NewWithCapacity(&rawser.Complete{}, rawser.DefaultParams, 1)
	require.NoError(t, err)
	rawser.SerializeValue(s, root)
	a := s.Finalize()

	out := reinterpret[growingStruct](a.Data())

	got32 := out.Boxed32.Get()
	require.NotNil(t, got32)
	assert.Equal(t, int32(0x11223344), got32.V)

	require.Equal(t, 10, out.Bytes.Len())
	assert.Equal(t, 10, cap(out.Bytes.Slice()))
	for i, v := range out.Bytes.Slice() {
		assert.Equal(t, byte(i), v.V)
	}

	assert.Equal(t, text, out.Str.String())

	got8 := out.Boxed8.Get()
	require.NotNil(t, got8)
	assert.Equal(t, int8(-5), got8.V)
}

type playerRecord struct {
	Name   leaf.OwnedString
	Scores leaf.OwnedSlice[int32Leaf]
}

func (p *playerRecord) Walk(s *rawser.Serializer) {
	leaf.WalkOwnedString(s, &p.Name)
	leaf.WalkOwnedSlice(s, &p.Scores)
}

type world struct {
	Players leaf.OwnedSlice[playerRecord]
}

func (w *world) Walk(s *rawser.Serializer) {
	leaf.WalkOwnedSlice(s, &w.Players)
}

func TestTreeOf500NestedRecords(t *testing.T) {
	t.Parallel()

	const n = 500
	players := make([]playerRecord, n)
	for i := range n {
		scores := make([]int32Leaf, 0, 3)
		for j := 0; j < 3; j++ {
			scores = append(scores, int32Leaf{V: int32(i*10 + j)})
		}
		players[i] = playerRecord{
			Name:   leaf.NewOwnedString(fmt.Sprintf("player-%03d", i)),
			Scores: leaf.NewOwnedSlice(scores),
		}
	}
	root := &world{Players: leaf.NewOwnedSlice(players)}

	s, err := rawser.New(&rawser.Complete{}, rawser.DefaultParams)
	require.NoError(t, err)
	rawser.SerializeValue(s, root)
	a := s.Finalize()

	out := reinterpret[world](a.Data())
	require.Equal(t, n, out.Players.Len())

	for i, p := range out.Players.Slice() {
		assert.Equal(t, fmt.Sprintf("player-%03d", i), p.Name.String())
		require.Equal(t, 3, p.Scores.Len())
		for j, sc := range p.Scores.Slice() {
			assert.Equal(t, int32(i*10+j), sc.V)
		}
	}
}

// unit is the zero-sized leaf type: no fields beyond the embedded Leaf.
type unit struct {
	rawser.Leaf
}

type zstSliceRoot struct {
	Units leaf.OwnedSlice[unit]
}

func (z *zstSliceRoot) Walk(s *rawser.Serializer) {
	leaf.WalkOwnedSlice(s, &z.Units)
}

func TestZeroSizedOwnedSliceAddsNoBytes(t *testing.T) {
	t.Parallel()

	units := make([]unit, 1000)
	root := &zstSliceRoot{Units: leaf.NewOwnedSlice(units)}

	s, err := rawser.New(&rawser.Complete{}, rawser.DefaultParams)
	require.NoError(t, err)
	rawser.SerializeValue(s, root)
	a := s.Finalize()

	wordSize := int(unsafe.Sizeof(uintptr(0)))
	assert.Equal(t, 3*wordSize, a.Len())

	out := reinterpret[zstSliceRoot](a.Data())
	assert.Equal(t, 1000, out.Units.Len())
}

// TestDeterminism uses RelPtr rather than Complete: Complete's pointer words
// hold real heap addresses, which differ run to run by construction, so
// byte-identical output is only a meaningful property of a policy whose
// pointer words are position-independent.
func TestDeterminism(t *testing.T) {
	t.Parallel()

	newRoot := func() *growingStruct {
		return &growingStruct{
			Boxed32: leaf.NewBox(int32Leaf{V: 7}),
			Bytes:   leaf.NewOwnedSlice([]byteLeaf{{V: 1}, {V: 2}, {V: 3}}),
			Str:     leaf.NewOwnedString("deterministic"),
			Boxed8:  leaf.NewBox(int8Leaf{V: 1}),
		}
	}

	run := func() []byte {
		s, err := rawser.New(&rawser.RelPtr{}, rawser.DefaultParams)
		require.NoError(t, err)
		rawser.SerializeValue(s, newRoot())
		data := s.Finalize().Data()
		return append([]byte(nil), data...)
	}

	first, second := run(), run()
	assert.Equal(t, first, second)
}

// TestSerializeDoesNotMutateInput snapshots the input graph with
// go-deepcopy before serializing, then asserts the original is still equal
// to the snapshot afterward: a Walk method is only ever supposed to read
// its receiver and write to the Serializer, never back into the source
// graph.
func TestSerializeDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	root := &growingStruct{
		Boxed32: leaf.NewBox(int32Leaf{V: 0x11223344}),
		Bytes:   leaf.NewOwnedSlice([]byteLeaf{{V: 9}, {V: 8}, {V: 7}}),
		Str:     leaf.NewOwnedString("snapshot me"),
		Boxed8:  leaf.NewBox(int8Leaf{V: -9}),
	}

	var snapshot *growingStruct
	require.NoError(t, deepcopy.Copy(&snapshot, &root))

	s, err := rawser.New(&rawser.Complete{}, rawser.DefaultParams)
	require.NoError(t, err)
	rawser.SerializeValue(s, root)
	s.Finalize()

	assert.Equal(t, snapshot.Boxed32.Get().V, root.Boxed32.Get().V)
	assert.Equal(t, snapshot.Bytes.Slice(), root.Bytes.Slice())
	assert.Equal(t, snapshot.Str.String(), root.Str.String())
	assert.Equal(t, snapshot.Boxed8.Get().V, root.Boxed8.Get().V)
}
