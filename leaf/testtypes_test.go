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

import "github.com/overlookmotel/rawser"

// int32Leaf wraps a primitive so it satisfies rawser.Walkable[int32Leaf]
// with a no-op Walk, the way a hand-written "derive" output would for a
// type with no owned-pointer fields of its own.
type int32Leaf struct {
	rawser.Leaf
	V int32
}

// byteLeaf is a Walkable byte element for OwnedSlice[byte]-shaped tests; no
// test in this package instantiates it yet. Go's builtin byte type has no
// Walk method of its own, so a thin wrapper is needed anywhere a generic
// leaf container requires a Walkable element.
type byteLeaf struct {
	rawser.Leaf
	V byte
}
