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

package leaf

import "github.com/overlookmotel/rawser"

// WalkSlice is the by-value iteration helper §4.5 calls for for fixed-length
// collections: Go arrays are copied in place as part of the enclosing
// struct's byte image (no owned-pointer edge, unlike OwnedSlice), so all
// that is left for a hand-written Walk method to do is recurse into each
// element in declaration order. elems should be a slice view over the
// array field (elems[:] of a [N]T field), never a copy, so recursion sees
// the same addresses the rest of the struct's Walk is using.
func WalkSlice[T any, PT rawser.Walkable[T]](s *rawser.Serializer, elems []T) {
	for i := range elems {
		PT(&elems[i]).Walk(s)
	}
}
