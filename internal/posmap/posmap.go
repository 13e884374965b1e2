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

// Package posmap implements the position mapping the walker uses to
// translate source addresses, inside the allocation currently being copied,
// into their corresponding output offsets.
package posmap

import "github.com/overlookmotel/rawser/internal/xunsafe"

// Map is the base correspondence for one allocation: the source address it
// starts at, and the output position it was copied to.
type Map struct {
	InputAddr xunsafe.Addr
	OutputPos int
}

// PosFor derives the output position of addr, which must lie within the
// allocation this Map currently describes.
func (m Map) PosFor(addr xunsafe.Addr) int {
	return addr.Sub(m.InputAddr) + m.OutputPos
}
