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

// Option is the rendition of the distilled spec's Option<T>: a discriminant
// byte plus an inline (not boxed) T. Unlike Box, Option never opens a new
// allocation — the value, when present, is copied in place as part of the
// enclosing struct's own byte image, matching the original's "present" /
// "absent" discriminated union rather than an owned-pointer edge.
type Option[T any] struct {
	value   T
	present bool
}

// Some wraps v as present.
func Some[T any](v T) Option[T] { return Option[T]{value: v, present: true} }

// None returns an absent Option.
func None[T any]() Option[T] { return Option[T]{} }

// Present reports whether the Option holds a value.
func (o Option[T]) Present() bool { return o.present }

// Value returns the held value and true, or the zero value and false.
func (o Option[T]) Value() (T, bool) { return o.value, o.present }

// WalkOption implements the Option<T> leaf's walk (§4.5): it recurses into
// the inner value's own Walk only if the Option is present. Because the
// value is stored inline, no new allocation is opened and no pointer is
// written; o must still be the address of the Option field as it exists
// inside the struct being walked, so the inner value's own owned-pointer
// fields see correct addresses.
func WalkOption[T any, PT rawser.Walkable[T]](s *rawser.Serializer, o *Option[T]) {
	if !o.present {
		return
	}
	PT(&o.value).Walk(s)
}
