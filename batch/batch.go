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

// Package batch exploits the independence guarantee of §5: distinct
// Serializer instances share no state, so many roots can be serialized
// concurrently. Builder fans N independent SerializeValue calls out across
// goroutines and collects N independent finalized buffers.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/overlookmotel/rawser"
)

// NewPolicy constructs a fresh Policy for one item's Serializer. Policies
// are not safe to share across Serializer instances (Complete carries a
// per-serializer pointer registry), so Builder asks for one per item rather
// than accepting a single shared value.
type NewPolicy func() rawser.Policy

// Result pairs one input item's index with its finalized output.
type Result struct {
	Index int
	Bytes []byte
}

// Builder serializes many independent roots concurrently.
type Builder struct {
	params    rawser.Params
	newPolicy NewPolicy
	// Concurrency caps the number of Serializer instances active at once;
	// zero means unbounded (errgroup.SetLimit is not called).
	Concurrency int
}

// New creates a Builder that serializes with params and a fresh policy per
// item, as produced by newPolicy.
func New(params rawser.Params, newPolicy NewPolicy) *Builder {
	return &Builder{params: params, newPolicy: newPolicy}
}

// Run serializes each of roots concurrently, calling walk(serializer, root)
// to drive each one (mirroring the caller's own SerializeValue call, since
// roots are necessarily of heterogeneous types and cannot all satisfy one
// rawser.Walkable type parameter). Returns one Result per input, in input
// order; ctx cancellation stops any items not yet started and aborts the
// group on the first error, per errgroup's usual contract.
func Run[T any](ctx context.Context, b *Builder, roots []T, walk func(s *rawser.Serializer, root *T) int) ([]Result, error) {
	results := make([]Result, len(roots))

	g, ctx := errgroup.WithContext(ctx)
	if b.Concurrency > 0 {
		g.SetLimit(b.Concurrency)
	}

	for i := range roots {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			s, err := rawser.New(b.newPolicy(), b.params)
			if err != nil {
				return err
			}

			walk(s, &roots[i])
			arena := s.Finalize()
			results[i] = Result{Index: i, Bytes: arena.Data()}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
