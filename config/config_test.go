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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/overlookmotel/rawser"
	"github.com/overlookmotel/rawser/config"
)

func TestDefaultMatchesRawserDefaults(t *testing.T) {
	t.Parallel()

	def := config.Default()
	p, err := def.Params()
	require.NoError(t, err)
	assert.Equal(t, rawser.DefaultParams, p)
	assert.Equal(t, config.PolicyComplete, def.Policy)
}

func TestLoadFillsMissingFieldsFromDefault(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "rawser.yaml")
	yamlSrc := "policy: rel_ptr\narena:\n  max_capacity: 65536\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlSrc), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, config.PolicyRelPtr, cfg.Policy)
	assert.Equal(t, 65536, cfg.Arena.MaxCapacity)
	assert.Equal(t, rawser.DefaultParams.StorageAlign, cfg.Arena.StorageAlign)
	assert.Equal(t, "blobs", cfg.BlobStore.Dir)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}

func TestNewPolicyEveryVariant(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name config.Policy
		want rawser.Policy
	}{
		{config.PolicyPureCopy, &rawser.PureCopy{}},
		{config.PolicyPosTracking, &rawser.PosTracking{}},
		{config.PolicyRelPtr, &rawser.RelPtr{}},
		{config.PolicyComplete, &rawser.Complete{}},
	}
	for _, c := range cases {
		cfg := config.Default()
		cfg.Policy = c.name
		p, err := cfg.NewPolicy()
		require.NoError(t, err)
		assert.IsType(t, c.want, p)
	}
}

func TestNewPolicyUnknown(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Policy = "not-a-policy"
	_, err := cfg.NewPolicy()
	assert.Error(t, err)
}

func TestParamsRejectsInvalidArena(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Arena.MaxValueAlign = 3 // not a power of two
	_, err := cfg.Params()
	assert.Error(t, err)
}
