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

// Package config loads the run-time parameter envelope (rawser.Params) and
// the ambient settings the domain-stack components need, from a YAML file,
// so deployments can tune arena alignment and blob storage paths without a
// recompile.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/overlookmotel/rawser"
)

// ArenaConfig is the YAML-facing shape of rawser.Params; field names are
// lower-cased for a friendlier file format, and every field is optional,
// defaulting to rawser.DefaultParams' corresponding value.
type ArenaConfig struct {
	StorageAlign  int `yaml:"storage_align"`
	MaxValueAlign int `yaml:"max_value_align"`
	ValueAlign    int `yaml:"value_align"`
	MaxCapacity   int `yaml:"max_capacity"`
}

// Policy names the fixup policy a Config selects, by the same names used in
// §4.4: "pure_copy", "pos_tracking", "rel_ptr", "complete".
type Policy string

const (
	PolicyPureCopy    Policy = "pure_copy"
	PolicyPosTracking Policy = "pos_tracking"
	PolicyRelPtr      Policy = "rel_ptr"
	PolicyComplete    Policy = "complete"
)

// BlobStoreConfig configures the blobstore package's on-disk layout.
type BlobStoreConfig struct {
	// Dir is the directory blobs and the manifest file are written under.
	Dir string `yaml:"dir"`
	// ManifestFile is the manifest's filename within Dir.
	ManifestFile string `yaml:"manifest_file"`
}

// Config is the top-level file format: one arena envelope, one policy
// selection, and blob storage settings.
type Config struct {
	Arena     ArenaConfig     `yaml:"arena"`
	Policy    Policy          `yaml:"policy"`
	BlobStore BlobStoreConfig `yaml:"blobstore"`
}

// Default returns a Config built from rawser.DefaultParams, the Complete
// policy, and a "./blobs" blobstore directory.
func Default() Config {
	return Config{
		Arena: ArenaConfig{
			StorageAlign:  rawser.DefaultParams.StorageAlign,
			MaxValueAlign: rawser.DefaultParams.MaxValueAlign,
			ValueAlign:    rawser.DefaultParams.ValueAlign,
			MaxCapacity:   rawser.DefaultParams.MaxCapacity,
		},
		Policy: PolicyComplete,
		BlobStore: BlobStoreConfig{
			Dir:          "blobs",
			ManifestFile: "manifest.yaml",
		},
	}
}

// Load reads and parses a Config from path, filling any zero-valued field
// with Default()'s corresponding value.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.Arena.StorageAlign == 0 {
		c.Arena.StorageAlign = def.Arena.StorageAlign
	}
	if c.Arena.MaxValueAlign == 0 {
		c.Arena.MaxValueAlign = def.Arena.MaxValueAlign
	}
	if c.Arena.ValueAlign == 0 {
		c.Arena.ValueAlign = def.Arena.ValueAlign
	}
	if c.Arena.MaxCapacity == 0 {
		c.Arena.MaxCapacity = def.Arena.MaxCapacity
	}
	if c.Policy == "" {
		c.Policy = def.Policy
	}
	if c.BlobStore.Dir == "" {
		c.BlobStore.Dir = def.BlobStore.Dir
	}
	if c.BlobStore.ManifestFile == "" {
		c.BlobStore.ManifestFile = def.BlobStore.ManifestFile
	}
}

// Params converts c's arena section to a rawser.Params, validating it.
func (c Config) Params() (rawser.Params, error) {
	p := rawser.Params{
		StorageAlign:  c.Arena.StorageAlign,
		MaxValueAlign: c.Arena.MaxValueAlign,
		ValueAlign:    c.Arena.ValueAlign,
		MaxCapacity:   c.Arena.MaxCapacity,
	}
	if err := p.Validate(); err != nil {
		return rawser.Params{}, err
	}
	return p, nil
}

// NewPolicy constructs the rawser.Policy c.Policy names.
func (c Config) NewPolicy() (rawser.Policy, error) {
	switch c.Policy {
	case PolicyPureCopy:
		return &rawser.PureCopy{}, nil
	case PolicyPosTracking:
		return &rawser.PosTracking{}, nil
	case PolicyRelPtr:
		return &rawser.RelPtr{}, nil
	case PolicyComplete:
		return &rawser.Complete{}, nil
	default:
		return nil, fmt.Errorf("config: unknown policy %q", c.Policy)
	}
}
