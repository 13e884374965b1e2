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

// Package blobstore layers a manifest and a file-backed, mmap-friendly
// storage convention on top of a finalized serializer buffer. The wire
// format produced by package rawser has no magic number, no header, and no
// self-describing length — by design (§6.1) — so any bookkeeping a deployed
// system needs lives here, outside the buffer, never inside it.
package blobstore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Entry is one manifest row: enough to find, verify, and interpret a blob
// file without opening it first.
type Entry struct {
	ID   uuid.UUID `yaml:"id"`
	Path string    `yaml:"path"`
	// RootType is a caller-supplied label identifying what Go type the
	// blob's root image casts to; the manifest only records it, it never
	// validates it.
	RootType string `yaml:"root_type"`
	// Fingerprint is the siphash-128 of the finalized buffer's bytes,
	// rendered as two hex-joined halves, used for dedup/lookup.
	Fingerprint string `yaml:"fingerprint"`
	Size        int    `yaml:"size"`
	// MapAddr is the absolute address the Complete-policy buffer's interior
	// pointers were valid at, at write time (0 for RelPtr-policy blobs,
	// which need no recorded address). Readers use this to compute the
	// shift to the address the file is actually mapped at on load.
	MapAddr uint64    `yaml:"map_addr,omitempty"`
	Written time.Time `yaml:"written"`
}

// Manifest is the YAML-persisted index of every blob in one blobstore
// directory.
type Manifest struct {
	Entries []Entry `yaml:"entries"`
}

// Find returns the entry with the given fingerprint, and true, or the zero
// Entry and false.
func (m Manifest) Find(fingerprint string) (Entry, bool) {
	for _, e := range m.Entries {
		if e.Fingerprint == fingerprint {
			return e, true
		}
	}
	return Entry{}, false
}

// loadManifest reads and parses a manifest file. A missing file is not an
// error: it is treated as an empty Manifest, the natural state of a
// blobstore directory that has not been written to yet.
func loadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Manifest{}, nil
	}
	if err != nil {
		return Manifest{}, fmt.Errorf("blobstore: reading manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("blobstore: parsing manifest %s: %w", path, err)
	}
	return m, nil
}

// saveManifest writes m to path, replacing its previous contents.
func saveManifest(path string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("blobstore: encoding manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("blobstore: creating manifest dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("blobstore: writing manifest %s: %w", path, err)
	}
	return nil
}
