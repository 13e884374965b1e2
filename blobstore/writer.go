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

package blobstore

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dchest/siphash"
	"github.com/google/uuid"

	"github.com/overlookmotel/rawser/internal/xunsafe"
)

// fingerprintKey0/fingerprintKey1 are fixed siphash keys: the fingerprint
// only needs to be stable within one blobstore, not cryptographically
// keyed against an adversary, so a fixed key is sufficient (c.f. the siphash
// use in the vm package this pattern is grounded on, which also fixes its
// keys for a reproducible hash rather than a MAC).
const (
	fingerprintKey0 uint64 = 0x726177736572_2d31
	fingerprintKey1 uint64 = 0x726177736572_2d32
)

// Fingerprint returns the hex-encoded siphash-128 of buf.
func Fingerprint(buf []byte) string {
	lo, hi := siphash.Hash128(fingerprintKey0, fingerprintKey1, buf)
	var b [16]byte
	putUint64(b[:8], lo)
	putUint64(b[8:], hi)
	return hex.EncodeToString(b[:])
}

func putUint64(b []byte, v uint64) {
	for i := range 8 {
		b[i] = byte(v >> (8 * i))
	}
}

// Store is a directory holding finalized serializer buffers and a manifest
// indexing them.
type Store struct {
	dir          string
	manifestPath string
}

// OpenStore prepares a Store rooted at dir, using manifestFile (relative to dir)
// as the manifest's filename. The directory need not exist yet; Put creates
// it on first use.
func OpenStore(dir, manifestFile string) *Store {
	return &Store{dir: dir, manifestPath: filepath.Join(dir, manifestFile)}
}

// Put writes buf to a new file in the store and records it in the manifest,
// keyed by its content fingerprint. If a blob with the same fingerprint is
// already present, its existing Entry is returned and no file is written
// (content-addressed dedup).
//
// mapAddr is the absolute address the Complete-policy buf's interior
// pointers are valid at (pass 0 for RelPtr-policy buffers).
func (st *Store) Put(buf []byte, rootType string, mapAddr xunsafe.Addr) (Entry, error) {
	m, err := loadManifest(st.manifestPath)
	if err != nil {
		return Entry{}, err
	}

	fp := Fingerprint(buf)
	if e, ok := m.Find(fp); ok {
		return e, nil
	}

	id := uuid.New()
	rel := id.String() + ".bin"
	full := filepath.Join(st.dir, rel)

	if err := os.MkdirAll(st.dir, 0o755); err != nil {
		return Entry{}, fmt.Errorf("blobstore: creating %s: %w", st.dir, err)
	}
	if err := os.WriteFile(full, buf, 0o644); err != nil {
		return Entry{}, fmt.Errorf("blobstore: writing blob %s: %w", full, err)
	}

	entry := Entry{
		ID:          id,
		Path:        rel,
		RootType:    rootType,
		Fingerprint: fp,
		Size:        len(buf),
		MapAddr:     uint64(mapAddr),
		Written:     time.Now(),
	}
	m.Entries = append(m.Entries, entry)
	if err := saveManifest(st.manifestPath, m); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Manifest loads and returns the store's current manifest.
func (st *Store) Manifest() (Manifest, error) {
	return loadManifest(st.manifestPath)
}
