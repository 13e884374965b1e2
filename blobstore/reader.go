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
	"fmt"
	"os"
	"path/filepath"

	"github.com/overlookmotel/rawser/internal/xunsafe"
)

// MappedBlob is an open, memory-mapped blob file. Its Bytes view aliases
// the mapping directly; no copy of the file's contents is made.
type MappedBlob struct {
	f      *os.File
	data   []byte
	entry  Entry
	shift  xunsafe.Addr // entry.MapAddr was recorded at write time; shift corrects Complete-policy interior pointers for wherever this mapping actually landed.
}

// OpenBlob memory-maps the blob named by entry, found under dir.
//
// The returned MappedBlob's Shift() is the amount any absolute pointer
// recorded inside the buffer (Complete policy only) must be adjusted by to
// be valid at this mapping's actual address: the write-time address,
// entry.MapAddr, almost never equals where a later process's mmap call
// places the file, because of ASLR and because mmap addresses are chosen by
// the kernel, not requested — §4.4's Open Question about a buffer "allowed
// to move or be collected" generalizes the same way across a process
// boundary as it does across a single process's GC, and this is where that
// generalization is paid for.
func OpenBlob(dir string, entry Entry) (*MappedBlob, error) {
	full := filepath.Join(dir, entry.Path)
	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("blobstore: opening %s: %w", full, err)
	}

	data, err := mmapFile(f, int64(entry.Size))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("blobstore: mapping %s: %w", full, err)
	}

	var shift xunsafe.Addr
	if entry.MapAddr != 0 {
		actual := xunsafe.DataPtr(data)
		shift = actual - xunsafe.Addr(entry.MapAddr)
	}

	return &MappedBlob{f: f, data: data, entry: entry, shift: shift}, nil
}

// Bytes returns the mapped blob's bytes. The view is invalidated by Close.
func (b *MappedBlob) Bytes() []byte { return b.data }

// Shift returns the correction a Complete-policy reader must add to every
// absolute pointer word found inside Bytes() before following it.
func (b *MappedBlob) Shift() xunsafe.Addr { return b.shift }

// Entry returns the manifest entry this blob was opened from.
func (b *MappedBlob) Entry() Entry { return b.entry }

// Close unmaps the blob and closes its file.
func (b *MappedBlob) Close() error {
	if err := munmapFile(b.f, b.data); err != nil {
		b.f.Close()
		return fmt.Errorf("blobstore: unmapping %s: %w", b.entry.Path, err)
	}
	return b.f.Close()
}
