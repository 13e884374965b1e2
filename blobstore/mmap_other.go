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

//go:build !unix

package blobstore

import (
	"io"
	"os"
)

// mmapFile falls back to a plain read on hosts with no mmap syscall
// exposed by golang.org/x/sys/unix (e.g. Windows). The resulting blob is
// still usable for casting, just not demand-paged.
func mmapFile(f *os.File, _ int64) ([]byte, error) {
	return io.ReadAll(f)
}

func munmapFile(*os.File, []byte) error {
	return nil
}
