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

// rawdump hex-dumps a finalized serializer buffer, or a whole blobstore
// manifest entry, to a terminal.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"golang.org/x/term"

	"github.com/overlookmotel/rawser/blobstore"
)

var (
	manifestDir = flag.String("dir", "", "blobstore directory to read from; if set, the argument is a blob fingerprint instead of a raw file")
	width       = flag.Int("width", 0, "bytes per dump row; 0 autodetects the terminal width")
)

// columnsFor picks a bytes-per-row count that fits the detected terminal
// width, falling back to a conservative default when stdout isn't a
// terminal (e.g. piped to a file).
func columnsFor(explicit int) int {
	if explicit > 0 {
		return explicit
	}
	cols, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || cols <= 0 {
		return 16
	}
	// Each byte costs 3 printed columns ("xx "), plus a leading offset
	// gutter of 10; pick the largest power-of-two row width that fits.
	avail := (cols - 10) / 3
	n := 16
	for n*2 <= avail {
		n *= 2
	}
	return n
}

// dump writes buf as a classic hex/ASCII dump to out.
func dump(out *os.File, buf []byte, cols int) {
	for off := 0; off < len(buf); off += cols {
		end := min(off+cols, len(buf))
		row := buf[off:end]

		fmt.Fprintf(out, "%08x  ", off)
		for i := 0; i < cols; i++ {
			if i < len(row) {
				fmt.Fprintf(out, "%02x ", row[i])
			} else {
				fmt.Fprint(out, "   ")
			}
		}
		fmt.Fprint(out, " ")
		for _, b := range row {
			if b >= 0x20 && b < 0x7f {
				fmt.Fprintf(out, "%c", b)
			} else {
				fmt.Fprint(out, ".")
			}
		}
		fmt.Fprintln(out)
	}
}

// rerunCommand prints a shell-escaped command line equivalent to the one
// that produced this invocation, so output can be reproduced or shared.
func rerunCommand(args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, "rawdump")
	for _, a := range args {
		parts = append(parts, shellescape.Quote(a))
	}
	return strings.Join(parts, " ")
}

func readTarget(arg string) (buf []byte, label string, err error) {
	if *manifestDir == "" {
		data, err := os.ReadFile(arg)
		if err != nil {
			return nil, "", fmt.Errorf("reading %s: %w", arg, err)
		}
		return data, arg, nil
	}

	m, err := blobstore.OpenStore(*manifestDir, "manifest.yaml").Manifest()
	if err != nil {
		return nil, "", err
	}
	entry, ok := m.Find(arg)
	if !ok {
		return nil, "", fmt.Errorf("no blob with fingerprint %s in %s", arg, *manifestDir)
	}

	blob, err := blobstore.OpenBlob(*manifestDir, entry)
	if err != nil {
		return nil, "", err
	}
	defer blob.Close()

	// Copy out of the mapping before it is unmapped.
	out := make([]byte, len(blob.Bytes()))
	copy(out, blob.Bytes())
	return out, fmt.Sprintf("%s (%s)", entry.Path, entry.RootType), nil
}

func run(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: rawdump [-dir blobstore] [-width n] <file-or-fingerprint>")
	}

	buf, label, err := readTarget(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "# %s\n", rerunCommand(os.Args[1:]))
	fmt.Fprintf(os.Stdout, "%s: %d bytes\n", label, len(buf))
	dump(os.Stdout, buf, columnsFor(*width))
	return nil
}

func main() {
	flag.Parse()
	if err := run(flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
