//
// Copyright (c) SAS Institute Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package ipa

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"time"
)

// Archive is an indexed, re-readable view of a zip container. Entry metadata
// comes from the central directory so it can be walked any number of times.
type Archive struct {
	zr *zip.Reader
}

// Entry is a single item in an Archive
type Entry struct {
	Name     string
	Size     uint64
	Modified time.Time

	file *zip.File
}

// OpenArchive reads the central directory of the zip in r
func OpenArchive(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, newError(ErrArchiveParse, "parse zip", err)
	}
	return &Archive{zr: zr}, nil
}

// OpenArchiveBytes is OpenArchive for an in-memory archive
func OpenArchiveBytes(blob []byte) (*Archive, error) {
	return OpenArchive(bytes.NewReader(blob), int64(len(blob)))
}

// Len returns the number of entries
func (a *Archive) Len() int {
	return len(a.zr.File)
}

// Entry returns the i-th entry in archive order
func (a *Archive) Entry(i int) Entry {
	f := a.zr.File[i]
	return Entry{
		Name:     f.Name,
		Size:     f.UncompressedSize64,
		Modified: f.Modified,
		file:     f,
	}
}

// Names returns every entry name in archive order
func (a *Archive) Names() []string {
	names := make([]string, len(a.zr.File))
	for i, f := range a.zr.File {
		names[i] = f.Name
	}
	return names
}

// Lookup finds an entry by exact name
func (a *Archive) Lookup(name string) (Entry, bool) {
	for i, f := range a.zr.File {
		if f.Name == name {
			return a.Entry(i), true
		}
	}
	return Entry{}, false
}

// TotalSize sums the uncompressed size of every entry
func (a *Archive) TotalSize() uint64 {
	var total uint64
	for _, f := range a.zr.File {
		total += f.UncompressedSize64
	}
	return total
}

// FindManifest returns the first Payload/<container>.app/Info.plist entry and
// its container name
func (a *Archive) FindManifest() (entry Entry, container string, ok bool) {
	for i, f := range a.zr.File {
		if IsManifestPath(f.Name) {
			return a.Entry(i), containerOf(f.Name), true
		}
	}
	return Entry{}, "", false
}

func (e Entry) IsDir() bool {
	return strings.HasSuffix(e.Name, "/")
}

// Open returns a reader for the decompressed contents
func (e Entry) Open() (io.ReadCloser, error) {
	r, err := e.file.Open()
	if err != nil {
		return nil, newError(ErrArchiveEntryRead, e.Name, err)
	}
	return r, nil
}

// ReadAll reads the entire decompressed contents into memory
func (e Entry) ReadAll() ([]byte, error) {
	r, err := e.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	blob, err := io.ReadAll(r)
	if err != nil {
		return nil, newError(ErrArchiveEntryRead, e.Name, err)
	}
	return blob, nil
}
