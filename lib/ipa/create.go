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
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/rs/zerolog"

	"github.com/sassoftware/ipakit/lib/iconconv"
	"github.com/sassoftware/ipakit/lib/plistdoc"
)

const (
	DefaultChunkSize        = 8 << 20
	DefaultCompressionLevel = 6

	entryMode = 0755
)

type CreateOptions struct {
	// Name, BundleID and Version are written to CFBundleName,
	// CFBundleIdentifier and CFBundleShortVersionString. All are required.
	Name     string
	BundleID string
	Version  string
	// Manifest is the Info.plist to rewrite, in XML or binary form. Required.
	Manifest []byte
	// Icon optionally replaces the application icon. JPEG input is converted
	// to PNG.
	Icon []byte

	// RemoveDeviceLimit lowers MinimumOSVersion to MinimumOSFloor
	RemoveDeviceLimit bool
	// RemoveURLSchemes clears CFBundleURLTypes
	RemoveURLSchemes bool
	// EnableFileSharing turns on UIFileSharingEnabled and
	// UISupportsDocumentBrowser
	EnableFileSharing bool

	// Exclude drops entries matching any of these path patterns, e.g.
	// "Payload/*.app/_CodeSignature/**". The manifest is never dropped.
	Exclude []string

	// CompressionLevel is clamped to 1-9
	CompressionLevel int
	// ChunkSize is the copy buffer size. Defaults to DefaultChunkSize.
	ChunkSize int
	Progress  ProgressSink
	Logger    *zerolog.Logger
}

// ClampLevel limits a deflate level to the range 1-9
func ClampLevel(level int) int {
	switch {
	case level < flate.BestSpeed:
		return flate.BestSpeed
	case level > flate.BestCompression:
		return flate.BestCompression
	}
	return level
}

func (o *CreateOptions) validate() error {
	required := []struct {
		field, value string
	}{
		{"name", o.Name},
		{"bundle id", o.BundleID},
		{"version", o.Version},
		{"plist", string(o.Manifest)},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return newError(ErrValidation, "validate", fmt.Errorf("%s is required", r.field))
		}
	}
	return nil
}

func (o *CreateOptions) logger() *zerolog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	nop := zerolog.Nop()
	return &nop
}

func (o *CreateOptions) chunkSize() int {
	if o.ChunkSize > 0 {
		return o.ChunkSize
	}
	return DefaultChunkSize
}

// CreateBytes rewrites an in-memory archive and returns the new archive. On
// error no partial output is returned.
func CreateBytes(src []byte, opts CreateOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Create(bytes.NewReader(src), int64(len(src)), &buf, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Create streams the archive in src to dst, replacing the bundle manifest with
// a rewritten one and optionally adding a new icon. Entries are written in
// their original order and recompressed at the requested level.
//
// dst receives output as it is produced, so on error it holds an incomplete
// archive that should be discarded.
func Create(src io.ReaderAt, size int64, dst io.Writer, opts CreateOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	var icon []byte
	if len(opts.Icon) > 0 {
		var err error
		icon, err = iconconv.Normalize(opts.Icon)
		if err != nil {
			return newError(ErrIconConversion, "convert icon", err)
		}
	}
	manifest, err := rewriteManifest(&opts, icon != nil)
	if err != nil {
		return err
	}
	filter, err := newEntryFilter(opts.Exclude)
	if err != nil {
		return err
	}
	arc, err := OpenArchive(src, size)
	if err != nil {
		return err
	}
	// excluded entries don't count towards progress
	dropped, droppedCount := filter.excludedSize(arc)
	t := &transformer{
		arc:      arc,
		zw:       zip.NewWriter(dst),
		manifest: manifest,
		filter:   filter,
		buf:      make([]byte, opts.chunkSize()),
		log:      opts.logger(),
		progress: progressTracker{
			sink:  opts.Progress,
			total: arc.TotalSize() - dropped,
		},
	}
	level := ClampLevel(opts.CompressionLevel)
	t.zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, level)
	})
	t.log.Debug().
		Int("entries", arc.Len()).
		Uint64("total", t.progress.total).
		Int("level", level).
		Int("excluded", droppedCount).
		Msg("rewriting archive")
	if icon != nil {
		// an icon left by an earlier rewrite is replaced, not duplicated
		if _, container, ok := arc.FindManifest(); ok {
			t.staleIcon = containerPath(container, IconFileName)
		}
	}
	if err := t.copyEntries(); err != nil {
		return err
	}
	if t.container == "" {
		return newError(ErrContainerNotFound, "find app container", errNoManifestEntry)
	}
	if icon != nil {
		if err := t.writeFile(containerPath(t.container, IconFileName), icon); err != nil {
			return err
		}
	}
	if err := t.zw.Close(); err != nil {
		return newError(ErrArchiveWrite, "finish zip", err)
	}
	return nil
}

// rewriteManifest applies the requested changes to the manifest and returns it
// as XML
func rewriteManifest(opts *CreateOptions, withIcon bool) ([]byte, error) {
	doc, err := plistdoc.Parse(opts.Manifest)
	if err != nil {
		return nil, newError(ErrManifestParse, "parse plist", err)
	}
	root := doc.Root()
	root.Set(keyBundleName, plistdoc.String(opts.Name))
	root.Set(keyBundleIdentifier, plistdoc.String(opts.BundleID))
	root.Set(keyShortVersion, plistdoc.String(opts.Version))
	if opts.RemoveDeviceLimit {
		root.Set(keyMinimumOSVersion, plistdoc.String(MinimumOSFloor))
	}
	if opts.RemoveURLSchemes {
		root.Set(keyURLTypes, plistdoc.Array{})
	}
	if opts.EnableFileSharing {
		root.Set(keyFileSharingEnabled, plistdoc.Boolean(true))
		root.Set(keySupportsDocBrowser, plistdoc.Boolean(true))
	}
	if withIcon {
		// the old icon set is dropped entirely
		root.Set(keyIcons, plistdoc.Dictionary{
			keyPrimaryIcon: plistdoc.Dictionary{
				keyIconFiles: plistdoc.NewStringArray(IconFileName),
				keyIconName:  plistdoc.String(IconName),
			},
		})
	}
	blob, err := doc.MarshalXML()
	if err != nil {
		return nil, newError(ErrManifestWrite, "write plist", err)
	}
	return blob, nil
}

type transformer struct {
	arc       *Archive
	zw        *zip.Writer
	manifest  []byte
	filter    *entryFilter
	buf       []byte
	log       *zerolog.Logger
	progress  progressTracker
	container string
	modified  time.Time
	staleIcon string
}

func (t *transformer) copyEntries() error {
	for i := 0; i < t.arc.Len(); i++ {
		e := t.arc.Entry(i)
		var err error
		switch {
		case t.filter.excluded(e):
			t.log.Debug().Str("entry", e.Name).Msg("excluded")
		case e.IsDir():
			err = t.copyDir(e)
		case t.staleIcon != "" && e.Name == t.staleIcon:
			t.log.Debug().Str("entry", e.Name).Msg("dropped previous icon")
			t.progress.advance(e.Size)
		case IsManifestPath(e.Name):
			err = t.replaceManifest(e)
		default:
			err = t.copyFile(e)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *transformer) copyDir(e Entry) error {
	fh := &zip.FileHeader{
		Name:     e.Name,
		Method:   zip.Store,
		Modified: e.Modified,
	}
	fh.SetMode(fs.ModeDir | entryMode)
	if _, err := t.zw.CreateHeader(fh); err != nil {
		return newError(ErrArchiveWrite, e.Name, err)
	}
	t.progress.skip(e.Size)
	return nil
}

// replaceManifest writes the rewritten manifest in place of the original.
// The original size is what went into the progress total, so that is what
// gets counted here.
func (t *transformer) replaceManifest(e Entry) error {
	if t.container == "" {
		t.container = containerOf(e.Name)
		t.modified = e.Modified
		t.log.Debug().Str("container", t.container).Msg("found app container")
	}
	w, err := t.zw.CreateHeader(t.fileHeader(e.Name, e.Modified))
	if err != nil {
		return newError(ErrArchiveWrite, e.Name, err)
	}
	if _, err := w.Write(t.manifest); err != nil {
		return newError(ErrArchiveWrite, e.Name, err)
	}
	t.log.Debug().
		Str("entry", e.Name).
		Uint64("original_size", e.Size).
		Int("replaced_size", len(t.manifest)).
		Msg("replaced manifest")
	t.progress.advance(e.Size)
	return nil
}

func (t *transformer) copyFile(e Entry) error {
	w, err := t.zw.CreateHeader(t.fileHeader(e.Name, e.Modified))
	if err != nil {
		return newError(ErrArchiveWrite, e.Name, err)
	}
	r, err := e.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	for {
		n, err := readChunk(r, t.buf)
		if n > 0 {
			if _, werr := w.Write(t.buf[:n]); werr != nil {
				return newError(ErrArchiveWrite, e.Name, werr)
			}
			t.progress.advance(uint64(n))
		}
		if err == io.EOF {
			return nil
		} else if err != nil {
			return newError(ErrArchiveEntryRead, e.Name, err)
		}
	}
}

// writeFile adds a new entry that was not present in the source
func (t *transformer) writeFile(name string, blob []byte) error {
	w, err := t.zw.CreateHeader(t.fileHeader(name, t.modified))
	if err != nil {
		return newError(ErrArchiveWrite, name, err)
	}
	if _, err := w.Write(blob); err != nil {
		return newError(ErrArchiveWrite, name, err)
	}
	return nil
}

func (t *transformer) fileHeader(name string, modified time.Time) *zip.FileHeader {
	fh := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	}
	fh.SetMode(entryMode)
	return fh
}

// readChunk fills buf from r. It returns io.EOF once r is exhausted, possibly
// alongside a final partial chunk.
func readChunk(r io.Reader, buf []byte) (int, error) {
	var n int
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
