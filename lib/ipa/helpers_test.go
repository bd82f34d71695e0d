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
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"howett.net/plist"
)

type fixtureFile struct {
	name string
	data []byte
}

func dir(name string) fixtureFile {
	return fixtureFile{name: name}
}

func file(name string, data []byte) fixtureFile {
	return fixtureFile{name: name, data: data}
}

func buildZip(t *testing.T, files ...fixtureFile) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.name)
		require.NoError(t, err)
		if len(f.data) > 0 {
			_, err = w.Write(f.data)
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func marshalPlist(t *testing.T, v map[string]interface{}, format int) []byte {
	t.Helper()
	blob, err := plist.MarshalIndent(v, format, "\t")
	require.NoError(t, err)
	return blob
}

func sampleManifest() map[string]interface{} {
	return map[string]interface{}{
		"CFBundleName":               "Sample",
		"CFBundleDisplayName":        "Sample App",
		"CFBundleIdentifier":         "com.example.sample",
		"CFBundleShortVersionString": "1.2.3",
		"MinimumOSVersion":           "14.0",
		"CFBundleURLTypes": []interface{}{
			map[string]interface{}{"CFBundleURLSchemes": []interface{}{"sample"}},
		},
		"CFBundleIcons": map[string]interface{}{
			"CFBundlePrimaryIcon": map[string]interface{}{
				"CFBundleIconFiles": []interface{}{"AppIcon60x60"},
				"CFBundleIconName":  "AppIcon",
			},
		},
	}
}

// sampleArchive is a small but realistic bundle layout
func sampleArchive(t *testing.T, manifest []byte) []byte {
	t.Helper()
	return buildZip(t,
		dir("Payload/"),
		dir("Payload/Sample.app/"),
		file("Payload/Sample.app/Sample", bytes.Repeat([]byte{0xcf, 0xfa, 0xed, 0xfe}, 4096)),
		file("Payload/Sample.app/Info.plist", manifest),
		file("Payload/Sample.app/AppIcon60x60@2x.png", []byte("\x89PNG\r\n\x1a\nicon-2x")),
		dir("Payload/Sample.app/Frameworks/"),
		file("Payload/Sample.app/Frameworks/Info.plist", []byte("not the manifest")),
		file("iTunesMetadata.plist", []byte("<plist/>")),
	)
}

func readEntry(t *testing.T, arc *Archive, name string) []byte {
	t.Helper()
	e, ok := arc.Lookup(name)
	require.True(t, ok, "entry %s missing", name)
	r, err := e.Open()
	require.NoError(t, err)
	defer r.Close()
	blob, err := io.ReadAll(r)
	require.NoError(t, err)
	return blob
}

func makeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x40, A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}
