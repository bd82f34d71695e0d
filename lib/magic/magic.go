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

package magic

import (
	"bytes"
	"io"
)

type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeZIP
	FileTypeJPEG
	FileTypePNG
	FileTypePlistXML
	FileTypePlistBinary
)

var (
	jpegSignature   = []byte{0xff, 0xd8, 0xff}
	pngSignature    = []byte("\x89PNG\r\n\x1a\n")
	zipSignature    = []byte{0x50, 0x4b, 0x03, 0x04}
	zipEmptyArchive = []byte{0x50, 0x4b, 0x05, 0x06}
	bplistSignature = []byte("bplist00")
	xmlDeclaration  = []byte("<?xml")
	plistElement    = []byte("<plist")
)

func (t FileType) String() string {
	switch t {
	case FileTypeZIP:
		return "zip"
	case FileTypeJPEG:
		return "jpeg"
	case FileTypePNG:
		return "png"
	case FileTypePlistXML:
		return "plist-xml"
	case FileTypePlistBinary:
		return "plist-binary"
	default:
		return "unknown"
	}
}

// Detect reads up to 1KiB from r and identifies the type of the stream. The
// reader is not rewound.
func Detect(r io.Reader) FileType {
	var buf [1024]byte
	n, _ := io.ReadFull(r, buf[:])
	return DetectBytes(buf[:n])
}

// DetectBytes identifies a file from its leading bytes
func DetectBytes(blob []byte) FileType {
	switch {
	case IsJPEG(blob):
		return FileTypeJPEG
	case bytes.HasPrefix(blob, pngSignature):
		return FileTypePNG
	case bytes.HasPrefix(blob, zipSignature), bytes.HasPrefix(blob, zipEmptyArchive):
		return FileTypeZIP
	case bytes.HasPrefix(blob, bplistSignature):
		return FileTypePlistBinary
	case IsXML(blob):
		return FileTypePlistXML
	case bytes.Contains(blob, plistElement):
		return FileTypePlistXML
	}
	return FileTypeUnknown
}

// IsJPEG reports whether blob starts with a JPEG start-of-image marker
// followed by at least one more byte.
func IsJPEG(blob []byte) bool {
	return len(blob) > len(jpegSignature) && bytes.HasPrefix(blob, jpegSignature)
}

// IsXML reports whether blob starts with an XML declaration
func IsXML(blob []byte) bool {
	return bytes.HasPrefix(blob, xmlDeclaration)
}
