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

// Package plistdoc holds an Info.plist manifest as a typed tree. Documents
// are read from either the XML or the binary encoding and are always written
// back as XML.
package plistdoc

import (
	"errors"
	"fmt"

	"howett.net/plist"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported property list encoding")
	ErrNotDictionary     = errors.New("property list root is not a dictionary")
	ErrUnrepresentable   = errors.New("value cannot be encoded in a property list")
)

type Document struct {
	root   Dictionary
	format int
}

// New wraps an existing dictionary in a document
func New(root Dictionary) *Document {
	if root == nil {
		root = make(Dictionary)
	}
	return &Document{root: root, format: plist.XMLFormat}
}

// Parse decodes an XML or binary property list. Text (OpenStep/GNUstep)
// encodings are rejected.
func Parse(blob []byte) (*Document, error) {
	var raw interface{}
	format, err := plist.Unmarshal(blob, &raw)
	if err != nil {
		return nil, err
	}
	switch format {
	case plist.XMLFormat, plist.BinaryFormat:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, formatName(format))
	}
	root, ok := fromRaw(raw).(Dictionary)
	if !ok {
		return nil, ErrNotDictionary
	}
	doc := New(root)
	doc.format = format
	return doc, nil
}

// Root returns the top-level dictionary. Mutations through it are reflected in
// the document.
func (d *Document) Root() Dictionary {
	return d.root
}

// Format returns the encoding the document was read from
func (d *Document) Format() int {
	return d.format
}

// IsBinary reports whether the document was read from the binary encoding
func (d *Document) IsBinary() bool {
	return d.format == plist.BinaryFormat
}

// MarshalXML serializes the document as a tab-indented XML property list
func (d *Document) MarshalXML() ([]byte, error) {
	raw, err := toRaw(d.root)
	if err != nil {
		return nil, err
	}
	return plist.MarshalIndent(raw, plist.XMLFormat, "\t")
}

func formatName(format int) string {
	switch format {
	case plist.XMLFormat:
		return "XML"
	case plist.BinaryFormat:
		return "binary"
	case plist.OpenStepFormat:
		return "OpenStep"
	case plist.GNUStepFormat:
		return "GNUstep"
	default:
		return "invalid"
	}
}
