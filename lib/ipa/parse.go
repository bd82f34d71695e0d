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
	"bytes"
	"io"

	"github.com/sassoftware/ipakit/lib/magic"
	"github.com/sassoftware/ipakit/lib/plistdoc"
)

// Info is the metadata extracted from an application archive
type Info struct {
	AppName         string `json:"app_name"`
	AppDisplayName  string `json:"app_display_name"`
	AppBundleID     string `json:"app_bundle_id"`
	AppVersion      string `json:"app_version"`
	AppMinOSVersion string `json:"app_min_os_version"`
	AppIcon         []byte `json:"app_icon"`
	// Plist is the manifest as XML. Binary manifests are converted, XML ones
	// are returned verbatim.
	Plist string `json:"plist"`
}

// NewInfo projects the metadata fields out of a manifest. Missing or
// wrong-typed fields are left empty.
func NewInfo(root plistdoc.Dictionary) *Info {
	info := new(Info)
	info.AppName, _ = root.GetString(keyBundleName)
	info.AppDisplayName, _ = root.GetString(keyDisplayName)
	info.AppBundleID, _ = root.GetString(keyBundleIdentifier)
	info.AppVersion, _ = root.GetString(keyShortVersion)
	info.AppMinOSVersion, _ = root.GetString(keyMinimumOSVersion)
	return info
}

// ParseBytes is Parse for an in-memory archive
func ParseBytes(blob []byte) (*Info, error) {
	return Parse(bytes.NewReader(blob), int64(len(blob)))
}

// Parse reads the bundle manifest and icon out of an application archive
func Parse(src io.ReaderAt, size int64) (*Info, error) {
	arc, err := OpenArchive(src, size)
	if err != nil {
		return nil, err
	}
	return ParseArchive(arc)
}

// ParseArchive is Parse for an already opened archive
func ParseArchive(arc *Archive) (*Info, error) {
	entry, container, ok := arc.FindManifest()
	if !ok {
		return nil, newError(ErrManifestNotFound, "find Info.plist", errNoManifestEntry)
	}
	raw, err := entry.ReadAll()
	if err != nil {
		return nil, err
	}
	doc, err := plistdoc.Parse(raw)
	if err != nil {
		return nil, newError(ErrManifestParse, "parse plist", err)
	}
	info := NewInfo(doc.Root())
	if magic.IsXML(raw) {
		info.Plist = string(raw)
	} else {
		blob, err := doc.MarshalXML()
		if err != nil {
			return nil, newError(ErrManifestWrite, "write plist", err)
		}
		info.Plist = string(blob)
	}
	info.AppIcon = []byte{}
	if iconName, ok := ResolveIcon(IconCandidates(doc.Root()), arc.Names(), container); ok {
		iconEntry, _ := arc.Lookup(iconName)
		info.AppIcon, err = iconEntry.ReadAll()
		if err != nil {
			return nil, err
		}
	}
	return info, nil
}

// ExtractManifest returns the raw bytes of the bundle manifest
func ExtractManifest(src io.ReaderAt, size int64) ([]byte, error) {
	arc, err := OpenArchive(src, size)
	if err != nil {
		return nil, err
	}
	entry, _, ok := arc.FindManifest()
	if !ok {
		return nil, newError(ErrManifestNotFound, "find Info.plist", errNoManifestEntry)
	}
	return entry.ReadAll()
}
