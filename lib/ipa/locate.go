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
	"path"
	"sort"
	"strings"

	"github.com/sassoftware/ipakit/lib/plistdoc"
)

// IconCandidates lists the icon file names named by the manifest: the primary
// icon's file list followed by the top-level CFBundleIconFiles, sorted in
// descending order. The order is only meant to be deterministic; it does not
// try to pick the largest icon.
func IconCandidates(root plistdoc.Dictionary) []string {
	var names []string
	if v, ok := root.Lookup(keyIcons, keyPrimaryIcon); ok {
		if primary, ok := v.(plistdoc.Dictionary); ok {
			files, _ := primary.GetStringArray(keyIconFiles)
			names = append(names, files...)
		}
	}
	files, _ := root.GetStringArray(keyIconFiles)
	names = append(names, files...)
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names
}

// ResolveIcon finds the first archive entry that matches any of the
// candidates. Only entries directly inside the container are considered, in
// archive order. An entry matches a candidate if it is exactly
// Payload/<container>/<candidate>, or if it contains "<ext>/<candidate>" where
// ext is the container's bundle extension and ends in .png. The second form
// picks up names the build tools decorate with device and scale suffixes,
// e.g. AppIcon60x60@2x.png for the candidate AppIcon60x60.
func ResolveIcon(candidates, names []string, container string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	ext := path.Ext(container)
	for _, name := range names {
		if !inContainer(name) {
			continue
		}
		for _, candidate := range candidates {
			if name == containerPath(container, candidate) {
				return name, true
			}
			if ext != "" &&
				strings.HasPrefix(name, payloadPrefix) &&
				strings.Contains(name, ext+containerPathSeparator+candidate) &&
				strings.HasSuffix(name, pngSuffix) {
				return name, true
			}
		}
	}
	return "", false
}
