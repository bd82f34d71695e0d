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

import "strings"

const (
	payloadPrefix  = "Payload/"
	manifestSuffix = ".app/Info.plist"
	pngSuffix      = ".png"

	// IconName is the icon written into rewritten archives
	IconName     = "icon_app_ipadump_com"
	IconFileName = IconName + pngSuffix
	// MinimumOSFloor replaces MinimumOSVersion when the device limit is removed
	MinimumOSFloor = "10.0"
)

// manifest keys
const (
	keyBundleName          = "CFBundleName"
	keyDisplayName         = "CFBundleDisplayName"
	keyBundleIdentifier    = "CFBundleIdentifier"
	keyShortVersion        = "CFBundleShortVersionString"
	keyMinimumOSVersion    = "MinimumOSVersion"
	keyURLTypes            = "CFBundleURLTypes"
	keyFileSharingEnabled  = "UIFileSharingEnabled"
	keySupportsDocBrowser  = "UISupportsDocumentBrowser"
	keyIcons               = "CFBundleIcons"
	keyPrimaryIcon         = "CFBundlePrimaryIcon"
	keyIconFiles           = "CFBundleIconFiles"
	keyIconName            = "CFBundleIconName"
	containerPathSeparator = "/"
)

// inContainer reports whether name sits directly inside a Payload/<container>
// directory, i.e. has exactly two separators
func inContainer(name string) bool {
	return strings.Count(name, containerPathSeparator) == 2
}

// IsManifestPath reports whether name is the bundle manifest,
// Payload/<container>.app/Info.plist
func IsManifestPath(name string) bool {
	return inContainer(name) &&
		strings.HasPrefix(name, payloadPrefix) &&
		strings.HasSuffix(name, manifestSuffix)
}

// containerOf returns the second path segment of name
func containerOf(name string) string {
	parts := strings.SplitN(name, containerPathSeparator, 3)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// containerPath joins a file name onto the container directory
func containerPath(container, name string) string {
	return payloadPrefix + container + containerPathSeparator + name
}
