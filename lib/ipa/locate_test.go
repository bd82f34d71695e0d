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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sassoftware/ipakit/lib/plistdoc"
)

func TestIconCandidates(t *testing.T) {
	t.Run("Order", func(t *testing.T) {
		root := plistdoc.Dictionary{
			"CFBundleIcons": plistdoc.Dictionary{
				"CFBundlePrimaryIcon": plistdoc.Dictionary{
					"CFBundleIconFiles": plistdoc.NewStringArray("b.png", "a.png"),
				},
			},
			"CFBundleIconFiles": plistdoc.NewStringArray("c.png"),
		}
		assert.Equal(t, []string{"c.png", "b.png", "a.png"}, IconCandidates(root))
	})
	t.Run("Empty", func(t *testing.T) {
		assert.Empty(t, IconCandidates(plistdoc.Dictionary{}))
	})
	t.Run("WrongTypes", func(t *testing.T) {
		root := plistdoc.Dictionary{
			"CFBundleIcons":     plistdoc.String("nope"),
			"CFBundleIconFiles": plistdoc.Array{plistdoc.Integer{Value: 1}, plistdoc.String("Icon")},
		}
		assert.Equal(t, []string{"Icon"}, IconCandidates(root))
	})
}

func TestResolveIcon(t *testing.T) {
	names := []string{
		"Payload/",
		"Payload/Sample.app/",
		"Payload/Sample.app/Assets/AppIcon60x60.png",
		"Payload/Sample.app/AppIcon60x60@2x.png",
		"Payload/Sample.app/AppIcon60x60@3x.png",
		"Payload/Sample.app/Icon.png",
	}
	t.Run("Exact", func(t *testing.T) {
		name, ok := ResolveIcon([]string{"Icon.png"}, names, "Sample.app")
		assert.True(t, ok)
		assert.Equal(t, "Payload/Sample.app/Icon.png", name)
	})
	t.Run("Decorated", func(t *testing.T) {
		// nested entries are skipped and the first match in archive order wins
		name, ok := ResolveIcon([]string{"AppIcon60x60"}, names, "Sample.app")
		assert.True(t, ok)
		assert.Equal(t, "Payload/Sample.app/AppIcon60x60@2x.png", name)
	})
	t.Run("ArchiveOrderBeatsCandidateOrder", func(t *testing.T) {
		name, ok := ResolveIcon([]string{"Icon.png", "AppIcon60x60"}, names, "Sample.app")
		assert.True(t, ok)
		assert.Equal(t, "Payload/Sample.app/AppIcon60x60@2x.png", name)
	})
	t.Run("DecoratedNeedsPNG", func(t *testing.T) {
		_, ok := ResolveIcon([]string{"Icon"}, []string{"Payload/Sample.app/Icon.jpg"}, "Sample.app")
		assert.False(t, ok)
	})
	t.Run("NoMatch", func(t *testing.T) {
		_, ok := ResolveIcon([]string{"Missing"}, names, "Sample.app")
		assert.False(t, ok)
		_, ok = ResolveIcon(nil, names, "Sample.app")
		assert.False(t, ok)
	})
}

func TestManifestPath(t *testing.T) {
	assert.True(t, IsManifestPath("Payload/Sample.app/Info.plist"))
	assert.False(t, IsManifestPath("Payload/Sample.app/Frameworks/Info.plist"))
	assert.False(t, IsManifestPath("Payload/Info.plist"))
	assert.False(t, IsManifestPath("Other/Sample.app/Info.plist"))
	assert.False(t, IsManifestPath("Payload/Sample/Info.plist"))
	assert.Equal(t, "Sample.app", containerOf("Payload/Sample.app/Info.plist"))
}
