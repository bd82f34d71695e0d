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
	"strings"

	"github.com/woozymasta/pathrules"
)

// entryFilter drops entries whose names match any exclusion pattern. Manifest
// entries are always kept.
type entryFilter struct {
	matcher *pathrules.Matcher
}

func newEntryFilter(patterns []string) (*entryFilter, error) {
	var rules []pathrules.Rule
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		rules = append(rules, pathrules.Rule{Action: pathrules.ActionExclude, Pattern: p})
	}
	if len(rules) == 0 {
		return nil, nil
	}
	m, err := pathrules.NewMatcher(rules, pathrules.MatcherOptions{
		DefaultAction: pathrules.ActionInclude,
	})
	if err != nil {
		return nil, newError(ErrValidation, "compile exclude patterns", err)
	}
	return &entryFilter{matcher: m}, nil
}

func (f *entryFilter) excluded(e Entry) bool {
	if f == nil || IsManifestPath(e.Name) {
		return false
	}
	return !f.matcher.Included(strings.TrimSuffix(e.Name, "/"), e.IsDir())
}

// excludedSize sums the sizes of entries the filter drops
func (f *entryFilter) excludedSize(arc *Archive) (n uint64, count int) {
	if f == nil {
		return 0, 0
	}
	for i := 0; i < arc.Len(); i++ {
		if e := arc.Entry(i); f.excluded(e) {
			n += e.Size
			count++
		}
	}
	return n, count
}

