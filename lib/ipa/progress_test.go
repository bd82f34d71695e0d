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
)

type recorder struct {
	values []int
}

func (r *recorder) Progress(percent int) {
	r.values = append(r.values, percent)
}

func TestProgressTracker(t *testing.T) {
	t.Run("Chunks", func(t *testing.T) {
		rec := new(recorder)
		p := progressTracker{sink: rec, total: 10 << 20}
		p.advance(8 << 20)
		p.advance(2 << 20)
		assert.Equal(t, []int{80, 100}, rec.values)
	})
	t.Run("NoRepeats", func(t *testing.T) {
		rec := new(recorder)
		p := progressTracker{sink: rec, total: 1000}
		for i := 0; i < 1000; i++ {
			p.advance(1)
		}
		assert.Len(t, rec.values, 100)
		for i, v := range rec.values {
			assert.Equal(t, i+1, v)
		}
	})
	t.Run("SkipDoesNotReport", func(t *testing.T) {
		rec := new(recorder)
		p := progressTracker{sink: rec, total: 100}
		p.skip(50)
		assert.Empty(t, rec.values)
		p.advance(1)
		assert.Equal(t, []int{51}, rec.values)
	})
	t.Run("Capped", func(t *testing.T) {
		rec := new(recorder)
		p := progressTracker{sink: rec, total: 10}
		p.advance(25)
		assert.Equal(t, []int{100}, rec.values)
	})
	t.Run("ZeroTotal", func(t *testing.T) {
		rec := new(recorder)
		p := progressTracker{sink: rec}
		p.advance(5)
		assert.Empty(t, rec.values)
	})
	t.Run("NilSink", func(t *testing.T) {
		p := progressTracker{total: 10}
		p.advance(5)
		assert.EqualValues(t, 5, p.done)
	})
	t.Run("Func", func(t *testing.T) {
		var got int
		ProgressFunc(func(p int) { got = p }).Progress(42)
		assert.Equal(t, 42, got)
	})
}
