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

package atomicfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicFile(t *testing.T) {
	dir := t.TempDir()
	t.Run("Commit", func(t *testing.T) {
		fp := filepath.Join(dir, "out.ipa")
		require.NoError(t, os.WriteFile(fp, []byte("old"), 0600))
		f, err := New(fp)
		require.NoError(t, err)
		_, err = f.Write([]byte("new contents"))
		require.NoError(t, err)
		// still the old file until committed
		blob, _ := os.ReadFile(fp)
		assert.Equal(t, "old", string(blob))
		require.NoError(t, f.Commit())
		require.NoError(t, f.Close())
		blob, err = os.ReadFile(fp)
		require.NoError(t, err)
		assert.Equal(t, "new contents", string(blob))
	})
	t.Run("Discard", func(t *testing.T) {
		fp := filepath.Join(dir, "discard.ipa")
		f, err := New(fp)
		require.NoError(t, err)
		_, err = f.Write([]byte("partial"))
		require.NoError(t, err)
		require.NoError(t, f.Close())
		_, err = os.Stat(fp)
		assert.ErrorIs(t, err, os.ErrNotExist)
		_, err = f.Write([]byte("more"))
		assert.Error(t, err)
		assert.Error(t, f.Commit())
	})
	t.Run("NoStrays", func(t *testing.T) {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), ".tmp")
		}
	})
}
