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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := Parse([]byte("{}"))
		require.NoError(t, err)
		assert.Equal(t, 6, cfg.Create.CompressionLevel)
		assert.Equal(t, 8<<20, cfg.Create.ChunkSize)
		assert.Equal(t, ":8080", cfg.Server.Listen)
		assert.Equal(t, "/metrics", cfg.Server.MetricsPath)
		assert.EqualValues(t, 2048<<20, cfg.Server.MaxUploadBytes())
		assert.Zero(t, cfg.Server.MaxInflightBytes())
		assert.Equal(t, 30, cfg.Server.ShutdownSeconds)
	})
	t.Run("Values", func(t *testing.T) {
		cfg, err := Parse([]byte(`
create:
  compression_level: 15
  chunk_size: 4096
  exclude: ["**/_CodeSignature/**"]
server:
  listen: 127.0.0.1:9000
  log_level: debug
  rate_limit: 2.5
  max_inflight_mb: 64
  trusted_proxies: [10.0.0.0/8, 127.0.0.1]
`))
		require.NoError(t, err)
		assert.Equal(t, 9, cfg.Create.CompressionLevel)
		assert.Equal(t, 4096, cfg.Create.ChunkSize)
		assert.Equal(t, []string{"**/_CodeSignature/**"}, cfg.Create.Exclude)
		assert.Equal(t, "127.0.0.1:9000", cfg.Server.Listen)
		assert.Equal(t, "debug", cfg.Server.LogLevel)
		assert.Equal(t, 2.5, cfg.Server.RateLimit)
		assert.Equal(t, 1, cfg.Server.RateBurst)
		assert.EqualValues(t, 64<<20, cfg.Server.MaxInflightBytes())
		assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.Server.TrustedProxies)
	})
	t.Run("NegativeLevel", func(t *testing.T) {
		cfg, err := Parse([]byte("create: {compression_level: -3}"))
		require.NoError(t, err)
		assert.Equal(t, 1, cfg.Create.CompressionLevel)
	})
	t.Run("Invalid", func(t *testing.T) {
		_, err := Parse([]byte("create: {chunk_size: -1}"))
		assert.Error(t, err)
		_, err = Parse([]byte("server: {max_inflight_mb: -1}"))
		assert.Error(t, err)
		_, err = Parse([]byte("server: [1, 2]"))
		assert.Error(t, err)
	})
}

func TestReadFile(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "ipakit.yaml")
	require.NoError(t, os.WriteFile(fp, []byte("server: {listen: ':1234'}\n"), 0644))
	cfg, err := ReadFile(fp)
	require.NoError(t, err)
	assert.Equal(t, ":1234", cfg.Server.Listen)
	assert.Equal(t, fp, cfg.Path())

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
