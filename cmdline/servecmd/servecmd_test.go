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

package servecmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sassoftware/ipakit/cmdline/shared"
)

func TestServeConfigCheck(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "ipakit.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("server: {log_level: error}\n"), 0644))
	var stdout bytes.Buffer
	shared.RootCmd.SetOut(&stdout)
	shared.RootCmd.SetArgs([]string{"--config", cfgPath, "serve", "--listen", "127.0.0.1:0", "--test"})
	require.NoError(t, shared.RootCmd.Execute())
	assert.Equal(t, "OK\n", stdout.String())
	assert.Equal(t, "127.0.0.1:0", shared.CurrentConfig.Server.Listen)
}
