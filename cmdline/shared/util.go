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

package shared

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/sassoftware/ipakit/config"
	"github.com/sassoftware/ipakit/internal/zhttp"
)

// InitConfig loads the configuration named by --config. If none was given the
// default location is tried, and a missing default file yields defaults.
func InitConfig() error {
	if CurrentConfig != nil {
		return nil
	}
	usedDefault := false
	path := ArgConfig
	if path == "" {
		path = config.DefaultConfig()
		usedDefault = true
	}
	if path == "" {
		CurrentConfig = config.New()
		return nil
	}
	cfg, err := config.ReadFile(path)
	if err != nil {
		if usedDefault && errors.Is(err, fs.ErrNotExist) {
			CurrentConfig = config.New()
			return nil
		}
		return err
	}
	CurrentConfig = cfg
	return nil
}

// InitLogging configures the global logger from config, with --log-level
// taking precedence
func InitLogging() error {
	if err := InitConfig(); err != nil {
		return err
	}
	level := CurrentConfig.Server.LogLevel
	if ArgLogLevel != "" {
		level = ArgLogLevel
	}
	return zhttp.SetupLogging(level, CurrentConfig.Server.LogFile)
}

// ReadFile reads path, or stdin if path is "-"
func ReadFile(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
