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
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultCompressionLevel = 6
	defaultChunkSize        = 8 << 20
	defaultListen           = ":8080"
	defaultMaxUploadMB      = 2048
	defaultShutdownSeconds  = 30
)

var (
	Version = "unknown" // set this at link time
	Commit  = "unknown" // set this at link time
)

type CreateConfig struct {
	CompressionLevel int `yaml:"compression_level,omitempty"` // Deflate level for rewritten entries, 1-9
	ChunkSize        int `yaml:"chunk_size,omitempty"`        // Copy buffer size in bytes

	// Exclude lists path patterns of archive entries that are always dropped,
	// e.g. "Payload/*.app/_CodeSignature/**"
	Exclude []string `yaml:"exclude,omitempty"`
}

type ServerConfig struct {
	Listen      string  `yaml:"listen,omitempty"`        // Address to listen for HTTP connections
	LogLevel    string  `yaml:"log_level,omitempty"`     // Log level: debug, info, warn, error
	LogFile     string  `yaml:"log_file,omitempty"`      // Write logs to this file instead of stderr. "-" for JSON on stderr
	MaxUploadMB int     `yaml:"max_upload_mb,omitempty"` // Largest accepted request body
	RateLimit   float64 `yaml:"rate_limit,omitempty"`    // Requests per second, 0 for no limit
	RateBurst   int     `yaml:"rate_burst,omitempty"`

	// MaxInflightMB caps the total size of request bodies being processed at
	// once. Requests wait for room. 0 for no limit.
	MaxInflightMB   int `yaml:"max_inflight_mb,omitempty"`
	ShutdownSeconds int `yaml:"shutdown_seconds,omitempty"` // Grace period for in-flight requests on exit

	// TrustedProxies lists IPs or networks of reverse proxies whose
	// X-Forwarded-For header is believed
	TrustedProxies []string `yaml:"trusted_proxies,omitempty"`

	// MetricsPath exposes Prometheus metrics. Empty to disable.
	MetricsPath string `yaml:"metrics_path,omitempty"`
}

type Config struct {
	Create *CreateConfig `yaml:"create,omitempty"`
	Server *ServerConfig `yaml:"server,omitempty"`

	path string
}

// New returns a configuration with every default filled in
func New() *Config {
	cfg := new(Config)
	_ = cfg.Normalize()
	return cfg
}

func ReadFile(path string) (*Config, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(blob)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

func Parse(blob []byte) (*Config, error) {
	cfg := new(Config)
	if err := yaml.Unmarshal(blob, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize fills in defaults and checks values for sanity
func (cfg *Config) Normalize() error {
	if cfg.Create == nil {
		cfg.Create = new(CreateConfig)
	}
	if cfg.Server == nil {
		cfg.Server = new(ServerConfig)
	}
	c := cfg.Create
	switch {
	case c.CompressionLevel == 0:
		c.CompressionLevel = defaultCompressionLevel
	case c.CompressionLevel < 1:
		c.CompressionLevel = 1
	case c.CompressionLevel > 9:
		c.CompressionLevel = 9
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = defaultChunkSize
	} else if c.ChunkSize < 0 {
		return errors.New("create.chunk_size must be positive")
	}
	s := cfg.Server
	if s.Listen == "" {
		s.Listen = defaultListen
	}
	if s.MaxUploadMB == 0 {
		s.MaxUploadMB = defaultMaxUploadMB
	}
	if s.RateLimit < 0 {
		return errors.New("server.rate_limit must not be negative")
	}
	if s.RateLimit > 0 && s.RateBurst < 1 {
		s.RateBurst = 1
	}
	if s.MaxInflightMB < 0 {
		return errors.New("server.max_inflight_mb must not be negative")
	}
	if s.ShutdownSeconds <= 0 {
		s.ShutdownSeconds = defaultShutdownSeconds
	}
	if s.MetricsPath == "" {
		s.MetricsPath = "/metrics"
	}
	return nil
}

// Path returns the file the configuration was read from, if any
func (cfg *Config) Path() string {
	return cfg.path
}

// MaxUploadBytes returns the request body limit in bytes
func (s *ServerConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

// MaxInflightBytes returns the in-flight body budget in bytes, or 0 if unlimited
func (s *ServerConfig) MaxInflightBytes() uint64 {
	return uint64(s.MaxInflightMB) << 20
}
