// Copyright 2025 Quillstore Authors
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


// Package config loads the quillstore service configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyDatabasePath is returned when no database path is configured.
	ErrEmptyDatabasePath = errors.New("database path must not be empty")

	// ErrEmptyScratchDir is returned when no scratch directory is configured.
	ErrEmptyScratchDir = errors.New("scratch directory must not be empty")

	// ErrEmptyAuthSecret is returned when no auth secret is configured.
	ErrEmptyAuthSecret = errors.New("auth secret must not be empty")

	// ErrInvalidChunking is returned when the chunk overlap is not smaller
	// than the chunk size.
	ErrInvalidChunking = errors.New("chunk overlap must be smaller than chunk size")
)

// APIKey binds a long-lived key to a team member.
type APIKey struct {
	Key      string `yaml:"key"`
	TeamId   string `yaml:"teamId"`
	MemberId string `yaml:"memberId"`
}

// Config is the full service configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// DatabasePath is the badger database directory.
	DatabasePath string `yaml:"databasePath"`

	// ScratchDir holds in-flight uploads.
	ScratchDir string `yaml:"scratchDir"`

	// MaxUploadSize is the per-upload byte limit, 0 disables the limit.
	MaxUploadSize int64 `yaml:"maxUploadSize"`

	// BucketQuota is the per-bucket byte budget of the blob store,
	// 0 disables quotas.
	BucketQuota int64 `yaml:"bucketQuota"`

	// AuthSecret signs and verifies access tokens.
	AuthSecret string `yaml:"authSecret"`

	// APIKeys are the registered long-lived keys.
	APIKeys []APIKey `yaml:"apiKeys"`

	// EmbeddingHost is the base URL of the OpenAI-compatible embedding API.
	EmbeddingHost string `yaml:"embeddingHost"`

	// EmbeddingModel is the embedding model name.
	EmbeddingModel string `yaml:"embeddingModel"`

	// ChunkSize is the target chunk size in characters.
	ChunkSize int `yaml:"chunkSize"`

	// ChunkOverlap is the chunk overlap in characters.
	ChunkOverlap int `yaml:"chunkOverlap"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		Listen:         ":8080",
		DatabasePath:   "quillstore.db",
		ScratchDir:     "scratch",
		MaxUploadSize:  64 << 20,
		EmbeddingHost:  "http://localhost:11434/v1",
		EmbeddingModel: "nomic-embed-text",
		ChunkSize:      512,
		ChunkOverlap:   64,
		LogLevel:       "info",
	}
}

// Load reads a YAML config file, applying defaults for absent fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return ErrEmptyDatabasePath
	}
	if c.ScratchDir == "" {
		return ErrEmptyScratchDir
	}
	if c.AuthSecret == "" {
		return ErrEmptyAuthSecret
	}
	if c.ChunkSize > 0 && c.ChunkOverlap >= c.ChunkSize {
		return ErrInvalidChunking
	}
	return nil
}
