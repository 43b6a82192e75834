// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config types define the configuration structures used throughout
// ua-utils. These types represent settings that can be loaded from YAML
// configuration files, environment variables, or command-line flags.
package config

import "time"

// Config represents the complete configuration for ua-utils.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Retry   RetryConfig   `yaml:"retry"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig contains vendor API settings. BaseURL must end with a slash so
// relative resource paths resolve beneath the versioned API root.
type APIConfig struct {
	BaseURL          string `yaml:"base_url"`
	SecretEnv        string `yaml:"secret_env"`
	PageSize         int    `yaml:"page_size"`
	UserIncrement    int    `yaml:"user_increment"`
	MaxResponseBytes int64  `yaml:"max_response_bytes"`
}

// RetryConfig bounds how often a single request is attempted. MaxRetries
// counts retries after the first attempt.
type RetryConfig struct {
	MaxRetries     int           `yaml:"max_retries"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

// OutputConfig contains output destination defaults.
type OutputConfig struct {
	DefaultFile string `yaml:"default_file"`
}

// LoggingConfig contains log settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a configuration with sensible defaults.
// These defaults are used when no configuration file is found
// and can be overridden by config files or environment variables.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:          "https://go.urbanairship.com/api/",
			SecretEnv:        "UA_SECRET",
			PageSize:         1000,
			UserIncrement:    10,
			MaxResponseBytes: 10 * 1024 * 1024,
		},
		Retry: RetryConfig{
			MaxRetries:     10,
			InitialBackoff: 500 * time.Millisecond,
			MaxBackoff:     10 * time.Second,
		},
		Output: OutputConfig{
			DefaultFile: "ua.json",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
