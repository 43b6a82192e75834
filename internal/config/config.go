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

// Package config provides configuration management for ua-utils with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. Configuration file
//  4. Built-in defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from the specified path or standard
// locations. If configPath is empty, it searches .ua.yaml and .ua.yml in the
// working directory, then ~/.ua/config.yaml and ~/.ua/config.yml.
// Environment variables are applied after the file.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		home := os.Getenv("HOME")
		defaultPaths := []string{
			".ua.yaml",
			".ua.yml",
			filepath.Join(home, ".ua", "config.yaml"),
			filepath.Join(home, ".ua", "config.yml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	applyEnvOverrides(cfg)
	cfg.API.BaseURL = normalizeBaseURL(cfg.API.BaseURL)

	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

func applyEnvOverrides(cfg *Config) {
	if baseURL := os.Getenv("UA_BASE_URL"); baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if pageSize := os.Getenv("UA_PAGE_SIZE"); pageSize != "" {
		if size, err := parsePositiveInt(pageSize); err == nil {
			cfg.API.PageSize = size
		}
	}
	if increment := os.Getenv("UA_USER_INCREMENT"); increment != "" {
		if n, err := parsePositiveInt(increment); err == nil {
			cfg.API.UserIncrement = n
		}
	}
	if retries := os.Getenv("UA_MAX_RETRIES"); retries != "" {
		var n int
		if _, err := fmt.Sscanf(retries, "%d", &n); err == nil && n >= 0 {
			cfg.Retry.MaxRetries = n
		}
	}
	if level := os.Getenv("UA_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

// normalizeBaseURL makes sure relative endpoints resolve under the API root.
func normalizeBaseURL(base string) string {
	base = strings.TrimSpace(base)
	if base != "" && !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

func parsePositiveInt(s string) (int, error) {
	var i int
	_, err := fmt.Sscanf(s, "%d", &i)
	if err != nil {
		return 0, fmt.Errorf("failed to parse integer from '%s': %w", s, err)
	}
	if i <= 0 {
		return 0, fmt.Errorf("value must be positive, got: %d", i)
	}
	return i, nil
}

// Secret returns the API secret from the configured environment variable.
func (c *Config) Secret() string {
	if c.API.SecretEnv == "" {
		return ""
	}
	return os.Getenv(c.API.SecretEnv)
}

// SetBaseURL overrides the API root, normalizing the trailing slash.
func (c *Config) SetBaseURL(base string) {
	c.API.BaseURL = normalizeBaseURL(base)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api base url cannot be empty")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api base url %q must be an absolute URL", c.API.BaseURL)
	}
	if c.API.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got: %d", c.API.PageSize)
	}
	if c.API.UserIncrement <= 0 {
		return fmt.Errorf("user increment must be positive, got: %d", c.API.UserIncrement)
	}
	if c.API.MaxResponseBytes <= 0 {
		return fmt.Errorf("max response bytes must be positive, got: %d", c.API.MaxResponseBytes)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative, got: %d", c.Retry.MaxRetries)
	}
	if c.Retry.InitialBackoff < 0 || c.Retry.MaxBackoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	return nil
}
