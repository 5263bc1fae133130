// Copyright 2025 AxonFlow
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

package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/imamangupta/moa-mockup/modules/loader"
)

// ConfigFile represents the root structure of a configuration file
type ConfigFile struct {
	Version    string                         `yaml:"version"`
	Namespaces map[string]NamespaceFileConfig `yaml:"namespaces,omitempty"`
}

// NamespaceFileConfig represents one namespace in the config file
type NamespaceFileConfig struct {
	Enabled    bool             `yaml:"enabled"`
	Root       string           `yaml:"root,omitempty"`
	Extensions []string         `yaml:"extensions,omitempty"`
	Collision  string           `yaml:"collision,omitempty"`
	Cache      *CacheFileConfig `yaml:"cache,omitempty"`
}

// CacheFileConfig represents the Redis settings of a namespace in the config file
type CacheFileConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

// YAMLConfigFileLoader loads namespace configurations from a YAML file
type YAMLConfigFileLoader struct {
	filePath string
	config   *ConfigFile
}

// NewYAMLConfigFileLoader creates a new YAML config file loader
func NewYAMLConfigFileLoader(filePath string) (*YAMLConfigFileLoader, error) {
	l := &YAMLConfigFileLoader{
		filePath: filePath,
	}

	if err := l.reload(); err != nil {
		return nil, err
	}

	return l, nil
}

// reload reads, expands and validates the configuration file
func (l *YAMLConfigFileLoader) reload() error {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", l.filePath, err)
	}

	cfg, err := ParseConfigFile(data)
	if err != nil {
		return err
	}

	l.config = cfg
	return nil
}

// ParseConfigFile expands environment references in data, then parses and validates it
func ParseConfigFile(data []byte) (*ConfigFile, error) {
	expanded := expandEnvVars(string(data))

	var cfg ConfigFile
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := ValidateConfigFile(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadNamespaces returns the enabled namespace configs, sorted by namespace
func (l *YAMLConfigFileLoader) LoadNamespaces() ([]*Config, error) {
	if l.config == nil {
		return nil, fmt.Errorf("config not loaded")
	}
	return l.config.Configs()
}

// Reload reloads the configuration file
func (l *YAMLConfigFileLoader) Reload() error {
	return l.reload()
}

// Configs converts the enabled namespaces to validated Configs, sorted by namespace.
// Fields left empty in the file take their Default values.
func (f *ConfigFile) Configs() ([]*Config, error) {
	names := make([]string, 0, len(f.Namespaces))
	for name, ns := range f.Namespaces {
		if ns.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	configs := make([]*Config, 0, len(names))
	for _, name := range names {
		fileConfig := f.Namespaces[name]

		cfg := Default()
		cfg.Namespace = name
		if fileConfig.Root != "" {
			cfg.Root = fileConfig.Root
		}
		if len(fileConfig.Extensions) > 0 {
			cfg.Extensions = splitList(strings.Join(fileConfig.Extensions, ","))
		}

		collision, err := loader.ParseCollisionPolicy(fileConfig.Collision)
		if err != nil {
			return nil, fmt.Errorf("namespace '%s': %w", name, err)
		}
		cfg.Collision = collision

		if c := fileConfig.Cache; c != nil {
			cfg.UseCache = c.Enabled
			if c.Host != "" {
				cfg.Cache.Host = c.Host
			}
			if c.Port != 0 {
				cfg.Cache.Port = c.Port
			}
			cfg.Cache.Password = c.Password
			cfg.Cache.DB = c.DB
			cfg.Cache.Prefix = c.Prefix
		}

		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}

	return configs, nil
}

// envVarRegex matches ${VAR_NAME} or $VAR_NAME patterns
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expandEnvVars expands environment variable references in the string.
// Supports ${VAR_NAME}, ${VAR_NAME:-default} and $VAR_NAME; undefined
// variables without a default expand to "".
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		defaultVal := ""
		if idx := strings.Index(varName, ":-"); idx != -1 {
			defaultVal = varName[idx+2:]
			varName = varName[:idx]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultVal
	})
}

// ValidateConfigFile validates the structure of a config file
func ValidateConfigFile(config *ConfigFile) error {
	if config.Version == "" {
		return fmt.Errorf("config file must specify a version")
	}

	for name, ns := range config.Namespaces {
		if name == "" || strings.Contains(name, ".") {
			return fmt.Errorf("invalid namespace name '%s'", name)
		}
		if _, err := loader.ParseCollisionPolicy(ns.Collision); err != nil {
			return fmt.Errorf("namespace '%s': %w", name, err)
		}
		if ns.Cache != nil && (ns.Cache.Port < 0 || ns.Cache.Port > 65535) {
			return fmt.Errorf("namespace '%s' has invalid Redis port %d", name, ns.Cache.Port)
		}
	}

	return nil
}

// GenerateExampleConfigFile generates an example configuration file
func GenerateExampleConfigFile() string {
	return `# Module registry configuration
# Environment variables can be referenced using ${VAR_NAME} or ${VAR_NAME:-default} syntax

version: "1.0"

namespaces:
  # Modules scanned from disk on every start
  smart-modules:
    enabled: true
    root: ${MODULES_ROOT:-smartmodules}
    extensions: [go, so]
    collision: keep-last

  # Modules served through the Redis cache
  billing:
    enabled: false  # Enable when Redis is available
    root: ${BILLING_MODULES_ROOT:-modules/billing}
    collision: error
    cache:
      enabled: true
      host: ${REDIS_HOST:-localhost}
      port: ${REDIS_PORT:-6379}
      password: ${REDIS_PASSWORD}
      db: 0
      prefix: billing
`
}
