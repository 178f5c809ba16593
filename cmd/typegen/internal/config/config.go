package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the project directory.
const FileName = "typegen.yaml"

// Config represents the typegen.yaml configuration
type Config struct {
	// Runner is the executable that must be on PATH (e.g. bun)
	Runner string `yaml:"runner" env:"RUNNER"`

	// Generator is the package the runner executes
	Generator string `yaml:"generator" env:"GENERATOR"`

	// Schema is the OpenAPI document fed to the generator
	Schema string `yaml:"schema" env:"SCHEMA"`

	// OutDir receives every generated file
	OutDir string `yaml:"outDir" env:"OUT_DIR"`

	// Flags passed to the generator after the output path
	Flags []string `yaml:"flags,omitempty"`

	// Timeout bounds the generator invocation, 0 disables it
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`

	Files *FilesConfig `yaml:"files,omitempty"`
	Rules *Rules       `yaml:"rules,omitempty"`
}

// FilesConfig names the generated artifacts
type FilesConfig struct {
	Generated string `yaml:"generated,omitempty"`
	Formats   string `yaml:"formats,omitempty"`
	Endpoints string `yaml:"endpoints,omitempty"`
	Packets   string `yaml:"packets,omitempty"`
}

// Replacement maps an old identifier fragment to a new one.
type Replacement struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Rules is the rewrite table applied to the generator output. It is coupled
// to the generator's naming scheme, so generator upgrades should only need
// changes here.
type Rules struct {
	// TrimPrefixes rewrites verb prefixes on identifiers bound to a route literal
	TrimPrefixes []Replacement `yaml:"trimPrefixes,omitempty"`

	// Renames are applied to every occurrence in the text
	Renames []Replacement `yaml:"renames,omitempty"`

	// DropAliases lists exported type names whose declarations are removed
	DropAliases []string `yaml:"dropAliases,omitempty"`
}

// Load loads configuration from typegen.yaml in projectPath and applies
// TYPEGEN_* environment overrides.
func Load(projectPath string) (*Config, error) {
	return LoadFile(filepath.Join(projectPath, FileName))
}

// LoadFile loads configuration from an explicit path. A missing file yields
// the defaults.
func LoadFile(configPath string) (*Config, error) {
	// Timeout is seeded so only an explicit `timeout: 0s` disables it.
	config := &Config{Timeout: DefaultConfig().Timeout}

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		config = DefaultConfig()
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
	}

	if err := env.ParseWithOptions(config, env.Options{Prefix: "TYPEGEN_"}); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	applyDefaults(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves configuration to typegen.yaml
func Save(config *Config, projectPath string) error {
	configPath := filepath.Join(projectPath, FileName)

	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Runner:    "bun",
		Generator: "openapi-typescript",
		Schema:    "./limbus-openapi/limbus.yaml",
		OutDir:    ".",
		Flags: []string{
			"--alphabetize",
			"--root-types",
			"--root-types-no-schema-prefix",
			"--make-paths-enum",
		},
		Timeout: 2 * time.Minute,
		Files: &FilesConfig{
			Generated: "oapi-gen.ts",
			Formats:   "format-types.ts",
			Endpoints: "endpoints.ts",
			Packets:   "packet-types.ts",
		},
		Rules: DefaultRules(),
	}
}

// DefaultRules returns the rewrite table matching openapi-typescript 7.x
// output with --make-paths-enum.
func DefaultRules() *Rules {
	return &Rules{
		TrimPrefixes: []Replacement{
			{From: "Post"},
			{From: "Get"},
			{From: "Put"},
			{From: "Delete"},
		},
		Renames: []Replacement{
			{From: "ApiPaths", To: "Endpoint"},
		},
		DropAliases: []string{"webhooks", "operations", "WithRequired", "OneOf"},
	}
}

// applyDefaults applies default values to missing configuration
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.Runner == "" {
		config.Runner = defaults.Runner
	}
	if config.Generator == "" {
		config.Generator = defaults.Generator
	}
	if config.Schema == "" {
		config.Schema = defaults.Schema
	}
	if config.OutDir == "" {
		config.OutDir = defaults.OutDir
	}
	if config.Flags == nil {
		config.Flags = defaults.Flags
	}

	if config.Files == nil {
		config.Files = defaults.Files
	} else {
		if config.Files.Generated == "" {
			config.Files.Generated = defaults.Files.Generated
		}
		if config.Files.Formats == "" {
			config.Files.Formats = defaults.Files.Formats
		}
		if config.Files.Endpoints == "" {
			config.Files.Endpoints = defaults.Files.Endpoints
		}
		if config.Files.Packets == "" {
			config.Files.Packets = defaults.Files.Packets
		}
	}

	// Tables are filled individually; an explicit empty list disables a rule.
	if config.Rules == nil {
		config.Rules = defaults.Rules
	} else {
		if config.Rules.TrimPrefixes == nil {
			config.Rules.TrimPrefixes = defaults.Rules.TrimPrefixes
		}
		if config.Rules.Renames == nil {
			config.Rules.Renames = defaults.Rules.Renames
		}
		if config.Rules.DropAliases == nil {
			config.Rules.DropAliases = defaults.Rules.DropAliases
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	for _, r := range c.Rules.TrimPrefixes {
		if r.From == "" {
			return fmt.Errorf("rules.trimPrefixes: empty prefix")
		}
	}
	for _, r := range c.Rules.Renames {
		if r.From == "" {
			return fmt.Errorf("rules.renames: empty identifier")
		}
	}
	names := map[string]bool{}
	for _, name := range []string{c.Files.Generated, c.Files.Formats, c.Files.Endpoints, c.Files.Packets} {
		if names[name] {
			return fmt.Errorf("files: %q is used for more than one artifact", name)
		}
		names[name] = true
	}
	return nil
}

// Path joins a file name onto the output directory.
func (c *Config) Path(name string) string {
	return filepath.Join(c.OutDir, name)
}
