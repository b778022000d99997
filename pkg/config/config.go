// Package config loads the jsbi2bigint.yaml configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileNames are the configuration file names searched for by Find, in order.
var FileNames = []string{"jsbi2bigint.yaml", "jsbi2bigint.yml"}

// Config controls which imports are recognized and how files are processed.
type Config struct {
	// Module is the bare import specifier of the polyfill (e.g. "jsbi").
	// Matched case-insensitively.
	Module string `yaml:"module"`

	// Extension is appended to Module to recognize path imports such as "./lib/jsbi.mjs".
	Extension string `yaml:"extension"`

	// Namespace is the name `x instanceof <Namespace>` is rewritten for when the
	// identifier has no binding in the file.
	Namespace string `yaml:"namespace"`

	// Strict reports identifiers that still refer to a removed JSBI binding after rewriting.
	Strict bool `yaml:"strict"`

	// Workers bounds the number of files processed in parallel. 0 means one per CPU.
	Workers int `yaml:"workers"`

	// Extensions lists the file extensions collected when a directory is given.
	Extensions []string `yaml:"extensions"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Module:     "jsbi",
		Extension:  ".mjs",
		Namespace:  "JSBI",
		Extensions: []string{".js", ".mjs", ".cjs"},
	}
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses configuration content on top of the defaults. Unknown keys are errors.
// The path argument is used only for error messages.
func Parse(data []byte, path string) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Find searches for a configuration file starting from dir and walking up
// to parent directories. It returns "" and a nil error when none exists.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", nil
		}
		dir = parent
	}
}

// Validate checks the configuration for semantic errors and normalizes extensions.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Module) == "" {
		return fmt.Errorf("module must not be empty")
	}
	if strings.ContainsAny(c.Module, `/\`) {
		return fmt.Errorf("module %q must be a bare name without path separators", c.Module)
	}
	if c.Extension != "" && !strings.HasPrefix(c.Extension, ".") {
		return fmt.Errorf("extension %q must start with '.'", c.Extension)
	}
	if c.Namespace == "" {
		return fmt.Errorf("namespace must not be empty")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("extensions must list at least one file extension")
	}
	for i, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			c.Extensions[i] = "." + ext
		}
	}
	return nil
}
