// Package config loads userstats settings from a YAML file.
//
// Example:
//
//	schema: ./schemas/user.cue   # optional #User override
//	db: ./userstats.db           # optional run history
//	timezone: Europe/Moscow      # zone for last_login values without an offset
//
// Relative paths are resolved against the directory of the config file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata" // IANA zones without a system database

	"gopkg.in/yaml.v3"
)

// Config holds settings shared by the CLI commands.
type Config struct {
	Schema   string `yaml:"schema,omitempty"`
	DB       string `yaml:"db,omitempty"`
	Timezone string `yaml:"timezone,omitempty"`
}

// Load reads a YAML config file. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes YAML config content and validates it.
// An empty document yields the zero Config.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone. Empty means time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Merge overlays non-empty fields of other onto c.
func (c *Config) Merge(other Config) {
	if other.Schema != "" {
		c.Schema = other.Schema
	}
	if other.DB != "" {
		c.DB = other.DB
	}
	if other.Timezone != "" {
		c.Timezone = other.Timezone
	}
}

func (c *Config) resolvePaths(base string) {
	if c.Schema != "" && !filepath.IsAbs(c.Schema) {
		c.Schema = filepath.Join(base, c.Schema)
	}
	if c.DB != "" && !filepath.IsAbs(c.DB) {
		c.DB = filepath.Join(base, c.DB)
	}
}
