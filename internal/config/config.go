// Package config loads the optional treecp configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents the optional treecp configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults" yaml:"defaults"`
	Theme    ThemeConfig    `toml:"theme"    yaml:"theme"`
}

// DefaultsConfig holds persistent flag defaults. Nil fields are unset.
type DefaultsConfig struct {
	Limit              *int    `toml:"limit"               yaml:"limit"`
	Overwrite          *bool   `toml:"overwrite"           yaml:"overwrite"`
	PreserveTimestamps *bool   `toml:"preserve_timestamps" yaml:"preserve_timestamps"`
	ContinueOnError    *bool   `toml:"continue_on_error"   yaml:"continue_on_error"`
	Dereference        *bool   `toml:"dereference"         yaml:"dereference"`
	Verify             *bool   `toml:"verify"              yaml:"verify"`
	Hash               *string `toml:"hash"                yaml:"hash"`
	BWLimit            *string `toml:"bwlimit"             yaml:"bwlimit"`
}

// ThemeConfig holds optional color overrides for the completion summary.
// Values are color names: black, red, green, yellow, blue, magenta, cyan, white.
type ThemeConfig struct {
	Success *string `toml:"success" yaml:"success"`
	Failure *string `toml:"failure" yaml:"failure"`
}

// Path returns the resolved path to the default config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "treecp", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. Config is always optional.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}

	cfg, err := decodeFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads an explicitly named config file. Unlike Load, a missing
// file is an error. The format follows the extension: .toml, .yaml or .yml.
func LoadFile(path string) (Config, error) {
	return decodeFile(path)
}

func decodeFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml", "":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("config %s: unsupported format %q", path, ext)
	}
	return cfg, nil
}
