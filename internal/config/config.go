// Package config loads the optional fsdbg configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"go.pdmccormick.com/fsdbg/archive"
)

// EnvConfig names the environment variable that points at a config file.
const EnvConfig = "FSDBG_CONFIG"

type Config struct {
	Verbose              bool    `yaml:"verbose"`
	MaxDecompressedBytes int64   `yaml:"max_decompressed_bytes"`
	Tools                Tools   `yaml:"tools"`
	Inspect              Inspect `yaml:"inspect"`
}

type Tools struct {
	DumpErofs string        `yaml:"dump_erofs"`
	Isoinfo   string        `yaml:"isoinfo"`
	Timeout   time.Duration `yaml:"timeout"`
}

type Inspect struct {
	Filter string `yaml:"filter"` // Glob limiting the listed entries
}

func Default() Config {
	return Config{
		MaxDecompressedBytes: archive.DefaultMaxDecompressed,
		Tools: Tools{
			DumpErofs: "dump.erofs",
			Isoinfo:   "isoinfo",
			Timeout:   2 * time.Minute,
		},
	}
}

var ErrInvalid = errors.New("config: invalid")

// Parse a YAML document over the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	var cfg = Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return cfg, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MaxDecompressedBytes <= 0 {
		return fmt.Errorf("%w: max_decompressed_bytes must be positive, got %d", ErrInvalid, c.MaxDecompressedBytes)
	}
	if c.Tools.Timeout < 0 {
		return fmt.Errorf("%w: tools.timeout must not be negative, got %s", ErrInvalid, c.Tools.Timeout)
	}
	if c.Inspect.Filter != "" {
		if _, err := archive.CompileGlob(c.Inspect.Filter); err != nil {
			return fmt.Errorf("%w: inspect.filter: %w", ErrInvalid, err)
		}
	}
	return nil
}

// Load the configuration. An explicit path must exist. Otherwise $FSDBG_CONFIG
// is tried, then $XDG_CONFIG_HOME/fsdbg/config.yaml (or the platform
// equivalent), and a missing default file yields [Default]. Returns the path
// that was read, if any.
func Load(path string) (Config, string, error) {
	var required = true
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		required = false
		path = defaultPath()
	}
	if path == "" {
		return Default(), "", nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return Default(), "", nil
	} else if err != nil {
		return Default(), path, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return cfg, path, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, path, nil
}

func defaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "fsdbg", "config.yaml")
}

// The library options this configuration implies.
func (c *Config) ArchiveOptions(logger *slog.Logger) []archive.Option {
	return []archive.Option{
		archive.WithLogger(logger),
		archive.WithMaxDecompressed(c.MaxDecompressedBytes),
		archive.WithTools(archive.Tools{
			DumpErofs: c.Tools.DumpErofs,
			Isoinfo:   c.Tools.Isoinfo,
			Timeout:   c.Tools.Timeout,
		}),
	}
}
