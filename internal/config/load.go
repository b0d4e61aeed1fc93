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

// Load returns Default() overlaid with the YAML file at path. An empty path
// skips the file. Unknown keys are rejected so typos don't go unnoticed.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// ApplyEnv overlays environment overrides. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvCDNBaseURL)); v != "" {
		c.CDNBaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvInstallDir)); v != "" {
		c.InstallDir = v
	}
}

// DefaultInstallDir returns <user cache dir>/sfdxinstall, or a directory
// under the system temp dir when the cache dir is unavailable.
func DefaultInstallDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, installDirName)
}
