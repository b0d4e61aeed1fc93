package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	goversion "github.com/hashicorp/go-version"
)

// Config is the complete installer configuration.
type Config struct {
	// InstallDir receives the extracted release and the location record.
	InstallDir string `yaml:"install_dir"`

	// Version is the sfdx version the installed binary must report.
	Version string `yaml:"version"`

	// CDNBaseURL is the root the release archives are fetched from.
	CDNBaseURL string `yaml:"cdn_base_url"`

	// ProductName prefixes the version in the binary's version output
	// ("sfdx-cli/7.1.0-abcdef linux-x64 ...").
	ProductName string `yaml:"product_name"`

	// VersionFlag is passed to the binary to make it print its version.
	VersionFlag string `yaml:"version_flag"`

	// BinaryPath is the binary's path inside the extracted archive, slash
	// separated. ".cmd" is appended on win32.
	BinaryPath string `yaml:"binary_path"`

	VersionTimeout  time.Duration `yaml:"version_timeout"`
	DownloadTimeout time.Duration `yaml:"download_timeout"`
	Retries         int           `yaml:"retries"`

	// KeyringPath, when set, points at an OpenPGP public keyring used to
	// check the detached signature published next to each archive.
	KeyringPath string `yaml:"keyring_path"`
}

// Default returns the configuration this build ships with. InstallDir is
// left empty; see DefaultInstallDir.
func Default() *Config {
	return &Config{
		Version:         DefaultVersion,
		CDNBaseURL:      DefaultCDNBaseURL,
		ProductName:     DefaultProductName,
		VersionFlag:     DefaultVersionFlag,
		BinaryPath:      DefaultBinaryPath,
		VersionTimeout:  DefaultVersionTimeout,
		DownloadTimeout: DefaultDownloadTimeout,
		Retries:         DefaultRetries,
	}
}

// RecordPath returns where the location record lives.
func (c *Config) RecordPath() string {
	return filepath.Join(c.InstallDir, "sfdx-location.lua")
}

// ReleaseDir returns where the release archive is extracted. It is
// emptied before every extraction.
func (c *Config) ReleaseDir() string {
	return filepath.Join(c.InstallDir, "release")
}

// CacheDir returns where downloaded archives are kept.
func (c *Config) CacheDir() string {
	return filepath.Join(c.InstallDir, "cache", "downloads")
}

// Validate performs basic validation on a Config.
func (c *Config) Validate() error {
	if c.InstallDir == "" {
		return &ValidationError{Field: "install_dir", Message: "cannot be empty"}
	}

	if c.Version == "" {
		return &ValidationError{Field: "version", Message: "cannot be empty"}
	}
	if _, err := goversion.NewVersion(c.Version); err != nil {
		return &ValidationError{Field: "version", Message: fmt.Sprintf("invalid version %q: %v", c.Version, err)}
	}

	u, err := url.Parse(c.CDNBaseURL)
	if err != nil {
		return &ValidationError{Field: "cdn_base_url", Message: err.Error()}
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return &ValidationError{
			Field:   "cdn_base_url",
			Message: fmt.Sprintf("must use https:// or http:// scheme (got: %q)", c.CDNBaseURL),
		}
	}

	if c.ProductName == "" || strings.ContainsAny(c.ProductName, " \t\n/") {
		return &ValidationError{Field: "product_name", Message: fmt.Sprintf("invalid product name %q", c.ProductName)}
	}

	if c.BinaryPath == "" {
		return &ValidationError{Field: "binary_path", Message: "cannot be empty"}
	}
	if filepath.IsAbs(c.BinaryPath) || strings.Contains(c.BinaryPath, "..") {
		return &ValidationError{Field: "binary_path", Message: fmt.Sprintf("must be relative to the archive root: %s", c.BinaryPath)}
	}

	if c.VersionTimeout <= 0 {
		return &ValidationError{Field: "version_timeout", Message: "must be positive"}
	}
	if c.DownloadTimeout <= 0 {
		return &ValidationError{Field: "download_timeout", Message: "must be positive"}
	}
	if c.Retries < 0 {
		return &ValidationError{Field: "retries", Message: "cannot be negative"}
	}

	return nil
}

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}
