package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/ZebulonRouseFrantzich/sfdxinstall/internal/config"
)

// options holds the flags shared by every subcommand.
type options struct {
	configPath string
	installDir string
	cdnBaseURL string
	version    string
	keyring    string
	verbose    bool
}

func newFlagSet(name string, opts *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	fs.StringVarP(&opts.installDir, "dir", "d", "", "install directory (default: user cache dir, or $"+config.EnvInstallDir+")")
	fs.StringVar(&opts.cdnBaseURL, "cdn", "", "base URL of the release archives (or $"+config.EnvCDNBaseURL+")")
	fs.StringVar(&opts.version, "expect-version", "", "sfdx version to install (default "+config.DefaultVersion+")")
	fs.StringVar(&opts.keyring, "keyring", "", "OpenPGP public keyring; enables signature checks")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output")
	return fs
}

// parseOptions parses args for the named subcommand.
func parseOptions(name string, args []string) (*options, error) {
	opts := &options{}
	fs := newFlagSet(name, opts)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	return opts, nil
}

// loadConfig layers defaults, the config file, the environment and flags,
// in that order.
func loadConfig(opts *options, getenv func(string) string) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnv(getenv)

	if opts.installDir != "" {
		cfg.InstallDir = opts.installDir
	}
	if opts.cdnBaseURL != "" {
		cfg.CDNBaseURL = opts.cdnBaseURL
	}
	if opts.version != "" {
		cfg.Version = opts.version
	}
	if opts.keyring != "" {
		cfg.KeyringPath = opts.keyring
	}
	if cfg.InstallDir == "" {
		cfg.InstallDir = config.DefaultInstallDir()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger returns a text logger that reports every resolution decision
// at Info, and Debug detail too when verbose. *slog.Logger satisfies
// config.Logger.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// setup parses flags and builds the config and logger for a subcommand.
func setup(name string, args []string) (*config.Config, config.Logger, error) {
	opts, err := parseOptions(name, args)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := loadConfig(opts, os.Getenv)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, newLogger(os.Stderr, opts.verbose), nil
}
