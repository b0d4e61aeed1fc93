package binary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	goversion "github.com/hashicorp/go-version"

	"github.com/ZebulonRouseFrantzich/sfdxinstall/internal/config"
	"github.com/ZebulonRouseFrantzich/sfdxinstall/internal/platform"
)

// waitDelay bounds how long a killed version probe may keep its output
// pipes open through child processes.
const waitDelay = time.Second

// runFunc runs a binary and returns its combined output.
type runFunc func(ctx context.Context, path string, args ...string) ([]byte, error)

// Validator decides whether a recorded binary can be used as is.
type Validator struct {
	versionFlag    string
	versionPattern *regexp.Regexp
	timeout        time.Duration
	logger         config.Logger
	run            runFunc
}

// NewValidator creates a validator for the product and version flag in cfg.
func NewValidator(cfg *config.Config, logger config.Logger) *Validator {
	if logger == nil {
		logger = config.NopLogger()
	}
	return &Validator{
		versionFlag:    cfg.VersionFlag,
		versionPattern: versionPattern(cfg.ProductName),
		timeout:        cfg.VersionTimeout,
		logger:         logger,
		run:            runCombined,
	}
}

// withLogger returns a copy of v that logs to logger.
func (v *Validator) withLogger(logger config.Logger) *Validator {
	c := *v
	c.logger = logger
	return &c
}

// versionPattern matches "<product>/<version>" followed by whitespace.
func versionPattern(product string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(product) + `/(\S+)\s`)
}

// ValidateExisting returns the absolute path of the recorded binary and true
// when it was resolved for current and reports expectedVersion. Every
// failure is logged and reported as false; the caller re-downloads.
func (v *Validator) ValidateExisting(ctx context.Context, rec *LocationRecord, current platform.Spec, expectedVersion string) (string, bool) {
	path, err := v.check(ctx, rec, current, expectedVersion)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrPlatformMismatch), errors.Is(err, ErrVersionMismatch):
			v.logger.Info("recorded sfdx binary not usable", "reason", err)
		default:
			v.logger.Warn("could not validate recorded sfdx binary", "error", err)
		}
		return "", false
	}

	v.logger.Info("using recorded sfdx binary", "path", path, "version", expectedVersion)
	return path, true
}

func (v *Validator) check(ctx context.Context, rec *LocationRecord, current platform.Spec, expectedVersion string) (string, error) {
	if rec == nil {
		return "", ErrNotFound
	}

	if !current.Matches(rec.Platform, rec.Arch) {
		return "", fmt.Errorf("%w: recorded %s-%s, current %s", ErrPlatformMismatch, rec.Platform, rec.Arch, current)
	}

	path, err := filepath.Abs(rec.Path)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", rec.Path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s does not exist", ErrNotFound, path)
		}
		return "", fmt.Errorf("stat binary: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}

	installed, err := v.queryVersion(ctx, path)
	if err != nil {
		return "", err
	}

	if !versionMatches(installed, expectedVersion) {
		return "", fmt.Errorf("%w: installed %s, expected %s%s", ErrVersionMismatch, installed, expectedVersion, compareVersions(installed, expectedVersion))
	}

	return path, nil
}

// queryVersion runs the binary with the version flag and extracts the
// version token from its output.
func (v *Validator) queryVersion(ctx context.Context, path string) (string, error) {
	runCtx := ctx
	if v.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	output, err := v.run(runCtx, path, v.versionFlag)
	if err != nil {
		if runCtx.Err() != nil {
			return "", fmt.Errorf("%w: %s %s: %v", ErrSubprocess, path, v.versionFlag, runCtx.Err())
		}
		return "", fmt.Errorf("%w: %s %s: %v", ErrSubprocess, path, v.versionFlag, err)
	}

	m := v.versionPattern.FindSubmatch(output)
	if m == nil {
		return "", fmt.Errorf("%w: no version in output %q", ErrSubprocess, truncate(string(output), 120))
	}

	return string(m[1]), nil
}

// buildHash is the commit hash sfdx appends to its version ("7.1.0-3e8a2d8").
var buildHash = regexp.MustCompile(`^[0-9a-f]+$`)

// versionMatches compares exactly. The one tolerated difference is a hex
// build hash after the version ("7.1.0-abcdef" for "7.1.0"); a prerelease
// tag such as "7.1.0-rc.1" does not match "7.1.0".
func versionMatches(installed, expected string) bool {
	if installed == expected {
		return true
	}
	base, build, found := strings.Cut(installed, "-")
	return found && base == expected && buildHash.MatchString(build)
}

// compareVersions describes how installed relates to expected, for logs.
// It returns "" when either side doesn't parse.
func compareVersions(installed, expected string) string {
	base, _, _ := strings.Cut(installed, "-")
	iv, err := goversion.NewVersion(base)
	if err != nil {
		return ""
	}
	ev, err := goversion.NewVersion(expected)
	if err != nil {
		return ""
	}
	switch {
	case iv.LessThan(ev):
		return " (older)"
	case iv.GreaterThan(ev):
		return " (newer)"
	default:
		return ""
	}
}

func runCombined(ctx context.Context, path string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.WaitDelay = waitDelay
	return cmd.CombinedOutput()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
