package binary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ZebulonRouseFrantzich/sfdxinstall/internal/config"
	"github.com/ZebulonRouseFrantzich/sfdxinstall/internal/platform"
)

// maxFetchAttempts is how many times a download whose checksum doesn't
// match is evicted and fetched again.
const maxFetchAttempts = 2

// Resolver orchestrates validation, download, verification, extraction and
// recording of the sfdx binary.
type Resolver struct {
	cfg       *config.Config
	detector  platform.Detector
	validator *Validator
	fetcher   Fetcher
	verifier  *Verifier
	extractor *Extractor
	logger    config.Logger

	resolveSpec func(baseURL, version, platformName, arch string) *DownloadSpec
}

// Options carries optional collaborators for NewResolver. Zero values get
// production defaults.
type Options struct {
	Detector platform.Detector
	Fetcher  Fetcher
	Logger   config.Logger
}

// NewResolver creates a resolver for a validated configuration.
func NewResolver(cfg *config.Config, opts Options) (*Resolver, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateDownloadTable(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = config.NopLogger()
	}
	detector := opts.Detector
	if detector == nil {
		detector = platform.NewDetector()
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = NewDownloader(cfg.CacheDir(), cfg.DownloadTimeout, cfg.Retries)
	}

	return &Resolver{
		cfg:       cfg,
		detector:  detector,
		validator: NewValidator(cfg, logger),
		fetcher:   fetcher,
		verifier:  NewVerifier(cfg.KeyringPath),
		extractor: NewExtractor(),
		logger:    logger,

		resolveSpec: ResolveDownloadSpec,
	}, nil
}

// Platform returns the platform the resolver targets right now.
func (r *Resolver) Platform() platform.Spec {
	return r.detector.Identify()
}

// Recorded returns the current location record.
func (r *Resolver) Recorded() (*LocationRecord, error) {
	return ReadLocationRecord(r.cfg.RecordPath())
}

// Check reports whether the recorded binary is usable for the current
// platform and configured version, returning its path if so.
func (r *Resolver) Check(ctx context.Context) (string, bool) {
	return r.check(ctx, r.Platform(), r.logger)
}

func (r *Resolver) check(ctx context.Context, current platform.Spec, logger config.Logger) (string, bool) {
	rec, err := r.Recorded()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.Info("no recorded sfdx binary", "record", r.cfg.RecordPath())
		} else {
			logger.Warn("ignoring location record", "record", r.cfg.RecordPath(), "error", err)
		}
		return "", false
	}
	return r.validator.withLogger(logger).ValidateExisting(ctx, rec, current, r.cfg.Version)
}

// Ensure returns a usable sfdx binary, downloading and installing one when
// the recorded binary is missing or invalid. ErrUnsupportedPlatform is
// returned when no release exists for the current platform, and
// ErrUnpinnedVersion when this build has no checksums for the configured
// version. Every log entry of one call carries the same "run" ID.
func (r *Resolver) Ensure(ctx context.Context) (*Result, error) {
	logger := runLogger{Logger: r.logger, run: uuid.NewString()}

	current := r.Platform()
	logger.Info("resolving sfdx binary",
		"platform", current.Platform,
		"arch", current.Arch,
		"version", r.cfg.Version)

	if path, ok := r.check(ctx, current, logger); ok {
		return &Result{
			Path:    path,
			Reused:  true,
			Version: r.cfg.Version,
		}, nil
	}

	spec := r.resolveSpec(r.cfg.CDNBaseURL, r.cfg.Version, current.Platform, current.Arch)
	if spec == nil {
		if r.cfg.Version != PinnedVersion {
			return nil, fmt.Errorf("%w %s (this build pins %s)", ErrUnpinnedVersion, r.cfg.Version, PinnedVersion)
		}
		return nil, fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedPlatform, current, supportedList())
	}

	startTime := time.Now()

	archivePath, method, err := r.fetchVerified(ctx, spec, logger)
	if err != nil {
		return nil, err
	}

	binPath, err := r.install(ctx, archivePath, current)
	if err != nil {
		return nil, err
	}

	if err := WriteLocationRecord(r.cfg.RecordPath(), LocationRecord{
		Path:     binPath,
		Platform: current.Platform,
		Arch:     current.Arch,
	}); err != nil {
		return nil, fmt.Errorf("write location record: %w", err)
	}

	logger.Info("installed sfdx binary", "path", binPath, "verified", method.String())

	return &Result{
		Path:         binPath,
		Version:      r.cfg.Version,
		Verified:     method,
		DownloadTime: time.Since(startTime),
	}, nil
}

// fetchVerified downloads the archive and verifies it. A checksum mismatch
// evicts the download and tries again once, since the first copy may be a
// stale cache entry.
func (r *Resolver) fetchVerified(ctx context.Context, spec *DownloadSpec, logger config.Logger) (string, VerificationMethod, error) {
	var lastErr error

	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		logger.Info("downloading sfdx release", "url", spec.URL, "attempt", attempt)

		archivePath, err := r.fetcher.FetchArchive(ctx, spec)
		if err != nil {
			return "", VerificationNone, fmt.Errorf("download archive: %w", err)
		}

		var signaturePath string
		if r.verifier.WantsSignature() {
			signaturePath, err = r.fetcher.FetchSignature(ctx, spec)
			if err != nil {
				return "", VerificationNone, fmt.Errorf("download signature: %w", err)
			}
		}

		method, err := r.verifier.VerifyArchive(archivePath, signaturePath, spec)
		if err == nil {
			return archivePath, method, nil
		}

		lastErr = err
		logger.Warn("discarding downloaded archive", "path", archivePath, "error", err)
		if evictErr := r.fetcher.Evict(archivePath); evictErr != nil {
			logger.Warn("could not remove archive", "error", evictErr)
		}

		if !errors.Is(err, ErrChecksumMismatch) {
			break
		}
	}

	return "", VerificationNone, fmt.Errorf("verify archive: %w", lastErr)
}

// install extracts the archive into a clean release dir and returns the
// path of the binary inside it.
func (r *Resolver) install(ctx context.Context, archivePath string, current platform.Spec) (string, error) {
	releaseDir := r.cfg.ReleaseDir()
	if err := os.RemoveAll(releaseDir); err != nil {
		return "", fmt.Errorf("clear release dir: %w", err)
	}

	if err := r.extractor.Extract(ctx, archivePath, releaseDir); err != nil {
		return "", fmt.Errorf("extract archive: %w", err)
	}

	binPath := r.binaryPath(current)
	info, err := os.Stat(binPath)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("binary %s not found in archive", r.cfg.BinaryPath)
	}

	if !current.IsWindows() {
		if err := SetExecutable(binPath); err != nil {
			return "", err
		}
	}

	return filepath.Abs(binPath)
}

// binaryPath returns where the binary lands after extraction.
func (r *Resolver) binaryPath(current platform.Spec) string {
	path := filepath.Join(r.cfg.ReleaseDir(), filepath.FromSlash(r.cfg.BinaryPath))
	if current.IsWindows() && filepath.Ext(path) == "" {
		path += ".cmd"
	}
	return path
}

func supportedList() string {
	specs := SupportedPlatforms()
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.String()
	}
	return strings.Join(names, ", ")
}

// runLogger prefixes every entry with the ID of one Ensure call.
type runLogger struct {
	config.Logger
	run string
}

func (l runLogger) Debug(msg string, kv ...any) { l.Logger.Debug(msg, l.tag(kv)...) }
func (l runLogger) Info(msg string, kv ...any)  { l.Logger.Info(msg, l.tag(kv)...) }
func (l runLogger) Warn(msg string, kv ...any)  { l.Logger.Warn(msg, l.tag(kv)...) }
func (l runLogger) Error(msg string, kv ...any) { l.Logger.Error(msg, l.tag(kv)...) }

func (l runLogger) tag(kv []any) []any {
	return append([]any{"run", l.run}, kv...)
}
