package binary

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/mholt/archives"
)

// Extractor handles archive extraction
type Extractor struct{}

// NewExtractor creates a new extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract unpacks archivePath into destDir. The format is sniffed from the
// file's contents: tar.xz, tar.gz, plain tar and zip are accepted.
func (e *Extractor) Extract(ctx context.Context, archivePath, destDir string) error {
	kind, err := filetype.MatchFile(archivePath)
	if err != nil {
		return fmt.Errorf("detect archive type: %w", err)
	}

	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archiveFile.Close()

	var (
		source    io.Reader = archiveFile
		extractor archives.Extractor
	)

	switch kind.MIME.Value {
	case "application/x-xz":
		decoder, err := archives.Xz{}.OpenReader(archiveFile)
		if err != nil {
			return fmt.Errorf("open xz stream: %w", err)
		}
		defer decoder.Close()
		source = decoder
		extractor = archives.Tar{}

	case "application/gzip":
		decoder, err := archives.Gz{}.OpenReader(archiveFile)
		if err != nil {
			return fmt.Errorf("open gzip stream: %w", err)
		}
		defer decoder.Close()
		source = decoder
		extractor = archives.Tar{}

	case "application/x-tar":
		extractor = archives.Tar{}

	case "application/zip":
		extractor = archives.Zip{}

	default:
		return fmt.Errorf("unsupported archive type %q: %s", kind.MIME.Value, archivePath)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	if err := extractor.Extract(ctx, source, e.handleFile(destDir)); err != nil {
		return fmt.Errorf("extract %s: %w", filepath.Base(archivePath), err)
	}

	return nil
}

func (e *Extractor) handleFile(destDir string) archives.FileHandler {
	root := filepath.Clean(destDir)

	return func(ctx context.Context, info archives.FileInfo) error {
		target := filepath.Join(root, filepath.FromSlash(info.NameInArchive))

		// Security check: prevent path traversal
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return fmt.Errorf("illegal file path: %s", info.NameInArchive)
		}

		switch {
		case info.IsDir():
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
			return nil

		case info.Mode()&fs.ModeSymlink != 0:
			if filepath.IsAbs(info.LinkTarget) {
				return fmt.Errorf("illegal symlink target %s -> %s", info.NameInArchive, info.LinkTarget)
			}
			resolved := filepath.Join(filepath.Dir(target), info.LinkTarget)
			if !strings.HasPrefix(resolved, root+string(os.PathSeparator)) {
				return fmt.Errorf("illegal symlink target %s -> %s", info.NameInArchive, info.LinkTarget)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("create parent dir for %s: %w", target, err)
			}
			os.Remove(target)
			if err := os.Symlink(info.LinkTarget, target); err != nil {
				return fmt.Errorf("create symlink %s: %w", target, err)
			}
			return nil

		case !info.Mode().IsRegular():
			// Skip other types (char devices, block devices, etc.)
			return nil
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("create parent dir for %s: %w", target, err)
		}

		perm := info.Mode().Perm()
		if perm == 0 {
			perm = 0644
		}

		in, err := info.Open()
		if err != nil {
			return fmt.Errorf("open %s in archive: %w", info.NameInArchive, err)
		}
		defer in.Close()

		outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
		if err != nil {
			return fmt.Errorf("create file %s: %w", target, err)
		}

		if _, err := io.Copy(outFile, in); err != nil {
			outFile.Close()
			return fmt.Errorf("write file %s: %w", target, err)
		}

		if err := outFile.Close(); err != nil {
			return fmt.Errorf("close file %s: %w", target, err)
		}

		// OpenFile only applies perm to new files and honours umask
		return os.Chmod(target, perm)
	}
}

// SetExecutable sets executable permissions on a file
func SetExecutable(path string) error {
	// Set permissions to 0755 (rwxr-xr-x)
	if err := os.Chmod(path, 0755); err != nil {
		return fmt.Errorf("set executable: %w", err)
	}
	return nil
}
