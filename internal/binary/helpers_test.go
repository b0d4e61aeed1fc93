package binary

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mholt/archives"

	"github.com/ZebulonRouseFrantzich/sfdxinstall/internal/config"
	"github.com/ZebulonRouseFrantzich/sfdxinstall/internal/platform"
)

// fixedDetector is a platform.Detector that always returns spec.
type fixedDetector struct {
	spec platform.Spec
}

func (d fixedDetector) Identify() platform.Spec {
	return d.spec
}

var linuxX64 = platform.Spec{Platform: platform.Linux, Arch: platform.X64}

// logEntry is one captured log call.
type logEntry struct {
	level string
	msg   string
	kv    []any
}

// recordLogger captures log calls for assertions.
type recordLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordLogger) add(level, msg string, kv []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, kv: kv})
}

func (l *recordLogger) Debug(msg string, kv ...any) { l.add("debug", msg, kv) }
func (l *recordLogger) Info(msg string, kv ...any)  { l.add("info", msg, kv) }
func (l *recordLogger) Warn(msg string, kv ...any)  { l.add("warn", msg, kv) }
func (l *recordLogger) Error(msg string, kv ...any) { l.add("error", msg, kv) }

// text flattens every entry into one string for substring checks.
func (l *recordLogger) text() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var s string
	for _, e := range l.entries {
		s += fmt.Sprintf("%s %s %v\n", e.level, e.msg, e.kv)
	}
	return s
}

var _ config.Logger = (*recordLogger)(nil)

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func writeFile(t *testing.T, path string, data []byte, perm os.FileMode) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// archiveEntry is a file to put into a test archive.
type archiveEntry struct {
	name    string // name in archive, slash separated
	content string
	mode    os.FileMode
}

// buildArchive writes entries into a compressed tar at dest using the given
// compression and returns the archive bytes.
func buildArchive(t *testing.T, dest string, compression archives.Compression, entries ...archiveEntry) []byte {
	t.Helper()

	ctx := context.Background()
	srcDir := t.TempDir()

	names := make(map[string]string, len(entries))
	for i, e := range entries {
		src := filepath.Join(srcDir, fmt.Sprintf("f%d", i))
		writeFile(t, src, []byte(e.content), e.mode)
		// WriteFile is subject to umask
		if err := os.Chmod(src, e.mode); err != nil {
			t.Fatalf("chmod: %v", err)
		}
		names[src] = e.name
	}

	files, err := archives.FilesFromDisk(ctx, nil, names)
	if err != nil {
		t.Fatalf("FilesFromDisk: %v", err)
	}

	out, err := os.Create(dest)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}

	format := archives.CompressedArchive{
		Archival:    archives.Tar{},
		Compression: compression,
	}
	if err := format.Archive(ctx, out, files); err != nil {
		out.Close()
		t.Fatalf("Archive: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	return data
}

// fakeSfdxScript is a shell script reporting version like sfdx does.
func fakeSfdxScript(version string) string {
	return fmt.Sprintf("#!/bin/sh\necho 'sfdx-cli/%s-abcde linux-x64 node-v10.15.3'\n", version)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.InstallDir = t.TempDir()
	cfg.Retries = 0
	return cfg
}
