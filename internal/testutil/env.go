// Package testutil provides utilities for testing sfdxinstall in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// SetupTestEnv points the installer at a fresh temp directory and clears
// every override it reads, so tests never touch a real install or inherit
// the developer's environment. It returns the install directory.
//
// The cleanup function is automatically handled by t.TempDir(),
// so callers don't need to manually clean up.
func SetupTestEnv(t *testing.T) string {
	t.Helper()

	installDir := filepath.Join(t.TempDir(), "install")
	if err := os.MkdirAll(installDir, 0o750); err != nil {
		t.Fatalf("failed to create test directory %s: %v", installDir, err)
	}

	t.Setenv("SFDX_INSTALLER_DIR", installDir)
	t.Setenv("SFDX_INSTALLER_PLATFORM", "")
	t.Setenv("SFDX_INSTALLER_ARCH", "")
	t.Setenv("SFDX_INSTALLER_CDN", "")

	return installDir
}

// WriteScript writes an executable POSIX shell script with the given body.
// Tests that need it are skipped on Windows.
func WriteScript(t *testing.T, path, body string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create script dir: %v", err)
	}

	content := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("failed to write script %s: %v", path, err)
	}

	return path
}

// WriteFakeSfdx writes a script that prints output verbatim, the way
// `sfdx --version` would.
func WriteFakeSfdx(t *testing.T, path, output string) string {
	t.Helper()
	return WriteScript(t, path, "cat <<'SFDX_EOF'\n"+output+"\nSFDX_EOF")
}
