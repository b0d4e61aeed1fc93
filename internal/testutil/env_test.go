package testutil_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZebulonRouseFrantzich/sfdxinstall/internal/testutil"
)

func TestSetupTestEnv(t *testing.T) {
	t.Setenv("SFDX_INSTALLER_PLATFORM", "win32")

	dir := testutil.SetupTestEnv(t)

	if got := os.Getenv("SFDX_INSTALLER_DIR"); got != dir {
		t.Errorf("SFDX_INSTALLER_DIR = %q, want %q", got, dir)
	}
	if got := os.Getenv("SFDX_INSTALLER_PLATFORM"); got != "" {
		t.Errorf("SFDX_INSTALLER_PLATFORM = %q, want it cleared", got)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("install dir not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("install dir is not a directory")
	}
}

func TestWriteFakeSfdx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bin", "sfdx")
	testutil.WriteFakeSfdx(t, path, "sfdx-cli/7.1.0-abcde linux-x64 node-v10.15.3")

	out, err := exec.Command(path, "--version").CombinedOutput()
	if err != nil {
		t.Fatalf("running fake sfdx: %v", err)
	}
	if !strings.HasPrefix(string(out), "sfdx-cli/7.1.0-abcde ") {
		t.Errorf("output = %q", out)
	}
}
