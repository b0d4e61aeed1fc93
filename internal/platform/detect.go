package platform

import (
	"os"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using environment overrides and the
// running host.
type RealDetector struct {
	getenv     func(string) string
	kernelArch func() (string, error)
	goos       string
	goarch     string
}

// NewDetector creates a detector backed by the process environment and the
// host kernel.
func NewDetector() Detector {
	return &RealDetector{
		getenv:     os.Getenv,
		kernelArch: host.KernelArch,
		goos:       runtime.GOOS,
		goarch:     runtime.GOARCH,
	}
}

// Identify returns the target platform and architecture.
//
// SFDX_INSTALLER_PLATFORM and SFDX_INSTALLER_ARCH win when set. Otherwise the
// OS comes from runtime.GOOS and the architecture from the kernel (so a
// 32-bit build on a 64-bit host still resolves the 64-bit release), falling
// back to runtime.GOARCH when the kernel can't be asked. Environment values
// are read on every call.
func (d *RealDetector) Identify() Spec {
	spec := Spec{
		Platform: normalizeOS(d.goos),
		Arch:     d.hostArch(),
	}

	if v := strings.TrimSpace(d.getenv(EnvPlatform)); v != "" {
		spec.Platform = v
	}
	if v := strings.TrimSpace(d.getenv(EnvArch)); v != "" {
		spec.Arch = v
	}

	return spec
}

func (d *RealDetector) hostArch() string {
	if d.kernelArch != nil {
		if raw, err := d.kernelArch(); err == nil && strings.TrimSpace(raw) != "" {
			return normalizeArch(raw)
		}
	}
	return normalizeArch(d.goarch)
}
