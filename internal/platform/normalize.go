package platform

import "strings"

// archMap maps Go GOARCH values and kernel machine names (uname -m) to the
// Node.js architecture names used in release metadata.
var archMap = map[string]string{
	"amd64":   X64,
	"x86_64":  X64,
	"x64":     X64,
	"386":     X86,
	"i386":    X86,
	"i686":    X86,
	"x86":     X86,
	"arm":     ARM,
	"armv6l":  ARM,
	"armv7l":  ARM,
	"arm64":   ARM64,
	"aarch64": ARM64,
}

// normalizeArch converts a host architecture to its Node.js name.
// Unrecognized values are returned lowercased so they fail the download
// table lookup instead of being guessed.
func normalizeArch(arch string) string {
	normalized := strings.ToLower(strings.TrimSpace(arch))
	if name, ok := archMap[normalized]; ok {
		return name
	}
	return normalized
}

// normalizeOS converts a GOOS value to its Node.js platform name.
func normalizeOS(goos string) string {
	normalized := strings.ToLower(strings.TrimSpace(goos))
	if normalized == "windows" {
		return Win32
	}
	return normalized
}
