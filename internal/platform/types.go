// Package platform identifies the platform and architecture an sfdx
// release has to be resolved for.
//
// Names follow the Node.js convention used by the sfdx distribution
// ("darwin", "linux", "win32"; "x64", "x86", "arm", "arm64") so that a
// recorded location can be compared against the values the installer
// reports. Host values can be overridden through the environment, which is
// how cross-platform installs and tests pin a target.
package platform

// Platform names.
const (
	Darwin = "darwin"
	Linux  = "linux"
	Win32  = "win32"
)

// Architecture names.
const (
	X64   = "x64"
	X86   = "x86"
	ARM   = "arm"
	ARM64 = "arm64"
)

// Environment variables that override host detection.
const (
	EnvPlatform = "SFDX_INSTALLER_PLATFORM"
	EnvArch     = "SFDX_INSTALLER_ARCH"
)

// Spec is the platform/architecture pair a binary is resolved for.
type Spec struct {
	Platform string
	Arch     string
}

// String returns "platform-arch".
func (s Spec) String() string {
	return s.Platform + "-" + s.Arch
}

// Matches reports whether platform and arch equal s.Platform and s.Arch.
func (s Spec) Matches(platform, arch string) bool {
	return s.Platform == platform && s.Arch == arch
}

// IsWindows returns true if the target platform is Windows.
func (s Spec) IsWindows() bool {
	return s.Platform == Win32
}

// Detector is the interface for platform identification.
type Detector interface {
	Identify() Spec
}
