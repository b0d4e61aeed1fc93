package binary

import (
	"time"
)

// LocationRecord is what the installer remembers about the binary it
// resolved last: where it is and which platform/arch it was resolved for.
type LocationRecord struct {
	Path     string
	Platform string
	Arch     string
}

// DownloadSpec says where to fetch a release archive and what its SHA-256
// must be. A nil *DownloadSpec means the platform/arch is unsupported.
type DownloadSpec struct {
	URL      string
	Checksum string // lowercase hex SHA-256
}

// VerificationMethod indicates how a downloaded archive was verified
type VerificationMethod int

const (
	// VerificationNone indicates no verification (should never happen in production)
	VerificationNone VerificationMethod = iota
	// VerificationSHA256 indicates only the pinned checksum was checked
	VerificationSHA256
	// VerificationGPG indicates the pinned checksum and a detached GPG signature were checked
	VerificationGPG
)

// String returns the string representation of the verification method
func (v VerificationMethod) String() string {
	switch v {
	case VerificationGPG:
		return "SHA256+GPG"
	case VerificationSHA256:
		return "SHA256"
	case VerificationNone:
		return "None"
	default:
		return "Unknown"
	}
}

// Result describes the outcome of Resolver.Ensure.
type Result struct {
	// Path is the absolute path of the usable binary.
	Path string
	// Reused is true when the recorded binary was valid and nothing was downloaded.
	Reused       bool
	Version      string
	Verified     VerificationMethod
	DownloadTime time.Duration
}
