package binary

import "errors"

// Reasons an existing binary or a download was rejected. Local checks log
// these and collapse them into a boolean; only ErrUnsupportedPlatform and
// ErrUnpinnedVersion stop an install on their own.
var (
	ErrNotFound             = errors.New("no recorded sfdx binary")
	ErrInvalidRecord        = errors.New("invalid location record")
	ErrPlatformMismatch     = errors.New("recorded platform does not match")
	ErrVersionMismatch      = errors.New("installed version does not match")
	ErrUnsupportedPlatform  = errors.New("unsupported platform")
	ErrUnpinnedVersion      = errors.New("no checksums for version")
	ErrChecksumMismatch     = errors.New("checksum mismatch")
	ErrSubprocess           = errors.New("version query failed")
	ErrInvalidChecksumTable = errors.New("invalid checksum table")
)
