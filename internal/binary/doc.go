// Package binary resolves the sfdx binary for the current platform: it
// decides whether a previously installed binary can be reused, and if not,
// which release archive to download and how to verify it.
//
// # Resolution
//
// Resolver.Ensure runs one sequential pass:
//
//  1. Read the location record (ReadLocationRecord).
//  2. Validate the recorded binary (Validator.ValidateExisting): it must
//     have been resolved for the current platform/arch, exist on disk and
//     report the expected version when run with --version.
//  3. Otherwise look up the release archive (ResolveDownloadSpec). A
//     platform/arch without a release fails with ErrUnsupportedPlatform.
//  4. Download it (Downloader) and verify its SHA-256 against the pinned
//     checksum (VerifyChecksum), plus a detached GPG signature when a
//     keyring is configured.
//  5. Extract it (Extractor) and record the binary's location
//     (WriteLocationRecord).
//
// # Failure Policy
//
// Local checks never fail an install. A missing record, a platform or
// version mismatch, a version probe that errors or times out, or a record
// that doesn't parse are all logged and treated as "download again". Only an
// unsupported platform and failures of the download path itself stop
// Ensure.
//
// # Location Record
//
// The record is a tiny Lua chunk of string assignments:
//
//	path = "/home/user/.cache/sfdxinstall/release/sfdx/bin/sfdx"
//	platform = "linux"
//	arch = "x64"
//
// It is read back through the gopher-lua parser as a syntax tree and is
// never executed.
package binary
