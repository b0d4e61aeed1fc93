package binary

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// VerifyChecksum reports whether the SHA-256 of the file at filePath equals
// expectedChecksum (lowercase hex). Any error reading the file counts as a
// mismatch.
func VerifyChecksum(filePath, expectedChecksum string) bool {
	actual, err := calculateSHA256(filePath)
	if err != nil {
		return false
	}
	return actual == strings.ToLower(strings.TrimSpace(expectedChecksum))
}

// calculateSHA256 calculates the SHA256 checksum of a file
func calculateSHA256(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Verifier checks downloaded archives before they are extracted.
type Verifier struct {
	keyringPath string
}

// NewVerifier creates a verifier. An empty keyringPath disables signature
// checks; the pinned checksum is always checked.
func NewVerifier(keyringPath string) *Verifier {
	return &Verifier{keyringPath: keyringPath}
}

// WantsSignature reports whether a detached signature must be fetched.
func (v *Verifier) WantsSignature() bool {
	return v.keyringPath != ""
}

// VerifyArchive checks the archive against the pinned checksum and, when a
// keyring is configured, against the detached signature at signaturePath.
func (v *Verifier) VerifyArchive(archivePath, signaturePath string, spec *DownloadSpec) (VerificationMethod, error) {
	if spec == nil {
		return VerificationNone, fmt.Errorf("download spec is required")
	}

	if !VerifyChecksum(archivePath, spec.Checksum) {
		return VerificationNone, fmt.Errorf("%w for %s", ErrChecksumMismatch, archivePath)
	}

	if !v.WantsSignature() {
		return VerificationSHA256, nil
	}

	if signaturePath == "" {
		return VerificationNone, fmt.Errorf("GPG signature required but not available")
	}
	if err := v.verifyGPG(archivePath, signaturePath); err != nil {
		return VerificationNone, fmt.Errorf("GPG verification failed: %w", err)
	}

	return VerificationGPG, nil
}

// verifyGPG verifies a file using a detached GPG signature
func (v *Verifier) verifyGPG(archivePath, signaturePath string) error {
	keyring, err := loadKeyring(v.keyringPath)
	if err != nil {
		return fmt.Errorf("load keyring: %w", err)
	}

	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archiveFile.Close()

	sigFile, err := os.Open(signaturePath)
	if err != nil {
		return fmt.Errorf("open signature: %w", err)
	}
	defer sigFile.Close()

	// Try armored first
	_, err = openpgp.CheckArmoredDetachedSignature(keyring, archiveFile, sigFile, nil)
	if err != nil {
		if _, serr := archiveFile.Seek(0, io.SeekStart); serr != nil {
			return fmt.Errorf("rewind archive: %w", serr)
		}
		if _, serr := sigFile.Seek(0, io.SeekStart); serr != nil {
			return fmt.Errorf("rewind signature: %w", serr)
		}
		_, err = openpgp.CheckDetachedSignature(keyring, archiveFile, sigFile, nil)
	}
	if err != nil {
		return fmt.Errorf("verify signature: %w", err)
	}

	return nil
}
