package binary

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/ProtonMail/go-crypto/openpgp/armor"
)

func TestVerifyChecksum(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte("test binary content")
	path := writeFile(t, filepath.Join(tmpDir, "archive.tar.xz"), content, 0o644)
	sum := sha256Hex(content)

	tests := []struct {
		name     string
		path     string
		expected string
		want     bool
	}{
		{"match", path, sum, true},
		{"uppercase expected", path, strings.ToUpper(sum), true},
		{"surrounding whitespace", path, " " + sum + "\n", true},
		{"mismatch", path, sha256Hex([]byte("other")), false},
		{"truncated", path, sum[:63], false},
		{"empty expected", path, "", false},
		{"missing file", filepath.Join(tmpDir, "missing"), sum, false},
		{"directory", tmpDir, sum, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyChecksum(tt.path, tt.expected); got != tt.want {
				t.Errorf("VerifyChecksum() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifyChecksum_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()
	a := writeFile(t, filepath.Join(tmpDir, "a"), []byte("same bytes"), 0o644)
	b := writeFile(t, filepath.Join(tmpDir, "b"), []byte("same bytes"), 0o644)

	first, err := calculateSHA256(a)
	if err != nil {
		t.Fatalf("calculateSHA256: %v", err)
	}
	second, err := calculateSHA256(a)
	if err != nil {
		t.Fatalf("calculateSHA256: %v", err)
	}
	other, err := calculateSHA256(b)
	if err != nil {
		t.Fatalf("calculateSHA256: %v", err)
	}

	if first != second || first != other {
		t.Errorf("digests differ: %s %s %s", first, second, other)
	}
	if len(first) != 64 || first != strings.ToLower(first) {
		t.Errorf("digest %q is not 64 lowercase hex chars", first)
	}
	if !VerifyChecksum(a, first) || !VerifyChecksum(a, first) {
		t.Error("VerifyChecksum should be true on repeated calls")
	}
}

func TestCalculateSHA256_KnownValue(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "empty"), nil, 0o644)

	got, err := calculateSHA256(path)
	if err != nil {
		t.Fatalf("calculateSHA256: %v", err)
	}
	const emptySHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != emptySHA256 {
		t.Errorf("sha256(empty) = %s, want %s", got, emptySHA256)
	}
}

// newTestKey creates a signing entity and writes its armored public key to
// dir/keyring.asc.
func newTestKey(t *testing.T, dir string) (*openpgp.Entity, string) {
	t.Helper()

	entity, err := openpgp.NewEntity("sfdx test", "", "test@example.com", nil)
	if err != nil {
		t.Fatalf("NewEntity: %v", err)
	}

	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		t.Fatalf("armor.Encode: %v", err)
	}
	if err := entity.Serialize(w); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close armor: %v", err)
	}

	path := writeFile(t, filepath.Join(dir, "keyring.asc"), buf.Bytes(), 0o644)
	return entity, path
}

func signFile(t *testing.T, entity *openpgp.Entity, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var sig bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&sig, entity, bytes.NewReader(data), nil); err != nil {
		t.Fatalf("ArmoredDetachSign: %v", err)
	}
	return writeFile(t, path+".asc", sig.Bytes(), 0o644)
}

func TestVerifier_VerifyArchive(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte("release archive")
	archivePath := writeFile(t, filepath.Join(tmpDir, "sfdx.tar.xz"), content, 0o644)
	spec := &DownloadSpec{URL: "https://example.com/sfdx.tar.xz", Checksum: sha256Hex(content)}

	t.Run("checksum_only", func(t *testing.T) {
		method, err := NewVerifier("").VerifyArchive(archivePath, "", spec)
		if err != nil {
			t.Fatalf("VerifyArchive() error = %v", err)
		}
		if method != VerificationSHA256 {
			t.Errorf("method = %v, want SHA256", method)
		}
	})

	t.Run("checksum_mismatch", func(t *testing.T) {
		bad := &DownloadSpec{URL: spec.URL, Checksum: sha256Hex([]byte("tampered"))}
		_, err := NewVerifier("").VerifyArchive(archivePath, "", bad)
		if !errors.Is(err, ErrChecksumMismatch) {
			t.Errorf("expected ErrChecksumMismatch, got %v", err)
		}
	})

	t.Run("nil_spec", func(t *testing.T) {
		if _, err := NewVerifier("").VerifyArchive(archivePath, "", nil); err == nil {
			t.Error("expected error for nil spec")
		}
	})

	entity, keyringPath := newTestKey(t, tmpDir)
	sigPath := signFile(t, entity, archivePath)

	t.Run("valid_signature", func(t *testing.T) {
		v := NewVerifier(keyringPath)
		if !v.WantsSignature() {
			t.Fatal("WantsSignature() = false with keyring")
		}
		method, err := v.VerifyArchive(archivePath, sigPath, spec)
		if err != nil {
			t.Fatalf("VerifyArchive() error = %v", err)
		}
		if method != VerificationGPG {
			t.Errorf("method = %v, want GPG", method)
		}
	})

	t.Run("missing_signature", func(t *testing.T) {
		_, err := NewVerifier(keyringPath).VerifyArchive(archivePath, "", spec)
		if err == nil {
			t.Error("expected error when signature is required but absent")
		}
	})

	t.Run("wrong_signer", func(t *testing.T) {
		otherDir := t.TempDir()
		other, _ := newTestKey(t, otherDir)
		otherArchive := writeFile(t, filepath.Join(otherDir, "sfdx.tar.xz"), content, 0o644)
		otherSig := signFile(t, other, otherArchive)

		_, err := NewVerifier(keyringPath).VerifyArchive(archivePath, otherSig, spec)
		if err == nil {
			t.Error("expected error for signature from unknown key")
		}
	})

	t.Run("signature_for_other_content", func(t *testing.T) {
		otherContent := writeFile(t, filepath.Join(t.TempDir(), "other"), []byte("other"), 0o644)
		otherSig := signFile(t, entity, otherContent)

		_, err := NewVerifier(keyringPath).VerifyArchive(archivePath, otherSig, spec)
		if err == nil {
			t.Error("expected error for signature over different content")
		}
	})
}

func TestLoadKeyring(t *testing.T) {
	tmpDir := t.TempDir()
	_, keyringPath := newTestKey(t, tmpDir)

	keyring, err := loadKeyring(keyringPath)
	if err != nil {
		t.Fatalf("loadKeyring() error = %v", err)
	}
	if len(keyring) != 1 {
		t.Errorf("len(keyring) = %d, want 1", len(keyring))
	}

	if _, err := loadKeyring(filepath.Join(tmpDir, "missing.asc")); err == nil {
		t.Error("expected error for missing keyring")
	}

	garbage := writeFile(t, filepath.Join(tmpDir, "garbage.asc"), []byte("not a key"), 0o644)
	if _, err := loadKeyring(garbage); err == nil {
		t.Error("expected error for garbage keyring")
	}
}

func TestVerificationMethod_String(t *testing.T) {
	tests := []struct {
		method VerificationMethod
		want   string
	}{
		{VerificationNone, "None"},
		{VerificationSHA256, "SHA256"},
		{VerificationGPG, "SHA256+GPG"},
		{VerificationMethod(42), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.method.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.method, got, tt.want)
		}
	}
}
