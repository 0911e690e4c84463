package sshserver

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureHostKeyGeneratesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ssh", "host_ed25519")
	first, err := EnsureHostKey(path)
	if err != nil {
		t.Fatalf("generate host key: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat host key: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 host key, got %o", perm)
	}
	second, err := EnsureHostKey(path)
	if err != nil {
		t.Fatalf("reload host key: %v", err)
	}
	if Fingerprint(first) != Fingerprint(second) {
		t.Fatalf("expected stable fingerprint, got %s then %s", Fingerprint(first), Fingerprint(second))
	}
	if first.PublicKey().Type() != "ssh-ed25519" {
		t.Fatalf("expected ed25519 key, got %s", first.PublicKey().Type())
	}
}

func TestEnsureHostKeyRequiresPath(t *testing.T) {
	if _, err := EnsureHostKey("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestEnsureHostKeyRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "host_ed25519")
	if err := os.WriteFile(path, []byte("not a key"), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	if _, err := EnsureHostKey(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestFingerprintNil(t *testing.T) {
	if Fingerprint(nil) != "" {
		t.Fatalf("expected empty fingerprint for nil signer")
	}
}

func TestEnsureHostKeyRejectsOpenPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "host_ed25519")
	if _, err := EnsureHostKey(path); err != nil {
		t.Fatalf("generate host key: %v", err)
	}
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	if _, err := EnsureHostKey(path); err == nil {
		t.Fatalf("expected error for a host key readable by others")
	}
}
