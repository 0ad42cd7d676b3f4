package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/keepnote/internal/apperr"
)

func TestStaticKey(t *testing.T) {
	k := NewStaticKey("secret")
	key, err := k.Key()
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if string(key) != "secret" {
		t.Errorf("key = %q", key)
	}
}

func TestEmptyStaticKey(t *testing.T) {
	k := NewStaticKey("")
	if _, err := k.Key(); !errors.Is(err, apperr.ErrConfiguration) {
		t.Errorf("err = %v, want ErrConfiguration", err)
	}
}

func TestFileKeyReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signing.key")
	if err := os.WriteFile(path, []byte("first-key\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	k, err := NewFileKey(path)
	if err != nil {
		t.Fatalf("NewFileKey: %v", err)
	}
	key, err := k.Key()
	if err != nil {
		t.Fatal(err)
	}
	if string(key) != "first-key" {
		t.Errorf("key = %q, want first-key (trimmed)", key)
	}

	// Rotate on disk and reload.
	if err := os.WriteFile(path, []byte("second-key"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := k.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	key, _ = k.Key()
	if string(key) != "second-key" {
		t.Errorf("key after reload = %q, want second-key", key)
	}
}

func TestFileKeyMissing(t *testing.T) {
	_, err := NewFileKey(filepath.Join(t.TempDir(), "absent.key"))
	if !errors.Is(err, apperr.ErrConfiguration) {
		t.Errorf("err = %v, want ErrConfiguration", err)
	}
}

func TestFileKeyEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.key")
	if err := os.WriteFile(path, []byte("  \n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileKey(path); !errors.Is(err, apperr.ErrConfiguration) {
		t.Errorf("err = %v, want ErrConfiguration", err)
	}
}
