package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCredentialFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "credentials.json")

	f, err := NewCredentialFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if f.Token() != "" {
		t.Fatalf("fresh store should be empty, got %q", f.Token())
	}

	if err := f.Set("tok-abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if f.Token() != "tok-abc" {
		t.Fatalf("unexpected token %q", f.Token())
	}

	// survives a reopen
	reopened, err := NewCredentialFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Token() != "tok-abc" {
		t.Fatalf("expected persisted token, got %q", reopened.Token())
	}

	if err := reopened.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err = %v", err)
	}

	cleared, err := NewCredentialFile(path)
	if err != nil {
		t.Fatalf("reopen after clear: %v", err)
	}
	if cleared.Token() != "" {
		t.Fatalf("expected empty token after clear, got %q", cleared.Token())
	}
}

func TestCredentialFileRejectsEmptyPath(t *testing.T) {
	if _, err := NewCredentialFile("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestCredentialFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	f, err := NewCredentialFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := f.Set("secret"); err != nil {
		t.Fatalf("set: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 permissions, got %o", perm)
	}
}
