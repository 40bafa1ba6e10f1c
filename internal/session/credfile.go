package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// CredentialFile is the durable half of the credential store: a small JSON
// file holding the bearer token so the session survives process restarts.
// It doubles as the api.TokenSource for outgoing requests.
type CredentialFile struct {
	path string

	mu    sync.RWMutex
	token string
}

type credentialRecord struct {
	Token string `json:"token"`
}

// NewCredentialFile opens (or lazily creates) the store at path and loads
// any previously persisted credential.
func NewCredentialFile(path string) (*CredentialFile, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("credential file path is required")
	}
	f := &CredentialFile{path: path}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

// Token returns the persisted bearer credential, empty when anonymous.
func (f *CredentialFile) Token() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.token
}

// Set persists a new credential.
func (f *CredentialFile) Set(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
	return f.persistLocked()
}

// Clear removes the credential from memory and disk.
func (f *CredentialFile) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}

func (f *CredentialFile) load() error {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read credential file: %w", err)
	}
	if len(b) == 0 {
		return nil
	}
	var rec credentialRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return fmt.Errorf("decode credential file: %w", err)
	}
	f.token = rec.Token
	return nil
}

func (f *CredentialFile) persistLocked() error {
	b, err := json.Marshal(credentialRecord{Token: f.token})
	if err != nil {
		return fmt.Errorf("encode credential file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("mkdir credential dir: %w", err)
	}
	if err := os.WriteFile(f.path, b, 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	return nil
}
