// Package file implements the default token slot: a small JSON document in
// the user's config directory, optionally sealed with a passphrase.
package file

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"

	"github.com/trajectory-hub/student-dashboard/internal/domain/session"
	"github.com/trajectory-hub/student-dashboard/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS & CONSTANTS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrDecrypt is returned when a sealed file cannot be opened with the
	// configured passphrase.
	ErrDecrypt = errors.New("file: cannot decrypt session file")

	// ErrPassphraseRequired is returned when a sealed file is read without
	// a passphrase.
	ErrPassphraseRequired = errors.New("file: session file is encrypted, passphrase required")

	// ErrCorrupt is returned when the session file is not a JSON object.
	ErrCorrupt = errors.New("file: session file is corrupt")
)

const (
	fileMode = 0o600
	dirMode  = 0o700

	saltSize  = 16
	nonceSize = 24
	keySize   = 32

	// scrypt parameters recommended for interactive logins.
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

var sealedMagic = []byte("DSB1")

// DefaultPath returns <user config dir>/student-dashboard/session.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("file: resolve config dir: %w", err)
	}
	return filepath.Join(dir, "student-dashboard", "session.json"), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TOKEN STORE
// ══════════════════════════════════════════════════════════════════════════════

// TokenStore keeps key/value pairs in a single file. With a non-empty
// passphrase the file is sealed with NaCl secretbox under an scrypt key.
type TokenStore struct {
	path       string
	passphrase []byte
	mu         sync.Mutex
}

var _ session.TokenStore = (*TokenStore)(nil)

// NewTokenStore creates a TokenStore writing to path. An empty passphrase
// stores the file as plain JSON.
func NewTokenStore(path, passphrase string) *TokenStore {
	return &TokenStore{path: path, passphrase: []byte(passphrase)}
}

// Load implements session.TokenStore.
func (s *TokenStore) Load(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", shared.ErrNotFound
	}
	return v, nil
}

// Save implements session.TokenStore. A file that cannot be decoded with
// the current passphrase is replaced.
func (s *TokenStore) Save(_ context.Context, key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if isUnreadable(err) {
		values, err = make(map[string]string), nil
	}
	if err != nil {
		return err
	}
	values[key] = token
	return s.write(values)
}

// Delete implements session.TokenStore. A file that cannot be decoded with
// the current passphrase is removed, so a stale session never blocks a
// new login.
func (s *TokenStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if isUnreadable(err) {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("file: remove %s: %w", s.path, err)
		}
		return nil
	}
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.write(values)
}

// isUnreadable reports whether err means the file exists but its contents
// are unusable, as opposed to an I/O failure.
func isUnreadable(err error) bool {
	return errors.Is(err, ErrDecrypt) ||
		errors.Is(err, ErrPassphraseRequired) ||
		errors.Is(err, ErrCorrupt)
}

func (s *TokenStore) read() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("file: read %s: %w", s.path, err)
	}

	if bytes.HasPrefix(raw, sealedMagic) {
		if len(s.passphrase) == 0 {
			return nil, ErrPassphraseRequired
		}
		if raw, err = open(raw[len(sealedMagic):], s.passphrase); err != nil {
			return nil, err
		}
	}

	values := make(map[string]string)
	if len(bytes.TrimSpace(raw)) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	return values, nil
}

func (s *TokenStore) write(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("file: encode: %w", err)
	}

	if len(s.passphrase) > 0 {
		sealed, err := seal(data, s.passphrase)
		if err != nil {
			return err
		}
		data = append(append([]byte{}, sealedMagic...), sealed...)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("file: create %s: %w", dir, err)
	}

	// Write to a sibling temp file and rename so a crash never leaves a
	// truncated session file behind.
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("file: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("file: chmod temp: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("file: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file: close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("file: replace %s: %w", s.path, err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SEALING
// ══════════════════════════════════════════════════════════════════════════════

// seal returns salt || nonce || secretbox(plaintext).
func seal(plaintext, passphrase []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("file: generate salt: %w", err)
	}
	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("file: generate nonce: %w", err)
	}

	out := make([]byte, 0, saltSize+nonceSize+len(plaintext)+secretbox.Overhead)
	out = append(out, salt...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plaintext, &nonce, key), nil
}

func open(sealed, passphrase []byte) ([]byte, error) {
	if len(sealed) < saltSize+nonceSize+secretbox.Overhead {
		return nil, ErrDecrypt
	}
	salt := sealed[:saltSize]
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[saltSize:saltSize+nonceSize])

	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}
	plaintext, ok := secretbox.Open(nil, sealed[saltSize+nonceSize:], &nonce, key)
	if !ok {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

func deriveKey(passphrase, salt []byte) (*[keySize]byte, error) {
	derived, err := scrypt.Key(passphrase, salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("file: derive key: %w", err)
	}
	var key [keySize]byte
	copy(key[:], derived)
	return &key, nil
}
