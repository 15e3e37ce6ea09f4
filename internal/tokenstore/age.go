package tokenstore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"

	"filippo.io/age"

	"dms-go/internal/dms"
)

// AgeStore keeps the token in a file encrypted with an age scrypt passphrase.
// The passphrase is asked for at most once, and only when the file is first
// read or written. scrypt decryption is slow, so the decrypted token is
// cached.
type AgeStore struct {
	path       string
	passphrase func() (string, error)

	mu     sync.Mutex
	pass   string
	loaded bool
	token  string
}

var _ dms.TokenStore = (*AgeStore)(nil)

// NewAgeStore creates a store at path. passphrase is called lazily.
func NewAgeStore(path string, passphrase func() (string, error)) *AgeStore {
	return &AgeStore{path: path, passphrase: passphrase}
}

func (s *AgeStore) secret() (string, error) {
	if s.pass != "" {
		return s.pass, nil
	}
	if s.passphrase == nil {
		return "", errors.New("no passphrase source configured")
	}
	p, err := s.passphrase()
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	if p == "" {
		return "", errors.New("passphrase must not be empty")
	}
	s.pass = p
	return p, nil
}

func (s *AgeStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.token, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.loaded = true
			s.token = ""
			return "", nil
		}
		return "", fmt.Errorf("reading token file: %w", err)
	}

	pass, err := s.secret()
	if err != nil {
		return "", err
	}
	identity, err := age.NewScryptIdentity(pass)
	if err != nil {
		return "", fmt.Errorf("creating scrypt identity: %w", err)
	}
	r, err := age.Decrypt(bytes.NewReader(data), identity)
	if err != nil {
		return "", fmt.Errorf("decrypting token file: %w", err)
	}
	plain, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading decrypted token: %w", err)
	}

	s.token = strings.TrimSpace(string(plain))
	s.loaded = true
	return s.token, nil
}

func (s *AgeStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pass, err := s.secret()
	if err != nil {
		return err
	}
	recipient, err := age.NewScryptRecipient(pass)
	if err != nil {
		return fmt.Errorf("creating scrypt recipient: %w", err)
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := io.WriteString(w, token); err != nil {
		return fmt.Errorf("encrypting token: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}

	if err := writeFileAtomic(s.path, buf.Bytes()); err != nil {
		return err
	}
	s.token = token
	s.loaded = true
	return nil
}

func (s *AgeStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	s.token = ""
	s.loaded = true
	return nil
}
