package storage

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	secretsFileName = "secrets.json"
	saltSize        = 16

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// ErrEmptyPassphrase is returned when an EncryptedFileStore is opened
// without a passphrase.
var ErrEmptyPassphrase = errors.New("storage: empty passphrase")

type secretsDocument struct {
	Salt    string            `json:"salt"`
	Items   map[string]string `json:"items"`
	Version string            `json:"version"`
}

// EncryptedFileStore is a SecretStore that seals every value with
// XChaCha20-Poly1305 under a key derived from a passphrase with Argon2id.
// Values are bound to their key name, so swapping ciphertexts between keys
// fails to decrypt.
type EncryptedFileStore struct {
	mu    sync.Mutex
	path  string
	salt  []byte
	aead  cipher.AEAD
	items map[string]string
}

var _ SecretStore = (*EncryptedFileStore)(nil)

// OpenEncryptedFileStore opens (or creates) dir/secrets.json. The per-file
// salt is generated on first use.
func OpenEncryptedFileStore(dir, passphrase string) (*EncryptedFileStore, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create secrets directory: %w", err)
	}

	s := &EncryptedFileStore{
		path:  filepath.Join(dir, secretsFileName),
		items: make(map[string]string),
	}

	data, err := os.ReadFile(s.path)
	switch {
	case os.IsNotExist(err):
		s.salt = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, s.salt); err != nil {
			return nil, fmt.Errorf("failed to generate salt: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read secrets file: %w", err)
	default:
		var doc secretsDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse secrets file: %w", err)
		}
		salt, err := base64.RawStdEncoding.DecodeString(doc.Salt)
		if err != nil || len(salt) != saltSize {
			return nil, fmt.Errorf("invalid salt in secrets file")
		}
		s.salt = salt
		if doc.Items != nil {
			s.items = doc.Items
		}
	}

	key := argon2.IDKey([]byte(passphrase), s.salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	s.aead = aead
	return s, nil
}

// GetSecret decrypts the value stored under key.
func (s *EncryptedFileStore) GetSecret(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	sealed, ok := s.items[key]
	s.mu.Unlock()
	if !ok {
		return "", ErrNotFound
	}
	return s.open(key, sealed)
}

// SetSecret encrypts value and persists it.
func (s *EncryptedFileStore) SetSecret(_ context.Context, key, value string) error {
	sealed, err := s.seal(key, value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.items[key]
	s.items[key] = sealed
	if err := s.save(); err != nil {
		if had {
			s.items[key] = prev
		} else {
			delete(s.items, key)
		}
		return err
	}
	return nil
}

// DeleteSecret removes key. Deleting a missing key is not an error.
func (s *EncryptedFileStore) DeleteSecret(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.items[key]
	if !had {
		return nil
	}
	delete(s.items, key)
	if err := s.save(); err != nil {
		s.items[key] = prev
		return err
	}
	return nil
}

func (s *EncryptedFileStore) seal(key, value string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(value)+s.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to read nonce: %w", err)
	}
	// Payload format is nonce || ciphertext.
	payload := s.aead.Seal(nonce, nonce, []byte(value), []byte(key))
	return base64.RawStdEncoding.EncodeToString(payload), nil
}

func (s *EncryptedFileStore) open(key, sealed string) (string, error) {
	payload, err := base64.RawStdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("failed to decode sealed value: %w", err)
	}
	nonceSize := s.aead.NonceSize()
	if len(payload) < nonceSize {
		return "", fmt.Errorf("sealed value is too short")
	}
	plaintext, err := s.aead.Open(nil, payload[:nonceSize], payload[nonceSize:], []byte(key))
	if err != nil {
		return "", fmt.Errorf("failed to decrypt sealed value: %w", err)
	}
	return string(plaintext), nil
}

func (s *EncryptedFileStore) save() error {
	doc := secretsDocument{
		Salt:    base64.RawStdEncoding.EncodeToString(s.salt),
		Items:   s.items,
		Version: storeVersion,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal secrets file: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write secrets file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace secrets file: %w", err)
	}
	return nil
}
