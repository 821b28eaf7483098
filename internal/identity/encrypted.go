package identity

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Encrypted seals values with AES-256-GCM before handing them to the
// wrapped storage. The stored form is base64(nonce || ciphertext).
type Encrypted struct {
	next Storage
	gcm  cipher.AEAD
}

// NewEncrypted wraps next. key must be 32 bytes.
func NewEncrypted(next Storage, key []byte) (*Encrypted, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return &Encrypted{next: next, gcm: gcm}, nil
}

// ParseKey accepts a 32-byte key as 64 hex characters or standard base64.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s) == 64 {
		if key, err := hex.DecodeString(s); err == nil {
			return key, nil
		}
	}
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

func (e *Encrypted) Get(ctx context.Context, key string) (string, error) {
	sealed, err := e.next.Get(ctx, key)
	if err != nil {
		return "", err
	}
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("decode sealed value: %w", err)
	}
	if len(raw) < e.gcm.NonceSize() {
		return "", errors.New("sealed value too short")
	}
	nonce, ciphertext := raw[:e.gcm.NonceSize()], raw[e.gcm.NonceSize():]
	plain, err := e.gcm.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return "", fmt.Errorf("open sealed value: %w", err)
	}
	return string(plain), nil
}

func (e *Encrypted) Set(ctx context.Context, key, value string) error {
	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}
	sealed := e.gcm.Seal(nonce, nonce, []byte(value), []byte(key))
	return e.next.Set(ctx, key, base64.StdEncoding.EncodeToString(sealed))
}
