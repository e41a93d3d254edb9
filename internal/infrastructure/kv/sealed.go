package kv

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Sealed encrypts values with XChaCha20-Poly1305 before handing them to the
// wrapped backend. The namespace and key are bound as associated data, so a
// value copied to another key fails to open.
type Sealed struct {
	inner Backend
	aead  cipher.AEAD
}

func NewSealed(inner Backend, key []byte) (*Sealed, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("kv.NewSealed: %w", err)
	}
	return &Sealed{inner: inner, aead: aead}, nil
}

// ParseSealKey decodes a hex-encoded 32 byte key.
func ParseSealKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("seal key: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("seal key: want %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return key, nil
}

func (s *Sealed) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	const op = "Sealed.Get"

	enc, ok, err := s.inner.Get(ctx, namespace, key)
	if err != nil || !ok {
		return "", ok, err
	}

	raw, err := base64.RawStdEncoding.DecodeString(enc)
	if err != nil || len(raw) < s.aead.NonceSize() {
		return "", false, fmt.Errorf("%s: %w", op, ErrTampered)
	}
	nonce, ciphertext := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]

	plain, err := s.aead.Open(nil, nonce, ciphertext, associatedData(namespace, key))
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, ErrTampered)
	}
	return string(plain), true, nil
}

func (s *Sealed) Set(ctx context.Context, namespace, key, value string) error {
	const op = "Sealed.Set"

	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(value)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(value), associatedData(namespace, key))

	return s.inner.Set(ctx, namespace, key, base64.RawStdEncoding.EncodeToString(sealed))
}

func (s *Sealed) Delete(ctx context.Context, namespace, key string) error {
	return s.inner.Delete(ctx, namespace, key)
}

// Purge forwards to the inner backend when it expires values by purging.
func (s *Sealed) Purge(ctx context.Context) (int64, error) {
	if p, ok := s.inner.(Purger); ok {
		return p.Purge(ctx)
	}
	return 0, nil
}

func (s *Sealed) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

func associatedData(namespace, key string) []byte {
	return []byte(namespace + "\x00" + key)
}
