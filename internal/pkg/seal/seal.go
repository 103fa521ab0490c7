package seal

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var ErrInvalidToken = errors.New("invalid sealed token")

const keyInfo = "esas-presence-token-v1"

// Sealer produces opaque, authenticated presence token strings. The plaintext
// is the issue timestamp plus a random nonce, so two tokens issued in the same
// instant still differ.
type Sealer struct {
	aead cipher.AEAD
}

// New derives an XChaCha20-Poly1305 key from secret.
func New(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, errors.New("seal: secret is required")
	}

	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("seal: derive key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("seal: init cipher: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal returns a URL-safe token carrying issuedAt.
func (s *Sealer) Seal(issuedAt time.Time) (string, error) {
	plaintext := issuedAt.UTC().Format(time.RFC3339Nano) + "|" + uuid.NewString()

	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("seal: read nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open authenticates token and returns the issue time it carries.
func (s *Sealer) Open(token string) (time.Time, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) < s.aead.NonceSize()+s.aead.Overhead() {
		return time.Time{}, ErrInvalidToken
	}

	nonce, ciphertext := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return time.Time{}, ErrInvalidToken
	}

	issued, _, found := strings.Cut(string(plaintext), "|")
	if !found {
		return time.Time{}, ErrInvalidToken
	}
	t, err := time.Parse(time.RFC3339Nano, issued)
	if err != nil {
		return time.Time{}, ErrInvalidToken
	}
	return t, nil
}
