package relay

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// CredentialCodec turns Credentials into a cookie value and back.
type CredentialCodec interface {
	Encode(Credentials) (string, error)
	Decode(string) (Credentials, error)
}

// Base64JSONCodec stores credentials as base64 encoded JSON. This hides them
// from casual inspection only; the cookie flags are what keep them private.
type Base64JSONCodec struct{}

var _ CredentialCodec = Base64JSONCodec{}

func (Base64JSONCodec) Encode(c Credentials) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("[relay Base64JSONCodec] marshal: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func (Base64JSONCodec) Decode(value string) (Credentials, error) {
	b, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return Credentials{}, fmt.Errorf("[relay Base64JSONCodec] base64: %w", err)
	}
	return unmarshalCredentials(b)
}

// sealingInfo binds derived keys to this use.
const sealingInfo = "oauth-relay client session cookie v1"

var errSealedTooShort = errors.New("sealed value shorter than nonce")

// SealedCodec encrypts the credential JSON with XChaCha20-Poly1305. The key
// is derived from a configured secret with HKDF-SHA256, so any secret length
// works. Tampered or foreign values fail to decode.
type SealedCodec struct {
	aead cipher.AEAD
}

var _ CredentialCodec = (*SealedCodec)(nil)

func NewSealedCodec(secret string) (*SealedCodec, error) {
	if secret == "" {
		return nil, errors.New("[relay NewSealedCodec] empty secret")
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(sealingInfo)), key); err != nil {
		return nil, fmt.Errorf("[relay NewSealedCodec] deriving key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("[relay NewSealedCodec] cipher: %w", err)
	}
	return &SealedCodec{aead: aead}, nil
}

func (s *SealedCodec) Encode(c Credentials) (string, error) {
	plaintext, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("[relay SealedCodec] marshal: %w", err)
	}
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("[relay SealedCodec] nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (s *SealedCodec) Decode(value string) (Credentials, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return Credentials{}, fmt.Errorf("[relay SealedCodec] base64: %w", err)
	}
	if len(sealed) < s.aead.NonceSize() {
		return Credentials{}, errSealedTooShort
	}
	nonce, ciphertext := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return Credentials{}, fmt.Errorf("[relay SealedCodec] open: %w", err)
	}
	return unmarshalCredentials(plaintext)
}

func unmarshalCredentials(b []byte) (Credentials, error) {
	var c Credentials
	if err := json.Unmarshal(b, &c); err != nil {
		return Credentials{}, fmt.Errorf("[relay unmarshalCredentials] %w", err)
	}
	return c, nil
}
