// Package encryption seals PII fields before they cross the persistence
// boundary. Output is base64(nonce || ciphertext || tag) using AES-256-GCM
// with a fresh random nonce per call.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

const keySize = 32

// Cipher performs authenticated field encryption with a key derived once
// from the configured secret.
type Cipher struct {
	aead cipher.AEAD
}

// New derives the effective key from secret and builds the AEAD. The secret
// is normalized to 32 bytes: truncated if longer, padded with ASCII '0'
// bytes if shorter, so the configured secret's raw length is never the
// effective key length.
func New(secret string) (*Cipher, error) {
	block, err := aes.NewCipher(normalizeKey(secret))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize field cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize field cipher: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

func normalizeKey(raw string) []byte {
	b := []byte(raw)
	if len(b) >= keySize {
		return b[:keySize]
	}
	key := make([]byte, keySize)
	copy(key, b)
	for i := len(b); i < keySize; i++ {
		key[i] = '0'
	}
	return key
}

// Seal encrypts a field value. A nil input stays nil so optional fields
// pass through unchanged.
func (c *Cipher) Seal(plaintext *string) *string {
	if plaintext == nil {
		return nil
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		// No entropy, no ciphertext. A nonce must never be reused.
		return nil
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(*plaintext), nil)
	token := base64.StdEncoding.EncodeToString(sealed)
	return &token
}

// Open decrypts a sealed field. It fails closed: malformed base64,
// truncated input or an authentication failure all yield nil, which the
// caller must treat as "unavailable". Absent fields (nil) also yield nil;
// the two cases are indistinguishable here.
func (c *Cipher) Open(token *string) *string {
	if token == nil {
		return nil
	}
	raw, err := base64.StdEncoding.DecodeString(*token)
	if err != nil {
		return nil
	}
	if len(raw) < c.aead.NonceSize() {
		return nil
	}
	nonce, ciphertext := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil
	}
	out := string(plaintext)
	return &out
}
