package intercept

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// ChaCha encrypts payloads with XChaCha20-Poly1305. A per-record subkey is
// derived from the master key via HKDF-SHA256 with the record key as info,
// so records never share an encryption key. The record key is also bound
// as associated data, which makes sealed bytes useless under any other key.
//
// Sealed layout: nonce(24) | ciphertext+tag.
type ChaCha struct {
	master []byte
}

var _ Interceptor = (*ChaCha)(nil)

// NewChaCha constructs the interceptor from a 32-byte master key.
func NewChaCha(master []byte) (*ChaCha, error) {
	if len(master) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("chacha: master key must be %d bytes, got %d",
			chacha20poly1305.KeySize, len(master))
	}
	return &ChaCha{master: append([]byte(nil), master...)}, nil
}

func (c *ChaCha) Seal(key string, plain []byte) ([]byte, error) {
	aead, err := c.aead(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plain, []byte(key)), nil
}

func (c *ChaCha) Open(key string, sealed []byte) ([]byte, error) {
	if len(sealed) < chacha20poly1305.NonceSizeX {
		return nil, errors.New("chacha: sealed payload too short")
	}
	aead, err := c.aead(key)
	if err != nil {
		return nil, err
	}
	nonce, box := sealed[:chacha20poly1305.NonceSizeX], sealed[chacha20poly1305.NonceSizeX:]
	return aead.Open(nil, nonce, box, []byte(key))
}

func (c *ChaCha) aead(key string) (cipher.AEAD, error) {
	sub := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, c.master, nil, []byte("krate:"+key))
	if _, err := io.ReadFull(kdf, sub); err != nil {
		return nil, err
	}
	return chacha20poly1305.NewX(sub)
}
