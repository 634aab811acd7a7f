// Package cryptox seals byte payloads with AES-GCM under a key derived from
// a passphrase with Argon2id.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/argon2"
)

const (
	sealVersion = 1
	saltSize    = 16
	keySize     = 32
)

var ErrPassphrase = errors.New("wrong passphrase or corrupted data")

// Sealed is the serialisable envelope produced by SealWithPassphrase.
type Sealed struct {
	Version    int    `json:"version"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, keySize)
}

// Seal encrypts plaintext with key using a fresh random nonce.
// The key must be 16, 24, or 32 bytes.
func Seal(plaintext, key []byte) (ciphertext, nonce []byte, err error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}

	return aesgcm.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// Open reverses Seal.
func Open(ciphertext, nonce, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aesgcm.NonceSize() {
		return nil, ErrPassphrase
	}
	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrPassphrase
	}
	return plaintext, nil
}

func SealWithPassphrase(plaintext, passphrase []byte) (*Sealed, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}

	ciphertext, nonce, err := Seal(plaintext, DeriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	return &Sealed{Version: sealVersion, Salt: salt, Nonce: nonce, Ciphertext: ciphertext}, nil
}

func OpenWithPassphrase(s *Sealed, passphrase []byte) ([]byte, error) {
	if s == nil || s.Version != sealVersion {
		return nil, ErrPassphrase
	}
	return Open(s.Ciphertext, s.Nonce, DeriveKey(passphrase, s.Salt))
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
