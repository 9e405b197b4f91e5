// Package cryptox seals documents at rest with AES-256-GCM under a key
// derived from a passphrase with argon2id.
//
// A sealed document is laid out as
//
//	magic(8) | salt(16) | nonce(12) | ciphertext
//
// so it can be opened with nothing but the passphrase.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dailyreflect/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	saltSize = 16
	keySize  = 32
)

var magic = []byte("DRSEAL1\x00")

var (
	ErrNotSealed       = errors.New("data is not sealed")
	ErrWrongPassphrase = errors.New("wrong passphrase or corrupted data")
)

// DeriveKey stretches passphrase into an AES-256 key.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, keySize)
}

// IsSealed reports whether b starts with the sealed header.
func IsSealed(b []byte) bool {
	return bytes.HasPrefix(b, magic)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext with a fresh salt and nonce.
func Seal(plaintext, passphrase []byte) ([]byte, error) {
	salt := common.GenerateRandByteArray(saltSize)
	key := DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, fmt.Errorf("cipher: %w", err)
	}
	nonce := common.GenerateRandByteArray(aead.NonceSize())

	out := make([]byte, 0, len(magic)+saltSize+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, magic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	// the header is authenticated too
	return aead.Seal(out, nonce, plaintext, out[:len(magic)+saltSize]), nil
}

// Open reverses Seal.
func Open(sealed, passphrase []byte) ([]byte, error) {
	if !IsSealed(sealed) {
		return nil, ErrNotSealed
	}
	if len(sealed) < len(magic)+saltSize {
		return nil, ErrWrongPassphrase
	}
	header := sealed[:len(magic)+saltSize]
	salt := header[len(magic):]

	key := DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	aead, err := newGCM(key)
	if err != nil {
		return nil, fmt.Errorf("cipher: %w", err)
	}
	rest := sealed[len(header):]
	if len(rest) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrWrongPassphrase
	}
	nonce, ciphertext := rest[:aead.NonceSize()], rest[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, ciphertext, header)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return plaintext, nil
}
