// Package crypto encrypts OAuth tokens at rest with AES-GCM. Tokens are
// plaintext only in memory; the store persists ciphertext plus nonce.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

// Encryption key (in production, use a secure key management system)
var encryptionKey = []byte("32-byte-key-for-aes-encryption!!")

// SetKey replaces the process-wide encryption key. The key must be 16, 24 or
// 32 bytes long.
func SetKey(key []byte) error {
	switch len(key) {
	case 16, 24, 32:
		encryptionKey = key
		return nil
	}
	return errors.New("encryption key must be 16, 24 or 32 bytes")
}

// Encrypt encrypts data using AES-GCM and returns the ciphertext and nonce
func Encrypt(plaintext string) ([]byte, []byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, nil, err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, err
	}

	ciphertext := aesgcm.Seal(nil, nonce, []byte(plaintext), nil)
	return ciphertext, nonce, nil
}

// Decrypt decrypts AES-GCM encrypted data
func Decrypt(ciphertext, nonce []byte) (string, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return "", err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}
