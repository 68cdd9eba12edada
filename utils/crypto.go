// utils/crypto.go - at-rest encryption for remote console credentials
package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
)

var ErrBadCiphertext = errors.New("value is not a valid ciphertext")

func gcmFor(key string) (cipher.AEAD, error) {
	// Keys come from config as free text; hash to a fixed 32 bytes.
	sum := sha256.Sum256([]byte(key))
	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals the plaintext under the given key and returns it
// base64-encoded with the nonce prefixed.
func Encrypt(key, plaintext string) (string, error) {
	gcm, err := gcmFor(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. It returns ErrBadCiphertext when the value does
// not decode or authenticate; callers treat that as "the stored value was
// already plaintext", which keeps rows written before key rotation usable.
func Decrypt(key, value string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", ErrBadCiphertext
	}

	gcm, err := gcmFor(key)
	if err != nil {
		return "", err
	}

	if len(raw) < gcm.NonceSize() {
		return "", ErrBadCiphertext
	}

	nonce, sealed := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrBadCiphertext
	}
	return string(plaintext), nil
}

// DecryptOrPlaintext decrypts when possible and otherwise hands back the
// stored value unchanged.
func DecryptOrPlaintext(key, value string) string {
	plain, err := Decrypt(key, value)
	if err != nil {
		return value
	}
	return plain
}
