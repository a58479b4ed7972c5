// Package secret encrypts the audit DSN credential at rest in the
// per-user config file, grounded on Vm.DumpStore
// (source/vm/descriptors.go): a pbkdf2-derived key wrapping an AES
// block cipher. This package upgrades DumpStore's CBC mode to GCM so
// the ciphertext is also authenticated -- DumpStore had no online
// attacker model (it produces an offline dump a human copies around),
// but a config file read back into a running process should reject
// tampering rather than silently decrypt garbage.
package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLen  = 32
	keyLen   = 32
	iterations = 65536
)

// Seal encrypts plaintext under a key derived from passphrase, returning
// a self-contained, base64-encoded blob (salt, nonce and ciphertext
// concatenated) suitable for storing as one config value.
func Seal(passphrase, plaintext string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("secret: generating salt: %w", err)
	}
	key := pbkdf2.Key([]byte(passphrase), salt, iterations, keyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("secret: building cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("secret: building gcm mode: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("secret: generating nonce: %w", err)
	}
	ciphertext := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	blob := append(append(salt, nonce...), ciphertext...)
	return base64.StdEncoding.EncodeToString(blob), nil
}

// Open reverses Seal, returning an error if the passphrase is wrong or
// the blob was tampered with.
func Open(passphrase, encoded string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("secret: decoding blob: %w", err)
	}
	if len(blob) < saltLen {
		return "", errors.New("secret: blob shorter than a salt")
	}
	salt, rest := blob[:saltLen], blob[saltLen:]
	key := pbkdf2.Key([]byte(passphrase), salt, iterations, keyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("secret: building cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("secret: building gcm mode: %w", err)
	}
	if len(rest) < gcm.NonceSize() {
		return "", errors.New("secret: blob shorter than a nonce")
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("secret: wrong passphrase or corrupted config: %w", err)
	}
	return string(plaintext), nil
}
