// Package security provides the one-way password hashing primitive used by
// the credential store. Hashes are argon2id in encoded form; the work factor
// is carried inside the encoded hash, so verification survives future
// parameter changes.
package security

import (
	"github.com/matthewhartstonge/argon2"
)

var hashConfig = argon2.DefaultConfig()

// HashPassword hashes a plaintext password into an encoded argon2id string.
func HashPassword(password string) (string, error) {
	encoded, err := hashConfig.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

// VerifyPassword reports whether the plaintext password matches the encoded
// hash. An error is returned only for malformed hashes, never for a simple
// mismatch.
func VerifyPassword(password, encodedHash string) (bool, error) {
	return argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
}
