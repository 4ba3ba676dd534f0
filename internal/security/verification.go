package security

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strconv"
)

const (
	verificationCodeMin  = 100000
	verificationCodeSpan = 900000
	verificationTokenLen = 32
)

// GenerateVerificationCode returns a six digit code uniformly sampled from
// 100000-999999 using crypto/rand, so codes never carry a leading zero.
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(verificationCodeSpan))
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(n.Int64()+verificationCodeMin, 10), nil
}

// GenerateVerificationToken returns 32 bytes of cryptographically strong
// randomness, hex encoded, for one-click verification links.
func GenerateVerificationToken() (string, error) {
	buf := make([]byte, verificationTokenLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}
