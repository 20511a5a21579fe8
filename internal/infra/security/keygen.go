package security

import (
	"crypto/rand"
	"fmt"
)

const alphanumericAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateAlphanumeric returns a random string of exactly length characters
// drawn from the 62-symbol alphanumeric alphabet, using crypto/rand.
//
// Bytes are accepted only below the largest multiple of 62 so every symbol is
// equally likely.
func GenerateAlphanumeric(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	// 62*4 = 248; bytes in [248, 255] would skew the distribution.
	const maxAccepted = 248

	out := make([]byte, 0, length)
	buf := make([]byte, length)

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate secret: %w", err)
		}
		for _, b := range buf {
			if b >= maxAccepted {
				continue
			}
			out = append(out, alphanumericAlphabet[int(b)%len(alphanumericAlphabet)])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}
