package common

import (
	"crypto/rand"
)

// TokenCharset is the alphabet used for generated secrets: 62 symbols,
// so a 32-char string carries about 190 bits of entropy. Collisions are
// treated as negligible and not checked against the store.
const TokenCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz1234567890"

// TokenLength is the fixed length of generated local and session secrets.
const TokenLength = 32

// MakeRandString generates a random string of the given length drawn from
// charset using crypto/rand. Bytes outside the unbiased range are rejected
// and redrawn, so every symbol is equally likely.
func MakeRandString(length int, charset string) (string, error) {
	out := make([]byte, 0, length)
	// Largest multiple of len(charset) that fits in a byte.
	max := byte(256 - 256%len(charset))

	buf := make([]byte, length)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= max {
				continue
			}
			out = append(out, charset[int(b)%len(charset)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

// MakeTokenSecret generates a fresh secret suitable for both local and
// session tokens.
func MakeTokenSecret() (string, error) {
	return MakeRandString(TokenLength, TokenCharset)
}

// WipeByteArray overwrites the contents of the provided byte slice with
// zeros. Used to drop password bytes from memory once they are no longer
// needed.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
