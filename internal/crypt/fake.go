package crypt

import (
	"bytes"
	"crypto/sha256"
	"fmt"
)

// FakeProvider is a deterministic provider kept behind the same interface
// for tests: same plaintext and key always yield the same ciphertext, and a
// wrong key is still detected. It XORs the plaintext with a SHA-256-derived
// keystream and prepends a key fingerprint that Decrypt checks.
//
// It offers no real confidentiality and must never be selected outside
// tests and local experiments.
type FakeProvider struct{}

const fakeTagSize = 8

func fakeKeyTag(key []byte) []byte {
	h := sha256.Sum256(append([]byte("keywarden-fake-tag:"), key...))
	return h[:fakeTagSize]
}

func fakeXOR(data, key []byte) []byte {
	out := make([]byte, len(data))
	stream := sha256.Sum256(key)
	for i := range data {
		if i%len(stream) == 0 && i > 0 {
			stream = sha256.Sum256(stream[:])
		}
		out[i] = data[i] ^ stream[i%len(stream)]
	}
	return out
}

func (p *FakeProvider) Encrypt(plaintext, key []byte) ([]byte, error) {
	return append(fakeKeyTag(key), fakeXOR(plaintext, key)...), nil
}

func (p *FakeProvider) Decrypt(ciphertext, key []byte) ([]byte, error) {
	if len(ciphertext) < fakeTagSize {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}
	if !bytes.Equal(ciphertext[:fakeTagSize], fakeKeyTag(key)) {
		return nil, fmt.Errorf("%w: key mismatch", ErrDecrypt)
	}
	return fakeXOR(ciphertext[fakeTagSize:], key), nil
}
