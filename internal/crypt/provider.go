// Package crypt implements the pluggable symmetric encryption primitive and
// the typed envelopes built on top of it. A Provider turns arbitrary key
// material (password bytes, token secrets) into authenticated ciphertext;
// envelope types bind a provider and key to a serialize/deserialize pair for
// a concrete Go type.
//
// Two failure classes are kept apart on purpose: ErrDecrypt means the cipher
// rejected the input (wrong key, corrupted ciphertext), ErrDecode means the
// cipher succeeded but the recovered bytes do not form a valid value of the
// requested type. Callers map them to user-facing errors differently.
package crypt

import "errors"

var (
	// ErrEncrypt reports a failure while producing ciphertext.
	ErrEncrypt = errors.New("encryption failed")

	// ErrDecrypt reports a cipher-level failure: wrong key or corrupted
	// ciphertext. Never a panic.
	ErrDecrypt = errors.New("decryption failed")

	// ErrDecode reports that decryption succeeded but the plaintext does
	// not decode into the requested type (bad UTF-8, wrong byte width).
	ErrDecode = errors.New("plaintext decoding failed")
)

// Provider is the symmetric encrypt/decrypt primitive. Implementations must
// accept key material of any length and must fail cleanly (never panic) on
// wrong keys or corrupted input.
type Provider interface {
	Encrypt(plaintext, key []byte) ([]byte, error)
	Decrypt(ciphertext, key []byte) ([]byte, error)
}

// Provider names accepted by New. Exactly one provider is active per
// process, chosen by configuration.
const (
	ProviderAESGCM = "aesgcm"
	ProviderFake   = "fake"
)

// New returns the provider registered under name.
func New(name string) (Provider, error) {
	switch name {
	case ProviderAESGCM:
		return &AESGCMProvider{}, nil
	case ProviderFake:
		return &FakeProvider{}, nil
	default:
		return nil, errors.New("unknown crypt provider: " + name)
	}
}
