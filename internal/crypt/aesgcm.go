package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
)

const nonceSize = 12

// AESGCMProvider encrypts with AES-256-GCM. Key material of arbitrary
// length (passwords, token secrets) is mapped to a 32-byte AES key via
// SHA-256. The random nonce is prepended to the ciphertext.
type AESGCMProvider struct{}

func (p *AESGCMProvider) aead(key []byte) (cipher.AEAD, error) {
	k := sha256.Sum256(key)
	block, err := aes.NewCipher(k[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (p *AESGCMProvider) Encrypt(plaintext, key []byte) ([]byte, error) {
	aead, err := p.aead(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncrypt, err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncrypt, err)
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (p *AESGCMProvider) Decrypt(ciphertext, key []byte) ([]byte, error) {
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}

	aead, err := p.aead(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	plaintext, err := aead.Open(nil, ciphertext[:nonceSize], ciphertext[nonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return plaintext, nil
}
