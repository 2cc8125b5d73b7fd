package crypt

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// Envelope types. Each binds a provider and key to a fixed wire encoding of
// one Go type. The zero value of every envelope is an empty ciphertext,
// which fails decryption; envelopes are only meaningful when produced by
// the matching Encrypt constructor or loaded from the store.

// EncryptedString holds the ciphertext of a UTF-8 string.
type EncryptedString struct {
	Ciphertext []byte
}

func EncryptString(v string, key []byte, p Provider) (EncryptedString, error) {
	ct, err := p.Encrypt([]byte(v), key)
	if err != nil {
		return EncryptedString{}, err
	}
	return EncryptedString{Ciphertext: ct}, nil
}

func (e EncryptedString) Decrypt(key []byte, p Provider) (string, error) {
	b, err := p.Decrypt(e.Ciphertext, key)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: invalid UTF-8", ErrDecode)
	}
	return string(b), nil
}

// EncryptedInt32 holds the ciphertext of an int32, encoded big-endian in
// exactly 4 bytes.
type EncryptedInt32 struct {
	Ciphertext []byte
}

func EncryptInt32(v int32, key []byte, p Provider) (EncryptedInt32, error) {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(v))
	ct, err := p.Encrypt(buf, key)
	if err != nil {
		return EncryptedInt32{}, err
	}
	return EncryptedInt32{Ciphertext: ct}, nil
}

func (e EncryptedInt32) Decrypt(key []byte, p Provider) (int32, error) {
	b, err := p.Decrypt(e.Ciphertext, key)
	if err != nil {
		return 0, err
	}
	if len(b) != 4 {
		return 0, fmt.Errorf("%w: want 4 bytes, got %d", ErrDecode, len(b))
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

// EncryptedInt64 holds the ciphertext of an int64, encoded big-endian in
// exactly 8 bytes.
type EncryptedInt64 struct {
	Ciphertext []byte
}

func EncryptInt64(v int64, key []byte, p Provider) (EncryptedInt64, error) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v))
	ct, err := p.Encrypt(buf, key)
	if err != nil {
		return EncryptedInt64{}, err
	}
	return EncryptedInt64{Ciphertext: ct}, nil
}

func (e EncryptedInt64) Decrypt(key []byte, p Provider) (int64, error) {
	b, err := p.Decrypt(e.Ciphertext, key)
	if err != nil {
		return 0, err
	}
	if len(b) != 8 {
		return 0, fmt.Errorf("%w: want 8 bytes, got %d", ErrDecode, len(b))
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

// EncryptedBool holds the ciphertext of a bool, encoded as one byte
// (0 or 1).
type EncryptedBool struct {
	Ciphertext []byte
}

func EncryptBool(v bool, key []byte, p Provider) (EncryptedBool, error) {
	b := byte(0)
	if v {
		b = 1
	}
	ct, err := p.Encrypt([]byte{b}, key)
	if err != nil {
		return EncryptedBool{}, err
	}
	return EncryptedBool{Ciphertext: ct}, nil
}

func (e EncryptedBool) Decrypt(key []byte, p Provider) (bool, error) {
	b, err := p.Decrypt(e.Ciphertext, key)
	if err != nil {
		return false, err
	}
	if len(b) != 1 || b[0] > 1 {
		return false, fmt.Errorf("%w: not a boolean byte", ErrDecode)
	}
	return b[0] == 1, nil
}
