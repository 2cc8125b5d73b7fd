package crypt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func providers(t *testing.T) map[string]Provider {
	t.Helper()
	out := map[string]Provider{}
	for _, name := range []string{ProviderAESGCM, ProviderFake} {
		p, err := New(name)
		require.NoError(t, err)
		out[name] = p
	}
	return out
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New("rot13")
	require.Error(t, err)
}

func TestProvider_RoundTrip(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			key := []byte("correct horse battery staple")
			for _, plain := range [][]byte{
				[]byte("hello"),
				{},
				[]byte("longer payload with some structure: 0123456789"),
			} {
				ct, err := p.Encrypt(plain, key)
				require.NoError(t, err)

				got, err := p.Decrypt(ct, key)
				require.NoError(t, err)
				require.Equal(t, plain, got)
			}
		})
	}
}

func TestProvider_WrongKeyFails(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			ct, err := p.Encrypt([]byte("secret"), []byte("key-one"))
			require.NoError(t, err)

			_, err = p.Decrypt(ct, []byte("key-two"))
			require.ErrorIs(t, err, ErrDecrypt, "wrong key must fail, never return wrong plaintext")
		})
	}
}

func TestProvider_CorruptedCiphertextFails(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			key := []byte("k")
			ct, err := p.Encrypt([]byte("secret"), key)
			require.NoError(t, err)

			ct[len(ct)-1] ^= 0xff
			if name == ProviderFake {
				// The fake's XOR body is unauthenticated; corrupt its
				// key tag instead.
				ct[0] ^= 0xff
			}
			_, err = p.Decrypt(ct, key)
			require.ErrorIs(t, err, ErrDecrypt)

			_, err = p.Decrypt([]byte{1, 2}, key)
			require.ErrorIs(t, err, ErrDecrypt, "truncated input must fail cleanly")
		})
	}
}

func TestFakeProvider_Deterministic(t *testing.T) {
	p := &FakeProvider{}
	a, err := p.Encrypt([]byte("v"), []byte("k"))
	require.NoError(t, err)
	b, err := p.Encrypt([]byte("v"), []byte("k"))
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestEnvelope_StringRoundTrip(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			key := []byte("pw")
			for _, v := range []string{"", "alice", "päßwörter, 日本語"} {
				enc, err := EncryptString(v, key, p)
				require.NoError(t, err)
				got, err := enc.Decrypt(key, p)
				require.NoError(t, err)
				require.Equal(t, v, got)
			}
		})
	}
}

func TestEnvelope_Int32RoundTrip(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			key := []byte("pw")
			for _, v := range []int32{0, 1, -1, math.MaxInt32, math.MinInt32} {
				enc, err := EncryptInt32(v, key, p)
				require.NoError(t, err)
				got, err := enc.Decrypt(key, p)
				require.NoError(t, err)
				require.Equal(t, v, got)
			}
		})
	}
}

func TestEnvelope_Int64RoundTrip(t *testing.T) {
	p := &FakeProvider{}
	key := []byte("pw")
	for _, v := range []int64{0, -1, math.MaxInt64, math.MinInt64} {
		enc, err := EncryptInt64(v, key, p)
		require.NoError(t, err)
		got, err := enc.Decrypt(key, p)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestEnvelope_BoolRoundTrip(t *testing.T) {
	p := &FakeProvider{}
	key := []byte("pw")
	for _, v := range []bool{true, false} {
		enc, err := EncryptBool(v, key, p)
		require.NoError(t, err)
		got, err := enc.Decrypt(key, p)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestEnvelope_WrongKeyIsCipherError(t *testing.T) {
	p := &AESGCMProvider{}
	enc, err := EncryptString("v", []byte("k1"), p)
	require.NoError(t, err)

	_, err = enc.Decrypt([]byte("k2"), p)
	require.ErrorIs(t, err, ErrDecrypt)
	require.NotErrorIs(t, err, ErrDecode)
}

func TestEnvelope_DecodeErrorIsDistinct(t *testing.T) {
	p := &FakeProvider{}
	key := []byte("k")

	// Valid ciphertext of the wrong width for int32.
	raw, err := p.Encrypt([]byte("abc"), key)
	require.NoError(t, err)
	_, err = EncryptedInt32{Ciphertext: raw}.Decrypt(key, p)
	require.ErrorIs(t, err, ErrDecode)
	require.NotErrorIs(t, err, ErrDecrypt)

	// Valid ciphertext of invalid UTF-8 for string.
	raw, err = p.Encrypt([]byte{0xff, 0xfe}, key)
	require.NoError(t, err)
	_, err = EncryptedString{Ciphertext: raw}.Decrypt(key, p)
	require.ErrorIs(t, err, ErrDecode)

	// Valid ciphertext of a non-boolean byte.
	raw, err = p.Encrypt([]byte{7}, key)
	require.NoError(t, err)
	_, err = EncryptedBool{Ciphertext: raw}.Decrypt(key, p)
	require.ErrorIs(t, err, ErrDecode)
}
