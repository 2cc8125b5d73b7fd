// Package passwords hashes and verifies user passwords with Argon2id,
// serialized in PHC string format so parameters can evolve without a
// schema change.
package passwords

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Hashing parameters. Changing them only affects newly created hashes;
// stored PHC strings carry their own parameters.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	saltLength   = 16
	keyLength    = 32
)

var ErrMalformedHash = errors.New("malformed password hash")

// Hash derives an Argon2id hash of password under a fresh random salt and
// returns it in PHC format.
func Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, keyLength)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// Verify reports whether password matches the PHC-encoded hash. The
// comparison is constant-time; a malformed hash is an error, not a
// mismatch.
func Verify(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return false, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, ErrMalformedHash
	}
	if version != argon2.Version {
		return false, ErrMalformedHash
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, ErrMalformedHash
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return false, ErrMalformedHash
	}
	want, err := b64.DecodeString(parts[5])
	if err != nil {
		return false, ErrMalformedHash
	}

	got := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// dummyHash is a valid hash of an unguessable throwaway password, used to
// equalize the cost of the unknown-user login path.
var dummyHash = mustDummyHash()

func mustDummyHash() string {
	h, err := Hash("keywarden-dummy-password-for-timing")
	if err != nil {
		panic(err)
	}
	return h
}

// DummyVerify burns the same CPU as a real verification and discards the
// result. Login calls it when the username does not exist, so latency does
// not distinguish unknown-user from wrong-password.
func DummyVerify(password string) {
	_, _ = Verify(password, dummyHash)
}
