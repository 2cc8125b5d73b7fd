package models

import (
	"time"

	"github.com/dmitrijs2005/keywarden/internal/crypt"
)

// LocalToken is the durable per-(user, kind) symmetric key, wrapped under
// the literal password bytes. Created at provisioning and never updated;
// a password change silently orphans it.
type LocalToken struct {
	ID         int64
	UserID     int64
	Kind       ResourceKind
	TokenCrypt crypt.EncryptedString
}

// SessionToken is one login's session record. Only the hash of the bearer
// secret is stored; the secret itself doubles as the unwrap key for the
// session's wrapped local tokens.
type SessionToken struct {
	ID         int64
	SecretHash string
	UserID     int64
	ValidUntil time.Time
}

// SessionLocalToken is the join entity that makes a local token reachable
// from a session without the password: the local token's secret re-wrapped
// under the session secret. All rows of a session are deleted together at
// revocation.
type SessionLocalToken struct {
	ID           int64
	LocalTokenID int64
	TokenCrypt   crypt.EncryptedString
	SessionID    int64
}
