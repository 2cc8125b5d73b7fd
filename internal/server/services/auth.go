// Package services contains server-side business logic. This file
// implements AuthService, the session manager of the key-wrapping
// protocol: registration, login with local-token re-wrapping, bearer
// verification, per-category key unwrapping, and revocation.
package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/keywarden/internal/common"
	"github.com/dmitrijs2005/keywarden/internal/crypt"
	"github.com/dmitrijs2005/keywarden/internal/logging"
	"github.com/dmitrijs2005/keywarden/internal/server/models"
	"github.com/dmitrijs2005/keywarden/internal/server/passwords"
	"github.com/dmitrijs2005/keywarden/internal/server/repositories/repomanager"
)

// AuthService implements the token/key-wrapping protocol.
//
// Every user owns one durable "local token" per resource kind, wrapped
// under the literal password bytes. A login issues a session secret and
// re-wraps each local token under it, so any live session can reach every
// category without the password ever being stored. Logout removes exactly
// that session's wrapped copies, then the session record.
//
// The multi-step sequences here are deliberately not transactional; the
// substitute for atomicity is a fixed fail-safe ordering: create the
// depended-upon row before its dependents, delete dependents before the
// row they depend on.
type AuthService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	crypt           crypt.Provider
	logger          logging.Logger
	kinds           []models.ResourceKind
	sessionValidity time.Duration
}

// NewAuthService constructs an AuthService. The kinds slice is the full
// category set provisioned for new users; it is fixed at construction and
// never mutated at runtime.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, provider crypt.Provider,
	logger logging.Logger, kinds []models.ResourceKind, sessionValidity time.Duration) *AuthService {
	return &AuthService{
		db:              db,
		repomanager:     m,
		crypt:           provider,
		logger:          logger.With("module", "auth"),
		kinds:           kinds,
		sessionValidity: sessionValidity,
	}
}

// hashSessionSecret maps a bearer secret to its stored form. The secret
// already carries ~190 bits of entropy, so a single unsalted SHA-256 is
// enough; no KDF cost is needed here.
func hashSessionSecret(secret string) string {
	h := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(h[:])
}

// ParseBearer splits an Authorization header of the form
// "Bearer {decimal session_id}_{32-char alphanumeric secret}". The id must
// be canonical decimal: digits only, no sign, no leading zeros, so every
// session has exactly one valid header spelling. Any other form is
// common.ErrInvalidToken.
func ParseBearer(header string) (sessionID int64, secret string, err error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return 0, "", common.ErrInvalidToken
	}

	idPart, secretPart, ok := strings.Cut(raw, "_")
	if !ok {
		return 0, "", common.ErrInvalidToken
	}

	if idPart == "" || idPart[0] == '0' {
		return 0, "", common.ErrInvalidToken
	}
	for i := 0; i < len(idPart); i++ {
		if idPart[i] < '0' || idPart[i] > '9' {
			return 0, "", common.ErrInvalidToken
		}
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, "", common.ErrInvalidToken
	}

	if len(secretPart) != common.TokenLength {
		return 0, "", common.ErrInvalidToken
	}
	for i := 0; i < len(secretPart); i++ {
		if !strings.ContainsRune(common.TokenCharset, rune(secretPart[i])) {
			return 0, "", common.ErrInvalidToken
		}
	}

	return id, secretPart, nil
}

// Register creates the user, provisions one password-wrapped local token
// per resource kind, and returns an immediately usable bearer token.
//
// A provisioning failure for a single kind is logged and tolerated:
// registration still succeeds and the gap can be repaired later with
// Provision. This is asymmetric with Login on purpose (a session must
// reach all categories or none; a fresh account may be degraded).
func (s *AuthService) Register(ctx context.Context, username, password string) (string, error) {
	hash, err := passwords.Hash(password)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return "", common.ErrInternal
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{UserName: username, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return "", common.ErrUsernameTaken
		}
		s.logger.Error(ctx, "user creation failed", "error", err)
		return "", common.ErrInternal
	}

	for _, kind := range s.kinds {
		if _, err := s.provisionLocalToken(ctx, user.ID, kind, password); err != nil {
			s.logger.Warn(ctx, "local token provisioning failed, continuing registration",
				"user_id", user.ID, "kind", string(kind), "error", err)
		}
	}

	return s.issueSession(ctx, user.ID, password)
}

// Login verifies the credentials and issues a fresh session whose secret
// can unwrap every local token the user owns.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Burn the same hashing cost as the known-user path so
			// latency does not reveal whether the username exists.
			passwords.DummyVerify(password)
			return "", common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return "", common.ErrInternal
	}

	ok, err := passwords.Verify(password, user.PasswordHash)
	if err != nil {
		s.logger.Error(ctx, "stored password hash unreadable", "user_id", user.ID, "error", err)
		return "", common.ErrInternal
	}
	if !ok {
		return "", common.ErrInvalidCredentials
	}

	return s.issueSession(ctx, user.ID, password)
}

// issueSession performs login's issuance steps: create the session record
// first, then re-wrap every local token under the new session secret. Any
// single re-wrap failure aborts the whole issuance; a session must reach
// all categories or none.
func (s *AuthService) issueSession(ctx context.Context, userID int64, password string) (string, error) {
	secret, err := common.MakeTokenSecret()
	if err != nil {
		s.logger.Error(ctx, "session secret generation failed", "error", err)
		return "", common.ErrInternal
	}

	session, err := s.repomanager.SessionTokens(s.db).Create(ctx, &models.SessionToken{
		SecretHash: hashSessionSecret(secret),
		UserID:     userID,
		ValidUntil: time.Now().Add(s.sessionValidity),
	})
	if err != nil {
		s.logger.Error(ctx, "session creation failed", "user_id", userID, "error", err)
		return "", common.ErrInternal
	}

	locals, err := s.repomanager.LocalTokens(s.db).FindByUser(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "local token listing failed", "user_id", userID, "error", err)
		return "", common.ErrInternal
	}

	passwordBytes := []byte(password)
	sessionKey := []byte(secret)
	for _, local := range locals {
		plain, err := local.TokenCrypt.Decrypt(passwordBytes, s.crypt)
		if err != nil {
			s.logger.Error(ctx, "local token unwrap failed during login",
				"user_id", userID, "kind", string(local.Kind), "error", err)
			return "", common.ErrInternal
		}

		rewrapped, err := crypt.EncryptString(plain, sessionKey, s.crypt)
		if err != nil {
			s.logger.Error(ctx, "local token re-wrap failed during login",
				"user_id", userID, "kind", string(local.Kind), "error", err)
			return "", common.ErrInternal
		}

		_, err = s.repomanager.SessionLocalTokens(s.db).Create(ctx, &models.SessionLocalToken{
			LocalTokenID: local.ID,
			TokenCrypt:   rewrapped,
			SessionID:    session.ID,
		})
		if err != nil {
			s.logger.Error(ctx, "session-wrapped token insert failed during login",
				"user_id", userID, "kind", string(local.Kind), "error", err)
			return "", common.ErrInternal
		}
	}

	s.logger.Info(ctx, "session issued", "user_id", userID, "session_id", session.ID)
	return fmt.Sprintf("%d_%s", session.ID, secret), nil
}

// VerifyRequest authenticates a bearer header and returns the identity
// triple used by every protected operation. An expired session is purged
// as a side effect before the failure is returned, so callers never retry
// the cleanup themselves.
func (s *AuthService) VerifyRequest(ctx context.Context, bearerHeader string) (userID, sessionID int64, secret string, err error) {
	id, secret, err := ParseBearer(bearerHeader)
	if err != nil {
		return 0, 0, "", common.ErrInvalidToken
	}

	session, err := s.repomanager.SessionTokens(s.db).Find(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return 0, 0, "", common.ErrInvalidToken
		}
		s.logger.Error(ctx, "session lookup failed", "session_id", id, "error", err)
		return 0, 0, "", common.ErrInternal
	}

	if !time.Now().Before(session.ValidUntil) {
		s.logger.Warn(ctx, "expired session presented, purging", "session_id", session.ID)
		if err := s.revokeSession(ctx, session.ID); err != nil {
			s.logger.Error(ctx, "expired session cleanup failed", "session_id", session.ID, "error", err)
		}
		return 0, 0, "", common.ErrInvalidToken
	}

	if subtle.ConstantTimeCompare([]byte(hashSessionSecret(secret)), []byte(session.SecretHash)) != 1 {
		return 0, 0, "", common.ErrInvalidToken
	}

	return session.UserID, session.ID, secret, nil
}

// UnwrapResourceKey recovers the raw key bytes of the user's local token
// for one resource kind, using the session secret as unwrap key. Every
// failure here is an internal one: a verified session that cannot reach a
// category means a provisioning gap or corruption, not caller error.
func (s *AuthService) UnwrapResourceKey(ctx context.Context, userID int64, kind models.ResourceKind, sessionID int64, sessionSecret string) ([]byte, error) {
	local, err := s.repomanager.LocalTokens(s.db).FindByUserAndKind(ctx, userID, kind)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Error(ctx, "no local token for kind (provisioning gap)",
				"user_id", userID, "kind", string(kind))
		} else {
			s.logger.Error(ctx, "local token lookup failed", "user_id", userID, "error", err)
		}
		return nil, common.ErrInternal
	}

	wrapped, err := s.repomanager.SessionLocalTokens(s.db).FindByLocalTokenAndSession(ctx, local.ID, sessionID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Error(ctx, "session has no wrapped copy of local token",
				"session_id", sessionID, "local_token_id", local.ID)
		} else {
			s.logger.Error(ctx, "wrapped token lookup failed", "session_id", sessionID, "error", err)
		}
		return nil, common.ErrInternal
	}

	plain, err := wrapped.TokenCrypt.Decrypt([]byte(sessionSecret), s.crypt)
	if err != nil {
		s.logger.Error(ctx, "wrapped token decrypt failed",
			"session_id", sessionID, "local_token_id", local.ID, "error", err)
		return nil, common.ErrInternal
	}

	return []byte(plain), nil
}

// Logout revokes the presented session. Verification comes first: only an
// authenticated holder may revoke its own session, so a guessed id alone
// cannot log anyone out.
func (s *AuthService) Logout(ctx context.Context, bearerHeader string) error {
	_, sessionID, _, err := s.VerifyRequest(ctx, bearerHeader)
	if err != nil {
		return err
	}

	if err := s.revokeSession(ctx, sessionID); err != nil {
		s.logger.Error(ctx, "logout revocation failed", "session_id", sessionID, "error", err)
		return common.ErrInternal
	}

	s.logger.Info(ctx, "session revoked", "session_id", sessionID)
	return nil
}

// revokeSession deletes the session's wrapped-token rows, then the session
// record. The order matters: if the second delete fails we are left with a
// dangling session granting no key access, never the reverse.
func (s *AuthService) revokeSession(ctx context.Context, sessionID int64) error {
	if err := s.repomanager.SessionLocalTokens(s.db).DeleteBySession(ctx, sessionID); err != nil {
		return err
	}
	return s.repomanager.SessionTokens(s.db).Delete(ctx, sessionID)
}

// Provision creates the password-wrapped local token for one resource
// kind, repairing a registration gap or adding a new category to an
// existing user. Duplicate provisioning is rejected by the store's
// (user, kind) uniqueness guarantee.
func (s *AuthService) Provision(ctx context.Context, userID int64, kind models.ResourceKind, password string) error {
	if _, err := s.provisionLocalToken(ctx, userID, kind, password); err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return common.ErrAlreadyExists
		}
		s.logger.Error(ctx, "provisioning failed", "user_id", userID, "kind", string(kind), "error", err)
		return common.ErrInternal
	}
	return nil
}

func (s *AuthService) provisionLocalToken(ctx context.Context, userID int64, kind models.ResourceKind, password string) (*models.LocalToken, error) {
	secret, err := common.MakeTokenSecret()
	if err != nil {
		return nil, err
	}

	wrapped, err := crypt.EncryptString(secret, []byte(password), s.crypt)
	if err != nil {
		return nil, err
	}

	return s.repomanager.LocalTokens(s.db).Create(ctx, &models.LocalToken{
		UserID:     userID,
		Kind:       kind,
		TokenCrypt: wrapped,
	})
}
