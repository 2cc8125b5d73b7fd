package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/dmitrijs2005/keywarden/internal/common"
	"github.com/dmitrijs2005/keywarden/internal/dbx"
	"github.com/dmitrijs2005/keywarden/internal/logging"
	"github.com/dmitrijs2005/keywarden/internal/server/models"
	coursesrepo "github.com/dmitrijs2005/keywarden/internal/server/repositories/courses"
	localtokensrepo "github.com/dmitrijs2005/keywarden/internal/server/repositories/localtokens"
	sessionlocaltokensrepo "github.com/dmitrijs2005/keywarden/internal/server/repositories/sessionlocaltokens"
	sessiontokensrepo "github.com/dmitrijs2005/keywarden/internal/server/repositories/sessiontokens"
	usersrepo "github.com/dmitrijs2005/keywarden/internal/server/repositories/users"
)

// memStore is an in-memory token store implementing every repository
// interface, with per-operation error injection. It keeps the protocol
// tests independent of any SQL dialect.
type memStore struct {
	mu sync.Mutex

	users    map[int64]*models.User
	locals   map[int64]*models.LocalToken
	sessions map[int64]*models.SessionToken
	wrapped  map[int64]*models.SessionLocalToken
	courses  map[int64]*models.Course

	// Per-table autoincrement counters, like the real schema.
	nextUserID    int64
	nextLocalID   int64
	nextSessionID int64
	nextWrappedID int64
	nextCourseID  int64

	// Error injection. failLocalCreateKind makes Create fail for one
	// resource kind only, to exercise partial provisioning.
	failLocalCreateKind models.ResourceKind
	failWrappedCreate   bool
	failSessionCreate   bool
	failSessionDelete   bool
	failWrappedDelete   bool
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[int64]*models.User{},
		locals:   map[int64]*models.LocalToken{},
		sessions: map[int64]*models.SessionToken{},
		wrapped:  map[int64]*models.SessionLocalToken{},
		courses:  map[int64]*models.Course{},
	}
}

var errInjected = errors.New("injected store failure")

// --- users ---

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.UserName == user.UserName {
			return nil, common.ErrAlreadyExists
		}
	}
	cp := *user
	r.s.nextUserID++
	cp.ID = r.s.nextUserID
	r.s.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r memUsers) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.UserName == login {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

// --- local tokens ---

type memLocalTokens struct{ s *memStore }

func (r memLocalTokens) Create(_ context.Context, token *models.LocalToken) (*models.LocalToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failLocalCreateKind != "" && token.Kind == r.s.failLocalCreateKind {
		return nil, errInjected
	}
	for _, t := range r.s.locals {
		if t.UserID == token.UserID && t.Kind == token.Kind {
			return nil, common.ErrAlreadyExists
		}
	}
	cp := *token
	r.s.nextLocalID++
	cp.ID = r.s.nextLocalID
	r.s.locals[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r memLocalTokens) FindByUser(_ context.Context, userID int64) ([]*models.LocalToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.LocalToken
	for id := int64(1); id <= r.s.nextLocalID; id++ {
		if t, ok := r.s.locals[id]; ok && t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memLocalTokens) FindByUserAndKind(_ context.Context, userID int64, kind models.ResourceKind) (*models.LocalToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.locals {
		if t.UserID == userID && t.Kind == kind {
			cp := *t
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

// --- session tokens ---

type memSessionTokens struct{ s *memStore }

func (r memSessionTokens) Create(_ context.Context, token *models.SessionToken) (*models.SessionToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failSessionCreate {
		return nil, errInjected
	}
	cp := *token
	r.s.nextSessionID++
	cp.ID = r.s.nextSessionID
	r.s.sessions[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r memSessionTokens) Find(_ context.Context, id int64) (*models.SessionToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.sessions[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r memSessionTokens) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failSessionDelete {
		return errInjected
	}
	delete(r.s.sessions, id)
	return nil
}

// --- session-wrapped local tokens ---

type memSessionLocalTokens struct{ s *memStore }

func (r memSessionLocalTokens) Create(_ context.Context, token *models.SessionLocalToken) (*models.SessionLocalToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWrappedCreate {
		return nil, errInjected
	}
	for _, t := range r.s.wrapped {
		if t.LocalTokenID == token.LocalTokenID && t.SessionID == token.SessionID {
			return nil, common.ErrAlreadyExists
		}
	}
	cp := *token
	r.s.nextWrappedID++
	cp.ID = r.s.nextWrappedID
	r.s.wrapped[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r memSessionLocalTokens) FindByLocalTokenAndSession(_ context.Context, localTokenID, sessionID int64) (*models.SessionLocalToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.wrapped {
		if t.LocalTokenID == localTokenID && t.SessionID == sessionID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r memSessionLocalTokens) DeleteBySession(_ context.Context, sessionID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWrappedDelete {
		return errInjected
	}
	for id, t := range r.s.wrapped {
		if t.SessionID == sessionID {
			delete(r.s.wrapped, id)
		}
	}
	return nil
}

// --- courses ---

type memCourses struct{ s *memStore }

func (r memCourses) Create(_ context.Context, course *models.Course) (*models.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *course
	r.s.nextCourseID++
	cp.ID = r.s.nextCourseID
	r.s.courses[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r memCourses) FindByUser(_ context.Context, userID int64) ([]*models.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Course
	for id := int64(1); id <= r.s.nextCourseID; id++ {
		if c, ok := r.s.courses[id]; ok && c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memCourses) FindByID(_ context.Context, id int64) (*models.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r memCourses) Update(_ context.Context, course *models.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[course.ID]
	if !ok || c.UserID != course.UserID {
		return common.ErrNotFound
	}
	c.Name = course.Name
	return nil
}

func (r memCourses) Delete(_ context.Context, id, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[id]
	if !ok || c.UserID != userID {
		return common.ErrNotFound
	}
	delete(r.s.courses, id)
	return nil
}

// --- manager ---

type memRepoManager struct{ s *memStore }

func (m memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m memRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return memUsers{m.s} }
func (m memRepoManager) LocalTokens(dbx.DBTX) localtokensrepo.Repository {
	return memLocalTokens{m.s}
}
func (m memRepoManager) SessionTokens(dbx.DBTX) sessiontokensrepo.Repository {
	return memSessionTokens{m.s}
}
func (m memRepoManager) SessionLocalTokens(dbx.DBTX) sessionlocaltokensrepo.Repository {
	return memSessionLocalTokens{m.s}
}
func (m memRepoManager) Courses(dbx.DBTX) coursesrepo.Repository { return memCourses{m.s} }

func testLogger(t *testing.T) logging.Logger {
	t.Helper()
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
