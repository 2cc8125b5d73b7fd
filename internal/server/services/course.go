package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/keywarden/internal/common"
	"github.com/dmitrijs2005/keywarden/internal/crypt"
	"github.com/dmitrijs2005/keywarden/internal/dbx"
	"github.com/dmitrijs2005/keywarden/internal/logging"
	"github.com/dmitrijs2005/keywarden/internal/server/models"
	"github.com/dmitrijs2005/keywarden/internal/server/repositories/repomanager"
)

// CourseService is the resource consumer for the "course" record category.
// It receives the already-unwrapped local-token bytes from the caller and
// uses them as the symmetric key for the record's field envelopes; it
// never touches passwords or session secrets.
type CourseService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	crypt       crypt.Provider
	logger      logging.Logger
}

// CourseView is a decrypted course as returned to callers.
type CourseView struct {
	ID   int64
	Name string
}

func NewCourseService(db *sql.DB, m repomanager.RepositoryManager, provider crypt.Provider, logger logging.Logger) *CourseService {
	return &CourseService{
		db:          db,
		repomanager: m,
		crypt:       provider,
		logger:      logger.With("module", "courses"),
	}
}

// Create encrypts name under key and stores a new course for the user.
func (s *CourseService) Create(ctx context.Context, userID int64, key []byte, name string) (int64, error) {
	nameCrypt, err := crypt.EncryptString(name, key, s.crypt)
	if err != nil {
		s.logger.Error(ctx, "course name encryption failed", "user_id", userID, "error", err)
		return 0, common.ErrInternal
	}

	course, err := s.repomanager.Courses(s.db).Create(ctx, &models.Course{UserID: userID, Name: nameCrypt})
	if err != nil {
		s.logger.Error(ctx, "course insert failed", "user_id", userID, "error", err)
		return 0, common.ErrInternal
	}

	return course.ID, nil
}

// List returns every course of the user with names decrypted under key.
// A row that fails to decrypt is an internal fault (wrong category key or
// corrupted ciphertext), not a caller error.
func (s *CourseService) List(ctx context.Context, userID int64, key []byte) ([]CourseView, error) {
	rows, err := s.repomanager.Courses(s.db).FindByUser(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "course listing failed", "user_id", userID, "error", err)
		return nil, common.ErrInternal
	}

	views := make([]CourseView, 0, len(rows))
	for _, c := range rows {
		name, err := c.Name.Decrypt(key, s.crypt)
		if err != nil {
			s.logger.Error(ctx, "course name decrypt failed", "course_id", c.ID, "error", err)
			return nil, common.ErrInternal
		}
		views = append(views, CourseView{ID: c.ID, Name: name})
	}

	return views, nil
}

// Rename replaces the name of an existing course. Read-check-write runs
// inside one transaction so a concurrent delete cannot resurrect the row.
func (s *CourseService) Rename(ctx context.Context, userID int64, key []byte, id int64, name string) error {
	nameCrypt, err := crypt.EncryptString(name, key, s.crypt)
	if err != nil {
		s.logger.Error(ctx, "course name encryption failed", "user_id", userID, "error", err)
		return common.ErrInternal
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Courses(tx)

		course, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if course.UserID != userID {
			return common.ErrNotFound
		}

		course.Name = nameCrypt
		return repo.Update(ctx, course)
	})

	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		s.logger.Error(ctx, "course rename failed", "course_id", id, "error", err)
		return common.ErrInternal
	}
	return nil
}

// Delete removes the user's course. Unknown or foreign ids yield
// common.ErrNotFound.
func (s *CourseService) Delete(ctx context.Context, userID, id int64) error {
	err := s.repomanager.Courses(s.db).Delete(ctx, id, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		s.logger.Error(ctx, "course delete failed", "course_id", id, "error", err)
		return common.ErrInternal
	}
	return nil
}
