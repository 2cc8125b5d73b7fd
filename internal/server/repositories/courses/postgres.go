package courses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/keywarden/internal/common"
	"github.com/dmitrijs2005/keywarden/internal/dbx"
	"github.com/dmitrijs2005/keywarden/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, course *models.Course) (*models.Course, error) {

	query :=
		`INSERT INTO courses (user_id, name_crypt)
		 VALUES ($1, $2)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		course.UserID, course.Name.Ciphertext).Scan(&course.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return course, nil
}

func (r *PostgresRepository) FindByUser(ctx context.Context, userID int64) ([]*models.Course, error) {
	query :=
		`SELECT id, user_id, name_crypt FROM courses
		 WHERE user_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		c := &models.Course{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name.Ciphertext); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return courses, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	query :=
		`SELECT id, user_id, name_crypt FROM courses
		 WHERE id = $1
		 `

	c := &models.Course{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.UserID, &c.Name.Ciphertext)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *PostgresRepository) Update(ctx context.Context, course *models.Course) error {
	query :=
		`UPDATE courses SET name_crypt = $1
		 WHERE id = $2 AND user_id = $3
		 `

	res, err := r.db.ExecContext(ctx, query, course.Name.Ciphertext, course.ID, course.UserID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID int64) error {
	query := `DELETE FROM courses WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
