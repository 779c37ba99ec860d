package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"idetude/internal/domain/resource"
)

type PostgresResourceRepository struct {
	db *sql.DB
}

func NewPostgresResourceRepository(db *sql.DB) *PostgresResourceRepository {
	return &PostgresResourceRepository{db: db}
}

func (r *PostgresResourceRepository) Create(ctx context.Context, res *resource.Resource) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO resources (teacher_id, title, downloads, views) VALUES ($1, $2, $3, $4)
          RETURNING id, created_at`,
		res.TeacherID, res.Title, res.Downloads, res.Views).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return resource.ErrUnknownTeacher
		}
		return fmt.Errorf("error creating resource: %w", err)
	}
	return nil
}

func (r *PostgresResourceRepository) AddUsage(ctx context.Context, id int64, downloads, views int) (*resource.Resource, error) {
	res := &resource.Resource{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE resources SET downloads = downloads + $2, views = views + $3 WHERE id = $1
          RETURNING id, teacher_id, title, downloads, views, created_at`, id, downloads, views).
		Scan(&res.ID, &res.TeacherID, &res.Title, &res.Downloads, &res.Views, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, resource.ErrNotFound
		}
		return nil, fmt.Errorf("error updating resource usage: %w", err)
	}
	return res, nil
}

func (r *PostgresResourceRepository) ListAll(ctx context.Context) ([]*resource.Resource, error) {
	return r.list(ctx, `SELECT id, teacher_id, title, downloads, views, created_at FROM resources ORDER BY created_at, id`)
}

func (r *PostgresResourceRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]*resource.Resource, error) {
	return r.list(ctx, `SELECT id, teacher_id, title, downloads, views, created_at FROM resources
                         WHERE teacher_id = $1 ORDER BY created_at, id`, teacherID)
}

func (r *PostgresResourceRepository) list(ctx context.Context, query string, args ...any) ([]*resource.Resource, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing resources: %w", err)
	}
	defer rows.Close()

	out := make([]*resource.Resource, 0)
	for rows.Next() {
		res := &resource.Resource{}
		if err := rows.Scan(&res.ID, &res.TeacherID, &res.Title, &res.Downloads, &res.Views, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning resource: %w", err)
		}
		out = append(out, res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resources: %w", err)
	}
	return out, nil
}
