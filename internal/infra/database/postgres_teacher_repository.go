package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"idetude/internal/domain/teacher"
)

const teacherColumns = `id, telegram_id, first_name, last_name, is_active, created_at, updated_at`

type PostgresTeacherRepository struct {
	db *sql.DB
}

func NewPostgresTeacherRepository(db *sql.DB) *PostgresTeacherRepository {
	return &PostgresTeacherRepository{db: db}
}

func (r *PostgresTeacherRepository) Create(ctx context.Context, t *teacher.Teacher) error {
	query := `INSERT INTO teachers (telegram_id, first_name, last_name, is_active)
               VALUES ($1, $2, $3, $4)
               RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, t.TelegramID, t.FirstName, t.LastName, t.IsActive).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "teachers_telegram_id_key") {
			return teacher.ErrDuplicateTelegramID
		}
		return fmt.Errorf("error creating teacher: %w", err)
	}
	return nil
}

func (r *PostgresTeacherRepository) GetByID(ctx context.Context, id int64) (*teacher.Teacher, error) {
	return r.getOne(ctx, `SELECT `+teacherColumns+` FROM teachers WHERE id = $1`, id)
}

func (r *PostgresTeacherRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*teacher.Teacher, error) {
	return r.getOne(ctx, `SELECT `+teacherColumns+` FROM teachers WHERE telegram_id = $1`, telegramID)
}

func (r *PostgresTeacherRepository) Update(ctx context.Context, t *teacher.Teacher) error {
	query := `UPDATE teachers
               SET first_name = $1, last_name = $2, is_active = $3, updated_at = NOW()
               WHERE id = $4
               RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, t.FirstName, t.LastName, t.IsActive, t.ID).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return teacher.ErrNotFound
		}
		return fmt.Errorf("error updating teacher: %w", err)
	}
	return nil
}

func (r *PostgresTeacherRepository) ListActive(ctx context.Context) ([]*teacher.Teacher, error) {
	return r.list(ctx, `SELECT `+teacherColumns+` FROM teachers WHERE is_active = TRUE ORDER BY first_name, last_name`)
}

func (r *PostgresTeacherRepository) ListAll(ctx context.Context) ([]*teacher.Teacher, error) {
	return r.list(ctx, `SELECT `+teacherColumns+` FROM teachers ORDER BY id`)
}

func (r *PostgresTeacherRepository) getOne(ctx context.Context, query string, arg int64) (*teacher.Teacher, error) {
	t, err := scanTeacher(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, teacher.ErrNotFound
		}
		return nil, fmt.Errorf("error getting teacher: %w", err)
	}
	return t, nil
}

func (r *PostgresTeacherRepository) list(ctx context.Context, query string) ([]*teacher.Teacher, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing teachers: %w", err)
	}
	defer rows.Close()

	teachers := make([]*teacher.Teacher, 0)
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning teacher: %w", err)
		}
		teachers = append(teachers, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teachers: %w", err)
	}
	return teachers, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTeacher(s rowScanner) (*teacher.Teacher, error) {
	t := &teacher.Teacher{}
	err := s.Scan(&t.ID, &t.TelegramID, &t.FirstName, &t.LastName, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}
