package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"idetude/internal/domain/competency"

	"github.com/google/uuid"
)

const (
	competencyColumns = `id, name, subject, class_level, max_level, created_by, created_at`
	stateColumns      = `id, student_id, competency_id, current_level, evaluated_at, evaluator_id, notes, created_at, updated_at`
	historyColumns    = `id, student_competency_id, previous_level, new_level, notes, evaluator_id, created_at`
)

type PostgresCompetencyRepository struct {
	db *sql.DB
}

func NewPostgresCompetencyRepository(db *sql.DB) *PostgresCompetencyRepository {
	return &PostgresCompetencyRepository{db: db}
}

func (r *PostgresCompetencyRepository) CreateCompetency(ctx context.Context, c *competency.Competency) error {
	query := `INSERT INTO competencies (name, subject, class_level, max_level, created_by)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, c.Name, c.Subject, c.ClassLevel, c.MaxLevel, c.CreatedBy).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating competency: %w", err)
	}
	return nil
}

func (r *PostgresCompetencyRepository) GetCompetency(ctx context.Context, id int64) (*competency.Competency, error) {
	c, err := scanCompetency(r.db.QueryRowContext(ctx, `SELECT `+competencyColumns+` FROM competencies WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, competency.ErrNotFound
		}
		return nil, fmt.Errorf("error getting competency: %w", err)
	}
	return c, nil
}

func (r *PostgresCompetencyRepository) ListCompetencies(ctx context.Context, filter competency.Filter) ([]*competency.Competency, error) {
	var (
		where []string
		args  []any
	)
	if filter.Subject != "" {
		args = append(args, filter.Subject)
		where = append(where, fmt.Sprintf("subject = $%d", len(args)))
	}
	if filter.ClassLevel != "" {
		args = append(args, filter.ClassLevel)
		where = append(where, fmt.Sprintf("class_level = $%d", len(args)))
	}
	query := `SELECT ` + competencyColumns + ` FROM competencies`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY subject, name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing competencies: %w", err)
	}
	defer rows.Close()

	out := make([]*competency.Competency, 0)
	for rows.Next() {
		c, err := scanCompetency(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning competency: %w", err)
		}
		out = append(out, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating competencies: %w", err)
	}
	return out, nil
}

func (r *PostgresCompetencyRepository) GetState(ctx context.Context, studentID, competencyID int64) (*competency.StudentCompetency, error) {
	return getState(ctx, r.db,
		`SELECT `+stateColumns+` FROM student_competencies WHERE student_id = $1 AND competency_id = $2`,
		studentID, competencyID)
}

func (r *PostgresCompetencyRepository) GetStateByID(ctx context.Context, id uuid.UUID) (*competency.StudentCompetency, error) {
	return getState(ctx, r.db, `SELECT `+stateColumns+` FROM student_competencies WHERE id = $1`, id)
}

func (r *PostgresCompetencyRepository) ListStates(ctx context.Context) ([]*competency.StudentCompetency, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+stateColumns+` FROM student_competencies ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("error listing student competencies: %w", err)
	}
	defer rows.Close()

	out := make([]*competency.StudentCompetency, 0)
	for rows.Next() {
		s, err := scanState(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning student competency: %w", err)
		}
		out = append(out, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student competencies: %w", err)
	}
	return out, nil
}

func (r *PostgresCompetencyRepository) ListStandings(ctx context.Context, studentID int64) ([]*competency.Standing, error) {
	query := `SELECT s.id, s.student_id, s.competency_id, s.current_level, s.evaluated_at, s.evaluator_id,
                     s.notes, s.created_at, s.updated_at,
                     c.id, c.name, c.subject, c.class_level, c.max_level, c.created_by, c.created_at
               FROM student_competencies s
               JOIN competencies c ON c.id = s.competency_id
               WHERE s.student_id = $1
               ORDER BY c.id`
	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("error listing standings: %w", err)
	}
	defer rows.Close()

	out := make([]*competency.Standing, 0)
	for rows.Next() {
		st := &competency.Standing{}
		s, c := &st.State, &st.Competency
		if err := rows.Scan(&s.ID, &s.StudentID, &s.CompetencyID, &s.CurrentLevel, &s.EvaluatedAt, &s.EvaluatorID,
			&s.Notes, &s.CreatedAt, &s.UpdatedAt,
			&c.ID, &c.Name, &c.Subject, &c.ClassLevel, &c.MaxLevel, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning standing: %w", err)
		}
		out = append(out, st)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating standings: %w", err)
	}
	return out, nil
}

// Record serialises writers of one (student, competency) pair with a row lock. Two first
// evaluations racing on a missing row collide on the unique key and the loser gets
// ErrConflict.
func (r *PostgresCompetencyRepository) Record(ctx context.Context, studentID, competencyID int64, apply competency.ApplyFunc) (*competency.StudentCompetency, *competency.HistoryEntry, error) {
	var (
		next  *competency.StudentCompetency
		entry *competency.HistoryEntry
	)
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		current, err := getState(ctx, tx,
			`SELECT `+stateColumns+` FROM student_competencies
              WHERE student_id = $1 AND competency_id = $2 FOR UPDATE`, studentID, competencyID)
		if err != nil && !errors.Is(err, competency.ErrStateNotFound) {
			return err
		}

		next, entry, err = apply(current)
		if err != nil {
			return err
		}

		if current == nil {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO student_competencies (`+stateColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				next.ID, next.StudentID, next.CompetencyID, next.CurrentLevel, next.EvaluatedAt, next.EvaluatorID,
				next.Notes, next.CreatedAt, next.UpdatedAt)
			if isUniqueViolation(err, "student_competencies_student_competency_key") {
				return competency.ErrConflict
			}
		} else {
			_, err = tx.ExecContext(ctx,
				`UPDATE student_competencies
                  SET current_level = $1, evaluated_at = $2, evaluator_id = $3, notes = $4, updated_at = $5
                  WHERE id = $6`,
				next.CurrentLevel, next.EvaluatedAt, next.EvaluatorID, next.Notes, next.UpdatedAt, next.ID)
		}
		if err != nil {
			return fmt.Errorf("error saving student competency: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO competency_history (`+historyColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			entry.ID, entry.StudentCompetencyID, entry.PreviousLevel, entry.NewLevel, entry.Notes,
			entry.EvaluatorID, entry.CreatedAt)
		if err != nil {
			return fmt.Errorf("error appending competency history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return next, entry, nil
}

func (r *PostgresCompetencyRepository) ListHistory(ctx context.Context, id uuid.UUID) ([]*competency.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+historyColumns+` FROM competency_history WHERE student_competency_id = $1 ORDER BY created_at, seq`, id)
	if err != nil {
		return nil, fmt.Errorf("error listing competency history: %w", err)
	}
	defer rows.Close()

	out := make([]*competency.HistoryEntry, 0)
	for rows.Next() {
		h := &competency.HistoryEntry{}
		if err := rows.Scan(&h.ID, &h.StudentCompetencyID, &h.PreviousLevel, &h.NewLevel, &h.Notes, &h.EvaluatorID, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning competency history: %w", err)
		}
		out = append(out, h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating competency history: %w", err)
	}
	return out, nil
}

func (r *PostgresCompetencyRepository) ListTransitions(ctx context.Context, studentID int64, since time.Time) ([]*competency.Transition, error) {
	query := `SELECT h.id, h.student_competency_id, h.previous_level, h.new_level, h.notes, h.evaluator_id,
                     h.created_at, c.subject, c.max_level
               FROM competency_history h
               JOIN student_competencies s ON s.id = h.student_competency_id
               JOIN competencies c ON c.id = s.competency_id
               WHERE s.student_id = $1 AND h.created_at >= $2
               ORDER BY h.created_at, h.seq`
	rows, err := r.db.QueryContext(ctx, query, studentID, since)
	if err != nil {
		return nil, fmt.Errorf("error listing transitions: %w", err)
	}
	defer rows.Close()

	out := make([]*competency.Transition, 0)
	for rows.Next() {
		t := &competency.Transition{}
		h := &t.Entry
		if err := rows.Scan(&h.ID, &h.StudentCompetencyID, &h.PreviousLevel, &h.NewLevel, &h.Notes, &h.EvaluatorID,
			&h.CreatedAt, &t.Subject, &t.MaxLevel); err != nil {
			return nil, fmt.Errorf("error scanning transition: %w", err)
		}
		out = append(out, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transitions: %w", err)
	}
	return out, nil
}

func getState(ctx context.Context, q querier, query string, args ...any) (*competency.StudentCompetency, error) {
	s, err := scanState(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, competency.ErrStateNotFound
		}
		return nil, fmt.Errorf("error getting student competency: %w", err)
	}
	return s, nil
}

func scanState(s rowScanner) (*competency.StudentCompetency, error) {
	st := &competency.StudentCompetency{}
	err := s.Scan(&st.ID, &st.StudentID, &st.CompetencyID, &st.CurrentLevel, &st.EvaluatedAt, &st.EvaluatorID,
		&st.Notes, &st.CreatedAt, &st.UpdatedAt)
	return st, err
}

func scanCompetency(s rowScanner) (*competency.Competency, error) {
	c := &competency.Competency{}
	err := s.Scan(&c.ID, &c.Name, &c.Subject, &c.ClassLevel, &c.MaxLevel, &c.CreatedBy, &c.CreatedAt)
	return c, err
}
