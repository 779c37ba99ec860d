package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"idetude/internal/domain/assignment"
)

const assignmentColumns = `id, teacher_id, class_id, subject_id, is_main_teacher, school_year, created_at, updated_at`

type PostgresAssignmentRepository struct {
	db *sql.DB
}

func NewPostgresAssignmentRepository(db *sql.DB) *PostgresAssignmentRepository {
	return &PostgresAssignmentRepository{db: db}
}

func (r *PostgresAssignmentRepository) Create(ctx context.Context, a *assignment.Assignment) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		if a.IsMainTeacher {
			if err := clearMainTeacher(ctx, tx, a.ClassID, a.SchoolYear); err != nil {
				return err
			}
		}
		query := `INSERT INTO teacher_assignments (teacher_id, class_id, subject_id, is_main_teacher, school_year)
                   VALUES ($1, $2, $3, $4, $5)
                   RETURNING id, created_at, updated_at`
		err := tx.QueryRowContext(ctx, query, a.TeacherID, a.ClassID, a.SubjectID, a.IsMainTeacher, a.SchoolYear).
			Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return assignmentWriteError("error creating assignment", err)
		}
		return nil
	})
}

// assignmentWriteError maps constraint failures of teacher_assignments to the domain
// errors and wraps everything else.
func assignmentWriteError(msg string, err error) error {
	switch {
	case isUniqueViolation(err, "teacher_assignments_triple_key"):
		return assignment.ErrDuplicate
	case isUniqueViolation(err, "teacher_assignments_one_main_idx"):
		return assignment.ErrConflict
	case isForeignKeyViolation(err):
		return assignment.ErrUnknownReference
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}

func (r *PostgresAssignmentRepository) Get(ctx context.Context, key assignment.Key) (*assignment.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM teacher_assignments
               WHERE teacher_id = $1 AND class_id = $2 AND subject_id = $3`
	a, err := scanAssignment(r.db.QueryRowContext(ctx, query, key.TeacherID, key.ClassID, key.SubjectID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, assignment.ErrNotFound
		}
		return nil, fmt.Errorf("error getting assignment: %w", err)
	}
	return a, nil
}

func (r *PostgresAssignmentRepository) Delete(ctx context.Context, key assignment.Key) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM teacher_assignments WHERE teacher_id = $1 AND class_id = $2 AND subject_id = $3`,
		key.TeacherID, key.ClassID, key.SubjectID)
	if err != nil {
		return fmt.Errorf("error deleting assignment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error deleting assignment: %w", err)
	}
	if n == 0 {
		return assignment.ErrNotFound
	}
	return nil
}

func (r *PostgresAssignmentRepository) ToggleMainTeacher(ctx context.Context, classID, teacherID int64, schoolYear string) ([]*assignment.Assignment, error) {
	var result []*assignment.Assignment
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		own, err := queryAssignments(ctx, tx,
			`SELECT `+assignmentColumns+` FROM teacher_assignments
              WHERE class_id = $1 AND teacher_id = $2 AND school_year = $3 ORDER BY id FOR UPDATE`,
			classID, teacherID, schoolYear)
		if err != nil {
			return err
		}
		if len(own) == 0 {
			return assignment.ErrNotFound
		}

		wasMain := false
		for _, a := range own {
			wasMain = wasMain || a.IsMainTeacher
		}
		if wasMain {
			_, err = tx.ExecContext(ctx,
				`UPDATE teacher_assignments SET is_main_teacher = FALSE, updated_at = NOW()
                  WHERE class_id = $1 AND teacher_id = $2 AND school_year = $3 AND is_main_teacher`,
				classID, teacherID, schoolYear)
		} else {
			if err = clearMainTeacher(ctx, tx, classID, schoolYear); err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx,
				`UPDATE teacher_assignments SET is_main_teacher = TRUE, updated_at = NOW() WHERE id = $1`, own[0].ID)
		}
		if err != nil {
			return assignmentWriteError("error toggling main teacher", err)
		}

		result, err = queryAssignments(ctx, tx,
			`SELECT `+assignmentColumns+` FROM teacher_assignments
              WHERE class_id = $1 AND teacher_id = $2 AND school_year = $3 ORDER BY id`,
			classID, teacherID, schoolYear)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresAssignmentRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]*assignment.View, error) {
	query := `SELECT a.id, a.teacher_id, a.class_id, a.subject_id, a.is_main_teacher, a.school_year,
                     a.created_at, a.updated_at,
                     COALESCE(c.name, ''), COALESCE(c.level, ''), COALESCE(s.name, '')
               FROM teacher_assignments a
               LEFT JOIN classes c ON c.id = a.class_id
               LEFT JOIN subjects s ON s.id = a.subject_id
               WHERE a.teacher_id = $1
               ORDER BY c.name, s.name`

	rows, err := r.db.QueryContext(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("error listing teacher assignments: %w", err)
	}
	defer rows.Close()

	views := make([]*assignment.View, 0)
	for rows.Next() {
		v := &assignment.View{}
		a := &v.Assignment
		if err := rows.Scan(&a.ID, &a.TeacherID, &a.ClassID, &a.SubjectID, &a.IsMainTeacher, &a.SchoolYear,
			&a.CreatedAt, &a.UpdatedAt, &v.ClassName, &v.ClassLevel, &v.SubjectName); err != nil {
			return nil, fmt.Errorf("error scanning teacher assignment: %w", err)
		}
		views = append(views, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teacher assignments: %w", err)
	}
	return views, nil
}

func (r *PostgresAssignmentRepository) ListByClass(ctx context.Context, classID int64) ([]*assignment.Assignment, error) {
	return queryAssignments(ctx, r.db,
		`SELECT `+assignmentColumns+` FROM teacher_assignments WHERE class_id = $1 ORDER BY id`, classID)
}

func (r *PostgresAssignmentRepository) ListAll(ctx context.Context) ([]*assignment.Assignment, error) {
	return queryAssignments(ctx, r.db, `SELECT `+assignmentColumns+` FROM teacher_assignments ORDER BY id`)
}

func (r *PostgresAssignmentRepository) CreateClass(ctx context.Context, c *assignment.Class) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO classes (name, level, school_year) VALUES ($1, $2, $3) RETURNING id`,
		c.Name, c.Level, c.SchoolYear).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err, "classes_name_school_year_key") {
			return assignment.ErrDuplicateClass
		}
		return fmt.Errorf("error creating class: %w", err)
	}
	return nil
}

func (r *PostgresAssignmentRepository) ListClasses(ctx context.Context, schoolYear string) ([]*assignment.Class, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, level, school_year FROM classes
          WHERE $1 = '' OR school_year = $1 ORDER BY name, school_year`, schoolYear)
	if err != nil {
		return nil, fmt.Errorf("error listing classes: %w", err)
	}
	defer rows.Close()

	out := make([]*assignment.Class, 0)
	for rows.Next() {
		c := &assignment.Class{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Level, &c.SchoolYear); err != nil {
			return nil, fmt.Errorf("error scanning class: %w", err)
		}
		out = append(out, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating classes: %w", err)
	}
	return out, nil
}

func (r *PostgresAssignmentRepository) CreateSubject(ctx context.Context, s *assignment.Subject) error {
	err := r.db.QueryRowContext(ctx, `INSERT INTO subjects (name) VALUES ($1) RETURNING id`, s.Name).Scan(&s.ID)
	if err != nil {
		if isUniqueViolation(err, "subjects_name_key") {
			return assignment.ErrDuplicateSubject
		}
		return fmt.Errorf("error creating subject: %w", err)
	}
	return nil
}

func (r *PostgresAssignmentRepository) ListSubjects(ctx context.Context) ([]*assignment.Subject, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM subjects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error listing subjects: %w", err)
	}
	defer rows.Close()

	out := make([]*assignment.Subject, 0)
	for rows.Next() {
		s := &assignment.Subject{}
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("error scanning subject: %w", err)
		}
		out = append(out, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subjects: %w", err)
	}
	return out, nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func clearMainTeacher(ctx context.Context, q querier, classID int64, schoolYear string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE teacher_assignments SET is_main_teacher = FALSE, updated_at = NOW()
          WHERE class_id = $1 AND school_year = $2 AND is_main_teacher`, classID, schoolYear)
	if err != nil {
		return fmt.Errorf("error clearing main teacher: %w", err)
	}
	return nil
}

func queryAssignments(ctx context.Context, q querier, query string, args ...any) ([]*assignment.Assignment, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing assignments: %w", err)
	}
	defer rows.Close()

	out := make([]*assignment.Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning assignment: %w", err)
		}
		out = append(out, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}
	return out, nil
}

func scanAssignment(s rowScanner) (*assignment.Assignment, error) {
	a := &assignment.Assignment{}
	err := s.Scan(&a.ID, &a.TeacherID, &a.ClassID, &a.SubjectID, &a.IsMainTeacher, &a.SchoolYear, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}
