package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"idetude/internal/domain/records"

	"github.com/google/uuid"
)

// recordTable maps one record type onto its table. The filter columns are empty when the
// type does not carry the field, in which case a filter on it matches nothing.
type recordTable[T records.Record] struct {
	name       string
	columns    []string
	values     func(T) []any
	scan       func(rowScanner) (T, error)
	studentCol string
	classCol   string
	timeCol    string
}

type PostgresRecordStore[T records.Record] struct {
	db    *sql.DB
	table recordTable[T]
}

func (s *PostgresRecordStore[T]) Create(ctx context.Context, rec T) error {
	if rec.RecordID() == uuid.Nil {
		rec.SetRecordID(uuid.New())
	}
	placeholders := make([]string, len(s.table.columns)+1)
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, %s) VALUES (%s)`,
		s.table.name, strings.Join(s.table.columns, ", "), strings.Join(placeholders, ", "))
	args := append([]any{rec.RecordID()}, s.table.values(rec)...)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error creating %s row: %w", s.table.name, err)
	}
	return nil
}

func (s *PostgresRecordStore[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	query := fmt.Sprintf(`SELECT id, %s FROM %s WHERE id = $1`, strings.Join(s.table.columns, ", "), s.table.name)
	rec, err := s.table.scan(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, records.ErrNotFound
		}
		return zero, fmt.Errorf("error getting %s row: %w", s.table.name, err)
	}
	return rec, nil
}

func (s *PostgresRecordStore[T]) List(ctx context.Context, filter records.Filter) ([]T, error) {
	where, args, ok := s.where(filter)
	out := make([]T, 0)
	if !ok {
		return out, nil
	}
	query := fmt.Sprintf(`SELECT id, %s FROM %s`, strings.Join(s.table.columns, ", "), s.table.name)
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %w", s.table.name, err)
	}
	defer rows.Close()
	for rows.Next() {
		rec, err := s.table.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning %s row: %w", s.table.name, err)
		}
		out = append(out, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", s.table.name, err)
	}
	return out, nil
}

func (s *PostgresRecordStore[T]) Update(ctx context.Context, rec T) error {
	sets := make([]string, len(s.table.columns))
	for i, col := range s.table.columns {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+2)
	}
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $1`, s.table.name, strings.Join(sets, ", "))
	args := append([]any{rec.RecordID()}, s.table.values(rec)...)
	return s.execOne(ctx, "updating", query, args...)
}

func (s *PostgresRecordStore[T]) Delete(ctx context.Context, id uuid.UUID) error {
	return s.execOne(ctx, "deleting", fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table.name), id)
}

func (s *PostgresRecordStore[T]) execOne(ctx context.Context, verb, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error %s %s row: %w", verb, s.table.name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error %s %s row: %w", verb, s.table.name, err)
	}
	if n == 0 {
		return records.ErrNotFound
	}
	return nil
}

// where translates filter into SQL conditions. ok is false when the filter cannot match.
func (s *PostgresRecordStore[T]) where(filter records.Filter) (conds []string, args []any, ok bool) {
	add := func(col, op string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s %s $%d", col, op, len(args)))
	}
	if filter.StudentID != 0 {
		if s.table.studentCol == "" {
			return nil, nil, false
		}
		add(s.table.studentCol, "=", filter.StudentID)
	}
	if filter.ClassID != 0 {
		if s.table.classCol == "" {
			return nil, nil, false
		}
		add(s.table.classCol, "=", filter.ClassID)
	}
	if !filter.From.IsZero() {
		add(s.table.timeCol, ">=", filter.From)
	}
	if !filter.To.IsZero() {
		add(s.table.timeCol, "<", filter.To)
	}
	return conds, args, true
}

func NewPostgresAbsenceStore(db *sql.DB) *PostgresRecordStore[*records.Absence] {
	return &PostgresRecordStore[*records.Absence]{db: db, table: recordTable[*records.Absence]{
		name:    "absences",
		columns: []string{"student_id", "class_id", "date", "justified", "reason"},
		values: func(r *records.Absence) []any {
			return []any{r.StudentID, r.ClassID, r.Date, r.Justified, r.Reason}
		},
		scan: func(s rowScanner) (*records.Absence, error) {
			r := &records.Absence{}
			err := s.Scan(&r.ID, &r.StudentID, &r.ClassID, &r.Date, &r.Justified, &r.Reason)
			return r, err
		},
		studentCol: "student_id",
		classCol:   "class_id",
		timeCol:    "date",
	}}
}

func NewPostgresGradeStore(db *sql.DB) *PostgresRecordStore[*records.Grade] {
	return &PostgresRecordStore[*records.Grade]{db: db, table: recordTable[*records.Grade]{
		name:    "grades",
		columns: []string{"student_id", "subject_id", "teacher_id", "value", "max_value", "term", "given_at", "comment"},
		values: func(r *records.Grade) []any {
			return []any{r.StudentID, r.SubjectID, r.TeacherID, r.Value, r.MaxValue, r.Term, r.GivenAt, r.Comment}
		},
		scan: func(s rowScanner) (*records.Grade, error) {
			r := &records.Grade{}
			err := s.Scan(&r.ID, &r.StudentID, &r.SubjectID, &r.TeacherID, &r.Value, &r.MaxValue, &r.Term, &r.GivenAt, &r.Comment)
			return r, err
		},
		studentCol: "student_id",
		timeCol:    "given_at",
	}}
}

func NewPostgresFeeStore(db *sql.DB) *PostgresRecordStore[*records.SchoolFee] {
	return &PostgresRecordStore[*records.SchoolFee]{db: db, table: recordTable[*records.SchoolFee]{
		name:    "school_fees",
		columns: []string{"class_id", "label", "amount", "due_date", "school_year"},
		values: func(r *records.SchoolFee) []any {
			return []any{r.ClassID, r.Label, r.Amount, r.DueDate, r.SchoolYear}
		},
		scan: func(s rowScanner) (*records.SchoolFee, error) {
			r := &records.SchoolFee{}
			err := s.Scan(&r.ID, &r.ClassID, &r.Label, &r.Amount, &r.DueDate, &r.SchoolYear)
			return r, err
		},
		classCol: "class_id",
		timeCol:  "due_date",
	}}
}

func NewPostgresPaymentStore(db *sql.DB) *PostgresRecordStore[*records.Payment] {
	return &PostgresRecordStore[*records.Payment]{db: db, table: recordTable[*records.Payment]{
		name:    "payments",
		columns: []string{"student_id", "fee_id", "amount", "paid_at", "method"},
		values: func(r *records.Payment) []any {
			return []any{r.StudentID, r.FeeID, r.Amount, r.PaidAt, r.Method}
		},
		scan: func(s rowScanner) (*records.Payment, error) {
			r := &records.Payment{}
			err := s.Scan(&r.ID, &r.StudentID, &r.FeeID, &r.Amount, &r.PaidAt, &r.Method)
			return r, err
		},
		studentCol: "student_id",
		timeCol:    "paid_at",
	}}
}

func NewPostgresEventStore(db *sql.DB) *PostgresRecordStore[*records.SchoolEvent] {
	return &PostgresRecordStore[*records.SchoolEvent]{db: db, table: recordTable[*records.SchoolEvent]{
		name:    "school_events",
		columns: []string{"title", "description", "class_id", "starts_at", "ends_at"},
		values: func(r *records.SchoolEvent) []any {
			return []any{r.Title, r.Description, r.ClassID, r.StartsAt, r.EndsAt}
		},
		scan: func(s rowScanner) (*records.SchoolEvent, error) {
			r := &records.SchoolEvent{}
			var classID sql.NullInt64
			if err := s.Scan(&r.ID, &r.Title, &r.Description, &classID, &r.StartsAt, &r.EndsAt); err != nil {
				return r, err
			}
			if classID.Valid {
				r.ClassID = &classID.Int64
			}
			return r, nil
		},
		classCol: "class_id",
		timeCol:  "starts_at",
	}}
}
