// Package records holds the plain school records managed next to assignments and
// competencies: absences, grades, fees, payments and calendar events.
package records

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("record not found")

// Absence of a student from a class on a given day.
type Absence struct {
	ID        uuid.UUID `json:"id"`
	StudentID int64     `json:"student_id" validate:"required,gt=0"`
	ClassID   int64     `json:"class_id" validate:"required,gt=0"`
	Date      time.Time `json:"date" validate:"required"`
	Justified bool      `json:"justified"`
	Reason    string    `json:"reason" validate:"max=500"`
}

type Grade struct {
	ID        uuid.UUID `json:"id"`
	StudentID int64     `json:"student_id" validate:"required,gt=0"`
	SubjectID int64     `json:"subject_id" validate:"required,gt=0"`
	TeacherID int64     `json:"teacher_id" validate:"required,gt=0"`
	Value     float64   `json:"value" validate:"gte=0,ltefield=MaxValue"`
	MaxValue  float64   `json:"max_value" validate:"required,gt=0"`
	Term      string    `json:"term" validate:"required,max=32"`
	GivenAt   time.Time `json:"given_at" validate:"required"`
	Comment   string    `json:"comment" validate:"max=500"`
}

// SchoolFee is an amount due by every student of a class. Amounts are in minor units.
type SchoolFee struct {
	ID         uuid.UUID `json:"id"`
	ClassID    int64     `json:"class_id" validate:"required,gt=0"`
	Label      string    `json:"label" validate:"required,max=120"`
	Amount     int64     `json:"amount" validate:"required,gt=0"`
	DueDate    time.Time `json:"due_date" validate:"required"`
	SchoolYear string    `json:"school_year" validate:"required,schoolyear"`
}

type Payment struct {
	ID        uuid.UUID `json:"id"`
	StudentID int64     `json:"student_id" validate:"required,gt=0"`
	FeeID     uuid.UUID `json:"fee_id" validate:"required"`
	Amount    int64     `json:"amount" validate:"required,gt=0"`
	PaidAt    time.Time `json:"paid_at" validate:"required"`
	Method    string    `json:"method" validate:"required,oneof=cash transfer mobile_money card"`
}

// SchoolEvent is a calendar entry; a nil ClassID means the whole school.
type SchoolEvent struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	ClassID     *int64    `json:"class_id,omitempty" validate:"omitempty,gt=0"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required,gtefield=StartsAt"`
}

func (r *Absence) RecordID() uuid.UUID          { return r.ID }
func (r *Absence) SetRecordID(id uuid.UUID)     { r.ID = id }
func (r *Grade) RecordID() uuid.UUID            { return r.ID }
func (r *Grade) SetRecordID(id uuid.UUID)       { r.ID = id }
func (r *SchoolFee) RecordID() uuid.UUID        { return r.ID }
func (r *SchoolFee) SetRecordID(id uuid.UUID)   { r.ID = id }
func (r *Payment) RecordID() uuid.UUID          { return r.ID }
func (r *Payment) SetRecordID(id uuid.UUID)     { r.ID = id }
func (r *SchoolEvent) RecordID() uuid.UUID      { return r.ID }
func (r *SchoolEvent) SetRecordID(id uuid.UUID) { r.ID = id }

// Match reports whether the record satisfies f. Used by in-memory stores; SQL stores
// translate the filter into a WHERE clause.
func (r *Absence) Match(f Filter) bool {
	return f.matchStudent(r.StudentID) && f.matchClass(r.ClassID) && f.matchTime(r.Date)
}

func (r *Grade) Match(f Filter) bool {
	return f.matchStudent(r.StudentID) && f.ClassID == 0 && f.matchTime(r.GivenAt)
}

func (r *SchoolFee) Match(f Filter) bool {
	return f.StudentID == 0 && f.matchClass(r.ClassID) && f.matchTime(r.DueDate)
}

func (r *Payment) Match(f Filter) bool {
	return f.matchStudent(r.StudentID) && f.ClassID == 0 && f.matchTime(r.PaidAt)
}

func (r *SchoolEvent) Match(f Filter) bool {
	if f.StudentID != 0 {
		return false
	}
	if f.ClassID != 0 && (r.ClassID == nil || *r.ClassID != f.ClassID) {
		return false
	}
	return f.matchTime(r.StartsAt)
}
