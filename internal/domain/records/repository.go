package records

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record is implemented by the pointer types of this package.
type Record interface {
	RecordID() uuid.UUID
	SetRecordID(id uuid.UUID)
	Match(f Filter) bool
}

// Filter narrows listings. Zero values are ignored; a filter field that a record type
// does not carry matches nothing.
type Filter struct {
	StudentID int64
	ClassID   int64
	From      time.Time
	To        time.Time
}

func (f Filter) matchStudent(id int64) bool { return f.StudentID == 0 || f.StudentID == id }
func (f Filter) matchClass(id int64) bool   { return f.ClassID == 0 || f.ClassID == id }

func (f Filter) matchTime(t time.Time) bool {
	if !f.From.IsZero() && t.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !t.Before(f.To) {
		return false
	}
	return true
}

// Store is the CRUD contract shared by every record type.
type Store[T Record] interface {
	Create(ctx context.Context, rec T) error
	Get(ctx context.Context, id uuid.UUID) (T, error)
	List(ctx context.Context, filter Filter) ([]T, error)
	Update(ctx context.Context, rec T) error
	Delete(ctx context.Context, id uuid.UUID) error
}
