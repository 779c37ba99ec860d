package resource

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("resource not found")
	// ErrUnknownTeacher is returned when a resource is shared by a teacher that does
	// not exist.
	ErrUnknownTeacher = errors.New("resource teacher does not exist")
)

// Resource is a teaching document shared by a teacher.
type Resource struct {
	ID        int64
	TeacherID int64
	Title     string
	Downloads int
	Views     int
	CreatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, r *Resource) error
	// AddUsage increments the counters of a resource and returns it updated.
	AddUsage(ctx context.Context, id int64, downloads, views int) (*Resource, error)
	// ListAll returns every resource in creation order.
	ListAll(ctx context.Context) ([]*Resource, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]*Resource, error)
}
