package assignment

import "context"

// Repository persists assignments and the classes and subjects they point to.
// Implementations must apply Create and ToggleMainTeacher atomically so that a class
// never ends up with two main teachers in a school year.
type Repository interface {
	// Create inserts a. When a.IsMainTeacher is set, the flag is cleared on every other
	// assignment of the same class and school year first. Returns ErrDuplicate when the
	// (teacher, class, subject) triple already exists, ErrUnknownReference when one of
	// them does not exist and ErrConflict when a concurrent writer took the main role.
	Create(ctx context.Context, a *Assignment) error
	Get(ctx context.Context, key Key) (*Assignment, error)
	// Delete removes the assignment identified by key or returns ErrNotFound.
	Delete(ctx context.Context, key Key) error
	// ToggleMainTeacher flips the main teacher flag of teacherID in classID for
	// schoolYear and returns the teacher's assignments of that class and year after the
	// change. ErrNotFound when the teacher has no assignment there.
	ToggleMainTeacher(ctx context.Context, classID, teacherID int64, schoolYear string) ([]*Assignment, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]*View, error)
	ListByClass(ctx context.Context, classID int64) ([]*Assignment, error)
	ListAll(ctx context.Context) ([]*Assignment, error)

	// CreateClass returns ErrDuplicateClass when the name is taken for the school year.
	CreateClass(ctx context.Context, c *Class) error
	// ListClasses lists the classes of schoolYear ordered by name, every class when
	// schoolYear is empty.
	ListClasses(ctx context.Context, schoolYear string) ([]*Class, error)
	// CreateSubject returns ErrDuplicateSubject when the name is taken.
	CreateSubject(ctx context.Context, s *Subject) error
	ListSubjects(ctx context.Context) ([]*Subject, error)
}
