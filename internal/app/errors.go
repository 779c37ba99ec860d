package app

import (
	"errors"
	"fmt"

	"idetude/internal/domain/assignment"
	"idetude/internal/domain/competency"
	"idetude/internal/domain/records"
	"idetude/internal/domain/resource"
	"idetude/internal/domain/teacher"
)

var (
	ErrAdminNotAuthorized     = errors.New("performing user is not authorized as an admin")
	ErrTeacherAlreadyExists   = errors.New("teacher with this Telegram ID already exists")
	ErrTeacherAlreadyInactive = errors.New("teacher is already inactive")

	ErrDuplicateAssignment = assignment.ErrDuplicate
	ErrInvalidLevel        = competency.ErrInvalidLevel
	ErrConflict            = competency.ErrConflict
	ErrMainTeacherConflict = assignment.ErrConflict
	ErrNotFound            = errors.New("not found")
	ErrStoreFailure        = errors.New("store failure")
)

// ErrorKind classifies errors for user-facing surfaces.
type ErrorKind string

const (
	KindDuplicateAssignment ErrorKind = "duplicate_assignment"
	KindInvalidLevel        ErrorKind = "invalid_level"
	KindNotFound            ErrorKind = "not_found"
	KindConflict            ErrorKind = "conflict"
	KindDuplicate           ErrorKind = "duplicate"
	KindValidation          ErrorKind = "validation"
	KindUnauthorized        ErrorKind = "unauthorized"
	KindStoreFailure        ErrorKind = "store_failure"
)

// StoreError wraps an opaque backend failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreFailure }

// notFoundError keeps the domain sentinel in the chain and adds ErrNotFound.
type notFoundError struct{ err error }

func (e notFoundError) Error() string        { return e.err.Error() }
func (e notFoundError) Unwrap() error        { return e.err }
func (e notFoundError) Is(target error) bool { return target == ErrNotFound }

// classify turns a repository error into the service taxonomy: known domain errors pass
// through (missing entities additionally match ErrNotFound), anything else becomes a
// StoreError.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isMissing(err):
		return notFoundError{err: err}
	case errors.Is(err, assignment.ErrDuplicate),
		errors.Is(err, assignment.ErrDuplicateClass),
		errors.Is(err, assignment.ErrDuplicateSubject),
		errors.Is(err, assignment.ErrConflict),
		errors.Is(err, competency.ErrInvalidLevel),
		errors.Is(err, competency.ErrConflict),
		errors.Is(err, teacher.ErrDuplicateTelegramID):
		return err
	default:
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			return err
		}
		return &StoreError{Op: op, Err: err}
	}
}

// isMissing reports whether err names an entity that does not exist.
func isMissing(err error) bool {
	for _, target := range []error{
		ErrNotFound,
		assignment.ErrNotFound,
		assignment.ErrUnknownReference,
		competency.ErrNotFound,
		competency.ErrStateNotFound,
		records.ErrNotFound,
		resource.ErrNotFound,
		resource.ErrUnknownTeacher,
		teacher.ErrNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Kind reports the category of err.
func Kind(err error) ErrorKind {
	var vErr *ValidationError
	switch {
	case errors.Is(err, ErrDuplicateAssignment):
		return KindDuplicateAssignment
	case errors.Is(err, ErrInvalidLevel):
		return KindInvalidLevel
	case errors.Is(err, assignment.ErrDuplicateClass), errors.Is(err, assignment.ErrDuplicateSubject):
		return KindDuplicate
	case errors.Is(err, ErrConflict), errors.Is(err, ErrMainTeacherConflict):
		return KindConflict
	case isMissing(err):
		return KindNotFound
	case errors.As(err, &vErr):
		return KindValidation
	case errors.Is(err, ErrAdminNotAuthorized):
		return KindUnauthorized
	default:
		return KindStoreFailure
	}
}
