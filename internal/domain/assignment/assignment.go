package assignment

import (
	"errors"
	"time"
)

var (
	ErrDuplicate = errors.New("teacher is already assigned to this class and subject")
	ErrNotFound  = errors.New("assignment not found")
	// ErrConflict reports a main teacher change that lost a race with another writer.
	ErrConflict = errors.New("main teacher changed concurrently, retry")
	// ErrUnknownReference is returned when the teacher, class or subject of an
	// assignment does not exist.
	ErrUnknownReference = errors.New("teacher, class or subject does not exist")

	ErrDuplicateClass   = errors.New("class already exists for this school year")
	ErrDuplicateSubject = errors.New("subject already exists")
)

// Assignment is a (teacher, class, subject) teaching relationship for a school year.
// At most one assignment per class and school year carries IsMainTeacher.
type Assignment struct {
	ID            int64
	TeacherID     int64
	ClassID       int64
	SubjectID     int64
	IsMainTeacher bool
	SchoolYear    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Key identifies an assignment independently of its row id.
type Key struct {
	TeacherID int64
	ClassID   int64
	SubjectID int64
}

func (a *Assignment) Key() Key {
	return Key{TeacherID: a.TeacherID, ClassID: a.ClassID, SubjectID: a.SubjectID}
}

// View is an assignment joined with the names of its class and subject.
type View struct {
	Assignment
	ClassName   string
	ClassLevel  string
	SubjectName string
}

// Level returns the grade level of the class, falling back to the class name heuristic
// when the class has no explicit level.
func (v *View) Level() string {
	if v.ClassLevel != "" {
		return v.ClassLevel
	}
	return ExtractLevel(v.ClassName)
}

// Class is a group of students for a school year.
type Class struct {
	ID         int64
	Name       string
	Level      string
	SchoolYear string
}

type Subject struct {
	ID   int64
	Name string
}
