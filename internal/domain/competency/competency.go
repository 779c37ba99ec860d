package competency

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxLevel is the conventional top of the mastery scale.
const DefaultMaxLevel = 4

var (
	ErrNotFound      = errors.New("competency not found")
	ErrStateNotFound = errors.New("student competency not found")
	ErrInvalidLevel  = errors.New("level is outside the competency scale")
	ErrConflict      = errors.New("student competency was changed concurrently")
)

// Competency is a gradable skill scoped to a subject and class level, scored on [0, MaxLevel].
type Competency struct {
	ID         int64
	Name       string
	Subject    string
	ClassLevel string
	MaxLevel   int
	CreatedBy  int64
	CreatedAt  time.Time
}

// StudentCompetency is the current mastery level of a student for a competency.
type StudentCompetency struct {
	ID           uuid.UUID
	StudentID    int64
	CompetencyID int64
	CurrentLevel int
	EvaluatedAt  time.Time
	EvaluatorID  int64
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HistoryEntry is an immutable record of one level transition.
type HistoryEntry struct {
	ID                  uuid.UUID
	StudentCompetencyID uuid.UUID
	PreviousLevel       int
	NewLevel            int
	Notes               string
	EvaluatorID         int64
	CreatedAt           time.Time
}

// Standing is a student's state joined with the competency it refers to.
type Standing struct {
	State      StudentCompetency
	Competency Competency
}

// Transition is a history entry joined with the scale of its competency.
type Transition struct {
	Entry    HistoryEntry
	Subject  string
	MaxLevel int
}

// Filter narrows competency listings. Zero fields are ignored.
type Filter struct {
	Subject    string
	ClassLevel string
}
