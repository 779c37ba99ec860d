package competency

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ApplyFunc turns the locked current state (nil when absent) into the next state and
// the history entry to append.
type ApplyFunc func(current *StudentCompetency) (*StudentCompetency, *HistoryEntry, error)

// Repository persists competencies, student states and their history.
type Repository interface {
	CreateCompetency(ctx context.Context, c *Competency) error
	GetCompetency(ctx context.Context, id int64) (*Competency, error)
	ListCompetencies(ctx context.Context, filter Filter) ([]*Competency, error)

	GetState(ctx context.Context, studentID, competencyID int64) (*StudentCompetency, error)
	GetStateByID(ctx context.Context, id uuid.UUID) (*StudentCompetency, error)
	ListStates(ctx context.Context) ([]*StudentCompetency, error)
	ListStandings(ctx context.Context, studentID int64) ([]*Standing, error)

	// Record locks the state of (studentID, competencyID), runs apply and stores the
	// returned state and history entry in one unit. Returns ErrConflict when another
	// writer created the state concurrently.
	Record(ctx context.Context, studentID, competencyID int64, apply ApplyFunc) (*StudentCompetency, *HistoryEntry, error)

	// ListHistory returns the entries of a state ordered by creation time.
	ListHistory(ctx context.Context, studentCompetencyID uuid.UUID) ([]*HistoryEntry, error)
	ListTransitions(ctx context.Context, studentID int64, since time.Time) ([]*Transition, error)
}
