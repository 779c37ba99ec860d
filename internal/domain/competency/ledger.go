package competency

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Evaluation is a request to set a student's level for a competency.
type Evaluation struct {
	StudentID    int64
	CompetencyID int64
	Level        int
	Notes        string
	EvaluatorID  int64
	// ExpectedLevel, when set, must match the level currently stored or the evaluation
	// is rejected with ErrConflict.
	ExpectedLevel *int
}

// CheckLevel reports ErrInvalidLevel when level is outside [0, c.MaxLevel].
func (c *Competency) CheckLevel(level int) error {
	if level < 0 || level > c.MaxLevel {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidLevel, level, c.MaxLevel)
	}
	return nil
}

// Apply computes the next state and the history entry for an evaluation. current is nil
// when the student has never been evaluated on the competency. Apply is the only place
// where a StudentCompetency level changes; repositories persist both results together.
func Apply(c *Competency, current *StudentCompetency, ev Evaluation, now time.Time) (*StudentCompetency, *HistoryEntry, error) {
	if err := c.CheckLevel(ev.Level); err != nil {
		return nil, nil, err
	}

	previous := 0
	if current != nil {
		previous = current.CurrentLevel
	}
	if ev.ExpectedLevel != nil && *ev.ExpectedLevel != previous {
		return nil, nil, fmt.Errorf("%w: expected level %d, found %d", ErrConflict, *ev.ExpectedLevel, previous)
	}

	var next StudentCompetency
	if current != nil {
		next = *current
	} else {
		next = StudentCompetency{
			ID:           uuid.New(),
			StudentID:    ev.StudentID,
			CompetencyID: c.ID,
			CreatedAt:    now,
		}
	}
	next.CurrentLevel = ev.Level
	next.Notes = ev.Notes
	next.EvaluatorID = ev.EvaluatorID
	next.EvaluatedAt = now
	next.UpdatedAt = now

	entry := &HistoryEntry{
		ID:                  uuid.New(),
		StudentCompetencyID: next.ID,
		PreviousLevel:       previous,
		NewLevel:            ev.Level,
		Notes:               ev.Notes,
		EvaluatorID:         ev.EvaluatorID,
		CreatedAt:           now,
	}
	return &next, entry, nil
}

// ChainError describes where a history chain stops matching its state.
type ChainError struct {
	StudentCompetencyID uuid.UUID
	Index               int
	Reason              string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("history of %s broken at entry %d: %s", e.StudentCompetencyID, e.Index, e.Reason)
}

// VerifyChain checks that entries, ordered by time, start from level 0, link each
// newLevel to the next previousLevel and end at the state's current level.
func VerifyChain(state *StudentCompetency, entries []*HistoryEntry) error {
	if len(entries) == 0 {
		return &ChainError{StudentCompetencyID: state.ID, Index: 0, Reason: "no history entries"}
	}
	if entries[0].PreviousLevel != 0 {
		return &ChainError{StudentCompetencyID: state.ID, Index: 0,
			Reason: fmt.Sprintf("first previous level is %d", entries[0].PreviousLevel)}
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].PreviousLevel != entries[i-1].NewLevel {
			return &ChainError{StudentCompetencyID: state.ID, Index: i,
				Reason: fmt.Sprintf("previous level %d does not follow %d", entries[i].PreviousLevel, entries[i-1].NewLevel)}
		}
	}
	last := entries[len(entries)-1]
	if last.NewLevel != state.CurrentLevel {
		return &ChainError{StudentCompetencyID: state.ID, Index: len(entries) - 1,
			Reason: fmt.Sprintf("last level %d differs from current level %d", last.NewLevel, state.CurrentLevel)}
	}
	return nil
}
