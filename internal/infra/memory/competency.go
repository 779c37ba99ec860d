package memory

import (
	"context"
	"sort"
	"time"

	"idetude/internal/domain/competency"

	"github.com/google/uuid"
)

type competencyRepository struct {
	db *DB
}

func NewCompetencyRepository(db *DB) competency.Repository {
	return &competencyRepository{db: db}
}

func (r *competencyRepository) CreateCompetency(_ context.Context, c *competency.Competency) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	c.ID = r.db.nextID()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	stored := *c
	r.db.competencies[c.ID] = &stored
	return nil
}

func (r *competencyRepository) GetCompetency(_ context.Context, id int64) (*competency.Competency, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	if c, ok := r.db.competencies[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, competency.ErrNotFound
}

func (r *competencyRepository) ListCompetencies(_ context.Context, filter competency.Filter) ([]*competency.Competency, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	var out []*competency.Competency
	for _, c := range r.db.competencies {
		if filter.Subject != "" && c.Subject != filter.Subject {
			continue
		}
		if filter.ClassLevel != "" && c.ClassLevel != filter.ClassLevel {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Subject != out[j].Subject {
			return out[i].Subject < out[j].Subject
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *competencyRepository) GetState(_ context.Context, studentID, competencyID int64) (*competency.StudentCompetency, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	if s := r.findStateLocked(studentID, competencyID); s != nil {
		cp := *s
		return &cp, nil
	}
	return nil, competency.ErrStateNotFound
}

func (r *competencyRepository) GetStateByID(_ context.Context, id uuid.UUID) (*competency.StudentCompetency, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	if s, ok := r.db.states[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, competency.ErrStateNotFound
}

func (r *competencyRepository) ListStates(_ context.Context) ([]*competency.StudentCompetency, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	out := make([]*competency.StudentCompetency, 0, len(r.db.states))
	for _, s := range r.db.states {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *competencyRepository) ListStandings(_ context.Context, studentID int64) ([]*competency.Standing, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	var out []*competency.Standing
	for _, s := range r.db.states {
		if s.StudentID != studentID {
			continue
		}
		c, ok := r.db.competencies[s.CompetencyID]
		if !ok {
			continue
		}
		out = append(out, &competency.Standing{State: *s, Competency: *c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Competency.ID < out[j].Competency.ID })
	return out, nil
}

func (r *competencyRepository) Record(_ context.Context, studentID, competencyID int64, apply competency.ApplyFunc) (*competency.StudentCompetency, *competency.HistoryEntry, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	var current *competency.StudentCompetency
	if s := r.findStateLocked(studentID, competencyID); s != nil {
		cp := *s
		current = &cp
	}

	next, entry, err := apply(current)
	if err != nil {
		return nil, nil, err
	}

	state := *next
	r.db.states[state.ID] = &state
	stored := *entry
	r.db.history = append(r.db.history, &stored)
	return next, entry, nil
}

func (r *competencyRepository) ListHistory(_ context.Context, id uuid.UUID) ([]*competency.HistoryEntry, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	var out []*competency.HistoryEntry
	for _, h := range r.db.history {
		if h.StudentCompetencyID == id {
			cp := *h
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *competencyRepository) ListTransitions(_ context.Context, studentID int64, since time.Time) ([]*competency.Transition, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	var out []*competency.Transition
	for _, h := range r.db.history {
		if h.CreatedAt.Before(since) {
			continue
		}
		s, ok := r.db.states[h.StudentCompetencyID]
		if !ok || s.StudentID != studentID {
			continue
		}
		c, ok := r.db.competencies[s.CompetencyID]
		if !ok {
			continue
		}
		out = append(out, &competency.Transition{Entry: *h, Subject: c.Subject, MaxLevel: c.MaxLevel})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Entry.CreatedAt.Before(out[j].Entry.CreatedAt) })
	return out, nil
}

func (r *competencyRepository) findStateLocked(studentID, competencyID int64) *competency.StudentCompetency {
	for _, s := range r.db.states {
		if s.StudentID == studentID && s.CompetencyID == competencyID {
			return s
		}
	}
	return nil
}
