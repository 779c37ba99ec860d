package memory

import (
	"context"
	"sort"
	"sync"

	"idetude/internal/domain/records"

	"github.com/google/uuid"
)

type recordEntry[T records.Record] struct {
	seq int64
	rec T
}

type recordStore[T records.Record] struct {
	mutex sync.RWMutex
	seq   int64
	rows  map[uuid.UUID]recordEntry[T]
	clone func(T) T
}

// NewRecordStore keeps records of one type. clone must return a deep enough copy for the
// store to be unaffected by later changes to the caller's value.
func NewRecordStore[T records.Record](clone func(T) T) records.Store[T] {
	return &recordStore[T]{
		rows:  make(map[uuid.UUID]recordEntry[T]),
		clone: clone,
	}
}

// Copy is a clone function for records without reference fields.
func Copy[V any](p *V) *V {
	cp := *p
	return &cp
}

func (s *recordStore[T]) Create(_ context.Context, rec T) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if rec.RecordID() == uuid.Nil {
		rec.SetRecordID(uuid.New())
	}
	s.seq++
	s.rows[rec.RecordID()] = recordEntry[T]{seq: s.seq, rec: s.clone(rec)}
	return nil
}

func (s *recordStore[T]) Get(_ context.Context, id uuid.UUID) (T, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	e, ok := s.rows[id]
	if !ok {
		var zero T
		return zero, records.ErrNotFound
	}
	return s.clone(e.rec), nil
}

func (s *recordStore[T]) List(_ context.Context, filter records.Filter) ([]T, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	entries := make([]recordEntry[T], 0, len(s.rows))
	for _, e := range s.rows {
		if e.rec.Match(filter) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := make([]T, len(entries))
	for i, e := range entries {
		out[i] = s.clone(e.rec)
	}
	return out, nil
}

func (s *recordStore[T]) Update(_ context.Context, rec T) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	e, ok := s.rows[rec.RecordID()]
	if !ok {
		return records.ErrNotFound
	}
	e.rec = s.clone(rec)
	s.rows[rec.RecordID()] = e
	return nil
}

func (s *recordStore[T]) Delete(_ context.Context, id uuid.UUID) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, ok := s.rows[id]; !ok {
		return records.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

// CloneEvent copies the optional class id so callers cannot alias the stored value.
func CloneEvent(e *records.SchoolEvent) *records.SchoolEvent {
	cp := *e
	if e.ClassID != nil {
		id := *e.ClassID
		cp.ClassID = &id
	}
	return &cp
}
