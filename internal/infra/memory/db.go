// Package memory keeps every repository in process memory. It backs the development
// mode (STORAGE=memory) and the service tests. One lock guards all tables so that
// multi-row operations are atomic.
package memory

import (
	"sync"

	"idetude/internal/domain/assignment"
	"idetude/internal/domain/competency"
	"idetude/internal/domain/resource"
	"idetude/internal/domain/teacher"

	"github.com/google/uuid"
)

type DB struct {
	mutex sync.RWMutex
	seq   int64

	teachers     map[int64]*teacher.Teacher
	classes      map[int64]*assignment.Class
	subjects     map[int64]*assignment.Subject
	assignments  map[int64]*assignment.Assignment
	competencies map[int64]*competency.Competency
	states       map[uuid.UUID]*competency.StudentCompetency
	history      []*competency.HistoryEntry
	resources    map[int64]*resource.Resource
}

func Open() *DB {
	return &DB{
		teachers:     make(map[int64]*teacher.Teacher),
		classes:      make(map[int64]*assignment.Class),
		subjects:     make(map[int64]*assignment.Subject),
		assignments:  make(map[int64]*assignment.Assignment),
		competencies: make(map[int64]*competency.Competency),
		states:       make(map[uuid.UUID]*competency.StudentCompetency),
		resources:    make(map[int64]*resource.Resource),
	}
}

// nextID must be called with the write lock held.
func (db *DB) nextID() int64 {
	db.seq++
	return db.seq
}
