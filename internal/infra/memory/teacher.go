package memory

import (
	"context"
	"sort"
	"time"

	"idetude/internal/domain/teacher"
)

type teacherRepository struct {
	db *DB
}

func NewTeacherRepository(db *DB) teacher.Repository {
	return &teacherRepository{db: db}
}

func (r *teacherRepository) Create(_ context.Context, t *teacher.Teacher) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	for _, existing := range r.db.teachers {
		if existing.TelegramID == t.TelegramID {
			return teacher.ErrDuplicateTelegramID
		}
	}
	now := time.Now().UTC()
	t.ID = r.db.nextID()
	t.CreatedAt, t.UpdatedAt = now, now
	stored := *t
	r.db.teachers[t.ID] = &stored
	return nil
}

func (r *teacherRepository) GetByID(_ context.Context, id int64) (*teacher.Teacher, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	if t, ok := r.db.teachers[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, teacher.ErrNotFound
}

func (r *teacherRepository) GetByTelegramID(_ context.Context, telegramID int64) (*teacher.Teacher, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	for _, t := range r.db.teachers {
		if t.TelegramID == telegramID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, teacher.ErrNotFound
}

func (r *teacherRepository) Update(_ context.Context, t *teacher.Teacher) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	stored, ok := r.db.teachers[t.ID]
	if !ok {
		return teacher.ErrNotFound
	}
	stored.FirstName = t.FirstName
	stored.LastName = t.LastName
	stored.IsActive = t.IsActive
	stored.UpdatedAt = time.Now().UTC()
	t.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *teacherRepository) list(keep func(*teacher.Teacher) bool, less func(a, b *teacher.Teacher) bool) []*teacher.Teacher {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	out := make([]*teacher.Teacher, 0, len(r.db.teachers))
	for _, t := range r.db.teachers {
		if keep(t) {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (r *teacherRepository) ListActive(_ context.Context) ([]*teacher.Teacher, error) {
	return r.list(
		func(t *teacher.Teacher) bool { return t.IsActive },
		func(a, b *teacher.Teacher) bool {
			if a.FirstName != b.FirstName {
				return a.FirstName < b.FirstName
			}
			return a.LastName.String < b.LastName.String
		},
	), nil
}

func (r *teacherRepository) ListAll(_ context.Context) ([]*teacher.Teacher, error) {
	return r.list(
		func(*teacher.Teacher) bool { return true },
		func(a, b *teacher.Teacher) bool { return a.ID < b.ID },
	), nil
}
