package memory

import (
	"context"
	"sort"
	"time"

	"idetude/internal/domain/resource"
)

type resourceRepository struct {
	db *DB
}

func NewResourceRepository(db *DB) resource.Repository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) Create(_ context.Context, res *resource.Resource) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	res.ID = r.db.nextID()
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	stored := *res
	r.db.resources[res.ID] = &stored
	return nil
}

func (r *resourceRepository) AddUsage(_ context.Context, id int64, downloads, views int) (*resource.Resource, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	res, ok := r.db.resources[id]
	if !ok {
		return nil, resource.ErrNotFound
	}
	res.Downloads += downloads
	res.Views += views
	cp := *res
	return &cp, nil
}

func (r *resourceRepository) ListAll(_ context.Context) ([]*resource.Resource, error) {
	return r.list(func(*resource.Resource) bool { return true }), nil
}

func (r *resourceRepository) ListByTeacher(_ context.Context, teacherID int64) ([]*resource.Resource, error) {
	return r.list(func(res *resource.Resource) bool { return res.TeacherID == teacherID }), nil
}

func (r *resourceRepository) list(keep func(*resource.Resource) bool) []*resource.Resource {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	var out []*resource.Resource
	for _, res := range r.db.resources {
		if keep(res) {
			cp := *res
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
