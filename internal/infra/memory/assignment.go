package memory

import (
	"context"
	"sort"
	"time"

	"idetude/internal/domain/assignment"
)

type assignmentRepository struct {
	db *DB
}

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(_ context.Context, a *assignment.Assignment) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if r.findLocked(a.Key()) != nil {
		return assignment.ErrDuplicate
	}

	now := time.Now().UTC()
	if a.IsMainTeacher {
		r.clearMainLocked(a.ClassID, a.SchoolYear, now)
	}
	a.ID = r.db.nextID()
	a.CreatedAt, a.UpdatedAt = now, now
	stored := *a
	r.db.assignments[a.ID] = &stored
	return nil
}

func (r *assignmentRepository) Get(_ context.Context, key assignment.Key) (*assignment.Assignment, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	if a := r.findLocked(key); a != nil {
		cp := *a
		return &cp, nil
	}
	return nil, assignment.ErrNotFound
}

func (r *assignmentRepository) Delete(_ context.Context, key assignment.Key) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	a := r.findLocked(key)
	if a == nil {
		return assignment.ErrNotFound
	}
	delete(r.db.assignments, a.ID)
	return nil
}

func (r *assignmentRepository) ToggleMainTeacher(_ context.Context, classID, teacherID int64, schoolYear string) ([]*assignment.Assignment, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	own := r.selectLocked(func(a *assignment.Assignment) bool {
		return a.ClassID == classID && a.TeacherID == teacherID && a.SchoolYear == schoolYear
	})
	if len(own) == 0 {
		return nil, assignment.ErrNotFound
	}

	now := time.Now().UTC()
	wasMain := false
	for _, a := range own {
		wasMain = wasMain || a.IsMainTeacher
	}
	if wasMain {
		for _, a := range own {
			if a.IsMainTeacher {
				a.IsMainTeacher = false
				a.UpdatedAt = now
			}
		}
	} else {
		r.clearMainLocked(classID, schoolYear, now)
		own[0].IsMainTeacher = true
		own[0].UpdatedAt = now
	}

	return copyAssignments(own), nil
}

func (r *assignmentRepository) ListByTeacher(_ context.Context, teacherID int64) ([]*assignment.View, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	rows := r.selectLocked(func(a *assignment.Assignment) bool { return a.TeacherID == teacherID })
	views := make([]*assignment.View, 0, len(rows))
	for _, a := range rows {
		v := &assignment.View{Assignment: *a}
		if c, ok := r.db.classes[a.ClassID]; ok {
			v.ClassName, v.ClassLevel = c.Name, c.Level
		}
		if s, ok := r.db.subjects[a.SubjectID]; ok {
			v.SubjectName = s.Name
		}
		views = append(views, v)
	}
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].ClassName != views[j].ClassName {
			return views[i].ClassName < views[j].ClassName
		}
		return views[i].SubjectName < views[j].SubjectName
	})
	return views, nil
}

func (r *assignmentRepository) ListByClass(_ context.Context, classID int64) ([]*assignment.Assignment, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	return copyAssignments(r.selectLocked(func(a *assignment.Assignment) bool { return a.ClassID == classID })), nil
}

func (r *assignmentRepository) ListAll(_ context.Context) ([]*assignment.Assignment, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	return copyAssignments(r.selectLocked(func(*assignment.Assignment) bool { return true })), nil
}

func (r *assignmentRepository) CreateClass(_ context.Context, c *assignment.Class) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	for _, existing := range r.db.classes {
		if existing.Name == c.Name && existing.SchoolYear == c.SchoolYear {
			return assignment.ErrDuplicateClass
		}
	}
	c.ID = r.db.nextID()
	stored := *c
	r.db.classes[c.ID] = &stored
	return nil
}

func (r *assignmentRepository) ListClasses(_ context.Context, schoolYear string) ([]*assignment.Class, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	out := make([]*assignment.Class, 0)
	for _, c := range r.db.classes {
		if schoolYear == "" || c.SchoolYear == schoolYear {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].SchoolYear < out[j].SchoolYear
	})
	return out, nil
}

func (r *assignmentRepository) CreateSubject(_ context.Context, s *assignment.Subject) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	for _, existing := range r.db.subjects {
		if existing.Name == s.Name {
			return assignment.ErrDuplicateSubject
		}
	}
	s.ID = r.db.nextID()
	stored := *s
	r.db.subjects[s.ID] = &stored
	return nil
}

func (r *assignmentRepository) ListSubjects(_ context.Context) ([]*assignment.Subject, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	out := make([]*assignment.Subject, 0, len(r.db.subjects))
	for _, s := range r.db.subjects {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *assignmentRepository) findLocked(key assignment.Key) *assignment.Assignment {
	for _, a := range r.db.assignments {
		if a.Key() == key {
			return a
		}
	}
	return nil
}

// selectLocked returns the stored rows matching keep ordered by id.
func (r *assignmentRepository) selectLocked(keep func(*assignment.Assignment) bool) []*assignment.Assignment {
	var out []*assignment.Assignment
	for _, a := range r.db.assignments {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *assignmentRepository) clearMainLocked(classID int64, schoolYear string, now time.Time) {
	for _, a := range r.db.assignments {
		if a.ClassID == classID && a.SchoolYear == schoolYear && a.IsMainTeacher {
			a.IsMainTeacher = false
			a.UpdatedAt = now
		}
	}
}

func copyAssignments(in []*assignment.Assignment) []*assignment.Assignment {
	out := make([]*assignment.Assignment, len(in))
	for i, a := range in {
		cp := *a
		out[i] = &cp
	}
	return out
}
