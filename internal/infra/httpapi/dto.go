package httpapi

import (
	"time"

	"idetude/internal/domain/assignment"
	"idetude/internal/domain/competency"
	"idetude/internal/domain/resource"

	"github.com/google/uuid"
)

type assignmentJSON struct {
	ID            int64     `json:"id"`
	TeacherID     int64     `json:"teacher_id"`
	ClassID       int64     `json:"class_id"`
	SubjectID     int64     `json:"subject_id"`
	IsMainTeacher bool      `json:"is_main_teacher"`
	SchoolYear    string    `json:"school_year"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type assignmentViewJSON struct {
	assignmentJSON
	ClassName   string `json:"class_name"`
	ClassLevel  string `json:"class_level"`
	SubjectName string `json:"subject_name"`
}

type classJSON struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Level      string `json:"level"`
	SchoolYear string `json:"school_year"`
}

type subjectJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type resourceJSON struct {
	ID        int64     `json:"id"`
	TeacherID int64     `json:"teacher_id"`
	Title     string    `json:"title"`
	Downloads int       `json:"downloads"`
	Views     int       `json:"views"`
	CreatedAt time.Time `json:"created_at"`
}

type competencyJSON struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Subject    string    `json:"subject"`
	ClassLevel string    `json:"class_level"`
	MaxLevel   int       `json:"max_level"`
	CreatedBy  int64     `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

type stateJSON struct {
	ID           uuid.UUID `json:"id"`
	StudentID    int64     `json:"student_id"`
	CompetencyID int64     `json:"competency_id"`
	CurrentLevel int       `json:"current_level"`
	EvaluatedAt  time.Time `json:"evaluated_at"`
	EvaluatorID  int64     `json:"evaluator_id"`
	Notes        string    `json:"notes"`
}

type historyJSON struct {
	ID                  uuid.UUID `json:"id"`
	StudentCompetencyID uuid.UUID `json:"student_competency_id"`
	PreviousLevel       int       `json:"previous_level"`
	NewLevel            int       `json:"new_level"`
	Notes               string    `json:"notes"`
	EvaluatorID         int64     `json:"evaluator_id"`
	CreatedAt           time.Time `json:"created_at"`
}

func toAssignmentJSON(a *assignment.Assignment) assignmentJSON {
	return assignmentJSON{
		ID:            a.ID,
		TeacherID:     a.TeacherID,
		ClassID:       a.ClassID,
		SubjectID:     a.SubjectID,
		IsMainTeacher: a.IsMainTeacher,
		SchoolYear:    a.SchoolYear,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func toAssignmentsJSON(in []*assignment.Assignment) []assignmentJSON {
	out := make([]assignmentJSON, len(in))
	for i, a := range in {
		out[i] = toAssignmentJSON(a)
	}
	return out
}

func toViewsJSON(in []*assignment.View) []assignmentViewJSON {
	out := make([]assignmentViewJSON, len(in))
	for i, v := range in {
		out[i] = assignmentViewJSON{
			assignmentJSON: toAssignmentJSON(&v.Assignment),
			ClassName:      v.ClassName,
			ClassLevel:     v.Level(),
			SubjectName:    v.SubjectName,
		}
	}
	return out
}

func toClassJSON(c *assignment.Class) classJSON {
	return classJSON{ID: c.ID, Name: c.Name, Level: c.Level, SchoolYear: c.SchoolYear}
}

func toClassesJSON(in []*assignment.Class) []classJSON {
	out := make([]classJSON, len(in))
	for i, c := range in {
		out[i] = toClassJSON(c)
	}
	return out
}

func toSubjectsJSON(in []*assignment.Subject) []subjectJSON {
	out := make([]subjectJSON, len(in))
	for i, s := range in {
		out[i] = subjectJSON{ID: s.ID, Name: s.Name}
	}
	return out
}

func toResourceJSON(r *resource.Resource) resourceJSON {
	return resourceJSON{
		ID:        r.ID,
		TeacherID: r.TeacherID,
		Title:     r.Title,
		Downloads: r.Downloads,
		Views:     r.Views,
		CreatedAt: r.CreatedAt,
	}
}

func toCompetencyJSON(c *competency.Competency) competencyJSON {
	return competencyJSON{
		ID:         c.ID,
		Name:       c.Name,
		Subject:    c.Subject,
		ClassLevel: c.ClassLevel,
		MaxLevel:   c.MaxLevel,
		CreatedBy:  c.CreatedBy,
		CreatedAt:  c.CreatedAt,
	}
}

func toStateJSON(s *competency.StudentCompetency) stateJSON {
	return stateJSON{
		ID:           s.ID,
		StudentID:    s.StudentID,
		CompetencyID: s.CompetencyID,
		CurrentLevel: s.CurrentLevel,
		EvaluatedAt:  s.EvaluatedAt,
		EvaluatorID:  s.EvaluatorID,
		Notes:        s.Notes,
	}
}

func toHistoryJSON(in []*competency.HistoryEntry) []historyJSON {
	out := make([]historyJSON, len(in))
	for i, h := range in {
		out[i] = historyJSON{
			ID:                  h.ID,
			StudentCompetencyID: h.StudentCompetencyID,
			PreviousLevel:       h.PreviousLevel,
			NewLevel:            h.NewLevel,
			Notes:               h.Notes,
			EvaluatorID:         h.EvaluatorID,
			CreatedAt:           h.CreatedAt,
		}
	}
	return out
}
