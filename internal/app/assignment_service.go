package app

import (
	"context"
	"fmt"
	"strings"

	"idetude/internal/domain/assignment"

	"github.com/sirupsen/logrus"
)

// NewAssignment is the input of AssignmentService.AddAssignment.
type NewAssignment struct {
	TeacherID     int64  `json:"teacher_id" validate:"required,gt=0"`
	ClassID       int64  `json:"class_id" validate:"required,gt=0"`
	SubjectID     int64  `json:"subject_id" validate:"required,gt=0"`
	IsMainTeacher bool   `json:"is_main_teacher"`
	SchoolYear    string `json:"school_year" validate:"omitempty,schoolyear"`
}

// NewClass is the input of AssignmentService.AddClass.
type NewClass struct {
	Name       string `json:"name" validate:"required,max=100"`
	Level      string `json:"level" validate:"max=30"`
	SchoolYear string `json:"school_year" validate:"omitempty,schoolyear"`
}

type NewSubject struct {
	Name string `json:"name" validate:"required,max=100"`
}

// TeacherOverview is what a teacher's dashboard shows about their assignments.
type TeacherOverview struct {
	Assignments []*assignment.View
	Subjects    []string
	Levels      []string
}

// AssignmentService manages which teacher teaches which subject in which class and who
// is the main teacher of each class.
type AssignmentService struct {
	repo       assignment.Repository
	notifier   Notifier
	schoolYear string
	logger     *logrus.Entry
}

func NewAssignmentService(repo assignment.Repository, notifier Notifier, schoolYear string, logger *logrus.Entry) *AssignmentService {
	return &AssignmentService{
		repo:       repo,
		notifier:   notifier,
		schoolYear: schoolYear,
		logger:     logger,
	}
}

// AddAssignment creates the assignment and returns the stored row. A main-teacher
// assignment replaces the previous main teacher of the class.
func (s *AssignmentService) AddAssignment(ctx context.Context, na NewAssignment) (*assignment.Assignment, error) {
	if err := validateStruct(na); err != nil {
		return nil, err
	}
	year := na.SchoolYear
	if year == "" {
		year = s.schoolYear
	}
	a := &assignment.Assignment{
		TeacherID:     na.TeacherID,
		ClassID:       na.ClassID,
		SubjectID:     na.SubjectID,
		IsMainTeacher: na.IsMainTeacher,
		SchoolYear:    year,
	}
	log := s.logger.WithFields(logrus.Fields{
		"teacher_id": a.TeacherID,
		"class_id":   a.ClassID,
		"subject_id": a.SubjectID,
		"main":       a.IsMainTeacher,
	})

	if err := s.repo.Create(ctx, a); err != nil {
		err = classify("create assignment", err)
		log.WithError(err).Warn("Assignment not created")
		return nil, err
	}
	log.WithField("assignment_id", a.ID).Info("Assignment created")

	msg := fmt.Sprintf("Vous avez été affecté(e) à la classe %d pour la matière %d (%s).", a.ClassID, a.SubjectID, a.SchoolYear)
	if a.IsMainTeacher {
		msg += " Vous êtes professeur principal de cette classe."
	}
	s.notifier.NotifyTeacher(ctx, a.TeacherID, msg)
	return a, nil
}

// RemoveAssignment deletes the assignment. ErrNotFound leaves the registry unchanged.
func (s *AssignmentService) RemoveAssignment(ctx context.Context, teacherID, classID, subjectID int64) error {
	key := assignment.Key{TeacherID: teacherID, ClassID: classID, SubjectID: subjectID}
	log := s.logger.WithFields(logrus.Fields{"teacher_id": teacherID, "class_id": classID, "subject_id": subjectID})
	if err := s.repo.Delete(ctx, key); err != nil {
		err = classify("delete assignment", err)
		log.WithError(err).Warn("Assignment not removed")
		return err
	}
	log.Info("Assignment removed")
	return nil
}

// ToggleMainTeacher makes teacherID the main teacher of classID for the current school
// year, or removes the role when the teacher already holds it. The previous main teacher
// loses the role.
func (s *AssignmentService) ToggleMainTeacher(ctx context.Context, classID, teacherID int64) ([]*assignment.Assignment, error) {
	log := s.logger.WithFields(logrus.Fields{"teacher_id": teacherID, "class_id": classID, "school_year": s.schoolYear})
	updated, err := s.repo.ToggleMainTeacher(ctx, classID, teacherID, s.schoolYear)
	if err != nil {
		err = classify("toggle main teacher", err)
		log.WithError(err).Warn("Main teacher not toggled")
		return nil, err
	}

	isMain := false
	for _, a := range updated {
		if a.IsMainTeacher {
			isMain = true
			break
		}
	}
	log.WithField("main", isMain).Info("Main teacher toggled")
	if isMain {
		s.notifier.NotifyTeacher(ctx, teacherID, fmt.Sprintf("Vous êtes désormais professeur principal de la classe %d.", classID))
	} else {
		s.notifier.NotifyTeacher(ctx, teacherID, fmt.Sprintf("Vous n'êtes plus professeur principal de la classe %d.", classID))
	}
	return updated, nil
}

// AddClass registers a class. The school year defaults to the current one.
func (s *AssignmentService) AddClass(ctx context.Context, nc NewClass) (*assignment.Class, error) {
	nc.Name = strings.TrimSpace(nc.Name)
	nc.Level = strings.TrimSpace(nc.Level)
	if err := validateStruct(nc); err != nil {
		return nil, err
	}
	c := &assignment.Class{Name: nc.Name, Level: nc.Level, SchoolYear: nc.SchoolYear}
	if c.SchoolYear == "" {
		c.SchoolYear = s.schoolYear
	}
	if err := s.repo.CreateClass(ctx, c); err != nil {
		return nil, classify("create class", err)
	}
	s.logger.WithFields(logrus.Fields{"class_id": c.ID, "name": c.Name, "school_year": c.SchoolYear}).Info("Class created")
	return c, nil
}

// ListClasses lists the classes of schoolYear, of the current year when empty.
func (s *AssignmentService) ListClasses(ctx context.Context, schoolYear string) ([]*assignment.Class, error) {
	if schoolYear == "" {
		schoolYear = s.schoolYear
	}
	classes, err := s.repo.ListClasses(ctx, schoolYear)
	if err != nil {
		return nil, classify("list classes", err)
	}
	return classes, nil
}

func (s *AssignmentService) AddSubject(ctx context.Context, ns NewSubject) (*assignment.Subject, error) {
	ns.Name = strings.TrimSpace(ns.Name)
	if err := validateStruct(ns); err != nil {
		return nil, err
	}
	subject := &assignment.Subject{Name: ns.Name}
	if err := s.repo.CreateSubject(ctx, subject); err != nil {
		return nil, classify("create subject", err)
	}
	s.logger.WithFields(logrus.Fields{"subject_id": subject.ID, "name": subject.Name}).Info("Subject created")
	return subject, nil
}

func (s *AssignmentService) ListSubjects(ctx context.Context) ([]*assignment.Subject, error) {
	subjects, err := s.repo.ListSubjects(ctx)
	if err != nil {
		return nil, classify("list subjects", err)
	}
	return subjects, nil
}

// ListAssignmentsForTeacher returns the teacher's assignments ordered by class.
func (s *AssignmentService) ListAssignmentsForTeacher(ctx context.Context, teacherID int64) ([]*assignment.View, error) {
	views, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, classify("list assignments", err)
	}
	return views, nil
}

// Overview lists the teacher's assignments with the subjects and levels derived from them.
func (s *AssignmentService) Overview(ctx context.Context, teacherID int64) (*TeacherOverview, error) {
	views, err := s.ListAssignmentsForTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return &TeacherOverview{
		Assignments: views,
		Subjects:    SubjectsTaught(views),
		Levels:      LevelsTaught(views),
	}, nil
}

// SubjectsTaught returns the distinct subject names in first-seen order.
func SubjectsTaught(views []*assignment.View) []string {
	seen := make(map[int64]bool)
	subjects := make([]string, 0)
	for _, v := range views {
		if seen[v.SubjectID] {
			continue
		}
		seen[v.SubjectID] = true
		subjects = append(subjects, v.SubjectName)
	}
	return subjects
}

// LevelsTaught returns the distinct class levels in first-seen order.
func LevelsTaught(views []*assignment.View) []string {
	seen := make(map[string]bool)
	levels := make([]string, 0)
	for _, v := range views {
		level := v.Level()
		if level == "" || seen[level] {
			continue
		}
		seen[level] = true
		levels = append(levels, level)
	}
	return levels
}
