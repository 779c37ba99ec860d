package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"idetude/internal/domain/competency"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type NewCompetency struct {
	Name       string `json:"name" validate:"required,max=200"`
	Subject    string `json:"subject" validate:"required,max=100"`
	ClassLevel string `json:"class_level" validate:"required,max=50"`
	MaxLevel   int    `json:"max_level" validate:"omitempty,gte=1,lte=10"`
	CreatedBy  int64  `json:"created_by" validate:"required,gt=0"`
}

// EvaluationRequest is the input of CompetencyService.Evaluate. The level range is
// checked against the competency scale, not by struct tags.
type EvaluationRequest struct {
	StudentID     int64  `json:"student_id" validate:"required,gt=0"`
	CompetencyID  int64  `json:"competency_id" validate:"required,gt=0"`
	Level         int    `json:"level"`
	Notes         string `json:"notes" validate:"max=1000"`
	EvaluatorID   int64  `json:"evaluator_id" validate:"required,gt=0"`
	ExpectedLevel *int   `json:"expected_level,omitempty"`
}

// CompetencyService records student mastery levels and keeps their audit trail.
type CompetencyService struct {
	repo            competency.Repository
	defaultMaxLevel int
	now             func() time.Time
	logger          *logrus.Entry
}

func NewCompetencyService(repo competency.Repository, defaultMaxLevel int, logger *logrus.Entry) *CompetencyService {
	if defaultMaxLevel <= 0 {
		defaultMaxLevel = competency.DefaultMaxLevel
	}
	return &CompetencyService{
		repo:            repo,
		defaultMaxLevel: defaultMaxLevel,
		now:             func() time.Time { return time.Now().UTC() },
		logger:          logger,
	}
}

func (s *CompetencyService) CreateCompetency(ctx context.Context, nc NewCompetency) (*competency.Competency, error) {
	nc.Name = strings.TrimSpace(nc.Name)
	nc.Subject = strings.TrimSpace(nc.Subject)
	nc.ClassLevel = strings.TrimSpace(nc.ClassLevel)
	if err := validateStruct(nc); err != nil {
		return nil, err
	}
	c := &competency.Competency{
		Name:       nc.Name,
		Subject:    nc.Subject,
		ClassLevel: nc.ClassLevel,
		MaxLevel:   nc.MaxLevel,
		CreatedBy:  nc.CreatedBy,
		CreatedAt:  s.now(),
	}
	if c.MaxLevel == 0 {
		c.MaxLevel = s.defaultMaxLevel
	}
	if err := s.repo.CreateCompetency(ctx, c); err != nil {
		return nil, classify("create competency", err)
	}
	s.logger.WithFields(logrus.Fields{"competency_id": c.ID, "subject": c.Subject}).Info("Competency created")
	return c, nil
}

func (s *CompetencyService) GetCompetency(ctx context.Context, id int64) (*competency.Competency, error) {
	c, err := s.repo.GetCompetency(ctx, id)
	if err != nil {
		return nil, classify("get competency", err)
	}
	return c, nil
}

func (s *CompetencyService) ListCompetencies(ctx context.Context, filter competency.Filter) ([]*competency.Competency, error) {
	cs, err := s.repo.ListCompetencies(ctx, filter)
	if err != nil {
		return nil, classify("list competencies", err)
	}
	return cs, nil
}

// Evaluate sets the student's level for a competency and appends the matching history
// entry in the same write. Out-of-range levels are rejected before anything is written.
func (s *CompetencyService) Evaluate(ctx context.Context, req EvaluationRequest) (*competency.StudentCompetency, *competency.HistoryEntry, error) {
	if err := validateStruct(req); err != nil {
		return nil, nil, err
	}
	log := s.logger.WithFields(logrus.Fields{
		"student_id":    req.StudentID,
		"competency_id": req.CompetencyID,
		"level":         req.Level,
		"evaluator_id":  req.EvaluatorID,
	})

	c, err := s.repo.GetCompetency(ctx, req.CompetencyID)
	if err != nil {
		return nil, nil, classify("get competency", err)
	}
	if err := c.CheckLevel(req.Level); err != nil {
		log.WithError(err).Warn("Evaluation rejected")
		return nil, nil, err
	}

	ev := competency.Evaluation{
		StudentID:     req.StudentID,
		CompetencyID:  req.CompetencyID,
		Level:         req.Level,
		Notes:         strings.TrimSpace(req.Notes),
		EvaluatorID:   req.EvaluatorID,
		ExpectedLevel: req.ExpectedLevel,
	}
	state, entry, err := s.repo.Record(ctx, req.StudentID, req.CompetencyID, func(current *competency.StudentCompetency) (*competency.StudentCompetency, *competency.HistoryEntry, error) {
		return competency.Apply(c, current, ev, s.now())
	})
	if err != nil {
		err = classify("record evaluation", err)
		log.WithError(err).Warn("Evaluation not recorded")
		return nil, nil, err
	}
	log.WithFields(logrus.Fields{
		"student_competency_id": state.ID,
		"previous_level":        entry.PreviousLevel,
	}).Info("Evaluation recorded")
	return state, entry, nil
}

// GetLevel returns the current level, 0 when the student was never evaluated.
func (s *CompetencyService) GetLevel(ctx context.Context, studentID, competencyID int64) (int, error) {
	state, err := s.repo.GetState(ctx, studentID, competencyID)
	if err != nil {
		if errors.Is(err, competency.ErrStateNotFound) {
			return 0, nil
		}
		return 0, classify("get level", err)
	}
	return state.CurrentLevel, nil
}

// GetHistory returns the transitions of a student competency, oldest first.
func (s *CompetencyService) GetHistory(ctx context.Context, studentCompetencyID uuid.UUID) ([]*competency.HistoryEntry, error) {
	if _, err := s.repo.GetStateByID(ctx, studentCompetencyID); err != nil {
		return nil, classify("get student competency", err)
	}
	entries, err := s.repo.ListHistory(ctx, studentCompetencyID)
	if err != nil {
		return nil, classify("list history", err)
	}
	return entries, nil
}

// GetHistoryFor is GetHistory addressed by student and competency. A student that was
// never evaluated has an empty history.
func (s *CompetencyService) GetHistoryFor(ctx context.Context, studentID, competencyID int64) ([]*competency.HistoryEntry, error) {
	state, err := s.repo.GetState(ctx, studentID, competencyID)
	if err != nil {
		if errors.Is(err, competency.ErrStateNotFound) {
			return []*competency.HistoryEntry{}, nil
		}
		return nil, classify("get level", err)
	}
	entries, err := s.repo.ListHistory(ctx, state.ID)
	if err != nil {
		return nil, classify("list history", err)
	}
	return entries, nil
}
