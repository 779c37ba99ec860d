package app

import (
	"context"
	"time"

	"idetude/internal/domain/competency"
	"idetude/internal/domain/progress"
	"idetude/internal/domain/resource"
)

// StudentReport gathers the progress views of one student.
type StudentReport struct {
	StudentID int64                 `json:"student_id"`
	Overall   int                   `json:"overall"`
	Subjects  map[string]int        `json:"subjects"`
	Monthly   []progress.MonthValue `json:"monthly"`
}

// ProgressService computes read-only summaries; it never writes.
type ProgressService struct {
	competencies competency.Repository
	resources    resource.Repository
}

func NewProgressService(cr competency.Repository, rr resource.Repository) *ProgressService {
	return &ProgressService{competencies: cr, resources: rr}
}

func (s *ProgressService) samples(ctx context.Context, studentID int64) ([]progress.Sample, error) {
	standings, err := s.competencies.ListStandings(ctx, studentID)
	if err != nil {
		return nil, classify("list standings", err)
	}
	samples := make([]progress.Sample, len(standings))
	for i, st := range standings {
		samples[i] = progress.Sample{
			Subject:  st.Competency.Subject,
			Level:    st.State.CurrentLevel,
			MaxLevel: st.Competency.MaxLevel,
		}
	}
	return samples, nil
}

// OverallProgress is the student's mastery percentage over every evaluated competency.
func (s *ProgressService) OverallProgress(ctx context.Context, studentID int64) (int, error) {
	samples, err := s.samples(ctx, studentID)
	if err != nil {
		return 0, err
	}
	return progress.Overall(samples), nil
}

func (s *ProgressService) SubjectProgress(ctx context.Context, studentID int64) (map[string]int, error) {
	samples, err := s.samples(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return progress.BySubject(samples), nil
}

// MonthlyProgression averages the student's evaluations per month since the given time.
// A zero since covers the whole history.
func (s *ProgressService) MonthlyProgression(ctx context.Context, studentID int64, since time.Time) ([]progress.MonthValue, error) {
	transitions, err := s.competencies.ListTransitions(ctx, studentID, since)
	if err != nil {
		return nil, classify("list transitions", err)
	}
	points := make([]progress.Point, len(transitions))
	for i, tr := range transitions {
		points[i] = progress.Point{At: tr.Entry.CreatedAt, Level: tr.Entry.NewLevel, MaxLevel: tr.MaxLevel}
	}
	return progress.Monthly(points), nil
}

func (s *ProgressService) StudentReport(ctx context.Context, studentID int64, since time.Time) (*StudentReport, error) {
	samples, err := s.samples(ctx, studentID)
	if err != nil {
		return nil, err
	}
	monthly, err := s.MonthlyProgression(ctx, studentID, since)
	if err != nil {
		return nil, err
	}
	return &StudentReport{
		StudentID: studentID,
		Overall:   progress.Overall(samples),
		Subjects:  progress.BySubject(samples),
		Monthly:   monthly,
	}, nil
}

// TopResources ranks shared resources by engagement. limit <= 0 returns all of them.
func (s *ProgressService) TopResources(ctx context.Context, limit int) ([]progress.Engagement, error) {
	rs, err := s.resources.ListAll(ctx)
	if err != nil {
		return nil, classify("list resources", err)
	}
	items := make([]progress.Engagement, len(rs))
	for i, r := range rs {
		items[i] = progress.Engagement{ResourceID: r.ID, Title: r.Title, Downloads: r.Downloads, Views: r.Views}
	}
	ranked := progress.RankByEngagement(items)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
