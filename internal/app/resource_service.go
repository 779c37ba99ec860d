package app

import (
	"context"
	"strings"

	"idetude/internal/domain/resource"

	"github.com/sirupsen/logrus"
)

// NewResource is the input of ResourceService.Share.
type NewResource struct {
	TeacherID int64  `json:"teacher_id" validate:"required,gt=0"`
	Title     string `json:"title" validate:"required,max=200"`
}

// ResourceService records the teaching resources teachers share and how much they are
// used. Rankings live in ProgressService.
type ResourceService struct {
	repo   resource.Repository
	logger *logrus.Entry
}

func NewResourceService(repo resource.Repository, logger *logrus.Entry) *ResourceService {
	return &ResourceService{repo: repo, logger: logger}
}

func (s *ResourceService) Share(ctx context.Context, nr NewResource) (*resource.Resource, error) {
	nr.Title = strings.TrimSpace(nr.Title)
	if err := validateStruct(nr); err != nil {
		return nil, err
	}
	r := &resource.Resource{TeacherID: nr.TeacherID, Title: nr.Title}
	if err := s.repo.Create(ctx, r); err != nil {
		err = classify("create resource", err)
		s.logger.WithError(err).WithField("teacher_id", nr.TeacherID).Warn("Resource not shared")
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"resource_id": r.ID, "teacher_id": r.TeacherID}).Info("Resource shared")
	return r, nil
}

// RecordDownload counts one download of the resource.
func (s *ResourceService) RecordDownload(ctx context.Context, id int64) (*resource.Resource, error) {
	r, err := s.repo.AddUsage(ctx, id, 1, 0)
	if err != nil {
		return nil, classify("record download", err)
	}
	return r, nil
}

// RecordView counts one view of the resource.
func (s *ResourceService) RecordView(ctx context.Context, id int64) (*resource.Resource, error) {
	r, err := s.repo.AddUsage(ctx, id, 0, 1)
	if err != nil {
		return nil, classify("record view", err)
	}
	return r, nil
}

// ListForTeacher returns the resources shared by teacherID, oldest first.
func (s *ResourceService) ListForTeacher(ctx context.Context, teacherID int64) ([]*resource.Resource, error) {
	rs, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, classify("list teacher resources", err)
	}
	return rs, nil
}
