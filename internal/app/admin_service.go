package app

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"idetude/internal/domain/teacher"
)

// AdminService holds the operations reserved to the configured administrator.
type AdminService struct {
	teacherRepo     teacher.Repository
	adminTelegramID int64
}

func NewAdminService(tr teacher.Repository, adminID int64) *AdminService {
	return &AdminService{
		teacherRepo:     tr,
		adminTelegramID: adminID,
	}
}

// IsAdmin reports whether the chat user is the configured administrator.
func (s *AdminService) IsAdmin(telegramID int64) bool {
	return s.adminTelegramID != 0 && telegramID == s.adminTelegramID
}

func (s *AdminService) authorize(performingAdminID int64) error {
	if !s.IsAdmin(performingAdminID) {
		return ErrAdminNotAuthorized
	}
	return nil
}

// AddTeacher registers a new active teacher reachable on the given Telegram ID.
func (s *AdminService) AddTeacher(ctx context.Context, performingAdminID int64, telegramID int64, firstName, lastNameValue string) (*teacher.Teacher, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}

	_, err := s.teacherRepo.GetByTelegramID(ctx, telegramID)
	if err == nil {
		return nil, ErrTeacherAlreadyExists
	}
	if !errors.Is(err, teacher.ErrNotFound) {
		return nil, classify("check existing teacher", err)
	}

	var lastName sql.NullString
	if v := strings.TrimSpace(lastNameValue); v != "" {
		lastName = sql.NullString{String: v, Valid: true}
	}
	t := &teacher.Teacher{
		TelegramID: telegramID,
		FirstName:  strings.TrimSpace(firstName),
		LastName:   lastName,
		IsActive:   true,
	}
	if err := s.teacherRepo.Create(ctx, t); err != nil {
		if errors.Is(err, teacher.ErrDuplicateTelegramID) {
			return nil, ErrTeacherAlreadyExists
		}
		return nil, classify("create teacher", err)
	}
	return t, nil
}

// RemoveTeacher deactivates a teacher; the row and its assignments are kept.
func (s *AdminService) RemoveTeacher(ctx context.Context, performingAdminID int64, telegramID int64) (*teacher.Teacher, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}

	t, err := s.teacherRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, classify("get teacher", err)
	}
	if !t.IsActive {
		return t, ErrTeacherAlreadyInactive
	}

	t.IsActive = false
	if err := s.teacherRepo.Update(ctx, t); err != nil {
		return nil, classify("deactivate teacher", err)
	}
	return t, nil
}

func (s *AdminService) ListActiveTeachers(ctx context.Context, performingAdminID int64) ([]*teacher.Teacher, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	ts, err := s.teacherRepo.ListActive(ctx)
	if err != nil {
		return nil, classify("list active teachers", err)
	}
	return ts, nil
}

func (s *AdminService) ListAllTeachers(ctx context.Context, performingAdminID int64) ([]*teacher.Teacher, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	ts, err := s.teacherRepo.ListAll(ctx)
	if err != nil {
		return nil, classify("list teachers", err)
	}
	return ts, nil
}

// ResolveTeacher maps a chat user to an active teacher.
func (s *AdminService) ResolveTeacher(ctx context.Context, telegramID int64) (*teacher.Teacher, error) {
	t, err := s.teacherRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, classify("get teacher", err)
	}
	if !t.IsActive {
		return nil, notFoundError{err: teacher.ErrNotFound}
	}
	return t, nil
}
