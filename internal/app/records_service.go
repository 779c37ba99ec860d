package app

import (
	"context"

	"idetude/internal/domain/records"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RecordService is the CRUD service shared by the plain school records.
type RecordService[T records.Record] struct {
	name   string
	store  records.Store[T]
	logger *logrus.Entry
}

func NewRecordService[T records.Record](name string, store records.Store[T], logger *logrus.Entry) *RecordService[T] {
	return &RecordService[T]{
		name:   name,
		store:  store,
		logger: logger.WithField("record", name),
	}
}

func (s *RecordService[T]) Name() string { return s.name }

func (s *RecordService[T]) Create(ctx context.Context, rec T) error {
	if err := validateStruct(rec); err != nil {
		return err
	}
	rec.SetRecordID(uuid.New())
	if err := s.store.Create(ctx, rec); err != nil {
		err = classify("create "+s.name, err)
		s.logger.WithError(err).Warn("Record not created")
		return err
	}
	s.logger.WithField("id", rec.RecordID()).Info("Record created")
	return nil
}

func (s *RecordService[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		var zero T
		return zero, classify("get "+s.name, err)
	}
	return rec, nil
}

func (s *RecordService[T]) List(ctx context.Context, filter records.Filter) ([]T, error) {
	recs, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, classify("list "+s.name, err)
	}
	return recs, nil
}

// Update replaces the stored record with rec; rec must carry the id of an existing record.
func (s *RecordService[T]) Update(ctx context.Context, rec T) error {
	if err := validateStruct(rec); err != nil {
		return err
	}
	if err := s.store.Update(ctx, rec); err != nil {
		err = classify("update "+s.name, err)
		s.logger.WithError(err).WithField("id", rec.RecordID()).Warn("Record not updated")
		return err
	}
	s.logger.WithField("id", rec.RecordID()).Info("Record updated")
	return nil
}

func (s *RecordService[T]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		err = classify("delete "+s.name, err)
		s.logger.WithError(err).WithField("id", id).Warn("Record not deleted")
		return err
	}
	s.logger.WithField("id", id).Info("Record deleted")
	return nil
}
