package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"idetude/internal/domain/records"
	"idetude/internal/infra/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordServiceValidation(t *testing.T) {
	ctx := context.Background()
	grades := NewRecordService("grade", memory.NewRecordStore(memory.Copy[records.Grade]), quietLogger())
	fees := NewRecordService("fee", memory.NewRecordStore(memory.Copy[records.SchoolFee]), quietLogger())
	given := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		create func() error
		field  string
	}{
		{
			name: "grade above max",
			create: func() error {
				return grades.Create(ctx, &records.Grade{StudentID: 1, SubjectID: 1, TeacherID: 1, Value: 21, MaxValue: 20, Term: "T1", GivenAt: given})
			},
			field: "value",
		},
		{
			name: "fee with malformed school year",
			create: func() error {
				return fees.Create(ctx, &records.SchoolFee{ClassID: 1, Label: "Inscription", Amount: 5000, DueDate: given, SchoolYear: "2024"})
			},
			field: "school_year",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.create()
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			require.Len(t, vErr.Fields, 1)
			assert.Equal(t, tt.field, vErr.Fields[0].Field)
		})
	}
}

func TestRecordServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewRecordService("payment", memory.NewRecordStore(memory.Copy[records.Payment]), quietLogger())

	p := &records.Payment{StudentID: 7, FeeID: uuid.New(), Amount: 2500, PaidAt: time.Now(), Method: "mobile_money"}
	require.NoError(t, svc.Create(ctx, p))
	require.NotEqual(t, uuid.Nil, p.ID)

	list, err := svc.List(ctx, records.Filter{StudentID: 7})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	p.Method = "cheque"
	assert.Equal(t, KindValidation, Kind(svc.Update(ctx, p)))

	p.Method = "cash"
	require.NoError(t, svc.Update(ctx, p))
	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "cash", got.Method)

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
