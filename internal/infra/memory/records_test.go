package memory

import (
	"context"
	"testing"
	"time"

	"idetude/internal/domain/records"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore(Copy[records.Absence])

	day := time.Date(2024, 11, 4, 0, 0, 0, 0, time.UTC)
	a := &records.Absence{StudentID: 7, ClassID: 3, Date: day, Reason: "malade"}
	require.NoError(t, store.Create(ctx, a))
	require.NotEqual(t, uuid.Nil, a.ID)

	a.Reason = "changed after create"
	got, err := store.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "malade", got.Reason)

	got.Justified = true
	require.NoError(t, store.Update(ctx, got))
	got, err = store.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Justified)

	require.NoError(t, store.Delete(ctx, a.ID))
	_, err = store.Get(ctx, a.ID)
	assert.ErrorIs(t, err, records.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, a.ID), records.ErrNotFound)
	assert.ErrorIs(t, store.Update(ctx, a), records.ErrNotFound)
}

func TestRecordStoreListFilter(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore(CloneEvent)

	class := int64(3)
	start := time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Create(ctx, &records.SchoolEvent{Title: "Rentrée", StartsAt: start, EndsAt: start}))
	require.NoError(t, store.Create(ctx, &records.SchoolEvent{Title: "Sortie", ClassID: &class, StartsAt: start.AddDate(0, 0, 10), EndsAt: start.AddDate(0, 0, 10)}))

	tests := []struct {
		name   string
		filter records.Filter
		want   []string
	}{
		{name: "all in insertion order", want: []string{"Rentrée", "Sortie"}},
		{name: "class", filter: records.Filter{ClassID: 3}, want: []string{"Sortie"}},
		{name: "student never matches events", filter: records.Filter{StudentID: 7}},
		{name: "to is exclusive", filter: records.Filter{To: start.AddDate(0, 0, 10)}, want: []string{"Rentrée"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := store.List(ctx, tt.filter)
			require.NoError(t, err)
			var titles []string
			for _, e := range list {
				titles = append(titles, e.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}
