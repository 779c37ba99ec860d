package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"idetude/internal/domain/competency"
	"idetude/internal/infra/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledgerFixture struct {
	svc      *CompetencyService
	progress *ProgressService
	repo     competency.Repository
	clock    time.Time
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	db := memory.Open()
	repo := memory.NewCompetencyRepository(db)
	f := &ledgerFixture{
		svc:      NewCompetencyService(repo, competency.DefaultMaxLevel, quietLogger()),
		progress: NewProgressService(repo, memory.NewResourceRepository(db)),
		repo:     repo,
		clock:    time.Date(2024, time.September, 15, 8, 0, 0, 0, time.UTC),
	}
	f.svc.now = func() time.Time {
		f.clock = f.clock.Add(time.Minute)
		return f.clock
	}
	return f
}

func (f *ledgerFixture) competency(t *testing.T, subject string, maxLevel int) *competency.Competency {
	t.Helper()
	c, err := f.svc.CreateCompetency(context.Background(), NewCompetency{
		Name: "Résoudre un problème", Subject: subject, ClassLevel: "6ème", MaxLevel: maxLevel, CreatedBy: 1,
	})
	require.NoError(t, err)
	return c
}

func TestEvaluateThenGetLevel(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	c := f.competency(t, "Maths", 4)

	level, err := f.svc.GetLevel(ctx, 7, c.ID)
	require.NoError(t, err)
	assert.Zero(t, level)

	state, entry, err := f.svc.Evaluate(ctx, EvaluationRequest{StudentID: 7, CompetencyID: c.ID, Level: 3, EvaluatorID: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, state.CurrentLevel)
	assert.Equal(t, 0, entry.PreviousLevel)

	level, err = f.svc.GetLevel(ctx, 7, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, level)
}

func TestEvaluateBuildsContiguousChain(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	c := f.competency(t, "Maths", 4)

	levels := []int{1, 2, 2, 4, 0, 3}
	var state *competency.StudentCompetency
	for _, l := range levels {
		var err error
		state, _, err = f.svc.Evaluate(ctx, EvaluationRequest{StudentID: 7, CompetencyID: c.ID, Level: l, EvaluatorID: 2})
		require.NoError(t, err)
	}

	history, err := f.svc.GetHistory(ctx, state.ID)
	require.NoError(t, err)
	require.Len(t, history, len(levels))
	assert.Equal(t, 0, history[0].PreviousLevel)
	for i := 1; i < len(history); i++ {
		assert.Equal(t, history[i-1].NewLevel, history[i].PreviousLevel)
	}
	assert.Equal(t, state.CurrentLevel, history[len(history)-1].NewLevel)
	assert.Nil(t, competency.VerifyChain(state, history))

	byPair, err := f.svc.GetHistoryFor(ctx, 7, c.ID)
	require.NoError(t, err)
	assert.Equal(t, history, byPair)
}

func TestEvaluateRejectsOutOfRangeWithoutWriting(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	c := f.competency(t, "Maths", 4)

	_, _, err := f.svc.Evaluate(ctx, EvaluationRequest{StudentID: 7, CompetencyID: c.ID, Level: 2, EvaluatorID: 2})
	require.NoError(t, err)

	for _, level := range []int{-1, 5, 100} {
		_, _, err := f.svc.Evaluate(ctx, EvaluationRequest{StudentID: 7, CompetencyID: c.ID, Level: level, EvaluatorID: 2})
		assert.ErrorIs(t, err, ErrInvalidLevel, "level %d", level)
		assert.Equal(t, KindInvalidLevel, Kind(err))
	}

	level, err := f.svc.GetLevel(ctx, 7, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, level)
	history, err := f.svc.GetHistoryFor(ctx, 7, c.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestEvaluateUnknownCompetency(t *testing.T) {
	f := newLedgerFixture(t)
	_, _, err := f.svc.Evaluate(context.Background(), EvaluationRequest{StudentID: 7, CompetencyID: 999, Level: 1, EvaluatorID: 2})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, competency.ErrNotFound)
}

func TestEvaluateExpectedLevel(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	c := f.competency(t, "Maths", 4)

	zero, two := 0, 2
	_, _, err := f.svc.Evaluate(ctx, EvaluationRequest{StudentID: 7, CompetencyID: c.ID, Level: 2, EvaluatorID: 2, ExpectedLevel: &zero})
	require.NoError(t, err)

	_, _, err = f.svc.Evaluate(ctx, EvaluationRequest{StudentID: 7, CompetencyID: c.ID, Level: 3, EvaluatorID: 2, ExpectedLevel: &zero})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, KindConflict, Kind(err))

	_, _, err = f.svc.Evaluate(ctx, EvaluationRequest{StudentID: 7, CompetencyID: c.ID, Level: 3, EvaluatorID: 2, ExpectedLevel: &two})
	require.NoError(t, err)
}

func TestGetHistoryUnknownState(t *testing.T) {
	f := newLedgerFixture(t)
	_, err := f.svc.GetHistory(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	entries, err := f.svc.GetHistoryFor(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateCompetencyDefaultsMaxLevel(t *testing.T) {
	f := newLedgerFixture(t)
	c := f.competency(t, "Maths", 0)
	assert.Equal(t, competency.DefaultMaxLevel, c.MaxLevel)

	_, err := f.svc.CreateCompetency(context.Background(), NewCompetency{Name: "  ", Subject: "Maths", ClassLevel: "6ème", CreatedBy: 1})
	assert.Equal(t, KindValidation, Kind(err))
}

func TestEvaluateTwoOnFourIsHalfway(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	c := f.competency(t, "Maths", 4)

	state, _, err := f.svc.Evaluate(ctx, EvaluationRequest{StudentID: 7, CompetencyID: c.ID, Level: 2, EvaluatorID: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, state.CurrentLevel)

	history, err := f.svc.GetHistory(ctx, state.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 0, history[0].PreviousLevel)
	assert.Equal(t, 2, history[0].NewLevel)

	overall, err := f.progress.OverallProgress(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 50, overall)
}

func TestConcurrentEvaluationsKeepChainContiguous(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	c := f.competency(t, "Maths", 4)

	const writers = 200
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(level int) {
			defer wg.Done()
			_, _, err := f.svc.Evaluate(ctx, EvaluationRequest{StudentID: 7, CompetencyID: c.ID, Level: level, EvaluatorID: 2})
			assert.NoError(t, err)
		}(i % 5)
	}
	wg.Wait()

	state, err := f.repo.GetState(ctx, 7, c.ID)
	require.NoError(t, err)
	history, err := f.svc.GetHistory(ctx, state.ID)
	require.NoError(t, err)
	assert.Len(t, history, writers)
	assert.Nil(t, competency.VerifyChain(state, history))

	states, err := f.repo.ListStates(ctx)
	require.NoError(t, err)
	assert.Len(t, states, 1)
}
