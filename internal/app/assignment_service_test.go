package app

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"idetude/internal/domain/assignment"
	"idetude/internal/infra/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAssignmentService(t *testing.T) (*AssignmentService, assignment.Repository, *fakeNotifier) {
	t.Helper()
	repo := memory.NewAssignmentRepository(memory.Open())
	notifier := &fakeNotifier{}
	return NewAssignmentService(repo, notifier, "2024-2025", quietLogger()), repo, notifier
}

func addClass(t *testing.T, svc *AssignmentService, name, level string) int64 {
	t.Helper()
	c, err := svc.AddClass(context.Background(), NewClass{Name: name, Level: level})
	require.NoError(t, err)
	return c.ID
}

func addSubject(t *testing.T, svc *AssignmentService, name string) int64 {
	t.Helper()
	s, err := svc.AddSubject(context.Background(), NewSubject{Name: name})
	require.NoError(t, err)
	return s.ID
}

func TestAddAssignmentDuplicateKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newAssignmentService(t)

	_, err := svc.AddAssignment(ctx, NewAssignment{TeacherID: 1, ClassID: 10, SubjectID: 100})
	require.NoError(t, err)

	_, err = svc.AddAssignment(ctx, NewAssignment{TeacherID: 1, ClassID: 10, SubjectID: 100})
	assert.ErrorIs(t, err, ErrDuplicateAssignment)
	assert.Equal(t, KindDuplicateAssignment, Kind(err))

	rows, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestAddAssignmentDefaultsSchoolYear(t *testing.T) {
	ctx := context.Background()
	svc, _, notifier := newAssignmentService(t)

	a, err := svc.AddAssignment(ctx, NewAssignment{TeacherID: 1, ClassID: 10, SubjectID: 100, IsMainTeacher: true})
	require.NoError(t, err)
	assert.Equal(t, "2024-2025", a.SchoolYear)
	assert.NotZero(t, a.ID)

	msgs := notifier.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(1), msgs[0].teacherID)
	assert.Contains(t, msgs[0].text, "professeur principal")
}

func TestAddAssignmentValidation(t *testing.T) {
	tests := []struct {
		name  string
		input NewAssignment
		field string
	}{
		{name: "missing teacher", input: NewAssignment{ClassID: 10, SubjectID: 100}, field: "teacher_id"},
		{name: "missing class", input: NewAssignment{TeacherID: 1, SubjectID: 100}, field: "class_id"},
		{name: "bad school year", input: NewAssignment{TeacherID: 1, ClassID: 10, SubjectID: 100, SchoolYear: "2024-2026"}, field: "school_year"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, notifier := newAssignmentService(t)
			_, err := svc.AddAssignment(context.Background(), tt.input)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			require.Len(t, vErr.Fields, 1)
			assert.Equal(t, tt.field, vErr.Fields[0].Field)
			assert.Equal(t, KindValidation, Kind(err))

			rows, _ := repo.ListAll(context.Background())
			assert.Empty(t, rows)
			assert.Empty(t, notifier.messages())
		})
	}
}

func TestToggleMainTeacherMovesRole(t *testing.T) {
	ctx := context.Background()
	svc, repo, notifier := newAssignmentService(t)

	_, err := svc.AddAssignment(ctx, NewAssignment{TeacherID: 1, ClassID: 10, SubjectID: 100, IsMainTeacher: true})
	require.NoError(t, err)
	_, err = svc.AddAssignment(ctx, NewAssignment{TeacherID: 2, ClassID: 10, SubjectID: 101})
	require.NoError(t, err)

	updated, err := svc.ToggleMainTeacher(ctx, 10, 2)
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.True(t, updated[0].IsMainTeacher)

	first, err := repo.Get(ctx, assignment.Key{TeacherID: 1, ClassID: 10, SubjectID: 100})
	require.NoError(t, err)
	assert.False(t, first.IsMainTeacher)

	msgs := notifier.messages()
	assert.Contains(t, msgs[len(msgs)-1].text, "désormais professeur principal")

	_, err = svc.ToggleMainTeacher(ctx, 10, 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleMainTeacherKeepsAtMostOneMain(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newAssignmentService(t)

	for teacherID := int64(1); teacherID <= 4; teacherID++ {
		for subjectID := int64(100); subjectID < 102; subjectID++ {
			_, err := svc.AddAssignment(ctx, NewAssignment{TeacherID: teacherID, ClassID: 10, SubjectID: subjectID + teacherID*10})
			require.NoError(t, err)
		}
	}

	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		teacherID := int64(rnd.Intn(4) + 1)
		_, err := svc.ToggleMainTeacher(ctx, 10, teacherID)
		require.NoError(t, err)

		rows, err := repo.ListByClass(ctx, 10)
		require.NoError(t, err)
		mains := 0
		for _, a := range rows {
			if a.IsMainTeacher {
				mains++
			}
		}
		require.LessOrEqual(t, mains, 1, "after toggle %d", i)
	}
}

func TestRemoveAssignment(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newAssignmentService(t)

	_, err := svc.AddAssignment(ctx, NewAssignment{TeacherID: 1, ClassID: 10, SubjectID: 100})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveAssignment(ctx, 1, 10, 100))
	err = svc.RemoveAssignment(ctx, 1, 10, 100)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, assignment.ErrNotFound)

	rows, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestOverviewDerivesSubjectsAndLevels(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAssignmentService(t)

	sixA := addClass(t, svc, "6ème A", "")
	sixB := addClass(t, svc, "6ème B", "")
	tle := addClass(t, svc, "Terminale D", "")
	maths := addSubject(t, svc, "Mathématiques")
	pc := addSubject(t, svc, "Physique-Chimie")

	for _, na := range []NewAssignment{
		{TeacherID: 1, ClassID: sixA, SubjectID: maths},
		{TeacherID: 1, ClassID: sixB, SubjectID: maths},
		{TeacherID: 1, ClassID: tle, SubjectID: pc},
		{TeacherID: 2, ClassID: tle, SubjectID: maths},
	} {
		_, err := svc.AddAssignment(ctx, na)
		require.NoError(t, err)
	}

	overview, err := svc.Overview(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, overview.Assignments, 3)
	assert.Equal(t, []string{"Mathématiques", "Physique-Chimie"}, overview.Subjects)
	assert.Equal(t, []string{"6ème", "Terminale D"}, overview.Levels)

	empty, err := svc.Overview(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, empty.Assignments)
	assert.Empty(t, empty.Subjects)
}

func TestToggleMainTeacherUsesCurrentSchoolYear(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAssignmentRepository(memory.Open())
	svc := NewAssignmentService(repo, &fakeNotifier{}, "2025-2026", quietLogger())

	for _, na := range []NewAssignment{
		{TeacherID: 2, ClassID: 1, SubjectID: 100, SchoolYear: "2024-2025"},
		{TeacherID: 1, ClassID: 1, SubjectID: 101, IsMainTeacher: true},
		{TeacherID: 2, ClassID: 1, SubjectID: 102},
	} {
		_, err := svc.AddAssignment(ctx, na)
		require.NoError(t, err)
	}

	updated, err := svc.ToggleMainTeacher(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, "2025-2026", updated[0].SchoolYear)
	assert.True(t, updated[0].IsMainTeacher)

	previous, err := repo.Get(ctx, assignment.Key{TeacherID: 1, ClassID: 1, SubjectID: 101})
	require.NoError(t, err)
	assert.False(t, previous.IsMainTeacher)
	lastYear, err := repo.Get(ctx, assignment.Key{TeacherID: 2, ClassID: 1, SubjectID: 100})
	require.NoError(t, err)
	assert.False(t, lastYear.IsMainTeacher)

	_, err = svc.AddAssignment(ctx, NewAssignment{TeacherID: 3, ClassID: 1, SubjectID: 103, SchoolYear: "2024-2025"})
	require.NoError(t, err)
	_, err = svc.ToggleMainTeacher(ctx, 1, 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentTogglesKeepAtMostOneMain(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newAssignmentService(t)
	for teacherID := int64(1); teacherID <= 5; teacherID++ {
		_, err := svc.AddAssignment(ctx, NewAssignment{TeacherID: teacherID, ClassID: 10, SubjectID: 100 + teacherID})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(teacherID int64) {
			defer wg.Done()
			_, err := svc.ToggleMainTeacher(ctx, 10, teacherID)
			assert.NoError(t, err)
		}(int64(i%5) + 1)
	}
	wg.Wait()

	rows, err := repo.ListByClass(ctx, 10)
	require.NoError(t, err)
	mains := 0
	for _, a := range rows {
		if a.IsMainTeacher {
			mains++
		}
	}
	assert.LessOrEqual(t, mains, 1)
}

func TestAddClassAndSubject(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAssignmentService(t)

	c, err := svc.AddClass(ctx, NewClass{Name: "  4ème C ", Level: "4ème"})
	require.NoError(t, err)
	assert.Equal(t, "4ème C", c.Name)
	assert.Equal(t, "2024-2025", c.SchoolYear)

	_, err = svc.AddClass(ctx, NewClass{Name: "4ème C"})
	assert.Equal(t, KindDuplicate, Kind(err))
	_, err = svc.AddClass(ctx, NewClass{Name: " "})
	assert.Equal(t, KindValidation, Kind(err))
	_, err = svc.AddClass(ctx, NewClass{Name: "4ème D", SchoolYear: "2024"})
	assert.Equal(t, KindValidation, Kind(err))

	classes, err := svc.ListClasses(ctx, "")
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "4ème", classes[0].Level)

	_, err = svc.AddSubject(ctx, NewSubject{Name: "Histoire-Géographie"})
	require.NoError(t, err)
	_, err = svc.AddSubject(ctx, NewSubject{Name: "Histoire-Géographie"})
	assert.Equal(t, KindDuplicate, Kind(err))

	subjects, err := svc.ListSubjects(ctx)
	require.NoError(t, err)
	require.Len(t, subjects, 1)
}
