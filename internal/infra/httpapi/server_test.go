package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"idetude/internal/app"
	"idetude/internal/domain/records"
	"idetude/internal/infra/memory"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopNotifier struct{}

func (nopNotifier) NotifyTeacher(_ context.Context, _ int64, _ string) {}
func (nopNotifier) NotifyAdmin(_ context.Context, _ string)            {}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Kind    string          `json:"kind"`
}

func newTestServer(t *testing.T) *fiber.App {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	log := logrus.NewEntry(l)

	db := memory.Open()
	cr := memory.NewCompetencyRepository(db)
	rr := memory.NewResourceRepository(db)
	svc := Services{
		Assignments:  app.NewAssignmentService(memory.NewAssignmentRepository(db), nopNotifier{}, "2024-2025", log),
		Competencies: app.NewCompetencyService(cr, 4, log),
		Progress:     app.NewProgressService(cr, rr),
		Resources:    app.NewResourceService(rr, log),
		Absences:     app.NewRecordService("absence", memory.NewRecordStore(memory.Copy[records.Absence]), log),
		Grades:       app.NewRecordService("grade", memory.NewRecordStore(memory.Copy[records.Grade]), log),
		Fees:         app.NewRecordService("fee", memory.NewRecordStore(memory.Copy[records.SchoolFee]), log),
		Payments:     app.NewRecordService("payment", memory.NewRecordStore(memory.Copy[records.Payment]), log),
		Events:       app.NewRecordService("event", memory.NewRecordStore(memory.CloneEvent), log),
	}
	return New(svc, log)
}

func do(t *testing.T, server *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := server.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func TestHealth(t *testing.T) {
	server := newTestServer(t)
	resp, err := server.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAssignmentRoutes(t *testing.T) {
	server := newTestServer(t)
	classID := createID(t, server, "/api/classes", `{"name":"5ème B"}`)
	subjectID := createID(t, server, "/api/subjects", `{"name":"SVT"}`)

	body := `{"teacher_id":1,"class_id":` + itoa(classID) + `,"subject_id":` + itoa(subjectID) + `}`
	code, env := do(t, server, http.MethodPost, "/api/assignments", body)
	require.Equal(t, http.StatusCreated, code, env.Error)
	assert.True(t, env.Success)

	code, env = do(t, server, http.MethodPost, "/api/assignments", body)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "duplicate_assignment", env.Kind)

	code, env = do(t, server, http.MethodPost, "/api/assignments", `{"class_id":3}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation", env.Kind)

	code, env = do(t, server, http.MethodGet, "/api/teachers/1/assignments", "")
	require.Equal(t, http.StatusOK, code)
	var overview struct {
		Assignments []assignmentViewJSON `json:"assignments"`
		Subjects    []string             `json:"subjects"`
		Levels      []string             `json:"levels"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &overview))
	require.Len(t, overview.Assignments, 1)
	assert.Equal(t, "5ème B", overview.Assignments[0].ClassName)
	assert.Equal(t, []string{"SVT"}, overview.Subjects)
	assert.Equal(t, []string{"5ème"}, overview.Levels)

	code, env = do(t, server, http.MethodPost, "/api/classes/"+itoa(classID)+"/main-teacher", `{"teacher_id":1}`)
	require.Equal(t, http.StatusOK, code, env.Error)
	var rows []assignmentJSON
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 1)
	assert.True(t, rows[0].IsMainTeacher)

	code, _ = do(t, server, http.MethodPost, "/api/classes/"+itoa(classID)+"/main-teacher", `{"teacher_id":9}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, server, http.MethodDelete, "/api/assignments", body)
	assert.Equal(t, http.StatusOK, code)
	code, env = do(t, server, http.MethodDelete, "/api/assignments", body)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", env.Kind)

	code, env = do(t, server, http.MethodGet, "/api/teachers/abc/assignments", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "request", env.Kind)
}

func TestEvaluationRoutes(t *testing.T) {
	server := newTestServer(t)

	code, env := do(t, server, http.MethodPost, "/api/competencies",
		`{"name":"Calcul mental","subject":"Maths","class_level":"6ème","created_by":1}`)
	require.Equal(t, http.StatusCreated, code, env.Error)
	var comp competencyJSON
	require.NoError(t, json.Unmarshal(env.Data, &comp))
	assert.Equal(t, 4, comp.MaxLevel)
	id := itoa(comp.ID)

	code, env = do(t, server, http.MethodPost, "/api/evaluations",
		`{"student_id":7,"competency_id":`+id+`,"level":5,"evaluator_id":1}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_level", env.Kind)

	code, env = do(t, server, http.MethodPost, "/api/evaluations",
		`{"student_id":7,"competency_id":`+id+`,"level":2,"evaluator_id":1}`)
	require.Equal(t, http.StatusOK, code, env.Error)
	var result struct {
		State stateJSON   `json:"state"`
		Entry historyJSON `json:"entry"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 2, result.State.CurrentLevel)
	assert.Equal(t, 0, result.Entry.PreviousLevel)

	code, env = do(t, server, http.MethodPost, "/api/evaluations",
		`{"student_id":7,"competency_id":`+id+`,"level":3,"evaluator_id":1,"expected_level":0}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "conflict", env.Kind)

	code, env = do(t, server, http.MethodGet, "/api/students/7/competencies/"+id+"/level", "")
	require.Equal(t, http.StatusOK, code)
	var level struct {
		Level int `json:"level"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &level))
	assert.Equal(t, 2, level.Level)

	code, env = do(t, server, http.MethodGet, "/api/student-competencies/"+result.State.ID.String()+"/history", "")
	require.Equal(t, http.StatusOK, code)
	var history []historyJSON
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history, 1)
	assert.Equal(t, 2, history[0].NewLevel)

	code, env = do(t, server, http.MethodGet, "/api/students/8/competencies/"+id+"/history", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(env.Data))

	code, env = do(t, server, http.MethodGet, "/api/students/7/progress", "")
	require.Equal(t, http.StatusOK, code)
	var report app.StudentReport
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, 50, report.Overall)

	code, _ = do(t, server, http.MethodGet, "/api/competencies/999", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestTopResourcesRoute(t *testing.T) {
	server := newTestServer(t)
	fractions := itoa(createID(t, server, "/api/resources", `{"teacher_id":1,"title":"Fractions"}`))
	accords := itoa(createID(t, server, "/api/resources", `{"teacher_id":1,"title":"Accords"}`))
	for i := 0; i < 4; i++ {
		code, _ := do(t, server, http.MethodPost, "/api/resources/"+fractions+"/download", "")
		require.Equal(t, http.StatusOK, code)
	}
	code, _ := do(t, server, http.MethodPost, "/api/resources/"+accords+"/download", "")
	require.Equal(t, http.StatusOK, code)
	for i := 0; i < 20; i++ {
		code, _ := do(t, server, http.MethodPost, "/api/resources/"+accords+"/view", "")
		require.Equal(t, http.StatusOK, code)
	}

	code, env := do(t, server, http.MethodGet, "/api/resources/top?limit=1", "")
	require.Equal(t, http.StatusOK, code)
	var top []struct {
		Title string  `json:"title"`
		Score float64 `json:"score"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &top))
	require.Len(t, top, 1)
	assert.Equal(t, "Accords", top[0].Title)
	assert.Equal(t, 11.0, top[0].Score)

	code, _ = do(t, server, http.MethodGet, "/api/resources/top?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = do(t, server, http.MethodGet, "/api/teachers/1/resources", "")
	require.Equal(t, http.StatusOK, code)
	var own []resourceJSON
	require.NoError(t, json.Unmarshal(env.Data, &own))
	require.Len(t, own, 2)
	assert.Equal(t, 4, own[0].Downloads)

	code, env = do(t, server, http.MethodPost, "/api/resources/999/view", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", env.Kind)
}

func TestClassAndSubjectRoutes(t *testing.T) {
	server := newTestServer(t)

	code, env := do(t, server, http.MethodPost, "/api/classes", `{"name":"Terminale D","level":"Tle"}`)
	require.Equal(t, http.StatusCreated, code, env.Error)
	var class classJSON
	require.NoError(t, json.Unmarshal(env.Data, &class))
	assert.Equal(t, "2024-2025", class.SchoolYear)
	assert.Equal(t, "Tle", class.Level)

	code, env = do(t, server, http.MethodPost, "/api/classes", `{"name":"Terminale D"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "duplicate", env.Kind)

	_ = createID(t, server, "/api/classes", `{"name":"Terminale D","school_year":"2025-2026"}`)
	code, env = do(t, server, http.MethodGet, "/api/classes", "")
	require.Equal(t, http.StatusOK, code)
	var classes []classJSON
	require.NoError(t, json.Unmarshal(env.Data, &classes))
	assert.Len(t, classes, 1)

	code, env = do(t, server, http.MethodGet, "/api/classes?school_year=2025-2026", "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &classes))
	require.Len(t, classes, 1)
	assert.Equal(t, "2025-2026", classes[0].SchoolYear)

	_ = createID(t, server, "/api/subjects", `{"name":"Philosophie"}`)
	code, env = do(t, server, http.MethodPost, "/api/subjects", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation", env.Kind)

	code, env = do(t, server, http.MethodGet, "/api/subjects", "")
	require.Equal(t, http.StatusOK, code)
	var subjects []subjectJSON
	require.NoError(t, json.Unmarshal(env.Data, &subjects))
	require.Len(t, subjects, 1)
	assert.Equal(t, "Philosophie", subjects[0].Name)
}

// createID posts body to path and returns the id of the created row.
func createID(t *testing.T, server *fiber.App, path, body string) int64 {
	t.Helper()
	code, env := do(t, server, http.MethodPost, path, body)
	require.Equal(t, http.StatusCreated, code, env.Error)
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	return created.ID
}

func TestRecordRoutes(t *testing.T) {
	server := newTestServer(t)

	code, env := do(t, server, http.MethodPost, "/api/absences",
		`{"student_id":7,"class_id":3,"date":"2024-11-04T00:00:00Z","reason":"malade"}`)
	require.Equal(t, http.StatusCreated, code, env.Error)
	var created records.Absence
	require.NoError(t, json.Unmarshal(env.Data, &created))
	path := "/api/absences/" + created.ID.String()

	code, env = do(t, server, http.MethodGet, "/api/absences?student_id=7&from=2024-11-01&to=2024-12-01", "")
	require.Equal(t, http.StatusOK, code)
	var list []records.Absence
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	code, _ = do(t, server, http.MethodPut, path,
		`{"student_id":7,"class_id":3,"date":"2024-11-04T00:00:00Z","justified":true}`)
	require.Equal(t, http.StatusOK, code)
	code, env = do(t, server, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, code)
	var got records.Absence
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.True(t, got.Justified)

	code, _ = do(t, server, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, server, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, code)

	code, env = do(t, server, http.MethodPost, "/api/events",
		`{"title":"Sortie","starts_at":"2024-12-10T09:00:00Z","ends_at":"2024-12-09T09:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation", env.Kind)

	code, _ = do(t, server, http.MethodGet, "/api/grades/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
