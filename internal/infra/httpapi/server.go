// Package httpapi exposes the services as a JSON API for the web front end.
package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"idetude/internal/app"
	"idetude/internal/domain/records"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

const requestTimeout = 5 * time.Second

// Services are the application services served over HTTP.
type Services struct {
	Assignments  *app.AssignmentService
	Competencies *app.CompetencyService
	Progress     *app.ProgressService
	Resources    *app.ResourceService
	Absences     *app.RecordService[*records.Absence]
	Grades       *app.RecordService[*records.Grade]
	Fees         *app.RecordService[*records.SchoolFee]
	Payments     *app.RecordService[*records.Payment]
	Events       *app.RecordService[*records.SchoolEvent]
}

type handler struct {
	svc    Services
	logger *logrus.Entry
}

// New builds the fiber application with every route registered.
func New(svc Services, logger *logrus.Entry) *fiber.App {
	h := &handler{svc: svc, logger: logger}

	server := fiber.New(fiber.Config{
		AppName:               "idetude",
		DisableStartupMessage: true,
		ErrorHandler:          h.errorHandler,
	})
	server.Use(recover.New())
	server.Use(cors.New())
	server.Use(h.requestLogger)

	server.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := server.Group("/api", withTimeout(requestTimeout))

	api.Get("/teachers/:teacherID/assignments", h.teacherAssignments)
	api.Post("/assignments", h.addAssignment)
	api.Delete("/assignments", h.removeAssignment)
	api.Post("/classes/:classID/main-teacher", h.toggleMainTeacher)
	api.Post("/classes", h.addClass)
	api.Get("/classes", h.listClasses)
	api.Post("/subjects", h.addSubject)
	api.Get("/subjects", h.listSubjects)

	api.Post("/competencies", h.createCompetency)
	api.Get("/competencies", h.listCompetencies)
	api.Get("/competencies/:id", h.getCompetency)
	api.Post("/evaluations", h.evaluate)
	api.Get("/students/:studentID/competencies/:competencyID/level", h.studentLevel)
	api.Get("/students/:studentID/competencies/:competencyID/history", h.studentHistory)
	api.Get("/student-competencies/:id/history", h.stateHistory)

	api.Get("/students/:studentID/progress", h.studentProgress)
	api.Get("/resources/top", h.topResources)
	api.Post("/resources", h.shareResource)
	api.Post("/resources/:id/download", h.resourceDownloaded)
	api.Post("/resources/:id/view", h.resourceViewed)
	api.Get("/teachers/:teacherID/resources", h.teacherResources)

	registerRecords(api.Group("/absences"), svc.Absences, func() *records.Absence { return &records.Absence{} })
	registerRecords(api.Group("/grades"), svc.Grades, func() *records.Grade { return &records.Grade{} })
	registerRecords(api.Group("/fees"), svc.Fees, func() *records.SchoolFee { return &records.SchoolFee{} })
	registerRecords(api.Group("/payments"), svc.Payments, func() *records.Payment { return &records.Payment{} })
	registerRecords(api.Group("/events"), svc.Events, func() *records.SchoolEvent { return &records.SchoolEvent{} })

	return server
}

func withTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func (h *handler) requestLogger(c *fiber.Ctx) error {
	started := time.Now()
	err := c.Next()
	h.logger.WithFields(logrus.Fields{
		"method":   c.Method(),
		"path":     c.Path(),
		"status":   c.Response().StatusCode(),
		"duration": time.Since(started).String(),
	}).Debug("HTTP request")
	return err
}

func statusOf(kind app.ErrorKind) int {
	switch kind {
	case app.KindValidation, app.KindInvalidLevel:
		return fiber.StatusBadRequest
	case app.KindUnauthorized:
		return fiber.StatusForbidden
	case app.KindNotFound:
		return fiber.StatusNotFound
	case app.KindDuplicateAssignment, app.KindDuplicate, app.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// errorHandler renders every error as {"success":false,...}. Store failures are logged
// and hidden from the client.
func (h *handler) errorHandler(c *fiber.Ctx, err error) error {
	var fErr *fiber.Error
	if errors.As(err, &fErr) {
		return c.Status(fErr.Code).JSON(fiber.Map{
			"success": false,
			"error":   fErr.Message,
			"kind":    "request",
		})
	}

	kind := app.Kind(err)
	code := statusOf(kind)
	body := fiber.Map{"success": false, "error": err.Error(), "kind": kind}

	var vErr *app.ValidationError
	if errors.As(err, &vErr) {
		body["fields"] = vErr.Fields
	}
	if code == fiber.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", c.Path()).Error("Request failed")
		body["error"] = "internal error"
	}
	return c.Status(code).JSON(body)
}

func ok(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"success": true, "data": data})
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func bindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	return nil
}

// queryTime accepts a date (2006-01-02) or an RFC 3339 timestamp.
func queryTime(c *fiber.Ctx, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return t, nil
}
