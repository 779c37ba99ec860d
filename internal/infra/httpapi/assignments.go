package httpapi

import (
	"idetude/internal/app"

	"github.com/gofiber/fiber/v2"
)

type assignmentKeyRequest struct {
	TeacherID int64 `json:"teacher_id"`
	ClassID   int64 `json:"class_id"`
	SubjectID int64 `json:"subject_id"`
}

func (h *handler) teacherAssignments(c *fiber.Ctx) error {
	teacherID, err := paramID(c, "teacherID")
	if err != nil {
		return err
	}
	overview, err := h.svc.Assignments.Overview(c.UserContext(), teacherID)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, fiber.Map{
		"assignments": toViewsJSON(overview.Assignments),
		"subjects":    overview.Subjects,
		"levels":      overview.Levels,
	})
}

func (h *handler) addAssignment(c *fiber.Ctx) error {
	var req app.NewAssignment
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	a, err := h.svc.Assignments.AddAssignment(c.UserContext(), req)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, toAssignmentJSON(a))
}

func (h *handler) removeAssignment(c *fiber.Ctx) error {
	var req assignmentKeyRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := h.svc.Assignments.RemoveAssignment(c.UserContext(), req.TeacherID, req.ClassID, req.SubjectID); err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, nil)
}

func (h *handler) toggleMainTeacher(c *fiber.Ctx) error {
	classID, err := paramID(c, "classID")
	if err != nil {
		return err
	}
	var req struct {
		TeacherID int64 `json:"teacher_id"`
	}
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if req.TeacherID <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "teacher_id is required")
	}
	rows, err := h.svc.Assignments.ToggleMainTeacher(c.UserContext(), classID, req.TeacherID)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, toAssignmentsJSON(rows))
}

func (h *handler) addClass(c *fiber.Ctx) error {
	var req app.NewClass
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	class, err := h.svc.Assignments.AddClass(c.UserContext(), req)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, toClassJSON(class))
}

// listClasses serves the classes of ?school_year=, the current year by default.
func (h *handler) listClasses(c *fiber.Ctx) error {
	classes, err := h.svc.Assignments.ListClasses(c.UserContext(), c.Query("school_year"))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, toClassesJSON(classes))
}

func (h *handler) addSubject(c *fiber.Ctx) error {
	var req app.NewSubject
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	subject, err := h.svc.Assignments.AddSubject(c.UserContext(), req)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, subjectJSON{ID: subject.ID, Name: subject.Name})
}

func (h *handler) listSubjects(c *fiber.Ctx) error {
	subjects, err := h.svc.Assignments.ListSubjects(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, toSubjectsJSON(subjects))
}
