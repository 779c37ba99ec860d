package httpapi

import (
	"idetude/internal/app"
	"idetude/internal/domain/competency"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (h *handler) createCompetency(c *fiber.Ctx) error {
	var req app.NewCompetency
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	comp, err := h.svc.Competencies.CreateCompetency(c.UserContext(), req)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, toCompetencyJSON(comp))
}

func (h *handler) listCompetencies(c *fiber.Ctx) error {
	list, err := h.svc.Competencies.ListCompetencies(c.UserContext(), competency.Filter{
		Subject:    c.Query("subject"),
		ClassLevel: c.Query("class_level"),
	})
	if err != nil {
		return err
	}
	out := make([]competencyJSON, len(list))
	for i, comp := range list {
		out[i] = toCompetencyJSON(comp)
	}
	return ok(c, fiber.StatusOK, out)
}

func (h *handler) getCompetency(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	comp, err := h.svc.Competencies.GetCompetency(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, toCompetencyJSON(comp))
}

func (h *handler) evaluate(c *fiber.Ctx) error {
	var req app.EvaluationRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	state, entry, err := h.svc.Competencies.Evaluate(c.UserContext(), req)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, fiber.Map{
		"state": toStateJSON(state),
		"entry": toHistoryJSON([]*competency.HistoryEntry{entry})[0],
	})
}

func (h *handler) studentLevel(c *fiber.Ctx) error {
	studentID, competencyID, err := studentCompetencyParams(c)
	if err != nil {
		return err
	}
	level, err := h.svc.Competencies.GetLevel(c.UserContext(), studentID, competencyID)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, fiber.Map{
		"student_id":    studentID,
		"competency_id": competencyID,
		"level":         level,
	})
}

func (h *handler) studentHistory(c *fiber.Ctx) error {
	studentID, competencyID, err := studentCompetencyParams(c)
	if err != nil {
		return err
	}
	entries, err := h.svc.Competencies.GetHistoryFor(c.UserContext(), studentID, competencyID)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, toHistoryJSON(entries))
}

func (h *handler) stateHistory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	entries, err := h.svc.Competencies.GetHistory(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, toHistoryJSON(entries))
}

func studentCompetencyParams(c *fiber.Ctx) (int64, int64, error) {
	studentID, err := paramID(c, "studentID")
	if err != nil {
		return 0, 0, err
	}
	competencyID, err := paramID(c, "competencyID")
	if err != nil {
		return 0, 0, err
	}
	return studentID, competencyID, nil
}
