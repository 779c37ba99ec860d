package httpapi

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultTopResources = 5
	maxTopResources     = 50
)

func (h *handler) studentProgress(c *fiber.Ctx) error {
	studentID, err := paramID(c, "studentID")
	if err != nil {
		return err
	}
	since, err := queryTime(c, "since")
	if err != nil {
		return err
	}
	if since.IsZero() {
		since = time.Now().UTC().AddDate(-1, 0, 0)
	}
	report, err := h.svc.Progress.StudentReport(c.UserContext(), studentID, since)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, report)
}

func (h *handler) topResources(c *fiber.Ctx) error {
	limit := defaultTopResources
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid limit")
		}
		limit = min(n, maxTopResources)
	}
	top, err := h.svc.Progress.TopResources(c.UserContext(), limit)
	if err != nil {
		return err
	}
	type item struct {
		ResourceID int64   `json:"resource_id"`
		Title      string  `json:"title"`
		Downloads  int     `json:"downloads"`
		Views      int     `json:"views"`
		Score      float64 `json:"score"`
	}
	out := make([]item, len(top))
	for i, e := range top {
		out[i] = item{ResourceID: e.ResourceID, Title: e.Title, Downloads: e.Downloads, Views: e.Views, Score: e.Score()}
	}
	return ok(c, fiber.StatusOK, out)
}
