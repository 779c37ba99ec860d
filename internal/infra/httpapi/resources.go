package httpapi

import (
	"context"

	"idetude/internal/app"
	"idetude/internal/domain/resource"

	"github.com/gofiber/fiber/v2"
)

func (h *handler) shareResource(c *fiber.Ctx) error {
	var req app.NewResource
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	r, err := h.svc.Resources.Share(c.UserContext(), req)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, toResourceJSON(r))
}

func (h *handler) resourceDownloaded(c *fiber.Ctx) error {
	return h.countUsage(c, h.svc.Resources.RecordDownload)
}

func (h *handler) resourceViewed(c *fiber.Ctx) error {
	return h.countUsage(c, h.svc.Resources.RecordView)
}

func (h *handler) countUsage(c *fiber.Ctx, record func(ctx context.Context, id int64) (*resource.Resource, error)) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	r, err := record(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, toResourceJSON(r))
}

func (h *handler) teacherResources(c *fiber.Ctx) error {
	teacherID, err := paramID(c, "teacherID")
	if err != nil {
		return err
	}
	rs, err := h.svc.Resources.ListForTeacher(c.UserContext(), teacherID)
	if err != nil {
		return err
	}
	out := make([]resourceJSON, len(rs))
	for i, r := range rs {
		out[i] = toResourceJSON(r)
	}
	return ok(c, fiber.StatusOK, out)
}
