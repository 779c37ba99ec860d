package httpapi

import (
	"idetude/internal/app"
	"idetude/internal/domain/records"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// registerRecords mounts the CRUD routes of one record type on r.
func registerRecords[T records.Record](r fiber.Router, svc *app.RecordService[T], newRecord func() T) {
	r.Post("/", func(c *fiber.Ctx) error {
		rec := newRecord()
		if err := bindJSON(c, rec); err != nil {
			return err
		}
		if err := svc.Create(c.UserContext(), rec); err != nil {
			return err
		}
		return ok(c, fiber.StatusCreated, rec)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		filter, err := recordFilter(c)
		if err != nil {
			return err
		}
		list, err := svc.List(c.UserContext(), filter)
		if err != nil {
			return err
		}
		return ok(c, fiber.StatusOK, list)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		id, err := recordID(c)
		if err != nil {
			return err
		}
		rec, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return ok(c, fiber.StatusOK, rec)
	})

	r.Put("/:id", func(c *fiber.Ctx) error {
		id, err := recordID(c)
		if err != nil {
			return err
		}
		rec := newRecord()
		if err := bindJSON(c, rec); err != nil {
			return err
		}
		rec.SetRecordID(id)
		if err := svc.Update(c.UserContext(), rec); err != nil {
			return err
		}
		return ok(c, fiber.StatusOK, rec)
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		id, err := recordID(c)
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return err
		}
		return ok(c, fiber.StatusOK, nil)
	})
}

func recordID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func recordFilter(c *fiber.Ctx) (records.Filter, error) {
	var (
		f   records.Filter
		err error
	)
	f.StudentID = int64(c.QueryInt("student_id"))
	f.ClassID = int64(c.QueryInt("class_id"))
	if f.From, err = queryTime(c, "from"); err != nil {
		return f, err
	}
	if f.To, err = queryTime(c, "to"); err != nil {
		return f, err
	}
	return f, nil
}
