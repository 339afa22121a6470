// ABOUTME: Generic list/get/create/update/delete routes for state collections.
// ABOUTME: Per-collection checks map validation failures to 422 responses.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/harperreed/healhub/internal/models"
	"github.com/harperreed/healhub/internal/state"
	"github.com/harperreed/healhub/internal/validate"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   bool              `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type resource[T state.Record[T]] struct {
	coll  *state.Collection[T]
	check func(T) error
}

func mount[T state.Record[T]](r fiber.Router, path string, res resource[T]) {
	g := r.Group(path)
	g.Get("/", res.list)
	g.Get("/:id", res.get)
	g.Post("/", res.create)
	g.Put("/:id", res.update)
	g.Delete("/:id", res.remove)
}

func (res resource[T]) list(c *fiber.Ctx) error {
	return c.JSON(res.coll.All())
}

func (res resource[T]) get(c *fiber.Ctx) error {
	item, err := res.coll.Find(c.Params("id"))
	if err != nil {
		return lookupError(c, err)
	}
	return c.JSON(item)
}

func (res resource[T]) create(c *fiber.Ctx) error {
	var item T
	if err := c.BodyParser(&item); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := res.check(item); err != nil {
		return validationError(c, err)
	}
	item = res.coll.Add(item)
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (res resource[T]) update(c *fiber.Ctx) error {
	existing, err := res.coll.Find(c.Params("id"))
	if err != nil {
		return lookupError(c, err)
	}

	// Decode over a deep copy so maps in the stored record stay untouched.
	var item T
	base, err := json.Marshal(existing)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(base, &item); err != nil {
		return err
	}
	if err := c.BodyParser(&item); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if item.RecordID() != existing.RecordID() {
		return badRequest(c, "id cannot be changed")
	}
	if err := res.check(item); err != nil {
		return validationError(c, err)
	}

	res.coll.Update(item)
	return c.JSON(item)
}

func (res resource[T]) remove(c *fiber.Ctx) error {
	item, err := res.coll.Find(c.Params("id"))
	if err != nil {
		return lookupError(c, err)
	}
	res.coll.Delete(item.RecordID())
	return c.SendStatus(fiber.StatusNoContent)
}

func lookupError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, state.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: true, Message: err.Error()})
	case errors.Is(err, state.ErrAmbiguous):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: true, Message: err.Error()})
	}
	return err
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: true, Message: msg})
}

func validationError(c *fiber.Ctx, err error) error {
	var fields validate.Errors
	if errors.As(err, &fields) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
			Error:   true,
			Message: "Validation failed",
			Fields:  fields,
		})
	}
	return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Error: true, Message: err.Error()})
}

func checkMedicine(m models.Medicine) error {
	return validate.Medicine(validate.MedicineForm{
		Name:      m.Name,
		Dosage:    m.Dosage,
		Frequency: m.Frequency,
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
		Doctor:    m.Doctor,
	})
}

func (s *Server) checkReminder(r models.Reminder) error {
	err := validate.Reminder(validate.ReminderForm{
		Title:  r.Title,
		Time:   r.Time,
		Repeat: string(r.Repeat),
	}, models.IsValidRepeat)
	if r.MedicineID == "" {
		return err
	}
	if _, ok := s.store.LookupMedicine(r.MedicineID); ok {
		return err
	}
	fields, _ := err.(validate.Errors)
	if fields == nil {
		fields = validate.Errors{}
	}
	fields["medicineId"] = "Unknown medicine"
	return fields
}

func checkTracker(e models.TrackerEntry) error {
	raw := bytes.TrimSpace(e.Value)
	structured := len(raw) > 0 && raw[0] == '{'
	value := ""
	if f, ok := e.Number(); ok {
		value = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return validate.Tracker(string(e.Type), value, structured, models.IsValidTrackerType)
}

func checkAppointment(a models.Appointment) error {
	return validate.Appointment(validate.AppointmentForm{
		DoctorName: a.DoctorName,
		Date:       a.Date,
		Time:       a.Time,
	})
}

func checkBadge(b models.Badge) error {
	if !validate.IsRequired(b.Name) {
		return validate.Errors{"name": "Badge name is required"}
	}
	return nil
}
