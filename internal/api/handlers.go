// ABOUTME: Handlers for settings, theme, toasts, reports, badges, and export.
// ABOUTME: Everything here reads or writes the shared state store.
package api

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/harperreed/healhub/internal/badges"
	"github.com/harperreed/healhub/internal/export"
	"github.com/harperreed/healhub/internal/models"
	"github.com/harperreed/healhub/internal/report"
	"github.com/harperreed/healhub/internal/validate"
)

func (s *Server) getSettings(c *fiber.Ctx) error {
	return c.JSON(s.store.Settings().Get())
}

// putSettings merges the body over the current settings.
func (s *Server) putSettings(c *fiber.Ctx) error {
	var patch map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &patch); err != nil {
		return badRequest(c, "Invalid request body")
	}

	base, err := json.Marshal(s.store.Settings().Get())
	if err != nil {
		return err
	}
	merged := make(map[string]json.RawMessage)
	if err := json.Unmarshal(base, &merged); err != nil {
		return err
	}
	for k, v := range patch {
		merged[k] = v
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	var next models.Settings
	if err := json.Unmarshal(data, &next); err != nil {
		return validationError(c, errors.New("settings have the wrong shape"))
	}
	if !next.Theme.Valid() {
		return validationError(c, validate.Errors{"theme": "Theme must be light or dark"})
	}
	if next.ReminderLeadMinutes < 0 {
		return validationError(c, validate.Errors{"reminderLeadMinutes": "Lead time cannot be negative"})
	}

	s.store.Settings().Set(next)
	s.store.SetTheme(next.Theme)
	return c.JSON(next)
}

func (s *Server) getTheme(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"theme": s.store.Theme().Get()})
}

func (s *Server) toggleTheme(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"theme": s.store.ToggleTheme()})
}

func (s *Server) listToasts(c *fiber.Ctx) error {
	return c.JSON(s.toasts.Active())
}

func (s *Server) dismissToast(c *fiber.Ctx) error {
	if !s.toasts.Remove(c.Params("id")) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: true, Message: "toast not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) today(c *fiber.Ctx) error {
	summary := report.Today(report.Inputs{
		Trackers:     s.store.Trackers().All(),
		Medicines:    s.store.Medicines().All(),
		Reminders:    s.store.ListReminders(),
		Appointments: s.store.Appointments().All(),
	}, s.store.Clock().Now(), s.loc)
	return c.JSON(summary)
}

// trackerSeries returns a daily chart series; ?days=N pads to N days.
func (s *Server) trackerSeries(c *fiber.Ctx) error {
	t := c.Params("type")
	if !models.IsValidTrackerType(t) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: true, Message: "unknown tracker type " + t})
	}

	series := report.GroupByDate(s.store.Trackers().All(), models.TrackerType(t), s.loc)
	if days := c.QueryInt("days", 0); days > 0 {
		series = report.LastNDays(series, days, s.store.Clock().Now(), s.loc)
	}
	return c.JSON(fiber.Map{"type": t, "points": series})
}

// bmi computes BMI from ?weight=&height= with ?units=metric|imperial.
func (s *Server) bmi(c *fiber.Ctx) error {
	weight, werr := strconv.ParseFloat(c.Query("weight"), 64)
	height, herr := strconv.ParseFloat(c.Query("height"), 64)
	if werr != nil || herr != nil {
		return validationError(c, validate.Errors{"weight": "Enter a valid positive number", "height": "Enter a valid positive number"})
	}

	var (
		value float64
		err   error
	)
	switch c.Query("units", "metric") {
	case "metric":
		value, err = report.BMIMetric(weight, height)
	case "imperial":
		value, err = report.BMIImperial(weight, height)
	default:
		return validationError(c, validate.Errors{"units": "Units must be metric or imperial"})
	}
	if err != nil {
		return validationError(c, err)
	}
	return c.JSON(fiber.Map{"bmi": value, "category": report.BMICategory(value)})
}

func (s *Server) computeBadges(c *fiber.Ctx) error {
	fresh := badges.Award(s.store, badges.Options{Location: s.loc})
	if fresh == nil {
		fresh = []models.Badge{}
	}
	return c.JSON(fresh)
}

// export renders a collection as CSV (default) or JSON, or the full
// snapshot as JSON, YAML, or Markdown when the collection is "all".
func (s *Server) export(c *fiber.Ctx) error {
	name := c.Params("collection")
	format := c.Query("format")
	snap := export.Take(s.store, s.store.Clock().Now())

	if name == "all" {
		switch format {
		case "", "json":
			data, err := export.JSON(snap)
			if err != nil {
				return err
			}
			c.Set(fiber.HeaderContentType, export.ContentTypeJSON)
			return c.Send(data)
		case "yaml":
			data, err := export.YAML(snap)
			if err != nil {
				return err
			}
			c.Set(fiber.HeaderContentType, "application/yaml")
			return c.Send(data)
		case "markdown", "md":
			c.Set(fiber.HeaderContentType, "text/markdown")
			return c.SendString(export.Markdown(snap, s.loc))
		}
		return badRequest(c, "unsupported format "+format)
	}

	items, err := snap.Items(name)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: true, Message: err.Error()})
	}

	switch format {
	case "", "csv":
		data, contentType, err := export.Collection(name, items, nil)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, contentType)
		if contentType == export.ContentTypeCSV {
			c.Attachment(name + ".csv")
		}
		return c.SendString(data)
	case "json":
		data, err := export.JSON(items)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, export.ContentTypeJSON)
		return c.Send(data)
	}
	return badRequest(c, "unsupported format "+format)
}
