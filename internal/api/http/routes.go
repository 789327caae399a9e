package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/luchtmeetnet-monitor/internal/airquality"
	"github.com/i474232898/luchtmeetnet-monitor/internal/store"
)

var validate = validator.New()

// Monitor is the read side of the refresh coordinator.
type Monitor interface {
	Latest() (airquality.Snapshot, bool)
	Status() store.Status
}

// StationLocator reports the resolved station, if any.
type StationLocator interface {
	Station() (airquality.Station, bool)
}

// ErrorHandler renders every error as a JSON body with the matching status.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, exposer *airquality.Exposer, monitor Monitor, locator StationLocator) {
	v1 := app.Group("/api/v1")

	v1.Get("/readings", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"readings": exposer.Readings(),
		})
	})

	v1.Get("/readings/:id", func(c *fiber.Ctx) error {
		q := readingQuery{ID: c.Params("id")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusNotFound, "unknown reading "+q.ID)
		}

		reading, err := exposer.Reading(airquality.ReadingID(q.ID))
		if err != nil {
			if errors.Is(err, airquality.ErrUnknownReading) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read "+q.ID)
		}
		if !reading.Available {
			return fiber.NewError(fiber.StatusServiceUnavailable, "reading unavailable")
		}
		return c.JSON(reading)
	})

	v1.Get("/snapshot", func(c *fiber.Ctx) error {
		snap, ok := monitor.Latest()
		if !ok {
			return fiber.NewError(fiber.StatusServiceUnavailable, "no air quality data yet")
		}
		return c.JSON(snap)
	})

	v1.Get("/status", func(c *fiber.Ctx) error {
		resp := fiber.Map{
			"refresh": monitor.Status(),
		}
		if st, ok := locator.Station(); ok {
			resp["station"] = st
		}
		return c.JSON(resp)
	})
}

// readingQuery holds the path parameter of the single-reading endpoint.
type readingQuery struct {
	ID string `validate:"required,oneof=stationname lki lki_text"`
}
