package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/aqcollect/aq-adapters/internal/adapters"
	"github.com/aqcollect/aq-adapters/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *adapters.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/sources", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"sources": service.Sources(),
		})
	})

	v1.Get("/measurements/latest", func(c *fiber.Ctx) error {
		sourceName, err := parseSourceQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		batch, err := service.GetLatest(sourceName)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no measurement data for requested source")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch measurement data")
		}

		return c.JSON(batch)
	})

	v1.Get("/measurements/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		batches, err := service.GetRange(req.Source, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no measurement history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch measurement history")
		}

		return c.JSON(fiber.Map{
			"source":  req.Source,
			"from":    req.From,
			"to":      req.To,
			"batches": batches,
		})
	})
}

// sourceQuery holds the query parameter identifying a source.
type sourceQuery struct {
	Source string `validate:"required"`
}

func parseSourceQuery(c *fiber.Ctx) (string, error) {
	q := sourceQuery{Source: c.Query("source")}
	if err := validate.Struct(q); err != nil {
		return "", err
	}
	return q.Source, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Source string    `validate:"required"`
	From   time.Time `validate:"required"`
	To     time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	source, err := parseSourceQuery(c)
	if err != nil {
		return err
	}
	h.Source = source

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
