package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/valleyviewvt/snowline/internal/digest"
	"github.com/valleyviewvt/snowline/internal/mountain"
	"github.com/valleyviewvt/snowline/internal/subscribers"
)

var validate = validator.New()

const defaultSlug = "mount-snow"

// SubscriberStore is the subset of the subscriber store the API needs.
type SubscriberStore interface {
	Upsert(ctx context.Context, sub subscribers.Subscriber) error
}

// DigestRunner triggers one digest delivery run.
type DigestRunner interface {
	Run(ctx context.Context) (digest.Stats, error)
}

// Deps carries the collaborators wired into the HTTP handlers. Store and
// Digest may be nil when no database is configured; their routes then report
// service unavailable.
type Deps struct {
	Service      *mountain.Service
	Store        SubscriberStore
	Digest       DigestRunner
	DigestSecret string
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/mountain", func(c *fiber.Ctx) error {
		slug := c.Query("slug", defaultSlug)

		data, err := deps.Service.GetMountainData(c.Context(), slug)
		if err != nil {
			if errors.Is(err, mountain.ErrUnknownResort) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch mountain data")
		}
		return c.JSON(data)
	})

	v1.Post("/subscribe", func(c *fiber.Ctx) error {
		if deps.Store == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "subscriptions are not configured")
		}

		var req subscribeRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		sub, err := req.toSubscriber(deps.Service)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := deps.Store.Upsert(c.Context(), sub); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save subscription")
		}
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Subscribed successfully",
		})
	})

	v1.Post("/digest/run", func(c *fiber.Ctx) error {
		if deps.Digest == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "digest is not configured")
		}

		auth := c.Get(fiber.HeaderAuthorization)
		if deps.DigestSecret == "" || auth != "Bearer "+deps.DigestSecret {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		stats, err := deps.Digest.Run(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{
			"success": true,
			"stats":   stats,
		})
	})
}

// subscribeRequest is the POST /subscribe body.
type subscribeRequest struct {
	Email     string   `json:"email" validate:"required,email"`
	Resorts   []string `json:"resorts" validate:"required,min=1,dive,required"`
	StartDate string   `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string   `json:"endDate" validate:"required,datetime=2006-01-02"`
	SendHour  int      `json:"sendHour" validate:"gte=0,lte=23"`
}

func (r subscribeRequest) toSubscriber(svc *mountain.Service) (subscribers.Subscriber, error) {
	for _, slug := range r.Resorts {
		if !svc.Has(slug) {
			return subscribers.Subscriber{}, fmt.Errorf("unknown resort: %s", slug)
		}
	}

	start, err := time.Parse("2006-01-02", r.StartDate)
	if err != nil {
		return subscribers.Subscriber{}, errors.New("invalid startDate")
	}
	end, err := time.Parse("2006-01-02", r.EndDate)
	if err != nil {
		return subscribers.Subscriber{}, errors.New("invalid endDate")
	}
	if end.Before(start) {
		return subscribers.Subscriber{}, errors.New("endDate must not precede startDate")
	}

	return subscribers.Subscriber{
		Email:     strings.ToLower(strings.TrimSpace(r.Email)),
		Resorts:   r.Resorts,
		StartDate: start,
		EndDate:   end,
		SendHour:  r.SendHour,
	}, nil
}
