package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/abhisek/studypulse/internal/progress"
	"github.com/abhisek/studypulse/internal/store"
	"github.com/abhisek/studypulse/internal/tutor"
)

// envelope is the body of every successful response. Degraded reads still
// answer 200 and carry the fallback value.
type envelope struct {
	Success  bool   `json:"success"`
	Data     any    `json:"data"`
	Degraded bool   `json:"degraded,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func ok(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(envelope{Success: true, Data: data})
}

func outcome[T any](c *fiber.Ctx, o progress.Outcome[T]) error {
	if o.Degraded {
		c.Locals(localDegradedKind, o.Kind.String())
	}
	return c.JSON(envelope{Success: true, Data: o.Value, Degraded: o.Degraded, Reason: o.Reason})
}

var badInput = []error{
	progress.ErrUnknownSessionType,
	progress.ErrInvalidDuration,
	progress.ErrScoreRequired,
	progress.ErrScoreOutOfRange,
	progress.ErrScoreNotAllowed,
	progress.ErrMissingUser,
	progress.ErrMissingSubject,
	tutor.ErrEmptyQuestion,
	tutor.ErrNoSubject,
}

func statusOf(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	for _, target := range badInput {
		if errors.Is(err, target) {
			return fiber.StatusBadRequest
		}
	}
	switch store.KindOf(err) {
	case store.KindSchemaMissing, store.KindConnectivity, store.KindNotConfigured:
		return fiber.StatusServiceUnavailable
	case store.KindConflict:
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status := statusOf(err)
	msg := err.Error()
	switch {
	case store.KindOf(err) == store.KindSchemaMissing:
		msg = "setup incomplete: run studypulse migrate"
	case status == fiber.StatusInternalServerError:
		msg = "internal error"
	}
	return c.Status(status).JSON(errorBody{Error: msg})
}
