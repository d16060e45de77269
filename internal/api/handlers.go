package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/abhisek/studypulse/internal/progress"
)

type sessionRequest struct {
	SessionType     string `json:"session_type"`
	Subject         string `json:"subject"`
	DurationMinutes int    `json:"duration_minutes"`
	Score           *int   `json:"score"`
}

func (s *Server) recordSession(c *fiber.Ctx) error {
	var req sessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed body")
	}
	t, err := progress.ParseSessionType(req.SessionType)
	if err != nil {
		return err
	}
	stored, err := s.deps.Progress.Recorder.Save(c.UserContext(), userID(c), t, req.Subject, req.DurationMinutes, req.Score)
	if err != nil {
		return err
	}
	result := "stored"
	if !stored {
		result = "skipped"
	}
	s.metrics.sessions.WithLabelValues(string(t), result).Inc()
	return ok(c, fiber.StatusCreated, fiber.Map{"recorded": true})
}

func (s *Server) stats(c *fiber.Ctx) error {
	return outcome(c, s.deps.Progress.Cache.Get(c.UserContext(), userID(c)))
}

func (s *Server) streak(c *fiber.Ctx) error {
	return outcome(c, s.deps.Progress.Aggregator.Streak(c.UserContext(), userID(c)))
}

func (s *Server) weekly(c *fiber.Ctx) error {
	return outcome(c, s.deps.Progress.Engine.Weekly(c.UserContext(), userID(c)))
}

func (s *Server) monthly(c *fiber.Ctx) error {
	return outcome(c, s.deps.Progress.Engine.Monthly(c.UserContext(), userID(c)))
}

func (s *Server) insights(c *fiber.Ctx) error {
	return outcome(c, s.deps.Progress.Engine.Insights(c.UserContext(), userID(c)))
}

func (s *Server) listSubjects(c *fiber.Ctx) error {
	return outcome(c, s.deps.Progress.Tracker.List(c.UserContext(), userID(c)))
}

type subjectsRequest struct {
	Subjects []string `json:"subjects"`
	Grade    string   `json:"grade"`
	Board    string   `json:"board"`
	Group    string   `json:"group"`
}

// resolve expands a board/group selection into subject names when no
// explicit list was sent.
func (s *Server) resolve(req subjectsRequest) ([]string, string, error) {
	grade := strings.TrimSpace(req.Grade)
	if grade == "" {
		grade = s.deps.DefaultGrade
	}
	if len(req.Subjects) > 0 || req.Board == "" {
		return req.Subjects, grade, nil
	}
	subjects, err := s.deps.Progress.Curriculum().SubjectsFor(grade, req.Board, req.Group)
	if err != nil {
		return nil, "", fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return subjects, grade, nil
}

func (s *Server) initSubjects(c *fiber.Ctx) error {
	var req subjectsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed body")
	}
	subjects, grade, err := s.resolve(req)
	if err != nil {
		return err
	}
	if len(subjects) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no subjects given")
	}
	if err := s.deps.Progress.Tracker.Initialize(c.UserContext(), userID(c), subjects, grade); err != nil {
		return err
	}
	return s.listAfterWrite(c, fiber.StatusCreated)
}

func (s *Server) replaceSubjects(c *fiber.Ctx) error {
	var req subjectsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed body")
	}
	subjects, grade, err := s.resolve(req)
	if err != nil {
		return err
	}
	if err := s.deps.Progress.Tracker.ReplaceCurriculum(c.UserContext(), userID(c), subjects, grade); err != nil {
		return err
	}
	return s.listAfterWrite(c, fiber.StatusOK)
}

func (s *Server) listAfterWrite(c *fiber.Ctx, status int) error {
	o := s.deps.Progress.Tracker.List(c.UserContext(), userID(c))
	return c.Status(status).JSON(envelope{Success: true, Data: o.Value, Degraded: o.Degraded, Reason: o.Reason})
}

type askRequest struct {
	Subject  string `json:"subject"`
	Question string `json:"question"`
}

func (s *Server) askTutor(c *fiber.Ctx) error {
	if s.deps.Tutor == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "tutor is not configured")
	}
	var req askRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed body")
	}
	ans, err := s.deps.Tutor.Ask(c.UserContext(), userID(c), req.Subject, req.Question)
	if err != nil && ans == nil {
		return err
	}
	if err != nil {
		s.deps.Log.Warn("tutor session not recorded", zap.String("user_id", userID(c)), zap.Error(err))
	}
	return ok(c, fiber.StatusOK, ans)
}
