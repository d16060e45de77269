// Package tutor answers study questions through an LLM and books the time
// spent as an ai_tutor study session.
package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/studypulse/internal/llm"
	"github.com/abhisek/studypulse/internal/progress"
)

var (
	ErrEmptyQuestion = errors.New("question is empty")
	ErrNoSubject     = errors.New("subject is required")
)

// SessionRecorder books the tutoring time. progress.Recorder satisfies it.
type SessionRecorder interface {
	Record(ctx context.Context, userID string, t progress.SessionType, subject string, durationMinutes int, score *int) error
}

// ProgressLister supplies syllabus context for the prompt. progress.Tracker
// satisfies it.
type ProgressLister interface {
	List(ctx context.Context, userID string) progress.Outcome[[]progress.SubjectProgress]
}

type Config struct {
	MaxTokens   int
	Temperature float64
	// Timeout bounds the provider call. Zero means no extra bound.
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{MaxTokens: 1024, Temperature: 0.3}
}

type Answer struct {
	Subject         string    `json:"subject"`
	Question        string    `json:"question"`
	Text            string    `json:"answer"`
	FollowUps       []string  `json:"followUps"`
	Model           string    `json:"model"`
	DurationMinutes int       `json:"durationMinutes"`
	AskedAt         time.Time `json:"askedAt"`
}

type Tutor struct {
	provider llm.Provider
	recorder SessionRecorder
	subjects ProgressLister
	cfg      Config
	log      *zap.Logger
	now      func() time.Time
}

// New wires a tutor. subjects may be nil; the prompt then omits progress.
func New(provider llm.Provider, recorder SessionRecorder, subjects ProgressLister, cfg Config, log *zap.Logger) *Tutor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tutor{
		provider: provider,
		recorder: recorder,
		subjects: subjects,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

type reply struct {
	Answer    string   `json:"answer"`
	FollowUps []string `json:"followUps"`
}

// Ask answers question and records an ai_tutor session covering the time
// from the call to the reply, rounded up to whole minutes. A failed provider
// call records nothing. If recording fails with a non-degradable error the
// answer is still returned alongside the error.
func (t *Tutor) Ask(ctx context.Context, userID, subject, question string) (*Answer, error) {
	subject = strings.TrimSpace(subject)
	switch {
	case userID == "":
		return nil, progress.ErrMissingUser
	case subject == "":
		return nil, ErrNoSubject
	case strings.TrimSpace(question) == "":
		return nil, ErrEmptyQuestion
	}

	start := t.now()
	req := llm.UserPrompt(systemPrompt, buildPrompt(subject, question, t.progressFor(ctx, userID, subject)))
	req.Schema = AnswerSchema
	req.MaxTokens = t.cfg.MaxTokens
	req.Temperature = t.cfg.Temperature

	callCtx := llm.WithPurpose(ctx, "tutor")
	if t.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, t.cfg.Timeout)
		defer cancel()
	}
	resp, err := t.provider.Generate(callCtx, req)
	if err != nil {
		return nil, fmt.Errorf("tutor: %w", err)
	}
	var r reply
	if err := json.Unmarshal(resp.Content, &r); err != nil {
		return nil, fmt.Errorf("tutor: decode reply: %w", err)
	}
	if r.FollowUps == nil {
		r.FollowUps = []string{}
	}

	ans := &Answer{
		Subject:         subject,
		Question:        question,
		Text:            r.Answer,
		FollowUps:       r.FollowUps,
		Model:           resp.Model,
		DurationMinutes: SessionMinutes(t.now().Sub(start)),
		AskedAt:         start,
	}
	if err := t.recorder.Record(ctx, userID, progress.SessionAITutor, subject, ans.DurationMinutes, nil); err != nil {
		return ans, fmt.Errorf("tutor: record session: %w", err)
	}
	t.log.Debug("tutor answered",
		zap.String("user_id", userID),
		zap.String("subject", subject),
		zap.Int("minutes", ans.DurationMinutes))
	return ans, nil
}

func (t *Tutor) progressFor(ctx context.Context, userID, subject string) *progress.SubjectProgress {
	if t.subjects == nil {
		return nil
	}
	for _, sp := range t.subjects.List(ctx, userID).Value {
		if strings.EqualFold(sp.SubjectName, subject) {
			return &sp
		}
	}
	return nil
}

// SessionMinutes rounds d up to whole minutes with a floor of one.
func SessionMinutes(d time.Duration) int {
	m := int((d + time.Minute - 1) / time.Minute)
	return max(m, 1)
}
