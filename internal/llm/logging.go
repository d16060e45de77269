package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type purposeKey struct{}

// WithPurpose tags ctx so log lines say which feature made the call.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

func PurposeFrom(ctx context.Context) string {
	s, _ := ctx.Value(purposeKey{}).(string)
	return s
}

type loggingProvider struct {
	inner Provider
	log   *zap.Logger
	now   func() time.Time
}

// WithLogging logs one line per call with latency, token usage and the
// estimated cost when the model is priced.
func WithLogging(p Provider, log *zap.Logger) Provider {
	if log == nil {
		return p
	}
	return &loggingProvider{inner: p, log: log.Named("llm"), now: time.Now}
}

func (l *loggingProvider) ModelID() string { return l.inner.ModelID() }

func (l *loggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := l.now()
	resp, err := l.inner.Generate(ctx, req)

	fields := []zap.Field{
		zap.String("purpose", PurposeFrom(ctx)),
		zap.String("model", l.inner.ModelID()),
		zap.Duration("latency", l.now().Sub(start)),
	}
	if req.Schema != nil {
		fields = append(fields, zap.String("schema", req.Schema.Name))
	}
	if err != nil {
		l.log.Warn("generate failed", append(fields, zap.Error(err))...)
		return nil, err
	}

	fields = append(fields,
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens))
	if c := LookupCost(resp.Model); c != nil {
		fields = append(fields, zap.Float64("cost_usd", c.Cost(resp.Usage.InputTokens, resp.Usage.OutputTokens)))
	}
	l.log.Info("generate", fields...)
	return resp, nil
}
