package llm

import (
	"context"
	"fmt"
	"os"
	"time"
)

// RequestEvent captures one model call for the event log.
type RequestEvent struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// EventSink receives request events. The store's LLM event repo implements
// it; a nil-safe no-op is fine for tests.
type EventSink interface {
	AppendLLMRequest(ctx context.Context, ev RequestEvent) error
}

type contextKey string

const purposeKey contextKey = "llm_purpose"

// WithPurpose attaches a purpose label ("problem-gen", ...) to the context
// for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// LoggingProvider is a decorator that records every model call as an event.
type LoggingProvider struct {
	inner Provider
	sink  EventSink
}

// WithLogging wraps a Provider with event logging. A nil sink disables it.
func WithLogging(p Provider, sink EventSink) Provider {
	return &LoggingProvider{inner: p, sink: sink}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	if l.sink != nil {
		ev := RequestEvent{
			Provider:  l.inner.ModelID(),
			Model:     l.inner.ModelID(),
			Purpose:   PurposeFrom(ctx),
			LatencyMs: time.Since(start).Milliseconds(),
			Success:   err == nil,
		}
		if resp != nil {
			ev.InputTokens = resp.Usage.InputTokens
			ev.OutputTokens = resp.Usage.OutputTokens
			ev.Model = resp.Model
		}
		if err != nil {
			ev.ErrorMessage = err.Error()
		}
		// Never fail the request over a logging failure.
		if logErr := l.sink.AppendLLMRequest(ctx, ev); logErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to log model request event: %v\n", logErr)
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
