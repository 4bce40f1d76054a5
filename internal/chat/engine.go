package chat

import (
	"context"
	"fmt"
	"time"
)

// Engine turns one prompt into one completion. Implementations must be safe
// for concurrent use; every connection shares the same engine.
type Engine interface {
	Generate(ctx context.Context, prompt string) (text string, latency time.Duration, err error)
}

// EchoEngine answers without any provider, for local development.
type EchoEngine struct {
	minLatency time.Duration
}

func NewEchoEngine(minLatency time.Duration) *EchoEngine { return &EchoEngine{minLatency: minLatency} }

func (e *EchoEngine) Generate(ctx context.Context, prompt string) (string, time.Duration, error) {
	start := time.Now()
	if e.minLatency > 0 {
		select {
		case <-time.After(e.minLatency):
		case <-ctx.Done():
			return "", 0, NewProviderError(ctx.Err())
		}
	}
	text := fmt.Sprintf("(demo:echo) you said: %s", prompt)
	return text, time.Since(start), nil
}
