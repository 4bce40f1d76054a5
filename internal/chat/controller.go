package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/varsilias/voicechat/pkg/types"
)

type Controller struct {
	log *slog.Logger
	eng Engine
}

func NewController(log *slog.Logger, eng Engine) *Controller {
	return &Controller{log: log, eng: eng}
}

// Reply resolves one inbound message into exactly one envelope. Completion
// failures become error envelopes carrying the failure's description.
func (c *Controller) Reply(ctx context.Context, text string) types.Envelope {
	if strings.TrimSpace(text) == "" {
		c.log.Warn("rejecting empty message")
		return types.ErrorEnvelope(ErrEmptyMessage.Error())
	}

	reply, latency, err := c.eng.Generate(ctx, text)
	if err != nil {
		c.log.Error("engine call",
			"err", err.Error(),
			"kind", KindOf(err).String(),
			"retryable", IsRetryable(err),
		)
		return types.ErrorEnvelope(err.Error())
	}

	c.log.Info("engine reply", "latency_ms", latency.Milliseconds(), "chars", len(reply))
	return types.AIResponse(reply)
}
