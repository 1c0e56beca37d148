package poegate

import (
	"context"
	"fmt"
	"strings"
)

// FallbackFunc re-issues the original request with the supplied thinking
// configuration. Typically a closure over [Client.Query].
type FallbackFunc func(ctx context.Context, prompt string, cfg ThinkingConfig) (QueryResult, error)

// thinkingErrorSignals are keyword fragments indicating a failure specific
// to the thinking protocol rather than to the request itself.
var thinkingErrorSignals = []string{
	"thinking",
	"protocol",
	"template",
	"format",
	"invalid request",
	"bad request",
}

// IsThinkingProtocolError reports whether an error message carries any of
// the known thinking-protocol failure signals.
func IsThinkingProtocolError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, signal := range thinkingErrorSignals {
		if strings.Contains(msg, signal) {
			return true
		}
	}
	return false
}

// FallbackResult is the terminal outcome of error recovery. It is a plain
// value: HandleQueryError never returns a Go error, because this boundary
// has nothing left to escalate to.
type FallbackResult struct {
	Text           string
	Err            bool
	ErrMessage     string
	FallbackUsed   bool
	FallbackFailed bool
}

// HandleQueryError decides whether a failed query is worth one retry with
// the thinking protocol forcibly disabled. The retry happens only when the
// error carries a thinking-protocol signal, a fallback is wired, and the
// bot is Claude-family; everything else is reported as-is.
func (c *Client) HandleQueryError(ctx context.Context, queryErr error, fallback FallbackFunc, bot, prompt string) FallbackResult {
	if IsThinkingProtocolError(queryErr) && fallback != nil && IsClaudeModel(bot) {
		c.log.Warn("thinking protocol error, retrying with thinking disabled",
			"bot", bot, "error", queryErr)

		res, err := fallback(ctx, prompt, ThinkingConfig{Enabled: false})
		if err != nil {
			c.log.Error("fallback query failed", "bot", bot, "error", err)
			return FallbackResult{
				Err:            true,
				ErrMessage:     fmt.Sprintf("Thinking protocol error: %v. Fallback also failed: %v", queryErr, err),
				FallbackUsed:   true,
				FallbackFailed: true,
			}
		}
		return FallbackResult{
			Text:         res.Text,
			Err:          true,
			ErrMessage:   fmt.Sprintf("Thinking protocol error: %v. Fallback response provided.", queryErr),
			FallbackUsed: true,
		}
	}

	c.log.Error("query failed without recovery path", "bot", bot, "error", queryErr)
	return FallbackResult{Err: true, ErrMessage: "Error: " + queryErr.Error()}
}
