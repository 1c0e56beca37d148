package poegate

import "strings"

// claudeModelRegistry lists the name fragments identifying the Claude
// family, the vendor family whose responses carry the thinking protocol.
var claudeModelRegistry = []string{
	"claude",
	"claude-2",
	"claude-3",
	"claude-3-opus",
	"claude-3-sonnet",
	"claude-3-haiku",
	"claude-3.5-sonnet",
	"claude-3.7-sonnet",
}

// IsClaudeModel reports whether a bot identifier belongs to the Claude
// family. The match is case-insensitive and runs in both directions, so a
// registry fragment containing the bot name counts as well as a bot name
// containing a fragment.
func IsClaudeModel(bot string) bool {
	if bot == "" {
		return false
	}
	name := strings.ToLower(bot)
	for _, frag := range claudeModelRegistry {
		if strings.Contains(name, frag) || strings.Contains(frag, name) {
			return true
		}
	}
	return false
}

// Claude error codes surfaced in QueryResult and user-facing messages.
const (
	ClaudeErrThinkingProtocol = "claude_thinking_protocol_error"
	ClaudeErrContextWindow    = "claude_context_window_error"
	ClaudeErrGeneric          = "claude_error"
)

// classifyClaudeError buckets an upstream failure from a Claude-family bot
// into the small taxonomy used for fallback decisions and user-facing
// messages.
func classifyClaudeError(err error) (code, message string) {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "thinking protocol"):
		return ClaudeErrThinkingProtocol,
			"Error with Claude thinking protocol. Try again without the thinking parameter."
	case strings.Contains(msg, "context window"), strings.Contains(msg, "token limit"):
		return ClaudeErrContextWindow,
			"The input exceeds Claude's context window. Try reducing the input size or using a model with a larger context window."
	default:
		return ClaudeErrGeneric, "Error with Claude: " + err.Error()
	}
}
