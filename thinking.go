package poegate

import "strings"

// ThinkingPlaceholder is the token a thinking template must contain. The
// text on either side of it delimits the thinking segment in a response.
const ThinkingPlaceholder = "{{thinking}}"

// DefaultThinkingTemplate is the marker pair Claude-family bots emit when
// no custom template is configured.
const DefaultThinkingTemplate = "<thinking>" + ThinkingPlaceholder + "</thinking>"

// ThinkingConfig controls thinking-protocol handling for a single request.
// It is never persisted.
type ThinkingConfig struct {
	Enabled           bool
	Template          string
	IncludeInResponse bool
}

// DefaultThinking returns the configuration used when a request enables
// thinking without customizing it.
func DefaultThinking() ThinkingConfig {
	return ThinkingConfig{Enabled: true, Template: DefaultThinkingTemplate}
}

// Normalized validates the template once at the boundary. A template that
// lacks the placeholder, or whose delimiters on either side of it are
// empty, cannot mark a segment; it is replaced with DefaultThinkingTemplate
// and ok is false so the caller can log a warning. Validation never fails
// the request.
func (c ThinkingConfig) Normalized() (cfg ThinkingConfig, ok bool) {
	if c.Template == "" {
		c.Template = DefaultThinkingTemplate
		return c, true
	}
	if _, _, valid := splitTemplate(c.Template); !valid {
		c.Template = DefaultThinkingTemplate
		return c, false
	}
	return c, true
}

// splitTemplate breaks a template into the opening and closing delimiters
// around the placeholder. Both delimiters must be non-empty.
func splitTemplate(template string) (open, close string, ok bool) {
	i := strings.Index(template, ThinkingPlaceholder)
	if i < 0 {
		return "", "", false
	}
	open = template[:i]
	close = template[i+len(ThinkingPlaceholder):]
	if open == "" || close == "" {
		return "", "", false
	}
	return open, close, true
}

// ExtractThinking locates the first delimited thinking segment in text and
// returns its trimmed contents alongside the response text. The segment is
// removed from the response unless cfg retains it. When cfg is disabled or
// no segment is present the text comes back unchanged, which makes the
// function idempotent: a second pass over cleaned text is a no-op.
func ExtractThinking(text string, cfg ThinkingConfig) (thinking, response string) {
	if !cfg.Enabled {
		return "", text
	}
	open, close, ok := splitTemplate(cfg.Template)
	if !ok {
		open, close, _ = splitTemplate(DefaultThinkingTemplate)
	}
	start := strings.Index(text, open)
	if start < 0 {
		return "", text
	}
	rest := text[start+len(open):]
	end := strings.Index(rest, close)
	if end < 0 {
		return "", text
	}
	thinking = strings.TrimSpace(rest[:end])
	if cfg.IncludeInResponse {
		return thinking, text
	}
	response = strings.TrimSpace(text[:start] + rest[end+len(close):])
	return thinking, response
}
