package poegate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
)

// DefaultMaxFileSizeMB is the attachment size ceiling used when none is
// configured.
const DefaultMaxFileSizeMB = 10

// Client orchestrates upstream bot invocations: attachment staging,
// streamed-chunk accumulation, thinking-protocol post-processing and
// failure classification. It holds no conversation state; history is
// supplied per call and owned by the session store.
type Client struct {
	provider   Provider
	compatible bool
	maxBytes   int64
	log        *slog.Logger
}

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithClaudeCompatible toggles thinking-protocol handling for Claude-family
// bots. Enabled by default.
func WithClaudeCompatible(on bool) ClientOption {
	return func(c *Client) { c.compatible = on }
}

// WithMaxFileSize sets the attachment size limit in megabytes.
func WithMaxFileSize(mb int) ClientOption {
	return func(c *Client) { c.maxBytes = int64(mb) << 20 }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient creates a query orchestrator on top of the given provider.
func NewClient(provider Provider, opts ...ClientOption) *Client {
	c := &Client{
		provider:   provider,
		compatible: true,
		maxBytes:   DefaultMaxFileSizeMB << 20,
		log:        slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ListModels enumerates the bot identifiers the upstream currently serves.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	return c.provider.ListModels(ctx)
}

// QueryRequest carries one exchange: the target bot, the prompt, the prior
// conversation history, and optionally an attachment path, a thinking
// configuration and a callback receiving chunks as they stream.
type QueryRequest struct {
	Bot            string
	Prompt         string
	History        []Message
	AttachmentPath string
	Thinking       *ThinkingConfig
	OnChunk        func(chunk string)
}

// QueryResult is the outcome of one exchange. ErrCode is non-empty when the
// upstream call failed mid-stream but partial text was already accumulated;
// the partial text is returned rather than discarded.
type QueryResult struct {
	Text       string
	Bot        string
	Thinking   string
	ErrCode    string
	ErrMessage string
}

// Errored reports whether the exchange ended with a handled error.
func (r QueryResult) Errored() bool {
	return r.ErrCode != ""
}

// Query appends the prompt as a user turn to a working copy of the history,
// makes exactly one upstream call, and accumulates the streamed output into
// one text result. There is no automatic retry at this layer; recovery is
// the caller's concern via [Client.HandleQueryError].
func (c *Client) Query(ctx context.Context, req QueryRequest) (QueryResult, error) {
	prompt := req.Prompt
	if req.AttachmentPath != "" {
		combined, err := attachPrompt(prompt, req.AttachmentPath, c.maxBytes)
		if err != nil {
			c.log.Error("attachment rejected", "path", req.AttachmentPath, "error", err)
			return QueryResult{}, err
		}
		prompt = combined
	}

	isClaude := c.compatible && IsClaudeModel(req.Bot)
	var cfg ThinkingConfig
	applyThinking := isClaude && req.Thinking != nil && req.Thinking.Enabled
	if applyThinking {
		var ok bool
		cfg, ok = req.Thinking.Normalized()
		if !ok {
			c.log.Warn("invalid thinking template, using default", "bot", req.Bot)
		}
	}

	history := append(slices.Clone(req.History), Message{Role: RoleUser, Content: prompt})
	c.log.Debug("querying bot", "bot", req.Bot, "history_len", len(history))

	stream, err := c.provider.Stream(ctx, Request{Bot: req.Bot, Messages: history})
	if err != nil {
		return QueryResult{}, c.callError(req.Bot, isClaude, err)
	}
	defer stream.Close()

	// When the segment is retained in the response, chunks pass through
	// unchanged and the final pass alone records the thinking; extracting
	// per chunk as well would record the same segment twice.
	stripChunks := applyThinking && !cfg.IncludeInResponse

	var text, thinking strings.Builder
	var streamErr error
	for {
		chunk, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			streamErr = err
			break
		}
		if stripChunks {
			t, cleaned := ExtractThinking(chunk, cfg)
			appendThinking(&thinking, t)
			chunk = cleaned
		}
		text.WriteString(chunk)
		if req.OnChunk != nil && chunk != "" {
			req.OnChunk(chunk)
		}
	}

	// Final idempotent pass catches segments that spanned chunk boundaries.
	accumulated := text.String()
	if applyThinking {
		t, cleaned := ExtractThinking(accumulated, cfg)
		appendThinking(&thinking, t)
		accumulated = cleaned
	}

	if streamErr != nil {
		if !isClaude {
			return QueryResult{}, c.callError(req.Bot, isClaude, streamErr)
		}
		code, msg := classifyClaudeError(streamErr)
		c.log.Warn("claude error handled", "bot", req.Bot, "code", code, "error", streamErr)
		if accumulated != "" {
			return QueryResult{
				Text:       accumulated,
				Bot:        req.Bot,
				Thinking:   thinking.String(),
				ErrCode:    code,
				ErrMessage: msg,
			}, nil
		}
		return QueryResult{}, &APIError{Message: msg, Err: streamErr}
	}

	c.log.Debug("received response", "bot", req.Bot, "length", len(accumulated))
	return QueryResult{Text: accumulated, Bot: req.Bot, Thinking: thinking.String()}, nil
}

// callError maps an upstream failure that produced no usable text. Errors
// from Claude-family bots are replaced with the classified message; all
// others propagate unchanged in meaning.
func (c *Client) callError(bot string, isClaude bool, err error) error {
	if isClaude {
		code, msg := classifyClaudeError(err)
		c.log.Warn("claude error handled", "bot", bot, "code", code, "error", err)
		return &APIError{Message: msg, Err: err}
	}
	c.log.Error("upstream query failed", "bot", bot, "error", err)
	return fmt.Errorf("query bot %q: %w", bot, err)
}

func appendThinking(sb *strings.Builder, t string) {
	if t == "" {
		return
	}
	if sb.Len() > 0 {
		sb.WriteByte('\n')
	}
	sb.WriteString(t)
}
