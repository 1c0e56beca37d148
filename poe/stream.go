package poe

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/poegate/poegate"
)

// stream implements [poegate.Stream] by parsing SSE events from an HTTP
// response body.
type stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	ctx     context.Context
	emitted strings.Builder
	done    bool
	err     error // terminal error, if any
}

// Interface compliance check.
var _ poegate.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser) *stream {
	return &stream{
		body:    body,
		scanner: bufio.NewScanner(body),
		ctx:     ctx,
	}
}

// Next reads the next text chunk from the SSE stream. Returns io.EOF when
// the stream completes normally.
func (s *stream) Next() (string, error) {
	if s.done {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}

	for {
		eventType, data, err := s.readSSEEvent()
		if err != nil {
			return "", s.terminate(err)
		}

		switch eventType {
		case "text":
			var evt textEvent
			if err := json.Unmarshal([]byte(data), &evt); err != nil {
				return "", s.terminate(fmt.Errorf("poe: decode text event: %w", err))
			}
			s.emitted.WriteString(evt.Text)
			return evt.Text, nil
		case "replace_response":
			var evt textEvent
			if err := json.Unmarshal([]byte(data), &evt); err != nil {
				return "", s.terminate(fmt.Errorf("poe: decode replace event: %w", err))
			}
			if chunk, ok := s.replace(evt.Text); ok {
				return chunk, nil
			}
			continue
		case "done":
			s.done = true
			return "", io.EOF
		case "error":
			var evt errorEvent
			msg := data
			if err := json.Unmarshal([]byte(data), &evt); err == nil && evt.Text != "" {
				msg = evt.Text
			}
			return "", s.terminate(&poegate.APIError{Message: msg})
		default:
			// ping and unknown event types are ignored.
		}
	}
}

// replace handles a replace_response event. Chunks already handed to the
// consumer cannot be retracted, so a replacement extending what was emitted
// yields just the new suffix, and one matching it exactly yields nothing.
// A replacement that would require retracting emitted text is dropped
// rather than appended, leaving the consumer with the text it has; the
// internal accumulator still resyncs to the replacement so later events
// diff against the upstream's view.
func (s *stream) replace(text string) (string, bool) {
	prev := s.emitted.String()
	if strings.HasPrefix(text, prev) {
		suffix := text[len(prev):]
		if suffix == "" {
			return "", false
		}
		s.emitted.WriteString(suffix)
		return suffix, true
	}
	s.emitted.Reset()
	s.emitted.WriteString(text)
	return "", false
}

// Close closes the underlying HTTP response body. Closing an exhausted
// stream is a no-op on the transport.
func (s *stream) Close() error {
	s.done = true
	return s.body.Close()
}

// terminate records a terminal error. Raw EOF without a done event means
// the stream ended unexpectedly.
func (s *stream) terminate(err error) error {
	s.done = true
	if err == io.EOF {
		err = &poegate.APIError{Message: "unexpected end of stream"}
	}
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	s.err = err
	return s.err
}

// readSSEEvent reads lines until a complete SSE event is assembled,
// returning the event type and the data payload.
func (s *stream) readSSEEvent() (string, string, error) {
	var eventType string
	var dataBuf strings.Builder

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			// Empty line signals end of event.
			if dataBuf.Len() > 0 {
				return eventType, dataBuf.String(), nil
			}
			continue
		}

		if strings.HasPrefix(line, "event: ") {
			eventType = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			if dataBuf.Len() > 0 {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(strings.TrimPrefix(line, "data: "))
		}
		// Comments (lines starting with ':') and unknown fields are ignored.
	}

	if err := s.scanner.Err(); err != nil {
		return "", "", fmt.Errorf("poe: %w", err)
	}

	// Scanner exhausted without error = EOF.
	if dataBuf.Len() > 0 {
		return eventType, dataBuf.String(), nil
	}
	return "", "", io.EOF
}
