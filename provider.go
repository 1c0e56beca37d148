package poegate

import "context"

// Request carries one upstream bot invocation: the target bot and the full
// ordered conversation history, ending with the current user turn.
type Request struct {
	Bot      string
	Messages []Message
}

// Provider is a strategy pattern interface for the upstream bot-serving API.
type Provider interface {
	// Stream starts a generation request and returns a pull-based stream of
	// text chunks. Cancellation flows through ctx; the returned stream is
	// lazy, finite and not restartable.
	Stream(ctx context.Context, req Request) (Stream, error)

	// ListModels enumerates the bot identifiers the upstream currently serves.
	ListModels(ctx context.Context) ([]string, error)
}
