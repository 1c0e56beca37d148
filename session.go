package poegate

import "time"

// Session is a server-side record of one multi-turn conversation, keyed by
// an opaque identifier. Sessions are process-local and volatile: there is
// no persistence across restarts.
type Session struct {
	ID             string
	Messages       []Message
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
