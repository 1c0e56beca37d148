// Package poegate defines the domain model for a proxy in front of the Poe
// bot-aggregation API: conversation messages and sessions, the provider
// abstraction over the upstream API, the query orchestrator, and the
// Claude thinking-protocol post-processing rules.
package poegate

// Message is one turn of a conversation. Messages are sent to the upstream
// bot in insertion order; the session store owns that order and the
// orchestrator only ever appends.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
