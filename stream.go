package poegate

// Stream uses a pull-based iterator pattern over generated text chunks.
//
// Next() returns the next chunk, io.EOF on normal completion, or any other
// error when the stream fails mid-flight. Chunks received before a failure
// are valid; callers accumulate them and decide what to do with the partial
// text. A stream is forward-only: there is no way to restart or rewind it.
//
// Close() releases the underlying transport resources. Closing an exhausted
// stream is a no-op.
type Stream interface {
	Next() (string, error)
	Close() error
}
