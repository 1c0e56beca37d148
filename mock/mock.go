// Package mock provides test doubles for poegate interfaces using function
// fields.
package mock

import (
	"context"
	"io"

	"github.com/poegate/poegate"
)

// Interface compliance checks.
var (
	_ poegate.Provider = (*Provider)(nil)
	_ poegate.Stream   = (*Stream)(nil)
)

// Provider is a test double for poegate.Provider. Set the function fields
// for the methods you need.
type Provider struct {
	StreamFn     func(ctx context.Context, req poegate.Request) (poegate.Stream, error)
	ListModelsFn func(ctx context.Context) ([]string, error)
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req poegate.Request) (poegate.Stream, error) {
	return p.StreamFn(ctx, req)
}

// ListModels delegates to ListModelsFn. Returns nil, nil when unset.
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	if p.ListModelsFn == nil {
		return nil, nil
	}
	return p.ListModelsFn(ctx)
}

// Stream is a test double for poegate.Stream. NextFn panics when nil to
// catch missing setup; CloseFn is nil-safe because test code commonly
// calls defer stream.Close().
type Stream struct {
	NextFn  func() (string, error)
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (string, error) {
	return s.NextFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// ChunkStream returns a Stream that yields the given chunks in order and
// then signals normal completion.
func ChunkStream(chunks ...string) *Stream {
	i := 0
	return &Stream{
		NextFn: func() (string, error) {
			if i >= len(chunks) {
				return "", io.EOF
			}
			c := chunks[i]
			i++
			return c, nil
		},
	}
}

// FailingStream returns a Stream that yields the given chunks and then
// fails with err instead of completing.
func FailingStream(err error, chunks ...string) *Stream {
	i := 0
	return &Stream{
		NextFn: func() (string, error) {
			if i >= len(chunks) {
				return "", err
			}
			c := chunks[i]
			i++
			return c, nil
		},
	}
}
