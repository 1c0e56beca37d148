package poegate_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/poegate/poegate"
	"github.com/poegate/poegate/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Query_AccumulatesChunks(t *testing.T) {
	t.Parallel()
	provider := &mock.Provider{
		StreamFn: func(ctx context.Context, req poegate.Request) (poegate.Stream, error) {
			return mock.ChunkStream("The capital ", "of France ", "is Paris."), nil
		},
	}
	client := poegate.NewClient(provider)

	res, err := client.Query(context.Background(), poegate.QueryRequest{
		Bot:    "GPT-4o",
		Prompt: "capital of France?",
	})

	require.NoError(t, err)
	assert.Equal(t, "The capital of France is Paris.", res.Text)
	assert.Equal(t, "GPT-4o", res.Bot)
	assert.False(t, res.Errored())
}

func TestClient_Query_AppendsPromptToHistory(t *testing.T) {
	t.Parallel()
	var got poegate.Request
	provider := &mock.Provider{
		StreamFn: func(ctx context.Context, req poegate.Request) (poegate.Stream, error) {
			got = req
			return mock.ChunkStream("ok"), nil
		},
	}
	client := poegate.NewClient(provider)

	history := []poegate.Message{
		{Role: poegate.RoleUser, Content: "first"},
		{Role: poegate.RoleBot, Content: "reply"},
	}
	_, err := client.Query(context.Background(), poegate.QueryRequest{
		Bot:     "GPT-4o",
		Prompt:  "second",
		History: history,
	})

	require.NoError(t, err)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, poegate.Message{Role: poegate.RoleUser, Content: "second"}, got.Messages[2])
	// The caller's slice must not be mutated.
	assert.Len(t, history, 2)
}

func TestClient_Query_CallsProviderExactlyOnce(t *testing.T) {
	t.Parallel()
	calls := 0
	provider := &mock.Provider{
		StreamFn: func(ctx context.Context, req poegate.Request) (poegate.Stream, error) {
			calls++
			return nil, errors.New("upstream down")
		},
	}
	client := poegate.NewClient(provider)

	_, err := client.Query(context.Background(), poegate.QueryRequest{Bot: "GPT-4o", Prompt: "hi"})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestClient_Query_OnChunk(t *testing.T) {
	t.Parallel()
	provider := &mock.Provider{
		StreamFn: func(ctx context.Context, req poegate.Request) (poegate.Stream, error) {
			return mock.ChunkStream("a", "b", "c"), nil
		},
	}
	client := poegate.NewClient(provider)

	var seen []string
	_, err := client.Query(context.Background(), poegate.QueryRequest{
		Bot:     "GPT-4o",
		Prompt:  "hi",
		OnChunk: func(chunk string) { seen = append(seen, chunk) },
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestClient_Query_ExtractsThinking(t *testing.T) {
	t.Parallel()
	provider := &mock.Provider{
		StreamFn: func(ctx context.Context, req poegate.Request) (poegate.Stream, error) {
			return mock.ChunkStream("<thinking>step by step</thinking>", "It is 4."), nil
		},
	}
	client := poegate.NewClient(provider)

	thinking := poegate.DefaultThinking()
	res, err := client.Query(context.Background(), poegate.QueryRequest{
		Bot:      "Claude-3-Sonnet",
		Prompt:   "2+2?",
		Thinking: &thinking,
	})

	require.NoError(t, err)
	assert.Equal(t, "It is 4.", res.Text)
	assert.Equal(t, "step by step", res.Thinking)
}

func TestClient_Query_ThinkingAcrossChunkBoundary(t *testing.T) {
	t.Parallel()
	provider := &mock.Provider{
		StreamFn: func(ctx context.Context, req poegate.Request) (poegate.Stream, error) {
			return mock.ChunkStream("<thinking>split ", "reasoning</thinking>", "answer"), nil
		},
	}
	client := poegate.NewClient(provider)

	thinking := poegate.DefaultThinking()
	res, err := client.Query(context.Background(), poegate.QueryRequest{
		Bot:      "Claude-3-Opus",
		Prompt:   "hi",
		Thinking: &thinking,
	})

	require.NoError(t, err)
	assert.Equal(t, "answer", res.Text)
	assert.Equal(t, "split reasoning", res.Thinking)
}

func TestClient_Query_ThinkingIncludeInResponse(t *testing.T) {
	t.Parallel()
	provider := &mock.Provider{
		StreamFn: func(ctx context.Context, req poegate.Request) (poegate.Stream, error) {
			return mock.ChunkStream("<thinking>reasoning</thinking>", "answer"), nil
		},
	}
	client := poegate.NewClient(provider)

	thinking := poegate.DefaultThinking()
	thinking.IncludeInResponse = true
	res, err := client.Query(context.Background(), poegate.QueryRequest{
		Bot:      "Claude-3-Sonnet",
		Prompt:   "hi",
		Thinking: &thinking,
	})

	require.NoError(t, err)
	assert.Equal(t, "<thinking>reasoning</thinking>answer", res.Text)
	assert.Equal(t, "reasoning", res.Thinking)
}

func TestClient_Query_ThinkingSkippedForNonClaude(t *testing.T) {
	t.Parallel()
	text := "<thinking>not special here</thinking>body"
	provider := &mock.Provider{
		StreamFn: func(ctx context.Context, req poegate.Request) (poegate.Stream, error) {
			return mock.ChunkStream(text), nil
		},
	}
	client := poegate.NewClient(provider)

	thinking := poegate.DefaultThinking()
	res, err := client.Query(context.Background(), poegate.QueryRequest{
		Bot:      "GPT-4o",
		Prompt:   "hi",
		Thinking: &thinking,
	})

	require.NoError(t, err)
	assert.Equal(t, text, res.Text)
	assert.Empty(t, res.Thinking)
}

func TestClient_Query_ThinkingSkippedWhenIncompatible(t *testing.T) {
	t.Parallel()
	text := "<thinking>raw</thinking>body"
	provider := &mock.Provider{
		StreamFn: func(ctx context.Context, req poegate.Request) (poegate.Stream, error) {
			return mock.ChunkStream(text), nil
		},
	}
	client := poegate.NewClient(provider, poegate.WithClaudeCompatible(false))

	thinking := poegate.DefaultThinking()
	res, err := client.Query(context.Background(), poegate.QueryRequest{
		Bot:      "Claude-3-Sonnet",
		Prompt:   "hi",
		Thinking: &thinking,
	})

	require.NoError(t, err)
	assert.Equal(t, text, res.Text)
	assert.Empty(t, res.Thinking)
}

func TestClient_Query_PartialTextOnClaudeStreamError(t *testing.T) {
	t.Parallel()
	provider := &mock.Provider{
		StreamFn: func(ctx context.Context, req poegate.Request) (poegate.Stream, error) {
			return mock.FailingStream(errors.New("context window exceeded"), "partial "), nil
		},
	}
	client := poegate.NewClient(provider)

	res, err := client.Query(context.Background(), poegate.QueryRequest{
		Bot:    "Claude-3-Sonnet",
		Prompt: "hi",
	})

	require.NoError(t, err)
	assert.Equal(t, "partial ", res.Text)
	assert.True(t, res.Errored())
	assert.Equal(t, "claude_context_window_error", res.ErrCode)
	assert.Contains(t, res.ErrMessage, "context window")
}

func TestClient_Query_ClaudeStreamErrorWithoutPartial(t *testing.T) {
	t.Parallel()
	provider := &mock.Provider{
		StreamFn: func(ctx context.Context, req poegate.Request) (poegate.Stream, error) {
			return mock.FailingStream(errors.New("thinking protocol violation")), nil
		},
	}
	client := poegate.NewClient(provider)

	_, err := client.Query(context.Background(), poegate.QueryRequest{
		Bot:    "Claude-3-Sonnet",
		Prompt: "hi",
	})

	var apiErr *poegate.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "thinking protocol")
}

func TestClient_Query_NonClaudeStreamErrorPropagates(t *testing.T) {
	t.Parallel()
	cause := errors.New("upstream reset")
	provider := &mock.Provider{
		StreamFn: func(ctx context.Context, req poegate.Request) (poegate.Stream, error) {
			return mock.FailingStream(cause, "partial"), nil
		},
	}
	client := poegate.NewClient(provider)

	_, err := client.Query(context.Background(), poegate.QueryRequest{Bot: "GPT-4o", Prompt: "hi"})

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}

func TestClient_Query_TextAttachmentInlined(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("line one"), 0o644))

	var got poegate.Request
	provider := &mock.Provider{
		StreamFn: func(ctx context.Context, req poegate.Request) (poegate.Stream, error) {
			got = req
			return mock.ChunkStream("ok"), nil
		},
	}
	client := poegate.NewClient(provider)

	_, err := client.Query(context.Background(), poegate.QueryRequest{
		Bot:            "GPT-4o",
		Prompt:         "summarize",
		AttachmentPath: path,
	})

	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Contains(t, got.Messages[0].Content, "summarize")
	assert.Contains(t, got.Messages[0].Content, "File content:\nline one")
}

func TestClient_Query_BinaryAttachmentNotedByName(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "image.bin")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x81}, 0o644))

	var got poegate.Request
	provider := &mock.Provider{
		StreamFn: func(ctx context.Context, req poegate.Request) (poegate.Stream, error) {
			got = req
			return mock.ChunkStream("ok"), nil
		},
	}
	client := poegate.NewClient(provider)

	_, err := client.Query(context.Background(), poegate.QueryRequest{
		Bot:            "GPT-4o",
		Prompt:         "describe",
		AttachmentPath: path,
	})

	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Contains(t, got.Messages[0].Content, "[File attached: image.bin]")
	assert.NotContains(t, got.Messages[0].Content, "File content:")
}

func TestClient_Query_MissingAttachmentFailsBeforeProviderCall(t *testing.T) {
	t.Parallel()
	called := false
	provider := &mock.Provider{
		StreamFn: func(ctx context.Context, req poegate.Request) (poegate.Stream, error) {
			called = true
			return mock.ChunkStream("ok"), nil
		},
	}
	client := poegate.NewClient(provider)

	_, err := client.Query(context.Background(), poegate.QueryRequest{
		Bot:            "GPT-4o",
		Prompt:         "hi",
		AttachmentPath: filepath.Join(t.TempDir(), "absent.pdf"),
	})

	var fileErr *poegate.FileHandlingError
	require.ErrorAs(t, err, &fileErr)
	assert.False(t, called)
}

func TestClient_Query_OversizedAttachmentRejected(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "huge.txt")
	require.NoError(t, os.WriteFile(path, make([]byte, 2<<20), 0o644))

	provider := &mock.Provider{
		StreamFn: func(ctx context.Context, req poegate.Request) (poegate.Stream, error) {
			return mock.ChunkStream("ok"), nil
		},
	}
	client := poegate.NewClient(provider, poegate.WithMaxFileSize(1))

	_, err := client.Query(context.Background(), poegate.QueryRequest{
		Bot:            "GPT-4o",
		Prompt:         "hi",
		AttachmentPath: path,
	})

	var fileErr *poegate.FileHandlingError
	require.ErrorAs(t, err, &fileErr)
	assert.Contains(t, fileErr.Error(), "exceeds limit")
}

func TestClient_Query_ClosesStream(t *testing.T) {
	t.Parallel()
	closed := false
	provider := &mock.Provider{
		StreamFn: func(ctx context.Context, req poegate.Request) (poegate.Stream, error) {
			inner := mock.ChunkStream("done")
			return &mock.Stream{
				NextFn:  inner.Next,
				CloseFn: func() error { closed = true; return nil },
			}, nil
		},
	}
	client := poegate.NewClient(provider)

	_, err := client.Query(context.Background(), poegate.QueryRequest{Bot: "GPT-4o", Prompt: "hi"})

	require.NoError(t, err)
	assert.True(t, closed)
}

func TestClient_ListModels(t *testing.T) {
	t.Parallel()
	provider := &mock.Provider{
		ListModelsFn: func(ctx context.Context) ([]string, error) {
			return []string{"GPT-4o", "Claude-3-Sonnet"}, nil
		},
	}
	client := poegate.NewClient(provider)

	models, err := client.ListModels(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"GPT-4o", "Claude-3-Sonnet"}, models)
}

func TestMockChunkStream_Exhausts(t *testing.T) {
	t.Parallel()
	s := mock.ChunkStream("a")
	chunk, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", chunk)
	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF)
}
