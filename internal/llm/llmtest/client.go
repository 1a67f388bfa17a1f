// Package llmtest provides an in-memory Client for tests. Behavior is
// driven by closures so each test scripts exactly the responses it needs.
package llmtest

import (
	"context"
	"io"
	"sync"

	"github.com/google/generative-ai-go/genai"

	"github.com/AliTechM/ai-profile-personalization-engine/internal/llm"
)

// Call records one invocation of the fake client.
type Call struct {
	Method string
	System string
	User   string
	Tier   llm.ModelTier
}

// Client is a scriptable llm.Client. Unset functions fail the call with a
// MalformedOutputError so tests notice unexpected paths.
type Client struct {
	TextFn       func(system, user string, tier llm.ModelTier) (llm.Response, error)
	StructuredFn func(schema *genai.Schema, system, user string, tier llm.ModelTier) (llm.Response, error)
	StreamFn     func(system, user string, tier llm.ModelTier) ([]string, error)

	mu    sync.Mutex
	calls []Call
}

func (c *Client) record(method, system, user string, tier llm.ModelTier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Method: method, System: system, User: user, Tier: tier})
}

// Calls returns a copy of every recorded invocation in order.
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// CallCount returns the number of recorded invocations of method. Empty
// method counts everything.
func (c *Client) CallCount(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if method == "" {
		return len(c.calls)
	}
	n := 0
	for _, call := range c.calls {
		if call.Method == method {
			n++
		}
	}
	return n
}

func (c *Client) GenerateText(ctx context.Context, system, user string, tier llm.ModelTier) (llm.Response, error) {
	c.record("GenerateText", system, user, tier)
	if err := ctx.Err(); err != nil {
		return llm.Response{}, err
	}
	if c.TextFn == nil {
		return llm.Response{}, &llm.MalformedOutputError{Message: "llmtest: TextFn not set"}
	}
	return c.TextFn(system, user, tier)
}

func (c *Client) GenerateStructured(ctx context.Context, schema *genai.Schema, system, user string, tier llm.ModelTier) (llm.Response, error) {
	c.record("GenerateStructured", system, user, tier)
	if err := ctx.Err(); err != nil {
		return llm.Response{}, err
	}
	if c.StructuredFn == nil {
		return llm.Response{}, &llm.MalformedOutputError{Message: "llmtest: StructuredFn not set"}
	}
	return c.StructuredFn(schema, system, user, tier)
}

func (c *Client) StreamText(ctx context.Context, system, user string, tier llm.ModelTier) (llm.Stream, error) {
	c.record("StreamText", system, user, tier)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.StreamFn == nil {
		return nil, &llm.MalformedOutputError{Message: "llmtest: StreamFn not set"}
	}
	chunks, err := c.StreamFn(system, user, tier)
	if err != nil {
		return nil, err
	}
	return &stream{chunks: chunks}, nil
}

func (c *Client) Close() error {
	return nil
}

type stream struct {
	chunks []string
	pos    int
}

func (s *stream) Next() (string, error) {
	if s.pos >= len(s.chunks) {
		return "", io.EOF
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return chunk, nil
}

func (s *stream) Usage() llm.Usage {
	return llm.Usage{InputTokens: 1, OutputTokens: 1}
}
