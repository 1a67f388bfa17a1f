package llm

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Usage records token consumption for one call.
type Usage struct {
	InputTokens  int32 `json:"input"`
	OutputTokens int32 `json:"output"`
}

// Add accumulates another usage record into u.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// Response is the result of a non-streaming generation call.
type Response struct {
	Text  string
	Usage Usage
}

// Stream yields text chunks of one generation. It is finite and cannot be
// restarted; Next returns io.EOF after the final chunk.
type Stream interface {
	Next() (string, error)
	// Usage reports token consumption; valid once Next has returned io.EOF.
	Usage() Usage
}

// Client is the model gateway shared by all pipeline stages. Implementations
// must be safe for concurrent use across requests.
type Client interface {
	// GenerateText produces a plain text completion.
	GenerateText(ctx context.Context, system, user string, tier ModelTier) (Response, error)
	// GenerateStructured produces JSON text conforming to schema. A response
	// the provider cannot force into the schema is a MalformedOutputError,
	// never a silent fallback.
	GenerateStructured(ctx context.Context, schema *genai.Schema, system, user string, tier ModelTier) (Response, error)
	// StreamText produces a finite chunk stream of a text completion.
	StreamText(ctx context.Context, system, user string, tier ModelTier) (Stream, error)
	// Close releases any resources held by the client.
	Close() error
}

// NewClient creates a client for the configured provider.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported provider %q", config.Provider)
	}
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini-backed gateway.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, config: config}, nil
}

func (c *GeminiClient) model(tier ModelTier, system string) (*genai.GenerativeModel, error) {
	name := c.config.Model(tier)
	if name == "" {
		return nil, fmt.Errorf("no model configured for tier %s", tier)
	}
	model := c.client.GenerativeModel(name)
	model.SetTemperature(0.1) // Low temperature for consistent output
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	return model, nil
}

// GenerateText produces a plain text completion.
func (c *GeminiClient) GenerateText(ctx context.Context, system, user string, tier ModelTier) (Response, error) {
	model, err := c.model(tier, system)
	if err != nil {
		return Response{}, err
	}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return Response{}, classifyCallError("generate text", err)
	}
	return responseFrom(resp)
}

// GenerateStructured produces JSON conforming to schema.
func (c *GeminiClient) GenerateStructured(ctx context.Context, schema *genai.Schema, system, user string, tier ModelTier) (Response, error) {
	model, err := c.model(tier, system)
	if err != nil {
		return Response{}, err
	}
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = schema

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return Response{}, classifyCallError("generate structured output", err)
	}
	out, err := responseFrom(resp)
	if err != nil {
		return Response{}, err
	}
	out.Text = CleanJSONBlock(out.Text)
	return out, nil
}

// StreamText produces a chunk stream of a text completion.
func (c *GeminiClient) StreamText(ctx context.Context, system, user string, tier ModelTier) (Stream, error) {
	model, err := c.model(tier, system)
	if err != nil {
		return nil, err
	}
	iter := model.GenerateContentStream(ctx, genai.Text(user))
	return &geminiStream{iter: iter}, nil
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

type geminiStream struct {
	iter  *genai.GenerateContentResponseIterator
	usage Usage
}

func (s *geminiStream) Next() (string, error) {
	resp, err := s.iter.Next()
	if err == iterator.Done {
		return "", io.EOF
	}
	if err != nil {
		return "", classifyCallError("stream text", err)
	}
	if resp.UsageMetadata != nil {
		s.usage = Usage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
		}
	}
	text, err := extractText(resp)
	if err != nil {
		// Chunks without text parts happen at stream boundaries; skip them.
		return "", nil
	}
	return text, nil
}

func (s *geminiStream) Usage() Usage {
	return s.usage
}

func responseFrom(resp *genai.GenerateContentResponse) (Response, error) {
	text, err := extractText(resp)
	if err != nil {
		return Response{}, err
	}
	out := Response{Text: text}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
		}
	}
	return out, nil
}

// extractText joins the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", &MalformedOutputError{Message: "no candidates in response"}
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &MalformedOutputError{Message: "no content in response"}
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", &MalformedOutputError{Message: "no text parts in response"}
	}
	return strings.Join(parts, ""), nil
}
