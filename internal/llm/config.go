// Package llm provides the model gateway: a thin capability abstraction over
// chat-completion providers exposing text, structured-object, and streaming
// generation. Stages depend on the Client interface only, so any provider
// honoring the contract is interchangeable.
package llm

// ModelTier represents the complexity/capability level of a model.
type ModelTier string

const (
	// TierLite is for simple prose: feedback and report summaries.
	TierLite ModelTier = "lite"
	// TierStandard is for structured output: mapping, parsing.
	TierStandard ModelTier = "standard"
	// TierAdvanced is for per-section rewriting.
	TierAdvanced ModelTier = "advanced"
)

// Provider identifies an LLM provider.
type Provider string

// Supported providers.
const (
	ProviderGemini Provider = "gemini"
)

// Config holds the provider and per-tier model selection.
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

// DefaultConfig returns the default Gemini configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// Model returns the model name for a tier, falling back through standard and
// lite when the tier is not configured.
func (c *Config) Model(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok && model != "" {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok && model != "" {
		return model
	}
	return c.Models[TierLite]
}
