// Package llm provides the generation-engine client used by the pipeline stage
// executors, with centralized model configuration and tier selection.
package llm

// ModelTier represents the complexity/capability level of a model.
type ModelTier string

const (
	// TierLite is for simple tasks: classification, short extraction.
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: per-prospect research findings.
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning: essence extraction, segmentation, pitch writing.
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider.
type Provider string

// Supported providers.
const (
	ProviderGemini Provider = "gemini"
)

// Config holds the model configuration for the application.
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

// DefaultConfig returns the default configuration (currently Gemini).
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

// GetModel returns the model name for a given tier, falling back from standard to lite
// when the requested tier is not configured.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}
