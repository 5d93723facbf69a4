// Package llm provides the upstream model client and the story turn loop that
// feeds model replies through the parsing engine.
package llm

import "github.com/kaldeqca/sex-sim-ai/internal/types"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for short replies and connectivity checks
	TierLite ModelTier = "lite"
	// TierStandard writes classic turns with choices
	TierStandard ModelTier = "standard"
	// TierAdvanced writes realistic turns that carry reasoning
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// DefaultTemperature suits narration; structure is recovered by the engine.
const DefaultTemperature float32 = 0.9

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
	// MaxOutputTokens caps reply length; 0 leaves the provider default.
	MaxOutputTokens int32
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: DefaultTemperature,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return &newConfig
}

// TierForMode picks the tier that writes turns for mode.
func TierForMode(mode types.Mode) ModelTier {
	if mode == types.ModeRealistic {
		return TierAdvanced
	}
	return TierStandard
}
