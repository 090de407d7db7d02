// Package llm talks to the LLM providers. Callers pick a model tier; the
// provider configuration maps tiers to concrete model names.
package llm

// ModelTier is the capability level a call needs
type ModelTier string

const (
	// TierLite is for title extraction
	TierLite ModelTier = "lite"
	// TierStandard is for weakness analysis
	TierStandard ModelTier = "standard"
	// TierAdvanced is for item rewriting
	TierAdvanced ModelTier = "advanced"
)

// Provider names an LLM vendor
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

const defaultTemperature float32 = 0.1

// defaultModels is the tier table of each supported provider
var defaultModels = map[Provider]map[ModelTier]string{
	ProviderGemini: {
		TierLite:     "gemini-2.5-flash-lite",
		TierStandard: "gemini-2.5-flash",
		TierAdvanced: "gemini-2.5-pro",
	},
	ProviderOpenAI: {
		TierLite:     "gpt-4o-mini",
		TierStandard: "gpt-4o-mini",
		TierAdvanced: "gpt-4o",
	},
}

// fallbackOrder is tried when a tier has no model of its own
var fallbackOrder = []ModelTier{TierStandard, TierLite}

// Config selects a provider, its models and sampling temperature
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
}

// DefaultConfig returns the Gemini defaults
func DefaultConfig() *Config {
	return DefaultConfigFor(ProviderGemini)
}

// DefaultConfigFor returns the defaults of provider, or nil if it is not supported
func DefaultConfigFor(provider Provider) *Config {
	models, ok := defaultModels[provider]
	if !ok {
		return nil
	}
	cfg := &Config{Provider: provider, Models: make(map[ModelTier]string, len(models)), Temperature: defaultTemperature}
	for tier, model := range models {
		cfg.Models[tier] = model
	}
	return cfg
}

// GetModel returns the model for tier, falling back to the standard and
// then the lite model. It returns "" when none is configured.
func (c *Config) GetModel(tier ModelTier) string {
	if model := c.Models[tier]; model != "" {
		return model
	}
	for _, t := range fallbackOrder {
		if model := c.Models[t]; model != "" {
			return model
		}
	}
	return ""
}

// WithModels returns a copy of c with the non-empty overrides applied
func (c *Config) WithModels(overrides map[ModelTier]string) *Config {
	out := &Config{Provider: c.Provider, Models: make(map[ModelTier]string, len(c.Models)), Temperature: c.Temperature}
	for tier, model := range c.Models {
		out.Models[tier] = model
	}
	for tier, model := range overrides {
		if model != "" {
			out.Models[tier] = model
		}
	}
	return out
}
