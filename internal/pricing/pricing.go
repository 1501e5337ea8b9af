package pricing

import "strings"

// ModelPricing holds per-1M-token rates for one model.
type ModelPricing struct {
	Input      float64
	Output     float64
	CacheWrite float64
	CacheRead  float64
}

// Calculator resolves model pricing from an embedded rate table and turns
// token counts into USD. It is pure and deterministic; callers inject one
// instance wherever costs are accumulated.
type Calculator struct {
	rates map[string]ModelPricing
}

func NewCalculator() *Calculator {
	return &Calculator{
		rates: map[string]ModelPricing{
			"claude-sonnet-4-5":          {Input: 3.0, Output: 15.0, CacheWrite: 3.75, CacheRead: 0.30},
			"claude-sonnet-4":            {Input: 3.0, Output: 15.0, CacheWrite: 3.75, CacheRead: 0.30},
			"claude-3-5-sonnet":          {Input: 3.0, Output: 15.0, CacheWrite: 3.75, CacheRead: 0.30},
			"claude-3-5-sonnet-20241022": {Input: 3.0, Output: 15.0, CacheWrite: 3.75, CacheRead: 0.30},
			"claude-3-5-sonnet-20240620": {Input: 3.0, Output: 15.0, CacheWrite: 3.75, CacheRead: 0.30},
			"claude-opus-4-1":            {Input: 15.0, Output: 75.0, CacheWrite: 18.75, CacheRead: 1.50},
			"claude-opus-4":              {Input: 15.0, Output: 75.0, CacheWrite: 18.75, CacheRead: 1.50},
			"claude-3-opus-20240229":     {Input: 15.0, Output: 75.0, CacheWrite: 18.75, CacheRead: 1.50},
			"claude-haiku-4-5":           {Input: 1.0, Output: 5.0, CacheWrite: 1.25, CacheRead: 0.10},
			"claude-3-5-haiku":           {Input: 0.80, Output: 4.0, CacheWrite: 1.0, CacheRead: 0.08},
			"claude-3-haiku-20240307":    {Input: 0.25, Output: 1.25, CacheWrite: 0.30, CacheRead: 0.03},
		},
	}
}

// CalculateCost prices one entry's token counts for the given model.
func (c *Calculator) CalculateCost(model string, inputTokens, outputTokens, cacheCreationTokens, cacheReadTokens int) float64 {
	p := c.resolve(model)
	return float64(inputTokens)/1_000_000*p.Input +
		float64(outputTokens)/1_000_000*p.Output +
		float64(cacheCreationTokens)/1_000_000*p.CacheWrite +
		float64(cacheReadTokens)/1_000_000*p.CacheRead
}

// resolve finds rates by exact match, then by model family substring, then
// falls back to Sonnet rates for unknown models.
func (c *Calculator) resolve(model string) ModelPricing {
	if p, ok := c.rates[model]; ok {
		return p
	}

	lower := strings.ToLower(model)
	switch {
	case strings.Contains(lower, "opus"):
		return c.rates["claude-opus-4"]
	case strings.Contains(lower, "haiku"):
		return c.rates["claude-3-5-haiku"]
	default:
		return c.rates["claude-3-5-sonnet"]
	}
}
