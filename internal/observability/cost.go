package observability

import (
	"strconv"
)

// Pricing constants
const (
	tokensPerKilo       = 1000.0
	costFormatPrecision = 6

	// Gemini 2.5 Flash planner pricing
	geminiFlashInputPrice  = 0.0003
	geminiFlashOutputPrice = 0.0025

	// GPT-4o-mini planner pricing
	gpt4oMiniInputPrice  = 0.00015
	gpt4oMiniOutputPrice = 0.0006

	// Flat per-image price for the Gemini image-output model
	geminiImagePrice = 0.039
)

// ModelPricing contains pricing information per 1K tokens
type ModelPricing struct {
	InputPricePer1K  float64 // Price per 1K input tokens in USD
	OutputPricePer1K float64 // Price per 1K output tokens in USD
}

// PricingTable contains pricing for the planner models
var PricingTable = map[string]ModelPricing{
	"gemini-2.5-flash": {
		InputPricePer1K:  geminiFlashInputPrice,
		OutputPricePer1K: geminiFlashOutputPrice,
	},
	"gpt-4o-mini": {
		InputPricePer1K:  gpt4oMiniInputPrice,
		OutputPricePer1K: gpt4oMiniOutputPrice,
	},
}

// CalculatePlannerCost calculates the cost in USD for one planner call
func CalculatePlannerCost(model string, inputTokens, outputTokens int) float64 {
	pricing, ok := PricingTable[model]
	if !ok {
		return 0
	}
	return float64(inputTokens)/tokensPerKilo*pricing.InputPricePer1K +
		float64(outputTokens)/tokensPerKilo*pricing.OutputPricePer1K
}

// CalculateRenderCost calculates the cost in USD for the rendered frames.
// Image-output models bill per generated image, not per token.
func CalculateRenderCost(framesEmitted int) float64 {
	return float64(framesEmitted) * geminiImagePrice
}

// FormatCost formats a cost value for logging
func FormatCost(cost float64) string {
	return "$" + strconv.FormatFloat(cost, 'f', costFormatPrecision, 64)
}
