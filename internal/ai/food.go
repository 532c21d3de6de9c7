package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourname/nutritracker/internal"
)

const foodSystemPrompt = `You are a nutritional analysis API. Your task is to analyze food descriptions and return accurate nutritional estimates in JSON format.

Rules:
1. Always return valid JSON
2. Estimate calories and macronutrients based on standard serving sizes
3. Be reasonably accurate for common foods
4. If you cannot identify the food, return null for all values except foodName which should be "Unknown"
5. Include reasonable estimates even for ambiguous descriptions

Output format:
{
  "foodName": "string",
  "calories": number,
  "protein_g": number,
  "carbs_g": number,
  "fat_g": number,
  "servingSize": "string"
}`

// FoodAnalysis is the nutrition estimate for one described food.
type FoodAnalysis struct {
	FoodName    string  `json:"foodName"`
	Calories    float64 `json:"calories"`
	ProteinG    float64 `json:"protein_g"`
	CarbsG      float64 `json:"carbs_g"`
	FatG        float64 `json:"fat_g"`
	ServingSize string  `json:"servingSize"`
}

type rawFoodAnalysis struct {
	FoodName    string   `json:"foodName"`
	Calories    *float64 `json:"calories"`
	ProteinG    *float64 `json:"protein_g"`
	CarbsG      *float64 `json:"carbs_g"`
	FatG        *float64 `json:"fat_g"`
	ServingSize string   `json:"servingSize"`
}

func foodUserPrompt(description string) string {
	return fmt.Sprintf(`Analyze this food description and return nutritional information: "%s"

Respond with only the JSON object, no markdown formatting, no additional text.`, description)
}

// AnalyzeFood estimates nutrition for a free-text description. Empty input or
// a missing credential fail before any request is made.
func (c *Client) AnalyzeFood(ctx context.Context, description, credential string) (*FoodAnalysis, error) {
	if strings.TrimSpace(description) == "" {
		return nil, internal.Wrap(internal.ErrValidation, "Please enter a food description")
	}
	if err := requireCredential(credential); err != nil {
		return nil, err
	}

	content, err := c.complete(ctx, credential, ChatRequest{
		Model: c.foodModel,
		Messages: []Message{
			{Role: "system", Content: foodSystemPrompt},
			{Role: "user", Content: foodUserPrompt(description)},
		},
		Temperature: 0.3,
		MaxTokens:   200,
	}, "Failed to analyze food")
	if err != nil {
		return nil, err
	}

	var raw rawFoodAnalysis
	if err := decodeContent(content, &raw); err != nil {
		return nil, err
	}
	if raw.FoodName == "" || raw.Calories == nil {
		return nil, internal.Wrap(internal.ErrMalformedCompletion, "Invalid response format from AI")
	}
	return &FoodAnalysis{
		FoodName:    raw.FoodName,
		Calories:    *raw.Calories,
		ProteinG:    deref(raw.ProteinG),
		CarbsG:      deref(raw.CarbsG),
		FatG:        deref(raw.FatG),
		ServingSize: raw.ServingSize,
	}, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
