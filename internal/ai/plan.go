package ai

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/yourname/nutritracker/internal"
)

// PlanResponse is the JSON shape requested from the model for a daily plan.
type PlanResponse struct {
	Summary     string      `json:"summary"`
	Meals       []PlanMeal  `json:"meals"`
	DailyTotals *PlanTotals `json:"dailyTotals,omitempty"`
}

// PlanMeal carries its foods under "items" (generic prompt) or "foods"
// (pantry prompt).
type PlanMeal struct {
	Type   string      `json:"type"`
	Time   string      `json:"time,omitempty"`
	Items  []PlanItem  `json:"items,omitempty"`
	Foods  []PlanItem  `json:"foods,omitempty"`
	Totals *PlanTotals `json:"totals,omitempty"`
}

func (m PlanMeal) FoodItems() []PlanItem {
	if len(m.Items) > 0 {
		return m.Items
	}
	return m.Foods
}

type PlanItem struct {
	Name     string   `json:"name"`
	Weight   float64  `json:"weight"`
	Unit     string   `json:"unit"`
	Calories float64  `json:"calories"`
	Protein  float64  `json:"protein"`
	Carbs    float64  `json:"carbs"`
	Fat      float64  `json:"fat"`
	Fiber    *float64 `json:"fiber,omitempty"`
	Emoji    string   `json:"emoji"`
}

type PlanTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber,omitempty"`
}

// Calorie share of each meal in pantry mode.
const (
	BreakfastShare = 0.27
	LunchShare     = 0.38
	DinnerShare    = 0.32
	SnackShare     = 0.03
)

// Daily calorie tolerances stated to the model.
const (
	PantryTolerance  = 20
	GenericTolerance = 50
)

type GenericPlanRequest struct {
	TargetCalories     float64
	Goal               string
	ActivityLevel      string
	DietaryPreferences []string
}

type PantryPlanRequest struct {
	Pantry             internal.PantryData
	TargetCalories     float64
	Goal               string
	ActivityLevel      string
	DietaryPreferences []string
	Attempt            int
}

const genericSystemPrompt = `You are an expert nutritionist and chef. Create a personalized daily meal plan based on the user's profile and goals.

Rules:
1. Always return valid JSON with no additional text
2. Use practical, commonly available foods
3. Provide exact gram weights for all food items
4. Calculate precise nutritional values per food item
5. Ensure variety across meals (different proteins, vegetables, grains)
6. Include fiber content when relevant
7. Use appropriate food emojis

Output format:
{
  "summary": "Brief description of the day's nutritional theme",
  "meals": [
    {
      "type": "breakfast",
      "items": [
        { "name": "Food Name", "weight": 100, "unit": "g", "calories": 150, "protein": 5, "carbs": 27, "fat": 3, "fiber": 4, "emoji": "🥣" }
      ]
    }
  ]
}`

func genericUserPrompt(r GenericPlanRequest) string {
	return fmt.Sprintf(`Generate a daily meal plan for:
- Daily calorie goal: %s calories
- Goal: %s
- Activity level: %s
- Dietary preferences: %s

Requirements:
- 3 main meals (breakfast, lunch, dinner) + optional snack
- Each meal should list 3-5 specific food items with exact gram weights
- Include macronutrient breakdown (protein/carbs/fat) for each food item
- Total daily intake should match the calorie goal within ±%d calories
- Use common, practical foods
- No recipes needed, just food items and quantities
- Consider macro ratios for the goal type

Respond with only the JSON object, no markdown formatting.`,
		kcal(r.TargetCalories), r.Goal, r.ActivityLevel, preferences(r.DietaryPreferences), GenericTolerance)
}

func pantrySystemPrompt(target float64) string {
	t := kcal(target)
	return fmt.Sprintf(`You are a precision nutrition calculator. Generate an exact daily meal plan using ONLY the foods provided by the user.

CRITICAL CONSTRAINTS:
1. ONLY use foods from the available lists below - NO other foods allowed
2. Calculate EXACT gram amounts to hit the calorie target precisely
3. Total daily calories MUST equal %[1]s (±%[2]d calories maximum)
4. Use strict meal calorie distribution:
   - Breakfast: %[3]s calories (27%%)
   - Lunch: %[4]s calories (38%%)
   - Dinner: %[5]s calories (32%%)
   - Snack: %[6]s calories (3%%)

5. Each meal must have 2-4 food items with precise gram weights
6. Calculate exact nutritional values for each food item
7. Use appropriate food emojis

OUTPUT FORMAT (MUST BE VALID JSON):
{
  "summary": "Brief nutritional theme description",
  "meals": [
    {
      "type": "breakfast",
      "time": "7:00 AM",
      "foods": [
        { "name": "Food Name", "weight": 100, "unit": "g", "calories": 150, "protein": 5, "carbs": 27, "fat": 3, "fiber": 4, "emoji": "🥣" }
      ],
      "totals": { "calories": 540, "protein": 20, "carbs": 65, "fat": 15 }
    }
  ],
  "dailyTotals": {
    "calories": %[1]s,
    "protein": 150,
    "carbs": 225,
    "fat": 67,
    "fiber": 25
  }
}

IMPORTANT: The dailyTotals.calories MUST equal %[1]s`,
		t, PantryTolerance,
		share(target, BreakfastShare), share(target, LunchShare), share(target, DinnerShare), share(target, SnackShare))
}

func pantryUserPrompt(r PantryPlanRequest) string {
	t := kcal(r.TargetCalories)
	return fmt.Sprintf(`Generate a precise meal plan using ONLY these available foods:

AVAILABLE FOODS:
- Breakfast: %s
- Lunch: %s
- Dinner: %s
- Snacks: %s

USER PROFILE:
- Daily calorie goal: %s calories
- Goal: %s
- Activity level: %s
- Dietary preferences: %s

CRITICAL REQUIREMENTS:
1. Use ONLY foods from the available lists above
2. Calculate precise gram amounts to reach exactly %s calories
3. Distribute calories: Breakfast %scal, Lunch %scal, Dinner %scal, Snack %scal
4. Provide exact nutritional breakdown for each food item
5. If regeneration #%d, adjust gram amounts to improve accuracy

Return ONLY valid JSON, no markdown formatting:`,
		r.Pantry.Breakfast, r.Pantry.Lunch, r.Pantry.Dinner, r.Pantry.Snacks,
		t, r.Goal, r.ActivityLevel, preferences(r.DietaryPreferences),
		t,
		share(r.TargetCalories, BreakfastShare), share(r.TargetCalories, LunchShare),
		share(r.TargetCalories, DinnerShare), share(r.TargetCalories, SnackShare),
		r.Attempt)
}

func kcal(v float64) string {
	return fmt.Sprintf("%d", int64(math.Round(v)))
}

func share(target, pct float64) string {
	return kcal(target * pct)
}

func preferences(p []string) string {
	if len(p) == 0 {
		return "None specified"
	}
	return strings.Join(p, ", ")
}

// GenerateGenericPlan asks for an unconstrained daily plan.
func (c *Client) GenerateGenericPlan(ctx context.Context, credential string, r GenericPlanRequest) (*PlanResponse, error) {
	if err := requireCredential(credential); err != nil {
		return nil, err
	}
	return c.generatePlan(ctx, credential, ChatRequest{
		Model: c.planModel,
		Messages: []Message{
			{Role: "system", Content: genericSystemPrompt},
			{Role: "user", Content: genericUserPrompt(r)},
		},
		Temperature: 0.7,
		MaxTokens:   1500,
	})
}

// GeneratePantryPlan asks for a plan restricted to the pantry lists. The
// restriction is stated in the prompt only.
func (c *Client) GeneratePantryPlan(ctx context.Context, credential string, r PantryPlanRequest) (*PlanResponse, error) {
	if err := requireCredential(credential); err != nil {
		return nil, err
	}
	return c.generatePlan(ctx, credential, ChatRequest{
		Model: c.planModel,
		Messages: []Message{
			{Role: "system", Content: pantrySystemPrompt(r.TargetCalories)},
			{Role: "user", Content: pantryUserPrompt(r)},
		},
		Temperature: 0.3,
		MaxTokens:   2000,
	})
}

func (c *Client) generatePlan(ctx context.Context, credential string, req ChatRequest) (*PlanResponse, error) {
	content, err := c.complete(ctx, credential, req, "Failed to generate meal plan")
	if err != nil {
		return nil, err
	}
	var plan PlanResponse
	if err := decodeContent(content, &plan); err != nil {
		return nil, err
	}
	if len(plan.Meals) == 0 {
		return nil, internal.Wrap(internal.ErrMalformedCompletion, "Invalid meal plan from AI: no meals")
	}
	for i, m := range plan.Meals {
		if strings.TrimSpace(m.Type) == "" {
			return nil, internal.Wrapf(internal.ErrMalformedCompletion, "Invalid meal plan from AI: meal %d has no type", i+1)
		}
	}
	return &plan, nil
}
