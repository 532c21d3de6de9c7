package planner

import (
	"time"

	"github.com/yourname/nutritracker/internal"
)

// NewTemplate freezes a copy of plan under a new id.
func NewTemplate(plan internal.DailyMealPlan, id, name, description string, now time.Time) internal.MealPlanTemplate {
	return internal.MealPlanTemplate{
		ID:          id,
		Name:        name,
		Description: description,
		Plan:        plan.Clone(),
		IsFavorite:  false,
		CreatedAt:   now.UTC(),
	}
}

// InstantiateTemplate produces a fresh plan from a template's snapshot: new id,
// the day of now and a new creation time. The template is not modified.
func InstantiateTemplate(t internal.MealPlanTemplate, id string, now time.Time) internal.DailyMealPlan {
	p := t.Plan.Clone()
	p.ID = id
	p.Date = now.UTC().Format(internal.DateLayout)
	p.CreatedAt = now.UTC()
	return p
}

func FindTemplate(templates []internal.MealPlanTemplate, id string) (internal.MealPlanTemplate, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t, true
		}
	}
	return internal.MealPlanTemplate{}, false
}

// RemoveTemplate returns a new list without id and whether it was present.
func RemoveTemplate(templates []internal.MealPlanTemplate, id string) ([]internal.MealPlanTemplate, bool) {
	out := make([]internal.MealPlanTemplate, 0, len(templates))
	found := false
	for _, t := range templates {
		if t.ID == id {
			found = true
			continue
		}
		out = append(out, t)
	}
	return out, found
}

// ToggleFavorite returns a new list with id's favorite flag flipped.
func ToggleFavorite(templates []internal.MealPlanTemplate, id string) ([]internal.MealPlanTemplate, bool) {
	out := append([]internal.MealPlanTemplate(nil), templates...)
	for i := range out {
		if out[i].ID == id {
			out[i].IsFavorite = !out[i].IsFavorite
			return out, true
		}
	}
	return out, false
}

// UpsertPlan returns plans with any plan for the same date replaced by plan.
// One plan is kept per date.
func UpsertPlan(plans []internal.DailyMealPlan, plan internal.DailyMealPlan) []internal.DailyMealPlan {
	out := make([]internal.DailyMealPlan, 0, len(plans)+1)
	for _, p := range plans {
		if p.Date != plan.Date {
			out = append(out, p)
		}
	}
	return append(out, plan)
}

// NewPantry stamps pantry input with its update time.
func NewPantry(breakfast, lunch, dinner, snacks string, now time.Time) internal.PantryData {
	return internal.PantryData{
		Breakfast: breakfast,
		Lunch:     lunch,
		Dinner:    dinner,
		Snacks:    snacks,
		UpdatedAt: now.UTC(),
	}
}

// LogDescription is the meal-log description used when a planned item is
// added to the log.
func LogDescription(item internal.FoodItem) string {
	return formatGrams(item.WeightGrams) + "g " + item.Name
}
