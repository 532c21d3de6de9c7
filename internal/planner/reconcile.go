// Package planner holds the pure transformations behind meal planning:
// building a plan from a model reply, rescaling items, aggregating the meal
// log and managing templates and the pantry. Nothing here performs I/O.
package planner

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yourname/nutritracker/internal"
	"github.com/yourname/nutritracker/internal/ai"
)

// MaxAttempts caps pantry-mode generation attempts.
const MaxAttempts = 3

type BuildOptions struct {
	TargetCalories float64
	Goal           string
	// Pantry is set for pantry-constrained plans.
	Pantry  *internal.PantryData
	Attempt int
	Now     time.Time
	NewID   func() string
}

// BuildPlan turns a model reply into a normalized plan. Every item gets a
// fresh id. A section's totals are the sum over its items except where the
// reply supplied a non-zero explicit total for that field.
func BuildPlan(resp *ai.PlanResponse, opts BuildOptions) internal.DailyMealPlan {
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	attempt := opts.Attempt
	if attempt < 1 {
		attempt = 1
	}

	sections := make([]internal.MealSection, 0, len(resp.Meals))
	var sectionCalories float64
	var macros internal.Macros
	for _, m := range resp.Meals {
		s := internal.MealSection{
			Type:         normalizeMealType(m.Type),
			Items:        []internal.FoodItem{},
			TimeEstimate: m.Time,
		}
		for _, it := range m.FoodItems() {
			item := internal.FoodItem{
				ID:           newID(),
				Name:         it.Name,
				WeightGrams:  it.Weight,
				Calories:     it.Calories,
				Protein:      it.Protein,
				Carbs:        it.Carbs,
				Fat:          it.Fat,
				Emoji:        it.Emoji,
				IsFromPantry: opts.Pantry != nil,
			}
			if it.Fiber != nil {
				fiber := *it.Fiber
				item.Micronutrients = &internal.Micronutrients{Fiber: &fiber}
			}
			s.Items = append(s.Items, item)
		}
		recalcSection(&s)
		if t := m.Totals; t != nil {
			s.TotalCalories = prefer(t.Calories, s.TotalCalories)
			s.TotalProtein = prefer(t.Protein, s.TotalProtein)
			s.TotalCarbs = prefer(t.Carbs, s.TotalCarbs)
			s.TotalFat = prefer(t.Fat, s.TotalFat)
		}
		sectionCalories += s.TotalCalories
		macros.Protein += s.TotalProtein
		macros.Carbs += s.TotalCarbs
		macros.Fat += s.TotalFat
		sections = append(sections, s)
	}

	actual := sectionCalories
	if resp.DailyTotals != nil && resp.DailyTotals.Calories != 0 {
		actual = resp.DailyTotals.Calories
	}
	variance := math.Abs(actual - opts.TargetCalories)

	plan := internal.DailyMealPlan{
		ID:                newID(),
		Date:              now.Format(internal.DateLayout),
		TargetCalories:    opts.TargetCalories,
		Meals:             sections,
		TotalMacros:       macros,
		TotalCalories:     actual,
		MacroRatio:        MacroRatio(opts.Goal),
		Summary:           resp.Summary,
		CreatedAt:         now,
		AccuracyVariance:  &variance,
		SourceType:        internal.SourceGeneric,
		RegenerationCount: attempt,
	}
	if opts.Pantry != nil {
		pd := *opts.Pantry
		plan.SourceType = internal.SourcePantryBased
		plan.UsedPantry = &pd
	}
	return plan
}

// NeedsRegeneration reports whether a pantry plan missed its target by more
// than the tolerance while attempts remain.
func NeedsRegeneration(plan internal.DailyMealPlan, attempt int) bool {
	if plan.AccuracyVariance == nil {
		return false
	}
	return *plan.AccuracyVariance > ai.PantryTolerance && attempt < MaxAttempts
}

func prefer(explicit, computed float64) float64 {
	if explicit != 0 {
		return explicit
	}
	return computed
}

func normalizeMealType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "snacks" {
		return internal.CategorySnack
	}
	return t
}
