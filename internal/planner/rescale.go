package planner

import (
	"math"

	"github.com/yourname/nutritracker/internal"
)

// RescaleItem sets one item's weight and scales its nutrition proportionally,
// then refreshes the owning section and the plan totals. It returns a new plan
// and true, or the input unchanged and false when there is nothing to do: no
// plan, unknown section or item, a weight that is not a positive finite number,
// or the current weight.
func RescaleItem(plan *internal.DailyMealPlan, mealType, itemID string, newWeight float64) (*internal.DailyMealPlan, bool) {
	if plan == nil {
		return plan, false
	}
	if newWeight <= 0 || math.IsNaN(newWeight) || math.IsInf(newWeight, 0) {
		return plan, false
	}
	si := plan.Section(mealType)
	if si < 0 {
		return plan, false
	}
	ii := -1
	for i, it := range plan.Meals[si].Items {
		if it.ID == itemID {
			ii = i
			break
		}
	}
	if ii < 0 {
		return plan, false
	}
	old := plan.Meals[si].Items[ii]
	if old.WeightGrams == newWeight || old.WeightGrams <= 0 {
		return plan, false
	}

	out := plan.Clone()
	ratio := newWeight / old.WeightGrams
	item := &out.Meals[si].Items[ii]
	item.WeightGrams = newWeight
	item.Calories = math.Round(old.Calories * ratio)
	item.Protein = roundTenth(old.Protein * ratio)
	item.Carbs = roundTenth(old.Carbs * ratio)
	item.Fat = roundTenth(old.Fat * ratio)

	recalcSection(&out.Meals[si])
	recalcPlan(&out)
	return &out, true
}
