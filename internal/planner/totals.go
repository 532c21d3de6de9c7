package planner

import (
	"sort"

	"github.com/yourname/nutritracker/internal"
)

// DailyTotals sums the nutrition of every meal logged on day (YYYY-MM-DD, UTC).
// No rounding is applied.
func DailyTotals(meals []internal.Meal, day string) internal.DailyTotals {
	var t internal.DailyTotals
	for _, m := range meals {
		if m.Day() != day {
			continue
		}
		t.Calories += m.Nutrition.Calories
		t.ProteinG += m.Nutrition.ProteinG
		t.CarbsG += m.Nutrition.CarbsG
		t.FatG += m.Nutrition.FatG
	}
	return t
}

// MealsForDay returns a new slice with the meals of day, newest first.
func MealsForDay(meals []internal.Meal, day string) []internal.Meal {
	out := []internal.Meal{}
	for _, m := range meals {
		if m.Day() == day {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}
