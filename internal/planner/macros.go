package planner

import (
	"math"
	"strconv"

	"github.com/yourname/nutritracker/internal"
)

// MacroRatio returns the protein/carbs/fat percentage split for a dietary goal.
func MacroRatio(goal string) internal.Macros {
	switch goal {
	case internal.GoalWeightLoss:
		return internal.Macros{Protein: 35, Carbs: 40, Fat: 25}
	case internal.GoalMuscleGain:
		return internal.Macros{Protein: 30, Carbs: 50, Fat: 20}
	default:
		return internal.Macros{Protein: 25, Carbs: 45, Fat: 30}
	}
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// recalcSection sets the section's cached totals to the sum over its items.
func recalcSection(s *internal.MealSection) {
	s.TotalCalories, s.TotalProtein, s.TotalCarbs, s.TotalFat = 0, 0, 0, 0
	for _, it := range s.Items {
		s.TotalCalories += it.Calories
		s.TotalProtein += it.Protein
		s.TotalCarbs += it.Carbs
		s.TotalFat += it.Fat
	}
}

// recalcPlan sets the plan aggregates to the sum over its sections. The
// accuracy variance is refreshed when the plan carries one.
func recalcPlan(p *internal.DailyMealPlan) {
	var m internal.Macros
	var cal float64
	for _, s := range p.Meals {
		cal += s.TotalCalories
		m.Protein += s.TotalProtein
		m.Carbs += s.TotalCarbs
		m.Fat += s.TotalFat
	}
	p.TotalMacros = m
	p.TotalCalories = cal
	if p.AccuracyVariance != nil {
		v := math.Abs(cal - p.TargetCalories)
		p.AccuracyVariance = &v
	}
}

func formatGrams(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
