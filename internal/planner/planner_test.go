package planner

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/nutritracker/internal"
	"github.com/yourname/nutritracker/internal/ai"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func fiber(v float64) *float64 { return &v }

func sampleResponse() *ai.PlanResponse {
	return &ai.PlanResponse{
		Summary: "Balanced day",
		Meals: []ai.PlanMeal{
			{Type: "breakfast", Items: []ai.PlanItem{
				{Name: "Oats", Weight: 80, Calories: 300, Protein: 10.5, Carbs: 54, Fat: 5.2, Fiber: fiber(8), Emoji: "🥣"},
				{Name: "Banana", Weight: 120, Calories: 105, Protein: 1.3, Carbs: 27, Fat: 0.4, Emoji: "🍌"},
			}},
			{Type: "lunch", Items: []ai.PlanItem{
				{Name: "Chicken breast", Weight: 150, Calories: 248, Protein: 46.5, Carbs: 0, Fat: 5.4, Emoji: "🍗"},
				{Name: "Rice", Weight: 200, Calories: 260, Protein: 5.4, Carbs: 56, Fat: 0.6, Emoji: "🍚"},
			}},
			{Type: "Snacks", Foods: []ai.PlanItem{
				{Name: "Almonds", Weight: 30, Calories: 174, Protein: 6.3, Carbs: 6.5, Fat: 15, Emoji: "🥜"},
			}},
		},
	}
}

func samplePlan(t *testing.T) *internal.DailyMealPlan {
	p := BuildPlan(sampleResponse(), BuildOptions{TargetCalories: 1200, Goal: "maintain", NewID: seqIDs(),
		Now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)})
	return &p
}

func assertTotalsConsistent(t *testing.T, p *internal.DailyMealPlan) {
	t.Helper()
	var m internal.Macros
	for _, s := range p.Meals {
		var cal, pr, cb, ft float64
		for _, it := range s.Items {
			cal += it.Calories
			pr += it.Protein
			cb += it.Carbs
			ft += it.Fat
		}
		assert.InDelta(t, cal, s.TotalCalories, 1e-9, "section %s calories", s.Type)
		assert.InDelta(t, pr, s.TotalProtein, 1e-9)
		assert.InDelta(t, cb, s.TotalCarbs, 1e-9)
		assert.InDelta(t, ft, s.TotalFat, 1e-9)
		m.Protein += s.TotalProtein
		m.Carbs += s.TotalCarbs
		m.Fat += s.TotalFat
	}
	assert.InDelta(t, m.Protein, p.TotalMacros.Protein, 1e-9)
	assert.InDelta(t, m.Carbs, p.TotalMacros.Carbs, 1e-9)
	assert.InDelta(t, m.Fat, p.TotalMacros.Fat, 1e-9)
}

func TestBuildPlan(t *testing.T) {
	p := samplePlan(t)

	assert.Equal(t, "2024-01-01", p.Date)
	assert.Equal(t, internal.SourceGeneric, p.SourceType)
	assert.Equal(t, 1, p.RegenerationCount)
	assert.Equal(t, internal.Macros{Protein: 25, Carbs: 45, Fat: 30}, p.MacroRatio)
	require.Len(t, p.Meals, 3)
	assert.Equal(t, "snack", p.Meals[2].Type)

	ids := map[string]bool{p.ID: true}
	for _, s := range p.Meals {
		for _, it := range s.Items {
			assert.NotEmpty(t, it.ID)
			assert.False(t, ids[it.ID], "duplicate id %s", it.ID)
			ids[it.ID] = true
			assert.False(t, it.IsFromPantry)
		}
	}
	require.NotNil(t, p.Meals[0].Items[0].Micronutrients)
	assert.Equal(t, 8.0, *p.Meals[0].Items[0].Micronutrients.Fiber)

	assert.Equal(t, 1087.0, p.TotalCalories)
	require.NotNil(t, p.AccuracyVariance)
	assert.Equal(t, 113.0, *p.AccuracyVariance)
	assertTotalsConsistent(t, p)
}

func TestBuildPlan_ExplicitTotalsTakePrecedence(t *testing.T) {
	resp := sampleResponse()
	resp.Meals[0].Totals = &ai.PlanTotals{Calories: 420, Protein: 12}
	resp.DailyTotals = &ai.PlanTotals{Calories: 1195}
	pantry := NewPantry("oats", "rice", "fish", "nuts", time.Now())

	p := BuildPlan(resp, BuildOptions{TargetCalories: 1200, Goal: "weight_loss", Pantry: &pantry, Attempt: 2, NewID: seqIDs()})

	assert.Equal(t, 420.0, p.Meals[0].TotalCalories)
	assert.Equal(t, 12.0, p.Meals[0].TotalProtein)
	// carbs had no explicit total
	assert.InDelta(t, 81.0, p.Meals[0].TotalCarbs, 1e-9)
	assert.InDelta(t, 12+51.9+6.3, p.TotalMacros.Protein, 1e-9)

	assert.Equal(t, 1195.0, p.TotalCalories)
	assert.Equal(t, 5.0, *p.AccuracyVariance)
	assert.Equal(t, internal.SourcePantryBased, p.SourceType)
	require.NotNil(t, p.UsedPantry)
	assert.Equal(t, "oats", p.UsedPantry.Breakfast)
	assert.Equal(t, 2, p.RegenerationCount)
	assert.True(t, p.Meals[1].Items[0].IsFromPantry)
	assert.Equal(t, internal.Macros{Protein: 35, Carbs: 40, Fat: 25}, p.MacroRatio)
}

func TestNeedsRegeneration(t *testing.T) {
	v := func(f float64) internal.DailyMealPlan { return internal.DailyMealPlan{AccuracyVariance: &f} }
	assert.True(t, NeedsRegeneration(v(150), 1))
	assert.True(t, NeedsRegeneration(v(21), 2))
	assert.False(t, NeedsRegeneration(v(21), 3))
	assert.False(t, NeedsRegeneration(v(20), 1))
	assert.False(t, NeedsRegeneration(v(5), 1))
	assert.False(t, NeedsRegeneration(internal.DailyMealPlan{}, 1))
}

func TestRescaleItem(t *testing.T) {
	p := samplePlan(t)
	oats := p.Meals[0].Items[0]

	out, changed := RescaleItem(p, "breakfast", oats.ID, 120)
	require.True(t, changed)
	got := out.Meals[0].Items[0]
	assert.Equal(t, 120.0, got.WeightGrams)
	assert.Equal(t, 450.0, got.Calories)
	assert.Equal(t, 15.8, got.Protein)
	assert.Equal(t, 81.0, got.Carbs)
	assert.Equal(t, 7.8, got.Fat)
	assertTotalsConsistent(t, out)
	assert.Equal(t, 1237.0, out.TotalCalories)
	assert.Equal(t, 37.0, *out.AccuracyVariance)

	// input plan is not mutated
	assert.Equal(t, 80.0, p.Meals[0].Items[0].WeightGrams)
	assert.Equal(t, 300.0, p.Meals[0].Items[0].Calories)
}

func TestRescaleItem_NoOps(t *testing.T) {
	p := samplePlan(t)
	id := p.Meals[1].Items[0].ID

	cases := []struct {
		name     string
		plan     *internal.DailyMealPlan
		mealType string
		itemID   string
		weight   float64
	}{
		{"no plan", nil, "lunch", id, 100},
		{"unknown section", p, "dinner", id, 100},
		{"unknown item", p, "lunch", "missing", 100},
		{"zero weight", p, "lunch", id, 0},
		{"negative weight", p, "lunch", id, -50},
		{"nan weight", p, "lunch", id, math.NaN()},
		{"same weight", p, "lunch", id, 150},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, changed := RescaleItem(tc.plan, tc.mealType, tc.itemID, tc.weight)
			assert.False(t, changed)
			assert.Same(t, tc.plan, out)
		})
	}
}

func TestRescaleItem_RoundTrip(t *testing.T) {
	for _, w := range []float64{40, 95, 160, 333, 1000} {
		p := samplePlan(t)
		for si, s := range p.Meals {
			for _, it := range s.Items {
				scaled, changed := RescaleItem(p, s.Type, it.ID, w)
				require.True(t, changed)
				back, changed := RescaleItem(scaled, s.Type, it.ID, it.WeightGrams)
				require.True(t, changed)
				var restored internal.FoodItem
				for _, r := range back.Meals[si].Items {
					if r.ID == it.ID {
						restored = r
					}
				}
				// calories are rounded to integers on each step
				tolerance := 1 + math.Ceil(it.WeightGrams/w)
				assert.InDelta(t, it.Calories, restored.Calories, tolerance, "%s via %vg", it.Name, w)
				assertTotalsConsistent(t, back)
			}
		}
	}
}

func TestDailyTotals(t *testing.T) {
	ts := func(s string) time.Time {
		v, err := time.Parse("2006-01-02T15:04", s)
		require.NoError(t, err)
		return v
	}
	meals := []internal.Meal{
		{ID: "a", Timestamp: ts("2024-01-01T08:00"), Nutrition: internal.NutritionInfo{Calories: 300, ProteinG: 10, CarbsG: 40, FatG: 8}},
		{ID: "b", Timestamp: ts("2024-01-01T13:00"), Nutrition: internal.NutritionInfo{Calories: 500, ProteinG: 30.5, CarbsG: 50, FatG: 12}},
		{ID: "c", Timestamp: ts("2024-01-02T08:00"), Nutrition: internal.NutritionInfo{Calories: 200, ProteinG: 5, CarbsG: 20, FatG: 4}},
	}
	before := append([]internal.Meal(nil), meals...)

	got := DailyTotals(meals, "2024-01-01")
	assert.Equal(t, internal.DailyTotals{Calories: 800, ProteinG: 40.5, CarbsG: 90, FatG: 20}, got)
	assert.Equal(t, internal.DailyTotals{}, DailyTotals(meals, "2023-12-31"))
	assert.Equal(t, before, meals)

	day := MealsForDay(meals, "2024-01-01")
	require.Len(t, day, 2)
	assert.Equal(t, "b", day[0].ID)
	assert.Equal(t, "a", day[1].ID)
}

func TestTemplates(t *testing.T) {
	p := samplePlan(t)
	created := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	tpl := NewTemplate(*p, "tpl-1", "Cutting day", "high protein", created)
	assert.False(t, tpl.IsFavorite)

	// the snapshot is independent of the live plan
	p.Meals[0].Items[0].Name = "changed"
	assert.Equal(t, "Oats", tpl.Plan.Meals[0].Items[0].Name)

	today := time.Date(2024, 3, 5, 7, 30, 0, 0, time.UTC)
	loaded := InstantiateTemplate(tpl, "plan-2", today)
	assert.Equal(t, "plan-2", loaded.ID)
	assert.NotEqual(t, tpl.Plan.ID, loaded.ID)
	assert.Equal(t, "2024-03-05", loaded.Date)
	assert.Equal(t, today, loaded.CreatedAt)
	assert.Equal(t, tpl.Plan.Meals, loaded.Meals)
	assert.Equal(t, "2024-01-01", tpl.Plan.Date)

	list := []internal.MealPlanTemplate{tpl}
	list, ok := ToggleFavorite(list, "tpl-1")
	assert.True(t, ok)
	assert.True(t, list[0].IsFavorite)
	assert.False(t, tpl.IsFavorite)

	_, found := FindTemplate(list, "tpl-1")
	assert.True(t, found)
	list, ok = RemoveTemplate(list, "tpl-1")
	assert.True(t, ok)
	assert.Empty(t, list)
	_, ok = RemoveTemplate(list, "tpl-1")
	assert.False(t, ok)
}

func TestUpsertPlan(t *testing.T) {
	plans := []internal.DailyMealPlan{{ID: "a", Date: "2024-01-01"}, {ID: "b", Date: "2024-01-02"}}
	plans = UpsertPlan(plans, internal.DailyMealPlan{ID: "c", Date: "2024-01-01"})
	require.Len(t, plans, 2)
	assert.Equal(t, "b", plans[0].ID)
	assert.Equal(t, "c", plans[1].ID)
}

func TestLogDescription(t *testing.T) {
	assert.Equal(t, "150g Rice", LogDescription(internal.FoodItem{Name: "Rice", WeightGrams: 150}))
	assert.Equal(t, "12.5g Butter", LogDescription(internal.FoodItem{Name: "Butter", WeightGrams: 12.5}))
}
