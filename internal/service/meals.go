package service

import (
	"context"
	"math"

	"github.com/yourname/nutritracker/internal"
	"github.com/yourname/nutritracker/internal/planner"
	"github.com/yourname/nutritracker/internal/storage"
)

// DayView is the meal log of one day with its totals and the user's goals.
type DayView struct {
	Date     string                `json:"date"`
	Meals    []internal.Meal       `json:"meals"`
	Totals   internal.DailyTotals  `json:"totals"`
	Settings internal.UserSettings `json:"settings"`
}

// DayView returns the meals of day (UTC, YYYY-MM-DD; today when empty).
func (c *Controller) DayView(ctx context.Context, userID, day string) (DayView, error) {
	if day == "" {
		day = c.today()
	}
	us, err := c.lockUser(ctx, userID)
	if err != nil {
		return DayView{}, err
	}
	defer us.mu.Unlock()
	return DayView{
		Date:     day,
		Meals:    planner.MealsForDay(us.meals, day),
		Totals:   planner.DailyTotals(us.meals, day),
		Settings: us.settings.Masked(),
	}, nil
}

func (c *Controller) Totals(ctx context.Context, userID, day string) (internal.DailyTotals, error) {
	if day == "" {
		day = c.today()
	}
	us, err := c.lockUser(ctx, userID)
	if err != nil {
		return internal.DailyTotals{}, err
	}
	defer us.mu.Unlock()
	return planner.DailyTotals(us.meals, day), nil
}

// AddMeal analyzes the description with the AI and appends the result to the
// meal log. Nothing is stored when the analysis fails.
func (c *Controller) AddMeal(ctx context.Context, userID string, req AddMealRequest) (*internal.Meal, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	us, err := c.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	credential := us.settings.APIKey
	us.mu.Unlock()

	analysis, err := c.ai.AnalyzeFood(ctx, req.Description, credential)
	if err != nil {
		c.logger.Warnf("service: analyze food for %s: %v", userID, err)
		return nil, err
	}

	meal := internal.Meal{
		ID:          c.newID(),
		Description: req.Description,
		FoodName:    analysis.FoodName,
		ServingSize: analysis.ServingSize,
		Nutrition: internal.NutritionInfo{
			Calories: math.Round(analysis.Calories),
			ProteinG: math.Round(analysis.ProteinG),
			CarbsG:   math.Round(analysis.CarbsG),
			FatG:     math.Round(analysis.FatG),
		},
		Timestamp: c.now().UTC(),
		Category:  req.Category,
	}

	us, err = c.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	meals := append(append([]internal.Meal{}, us.meals...), meal)
	if err := c.set(ctx, userID, storage.KeyMeals, meals); err != nil {
		us.mu.Unlock()
		return nil, err
	}
	us.meals = meals
	us.mu.Unlock()

	c.notifier.Publish(userID, EventMealAdded, meal)
	return &meal, nil
}

// UpdateMeal replaces the meal with the given id. The id is preserved.
func (c *Controller) UpdateMeal(ctx context.Context, userID, id string, req UpdateMealRequest) (*internal.Meal, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	us, err := c.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := findMeal(us.meals, id)
	if idx < 0 {
		us.mu.Unlock()
		return nil, internal.Wrap(internal.ErrNotFound, "Meal not found")
	}
	meal := internal.Meal{
		ID:          id,
		Description: req.Description,
		FoodName:    req.FoodName,
		ServingSize: req.ServingSize,
		Nutrition:   req.Nutrition,
		Timestamp:   req.Timestamp.UTC(),
		Category:    req.Category,
	}
	if req.Timestamp.IsZero() {
		meal.Timestamp = us.meals[idx].Timestamp
	}
	meals := append([]internal.Meal{}, us.meals...)
	meals[idx] = meal
	if err := c.set(ctx, userID, storage.KeyMeals, meals); err != nil {
		us.mu.Unlock()
		return nil, err
	}
	us.meals = meals
	us.mu.Unlock()

	c.notifier.Publish(userID, EventMealUpdated, meal)
	return &meal, nil
}

func (c *Controller) DeleteMeal(ctx context.Context, userID, id string) error {
	us, err := c.lockUser(ctx, userID)
	if err != nil {
		return err
	}
	idx := findMeal(us.meals, id)
	if idx < 0 {
		us.mu.Unlock()
		return internal.Wrap(internal.ErrNotFound, "Meal not found")
	}
	meals := make([]internal.Meal, 0, len(us.meals)-1)
	meals = append(meals, us.meals[:idx]...)
	meals = append(meals, us.meals[idx+1:]...)
	if err := c.set(ctx, userID, storage.KeyMeals, meals); err != nil {
		us.mu.Unlock()
		return err
	}
	us.meals = meals
	us.mu.Unlock()

	c.notifier.Publish(userID, EventMealDeleted, map[string]string{"id": id})
	return nil
}

// AddPlanMealToLog logs every item of one plan section as a meal, in order.
// It stops at the first failure; meals added before it stay logged.
func (c *Controller) AddPlanMealToLog(ctx context.Context, userID, mealType string) ([]internal.Meal, error) {
	us, err := c.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if us.plan == nil {
		us.mu.Unlock()
		return nil, internal.Wrap(internal.ErrNoPlan, "No meal plan available")
	}
	si := us.plan.Section(mealType)
	if si < 0 {
		us.mu.Unlock()
		return nil, internal.Wrapf(internal.ErrNotFound, "No %s in the current plan", mealType)
	}
	items := append([]internal.FoodItem{}, us.plan.Meals[si].Items...)
	us.mu.Unlock()

	category := mealType
	if !internal.ValidCategory(category) {
		category = internal.CategorySnack
	}
	added := make([]internal.Meal, 0, len(items))
	for _, item := range items {
		meal, err := c.AddMeal(ctx, userID, AddMealRequest{
			Description: planner.LogDescription(item),
			Category:    category,
		})
		if err != nil {
			return added, err
		}
		added = append(added, *meal)
	}
	return added, nil
}

func findMeal(meals []internal.Meal, id string) int {
	for i, m := range meals {
		if m.ID == id {
			return i
		}
	}
	return -1
}
