package service

import (
	"context"
	"strings"

	"github.com/yourname/nutritracker/internal"
	"github.com/yourname/nutritracker/internal/ai"
	"github.com/yourname/nutritracker/internal/planner"
	"github.com/yourname/nutritracker/internal/storage"
)

const missingCredential = "Please set your OpenAI API key in settings"

// beginGeneration marks the user as generating and returns a copy of the
// settings the run will use.
func (c *Controller) beginGeneration(ctx context.Context, userID string) (internal.UserSettings, error) {
	us, err := c.lockUser(ctx, userID)
	if err != nil {
		return internal.UserSettings{}, err
	}
	defer us.mu.Unlock()
	if strings.TrimSpace(us.settings.APIKey) == "" {
		us.lastErr = missingCredential
		return internal.UserSettings{}, internal.Wrap(internal.ErrValidation, missingCredential)
	}
	if us.generating {
		return internal.UserSettings{}, internal.Wrap(internal.ErrGenerationInProgress, "A meal plan is already being generated")
	}
	us.generating = true
	us.lastErr = ""
	return us.settings, nil
}

// finishGeneration clears the generating flag and, on success, installs plan
// as the current plan and persists it.
func (c *Controller) finishGeneration(ctx context.Context, userID string, plan *internal.DailyMealPlan, genErr error) (*internal.DailyMealPlan, error) {
	c.mu.Lock()
	us := c.users[userID]
	c.mu.Unlock()

	us.mu.Lock()
	us.generating = false
	if genErr == nil {
		if err := c.savePlan(ctx, userID, *plan); err != nil {
			genErr = err
		}
	}
	if genErr != nil {
		us.lastErr = genErr.Error()
		us.mu.Unlock()
		c.logger.Warnf("service: plan generation for %s failed: %v", userID, genErr)
		c.notifier.Publish(userID, EventPlanFailed, map[string]string{"error": genErr.Error()})
		return nil, genErr
	}
	us.plan = plan
	out := plan.Clone()
	us.mu.Unlock()

	c.logger.Infof("service: plan %s generated for %s (attempts=%d)", plan.ID, userID, plan.RegenerationCount)
	c.notifier.Publish(userID, EventPlanGenerated, out)
	return &out, nil
}

// GeneratePlan asks the AI for a plan from profile data. One attempt is made.
func (c *Controller) GeneratePlan(ctx context.Context, userID string, req GeneratePlanRequest) (*internal.DailyMealPlan, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	settings, err := c.beginGeneration(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c.runGeneric(ctx, userID, settings, req)
}

// RegeneratePlan replaces the current plan with a fresh generic plan built
// from the saved settings.
func (c *Controller) RegeneratePlan(ctx context.Context, userID string) (*internal.DailyMealPlan, error) {
	us, err := c.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	hasPlan := us.plan != nil
	us.mu.Unlock()
	if !hasPlan {
		return nil, internal.Wrap(internal.ErrNoPlan, "No meal plan to regenerate")
	}
	settings, err := c.beginGeneration(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c.runGeneric(ctx, userID, settings, GeneratePlanRequest{
		TargetCalories:     settings.DailyCalorieGoal,
		Goal:               settings.Goal,
		ActivityLevel:      settings.ActivityLevel,
		DietaryPreferences: settings.DietaryPreferences,
	})
}

func (c *Controller) runGeneric(ctx context.Context, userID string, settings internal.UserSettings, req GeneratePlanRequest) (*internal.DailyMealPlan, error) {
	target := req.TargetCalories
	if target == 0 {
		target = settings.DailyCalorieGoal
	}
	goal := firstNonEmpty(req.Goal, settings.Goal, internal.GoalMaintain)
	activity := firstNonEmpty(req.ActivityLevel, settings.ActivityLevel, internal.ActivityModeratelyActive)
	prefs := req.DietaryPreferences
	if prefs == nil {
		prefs = settings.DietaryPreferences
	}

	c.notifier.Publish(userID, EventPlanGenerating, map[string]any{"sourceType": internal.SourceGeneric})
	resp, err := c.ai.GenerateGenericPlan(ctx, settings.APIKey, ai.GenericPlanRequest{
		TargetCalories:     target,
		Goal:               goal,
		ActivityLevel:      activity,
		DietaryPreferences: prefs,
	})
	if err != nil {
		return c.finishGeneration(ctx, userID, nil, err)
	}
	plan := planner.BuildPlan(resp, planner.BuildOptions{
		TargetCalories: target,
		Goal:           goal,
		Attempt:        1,
		Now:            c.now(),
		NewID:          c.newID,
	})
	return c.finishGeneration(ctx, userID, &plan, nil)
}

// GeneratePlanFromPantry asks for a plan restricted to the listed foods and
// re-asks while the plan misses the daily goal by more than the pantry
// tolerance, up to planner.MaxAttempts attempts.
func (c *Controller) GeneratePlanFromPantry(ctx context.Context, userID string, req PantryRequest) (*internal.DailyMealPlan, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	pantry := planner.NewPantry(req.Breakfast, req.Lunch, req.Dinner, req.Snacks, c.now())
	if req.SaveAsDefault {
		if err := c.SavePantry(ctx, userID, pantry); err != nil {
			return nil, err
		}
	}
	settings, err := c.beginGeneration(ctx, userID)
	if err != nil {
		return nil, err
	}

	target := settings.DailyCalorieGoal
	goal := firstNonEmpty(settings.Goal, internal.GoalMaintain)
	activity := firstNonEmpty(settings.ActivityLevel, internal.ActivityModeratelyActive)

	var plan internal.DailyMealPlan
	for attempt := 1; ; attempt++ {
		c.notifier.Publish(userID, EventPlanGenerating, map[string]any{"sourceType": internal.SourcePantryBased, "attempt": attempt})
		resp, err := c.ai.GeneratePantryPlan(ctx, settings.APIKey, ai.PantryPlanRequest{
			Pantry:             pantry,
			TargetCalories:     target,
			Goal:               goal,
			ActivityLevel:      activity,
			DietaryPreferences: settings.DietaryPreferences,
			Attempt:            attempt,
		})
		if err != nil {
			return c.finishGeneration(ctx, userID, nil, err)
		}
		plan = planner.BuildPlan(resp, planner.BuildOptions{
			TargetCalories: target,
			Goal:           goal,
			Pantry:         &pantry,
			Attempt:        attempt,
			Now:            c.now(),
			NewID:          c.newID,
		})
		if !planner.NeedsRegeneration(plan, attempt) {
			break
		}
		c.logger.Infof("service: pantry plan for %s off by %.0f kcal on attempt %d, retrying", userID, *plan.AccuracyVariance, attempt)
	}
	return c.finishGeneration(ctx, userID, &plan, nil)
}

// CurrentPlan returns a copy of the current plan or ErrNoPlan.
func (c *Controller) CurrentPlan(ctx context.Context, userID string) (*internal.DailyMealPlan, error) {
	us, err := c.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer us.mu.Unlock()
	if us.plan == nil {
		return nil, internal.Wrap(internal.ErrNoPlan, "No meal plan available")
	}
	p := us.plan.Clone()
	return &p, nil
}

// Plans returns every persisted plan, one per date.
func (c *Controller) Plans(ctx context.Context, userID string) ([]internal.DailyMealPlan, error) {
	return c.plans(ctx, userID)
}

// ClearPlan drops the current plan. Persisted plans are kept.
func (c *Controller) ClearPlan(ctx context.Context, userID string) error {
	us, err := c.lockUser(ctx, userID)
	if err != nil {
		return err
	}
	us.plan = nil
	us.mu.Unlock()
	c.notifier.Publish(userID, EventPlanCleared, nil)
	return nil
}

// UpdateFoodItem rescales one planned item to weightGrams. The store is only
// written when the plan actually changed.
func (c *Controller) UpdateFoodItem(ctx context.Context, userID, mealType, itemID string, weightGrams float64) (*internal.DailyMealPlan, error) {
	us, err := c.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if us.plan == nil {
		us.mu.Unlock()
		return nil, internal.Wrap(internal.ErrNoPlan, "No meal plan available")
	}
	updated, changed := planner.RescaleItem(us.plan, mealType, itemID, weightGrams)
	if !changed {
		out := us.plan.Clone()
		us.mu.Unlock()
		return &out, nil
	}
	if err := c.savePlan(ctx, userID, *updated); err != nil {
		us.mu.Unlock()
		return nil, err
	}
	us.plan = updated
	out := updated.Clone()
	us.mu.Unlock()

	c.notifier.Publish(userID, EventPlanUpdated, out)
	return &out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// SavePantry stores p as the user's default pantry.
func (c *Controller) SavePantry(ctx context.Context, userID string, p internal.PantryData) error {
	us, err := c.lockUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := c.set(ctx, userID, storage.KeyPantry, p); err != nil {
		us.mu.Unlock()
		return err
	}
	us.pantry = &p
	us.mu.Unlock()
	c.notifier.Publish(userID, EventPantrySaved, p)
	return nil
}

// LoadPantry returns the stored default pantry, or nil.
func (c *Controller) LoadPantry(ctx context.Context, userID string) (*internal.PantryData, error) {
	us, err := c.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer us.mu.Unlock()
	if us.pantry == nil {
		return nil, nil
	}
	p := *us.pantry
	return &p, nil
}
