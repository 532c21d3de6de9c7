package service

import (
	"context"
	"strings"

	"github.com/yourname/nutritracker/internal"
	"github.com/yourname/nutritracker/internal/storage"
)

// Events published to the user's realtime subscribers.
const (
	EventMealAdded       = "meal.added"
	EventMealUpdated     = "meal.updated"
	EventMealDeleted     = "meal.deleted"
	EventSettingsSaved   = "settings.saved"
	EventPlanGenerating  = "plan.generating"
	EventPlanGenerated   = "plan.generated"
	EventPlanFailed      = "plan.failed"
	EventPlanUpdated     = "plan.updated"
	EventPlanCleared     = "plan.cleared"
	EventTemplateSaved   = "template.saved"
	EventTemplateDeleted = "template.deleted"
	EventPantrySaved     = "pantry.saved"
)

// Settings returns the user's settings with the credential masked.
func (c *Controller) Settings(ctx context.Context, userID string) (internal.UserSettings, error) {
	us, err := c.lockUser(ctx, userID)
	if err != nil {
		return internal.UserSettings{}, err
	}
	defer us.mu.Unlock()
	return us.settings.Masked(), nil
}

// SaveSettings replaces the settings wholesale. A masked credential echoed
// back by a client keeps the stored one.
func (c *Controller) SaveSettings(ctx context.Context, userID string, req SettingsRequest) (internal.UserSettings, error) {
	if err := validateRequest(&req); err != nil {
		return internal.UserSettings{}, err
	}
	us, err := c.lockUser(ctx, userID)
	if err != nil {
		return internal.UserSettings{}, err
	}
	settings := internal.UserSettings{
		DailyCalorieGoal:   req.DailyCalorieGoal,
		APIKey:             strings.TrimSpace(req.APIKey),
		ProteinGoalG:       req.ProteinGoalG,
		CarbsGoalG:         req.CarbsGoalG,
		FatGoalG:           req.FatGoalG,
		Age:                req.Age,
		Weight:             req.Weight,
		Height:             req.Height,
		ActivityLevel:      req.ActivityLevel,
		Goal:               req.Goal,
		DietaryPreferences: append([]string{}, req.DietaryPreferences...),
	}
	if strings.HasPrefix(settings.APIKey, "****") {
		settings.APIKey = us.settings.APIKey
	}
	if err := c.set(ctx, userID, storage.KeySettings, settings); err != nil {
		us.mu.Unlock()
		return internal.UserSettings{}, err
	}
	us.settings = settings
	us.mu.Unlock()

	masked := settings.Masked()
	c.notifier.Publish(userID, EventSettingsSaved, masked)
	return masked, nil
}

// TestAI sends a minimal completion with the stored credential.
func (c *Controller) TestAI(ctx context.Context, userID string) (string, error) {
	us, err := c.lockUser(ctx, userID)
	if err != nil {
		return "", err
	}
	credential := us.settings.APIKey
	us.mu.Unlock()
	return c.ai.TestConnection(ctx, credential)
}
