package service

import (
	"context"
	"strings"

	"github.com/yourname/nutritracker/internal"
	"github.com/yourname/nutritracker/internal/planner"
	"github.com/yourname/nutritracker/internal/storage"
)

func (c *Controller) Templates(ctx context.Context, userID string) ([]internal.MealPlanTemplate, error) {
	us, err := c.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer us.mu.Unlock()
	return append([]internal.MealPlanTemplate{}, us.templates...), nil
}

// SaveTemplate snapshots the current plan under a name.
func (c *Controller) SaveTemplate(ctx context.Context, userID string, req TemplateRequest) (*internal.MealPlanTemplate, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	us, err := c.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if us.plan == nil {
		us.mu.Unlock()
		return nil, internal.Wrap(internal.ErrNoPlan, "No meal plan to save as a template")
	}
	t := planner.NewTemplate(*us.plan, c.newID(), req.Name, strings.TrimSpace(req.Description), c.now())
	templates := append(append([]internal.MealPlanTemplate{}, us.templates...), t)
	if err := c.set(ctx, userID, storage.KeyTemplates, templates); err != nil {
		us.mu.Unlock()
		return nil, err
	}
	us.templates = templates
	us.mu.Unlock()

	c.notifier.Publish(userID, EventTemplateSaved, t)
	return &t, nil
}

// LoadTemplate makes a fresh copy of the template's plan, dated today, the
// current plan. The template itself is left untouched.
func (c *Controller) LoadTemplate(ctx context.Context, userID, id string) (*internal.DailyMealPlan, error) {
	us, err := c.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	t, ok := planner.FindTemplate(us.templates, id)
	if !ok {
		us.mu.Unlock()
		return nil, internal.Wrap(internal.ErrNotFound, "Template not found")
	}
	plan := planner.InstantiateTemplate(t, c.newID(), c.now())
	if err := c.savePlan(ctx, userID, plan); err != nil {
		us.mu.Unlock()
		return nil, err
	}
	us.plan = &plan
	out := plan.Clone()
	us.mu.Unlock()

	c.notifier.Publish(userID, EventPlanUpdated, out)
	return &out, nil
}

func (c *Controller) DeleteTemplate(ctx context.Context, userID, id string) error {
	us, err := c.lockUser(ctx, userID)
	if err != nil {
		return err
	}
	templates, found := planner.RemoveTemplate(us.templates, id)
	if !found {
		us.mu.Unlock()
		return internal.Wrap(internal.ErrNotFound, "Template not found")
	}
	if err := c.set(ctx, userID, storage.KeyTemplates, templates); err != nil {
		us.mu.Unlock()
		return err
	}
	us.templates = templates
	us.mu.Unlock()

	c.notifier.Publish(userID, EventTemplateDeleted, map[string]string{"id": id})
	return nil
}

func (c *Controller) ToggleTemplateFavorite(ctx context.Context, userID, id string) (*internal.MealPlanTemplate, error) {
	us, err := c.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	templates, found := planner.ToggleFavorite(us.templates, id)
	if !found {
		us.mu.Unlock()
		return nil, internal.Wrap(internal.ErrNotFound, "Template not found")
	}
	if err := c.set(ctx, userID, storage.KeyTemplates, templates); err != nil {
		us.mu.Unlock()
		return nil, err
	}
	us.templates = templates
	t, _ := planner.FindTemplate(templates, id)
	us.mu.Unlock()

	c.notifier.Publish(userID, EventTemplateSaved, t)
	return &t, nil
}

// UpdatePantry validates the lists and stores them as the default pantry.
func (c *Controller) UpdatePantry(ctx context.Context, userID string, req PantryRequest) (*internal.PantryData, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	p := planner.NewPantry(req.Breakfast, req.Lunch, req.Dinner, req.Snacks, c.now())
	if err := c.SavePantry(ctx, userID, p); err != nil {
		return nil, err
	}
	return &p, nil
}
