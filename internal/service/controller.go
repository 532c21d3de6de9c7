package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yourname/nutritracker/internal"
	"github.com/yourname/nutritracker/internal/ai"
	"github.com/yourname/nutritracker/internal/planner"
	"github.com/yourname/nutritracker/internal/storage"
)

// AIClient is the subset of *ai.Client the controller needs.
type AIClient interface {
	AnalyzeFood(ctx context.Context, description, credential string) (*ai.FoodAnalysis, error)
	GenerateGenericPlan(ctx context.Context, credential string, r ai.GenericPlanRequest) (*ai.PlanResponse, error)
	GeneratePantryPlan(ctx context.Context, credential string, r ai.PantryPlanRequest) (*ai.PlanResponse, error)
	TestConnection(ctx context.Context, credential string) (string, error)
}

// Notifier receives a user's state-change events.
type Notifier interface {
	Publish(userID, eventType string, data any)
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, string, any) {}

// State is a snapshot of one user's application state.
type State struct {
	Meals        []internal.Meal             `json:"meals"`
	Settings     internal.UserSettings       `json:"settings"`
	CurrentPlan  *internal.DailyMealPlan     `json:"currentPlan"`
	Templates    []internal.MealPlanTemplate `json:"templates"`
	Pantry       *internal.PantryData        `json:"pantry"`
	IsGenerating bool                        `json:"isGenerating"`
	LastError    string                      `json:"lastError,omitempty"`
}

type userState struct {
	mu         sync.Mutex
	loaded     bool
	meals      []internal.Meal
	settings   internal.UserSettings
	plan       *internal.DailyMealPlan
	templates  []internal.MealPlanTemplate
	pantry     *internal.PantryData
	generating bool
	lastErr    string
}

type Options struct {
	Store    storage.Store
	AI       AIClient
	Notifier Notifier
	Logger   internal.Logger
	Now      func() time.Time
	NewID    func() string
}

// Controller owns every user's application state. Mutations for one user are
// serialized; AI calls run without holding the user's lock.
type Controller struct {
	store    storage.Store
	ai       AIClient
	notifier Notifier
	logger   internal.Logger
	now      func() time.Time
	newID    func() string

	mu    sync.Mutex
	users map[string]*userState
}

func NewController(opts Options) *Controller {
	c := &Controller{
		store:    opts.Store,
		ai:       opts.AI,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		now:      opts.Now,
		newID:    opts.NewID,
		users:    make(map[string]*userState),
	}
	if c.notifier == nil {
		c.notifier = nopNotifier{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	return c
}

func (c *Controller) today() string {
	return c.now().UTC().Format(internal.DateLayout)
}

// lockUser returns the user's state locked and loaded from the store. The
// caller must unlock it.
func (c *Controller) lockUser(ctx context.Context, userID string) (*userState, error) {
	c.mu.Lock()
	us, ok := c.users[userID]
	if !ok {
		us = &userState{}
		c.users[userID] = us
	}
	c.mu.Unlock()

	us.mu.Lock()
	if us.loaded {
		return us, nil
	}
	if err := c.load(ctx, userID, us); err != nil {
		us.mu.Unlock()
		return nil, err
	}
	us.loaded = true
	return us, nil
}

func (c *Controller) load(ctx context.Context, userID string, us *userState) error {
	var err error
	if us.meals, err = storage.GetOrDefault(ctx, c.store, storage.UserKey(userID, storage.KeyMeals), []internal.Meal{}); err != nil {
		c.logger.Errorf("service: load meals for %s: %v", userID, err)
		return err
	}
	if us.settings, err = storage.GetOrDefault(ctx, c.store, storage.UserKey(userID, storage.KeySettings), internal.DefaultSettings()); err != nil {
		c.logger.Errorf("service: load settings for %s: %v", userID, err)
		return err
	}
	if us.templates, err = storage.GetOrDefault(ctx, c.store, storage.UserKey(userID, storage.KeyTemplates), []internal.MealPlanTemplate{}); err != nil {
		c.logger.Errorf("service: load templates for %s: %v", userID, err)
		return err
	}
	if us.pantry, err = storage.GetOrDefault[*internal.PantryData](ctx, c.store, storage.UserKey(userID, storage.KeyPantry), nil); err != nil {
		c.logger.Errorf("service: load pantry for %s: %v", userID, err)
		return err
	}
	plans, err := c.plans(ctx, userID)
	if err != nil {
		return err
	}
	today := c.today()
	for i := range plans {
		if plans[i].Date == today {
			p := plans[i]
			us.plan = &p
		}
	}
	return nil
}

func (c *Controller) plans(ctx context.Context, userID string) ([]internal.DailyMealPlan, error) {
	plans, err := storage.GetOrDefault(ctx, c.store, storage.UserKey(userID, storage.KeyPlans), []internal.DailyMealPlan{})
	if err != nil {
		c.logger.Errorf("service: load plans for %s: %v", userID, err)
	}
	return plans, err
}

// savePlan replaces any persisted plan for the same date.
func (c *Controller) savePlan(ctx context.Context, userID string, plan internal.DailyMealPlan) error {
	plans, err := c.plans(ctx, userID)
	if err != nil {
		return err
	}
	plans = planner.UpsertPlan(plans, plan)
	if err := c.store.Set(ctx, storage.UserKey(userID, storage.KeyPlans), plans); err != nil {
		c.logger.Errorf("service: save plans for %s: %v", userID, err)
		return err
	}
	return nil
}

func (c *Controller) set(ctx context.Context, userID, name string, value any) error {
	if err := c.store.Set(ctx, storage.UserKey(userID, name), value); err != nil {
		c.logger.Errorf("service: save %s for %s: %v", name, userID, err)
		return err
	}
	return nil
}

func (c *Controller) State(ctx context.Context, userID string) (State, error) {
	us, err := c.lockUser(ctx, userID)
	if err != nil {
		return State{}, err
	}
	defer us.mu.Unlock()
	return us.snapshot(), nil
}

func (us *userState) snapshot() State {
	s := State{
		Meals:        append([]internal.Meal{}, us.meals...),
		Settings:     us.settings.Masked(),
		Templates:    append([]internal.MealPlanTemplate{}, us.templates...),
		IsGenerating: us.generating,
		LastError:    us.lastErr,
	}
	if us.plan != nil {
		p := us.plan.Clone()
		s.CurrentPlan = &p
	}
	if us.pantry != nil {
		pd := *us.pantry
		s.Pantry = &pd
	}
	return s
}
