package internal

import "time"

type User struct {
	ID    string `json:"id"`
	Token string `json:"token"`
	Name  string `json:"name"`
}

const (
	CategoryBreakfast = "breakfast"
	CategoryLunch     = "lunch"
	CategoryDinner    = "dinner"
	CategorySnack     = "snack"
)

// Categories lists meal categories in the order a day is eaten.
var Categories = []string{CategoryBreakfast, CategoryLunch, CategoryDinner, CategorySnack}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

type NutritionInfo struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

type Meal struct {
	ID          string        `json:"id"`
	Description string        `json:"description"`
	FoodName    string        `json:"foodName"`
	ServingSize string        `json:"servingSize"`
	Nutrition   NutritionInfo `json:"nutrition"`
	Timestamp   time.Time     `json:"timestamp"`
	Category    string        `json:"category"`
}

// Day returns the UTC calendar day the meal was logged on.
func (m Meal) Day() string {
	return m.Timestamp.UTC().Format(DateLayout)
}

// DateLayout is the calendar-day format used for plans and the day view.
const DateLayout = "2006-01-02"

type DailyTotals struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

const (
	ActivitySedentary        = "sedentary"
	ActivityLightlyActive    = "lightly_active"
	ActivityModeratelyActive = "moderately_active"
	ActivityVeryActive       = "very_active"
	ActivityExtraActive      = "extra_active"

	GoalWeightLoss = "weight_loss"
	GoalMaintain   = "maintain"
	GoalMuscleGain = "muscle_gain"
)

type UserSettings struct {
	DailyCalorieGoal   float64  `json:"dailyCalorieGoal"`
	APIKey             string   `json:"apiKey"`
	ProteinGoalG       float64  `json:"proteinGoal_g"`
	CarbsGoalG         float64  `json:"carbsGoal_g"`
	FatGoalG           float64  `json:"fatGoal_g"`
	Age                int      `json:"age,omitempty"`
	Weight             float64  `json:"weight,omitempty"` // kg
	Height             float64  `json:"height,omitempty"` // cm
	ActivityLevel      string   `json:"activityLevel,omitempty"`
	Goal               string   `json:"goal,omitempty"`
	DietaryPreferences []string `json:"dietaryPreferences,omitempty"`
}

func DefaultSettings() UserSettings {
	return UserSettings{
		DailyCalorieGoal:   2000,
		ProteinGoalG:       150,
		CarbsGoalG:         250,
		FatGoalG:           65,
		Age:                30,
		Weight:             70,
		Height:             175,
		ActivityLevel:      ActivityModeratelyActive,
		Goal:               GoalMaintain,
		DietaryPreferences: []string{},
	}
}

// Masked returns a copy safe to send to clients: the credential is reduced to
// its last four characters.
func (s UserSettings) Masked() UserSettings {
	out := s
	out.DietaryPreferences = append([]string(nil), s.DietaryPreferences...)
	if len(s.APIKey) > 4 {
		out.APIKey = "****" + s.APIKey[len(s.APIKey)-4:]
	} else if s.APIKey != "" {
		out.APIKey = "****"
	}
	return out
}

type Micronutrients struct {
	Fiber     *float64 `json:"fiber,omitempty"`
	VitaminC  *float64 `json:"vitaminC,omitempty"`
	Iron      *float64 `json:"iron,omitempty"`
	Calcium   *float64 `json:"calcium,omitempty"`
	Potassium *float64 `json:"potassium,omitempty"`
}

type FoodItem struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	WeightGrams    float64         `json:"weightGrams"`
	Calories       float64         `json:"calories"`
	Protein        float64         `json:"protein"`
	Carbs          float64         `json:"carbs"`
	Fat            float64         `json:"fat"`
	Micronutrients *Micronutrients `json:"micronutrients,omitempty"`
	Emoji          string          `json:"emoji"`
	IsFromPantry   bool            `json:"isFromPantry,omitempty"`
}

type MealSection struct {
	Type          string     `json:"type"`
	Items         []FoodItem `json:"items"`
	TotalCalories float64    `json:"totalCalories"`
	TotalProtein  float64    `json:"totalProtein"`
	TotalCarbs    float64    `json:"totalCarbs"`
	TotalFat      float64    `json:"totalFat"`
	TimeEstimate  string     `json:"timeEstimate,omitempty"`
}

type Macros struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

const (
	SourceGeneric     = "generic"
	SourcePantryBased = "pantry_based"
)

type DailyMealPlan struct {
	ID                string        `json:"id"`
	Date              string        `json:"date"`
	TargetCalories    float64       `json:"targetCalories"`
	Meals             []MealSection `json:"meals"`
	TotalMacros       Macros        `json:"totalMacros"`
	TotalCalories     float64       `json:"totalCalories"`
	MacroRatio        Macros        `json:"macroRatio"` // percentages
	Summary           string        `json:"summary,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
	AccuracyVariance  *float64      `json:"accuracyVariance,omitempty"`
	SourceType        string        `json:"sourceType,omitempty"`
	UsedPantry        *PantryData   `json:"usedPantry,omitempty"`
	RegenerationCount int           `json:"regenerationCount,omitempty"`
}

// Clone returns a deep copy; templates and state snapshots never share slices
// with the live plan.
func (p DailyMealPlan) Clone() DailyMealPlan {
	out := p
	out.Meals = make([]MealSection, len(p.Meals))
	for i, s := range p.Meals {
		s.Items = append([]FoodItem(nil), s.Items...)
		for j := range s.Items {
			if m := s.Items[j].Micronutrients; m != nil {
				cp := *m
				s.Items[j].Micronutrients = &cp
			}
		}
		out.Meals[i] = s
	}
	if p.AccuracyVariance != nil {
		v := *p.AccuracyVariance
		out.AccuracyVariance = &v
	}
	if p.UsedPantry != nil {
		pd := *p.UsedPantry
		out.UsedPantry = &pd
	}
	return out
}

// Section returns the index of the section with the given meal type, or -1.
func (p DailyMealPlan) Section(mealType string) int {
	for i, s := range p.Meals {
		if s.Type == mealType {
			return i
		}
	}
	return -1
}

type MealPlanTemplate struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Plan        DailyMealPlan `json:"plan"`
	IsFavorite  bool          `json:"isFavorite"`
	CreatedAt   time.Time     `json:"createdAt"`
}

type PantryData struct {
	Breakfast string    `json:"breakfast"`
	Lunch     string    `json:"lunch"`
	Dinner    string    `json:"dinner"`
	Snacks    string    `json:"snacks"`
	UpdatedAt time.Time `json:"updatedAt"`
}
