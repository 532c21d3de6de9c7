package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/yourname/nutritracker/internal"
)

var validate = validator.New()

type AddMealRequest struct {
	Description string `json:"description"`
	Category    string `json:"category" validate:"required,oneof=breakfast lunch dinner snack"`
}

type UpdateMealRequest struct {
	Description string                 `json:"description" validate:"required"`
	FoodName    string                 `json:"foodName" validate:"required"`
	ServingSize string                 `json:"servingSize"`
	Nutrition   internal.NutritionInfo `json:"nutrition"`
	Category    string                 `json:"category" validate:"required,oneof=breakfast lunch dinner snack"`
	Timestamp   time.Time              `json:"timestamp"`
}

type SettingsRequest struct {
	DailyCalorieGoal   float64  `json:"dailyCalorieGoal" validate:"gt=0"`
	APIKey             string   `json:"apiKey"`
	ProteinGoalG       float64  `json:"proteinGoal_g" validate:"gte=0"`
	CarbsGoalG         float64  `json:"carbsGoal_g" validate:"gte=0"`
	FatGoalG           float64  `json:"fatGoal_g" validate:"gte=0"`
	Age                int      `json:"age" validate:"gte=0,lte=130"`
	Weight             float64  `json:"weight" validate:"gte=0"`
	Height             float64  `json:"height" validate:"gte=0"`
	ActivityLevel      string   `json:"activityLevel" validate:"omitempty,oneof=sedentary lightly_active moderately_active very_active extra_active"`
	Goal               string   `json:"goal" validate:"omitempty,oneof=weight_loss maintain muscle_gain"`
	DietaryPreferences []string `json:"dietaryPreferences" validate:"dive,required"`
}

type GeneratePlanRequest struct {
	TargetCalories     float64  `json:"targetCalories" validate:"gte=0"`
	Goal               string   `json:"goal" validate:"omitempty,oneof=weight_loss maintain muscle_gain"`
	ActivityLevel      string   `json:"activityLevel" validate:"omitempty,oneof=sedentary lightly_active moderately_active very_active extra_active"`
	DietaryPreferences []string `json:"dietaryPreferences" validate:"dive,required"`
}

type PantryRequest struct {
	Breakfast     string `json:"breakfast"`
	Lunch         string `json:"lunch"`
	Dinner        string `json:"dinner"`
	Snacks        string `json:"snacks"`
	SaveAsDefault bool   `json:"saveAsDefault"`
}

type TemplateRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

type RescaleRequest struct {
	WeightGrams float64 `json:"weightGrams"`
}

func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return internal.Wrap(internal.ErrValidation, err.Error())
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	return internal.Wrap(internal.ErrValidation, strings.Join(msgs, "; "))
}

func (r *PantryRequest) validate() error {
	if strings.TrimSpace(r.Breakfast+r.Lunch+r.Dinner+r.Snacks) == "" {
		return internal.Wrap(internal.ErrValidation, "Please list at least one available food")
	}
	return nil
}
