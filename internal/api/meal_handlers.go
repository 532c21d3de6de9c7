package api

import (
	"github.com/gin-gonic/gin"
	"github.com/yourname/nutritracker/internal/service"
)

func GetState(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := app.Controller().State(c.Request.Context(), userID(c))
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to load state")
			return
		}
		HandleSuccess(c, app.Logger(), state, nil)
	}
}

func GetMeals(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := app.Controller().DayView(c.Request.Context(), userID(c), c.Query("date"))
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to fetch meals")
			return
		}
		HandleSuccess(c, app.Logger(), view.Meals, map[string]any{
			"date":     view.Date,
			"totals":   view.Totals,
			"settings": view.Settings,
		})
	}
}

func PostMeal(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.AddMealRequest
		if !bindJSON(c, app.Logger(), &req) {
			return
		}
		meal, err := app.Controller().AddMeal(c.Request.Context(), userID(c), req)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to add meal")
			return
		}
		HandleSuccess(c, app.Logger(), meal, nil)
	}
}

func PutMeal(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.UpdateMealRequest
		if !bindJSON(c, app.Logger(), &req) {
			return
		}
		meal, err := app.Controller().UpdateMeal(c.Request.Context(), userID(c), c.Param("id"), req)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to update meal")
			return
		}
		HandleSuccess(c, app.Logger(), meal, nil)
	}
}

func DeleteMeal(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := app.Controller().DeleteMeal(c.Request.Context(), userID(c), id); err != nil {
			HandleError(c, app.Logger(), err, "Failed to delete meal")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"id": id}, nil)
	}
}

func GetTotals(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		totals, err := app.Controller().Totals(c.Request.Context(), userID(c), c.Query("date"))
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to compute totals")
			return
		}
		HandleSuccess(c, app.Logger(), totals, nil)
	}
}

func GetSettings(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := app.Controller().Settings(c.Request.Context(), userID(c))
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to load settings")
			return
		}
		HandleSuccess(c, app.Logger(), settings, nil)
	}
}

func PutSettings(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.SettingsRequest
		if !bindJSON(c, app.Logger(), &req) {
			return
		}
		settings, err := app.Controller().SaveSettings(c.Request.Context(), userID(c), req)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to save settings")
			return
		}
		HandleSuccess(c, app.Logger(), settings, nil)
	}
}

func PostSettingsTest(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		reply, err := app.Controller().TestAI(c.Request.Context(), userID(c))
		if err != nil {
			HandleError(c, app.Logger(), err, "AI connection test failed")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"reply": reply}, nil)
	}
}
