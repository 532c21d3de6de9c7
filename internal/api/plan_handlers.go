package api

import (
	"github.com/gin-gonic/gin"
	"github.com/yourname/nutritracker/internal/service"
)

func GetPlan(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		plan, err := app.Controller().CurrentPlan(c.Request.Context(), userID(c))
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to load plan")
			return
		}
		HandleSuccess(c, app.Logger(), plan, nil)
	}
}

func DeletePlan(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := app.Controller().ClearPlan(c.Request.Context(), userID(c)); err != nil {
			HandleError(c, app.Logger(), err, "Failed to clear plan")
			return
		}
		HandleSuccess(c, app.Logger(), nil, nil)
	}
}

func GetPlans(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		plans, err := app.Controller().Plans(c.Request.Context(), userID(c))
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to fetch plans")
			return
		}
		HandleSuccess(c, app.Logger(), plans, map[string]any{"count": len(plans)})
	}
}

func PostGeneratePlan(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.GeneratePlanRequest
		if c.Request.ContentLength != 0 && !bindJSON(c, app.Logger(), &req) {
			return
		}
		plan, err := app.Controller().GeneratePlan(c.Request.Context(), userID(c), req)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to generate meal plan")
			return
		}
		HandleSuccess(c, app.Logger(), plan, nil)
	}
}

func PostPantryPlan(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.PantryRequest
		if !bindJSON(c, app.Logger(), &req) {
			return
		}
		plan, err := app.Controller().GeneratePlanFromPantry(c.Request.Context(), userID(c), req)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to generate pantry meal plan")
			return
		}
		HandleSuccess(c, app.Logger(), plan, nil)
	}
}

func PostRegeneratePlan(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		plan, err := app.Controller().RegeneratePlan(c.Request.Context(), userID(c))
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to regenerate meal plan")
			return
		}
		HandleSuccess(c, app.Logger(), plan, nil)
	}
}

func PatchPlanItem(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.RescaleRequest
		if !bindJSON(c, app.Logger(), &req) {
			return
		}
		plan, err := app.Controller().UpdateFoodItem(c.Request.Context(), userID(c), c.Param("type"), c.Param("itemId"), req.WeightGrams)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to update food item")
			return
		}
		HandleSuccess(c, app.Logger(), plan, nil)
	}
}

func PostPlanMealToLog(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		meals, err := app.Controller().AddPlanMealToLog(c.Request.Context(), userID(c), c.Param("type"))
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to add planned meal to log")
			return
		}
		HandleSuccess(c, app.Logger(), meals, map[string]any{"added": len(meals)})
	}
}

func GetTemplates(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		templates, err := app.Controller().Templates(c.Request.Context(), userID(c))
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to fetch templates")
			return
		}
		HandleSuccess(c, app.Logger(), templates, nil)
	}
}

func PostTemplate(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.TemplateRequest
		if !bindJSON(c, app.Logger(), &req) {
			return
		}
		t, err := app.Controller().SaveTemplate(c.Request.Context(), userID(c), req)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to save template")
			return
		}
		HandleSuccess(c, app.Logger(), t, nil)
	}
}

func PostLoadTemplate(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		plan, err := app.Controller().LoadTemplate(c.Request.Context(), userID(c), c.Param("id"))
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to load template")
			return
		}
		HandleSuccess(c, app.Logger(), plan, nil)
	}
}

func PatchTemplateFavorite(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := app.Controller().ToggleTemplateFavorite(c.Request.Context(), userID(c), c.Param("id"))
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to update template")
			return
		}
		HandleSuccess(c, app.Logger(), t, nil)
	}
}

func DeleteTemplate(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := app.Controller().DeleteTemplate(c.Request.Context(), userID(c), id); err != nil {
			HandleError(c, app.Logger(), err, "Failed to delete template")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"id": id}, nil)
	}
}

func GetPantry(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := app.Controller().LoadPantry(c.Request.Context(), userID(c))
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to load pantry")
			return
		}
		HandleSuccess(c, app.Logger(), p, nil)
	}
}

func PutPantry(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.PantryRequest
		if !bindJSON(c, app.Logger(), &req) {
			return
		}
		p, err := app.Controller().UpdatePantry(c.Request.Context(), userID(c), req)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to save pantry")
			return
		}
		HandleSuccess(c, app.Logger(), p, nil)
	}
}
