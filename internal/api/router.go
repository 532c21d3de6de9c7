package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/nutritracker/internal/auth"
)

func ServeWS(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		app.Hub().ServeWS(c.Writer, c.Request, userID(c))
	}
}

// NewRouter wires every route. Everything under /api requires a token.
func NewRouter(app App, provider auth.Provider) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), AccessLogMiddleware(app.Logger()))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	g := r.Group("/api", auth.AuthMiddleware(provider))
	g.GET("/state", GetState(app))
	g.GET("/ws", ServeWS(app))

	g.GET("/meals", GetMeals(app))
	g.POST("/meals", PostMeal(app))
	g.PUT("/meals/:id", PutMeal(app))
	g.DELETE("/meals/:id", DeleteMeal(app))
	g.GET("/totals", GetTotals(app))

	g.GET("/settings", GetSettings(app))
	g.PUT("/settings", PutSettings(app))
	g.POST("/settings/test", PostSettingsTest(app))

	g.GET("/plan", GetPlan(app))
	g.DELETE("/plan", DeletePlan(app))
	g.GET("/plans", GetPlans(app))
	g.POST("/plan/generate", PostGeneratePlan(app))
	g.POST("/plan/pantry", PostPantryPlan(app))
	g.POST("/plan/regenerate", PostRegeneratePlan(app))
	g.PATCH("/plan/meals/:type/items/:itemId", PatchPlanItem(app))
	g.POST("/plan/meals/:type/log", PostPlanMealToLog(app))

	g.GET("/templates", GetTemplates(app))
	g.POST("/templates", PostTemplate(app))
	g.POST("/templates/:id/load", PostLoadTemplate(app))
	g.PATCH("/templates/:id/favorite", PatchTemplateFavorite(app))
	g.DELETE("/templates/:id", DeleteTemplate(app))

	g.GET("/pantry", GetPantry(app))
	g.PUT("/pantry", PutPantry(app))
	return r
}
