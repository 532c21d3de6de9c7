package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourname/nutritracker/internal"
	"github.com/yourname/nutritracker/internal/ai"
	"github.com/yourname/nutritracker/internal/auth"
	"github.com/yourname/nutritracker/internal/realtime"
	"github.com/yourname/nutritracker/internal/service"
	"github.com/yourname/nutritracker/internal/storage"
)

const token = "MOCK-TOKEN"

const planContent = `{"summary":"Simple day","meals":[
 {"type":"breakfast","time":"7:00 AM","items":[{"name":"Oats","weight":80,"unit":"g","calories":300,"protein":10,"carbs":54,"fat":5,"emoji":"🥣"}]},
 {"type":"dinner","time":"7:00 PM","items":[{"name":"Salmon","weight":150,"unit":"g","calories":310,"protein":34,"carbs":0,"fat":19,"emoji":"🐟"}]}
],"dailyTotals":{"calories":610}}`

const foodContent = `{"foodName":"Apple","calories":95.4,"protein_g":0.5,"carbs_g":25.1,"fat_g":0.3,"servingSize":"1 medium"}`

// fakeOpenAI answers food prompts with foodContent and everything else with
// planContent, unless status is set.
type fakeOpenAI struct {
	status atomic.Int32
	calls  atomic.Int32
}

func (f *fakeOpenAI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	if s := f.status.Load(); s != 0 {
		w.WriteHeader(int(s))
		_, _ = w.Write([]byte(`{"error":{"message":"upstream says no"}}`))
		return
	}
	var req ai.ChatRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	content := planContent
	if strings.Contains(req.Messages[0].Content, "nutritional analysis API") {
		content = foodContent
	}
	_ = json.NewEncoder(w).Encode(ai.ChatResponse{Choices: []ai.Choice{{Message: ai.Message{Role: "assistant", Content: content}}}})
}

type envelope struct {
	Data  json.RawMessage    `json:"data"`
	Meta  map[string]any     `json:"meta"`
	Error *internal.AppError `json:"error"`
}

type harness struct {
	router *gin.Engine
	ai     *fakeOpenAI
}

func setupRouter(t *testing.T) *harness {
	gin.SetMode(gin.TestMode)
	fake := &fakeOpenAI{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	logger := internal.NopLogger()
	hub := realtime.NewHub(logger)
	ctrl := service.NewController(service.Options{
		Store:    storage.NewMemoryStore(),
		AI:       ai.NewClient(ai.Options{BaseURL: srv.URL}, logger),
		Notifier: hub,
		Logger:   logger,
	})
	app := NewApp(logger, ctrl, hub)
	return &harness{router: NewRouter(app, auth.NewLocalAuthProvider(token, logger)), ai: fake}
}

func (h *harness) do(t *testing.T, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (h *harness) saveKey(t *testing.T) {
	t.Helper()
	code, env := h.do(t, http.MethodPut, "/api/settings", map[string]any{
		"dailyCalorieGoal": 2000, "apiKey": "sk-test-abcd", "proteinGoal_g": 150,
		"carbsGoal_g": 250, "fatGoal_g": 65, "goal": "maintain", "activityLevel": "moderately_active",
	})
	require.Equal(t, http.StatusOK, code, env.Error)
}

func TestHealthzAndAuth(t *testing.T) {
	h := setupRouter(t)

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	h.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSettingsAreMasked(t *testing.T) {
	h := setupRouter(t)
	h.saveKey(t)

	code, env := h.do(t, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, code)
	var s internal.UserSettings
	require.NoError(t, json.Unmarshal(env.Data, &s))
	assert.Equal(t, "****abcd", s.APIKey)

	code, env = h.do(t, http.MethodPut, "/api/settings", map[string]any{"dailyCalorieGoal": -1})
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, 400, env.Error.Code)
}

func TestMealEndpoints(t *testing.T) {
	h := setupRouter(t)

	code, env := h.do(t, http.MethodPost, "/api/meals", map[string]string{"description": "an apple", "category": "snack"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Please set your OpenAI API key in settings", env.Error.Message)
	assert.Equal(t, int32(0), h.ai.calls.Load())

	h.saveKey(t)
	code, env = h.do(t, http.MethodPost, "/api/meals", map[string]string{"description": "an apple", "category": "snack"})
	require.Equal(t, http.StatusOK, code, env.Error)
	var meal internal.Meal
	require.NoError(t, json.Unmarshal(env.Data, &meal))
	assert.Equal(t, "Apple", meal.FoodName)
	assert.Equal(t, 95.0, meal.Nutrition.Calories)

	code, env = h.do(t, http.MethodGet, "/api/meals?date="+meal.Day(), nil)
	require.Equal(t, http.StatusOK, code)
	var meals []internal.Meal
	require.NoError(t, json.Unmarshal(env.Data, &meals))
	assert.Len(t, meals, 1)
	assert.Equal(t, 95.0, env.Meta["totals"].(map[string]any)["calories"])

	code, _ = h.do(t, http.MethodDelete, "/api/meals/"+meal.ID, nil)
	assert.Equal(t, http.StatusOK, code)
	code, env = h.do(t, http.MethodDelete, "/api/meals/"+meal.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Meal not found", env.Error.Message)
}

func TestUpstreamStatusMapping(t *testing.T) {
	h := setupRouter(t)
	h.saveKey(t)

	h.ai.status.Store(http.StatusUnauthorized)
	code, env := h.do(t, http.MethodPost, "/api/meals", map[string]string{"description": "toast", "category": "breakfast"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid API key. Please check your OpenAI API key in settings.", env.Error.Message)

	h.ai.status.Store(http.StatusTooManyRequests)
	code, _ = h.do(t, http.MethodPost, "/api/plan/generate", nil)
	assert.Equal(t, http.StatusTooManyRequests, code)

	h.ai.status.Store(http.StatusInternalServerError)
	code, env = h.do(t, http.MethodPost, "/api/plan/generate", nil)
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "upstream says no", env.Error.Message)
}

func TestPlanLifecycle(t *testing.T) {
	h := setupRouter(t)

	code, _ := h.do(t, http.MethodGet, "/api/plan", nil)
	assert.Equal(t, http.StatusNotFound, code)

	h.saveKey(t)
	code, env := h.do(t, http.MethodPost, "/api/plan/generate", map[string]any{"targetCalories": 600})
	require.Equal(t, http.StatusOK, code, env.Error)
	var plan internal.DailyMealPlan
	require.NoError(t, json.Unmarshal(env.Data, &plan))
	assert.Equal(t, 600.0, plan.TargetCalories)
	assert.Equal(t, 10.0, *plan.AccuracyVariance)
	require.Len(t, plan.Meals, 2)
	item := plan.Meals[0].Items[0]

	code, env = h.do(t, http.MethodPatch, "/api/plan/meals/breakfast/items/"+item.ID, map[string]float64{"weightGrams": 120})
	require.Equal(t, http.StatusOK, code, env.Error)
	require.NoError(t, json.Unmarshal(env.Data, &plan))
	assert.Equal(t, 450.0, plan.Meals[0].Items[0].Calories)
	assert.Equal(t, 760.0, plan.TotalCalories)

	code, env = h.do(t, http.MethodPost, "/api/templates", map[string]string{"name": "Fish day"})
	require.Equal(t, http.StatusOK, code, env.Error)
	var tmpl internal.MealPlanTemplate
	require.NoError(t, json.Unmarshal(env.Data, &tmpl))

	code, _ = h.do(t, http.MethodDelete, "/api/plan", nil)
	require.Equal(t, http.StatusOK, code)

	code, env = h.do(t, http.MethodPost, "/api/templates/"+tmpl.ID+"/load", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	var loaded internal.DailyMealPlan
	require.NoError(t, json.Unmarshal(env.Data, &loaded))
	assert.NotEqual(t, tmpl.Plan.ID, loaded.ID)
	assert.Equal(t, 450.0, loaded.Meals[0].Items[0].Calories)

	code, env = h.do(t, http.MethodPost, "/api/plan/meals/dinner/log", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, 1.0, env.Meta["added"])

	code, env = h.do(t, http.MethodGet, "/api/plans", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1.0, env.Meta["count"])

	code, _ = h.do(t, http.MethodDelete, "/api/templates/"+tmpl.ID, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = h.do(t, http.MethodPost, "/api/templates/"+tmpl.ID+"/load", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPantryEndpoints(t *testing.T) {
	h := setupRouter(t)
	h.saveKey(t)

	code, env := h.do(t, http.MethodPut, "/api/pantry", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Please list at least one available food", env.Error.Message)

	code, _ = h.do(t, http.MethodPut, "/api/pantry", map[string]string{"breakfast": "oats", "dinner": "salmon"})
	require.Equal(t, http.StatusOK, code)

	code, env = h.do(t, http.MethodGet, "/api/pantry", nil)
	require.Equal(t, http.StatusOK, code)
	var p internal.PantryData
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "oats", p.Breakfast)

	code, env = h.do(t, http.MethodPost, "/api/plan/pantry", map[string]string{"breakfast": "oats", "dinner": "salmon"})
	require.Equal(t, http.StatusOK, code, env.Error)
	var plan internal.DailyMealPlan
	require.NoError(t, json.Unmarshal(env.Data, &plan))
	assert.Equal(t, internal.SourcePantryBased, plan.SourceType)
	// 610 kcal against a 2000 kcal goal misses on every attempt.
	assert.Equal(t, 3, plan.RegenerationCount)
}

func TestBadJSON(t *testing.T) {
	h := setupRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/meals", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
