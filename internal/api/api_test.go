package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/themagicbeanstock/backend-go/internal/domain"
	"github.com/themagicbeanstock/backend-go/internal/engine"
	"github.com/themagicbeanstock/backend-go/internal/metrics"
	"github.com/themagicbeanstock/backend-go/internal/repository"
	"github.com/themagicbeanstock/backend-go/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func fixtureStore(t *testing.T) *repository.MemoryStore {
	t.Helper()
	ctx := context.Background()
	s := repository.NewMemoryStore()

	_, err := s.UpsertInventory(ctx, "acct", []domain.InventoryItem{
		{ItemName: "Flour", Unit: "kg", CurrentStock: 1, Supplier: "Acme", PricePerUnitUSD: 1.5},
		{ItemName: "Eggs", Unit: "each", CurrentStock: 10, PricePerUnitUSD: 0.25, EstimatedExpirationDate: "2025-03-12"},
	})
	require.NoError(t, err)
	_, err = s.UpsertMenuCatalog(ctx, "acct", []domain.MenuCatalogEntry{{MenuItemID: "m1", Name: "Pancakes", RecipeID: "r1"}})
	require.NoError(t, err)
	_, err = s.UpsertRecipes(ctx, "acct", []domain.Recipe{{
		RecipeID: "r1",
		Name:     "Pancakes",
		Ingredients: domain.IngredientLines{
			{ItemName: "Flour", Unit: "kg", AmountPerServing: 0.05},
			{ItemName: "Eggs", Unit: "each", AmountPerServing: 2},
		},
	}})
	require.NoError(t, err)
	_, err = s.UpsertForecasts(ctx, "acct", []domain.ForecastEntry{{Date: "2025-03-10", MenuItemID: "m1", PredictedUnits: 40}})
	require.NoError(t, err)
	return s
}

func newTestRouter(t *testing.T) (*gin.Engine, *metrics.Collector) {
	t.Helper()
	store := fixtureStore(t)
	collector := metrics.NewCollector()
	opts := service.Options{
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) },
		Metrics:  collector,
	}
	policy := engine.DefaultPolicy()

	risk, err := service.NewRiskService(store, nil, policy, opts)
	require.NoError(t, err)
	plans, err := service.NewOrderPlanService(store, nil, nil, "", policy, opts)
	require.NoError(t, err)
	recipes, err := service.NewRecipeService(store, policy, opts)
	require.NoError(t, err)
	ingestSvc := service.NewIngestService(store, store, nil, service.IngestConfig{}, opts)

	router := NewRouter(&Services{
		RiskService:      risk,
		OrderPlanService: plans,
		RecipeService:    recipes,
		ForecastService:  service.NewForecastService(store, opts),
		IngestService:    ingestSvc,
	}, RouterConfig{UploadDir: t.TempDir(), Metrics: collector})
	return router, collector
}

func doRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["status"])

	w = doRequest(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `beanstock_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestGetRisk(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acct/inventory/risk?window=7", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var report domain.RiskReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.Len(t, report.Enriched, 2)
	assert.Equal(t, "Eggs", report.Enriched[0].ItemName)
	assert.True(t, report.Enriched[0].AtRisk)
	assert.Equal(t, 1, report.Stats.AtRiskCount)

	w = doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acct/inventory/risk?window=soon", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "invalid window", body["error"])
	assert.NotEmpty(t, body["details"])
}

func TestGetSustainability(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acct/sustainability", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Eggs")
}

func TestGetOrderPlan(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acct/order-plan?date=2025-03-10", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var plan domain.OrderPlan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plan))
	assert.Equal(t, "2025-03-10", plan.Date)
	require.Len(t, plan.Lines, 2)
	assert.Equal(t, 70.0, plan.Lines[0].ToOrder)

	w = doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acct/order-plan?date=10/03/2025", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acct/order-plan?date=2025-05-01", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no forecasts found for that date", decodeBody(t, w)["message"])
}

func TestGetForecasts(t *testing.T) {
	router, _ := newTestRouter(t)

	doc := `[{"date": "2025-03-10", "menuItemId": "m0", "predictedUnits": 12, "model": "prophet"}]`
	body, contentType := multipartBody(t, "file", "forecasts.json", doc, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/acct/uploads/forecasts_json", body)
	req.Header.Set("Content-Type", contentType)
	require.Equal(t, http.StatusOK, doRequest(router, req).Code)

	w := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acct/forecasts?date=2025-03-10", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var list domain.ForecastList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, "2025-03-10", list.Date)
	assert.Equal(t, 2, list.Count)
	require.Len(t, list.Forecasts, 2)
	assert.Equal(t, "m0", list.Forecasts[0].MenuItemID)
	assert.Equal(t, "prophet", list.Forecasts[0].Model)
	assert.Equal(t, "m1", list.Forecasts[1].MenuItemID)
	assert.Equal(t, 40.0, list.Forecasts[1].PredictedUnits)

	w = doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acct/forecasts?date=2025-05-01", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no forecasts found for that date", decodeBody(t, w)["message"])

	w = doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acct/forecasts", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportOrderPlan(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/acct/order-plan/export?date=2025-03-10", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="order_plan_2025-03-10.csv"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "supplier,item_name,unit,needed"))
	assert.Empty(t, w.Header().Get("X-Export-Key"))
}

func TestCalculateRecipe(t *testing.T) {
	router, _ := newTestRouter(t)

	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return doRequest(router, req)
	}

	w := post("/api/v1/accounts/acct/recipes/r1/calculate", `{"servings": 10}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		RecipeID string                   `json:"recipe_id"`
		Lines    []domain.RecipeOrderLine `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "r1", resp.RecipeID)
	require.Len(t, resp.Lines, 2)
	assert.Equal(t, "Flour", resp.Lines[0].ItemName)
	assert.Equal(t, 0.0, resp.Lines[0].ToOrder)
	assert.Equal(t, 10.0, resp.Lines[1].ToOrder)

	assert.Equal(t, http.StatusNotFound, post("/api/v1/accounts/acct/recipes/nope/calculate", `{"servings": 1}`).Code)
	assert.Equal(t, http.StatusBadRequest, post("/api/v1/accounts/acct/recipes/r1/calculate", `{"servings": -1}`).Code)
	assert.Equal(t, http.StatusBadRequest, post("/api/v1/accounts/acct/recipes/r1/calculate", `{}`).Code)
}

func multipartBody(t *testing.T, field, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadAndDatasets(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartBody(t, "file", "inventory.csv", "itemName,currentStock\nSalt,4\n,2\n", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/fresh/uploads/inventory_csv", body)
	req.Header.Set("Content-Type", contentType)
	w := doRequest(router, req)
	require.Equal(t, http.StatusOK, w.Code)

	var result domain.IngestResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Written)
	assert.Equal(t, 1, result.Skipped)

	w = doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/fresh/datasets", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var status struct {
		Datasets []domain.DatasetStatus `json:"datasets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	require.Len(t, status.Datasets, len(domain.AllDatasets))
	assert.Equal(t, domain.DatasetInventory, status.Datasets[0].Dataset)
	assert.True(t, status.Datasets[0].Present)
	assert.False(t, status.Datasets[1].Present)
}

func TestUploadRejectsBadInput(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartBody(t, "file", "inventory.csv", "itemName\nSalt\n", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/acct/uploads/pictures", body)
	req.Header.Set("Content-Type", contentType)
	assert.Equal(t, http.StatusBadRequest, doRequest(router, req).Code)

	body, contentType = multipartBody(t, "file", "forecasts.json", `{"m1": 3}`, nil)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/accounts/acct/uploads/forecasts_json", body)
	req.Header.Set("Content-Type", contentType)
	assert.Equal(t, http.StatusBadRequest, doRequest(router, req).Code)

	body, contentType = multipartBody(t, "file", "forecasts.json", `{"m1": 3}`, map[string]string{"date": "2025-03-11"})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/accounts/acct/uploads/forecasts_json", body)
	req.Header.Set("Content-Type", contentType)
	assert.Equal(t, http.StatusOK, doRequest(router, req).Code)

	body, contentType = multipartBody(t, "file", "recipes.json", `[{"recipeId": `, nil)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/accounts/acct/uploads/recipes_json", body)
	req.Header.Set("Content-Type", contentType)
	assert.Equal(t, http.StatusBadRequest, doRequest(router, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/accounts/acct/uploads/inventory_csv", strings.NewReader(""))
	assert.Equal(t, http.StatusBadRequest, doRequest(router, req).Code)
}

func TestUploadBatchRejectsUnknownFiles(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartBody(t, "files", "notes.txt", "hello", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/acct/uploads", body)
	req.Header.Set("Content-Type", contentType)
	w := doRequest(router, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []interface{}{"notes.txt"}, decodeBody(t, w)["rejected"])
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, allowAll := normalizeAllowedOrigins([]string{"https://a.example, https://b.example", " "})
	assert.False(t, allowAll)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, origins)

	_, allowAll = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, allowAll)
}

func TestUploadBatchKeepsSameNamedFiles(t *testing.T) {
	router, _ := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, content := range []string{"itemName,currentStock\nSalt,4\n", "itemName,currentStock\nPepper,2\n"} {
		fw, err := mw.CreateFormFile("files", "inventory.csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/dup/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := doRequest(router, req)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, float64(2), decodeBody(t, w)["count"])

	assert.Eventually(t, func() bool {
		w := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/dup/inventory/risk", nil))
		if w.Code != http.StatusOK {
			return false
		}
		var report domain.RiskReport
		if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
			return false
		}
		return report.Stats.TotalItems == 2
	}, 2*time.Second, 20*time.Millisecond)
}
