package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"farmstead/internal/feed"
	"farmstead/internal/optimizer"
	"farmstead/models"
)

func withTestOptimizer(t *testing.T, client *optimizer.Client) func() {
	t.Helper()
	original := optimizerClient
	optimizerClient = client
	return func() {
		optimizerClient = original
	}
}

func postOptimize(t *testing.T, payload optimizeRequest, userID uint, farmID string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/formulas/optimize", bytes.NewReader(body))
	req = authenticateRequest(t, sessionManager, req, userID, farmID)
	w := httptest.NewRecorder()
	FormulaResource(w, req)
	return w
}

func TestOptimizeLocalMixes(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	_, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)
	t.Cleanup(withTestOptimizer(t, nil))

	farm, user := createTestFarmUser(t, db, "mixer@example.com")

	w := postOptimize(t, optimizeRequest{TargetNutrition: "High Calcium"}, user.ID, farm.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp feed.MixResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TargetNutrition != models.NutritionHighCalcium {
		t.Fatalf("expected high calcium mix, got %q", resp.TargetNutrition)
	}
	if len(resp.Ingredients) == 0 || resp.TotalCost <= 0 {
		t.Fatalf("expected a priced ingredient list, got %+v", resp)
	}

	// unknown categories fall back to the balanced mix
	w = postOptimize(t, optimizeRequest{TargetNutrition: "maximum vibes"}, user.ID, farm.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TargetNutrition != models.NutritionBalanced {
		t.Fatalf("expected balanced fallback, got %q", resp.TargetNutrition)
	}
}

func TestOptimizeDelegatesToRemoteService(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	_, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	farm, user := createTestFarmUser(t, db, "remote@example.com")

	var received optimizer.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/optimize" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode forwarded request: %v", err)
		}
		json.NewEncoder(w).Encode(optimizer.Result{
			TargetNutrition: received.TargetNutrition,
			Ingredients:     []feed.Ingredient{{Name: "Corn", Quantity: 55, Unit: "kg"}},
			TotalCost:       12.5,
			Message:         "solved",
		})
	}))
	t.Cleanup(server.Close)

	client, err := optimizer.NewClient(optimizer.Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}
	t.Cleanup(withTestOptimizer(t, client))

	w := postOptimize(t, optimizeRequest{TargetNutrition: "high protein", BatchSizeKg: 100}, user.ID, farm.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if received.TargetNutrition != models.NutritionHighProtein || received.BatchSizeKg != 100 {
		t.Fatalf("unexpected forwarded request: %+v", received)
	}
	var resp optimizer.Result
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message != "solved" || resp.TotalCost != 12.5 {
		t.Fatalf("expected remote result passed through, got %+v", resp)
	}
}

func TestOptimizeSurfacesDownstreamFailure(t *testing.T) {
	db, cleanupDB := withTestDatabase(t)
	t.Cleanup(cleanupDB)
	_, cleanupSession := withTestSessionManager(t)
	t.Cleanup(cleanupSession)

	farm, user := createTestFarmUser(t, db, "downstream@example.com")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "solver overloaded"})
	}))
	t.Cleanup(server.Close)

	client, err := optimizer.NewClient(optimizer.Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}
	t.Cleanup(withTestOptimizer(t, client))

	w := postOptimize(t, optimizeRequest{TargetNutrition: "balanced"}, user.ID, farm.ID)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["error"] != "solver overloaded" {
		t.Fatalf("expected downstream message to be preserved, got %+v", resp)
	}
}
