package optimizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"farmstead/internal/feed"
	"farmstead/models"
)

func TestNewClientRequiresBaseURL(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{BaseURL: "   "}); err == nil {
		t.Fatal("expected an error for an empty base URL")
	}
}

func TestOptimizeDecodesSuccessfulResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/optimize" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var request Request
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if request.TargetNutrition != models.NutritionHighProtein {
			t.Errorf("TargetNutrition = %q, want %q", request.TargetNutrition, models.NutritionHighProtein)
		}

		json.NewEncoder(w).Encode(Result{
			TargetNutrition: request.TargetNutrition,
			Ingredients:     []feed.Ingredient{{Name: "Soybean Meal", Quantity: 40, Unit: "kg"}},
			TotalCost:       26,
		})
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}

	result, err := client.Optimize(context.Background(), Request{TargetNutrition: models.NutritionHighProtein})
	if err != nil {
		t.Fatalf("Optimize returned %v", err)
	}
	if len(result.Ingredients) != 1 || result.Ingredients[0].Name != "Soybean Meal" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.TotalCost != 26 {
		t.Fatalf("TotalCost = %v, want 26", result.TotalCost)
	}
}

func TestOptimizeSurfacesDownstreamStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": "solver unavailable"})
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}

	_, err = client.Optimize(context.Background(), Request{TargetNutrition: models.NutritionBalanced})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("StatusCode = %d, want %d", statusErr.StatusCode, http.StatusBadGateway)
	}
	if statusErr.Message != "solver unavailable" {
		t.Fatalf("Message = %q, want the downstream detail", statusErr.Message)
	}
}

func TestOptimizeReportsTransportFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client, err := NewClient(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}

	if _, err := client.Optimize(context.Background(), Request{}); err == nil {
		t.Fatal("expected a transport error from the closed server")
	}
}
