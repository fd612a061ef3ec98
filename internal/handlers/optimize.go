package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"farmstead/internal/feed"
	applog "farmstead/internal/log"
	"farmstead/internal/optimizer"
	"farmstead/models"
)

type optimizeRequest struct {
	TargetNutrition string            `json:"target_nutrition"`
	TargetGroup     string            `json:"target_group"`
	BatchSizeKg     float64           `json:"batch_size_kg"`
	Ingredients     []feed.Ingredient `json:"ingredients"`
}

// optimizeFormula suggests an ingredient mix for a nutrition goal. When
// a remote solver is configured the request is delegated to it, with
// the built-in canned mixes as the standalone path.
func optimizeFormula(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid optimize payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	target := models.NormalizeTargetNutrition(payload.TargetNutrition)

	if optimizerClient != nil {
		result, err := optimizerClient.Optimize(ctx, optimizer.Request{
			TargetNutrition: target,
			TargetGroup:     payload.TargetGroup,
			BatchSizeKg:     payload.BatchSizeKg,
			Ingredients:     payload.Ingredients,
		})
		if err != nil {
			var statusErr *optimizer.StatusError
			if errors.As(err, &statusErr) {
				applog.Warn(ctx, "optimizer rejected request", "status", statusErr.StatusCode, "message", statusErr.Message)
				writeJSONError(w, http.StatusBadGateway, statusErr.Message)
				return
			}
			applog.Error(ctx, "optimizer request failed", "error", err)
			writeJSONError(w, http.StatusBadGateway, "optimizer unavailable")
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	writeJSON(w, http.StatusOK, feed.BuildMix(target))
}
