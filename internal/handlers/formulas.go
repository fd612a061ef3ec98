package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"farmstead/internal/feed"
	applog "farmstead/internal/log"
	"farmstead/models"
)

type feedIngredientPayload struct {
	Name     string   `json:"name"`
	Quantity float64  `json:"quantity"`
	Unit     string   `json:"unit"`
	Cost     *float64 `json:"cost,omitempty"`
}

type formulaCreateRequest struct {
	Name            string                  `json:"name"`
	Ingredients     []feedIngredientPayload `json:"ingredients"`
	TargetNutrition string                  `json:"target_nutrition"`
	TargetGroup     string                  `json:"target_group"`
	Notes           string                  `json:"notes"`
}

type formulaUpdateRequest struct {
	Name            *string                  `json:"name"`
	Ingredients     *[]feedIngredientPayload `json:"ingredients"`
	TargetNutrition *string                  `json:"target_nutrition"`
	TargetGroup     *string                  `json:"target_group"`
	Notes           *string                  `json:"notes"`
}

type feedFormulaResponse struct {
	ID              string                  `json:"id"`
	FarmID          string                  `json:"farm_id"`
	Name            string                  `json:"name"`
	Ingredients     []feedIngredientPayload `json:"ingredients"`
	TargetNutrition string                  `json:"target_nutrition"`
	TargetGroup     string                  `json:"target_group"`
	TotalCost       float64                 `json:"total_cost"`
	Notes           string                  `json:"notes"`
	IsActive        bool                    `json:"is_active"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// FormulaResource handles REST-style interactions for feed formulas.
// Soft-deleted formulas are invisible to every path here.
func FormulaResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "formula request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	if _, ok := currentUserID(r); !ok {
		applog.Debug(r.Context(), "formula request without authenticated user")
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	farmID, ok := currentFarmID(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "user does not belong to a farm")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/formulas")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listFormulas(w, r, farmID)
		case http.MethodPost:
			createFormula(w, r, farmID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	if path == "optimize" {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		optimizeFormula(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		showFormula(w, r, path, farmID)
	case http.MethodPut:
		updateFormula(w, r, path, farmID)
	case http.MethodDelete:
		deleteFormula(w, r, path, farmID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listFormulas(w http.ResponseWriter, r *http.Request, farmID string) {
	ctx := r.Context()
	var formulas []models.FeedFormula
	err := database.WithContext(ctx).
		Preload("Ingredients").
		Where("farm_id = ? AND is_active = ?", farmID, true).
		Order("created_at desc").
		Find(&formulas).Error
	if err != nil {
		applog.Error(ctx, "failed to list formulas", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load formulas")
		return
	}

	responses := make([]feedFormulaResponse, 0, len(formulas))
	for _, formula := range formulas {
		responses = append(responses, projectFormula(formula))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showFormula(w http.ResponseWriter, r *http.Request, formulaID, farmID string) {
	ctx := r.Context()
	var formula models.FeedFormula
	err := database.WithContext(ctx).
		Preload("Ingredients").
		Where("id = ? AND farm_id = ? AND is_active = ?", formulaID, farmID, true).
		First(&formula).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusNotFound, "feed formula not found")
			return
		}
		applog.Error(ctx, "failed to load formula", "error", err, "id", formulaID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load formula")
		return
	}

	writeJSON(w, http.StatusOK, projectFormula(formula))
}

func createFormula(w http.ResponseWriter, r *http.Request, farmID string) {
	ctx := r.Context()
	var payload formulaCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid formula create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	formula := models.FeedFormula{
		FarmID:          farmID,
		Name:            strings.TrimSpace(payload.Name),
		Ingredients:     toIngredientRows(payload.Ingredients),
		TargetNutrition: normalizedCategory(payload.TargetNutrition, models.DefaultTargetNutrition),
		TargetGroup:     normalizedCategory(payload.TargetGroup, models.DefaultTargetGroup),
		Notes:           strings.TrimSpace(payload.Notes),
		IsActive:        true,
	}

	if err := formula.Validate(); err != nil {
		applog.Debug(ctx, "formula validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	formula.TotalCost = feed.ComputeCost(toCalculatorIngredients(formula.Ingredients))

	if err := database.WithContext(ctx).Create(&formula).Error; err != nil {
		applog.Error(ctx, "failed to create formula", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create formula")
		return
	}

	writeJSON(w, http.StatusCreated, projectFormula(formula))
}

func updateFormula(w http.ResponseWriter, r *http.Request, formulaID, farmID string) {
	ctx := r.Context()
	var existing models.FeedFormula
	err := database.WithContext(ctx).
		Preload("Ingredients").
		Where("id = ? AND farm_id = ? AND is_active = ?", formulaID, farmID, true).
		First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusNotFound, "feed formula not found")
			return
		}
		applog.Error(ctx, "failed to load formula for update", "error", err, "id", formulaID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load formula")
		return
	}

	var payload formulaUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid formula update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	candidate := existing
	if payload.Name != nil {
		candidate.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.TargetNutrition != nil {
		candidate.TargetNutrition = normalizedCategory(*payload.TargetNutrition, models.DefaultTargetNutrition)
	}
	if payload.TargetGroup != nil {
		candidate.TargetGroup = normalizedCategory(*payload.TargetGroup, models.DefaultTargetGroup)
	}
	if payload.Notes != nil {
		candidate.Notes = strings.TrimSpace(*payload.Notes)
	}
	if payload.Ingredients != nil {
		candidate.Ingredients = toIngredientRows(*payload.Ingredients)
	}

	if err := candidate.Validate(); err != nil {
		applog.Debug(ctx, "formula update validation failed", "error", err)
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	updates := map[string]any{
		"name":             candidate.Name,
		"target_nutrition": candidate.TargetNutrition,
		"target_group":     candidate.TargetGroup,
		"notes":            candidate.Notes,
		"updated_at":       time.Now().UTC(),
	}

	err = database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if payload.Ingredients != nil {
			if err := tx.Where("formula_id = ?", existing.ID).Delete(&models.FeedIngredient{}).Error; err != nil {
				return err
			}
			rows := candidate.Ingredients
			for i := range rows {
				rows[i].ID = 0
				rows[i].FormulaID = existing.ID
			}
			if len(rows) > 0 {
				if err := tx.Create(&rows).Error; err != nil {
					return err
				}
			}
			updates["total_cost"] = feed.ComputeCost(toCalculatorIngredients(rows))
		}
		return tx.Model(&models.FeedFormula{}).Where("id = ?", existing.ID).Updates(updates).Error
	})
	if err != nil {
		applog.Error(ctx, "failed to update formula", "error", err, "id", formulaID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update formula")
		return
	}

	var updated models.FeedFormula
	if err := database.WithContext(ctx).Preload("Ingredients").Where("id = ?", existing.ID).First(&updated).Error; err != nil {
		applog.Error(ctx, "failed to reload updated formula", "error", err, "id", formulaID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load formula")
		return
	}

	writeJSON(w, http.StatusOK, projectFormula(updated))
}

func deleteFormula(w http.ResponseWriter, r *http.Request, formulaID, farmID string) {
	ctx := r.Context()
	result := database.WithContext(ctx).
		Model(&models.FeedFormula{}).
		Where("id = ? AND farm_id = ? AND is_active = ?", formulaID, farmID, true).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		applog.Error(ctx, "failed to soft delete formula", "error", result.Error, "id", formulaID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete formula")
		return
	}
	if result.RowsAffected == 0 {
		writeJSONError(w, http.StatusNotFound, "feed formula not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func projectFormula(formula models.FeedFormula) feedFormulaResponse {
	ingredients := make([]feedIngredientPayload, 0, len(formula.Ingredients))
	for _, row := range formula.Ingredients {
		ingredients = append(ingredients, feedIngredientPayload{
			Name:     row.Name,
			Quantity: row.Quantity,
			Unit:     row.Unit,
			Cost:     row.Cost,
		})
	}

	return feedFormulaResponse{
		ID:              formula.ID,
		FarmID:          formula.FarmID,
		Name:            formula.Name,
		Ingredients:     ingredients,
		TargetNutrition: formula.TargetNutrition,
		TargetGroup:     formula.TargetGroup,
		TotalCost:       formula.TotalCost,
		Notes:           formula.Notes,
		IsActive:        formula.IsActive,
		CreatedAt:       formula.CreatedAt,
		UpdatedAt:       formula.UpdatedAt,
	}
}

func toIngredientRows(payloads []feedIngredientPayload) []models.FeedIngredient {
	rows := make([]models.FeedIngredient, 0, len(payloads))
	for _, payload := range payloads {
		rows = append(rows, models.FeedIngredient{
			Name:     strings.TrimSpace(payload.Name),
			Quantity: payload.Quantity,
			Unit:     models.NormalizeIngredientUnit(payload.Unit),
			Cost:     payload.Cost,
		})
	}
	return rows
}

func toCalculatorIngredients(rows []models.FeedIngredient) []feed.Ingredient {
	ingredients := make([]feed.Ingredient, 0, len(rows))
	for _, row := range rows {
		ingredients = append(ingredients, feed.Ingredient{
			Name:     row.Name,
			Quantity: row.Quantity,
			Unit:     row.Unit,
			Cost:     row.Cost,
		})
	}
	return ingredients
}

// normalizedCategory lowercases and trims an enum value, substituting
// fallback when nothing was provided. Unknown values pass through so
// validation can report them.
func normalizedCategory(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	return value
}
