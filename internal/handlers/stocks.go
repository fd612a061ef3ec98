package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	applog "farmstead/internal/log"
	"farmstead/models"
)

type stockCreateRequest struct {
	ItemType        string   `json:"item_type"`
	Quantity        float64  `json:"quantity"`
	InitialQuantity *float64 `json:"initial_quantity"`
}

type stockUpdateRequest struct {
	ItemType        *string  `json:"item_type"`
	Quantity        *float64 `json:"quantity"`
	InitialQuantity *float64 `json:"initial_quantity"`
}

type stockAmountRequest struct {
	Amount float64 `json:"amount"`
}

type stockResponse struct {
	ID              string    `json:"id"`
	FarmID          string    `json:"farm_id"`
	ItemType        string    `json:"item_type"`
	Quantity        float64   `json:"quantity"`
	InitialQuantity float64   `json:"initial_quantity"`
	IsLow           bool      `json:"is_low"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// StockResource handles REST-style interactions for stock inventory,
// including the restock and consume sub-operations.
func StockResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "stock request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	if _, ok := currentUserID(r); !ok {
		applog.Debug(r.Context(), "stock request without authenticated user")
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	farmID, ok := currentFarmID(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "user does not belong to a farm")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/stocks")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listStocks(w, r, farmID)
		case http.MethodPost:
			createStock(w, r, farmID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	if stockID, action, found := strings.Cut(path, "/"); found {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		switch action {
		case "restock":
			restockStock(w, r, stockID, farmID)
		case "consume":
			consumeStock(w, r, stockID, farmID)
		default:
			writeJSONError(w, http.StatusNotFound, "not found")
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		showStock(w, r, path, farmID)
	case http.MethodPut:
		updateStock(w, r, path, farmID)
	case http.MethodDelete:
		deleteStock(w, r, path, farmID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listStocks(w http.ResponseWriter, r *http.Request, farmID string) {
	ctx := r.Context()
	query := database.WithContext(ctx).Where("farm_id = ?", farmID)
	if r.URL.Query().Get("low") == "true" {
		query = query.Where("is_low = ?", true)
	}

	var stocks []models.Stock
	if err := query.Order("created_at desc").Find(&stocks).Error; err != nil {
		applog.Error(ctx, "failed to list stocks", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load stocks")
		return
	}

	responses := make([]stockResponse, 0, len(stocks))
	for _, stock := range stocks {
		responses = append(responses, projectStock(stock))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showStock(w http.ResponseWriter, r *http.Request, stockID, farmID string) {
	stock, ok := findStock(w, r, stockID, farmID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, projectStock(stock))
}

func createStock(w http.ResponseWriter, r *http.Request, farmID string) {
	ctx := r.Context()
	var payload stockCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid stock create payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	itemType := strings.TrimSpace(payload.ItemType)
	if itemType == "" {
		writeJSONError(w, http.StatusBadRequest, "item type is required")
		return
	}
	if payload.Quantity < 0 {
		writeJSONError(w, http.StatusBadRequest, "quantity cannot be negative")
		return
	}

	// The opening balance doubles as the threshold baseline when no
	// explicit initial quantity is given.
	initial := payload.Quantity
	if payload.InitialQuantity != nil {
		if *payload.InitialQuantity < 0 {
			writeJSONError(w, http.StatusBadRequest, "initial quantity cannot be negative")
			return
		}
		initial = *payload.InitialQuantity
	}

	stock := models.Stock{
		FarmID:          farmID,
		ItemType:        itemType,
		Quantity:        payload.Quantity,
		InitialQuantity: initial,
	}

	if err := database.WithContext(ctx).Create(&stock).Error; err != nil {
		applog.Error(ctx, "failed to create stock", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create stock")
		return
	}

	writeJSON(w, http.StatusCreated, projectStock(stock))
}

func updateStock(w http.ResponseWriter, r *http.Request, stockID, farmID string) {
	ctx := r.Context()
	stock, ok := findStock(w, r, stockID, farmID)
	if !ok {
		return
	}

	var payload stockUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid stock update payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if payload.ItemType != nil {
		trimmed := strings.TrimSpace(*payload.ItemType)
		if trimmed == "" {
			writeJSONError(w, http.StatusBadRequest, "item type is required")
			return
		}
		stock.ItemType = trimmed
	}
	if payload.Quantity != nil {
		if *payload.Quantity < 0 {
			writeJSONError(w, http.StatusBadRequest, "quantity cannot be negative")
			return
		}
		stock.Quantity = *payload.Quantity
	}
	if payload.InitialQuantity != nil {
		if *payload.InitialQuantity < 0 {
			writeJSONError(w, http.StatusBadRequest, "initial quantity cannot be negative")
			return
		}
		stock.InitialQuantity = *payload.InitialQuantity
	}

	// Save runs the model hook, which re-derives the low flag from the
	// final quantity and baseline.
	if err := database.WithContext(ctx).Save(&stock).Error; err != nil {
		applog.Error(ctx, "failed to update stock", "error", err, "id", stockID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update stock")
		return
	}

	writeJSON(w, http.StatusOK, projectStock(stock))
}

func deleteStock(w http.ResponseWriter, r *http.Request, stockID, farmID string) {
	ctx := r.Context()
	result := database.WithContext(ctx).
		Where("id = ? AND farm_id = ?", stockID, farmID).
		Delete(&models.Stock{})
	if result.Error != nil {
		applog.Error(ctx, "failed to delete stock", "error", result.Error, "id", stockID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete stock")
		return
	}
	if result.RowsAffected == 0 {
		writeJSONError(w, http.StatusNotFound, "stock item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func restockStock(w http.ResponseWriter, r *http.Request, stockID, farmID string) {
	ctx := r.Context()
	var payload stockAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid restock payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if payload.Amount < 0 {
		writeJSONError(w, http.StatusBadRequest, "restock amount must not be negative")
		return
	}

	// Single UPDATE so concurrent restocks never lose increments. The
	// low flag is re-derived in the same statement.
	result := database.WithContext(ctx).
		Session(&gorm.Session{SkipHooks: true}).
		Model(&models.Stock{}).
		Where("id = ? AND farm_id = ?", stockID, farmID).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", payload.Amount),
			"is_low":     gorm.Expr("quantity + ? <= initial_quantity / 2.0", payload.Amount),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		applog.Error(ctx, "failed to restock", "error", result.Error, "id", stockID)
		writeJSONError(w, http.StatusInternalServerError, "unable to restock")
		return
	}
	if result.RowsAffected == 0 {
		writeJSONError(w, http.StatusNotFound, "stock item not found")
		return
	}

	stock, ok := findStock(w, r, stockID, farmID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, projectStock(stock))
}

func consumeStock(w http.ResponseWriter, r *http.Request, stockID, farmID string) {
	ctx := r.Context()
	var payload stockAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid consume payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if payload.Amount <= 0 {
		writeJSONError(w, http.StatusBadRequest, "consume amount must be positive")
		return
	}

	var stock models.Stock
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND farm_id = ?", stockID, farmID).First(&stock).Error; err != nil {
			return err
		}
		if payload.Amount > stock.Quantity {
			return errInsufficientStock
		}
		stock.Quantity -= payload.Amount
		return tx.Save(&stock).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			writeJSONError(w, http.StatusNotFound, "stock item not found")
		case errors.Is(err, errInsufficientStock):
			writeJSONError(w, http.StatusBadRequest, "insufficient stock")
		default:
			applog.Error(ctx, "failed to consume stock", "error", err, "id", stockID)
			writeJSONError(w, http.StatusInternalServerError, "unable to consume stock")
		}
		return
	}

	writeJSON(w, http.StatusOK, projectStock(stock))
}

var errInsufficientStock = errors.New("insufficient stock")

func findStock(w http.ResponseWriter, r *http.Request, stockID, farmID string) (models.Stock, bool) {
	ctx := r.Context()
	var stock models.Stock
	err := database.WithContext(ctx).
		Where("id = ? AND farm_id = ?", stockID, farmID).
		First(&stock).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusNotFound, "stock item not found")
		} else {
			applog.Error(ctx, "failed to load stock", "error", err, "id", stockID)
			writeJSONError(w, http.StatusInternalServerError, "unable to load stock")
		}
		return models.Stock{}, false
	}
	return stock, true
}

func projectStock(stock models.Stock) stockResponse {
	return stockResponse{
		ID:              stock.ID,
		FarmID:          stock.FarmID,
		ItemType:        stock.ItemType,
		Quantity:        stock.Quantity,
		InitialQuantity: stock.InitialQuantity,
		IsLow:           stock.IsLow,
		CreatedAt:       stock.CreatedAt,
		UpdatedAt:       stock.UpdatedAt,
	}
}
