// backend/src/handlers/trade_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/username/tradepulse/backend/src/logger"
	"github.com/username/tradepulse/backend/src/models"
	"github.com/username/tradepulse/backend/src/security/validation"
	"github.com/username/tradepulse/backend/src/services"
	"github.com/username/tradepulse/backend/src/utils"
)

type TradeHandler struct {
	tradeService services.TradeService
	analytics    services.AnalyticsService
}

func NewTradeHandler(tradeService services.TradeService, analytics services.AnalyticsService) *TradeHandler {
	return &TradeHandler{
		tradeService: tradeService,
		analytics:    analytics,
	}
}

func (h *TradeHandler) HandleListTrades(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	trades, err := h.tradeService.ListTrades(userID)
	if err != nil {
		logger.L.Error("Failed to list trades", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to retrieve trades", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, trades, http.StatusOK)
}

func (h *TradeHandler) HandleGetTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	trade, err := h.tradeService.GetTrade(userID, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, services.ErrTradeNotFound) {
			utils.SendJSONError(w, "Trade not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to get trade", "userID", userID, "tradeID", r.PathValue("id"), "error", err)
		utils.SendJSONError(w, "Failed to retrieve trade", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, trade, http.StatusOK)
}

func (h *TradeHandler) HandleCreateTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var trade models.Trade
	if err := json.NewDecoder(r.Body).Decode(&trade); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := validateTrade(&trade); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if trade.ID == "" {
		trade.ID = uuid.NewString()
	}

	if err := h.tradeService.CreateTrade(userID, &trade); err != nil {
		logger.L.Error("Failed to create trade", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create trade", http.StatusInternalServerError)
		return
	}

	h.analytics.InvalidateUserCache(userID)
	utils.SendJSON(w, trade, http.StatusCreated)
}

func (h *TradeHandler) HandleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var trade models.Trade
	if err := json.NewDecoder(r.Body).Decode(&trade); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	trade.ID = r.PathValue("id")

	if err := validateTrade(&trade); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.tradeService.UpdateTrade(userID, &trade); err != nil {
		if errors.Is(err, services.ErrTradeNotFound) {
			utils.SendJSONError(w, "Trade not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to update trade", "userID", userID, "tradeID", trade.ID, "error", err)
		utils.SendJSONError(w, "Failed to update trade", http.StatusInternalServerError)
		return
	}

	h.analytics.InvalidateUserCache(userID)
	utils.SendJSON(w, trade, http.StatusOK)
}

func (h *TradeHandler) HandleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	if err := h.tradeService.DeleteTrade(userID, r.PathValue("id")); err != nil {
		if errors.Is(err, services.ErrTradeNotFound) {
			utils.SendJSONError(w, "Trade not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to delete trade", "userID", userID, "tradeID", r.PathValue("id"), "error", err)
		utils.SendJSONError(w, "Failed to delete trade", http.StatusInternalServerError)
		return
	}

	h.analytics.InvalidateUserCache(userID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleCalculatePositionSize sizes a position so that a stop-out loses
// exactly the requested risk amount.
func (h *TradeHandler) HandleCalculatePositionSize(w http.ResponseWriter, r *http.Request) {
	if _, ok := GetUserIDFromContext(r.Context()); !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var requestBody struct {
		RiskAmount float64 `json:"riskAmount"`
		EntryPrice float64 `json:"entryPrice"`
		StopPrice  float64 `json:"stopPrice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if requestBody.RiskAmount <= 0 || requestBody.EntryPrice <= 0 || requestBody.StopPrice <= 0 {
		utils.SendJSONError(w, "riskAmount, entryPrice and stopPrice must be positive", http.StatusBadRequest)
		return
	}
	if requestBody.EntryPrice == requestBody.StopPrice {
		utils.SendJSONError(w, "entryPrice and stopPrice must differ", http.StatusBadRequest)
		return
	}

	units := utils.PositionSize(requestBody.RiskAmount, requestBody.EntryPrice, requestBody.StopPrice)
	utils.SendJSON(w, map[string]float64{
		"units":       units,
		"riskPerUnit": utils.RoundFloat(math.Abs(requestBody.EntryPrice-requestBody.StopPrice), 2),
	}, http.StatusOK)
}

// validateTrade normalizes a manually entered trade before it is stored.
func validateTrade(trade *models.Trade) error {
	trade.Symbol = validation.StripUnprintable(strings.TrimSpace(trade.Symbol))
	trade.Notes = validation.StripUnprintable(trade.Notes)
	if trade.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if trade.Type != models.TradeTypeLong && trade.Type != models.TradeTypeShort {
		return fmt.Errorf("type must be LONG or SHORT")
	}
	switch trade.Status {
	case models.TradeStatusWin, models.TradeStatusLoss, models.TradeStatusBreakEven, models.TradeStatusOpen:
	case "":
		trade.Status = models.TradeStatusOpen
	default:
		return fmt.Errorf("invalid status %q", trade.Status)
	}
	if trade.Mistakes == nil {
		trade.Mistakes = []string{}
	}
	return nil
}
