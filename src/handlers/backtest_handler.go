// backend/src/handlers/backtest_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/username/tradepulse/backend/src/logger"
	"github.com/username/tradepulse/backend/src/models"
	"github.com/username/tradepulse/backend/src/services"
	"github.com/username/tradepulse/backend/src/utils"
)

type BacktestHandler struct {
	backtestService services.BacktestService
}

func NewBacktestHandler(service services.BacktestService) *BacktestHandler {
	return &BacktestHandler{
		backtestService: service,
	}
}

func (h *BacktestHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	sessions, err := h.backtestService.ListSessions(userID)
	if err != nil {
		logger.L.Error("Failed to list backtest sessions", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to retrieve backtest sessions", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, sessions, http.StatusOK)
}

func (h *BacktestHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var session models.BacktestSession
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	session.Name = strings.TrimSpace(session.Name)
	if session.Name == "" {
		utils.SendJSONError(w, "Session name is required", http.StatusBadRequest)
		return
	}

	if err := h.backtestService.CreateSession(userID, &session); err != nil {
		logger.L.Error("Failed to create backtest session", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create backtest session", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, session, http.StatusCreated)
}

func (h *BacktestHandler) HandleUpdateSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	sessionID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid session ID", http.StatusBadRequest)
		return
	}

	var session models.BacktestSession
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	session.ID = sessionID

	if err := h.backtestService.UpdateSession(userID, &session); err != nil {
		if errors.Is(err, services.ErrBacktestNotFound) {
			utils.SendJSONError(w, "Backtest session not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to update backtest session", "userID", userID, "sessionID", sessionID, "error", err)
		utils.SendJSONError(w, "Failed to update backtest session", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, session, http.StatusOK)
}

func (h *BacktestHandler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	sessionID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid session ID", http.StatusBadRequest)
		return
	}

	if err := h.backtestService.DeleteSession(userID, sessionID); err != nil {
		if errors.Is(err, services.ErrBacktestNotFound) {
			utils.SendJSONError(w, "Backtest session not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to delete backtest session", "userID", userID, "sessionID", sessionID, "error", err)
		utils.SendJSONError(w, "Failed to delete backtest session", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
