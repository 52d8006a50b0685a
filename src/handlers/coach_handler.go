// backend/src/handlers/coach_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/tradepulse/backend/src/logger"
	"github.com/username/tradepulse/backend/src/services"
	"github.com/username/tradepulse/backend/src/utils"
)

type CoachHandler struct {
	coachService services.CoachService
}

func NewCoachHandler(service services.CoachService) *CoachHandler {
	return &CoachHandler{
		coachService: service,
	}
}

// HandleAnalyzeTrades asks the AI coach to review the user's journal. An
// optional "focus" steers the analysis toward one topic.
func (h *CoachHandler) HandleAnalyzeTrades(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var requestBody struct {
		Focus string `json:"focus"`
	}
	if r.Body != nil {
		// An empty body is fine; the coach falls back to its default focus.
		_ = json.NewDecoder(r.Body).Decode(&requestBody)
	}

	analysis, err := h.coachService.AnalyzeTrades(r.Context(), userID, requestBody.Focus)
	if err != nil {
		if errors.Is(err, services.ErrCoachNotConfigured) {
			utils.SendJSONError(w, "AI coach is not configured. Set GEMINI_API_KEY to enable it.", http.StatusServiceUnavailable)
			return
		}
		logger.L.Error("Coach analysis failed", "userID", userID, "error", err)
		utils.SendJSONError(w, "Error connecting to AI Coach. Please try again later.", http.StatusBadGateway)
		return
	}

	utils.SendJSON(w, map[string]string{"analysis": analysis}, http.StatusOK)
}
