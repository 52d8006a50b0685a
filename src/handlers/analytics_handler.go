// backend/src/handlers/analytics_handler.go
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/username/tradepulse/backend/src/logger"
	"github.com/username/tradepulse/backend/src/services"
	"github.com/username/tradepulse/backend/src/utils"
)

type AnalyticsHandler struct {
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(service services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: service,
	}
}

func (h *AnalyticsHandler) HandleGetDashboardStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	stats, err := h.analyticsService.GetDashboardStats(userID)
	if err != nil {
		logger.L.Error("Failed to compute dashboard stats", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to retrieve dashboard stats", http.StatusInternalServerError)
		return
	}

	writeWithETag(w, r, userID, stats)
}

func (h *AnalyticsHandler) HandleGetDailyStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	stats, err := h.analyticsService.GetDailyStats(userID)
	if err != nil {
		logger.L.Error("Failed to compute daily stats", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to retrieve daily stats", http.StatusInternalServerError)
		return
	}

	writeWithETag(w, r, userID, stats)
}

// writeWithETag responds with data as JSON, honoring If-None-Match so the
// dashboard can poll cheaply.
func writeWithETag(w http.ResponseWriter, r *http.Request, userID int64, data interface{}) {
	currentETag, etagErr := utils.GenerateETag(data)

	w.Header().Set("Cache-Control", "no-cache, private")

	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("%q", currentETag)
		w.Header().Set("ETag", quotedETag)
		for _, cETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
			if strings.TrimSpace(cETag) == quotedETag {
				logger.L.Debug("ETag match", "userID", userID, "etag", currentETag)
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	} else if etagErr != nil {
		logger.L.Warn("Proceeding without ETag check", "userID", userID, "error", etagErr)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.L.Error("Error encoding analytics response", "userID", userID, "error", err)
	}
}
