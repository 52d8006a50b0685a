package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/tradepulse/backend/src/models"
)

func TestValidateTrade(t *testing.T) {
	trade := &models.Trade{
		Symbol: "  EURUSD\x00 ",
		Type:   models.TradeTypeLong,
	}
	require.NoError(t, validateTrade(trade))
	assert.Equal(t, "EURUSD", trade.Symbol)
	assert.Equal(t, models.TradeStatusOpen, trade.Status)
	assert.NotNil(t, trade.Mistakes)
}

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(context.WithValue(req.Context(), userIDContextKey, int64(1)))
}

func TestHandleCalculatePositionSize(t *testing.T) {
	h := &TradeHandler{}

	rec := httptest.NewRecorder()
	h.HandleCalculatePositionSize(rec, authedRequest(http.MethodPost, "/api/tools/position-size",
		`{"riskAmount": 100, "entryPrice": 50, "stopPrice": 48}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 50.0, resp["units"])
	assert.Equal(t, 2.0, resp["riskPerUnit"])
}

func TestHandleCalculatePositionSizeRejections(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero risk", `{"riskAmount": 0, "entryPrice": 50, "stopPrice": 48}`},
		{"stop equals entry", `{"riskAmount": 100, "entryPrice": 50, "stopPrice": 50}`},
		{"negative price", `{"riskAmount": 100, "entryPrice": -1, "stopPrice": 48}`},
		{"malformed body", `not json`},
	}
	h := &TradeHandler{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleCalculatePositionSize(rec, authedRequest(http.MethodPost, "/api/tools/position-size", tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleCalculatePositionSizeRequiresAuth(t *testing.T) {
	h := &TradeHandler{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tools/position-size", strings.NewReader(`{}`))
	h.HandleCalculatePositionSize(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidateTradeRejections(t *testing.T) {
	tests := []struct {
		name  string
		trade models.Trade
	}{
		{"missing symbol", models.Trade{Type: models.TradeTypeLong}},
		{"bad type", models.Trade{Symbol: "ES", Type: "SIDEWAYS"}},
		{"bad status", models.Trade{Symbol: "ES", Type: models.TradeTypeShort, Status: "PENDING"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, validateTrade(&tt.trade))
		})
	}
}
