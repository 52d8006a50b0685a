package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/tradepulse/backend/src/models"
)

func tradeWith(pnl, rMultiple float64, entryDate string) models.Trade {
	status := models.TradeStatusBreakEven
	if pnl > 0 {
		status = models.TradeStatusWin
	} else if pnl < 0 {
		status = models.TradeStatusLoss
	}
	return models.Trade{
		Symbol:    "EURUSD",
		EntryDate: entryDate,
		Pnl:       pnl,
		RMultiple: rMultiple,
		Status:    status,
	}
}

func TestComputeDashboardStats(t *testing.T) {
	trades := []models.Trade{
		tradeWith(300, 3.0, "2024-03-11 09:00"),
		tradeWith(-100, -1.0, "2024-03-11 14:00"),
		tradeWith(200, 2.0, "2024-03-12 10:00"),
		tradeWith(0, 0, "2024-03-13 10:00"),
	}

	stats := computeDashboardStats(trades)

	assert.Equal(t, 4, stats.TotalTrades)
	assert.Equal(t, 400.0, stats.NetPnl)
	assert.Equal(t, 50.0, stats.WinRate) // 2 winners out of 4
	assert.Equal(t, 1.0, stats.AvgR)
	assert.Equal(t, 5.0, stats.ProfitFactor) // 500 gross profit / 100 gross loss
}

func TestComputeDashboardStatsNoLosers(t *testing.T) {
	stats := computeDashboardStats([]models.Trade{
		tradeWith(300, 3.0, "2024-03-11 09:00"),
		tradeWith(200, 2.0, "2024-03-12 10:00"),
	})
	assert.Equal(t, 100.0, stats.ProfitFactor)

	breakEvenOnly := computeDashboardStats([]models.Trade{
		tradeWith(0, 0, "2024-03-11 09:00"),
	})
	assert.Equal(t, 0.0, breakEvenOnly.ProfitFactor)
}

func TestComputeDashboardStatsEmpty(t *testing.T) {
	stats := computeDashboardStats(nil)
	assert.Equal(t, 0, stats.TotalTrades)
	assert.Equal(t, 0.0, stats.NetPnl)
	assert.Equal(t, 0.0, stats.WinRate)
}

func TestComputeDailyStats(t *testing.T) {
	trades := []models.Trade{
		tradeWith(300, 3.0, "2024-03-11 09:00"),
		tradeWith(-100, -1.0, "2024-03-11 14:00"),
		tradeWith(200, 2.0, "2024-03-12 10:00"),
	}

	stats := computeDailyStats(trades)
	require.Len(t, stats, 2)

	assert.Equal(t, "2024-03-11", stats[0].Date)
	assert.Equal(t, 200.0, stats[0].Pnl)
	assert.Equal(t, 2, stats[0].TradeCount)

	assert.Equal(t, "2024-03-12", stats[1].Date)
	assert.Equal(t, 200.0, stats[1].Pnl)
	assert.Equal(t, 1, stats[1].TradeCount)
}

func TestBuildCoachPrompt(t *testing.T) {
	digests := []tradeDigest{{Symbol: "NQ", Setup: "Breakout", Pnl: 150}}

	prompt := buildCoachPrompt(digests, "")
	assert.Contains(t, prompt, "Trading Coach")
	assert.Contains(t, prompt, `"symbol":"NQ"`)
	assert.Contains(t, prompt, "Profit Factor")

	focused := buildCoachPrompt(digests, "revenge trading")
	assert.Contains(t, focused, "revenge trading")
	assert.NotContains(t, focused, "Profit Factor for next week")
}
