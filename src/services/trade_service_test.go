package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/tradepulse/backend/src/database"
	"github.com/username/tradepulse/backend/src/logger"
	"github.com/username/tradepulse/backend/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	m.Run()
}

func setupTestDB(t *testing.T) {
	t.Helper()
	database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	t.Cleanup(func() { database.DB.Close() })
}

func TestTradeServiceRoundTrip(t *testing.T) {
	setupTestDB(t)
	svc := NewTradeService()

	trade := &models.Trade{
		ID:        "imp_test-1",
		Symbol:    "EURUSD",
		EntryDate: "2024-03-15 10:30",
		ExitDate:  "2024-03-15 14:45",
		Type:      models.TradeTypeLong,
		Setup:     "Imported",
		Quantity:  1.5,
		Pnl:       500,
		RMultiple: 5,
		Status:    models.TradeStatusWin,
		Mistakes:  []string{"late entry"},
	}
	require.NoError(t, svc.CreateTrade(7, trade))

	got, err := svc.GetTrade(7, "imp_test-1")
	require.NoError(t, err)
	assert.Equal(t, "EURUSD", got.Symbol)
	assert.Equal(t, []string{"late entry"}, got.Mistakes)
	assert.Equal(t, int64(7), got.UserID)

	// Not visible to other users.
	_, err = svc.GetTrade(8, "imp_test-1")
	assert.ErrorIs(t, err, ErrTradeNotFound)

	got.Notes = "reviewed"
	got.Status = models.TradeStatusWin
	require.NoError(t, svc.UpdateTrade(7, got))

	updated, err := svc.GetTrade(7, "imp_test-1")
	require.NoError(t, err)
	assert.Equal(t, "reviewed", updated.Notes)

	require.NoError(t, svc.DeleteTrade(7, "imp_test-1"))
	_, err = svc.GetTrade(7, "imp_test-1")
	assert.ErrorIs(t, err, ErrTradeNotFound)
}

func TestTradeServiceListOrdering(t *testing.T) {
	setupTestDB(t)
	svc := NewTradeService()

	older := &models.Trade{ID: "a", Symbol: "NQ", EntryDate: "2024-03-10 09:00", ExitDate: "2024-03-10 10:00", Type: models.TradeTypeLong, Status: models.TradeStatusWin}
	newer := &models.Trade{ID: "b", Symbol: "ES", EntryDate: "2024-03-12 09:00", ExitDate: "2024-03-12 10:00", Type: models.TradeTypeShort, Status: models.TradeStatusLoss}
	require.NoError(t, svc.CreateTrade(1, older))
	require.NoError(t, svc.CreateTrade(1, newer))

	trades, err := svc.ListTrades(1)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "ES", trades[0].Symbol) // newest first
	assert.Equal(t, "NQ", trades[1].Symbol)

	empty, err := svc.ListTrades(99)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestBacktestServiceRoundTrip(t *testing.T) {
	setupTestDB(t)
	svc := NewBacktestService()

	session := &models.BacktestSession{
		Name:           "NQ breakout study",
		Symbol:         "NQ",
		Strategy:       "Opening range breakout",
		StartDate:      "2024-01-01",
		InitialBalance: 10000,
		Trades: []models.Trade{
			{ID: "bt-1", Symbol: "NQ", EntryDate: "2024-01-02 09:30", Type: models.TradeTypeLong, Pnl: 250, Status: models.TradeStatusWin},
		},
	}
	require.NoError(t, svc.CreateSession(3, session))
	require.NotZero(t, session.ID)

	sessions, err := svc.ListSessions(3)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "NQ breakout study", sessions[0].Name)
	require.Len(t, sessions[0].Trades, 1)
	assert.Equal(t, 250.0, sessions[0].Trades[0].Pnl)

	session.Name = "NQ ORB v2"
	require.NoError(t, svc.UpdateSession(3, session))

	assert.ErrorIs(t, svc.UpdateSession(4, session), ErrBacktestNotFound)
	assert.ErrorIs(t, svc.DeleteSession(3, session.ID+100), ErrBacktestNotFound)
	require.NoError(t, svc.DeleteSession(3, session.ID))
}
