package services

import (
	"context"
	"errors"
	"io"

	"github.com/username/tradepulse/backend/src/models"
)

var (
	ErrParsingFailed      = errors.New("parsing failed")
	ErrTradeNotFound      = errors.New("trade not found")
	ErrBacktestNotFound   = errors.New("backtest session not found")
	ErrCoachNotConfigured = errors.New("AI coach is not configured")
)

// ImportService runs the broker CSV pipeline and persists the normalized trades.
type ImportService interface {
	ProcessImport(fileReader io.Reader, userID int64) (*models.ImportResult, error)
}

// TradeService is the per-user trade journal CRUD surface.
type TradeService interface {
	ListTrades(userID int64) ([]models.Trade, error)
	GetTrade(userID int64, tradeID string) (*models.Trade, error)
	CreateTrade(userID int64, trade *models.Trade) error
	UpdateTrade(userID int64, trade *models.Trade) error
	DeleteTrade(userID int64, tradeID string) error
}

// AnalyticsService computes dashboard aggregates over a user's journal.
type AnalyticsService interface {
	GetDashboardStats(userID int64) (*models.DashboardStats, error)
	GetDailyStats(userID int64) ([]models.DailyStat, error)
	InvalidateUserCache(userID int64)
}

// CoachService reviews a user's recent trades with an LLM.
type CoachService interface {
	AnalyzeTrades(ctx context.Context, userID int64, customFocus string) (string, error)
}

// BacktestService manages named manual backtesting sessions.
type BacktestService interface {
	ListSessions(userID int64) ([]models.BacktestSession, error)
	CreateSession(userID int64, session *models.BacktestSession) error
	UpdateSession(userID int64, session *models.BacktestSession) error
	DeleteSession(userID int64, sessionID int64) error
}
