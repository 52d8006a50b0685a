// backend/src/services/backtest_service.go
package services

import (
	"encoding/json"
	"fmt"

	"github.com/username/tradepulse/backend/src/database"
	"github.com/username/tradepulse/backend/src/logger"
	"github.com/username/tradepulse/backend/src/models"
)

type backtestServiceImpl struct{}

func NewBacktestService() BacktestService {
	return &backtestServiceImpl{}
}

// Backtest trades never enter the trades table; they live as an embedded JSON
// document on their session so they cannot pollute journal analytics.
func marshalBacktestTrades(trades []models.Trade) (string, error) {
	if trades == nil {
		trades = []models.Trade{}
	}
	data, err := json.Marshal(trades)
	if err != nil {
		return "", fmt.Errorf("error marshaling backtest trades: %w", err)
	}
	return string(data), nil
}

func (s *backtestServiceImpl) ListSessions(userID int64) ([]models.BacktestSession, error) {
	rows, err := database.DB.Query(`SELECT id, user_id, name, symbol, strategy, start_date, initial_balance, trades
		FROM backtest_sessions WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying backtest sessions for userID %d: %w", userID, err)
	}
	defer rows.Close()

	sessions := []models.BacktestSession{}
	for rows.Next() {
		var bs models.BacktestSession
		var tradesJSON string
		if err := rows.Scan(&bs.ID, &bs.UserID, &bs.Name, &bs.Symbol, &bs.Strategy, &bs.StartDate, &bs.InitialBalance, &tradesJSON); err != nil {
			return nil, fmt.Errorf("error scanning backtest session for userID %d: %w", userID, err)
		}
		if tradesJSON != "" {
			if err := json.Unmarshal([]byte(tradesJSON), &bs.Trades); err != nil {
				logger.L.Warn("Ignoring malformed trades column on backtest session", "sessionID", bs.ID, "error", err)
			}
		}
		if bs.Trades == nil {
			bs.Trades = []models.Trade{}
		}
		sessions = append(sessions, bs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over backtest sessions for userID %d: %w", userID, err)
	}
	return sessions, nil
}

func (s *backtestServiceImpl) CreateSession(userID int64, session *models.BacktestSession) error {
	tradesJSON, err := marshalBacktestTrades(session.Trades)
	if err != nil {
		return err
	}
	session.UserID = userID
	res, err := database.DB.Exec(`INSERT INTO backtest_sessions (user_id, name, symbol, strategy, start_date, initial_balance, trades)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.UserID, session.Name, session.Symbol, session.Strategy, session.StartDate, session.InitialBalance, tradesJSON)
	if err != nil {
		return fmt.Errorf("error inserting backtest session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	session.ID = id
	return nil
}

func (s *backtestServiceImpl) UpdateSession(userID int64, session *models.BacktestSession) error {
	tradesJSON, err := marshalBacktestTrades(session.Trades)
	if err != nil {
		return err
	}
	res, err := database.DB.Exec(`UPDATE backtest_sessions SET name = ?, symbol = ?, strategy = ?, start_date = ?, initial_balance = ?, trades = ?
		WHERE user_id = ? AND id = ?`,
		session.Name, session.Symbol, session.Strategy, session.StartDate, session.InitialBalance, tradesJSON,
		userID, session.ID)
	if err != nil {
		return fmt.Errorf("error updating backtest session %d: %w", session.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrBacktestNotFound
	}
	session.UserID = userID
	return nil
}

func (s *backtestServiceImpl) DeleteSession(userID int64, sessionID int64) error {
	res, err := database.DB.Exec(`DELETE FROM backtest_sessions WHERE user_id = ? AND id = ?`, userID, sessionID)
	if err != nil {
		return fmt.Errorf("error deleting backtest session %d: %w", sessionID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrBacktestNotFound
	}
	return nil
}
