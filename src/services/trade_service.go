// backend/src/services/trade_service.go
package services

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/username/tradepulse/backend/src/database"
	"github.com/username/tradepulse/backend/src/logger"
	"github.com/username/tradepulse/backend/src/models"
)

const tradeSelectColumns = `id, user_id, symbol, entry_date, exit_date, type, setup,
	entry_price, exit_price, stop_loss, quantity, pnl, r_multiple, status,
	mistakes, notes, screenshot_url`

const insertTradeQuery = `INSERT INTO trades (id, user_id, symbol, entry_date, exit_date, type, setup,
	entry_price, exit_price, stop_loss, quantity, pnl, r_multiple, status,
	mistakes, notes, screenshot_url) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// tradeInsertArgs flattens a trade into the argument list of insertTradeQuery.
// Mistakes are stored as a JSON array in a TEXT column.
func tradeInsertArgs(t *models.Trade) []interface{} {
	mistakes := marshalMistakes(t.Mistakes)
	return []interface{}{
		t.ID, t.UserID, t.Symbol, t.EntryDate, t.ExitDate, t.Type, t.Setup,
		t.EntryPrice, t.ExitPrice, t.StopLoss, t.Quantity, t.Pnl, t.RMultiple, t.Status,
		mistakes, t.Notes, t.ScreenshotURL,
	}
}

func marshalMistakes(mistakes []string) string {
	if len(mistakes) == 0 {
		return "[]"
	}
	data, err := json.Marshal(mistakes)
	if err != nil {
		logger.L.Error("Failed to marshal trade mistakes", "error", err)
		return "[]"
	}
	return string(data)
}

type tradeServiceImpl struct{}

func NewTradeService() TradeService {
	return &tradeServiceImpl{}
}

func scanTrade(scanner interface{ Scan(...interface{}) error }) (*models.Trade, error) {
	var t models.Trade
	var mistakesJSON string
	err := scanner.Scan(&t.ID, &t.UserID, &t.Symbol, &t.EntryDate, &t.ExitDate, &t.Type, &t.Setup,
		&t.EntryPrice, &t.ExitPrice, &t.StopLoss, &t.Quantity, &t.Pnl, &t.RMultiple, &t.Status,
		&mistakesJSON, &t.Notes, &t.ScreenshotURL)
	if err != nil {
		return nil, err
	}
	if mistakesJSON != "" {
		if err := json.Unmarshal([]byte(mistakesJSON), &t.Mistakes); err != nil {
			logger.L.Warn("Ignoring malformed mistakes column", "tradeID", t.ID, "error", err)
		}
	}
	if t.Mistakes == nil {
		t.Mistakes = []string{}
	}
	return &t, nil
}

func (s *tradeServiceImpl) ListTrades(userID int64) ([]models.Trade, error) {
	rows, err := database.DB.Query(`SELECT `+tradeSelectColumns+` FROM trades WHERE user_id = ? ORDER BY entry_date DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying trades for userID %d: %w", userID, err)
	}
	defer rows.Close()

	trades := []models.Trade{}
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning trade row for userID %d: %w", userID, err)
		}
		trades = append(trades, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over trade rows for userID %d: %w", userID, err)
	}
	return trades, nil
}

func (s *tradeServiceImpl) GetTrade(userID int64, tradeID string) (*models.Trade, error) {
	row := database.DB.QueryRow(`SELECT `+tradeSelectColumns+` FROM trades WHERE user_id = ? AND id = ?`, userID, tradeID)
	t, err := scanTrade(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTradeNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *tradeServiceImpl) CreateTrade(userID int64, trade *models.Trade) error {
	trade.UserID = userID
	_, err := database.DB.Exec(insertTradeQuery, tradeInsertArgs(trade)...)
	if err != nil {
		return fmt.Errorf("error inserting trade: %w", err)
	}
	return nil
}

func (s *tradeServiceImpl) UpdateTrade(userID int64, trade *models.Trade) error {
	res, err := database.DB.Exec(`UPDATE trades SET symbol = ?, entry_date = ?, exit_date = ?, type = ?, setup = ?,
		entry_price = ?, exit_price = ?, stop_loss = ?, quantity = ?, pnl = ?, r_multiple = ?, status = ?,
		mistakes = ?, notes = ?, screenshot_url = ?
		WHERE user_id = ? AND id = ?`,
		trade.Symbol, trade.EntryDate, trade.ExitDate, trade.Type, trade.Setup,
		trade.EntryPrice, trade.ExitPrice, trade.StopLoss, trade.Quantity, trade.Pnl, trade.RMultiple, trade.Status,
		marshalMistakes(trade.Mistakes), trade.Notes, trade.ScreenshotURL,
		userID, trade.ID)
	if err != nil {
		return fmt.Errorf("error updating trade %s: %w", trade.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTradeNotFound
	}
	trade.UserID = userID
	return nil
}

func (s *tradeServiceImpl) DeleteTrade(userID int64, tradeID string) error {
	res, err := database.DB.Exec(`DELETE FROM trades WHERE user_id = ? AND id = ?`, userID, tradeID)
	if err != nil {
		return fmt.Errorf("error deleting trade %s: %w", tradeID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTradeNotFound
	}
	return nil
}
