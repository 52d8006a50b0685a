// backend/src/models/trade.go
package models

// TradeType is the direction of a trade.
type TradeType string

const (
	TradeTypeLong  TradeType = "LONG"
	TradeTypeShort TradeType = "SHORT"
)

// TradeStatus is the outcome of a trade. OPEN is the pre-fill default before
// the P&L is known; the other three are derived from the sign of Pnl.
type TradeStatus string

const (
	TradeStatusWin       TradeStatus = "WIN"
	TradeStatusLoss      TradeStatus = "LOSS"
	TradeStatusBreakEven TradeStatus = "BREAK_EVEN"
	TradeStatusOpen      TradeStatus = "OPEN"
)

// Trade is the canonical trade record every broker format is normalized into.
// IDs are strings: imported rows carry an "imp_" prefix, manually entered
// trades a bare UUID.
type Trade struct {
	ID            string      `json:"id"`
	UserID        int64       `json:"user_id,omitempty"`
	Symbol        string      `json:"symbol"`
	EntryDate     string      `json:"entryDate"` // YYYY-MM-DD HH:mm
	ExitDate      string      `json:"exitDate"`  // YYYY-MM-DD HH:mm
	Type          TradeType   `json:"type"`
	Setup         string      `json:"setup"`
	EntryPrice    float64     `json:"entryPrice"`
	ExitPrice     float64     `json:"exitPrice"`
	StopLoss      float64     `json:"stopLoss,omitempty"`
	Quantity      float64     `json:"quantity"`
	Pnl           float64     `json:"pnl"`
	RMultiple     float64     `json:"rMultiple"`
	Status        TradeStatus `json:"status"`
	Mistakes      []string    `json:"mistakes"`
	Notes         string      `json:"notes,omitempty"`
	ScreenshotURL string      `json:"screenshotUrl,omitempty"`
}
