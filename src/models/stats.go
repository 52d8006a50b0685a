// backend/src/models/stats.go
package models

// DashboardStats are the headline aggregates shown on the dashboard.
type DashboardStats struct {
	NetPnl       float64 `json:"netPnl"`
	WinRate      float64 `json:"winRate"`
	ProfitFactor float64 `json:"profitFactor"`
	AvgR         float64 `json:"avgR"`
	TotalTrades  int     `json:"totalTrades"`
}

// DailyStat aggregates one calendar day for the P&L heatmap.
type DailyStat struct {
	Date       string  `json:"date"` // YYYY-MM-DD
	Pnl        float64 `json:"pnl"`
	TradeCount int     `json:"tradeCount"`
}

// BacktestSession is a named manual backtesting run with its own trade list.
// Trades are stored embedded, not in the trades table.
type BacktestSession struct {
	ID             int64   `json:"id"`
	UserID         int64   `json:"user_id,omitempty"`
	Name           string  `json:"name"`
	Symbol         string  `json:"symbol"`
	Strategy       string  `json:"strategy"`
	StartDate      string  `json:"startDate"`
	InitialBalance float64 `json:"initialBalance"`
	Trades         []Trade `json:"trades"`
}
