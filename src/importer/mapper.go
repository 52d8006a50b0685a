// backend/src/importer/mapper.go
package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/username/tradepulse/backend/src/models"
)

// errSkipRow marks a data row that must be ignored without touching any
// counter, e.g. balance/deposit lines mixed into MetaTrader statements.
var errSkipRow = fmt.Errorf("row skipped")

// mapRow extracts one data row into a canonical trade record for the
// detected format. It returns errSkipRow for rows that are not trades, or a
// descriptive error when a required field is missing or malformed.
func (p *Importer) mapRow(format BrokerFormat, cols columnIndex, columns []string) (models.Trade, error) {
	trade := models.Trade{
		ID:       p.newID(),
		Status:   models.TradeStatusOpen,
		Mistakes: []string{},
	}

	var pnlRaw string

	switch format {
	case FormatMetaTrader:
		typeStr := strings.ToLower(fieldAt(columns, cols.lookup("type")))
		// MT4/5 statements interleave balance, deposit and withdrawal lines
		// with the trades; anything that is not buy/sell is not a trade.
		if !strings.Contains(typeStr, "buy") && !strings.Contains(typeStr, "sell") {
			return models.Trade{}, errSkipRow
		}
		if strings.Contains(typeStr, "buy") {
			trade.Type = models.TradeTypeLong
		} else {
			trade.Type = models.TradeTypeShort
		}
		trade.EntryDate = normalizeDate(fieldAt(columns, cols.lookup("open time")), p.now)
		trade.ExitDate = normalizeDate(fieldAt(columns, cols.lookup("close time")), p.now)
		trade.Symbol = fieldAt(columns, cols.lookup("item"))
		trade.EntryPrice = parseFloatOrZero(fieldAt(columns, cols.lookup("open price")))
		exitRaw := fieldAt(columns, cols.lookup("close price"))
		if exitRaw == "" {
			// Some MT4 templates label both the open and close price
			// column literally "Price"; the close is the last of them.
			exitRaw = fieldAt(columns, cols.lookupLast("price"))
		}
		trade.ExitPrice = parseFloatOrZero(exitRaw)
		trade.Quantity = parseFloatOrZero(fieldAt(columns, cols.lookup("size")))
		pnlRaw = fieldAt(columns, cols.lookup("profit"))

	case FormatTradingView:
		typeStr := strings.ToLower(fieldAt(columns, cols.lookup("type")))
		if strings.Contains(typeStr, "short") {
			trade.Type = models.TradeTypeShort
		} else {
			trade.Type = models.TradeTypeLong
		}
		// The closed-trades export carries a single timestamp per row.
		trade.EntryDate = normalizeDate(fieldAt(columns, cols.lookup("date/time")), p.now)
		trade.ExitDate = trade.EntryDate
		trade.Symbol = fieldAt(columns, cols.lookup("symbol"))
		trade.EntryPrice = parseFloatOrZero(fieldAt(columns, cols.lookup("price")))
		trade.ExitPrice = trade.EntryPrice
		qtyRaw := fieldAt(columns, cols.lookup("contracts"))
		if qtyRaw == "" {
			qtyRaw = fieldAt(columns, cols.lookup("quantity"))
		}
		if qtyRaw == "" {
			qtyRaw = "1"
		}
		trade.Quantity = parseFloatOrZero(qtyRaw)
		pnlRaw = fieldAt(columns, cols.lookup("profit"))
		if pnlRaw == "" {
			pnlRaw = "0"
		}

	case FormatNinjaTrader:
		posStr := strings.ToLower(fieldAt(columns, cols.lookup("market pos.")))
		if strings.Contains(posStr, "long") {
			trade.Type = models.TradeTypeLong
		} else {
			trade.Type = models.TradeTypeShort
		}
		trade.Symbol = fieldAt(columns, cols.lookup("instrument"))
		trade.Quantity = parseFloatOrZero(fieldAt(columns, cols.lookup("qty")))
		trade.EntryPrice = parseFloatOrZero(fieldAt(columns, cols.lookup("entry price")))
		trade.ExitPrice = parseFloatOrZero(fieldAt(columns, cols.lookup("exit price")))
		trade.EntryDate = normalizeDate(fieldAt(columns, cols.lookup("entry time")), p.now)
		trade.ExitDate = normalizeDate(fieldAt(columns, cols.lookup("exit time")), p.now)
		pnlRaw = fieldAt(columns, cols.lookup("pnl"))

	default:
		return models.Trade{}, fmt.Errorf("unsupported broker format %q", format)
	}

	if trade.Symbol == "" {
		return models.Trade{}, fmt.Errorf("missing required field: symbol")
	}

	pnl, err := strconv.ParseFloat(strings.TrimSpace(pnlRaw), 64)
	if err != nil {
		return models.Trade{}, fmt.Errorf("invalid P&L value %q", pnlRaw)
	}
	trade.Pnl = pnl

	switch {
	case pnl > 0:
		trade.Status = models.TradeStatusWin
	case pnl < 0:
		trade.Status = models.TradeStatusLoss
	default:
		trade.Status = models.TradeStatusBreakEven
	}

	// Broker exports carry no stop-loss information, so true risk per trade
	// is unknown. The flat $100 risk unit is a placeholder, not a
	// user-configurable setting.
	trade.RMultiple = round2(pnl / importRiskUnit)
	trade.Setup = importedSetupLabel

	return trade, nil
}

const (
	importRiskUnit     = 100.0
	importedSetupLabel = "Imported"
)

// parseFloatOrZero parses price and size fields tolerantly: broker exports
// leave these blank for synthetic or bot-sourced rows, and an unavailable
// number maps to 0 rather than failing the row.
func parseFloatOrZero(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return f
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
