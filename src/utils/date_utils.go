package utils

import (
	"time"
)

// TradeDateFormat is the canonical date layout trades are stored with.
const TradeDateFormat = "2006-01-02 15:04"

// DayOf extracts the YYYY-MM-DD part of a canonical trade date. Dates that
// kept their broker-native shape fall back to the raw string so the caller
// still gets a grouping key.
func DayOf(tradeDate string) string {
	t, err := time.Parse(TradeDateFormat, tradeDate)
	if err != nil {
		if len(tradeDate) >= 10 {
			return tradeDate[:10]
		}
		return tradeDate
	}
	return t.Format("2006-01-02")
}
