package importer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/tradepulse/backend/src/models"
)

const mtHeader = "Ticket,Open Time,Type,Size,Item,Open Price,S/L,T/P,Close Time,Close Price,Commission,Taxes,Swap,Profit"

func newTestImporter() *Importer {
	p := New()
	p.now = fixedNow
	seq := 0
	p.newID = func() string {
		seq++
		return fmt.Sprintf("imp_test_%d", seq)
	}
	return p
}

func assertCountsConsistent(t *testing.T, result *models.ImportResult) {
	t.Helper()
	assert.Equal(t, result.Summary.TotalProcessed, result.Summary.Successful+result.Summary.Failed)
	assert.Len(t, result.Trades, result.Summary.Successful)
	assert.Len(t, result.Errors, result.Summary.Failed)
}

func TestParseMetaTraderStatement(t *testing.T) {
	csv := strings.Join([]string{
		mtHeader,
		"1,2023.01.05 10:00,buy,1.0,EURUSD,1.1000,0,0,2023.01.05 12:00,1.1050,0,0,0,500",
	}, "\n")

	result := newTestImporter().Parse(csv)

	require.True(t, result.Success)
	require.Len(t, result.Trades, 1)
	assertCountsConsistent(t, result)

	trade := result.Trades[0]
	assert.Equal(t, "EURUSD", trade.Symbol)
	assert.Equal(t, models.TradeTypeLong, trade.Type)
	assert.Equal(t, "2023-01-05 10:00", trade.EntryDate)
	assert.Equal(t, "2023-01-05 12:00", trade.ExitDate)
	assert.Equal(t, 1.1000, trade.EntryPrice)
	assert.Equal(t, 1.1050, trade.ExitPrice)
	assert.Equal(t, 1.0, trade.Quantity)
	assert.Equal(t, 500.0, trade.Pnl)
	assert.Equal(t, models.TradeStatusWin, trade.Status)
	assert.Equal(t, 5.0, trade.RMultiple)
	assert.Equal(t, "Imported", trade.Setup)
	assert.True(t, strings.HasPrefix(trade.ID, "imp_"))
	assert.Equal(t, []string{}, trade.Mistakes)
}

func TestParseMetaTraderSellIsShort(t *testing.T) {
	csv := strings.Join([]string{
		mtHeader,
		"2,2023.01.06 09:00,sell,0.5,GBPUSD,1.2700,0,0,2023.01.06 11:30,1.2650,0,0,0,-125.50",
	}, "\n")

	result := newTestImporter().Parse(csv)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, models.TradeTypeShort, trade.Type)
	assert.Equal(t, models.TradeStatusLoss, trade.Status)
	assert.Equal(t, -1.25, trade.RMultiple)
}

func TestParseMetaTraderBalanceRowSkipped(t *testing.T) {
	csv := strings.Join([]string{
		mtHeader,
		"3,2023.01.02 08:00,balance,,Deposit,,,,,,,,,1000",
		"4,2023.01.05 10:00,buy,1.0,EURUSD,1.1000,0,0,2023.01.05 12:00,1.1050,0,0,0,500",
	}, "\n")

	result := newTestImporter().Parse(csv)

	assert.Equal(t, 1, result.Summary.TotalProcessed)
	assert.Equal(t, 1, result.Summary.Successful)
	assert.Equal(t, 0, result.Summary.Failed)
	assertCountsConsistent(t, result)
}

func TestParseMetaTraderClosePriceFallback(t *testing.T) {
	// Some MT4 templates label the close price column literally "Price";
	// extraction falls back to the last column of that name.
	csv := strings.Join([]string{
		"Ticket,Open Time,Type,Size,Item,Open Price,S/L,T/P,Close Time,Price,Commission,Taxes,Swap,Profit",
		"5,2023.02.01 14:00,buy,2.0,USDJPY,131.20,0,0,2023.02.01 16:45,131.80,0,0,0,90",
	}, "\n")

	result := newTestImporter().Parse(csv)

	require.Len(t, result.Trades, 1)
	assert.Equal(t, 131.20, result.Trades[0].EntryPrice)
	assert.Equal(t, 131.80, result.Trades[0].ExitPrice)
}

func TestParseTradingView(t *testing.T) {
	csv := strings.Join([]string{
		"Type,Symbol,Date/Time,Price,Contracts,Profit",
		"Exit short,BTCUSD,2023-10-25T09:35:00Z,34250.5,2,310.25",
	}, "\n")

	result := newTestImporter().Parse(csv)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, models.TradeTypeShort, trade.Type)
	assert.Equal(t, "BTCUSD", trade.Symbol)
	assert.Equal(t, "2023-10-25 09:35", trade.EntryDate)
	assert.Equal(t, trade.EntryDate, trade.ExitDate)
	assert.Equal(t, 34250.5, trade.EntryPrice)
	assert.Equal(t, trade.EntryPrice, trade.ExitPrice)
	assert.Equal(t, 2.0, trade.Quantity)
	assert.Equal(t, 310.25, trade.Pnl)
}

func TestParseTradingViewQuantityFallback(t *testing.T) {
	// Neither Contracts nor Quantity present: quantity defaults to 1.
	csv := strings.Join([]string{
		"Type,Symbol,Date/Time,Price,Comment,Profit",
		"Exit long,ETHUSD,2023-10-26T14:00:00Z,1810.0,closed,55",
	}, "\n")

	result := newTestImporter().Parse(csv)

	require.Len(t, result.Trades, 1)
	assert.Equal(t, 1.0, result.Trades[0].Quantity)
}

func TestParseTradingViewMissingProfitDefaultsToBreakEven(t *testing.T) {
	csv := strings.Join([]string{
		"Type,Symbol,Date/Time,Price,Contracts,Profit",
		"Exit long,SOLUSD,2023-10-26T15:00:00Z,32.5,3,",
	}, "\n")

	result := newTestImporter().Parse(csv)

	require.Len(t, result.Trades, 1)
	assert.Equal(t, 0.0, result.Trades[0].Pnl)
	assert.Equal(t, models.TradeStatusBreakEven, result.Trades[0].Status)
	assert.Equal(t, 0.0, result.Trades[0].RMultiple)
}

func TestParseNinjaTrader(t *testing.T) {
	csv := strings.Join([]string{
		"Instrument,Market pos.,Qty,Entry price,Exit price,Entry time,Exit time,PnL",
		"ES 12-23,Long,2,4510.25,4515.75,2023-10-25 09:35:00,2023-10-25 10:02:00,550",
	}, "\n")

	result := newTestImporter().Parse(csv)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, "ES 12-23", trade.Symbol)
	assert.Equal(t, models.TradeTypeLong, trade.Type)
	assert.Equal(t, 2.0, trade.Quantity)
	assert.Equal(t, 4510.25, trade.EntryPrice)
	assert.Equal(t, 4515.75, trade.ExitPrice)
	assert.Equal(t, "2023-10-25 09:35", trade.EntryDate)
	assert.Equal(t, "2023-10-25 10:02", trade.ExitDate)
	assert.Equal(t, 550.0, trade.Pnl)
	assert.Equal(t, models.TradeStatusWin, trade.Status)
}

func TestParseUnknownFormat(t *testing.T) {
	csv := "Foo,Bar,Baz\n1,2,3"

	result := newTestImporter().Parse(csv)

	assert.False(t, result.Success)
	assert.Empty(t, result.Trades)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Could not detect broker format")
	assert.Equal(t, 0, result.Summary.TotalProcessed)
}

func TestParseEmptyFile(t *testing.T) {
	for _, content := range []string{"", "\n\n", mtHeader} {
		result := newTestImporter().Parse(content)
		assert.False(t, result.Success)
		assert.Empty(t, result.Trades)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "empty or missing headers")
	}
}

func TestParseRowErrorsDoNotAbortBatch(t *testing.T) {
	csv := strings.Join([]string{
		mtHeader,
		"6,2023.03.01 10:00,buy,1.0,,1.1000,0,0,2023.03.01 12:00,1.1050,0,0,0,500",
		"7,2023.03.02 10:00,buy,1.0,EURUSD,1.1000,0,0,2023.03.02 12:00,1.1050,0,0,0,not-a-number",
		"8,2023.03.03 10:00,sell,1.0,EURUSD,1.1050,0,0,2023.03.03 12:00,1.1000,0,0,0,250",
	}, "\r\n")

	result := newTestImporter().Parse(csv)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Summary.TotalProcessed)
	assert.Equal(t, 1, result.Summary.Successful)
	assert.Equal(t, 2, result.Summary.Failed)
	assertCountsConsistent(t, result)

	// Error messages reference the 1-based source row (header is row 1).
	assert.Contains(t, result.Errors[0], "Row 2:")
	assert.Contains(t, result.Errors[0], "symbol")
	assert.Contains(t, result.Errors[1], "Row 3:")
	assert.Contains(t, result.Errors[1], "P&L")
}

func TestParseShortRowsSkippedSilently(t *testing.T) {
	csv := strings.Join([]string{
		mtHeader,
		"9,2023.04.01 10:00,buy,1.0,EURUSD,1.1000,0,0,2023.04.01 12:00,1.1050,0,0,0,500",
		"Closed P/L:,500",
		"",
		"summary",
	}, "\n")

	result := newTestImporter().Parse(csv)

	assert.Equal(t, 1, result.Summary.TotalProcessed)
	assert.Equal(t, 1, result.Summary.Successful)
	assert.Empty(t, result.Errors)
	assertCountsConsistent(t, result)
}

func TestParseAllRowsFailedReportsNoSuccess(t *testing.T) {
	csv := strings.Join([]string{
		mtHeader,
		"10,2023.05.01 10:00,buy,1.0,,1.1000,0,0,2023.05.01 12:00,1.1050,0,0,0,500",
	}, "\n")

	result := newTestImporter().Parse(csv)

	assert.False(t, result.Success)
	assert.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Summary.Failed)
	assertCountsConsistent(t, result)
}

func TestParseIsDeterministicModuloIDs(t *testing.T) {
	csv := strings.Join([]string{
		mtHeader,
		"11,2023.06.01 10:00,buy,1.0,EURUSD,1.1000,0,0,2023.06.01 12:00,1.1050,0,0,0,125",
	}, "\n")

	p := New()
	p.now = fixedNow

	first := p.Parse(csv)
	second := p.Parse(csv)

	require.Len(t, first.Trades, 1)
	require.Len(t, second.Trades, 1)
	first.Trades[0].ID = ""
	second.Trades[0].ID = ""
	assert.Equal(t, first, second)
}

func TestParseDerivedStatus(t *testing.T) {
	tests := []struct {
		pnl  string
		want models.TradeStatus
	}{
		{pnl: "150", want: models.TradeStatusWin},
		{pnl: "-50", want: models.TradeStatusLoss},
		{pnl: "0", want: models.TradeStatusBreakEven},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			csv := strings.Join([]string{
				mtHeader,
				fmt.Sprintf("12,2023.07.01 10:00,buy,1.0,EURUSD,1.1,0,0,2023.07.01 11:00,1.2,0,0,0,%s", tt.pnl),
			}, "\n")

			result := newTestImporter().Parse(csv)
			require.Len(t, result.Trades, 1)
			assert.Equal(t, tt.want, result.Trades[0].Status)
		})
	}
}

func TestParseMixedTimeZeroPricesTolerated(t *testing.T) {
	// Bot-sourced exports can omit prices entirely; the row still imports
	// with zero prices as long as symbol and P&L are present.
	csv := strings.Join([]string{
		mtHeader,
		"13,2023.08.01 10:00,buy,1.0,XAUUSD,,0,0,2023.08.01 12:00,,0,0,0,75",
	}, "\n")

	result := newTestImporter().Parse(csv)

	require.Len(t, result.Trades, 1)
	assert.Equal(t, 0.0, result.Trades[0].EntryPrice)
	assert.Equal(t, 0.0, result.Trades[0].ExitPrice)
	assert.Equal(t, 75.0, result.Trades[0].Pnl)
}
