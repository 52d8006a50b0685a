// backend/src/importer/importer.go
//
// Package importer normalizes broker CSV exports (MetaTrader, TradingView,
// NinjaTrader) into canonical trade records. It operates on an in-memory
// blob, performs no I/O, holds no shared state, and never panics: fatal
// conditions (empty file, unrecognized header) come back as data on the
// ImportResult, and a malformed row is recorded as a per-row error without
// aborting the rest of the batch.
package importer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/username/tradepulse/backend/src/models"
)

// minColumns is the minimum tokenized field count for a data row to be
// considered at all. Blank trailing lines and the summary/footer rows most
// brokers append fall under this and are skipped without being counted.
const minColumns = 5

var lineBreakRe = regexp.MustCompile(`\r?\n`)

// Importer parses broker CSV exports. The zero dependencies are a clock
// (empty-date fallback) and an ID generator, both injectable for tests.
type Importer struct {
	now   func() time.Time
	newID func() string
}

func New() *Importer {
	return &Importer{
		now: time.Now,
		// The imp_ prefix marks imported records apart from manually
		// entered trades, which carry a bare UUID.
		newID: func() string { return "imp_" + uuid.NewString() },
	}
}

// Parse normalizes one broker CSV export. The result always satisfies
// Summary.Successful + Summary.Failed == Summary.TotalProcessed, with
// len(Trades) and len(Errors) matching the two counts, and Success true iff
// at least one row parsed.
func (p *Importer) Parse(csvContent string) *models.ImportResult {
	result := &models.ImportResult{
		Trades: []models.Trade{},
		Errors: []string{},
	}

	var lines []string
	for _, line := range lineBreakRe.Split(csvContent, -1) {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) < 2 {
		result.Errors = append(result.Errors, "CSV file is empty or missing headers.")
		return result
	}

	headerRow := SplitLine(lines[0])
	format := DetectBrokerFormat(headerRow)
	if format == FormatUnknown {
		result.Errors = append(result.Errors,
			"Could not detect broker format. Ensure headers match standard MT4, TradingView, or NinjaTrader exports.")
		return result
	}

	cols := newColumnIndex(headerRow)

	for i := 1; i < len(lines); i++ {
		columns := SplitLine(lines[i])
		if len(columns) < minColumns {
			continue
		}

		trade, err := p.mapRow(format, cols, columns)
		if errors.Is(err, errSkipRow) {
			continue
		}

		result.Summary.TotalProcessed++
		if err != nil {
			result.Summary.Failed++
			// The header is row 1, so the first data row reports as row 2.
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}

		result.Trades = append(result.Trades, trade)
		result.Summary.Successful++
	}

	result.Success = len(result.Trades) > 0
	return result
}
