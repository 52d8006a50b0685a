// backend/src/importer/format.go
package importer

import "strings"

// BrokerFormat identifies the export layout a CSV header was produced by.
// The supported formats are a closed set; adding a broker means adding a
// constant here, a detection check, and one mapping function in mapper.go.
type BrokerFormat string

const (
	FormatMetaTrader  BrokerFormat = "METATRADER"
	FormatTradingView BrokerFormat = "TRADINGVIEW"
	FormatNinjaTrader BrokerFormat = "NINJATRADER"
	FormatUnknown     BrokerFormat = "UNKNOWN"
)

// DetectBrokerFormat classifies a tokenized header row by testing for
// distinguishing substring pairs. Checks run in order and the first match
// wins. Header sniffing is heuristic by nature and will break if a broker
// reshuffles its export columns.
func DetectBrokerFormat(headerRow []string) BrokerFormat {
	header := strings.ToLower(strings.Join(headerRow, ","))

	switch {
	case strings.Contains(header, "ticket") && strings.Contains(header, "open time"):
		return FormatMetaTrader
	case strings.Contains(header, "instrument") && strings.Contains(header, "market pos."):
		return FormatNinjaTrader
	case strings.Contains(header, "date/time") && strings.Contains(header, "profit"):
		return FormatTradingView
	default:
		return FormatUnknown
	}
}

// columnNotFound is the sentinel index for a column name absent from the
// header. Extraction treats it as "value unavailable", never as a crash.
const columnNotFound = -1

// columnIndex is a case-insensitive column-name-to-position lookup, built
// once per import from the header row. Broker exports vary column order
// between platform versions, so positional indexing is not an option.
type columnIndex struct {
	first map[string]int
	last  map[string]int
}

func newColumnIndex(headerRow []string) columnIndex {
	idx := columnIndex{
		first: make(map[string]int, len(headerRow)),
		last:  make(map[string]int, len(headerRow)),
	}
	for i, name := range headerRow {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, seen := idx.first[key]; !seen {
			idx.first[key] = i
		}
		idx.last[key] = i
	}
	return idx
}

// lookup returns the position of the first column with the given name, or
// columnNotFound.
func (c columnIndex) lookup(name string) int {
	if i, ok := c.first[name]; ok {
		return i
	}
	return columnNotFound
}

// lookupLast returns the position of the last column with the given name.
// MT4 statement templates reuse the bare header "Price" for both the open
// and close price, which is the one consumer of this.
func (c columnIndex) lookupLast(name string) int {
	if i, ok := c.last[name]; ok {
		return i
	}
	return columnNotFound
}

// fieldAt returns the row value at idx, or "" when the index is the
// not-found sentinel or past the end of a ragged row.
func fieldAt(columns []string, idx int) string {
	if idx < 0 || idx >= len(columns) {
		return ""
	}
	return columns[idx]
}
