// backend/src/importer/dates.go
package importer

import (
	"strings"
	"time"
)

// CanonicalDateFormat is the normalized date-time layout for trade records.
const CanonicalDateFormat = "2006-01-02 15:04"

// genericDateLayouts are tried in order for branch 2 of normalizeDate.
var genericDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
}

// normalizeDate converts a raw broker date/time string into the canonical
// YYYY-MM-DD HH:mm form. Precedence:
//
//  1. empty input: the current time (a lossy fallback; callers that care
//     should supply explicit dates),
//  2. generic parsing of ISO 8601 and common layouts, rendered in UTC at
//     minute precision,
//  3. the MetaTrader dot convention (YYYY.MM.DD HH:mm),
//  4. the input unchanged, leaving rejection to downstream validation.
//
// It never fails; an unparseable string is passed through as-is.
func normalizeDate(raw string, now func() time.Time) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now().UTC().Format(CanonicalDateFormat)
	}

	for _, layout := range genericDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(CanonicalDateFormat)
		}
	}

	if strings.Contains(raw, ".") {
		parts := strings.SplitN(raw, " ", 2)
		datePart := strings.ReplaceAll(parts[0], ".", "-")
		timePart := "00:00"
		if len(parts) > 1 && parts[1] != "" {
			timePart = parts[1]
			if len(timePart) > 5 {
				timePart = timePart[:5]
			}
		}
		return datePart + " " + timePart
	}

	return raw
}
