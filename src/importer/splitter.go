// backend/src/importer/splitter.go
package importer

import "strings"

// SplitLine tokenizes one raw CSV line into trimmed field values. Fields are
// delimited by commas; a field may be wrapped in double quotes to allow
// embedded commas or whitespace (the quotes are stripped). If the quote-aware
// tokenizer cannot make sense of the line (e.g. an unbalanced quote), it
// falls back to a naive split on comma, so the function always returns at
// least one field.
func SplitLine(line string) []string {
	if fields, ok := splitQuoted(line); ok {
		return fields
	}
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func splitQuoted(line string) ([]string, bool) {
	var fields []string
	var b strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(b.String()))
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	if inQuotes {
		// Unbalanced quote, let the caller fall back to a naive split.
		return nil, false
	}
	fields = append(fields, strings.TrimSpace(b.String()))
	return fields, true
}
