// backend/src/models/import.go
package models

// ImportSummary counts the data rows that passed the minimum-column gate.
// Successful + Failed always equals TotalProcessed.
type ImportSummary struct {
	TotalProcessed int `json:"totalProcessed"`
	Successful     int `json:"successful"`
	Failed         int `json:"failed"`
}

// ImportResult is the outcome of one broker CSV import. Trades and Errors
// are in source row order; Success is true iff at least one row parsed.
type ImportResult struct {
	Success bool          `json:"success"`
	Trades  []Trade       `json:"trades"`
	Errors  []string      `json:"errors"`
	Summary ImportSummary `json:"summary"`
}
