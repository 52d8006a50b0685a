// backend/src/services/import_service.go
package services

import (
	"fmt"
	"io"
	"time"

	"github.com/username/tradepulse/backend/src/database"
	"github.com/username/tradepulse/backend/src/importer"
	"github.com/username/tradepulse/backend/src/logger"
	"github.com/username/tradepulse/backend/src/models"
)

type importServiceImpl struct {
	importer     *importer.Importer
	tradeService TradeService
	analytics    AnalyticsService
}

func NewImportService(imp *importer.Importer, tradeService TradeService, analytics AnalyticsService) ImportService {
	return &importServiceImpl{
		importer:     imp,
		tradeService: tradeService,
		analytics:    analytics,
	}
}

// ProcessImport parses the CSV and persists every successfully normalized
// trade. Row-level failures are reported in the result, not as an error; an
// error is returned only when the file itself cannot be read or stored.
func (s *importServiceImpl) ProcessImport(fileReader io.Reader, userID int64) (*models.ImportResult, error) {
	startTime := time.Now()
	logger.L.Info("ProcessImport START", "userID", userID)

	content, err := io.ReadAll(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading upload: %v", ErrParsingFailed, err)
	}

	result := s.importer.Parse(string(content))
	if len(result.Trades) == 0 {
		logger.L.Info("ProcessImport END, nothing to persist", "userID", userID,
			"failed", result.Summary.Failed, "duration", time.Since(startTime))
		return result, nil
	}

	dbTx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.Prepare(insertTradeQuery)
	if err != nil {
		return nil, fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for i := range result.Trades {
		trade := &result.Trades[i]
		trade.UserID = userID
		if _, err := stmt.Exec(tradeInsertArgs(trade)...); err != nil {
			return nil, fmt.Errorf("error inserting trade (ID: %s): %w", trade.ID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing trades: %w", err)
	}

	s.analytics.InvalidateUserCache(userID)

	logger.L.Info("ProcessImport END", "userID", userID,
		"imported", result.Summary.Successful, "failed", result.Summary.Failed,
		"duration", time.Since(startTime))
	return result, nil
}
