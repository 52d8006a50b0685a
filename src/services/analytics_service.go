// backend/src/services/analytics_service.go
package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/tradepulse/backend/src/logger"
	"github.com/username/tradepulse/backend/src/models"
	"github.com/username/tradepulse/backend/src/utils"
)

const (
	ckDashboardStats = "agg_dashboard_stats_user_%d"
	ckDailyStats     = "agg_daily_stats_user_%d"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type analyticsServiceImpl struct {
	tradeService TradeService
	reportCache  *cache.Cache
}

func NewAnalyticsService(tradeService TradeService, reportCache *cache.Cache) AnalyticsService {
	return &analyticsServiceImpl{
		tradeService: tradeService,
		reportCache:  reportCache,
	}
}

// InvalidateUserCache clears cached aggregates for a user, forcing a rebuild
// on the next request.
func (s *analyticsServiceImpl) InvalidateUserCache(userID int64) {
	keysToDelete := []string{
		fmt.Sprintf(ckDashboardStats, userID),
		fmt.Sprintf(ckDailyStats, userID),
	}
	for _, key := range keysToDelete {
		s.reportCache.Delete(key)
	}
	logger.L.Info("Invalidated analytics caches for user", "userID", userID)
}

func (s *analyticsServiceImpl) GetDashboardStats(userID int64) (*models.DashboardStats, error) {
	cacheKey := fmt.Sprintf(ckDashboardStats, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for GetDashboardStats", "userID", userID)
		return cached.(*models.DashboardStats), nil
	}

	trades, err := s.tradeService.ListTrades(userID)
	if err != nil {
		return nil, err
	}

	stats := computeDashboardStats(trades)
	s.reportCache.Set(cacheKey, stats, DefaultCacheExpiration)
	return stats, nil
}

// computeDashboardStats derives the headline aggregates. Win rate counts
// trades with positive P&L against the whole journal; a journal with no
// losers reports a profit factor of 100 rather than infinity so the value
// stays representable in JSON.
func computeDashboardStats(trades []models.Trade) *models.DashboardStats {
	stats := &models.DashboardStats{TotalTrades: len(trades)}
	if len(trades) == 0 {
		return stats
	}

	var netPnl, sumR, grossProfit, grossLoss float64
	winCount := 0
	for _, t := range trades {
		netPnl += t.Pnl
		sumR += t.RMultiple
		if t.Pnl > 0 {
			winCount++
			grossProfit += t.Pnl
		} else if t.Pnl < 0 {
			grossLoss += math.Abs(t.Pnl)
		}
	}

	stats.NetPnl = utils.RoundFloat(netPnl, 2)
	stats.WinRate = utils.RoundFloat(float64(winCount)/float64(len(trades))*100, 1)
	stats.AvgR = utils.RoundFloat(sumR/float64(len(trades)), 2)
	if grossLoss == 0 {
		if grossProfit > 0 {
			stats.ProfitFactor = 100
		}
	} else {
		stats.ProfitFactor = utils.RoundFloat(grossProfit/grossLoss, 2)
	}
	return stats
}

func (s *analyticsServiceImpl) GetDailyStats(userID int64) ([]models.DailyStat, error) {
	cacheKey := fmt.Sprintf(ckDailyStats, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for GetDailyStats", "userID", userID)
		return cached.([]models.DailyStat), nil
	}

	trades, err := s.tradeService.ListTrades(userID)
	if err != nil {
		return nil, err
	}

	stats := computeDailyStats(trades)
	s.reportCache.Set(cacheKey, stats, DefaultCacheExpiration)
	return stats, nil
}

// computeDailyStats groups trades by the calendar day of their entry date.
func computeDailyStats(trades []models.Trade) []models.DailyStat {
	byDay := make(map[string]*models.DailyStat)
	for _, t := range trades {
		day := utils.DayOf(t.EntryDate)
		stat, ok := byDay[day]
		if !ok {
			stat = &models.DailyStat{Date: day}
			byDay[day] = stat
		}
		stat.Pnl = utils.RoundFloat(stat.Pnl+t.Pnl, 2)
		stat.TradeCount++
	}

	stats := make([]models.DailyStat, 0, len(byDay))
	for _, stat := range byDay {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Date < stats[j].Date })
	return stats
}
