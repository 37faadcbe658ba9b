package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"keydojo/core"
)

// AggregationPeriod represents different time periods for aggregation
type AggregationPeriod string

const (
	PeriodDaily   AggregationPeriod = "daily"
	PeriodWeekly  AggregationPeriod = "weekly"
	PeriodMonthly AggregationPeriod = "monthly"
)

// AggregatedData is one rollup of progression KPIs for a period.
type AggregatedData struct {
	Period    AggregationPeriod `json:"period"`
	Key       string            `json:"key"` // e.g. "2026-03-14" for daily, "2026-W11" for weekly
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time"`

	ActiveAccounts    int   `json:"active_accounts"`
	ExperienceAwarded int64 `json:"experience_awarded"`
	CurrencyEarned    int64 `json:"currency_earned"`
	CurrencySpent     int64 `json:"currency_spent"`
	PracticesRecorded int64 `json:"practices_recorded"`
	LevelUps          int64 `json:"level_ups"`

	CreatedAt time.Time `json:"created_at"`
}

// AggregationEngine handles periodic aggregation of analytics data
type AggregationEngine struct {
	mu sync.RWMutex

	metrics *Metrics
	logger  *slog.Logger

	dailyAggregations   map[string]*AggregatedData
	weeklyAggregations  map[string]*AggregatedData
	monthlyAggregations map[string]*AggregatedData

	aggregationInterval time.Duration
	lastAggregation     time.Time
}

func NewAggregationEngine(metrics *Metrics, interval time.Duration, logger *slog.Logger) *AggregationEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &AggregationEngine{
		metrics:             metrics,
		logger:              logger,
		dailyAggregations:   make(map[string]*AggregatedData),
		weeklyAggregations:  make(map[string]*AggregatedData),
		monthlyAggregations: make(map[string]*AggregatedData),
		aggregationInterval: interval,
		lastAggregation:     time.Now(),
	}
}

// OnEvent forwards events to the underlying metrics hook
func (ae *AggregationEngine) OnEvent(e core.Event) {
	ae.metrics.OnEvent(e)
}

// AggregateNow forces an immediate aggregation of all periods
func (ae *AggregationEngine) AggregateNow() {
	ae.mu.Lock()
	defer ae.mu.Unlock()

	now := time.Now().UTC()
	ae.aggregateDaily(now)
	ae.aggregateWeekly(now)
	ae.aggregateMonthly(now)
	ae.lastAggregation = now
}

func (ae *AggregationEngine) aggregateDaily(now time.Time) {
	today := core.DayOf(now)
	startTime := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	data := &AggregatedData{
		Period:    PeriodDaily,
		Key:       today,
		StartTime: startTime,
		EndTime:   startTime.Add(24 * time.Hour),
		CreatedAt: now,
	}

	data.ActiveAccounts = ae.metrics.ActiveAccounts(today)
	data.ExperienceAwarded = ae.metrics.ExperienceAwarded(today)
	data.CurrencyEarned = ae.metrics.CurrencyEarned(today)
	data.CurrencySpent = ae.metrics.CurrencySpent(today)
	data.PracticesRecorded = ae.metrics.Practices(today)
	data.LevelUps = ae.metrics.LevelUps(today)

	ae.dailyAggregations[today] = data
}

func (ae *AggregationEngine) aggregateWeekly(now time.Time) {
	year, week := now.ISOWeek()
	wk := fmt.Sprintf("%d-W%02d", year, week)

	// Week starts Monday
	daysSinceMonday := int(now.Weekday()-time.Monday) % 7
	if daysSinceMonday < 0 {
		daysSinceMonday += 7
	}
	startTime := time.Date(now.Year(), now.Month(), now.Day()-daysSinceMonday, 0, 0, 0, 0, time.UTC)

	data := &AggregatedData{
		Period:    PeriodWeekly,
		Key:       wk,
		StartTime: startTime,
		EndTime:   startTime.Add(7 * 24 * time.Hour),
		CreatedAt: now,
	}

	data.ActiveAccounts = ae.metrics.WeeklyActiveAccounts(wk)
	for i := 0; i < 7; i++ {
		day := startTime.AddDate(0, 0, i).Format("2006-01-02")
		data.ExperienceAwarded += ae.metrics.ExperienceAwarded(day)
		data.CurrencyEarned += ae.metrics.CurrencyEarned(day)
		data.CurrencySpent += ae.metrics.CurrencySpent(day)
		data.PracticesRecorded += ae.metrics.Practices(day)
		data.LevelUps += ae.metrics.LevelUps(day)
	}

	ae.weeklyAggregations[wk] = data
}

func (ae *AggregationEngine) aggregateMonthly(now time.Time) {
	mk := now.Format("2006-01")

	startTime := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	endTime := startTime.AddDate(0, 1, 0)

	data := &AggregatedData{
		Period:    PeriodMonthly,
		Key:       mk,
		StartTime: startTime,
		EndTime:   endTime,
		CreatedAt: now,
	}

	data.ActiveAccounts = ae.metrics.MonthlyActiveAccounts(mk)
	days := int(endTime.Sub(startTime).Hours() / 24)
	for i := 0; i < days; i++ {
		day := startTime.AddDate(0, 0, i).Format("2006-01-02")
		data.ExperienceAwarded += ae.metrics.ExperienceAwarded(day)
		data.CurrencyEarned += ae.metrics.CurrencyEarned(day)
		data.CurrencySpent += ae.metrics.CurrencySpent(day)
		data.PracticesRecorded += ae.metrics.Practices(day)
		data.LevelUps += ae.metrics.LevelUps(day)
	}

	ae.monthlyAggregations[mk] = data
}

// GetAggregatedData returns aggregated data for a specific period and key
func (ae *AggregationEngine) GetAggregatedData(period AggregationPeriod, key string) (*AggregatedData, bool) {
	ae.mu.RLock()
	defer ae.mu.RUnlock()

	aggregations := ae.byPeriod(period)
	if aggregations == nil {
		return nil, false
	}
	data, exists := aggregations[key]
	return data, exists
}

// GetAllAggregatedData returns all aggregated data for a specific period
func (ae *AggregationEngine) GetAllAggregatedData(period AggregationPeriod) []*AggregatedData {
	ae.mu.RLock()
	defer ae.mu.RUnlock()

	aggregations := ae.byPeriod(period)
	if aggregations == nil {
		return nil
	}
	result := make([]*AggregatedData, 0, len(aggregations))
	for _, data := range aggregations {
		result = append(result, data)
	}
	return result
}

func (ae *AggregationEngine) byPeriod(period AggregationPeriod) map[string]*AggregatedData {
	switch period {
	case PeriodDaily:
		return ae.dailyAggregations
	case PeriodWeekly:
		return ae.weeklyAggregations
	case PeriodMonthly:
		return ae.monthlyAggregations
	default:
		return nil
	}
}

// Start begins periodic aggregation and blocks until the context is cancelled.
func (ae *AggregationEngine) Start(ctx context.Context) {
	ticker := time.NewTicker(ae.aggregationInterval)
	defer ticker.Stop()

	ae.AggregateNow()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ae.AggregateNow()
			ae.logger.Debug("analytics aggregation completed")
		}
	}
}

// ExportData exports aggregated data to JSON format
func (ae *AggregationEngine) ExportData(period AggregationPeriod) ([]byte, error) {
	data := ae.GetAllAggregatedData(period)
	return json.MarshalIndent(data, "", "  ")
}
