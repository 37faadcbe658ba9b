package analytics

import (
	"fmt"
	"sync"
	"time"

	"keydojo/core"
)

// Hook receives domain events for KPI aggregation.
type Hook interface {
	OnEvent(e core.Event)
}

// DAU tracks daily active accounts.
type DAU struct {
	mu   sync.Mutex
	days map[string]map[core.AccountID]struct{}
}

func NewDAU() *DAU { return &DAU{days: map[string]map[core.AccountID]struct{}{}} }

func (d *DAU) OnEvent(e core.Event) {
	day := core.DayOf(e.Time)
	d.mu.Lock()
	defer d.mu.Unlock()
	m := d.days[day]
	if m == nil {
		m = map[core.AccountID]struct{}{}
		d.days[day] = m
	}
	m[e.Account] = struct{}{}
}

func (d *DAU) Count(day string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.days[day])
}

// Metrics aggregates progression KPIs from the event stream.
type Metrics struct {
	mu sync.RWMutex

	// Account engagement
	dailyActiveAccounts   map[string]map[core.AccountID]struct{}
	weeklyActiveAccounts  map[string]map[core.AccountID]struct{}
	monthlyActiveAccounts map[string]map[core.AccountID]struct{}

	// Experience
	experienceAwardedByDay    map[string]int64
	experienceAwardedBySource map[string]int64

	// Currency
	currencyEarnedByDay map[string]int64
	currencySpentByDay  map[string]int64

	// Levels: how many accounts sit at each reached level
	levelUpsByDay     map[string]int64
	levelDistribution map[int]int

	// Practice and streaks
	practicesByDay map[string]int64
	bestStreak     map[core.AccountID]int

	// Store
	itemsPurchased map[core.ItemID]int64

	heartsConsumedByDay map[string]int64
}

func NewMetrics() *Metrics {
	return &Metrics{
		dailyActiveAccounts:       make(map[string]map[core.AccountID]struct{}),
		weeklyActiveAccounts:      make(map[string]map[core.AccountID]struct{}),
		monthlyActiveAccounts:     make(map[string]map[core.AccountID]struct{}),
		experienceAwardedByDay:    make(map[string]int64),
		experienceAwardedBySource: make(map[string]int64),
		currencyEarnedByDay:       make(map[string]int64),
		currencySpentByDay:        make(map[string]int64),
		levelUpsByDay:             make(map[string]int64),
		levelDistribution:         make(map[int]int),
		practicesByDay:            make(map[string]int64),
		bestStreak:                make(map[core.AccountID]int),
		itemsPurchased:            make(map[core.ItemID]int64),
		heartsConsumedByDay:       make(map[string]int64),
	}
}

func (m *Metrics) OnEvent(e core.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	day := core.DayOf(e.Time)
	week := weekKey(e.Time)
	month := monthKey(e.Time)

	m.trackEngagement(e.Account, day, week, month)

	switch e.Type {
	case core.EventExperienceGranted:
		if e.Amount > 0 {
			m.experienceAwardedByDay[day] += int64(e.Amount)
			m.experienceAwardedBySource[e.Source] += int64(e.Amount)
		}
	case core.EventLevelUp:
		m.levelUpsByDay[day]++
		if e.Level > 1 {
			m.levelDistribution[e.Level-1]--
			if m.levelDistribution[e.Level-1] <= 0 {
				delete(m.levelDistribution, e.Level-1)
			}
		}
		m.levelDistribution[e.Level]++
	case core.EventCurrencyEarned:
		m.currencyEarnedByDay[day] += int64(e.Amount)
	case core.EventCurrencySpent:
		m.currencySpentByDay[day] += int64(e.Amount)
	case core.EventPracticeRecorded:
		m.practicesByDay[day]++
		if e.Streak > m.bestStreak[e.Account] {
			m.bestStreak[e.Account] = e.Streak
		}
	case core.EventHeartsConsumed:
		m.heartsConsumedByDay[day] += int64(e.Amount)
	case core.EventItemPurchased:
		m.itemsPurchased[e.Item]++
	}
}

func (m *Metrics) trackEngagement(account core.AccountID, day, week, month string) {
	if m.dailyActiveAccounts[day] == nil {
		m.dailyActiveAccounts[day] = make(map[core.AccountID]struct{})
	}
	m.dailyActiveAccounts[day][account] = struct{}{}

	if m.weeklyActiveAccounts[week] == nil {
		m.weeklyActiveAccounts[week] = make(map[core.AccountID]struct{})
	}
	m.weeklyActiveAccounts[week][account] = struct{}{}

	if m.monthlyActiveAccounts[month] == nil {
		m.monthlyActiveAccounts[month] = make(map[core.AccountID]struct{})
	}
	m.monthlyActiveAccounts[month][account] = struct{}{}
}

// ActiveAccounts returns the count of distinct accounts seen on a day.
func (m *Metrics) ActiveAccounts(day string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.dailyActiveAccounts[day])
}

// WeeklyActiveAccounts returns the count for an ISO week key like "2026-W11".
func (m *Metrics) WeeklyActiveAccounts(week string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.weeklyActiveAccounts[week])
}

// MonthlyActiveAccounts returns the count for a month key like "2026-03".
func (m *Metrics) MonthlyActiveAccounts(month string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.monthlyActiveAccounts[month])
}

func (m *Metrics) ExperienceAwarded(day string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.experienceAwardedByDay[day]
}

func (m *Metrics) ExperienceBySource(source string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.experienceAwardedBySource[source]
}

func (m *Metrics) CurrencyEarned(day string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currencyEarnedByDay[day]
}

func (m *Metrics) CurrencySpent(day string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currencySpentByDay[day]
}

func (m *Metrics) LevelUps(day string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.levelUpsByDay[day]
}

// LevelDistribution returns a copy of level -> account count.
func (m *Metrics) LevelDistribution() map[int]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int]int, len(m.levelDistribution))
	for lvl, n := range m.levelDistribution {
		out[lvl] = n
	}
	return out
}

func (m *Metrics) Practices(day string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.practicesByDay[day]
}

// StreakDistribution buckets accounts by their best observed streak.
func (m *Metrics) StreakDistribution() map[int]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int]int)
	for _, streak := range m.bestStreak {
		out[streak]++
	}
	return out
}

func (m *Metrics) ItemPurchases(item core.ItemID) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.itemsPurchased[item]
}

func (m *Metrics) HeartsConsumed(day string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.heartsConsumedByDay[day]
}

func weekKey(t time.Time) string {
	tt := t.UTC()
	year, week := tt.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func monthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}
