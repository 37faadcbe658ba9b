package core

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates progression domain events.
type EventType string

const (
	EventExperienceGranted EventType = "experience_granted"
	EventLevelUp           EventType = "level_up"
	EventHeartsConsumed    EventType = "hearts_consumed"
	EventHeartsRegenerated EventType = "hearts_regenerated"
	EventHeartsGranted     EventType = "hearts_granted"
	EventCurrencyEarned    EventType = "currency_earned"
	EventCurrencySpent     EventType = "currency_spent"
	EventPracticeRecorded  EventType = "practice_recorded"
	EventStreakMilestone   EventType = "streak_milestone"
	EventFreezeConsumed    EventType = "freeze_consumed"
	EventItemPurchased     EventType = "item_purchased"
	EventSnapshotReset     EventType = "snapshot_reset"
)

// Event is an immutable domain event emitted after a successful mutation.
type Event struct {
	ID       string         `json:"id"`
	Type     EventType      `json:"type"`
	Time     time.Time      `json:"time"`
	Account  AccountID      `json:"account_id"`
	Amount   int            `json:"amount,omitempty"`
	Total    int            `json:"total,omitempty"`
	Balance  int            `json:"balance,omitempty"`
	Level    int            `json:"level,omitempty"`
	Hearts   int            `json:"hearts,omitempty"`
	Streak   int            `json:"streak,omitempty"`
	Source   string         `json:"source,omitempty"`
	Item     ItemID         `json:"item,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func newEvent(typ EventType, now time.Time, account AccountID) Event {
	return Event{ID: uuid.NewString(), Type: typ, Time: now, Account: account}
}

func NewExperienceGranted(now time.Time, account AccountID, amount, total int, source string) Event {
	e := newEvent(EventExperienceGranted, now, account)
	e.Amount, e.Total, e.Source = amount, total, source
	return e
}

func NewLevelUp(now time.Time, account AccountID, level int) Event {
	e := newEvent(EventLevelUp, now, account)
	e.Level = level
	e.Metadata = map[string]any{"title": TitleFor(level)}
	return e
}

func NewHeartsConsumed(now time.Time, account AccountID, count, remaining int) Event {
	e := newEvent(EventHeartsConsumed, now, account)
	e.Amount, e.Hearts = count, remaining
	return e
}

func NewHeartsRegenerated(now time.Time, account AccountID, added, current int) Event {
	e := newEvent(EventHeartsRegenerated, now, account)
	e.Amount, e.Hearts = added, current
	return e
}

func NewHeartsGranted(now time.Time, account AccountID, added, current int) Event {
	e := newEvent(EventHeartsGranted, now, account)
	e.Amount, e.Hearts = added, current
	return e
}

func NewCurrencyEarned(now time.Time, account AccountID, amount, balance int, source string) Event {
	e := newEvent(EventCurrencyEarned, now, account)
	e.Amount, e.Balance, e.Source = amount, balance, source
	return e
}

func NewCurrencySpent(now time.Time, account AccountID, amount, balance int, source string) Event {
	e := newEvent(EventCurrencySpent, now, account)
	e.Amount, e.Balance, e.Source = amount, balance, source
	return e
}

func NewPracticeRecorded(now time.Time, account AccountID, streak int) Event {
	e := newEvent(EventPracticeRecorded, now, account)
	e.Streak = streak
	return e
}

func NewStreakMilestone(now time.Time, account AccountID, streak int, milestone string) Event {
	e := newEvent(EventStreakMilestone, now, account)
	e.Streak = streak
	e.Metadata = map[string]any{"milestone": milestone}
	return e
}

func NewFreezeConsumed(now time.Time, account AccountID, streak, remaining int) Event {
	e := newEvent(EventFreezeConsumed, now, account)
	e.Streak = streak
	e.Amount = remaining
	return e
}

func NewItemPurchased(now time.Time, account AccountID, item ItemID, price, balance int) Event {
	e := newEvent(EventItemPurchased, now, account)
	e.Item, e.Amount, e.Balance = item, price, balance
	e.Source = SourcePurchase
	return e
}

func NewSnapshotReset(now time.Time, account AccountID) Event {
	return newEvent(EventSnapshotReset, now, account)
}
