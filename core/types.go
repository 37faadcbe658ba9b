package core

import (
	"errors"
	"strings"
	"time"
)

// AccountID uniquely identifies a learner account in the progression domain.
type AccountID string

// Snapshot is the aggregate progression state for one account.
// Implementations should hand out deep copies to maintain immutability
// guarantees; all mutation goes through the sub-ledger operations.
type Snapshot struct {
	AccountID  AccountID       `json:"account_id"`
	Experience ExperienceState `json:"experience"`
	Hearts     HeartsState     `json:"hearts"`
	Currency   CurrencyState   `json:"currency"`
	Streak     StreakState     `json:"streak"`
	Updated    time.Time       `json:"updated"`
}

// NewSnapshot returns the default state for a fresh account: level 1,
// full hearts, empty ledgers.
func NewSnapshot(account AccountID, now time.Time) Snapshot {
	return Snapshot{
		AccountID: account,
		Experience: ExperienceState{
			Level:        1,
			NextLevelGap: ThresholdFor(2),
			Levels:       []LevelEntry{{Time: now, Level: 1}},
		},
		Hearts: HeartsState{
			Current:          MaxHearts,
			Max:              MaxHearts,
			LastRegeneration: now,
		},
		Updated: now,
	}
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	cp := s
	cp.Experience.History = append([]ExperienceEntry(nil), s.Experience.History...)
	cp.Experience.Levels = append([]LevelEntry(nil), s.Experience.Levels...)
	cp.Currency.Transactions = append([]Transaction(nil), s.Currency.Transactions...)
	cp.Streak.History = append([]StreakDay(nil), s.Streak.History...)
	if s.Hearts.NextRegenerationDue != nil {
		due := *s.Hearts.NextRegenerationDue
		cp.Hearts.NextRegenerationDue = &due
	}
	return cp
}

// NormalizeAccountID trims and lowercases account identifiers.
func NormalizeAccountID(id AccountID) (AccountID, error) {
	s := strings.TrimSpace(string(id))
	if s == "" {
		return "", errors.New("empty account id")
	}
	return AccountID(strings.ToLower(s)), nil
}

// DayOf derives the calendar day string used by streak accounting. The day
// boundary is fixed UTC so two processes never disagree on "today".
func DayOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
