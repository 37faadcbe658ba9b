package core

import "time"

// StreakDay records one calendar day in the streak history. Frozen days
// were covered by a streak freeze rather than actual practice.
type StreakDay struct {
	Day       string `json:"day"`
	Practiced bool   `json:"practiced"`
	Frozen    bool   `json:"frozen,omitempty"`
}

// StreakState tracks consecutive practice days.
type StreakState struct {
	Current          int         `json:"current"`
	Longest          int         `json:"longest"`
	LastPracticeDay  string      `json:"last_practice_day,omitempty"`
	FreezesAvailable int         `json:"freezes_available"`
	History          []StreakDay `json:"history"`
}

// PracticeResult reports the streak transition for one recorded practice.
type PracticeResult struct {
	AlreadyPracticedToday bool
	Streak                int
	WeeklyMilestone       bool // current is a multiple of 7
	MonthlyMilestone      bool // current is a multiple of 30
}

// RecordPractice applies the day-boundary transition: same day is a no-op,
// yesterday continues the streak, anything older resets it to 1. History
// gets at most one entry per calendar day. Milestone flags tell the
// coordinator which bonus rewards to grant; the tracker itself never
// touches the other ledgers.
func (s *StreakState) RecordPractice(now time.Time) PracticeResult {
	today := DayOf(now)
	if s.LastPracticeDay == today {
		return PracticeResult{AlreadyPracticedToday: true, Streak: s.Current}
	}

	yesterday := DayOf(now.AddDate(0, 0, -1))
	if s.LastPracticeDay == yesterday {
		s.Current++
	} else {
		s.Current = 1
	}
	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	s.LastPracticeDay = today
	s.History = append(s.History, StreakDay{Day: today, Practiced: true})

	return PracticeResult{
		Streak:           s.Current,
		WeeklyMilestone:  s.Current%7 == 0,
		MonthlyMilestone: s.Current%30 == 0,
	}
}

// ConsumeFreeze covers exactly one missed day: valid only when a freeze is
// in stock and the last practice was the day before yesterday. The missed
// day (yesterday) is recorded as frozen and counts as kept, so a practice
// today will continue the streak instead of resetting it.
func (s *StreakState) ConsumeFreeze(now time.Time) error {
	if s.FreezesAvailable <= 0 {
		return ErrNoFreezeAvailable
	}
	missed := DayOf(now.AddDate(0, 0, -1))
	dayBefore := DayOf(now.AddDate(0, 0, -2))
	if s.LastPracticeDay != dayBefore || DayOf(now) == s.LastPracticeDay {
		return ErrFreezeNotApplicable
	}
	s.FreezesAvailable--
	s.LastPracticeDay = missed
	s.History = append(s.History, StreakDay{Day: missed, Practiced: false, Frozen: true})
	return nil
}

// AddFreezes tops up the freeze counter (store purchase).
func (s *StreakState) AddFreezes(count int) error {
	if count <= 0 {
		return ErrInvalidAmount
	}
	s.FreezesAvailable += count
	return nil
}

// PracticedOn reports whether the history contains a practiced entry for
// the given calendar day.
func (s StreakState) PracticedOn(day string) bool {
	for _, entry := range s.History {
		if entry.Day == day && entry.Practiced {
			return true
		}
	}
	return false
}
