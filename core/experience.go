package core

import "time"

// ExperienceEntry records one experience grant.
type ExperienceEntry struct {
	Time        time.Time `json:"time"`
	Amount      int       `json:"amount"`
	Source      string    `json:"source"`
	Description string    `json:"description,omitempty"`
}

// LevelEntry records one level-up. Entries are strictly increasing in Level.
type LevelEntry struct {
	Time  time.Time `json:"time"`
	Level int       `json:"level"`
}

// ExperienceState is the experience ledger: cumulative total, the level
// derived from it, and append-only histories.
type ExperienceState struct {
	Total        int               `json:"total"`
	Level        int               `json:"level"`
	CurrentLevel int               `json:"current_level_experience"`
	NextLevelGap int               `json:"next_level_gap"`
	History      []ExperienceEntry `json:"history"`
	Levels       []LevelEntry      `json:"level_history"`
}

// GrantResult reports the outcome of a grant.
type GrantResult struct {
	NewTotal     int   `json:"new_total"`
	NewLevel     int   `json:"new_level"`
	LeveledUp    bool  `json:"leveled_up"`
	LevelsGained []int `json:"levels_gained,omitempty"` // each crossed level, ascending
}

// Grant appends an experience entry and recomputes the level. A single
// grant may cross several level boundaries; each crossed level gets its own
// level-history entry in ascending order. Non-positive amounts are rejected
// without touching state.
func (x *ExperienceState) Grant(now time.Time, amount int, source, description string) (GrantResult, error) {
	if amount <= 0 {
		return GrantResult{}, ErrInvalidAmount
	}

	oldLevel := x.Level
	x.Total += amount
	x.History = append(x.History, ExperienceEntry{
		Time:        now,
		Amount:      amount,
		Source:      source,
		Description: description,
	})

	newLevel := LevelForExperience(x.Total)
	res := GrantResult{NewTotal: x.Total, NewLevel: newLevel}
	if newLevel > oldLevel {
		res.LeveledUp = true
		for lvl := oldLevel + 1; lvl <= newLevel; lvl++ {
			res.LevelsGained = append(res.LevelsGained, lvl)
			x.Levels = append(x.Levels, LevelEntry{Time: now, Level: lvl})
		}
		x.Level = newLevel
	}
	x.CurrentLevel, x.NextLevelGap = levelProgress(x.Total, x.Level)
	return res, nil
}

// ProgressPercent returns progress towards the next level in [0, 100].
// At the maximum level it reports 100.
func (x ExperienceState) ProgressPercent() int {
	if x.NextLevelGap <= 0 {
		return 100
	}
	pct := x.CurrentLevel * 100 / x.NextLevelGap
	if pct > 100 {
		pct = 100
	}
	return pct
}

// Title returns the display title for the current level.
func (x ExperienceState) Title() string { return TitleFor(x.Level) }
