package core

// levelThresholds holds cumulative experience required to reach each level,
// indexed by level-1. Level 1 starts at 0.
var levelThresholds = []int{
	0,     // 1
	100,   // 2
	250,   // 3
	500,   // 4
	1000,  // 5
	1750,  // 6
	2750,  // 7
	4000,  // 8
	5500,  // 9
	7500,  // 10
	10000, // 11
	13000, // 12
	16500, // 13
	20500, // 14
	25000, // 15
}

var levelTitles = []string{
	"Keyboard Novice",
	"Shortcut Apprentice",
	"Key Combo Adept",
	"Hotkey Enthusiast",
	"Shortcut Specialist",
	"Keyboard Tactician",
	"Efficiency Expert",
	"Shortcut Virtuoso",
	"Keyboard Maestro",
	"Shortcut Sensei",
	"Keyboard Wizard",
	"Shortcut Grandmaster",
	"Keyboard Sage",
	"Shortcut Legend",
	"Keyboard Dojo Master",
}

// MaxLevel is the highest tabulated level. Experience keeps accumulating
// past the last threshold but the level clamps here.
const MaxLevel = 15

// LevelForExperience returns the highest level whose cumulative threshold
// is at most total. Never below 1, never above MaxLevel.
func LevelForExperience(total int) int {
	if total < 0 {
		return 1
	}
	level := 1
	for i, threshold := range levelThresholds {
		if total < threshold {
			break
		}
		level = i + 1
	}
	return level
}

// ThresholdFor returns the cumulative experience required to reach level.
// Levels beyond the table clamp to the last threshold.
func ThresholdFor(level int) int {
	if level <= 1 {
		return 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return levelThresholds[level-1]
}

// TitleFor returns the display title for a level.
func TitleFor(level int) string {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return levelTitles[level-1]
}

// levelProgress computes the derived display values for a total: experience
// earned within the current level, and the width of the gap to the next.
// At MaxLevel the gap is zero and current counts everything past the last
// threshold.
func levelProgress(total, level int) (current, gap int) {
	floor := ThresholdFor(level)
	current = total - floor
	if level >= MaxLevel {
		return current, 0
	}
	return current, ThresholdFor(level+1) - floor
}
