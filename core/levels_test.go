package core

import "testing"

func TestLevelForExperience(t *testing.T) {
	cases := []struct {
		total int
		level int
	}{
		{-5, 1},
		{0, 1},
		{99, 1},
		{100, 2},
		{120, 2},
		{250, 3},
		{24999, 14},
		{25000, 15},
		{1_000_000, 15}, // clamps at the last tabulated level
	}
	for _, c := range cases {
		if got := LevelForExperience(c.total); got != c.level {
			t.Fatalf("LevelForExperience(%d) = %d, want %d", c.total, got, c.level)
		}
	}
}

func TestThresholdFor(t *testing.T) {
	if ThresholdFor(1) != 0 {
		t.Fatal("level 1 starts at 0")
	}
	if ThresholdFor(2) != 100 {
		t.Fatal("level 2 threshold should be 100")
	}
	if ThresholdFor(MaxLevel) != 25000 {
		t.Fatalf("max level threshold = %d", ThresholdFor(MaxLevel))
	}
	if ThresholdFor(MaxLevel+10) != ThresholdFor(MaxLevel) {
		t.Fatal("thresholds beyond the table clamp to the last entry")
	}
}

func TestMaxLevelMatchesTables(t *testing.T) {
	if MaxLevel != len(levelThresholds) {
		t.Fatalf("MaxLevel = %d, threshold table has %d entries", MaxLevel, len(levelThresholds))
	}
	if MaxLevel != len(levelTitles) {
		t.Fatalf("MaxLevel = %d, title table has %d entries", MaxLevel, len(levelTitles))
	}
}

func TestThresholdsAreAscending(t *testing.T) {
	for lvl := 2; lvl <= MaxLevel; lvl++ {
		if ThresholdFor(lvl) <= ThresholdFor(lvl-1) {
			t.Fatalf("threshold for level %d not above level %d", lvl, lvl-1)
		}
	}
}

func TestTitleFor(t *testing.T) {
	if TitleFor(1) != "Keyboard Novice" {
		t.Fatalf("got %q", TitleFor(1))
	}
	if TitleFor(MaxLevel) != "Keyboard Dojo Master" {
		t.Fatalf("got %q", TitleFor(MaxLevel))
	}
	if TitleFor(99) != TitleFor(MaxLevel) {
		t.Fatal("titles past the table clamp to the last one")
	}
}
