package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestRecordPracticeFirstEver(t *testing.T) {
	var s StreakState
	res := s.RecordPractice(day(0))

	assert.False(t, res.AlreadyPracticedToday)
	assert.Equal(t, 1, res.Streak)
	assert.Equal(t, 1, s.Longest)
	assert.Equal(t, "2024-03-01", s.LastPracticeDay)
	require.Len(t, s.History, 1)
	assert.True(t, s.History[0].Practiced)
}

func TestRecordPracticeSameDayIsNoOp(t *testing.T) {
	var s StreakState
	s.RecordPractice(day(0))

	// later the same calendar day
	res := s.RecordPractice(day(0).Add(7 * time.Hour))
	assert.True(t, res.AlreadyPracticedToday)
	assert.Equal(t, 1, res.Streak)
	assert.Len(t, s.History, 1)
}

func TestRecordPracticeConsecutiveDaysIncrement(t *testing.T) {
	var s StreakState
	for i := 0; i < 5; i++ {
		res := s.RecordPractice(day(i))
		assert.Equal(t, i+1, res.Streak)
	}
	assert.Equal(t, 5, s.Current)
	assert.Equal(t, 5, s.Longest)
}

func TestRecordPracticeGapResets(t *testing.T) {
	var s StreakState
	s.RecordPractice(day(0))
	s.RecordPractice(day(1))

	res := s.RecordPractice(day(3)) // 2-day gap
	assert.Equal(t, 1, res.Streak)
	assert.Equal(t, 2, s.Longest)
}

func TestMilestoneFlags(t *testing.T) {
	var s StreakState
	for i := 0; i < 30; i++ {
		res := s.RecordPractice(day(i))
		assert.Equal(t, res.Streak%7 == 0, res.WeeklyMilestone, "day %d", i)
		assert.Equal(t, res.Streak%30 == 0, res.MonthlyMilestone, "day %d", i)
	}
}

func TestConsumeFreezeCoversSingleMissedDay(t *testing.T) {
	var s StreakState
	s.RecordPractice(day(0))
	s.RecordPractice(day(1))
	require.NoError(t, s.AddFreezes(1))

	// day 2 missed; freeze consumed on day 3 before practicing
	require.NoError(t, s.ConsumeFreeze(day(3)))
	assert.Zero(t, s.FreezesAvailable)
	assert.Equal(t, "2024-03-03", s.LastPracticeDay)
	frozen := s.History[len(s.History)-1]
	assert.True(t, frozen.Frozen)
	assert.False(t, frozen.Practiced)

	res := s.RecordPractice(day(3))
	assert.Equal(t, 3, res.Streak, "streak survives the frozen day")
}

func TestConsumeFreezeRejections(t *testing.T) {
	var s StreakState
	s.RecordPractice(day(0))

	err := s.ConsumeFreeze(day(2))
	require.ErrorIs(t, err, ErrNoFreezeAvailable)

	require.NoError(t, s.AddFreezes(2))

	// no day missed yet
	err = s.ConsumeFreeze(day(1))
	require.ErrorIs(t, err, ErrFreezeNotApplicable)

	// more than one day missed
	err = s.ConsumeFreeze(day(4))
	require.ErrorIs(t, err, ErrFreezeNotApplicable)
	assert.Equal(t, 2, s.FreezesAvailable)
}

func TestDayBoundaryIsUTC(t *testing.T) {
	var s StreakState
	// 23:30 UTC and 00:30 UTC next day are different calendar days
	late := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	early := time.Date(2024, 3, 2, 0, 30, 0, 0, time.UTC)

	s.RecordPractice(late)
	res := s.RecordPractice(early)
	assert.False(t, res.AlreadyPracticedToday)
	assert.Equal(t, 2, res.Streak)
}
