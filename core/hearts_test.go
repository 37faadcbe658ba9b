package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHearts() HeartsState {
	return NewSnapshot("tester", testTime).Hearts
}

func TestConsumeDecrementsAndSchedulesRegeneration(t *testing.T) {
	h := newHearts()

	require.NoError(t, h.Consume(testTime, 1))
	assert.Equal(t, 4, h.Current)
	require.NotNil(t, h.NextRegenerationDue)
	assert.Equal(t, testTime.Add(RegenerationInterval), *h.NextRegenerationDue)
	assert.Equal(t, testTime, h.LastRegeneration)
}

func TestConsumeInsufficientLeavesStateUnchanged(t *testing.T) {
	h := newHearts()
	h.Current = 1

	err := h.Consume(testTime, 2)
	require.ErrorIs(t, err, ErrInsufficientHearts)
	var detail *InsufficientHeartsError
	require.ErrorAs(t, err, &detail)
	assert.Equal(t, 1, detail.Current)
	assert.Equal(t, 2, detail.Requested)
	assert.Equal(t, 1, h.Current)
}

func TestConsumeUnlimitedIsNoOp(t *testing.T) {
	h := newHearts()
	h.SetUnlimited(testTime, true)

	require.NoError(t, h.Consume(testTime, 3))
	assert.Equal(t, h.Max, h.Current)
	assert.Nil(t, h.NextRegenerationDue)
}

func TestRegenerateCreditsElapsedIntervals(t *testing.T) {
	h := newHearts()
	require.NoError(t, h.Consume(testTime, 3))
	assert.Equal(t, 2, h.Current)

	later := testTime.Add(2*RegenerationInterval + 5*time.Minute)
	added := h.Regenerate(later)
	assert.Equal(t, 2, added)
	assert.Equal(t, 4, h.Current)
	assert.Equal(t, later, h.LastRegeneration)
	require.NotNil(t, h.NextRegenerationDue)

	// same instant again must not double-credit
	assert.Zero(t, h.Regenerate(later))
	assert.Equal(t, 4, h.Current)
}

func TestRegenerateNeverExceedsMax(t *testing.T) {
	h := newHearts()
	require.NoError(t, h.Consume(testTime, 2))

	added := h.Regenerate(testTime.Add(24 * time.Hour))
	assert.Equal(t, 2, added)
	assert.Equal(t, h.Max, h.Current)
	assert.Nil(t, h.NextRegenerationDue)
}

func TestGrantClampsToMax(t *testing.T) {
	h := newHearts()
	require.NoError(t, h.Consume(testTime, 1))

	added, err := h.Grant(10)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, h.Max, h.Current)
	assert.Nil(t, h.NextRegenerationDue)

	_, err = h.Grant(0)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSetUnlimitedRoundTrip(t *testing.T) {
	h := newHearts()
	require.NoError(t, h.Consume(testTime, 4))
	assert.Equal(t, 1, h.Current)

	h.SetUnlimited(testTime, true)
	assert.Equal(t, h.Max, h.Current)

	// toggling off resumes accounting from the toggle instant
	off := testTime.Add(time.Hour)
	h.SetUnlimited(off, false)
	assert.Equal(t, h.Max, h.Current)
	assert.Equal(t, off, h.LastRegeneration)
	require.NoError(t, h.Consume(off, 1))
	assert.Equal(t, RegenerationInterval, h.TimeUntilNext(off))
}
