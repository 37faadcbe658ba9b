package core

import "time"

// MaxHearts is the default heart capacity for free accounts.
const MaxHearts = 5

// RegenerationInterval is how long one heart takes to regenerate.
const RegenerationInterval = 30 * time.Minute

// HeartsState is the bounded life counter. Two effective modes: limited
// (normal accounting) and unlimited (premium; consume is a no-op).
type HeartsState struct {
	Current             int        `json:"current"`
	Max                 int        `json:"max"`
	LastRegeneration    time.Time  `json:"last_regeneration"`
	NextRegenerationDue *time.Time `json:"next_regeneration_due,omitempty"`
	Unlimited           bool       `json:"unlimited"`
}

// Consume spends count hearts. In unlimited mode it always succeeds without
// touching the counter. In limited mode it requires current >= count and
// fails without mutating state otherwise.
func (h *HeartsState) Consume(now time.Time, count int) error {
	if count <= 0 {
		return ErrInvalidAmount
	}
	if h.Unlimited {
		return nil
	}
	if h.Current < count {
		return &InsufficientHeartsError{Current: h.Current, Requested: count}
	}
	wasFull := h.Current == h.Max
	h.Current -= count
	if wasFull {
		// Regeneration was idle while at capacity; anchor it to the
		// consumption instant.
		h.LastRegeneration = now
	}
	h.scheduleNext()
	return nil
}

// Regenerate credits hearts for elapsed time: one heart per full
// RegenerationInterval since the last anchor, clamped at max. The anchor
// always advances to now after crediting, so repeated calls with the same
// now never double-credit. Returns the number of hearts added.
func (h *HeartsState) Regenerate(now time.Time) int {
	if h.Unlimited || h.Current >= h.Max {
		h.NextRegenerationDue = nil
		return 0
	}
	elapsed := now.Sub(h.LastRegeneration)
	toAdd := int(elapsed / RegenerationInterval)
	if toAdd <= 0 {
		h.scheduleNext()
		return 0
	}
	before := h.Current
	h.Current += toAdd
	if h.Current > h.Max {
		h.Current = h.Max
	}
	h.LastRegeneration = now
	h.scheduleNext()
	return h.Current - before
}

// Grant is an administrative top-up (store purchase, reward). It clamps to
// max and returns the number of hearts actually added.
func (h *HeartsState) Grant(count int) (int, error) {
	if count <= 0 {
		return 0, ErrInvalidAmount
	}
	before := h.Current
	h.Current += count
	if h.Current > h.Max {
		h.Current = h.Max
	}
	h.scheduleNext()
	return h.Current - before, nil
}

// Refill restores all hearts immediately.
func (h *HeartsState) Refill() {
	h.Current = h.Max
	h.NextRegenerationDue = nil
}

// SetUnlimited toggles premium mode. Turning it on fills hearts
// immediately; turning it off leaves the counter as-is and resumes normal
// regeneration accounting from the toggle instant.
func (h *HeartsState) SetUnlimited(now time.Time, unlimited bool) {
	if h.Unlimited == unlimited {
		return
	}
	h.Unlimited = unlimited
	if unlimited {
		h.Current = h.Max
		h.NextRegenerationDue = nil
		return
	}
	h.LastRegeneration = now
	h.scheduleNext()
}

// TimeUntilNext returns how long until the next heart regenerates, or zero
// when at capacity or unlimited.
func (h HeartsState) TimeUntilNext(now time.Time) time.Duration {
	if h.NextRegenerationDue == nil {
		return 0
	}
	d := h.NextRegenerationDue.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

func (h *HeartsState) scheduleNext() {
	if h.Unlimited || h.Current >= h.Max {
		h.NextRegenerationDue = nil
		return
	}
	due := h.LastRegeneration.Add(RegenerationInterval)
	h.NextRegenerationDue = &due
}
