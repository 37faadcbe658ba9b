package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"keydojo/core"
	"keydojo/curriculum"
)

// ProgressionService coordinates all snapshot mutations. Operations are
// serialized per account so a lost update can never drop a level-up or
// corrupt a ledger invariant. Events are published only after the storage
// write succeeds; a failed save leaves durable state untouched because
// mutations run on the loaded copy.
type ProgressionService struct {
	storage Storage
	bus     *EventBus
	clock   Clock
	locks   sync.Map // core.AccountID -> *sync.Mutex
}

func NewProgressionService(storage Storage, bus *EventBus, clock Clock) *ProgressionService {
	if storage == nil || bus == nil {
		panic("NewProgressionService requires non-nil storage and bus")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &ProgressionService{storage: storage, bus: bus, clock: clock}
}

// Subscribe convenience method.
func (p *ProgressionService) Subscribe(typ core.EventType, handler func(context.Context, core.Event)) func() {
	return p.bus.Subscribe(typ, handler)
}

// SubscribeAll registers a handler for every event type.
func (p *ProgressionService) SubscribeAll(handler func(context.Context, core.Event)) func() {
	return p.bus.SubscribeAll(handler)
}

func (p *ProgressionService) Publish(ctx context.Context, ev core.Event) {
	p.bus.Publish(ctx, ev)
}

func (p *ProgressionService) Close() { p.bus.Close() }

func (p *ProgressionService) lock(account core.AccountID) *sync.Mutex {
	if v, ok := p.locks.Load(account); ok {
		return v.(*sync.Mutex)
	}
	v, _ := p.locks.LoadOrStore(account, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// mutation applies a transition to the snapshot and returns the events to
// publish on success. persist=false means nothing changed (no write, no
// events).
type mutation func(now time.Time, snap *core.Snapshot) (events []core.Event, persist bool, err error)

func (p *ProgressionService) mutate(ctx context.Context, account core.AccountID, fn mutation) (core.Snapshot, error) {
	normalized, err := core.NormalizeAccountID(account)
	if err != nil {
		return core.Snapshot{}, err
	}
	mu := p.lock(normalized)
	mu.Lock()
	defer mu.Unlock()

	now := p.clock.Now()
	snap, found, err := p.storage.Load(ctx, normalized)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	if !found {
		snap = core.NewSnapshot(normalized, now)
	}

	events, persist, err := fn(now, &snap)
	if err != nil {
		return core.Snapshot{}, err
	}
	if !persist {
		return snap, nil
	}
	snap.Updated = now
	if err := p.storage.Save(ctx, snap); err != nil {
		return core.Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	for _, ev := range events {
		p.bus.Publish(ctx, ev)
	}
	return snap, nil
}

// Snapshot returns the current progression state, defaults included for
// accounts that have never been written. It never persists.
func (p *ProgressionService) Snapshot(ctx context.Context, account core.AccountID) (core.Snapshot, error) {
	normalized, err := core.NormalizeAccountID(account)
	if err != nil {
		return core.Snapshot{}, err
	}
	snap, found, err := p.storage.Load(ctx, normalized)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	if !found {
		snap = core.NewSnapshot(normalized, p.clock.Now())
	}
	return snap, nil
}

// applyExperience grants experience and settles the level-up side effect:
// every crossed level credits a fixed gem reward through the currency
// ledger, keeping both histories consistent.
func applyExperience(now time.Time, snap *core.Snapshot, amount int, source, description string) ([]core.Event, core.GrantResult, error) {
	res, err := snap.Experience.Grant(now, amount, source, description)
	if err != nil {
		return nil, core.GrantResult{}, err
	}
	events := []core.Event{
		core.NewExperienceGranted(now, snap.AccountID, amount, res.NewTotal, source),
	}
	for _, lvl := range res.LevelsGained {
		balance, err := snap.Currency.Credit(now, core.CurrencyLevelUp, core.SourceLevelUp,
			fmt.Sprintf("Reached level %d", lvl))
		if err != nil {
			return nil, core.GrantResult{}, err
		}
		events = append(events,
			core.NewLevelUp(now, snap.AccountID, lvl),
			core.NewCurrencyEarned(now, snap.AccountID, core.CurrencyLevelUp, balance, core.SourceLevelUp),
		)
	}
	return events, res, nil
}

// GrantExperience adds experience from an arbitrary source.
func (p *ProgressionService) GrantExperience(ctx context.Context, account core.AccountID, amount int, source, description string) (core.GrantResult, error) {
	var result core.GrantResult
	_, err := p.mutate(ctx, account, func(now time.Time, snap *core.Snapshot) ([]core.Event, bool, error) {
		events, res, err := applyExperience(now, snap, amount, source, description)
		if err != nil {
			return nil, false, err
		}
		result = res
		return events, true, nil
	})
	return result, err
}

// CompleteLesson grants the lesson reward, plus the perfect-accuracy
// bonuses when earned. Curriculum completion recording stays with the
// caller's progress collaborator.
func (p *ProgressionService) CompleteLesson(ctx context.Context, account core.AccountID, lessonID string, perfect bool) (core.GrantResult, error) {
	var result core.GrantResult
	_, err := p.mutate(ctx, account, func(now time.Time, snap *core.Snapshot) ([]core.Event, bool, error) {
		events, res, err := applyExperience(now, snap, core.ExperienceCompleteLesson, core.SourceLesson, lessonID)
		if err != nil {
			return nil, false, err
		}
		if perfect {
			more, res2, err := applyExperience(now, snap, core.ExperiencePerfectLesson, core.SourceLesson, lessonID+" (perfect)")
			if err != nil {
				return nil, false, err
			}
			events = append(events, more...)
			combined := core.GrantResult{
				NewTotal:  res2.NewTotal,
				NewLevel:  res2.NewLevel,
				LeveledUp: res.LeveledUp || res2.LeveledUp,
			}
			combined.LevelsGained = make([]int, 0, len(res.LevelsGained)+len(res2.LevelsGained))
			combined.LevelsGained = append(combined.LevelsGained, res.LevelsGained...)
			combined.LevelsGained = append(combined.LevelsGained, res2.LevelsGained...)
			res = combined
			balance, err := snap.Currency.Credit(now, core.CurrencyPerfectLesson, core.SourceLesson, lessonID+" (perfect)")
			if err != nil {
				return nil, false, err
			}
			events = append(events, core.NewCurrencyEarned(now, snap.AccountID, core.CurrencyPerfectLesson, balance, core.SourceLesson))
		}
		result = res
		return events, true, nil
	})
	return result, err
}

// CompleteModule grants the module completion reward.
func (p *ProgressionService) CompleteModule(ctx context.Context, account core.AccountID, moduleID string) (core.GrantResult, error) {
	return p.GrantExperience(ctx, account, core.ExperienceCompleteModule, core.SourceModule, moduleID)
}

// CompleteChallenge grants the challenge reward in experience and gems.
// Heart consumption for the attempt is a separate ConsumeHearts call made
// when the attempt starts.
func (p *ProgressionService) CompleteChallenge(ctx context.Context, account core.AccountID, challengeID string) (core.GrantResult, error) {
	var result core.GrantResult
	_, err := p.mutate(ctx, account, func(now time.Time, snap *core.Snapshot) ([]core.Event, bool, error) {
		events, res, err := applyExperience(now, snap, core.ExperienceCompleteChallenge, core.SourceChallenge, challengeID)
		if err != nil {
			return nil, false, err
		}
		balance, err := snap.Currency.Credit(now, core.CurrencyChallengeComplete, core.SourceChallenge, challengeID)
		if err != nil {
			return nil, false, err
		}
		events = append(events, core.NewCurrencyEarned(now, snap.AccountID, core.CurrencyChallengeComplete, balance, core.SourceChallenge))
		result = res
		return events, true, nil
	})
	return result, err
}

// AwardAchievement credits the fixed achievement gem reward.
func (p *ProgressionService) AwardAchievement(ctx context.Context, account core.AccountID, achievementID string) (int, error) {
	return p.EarnCurrency(ctx, account, core.CurrencyAchievement, "achievement", achievementID)
}

// PracticeOutcome reports the result of RecordPractice.
type PracticeOutcome struct {
	AlreadyPracticedToday bool     `json:"already_practiced_today"`
	Streak                int      `json:"streak"`
	ExperienceAwarded     int      `json:"experience_awarded"`
	CurrencyAwarded       int      `json:"currency_awarded"`
	Milestones            []string `json:"milestones,omitempty"`
}

// RecordPractice applies the streak transition and settles the reward
// schedule: the daily reward always, the weekly bonus on every 7th day and
// the monthly bonus on every 30th, all through the experience and currency
// ledgers. A repeat call on the same calendar day changes nothing.
func (p *ProgressionService) RecordPractice(ctx context.Context, account core.AccountID) (PracticeOutcome, error) {
	var outcome PracticeOutcome
	_, err := p.mutate(ctx, account, func(now time.Time, snap *core.Snapshot) ([]core.Event, bool, error) {
		res := snap.Streak.RecordPractice(now)
		if res.AlreadyPracticedToday {
			outcome = PracticeOutcome{AlreadyPracticedToday: true, Streak: res.Streak}
			return nil, false, nil
		}
		outcome = PracticeOutcome{Streak: res.Streak}
		events := []core.Event{core.NewPracticeRecorded(now, snap.AccountID, res.Streak)}

		// Each reward tier settles as its own grant and credit so the
		// ledgers carry one entry per bonus, not a merged lump sum.
		type reward struct {
			experience int
			currency   int
			desc       string
		}
		rewards := []reward{
			{core.ExperienceDailyStreak, core.CurrencyDailyStreak, fmt.Sprintf("Daily streak day %d", res.Streak)},
		}
		if res.WeeklyMilestone {
			rewards = append(rewards, reward{core.ExperienceWeeklyStreak, core.CurrencyWeeklyStreak,
				fmt.Sprintf("Weekly streak bonus (day %d)", res.Streak)})
			outcome.Milestones = append(outcome.Milestones, "weekly")
			events = append(events, core.NewStreakMilestone(now, snap.AccountID, res.Streak, "weekly"))
		}
		if res.MonthlyMilestone {
			rewards = append(rewards, reward{core.ExperienceMonthlyStreak, core.CurrencyMonthlyStreak,
				fmt.Sprintf("Monthly streak bonus (day %d)", res.Streak)})
			outcome.Milestones = append(outcome.Milestones, "monthly")
			events = append(events, core.NewStreakMilestone(now, snap.AccountID, res.Streak, "monthly"))
		}

		for _, r := range rewards {
			xpEvents, _, err := applyExperience(now, snap, r.experience, core.SourceStreak, r.desc)
			if err != nil {
				return nil, false, err
			}
			events = append(events, xpEvents...)

			balance, err := snap.Currency.Credit(now, r.currency, core.SourceStreak, r.desc)
			if err != nil {
				return nil, false, err
			}
			events = append(events, core.NewCurrencyEarned(now, snap.AccountID, r.currency, balance, core.SourceStreak))

			outcome.ExperienceAwarded += r.experience
			outcome.CurrencyAwarded += r.currency
		}
		return events, true, nil
	})
	return outcome, err
}

// ConsumeStreakFreeze spends one streak freeze to cover a single missed
// day. It is always an explicit caller action, never automatic.
func (p *ProgressionService) ConsumeStreakFreeze(ctx context.Context, account core.AccountID) (core.Snapshot, error) {
	return p.mutate(ctx, account, func(now time.Time, snap *core.Snapshot) ([]core.Event, bool, error) {
		if err := snap.Streak.ConsumeFreeze(now); err != nil {
			return nil, false, err
		}
		ev := core.NewFreezeConsumed(now, snap.AccountID, snap.Streak.Current, snap.Streak.FreezesAvailable)
		return []core.Event{ev}, true, nil
	})
}

// ConsumeHearts spends hearts for a challenge attempt.
func (p *ProgressionService) ConsumeHearts(ctx context.Context, account core.AccountID, count int) (core.Snapshot, error) {
	return p.mutate(ctx, account, func(now time.Time, snap *core.Snapshot) ([]core.Event, bool, error) {
		if err := snap.Hearts.Consume(now, count); err != nil {
			return nil, false, err
		}
		ev := core.NewHeartsConsumed(now, snap.AccountID, count, snap.Hearts.Current)
		return []core.Event{ev}, true, nil
	})
}

// RegenerateHearts credits hearts for elapsed time. Safe to call on every
// client poll; repeated calls never double-credit.
func (p *ProgressionService) RegenerateHearts(ctx context.Context, account core.AccountID) (core.Snapshot, int, error) {
	added := 0
	snap, err := p.mutate(ctx, account, func(now time.Time, snap *core.Snapshot) ([]core.Event, bool, error) {
		added = snap.Hearts.Regenerate(now)
		if added == 0 {
			return nil, true, nil // persist anyway: the due time may have been (re)computed
		}
		ev := core.NewHeartsRegenerated(now, snap.AccountID, added, snap.Hearts.Current)
		return []core.Event{ev}, true, nil
	})
	return snap, added, err
}

// GrantHearts is an administrative top-up, clamped at the maximum.
func (p *ProgressionService) GrantHearts(ctx context.Context, account core.AccountID, count int) (core.Snapshot, error) {
	return p.mutate(ctx, account, func(now time.Time, snap *core.Snapshot) ([]core.Event, bool, error) {
		added, err := snap.Hearts.Grant(count)
		if err != nil {
			return nil, false, err
		}
		ev := core.NewHeartsGranted(now, snap.AccountID, added, snap.Hearts.Current)
		return []core.Event{ev}, true, nil
	})
}

// SetUnlimitedHearts toggles premium (unlimited) mode.
func (p *ProgressionService) SetUnlimitedHearts(ctx context.Context, account core.AccountID, unlimited bool) (core.Snapshot, error) {
	return p.mutate(ctx, account, func(now time.Time, snap *core.Snapshot) ([]core.Event, bool, error) {
		snap.Hearts.SetUnlimited(now, unlimited)
		return nil, true, nil
	})
}

// EarnCurrency credits gems from an arbitrary source and returns the new
// balance.
func (p *ProgressionService) EarnCurrency(ctx context.Context, account core.AccountID, amount int, source, description string) (int, error) {
	balance := 0
	_, err := p.mutate(ctx, account, func(now time.Time, snap *core.Snapshot) ([]core.Event, bool, error) {
		b, err := snap.Currency.Credit(now, amount, source, description)
		if err != nil {
			return nil, false, err
		}
		balance = b
		ev := core.NewCurrencyEarned(now, snap.AccountID, amount, b, source)
		return []core.Event{ev}, true, nil
	})
	return balance, err
}

// SpendCurrency debits gems. A spend over the balance is rejected whole.
func (p *ProgressionService) SpendCurrency(ctx context.Context, account core.AccountID, amount int, source, description string) (int, error) {
	balance := 0
	_, err := p.mutate(ctx, account, func(now time.Time, snap *core.Snapshot) ([]core.Event, bool, error) {
		b, err := snap.Currency.Debit(now, amount, source, description)
		if err != nil {
			return nil, false, err
		}
		balance = b
		ev := core.NewCurrencySpent(now, snap.AccountID, amount, b, source)
		return []core.Event{ev}, true, nil
	})
	return balance, err
}

// PurchaseItem debits the catalog price and applies the item effect in one
// serialized operation: a failed debit leaves everything untouched.
func (p *ProgressionService) PurchaseItem(ctx context.Context, account core.AccountID, item core.ItemID) (core.Snapshot, error) {
	return p.mutate(ctx, account, func(now time.Time, snap *core.Snapshot) ([]core.Event, bool, error) {
		def, ok := core.Catalog[item]
		if !ok {
			return nil, false, fmt.Errorf("%w: %q", core.ErrUnknownItem, item)
		}
		balance, err := snap.Currency.Debit(now, def.Price, core.SourcePurchase, "Purchased "+def.Name)
		if err != nil {
			return nil, false, err
		}
		switch item {
		case core.ItemStreakFreeze:
			if err := snap.Streak.AddFreezes(1); err != nil {
				return nil, false, err
			}
		case core.ItemHeartRefill:
			snap.Hearts.Refill()
		}
		events := []core.Event{
			core.NewCurrencySpent(now, snap.AccountID, def.Price, balance, core.SourcePurchase),
			core.NewItemPurchased(now, snap.AccountID, item, def.Price, balance),
		}
		return events, true, nil
	})
}

// Reset restores the account to defaults (account wipe / testing).
func (p *ProgressionService) Reset(ctx context.Context, account core.AccountID) (core.Snapshot, error) {
	return p.mutate(ctx, account, func(now time.Time, snap *core.Snapshot) ([]core.Event, bool, error) {
		*snap = core.NewSnapshot(snap.AccountID, now)
		return []core.Event{core.NewSnapshotReset(now, snap.AccountID)}, true, nil
	})
}

// Reachability evaluates the whole unlock graph for an account, combining
// the progression snapshot with the completed-node set supplied by the
// progress collaborator.
func (p *ProgressionService) Reachability(ctx context.Context, account core.AccountID, graph *curriculum.Graph, source curriculum.CompletionSource) ([]curriculum.Reachability, error) {
	snap, err := p.Snapshot(ctx, account)
	if err != nil {
		return nil, err
	}
	var completed map[curriculum.NodeID]struct{}
	if source != nil {
		completed, err = source.Completed(ctx, snap.AccountID)
		if err != nil {
			return nil, fmt.Errorf("load completed nodes: %w", err)
		}
	}
	return graph.EvaluateAll(snap, completed), nil
}
