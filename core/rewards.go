package core

// Experience rewards per activity.
const (
	ExperienceCompleteLesson    = 50
	ExperiencePerfectLesson     = 25 // additional, for 100% accuracy
	ExperienceCompleteModule    = 100
	ExperienceCompleteChallenge = 75
	ExperienceDailyStreak       = 10
	ExperienceWeeklyStreak      = 50  // additional, every 7th day
	ExperienceMonthlyStreak     = 200 // additional, every 30th day
	ExperienceCorrectAnswer     = 5
	ExperienceComboBonus        = 2
)

// Currency (key gem) rewards per activity.
const (
	CurrencyDailyStreak       = 5
	CurrencyWeeklyStreak      = 15
	CurrencyMonthlyStreak     = 50
	CurrencyLevelUp           = 10
	CurrencyAchievement       = 20
	CurrencyPerfectLesson     = 3
	CurrencyChallengeComplete = 5
)

// Well-known source strings recorded in ledger history entries.
const (
	SourceLesson    = "lesson"
	SourceModule    = "module"
	SourceChallenge = "challenge"
	SourceStreak    = "streak"
	SourceLevelUp   = "level_up"
	SourcePurchase  = "item_purchase"
)
