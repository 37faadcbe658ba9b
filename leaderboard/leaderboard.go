package leaderboard

import "keydojo/core"

// Entry represents one account's standing.
type Entry struct {
	Account    core.AccountID `json:"account_id"`
	Experience int64          `json:"experience"`
}

// Board abstracts leaderboard operations.
type Board interface {
	Update(account core.AccountID, experience int64)
	Remove(account core.AccountID)
	TopN(n int) []Entry
	Get(account core.AccountID) (Entry, bool)
	Rank(account core.AccountID) (int, bool)
}
