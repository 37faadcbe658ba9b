package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Snapshot mirrors the public JSON surface of an account's progression state.
type Snapshot struct {
	AccountID  string          `json:"account_id"`
	Experience ExperienceState `json:"experience"`
	Hearts     HeartsState     `json:"hearts"`
	Currency   CurrencyState   `json:"currency"`
	Streak     StreakState     `json:"streak"`
	Updated    time.Time       `json:"updated"`
}

type ExperienceState struct {
	Total        int `json:"total"`
	Level        int `json:"level"`
	CurrentLevel int `json:"current_level_experience"`
	NextLevelGap int `json:"next_level_gap"`
}

type HeartsState struct {
	Current             int        `json:"current"`
	Max                 int        `json:"max"`
	NextRegenerationDue *time.Time `json:"next_regeneration_due,omitempty"`
	Unlimited           bool       `json:"unlimited"`
}

type CurrencyState struct {
	Balance     int `json:"balance"`
	TotalEarned int `json:"total_earned"`
}

type StreakState struct {
	Current          int    `json:"current"`
	Longest          int    `json:"longest"`
	LastPracticeDay  string `json:"last_practice_day,omitempty"`
	FreezesAvailable int    `json:"freezes_available"`
}

// GrantResult reports an experience grant.
type GrantResult struct {
	NewTotal     int   `json:"new_total"`
	NewLevel     int   `json:"new_level"`
	LeveledUp    bool  `json:"leveled_up"`
	LevelsGained []int `json:"levels_gained,omitempty"`
}

// PracticeOutcome reports a daily practice recording.
type PracticeOutcome struct {
	AlreadyPracticedToday bool     `json:"already_practiced_today"`
	Streak                int      `json:"streak"`
	ExperienceAwarded     int      `json:"experience_awarded"`
	CurrencyAwarded       int      `json:"currency_awarded"`
	Milestones            []string `json:"milestones,omitempty"`
}

// Reachability describes one curriculum node's unlock status.
type Reachability struct {
	NodeID           string   `json:"node_id"`
	Reachable        bool     `json:"reachable"`
	MissingNodes     []string `json:"missing_nodes,omitempty"`
	UnknownNodes     []string `json:"unknown_nodes,omitempty"`
	ExperienceNeeded int      `json:"experience_needed,omitempty"`
	LevelNeeded      int      `json:"level_needed,omitempty"`
}

// LeaderboardEntry is one account's standing.
type LeaderboardEntry struct {
	Account    string `json:"account_id"`
	Experience int64  `json:"experience"`
}

// Event mirrors the server's progression event JSON for the WebSocket stream.
type Event struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Time     time.Time      `json:"time"`
	Account  string         `json:"account_id"`
	Amount   int            `json:"amount,omitempty"`
	Total    int            `json:"total,omitempty"`
	Balance  int            `json:"balance,omitempty"`
	Level    int            `json:"level,omitempty"`
	Hearts   int            `json:"hearts,omitempty"`
	Streak   int            `json:"streak,omitempty"`
	Source   string         `json:"source,omitempty"`
	Item     string         `json:"item,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// HealthStatus describes the /healthz response.
type HealthStatus struct {
	Status string                 `json:"status"`
	Checks map[string]interface{} `json:"checks"`
}

// APIError is the decoded error payload from a failed request.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

func decodeJSON(resp *http.Response, target any) error {
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Code == "" {
			return fmt.Errorf("request failed: status %d", resp.StatusCode)
		}
		return apiErr
	}
	if target == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

// ErrEmptyAccountID is returned when the account id is empty.
var ErrEmptyAccountID = errors.New("account id is required")
