package sdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Option configures the Client.
type Option func(*Client)

// Client provides typed access to the KeyDojo progression HTTP + WebSocket API.
type Client struct {
	baseURL    string
	wsURL      string
	httpClient *http.Client
	headers    http.Header
}

// NewClient constructs a new SDK client targeting the given baseURL (e.g., http://localhost:8080/api).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("baseURL is required")
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	c := &Client{
		baseURL:    baseURL,
		wsURL:      deriveWSURL(baseURL),
		httpClient: http.DefaultClient,
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithAuthToken adds an Authorization: Bearer token header to all requests (HTTP + WS).
func WithAuthToken(token string) Option {
	return func(c *Client) {
		if strings.TrimSpace(token) != "" {
			c.headers.Set("Authorization", "Bearer "+token)
		}
	}
}

// WithAPIKey adds an X-API-Key header.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		if strings.TrimSpace(key) != "" {
			c.headers.Set("X-API-Key", key)
		}
	}
}

// WithHeader sets an arbitrary header applied to HTTP and WS calls.
func WithHeader(k, v string) Option {
	return func(c *Client) {
		if k != "" {
			c.headers.Set(k, v)
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return err
	}
	c.applyHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeJSON(resp, out)
}

func accountPath(account, suffix string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", ErrEmptyAccountID
	}
	return "/accounts/" + url.PathEscape(account) + suffix, nil
}

// GetSnapshot fetches the full progression state for an account.
func (c *Client) GetSnapshot(ctx context.Context, account string) (Snapshot, error) {
	path, err := accountPath(account, "")
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := c.do(ctx, http.MethodGet, path, nil, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// GrantExperience adds experience and returns the grant result.
func (c *Client) GrantExperience(ctx context.Context, account string, amount int, source, description string) (GrantResult, error) {
	path, err := accountPath(account, "/experience")
	if err != nil {
		return GrantResult{}, err
	}
	q := url.Values{}
	q.Set("amount", fmt.Sprintf("%d", amount))
	if source != "" {
		q.Set("source", source)
	}
	if description != "" {
		q.Set("description", description)
	}
	var res GrantResult
	if err := c.do(ctx, http.MethodPost, path, q, &res); err != nil {
		return GrantResult{}, err
	}
	return res, nil
}

// CompleteLesson reports a finished lesson, optionally with perfect accuracy.
func (c *Client) CompleteLesson(ctx context.Context, account, lessonID string, perfect bool) (GrantResult, error) {
	path, err := accountPath(account, "/lessons/"+url.PathEscape(lessonID)+"/complete")
	if err != nil {
		return GrantResult{}, err
	}
	q := url.Values{}
	if perfect {
		q.Set("perfect", "true")
	}
	var res GrantResult
	if err := c.do(ctx, http.MethodPost, path, q, &res); err != nil {
		return GrantResult{}, err
	}
	return res, nil
}

// RecordPractice registers today's practice for streak accounting.
func (c *Client) RecordPractice(ctx context.Context, account string) (PracticeOutcome, error) {
	path, err := accountPath(account, "/practice")
	if err != nil {
		return PracticeOutcome{}, err
	}
	var outcome PracticeOutcome
	if err := c.do(ctx, http.MethodPost, path, nil, &outcome); err != nil {
		return PracticeOutcome{}, err
	}
	return outcome, nil
}

// ConsumeStreakFreeze spends a streak freeze to cover yesterday's missed day.
func (c *Client) ConsumeStreakFreeze(ctx context.Context, account string) (StreakState, error) {
	path, err := accountPath(account, "/streak/freeze")
	if err != nil {
		return StreakState{}, err
	}
	var streak StreakState
	if err := c.do(ctx, http.MethodPost, path, nil, &streak); err != nil {
		return StreakState{}, err
	}
	return streak, nil
}

// ConsumeHearts spends hearts for an attempt.
func (c *Client) ConsumeHearts(ctx context.Context, account string, count int) (HeartsState, error) {
	path, err := accountPath(account, "/hearts/consume")
	if err != nil {
		return HeartsState{}, err
	}
	q := url.Values{}
	q.Set("count", fmt.Sprintf("%d", count))
	var hearts HeartsState
	if err := c.do(ctx, http.MethodPost, path, q, &hearts); err != nil {
		return HeartsState{}, err
	}
	return hearts, nil
}

// RegenerateHearts settles time-based heart regeneration.
func (c *Client) RegenerateHearts(ctx context.Context, account string) (HeartsState, int, error) {
	path, err := accountPath(account, "/hearts/regenerate")
	if err != nil {
		return HeartsState{}, 0, err
	}
	var body struct {
		Added  int         `json:"added"`
		Hearts HeartsState `json:"hearts"`
	}
	if err := c.do(ctx, http.MethodPost, path, nil, &body); err != nil {
		return HeartsState{}, 0, err
	}
	return body.Hearts, body.Added, nil
}

// EarnCurrency credits gems and returns the new balance.
func (c *Client) EarnCurrency(ctx context.Context, account string, amount int, source, description string) (int, error) {
	return c.currencyOp(ctx, account, "earn", amount, source, description)
}

// SpendCurrency debits gems and returns the new balance.
func (c *Client) SpendCurrency(ctx context.Context, account string, amount int, source, description string) (int, error) {
	return c.currencyOp(ctx, account, "spend", amount, source, description)
}

func (c *Client) currencyOp(ctx context.Context, account, op string, amount int, source, description string) (int, error) {
	path, err := accountPath(account, "/currency/"+op)
	if err != nil {
		return 0, err
	}
	q := url.Values{}
	q.Set("amount", fmt.Sprintf("%d", amount))
	if source != "" {
		q.Set("source", source)
	}
	if description != "" {
		q.Set("description", description)
	}
	var body struct {
		Balance int `json:"balance"`
	}
	if err := c.do(ctx, http.MethodPost, path, q, &body); err != nil {
		return 0, err
	}
	return body.Balance, nil
}

// PurchaseItem buys a store item and returns the updated snapshot.
func (c *Client) PurchaseItem(ctx context.Context, account, itemID string) (Snapshot, error) {
	path, err := accountPath(account, "/store/"+url.PathEscape(itemID))
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := c.do(ctx, http.MethodPost, path, nil, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Unlocks evaluates the curriculum unlock graph for an account.
func (c *Client) Unlocks(ctx context.Context, account string) ([]Reachability, error) {
	path, err := accountPath(account, "/unlocks")
	if err != nil {
		return nil, err
	}
	var body struct {
		Nodes []Reachability `json:"nodes"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &body); err != nil {
		return nil, err
	}
	return body.Nodes, nil
}

// Leaderboard returns the top n accounts by experience.
func (c *Client) Leaderboard(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	q := url.Values{}
	if n > 0 {
		q.Set("n", fmt.Sprintf("%d", n))
	}
	var body struct {
		Entries []LeaderboardEntry `json:"entries"`
	}
	if err := c.do(ctx, http.MethodGet, "/leaderboard", q, &body); err != nil {
		return nil, err
	}
	return body.Entries, nil
}

// Health probes /healthz and returns status + storage check.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var hs HealthStatus
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, &hs); err != nil {
		return HealthStatus{}, err
	}
	return hs, nil
}

// SubscribeEvents connects to the WebSocket stream and emits Event values.
// An empty account streams every account's events. The returned channel
// closes when ctx is done or the connection drops.
func (c *Client) SubscribeEvents(ctx context.Context, account string) (<-chan Event, error) {
	if c.wsURL == "" {
		return nil, errors.New("wsURL is not set; ensure baseURL is http/https")
	}
	wsURL := c.wsURL
	if account != "" {
		wsURL += "?account=" + url.QueryEscape(account)
	}
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, wsURL, c.headers)
	if err != nil {
		return nil, err
	}

	out := make(chan Event, 32)
	go func() {
		defer close(out)
		defer conn.Close()
		for {
			select {
			case <-ctx.Done():
				return
			default:
				var evt Event
				if err := conn.ReadJSON(&evt); err != nil {
					return
				}
				select {
				case out <- evt:
				default:
					// drop if consumer is slow
				}
			}
		}
	}()
	return out, nil
}

func (c *Client) applyHeaders(r *http.Request) {
	for k, vals := range c.headers {
		for _, v := range vals {
			r.Header.Add(k, v)
		}
	}
}

func deriveWSURL(httpBase string) string {
	u, err := url.Parse(httpBase)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		// leave as-is for custom schemes
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String()
}
