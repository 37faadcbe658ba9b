package httpapi

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	wsadapter "keydojo/adapters/websocket"
	"keydojo/core"
	"keydojo/curriculum"
	"keydojo/engine"
	"keydojo/leaderboard"
	"keydojo/realtime"
)

// Options configures the HTTP API surface.
type Options struct {
	// PathPrefix, if set, is prepended to all routes (e.g., "/api").
	PathPrefix string
	// AllowCORSOrigin, if non-empty, enables basic CORS with the given origin (use "*" for any).
	AllowCORSOrigin string
	// APIKeys, if non-empty, enables static API key auth via Authorization: Bearer or X-API-Key.
	APIKeys []string
	// RateLimitEnabled toggles rate limiting.
	RateLimitEnabled bool
	// RateLimitRPM is the allowed requests per minute per client key.
	RateLimitRPM int
	// RateLimitBurst defines burst capacity.
	RateLimitBurst int
	// Graph, if set, exposes unlock evaluation under /accounts/{id}/unlocks.
	Graph *curriculum.Graph
	// Completion supplies completed curriculum nodes for unlock evaluation.
	Completion curriculum.CompletionSource
	// Board, if set, exposes /leaderboard.
	Board leaderboard.Board
}

// NewMux builds an http.Handler exposing the progression REST API and WebSocket stream.
// Routes:
//   - GET    {prefix}/accounts/{id}
//   - DELETE {prefix}/accounts/{id}
//   - POST   {prefix}/accounts/{id}/experience?amount=50&source=lesson
//   - POST   {prefix}/accounts/{id}/lessons/{lesson}/complete?perfect=true
//   - POST   {prefix}/accounts/{id}/modules/{module}/complete
//   - POST   {prefix}/accounts/{id}/challenges/{challenge}/complete
//   - POST   {prefix}/accounts/{id}/achievements/{achievement}
//   - POST   {prefix}/accounts/{id}/practice
//   - POST   {prefix}/accounts/{id}/streak/freeze
//   - POST   {prefix}/accounts/{id}/hearts/{consume|regenerate|grant}
//   - POST   {prefix}/accounts/{id}/currency/{earn|spend}?amount=5&source=bonus
//   - POST   {prefix}/accounts/{id}/store/{item}
//   - GET    {prefix}/accounts/{id}/unlocks
//   - GET    {prefix}/store
//   - GET    {prefix}/leaderboard?n=10
//   - GET    {prefix}/healthz
//   - WS     {prefix}/ws
func NewMux(svc *engine.ProgressionService, hub *realtime.Hub, opts Options) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc(withPrefix(opts.PathPrefix, "/healthz"), func(w http.ResponseWriter, r *http.Request) {
		healthCheck(w, r, svc)
	})

	// WebSocket events
	if hub != nil {
		mux.Handle(withPrefix(opts.PathPrefix, "/ws"), wsadapter.Handler(hub))
	}

	// Store catalog
	mux.HandleFunc(withPrefix(opts.PathPrefix, "/store"), func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
			return
		}
		writeJSON(w, core.CatalogItems())
	})

	// Leaderboard
	if opts.Board != nil {
		mux.HandleFunc(withPrefix(opts.PathPrefix, "/leaderboard"), func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
				return
			}
			n := 10
			if raw := r.URL.Query().Get("n"); raw != "" {
				v, err := strconv.Atoi(raw)
				if err != nil || v <= 0 {
					writeError(w, http.StatusBadRequest, "invalid_n", "n must be a positive integer", nil)
					return
				}
				n = v
			}
			writeJSON(w, map[string]any{"entries": opts.Board.TopN(n)})
		})
	}

	// Accounts API
	mux.HandleFunc(withPrefix(opts.PathPrefix, "/accounts/"), func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, opts.PathPrefix)
		if path == "" || path[0] != '/' {
			path = "/" + path
		}
		parts := split(path, '/')
		if len(parts) < 2 {
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
			return
		}
		account, err := core.NormalizeAccountID(core.AccountID(parts[1]))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_account", err.Error(), nil)
			return
		}
		handleAccount(w, r, svc, opts, account, parts[2:])
	})

	var handler http.Handler = mux
	if opts.AllowCORSOrigin != "" {
		handler = withCORS(handler, opts.AllowCORSOrigin)
	}
	if len(opts.APIKeys) > 0 {
		handler = withAPIKeyAuth(handler, opts.APIKeys)
	}
	if opts.RateLimitEnabled && opts.RateLimitRPM > 0 && opts.RateLimitBurst > 0 {
		handler = withRateLimit(handler, opts.RateLimitRPM, opts.RateLimitBurst)
	}
	return handler
}

func handleAccount(w http.ResponseWriter, r *http.Request, svc *engine.ProgressionService, opts Options, account core.AccountID, rest []string) {
	ctx := r.Context()

	if len(rest) == 0 {
		switch r.Method {
		case http.MethodGet:
			snap, err := svc.Snapshot(ctx, account)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, snap)
		case http.MethodDelete:
			snap, err := svc.Reset(ctx, account)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, snap)
		default:
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
		}
		return
	}

	// GET subresources
	if r.Method == http.MethodGet {
		if rest[0] == "unlocks" && opts.Graph != nil {
			result, err := svc.Reachability(ctx, account, opts.Graph, opts.Completion)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, map[string]any{"nodes": result})
			return
		}
		writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
		return
	}

	switch rest[0] {
	case "experience":
		amount, err := intQuery(r, "amount")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_amount", "amount must be an integer", nil)
			return
		}
		source := r.URL.Query().Get("source")
		if source == "" {
			source = core.SourceLesson
		}
		res, err := svc.GrantExperience(ctx, account, amount, source, r.URL.Query().Get("description"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, res)

	case "lessons":
		if len(rest) != 3 || rest[2] != "complete" {
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
			return
		}
		perfect, _ := strconv.ParseBool(r.URL.Query().Get("perfect"))
		res, err := svc.CompleteLesson(ctx, account, rest[1], perfect)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, res)

	case "modules":
		if len(rest) != 3 || rest[2] != "complete" {
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
			return
		}
		res, err := svc.CompleteModule(ctx, account, rest[1])
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, res)

	case "challenges":
		if len(rest) != 3 || rest[2] != "complete" {
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
			return
		}
		res, err := svc.CompleteChallenge(ctx, account, rest[1])
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, res)

	case "achievements":
		if len(rest) != 2 {
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
			return
		}
		balance, err := svc.AwardAchievement(ctx, account, rest[1])
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, map[string]any{"balance": balance})

	case "practice":
		outcome, err := svc.RecordPractice(ctx, account)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, outcome)

	case "streak":
		if len(rest) != 2 || rest[1] != "freeze" {
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
			return
		}
		snap, err := svc.ConsumeStreakFreeze(ctx, account)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, snap.Streak)

	case "hearts":
		if len(rest) != 2 {
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
			return
		}
		switch rest[1] {
		case "consume":
			count := queryCount(r)
			snap, err := svc.ConsumeHearts(ctx, account, count)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, snap.Hearts)
		case "regenerate":
			snap, added, err := svc.RegenerateHearts(ctx, account)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, map[string]any{"added": added, "hearts": snap.Hearts})
		case "grant":
			count := queryCount(r)
			snap, err := svc.GrantHearts(ctx, account, count)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, snap.Hearts)
		default:
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
		}

	case "currency":
		if len(rest) != 2 {
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
			return
		}
		amount, err := intQuery(r, "amount")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_amount", "amount must be an integer", nil)
			return
		}
		source := r.URL.Query().Get("source")
		description := r.URL.Query().Get("description")
		var balance int
		switch rest[1] {
		case "earn":
			balance, err = svc.EarnCurrency(ctx, account, amount, source, description)
		case "spend":
			balance, err = svc.SpendCurrency(ctx, account, amount, source, description)
		default:
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
			return
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, map[string]any{"balance": balance})

	case "store":
		if len(rest) != 2 {
			writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
			return
		}
		snap, err := svc.PurchaseItem(ctx, account, core.ItemID(rest[1]))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, snap)

	default:
		writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
	}
}

// Helpers

// healthCheck verifies the service is working properly
func healthCheck(w http.ResponseWriter, r *http.Request, svc *engine.ProgressionService) {
	ctx := r.Context()

	// A read against a probe account exercises storage without touching real data.
	_, err := svc.Snapshot(ctx, core.AccountID("healthcheck_probe"))

	status := map[string]any{
		"status": "healthy",
		"checks": map[string]any{
			"storage": "ok",
		},
	}

	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		status["status"] = "unhealthy"
		status["checks"].(map[string]any)["storage"] = "failed"
	} else {
		w.WriteHeader(http.StatusOK)
	}

	writeJSON(w, status)
}

func intQuery(r *http.Request, name string) (int, error) {
	return strconv.Atoi(r.URL.Query().Get(name))
}

// queryCount reads ?count=, defaulting to 1.
func queryCount(r *http.Request) int {
	if raw := r.URL.Query().Get("count"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return 1
}

func withPrefix(prefix, path string) string {
	if prefix == "" || prefix == "/" {
		return path
	}
	if prefix[len(prefix)-1] == '/' {
		return prefix[:len(prefix)-1] + path
	}
	return prefix + path
}

func split(p string, sep rune) []string {
	var parts []string
	cur := make([]rune, 0, len(p))
	// trim leading '/'
	for len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	for _, r := range p {
		if r == sep {
			if len(cur) > 0 {
				parts = append(parts, string(cur))
				cur = cur[:0]
			}
			continue
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		parts = append(parts, string(cur))
	}
	return parts
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{Code: code, Message: msg, Details: details})
}

// writeServiceError maps domain errors onto HTTP statuses: insufficiency is a
// conflict with current state, other rule violations are bad requests,
// anything else is internal.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrInsufficientHearts) || errors.Is(err, core.ErrInsufficientFunds):
		writeError(w, http.StatusConflict, "insufficient", err.Error(), nil)
	case errors.Is(err, core.ErrUnknownItem):
		writeError(w, http.StatusNotFound, "unknown_item", err.Error(), nil)
	case core.IsClientError(err):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err.Error(), nil)
	}
}

// withCORS wraps a handler with a minimal CORS policy.
func withCORS(next http.Handler, origin string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Vary", "Origin")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withAPIKeyAuth enforces a shared API key list.
func withAPIKeyAuth(next http.Handler, apiKeys []string) http.Handler {
	allowed := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		k = strings.TrimSpace(k)
		if k != "" {
			allowed[k] = struct{}{}
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := extractAPIKey(r)
		if key == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing API key", nil)
			return
		}
		if _, ok := allowed[key]; !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid API key", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit applies a simple token-bucket limiter per client key.
func withRateLimit(next http.Handler, rpm int, burst int) http.Handler {
	limiter := newRateLimiter(rpm, burst)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !limiter.allow(key) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractAPIKey(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	return ""
}

// clientKey uses API key if present, otherwise remote IP.
func clientKey(r *http.Request) string {
	if key := extractAPIKey(r); key != "" {
		return key
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type rateLimiter struct {
	rpm   float64
	burst float64
	mu    sync.Mutex
	b     map[string]*bucket
}

type bucket struct {
	tokens float64
	last   time.Time
}

func newRateLimiter(rpm, burst int) *rateLimiter {
	return &rateLimiter{
		rpm:   float64(rpm),
		burst: float64(burst),
		b:     make(map[string]*bucket),
	}
}

func (l *rateLimiter) allow(key string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.b[key]
	if !ok {
		l.b[key] = &bucket{tokens: l.burst - 1, last: now}
		return true
	}

	elapsed := now.Sub(b.last).Minutes()
	b.tokens += elapsed * l.rpm
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	if b.tokens < 1 {
		b.last = now
		return false
	}
	b.tokens--
	b.last = now
	return true
}
