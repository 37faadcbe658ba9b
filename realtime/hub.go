package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"keydojo/core"
)

type subscriber struct {
	ch      chan core.Event
	account core.AccountID // empty means all accounts
}

// Hub is a simple pub/sub for fanning progression events out to channels.
type Hub struct {
	mu   sync.RWMutex
	subs map[int]subscriber
	next int
}

func NewHub() *Hub { return &Hub{subs: map[int]subscriber{}} }

// Subscribe registers a receiver for every account's events.
func (h *Hub) Subscribe(buffer int) (int, <-chan core.Event) {
	return h.subscribe(buffer, "")
}

// SubscribeAccount registers a receiver that only sees one account's events.
func (h *Hub) SubscribeAccount(buffer int, account core.AccountID) (int, <-chan core.Event) {
	return h.subscribe(buffer, account)
}

func (h *Hub) subscribe(buffer int, account core.AccountID) (int, <-chan core.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	id := h.next
	ch := make(chan core.Event, buffer)
	h.subs[id] = subscriber{ch: ch, account: account}
	return id, ch
}

func (h *Hub) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(sub.ch)
	}
}

func (h *Hub) Broadcast(_ context.Context, ev core.Event) {
	h.mu.RLock()
	// copy to avoid holding lock during send
	receivers := make([]chan core.Event, 0, len(h.subs))
	for _, sub := range h.subs {
		if sub.account != "" && sub.account != ev.Account {
			continue
		}
		receivers = append(receivers, sub.ch)
	}
	h.mu.RUnlock()
	for _, ch := range receivers {
		select {
		case ch <- ev:
		default: /* drop if full */
		}
	}
}

// MarshalJSON is a helper to convert events to JSON bytes for WebSocket/SSE.
func MarshalJSON(ev core.Event) []byte {
	b, _ := json.Marshal(ev)
	return b
}
