package websocket

import (
	"net/http"
	"time"

	"keydojo/core"
	"keydojo/realtime"

	gorillaws "github.com/gorilla/websocket"
)

// Handler returns an http.Handler that upgrades to WebSocket and streams
// progression events from the hub. An optional ?account= query parameter
// restricts the stream to one account's events.
func Handler(hub *realtime.Hub) http.Handler {
	upgrader := gorillaws.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var account core.AccountID
		if raw := r.URL.Query().Get("account"); raw != "" {
			id, err := core.NormalizeAccountID(core.AccountID(raw))
			if err != nil {
				http.Error(w, "invalid account", http.StatusBadRequest)
				return
			}
			account = id
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var (
			id int
			ch <-chan core.Event
		)
		if account != "" {
			id, ch = hub.SubscribeAccount(256, account)
		} else {
			id, ch = hub.Subscribe(256)
		}
		defer hub.Unsubscribe(id)

		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		for ev := range ch {
			if err := conn.WriteMessage(gorillaws.TextMessage, realtime.MarshalJSON(ev)); err != nil {
				return
			}
		}
	})
}
