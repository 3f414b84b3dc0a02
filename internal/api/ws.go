package api

import (
    "net/http"
    "time"

    "github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

// SyncLogStreamHandler handles GET /api/sync/log/stream: upgrades to a
// WebSocket, replays the current ring, then tails new entries from the
// broker until the client goes away.
func (s *Server) SyncLogStreamHandler(w http.ResponseWriter, r *http.Request) {
    conn, err := upgrader.Upgrade(w, r, nil)
    if err != nil {
        return
    }
    defer func() { _ = conn.Close() }()

    for _, entry := range s.Engine.Log() {
        if err := conn.WriteJSON(entry); err != nil {
            return
        }
    }

    ch := s.Broker.Subscribe()
    defer s.Broker.Unsubscribe(ch)

    // Reader goroutine: only there to notice the peer closing.
    done := make(chan struct{})
    go func() {
        defer close(done)
        conn.SetReadLimit(1 << 10)
        for {
            if _, _, err := conn.ReadMessage(); err != nil {
                return
            }
        }
    }()

    ping := time.NewTicker(20 * time.Second)
    defer ping.Stop()
    for {
        select {
        case <-done:
            return
        case <-ping.C:
            if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
                return
            }
        case entry, ok := <-ch:
            if !ok {
                return
            }
            if err := conn.WriteJSON(entry); err != nil {
                return
            }
        }
    }
}
