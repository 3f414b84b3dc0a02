package api

import (
    "os"
    "testing"
    "time"

    "ordersync/internal/model"
)

func TestRedisBrokerFanoutAndUnsubscribe(t *testing.T) {
    url := os.Getenv("REDIS_URL")
    if url == "" { t.Skip("REDIS_URL not set; skipping integration test") }
    b, err := NewRedisBroker(url)
    if err != nil { t.Fatalf("NewRedisBroker: %v", err) }

    ch := b.Subscribe()
    b.Publish(model.SyncLogEntry{ID: "1", Message: "hello"})
    select {
    case e := <-ch:
        if e.ID != "1" || e.Message != "hello" { t.Fatalf("entry: %+v", e) }
    case <-time.After(2 * time.Second):
        t.Fatal("no fanout")
    }

    b.Unsubscribe(ch)
    select {
    case _, ok := <-ch:
        if ok { t.Fatal("expected closed channel after unsubscribe") }
    case <-time.After(2 * time.Second):
        t.Fatal("channel not closed after unsubscribe")
    }
    b.Unsubscribe(ch) // second call is a no-op
}
