package api

import (
    "context"
    "encoding/json"
    "sync"
    "time"

    redis "github.com/redis/go-redis/v9"

    "ordersync/internal/model"
)

const logChannel = "ordersync:synclog"

// RedisBroker implements EventBroker over Redis Pub/Sub so dashboards can
// tail the sync log from any instance behind a load balancer. Each
// subscriber owns one PubSub; Unsubscribe closes it so disconnected
// clients do not leave subscriptions behind.
type RedisBroker struct {
    rdb  *redis.Client
    mu   sync.Mutex
    subs map[chan model.SyncLogEntry]*redis.PubSub
}

func NewRedisBroker(url string) (*RedisBroker, error) {
    opt, err := redis.ParseURL(url)
    if err != nil {
        return nil, err
    }
    return &RedisBroker{
        rdb:  redis.NewClient(opt),
        subs: map[chan model.SyncLogEntry]*redis.PubSub{},
    }, nil
}

func (b *RedisBroker) Subscribe() chan model.SyncLogEntry {
    ch := make(chan model.SyncLogEntry, 16)
    ctx := context.Background()
    ps := b.rdb.Subscribe(ctx, logChannel)
    // initial consume to ensure the subscription is live
    _, _ = ps.Receive(ctx)
    b.mu.Lock()
    b.subs[ch] = ps
    b.mu.Unlock()
    go func() {
        defer close(ch)
        for msg := range ps.Channel() {
            var entry model.SyncLogEntry
            if err := json.Unmarshal([]byte(msg.Payload), &entry); err == nil {
                select {
                case ch <- entry:
                default:
                }
            }
        }
    }()
    return ch
}

// Unsubscribe closes the subscriber's PubSub; its message channel drains
// and the reader goroutine closes ch on exit.
func (b *RedisBroker) Unsubscribe(ch chan model.SyncLogEntry) {
    b.mu.Lock()
    ps, ok := b.subs[ch]
    if ok {
        delete(b.subs, ch)
    }
    b.mu.Unlock()
    if ok {
        _ = ps.Close()
    }
}

func (b *RedisBroker) Publish(entry model.SyncLogEntry) {
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    data, _ := json.Marshal(entry)
    _ = b.rdb.Publish(ctx, logChannel, data).Err()
}
