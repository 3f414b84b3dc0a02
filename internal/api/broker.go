package api

import (
    "sync"

    "ordersync/internal/model"
)

// EventBroker fans sync log entries out to live dashboard subscribers.
type EventBroker interface {
    Subscribe() chan model.SyncLogEntry
    Unsubscribe(ch chan model.SyncLogEntry)
    Publish(entry model.SyncLogEntry)
}

// Broker is the in-process implementation: one topic, lossy channels so a
// slow dashboard never backs up the sync engine.
type Broker struct {
    mu   sync.Mutex
    subs map[chan model.SyncLogEntry]struct{}
}

func NewBroker() *Broker {
    return &Broker{subs: map[chan model.SyncLogEntry]struct{}{}}
}

func (b *Broker) Subscribe() chan model.SyncLogEntry {
    ch := make(chan model.SyncLogEntry, 16)
    b.mu.Lock()
    b.subs[ch] = struct{}{}
    b.mu.Unlock()
    return ch
}

func (b *Broker) Unsubscribe(ch chan model.SyncLogEntry) {
    b.mu.Lock()
    if _, ok := b.subs[ch]; ok {
        delete(b.subs, ch)
        close(ch)
    }
    b.mu.Unlock()
}

func (b *Broker) Publish(entry model.SyncLogEntry) {
    b.mu.Lock()
    for ch := range b.subs {
        select {
        case ch <- entry:
        default:
        }
    }
    b.mu.Unlock()
}
