// Package sync implements the order reconciliation core: the poll loop,
// the per-order processor, and the corrective sweep over already-sent
// orders.
package sync

import (
    "context"
    "fmt"
    "log"
    "sync"
    "sync/atomic"
    "time"

    "github.com/google/uuid"

    "ordersync/internal/config"
    "ordersync/internal/erp"
    "ordersync/internal/metrics"
    "ordersync/internal/model"
    "ordersync/internal/store"
)

// Gateway is the remote order-entry contract the engine depends on. The
// payload builders live here too so the engine never has to know the
// company/currency constants the transport carries.
type Gateway interface {
    FindOrderByReference(ctx context.Context, token, reference string) (string, error)
    CreateHeader(ctx context.Context, token string, h erp.HeaderCreate) (string, error)
    AddLine(ctx context.Context, token string, l erp.LineCreate) error
    PatchHeader(ctx context.Context, token, salesOrder string, p erp.HeaderPatch) error
    GetHeader(ctx context.Context, token, salesOrder string) (erp.Header, error)
    HeaderFor(o model.Order) erp.HeaderCreate
    LineFor(salesOrder string, l model.OrderLine, lineNumber int) erp.LineCreate
}

// Engine owns the scheduler state: the single-flight guard, the cycle
// counter, and the diagnostic log ring. One engine instance runs per
// process; the manual retry path calls ProcessOrder outside the guard.
type Engine struct {
    Store   store.Store
    Gateway Gateway
    Tokens  erp.TokenProvider

    Interval      time.Duration
    SettleDelay   time.Duration
    SweepEvery    int64
    SweepLookback time.Duration
    SweepLimit    int
    LogSize       int

    // OnLog, when set, receives every diagnostic entry for live fanout.
    OnLog func(model.SyncLogEntry)

    running  atomic.Bool
    cycles   atomic.Int64
    stop     chan struct{}
    stopOnce sync.Once
    wg       sync.WaitGroup

    mu   sync.Mutex
    ring []model.SyncLogEntry
}

func NewEngine(s store.Store, gw Gateway, tp erp.TokenProvider, cfg config.SyncConfig) *Engine {
    e := &Engine{
        Store:         s,
        Gateway:       gw,
        Tokens:        tp,
        Interval:      time.Duration(cfg.IntervalSec) * time.Second,
        SettleDelay:   time.Duration(cfg.SettleDelaySec) * time.Second,
        SweepEvery:    int64(cfg.SweepEvery),
        SweepLookback: time.Duration(cfg.SweepLookbackHrs) * time.Hour,
        SweepLimit:    cfg.SweepLimit,
        LogSize:       cfg.LogSize,
        stop:          make(chan struct{}),
    }
    if e.Interval <= 0 {
        e.Interval = 30 * time.Second
    }
    if e.LogSize <= 0 {
        e.LogSize = 100
    }
    return e
}

// Start runs the first cycle immediately, then on every tick. A tick that
// fires while a cycle is still running is a no-op, not queued.
func (e *Engine) Start() {
    e.wg.Add(1)
    go func() {
        defer e.wg.Done()
        e.logf("sync active every %s", e.Interval)
        e.RunCycle(context.Background())
        ticker := time.NewTicker(e.Interval)
        defer ticker.Stop()
        for {
            select {
            case <-e.stop:
                return
            case <-ticker.C:
                e.RunCycle(context.Background())
            }
        }
    }()
}

// Stop halts the scheduler between cycles. A running cycle finishes.
func (e *Engine) Stop() {
    e.stopOnce.Do(func() { close(e.stop) })
    e.wg.Wait()
}

// RunCycle executes one poll cycle. Safe to call repeatedly; a call while
// a cycle is in progress returns immediately without touching the store.
func (e *Engine) RunCycle(ctx context.Context) {
    if !e.running.CompareAndSwap(false, true) {
        return
    }
    defer e.running.Store(false)
    cycle := e.cycles.Add(1)
    metrics.SyncCycles.Inc()

    pending, err := e.Store.ListPendingOrders(ctx)
    if err != nil {
        e.logf("cycle #%d error: %v", cycle, err)
        return
    }
    // An order is processable only once a remote customer account resolved.
    qualifying := pending[:0:0]
    for _, o := range pending {
        if o.CustomerAccount != "" {
            qualifying = append(qualifying, o)
        }
    }
    noAccount := len(pending) - len(qualifying)

    token, err := e.Tokens.Token(ctx)
    if err != nil {
        e.logf("cycle #%d error: %v", cycle, err)
        return
    }

    if e.SweepEvery > 0 && cycle%e.SweepEvery == 1%e.SweepEvery {
        e.sweep(ctx, token)
    }

    if len(qualifying) == 0 {
        return
    }
    if noAccount > 0 {
        e.logf("cycle #%d: %d order(s) to send (%d without a resolvable account)", cycle, len(qualifying), noAccount)
    } else {
        e.logf("cycle #%d: %d order(s) to send", cycle, len(qualifying))
    }

    sent, failed := 0, 0
    for _, o := range qualifying {
        if _, err := e.ProcessOrder(ctx, token, o); err != nil {
            failed++
            metrics.OrdersSynced.WithLabelValues("failed").Inc()
            msg := erp.Classify(err)
            e.logf("  error on %s: %s", o.Number, msg)
            if dbErr := e.Store.MarkFailed(ctx, o.ID, msg); dbErr != nil {
                e.logf("  could not persist failure for %s: %v", o.Number, dbErr)
            }
            continue
        }
        sent++
        metrics.OrdersSynced.WithLabelValues("sent").Inc()
    }
    e.logf("cycle #%d summary: %d sent, %d failed", cycle, sent, failed)
}

// Status reports the scheduler state for the operator API.
func (e *Engine) Status() model.SyncStatus {
    return model.SyncStatus{
        Running:     e.running.Load(),
        CycleCount:  e.cycles.Load(),
        IntervalSec: int(e.Interval / time.Second),
    }
}

// Log returns a snapshot of the diagnostic ring, oldest first.
func (e *Engine) Log() []model.SyncLogEntry {
    e.mu.Lock()
    defer e.mu.Unlock()
    out := make([]model.SyncLogEntry, len(e.ring))
    copy(out, e.ring)
    return out
}

func (e *Engine) logf(format string, args ...any) {
    entry := model.SyncLogEntry{
        ID:      uuid.NewString(),
        Time:    time.Now().UTC(),
        Message: fmt.Sprintf(format, args...),
    }
    log.Printf("[sync] %s", entry.Message)
    e.mu.Lock()
    e.ring = append(e.ring, entry)
    if len(e.ring) > e.LogSize {
        e.ring = e.ring[len(e.ring)-e.LogSize:]
    }
    e.mu.Unlock()
    if e.OnLog != nil {
        e.OnLog(entry)
    }
}
