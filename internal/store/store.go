package store

import (
    "context"
    "errors"
    "time"

    "ordersync/internal/model"
)

// Store is the persistence interface consumed by the sync engine and the
// HTTP surface. Orders come back with customer account and personnel
// numbers already resolved (joined against customer accounts and vendor
// mappings), matching what the processor needs to build remote payloads.
type Store interface {
    // Orders
    ListOrders(ctx context.Context) ([]model.Order, error)
    GetOrder(ctx context.Context, id int64) (model.Order, error)
    ListPendingOrders(ctx context.Context) ([]model.Order, error)
    ListOrderLines(ctx context.Context, orderID int64) ([]model.OrderLine, error)

    // Sync state transitions
    RecordRemoteOrder(ctx context.Context, orderID int64, remoteOrder string) error
    MarkSent(ctx context.Context, orderID int64, remoteOrder string) error
    MarkFailed(ctx context.Context, orderID int64, message string) error
    ResetSyncStatus(ctx context.Context, orderID int64) error

    // Corrective sweep input: recently sent orders with a vendor mapping,
    // newest first, capped at limit.
    ListSweepCandidates(ctx context.Context, since time.Time, limit int) ([]model.SweepCandidate, error)

    // Reporting
    Dashboard(ctx context.Context) (model.DashboardData, error)

    Ping(ctx context.Context) error
}

var ErrNotFound = errors.New("not found")
