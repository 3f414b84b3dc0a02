//go:build postgres_integration

package store

import (
    "os"
    "testing"
)

func TestPostgresConnectivityAndSchema(t *testing.T) {
    dsn := os.Getenv("DATABASE_URL")
    if dsn == "" { t.Skip("DATABASE_URL not set; skipping integration test") }
    p, err := NewPostgres(dsn)
    if err != nil { t.Fatalf("NewPostgres: %v", err) }
    if err := p.Ping(t.Context()); err != nil { t.Fatalf("Ping: %v", err) }
    if err := p.EnsureSchema(t.Context()); err != nil { t.Fatalf("EnsureSchema: %v", err) }
    // Try simple calls
    if _, err := p.ListPendingOrders(t.Context()); err != nil { t.Fatalf("ListPendingOrders: %v", err) }
    if _, err := p.Dashboard(t.Context()); err != nil { t.Fatalf("Dashboard: %v", err) }
}
