package store

import (
    "context"
    "testing"
    "time"

    "ordersync/internal/model"
)

func seed(t *testing.T) (*Memory, int64) {
    t.Helper()
    m := NewMemory()
    m.PutVendorMapping(model.VendorMapping{Salesperson: "JUAN PEREZ", PersonnelNumber: "1001", OrderTakerNumber: "2002"})
    m.PutCustomerAccount("C-001", "ACME SRL", "101-555")
    id := m.AddOrder(model.Order{
        Number:       "PED-1",
        CustomerName: "ACME SRL",
        Salesperson:  "JUAN PEREZ",
        OrderDate:    time.Now().Add(-time.Hour),
        Total:        100,
    }, []model.OrderLine{{ItemID: "IT-1", Quantity: 2, UnitPrice: 50}})
    return m, id
}

func TestResolutionOnRead(t *testing.T) {
    m, id := seed(t)
    o, err := m.GetOrder(context.Background(), id)
    if err != nil {
        t.Fatalf("get: %v", err)
    }
    if o.CustomerAccount != "C-001" || o.SalespersonNumber != "1001" || o.OrderTakerNumber != "2002" {
        t.Fatalf("resolved order: %+v", o)
    }
}

func TestAccountResolutionPriority(t *testing.T) {
    m := NewMemory()
    // Same name resolves through the portfolio, but the tax id match wins.
    m.PutCustomerAccount("BY-NAME", "ACME SRL", "")
    m.PutCustomerAccount("BY-TAXID", "OTHER NAME", "101-555")
    id := m.AddOrder(model.Order{Number: "PED-1", CustomerName: "acme srl", CustomerTaxID: "101-555", OrderDate: time.Now()}, nil)

    o, _ := m.GetOrder(context.Background(), id)
    if o.CustomerAccount != "BY-TAXID" {
        t.Fatalf("tax id must win: %+v", o)
    }

    id2 := m.AddOrder(model.Order{Number: "PED-2", CustomerName: "ACME SRL", OrderDate: time.Now()}, nil)
    o2, _ := m.GetOrder(context.Background(), id2)
    if o2.CustomerAccount != "BY-NAME" {
        t.Fatalf("name fallback: %+v", o2)
    }
}

func TestPendingFilterAndOrdering(t *testing.T) {
    m := NewMemory()
    m.PutCustomerAccount("C-001", "ACME SRL", "")
    now := time.Now()
    newer := m.AddOrder(model.Order{Number: "PED-NEW", CustomerName: "ACME SRL", OrderDate: now}, nil)
    older := m.AddOrder(model.Order{Number: "PED-OLD", CustomerName: "ACME SRL", OrderDate: now.Add(-2 * time.Hour)}, nil)
    cancelled := m.AddOrder(model.Order{Number: "PED-X", CustomerName: "ACME SRL", Status: model.StatusCancelled, OrderDate: now}, nil)
    failed := m.AddOrder(model.Order{Number: "PED-F", CustomerName: "ACME SRL", OrderDate: now}, nil)
    _ = m.MarkFailed(context.Background(), failed, "boom")
    sent := m.AddOrder(model.Order{Number: "PED-S", CustomerName: "ACME SRL", OrderDate: now}, nil)
    _ = m.MarkSent(context.Background(), sent, "SO-1")
    partial := m.AddOrder(model.Order{Number: "PED-P", CustomerName: "ACME SRL", OrderDate: now}, nil)
    _ = m.RecordRemoteOrder(context.Background(), partial, "SO-2")

    got, err := m.ListPendingOrders(context.Background())
    if err != nil {
        t.Fatalf("list: %v", err)
    }
    if len(got) != 2 {
        t.Fatalf("pending count: %d (%v)", len(got), got)
    }
    if got[0].ID != older || got[1].ID != newer {
        t.Fatalf("oldest first expected, got %v then %v", got[0].Number, got[1].Number)
    }
    for _, o := range got {
        if o.ID == cancelled || o.ID == failed || o.ID == sent || o.ID == partial {
            t.Fatalf("excluded order leaked: %+v", o)
        }
    }
}

func TestMarkSentClearsError(t *testing.T) {
    m, id := seed(t)
    _ = m.MarkFailed(context.Background(), id, "transient")
    if err := m.MarkSent(context.Background(), id, "SO-9"); err != nil {
        t.Fatalf("mark sent: %v", err)
    }
    o, _ := m.GetOrder(context.Background(), id)
    if !o.Sent || o.SyncError != "" || o.RemoteOrderNumber != "SO-9" || o.SentAt == nil {
        t.Fatalf("order: %+v", o)
    }
}

func TestResetKeepsRemoteOrderNumber(t *testing.T) {
    m, id := seed(t)
    _ = m.MarkSent(context.Background(), id, "SO-9")
    if err := m.ResetSyncStatus(context.Background(), id); err != nil {
        t.Fatalf("reset: %v", err)
    }
    o, _ := m.GetOrder(context.Background(), id)
    if o.Sent || o.SentAt != nil || o.SyncError != "" {
        t.Fatalf("order: %+v", o)
    }
    if o.RemoteOrderNumber != "SO-9" {
        t.Fatalf("remote number must survive a reset: %+v", o)
    }
}

func TestNotFound(t *testing.T) {
    m := NewMemory()
    if _, err := m.GetOrder(context.Background(), 42); err != ErrNotFound {
        t.Fatalf("want ErrNotFound, got %v", err)
    }
    if err := m.MarkSent(context.Background(), 42, "SO-1"); err != ErrNotFound {
        t.Fatalf("want ErrNotFound, got %v", err)
    }
}

func TestSweepCandidates(t *testing.T) {
    m := NewMemory()
    m.PutVendorMapping(model.VendorMapping{Salesperson: "JUAN PEREZ", PersonnelNumber: "1001", OrderTakerNumber: "2002"})
    now := time.Now()

    recent := m.AddOrder(model.Order{Number: "PED-R", CustomerName: "A", Salesperson: "JUAN PEREZ", OrderDate: now.Add(-time.Hour)}, nil)
    _ = m.MarkSent(context.Background(), recent, "SO-R")
    old := m.AddOrder(model.Order{Number: "PED-O", CustomerName: "A", Salesperson: "JUAN PEREZ", OrderDate: now.Add(-8 * time.Hour)}, nil)
    _ = m.MarkSent(context.Background(), old, "SO-O")
    unmapped := m.AddOrder(model.Order{Number: "PED-U", CustomerName: "A", Salesperson: "NOBODY", OrderDate: now.Add(-time.Hour)}, nil)
    _ = m.MarkSent(context.Background(), unmapped, "SO-U")
    m.AddOrder(model.Order{Number: "PED-P", CustomerName: "A", Salesperson: "JUAN PEREZ", OrderDate: now.Add(-time.Hour)}, nil)

    got, err := m.ListSweepCandidates(context.Background(), now.Add(-4*time.Hour), 30)
    if err != nil {
        t.Fatalf("list: %v", err)
    }
    if len(got) != 1 {
        t.Fatalf("candidates: %+v", got)
    }
    c := got[0]
    if c.RemoteOrderNumber != "SO-R" || c.SalespersonNumber != "1001" || c.OrderTakerNumber != "2002" {
        t.Fatalf("candidate: %+v", c)
    }
}

func TestSweepCandidatesLimitNewestFirst(t *testing.T) {
    m := NewMemory()
    m.PutVendorMapping(model.VendorMapping{Salesperson: "JUAN PEREZ", PersonnelNumber: "1001"})
    now := time.Now()
    for i := 0; i < 5; i++ {
        id := m.AddOrder(model.Order{
            Number:       "PED",
            CustomerName: "A",
            Salesperson:  "JUAN PEREZ",
            OrderDate:    now.Add(-time.Duration(i) * time.Minute),
        }, nil)
        _ = m.MarkSent(context.Background(), id, "SO")
    }
    got, _ := m.ListSweepCandidates(context.Background(), now.Add(-4*time.Hour), 3)
    if len(got) != 3 {
        t.Fatalf("limit: %d", len(got))
    }
    // Newest first: ids were added newest to oldest.
    if got[0].OrderID != 1 || got[2].OrderID != 3 {
        t.Fatalf("ordering: %+v", got)
    }
}

func TestDashboardAggregates(t *testing.T) {
    m := NewMemory()
    a := m.AddOrder(model.Order{Number: "1", CustomerName: "A", Salesperson: "S1", Total: 100, OrderDate: time.Now()}, nil)
    _ = m.MarkSent(context.Background(), a, "SO-1")
    b := m.AddOrder(model.Order{Number: "2", CustomerName: "B", Salesperson: "S2", Total: 600, OrderDate: time.Now()}, nil)
    _ = m.MarkFailed(context.Background(), b, "boom")
    m.AddOrder(model.Order{Number: "3", CustomerName: "A", Salesperson: "S1", Total: 200, OrderDate: time.Now()}, nil)

    d, err := m.Dashboard(context.Background())
    if err != nil {
        t.Fatalf("dashboard: %v", err)
    }
    k := d.KPIs
    if k.TotalOrders != 3 || k.Sent != 1 || k.Failed != 1 || k.Pending != 1 {
        t.Fatalf("kpis: %+v", k)
    }
    if k.TotalAmount != 900 || k.AverageOrder != 300 {
        t.Fatalf("amounts: %+v", k)
    }
    if k.Salespeople != 2 || k.Customers != 2 {
        t.Fatalf("cardinality: %+v", k)
    }
    if len(d.TopSalespeople) != 2 || d.TopSalespeople[0].Name != "S2" {
        t.Fatalf("top salespeople: %+v", d.TopSalespeople)
    }
    if len(d.RecentOrders) != 3 {
        t.Fatalf("recent: %+v", d.RecentOrders)
    }
}
