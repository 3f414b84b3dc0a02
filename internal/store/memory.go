package store

import (
    "context"
    "sort"
    "strings"
    "sync"
    "time"

    "ordersync/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set and
// throughout the tests. Resolution of customer accounts and vendor
// mappings happens on read, mirroring the SQL joins in the Postgres store.
type Memory struct {
    mu       sync.Mutex
    seq      int64
    orders   map[int64]model.Order
    lines    map[int64][]model.OrderLine
    vendors  map[string]model.VendorMapping // normalized salesperson name -> mapping
    byTaxID  map[string]string              // customer tax id -> account
    byName   map[string]string              // normalized customer name -> account
}

func NewMemory() *Memory {
    return &Memory{
        orders:  map[int64]model.Order{},
        lines:   map[int64][]model.OrderLine{},
        vendors: map[string]model.VendorMapping{},
        byTaxID: map[string]string{},
        byName:  map[string]string{},
    }
}

func normName(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// AddOrder seeds an order with its lines and returns the assigned id.
func (m *Memory) AddOrder(o model.Order, lines []model.OrderLine) int64 {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.seq++
    o.ID = m.seq
    m.orders[o.ID] = o
    for i := range lines {
        lines[i].OrderID = o.ID
        lines[i].ID = int64(i + 1)
    }
    m.lines[o.ID] = lines
    return o.ID
}

// PutVendorMapping seeds a salesperson -> personnel number mapping.
func (m *Memory) PutVendorMapping(v model.VendorMapping) {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.vendors[normName(v.Salesperson)] = v
}

// PutCustomerAccount seeds an ERP customer account resolvable by tax id
// and/or customer name.
func (m *Memory) PutCustomerAccount(account, name, taxID string) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if strings.TrimSpace(taxID) != "" {
        m.byTaxID[strings.TrimSpace(taxID)] = account
    }
    if strings.TrimSpace(name) != "" {
        m.byName[normName(name)] = account
    }
}

// resolve fills in the joined fields. Account priority: customer table by
// tax id, then portfolio by name, then whatever account the order itself
// captured.
func (m *Memory) resolve(o model.Order) model.Order {
    if v, ok := m.vendors[normName(o.Salesperson)]; ok {
        o.SalespersonNumber = v.PersonnelNumber
        o.OrderTakerNumber = v.OrderTakerNumber
    }
    if acc, ok := m.byTaxID[strings.TrimSpace(o.CustomerTaxID)]; ok && strings.TrimSpace(o.CustomerTaxID) != "" {
        o.CustomerAccount = acc
    } else if acc, ok := m.byName[normName(o.CustomerName)]; ok {
        o.CustomerAccount = acc
    }
    return o
}

func (m *Memory) ListOrders(ctx context.Context) ([]model.Order, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    out := make([]model.Order, 0, len(m.orders))
    for _, o := range m.orders {
        out = append(out, m.resolve(o))
    }
    sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
    return out, nil
}

func (m *Memory) GetOrder(ctx context.Context, id int64) (model.Order, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    o, ok := m.orders[id]
    if !ok {
        return model.Order{}, ErrNotFound
    }
    return m.resolve(o), nil
}

// ListPendingOrders returns orders that are not sent, not cancelled, have
// no unresolved sync error, and no remote order number yet. Oldest first.
func (m *Memory) ListPendingOrders(ctx context.Context) ([]model.Order, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var out []model.Order
    for _, o := range m.orders {
        if o.Sent || o.Status == model.StatusCancelled || o.SyncError != "" || o.RemoteOrderNumber != "" {
            continue
        }
        out = append(out, m.resolve(o))
    }
    sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.Before(out[j].OrderDate) })
    return out, nil
}

func (m *Memory) ListOrderLines(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    ls := m.lines[orderID]
    out := make([]model.OrderLine, len(ls))
    copy(out, ls)
    return out, nil
}

func (m *Memory) RecordRemoteOrder(ctx context.Context, orderID int64, remoteOrder string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    o, ok := m.orders[orderID]
    if !ok {
        return ErrNotFound
    }
    o.RemoteOrderNumber = remoteOrder
    m.orders[orderID] = o
    return nil
}

func (m *Memory) MarkSent(ctx context.Context, orderID int64, remoteOrder string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    o, ok := m.orders[orderID]
    if !ok {
        return ErrNotFound
    }
    now := time.Now().UTC()
    o.Sent = true
    o.SentAt = &now
    o.RemoteOrderNumber = remoteOrder
    o.SyncError = ""
    m.orders[orderID] = o
    return nil
}

func (m *Memory) MarkFailed(ctx context.Context, orderID int64, message string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    o, ok := m.orders[orderID]
    if !ok {
        return ErrNotFound
    }
    o.Sent = false
    o.SentAt = nil
    o.SyncError = message
    m.orders[orderID] = o
    return nil
}

// ResetSyncStatus clears the sent flag and error but keeps the remote
// order number, so a re-run resumes idempotently instead of creating a
// second remote header.
func (m *Memory) ResetSyncStatus(ctx context.Context, orderID int64) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    o, ok := m.orders[orderID]
    if !ok {
        return ErrNotFound
    }
    o.Sent = false
    o.SentAt = nil
    o.SyncError = ""
    m.orders[orderID] = o
    return nil
}

func (m *Memory) ListSweepCandidates(ctx context.Context, since time.Time, limit int) ([]model.SweepCandidate, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var sent []model.Order
    for _, o := range m.orders {
        if !o.Sent || o.RemoteOrderNumber == "" || o.OrderDate.Before(since) {
            continue
        }
        if _, ok := m.vendors[normName(o.Salesperson)]; !ok {
            continue
        }
        sent = append(sent, o)
    }
    sort.Slice(sent, func(i, j int) bool { return sent[i].OrderDate.After(sent[j].OrderDate) })
    if limit > 0 && len(sent) > limit {
        sent = sent[:limit]
    }
    out := make([]model.SweepCandidate, 0, len(sent))
    for _, o := range sent {
        v := m.vendors[normName(o.Salesperson)]
        out = append(out, model.SweepCandidate{
            OrderID:           o.ID,
            Number:            o.Number,
            CustomerName:      o.CustomerName,
            Salesperson:       o.Salesperson,
            SalespersonNumber: v.PersonnelNumber,
            OrderTakerNumber:  v.OrderTakerNumber,
            RemoteOrderNumber: o.RemoteOrderNumber,
        })
    }
    return out, nil
}

func (m *Memory) Dashboard(ctx context.Context) (model.DashboardData, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var d model.DashboardData
    sales := map[string]*model.NameTotal{}
    custs := map[string]*model.NameTotal{}
    var all []model.Order
    for _, o := range m.orders {
        d.KPIs.TotalOrders++
        d.KPIs.TotalAmount += o.Total
        switch {
        case o.Sent:
            d.KPIs.Sent++
        case o.SyncError != "":
            d.KPIs.Failed++
        default:
            d.KPIs.Pending++
        }
        if s, ok := sales[o.Salesperson]; ok {
            s.Orders++
            s.Amount += o.Total
        } else {
            sales[o.Salesperson] = &model.NameTotal{Name: o.Salesperson, Orders: 1, Amount: o.Total}
        }
        if c, ok := custs[o.CustomerName]; ok {
            c.Orders++
            c.Amount += o.Total
        } else {
            custs[o.CustomerName] = &model.NameTotal{Name: o.CustomerName, Orders: 1, Amount: o.Total}
        }
        all = append(all, m.resolve(o))
    }
    if d.KPIs.TotalOrders > 0 {
        d.KPIs.AverageOrder = d.KPIs.TotalAmount / float64(d.KPIs.TotalOrders)
    }
    d.KPIs.Salespeople = len(sales)
    d.KPIs.Customers = len(custs)
    d.TopSalespeople = topN(sales, 10)
    d.TopCustomers = topN(custs, 10)
    sort.Slice(all, func(i, j int) bool { return all[i].OrderDate.After(all[j].OrderDate) })
    if len(all) > 5 {
        all = all[:5]
    }
    d.RecentOrders = all
    return d, nil
}

func topN(m map[string]*model.NameTotal, n int) []model.NameTotal {
    out := make([]model.NameTotal, 0, len(m))
    for _, v := range m {
        out = append(out, *v)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
    if len(out) > n {
        out = out[:n]
    }
    return out
}

func (m *Memory) Ping(ctx context.Context) error { return nil }
