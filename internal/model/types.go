package model

import "time"

// Order statuses as captured by the order-entry app.
const (
    StatusOpen      = "OPEN"
    StatusCancelled = "CANCELLED"
)

// Order is one locally captured sales order plus its sync state. The
// customer account and personnel numbers arrive already resolved by the
// store (joined against customer accounts and vendor mappings).
type Order struct {
    ID                int64      `json:"id"`
    Number            string     `json:"number"` // human-readable local reference
    CustomerName      string     `json:"customerName"`
    CustomerTaxID     string     `json:"customerTaxId,omitempty"`
    Salesperson       string     `json:"salesperson"`
    OrderDate         time.Time  `json:"orderDate"`
    Total             float64    `json:"total"`
    Status            string     `json:"status,omitempty"`
    CustomerAccount   string     `json:"customerAccount,omitempty"`   // resolved ERP account, empty when unresolved
    SalespersonNumber string     `json:"salespersonNumber,omitempty"` // mapped personnel number
    OrderTakerNumber  string     `json:"orderTakerNumber,omitempty"`  // secretary mapping, when present
    RemoteOrderNumber string     `json:"remoteOrderNumber,omitempty"`
    SyncError         string     `json:"syncError,omitempty"`
    Sent              bool       `json:"sent"`
    SentAt            *time.Time `json:"sentAt,omitempty"`
}

// OrderLine belongs to exactly one order. Immutable once captured.
type OrderLine struct {
    ID        int64   `json:"id"`
    OrderID   int64   `json:"orderId"`
    ItemID    string  `json:"itemId"`
    Name      string  `json:"name,omitempty"`
    Quantity  float64 `json:"quantity"`
    UnitPrice float64 `json:"unitPrice"`
    Subtotal  float64 `json:"subtotal,omitempty"`
}

// VendorMapping maps a salesperson display name to ERP personnel numbers.
// OrderTakerNumber is the optional secretary assigned to the salesperson.
type VendorMapping struct {
    Salesperson      string `json:"salesperson"`
    PersonnelNumber  string `json:"personnelNumber"`
    OrderTakerNumber string `json:"orderTakerNumber,omitempty"`
}

// SweepCandidate is a recently sent order joined with its vendor mapping,
// selected for the corrective re-patch pass.
type SweepCandidate struct {
    OrderID           int64
    Number            string
    CustomerName      string
    Salesperson       string
    SalespersonNumber string
    OrderTakerNumber  string
    RemoteOrderNumber string
}

// SyncLogEntry is one line of the in-memory diagnostic ring. Not persisted.
type SyncLogEntry struct {
    ID      string    `json:"id"`
    Time    time.Time `json:"time"`
    Message string    `json:"msg"`
}

// SyncStatus is the scheduler state surfaced to operators.
type SyncStatus struct {
    Running     bool  `json:"running"`
    CycleCount  int64 `json:"cycleCount"`
    IntervalSec int   `json:"intervalSec"`
}

// Dashboard aggregates for the operator UI.

type KPIs struct {
    TotalOrders  int     `json:"totalOrders"`
    TotalAmount  float64 `json:"totalAmount"`
    AverageOrder float64 `json:"averageOrder"`
    Sent         int     `json:"sent"`
    Pending      int     `json:"pending"`
    Failed       int     `json:"failed"`
    Salespeople  int     `json:"salespeople"`
    Customers    int     `json:"customers"`
}

type NameTotal struct {
    Name   string  `json:"name"`
    Orders int     `json:"orders"`
    Amount float64 `json:"amount"`
}

type DashboardData struct {
    KPIs           KPIs        `json:"kpis"`
    TopSalespeople []NameTotal `json:"topSalespeople"`
    TopCustomers   []NameTotal `json:"topCustomers"`
    RecentOrders   []Order     `json:"recentOrders"`
}
