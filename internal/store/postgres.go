package store

import (
    "context"
    "database/sql"
    "errors"
    "time"

    _ "github.com/jackc/pgx/v5/stdlib"

    "ordersync/internal/model"
)

type Postgres struct {
    db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
    db, err := sql.Open("pgx", dsn)
    if err != nil {
        return nil, err
    }
    if err := db.Ping(); err != nil {
        return nil, err
    }
    return &Postgres{db: db}, nil
}

// EnsureSchema creates the tables the service needs and adds sync columns
// to pre-existing order tables. The order tables are owned by the capture
// app; the sync columns are ours, so additive migration happens here
// rather than in an external migration tool.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
    stmts := []string{
        `CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            number TEXT NOT NULL,
            customer_name TEXT NOT NULL DEFAULT '',
            customer_tax_id TEXT,
            customer_account TEXT,
            salesperson TEXT NOT NULL DEFAULT '',
            order_date TIMESTAMPTZ NOT NULL DEFAULT now(),
            total NUMERIC(18,2) NOT NULL DEFAULT 0,
            status TEXT
        )`,
        `CREATE TABLE IF NOT EXISTS order_lines (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            item_id TEXT NOT NULL,
            name TEXT,
            quantity NUMERIC(18,4) NOT NULL DEFAULT 0,
            unit_price NUMERIC(18,4) NOT NULL DEFAULT 0,
            subtotal NUMERIC(18,2)
        )`,
        `CREATE TABLE IF NOT EXISTS vendor_mappings (
            salesperson TEXT PRIMARY KEY,
            personnel_number TEXT NOT NULL
        )`,
        `CREATE TABLE IF NOT EXISTS customer_accounts (
            account_number TEXT NOT NULL,
            customer_name TEXT,
            tax_id TEXT
        )`,
        `ALTER TABLE orders ADD COLUMN IF NOT EXISTS remote_order_number TEXT`,
        `ALTER TABLE orders ADD COLUMN IF NOT EXISTS sync_error TEXT`,
        `ALTER TABLE orders ADD COLUMN IF NOT EXISTS sent BOOLEAN NOT NULL DEFAULT false`,
        `ALTER TABLE orders ADD COLUMN IF NOT EXISTS sent_at TIMESTAMPTZ`,
        `ALTER TABLE vendor_mappings ADD COLUMN IF NOT EXISTS order_taker_number TEXT`,
        `CREATE INDEX IF NOT EXISTS idx_orders_pending ON orders (order_date) WHERE NOT sent`,
    }
    for _, s := range stmts {
        if _, err := p.db.ExecContext(ctx, s); err != nil {
            return err
        }
    }
    return nil
}

// orderColumns resolves the customer account (customer table by tax id,
// then portfolio by name, then the account captured on the order) and the
// vendor mapping inline, so every Order read is already joined.
const orderColumns = `
    o.id, o.number, o.customer_name, COALESCE(o.customer_tax_id, ''), o.salesperson,
    o.order_date, o.total, COALESCE(o.status, ''),
    COALESCE(
        (SELECT c.account_number FROM customer_accounts c
            WHERE BTRIM(COALESCE(o.customer_tax_id, '')) <> '' AND BTRIM(COALESCE(c.tax_id, '')) = BTRIM(o.customer_tax_id) LIMIT 1),
        (SELECT c.account_number FROM customer_accounts c
            WHERE UPPER(BTRIM(COALESCE(c.customer_name, ''))) = UPPER(BTRIM(o.customer_name)) LIMIT 1),
        NULLIF(BTRIM(COALESCE(o.customer_account, '')), ''),
        ''),
    COALESCE(m.personnel_number, ''), COALESCE(m.order_taker_number, ''),
    COALESCE(o.remote_order_number, ''), COALESCE(o.sync_error, ''), o.sent, o.sent_at`

const orderFrom = `
    FROM orders o
    LEFT JOIN vendor_mappings m ON UPPER(BTRIM(o.salesperson)) = UPPER(BTRIM(m.salesperson))`

func scanOrder(row interface{ Scan(...any) error }) (model.Order, error) {
    var o model.Order
    var sentAt sql.NullTime
    err := row.Scan(&o.ID, &o.Number, &o.CustomerName, &o.CustomerTaxID, &o.Salesperson,
        &o.OrderDate, &o.Total, &o.Status, &o.CustomerAccount,
        &o.SalespersonNumber, &o.OrderTakerNumber,
        &o.RemoteOrderNumber, &o.SyncError, &o.Sent, &sentAt)
    if err != nil {
        return model.Order{}, err
    }
    if sentAt.Valid {
        t := sentAt.Time
        o.SentAt = &t
    }
    return o, nil
}

func (p *Postgres) ListOrders(ctx context.Context) ([]model.Order, error) {
    rows, err := p.db.QueryContext(ctx, `SELECT`+orderColumns+orderFrom+` ORDER BY o.order_date DESC`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Order
    for rows.Next() {
        o, err := scanOrder(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, o)
    }
    return out, rows.Err()
}

func (p *Postgres) GetOrder(ctx context.Context, id int64) (model.Order, error) {
    row := p.db.QueryRowContext(ctx, `SELECT`+orderColumns+orderFrom+` WHERE o.id = $1`, id)
    o, err := scanOrder(row)
    if errors.Is(err, sql.ErrNoRows) {
        return model.Order{}, ErrNotFound
    }
    return o, err
}

func (p *Postgres) ListPendingOrders(ctx context.Context) ([]model.Order, error) {
    rows, err := p.db.QueryContext(ctx, `SELECT`+orderColumns+orderFrom+`
        WHERE NOT o.sent
          AND COALESCE(o.status, '') <> $1
          AND COALESCE(o.sync_error, '') = ''
          AND COALESCE(o.remote_order_number, '') = ''
        ORDER BY o.order_date ASC`, model.StatusCancelled)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Order
    for rows.Next() {
        o, err := scanOrder(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, o)
    }
    return out, rows.Err()
}

func (p *Postgres) ListOrderLines(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
    rows, err := p.db.QueryContext(ctx, `SELECT id, order_id, item_id, COALESCE(name, ''), quantity, unit_price, COALESCE(subtotal, 0)
        FROM order_lines WHERE order_id = $1 ORDER BY id`, orderID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.OrderLine
    for rows.Next() {
        var l model.OrderLine
        if err := rows.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.Name, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
            return nil, err
        }
        out = append(out, l)
    }
    return out, rows.Err()
}

func (p *Postgres) RecordRemoteOrder(ctx context.Context, orderID int64, remoteOrder string) error {
    return p.exec(ctx, `UPDATE orders SET remote_order_number = $2 WHERE id = $1`, orderID, remoteOrder)
}

func (p *Postgres) MarkSent(ctx context.Context, orderID int64, remoteOrder string) error {
    return p.exec(ctx, `UPDATE orders SET sent = true, sent_at = now(), remote_order_number = $2, sync_error = NULL WHERE id = $1`, orderID, remoteOrder)
}

func (p *Postgres) MarkFailed(ctx context.Context, orderID int64, message string) error {
    return p.exec(ctx, `UPDATE orders SET sent = false, sent_at = NULL, sync_error = $2 WHERE id = $1`, orderID, message)
}

// ResetSyncStatus keeps remote_order_number so a re-run resumes instead of
// creating a second remote header.
func (p *Postgres) ResetSyncStatus(ctx context.Context, orderID int64) error {
    return p.exec(ctx, `UPDATE orders SET sent = false, sent_at = NULL, sync_error = NULL WHERE id = $1`, orderID)
}

func (p *Postgres) exec(ctx context.Context, q string, args ...any) error {
    res, err := p.db.ExecContext(ctx, q, args...)
    if err != nil {
        return err
    }
    if n, err := res.RowsAffected(); err == nil && n == 0 {
        return ErrNotFound
    }
    return nil
}

func (p *Postgres) ListSweepCandidates(ctx context.Context, since time.Time, limit int) ([]model.SweepCandidate, error) {
    rows, err := p.db.QueryContext(ctx, `
        SELECT o.id, o.number, o.customer_name, o.salesperson,
               m.personnel_number, COALESCE(m.order_taker_number, ''), o.remote_order_number
        FROM orders o
        JOIN vendor_mappings m ON UPPER(BTRIM(o.salesperson)) = UPPER(BTRIM(m.salesperson))
        WHERE o.sent
          AND COALESCE(o.remote_order_number, '') <> ''
          AND o.order_date >= $1
        ORDER BY o.order_date DESC
        LIMIT $2`, since, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.SweepCandidate
    for rows.Next() {
        var c model.SweepCandidate
        if err := rows.Scan(&c.OrderID, &c.Number, &c.CustomerName, &c.Salesperson,
            &c.SalespersonNumber, &c.OrderTakerNumber, &c.RemoteOrderNumber); err != nil {
            return nil, err
        }
        out = append(out, c)
    }
    return out, rows.Err()
}

func (p *Postgres) Dashboard(ctx context.Context) (model.DashboardData, error) {
    var d model.DashboardData
    err := p.db.QueryRowContext(ctx, `
        SELECT COUNT(*),
               COALESCE(SUM(total), 0),
               COALESCE(AVG(total), 0),
               COUNT(*) FILTER (WHERE sent),
               COUNT(*) FILTER (WHERE NOT sent AND COALESCE(sync_error, '') = ''),
               COUNT(*) FILTER (WHERE COALESCE(sync_error, '') <> ''),
               COUNT(DISTINCT salesperson),
               COUNT(DISTINCT customer_name)
        FROM orders`).Scan(
        &d.KPIs.TotalOrders, &d.KPIs.TotalAmount, &d.KPIs.AverageOrder,
        &d.KPIs.Sent, &d.KPIs.Pending, &d.KPIs.Failed,
        &d.KPIs.Salespeople, &d.KPIs.Customers)
    if err != nil {
        return d, err
    }
    top := func(col string) ([]model.NameTotal, error) {
        rows, err := p.db.QueryContext(ctx, `SELECT `+col+`, COUNT(*), COALESCE(SUM(total), 0)
            FROM orders GROUP BY `+col+` ORDER BY COALESCE(SUM(total), 0) DESC LIMIT 10`)
        if err != nil {
            return nil, err
        }
        defer rows.Close()
        var out []model.NameTotal
        for rows.Next() {
            var nt model.NameTotal
            if err := rows.Scan(&nt.Name, &nt.Orders, &nt.Amount); err != nil {
                return nil, err
            }
            out = append(out, nt)
        }
        return out, rows.Err()
    }
    if d.TopSalespeople, err = top("salesperson"); err != nil {
        return d, err
    }
    if d.TopCustomers, err = top("customer_name"); err != nil {
        return d, err
    }
    rows, err := p.db.QueryContext(ctx, `SELECT`+orderColumns+orderFrom+` ORDER BY o.order_date DESC LIMIT 5`)
    if err != nil {
        return d, err
    }
    defer rows.Close()
    for rows.Next() {
        o, err := scanOrder(rows)
        if err != nil {
            return d, err
        }
        d.RecentOrders = append(d.RecentOrders, o)
    }
    return d, rows.Err()
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }
