package sync

import (
    "context"
    "time"

    "ordersync/internal/erp"
    "ordersync/internal/metrics"
)

// sweep counteracts remote-side field drift on recently sent orders: the
// remote system's internal validation is known to overwrite the
// responsible/reference fields well after the order settled. Best effort
// only; failures are logged and skipped, never escalated to the order.
func (e *Engine) sweep(ctx context.Context, token string) {
    since := time.Now().Add(-e.SweepLookback)
    rows, err := e.Store.ListSweepCandidates(ctx, since, e.SweepLimit)
    if err != nil {
        e.logf("  re-patch query failed: %v", err)
        return
    }
    if len(rows) == 0 {
        return
    }
    corrected := 0
    for _, c := range rows {
        hdr, err := e.Gateway.GetHeader(ctx, token, c.RemoteOrderNumber)
        if err != nil {
            e.logf("  re-patch error %s: %v", c.RemoteOrderNumber, err)
            continue
        }
        if hdr.OrderResponsiblePersonnelNumber == c.SalespersonNumber &&
            hdr.CustomersOrderReference == c.Salesperson &&
            hdr.SalesOrderName == c.CustomerName {
            continue
        }
        patch := erp.HeaderPatch{
            OrderResponsiblePersonnelNumber: c.SalespersonNumber,
            CustomersOrderReference:         c.Salesperson,
            CustomerRequisitionNumber:       c.Number,
            SalesOrderName:                  c.CustomerName,
        }
        // The sweep prefers the secretary mapping as order taker; the
        // processor only ever asserts the salesperson.
        if taker := firstNonEmpty(c.OrderTakerNumber, c.SalespersonNumber); taker != "" {
            patch.SalesOrderTakerPersonnelNumber = taker
        }
        if err := e.Gateway.PatchHeader(ctx, token, c.RemoteOrderNumber, patch); err != nil {
            e.logf("  re-patch error %s: %v", c.RemoteOrderNumber, err)
            continue
        }
        e.logf("  re-patch %s: corrected -> resp=%s ref=%s", c.RemoteOrderNumber, c.SalespersonNumber, c.Salesperson)
        metrics.SweepPatches.Inc()
        corrected++
    }
    if corrected > 0 {
        e.logf("  re-patch pass done: %d order(s) corrected", corrected)
    }
}

func firstNonEmpty(vals ...string) string {
    for _, v := range vals {
        if v != "" {
            return v
        }
    }
    return ""
}
