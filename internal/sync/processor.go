package sync

import (
    "context"
    "time"

    "ordersync/internal/erp"
    "ordersync/internal/model"
)

// ProcessOrder drives one order from pending to sent: re-check for an
// already-assigned remote number, duplicate lookup by local reference,
// header creation with immediate persistence, line insertion, settling
// delay, best-effort corrective patch, mark sent.
//
// It is idempotent: a remote order number, once known, is adopted rather
// than re-created, so a crash or a concurrent run between header creation
// and line insertion resumes at the lines step instead of producing a
// duplicate header. Any remote failure aborts at the current step and is
// returned to the caller for classification.
func (e *Engine) ProcessOrder(ctx context.Context, token string, o model.Order) (string, error) {
    e.logf("--- order %s | %s | %.2f", o.Number, o.CustomerName, o.Total)

    // Re-read before creating anything. The manual retry path runs outside
    // the single-flight guard, so this re-check is the only thing standing
    // between a concurrent invocation and a duplicate remote header.
    fresh, err := e.Store.GetOrder(ctx, o.ID)
    if err != nil {
        return "", err
    }
    remote := fresh.RemoteOrderNumber
    if remote != "" {
        e.logf("  remote order already assigned (%s), skipping header creation", remote)
    } else {
        if fresh.SalespersonNumber != "" {
            e.logf("  responsible: %s -> %s", fresh.Salesperson, fresh.SalespersonNumber)
        } else {
            e.logf("  warning: no personnel mapping for salesperson %q", fresh.Salesperson)
        }

        // The remote side does not enforce local-reference uniqueness, so
        // check for an existing header carrying our reference first.
        if fresh.Number != "" {
            existing, err := e.Gateway.FindOrderByReference(ctx, token, fresh.Number)
            if err != nil {
                return "", err
            }
            if existing != "" {
                e.logf("  duplicate avoided: %s already carries reference %s, adopting it", existing, fresh.Number)
                remote = existing
            }
        }
        if remote == "" {
            e.logf("  creating header -> account %s | ref %s", fresh.CustomerAccount, fresh.Number)
            remote, err = e.Gateway.CreateHeader(ctx, token, e.Gateway.HeaderFor(fresh))
            if err != nil {
                return "", err
            }
            e.logf("  header created -> %s", remote)
        }
        // Persist immediately so a crash before the lines go in cannot
        // produce a second header on retry.
        if err := e.Store.RecordRemoteOrder(ctx, o.ID, remote); err != nil {
            return "", err
        }
    }

    lines, err := e.Store.ListOrderLines(ctx, o.ID)
    if err != nil {
        return "", err
    }
    e.logf("  inserting lines (%d captured)", len(lines))
    lineNo := 0
    for _, l := range lines {
        if l.Quantity <= 0 {
            continue
        }
        lineNo++
        if err := e.Gateway.AddLine(ctx, token, e.Gateway.LineFor(remote, l, lineNo)); err != nil {
            return "", err
        }
    }
    e.logf("  %d line(s) inserted", lineNo)

    // The remote system runs asynchronous validation after line writes
    // that overwrites header fields; patching before it settles is undone.
    if e.SettleDelay > 0 {
        time.Sleep(e.SettleDelay)
    }

    patch := e.headerPatch(fresh)
    if err := e.Gateway.PatchHeader(ctx, token, remote, patch); err != nil {
        e.logf("  patch failed on %s: %v (order will be marked sent anyway)", remote, err)
    } else {
        e.logf("  patch ok -> resp %s | ref %s", orDash(fresh.SalespersonNumber), fresh.Salesperson)
    }

    if err := e.Store.MarkSent(ctx, o.ID, remote); err != nil {
        return "", err
    }
    e.logf("  completed -> %s = %s", fresh.Number, remote)
    return remote, nil
}

func (e *Engine) headerPatch(o model.Order) (p erp.HeaderPatch) {
    p.CustomerRequisitionNumber = o.Number
    p.CustomersOrderReference = o.Salesperson
    p.SalesOrderName = o.CustomerName
    if o.SalespersonNumber != "" {
        p.OrderResponsiblePersonnelNumber = o.SalespersonNumber
        p.OrderTakerPersonnelNumber = o.SalespersonNumber
    }
    return p
}

func orDash(s string) string {
    if s == "" {
        return "-"
    }
    return s
}
