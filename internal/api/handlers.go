package api

import (
    "errors"
    "net/http"
    "strconv"
    "strings"

    "ordersync/internal/auth"
    "ordersync/internal/buildinfo"
    "ordersync/internal/erp"
    "ordersync/internal/store"
)

func (s *Server) getPrincipal(r *http.Request) auth.Principal {
    authz := r.Header.Get("Authorization")
    if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
        tok := strings.TrimSpace(authz[len("Bearer "):])
        if pr, err := s.Auth.Verify(tok); err == nil {
            return pr
        }
        return auth.Principal{}
    }
    if s.Auth.Mode == "dev" {
        return auth.Principal{Subject: "dev", Role: "admin"}
    }
    return auth.Principal{}
}

func (s *Server) requireOperator(w http.ResponseWriter, r *http.Request) bool {
    if s.getPrincipal(r).IsOperator() {
        return true
    }
    writeProblem(w, http.StatusForbidden, "Forbidden", "operator role required", r.URL.Path)
    return false
}

// OrdersHandler handles GET /api/orders
func (s *Server) OrdersHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    items, err := s.Store.ListOrders(r.Context())
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "List orders failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// OrderByIDHandler handles /api/orders/{id}/lines, /retry and /reset.
func (s *Server) OrderByIDHandler(w http.ResponseWriter, r *http.Request) {
    rest := strings.TrimPrefix(r.URL.Path, "/api/orders/")
    if rest == r.URL.Path || rest == "" {
        writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
        return
    }
    parts := strings.SplitN(rest, "/", 2)
    id, err := strconv.ParseInt(parts[0], 10, 64)
    if err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid id", parts[0], r.URL.Path)
        return
    }
    action := ""
    if len(parts) == 2 {
        action = parts[1]
    }
    switch {
    case action == "lines" && r.Method == http.MethodGet:
        lines, err := s.Store.ListOrderLines(r.Context(), id)
        if err != nil {
            writeProblem(w, http.StatusInternalServerError, "List lines failed", err.Error(), r.URL.Path)
            return
        }
        writeJSON(w, http.StatusOK, map[string]any{"items": lines})
    case action == "retry" && r.Method == http.MethodPost:
        s.retryOrder(w, r, id)
    case action == "reset" && r.Method == http.MethodPost:
        if !s.requireOperator(w, r) {
            return
        }
        if err := s.Store.ResetSyncStatus(r.Context(), id); err != nil {
            if errors.Is(err, store.ErrNotFound) {
                writeProblem(w, http.StatusNotFound, "Order not found", "", r.URL.Path)
                return
            }
            writeProblem(w, http.StatusInternalServerError, "Reset failed", err.Error(), r.URL.Path)
            return
        }
        writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
    default:
        writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
    }
}

// retryOrder runs the processor for one order outside the scheduled loop.
// Same contract and idempotency guarantees as a scheduled run; the
// processor's re-check defends against racing a concurrent cycle.
func (s *Server) retryOrder(w http.ResponseWriter, r *http.Request, id int64) {
    if !s.requireOperator(w, r) {
        return
    }
    order, err := s.Store.GetOrder(r.Context(), id)
    if err != nil {
        if errors.Is(err, store.ErrNotFound) {
            writeProblem(w, http.StatusNotFound, "Order not found", "", r.URL.Path)
            return
        }
        writeProblem(w, http.StatusInternalServerError, "Load order failed", err.Error(), r.URL.Path)
        return
    }
    token, err := s.Engine.Tokens.Token(r.Context())
    if err != nil {
        writeProblem(w, http.StatusBadGateway, "Token acquisition failed", err.Error(), r.URL.Path)
        return
    }
    remote, err := s.Engine.ProcessOrder(r.Context(), token, order)
    if err != nil {
        writeProblem(w, http.StatusBadGateway, "Sync failed", erp.Classify(err), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"ok": true, "remoteOrderNumber": remote})
}

// SyncStatusHandler handles GET /api/sync/status
func (s *Server) SyncStatusHandler(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, http.StatusOK, s.Engine.Status())
}

// SyncLogHandler handles GET /api/sync/log
func (s *Server) SyncLogHandler(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, http.StatusOK, map[string]any{"items": s.Engine.Log()})
}

// SyncTriggerHandler handles POST /api/sync/trigger. Triggering while a
// cycle runs is a no-op by design.
func (s *Server) SyncTriggerHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    if !s.requireOperator(w, r) {
        return
    }
    s.Engine.RunCycle(r.Context())
    entries := s.Engine.Log()
    if len(entries) > 10 {
        entries = entries[len(entries)-10:]
    }
    writeJSON(w, http.StatusOK, map[string]any{"ok": true, "log": entries})
}

// DashboardHandler handles GET /api/dashboard
func (s *Server) DashboardHandler(w http.ResponseWriter, r *http.Request) {
    data, err := s.Store.Dashboard(r.Context())
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "Dashboard query failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, data)
}

// HealthHandler handles GET /api/health
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
    if err := s.Store.Ping(r.Context()); err != nil {
        writeJSON(w, http.StatusInternalServerError, map[string]any{"status": "error", "db": err.Error()})
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "db": "connected", "sync": s.Engine.Status()})
}

// ReadyHandler handles GET /readyz
func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// DebugHandler handles GET /api/debug
func (s *Server) DebugHandler(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, http.StatusOK, map[string]any{
        "build": buildinfo.Info(),
        "sync":  s.Engine.Status(),
        "config": map[string]any{
            "port":          s.Cfg.Port,
            "authMode":      s.Auth.Mode,
            "hasDatabase":   s.Cfg.DatabaseURL != "",
            "hasRedis":      s.Cfg.RedisURL != "",
            "erpConfigured": s.Cfg.ERP.TenantID != "",
            "company":       s.Cfg.ERP.Company,
            "intervalSec":   s.Cfg.Sync.IntervalSec,
        },
    })
}
