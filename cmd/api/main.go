package main

import (
    "bufio"
    "errors"
    "log"
    "net"
    "net/http"
    "strconv"
    "time"

    "github.com/prometheus/client_golang/prometheus/promhttp"

    "ordersync/internal/api"
    "ordersync/internal/config"
    "ordersync/internal/metrics"
)

func main() {
    cfg, err := config.Load("")
    if err != nil {
        log.Fatalf("failed to load config: %v", err)
    }
    metrics.RegisterDefault()

    srv, err := api.NewServer(cfg)
    if err != nil {
        log.Fatalf("failed to init server: %v", err)
    }

    mux := http.NewServeMux()

    // Orders
    mux.HandleFunc("/api/orders", srv.OrdersHandler)
    mux.HandleFunc("/api/orders/", srv.OrderByIDHandler) // includes /lines, /retry, /reset

    // Sync engine
    mux.HandleFunc("/api/sync/status", srv.SyncStatusHandler)
    mux.HandleFunc("/api/sync/log", srv.SyncLogHandler)
    mux.HandleFunc("/api/sync/log/stream", srv.SyncLogStreamHandler)
    mux.HandleFunc("/api/sync/trigger", srv.SyncTriggerHandler)

    // Dashboard
    mux.HandleFunc("/api/dashboard", srv.DashboardHandler)

    // Health & debug
    mux.HandleFunc("/api/health", srv.HealthHandler)
    mux.HandleFunc("/readyz", srv.ReadyHandler)
    mux.HandleFunc("/api/debug", srv.DebugHandler)

    mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

    addr := ":" + cfg.Port

    httpSrv := &http.Server{
        Addr:              addr,
        Handler:           logMiddleware(mux),
        ReadHeaderTimeout: 5 * time.Second,
    }

    if cfg.Sync.Enabled {
        srv.Engine.Start()
        defer srv.Engine.Stop()
    } else {
        log.Printf("sync loop disabled by config")
    }

    log.Printf("API listening on %s", addr)
    if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
        log.Fatalf("server error: %v", err)
    }
}

func logMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        start := time.Now()
        sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
        next.ServeHTTP(sw, r)
        dur := time.Since(start)
        metrics.HTTPRequests.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(sw.status)).Inc()
        log.Printf("%s %s %s %d %v", r.RemoteAddr, r.Method, r.URL.Path, sw.status, dur)
    })
}

type statusWriter struct {
    http.ResponseWriter
    status int
}

func (w *statusWriter) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

// Hijack keeps the WebSocket upgrade working through the wrapper.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
    h, ok := w.ResponseWriter.(http.Hijacker)
    if !ok {
        return nil, nil, errors.New("hijack not supported")
    }
    return h.Hijack()
}
