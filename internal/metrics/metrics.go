package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/collectors"
)

var (
    // Registry is the dedicated Prometheus registry for the service
    Registry = prometheus.NewRegistry()
    // HTTPRequests counts requests by method, path, and status
    HTTPRequests = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
        []string{"method", "path", "status"},
    )
    // SyncCycles counts completed poll cycles
    SyncCycles = prometheus.NewCounter(
        prometheus.CounterOpts{Name: "sync_cycles_total", Help: "Completed sync poll cycles."},
    )
    // OrdersSynced counts per-order outcomes by result (sent, failed)
    OrdersSynced = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "orders_synced_total", Help: "Order sync outcomes."},
        []string{"result"},
    )
    // RemoteRequests counts remote order-entry calls by operation and HTTP status
    RemoteRequests = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "erp_requests_total", Help: "Remote order-entry requests by operation and status."},
        []string{"op", "status"},
    )
    // RemoteLatency tracks remote call latencies in seconds
    RemoteLatency = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "erp_request_duration_seconds", Help: "Remote order-entry request duration.", Buckets: prometheus.DefBuckets},
        []string{"op"},
    )
    // SweepPatches counts corrective patches applied by the sweep
    SweepPatches = prometheus.NewCounter(
        prometheus.CounterOpts{Name: "sync_sweep_patches_total", Help: "Corrective patches applied to drifted remote headers."},
    )
)

// RegisterDefault registers collectors to the service registry.
func RegisterDefault() {
    regOnce.Do(func() {
        Registry.MustRegister(HTTPRequests)
        Registry.MustRegister(SyncCycles)
        Registry.MustRegister(OrdersSynced)
        Registry.MustRegister(RemoteRequests)
        Registry.MustRegister(RemoteLatency)
        Registry.MustRegister(SweepPatches)
        // Go/process collectors on our registry
        Registry.MustRegister(collectors.NewGoCollector())
        Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
    })
}

var regOnce sync.Once
