// Package api implements the operator HTTP surface: order/state queries,
// the manual retry path, sync status and live log streaming.
package api

import (
    "context"
    "log"
    "strings"

    "ordersync/internal/auth"
    "ordersync/internal/config"
    "ordersync/internal/erp"
    "ordersync/internal/store"
    syncengine "ordersync/internal/sync"
)

type Server struct {
    Cfg    config.Config
    Store  store.Store
    Engine *syncengine.Engine
    Auth   *auth.Verifier
    Broker EventBroker
}

// NewServer wires the store, the remote gateway, and the sync engine. If
// DatabaseURL is unset, uses the in-memory store.
func NewServer(cfg config.Config) (*Server, error) {
    var s store.Store
    if strings.TrimSpace(cfg.DatabaseURL) == "" {
        s = store.NewMemory()
    } else {
        sp, err := store.NewPostgres(cfg.DatabaseURL)
        if err != nil {
            return nil, err
        }
        if err := sp.EnsureSchema(context.Background()); err != nil {
            return nil, err
        }
        s = sp
    }

    var broker EventBroker
    if cfg.RedisURL != "" {
        rb, err := NewRedisBroker(cfg.RedisURL)
        if err != nil {
            log.Printf("redis broker unavailable, falling back to in-process: %v", err)
            broker = NewBroker()
        } else {
            broker = rb
        }
    } else {
        broker = NewBroker()
    }

    gw := erp.NewClient(cfg.ERP)
    var tokens erp.TokenProvider
    if cfg.ERP.TenantID != "" {
        tokens = erp.NewAADTokens(cfg.ERP)
    } else {
        // No directory configured: dev stub endpoints accept anything.
        tokens = erp.StaticToken("dev")
    }

    eng := syncengine.NewEngine(s, gw, tokens, cfg.Sync)
    eng.OnLog = broker.Publish

    return &Server{
        Cfg:    cfg,
        Store:  s,
        Engine: eng,
        Auth:   auth.NewVerifier(cfg.Auth),
        Broker: broker,
    }, nil
}
