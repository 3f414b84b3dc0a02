package config

import (
    "os"
    "path/filepath"
    "testing"
)

func TestDefaults(t *testing.T) {
    cfg := Default()
    if cfg.Port != "8080" || cfg.Auth.Mode != "dev" {
        t.Fatalf("defaults: %+v", cfg)
    }
    if cfg.ERP.Company != "maco" || cfg.ERP.Currency != "DOP" || cfg.ERP.SalesUnit != "UND" {
        t.Fatalf("erp defaults: %+v", cfg.ERP)
    }
    s := cfg.Sync
    if !s.Enabled || s.IntervalSec != 30 || s.SettleDelaySec != 10 || s.SweepEvery != 10 ||
        s.SweepLookbackHrs != 4 || s.SweepLimit != 30 || s.LogSize != 100 {
        t.Fatalf("sync defaults: %+v", s)
    }
}

func TestLoadYAML(t *testing.T) {
    path := filepath.Join(t.TempDir(), "config.yaml")
    body := `
port: "9090"
databaseUrl: postgres://localhost/orders
erp:
  resourceUrl: https://erp.example.com
  company: test
sync:
  intervalSec: 5
  sweepEvery: 3
`
    if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
        t.Fatal(err)
    }
    cfg, err := Load(path)
    if err != nil {
        t.Fatalf("load: %v", err)
    }
    if cfg.Port != "9090" || cfg.DatabaseURL != "postgres://localhost/orders" {
        t.Fatalf("top level: %+v", cfg)
    }
    if cfg.ERP.ResourceURL != "https://erp.example.com" || cfg.ERP.Company != "test" {
        t.Fatalf("erp: %+v", cfg.ERP)
    }
    if cfg.Sync.IntervalSec != 5 || cfg.Sync.SweepEvery != 3 {
        t.Fatalf("sync: %+v", cfg.Sync)
    }
    // Keys absent from the file keep their defaults.
    if cfg.ERP.Currency != "DOP" || cfg.Sync.SweepLimit != 30 {
        t.Fatalf("defaults lost: %+v", cfg)
    }
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
    cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
    if err != nil {
        t.Fatalf("load: %v", err)
    }
    if cfg.Port != "8080" {
        t.Fatalf("cfg: %+v", cfg)
    }
}

func TestEnvOverrides(t *testing.T) {
    t.Setenv("PORT", "7070")
    t.Setenv("ERP_COMPANY", "other")
    t.Setenv("SYNC_INTERVAL_SEC", "60")
    t.Setenv("SYNC_ENABLED", "false")

    cfg, err := Load("")
    if err != nil {
        t.Fatalf("load: %v", err)
    }
    if cfg.Port != "7070" || cfg.ERP.Company != "other" || cfg.Sync.IntervalSec != 60 {
        t.Fatalf("overrides: %+v", cfg)
    }
    if cfg.Sync.Enabled {
        t.Fatal("SYNC_ENABLED=false not applied")
    }
}
