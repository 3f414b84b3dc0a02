// Package config loads service configuration from an optional YAML file
// with environment variable overrides. Every knob has a default so the
// binary runs with no config at all (memory store, sync loop idle).
package config

import (
    "fmt"
    "os"
    "strconv"

    "gopkg.in/yaml.v3"
)

type Config struct {
    Port        string `yaml:"port"`
    DatabaseURL string `yaml:"databaseUrl"`
    RedisURL    string `yaml:"redisUrl"`

    Auth AuthConfig `yaml:"auth"`
    ERP  ERPConfig  `yaml:"erp"`
    Sync SyncConfig `yaml:"sync"`
}

type AuthConfig struct {
    Mode       string `yaml:"mode"` // dev (no verify) or hmac (HS256)
    HMACSecret string `yaml:"hmacSecret"`
}

// ERPConfig describes the remote order-entry endpoint and the OAuth2
// client-credentials app registered for it.
type ERPConfig struct {
    ResourceURL  string  `yaml:"resourceUrl"`
    TenantID     string  `yaml:"tenantId"`
    ClientID     string  `yaml:"clientId"`
    ClientSecret string  `yaml:"clientSecret"`
    Company      string  `yaml:"company"`   // dataAreaId stamped on every entity
    Currency     string  `yaml:"currency"`  // CurrencyCode on created headers
    SalesUnit    string  `yaml:"salesUnit"` // SalesUnitSymbol on created lines
    RateRPS      float64 `yaml:"rateRps"`
    RateBurst    int     `yaml:"rateBurst"`
}

type SyncConfig struct {
    Enabled          bool `yaml:"enabled"`
    IntervalSec      int  `yaml:"intervalSec"`
    SettleDelaySec   int  `yaml:"settleDelaySec"`
    SweepEvery       int  `yaml:"sweepEvery"`      // run the corrective sweep every Nth cycle
    SweepLookbackHrs int  `yaml:"sweepLookbackHrs"`
    SweepLimit       int  `yaml:"sweepLimit"`
    LogSize          int  `yaml:"logSize"`
}

func Default() Config {
    return Config{
        Port: "8080",
        Auth: AuthConfig{Mode: "dev"},
        ERP: ERPConfig{
            Company:   "maco",
            Currency:  "DOP",
            SalesUnit: "UND",
            RateRPS:   5,
            RateBurst: 5,
        },
        Sync: SyncConfig{
            Enabled:          true,
            IntervalSec:      30,
            SettleDelaySec:   10,
            SweepEvery:       10,
            SweepLookbackHrs: 4,
            SweepLimit:       30,
            LogSize:          100,
        },
    }
}

// Load reads the YAML file at path (or $CONFIG_FILE when path is empty),
// then applies environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
    cfg := Default()
    if path == "" {
        path = os.Getenv("CONFIG_FILE")
    }
    if path != "" {
        b, err := os.ReadFile(path)
        if err != nil {
            if !os.IsNotExist(err) {
                return cfg, fmt.Errorf("read config: %w", err)
            }
        } else if err := yaml.Unmarshal(b, &cfg); err != nil {
            return cfg, fmt.Errorf("parse config %s: %w", path, err)
        }
    }
    cfg.applyEnv()
    return cfg, nil
}

func (c *Config) applyEnv() {
    setStr(&c.Port, "PORT")
    setStr(&c.DatabaseURL, "DATABASE_URL")
    setStr(&c.RedisURL, "REDIS_URL")
    setStr(&c.Auth.Mode, "AUTH_MODE")
    setStr(&c.Auth.HMACSecret, "AUTH_HMAC_SECRET")
    setStr(&c.ERP.ResourceURL, "ERP_RESOURCE_URL")
    setStr(&c.ERP.TenantID, "ERP_TENANT_ID")
    setStr(&c.ERP.ClientID, "ERP_CLIENT_ID")
    setStr(&c.ERP.ClientSecret, "ERP_CLIENT_SECRET")
    setStr(&c.ERP.Company, "ERP_COMPANY")
    setStr(&c.ERP.Currency, "ERP_CURRENCY")
    setStr(&c.ERP.SalesUnit, "ERP_SALES_UNIT")
    setInt(&c.Sync.IntervalSec, "SYNC_INTERVAL_SEC")
    setInt(&c.Sync.SettleDelaySec, "SYNC_SETTLE_DELAY_SEC")
    setInt(&c.Sync.SweepEvery, "SYNC_SWEEP_EVERY")
    setInt(&c.Sync.SweepLookbackHrs, "SYNC_SWEEP_LOOKBACK_HRS")
    setInt(&c.Sync.SweepLimit, "SYNC_SWEEP_LIMIT")
    setInt(&c.Sync.LogSize, "SYNC_LOG_SIZE")
    if v := os.Getenv("SYNC_ENABLED"); v != "" {
        c.Sync.Enabled = v != "false" && v != "0"
    }
}

func setStr(dst *string, key string) {
    if v := os.Getenv(key); v != "" {
        *dst = v
    }
}

func setInt(dst *int, key string) {
    if v := os.Getenv(key); v != "" {
        if n, err := strconv.Atoi(v); err == nil {
            *dst = n
        }
    }
}
