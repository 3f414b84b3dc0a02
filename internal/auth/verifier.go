// Package auth provides bearer token verification for the mutating
// operator endpoints (retry, reset, trigger).
package auth

import (
    "crypto/hmac"
    "crypto/sha256"
    "encoding/base64"
    "encoding/json"
    "errors"
    "strings"

    "ordersync/internal/config"
)

// Verifier validates bearer tokens. Modes: dev (no verify, everyone is an
// operator) and hmac (HS256 JWT with a role claim).
type Verifier struct {
    Mode       string
    HMACSecret []byte
}

type Principal struct {
    Subject string
    Role    string
}

func (p Principal) IsOperator() bool { return p.Role == "operator" || p.Role == "admin" }

func NewVerifier(cfg config.AuthConfig) *Verifier {
    mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
    if mode == "" {
        mode = "dev"
    }
    return &Verifier{Mode: mode, HMACSecret: []byte(cfg.HMACSecret)}
}

var errInvalidToken = errors.New("invalid token")

// Verify parses and checks the token. In dev mode any token (including
// none) yields an admin principal.
func (v *Verifier) Verify(token string) (Principal, error) {
    if v.Mode == "dev" {
        return Principal{Subject: "dev", Role: "admin"}, nil
    }
    parts := strings.Split(token, ".")
    if len(parts) != 3 {
        return Principal{}, errInvalidToken
    }
    signed := parts[0] + "." + parts[1]
    sig, err := base64.RawURLEncoding.DecodeString(parts[2])
    if err != nil {
        return Principal{}, errInvalidToken
    }
    mac := hmac.New(sha256.New, v.HMACSecret)
    mac.Write([]byte(signed))
    if !hmac.Equal(sig, mac.Sum(nil)) {
        return Principal{}, errInvalidToken
    }
    payload, err := base64.RawURLEncoding.DecodeString(parts[1])
    if err != nil {
        return Principal{}, errInvalidToken
    }
    var claims struct {
        Sub  string `json:"sub"`
        Role string `json:"role"`
    }
    if err := json.Unmarshal(payload, &claims); err != nil {
        return Principal{}, errInvalidToken
    }
    return Principal{Subject: claims.Sub, Role: claims.Role}, nil
}
