package erp

import (
    "context"
    "fmt"
    "strings"

    "golang.org/x/oauth2/clientcredentials"

    "ordersync/internal/config"
)

// TokenProvider yields a bearer credential for the remote endpoint. The
// sync engine fetches one per cycle and treats it as opaque.
type TokenProvider interface {
    Token(ctx context.Context) (string, error)
}

// AADTokens acquires tokens via the OAuth2 client-credentials flow
// against the directory tenant the ERP instance lives in.
type AADTokens struct {
    cc *clientcredentials.Config
}

func NewAADTokens(cfg config.ERPConfig) *AADTokens {
    resource := strings.TrimRight(cfg.ResourceURL, "/")
    return &AADTokens{cc: &clientcredentials.Config{
        ClientID:     cfg.ClientID,
        ClientSecret: cfg.ClientSecret,
        TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID),
        Scopes:       []string{resource + "/.default"},
    }}
}

func (a *AADTokens) Token(ctx context.Context) (string, error) {
    tok, err := a.cc.Token(ctx)
    if err != nil {
        return "", fmt.Errorf("acquire token: %w", err)
    }
    return tok.AccessToken, nil
}

// StaticToken satisfies TokenProvider with a fixed value. Used in dev
// against stub endpoints and throughout the tests.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }
