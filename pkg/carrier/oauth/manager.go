// Package oauth manages OAuth client-credentials bearer tokens for
// carrier APIs: one cached credential per manager, refreshed early and
// replaced wholesale, never handed out within the safety margin of its
// expiry.
package oauth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/emxanuel/cybership-test/pkg/carrier"
	"github.com/emxanuel/cybership-test/pkg/carrier/rest"
)

// refreshBuffer is the safety margin below which a cached token is
// considered stale. Tokens are refreshed early rather than reactively
// after a 401, because callers have no retry path on auth failure.
const refreshBuffer = 5 * time.Minute

// Style selects how client credentials are presented to the token
// endpoint.
type Style string

const (
	// StyleBasic sends base64(clientID:clientSecret) as HTTP Basic auth.
	StyleBasic Style = "basic"
	// StyleParams sends client_id/client_secret in the form body.
	StyleParams Style = "params"
)

// Config holds the client-credentials settings for one carrier.
type Config struct {
	Carrier      string
	ClientID     string
	ClientSecret string
	// TokenURL is the token endpoint, either absolute or a path
	// resolved against the REST client's base URL.
	TokenURL string
	Style    Style
	// Headers are sent on every acquisition (e.g., a merchant-
	// identifying header).
	Headers map[string]string
	// OnAcquire observes every acquisition attempt with outcome
	// "ok" or "error". Cache hits are not reported.
	OnAcquire func(outcome string)
}

// Manager owns a single cached credential. The read-check-refresh-write
// sequence runs under one lock, so concurrent callers always observe
// either the old or the new credential, never a torn value, and a
// refresh is never performed twice for the same expiry.
type Manager struct {
	cfg  Config
	rest *rest.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	now func() time.Time
}

// NewManager creates a token manager for one carrier configuration.
func NewManager(cfg Config, rc *rest.Client) *Manager {
	if cfg.Style == "" {
		cfg.Style = StyleBasic
	}
	return &Manager{
		cfg:  cfg,
		rest: rc,
		now:  time.Now,
	}
}

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   json.Number `json:"expires_in"`
	IssuedAt    string      `json:"issued_at"`
	Status      string      `json:"status"`
}

// Token returns a bearer token with more than refreshBuffer of
// lifetime remaining, acquiring a fresh one when the cache is empty or
// stale. A failed acquisition leaves the previous cache untouched.
func (m *Manager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" && m.now().Add(refreshBuffer).Before(m.expiresAt) {
		return m.token, nil
	}

	token, ttl, err := m.acquire(ctx)
	if m.cfg.OnAcquire != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		m.cfg.OnAcquire(outcome)
	}
	if err != nil {
		return "", err
	}
	m.token = token
	m.expiresAt = m.now().Add(ttl)
	return token, nil
}

// AuthorizationHeader returns "Bearer <token>" for a valid token.
func (m *Manager) AuthorizationHeader(ctx context.Context) (string, error) {
	token, err := m.Token(ctx)
	if err != nil {
		return "", err
	}
	return "Bearer " + token, nil
}

// Invalidate clears the cached credential unconditionally. The next
// Token call performs a fresh acquisition. Used for credential
// rotation and test isolation.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.expiresAt = time.Time{}
}

func (m *Manager) acquire(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	headers := map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	}
	switch m.cfg.Style {
	case StyleParams:
		form.Set("client_id", m.cfg.ClientID)
		form.Set("client_secret", m.cfg.ClientSecret)
	default:
		creds := base64.StdEncoding.EncodeToString([]byte(m.cfg.ClientID + ":" + m.cfg.ClientSecret))
		headers["Authorization"] = "Basic " + creds
	}
	for k, v := range m.cfg.Headers {
		headers[k] = v
	}

	resp, err := m.rest.Do(ctx, http.MethodPost, m.cfg.TokenURL, headers, form.Encode())
	if err != nil {
		var terr *carrier.TransportError
		if errors.As(err, &terr) {
			if terr.Malformed {
				return "", 0, fmt.Errorf("%s: %w", m.cfg.Carrier, carrier.ErrMalformedTokenResponse)
			}
			return "", 0, &carrier.TokenError{
				Carrier:    m.cfg.Carrier,
				StatusCode: terr.StatusCode,
				Body:       terr.Body,
			}
		}
		return "", 0, fmt.Errorf("%s token request: %w", m.cfg.Carrier, err)
	}

	var tr tokenResponse
	if resp.NoContent() || resp.Decode(&tr) != nil || tr.AccessToken == "" {
		return "", 0, fmt.Errorf("%s: %w", m.cfg.Carrier, carrier.ErrMalformedTokenResponse)
	}

	// A missing or unparsable expiry yields a zero TTL: the token is
	// returned once and re-acquired on the next call.
	ttlSeconds, err := tr.ExpiresIn.Int64()
	if err != nil {
		ttlSeconds = 0
	}
	return tr.AccessToken, time.Duration(ttlSeconds) * time.Second, nil
}
