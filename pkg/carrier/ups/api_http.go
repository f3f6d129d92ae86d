package ups

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/emxanuel/cybership-test/pkg/carrier/oauth"
	"github.com/emxanuel/cybership-test/pkg/carrier/rest"
	"github.com/google/uuid"
)

const (
	tokenPath = "/security/v1/oauth/token"
	ratePath  = "/api/rating/v2403/rate?additionalinfo="
)

// HTTPAPIClient is the production implementation of APIClient. It
// composes the shared REST transport with a client-credentials token
// manager so that no rate request is ever issued with a stale bearer.
type HTTPAPIClient struct {
	rest           *rest.Client
	tokens         *oauth.Manager
	transactionSrc string
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL        string
	ClientID       string
	ClientSecret   string
	TransactionSrc string
	Timeout        time.Duration
	// OnTokenAcquire observes token acquisition attempts ("ok" or
	// "error"), typically wired to a metrics counter.
	OnTokenAcquire func(outcome string)
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	rc := rest.NewClient(rest.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	})

	tokens := oauth.NewManager(oauth.Config{
		Carrier:      carrierName,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenPath,
		Style:        oauth.StyleBasic,
		Headers: map[string]string{
			// The token endpoint identifies the merchant by client id.
			"x-merchant-id": cfg.ClientID,
		},
		OnAcquire: cfg.OnTokenAcquire,
	}, rc)

	return &HTTPAPIClient{
		rest:           rc,
		tokens:         tokens,
		transactionSrc: cfg.TransactionSrc,
	}
}

// Rate fetches rated shipments from the UPS Rating API.
func (c *HTTPAPIClient) Rate(ctx context.Context, req *RateRequest) (*RateResponse, error) {
	auth, err := c.tokens.AuthorizationHeader(ctx)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		"Authorization":  auth,
		"transId":        transactionID(),
		"transactionSrc": c.transactionSrc,
	}

	resp, err := c.rest.Do(ctx, http.MethodPost, ratePath, headers, req)
	if err != nil {
		return nil, err
	}

	var out RateResponse
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode rate response: %w", err)
	}
	return &out, nil
}

// Tokens exposes the token manager for credential rotation.
func (c *HTTPAPIClient) Tokens() *oauth.Manager {
	return c.tokens
}

// transactionID returns a fresh 32-character tracing token. It only
// aids carrier-side diagnostics; a collision carries no correctness
// cost.
func transactionID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)
