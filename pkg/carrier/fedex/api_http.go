package fedex

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/emxanuel/cybership-test/pkg/carrier/oauth"
	"github.com/emxanuel/cybership-test/pkg/carrier/rest"
	"github.com/google/uuid"
)

const (
	tokenPath = "/oauth/token"
	ratePath  = "/rate/v1/rates/quotes"
)

// HTTPAPIClient is the production implementation of APIClient.
type HTTPAPIClient struct {
	rest   *rest.Client
	tokens *oauth.Manager
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
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

	// FedEx takes the client credentials in the form body rather than
	// a Basic authorization header.
	tokens := oauth.NewManager(oauth.Config{
		Carrier:      carrierName,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenPath,
		Style:        oauth.StyleParams,
		OnAcquire:    cfg.OnTokenAcquire,
	}, rc)

	return &HTTPAPIClient{
		rest:   rc,
		tokens: tokens,
	}
}

// Rate fetches rate quotes from the FedEx Rate API.
func (c *HTTPAPIClient) Rate(ctx context.Context, req *RateRequest) (*RateResponse, error) {
	auth, err := c.tokens.AuthorizationHeader(ctx)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		"Authorization":             auth,
		"x-customer-transaction-id": uuid.New().String(),
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

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)
