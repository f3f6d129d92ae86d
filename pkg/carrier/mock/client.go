// Package mock provides a mock carrier implementation for testing and
// local development.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/emxanuel/cybership-test/pkg/carrier"
)

// Client is a mock carrier. By default it returns a fixed quote; an
// injected error or latency can be configured to exercise failure
// isolation and ordering in the aggregation engine.
type Client struct {
	name  string
	quote carrier.Quote
	err   error
	delay time.Duration

	mu    sync.Mutex
	calls int
}

// New creates a new mock carrier with a canned quote.
func New(name string) *Client {
	return &Client{
		name: name,
		quote: carrier.Quote{
			ServiceCode: "STANDARD",
			ServiceName: fmt.Sprintf("%s Standard", name),
			TotalPrice:  15.82,
			Currency:    "USD",
			Breakdown: &carrier.Breakdown{
				BasePrice:     12.50,
				FuelSurcharge: 1.50,
				Taxes:         1.82,
			},
		},
	}
}

// NewWithQuote creates a mock carrier returning the given quote.
func NewWithQuote(name string, quote carrier.Quote) *Client {
	return &Client{name: name, quote: quote}
}

// NewWithError creates a mock carrier whose GetRate always fails.
func NewWithError(name string, err error) *Client {
	return &Client{name: name, err: err}
}

// WithDelay makes every GetRate call sleep first.
func (c *Client) WithDelay(d time.Duration) *Client {
	c.delay = d
	return c
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// GetRate returns the configured quote or error.
func (c *Client) GetRate(ctx context.Context, req carrier.RateRequest) (carrier.Quote, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return carrier.Quote{}, ctx.Err()
		}
	}

	if c.err != nil {
		return carrier.Quote{}, c.err
	}
	return c.quote, nil
}

// Calls returns how many times GetRate was invoked.
func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Ensure Client implements the rate capability
var _ carrier.RateProvider = (*Client)(nil)
