// Package carrier provides an abstraction layer for shipping carriers
// and the engine that aggregates rate quotes across them.
package carrier

import (
	"context"
)

// RateProvider is the rate-quoting capability. Each capability
// (rating, tracking, labels) gets its own narrow contract; a carrier
// declares the capabilities it supports by implementing the matching
// interfaces, and consumers depend only on the contract they need.
type RateProvider interface {
	// Name returns the carrier identifier (e.g., "ups", "fedex").
	Name() string

	// GetRate returns a normalized rate quote for a shipment.
	GetRate(ctx context.Context, req RateRequest) (Quote, error)
}
