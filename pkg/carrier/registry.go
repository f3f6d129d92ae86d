package carrier

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Registry manages registered carriers and aggregates rate lookups
// across them. Registration order is preserved: aggregated results
// always follow the order carriers were first registered in, never the
// order their responses arrived in. The carrier set is expected to be
// configured once at startup and left alone while serving.
type Registry struct {
	mu        sync.RWMutex
	names     []string
	providers map[string]RateProvider
}

// NewRegistry creates a new carrier registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]RateProvider),
	}
}

// Register adds a carrier to the registry. Re-registering a name
// replaces the provider in place without changing its position.
func (r *Registry) Register(p RateProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := p.Name()
	if _, ok := r.providers[name]; !ok {
		r.names = append(r.names, name)
	}
	r.providers[name] = p
}

// Get returns a carrier by name.
func (r *Registry) Get(name string) (RateProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.providers[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCarrier, name)
}

// Names returns the registered carrier names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Count returns the number of registered carriers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// GetRates validates req and fans it out to every registered carrier
// concurrently. Every launched lookup runs to a terminal state before
// the result is produced: one carrier's failure never cancels, delays,
// or corrupts another's outcome. Failures are isolated into
// RateResult.Errors; the returned error is non-nil only when req fails
// validation, in which case no carrier is dispatched.
func (r *Registry) GetRates(ctx context.Context, req RateRequest) (RateResult, error) {
	if err := ValidateRateRequest(req); err != nil {
		return RateResult{}, err
	}

	r.mu.RLock()
	names := make([]string, len(r.names))
	copy(names, r.names)
	providers := make([]RateProvider, len(names))
	for i, name := range names {
		providers[i] = r.providers[name]
	}
	r.mu.RUnlock()

	result := RateResult{Quotes: make([]CarrierQuote, 0, len(names))}
	if len(names) == 0 {
		return result, nil
	}

	// Index-addressed outcome slots: no shared appends, and the reduce
	// below reads them back in registration order.
	quotes := make([]*Quote, len(names))
	errs := make([]error, len(names))

	var g errgroup.Group
	for i, p := range providers {
		g.Go(func() error {
			q, err := p.GetRate(ctx, req)
			if err != nil {
				errs[i] = err
				return nil // all-settled: never fail the group
			}
			quotes[i] = &q
			return nil
		})
	}
	g.Wait()

	for i, name := range names {
		if errs[i] != nil {
			result.Errors = append(result.Errors, CarrierError{Carrier: name, Err: errs[i]})
			continue
		}
		result.Quotes = append(result.Quotes, CarrierQuote{Carrier: name, Quote: *quotes[i]})
	}
	return result, nil
}

// GetRateFrom validates req and invokes exactly one named carrier. The
// carrier's success or failure propagates unmodified; an unregistered
// name fails with ErrUnknownCarrier before any carrier is touched.
func (r *Registry) GetRateFrom(ctx context.Context, name string, req RateRequest) (Quote, error) {
	if err := ValidateRateRequest(req); err != nil {
		return Quote{}, err
	}
	p, err := r.Get(name)
	if err != nil {
		return Quote{}, err
	}
	return p.GetRate(ctx, req)
}
