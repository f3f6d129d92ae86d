package fedex

import (
	"context"
	"sync"
	"time"

	"github.com/emxanuel/cybership-test/pkg/carrier"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnRate func(ctx context.Context, req *RateRequest) (*RateResponse, error)

	mu          sync.Mutex
	lastRequest *RateRequest
	calls       int
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// Rate returns mock rate quotes.
func (m *MockAPIClient) Rate(ctx context.Context, req *RateRequest) (*RateResponse, error) {
	m.mu.Lock()
	m.lastRequest = req
	m.calls++
	m.mu.Unlock()

	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, carrier.NewAPIError(carrierName, "MOCK_ERROR", "Simulated API error")
	}

	if m.OnRate != nil {
		return m.OnRate(ctx, req)
	}

	return &RateResponse{
		TransactionID: "mock-txn",
		Output: Output{
			RateReplyDetails: []RateReplyDetail{
				{
					ServiceType: "FEDEX_GROUND",
					ServiceName: "FedEx Ground",
					RatedShipmentDetails: []RatedShipmentDetail{
						{
							RateType:       "ACCOUNT",
							TotalNetCharge: 14.20,
							Currency:       "USD",
							ShipmentRateDetail: &ShipmentRateDetail{
								TotalBaseCharge: 12.80,
								TotalTaxes:      0,
								Surcharges: []Surcharge{
									{Type: "FUEL", Description: "Fuel Surcharge", Amount: 1.40},
								},
							},
						},
						{
							RateType:       "LIST",
							TotalNetCharge: 16.45,
							Currency:       "USD",
						},
					},
				},
			},
		},
	}, nil
}

// LastRequest returns the most recent request passed to Rate.
func (m *MockAPIClient) LastRequest() *RateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// Calls returns how many times Rate was invoked.
func (m *MockAPIClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Ensure MockAPIClient implements APIClient interface
var _ APIClient = (*MockAPIClient)(nil)
