package ups

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

// Rate returns mock rated shipments.
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
		RateResponse: RateResponseBody{
			Response: ResponseStatus{
				ResponseStatus: CodeDescription{Code: "1", Description: "Success"},
			},
			RatedShipment: RatedShipments{
				{
					Service: CodeDescription{Code: "03"},
					TotalCharges: Charge{
						CurrencyCode:  "USD",
						MonetaryValue: "11.63",
					},
					NegotiatedRateCharges: &NegotiatedRateCharges{
						TotalCharge: Charge{
							CurrencyCode:  "USD",
							MonetaryValue: "10.88",
						},
					},
					ItemizedCharges: ItemizedCharges{
						{Code: fuelSurchargeCode, Description: "Fuel Surcharge", CurrencyCode: "USD", MonetaryValue: "1.09"},
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
