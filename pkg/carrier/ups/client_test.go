package ups_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/emxanuel/cybership-test/pkg/carrier"
	"github.com/emxanuel/cybership-test/pkg/carrier/ups"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestClient(mockClient *ups.MockAPIClient) *ups.Client {
	logger := otelzap.New(zap.NewNop())
	return ups.NewWithAPIClient(
		ups.Config{ShipperNumber: "A1B2C3"},
		mockClient,
		logger,
		nil,
	)
}

func testRequest() carrier.RateRequest {
	return carrier.RateRequest{
		Origin: carrier.Address{
			Name:        "Sender",
			Line1:       "123 Main St",
			City:        "Lutherville",
			StateCode:   "MD",
			PostalCode:  "21093",
			CountryCode: "US",
		},
		Destination: carrier.Address{
			Name:        "Receiver",
			Line1:       "456 Oak Ave",
			City:        "Alpharetta",
			StateCode:   "GA",
			PostalCode:  "30005",
			CountryCode: "US",
		},
		Packages: []carrier.Package{
			{Weight: 10, WeightUnit: carrier.WeightLB},
		},
	}
}

func TestClient_GetRate_NegotiatedTakesPrecedence(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client := newTestClient(mockAPI)

	// The default mock response carries a negotiated total of 10.88,
	// a published total of 11.63, and a 1.09 fuel line item.
	quote, err := client.GetRate(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Equal(t, 10.88, quote.TotalPrice)
	assert.Equal(t, "USD", quote.Currency)
	require.NotNil(t, quote.Breakdown)
	assert.Equal(t, 11.63, quote.Breakdown.BasePrice)
	assert.Equal(t, 1.09, quote.Breakdown.FuelSurcharge)
	assert.Equal(t, 10.88, quote.Breakdown.Other)
}

func TestClient_GetRate_NoNegotiatedRate(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, req *ups.RateRequest) (*ups.RateResponse, error) {
		return &ups.RateResponse{
			RateResponse: ups.RateResponseBody{
				RatedShipment: ups.RatedShipments{
					{
						Service:      ups.CodeDescription{Code: "03"},
						TotalCharges: ups.Charge{CurrencyCode: "USD", MonetaryValue: "11.63"},
					},
				},
			},
		}, nil
	}
	client := newTestClient(mockAPI)

	quote, err := client.GetRate(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Equal(t, 11.63, quote.TotalPrice)
	assert.Equal(t, "UPS Ground", quote.ServiceName)
	assert.Equal(t, "03", quote.ServiceCode)
}

func TestClient_GetRate_FirstServiceWins(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, req *ups.RateRequest) (*ups.RateResponse, error) {
		return &ups.RateResponse{
			RateResponse: ups.RateResponseBody{
				RatedShipment: ups.RatedShipments{
					{
						Service:      ups.CodeDescription{Code: "01"},
						TotalCharges: ups.Charge{CurrencyCode: "USD", MonetaryValue: "45.10"},
					},
					{
						Service:      ups.CodeDescription{Code: "03"},
						TotalCharges: ups.Charge{CurrencyCode: "USD", MonetaryValue: "11.63"},
					},
				},
			},
		}, nil
	}
	client := newTestClient(mockAPI)

	quote, err := client.GetRate(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Equal(t, "01", quote.ServiceCode, "first rated service wins, no price sorting")
	assert.Equal(t, 45.10, quote.TotalPrice)
}

func TestClient_GetRate_SentinelOnNoRatedShipment(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, req *ups.RateRequest) (*ups.RateResponse, error) {
		return &ups.RateResponse{}, nil
	}
	client := newTestClient(mockAPI)

	quote, err := client.GetRate(context.Background(), testRequest())

	require.NoError(t, err, "no ratable result degrades gracefully, it is not a failure")
	assert.Equal(t, "ups", quote.ServiceCode)
	assert.Equal(t, "UPS", quote.ServiceName)
	assert.Equal(t, 0.0, quote.TotalPrice)
	assert.Equal(t, "USD", quote.Currency)
}

func TestClient_GetRate_UnparsableMoneyMapsToZero(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, req *ups.RateRequest) (*ups.RateResponse, error) {
		return &ups.RateResponse{
			RateResponse: ups.RateResponseBody{
				RatedShipment: ups.RatedShipments{
					{
						Service:      ups.CodeDescription{Code: "03"},
						TotalCharges: ups.Charge{CurrencyCode: "USD", MonetaryValue: "not-a-number"},
					},
				},
			},
		}, nil
	}
	client := newTestClient(mockAPI)

	quote, err := client.GetRate(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Equal(t, 0.0, quote.TotalPrice)
}

func TestClient_GetRate_FuelByDescription(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.OnRate = func(ctx context.Context, req *ups.RateRequest) (*ups.RateResponse, error) {
		return &ups.RateResponse{
			RateResponse: ups.RateResponseBody{
				RatedShipment: ups.RatedShipments{
					{
						Service:      ups.CodeDescription{Code: "03"},
						TotalCharges: ups.Charge{CurrencyCode: "USD", MonetaryValue: "11.63"},
						ItemizedCharges: ups.ItemizedCharges{
							{Code: "100", Description: "Residential surcharge", MonetaryValue: "4.55"},
							{Code: "999", Description: "FUEL SURCHARGE", MonetaryValue: "1.09"},
						},
					},
				},
			},
		}, nil
	}
	client := newTestClient(mockAPI)

	quote, err := client.GetRate(context.Background(), testRequest())

	require.NoError(t, err)
	require.NotNil(t, quote.Breakdown)
	assert.Equal(t, 1.09, quote.Breakdown.FuelSurcharge)
}

func TestClient_GetRate_RequestBuild(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client := newTestClient(mockAPI)

	_, err := client.GetRate(context.Background(), testRequest())
	require.NoError(t, err)

	sent := mockAPI.LastRequest()
	require.NotNil(t, sent)
	shipment := sent.RateRequest.Shipment

	assert.Equal(t, "21093", shipment.ShipFrom.Address.PostalCode)
	assert.Equal(t, "30005", shipment.ShipTo.Address.PostalCode)
	assert.Equal(t, "A1B2C3", shipment.Shipper.ShipperNumber)

	require.Len(t, shipment.Package, 1)
	assert.Equal(t, "10", shipment.Package[0].PackageWeight.Weight, "weight is transmitted as a literal string")
	assert.Equal(t, "LBS", shipment.Package[0].PackageWeight.UnitOfMeasurement.Code)
}

func TestClient_GetRate_FirstPackageOnly(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client := newTestClient(mockAPI)

	req := testRequest()
	req.Packages = append(req.Packages, carrier.Package{Weight: 25, WeightUnit: carrier.WeightLB})

	_, err := client.GetRate(context.Background(), req)
	require.NoError(t, err)

	sent := mockAPI.LastRequest()
	require.Len(t, sent.RateRequest.Shipment.Package, 1, "only the first package is rated")
	assert.Equal(t, "10", sent.RateRequest.Shipment.Package[0].PackageWeight.Weight)
}

func TestClient_GetRate_MetricConversion(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client := newTestClient(mockAPI)

	req := testRequest()
	req.Packages = []carrier.Package{
		{
			Weight: 5, WeightUnit: carrier.WeightKG,
			Length: 30, Width: 20, Height: 10, DimensionUnit: carrier.DimensionCM,
		},
	}

	_, err := client.GetRate(context.Background(), req)
	require.NoError(t, err)

	pkg := mockAPI.LastRequest().RateRequest.Shipment.Package[0]
	assert.Equal(t, "11.02", pkg.PackageWeight.Weight)
	require.NotNil(t, pkg.Dimensions)
	assert.Equal(t, "IN", pkg.Dimensions.UnitOfMeasurement.Code)
	assert.Equal(t, "11.81", pkg.Dimensions.Length)
	assert.Equal(t, "7.87", pkg.Dimensions.Width)
	assert.Equal(t, "3.94", pkg.Dimensions.Height)
}

func TestClient_GetRate_ServiceLevel(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	client := newTestClient(mockAPI)

	req := testRequest()
	req.ServiceLevel = "01"

	_, err := client.GetRate(context.Background(), req)
	require.NoError(t, err)

	sent := mockAPI.LastRequest()
	require.NotNil(t, sent.RateRequest.Shipment.Service)
	assert.Equal(t, "01", sent.RateRequest.Shipment.Service.Code)
}

func TestClient_GetRate_APIError(t *testing.T) {
	mockAPI := ups.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(mockAPI)

	_, err := client.GetRate(context.Background(), testRequest())
	assert.Error(t, err)
}

func TestRatedShipments_UnmarshalObjectOrArray(t *testing.T) {
	object := []byte(`{"RateResponse":{"RatedShipment":{"Service":{"Code":"03"},"TotalCharges":{"CurrencyCode":"USD","MonetaryValue":"11.63"}}}}`)
	array := []byte(`{"RateResponse":{"RatedShipment":[{"Service":{"Code":"03"},"TotalCharges":{"CurrencyCode":"USD","MonetaryValue":"11.63"}}]}}`)

	var fromObject, fromArray ups.RateResponse
	require.NoError(t, json.Unmarshal(object, &fromObject))
	require.NoError(t, json.Unmarshal(array, &fromArray))

	require.Len(t, fromObject.RateResponse.RatedShipment, 1)
	assert.Equal(t, fromObject, fromArray)
}

// TestClient_GetRate_EndToEnd drives the full HTTP stack: token
// acquisition against the fake OAuth endpoint, then the rate call with
// the issued bearer and per-call tracing headers.
func TestClient_GetRate_EndToEnd(t *testing.T) {
	var rateHeaders http.Header
	var tokenHits, rateHits int

	mux := http.NewServeMux()
	mux.HandleFunc("POST /security/v1/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		tokenHits++
		assert.NotEmpty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "client-id", r.Header.Get("x-merchant-id"))
		fmt.Fprint(w, `{"access_token":"tok-1","token_type":"Bearer","expires_in":"14399"}`)
	})
	mux.HandleFunc("POST /api/rating/v2403/rate", func(w http.ResponseWriter, r *http.Request) {
		rateHits++
		rateHeaders = r.Header.Clone()
		fmt.Fprint(w, `{"RateResponse":{"RatedShipment":{"Service":{"Code":"03"},"TotalCharges":{"CurrencyCode":"USD","MonetaryValue":"11.63"}}}}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var acquisitions []string
	apiClient := ups.NewHTTPAPIClient(ups.HTTPAPIClientConfig{
		BaseURL:        srv.URL,
		ClientID:       "client-id",
		ClientSecret:   "client-secret",
		TransactionSrc: "cybership",
		OnTokenAcquire: func(outcome string) { acquisitions = append(acquisitions, outcome) },
	})
	client := ups.NewWithAPIClient(ups.Config{ShipperNumber: "A1B2C3"}, apiClient, otelzap.New(zap.NewNop()), nil)

	quote, err := client.GetRate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, 11.63, quote.TotalPrice)

	assert.Equal(t, 1, tokenHits)
	assert.Equal(t, 1, rateHits)
	assert.Equal(t, "Bearer tok-1", rateHeaders.Get("Authorization"))
	assert.Equal(t, "cybership", rateHeaders.Get("transactionSrc"))
	assert.Len(t, rateHeaders.Get("transId"), 32)

	// Second call reuses the cached token.
	_, err = client.GetRate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, tokenHits, "cached token must be reused")
	assert.Equal(t, 2, rateHits)
	assert.Equal(t, []string{"ok"}, acquisitions)
}
