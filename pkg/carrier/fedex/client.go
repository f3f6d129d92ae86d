// Package fedex provides integration with the FedEx Rate API.
package fedex

import (
	"context"
	"math"
	"strings"

	"github.com/emxanuel/cybership-test/pkg/carrier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const carrierName = "fedex"

// Config holds FedEx configuration.
type Config struct {
	ClientID      string
	ClientSecret  string
	BaseURL       string
	AccountNumber string
	UseMock       bool // When true, uses a mock API client
	// OnTokenAcquire observes token acquisition attempts ("ok" or
	// "error"). Ignored when UseMock is set.
	OnTokenAcquire func(outcome string)
}

// Client is the FedEx carrier client. It implements
// carrier.RateProvider and delegates API calls to the underlying
// APIClient (mock or HTTP).
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new FedEx client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:        cfg.BaseURL,
			ClientID:       cfg.ClientID,
			ClientSecret:   cfg.ClientSecret,
			OnTokenAcquire: cfg.OnTokenAcquire,
		})
	}

	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// NewWithAPIClient creates a new FedEx client with a custom API client.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// GetRate returns a normalized rate quote from FedEx.
func (c *Client) GetRate(ctx context.Context, req carrier.RateRequest) (carrier.Quote, error) {
	c.logger.Info("Getting FedEx rate",
		zap.String("origin_postal", req.Origin.PostalCode),
		zap.String("destination_postal", req.Destination.PostalCode),
		zap.Int("package_count", len(req.Packages)),
	)

	apiReq := c.buildRateRequest(req)

	apiResp, err := c.apiClient.Rate(ctx, apiReq)
	if err != nil {
		c.logger.Error("FedEx API error", zap.Error(err))
		return carrier.Quote{}, err
	}

	return normalizeResponse(apiResp), nil
}

// buildRateRequest shapes the normalized request into the FedEx
// schema. Only the first package is rated, matching the UPS
// integration's single-package limitation.
func (c *Client) buildRateRequest(req carrier.RateRequest) *RateRequest {
	pkg := req.Packages[0]

	item := PackageLineItem{
		Weight: Weight{
			Units: "LB",
			Value: toPounds(pkg.Weight, pkg.WeightUnit),
		},
	}
	if pkg.Length > 0 && pkg.Width > 0 && pkg.Height > 0 {
		item.Dimensions = &Dimensions{
			Length: toInches(pkg.Length, pkg.DimensionUnit),
			Width:  toInches(pkg.Width, pkg.DimensionUnit),
			Height: toInches(pkg.Height, pkg.DimensionUnit),
			Units:  "IN",
		}
	}

	return &RateRequest{
		AccountNumber: AccountNumber{Value: c.config.AccountNumber},
		RequestedShipment: RequestedShipment{
			Shipper:         Party{Address: addressToAPI(req.Origin)},
			Recipient:       Party{Address: addressToAPI(req.Destination)},
			PickupType:      "DROPOFF_AT_FEDEX_LOCATION",
			ServiceType:     req.ServiceLevel,
			RateRequestType: []string{"ACCOUNT", "LIST"},
			RequestedPackageLineItems: []PackageLineItem{item},
		},
	}
}

func addressToAPI(addr carrier.Address) Address {
	return Address{
		City:                addr.City,
		StateOrProvinceCode: addr.StateCode,
		PostalCode:          addr.PostalCode,
		CountryCode:         addr.CountryCode,
		Residential:         addr.Residential,
	}
}

func toPounds(weight float64, unit carrier.WeightUnit) float64 {
	if unit == carrier.WeightKG {
		return math.Round(weight*2.20462262*100) / 100
	}
	return weight
}

func toInches(length float64, unit carrier.DimensionUnit) float64 {
	if unit == carrier.DimensionCM {
		return math.Round(length/2.54*100) / 100
	}
	return length
}

// normalizeResponse maps the carrier response to a normalized quote.
// The first reply in carrier-returned order wins. The account-specific
// rating takes precedence over the list rating as the total, with the
// list total preserved as the base price. No ratable reply yields the
// sentinel quote.
func normalizeResponse(resp *RateResponse) carrier.Quote {
	replies := resp.Output.RateReplyDetails
	if len(replies) == 0 {
		return sentinelQuote()
	}
	reply := replies[0]
	if len(reply.RatedShipmentDetails) == 0 {
		return sentinelQuote()
	}

	account := findRating(reply.RatedShipmentDetails, "ACCOUNT")
	list := findRating(reply.RatedShipmentDetails, "LIST")
	chosen := account
	if chosen == nil {
		chosen = &reply.RatedShipmentDetails[0]
	}

	breakdown := &carrier.Breakdown{}
	if list != nil {
		breakdown.BasePrice = list.TotalNetCharge
	}
	if account != nil && list != nil {
		breakdown.Other = account.TotalNetCharge
	}
	if srd := chosen.ShipmentRateDetail; srd != nil {
		if breakdown.BasePrice == 0 {
			breakdown.BasePrice = srd.TotalBaseCharge
		}
		breakdown.Taxes = srd.TotalTaxes
		for _, s := range srd.Surcharges {
			if s.Type == "FUEL" || strings.Contains(strings.ToLower(s.Description), "fuel") {
				breakdown.FuelSurcharge = s.Amount
				break
			}
		}
	}

	currency := chosen.Currency
	if currency == "" {
		currency = "USD"
	}

	name := reply.ServiceName
	if name == "" {
		name = "FedEx"
	}

	return carrier.Quote{
		ServiceCode: reply.ServiceType,
		ServiceName: name,
		TotalPrice:  chosen.TotalNetCharge,
		Currency:    currency,
		Breakdown:   breakdown,
	}
}

func findRating(details []RatedShipmentDetail, rateType string) *RatedShipmentDetail {
	for i := range details {
		if details[i].RateType == rateType {
			return &details[i]
		}
	}
	return nil
}

func sentinelQuote() carrier.Quote {
	return carrier.Quote{
		ServiceCode: "fedex",
		ServiceName: "FedEx",
		TotalPrice:  0,
		Currency:    "USD",
	}
}

// Ensure Client implements the rate capability
var _ carrier.RateProvider = (*Client)(nil)
