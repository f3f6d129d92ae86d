// Package ups provides integration with the UPS Rating API.
package ups

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/emxanuel/cybership-test/pkg/carrier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const carrierName = "ups"

// fuelSurchargeCode is the accessorial code UPS uses for fuel.
const fuelSurchargeCode = "375"

// Config holds UPS configuration.
type Config struct {
	ClientID       string
	ClientSecret   string
	BaseURL        string
	ShipperNumber  string
	TransactionSrc string
	UseMock        bool // When true, uses a mock API client
	// OnTokenAcquire observes token acquisition attempts ("ok" or
	// "error"). Ignored when UseMock is set.
	OnTokenAcquire func(outcome string)
}

// Client is the UPS carrier client. It implements carrier.RateProvider
// and delegates API calls to the underlying APIClient (mock or HTTP).
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new UPS client. If cfg.UseMock is true, it uses a mock
// API client for testing; otherwise the real HTTP API client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:        cfg.BaseURL,
			ClientID:       cfg.ClientID,
			ClientSecret:   cfg.ClientSecret,
			TransactionSrc: cfg.TransactionSrc,
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

// NewWithAPIClient creates a new UPS client with a custom API client.
// This is useful for injecting mock clients in tests.
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

// GetRate returns a normalized rate quote from UPS.
func (c *Client) GetRate(ctx context.Context, req carrier.RateRequest) (carrier.Quote, error) {
	c.logger.Info("Getting UPS rate",
		zap.String("origin_postal", req.Origin.PostalCode),
		zap.String("destination_postal", req.Destination.PostalCode),
		zap.Int("package_count", len(req.Packages)),
	)

	apiReq := c.buildRateRequest(req)

	apiResp, err := c.apiClient.Rate(ctx, apiReq)
	if err != nil {
		c.logger.Error("UPS API error", zap.Error(err))
		return carrier.Quote{}, err
	}

	return normalizeResponse(apiResp), nil
}

// ============================================================================
// Conversion helpers: carrier models -> API models
// ============================================================================

// buildRateRequest shapes the normalized request into the UPS schema.
// Only the first package is rated; multi-package requests are not
// supported by this integration.
func (c *Client) buildRateRequest(req carrier.RateRequest) *RateRequest {
	pkg := req.Packages[0]

	apiPkg := Package{
		PackagingType: CodeDescription{Code: "02", Description: "Packaging"},
		PackageWeight: PackageWeight{
			UnitOfMeasurement: CodeDescription{Code: "LBS", Description: "Pounds"},
			Weight:            formatMeasure(toPounds(pkg.Weight, pkg.WeightUnit)),
		},
	}
	if pkg.Length > 0 && pkg.Width > 0 && pkg.Height > 0 {
		apiPkg.Dimensions = &Dimensions{
			UnitOfMeasurement: CodeDescription{Code: "IN", Description: "Inches"},
			Length:            formatMeasure(toInches(pkg.Length, pkg.DimensionUnit)),
			Width:             formatMeasure(toInches(pkg.Width, pkg.DimensionUnit)),
			Height:            formatMeasure(toInches(pkg.Height, pkg.DimensionUnit)),
		}
	}

	var service *Service
	if req.ServiceLevel != "" {
		service = &Service{Code: req.ServiceLevel, Description: serviceName(req.ServiceLevel)}
	}

	return &RateRequest{
		RateRequest: RateRequestBody{
			Request: RequestOptions{
				TransactionReference: TransactionReference{CustomerContext: "rating"},
			},
			Shipment: Shipment{
				Shipper: Shipper{
					Name:          req.Origin.Name,
					ShipperNumber: c.config.ShipperNumber,
					Address:       addressToAPI(req.Origin),
				},
				ShipFrom: ShipParty{Name: req.Origin.Name, Address: addressToAPI(req.Origin)},
				ShipTo:   ShipParty{Name: req.Destination.Name, Address: addressToAPI(req.Destination)},
				Service:  service,
				Package:  []Package{apiPkg},
			},
		},
	}
}

func addressToAPI(addr carrier.Address) Address {
	var lines []string
	if addr.Line1 != "" {
		lines = append(lines, addr.Line1)
	}
	if addr.Line2 != "" {
		lines = append(lines, addr.Line2)
	}
	return Address{
		AddressLine:       lines,
		City:              addr.City,
		StateProvinceCode: addr.StateCode,
		PostalCode:        addr.PostalCode,
		CountryCode:       addr.CountryCode,
	}
}

// toPounds converts kilograms to pounds; pound inputs pass through.
func toPounds(weight float64, unit carrier.WeightUnit) float64 {
	if unit == carrier.WeightKG {
		return math.Round(weight*2.20462262*100) / 100
	}
	return weight
}

// toInches converts centimeters to inches; inch inputs pass through.
func toInches(length float64, unit carrier.DimensionUnit) float64 {
	if unit == carrier.DimensionCM {
		return math.Round(length/2.54*100) / 100
	}
	return length
}

// formatMeasure renders a measure the way the carrier expects: "10",
// not "10.0".
func formatMeasure(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ============================================================================
// Conversion helpers: API models -> carrier models
// ============================================================================

// normalizeResponse maps the carrier response to a normalized quote.
// With multiple rated services, the first in carrier-returned order
// wins; no sorting by price is performed. A response with no ratable
// result yields the sentinel quote rather than an error, keeping "no
// data" distinct from a transport failure.
func normalizeResponse(resp *RateResponse) carrier.Quote {
	shipments := resp.RateResponse.RatedShipment
	if len(shipments) == 0 {
		return sentinelQuote()
	}
	rs := shipments[0]

	standard := parseMoney(rs.TotalCharges.MonetaryValue)
	currency := rs.TotalCharges.CurrencyCode

	total := standard
	breakdown := &carrier.Breakdown{BasePrice: standard}

	// The negotiated total takes precedence; the published total is
	// preserved as the base price and the negotiated amount is also
	// surfaced in the breakdown.
	if nrc := rs.NegotiatedRateCharges; nrc != nil && nrc.TotalCharge.MonetaryValue != "" {
		negotiated := parseMoney(nrc.TotalCharge.MonetaryValue)
		total = negotiated
		breakdown.Other = negotiated
		if currency == "" {
			currency = nrc.TotalCharge.CurrencyCode
		}
	}

	for _, ic := range rs.ItemizedCharges {
		if ic.Code == fuelSurchargeCode || strings.Contains(strings.ToLower(ic.Description), "fuel") {
			breakdown.FuelSurcharge = parseMoney(ic.MonetaryValue)
			break
		}
	}

	for _, tc := range rs.TaxCharges {
		breakdown.Taxes += parseMoney(tc.MonetaryValue)
	}

	if currency == "" {
		currency = "USD"
	}

	return carrier.Quote{
		ServiceCode: rs.Service.Code,
		ServiceName: serviceName(rs.Service.Code),
		TotalPrice:  total,
		Currency:    currency,
		Breakdown:   breakdown,
	}
}

// sentinelQuote is the defined placeholder for responses with no
// ratable result.
func sentinelQuote() carrier.Quote {
	return carrier.Quote{
		ServiceCode: "ups",
		ServiceName: "UPS",
		TotalPrice:  0,
		Currency:    "USD",
	}
}

// parseMoney parses a monetary string, mapping parse failures to 0.
func parseMoney(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0
	}
	return f
}

func serviceName(code string) string {
	switch code {
	case "01":
		return "UPS Next Day Air"
	case "02":
		return "UPS 2nd Day Air"
	case "03":
		return "UPS Ground"
	case "12":
		return "UPS 3 Day Select"
	case "13":
		return "UPS Next Day Air Saver"
	case "14":
		return "UPS Next Day Air Early"
	case "59":
		return "UPS 2nd Day Air A.M."
	case "65":
		return "UPS Worldwide Saver"
	default:
		return "UPS"
	}
}

// Ensure Client implements the rate capability
var _ carrier.RateProvider = (*Client)(nil)
