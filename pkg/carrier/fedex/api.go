package fedex

import (
	"context"
)

// APIClient defines the interface for FedEx Rate API operations.
type APIClient interface {
	// Rate fetches rate quotes from the FedEx Rate API.
	Rate(ctx context.Context, req *RateRequest) (*RateResponse, error)
}

// ============================================================================
// API Request/Response Types (match the FedEx Rates and Transit Times API)
// ============================================================================

// RateRequest is the body of POST /rate/v1/rates/quotes.
type RateRequest struct {
	AccountNumber     AccountNumber     `json:"accountNumber"`
	RequestedShipment RequestedShipment `json:"requestedShipment"`
}

// AccountNumber wraps the billing account.
type AccountNumber struct {
	Value string `json:"value"`
}

// RequestedShipment describes what is being rated.
type RequestedShipment struct {
	Shipper                   Party             `json:"shipper"`
	Recipient                 Party             `json:"recipient"`
	PickupType                string            `json:"pickupType"`
	ServiceType               string            `json:"serviceType,omitempty"`
	RateRequestType           []string          `json:"rateRequestType"`
	RequestedPackageLineItems []PackageLineItem `json:"requestedPackageLineItems"`
}

// Party is a shipper or recipient.
type Party struct {
	Address Address `json:"address"`
}

// Address is a FedEx-format postal address.
type Address struct {
	City                string `json:"city,omitempty"`
	StateOrProvinceCode string `json:"stateOrProvinceCode,omitempty"`
	PostalCode          string `json:"postalCode"`
	CountryCode         string `json:"countryCode"`
	Residential         bool   `json:"residential,omitempty"`
}

// PackageLineItem is one package in the shipment.
type PackageLineItem struct {
	Weight     Weight      `json:"weight"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
}

// Weight is a weight with explicit units.
type Weight struct {
	Units string  `json:"units"`
	Value float64 `json:"value"`
}

// Dimensions holds package dimensions with explicit units.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Units  string  `json:"units"`
}

// RateResponse is the rating response envelope.
type RateResponse struct {
	TransactionID string `json:"transactionId"`
	Output        Output `json:"output"`
}

// Output carries the rated reply details.
type Output struct {
	RateReplyDetails []RateReplyDetail `json:"rateReplyDetails"`
}

// RateReplyDetail is one rated service option.
type RateReplyDetail struct {
	ServiceType          string                `json:"serviceType"`
	ServiceName          string                `json:"serviceName"`
	RatedShipmentDetails []RatedShipmentDetail `json:"ratedShipmentDetails"`
}

// RatedShipmentDetail is one rating (account or list) for a service.
type RatedShipmentDetail struct {
	RateType           string              `json:"rateType"`
	TotalNetCharge     float64             `json:"totalNetCharge"`
	Currency           string              `json:"currency"`
	ShipmentRateDetail *ShipmentRateDetail `json:"shipmentRateDetail,omitempty"`
}

// ShipmentRateDetail itemizes a rating.
type ShipmentRateDetail struct {
	TotalBaseCharge float64     `json:"totalBaseCharge"`
	TotalTaxes      float64     `json:"totalTaxes"`
	Surcharges      []Surcharge `json:"surCharges,omitempty"`
}

// Surcharge is an accessorial line item.
type Surcharge struct {
	Type        string  `json:"type"`
	Description string  `json:"description,omitempty"`
	Amount      float64 `json:"amount"`
}
