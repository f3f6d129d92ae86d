package ups

import (
	"bytes"
	"context"
	"encoding/json"
)

// APIClient defines the interface for UPS Rating API operations.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// Rate fetches rated shipments from the UPS Rating API.
	Rate(ctx context.Context, req *RateRequest) (*RateResponse, error)
}

// ============================================================================
// API Request/Response Types (match the UPS Rating API v2403 structure)
// ============================================================================

// RateRequest is the envelope for POST /api/rating/v2403/rate.
type RateRequest struct {
	RateRequest RateRequestBody `json:"RateRequest"`
}

// RateRequestBody carries the transaction reference and the shipment.
type RateRequestBody struct {
	Request  RequestOptions `json:"Request"`
	Shipment Shipment       `json:"Shipment"`
}

// RequestOptions carries per-transaction metadata.
type RequestOptions struct {
	TransactionReference TransactionReference `json:"TransactionReference"`
}

// TransactionReference identifies the transaction on the carrier side.
type TransactionReference struct {
	CustomerContext string `json:"CustomerContext,omitempty"`
}

// Shipment describes what is being rated.
type Shipment struct {
	Shipper  Shipper   `json:"Shipper"`
	ShipTo   ShipParty `json:"ShipTo"`
	ShipFrom ShipParty `json:"ShipFrom"`
	Service  *Service  `json:"Service,omitempty"`
	Package  []Package `json:"Package"`
}

// Shipper is the account-holding party.
type Shipper struct {
	Name          string  `json:"Name,omitempty"`
	ShipperNumber string  `json:"ShipperNumber,omitempty"`
	Address       Address `json:"Address"`
}

// ShipParty is a ship-to or ship-from party.
type ShipParty struct {
	Name    string  `json:"Name,omitempty"`
	Address Address `json:"Address"`
}

// Address is a UPS-format postal address.
type Address struct {
	AddressLine       []string `json:"AddressLine,omitempty"`
	City              string   `json:"City,omitempty"`
	StateProvinceCode string   `json:"StateProvinceCode,omitempty"`
	PostalCode        string   `json:"PostalCode"`
	CountryCode       string   `json:"CountryCode"`
}

// Service selects a specific service level; omitted to rate the default.
type Service struct {
	Code        string `json:"Code"`
	Description string `json:"Description,omitempty"`
}

// Package is one package in the shipment. Numeric fields are
// transmitted as strings per the carrier schema.
type Package struct {
	PackagingType CodeDescription `json:"PackagingType"`
	Dimensions    *Dimensions     `json:"Dimensions,omitempty"`
	PackageWeight PackageWeight   `json:"PackageWeight"`
}

// CodeDescription is the carrier's generic code/description pair.
type CodeDescription struct {
	Code        string `json:"Code"`
	Description string `json:"Description,omitempty"`
}

// Dimensions holds package dimensions as strings.
type Dimensions struct {
	UnitOfMeasurement CodeDescription `json:"UnitOfMeasurement"`
	Length            string          `json:"Length"`
	Width             string          `json:"Width"`
	Height            string          `json:"Height"`
}

// PackageWeight holds the package weight as a string.
type PackageWeight struct {
	UnitOfMeasurement CodeDescription `json:"UnitOfMeasurement"`
	Weight            string          `json:"Weight"`
}

// RateResponse is the envelope of the rating response.
type RateResponse struct {
	RateResponse RateResponseBody `json:"RateResponse"`
}

// RateResponseBody carries the response status and rated shipments.
type RateResponseBody struct {
	Response      ResponseStatus `json:"Response"`
	RatedShipment RatedShipments `json:"RatedShipment"`
}

// ResponseStatus is the carrier-side status of the transaction.
type ResponseStatus struct {
	ResponseStatus CodeDescription `json:"ResponseStatus"`
}

// RatedShipment is one rated service option.
type RatedShipment struct {
	Service               CodeDescription        `json:"Service"`
	TotalCharges          Charge                 `json:"TotalCharges"`
	NegotiatedRateCharges *NegotiatedRateCharges `json:"NegotiatedRateCharges,omitempty"`
	ItemizedCharges       ItemizedCharges        `json:"ItemizedCharges,omitempty"`
	TaxCharges            ItemizedCharges        `json:"TaxCharges,omitempty"`
}

// Charge is a monetary amount with its currency, both as strings.
type Charge struct {
	CurrencyCode  string `json:"CurrencyCode"`
	MonetaryValue string `json:"MonetaryValue"`
}

// NegotiatedRateCharges carries account-negotiated totals.
type NegotiatedRateCharges struct {
	TotalCharge Charge `json:"TotalCharge"`
}

// ItemizedCharge is a single accessorial or tax line item.
type ItemizedCharge struct {
	Code          string `json:"Code,omitempty"`
	Description   string `json:"Description,omitempty"`
	CurrencyCode  string `json:"CurrencyCode,omitempty"`
	MonetaryValue string `json:"MonetaryValue"`
}

// RatedShipments tolerates the carrier returning either a single
// object or an array: the API responds with an object when exactly one
// service is rated.
type RatedShipments []RatedShipment

// UnmarshalJSON implements the object-or-array decoding.
func (r *RatedShipments) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = nil
		return nil
	}
	if data[0] == '[' {
		var list []RatedShipment
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*r = list
		return nil
	}
	var one RatedShipment
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*r = RatedShipments{one}
	return nil
}

// ItemizedCharges tolerates a single object where the carrier rated
// only one line item.
type ItemizedCharges []ItemizedCharge

// UnmarshalJSON implements the object-or-array decoding.
func (c *ItemizedCharges) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = nil
		return nil
	}
	if data[0] == '[' {
		var list []ItemizedCharge
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*c = list
		return nil
	}
	var one ItemizedCharge
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*c = ItemizedCharges{one}
	return nil
}
