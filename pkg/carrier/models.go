package carrier

// WeightUnit represents weight measurement unit.
type WeightUnit string

const (
	WeightKG WeightUnit = "kg"
	WeightLB WeightUnit = "lb"
)

// DimensionUnit represents dimension measurement unit.
type DimensionUnit string

const (
	DimensionCM DimensionUnit = "cm"
	DimensionIN DimensionUnit = "in"
)

// Address represents a shipping address.
type Address struct {
	Name        string `json:"name,omitempty"`
	Line1       string `json:"line1,omitempty"`
	Line2       string `json:"line2,omitempty"`
	City        string `json:"city,omitempty"`
	StateCode   string `json:"stateCode,omitempty"`
	PostalCode  string `json:"postalCode" validate:"required"`
	CountryCode string `json:"countryCode" validate:"required,len=2"`
	Residential bool   `json:"residential,omitempty"`
}

// Package represents a package to be shipped.
type Package struct {
	Weight        float64       `json:"weight" validate:"required,gt=0"`
	WeightUnit    WeightUnit    `json:"weightUnit,omitempty" validate:"omitempty,oneof=kg lb"`
	Length        float64       `json:"length,omitempty" validate:"gte=0"`
	Width         float64       `json:"width,omitempty" validate:"gte=0"`
	Height        float64       `json:"height,omitempty" validate:"gte=0"`
	DimensionUnit DimensionUnit `json:"dimensionUnit,omitempty" validate:"omitempty,oneof=cm in"`
}

// RateRequest is the normalized input for a rate lookup. It is passed
// by value to every adapter and never mutated during aggregation.
type RateRequest struct {
	Origin       Address   `json:"origin" validate:"required"`
	Destination  Address   `json:"destination" validate:"required"`
	Packages     []Package `json:"packages" validate:"required,min=1,dive"`
	ServiceLevel string    `json:"serviceLevel,omitempty"`
}

// Breakdown itemizes the components of a quoted total where the
// carrier exposes them. Zero values mean the carrier did not report
// the component.
type Breakdown struct {
	BasePrice     float64 `json:"basePrice,omitempty"`
	FuelSurcharge float64 `json:"fuelSurcharge,omitempty"`
	Taxes         float64 `json:"taxes,omitempty"`
	Other         float64 `json:"other,omitempty"`
}

// Quote is a carrier-agnostic rate quote. One instance is produced per
// successful adapter call.
type Quote struct {
	ServiceCode string     `json:"serviceCode"`
	ServiceName string     `json:"serviceName"`
	TotalPrice  float64    `json:"totalPrice"`
	Currency    string     `json:"currency"`
	Breakdown   *Breakdown `json:"breakdown,omitempty"`
}

// CarrierQuote pairs a quote with the adapter that produced it.
type CarrierQuote struct {
	Carrier string `json:"carrier"`
	Quote   Quote  `json:"quote"`
}

// CarrierError pairs a failure with the adapter that produced it.
type CarrierError struct {
	Carrier string
	Err     error
}

// RateResult is the outcome of a fan-out across registered adapters.
// Both slices follow adapter registration order, not completion order.
// Errors is nil when every adapter succeeded.
type RateResult struct {
	Quotes []CarrierQuote
	Errors []CarrierError
}
