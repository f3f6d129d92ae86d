package carrier_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/emxanuel/cybership-test/pkg/carrier"
	"github.com/emxanuel/cybership-test/pkg/carrier/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() carrier.RateRequest {
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

func TestRegistry_Register(t *testing.T) {
	registry := carrier.NewRegistry()

	registry.Register(mock.New("test-carrier"))

	got, err := registry.Get("test-carrier")
	require.NoError(t, err, "carrier should be registered")
	assert.Equal(t, "test-carrier", got.Name())
}

func TestRegistry_Register_Override(t *testing.T) {
	registry := carrier.NewRegistry()

	registry.Register(mock.New("carrier-a"))
	registry.Register(mock.New("carrier-b"))
	assert.Equal(t, 2, registry.Count())

	// Re-registering keeps the original position
	registry.Register(mock.New("carrier-a"))
	assert.Equal(t, 2, registry.Count())
	assert.Equal(t, []string{"carrier-a", "carrier-b"}, registry.Names())
}

func TestRegistry_Get_NotFound(t *testing.T) {
	registry := carrier.NewRegistry()

	_, err := registry.Get("nonexistent")
	assert.Error(t, err, "should return error for unregistered carrier")
	assert.True(t, errors.Is(err, carrier.ErrUnknownCarrier))
}

func TestRegistry_Names_RegistrationOrder(t *testing.T) {
	registry := carrier.NewRegistry()

	registry.Register(mock.New("ups"))
	registry.Register(mock.New("fedex"))
	registry.Register(mock.New("dhl"))

	assert.Equal(t, []string{"ups", "fedex", "dhl"}, registry.Names())
}

func TestRegistry_GetRates(t *testing.T) {
	registry := carrier.NewRegistry()

	registry.Register(mock.New("ups"))
	registry.Register(mock.New("fedex"))

	result, err := registry.GetRates(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Nil(t, result.Errors, "should have no errors from mock carriers")
	require.Len(t, result.Quotes, 2)
	assert.Equal(t, "ups", result.Quotes[0].Carrier)
	assert.Equal(t, "fedex", result.Quotes[1].Carrier)
}

func TestRegistry_GetRates_Empty(t *testing.T) {
	registry := carrier.NewRegistry()

	result, err := registry.GetRates(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Empty(t, result.Quotes, "should return empty quotes for empty registry")
	assert.Nil(t, result.Errors, "should return no errors for empty registry")
}

func TestRegistry_GetRates_PartialFailure(t *testing.T) {
	registry := carrier.NewRegistry()

	boom := errors.New("upstream down")
	registry.Register(mock.New("carrier-a"))
	registry.Register(mock.NewWithError("carrier-b", boom))
	registry.Register(mock.New("carrier-c"))

	result, err := registry.GetRates(context.Background(), validRequest())

	require.NoError(t, err)
	require.Len(t, result.Quotes, 2)
	assert.Equal(t, "carrier-a", result.Quotes[0].Carrier)
	assert.Equal(t, "carrier-c", result.Quotes[1].Carrier)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "carrier-b", result.Errors[0].Carrier)
	assert.True(t, errors.Is(result.Errors[0].Err, boom))
}

func TestRegistry_GetRates_AllFail(t *testing.T) {
	registry := carrier.NewRegistry()

	registry.Register(mock.NewWithError("carrier-a", errors.New("a down")))
	registry.Register(mock.NewWithError("carrier-b", errors.New("b down")))

	result, err := registry.GetRates(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Empty(t, result.Quotes)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "carrier-a", result.Errors[0].Carrier)
	assert.Equal(t, "carrier-b", result.Errors[1].Carrier)
}

func TestRegistry_GetRates_RegistrationOrderNotCompletionOrder(t *testing.T) {
	registry := carrier.NewRegistry()

	// First registered is the slowest; results must still lead with it.
	registry.Register(mock.New("slow").WithDelay(50 * time.Millisecond))
	registry.Register(mock.New("fast"))

	result, err := registry.GetRates(context.Background(), validRequest())

	require.NoError(t, err)
	require.Len(t, result.Quotes, 2)
	assert.Equal(t, "slow", result.Quotes[0].Carrier)
	assert.Equal(t, "fast", result.Quotes[1].Carrier)
}

func TestRegistry_GetRates_FailureDoesNotCancelSiblings(t *testing.T) {
	registry := carrier.NewRegistry()

	registry.Register(mock.NewWithError("failing", errors.New("immediate failure")))
	registry.Register(mock.New("slow").WithDelay(50 * time.Millisecond))

	result, err := registry.GetRates(context.Background(), validRequest())

	require.NoError(t, err)
	require.Len(t, result.Quotes, 1, "slow carrier must still settle")
	assert.Equal(t, "slow", result.Quotes[0].Carrier)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "failing", result.Errors[0].Carrier)
}

func TestRegistry_GetRates_InvalidRequestBlocksDispatch(t *testing.T) {
	registry := carrier.NewRegistry()

	m := mock.New("ups")
	registry.Register(m)

	req := validRequest()
	req.Packages = nil

	_, err := registry.GetRates(context.Background(), req)

	var verr *carrier.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, m.Calls(), "no carrier should be dispatched on validation failure")
}

func TestRegistry_GetRateFrom(t *testing.T) {
	registry := carrier.NewRegistry()

	registry.Register(mock.New("ups"))
	registry.Register(mock.New("fedex"))

	quote, err := registry.GetRateFrom(context.Background(), "fedex", validRequest())

	require.NoError(t, err)
	assert.Equal(t, "fedex Standard", quote.ServiceName)
}

func TestRegistry_GetRateFrom_Unknown(t *testing.T) {
	registry := carrier.NewRegistry()

	m := mock.New("ups")
	registry.Register(m)

	_, err := registry.GetRateFrom(context.Background(), "nonexistent", validRequest())

	assert.True(t, errors.Is(err, carrier.ErrUnknownCarrier))
	assert.Equal(t, 0, m.Calls(), "no carrier should be touched for an unknown name")
}

func TestRegistry_GetRateFrom_FailurePropagates(t *testing.T) {
	registry := carrier.NewRegistry()

	boom := errors.New("upstream down")
	registry.Register(mock.NewWithError("ups", boom))

	_, err := registry.GetRateFrom(context.Background(), "ups", validRequest())

	assert.True(t, errors.Is(err, boom), "single-carrier failure propagates unmodified")
}
