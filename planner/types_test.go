package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelplanner/services"
)

func TestNewTripRequest(t *testing.T) {
	req, err := NewTripRequest("  Kyoto ", 7, "luxury", " jpy")
	require.NoError(t, err)
	assert.Equal(t, TripRequest{Destination: "Kyoto", NumDays: 7, Budget: BudgetLuxury, CurrencyCode: "JPY"}, req)
}

func TestNewTripRequestInvalid(t *testing.T) {
	tests := []struct {
		name        string
		destination string
		days        int
		budget      string
		currency    string
	}{
		{"empty destination", "", 5, "Mid", "USD"},
		{"zero days", "Paris", 0, "Mid", "USD"},
		{"too many days", "Paris", 31, "Mid", "USD"},
		{"bad budget", "Paris", 5, "cheap", "USD"},
		{"bad currency", "Paris", 5, "Mid", "US1"},
		{"long currency", "Paris", 5, "Mid", "USDX"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTripRequest(tt.destination, tt.days, tt.budget, tt.currency)
			var perr *services.Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, services.InvalidInput, perr.Kind)
		})
	}
}

func TestRegistryOrderAndLookup(t *testing.T) {
	assert.Equal(t, []string{
		PanelAccommodation, PanelWeather, PanelExchange, PanelTransport, PanelEmergency,
		PanelShopping, PanelPacking, PanelPhrases, PanelFlight, PanelPlaces,
	}, PanelKeys())

	p, ok := LookupPanel(PanelFlight)
	require.True(t, ok)
	assert.True(t, p.NeedsInput)

	_, ok = LookupPanel("cuisine")
	assert.False(t, ok)

	reg := Registry()
	reg[0].Heading = "changed"
	assert.NotEqual(t, "changed", Registry()[0].Heading)
}
