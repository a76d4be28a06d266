package planner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelplanner/services"
)

// ─── Fakes ────────────────────────────────────────────────────────────────────

type fakeWeather struct {
	calls atomic.Int32
	res   services.Result
}

func (f *fakeWeather) FetchWeather(context.Context, string) services.Result {
	f.calls.Add(1)
	return f.res
}

type fakeRates struct {
	calls atomic.Int32
	res   services.Result
}

func (f *fakeRates) FetchExchangeRate(context.Context, string, string) services.Result {
	f.calls.Add(1)
	return f.res
}

type fakeFlights struct {
	calls atomic.Int32
	code  atomic.Value
}

func (f *fakeFlights) FetchFlightStatus(_ context.Context, code string) services.Result {
	f.calls.Add(1)
	f.code.Store(code)
	return services.Ok("✈️ Flight: " + code)
}

type fakePlaces struct {
	calls atomic.Int32
}

func (f *fakePlaces) FetchPlacesToVisit(context.Context, string) services.Result {
	f.calls.Add(1)
	return services.Ok("- [Louvre](https://example.com/louvre)")
}

type fakeGuides struct {
	calls atomic.Int32
	fn    func(ctx context.Context, topic services.Topic) services.Result
}

func (f *fakeGuides) FetchGuide(ctx context.Context, topic services.Topic, _ services.GuideInput) services.Result {
	f.calls.Add(1)
	if f.fn != nil {
		return f.fn(ctx, topic)
	}
	return services.Ok(string(topic) + " guide")
}

type fakeGeo struct {
	coords *services.Coordinates
	err    error
}

func (f fakeGeo) Resolve(context.Context, string) (*services.Coordinates, error) {
	return f.coords, f.err
}

type fixture struct {
	weather *fakeWeather
	rates   *fakeRates
	flights *fakeFlights
	places  *fakePlaces
	guides  *fakeGuides
}

func newFixture() *fixture {
	return &fixture{
		weather: &fakeWeather{res: services.Ok("🌡️ Temperature: 18.5°C")},
		rates:   &fakeRates{res: services.Ok("83.1")},
		flights: &fakeFlights{},
		places:  &fakePlaces{},
		guides:  &fakeGuides{},
	}
}

func (f *fixture) planner(opts Options) *Planner {
	return New(Sources{
		Weather:  f.weather,
		Exchange: f.rates,
		Flights:  f.flights,
		Places:   f.places,
		Guides:   f.guides,
	}, nil, opts)
}

func (f *fixture) totalCalls() int32 {
	return f.weather.calls.Load() + f.rates.calls.Load() + f.flights.calls.Load() +
		f.places.calls.Load() + f.guides.calls.Load()
}

func paris(t *testing.T) TripRequest {
	t.Helper()
	req, err := NewTripRequest("Paris", 5, "Mid", "usd")
	require.NoError(t, err)
	return req
}

func toggles(keys ...string) []PanelToggle {
	out := make([]PanelToggle, len(keys))
	for i, k := range keys {
		out[i] = PanelToggle{Key: k, Enabled: true}
	}
	return out
}

func keysOf(sections []PlanSection) []string {
	out := make([]string, len(sections))
	for i, s := range sections {
		out[i] = s.Key
	}
	return out
}

// ─── GeneratePlan ─────────────────────────────────────────────────────────────

func TestGeneratePlanFollowsRegistryOrder(t *testing.T) {
	for _, concurrent := range []bool{false, true} {
		f := newFixture()
		p := f.planner(Options{Concurrent: concurrent})

		// Submitted out of order on purpose.
		sections, err := p.GeneratePlan(context.Background(), paris(t),
			toggles(PanelPlaces, PanelExchange, PanelWeather, PanelAccommodation))
		require.NoError(t, err)
		assert.Equal(t, []string{PanelAccommodation, PanelWeather, PanelExchange, PanelPlaces}, keysOf(sections))
	}
}

func TestGeneratePlanDisabledPanelsAreNotInvoked(t *testing.T) {
	f := newFixture()
	p := f.planner(Options{})

	sections, err := p.GeneratePlan(context.Background(), paris(t), []PanelToggle{
		{Key: PanelWeather, Enabled: true},
		{Key: PanelPlaces, Enabled: false},
		{Key: PanelTransport, Enabled: false},
	})
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, PanelWeather, sections[0].Key)
	assert.Equal(t, int32(1), f.weather.calls.Load())
	assert.Zero(t, f.places.calls.Load())
	assert.Zero(t, f.guides.calls.Load())
}

func TestGeneratePlanNoPanelsYieldsNoSections(t *testing.T) {
	f := newFixture()
	sections, err := f.planner(Options{}).GeneratePlan(context.Background(), paris(t), nil)
	require.NoError(t, err)
	assert.Empty(t, sections)
	assert.Zero(t, f.totalCalls())
}

func TestGeneratePlanRejectsEmptyDestination(t *testing.T) {
	f := newFixture()
	req := TripRequest{Destination: "   ", NumDays: 5, Budget: BudgetMid, CurrencyCode: "USD"}

	_, err := f.planner(Options{}).GeneratePlan(context.Background(), req, toggles(PanelWeather, PanelPlaces))

	var perr *services.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, services.InvalidInput, perr.Kind)
	assert.Zero(t, f.totalCalls())
}

func TestGeneratePlanFlightWithoutCodeIsSkipped(t *testing.T) {
	f := newFixture()
	sections, err := f.planner(Options{}).GeneratePlan(context.Background(), paris(t),
		[]PanelToggle{{Key: PanelFlight, Enabled: true, Input: "  "}})
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, StatusSkipped, sections[0].Status)
	assert.Equal(t, FlightCodeNotice, sections[0].Body)
	assert.Zero(t, f.flights.calls.Load())
}

func TestGeneratePlanFlightCodeIsNormalized(t *testing.T) {
	f := newFixture()
	sections, err := f.planner(Options{}).GeneratePlan(context.Background(), paris(t),
		[]PanelToggle{{Key: PanelFlight, Enabled: true, Input: " ai101 "}})
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, StatusOK, sections[0].Status)
	assert.Equal(t, "AI101", f.flights.code.Load())
}

func TestGeneratePlanRejectsMalformedFlightCode(t *testing.T) {
	f := newFixture()
	_, err := f.planner(Options{}).GeneratePlan(context.Background(), paris(t),
		[]PanelToggle{{Key: PanelWeather, Enabled: true}, {Key: PanelFlight, Enabled: true, Input: "not a flight"}})

	var perr *services.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, services.InvalidInput, perr.Kind)
	assert.Zero(t, f.totalCalls())
}

func TestGeneratePlanIgnoresUnknownPanels(t *testing.T) {
	f := newFixture()
	sections, err := f.planner(Options{}).GeneratePlan(context.Background(), paris(t), toggles("cuisine", PanelWeather))
	require.NoError(t, err)
	assert.Equal(t, []string{PanelWeather}, keysOf(sections))
}

func TestGeneratePlanIsolatesFailures(t *testing.T) {
	f := newFixture()
	f.guides.fn = func(_ context.Context, topic services.Topic) services.Result {
		if topic == services.TopicTransport {
			return services.Failed(services.SourceUnavailable, "completion: 503")
		}
		return services.Ok("ok")
	}

	sections, err := f.planner(Options{Concurrent: true}).GeneratePlan(context.Background(), paris(t),
		toggles(PanelWeather, PanelTransport, PanelPlaces))
	require.NoError(t, err)
	require.Equal(t, []string{PanelWeather, PanelTransport, PanelPlaces}, keysOf(sections))

	assert.Equal(t, StatusOK, sections[0].Status)
	assert.Equal(t, StatusFailed, sections[1].Status)
	assert.Equal(t, services.SourceUnavailable, sections[1].Kind)
	assert.Contains(t, sections[1].Body, "unavailable")
	assert.Equal(t, StatusOK, sections[2].Status)
}

func TestGeneratePlanExchangeLine(t *testing.T) {
	f := newFixture()
	sections, err := f.planner(Options{}).GeneratePlan(context.Background(), paris(t), toggles(PanelExchange))
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "1 USD = 83.1 INR", sections[0].Body)
}

func TestGeneratePlanCarriesPromptTokens(t *testing.T) {
	f := newFixture()
	f.guides.fn = func(_ context.Context, topic services.Topic) services.Result {
		if topic == services.TopicShopping {
			res := services.Failed(services.SourceUnavailable, "completion: 503")
			res.PromptTokens = 9
			return res
		}
		res := services.Ok("ok")
		res.PromptTokens = 7
		return res
	}

	sections, err := f.planner(Options{}).GeneratePlan(context.Background(), paris(t),
		toggles(PanelWeather, PanelShopping, PanelPacking))
	require.NoError(t, err)
	require.Len(t, sections, 3)
	assert.Zero(t, sections[0].PromptTokens)
	assert.Equal(t, 9, sections[1].PromptTokens)
	assert.Equal(t, StatusFailed, sections[1].Status)
	assert.Equal(t, 7, sections[2].PromptTokens)
}

func TestGeneratePlanRecoversAdapterPanic(t *testing.T) {
	f := newFixture()
	f.guides.fn = func(context.Context, services.Topic) services.Result {
		panic("boom")
	}

	sections, err := f.planner(Options{Concurrent: true}).GeneratePlan(context.Background(), paris(t),
		toggles(PanelPacking, PanelWeather))
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, StatusOK, sections[0].Status)
	assert.Equal(t, PanelPacking, sections[1].Key)
	assert.Equal(t, StatusFailed, sections[1].Status)
	assert.Equal(t, services.SourceUnavailable, sections[1].Kind)
}

func TestGeneratePlanAppliesTimeout(t *testing.T) {
	f := newFixture()
	f.guides.fn = func(ctx context.Context, _ services.Topic) services.Result {
		<-ctx.Done()
		return services.Failed(services.SourceUnavailable, ctx.Err().Error())
	}

	start := time.Now()
	sections, err := f.planner(Options{Timeout: 50 * time.Millisecond}).GeneratePlan(context.Background(), paris(t),
		toggles(PanelPhrases))
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, StatusFailed, sections[0].Status)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestGeneratePlanMissingSource(t *testing.T) {
	p := New(Sources{}, nil, Options{})
	sections, err := p.GeneratePlan(context.Background(), paris(t), toggles(PanelWeather))
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, services.MissingCredential, sections[0].Kind)
}

// ─── BuildPlan ────────────────────────────────────────────────────────────────

func TestBuildPlanPlacesMap(t *testing.T) {
	f := newFixture()
	p := New(Sources{Weather: f.weather}, fakeGeo{coords: &services.Coordinates{Lat: 48.8566, Lon: 2.3522}}, Options{})

	plan, err := p.BuildPlan(context.Background(), paris(t), toggles(PanelWeather))
	require.NoError(t, err)
	assert.Equal(t, "Researching Paris for 5 days...", plan.Summary)
	require.NotNil(t, plan.Map)
	assert.InDelta(t, 48.8566, plan.Map.Lat, 1e-9)
	assert.Equal(t, "Paris", plan.Map.Label)
	assert.Contains(t, plan.Map.URL, "openstreetmap.org")
	assert.Empty(t, plan.MapWarning)
}

func TestBuildPlanMapWarning(t *testing.T) {
	cases := map[string]fakeGeo{
		"no match":    {},
		"geocode err": {err: errors.New("connection refused")},
	}
	for name, geo := range cases {
		t.Run(name, func(t *testing.T) {
			p := New(Sources{}, geo, Options{})
			plan, err := p.BuildPlan(context.Background(), paris(t), nil)
			require.NoError(t, err)
			assert.Nil(t, plan.Map)
			assert.Equal(t, MapWarning, plan.MapWarning)
		})
	}
}

func TestBuildPlanPropagatesValidation(t *testing.T) {
	p := New(Sources{}, fakeGeo{}, Options{})
	_, err := p.BuildPlan(context.Background(), TripRequest{}, nil)
	assert.Error(t, err)
}
