package planner

import (
	"context"
	"fmt"

	"travelplanner/services"
)

// Panel keys, in registry order.
const (
	PanelAccommodation = "accommodation"
	PanelWeather       = "weather"
	PanelExchange      = "exchange"
	PanelTransport     = "transport"
	PanelEmergency     = "emergency"
	PanelShopping      = "shopping"
	PanelPacking       = "packing"
	PanelPhrases       = "phrases"
	PanelFlight        = "flight"
	PanelPlaces        = "places"
)

// FlightCodeNotice is the body of a flight panel enabled without a code.
const FlightCodeNotice = "Enter a flight IATA code (e.g., AI101) to track a flight."

// Panel is one registry entry: heading, argument rule and adapter call.
type Panel struct {
	Key        string `json:"key"`
	Heading    string `json:"heading"`
	NeedsInput bool   `json:"needs_input"`
	InputHint  string `json:"input_hint,omitempty"`

	// skip returns a validation notice when the panel must not call its adapter.
	skip  func(req TripRequest, input string) string
	fetch func(ctx context.Context, p *Planner, req TripRequest, input string) services.Result
}

var panels = []Panel{
	guidePanel(PanelAccommodation, "🏨 Accommodation Suggestions", services.TopicAccommodation),
	{
		Key:     PanelWeather,
		Heading: "🌦️ Real-Time Weather Forecast",
		fetch: func(ctx context.Context, p *Planner, req TripRequest, _ string) services.Result {
			if p.src.Weather == nil {
				return notConfigured("weather")
			}
			return p.src.Weather.FetchWeather(ctx, req.Destination)
		},
	},
	{
		Key:     PanelExchange,
		Heading: "💱 Currency Exchange",
		fetch: func(ctx context.Context, p *Planner, req TripRequest, _ string) services.Result {
			if p.src.Exchange == nil {
				return notConfigured("exchange")
			}
			quote := p.opts.QuoteCurrency
			res := p.src.Exchange.FetchExchangeRate(ctx, req.CurrencyCode, quote)
			if res.OK() {
				res.Text = fmt.Sprintf("1 %s = %s %s", req.CurrencyCode, res.Text, quote)
			}
			return res
		},
	},
	guidePanel(PanelTransport, "🚕 Transport Options", services.TopicTransport),
	guidePanel(PanelEmergency, "🏥 Emergency Contacts", services.TopicEmergency),
	guidePanel(PanelShopping, "🛍️ Shopping & Souvenirs Guide", services.TopicShopping),
	guidePanel(PanelPacking, "🎒 Smart Packing List", services.TopicPacking),
	guidePanel(PanelPhrases, "🔊 Basic Local Language Phrases", services.TopicPhrases),
	{
		Key:        PanelFlight,
		Heading:    "🛩️ Real-Time Flight Tracker",
		NeedsInput: true,
		InputHint:  "Flight IATA code (e.g., AI101)",
		skip: func(_ TripRequest, input string) string {
			if services.NormalizeFlightCode(input) == "" {
				return FlightCodeNotice
			}
			return ""
		},
		fetch: func(ctx context.Context, p *Planner, _ TripRequest, input string) services.Result {
			if p.src.Flights == nil {
				return notConfigured("flight tracking")
			}
			return p.src.Flights.FetchFlightStatus(ctx, services.NormalizeFlightCode(input))
		},
	},
	{
		Key:     PanelPlaces,
		Heading: "📍 Top Places to Visit",
		fetch: func(ctx context.Context, p *Planner, req TripRequest, _ string) services.Result {
			if p.src.Places == nil {
				return notConfigured("search")
			}
			return p.src.Places.FetchPlacesToVisit(ctx, req.Destination)
		},
	},
}

var panelIndex = func() map[string]int {
	idx := make(map[string]int, len(panels))
	for i, p := range panels {
		if _, dup := idx[p.Key]; dup {
			panic("duplicate panel key " + p.Key)
		}
		idx[p.Key] = i
	}
	return idx
}()

func guidePanel(key, heading string, topic services.Topic) Panel {
	return Panel{
		Key:     key,
		Heading: heading,
		fetch: func(ctx context.Context, p *Planner, req TripRequest, _ string) services.Result {
			if p.src.Guides == nil {
				return notConfigured("language model")
			}
			return p.src.Guides.FetchGuide(ctx, topic, services.GuideInput{
				Destination: req.Destination,
				NumDays:     req.NumDays,
				Budget:      string(req.Budget),
			})
		},
	}
}

func notConfigured(what string) services.Result {
	return services.Failed(services.MissingCredential, what+" source is not configured")
}

// Registry returns the panels in their fixed display order.
func Registry() []Panel {
	out := make([]Panel, len(panels))
	copy(out, panels)
	return out
}

// LookupPanel finds a panel by key.
func LookupPanel(key string) (Panel, bool) {
	i, ok := panelIndex[key]
	if !ok {
		return Panel{}, false
	}
	return panels[i], true
}

// PanelKeys lists registry keys in order.
func PanelKeys() []string {
	keys := make([]string, len(panels))
	for i, p := range panels {
		keys[i] = p.Key
	}
	return keys
}
