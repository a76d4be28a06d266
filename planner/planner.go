package planner

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"travelplanner/services"
)

// DefaultTimeout bounds each adapter call.
const DefaultTimeout = 10 * time.Second

const mapZoom = 12

// MapWarning is shown when the destination cannot be placed on the map.
const MapWarning = "Could not generate map for this location."

type WeatherSource interface {
	FetchWeather(ctx context.Context, destination string) services.Result
}

type RateSource interface {
	FetchExchangeRate(ctx context.Context, base, quote string) services.Result
}

type FlightSource interface {
	FetchFlightStatus(ctx context.Context, flightCode string) services.Result
}

type PlacesSource interface {
	FetchPlacesToVisit(ctx context.Context, destination string) services.Result
}

type GuideSource interface {
	FetchGuide(ctx context.Context, topic services.Topic, in services.GuideInput) services.Result
}

// MapResolver places a destination; nil coordinates mean no match.
type MapResolver interface {
	Resolve(ctx context.Context, name string) (*services.Coordinates, error)
}

// Sources are the adapters the registry dispatches to. Nil sources yield MissingCredential.
type Sources struct {
	Weather  WeatherSource
	Exchange RateSource
	Flights  FlightSource
	Places   PlacesSource
	Guides   GuideSource
}

type Options struct {
	Timeout       time.Duration
	Concurrent    bool
	QuoteCurrency string
}

// Planner turns a request and its toggles into ordered plan sections.
type Planner struct {
	src  Sources
	geo  MapResolver
	opts Options
}

func New(src Sources, geo MapResolver, opts Options) *Planner {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.QuoteCurrency == "" {
		opts.QuoteCurrency = "INR"
	}
	return &Planner{src: src, geo: geo, opts: opts}
}

type job struct {
	panel Panel
	input string
}

// GeneratePlan validates req, then runs every enabled panel in registry order.
// One section is produced per enabled known panel; adapter failures become
// failure bodies and never stop the other panels. Unknown toggle keys are ignored.
func (p *Planner) GeneratePlan(ctx context.Context, req TripRequest, toggles []PanelToggle) ([]PlanSection, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	enabled := make(map[string]PanelToggle, len(toggles))
	for _, t := range toggles {
		if _, known := panelIndex[t.Key]; !known {
			log.Printf("⚠️  ignoring unknown panel %q", t.Key)
			continue
		}
		if t.Enabled {
			enabled[t.Key] = t
		} else {
			delete(enabled, t.Key)
		}
	}

	if t, ok := enabled[PanelFlight]; ok {
		code := services.NormalizeFlightCode(t.Input)
		if code != "" && !services.ValidFlightCode(code) {
			return nil, services.Errorf(services.InvalidInput, "%q is not a valid IATA flight code", t.Input)
		}
	}

	var jobs []job
	for _, panel := range panels {
		if t, ok := enabled[panel.Key]; ok {
			jobs = append(jobs, job{panel: panel, input: t.Input})
		}
	}

	sections := make([]PlanSection, len(jobs))
	if p.opts.Concurrent {
		var wg sync.WaitGroup
		for i, j := range jobs {
			wg.Add(1)
			go func(i int, j job) {
				defer wg.Done()
				sections[i] = p.runPanel(ctx, req, j)
			}(i, j)
		}
		wg.Wait()
	} else {
		for i, j := range jobs {
			sections[i] = p.runPanel(ctx, req, j)
		}
	}
	return sections, nil
}

func (p *Planner) runPanel(ctx context.Context, req TripRequest, j job) PlanSection {
	section := PlanSection{Key: j.panel.Key, Heading: j.panel.Heading}

	if j.panel.skip != nil {
		if notice := j.panel.skip(req, j.input); notice != "" {
			section.Body = notice
			section.Status = StatusSkipped
			return section
		}
	}

	res := p.invoke(ctx, req, j)
	section.PromptTokens = res.PromptTokens
	if res.OK() {
		section.Body = res.Text
		section.Status = StatusOK
		return section
	}

	log.Printf("⚠️  panel %s failed: %s: %s", j.panel.Key, res.Kind, res.Detail)
	section.Body = services.FailureBody(res.Kind, res.Detail)
	section.Status = StatusFailed
	section.Kind = res.Kind
	return section
}

// invoke runs one adapter under its own deadline; a panic is contained to its panel.
func (p *Planner) invoke(ctx context.Context, req TripRequest, j job) (res services.Result) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			res = services.Failed(services.SourceUnavailable, fmt.Sprintf("%s adapter crashed: %v", j.panel.Key, r))
		}
	}()
	return j.panel.fetch(ctx, p, req, j.input)
}

// BuildPlan generates the sections and places the destination on the map.
// A geocoding failure only sets MapWarning.
func (p *Planner) BuildPlan(ctx context.Context, req TripRequest, toggles []PanelToggle) (*Plan, error) {
	sections, err := p.GeneratePlan(ctx, req, toggles)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Request:   req,
		Summary:   summaryFor(req),
		Sections:  sections,
		CreatedAt: time.Now().UTC(),
	}

	placement, err := p.locate(ctx, req.Destination)
	if err != nil {
		log.Printf("⚠️  map for %q unavailable: %v", req.Destination, err)
	}
	if placement == nil {
		plan.MapWarning = MapWarning
	} else {
		plan.Map = placement
	}
	return plan, nil
}

func (p *Planner) locate(ctx context.Context, destination string) (*MapPlacement, error) {
	if p.geo == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	coords, err := p.geo.Resolve(ctx, destination)
	if err != nil || coords == nil {
		return nil, err
	}
	return &MapPlacement{
		Lat:   coords.Lat,
		Lon:   coords.Lon,
		Label: strings.TrimSpace(destination),
		URL:   coords.MapURL(mapZoom),
	}, nil
}
