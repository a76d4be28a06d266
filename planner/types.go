package planner

import (
	"fmt"
	"strings"
	"time"

	"travelplanner/services"
)

const (
	MinDays        = 1
	MaxDays        = 30
	DefaultNumDays = 5
)

// BudgetTier is the spending level used in accommodation prompts.
type BudgetTier string

const (
	BudgetLow    BudgetTier = "Low"
	BudgetMid    BudgetTier = "Mid"
	BudgetLuxury BudgetTier = "Luxury"
)

// ParseBudgetTier accepts low, mid or luxury in any case.
func ParseBudgetTier(s string) (BudgetTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return BudgetLow, nil
	case "mid", "medium":
		return BudgetMid, nil
	case "luxury":
		return BudgetLuxury, nil
	}
	return "", services.Errorf(services.InvalidInput, "budget must be Low, Mid or Luxury, got %q", s)
}

// TripRequest is one validated plan submission. Build it with NewTripRequest.
type TripRequest struct {
	Destination  string     `json:"destination" yaml:"destination"`
	NumDays      int        `json:"num_days" yaml:"num_days"`
	Budget       BudgetTier `json:"budget" yaml:"budget"`
	CurrencyCode string     `json:"currency" yaml:"currency"`
}

// NewTripRequest normalizes and validates user input.
func NewTripRequest(destination string, numDays int, budget, currency string) (TripRequest, error) {
	tier, err := ParseBudgetTier(budget)
	if err != nil {
		return TripRequest{}, err
	}
	req := TripRequest{
		Destination:  strings.TrimSpace(destination),
		NumDays:      numDays,
		Budget:       tier,
		CurrencyCode: strings.ToUpper(strings.TrimSpace(currency)),
	}
	if err := req.Validate(); err != nil {
		return TripRequest{}, err
	}
	return req, nil
}

// Validate checks every field; the error is a *services.Error of kind InvalidInput.
func (r TripRequest) Validate() error {
	if strings.TrimSpace(r.Destination) == "" {
		return services.Errorf(services.InvalidInput, "please enter a valid destination")
	}
	if r.NumDays < MinDays || r.NumDays > MaxDays {
		return services.Errorf(services.InvalidInput, "trip length must be between %d and %d days, got %d", MinDays, MaxDays, r.NumDays)
	}
	switch r.Budget {
	case BudgetLow, BudgetMid, BudgetLuxury:
	default:
		return services.Errorf(services.InvalidInput, "unknown budget tier %q", r.Budget)
	}
	if !services.ValidCurrencyCode(r.CurrencyCode) {
		return services.Errorf(services.InvalidInput, "currency code must be 3 letters, got %q", r.CurrencyCode)
	}
	return nil
}

// PanelToggle is the user's choice for one optional panel.
type PanelToggle struct {
	Key     string `json:"key" yaml:"key"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Input   string `json:"input,omitempty" yaml:"input,omitempty"`
}

// Section statuses.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// PlanSection is one rendered panel.
type PlanSection struct {
	Key     string             `json:"key" yaml:"key"`
	Heading string             `json:"heading" yaml:"heading"`
	Body    string             `json:"body" yaml:"body"`
	Status  string             `json:"status" yaml:"status"`
	Kind    services.ErrorKind `json:"kind,omitempty" yaml:"kind,omitempty"`

	// PromptTokens is the size of the prompt sent for LLM-backed panels.
	PromptTokens int `json:"prompt_tokens,omitempty" yaml:"prompt_tokens,omitempty"`
}

// MapPlacement is the single marker shown for the destination.
type MapPlacement struct {
	Lat   float64 `json:"lat" yaml:"lat"`
	Lon   float64 `json:"lon" yaml:"lon"`
	Label string  `json:"label" yaml:"label"`
	URL   string  `json:"url" yaml:"url"`
}

// Plan is everything the presentation layer renders for one submission.
type Plan struct {
	ID         string        `json:"plan_id,omitempty" yaml:"plan_id,omitempty"`
	Request    TripRequest   `json:"request" yaml:"request"`
	Summary    string        `json:"summary" yaml:"summary"`
	Sections   []PlanSection `json:"sections" yaml:"sections"`
	Map        *MapPlacement `json:"map,omitempty" yaml:"map,omitempty"`
	MapWarning string        `json:"map_warning,omitempty" yaml:"map_warning,omitempty"`
	CreatedAt  time.Time     `json:"created_at" yaml:"created_at"`
}

func summaryFor(req TripRequest) string {
	return fmt.Sprintf("Researching %s for %d days...", req.Destination, req.NumDays)
}
