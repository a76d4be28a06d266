package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"travelplanner/retry"
)

// Coordinates is a resolved map position.
type Coordinates struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name,omitempty"`
}

// MapURL links to an OpenStreetMap view with a marker at c.
func (c Coordinates) MapURL(zoom int) string {
	return fmt.Sprintf("https://www.openstreetmap.org/?mlat=%.5f&mlon=%.5f#map=%d/%.5f/%.5f",
		c.Lat, c.Lon, zoom, c.Lat, c.Lon)
}

// Geocoder resolves place names through Nominatim.
type Geocoder struct {
	provider
	baseURL string
}

func NewGeocoder(baseURL, userAgent string, httpClient *http.Client, rc retry.Config) *Geocoder {
	p := newProvider("geocode", httpClient, rc)
	// Nominatim's usage policy rejects requests without an identifying User-Agent.
	p.headers = map[string]string{"User-Agent": userAgent}
	return &Geocoder{provider: p, baseURL: strings.TrimSuffix(baseURL, "/")}
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Resolve returns nil, nil when the name matches nothing.
func (g *Geocoder) Resolve(ctx context.Context, name string) (*Coordinates, error) {
	q := url.Values{}
	q.Set("q", name)
	q.Set("format", "json")
	q.Set("limit", "1")

	body, err := g.get(ctx, g.baseURL+"/search?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", name, err)
	}

	var places []nominatimPlace
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, fmt.Errorf("failed to parse geocode response: %w", err)
	}
	if len(places) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("bad latitude %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("bad longitude %q: %w", places[0].Lon, err)
	}
	return &Coordinates{Lat: lat, Lon: lon, DisplayName: places[0].DisplayName}, nil
}
