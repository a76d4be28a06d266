package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"travelplanner/retry"
)

// PlacesClient searches SerpAPI's Google engine for attractions.
type PlacesClient struct {
	provider
	apiKey  string
	baseURL string
}

func NewPlacesClient(apiKey, baseURL string, httpClient *http.Client, rc retry.Config) *PlacesClient {
	return &PlacesClient{
		provider: newProvider("places", httpClient, rc, apiKey),
		apiKey:   apiKey,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}
}

type serpResponse struct {
	OrganicResults []struct {
		Title string `json:"title"`
		Link  string `json:"link"`
	} `json:"organic_results"`
	Error string `json:"error"`
}

// FetchPlacesToVisit lists the first page of organic results as markdown links.
func (c *PlacesClient) FetchPlacesToVisit(ctx context.Context, destination string) Result {
	if c.apiKey == "" {
		return Failed(MissingCredential, "search API key not configured")
	}

	q := url.Values{}
	q.Set("engine", "google")
	q.Set("q", "Top tourist attractions in "+destination)
	q.Set("api_key", c.apiKey)

	body, err := c.get(ctx, c.baseURL+"/search.json?"+q.Encode())
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			var data serpResponse
			if json.Unmarshal(se.Body, &data) == nil && data.Error != "" {
				return Failed(SourceUnavailable, "search API error: "+data.Error)
			}
		}
		return unavailable("places", err)
	}

	var data serpResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return Failed(SourceUnavailable, fmt.Sprintf("failed to parse search response: %v", err))
	}
	if data.Error != "" && len(data.OrganicResults) == 0 {
		// SerpAPI reports an empty result page as an error string with status 200
		if strings.Contains(strings.ToLower(data.Error), "hasn't returned any results") {
			return Failed(NoResults, "no places found for "+destination)
		}
		return Failed(SourceUnavailable, "search API error: "+data.Error)
	}

	lines := make([]string, 0, len(data.OrganicResults))
	for _, r := range data.OrganicResults {
		if r.Title == "" || r.Link == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("- [%s](%s)", r.Title, r.Link))
	}
	if len(lines) == 0 {
		return Failed(NoResults, "no places found for "+destination)
	}
	return Ok(strings.Join(lines, "\n"))
}
