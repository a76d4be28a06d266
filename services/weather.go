package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"travelplanner/retry"
)

// WeatherClient reads current conditions from OpenWeatherMap.
type WeatherClient struct {
	provider
	apiKey  string
	baseURL string
}

func NewWeatherClient(apiKey, baseURL string, httpClient *http.Client, rc retry.Config) *WeatherClient {
	return &WeatherClient{
		provider: newProvider("weather", httpClient, rc, apiKey),
		apiKey:   apiKey,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}
}

// Every field is optional on the wire; absence is reported, not defaulted.
type owmResponse struct {
	Main *struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Wind *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Message string `json:"message"`
}

// FetchWeather returns temperature, wind, humidity and condition for a destination.
func (c *WeatherClient) FetchWeather(ctx context.Context, destination string) Result {
	if c.apiKey == "" {
		return Failed(MissingCredential, "weather API key not configured")
	}

	q := url.Values{}
	q.Set("q", destination)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	body, err := c.get(ctx, c.baseURL+"/data/2.5/weather?"+q.Encode())
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			var data owmResponse
			if json.Unmarshal(se.Body, &data) == nil && data.Message != "" {
				return Failed(SourceUnavailable, "weather data not available: "+data.Message)
			}
		}
		return unavailable("weather", err)
	}

	var data owmResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return Failed(SourceUnavailable, fmt.Sprintf("failed to parse weather response: %v", err))
	}
	if data.Main == nil || data.Main.Temp == nil || data.Main.Humidity == nil {
		return Failed(SourceUnavailable, "weather response is missing temperature or humidity")
	}
	if data.Wind == nil || data.Wind.Speed == nil {
		return Failed(SourceUnavailable, "weather response is missing wind speed")
	}
	if len(data.Weather) == 0 || data.Weather[0].Description == "" {
		return Failed(SourceUnavailable, "weather response is missing a condition")
	}

	return Ok(fmt.Sprintf("🌡️ Temperature: %s°C\n💨 Wind Speed: %s m/s\n💧 Humidity: %s%%\n☁️ Condition: %s",
		formatNumber(*data.Main.Temp),
		formatNumber(*data.Wind.Speed),
		formatNumber(*data.Main.Humidity),
		capitalize(data.Weather[0].Description),
	))
}

// formatNumber prints the shortest decimal that round-trips, so 18.5 stays "18.5" and 60 stays "60".
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func capitalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
