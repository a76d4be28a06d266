package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchWeather(t *testing.T) {
	srv, _ := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "Paris", r.URL.Query().Get("q"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		writeJSON(w, http.StatusOK, `{"main":{"temp":18.5,"humidity":60},"wind":{"speed":3.2},"weather":[{"description":"clear sky"}]}`)
	})

	res := NewWeatherClient("test-key", srv.URL, srv.Client(), fastRetry).FetchWeather(context.Background(), "Paris")
	require.True(t, res.OK(), res.Detail)
	assert.Equal(t, "🌡️ Temperature: 18.5°C\n💨 Wind Speed: 3.2 m/s\n💧 Humidity: 60%\n☁️ Condition: Clear sky", res.Text)
}

func TestFetchWeatherFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   ErrorKind
		wantDetail string
	}{
		{"missing wind", http.StatusOK, `{"main":{"temp":1,"humidity":2},"weather":[{"description":"fog"}]}`, SourceUnavailable, "wind"},
		{"missing condition", http.StatusOK, `{"main":{"temp":1,"humidity":2},"wind":{"speed":1}}`, SourceUnavailable, "condition"},
		{"city not found", http.StatusNotFound, `{"cod":"404","message":"city not found"}`, SourceUnavailable, "city not found"},
		{"garbage", http.StatusOK, `not json`, SourceUnavailable, "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			res := NewWeatherClient("k", srv.URL, srv.Client(), fastRetry).FetchWeather(context.Background(), "Atlantis")
			assert.Equal(t, tt.wantKind, res.Kind)
			assert.Contains(t, res.Detail, tt.wantDetail)
		})
	}
}

func TestFetchWeatherMissingKey(t *testing.T) {
	srv, calls := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {})
	res := NewWeatherClient("", srv.URL, srv.Client(), fastRetry).FetchWeather(context.Background(), "Paris")
	assert.Equal(t, MissingCredential, res.Kind)
	assert.Zero(t, calls.Load())
}

func TestFetchWeatherRetriesServerErrors(t *testing.T) {
	srv, calls := fakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, `{}`)
	})
	res := NewWeatherClient("k", srv.URL, srv.Client(), fastRetry).FetchWeather(context.Background(), "Paris")
	assert.Equal(t, SourceUnavailable, res.Kind)
	assert.Contains(t, res.Detail, "503")
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchWeatherReplay(t *testing.T) {
	client := newVCRRecorder(t, "weather_paris")

	res := NewWeatherClient("test-key", "http://api.openweathermap.org", client, fastRetry).
		FetchWeather(context.Background(), "Paris")
	require.True(t, res.OK(), res.Detail)
	assert.Contains(t, res.Text, "🌡️ Temperature: 18.5°C")
	assert.Contains(t, res.Text, "☁️ Condition: Clear sky")
}
