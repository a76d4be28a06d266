package planner

import (
	"strings"
	"time"

	"travelplanner/config"
	"travelplanner/retry"
	"travelplanner/services"
)

// NewFromConfig builds the adapters from cfg and returns a ready Planner.
// cfg is read once here; adapters keep their own copies of keys and URLs.
func NewFromConfig(cfg *config.Config) *Planner {
	httpClient := services.NewHTTPClient(30 * time.Second)
	rc := retry.DefaultConfig()
	rc.MaxRetries = cfg.Planner.MaxRetries
	if cfg.Planner.RetryBaseDelay > 0 {
		rc.BaseDelay = cfg.Planner.RetryBaseDelay
	}
	pc := cfg.Providers

	var completer services.Completer
	if strings.EqualFold(cfg.LLM.Provider, "huggingface") {
		completer = services.NewHuggingFaceClient(cfg.Keys.HuggingFace, pc.HuggingFaceURL, cfg.LLM.HuggingFaceModel, httpClient, rc)
	} else {
		completer = services.NewOpenAIClient(cfg.Keys.OpenAI, pc.OpenAIURL, httpClient, rc)
	}

	src := Sources{
		Weather:  services.NewWeatherClient(cfg.Keys.Weather, pc.WeatherURL, httpClient, rc),
		Exchange: services.NewExchangeClient(cfg.Keys.Exchange, pc.ExchangeURL, httpClient, rc),
		Flights:  services.NewFlightClient(cfg.Keys.Aviation, pc.AviationURL, httpClient, rc),
		Places:   services.NewPlacesClient(cfg.Keys.SerpAPI, pc.SerpAPIURL, httpClient, rc),
		Guides: services.NewGuideClient(completer, func(t services.Topic) string {
			return cfg.Models.ModelFor(string(t))
		}),
	}
	geo := services.NewGeocoder(pc.NominatimURL, pc.UserAgent, httpClient, rc)

	return New(src, geo, Options{
		Timeout:       cfg.Planner.Timeout,
		Concurrent:    cfg.Planner.Concurrent,
		QuoteCurrency: cfg.Planner.QuoteCurrency,
	})
}
