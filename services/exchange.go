package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"travelplanner/retry"
)

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidCurrencyCode reports whether code is three upper-case letters.
func ValidCurrencyCode(code string) bool {
	return currencyCodePattern.MatchString(code)
}

// ExchangeClient reads conversion tables from ExchangeRate-API.
type ExchangeClient struct {
	provider
	apiKey  string
	baseURL string
}

func NewExchangeClient(apiKey, baseURL string, httpClient *http.Client, rc retry.Config) *ExchangeClient {
	return &ExchangeClient{
		provider: newProvider("exchange", httpClient, rc, apiKey),
		apiKey:   apiKey,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}
}

type exchangeResponse struct {
	Result          string             `json:"result"`
	ErrorType       string             `json:"error-type"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

// FetchExchangeRate returns how many units of quote one unit of base buys.
func (c *ExchangeClient) FetchExchangeRate(ctx context.Context, base, quote string) Result {
	base = strings.ToUpper(strings.TrimSpace(base))
	quote = strings.ToUpper(strings.TrimSpace(quote))
	if !ValidCurrencyCode(base) || !ValidCurrencyCode(quote) {
		return Failed(InvalidInput, fmt.Sprintf("currency codes must be 3 letters, got %q and %q", base, quote))
	}
	if c.apiKey == "" {
		return Failed(MissingCredential, "exchange API key not configured")
	}

	endpoint := fmt.Sprintf("%s/v6/%s/latest/%s", c.baseURL, url.PathEscape(c.apiKey), base)
	body, err := c.get(ctx, endpoint)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			var data exchangeResponse
			if json.Unmarshal(se.Body, &data) == nil && data.ErrorType != "" {
				return Failed(SourceUnavailable, "exchange API error: "+data.ErrorType)
			}
		}
		return unavailable("exchange", err)
	}

	var data exchangeResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return Failed(SourceUnavailable, fmt.Sprintf("failed to parse exchange response: %v", err))
	}
	if data.Result != "success" {
		errType := data.ErrorType
		if errType == "" {
			errType = "unknown error"
		}
		return Failed(SourceUnavailable, "exchange API error: "+errType)
	}
	if data.ConversionRates == nil {
		return Failed(SourceUnavailable, "no conversion rates found in exchange response")
	}

	rate, ok := data.ConversionRates[quote]
	if !ok {
		return Failed(RateNotFound, fmt.Sprintf("currency %s not found in %s table", quote, base))
	}
	return Ok(formatNumber(rate))
}
