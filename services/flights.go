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
	"time"

	"travelplanner/retry"
)

var flightCodePattern = regexp.MustCompile(`^[A-Z0-9]{2}[0-9]{1,4}[A-Z]?$`)

// NormalizeFlightCode trims, strips inner spaces and upper-cases an IATA flight code.
func NormalizeFlightCode(code string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), " ", ""))
}

// ValidFlightCode reports whether code looks like an IATA flight designator (AI101, BA2490).
func ValidFlightCode(code string) bool {
	return flightCodePattern.MatchString(code)
}

// FlightClient tracks flights through aviationstack.
type FlightClient struct {
	provider
	apiKey  string
	baseURL string
}

func NewFlightClient(apiKey, baseURL string, httpClient *http.Client, rc retry.Config) *FlightClient {
	return &FlightClient{
		provider: newProvider("flight", httpClient, rc, apiKey),
		apiKey:   apiKey,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}
}

type aviationEndpoint struct {
	Airport   string `json:"airport"`
	IATA      string `json:"iata"`
	Scheduled string `json:"scheduled"`
	Estimated string `json:"estimated"`
}

type aviationResponse struct {
	Data []struct {
		FlightStatus string            `json:"flight_status"`
		Departure    *aviationEndpoint `json:"departure"`
		Arrival      *aviationEndpoint `json:"arrival"`
		Airline      *struct {
			Name string `json:"name"`
			IATA string `json:"iata"`
		} `json:"airline"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// FetchFlightStatus reports status, airline and both legs of a flight.
// Missing sub-fields render as Unknown or N/A instead of failing.
func (c *FlightClient) FetchFlightStatus(ctx context.Context, flightCode string) Result {
	if c.apiKey == "" {
		return Failed(MissingCredential, "flight tracking API key not configured")
	}
	flightCode = NormalizeFlightCode(flightCode)
	if !ValidFlightCode(flightCode) {
		return Failed(InvalidInput, fmt.Sprintf("%q is not a valid IATA flight code", flightCode))
	}

	q := url.Values{}
	q.Set("access_key", c.apiKey)
	q.Set("flight_iata", flightCode)

	body, err := c.get(ctx, c.baseURL+"/v1/flights?"+q.Encode())
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			var data aviationResponse
			if json.Unmarshal(se.Body, &data) == nil && data.Error != nil {
				return Failed(SourceUnavailable, "flight API error: "+data.Error.Message)
			}
		}
		return unavailable("flight", err)
	}

	var data aviationResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return Failed(SourceUnavailable, fmt.Sprintf("failed to parse flight response: %v", err))
	}
	if data.Error != nil {
		return Failed(SourceUnavailable, "flight API error: "+data.Error.Message)
	}
	if len(data.Data) == 0 {
		return Failed(NotFound, fmt.Sprintf("no flight found for %s", flightCode))
	}

	f := data.Data[0]
	status := "Unknown"
	if f.FlightStatus != "" {
		status = capitalize(f.FlightStatus)
	}
	airline := ""
	if f.Airline != nil {
		airline = f.Airline.Name
		if airline == "" {
			airline = airlineName(f.Airline.IATA)
		}
	}
	if airline == "" {
		airline = airlineName(flightCode[:2])
	}
	if airline == "" {
		airline = "Unknown"
	}

	return Ok(fmt.Sprintf("✈️ Flight: %s\n📡 Status: %s\n🏢 Airline: %s\n🛫 Departure: %s\n🛬 Arrival: %s",
		flightCode, status, airline, formatLeg(f.Departure), formatLeg(f.Arrival)))
}

func formatLeg(e *aviationEndpoint) string {
	airport, at := "Unknown", "N/A"
	if e == nil {
		return airport + " at " + at
	}
	if e.Airport != "" {
		airport = e.Airport
		if e.IATA != "" {
			airport += " (" + e.IATA + ")"
		}
	} else if e.IATA != "" {
		airport = e.IATA
	}
	if e.Scheduled != "" {
		at = formatFlightTime(e.Scheduled)
	}
	return airport + " at " + at
}

func formatFlightTime(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format("02 Jan 2006 15:04 MST")
}

// airlineName returns the full airline name for an IATA carrier code, or "" when unknown.
func airlineName(code string) string {
	names := map[string]string{
		"AI": "Air India",
		"6E": "IndiGo",
		"TK": "Turkish Airlines",
		"LH": "Lufthansa",
		"AF": "Air France",
		"BA": "British Airways",
		"EK": "Emirates",
		"QR": "Qatar Airways",
		"PC": "Pegasus Airlines",
		"FR": "Ryanair",
		"U2": "EasyJet",
		"W6": "Wizz Air",
		"FZ": "FlyDubai",
		"HY": "Uzbekistan Airways",
		"UA": "United Airlines",
		"AA": "American Airlines",
		"DL": "Delta Air Lines",
		"KL": "KLM",
		"IB": "Iberia",
		"AZ": "ITA Airways",
		"OS": "Austrian Airlines",
		"LX": "Swiss International Air Lines",
		"SQ": "Singapore Airlines",
		"CX": "Cathay Pacific",
		"NH": "ANA",
		"JL": "Japan Airlines",
		"EY": "Etihad Airways",
		"SV": "Saudi Arabian Airlines",
		"MS": "EgyptAir",
		"ET": "Ethiopian Airlines",
	}
	return names[strings.ToUpper(code)]
}
