package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"travelplanner/retry"
	"travelplanner/telemetry"
)

const maxErrorBody = 300

// NewHTTPClient returns the traced client shared by every provider adapter.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   timeout,
	}
}

// StatusError is a non-2xx provider response.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	body := string(e.Body)
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return fmt.Sprintf("provider error (%d): %s", e.Code, body)
}

// Retryable marks throttling and server-side failures as worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// provider holds the HTTP plumbing common to all adapters.
type provider struct {
	name       string
	httpClient *http.Client
	retry      retry.Config
	headers    map[string]string
	redactor   *telemetry.Redactor
}

// newProvider takes the credentials the adapter embeds in request URLs so they
// can be masked in every error the provider returns or logs.
func newProvider(name string, httpClient *http.Client, rc retry.Config, secrets ...string) provider {
	if httpClient == nil {
		httpClient = NewHTTPClient(30 * time.Second)
	}
	rc.Label = name
	return provider{name: name, httpClient: httpClient, retry: rc, redactor: telemetry.NewRedactor(secrets...)}
}

// do sends one request (retrying transport failures) and returns the body of a 2xx reply.
// Non-2xx replies come back as *StatusError with the body attached.
func (p provider) do(ctx context.Context, method, endpoint string, body []byte, headers map[string]string) ([]byte, error) {
	var respBody []byte
	err := retry.Do(ctx, p.retry, func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range p.headers {
			req.Header.Set(k, v)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return p.scrub(err)
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &StatusError{Code: resp.StatusCode, Body: b}
		}
		respBody = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return respBody, nil
}

// scrub masks credentials in the request URL carried by transport errors.
// Timeout and temporary classification still delegate to the wrapped error.
func (p provider) scrub(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	return &url.Error{Op: ue.Op, URL: p.redactor.Redact(ue.URL), Err: ue.Err}
}

func (p provider) get(ctx context.Context, endpoint string) ([]byte, error) {
	return p.do(ctx, http.MethodGet, endpoint, nil, nil)
}

// unavailable converts a transport or status failure into a SourceUnavailable result.
// The request URL is dropped from transport errors since most providers take the key in the query.
func unavailable(name string, err error) Result {
	var se *StatusError
	if errors.As(err, &se) {
		return Failed(SourceUnavailable, fmt.Sprintf("%s returned status %d", name, se.Code))
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		err = ue.Err
	}
	return Failed(SourceUnavailable, fmt.Sprintf("%s request failed: %v", name, err))
}
