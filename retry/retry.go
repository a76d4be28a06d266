package retry

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net"
	"strings"
	"time"
)

const (
	// DefaultMaxRetries is one extra attempt after the first failure.
	DefaultMaxRetries = 1
	// DefaultBaseDelay is the base delay for exponential backoff.
	DefaultBaseDelay = 500 * time.Millisecond
	// DefaultMaxJitterPercent is the maximum jitter percentage (0-25%).
	DefaultMaxJitterPercent = 25
)

// Config holds retry configuration.
type Config struct {
	MaxRetries       int
	BaseDelay        time.Duration
	MaxJitterPercent int
	Label            string                                 // Shown in retry log lines
	OnRetry          func(delay time.Duration, attempt int) // Optional callback, replaces logging
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		MaxRetries:       DefaultMaxRetries,
		BaseDelay:        DefaultBaseDelay,
		MaxJitterPercent: DefaultMaxJitterPercent,
	}
}

// Operation is a function that can be retried.
type Operation func() error

// Do runs op, retrying retryable errors with exponential backoff and jitter.
// It returns the last error, or ctx.Err() if the context ends while waiting.
func Do(ctx context.Context, cfg Config, op Operation) error {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.MaxJitterPercent < 0 || cfg.MaxJitterPercent > 100 {
		cfg.MaxJitterPercent = DefaultMaxJitterPercent
	}

	var err error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) || attempt >= cfg.MaxRetries {
			return err
		}

		delay := CalculateDelay(cfg.BaseDelay, attempt, cfg.MaxJitterPercent)
		if cfg.OnRetry != nil {
			cfg.OnRetry(delay, attempt+1)
		} else {
			log.Printf("🔁 %s: retrying in %s (attempt %d/%d): %v", cfg.Label, delay.Round(time.Millisecond), attempt+1, cfg.MaxRetries, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

// CalculateDelay returns the delay for a given attempt using exponential backoff with jitter.
// Formula: base * 2^attempt + jitter (0-maxJitterPercent% of calculated delay)
func CalculateDelay(base time.Duration, attempt int, maxJitterPercent int) time.Duration {
	delay := base * time.Duration(1<<attempt)

	if maxJitterPercent > 0 {
		jitterRange := float64(delay) * float64(maxJitterPercent) / 100.0
		delay += time.Duration(rand.Float64() * jitterRange)
	}
	return delay
}

// Retryable lets an error decide for itself.
type Retryable interface {
	Retryable() bool
}

var retryablePatterns = []string{
	"rate limit",
	"timeout",
	"timed out",
	"connection refused",
	"connection reset",
	"temporary failure",
	"service unavailable",
	"too many requests",
	"eof",
}

var nonRetryablePatterns = []string{
	"invalid",
	"not found",
	"unauthorized",
	"forbidden",
}

// IsRetryable classifies transport failures. Errors implementing Retryable
// win, then net.Error timeouts, then message patterns. Context cancellation never retries.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var r Retryable
	if errors.As(err, &r) {
		return r.Retryable()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range nonRetryablePatterns {
		if strings.Contains(errStr, pattern) {
			return false
		}
	}
	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
