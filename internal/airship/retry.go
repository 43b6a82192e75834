// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package airship

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirseerhq/ua-utils/internal/apierror"
	uaerrors "github.com/sirseerhq/ua-utils/internal/errors"
)

// RetryConfig configures the retry behavior for API calls
type RetryConfig struct {
	// MaxRetries is the number of attempts made after the first one fails.
	MaxRetries int
	// InitialBackoff is the initial backoff duration
	InitialBackoff time.Duration
	// MaxBackoff is the maximum backoff duration
	MaxBackoff time.Duration
	// BackoffMultiplier is the multiplier for exponential backoff
	BackoffMultiplier float64
}

// DefaultMaxRetries allows eleven attempts in total per request.
const DefaultMaxRetries = 10

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        DefaultMaxRetries,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// ExhaustedError is returned when every attempt of a request failed.
// It matches both uaerrors.ErrRetriesExhausted and the last cause.
type ExhaustedError struct {
	Endpoint string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("GET %s failed after %d attempts: %v", e.Endpoint, e.Attempts, e.Err)
}

// Unwrap exposes the sentinel and the last cause to errors.Is and errors.As.
func (e *ExhaustedError) Unwrap() []error {
	return []error{uaerrors.ErrRetriesExhausted, e.Err}
}

// RetryClient wraps a Client with a bounded retry loop. Every failure except a
// canceled context is retried; the loop carries the attempt count and the
// most recent cause.
type RetryClient struct {
	client    Client
	config    *RetryConfig
	inspector apierror.Inspector
	logger    zerolog.Logger
}

// NewRetryClient creates a new RetryClient with the given configuration
func NewRetryClient(client Client, config *RetryConfig, logger zerolog.Logger) *RetryClient {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &RetryClient{
		client:    client,
		config:    config,
		inspector: apierror.NewInspector(),
		logger:    logger,
	}
}

// Get implements the Client interface with retry logic
func (r *RetryClient) Get(ctx context.Context, endpoint string, params url.Values) (*Page, error) {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", uaerrors.ErrCanceled, err)
		}

		attempts++
		page, err := r.client.Get(ctx, endpoint, params)
		if err == nil {
			return page, nil
		}

		if !r.inspector.IsRetryable(err) || ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", uaerrors.ErrCanceled, err)
		}

		lastErr = err

		if attempt == r.config.MaxRetries {
			break
		}

		backoff := r.calculateBackoff(attempt)
		r.logger.Warn().
			Err(err).
			Str("endpoint", Redact(endpoint)).
			Str("cause", apierror.Classify(r.inspector, err)).
			Int("attempt", attempt+1).
			Int("max_attempts", r.config.MaxRetries+1).
			Dur("backoff", backoff).
			Msg("request failed, retrying")

		if backoff <= 0 {
			continue
		}
		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %w", uaerrors.ErrCanceled, ctx.Err())
		}
	}

	return nil, &ExhaustedError{
		Endpoint: Redact(endpoint),
		Attempts: attempts,
		Err:      lastErr,
	}
}

// calculateBackoff calculates the backoff duration for the given attempt
func (r *RetryClient) calculateBackoff(attempt int) time.Duration {
	if r.config.InitialBackoff <= 0 {
		return 0
	}

	multiplier := r.config.BackoffMultiplier
	if multiplier < 1 {
		multiplier = 1
	}
	backoff := float64(r.config.InitialBackoff) * math.Pow(multiplier, float64(attempt))

	if r.config.MaxBackoff > 0 && backoff > float64(r.config.MaxBackoff) {
		backoff = float64(r.config.MaxBackoff)
	}

	// Add jitter (±10%)
	jitter := backoff * 0.1 * (2*float64(time.Now().UnixNano()%100)/100 - 1)
	backoff += jitter

	return time.Duration(backoff)
}
