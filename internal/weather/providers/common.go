package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

// DefaultHTTPClientConfig returns the retry policy shared by all providers.
func DefaultHTTPClientConfig(client *http.Client) HTTPClientConfig {
	return HTTPClientConfig{
		Client: client,
		Backoff: BackoffConfig{
			MaxRetries:      2,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
	}
}

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
	errMalformed     = errors.New("malformed response")
	errMissingKey    = errors.New("api key is not configured")
)

// breakerSet keeps one circuit breaker per city so that a failing endpoint
// for one city cannot open the circuit for the rest.
type breakerSet struct {
	name string
	mu   sync.Mutex
	m    map[string]*gobreaker.CircuitBreaker
}

func newBreakerSet(name string) *breakerSet {
	return &breakerSet{name: name, m: make(map[string]*gobreaker.CircuitBreaker)}
}

func (b *breakerSet) get(key string) *gobreaker.CircuitBreaker {
	b.mu.Lock()
	defer b.mu.Unlock()

	cb, ok := b.m[key]
	if !ok {
		cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        b.name + ":" + key,
			MaxRequests: 1,
			Interval:    5 * time.Minute,
			Timeout:     2 * time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		})
		b.m[key] = cb
	}
	return cb
}

// doRequestWithResilience executes the HTTP request with bounded retries,
// exponential backoff, and a circuit breaker. Retries stop when ctx ends.
// Only rate limiting, 5xx and transport errors are retried.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func(ctx context.Context) (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.Backoff.InitialInterval
	if cfg.Backoff.MaxInterval > 0 {
		bo.MaxInterval = cfg.Backoff.MaxInterval
	}
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(cfg.Backoff.MaxRetries)), ctx)

	var resp *http.Response
	operation := func() error {
		req, err := buildRequest(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}

		result, err := cb.Execute(func() (interface{}, error) {
			r, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			if r.StatusCode >= 200 && r.StatusCode < 300 {
				return r, nil
			}

			drain(r)
			switch {
			case r.StatusCode == http.StatusTooManyRequests:
				return nil, errRateLimited
			case r.StatusCode >= 500:
				return nil, fmt.Errorf("%w: %d", errServerError, r.StatusCode)
			default:
				return nil, fmt.Errorf("%w: %d", errUnexpected, r.StatusCode)
			}
		})

		switch {
		case err == nil:
			r, ok := result.(*http.Response)
			if !ok {
				return backoff.Permanent(fmt.Errorf("unexpected result type from circuit breaker"))
			}
			resp = r
			return nil
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return backoff.Permanent(fmt.Errorf("%w: %v", errCircuitOpen, err))
		case errors.Is(err, errUnexpected), ctx.Err() != nil:
			return backoff.Permanent(err)
		default:
			return err
		}
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return resp, nil
}

func drain(r *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r.Body, 4<<10))
	r.Body.Close()
}
