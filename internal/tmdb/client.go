// Package tmdb is a rate-limited, retrying, circuit-broken client for the
// TMDB v3 REST API.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cinetrack/internal/cache"
	"cinetrack/internal/logging"
	"cinetrack/internal/metrics"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.themoviedb.org/3"

	rateBurst = 10

	// Retry configuration
	maxRetries   = 5
	initialDelay = 1 * time.Second
	maxDelay     = 32 * time.Second

	breakerName = "tmdb"
)

var (
	ErrNotFound      = errors.New("tmdb: resource not found")
	ErrUnavailable   = errors.New("tmdb: service unavailable")
	ErrInvalidMedium = errors.New("tmdb: media type must be movie or tv")
)

type Config struct {
	BaseURL   string
	APIKey    string
	RateLimit float64 // requests per second
	Timeout   time.Duration
	CacheTTL  time.Duration
}

// Client handles API requests with rate limiting and retry logic. Successful
// detail lookups are cached in Redis when a cache is supplied.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	breaker     *gobreaker.CircuitBreaker[[]byte]
	cache       *cache.Cache
	cacheTTL    time.Duration

	maxRetries   int
	initialDelay time.Duration
}

func NewClient(cfg Config, c *cache.Cache) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 20
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Client{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), rateBurst),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		breaker:      newBreaker(),
		cache:        c,
		cacheTTL:     cfg.CacheTTL,
		maxRetries:   maxRetries,
		initialDelay: initialDelay,
	}
}

func newBreaker() *gobreaker.CircuitBreaker[[]byte] {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// a 404 is an answer, not an outage
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
}

// SearchMulti searches movies and shows at once; people are filtered out.
func (c *Client) SearchMulti(ctx context.Context, query string, page int) (*SearchPage, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("include_adult", "false")

	var resp SearchPage
	if err := c.get(ctx, "search", "/search/multi", params, "", &resp); err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	filtered := resp.Results[:0]
	for _, r := range resp.Results {
		if r.MediaType == MediaTypeMovie || r.MediaType == MediaTypeTV {
			filtered = append(filtered, r)
		}
	}
	resp.Results = filtered
	return &resp, nil
}

func (c *Client) MovieDetails(ctx context.Context, id int64) (*MovieDetails, error) {
	var resp MovieDetails
	endpoint := fmt.Sprintf("/movie/%d", id)
	if err := c.get(ctx, "movie", endpoint, nil, cache.MetadataKey("movie", id), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch movie %d: %w", id, err)
	}
	return &resp, nil
}

func (c *Client) TVDetails(ctx context.Context, id int64) (*TVDetails, error) {
	var resp TVDetails
	endpoint := fmt.Sprintf("/tv/%d", id)
	if err := c.get(ctx, "tv", endpoint, nil, cache.MetadataKey("tv", id), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch show %d: %w", id, err)
	}
	return &resp, nil
}

// FreshTVDetails bypasses the cache; the update checker needs live counts.
func (c *Client) FreshTVDetails(ctx context.Context, id int64) (*TVDetails, error) {
	var resp TVDetails
	endpoint := fmt.Sprintf("/tv/%d", id)
	if err := c.get(ctx, "tv", endpoint, nil, "", &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch show %d: %w", id, err)
	}
	if err := c.cache.SetJSON(ctx, cache.MetadataKey("tv", id), resp, c.cacheTTL); err != nil {
		logging.Debug().Err(err).Int64("show_id", id).Msg("failed to refresh show cache")
	}
	return &resp, nil
}

func (c *Client) SeasonDetails(ctx context.Context, showID int64, season int) (*SeasonDetails, error) {
	var resp SeasonDetails
	endpoint := fmt.Sprintf("/tv/%d/season/%d", showID, season)
	key := cache.MetadataKey("tv", showID, "season", season)
	if err := c.get(ctx, "season", endpoint, nil, key, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch season %d of show %d: %w", season, showID, err)
	}
	return &resp, nil
}

func (c *Client) Recommendations(ctx context.Context, mediaType string, id int64) ([]SearchResult, error) {
	if mediaType != MediaTypeMovie && mediaType != MediaTypeTV {
		return nil, ErrInvalidMedium
	}
	var resp SearchPage
	endpoint := fmt.Sprintf("/%s/%d/recommendations", mediaType, id)
	key := cache.MetadataKey(mediaType, id, "recommendations")
	if err := c.get(ctx, "recommendations", endpoint, nil, key, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch recommendations for %s %d: %w", mediaType, id, err)
	}
	// the endpoint omits media_type on some rows
	for i := range resp.Results {
		if resp.Results[i].MediaType == "" {
			resp.Results[i].MediaType = mediaType
		}
	}
	return resp.Results, nil
}

func (c *Client) Credits(ctx context.Context, mediaType string, id int64) (*Credits, error) {
	if mediaType != MediaTypeMovie && mediaType != MediaTypeTV {
		return nil, ErrInvalidMedium
	}
	var resp Credits
	endpoint := fmt.Sprintf("/%s/%d/credits", mediaType, id)
	key := cache.MetadataKey(mediaType, id, "credits")
	if err := c.get(ctx, "credits", endpoint, nil, key, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch credits for %s %d: %w", mediaType, id, err)
	}
	return &resp, nil
}

// get serves from cache when cacheKey is set, otherwise goes through the
// circuit breaker to the API and fills the cache.
func (c *Client) get(ctx context.Context, label, endpoint string, params url.Values, cacheKey string, result any) error {
	if cacheKey != "" {
		hit, err := c.cache.GetJSON(ctx, cacheKey, result)
		if err != nil {
			logging.Debug().Err(err).Str("key", cacheKey).Msg("metadata cache read failed")
		}
		if hit {
			metrics.MetadataRequests.WithLabelValues(label, "cache").Inc()
			return nil
		}
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.doRequest(ctx, endpoint, params)
	})
	if err != nil {
		metrics.MetadataRequests.WithLabelValues(label, outcome(err)).Inc()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return err
	}
	metrics.MetadataRequests.WithLabelValues(label, "success").Inc()

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if cacheKey != "" {
		if err := c.cache.SetJSON(ctx, cacheKey, json.RawMessage(body), c.cacheTTL); err != nil {
			logging.Debug().Err(err).Str("key", cacheKey).Msg("metadata cache write failed")
		}
	}
	return nil
}

// doRequest performs an HTTP GET with rate limiting and retry logic
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	fullURL := c.baseURL + endpoint + "?" + params.Encode()

	var lastErr error
	delay := c.initialDelay

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "cinetrack/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt < c.maxRetries {
				logging.Warn().Err(err).Str("endpoint", endpoint).
					Int("attempt", attempt+1).Dur("retry_in", delay).
					Msg("metadata request failed, retrying")
				if err := sleep(ctx, delay); err != nil {
					return nil, err
				}
				delay = minDuration(delay*2, maxDelay)
				continue
			}
			return nil, fmt.Errorf("request failed after %d attempts: %w", c.maxRetries, err)
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("failed to read response: %w", readErr)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrNotFound
		case shouldRetry(resp.StatusCode) && attempt < c.maxRetries:
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, body)
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				if secs, err := strconv.Atoi(retryAfter); err == nil {
					delay = minDuration(time.Duration(secs)*time.Second, maxDelay)
				}
			}
			logging.Warn().Int("status", resp.StatusCode).Str("endpoint", endpoint).
				Int("attempt", attempt+1).Dur("retry_in", delay).
				Msg("metadata API returned retryable status")
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
			delay = minDuration(delay*2, maxDelay)
		default:
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, body)
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.maxRetries, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// shouldRetry determines if an HTTP status code warrants a retry
func shouldRetry(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "circuit_open"
	default:
		return "error"
	}
}
