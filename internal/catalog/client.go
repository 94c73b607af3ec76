// Package catalog is a client for the TCGdex card catalog.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ramonehamilton/carddex/internal/logger"
	"github.com/ramonehamilton/carddex/internal/metrics"
)

const (
	DefaultBaseURL = "https://api.tcgdex.net/v2/en"
	userAgent      = "CardDex/1.0"
)

// ClientConfig holds the tunables of Client.
type ClientConfig struct {
	BaseURL        string
	RequestsPerSec float64
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	CacheTTL       time.Duration
}

// DefaultClientConfig returns the production defaults.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:        DefaultBaseURL,
		RequestsPerSec: 10,
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		InitialBackoff: time.Second,
		MaxBackoff:     16 * time.Second,
		CacheTTL:       DefaultCacheTTL,
	}
}

// Client represents a TCGdex API client with rate limiting, retries and a
// response cache.
type Client struct {
	cfg         ClientConfig
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	cache       Cache
	log         *logger.Logger
	metrics     *metrics.CatalogMetrics
}

// Option customises a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.CatalogMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a new catalog client. A nil cfg uses the defaults and a
// nil cache disables response caching.
func NewClient(cfg *ClientConfig, cache Cache, opts ...Option) *Client {
	if cfg == nil {
		cfg = DefaultClientConfig()
	}
	resolved := *cfg
	defaults := DefaultClientConfig()
	if resolved.BaseURL == "" {
		resolved.BaseURL = defaults.BaseURL
	}
	resolved.BaseURL = strings.TrimRight(resolved.BaseURL, "/")
	if resolved.RequestsPerSec <= 0 {
		resolved.RequestsPerSec = defaults.RequestsPerSec
	}
	if resolved.Timeout <= 0 {
		resolved.Timeout = defaults.Timeout
	}
	if resolved.MaxRetries < 0 {
		resolved.MaxRetries = 0
	}
	if resolved.InitialBackoff <= 0 {
		resolved.InitialBackoff = defaults.InitialBackoff
	}
	if resolved.MaxBackoff < resolved.InitialBackoff {
		resolved.MaxBackoff = resolved.InitialBackoff
	}
	if resolved.CacheTTL <= 0 {
		resolved.CacheTTL = defaults.CacheTTL
	}

	c := &Client{
		cfg:         resolved,
		httpClient:  &http.Client{Timeout: resolved.Timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(resolved.RequestsPerSec), 1),
		cache:       cache,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetCard retrieves the full detail of a card.
func (c *Client) GetCard(ctx context.Context, id string) (*CardDetail, error) {
	var card CardDetail
	if err := c.get(ctx, "card", "/cards/"+url.PathEscape(id), nil, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// SearchCardsByName lists cards whose name contains name, case-insensitively.
func (c *Client) SearchCardsByName(ctx context.Context, name string) ([]CardBrief, error) {
	var cards []CardBrief
	if err := c.get(ctx, "cards", "/cards", url.Values{"name": {name}}, &cards); err != nil {
		return nil, err
	}

	needle := strings.ToLower(name)
	filtered := make([]CardBrief, 0, len(cards))
	for _, card := range cards {
		if strings.Contains(strings.ToLower(card.Name), needle) {
			filtered = append(filtered, card)
		}
	}
	return filtered, nil
}

// SearchCardsByNumber lists cards with the given local id. When total is
// non-empty only cards from sets whose official or total count equals it
// are kept.
func (c *Client) SearchCardsByNumber(ctx context.Context, localID, total string) ([]CardBrief, error) {
	var cards []CardBrief
	if err := c.get(ctx, "cards", "/cards", url.Values{"localId": {localID}}, &cards); err != nil {
		return nil, err
	}

	matched := make([]CardBrief, 0, len(cards))
	for _, card := range cards {
		if card.LocalID == localID {
			matched = append(matched, card)
		}
	}

	want, err := strconv.Atoi(strings.TrimSpace(total))
	if total == "" || err != nil {
		return matched, nil
	}

	counts := make(map[string]*CardCount)
	filtered := make([]CardBrief, 0, len(matched))
	for _, card := range matched {
		setID := card.SetID()
		count, seen := counts[setID]
		if !seen {
			set, err := c.GetSet(ctx, setID)
			if err != nil {
				if IsNotFound(err) {
					counts[setID] = nil
					continue
				}
				return nil, err
			}
			count = &set.CardCount
			counts[setID] = count
		}
		if count == nil {
			continue
		}
		if count.Official == want || count.TotalOrOfficial() == want {
			filtered = append(filtered, card)
		}
	}
	return filtered, nil
}

// GetSet retrieves a set with its card list.
func (c *Client) GetSet(ctx context.Context, id string) (*SetDetail, error) {
	var set SetDetail
	if err := c.get(ctx, "set", "/sets/"+url.PathEscape(id), nil, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

// GetAllSets lists every set.
func (c *Client) GetAllSets(ctx context.Context) ([]SetBrief, error) {
	var sets []SetBrief
	if err := c.get(ctx, "sets", "/sets", nil, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// SearchSetsByName lists sets whose name contains name, case-insensitively.
func (c *Client) SearchSetsByName(ctx context.Context, name string) ([]SetBrief, error) {
	sets, err := c.GetAllSets(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(name))
	filtered := make([]SetBrief, 0)
	for _, set := range sets {
		if strings.Contains(strings.ToLower(set.Name), needle) {
			filtered = append(filtered, set)
		}
	}
	return filtered, nil
}

// Search interprets query with DetectPattern. Names are first matched
// against set names; if no set matches, cards are searched by name.
func (c *Client) Search(ctx context.Context, query string) (*SearchResult, error) {
	pattern := DetectPattern(query)
	result := &SearchResult{Pattern: pattern}

	if pattern.Kind == PatternCardNumber {
		cards, err := c.SearchCardsByNumber(ctx, pattern.LocalID, pattern.Total)
		if err != nil {
			return nil, err
		}
		result.Cards = cards
		return result, nil
	}

	if pattern.Name == "" {
		return result, nil
	}

	sets, err := c.SearchSetsByName(ctx, pattern.Name)
	if err != nil {
		return nil, err
	}
	if len(sets) > 0 {
		result.Sets = sets
		return result, nil
	}

	cards, err := c.SearchCardsByName(ctx, pattern.Name)
	if err != nil {
		return nil, err
	}
	result.Cards = cards
	return result, nil
}

// ClearCache drops every cached response.
func (c *Client) ClearCache(ctx context.Context) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Clear(ctx)
}

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, result any) error {
	rawURL := c.cfg.BaseURL + path
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return &Error{Kind: KindInvalidURL, URL: rawURL, Err: err}
	}

	if body, ok := c.cached(ctx, rawURL); ok {
		if err := json.Unmarshal(body, result); err == nil {
			return nil
		}
		c.log.Warnf(ctx, "discarding undecodable cached response for %s", rawURL)
	}

	start := time.Now()
	body, err := c.doRequest(ctx, rawURL)
	c.metrics.ObserveRequest(endpoint, outcomeOf(err), time.Since(start))
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return &Error{Kind: KindDecoding, URL: rawURL, Err: err}
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, rawURL, body, c.cfg.CacheTTL); err != nil {
			c.log.Error(ctx, "failed to cache catalog response", err)
		}
	}
	return nil
}

func (c *Client) cached(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	body, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Error(ctx, "catalog cache lookup failed", err)
		return nil, false
	}
	if ok {
		c.metrics.IncCacheHit()
		return body, true
	}
	c.metrics.IncCacheMiss()
	return nil, false
}

// doRequest performs a GET with rate limiting and retries on retryable errors.
func (c *Client) doRequest(ctx context.Context, rawURL string) ([]byte, error) {
	backoff := c.cfg.InitialBackoff
	var lastErr *Error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			c.metrics.IncRetry()
			c.log.Debug(ctx, fmt.Sprintf("retrying catalog request %s (attempt %d): %v", rawURL, attempt+1, lastErr))
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: err}
		}

		body, retryAfter, err := c.attempt(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !err.Retryable() || attempt == c.cfg.MaxRetries || ctx.Err() != nil {
			break
		}

		wait := backoff
		if retryAfter > 0 {
			wait = retryAfter
		}
		if err := sleep(ctx, wait); err != nil {
			return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: err}
		}
		backoff = min(backoff*2, c.cfg.MaxBackoff)
	}

	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, rawURL string) ([]byte, time.Duration, *Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, &Error{Kind: KindInvalidURL, URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &Error{Kind: KindNetwork, URL: rawURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, parseRetryAfter(resp.Header.Get("Retry-After")), errorFromStatus(resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &Error{Kind: KindNetwork, URL: rawURL, Err: err}
	}
	return body, 0, nil
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	var cerr *Error
	if errors.As(err, &cerr) {
		return string(cerr.Kind)
	}
	return string(KindUnknown)
}
