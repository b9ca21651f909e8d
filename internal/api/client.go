// Package api is the client for the anime backend's HTTP API. Every backend
// response shape is normalized here into the canonical models types.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alvarorichard/anipahe/internal/models"
	"github.com/alvarorichard/anipahe/internal/util"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const (
	apiPrefix = "/api"

	// MaxSuggestions caps the autocomplete list.
	MaxSuggestions = 5

	maxErrorBody = 4 << 10
)

// Client talks to the backend API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *util.ResponseCache
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit caps outgoing requests per second. Zero or less disables the limit.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithCache enables caching of filter options and details responses.
func WithCache(cache *util.ResponseCache) Option {
	return func(c *Client) { c.cache = cache }
}

// NewClient creates a client for the backend at baseURL (e.g. http://127.0.0.1:8000).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid backend url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("invalid backend url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, errors.Errorf("invalid backend url %q: missing host", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: util.NewBackendClient(15 * time.Second),
		limiter:    rate.NewLimiter(rate.Limit(10), 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// HTTPClient exposes the underlying client for loading images from the backend.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// ResolveURL turns a backend-relative path such as /cached_images/x.jpg into an absolute URL.
func (c *Client) ResolveURL(ref string) string {
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return c.baseURL.ResolveReference(r).String()
}

func (c *Client) endpoint(p string, query url.Values) string {
	// p may contain escaped segments, so it is appended to the string form
	s := strings.TrimRight(c.baseURL.String(), "/") + apiPrefix + p
	if len(query) > 0 {
		s += "?" + query.Encode()
	}
	return s
}

// do performs one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, op, method, endpoint string, payload interface{}) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{Op: op, Err: err}
		}
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: failed to encode request", op)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: failed to build request", op)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	util.Debug("api request", "op", op, "method", method, "url", endpoint)
	defer util.StartTimer("api." + op).Stop()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			util.Debugf("%s: closing body: %v", op, cerr)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ne := &NetworkError{
			Op:      op,
			Status:  resp.StatusCode,
			Message: errorMessage(resp.Header.Get("Content-Type"), data, resp.StatusCode),
		}
		util.Warn("api request failed", "op", op, "status", resp.StatusCode, "error", ne.Message)
		return nil, ne
	}
	return data, nil
}

// errorMessage prefers the backend's JSON message/detail, then plain text.
func errorMessage(contentType string, body []byte, status int) string {
	fallback := fmt.Sprintf("HTTP error! status: %d", status)
	text := strings.TrimSpace(string(body))
	if text == "" {
		return fallback
	}
	if strings.Contains(contentType, "application/json") {
		var payload struct {
			Message json.RawMessage `json:"message"`
			Detail  json.RawMessage `json:"detail"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return fallback
		}
		for _, raw := range []json.RawMessage{payload.Message, payload.Detail} {
			var s string
			if len(raw) > 0 && json.Unmarshal(raw, &s) == nil && s != "" {
				return s
			}
		}
		return fallback
	}
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	return text
}

func (c *Client) cachedGet(ctx context.Context, op, endpoint string) ([]byte, error) {
	if c.cache != nil {
		if data, ok := c.cache.Get(endpoint); ok {
			util.Debug("api cache hit", "op", op)
			util.PerfCount("api.cache_hit")
			return data, nil
		}
	}
	data, err := c.do(ctx, op, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.Set(endpoint, data)
	}
	return data, nil
}

// Search queries the backend. Facets set to "All" or empty are not sent.
// The backend answers with the full matching set; it is not paginated.
func (c *Client) Search(ctx context.Context, query string, filters models.SearchFilters) ([]models.AnimeSummary, error) {
	params := url.Values{}
	if q := strings.TrimSpace(query); q != "" {
		params.Set("q", q)
	}
	f := filters.Normalize()
	for _, facet := range models.Facets {
		if v := f.Get(facet); v != models.AllFacet {
			params.Set(string(facet), v)
		}
	}

	data, err := c.do(ctx, "search", http.MethodGet, c.endpoint("/search", params), nil)
	if err != nil {
		return nil, err
	}
	items, _, err := parseSummaries(data)
	if err != nil {
		return nil, errors.Wrap(err, "search")
	}
	return items, nil
}

// Suggestions returns at most MaxSuggestions matches for the autocomplete box.
// When the suggestions endpoint fails the search endpoint is tried once.
func (c *Client) Suggestions(ctx context.Context, query string) ([]models.AnimeSummary, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}
	params := url.Values{}
	params.Set("q", q)
	params.Set("limit", strconv.Itoa(MaxSuggestions))

	data, err := c.do(ctx, "suggestions", http.MethodGet, c.endpoint("/suggestions", params), nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		util.Debug("suggestions failed, falling back to search", "error", err)
		data, err = c.do(ctx, "suggestions", http.MethodGet, c.endpoint("/search", params), nil)
		if err != nil {
			return nil, err
		}
	}
	items, _, err := parseSummaries(data)
	if err != nil {
		return nil, errors.Wrap(err, "suggestions")
	}
	if len(items) > MaxSuggestions {
		items = items[:MaxSuggestions]
	}
	return items, nil
}

func requireSession(session, what string) error {
	if strings.TrimSpace(session) == "" {
		return &ValidationError{
			Field:   "session",
			Message: fmt.Sprintf("Session-ID ist erforderlich, um %s abzurufen.", what),
		}
	}
	return nil
}

// AnimeDetails loads the detail record of one anime.
func (c *Client) AnimeDetails(ctx context.Context, session string) (models.AnimeDetails, error) {
	if err := requireSession(session, "Details"); err != nil {
		return models.AnimeDetails{}, err
	}
	data, err := c.cachedGet(ctx, "details", c.endpoint("/anime/"+url.PathEscape(session), nil))
	if err != nil {
		return models.AnimeDetails{}, err
	}
	return parseDetails(data, session)
}

// Episodes loads the ordered episode list of one anime.
func (c *Client) Episodes(ctx context.Context, session string) ([]models.Episode, error) {
	if err := requireSession(session, "Episoden"); err != nil {
		return nil, err
	}
	data, err := c.do(ctx, "episodes", http.MethodGet, c.endpoint("/anime/"+url.PathEscape(session)+"/episodes", nil), nil)
	if err != nil {
		return nil, err
	}
	return parseEpisodes(data)
}

// BrowseAll lists the backend's cached anime page by page.
// limit is clamped to [1,100] and page to at least 1.
func (c *Client) BrowseAll(ctx context.Context, page, limit int) (models.ResultPage, error) {
	safeLimit := models.ClampPageSize(limit)
	if safeLimit != limit {
		util.Warnf("browse: limit %d clamped to %d", limit, safeLimit)
	}
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(safeLimit))

	data, err := c.do(ctx, "browse", http.MethodGet, c.endpoint("/anime/all", params), nil)
	if err != nil {
		return models.ResultPage{}, err
	}
	items, total, err := parseSummaries(data)
	if err != nil {
		return models.ResultPage{}, errors.Wrap(err, "browse")
	}
	if total < 0 {
		total = len(items)
	}
	if len(items) > safeLimit {
		items = items[:safeLimit]
	}
	return models.ResultPage{Items: items, Total: total, Page: page, PageSize: safeLimit}, nil
}

// FilterOptions loads the selectable facet values.
func (c *Client) FilterOptions(ctx context.Context) (models.FilterOptions, error) {
	data, err := c.cachedGet(ctx, "filters", c.endpoint("/filters", nil))
	if err != nil {
		return models.FilterOptions{}, err
	}
	return parseFilterOptions(data)
}

type episodesRequest struct {
	Episodes []episodeRequest `json:"episodes"`
}

// episodeRequest carries both the current and the older field name for the
// anime session; the backend model reads "session".
type episodeRequest struct {
	Session        string `json:"session"`
	AnimeSession   string `json:"anime_session"`
	EpisodeSession string `json:"episode_session"`
}

func buildEpisodesRequest(refs []models.EpisodeRef) (episodesRequest, error) {
	req := episodesRequest{Episodes: make([]episodeRequest, 0, len(refs))}
	for _, r := range refs {
		if !r.Valid() {
			continue
		}
		req.Episodes = append(req.Episodes, episodeRequest{
			Session:        r.AnimeSession,
			AnimeSession:   r.AnimeSession,
			EpisodeSession: r.EpisodeSession,
		})
	}
	if len(req.Episodes) == 0 {
		return req, &ValidationError{
			Field:   "episodes",
			Message: "Keine gültigen Episoden zum Abrufen von Stream-URLs gefunden.",
		}
	}
	return req, nil
}

// StreamURLs resolves playable URLs for the given episodes.
// References missing either session are dropped before sending.
func (c *Client) StreamURLs(ctx context.Context, refs []models.EpisodeRef) ([]models.StreamURL, error) {
	if len(refs) == 0 {
		return nil, &ValidationError{Field: "episodes", Message: "Eine Liste von Episoden ist erforderlich."}
	}
	req, err := buildEpisodesRequest(refs)
	if err != nil {
		return nil, err
	}
	data, err := c.do(ctx, "stream_urls", http.MethodPost, c.endpoint("/stream_urls", nil), req)
	if err != nil {
		return nil, err
	}
	return parseStreamURLs(data)
}

// PlayExternal asks the backend to start its external player for the episodes.
func (c *Client) PlayExternal(ctx context.Context, refs []models.EpisodeRef) error {
	req, err := buildEpisodesRequest(refs)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, "play_external", http.MethodPost, c.endpoint("/play_external", nil), req)
	return err
}

// SetCacheInterval changes the backend's background cache interval.
func (c *Client) SetCacheInterval(ctx context.Context, minutes int) error {
	if minutes < 1 {
		return &ValidationError{Field: "interval", Message: "Das Cache-Intervall muss mindestens 1 Minute betragen."}
	}
	payload := map[string]int{"interval": minutes * 60}
	_, err := c.do(ctx, "cache_interval", http.MethodPost, c.endpoint("/settings/cache_interval", nil), payload)
	return err
}

// ClearCache drops the backend cache and the client's response cache.
func (c *Client) ClearCache(ctx context.Context) error {
	if _, err := c.do(ctx, "clear_cache", http.MethodPost, c.endpoint("/settings/clear_cache", nil), nil); err != nil {
		return err
	}
	if c.cache != nil {
		c.cache.Purge()
	}
	return nil
}
