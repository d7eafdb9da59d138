package cards

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/time/rate"

	"github.com/pkmbinder/pkmbinder/internal/model"
)

const (
	defaultBaseURL = "https://api.pokemontcg.io/v2"
	userAgent      = "pkmbinder/1.0"

	// maxRetries bounds both the rate-limit and network retry paths:
	// up to 3 retries, 4 attempts total.
	maxRetries        = 3
	backoffBase       = 1000 * time.Millisecond
	defaultRetryAfter = 5 * time.Second

	clientTimeout = 30 * time.Second
)

// PokeTCGIO talks to the pokemontcg.io v2 API.
type PokeTCGIO struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger

	// backoff and sleep are swapped out by tests to keep retry timing fast.
	backoff time.Duration
	sleep   func(context.Context, time.Duration) error
}

// Option adjusts a client at construction time.
type Option func(*PokeTCGIO)

// WithBaseURL points the client at a different API root (tests, proxies).
func WithBaseURL(u string) Option {
	return func(p *PokeTCGIO) { p.baseURL = u }
}

// WithHTTPClient replaces the default 30s-timeout client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *PokeTCGIO) { p.client = c }
}

// WithLogger attaches a logger; the default is slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(p *PokeTCGIO) { p.logger = l }
}

// WithLimiter replaces the default client-side limiter (5 req/s, burst 5).
// A nil limiter disables client-side throttling.
func WithLimiter(l *rate.Limiter) Option {
	return func(p *PokeTCGIO) { p.limiter = l }
}

func NewPokeTCGIO(apiKey string, opts ...Option) *PokeTCGIO {
	p := &PokeTCGIO{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: clientTimeout},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
		backoff: backoffBase,
		sleep:   sleepCtx,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.logger = p.logger.With("component", "cards")
	return p
}

// SetPage is one page of a sets listing.
type SetPage struct {
	Sets       []model.Set
	TotalCount int
}

// CardPage is one page of a cards listing.
type CardPage struct {
	Cards      []model.Card
	TotalCount int
}

// ListSets fetches one page of expansions, newest-known ordering by release
// date. Caller filters are forwarded verbatim; empty values are dropped.
func (p *PokeTCGIO) ListSets(ctx context.Context, opts SetListOptions) (*SetPage, error) {
	params := make([]Param, 0, len(opts.Filters)+3)
	if opts.Page > 0 {
		params = append(params, Param{"page", strconv.Itoa(opts.Page)})
	}
	if opts.PageSize > 0 {
		params = append(params, Param{"pageSize", strconv.Itoa(opts.PageSize)})
	}
	params = append(params, Param{"orderBy", "releaseDate"})
	for _, f := range opts.Filters {
		params = append(params, Param{f.Field, f.Value})
	}

	var resp struct {
		Data       []model.Set `json:"data"`
		TotalCount int         `json:"totalCount"`
	}
	if err := p.get(ctx, "sets", params, &resp); err != nil {
		return nil, err
	}
	return &SetPage{Sets: resp.Data, TotalCount: resp.TotalCount}, nil
}

// CardsBySetID fetches one page of cards belonging to a set, ordered by
// printed number. An empty setID short-circuits to an empty page with no
// request, mirroring the "nothing selected" state upstream.
func (p *PokeTCGIO) CardsBySetID(ctx context.Context, setID string, opts CardListOptions) (*CardPage, error) {
	if setID == "" {
		return &CardPage{Cards: []model.Card{}}, nil
	}

	params := make([]Param, 0, 4)
	if opts.Page > 0 {
		params = append(params, Param{"page", strconv.Itoa(opts.Page)})
	}
	if opts.PageSize > 0 {
		params = append(params, Param{"pageSize", strconv.Itoa(opts.PageSize)})
	}
	params = append(params,
		Param{"orderBy", "number"},
		Param{"q", searchQuery(setID, opts.Filters)},
	)

	var resp struct {
		Data       []model.Card `json:"data"`
		TotalCount int          `json:"totalCount"`
	}
	if err := p.get(ctx, "cards", params, &resp); err != nil {
		return nil, err
	}
	return &CardPage{Cards: resp.Data, TotalCount: resp.TotalCount}, nil
}

// AllCardsBySetID walks every page of a set at the API's maximum page size.
func (p *PokeTCGIO) AllCardsBySetID(ctx context.Context, setID string, filters ...Filter) ([]model.Card, error) {
	if setID == "" {
		return []model.Card{}, nil
	}

	const pageSize = 250
	cards := []model.Card{}
	for page := 1; ; page++ {
		resp, err := p.CardsBySetID(ctx, setID, CardListOptions{
			Page:     page,
			PageSize: pageSize,
			Filters:  filters,
		})
		if err != nil {
			return nil, err
		}
		cards = append(cards, resp.Cards...)
		if page*pageSize >= resp.TotalCount || len(resp.Cards) == 0 {
			break
		}
	}
	return cards, nil
}

// CardByID fetches one card. An empty id means "no selection": nil result,
// no request.
func (p *PokeTCGIO) CardByID(ctx context.Context, id string) (*model.Card, error) {
	if id == "" {
		return nil, nil
	}

	var resp struct {
		Data model.Card `json:"data"`
	}
	if err := p.get(ctx, "cards/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// get performs one logical GET against the API: ordered query encoding,
// classified failures, bounded retries for 429 and network faults.
func (p *PokeTCGIO) get(ctx context.Context, endpoint string, params []Param, into any) error {
	u := p.baseURL + "/" + endpoint
	query := encodeParams(params)
	if query != "" {
		u += "?" + query
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		p.setHeaders(req)

		resp, err := p.client.Do(req)
		if err != nil {
			lastErr = &NetworkError{Err: err}
			if attempt == maxRetries {
				break
			}
			delay := time.Duration(1<<uint(attempt)) * p.backoff
			p.logger.Warn("request failed, backing off",
				"endpoint", endpoint, "query", query,
				"attempt", attempt+1, "delay", delay, "error", err)
			if serr := p.sleep(ctx, delay); serr != nil {
				return serr
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			delay := retryAfter(resp.Header)
			drain(resp)
			lastErr = ErrRateLimited
			if attempt == maxRetries {
				break
			}
			p.logger.Warn("rate limited, honoring Retry-After",
				"endpoint", endpoint, "query", query,
				"attempt", attempt+1, "delay", delay)
			if serr := p.sleep(ctx, delay); serr != nil {
				return serr
			}
			continue
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			drain(resp)
			p.logger.Debug("not found", "endpoint", endpoint, "query", query)
			return ErrNotFound

		case resp.StatusCode == http.StatusUnauthorized:
			drain(resp)
			p.logger.Error("unauthorized", "endpoint", endpoint, "query", query)
			return ErrUnauthorized

		case resp.StatusCode/100 != 2:
			drain(resp)
			p.logger.Error("unexpected status",
				"endpoint", endpoint, "query", query, "status", resp.Status)
			return &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
		}

		reader, err := responseReader(resp)
		if err != nil {
			drain(resp)
			p.logger.Error("decode failed",
				"endpoint", endpoint, "query", query, "error", err)
			return &DecodeError{Err: err}
		}
		err = json.NewDecoder(reader).Decode(into)
		drain(resp)
		if err != nil {
			p.logger.Error("decode failed",
				"endpoint", endpoint, "query", query, "error", err)
			return &DecodeError{Err: err}
		}
		return nil
	}

	p.logger.Error("retry budget exhausted",
		"endpoint", endpoint, "query", query,
		"attempts", maxRetries+1, "error", lastErr)
	return lastErr
}

func (p *PokeTCGIO) setHeaders(req *http.Request) {
	if p.apiKey != "" {
		req.Header.Set("X-Api-Key", p.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Encoding", "gzip, br")
}

// responseReader unwraps the body per Content-Encoding. Setting
// Accept-Encoding by hand disables net/http's transparent gzip, so both
// codings are handled here.
func responseReader(resp *http.Response) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(resp.Body)
	case "br":
		return brotli.NewReader(resp.Body), nil
	}
	return resp.Body, nil
}

// retryAfter reads the Retry-After header in seconds, defaulting when the
// header is absent or unparsable.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs < 0 {
		return defaultRetryAfter
	}
	return time.Duration(secs) * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// drain finishes and closes the body so the transport can reuse the
// connection.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
