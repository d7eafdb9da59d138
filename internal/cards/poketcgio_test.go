package cards

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/pkmbinder/pkmbinder/internal/model"
)

// sleepRecorder stands in for the client's backoff sleep so retry timing can
// be asserted without waiting it out.
type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

func (s *sleepRecorder) total() time.Duration {
	var sum time.Duration
	for _, d := range s.delays {
		sum += d
	}
	return sum
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(baseURL string) (*PokeTCGIO, *sleepRecorder) {
	rec := &sleepRecorder{}
	p := NewPokeTCGIO("test-key",
		WithBaseURL(baseURL),
		WithLogger(discardLogger()),
		WithLimiter(nil),
	)
	p.sleep = rec.sleep
	return p, rec
}

func TestNewPokeTCGIO(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
	}{
		{name: "with API key", apiKey: "test-key"},
		{name: "without API key", apiKey: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPokeTCGIO(tt.apiKey)
			if p == nil {
				t.Fatal("NewPokeTCGIO returned nil")
			}
			if p.apiKey != tt.apiKey {
				t.Errorf("apiKey = %q, want %q", p.apiKey, tt.apiKey)
			}
			if p.baseURL != defaultBaseURL {
				t.Errorf("baseURL = %q, want %q", p.baseURL, defaultBaseURL)
			}
			if p.client == nil {
				t.Fatal("expected non-nil HTTP client")
			}
			if p.client.Timeout != 30*time.Second {
				t.Errorf("client timeout = %v, want 30s", p.client.Timeout)
			}
			if p.limiter == nil {
				t.Error("expected a default rate limiter")
			}
		})
	}
}

func TestRequestHeaders(t *testing.T) {
	var received http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = r.Header.Clone()
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	tests := []struct {
		name     string
		apiKey   string
		expected map[string]string
	}{
		{
			name:   "with API key",
			apiKey: "test-key-123",
			expected: map[string]string{
				"X-Api-Key":       "test-key-123",
				"Accept":          "application/json",
				"User-Agent":      "pkmbinder/1.0",
				"Accept-Encoding": "gzip, br",
			},
		},
		{
			name:   "without API key",
			apiKey: "",
			expected: map[string]string{
				"Accept":     "application/json",
				"User-Agent": "pkmbinder/1.0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPokeTCGIO(tt.apiKey,
				WithBaseURL(server.URL),
				WithLogger(discardLogger()),
				WithLimiter(nil),
			)

			var out struct{}
			if err := p.get(context.Background(), "sets", nil, &out); err != nil {
				t.Fatalf("get failed: %v", err)
			}

			for header, want := range tt.expected {
				if got := received.Get(header); got != want {
					t.Errorf("header %s = %q, want %q", header, got, want)
				}
			}
			if tt.apiKey == "" && received.Get("X-Api-Key") != "" {
				t.Errorf("expected no X-Api-Key header, got %q", received.Get("X-Api-Key"))
			}
		})
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		wantAttempts int
		check        func(t *testing.T, err error)
	}{
		{
			name:         "404 is NotFound, never retried",
			status:       http.StatusNotFound,
			wantAttempts: 1,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("got %v, want ErrNotFound", err)
				}
			},
		},
		{
			name:         "401 is Unauthorized, never retried",
			status:       http.StatusUnauthorized,
			wantAttempts: 1,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrUnauthorized) {
					t.Errorf("got %v, want ErrUnauthorized", err)
				}
			},
		},
		{
			name:         "500 is HTTPError, never retried",
			status:       http.StatusInternalServerError,
			wantAttempts: 1,
			check: func(t *testing.T, err error) {
				var he *HTTPError
				if !errors.As(err, &he) {
					t.Fatalf("got %v, want *HTTPError", err)
				}
				if he.StatusCode != http.StatusInternalServerError {
					t.Errorf("StatusCode = %d, want 500", he.StatusCode)
				}
			},
		},
		{
			name:         "503 is HTTPError, never retried",
			status:       http.StatusServiceUnavailable,
			wantAttempts: 1,
			check: func(t *testing.T, err error) {
				var he *HTTPError
				if !errors.As(err, &he) {
					t.Fatalf("got %v, want *HTTPError", err)
				}
				if !strings.Contains(he.Error(), "503") {
					t.Errorf("error %q should mention the status", he.Error())
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts++
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			p, rec := testClient(server.URL)
			var out struct{}
			err := p.get(context.Background(), "sets", nil, &out)
			if err == nil {
				t.Fatal("expected an error")
			}
			tt.check(t, err)
			if attempts != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", attempts, tt.wantAttempts)
			}
			if len(rec.delays) != 0 {
				t.Errorf("expected no backoff sleeps, got %v", rec.delays)
			}
		})
	}
}

func TestRateLimitRecovery(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 3 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"data": [{"id": "base1", "name": "Base"}], "totalCount": 1}`))
	}))
	defer server.Close()

	p, rec := testClient(server.URL)
	resp, err := p.ListSets(context.Background(), SetListOptions{})
	if err != nil {
		t.Fatalf("expected recovery after rate limiting, got %v", err)
	}
	if attempts != 4 {
		t.Errorf("attempts = %d, want 4", attempts)
	}
	want := []time.Duration{2 * time.Second, 2 * time.Second, 2 * time.Second}
	if len(rec.delays) != len(want) {
		t.Fatalf("sleeps = %v, want %v", rec.delays, want)
	}
	for i, d := range want {
		if rec.delays[i] != d {
			t.Errorf("sleep[%d] = %v, want %v", i, rec.delays[i], d)
		}
	}
	if rec.total() < 6*time.Second {
		t.Errorf("total wait = %v, want at least 6s", rec.total())
	}
	if len(resp.Sets) != 1 || resp.Sets[0].ID != "base1" {
		t.Errorf("unexpected payload after recovery: %+v", resp)
	}
}

func TestRateLimitExhaustion(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p, rec := testClient(server.URL)
	var out struct{}
	err := p.get(context.Background(), "sets", nil, &out)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("got %v, want ErrRateLimited", err)
	}
	if attempts != 4 {
		t.Errorf("attempts = %d, want 4 (initial + 3 retries)", attempts)
	}
	if len(rec.delays) != 3 {
		t.Errorf("sleeps = %v, want 3 entries", rec.delays)
	}
}

func TestRetryAfterDefault(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{name: "missing header", header: "", want: 5 * time.Second},
		{name: "garbage header", header: "soon", want: 5 * time.Second},
		{name: "negative header", header: "-3", want: 5 * time.Second},
		{name: "explicit seconds", header: "7", want: 7 * time.Second},
		{name: "zero seconds", header: "0", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Retry-After", tt.header)
			}
			if got := retryAfter(h); got != tt.want {
				t.Errorf("retryAfter = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNetworkFailureBackoff(t *testing.T) {
	// A closed server refuses every connection.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	p, rec := testClient(server.URL)
	var out struct{}
	err := p.get(context.Background(), "sets", nil, &out)

	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("got %v, want *NetworkError", err)
	}
	if ne.Unwrap() == nil {
		t.Error("NetworkError should wrap the underlying cause")
	}
	want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
	if len(rec.delays) != len(want) {
		t.Fatalf("sleeps = %v, want %v", rec.delays, want)
	}
	for i, d := range want {
		if rec.delays[i] != d {
			t.Errorf("sleep[%d] = %v, want %v (1000ms doubling)", i, rec.delays[i], d)
		}
	}
}

func TestDecodeFailure(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "invalid JSON", body: "{invalid json}"},
		{name: "empty body", body: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p, _ := testClient(server.URL)
			var out map[string]any
			err := p.get(context.Background(), "sets", nil, &out)

			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("got %v, want *DecodeError", err)
			}
		})
	}
}

func TestCompressedResponses(t *testing.T) {
	payload := []byte(`{"data": [{"id": "sv7", "name": "Stellar Crown"}], "totalCount": 1}`)

	t.Run("gzip", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var buf bytes.Buffer
			zw := gzip.NewWriter(&buf)
			zw.Write(payload)
			zw.Close()
			w.Header().Set("Content-Encoding", "gzip")
			w.Write(buf.Bytes())
		}))
		defer server.Close()

		p, _ := testClient(server.URL)
		resp, err := p.ListSets(context.Background(), SetListOptions{})
		if err != nil {
			t.Fatalf("gzip response failed: %v", err)
		}
		if len(resp.Sets) != 1 || resp.Sets[0].ID != "sv7" {
			t.Errorf("unexpected payload: %+v", resp)
		}
	})

	t.Run("brotli", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var buf bytes.Buffer
			bw := brotli.NewWriter(&buf)
			bw.Write(payload)
			bw.Close()
			w.Header().Set("Content-Encoding", "br")
			w.Write(buf.Bytes())
		}))
		defer server.Close()

		p, _ := testClient(server.URL)
		resp, err := p.ListSets(context.Background(), SetListOptions{})
		if err != nil {
			t.Fatalf("brotli response failed: %v", err)
		}
		if len(resp.Sets) != 1 || resp.Sets[0].ID != "sv7" {
			t.Errorf("unexpected payload: %+v", resp)
		}
	})
}

func TestListSetsQueryShape(t *testing.T) {
	var rawQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.Write([]byte(`{"data": [], "totalCount": 0}`))
	}))
	defer server.Close()

	p, _ := testClient(server.URL)

	t.Run("full options keep declared order", func(t *testing.T) {
		_, err := p.ListSets(context.Background(), SetListOptions{
			Page:     2,
			PageSize: 50,
			Filters: []Filter{
				{"series", "Scarlet & Violet"},
				{"legalities.standard", "legal"},
			},
		})
		if err != nil {
			t.Fatalf("ListSets failed: %v", err)
		}
		want := "page=2&pageSize=50&orderBy=releaseDate&series=Scarlet+%26+Violet&legalities.standard=legal"
		if rawQuery != want {
			t.Errorf("query = %q, want %q", rawQuery, want)
		}
	})

	t.Run("zero paging and empty filters are never sent", func(t *testing.T) {
		_, err := p.ListSets(context.Background(), SetListOptions{
			Filters: []Filter{{"series", ""}},
		})
		if err != nil {
			t.Fatalf("ListSets failed: %v", err)
		}
		if rawQuery != "orderBy=releaseDate" {
			t.Errorf("query = %q, want only the fixed ordering", rawQuery)
		}
	})
}

func TestCardsBySetIDQueryShape(t *testing.T) {
	var gotPath, gotQ, rawQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQ = r.URL.Query().Get("q")
		rawQuery = r.URL.RawQuery
		w.Write([]byte(`{"data": [], "totalCount": 0}`))
	}))
	defer server.Close()

	p, _ := testClient(server.URL)
	_, err := p.CardsBySetID(context.Background(), "base1", CardListOptions{
		Page:     1,
		PageSize: 20,
		Filters: []Filter{
			{"rarity", "Rare Holo"},
			{"types", "Fire"},
		},
	})
	if err != nil {
		t.Fatalf("CardsBySetID failed: %v", err)
	}

	if gotPath != "/cards" {
		t.Errorf("path = %q, want /cards", gotPath)
	}
	if want := `set.id:base1 rarity:"Rare Holo" types:Fire`; gotQ != want {
		t.Errorf("q = %q, want %q", gotQ, want)
	}
	if !strings.HasPrefix(rawQuery, "page=1&pageSize=20&orderBy=number&q=") {
		t.Errorf("query = %q, want page/pageSize/orderBy before q", rawQuery)
	}
}

func TestCardsBySetIDEmptySetID(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"data": [], "totalCount": 0}`))
	}))
	defer server.Close()

	p, _ := testClient(server.URL)
	resp, err := p.CardsBySetID(context.Background(), "", CardListOptions{Page: 1})
	if err != nil {
		t.Fatalf("expected synchronous empty result, got %v", err)
	}
	if resp.TotalCount != 0 || len(resp.Cards) != 0 {
		t.Errorf("expected empty page, got %+v", resp)
	}
	if resp.Cards == nil {
		t.Error("expected an empty slice, not nil")
	}
	if requests != 0 {
		t.Errorf("expected no requests, got %d", requests)
	}
}

func TestCardByID(t *testing.T) {
	t.Run("fetches the card by path", func(t *testing.T) {
		var gotPath, rawQuery string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			rawQuery = r.URL.RawQuery
			w.Write([]byte(`{"data": {"id": "base1-4", "name": "Charizard", "number": "4",
				"tcgplayer": {"prices": {"holofoil": {"market": 420.5}}}}}`))
		}))
		defer server.Close()

		p, _ := testClient(server.URL)
		card, err := p.CardByID(context.Background(), "base1-4")
		if err != nil {
			t.Fatalf("CardByID failed: %v", err)
		}
		if gotPath != "/cards/base1-4" {
			t.Errorf("path = %q, want /cards/base1-4", gotPath)
		}
		if rawQuery != "" {
			t.Errorf("expected no query parameters, got %q", rawQuery)
		}
		if card.Name != "Charizard" {
			t.Errorf("name = %q, want Charizard", card.Name)
		}
		if v, src := card.MarketValue(); v != 420.5 || src != "tcgplayer.market" {
			t.Errorf("market value = %v %q", v, src)
		}
	})

	t.Run("empty id short-circuits", func(t *testing.T) {
		requests := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
		}))
		defer server.Close()

		p, _ := testClient(server.URL)
		card, err := p.CardByID(context.Background(), "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if card != nil {
			t.Errorf("expected nil card, got %+v", card)
		}
		if requests != 0 {
			t.Errorf("expected no requests, got %d", requests)
		}
	})

	t.Run("unknown id is NotFound", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		p, _ := testClient(server.URL)
		_, err := p.CardByID(context.Background(), "nope-1")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})
}

func TestAllCardsBySetID(t *testing.T) {
	pageSizes := []int{250, 50}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		idx := 0
		if page == "2" {
			idx = 1
		}
		cards := make([]model.Card, pageSizes[idx])
		for i := range cards {
			cards[i] = model.Card{ID: fmt.Sprintf("sv7-%s-%d", page, i)}
		}
		resp := struct {
			Data       []model.Card `json:"data"`
			TotalCount int          `json:"totalCount"`
		}{Data: cards, TotalCount: 300}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p, _ := testClient(server.URL)
	cards, err := p.AllCardsBySetID(context.Background(), "sv7")
	if err != nil {
		t.Fatalf("AllCardsBySetID failed: %v", err)
	}
	if len(cards) != 300 {
		t.Errorf("cards = %d, want 300 across two pages", len(cards))
	}
}

func TestContextCancelDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	p := NewPokeTCGIO("k",
		WithBaseURL(server.URL),
		WithLogger(discardLogger()),
		WithLimiter(nil),
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out struct{}
	err := p.get(ctx, "sets", nil, &out)
	if err == nil {
		t.Fatal("expected an error")
	}
	// Either the canceled context surfaces from the sleep or the request
	// itself fails first; both must terminate promptly.
	if !errors.Is(err, context.Canceled) && !IsRetryable(err) {
		t.Errorf("unexpected error class: %v", err)
	}
}
