package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pkmbinder/pkmbinder/internal/cards"
	"github.com/pkmbinder/pkmbinder/internal/collection"
	"github.com/pkmbinder/pkmbinder/internal/model"
)

// Source fetches current card records from the catalog.
type Source interface {
	CardByID(ctx context.Context, id string) (*model.Card, error)
}

// Binder is the slice of the collection store the refresher needs.
type Binder interface {
	List(ctx context.Context, setID string) ([]*collection.Entry, error)
	UpdateMarketPrice(ctx context.Context, cardID string, price float64, source string, at time.Time) error
	TakeSnapshot(ctx context.Context) (*collection.ValueSnapshot, error)
}

var (
	_ Source = (*cards.PokeTCGIO)(nil)
	_ Binder = (*collection.Store)(nil)
)

// Result is the outcome of refreshing one card.
type Result struct {
	CardID string
	Price  float64
	Source string
	Err    error
}

// Summary reports one refresh run.
type Summary struct {
	Refreshed int                       `json:"refreshed"`
	Skipped   int                       `json:"skipped"`
	Failed    int                       `json:"failed"`
	Duration  time.Duration             `json:"-"`
	Snapshot  *collection.ValueSnapshot `json:"snapshot,omitempty"`
}

// Service re-prices every card in the binder against the live catalog.
type Service struct {
	store      Binder
	source     Source
	logger     *slog.Logger
	workers    int
	limiter    *rate.Limiter
	onProgress func(completed, total int)
}

// Option configures a Service.
type Option func(*Service)

// WithWorkers sets the number of concurrent fetch workers.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithRate caps fetches per second across all workers.
func WithRate(rps float64) Option {
	return func(s *Service) {
		if rps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), s.workers)
		}
	}
}

// WithProgress registers a callback invoked after each card completes.
func WithProgress(fn func(completed, total int)) Option {
	return func(s *Service) {
		s.onProgress = fn
	}
}

// NewService creates a price refresh service.
func NewService(store Binder, source Source, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:   store,
		source:  source,
		logger:  logger.With("component", "refresh"),
		workers: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.limiter == nil {
		s.limiter = rate.NewLimiter(rate.Limit(5), s.workers)
	}
	return s
}

// RefreshPrices fetches every binder card through a bounded worker pool,
// writes fresh market prices, and finishes with a value snapshot. Per-card
// failures are counted, not fatal; the rest of the batch proceeds.
func (s *Service) RefreshPrices(ctx context.Context) (*Summary, error) {
	start := time.Now()

	entries, err := s.store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list collection: %w", err)
	}

	s.logger.Info("refreshing prices", "cards", len(entries), "workers", s.workers)

	jobs := make(chan *collection.Entry, len(entries))
	results := make(chan Result, len(entries))

	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go s.worker(ctx, jobs, results, &wg)
	}

	go func() {
		defer close(jobs)
		for _, e := range entries {
			select {
			case jobs <- e:
			case <-ctx.Done():
				return
			}
		}
	}()

	summary := &Summary{}
	for completed := 0; completed < len(entries); completed++ {
		select {
		case r := <-results:
			s.apply(ctx, r, summary)
			if s.onProgress != nil {
				s.onProgress(completed+1, len(entries))
			}
		case <-ctx.Done():
			return summary, ctx.Err()
		}
	}
	wg.Wait()

	snap, err := s.store.TakeSnapshot(ctx)
	if err != nil {
		return summary, fmt.Errorf("take snapshot: %w", err)
	}
	summary.Snapshot = snap
	summary.Duration = time.Since(start)

	s.logger.Info("price refresh complete",
		"refreshed", summary.Refreshed,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"total_value", snap.TotalValue,
		"duration", summary.Duration)
	return summary, nil
}

func (s *Service) worker(ctx context.Context, jobs <-chan *collection.Entry, results chan<- Result, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case e, ok := <-jobs:
			if !ok {
				return
			}

			if err := s.limiter.Wait(ctx); err != nil {
				results <- Result{CardID: e.CardID, Err: err}
				continue
			}

			card, err := s.source.CardByID(ctx, e.CardID)
			if err != nil {
				results <- Result{CardID: e.CardID, Err: err}
				continue
			}
			if card == nil {
				results <- Result{CardID: e.CardID, Err: cards.ErrNotFound}
				continue
			}

			price, src := card.MarketValue()
			results <- Result{CardID: e.CardID, Price: price, Source: src}

		case <-ctx.Done():
			return
		}
	}
}

// apply folds one result into the summary. Price writes happen here, on the
// collector goroutine, so SQLite sees a single writer.
func (s *Service) apply(ctx context.Context, r Result, summary *Summary) {
	switch {
	case r.Err != nil:
		summary.Failed++
		s.logger.Warn("price fetch failed", "card_id", r.CardID, "error", r.Err)
	case r.Source == "":
		summary.Skipped++
		s.logger.Debug("card has no listed price", "card_id", r.CardID)
	default:
		if err := s.store.UpdateMarketPrice(ctx, r.CardID, r.Price, r.Source, time.Now().UTC()); err != nil {
			summary.Failed++
			s.logger.Warn("price write failed", "card_id", r.CardID, "error", err)
			return
		}
		summary.Refreshed++
	}
}
