package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pkmbinder/pkmbinder/internal/cards"
	"github.com/pkmbinder/pkmbinder/internal/collection"
	"github.com/pkmbinder/pkmbinder/internal/model"
	"github.com/pkmbinder/pkmbinder/internal/refresh"
)

// Catalog is the slice of the card client the API proxies.
type Catalog interface {
	ListSets(ctx context.Context, opts cards.SetListOptions) (*cards.SetPage, error)
	CardsBySetID(ctx context.Context, setID string, opts cards.CardListOptions) (*cards.CardPage, error)
	CardByID(ctx context.Context, id string) (*model.Card, error)
}

// Binder is the slice of the collection store the API exposes.
type Binder interface {
	Upsert(ctx context.Context, e *collection.Entry) error
	Get(ctx context.Context, cardID string) (*collection.Entry, error)
	List(ctx context.Context, setID string) ([]*collection.Entry, error)
	UpdateEntry(ctx context.Context, e *collection.Entry) error
	Remove(ctx context.Context, cardID string) error
	Stats(ctx context.Context) (*collection.Stats, error)
	ValueHistory(ctx context.Context, limit int) ([]*collection.ValueSnapshot, error)
}

// Refresher re-prices the binder on demand.
type Refresher interface {
	RefreshPrices(ctx context.Context) (*refresh.Summary, error)
}

var (
	_ Catalog   = (*cards.PokeTCGIO)(nil)
	_ Binder    = (*collection.Store)(nil)
	_ Refresher = (*refresh.Service)(nil)
)

// Server is the pkmbinder REST API server.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	catalog   Catalog
	binder    Binder
	refresher Refresher
	pageSize  int
	startTime time.Time
}

// Option configures optional Server behavior.
type Option func(*Server)

// WithPageSize sets the default catalog page size when the request names none.
func WithPageSize(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// New creates a Server with all routes registered.
func New(catalog Catalog, binder Binder, refresher Refresher, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		catalog:   catalog,
		binder:    binder,
		refresher: refresher,
		pageSize:  25,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/sets", s.handleListSets)
		r.Get("/sets/{id}/cards", s.handleListCards)
		r.Get("/cards/{id}", s.handleGetCard)

		r.Route("/collection", func(r chi.Router) {
			r.Get("/", s.handleListCollection)
			r.Post("/", s.handleAddToCollection)
			r.Get("/stats", s.handleCollectionStats)
			r.Get("/history", s.handleCollectionHistory)
			r.Get("/export", s.handleExportCollection)
			r.Post("/refresh", s.handleRefreshPrices)
			r.Route("/{cardID}", func(r chi.Router) {
				r.Patch("/", s.handleUpdateCollectionEntry)
				r.Delete("/", s.handleRemoveFromCollection)
			})
		})
	})
}
