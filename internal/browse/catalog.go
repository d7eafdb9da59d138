package browse

import (
	"context"

	"github.com/pkmbinder/pkmbinder/internal/cards"
	"github.com/pkmbinder/pkmbinder/internal/model"
)

// Source is the slice of the catalog client the coordinator consumes.
type Source interface {
	ListSets(ctx context.Context, opts cards.SetListOptions) (*cards.SetPage, error)
	CardsBySetID(ctx context.Context, setID string, opts cards.CardListOptions) (*cards.CardPage, error)
	CardByID(ctx context.Context, id string) (*model.Card, error)
}

var _ Source = (*cards.PokeTCGIO)(nil)

// SetListInput selects a page of expansions.
type SetListInput struct {
	Page     int
	PageSize int
	Filters  []cards.Filter
}

// CardListInput selects a page of cards within one set. An empty SetID means
// nothing is selected: the query answers with an empty success synchronously
// and no request is issued.
type CardListInput struct {
	SetID    string
	Page     int
	PageSize int
	Filters  []cards.Filter
}

// NewSetList builds the query behind a set browser.
func NewSetList(src Source, opts ...QueryOption) *Query[SetListInput, []model.Set] {
	return NewQuery(func(ctx context.Context, in SetListInput) ([]model.Set, int, error) {
		page, err := src.ListSets(ctx, cards.SetListOptions{
			Page:     in.Page,
			PageSize: in.PageSize,
			Filters:  in.Filters,
		})
		if err != nil {
			return nil, 0, err
		}
		return page.Sets, page.TotalCount, nil
	}, opts...)
}

// NewCardList builds the query behind a single set's card grid.
func NewCardList(src Source, opts ...QueryOption) *Query[CardListInput, []model.Card] {
	q := NewQuery(func(ctx context.Context, in CardListInput) ([]model.Card, int, error) {
		page, err := src.CardsBySetID(ctx, in.SetID, cards.CardListOptions{
			Page:     in.Page,
			PageSize: in.PageSize,
			Filters:  in.Filters,
		})
		if err != nil {
			return nil, 0, err
		}
		return page.Cards, page.TotalCount, nil
	}, opts...)
	q.shortcut = func(in CardListInput) ([]model.Card, bool) {
		if in.SetID == "" {
			return []model.Card{}, true
		}
		return nil, false
	}
	return q
}

// NewCardDetail builds the query behind a card detail view. An empty id
// means no selection: a synchronous empty success with a nil card.
func NewCardDetail(src Source, opts ...QueryOption) *Query[string, *model.Card] {
	q := NewQuery(func(ctx context.Context, id string) (*model.Card, int, error) {
		card, err := src.CardByID(ctx, id)
		if err != nil {
			return nil, 0, err
		}
		return card, 1, nil
	}, opts...)
	q.shortcut = func(id string) (*model.Card, bool) {
		if id == "" {
			return nil, true
		}
		return nil, false
	}
	return q
}
