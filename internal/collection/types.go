package collection

import (
	"time"

	"github.com/google/uuid"

	"github.com/pkmbinder/pkmbinder/internal/model"
)

// Condition grades an owned copy, TCG marketplace scale.
type Condition string

const (
	ConditionNearMint     Condition = "NM"
	ConditionLightPlay    Condition = "LP"
	ConditionModeratePlay Condition = "MP"
	ConditionHeavyPlay    Condition = "HP"
	ConditionDamaged      Condition = "DMG"
)

// Valid reports whether c is one of the known grades.
func (c Condition) Valid() bool {
	switch c {
	case ConditionNearMint, ConditionLightPlay, ConditionModeratePlay,
		ConditionHeavyPlay, ConditionDamaged:
		return true
	}
	return false
}

// Entry is one card in the binder: catalog identity denormalized for
// offline listing, plus ownership details and the latest market price.
type Entry struct {
	ID            string     `json:"id"`
	CardID        string     `json:"cardId"`
	CardName      string     `json:"cardName"`
	SetID         string     `json:"setId"`
	SetName       string     `json:"setName"`
	Number        string     `json:"number"`
	Rarity        string     `json:"rarity,omitempty"`
	ImageSmall    string     `json:"imageSmall,omitempty"`
	Quantity      int        `json:"quantity"`
	Condition     Condition  `json:"condition"`
	PurchasePrice *float64   `json:"purchasePrice,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	MarketPrice   *float64   `json:"marketPrice,omitempty"`
	PriceSource   string     `json:"priceSource,omitempty"`
	PriceUpdated  *time.Time `json:"priceUpdated,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// NewEntry builds an entry from a catalog card, seeding the market price
// from the card's current price blocks when available.
func NewEntry(card *model.Card, quantity int, cond Condition, purchasePrice *float64, notes string) *Entry {
	now := time.Now().UTC()
	e := &Entry{
		ID:            uuid.NewString(),
		CardID:        card.ID,
		CardName:      card.Name,
		Number:        card.Number,
		Rarity:        card.Rarity,
		Quantity:      quantity,
		Condition:     cond,
		PurchasePrice: purchasePrice,
		Notes:         notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if card.Set != nil {
		e.SetID = card.Set.ID
		e.SetName = card.Set.Name
	}
	if card.Images != nil {
		e.ImageSmall = card.Images.Small
	}
	if v, src := card.MarketValue(); v > 0 {
		e.MarketPrice = &v
		e.PriceSource = src
		e.PriceUpdated = &now
	}
	if e.Quantity < 1 {
		e.Quantity = 1
	}
	if e.Condition == "" {
		e.Condition = ConditionNearMint
	}
	return e
}

// Stats aggregates the binder.
type Stats struct {
	UniqueCards int     `json:"uniqueCards"`
	TotalCards  int     `json:"totalCards"`
	CostBasis   float64 `json:"costBasis"`
	MarketValue float64 `json:"marketValue"`
}

// ValueSnapshot is the binder's total value on one day. One row per date;
// retaking a snapshot the same day replaces it.
type ValueSnapshot struct {
	Date        string    `json:"date"`
	TotalCards  int       `json:"totalCards"`
	UniqueCards int       `json:"uniqueCards"`
	TotalValue  float64   `json:"totalValue"`
	CreatedAt   time.Time `json:"createdAt"`
}
