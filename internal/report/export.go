package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pkmbinder/pkmbinder/internal/collection"
)

// binderHeader is the column layout of an exported binder.
var binderHeader = []string{
	"card_id", "name", "set_id", "set", "number", "rarity",
	"quantity", "condition", "purchase_price", "market_price",
	"price_source", "price_updated", "notes",
}

// WriteBinderCSV renders entries as spreadsheet-safe CSV, one row per
// binder entry in the order given.
func WriteBinderCSV(w io.Writer, entries []*collection.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(binderHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		row := EscapeCSVRow([]string{
			e.CardID,
			e.CardName,
			e.SetID,
			e.SetName,
			e.Number,
			e.Rarity,
			strconv.Itoa(e.Quantity),
			string(e.Condition),
			price(e.PurchasePrice),
			price(e.MarketPrice),
			e.PriceSource,
			stamp(e.PriceUpdated),
			e.Notes,
		})
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for %s: %w", e.CardID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func price(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func stamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
