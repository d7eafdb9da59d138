package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pkmbinder/pkmbinder/internal/cards"
	"github.com/pkmbinder/pkmbinder/internal/model"
)

func newCardsCmd() *cobra.Command {
	var (
		page     int
		pageSize int
		rarity   string
		types    string
		name     string
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "cards <set-id>",
		Short: "List the cards of one set, ordered by printed number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setID := args[0]
			if pageSize == 0 {
				pageSize = cfg.PageSize
			}

			var filters []cards.Filter
			if rarity != "" {
				filters = append(filters, cards.Filter{Field: "rarity", Value: rarity})
			}
			if types != "" {
				filters = append(filters, cards.Filter{Field: "types", Value: types})
			}
			if name != "" {
				filters = append(filters, cards.Filter{Field: "name", Value: name})
			}

			catalog := newCatalog()

			var list []cardRow
			var total int
			if all {
				fetched, err := catalog.AllCardsBySetID(cmd.Context(), setID, filters...)
				if err != nil {
					return fmt.Errorf("list cards of %s: %w", setID, err)
				}
				total = len(fetched)
				for i := range fetched {
					list = append(list, newCardRow(&fetched[i]))
				}
			} else {
				resp, err := catalog.CardsBySetID(cmd.Context(), setID, cards.CardListOptions{
					Page:     page,
					PageSize: pageSize,
					Filters:  filters,
				})
				if err != nil {
					return fmt.Errorf("list cards of %s: %w", setID, err)
				}
				total = resp.TotalCount
				for i := range resp.Cards {
					list = append(list, newCardRow(&resp.Cards[i]))
				}
			}

			if len(list) == 0 {
				fmt.Println("No cards found.")
				return nil
			}

			fmt.Printf("%-16s  %6s  %-32s  %-18s  %10s\n", "ID", "NO.", "NAME", "RARITY", "MARKET")
			fmt.Printf("%-16s  %6s  %-32s  %-18s  %10s\n", "--", "---", "----", "------", "------")
			for _, row := range list {
				fmt.Printf("%-16s  %6s  %-32s  %-18s  %10s\n",
					row.id, row.number, row.name, row.rarity, row.market)
			}
			fmt.Printf("\n(%d of %d shown)\n", len(list), total)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Cards per page (0 = config default)")
	cmd.Flags().StringVar(&rarity, "rarity", "", "Filter by rarity, e.g. \"Rare Holo\"")
	cmd.Flags().StringVar(&types, "types", "", "Filter by type, e.g. Fire")
	cmd.Flags().StringVar(&name, "name", "", "Filter by card name")
	cmd.Flags().BoolVar(&all, "all", false, "Fetch every page of the set")

	return cmd
}

type cardRow struct {
	id     string
	number string
	name   string
	rarity string
	market string
}

func newCardRow(c *model.Card) cardRow {
	row := cardRow{
		id:     c.ID,
		number: c.Number,
		name:   c.Name,
		rarity: c.Rarity,
		market: "-",
	}
	if v, _ := c.MarketValue(); v > 0 {
		row.market = fmt.Sprintf("$%.2f", v)
	}
	return row
}

func newCardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "card <card-id>",
		Short: "Show one card with its current market prices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			card, err := newCatalog().CardByID(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("fetch card %s: %w", args[0], err)
			}
			if card == nil {
				return fmt.Errorf("card %s not found", args[0])
			}

			fmt.Printf("%s (%s)\n", card.Name, card.ID)
			if card.Set != nil {
				fmt.Printf("  Set:       %s (%s), #%s/%d\n", card.Set.Name, card.Set.ID, card.Number, card.Set.PrintedTotal)
			} else {
				fmt.Printf("  Number:    %s\n", card.Number)
			}
			if card.Supertype != "" {
				line := card.Supertype
				if len(card.Subtypes) > 0 {
					line += " / " + strings.Join(card.Subtypes, ", ")
				}
				fmt.Printf("  Type:      %s\n", line)
			}
			if len(card.Types) > 0 {
				fmt.Printf("  Energy:    %s\n", strings.Join(card.Types, ", "))
			}
			if card.HP != "" {
				fmt.Printf("  HP:        %s\n", card.HP)
			}
			if card.Rarity != "" {
				fmt.Printf("  Rarity:    %s\n", card.Rarity)
			}
			if card.Artist != "" {
				fmt.Printf("  Artist:    %s\n", card.Artist)
			}

			if v, src := card.MarketValue(); v > 0 {
				fmt.Printf("  Market:    $%.2f (%s)\n", v, src)
			} else {
				fmt.Printf("  Market:    no listed price\n")
			}
			if card.TCGPlayer != nil && card.TCGPlayer.URL != "" {
				fmt.Printf("  TCGplayer: %s\n", card.TCGPlayer.URL)
			}
			if card.Cardmarket != nil && card.Cardmarket.URL != "" {
				fmt.Printf("  Cardmarket: %s\n", card.Cardmarket.URL)
			}
			if card.Images != nil && card.Images.Large != "" {
				fmt.Printf("  Image:     %s\n", card.Images.Large)
			}
			return nil
		},
	}
}
