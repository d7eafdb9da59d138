package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkmbinder/pkmbinder/internal/cards"
)

func newSetsCmd() *cobra.Command {
	var (
		page     int
		pageSize int
		name     string
		series   string
		legal    string
	)

	cmd := &cobra.Command{
		Use:   "sets",
		Short: "List expansions, newest release first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if pageSize == 0 {
				pageSize = cfg.PageSize
			}

			var filters []cards.Filter
			if name != "" {
				filters = append(filters, cards.Filter{Field: "name", Value: name})
			}
			if series != "" {
				filters = append(filters, cards.Filter{Field: "series", Value: series})
			}
			if legal != "" {
				filters = append(filters, cards.Filter{Field: "legalities.standard", Value: legal})
			}

			resp, err := newCatalog().ListSets(cmd.Context(), cards.SetListOptions{
				Page:     page,
				PageSize: pageSize,
				Filters:  filters,
			})
			if err != nil {
				return fmt.Errorf("list sets: %w", err)
			}
			if len(resp.Sets) == 0 {
				fmt.Println("No sets found.")
				return nil
			}

			fmt.Printf("%-14s  %-36s  %-22s  %10s  %s\n", "ID", "NAME", "SERIES", "CARDS", "RELEASED")
			fmt.Printf("%-14s  %-36s  %-22s  %10s  %s\n", "--", "----", "------", "-----", "--------")
			for _, set := range resp.Sets {
				fmt.Printf("%-14s  %-36s  %-22s  %10d  %s\n",
					set.ID, set.Name, set.Series, set.Total, set.ReleaseDate)
			}
			fmt.Printf("\n(%d of %d shown)\n", len(resp.Sets), resp.TotalCount)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Sets per page (0 = config default)")
	cmd.Flags().StringVar(&name, "name", "", "Filter by set name")
	cmd.Flags().StringVar(&series, "series", "", "Filter by series, e.g. \"Scarlet & Violet\"")
	cmd.Flags().StringVar(&legal, "legal", "", "Filter by standard legality (legal, banned)")

	return cmd
}
