package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pkmbinder/pkmbinder/internal/collection"
	"github.com/pkmbinder/pkmbinder/internal/report"
)

func newCollectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collection",
		Aliases: []string{"col"},
		Short:   "Manage the cards you own",
	}
	cmd.AddCommand(
		newCollectionAddCmd(),
		newCollectionListCmd(),
		newCollectionRemoveCmd(),
		newCollectionStatsCmd(),
		newCollectionHistoryCmd(),
		newCollectionExportCmd(),
	)
	return cmd
}

func newCollectionAddCmd() *cobra.Command {
	var (
		qty       int
		condition string
		price     float64
		notes     string
	)

	cmd := &cobra.Command{
		Use:   "add <card-id>",
		Short: "Add a card to the binder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cond := collection.Condition(condition)
			if !cond.Valid() {
				return fmt.Errorf("unknown condition %q (use NM, LP, MP, HP or DMG)", condition)
			}

			card, err := newCatalog().CardByID(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("fetch card %s: %w", args[0], err)
			}
			if card == nil {
				return fmt.Errorf("card %s not found", args[0])
			}

			var purchasePrice *float64
			if cmd.Flags().Changed("price") {
				purchasePrice = &price
			}

			store, err := openBinder(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			entry := collection.NewEntry(card, qty, cond, purchasePrice, notes)
			if err := store.Upsert(cmd.Context(), entry); err != nil {
				return fmt.Errorf("add to collection: %w", err)
			}

			stored, err := store.Get(cmd.Context(), card.ID)
			if err != nil {
				return fmt.Errorf("read back entry: %w", err)
			}

			fmt.Printf("Added %dx %s (%s)", qty, card.Name, card.ID)
			if stored != nil && stored.Quantity != qty {
				fmt.Printf(", now own %d", stored.Quantity)
			}
			if entry.MarketPrice != nil {
				fmt.Printf(", market %s", money(entry.MarketPrice))
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().IntVar(&qty, "qty", 1, "Number of copies")
	cmd.Flags().StringVar(&condition, "condition", string(collection.ConditionNearMint), "Condition: NM, LP, MP, HP, DMG")
	cmd.Flags().Float64Var(&price, "price", 0, "Purchase price per copy in USD")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")

	return cmd
}

func newCollectionListCmd() *cobra.Command {
	var setID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List owned cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openBinder(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), setID)
			if err != nil {
				return fmt.Errorf("list collection: %w", err)
			}
			if len(entries) == 0 {
				fmt.Println("The binder is empty.")
				return nil
			}

			fmt.Printf("%-16s  %-28s  %-24s  %4s  %-5s  %10s  %10s\n",
				"CARD", "NAME", "SET", "QTY", "COND", "MARKET", "VALUE")
			fmt.Printf("%-16s  %-28s  %-24s  %4s  %-5s  %10s  %10s\n",
				"----", "----", "---", "---", "----", "------", "-----")

			var total float64
			for _, e := range entries {
				value := "-"
				if e.MarketPrice != nil {
					v := *e.MarketPrice * float64(e.Quantity)
					total += v
					value = fmt.Sprintf("$%.2f", v)
				}
				fmt.Printf("%-16s  %-28s  %-24s  %4d  %-5s  %10s  %10s\n",
					e.CardID, e.CardName, e.SetName, e.Quantity, e.Condition,
					money(e.MarketPrice), value)
			}
			fmt.Printf("\n%d entries, market value $%.2f\n", len(entries), total)
			return nil
		},
	}

	cmd.Flags().StringVar(&setID, "set", "", "Only cards from this set")
	return cmd
}

func newCollectionRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <card-id>",
		Short: "Remove a card from the binder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openBinder(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Removed %s\n", args[0])
			return nil
		},
	}
}

func newCollectionStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show binder totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openBinder(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("collection stats: %w", err)
			}

			fmt.Printf("Unique cards:  %d\n", stats.UniqueCards)
			fmt.Printf("Total cards:   %d\n", stats.TotalCards)
			fmt.Printf("Cost basis:    $%.2f\n", stats.CostBasis)
			fmt.Printf("Market value:  $%.2f\n", stats.MarketValue)
			return nil
		},
	}
}

func newCollectionExportCmd() *cobra.Command {
	var (
		setID   string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the binder as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openBinder(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), setID)
			if err != nil {
				return fmt.Errorf("list collection: %w", err)
			}

			out := os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outPath, err)
				}
				defer f.Close()
				out = f
			}
			if err := report.WriteBinderCSV(out, entries); err != nil {
				return err
			}
			if outPath != "" {
				fmt.Printf("Exported %d entries to %s\n", len(entries), outPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&setID, "set", "", "Only cards from this set")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func newCollectionHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show daily value snapshots, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openBinder(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			snaps, err := store.ValueHistory(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("value history: %w", err)
			}
			if len(snaps) == 0 {
				fmt.Println("No snapshots yet. Run `pkmbinder refresh` to take one.")
				return nil
			}

			fmt.Printf("%-12s  %8s  %8s  %12s\n", "DATE", "CARDS", "UNIQUE", "VALUE")
			fmt.Printf("%-12s  %8s  %8s  %12s\n", "----", "-----", "------", "-----")
			for _, snap := range snaps {
				fmt.Printf("%-12s  %8d  %8d  %12s\n",
					snap.Date, snap.TotalCards, snap.UniqueCards,
					fmt.Sprintf("$%.2f", snap.TotalValue))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 30, "Number of snapshots to show")
	return cmd
}
