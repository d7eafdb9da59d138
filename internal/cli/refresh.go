package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pkmbinder/pkmbinder/internal/progress"
	"github.com/pkmbinder/pkmbinder/internal/refresh"
)

func newRefreshCmd() *cobra.Command {
	var (
		workers int
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Re-price every card in the binder and snapshot its value",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openBinder(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), "")
			if err != nil {
				return fmt.Errorf("list collection: %w", err)
			}

			var barOut io.Writer
			if !quiet {
				barOut = os.Stderr
			}
			bar := progress.NewBar(barOut, "Re-pricing binder", len(entries))

			svc := refresh.NewService(store, newCatalog(), logger,
				refresh.WithWorkers(workers),
				refresh.WithRate(cfg.RatePerSec),
				refresh.WithProgress(bar.Update),
			)

			bar.Start()
			summary, err := svc.RefreshPrices(cmd.Context())
			if err != nil {
				bar.Fail(err)
				return fmt.Errorf("refresh prices: %w", err)
			}
			bar.Finish()

			fmt.Printf("Refreshed %d, skipped %d (no listed price), failed %d\n",
				summary.Refreshed, summary.Skipped, summary.Failed)
			if summary.Snapshot != nil {
				fmt.Printf("Binder value on %s: $%.2f across %d cards\n",
					summary.Snapshot.Date, summary.Snapshot.TotalValue, summary.Snapshot.TotalCards)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 4, "Concurrent price fetchers")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Suppress the progress bar")

	return cmd
}
