package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/linqiu/marketlens/internal/ai"
	"github.com/linqiu/marketlens/internal/config"
	"github.com/linqiu/marketlens/internal/ingest"
	"github.com/linqiu/marketlens/internal/logging"
	"github.com/linqiu/marketlens/internal/market"
	"github.com/linqiu/marketlens/internal/store"
	"github.com/linqiu/marketlens/internal/tui"
)

var (
	flagFetchCategory string
	flagFetchDate     string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch one category for a date",
	Long: `Run a single grounded search for one category and append the results to
the local store. Re-fetching a date adds rows; existing records are never
replaced.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat := market.Category(flagFetchCategory)
		if !cat.Valid() {
			return fmt.Errorf("unknown category %q (valid: trading, tender, bid-award, demand)", flagFetchCategory)
		}
		day := flagFetchDate
		if day == "" {
			day = market.Today()
		}

		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if !cfg.AIEnabled() {
			return fmt.Errorf("no API key configured; set MARKETLENS_API_KEY or ai.api_key in config")
		}

		log := logging.New()
		defer log.Sync()

		st, err := store.Open(cfg.StorePath())
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()

		searcher, err := ai.New(cfg.AI, cfg.AIKey(), cfg.FetchTimeoutDuration())
		if err != nil {
			return fmt.Errorf("configuring search provider: %w", err)
		}

		fmt.Printf("Fetching %s for %s...\n", cat.Label(), day)
		result, err := ingest.New(searcher, st, log).Fetch(context.Background(), cat, day)
		return reportFetch(os.Stdout, cat, result, err)
	},
}

// reportFetch prints the outcome of one fetch. A store-write failure still
// renders the in-memory result, but the error is returned so scripted
// callers get a non-zero exit.
func reportFetch(w io.Writer, cat market.Category, result market.SearchResult, err error) error {
	if err != nil {
		if errors.Is(err, ingest.ErrBusy) {
			return err
		}
		if len(result.Items) > 0 {
			fmt.Fprintf(w, "  [warn] %v\n", err)
			fmt.Fprint(w, tui.RenderResult(result))
			return err
		}
		return fmt.Errorf("%w\nRun 'marketlens fetch --category %s' to retry", err, cat)
	}

	fmt.Fprintf(w, "Stored %d record(s).\n\n", len(result.Items))
	fmt.Fprint(w, tui.RenderResult(result))
	return nil
}

func init() {
	fetchCmd.Flags().StringVar(&flagFetchCategory, "category", "", "category to fetch (trading, tender, bid-award, demand)")
	fetchCmd.Flags().StringVar(&flagFetchDate, "date", "", "date to fetch, YYYY-MM-DD (default: today)")
	fetchCmd.MarkFlagRequired("category")
}
