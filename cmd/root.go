package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linqiu/marketlens/internal/ai"
	"github.com/linqiu/marketlens/internal/backfill"
	"github.com/linqiu/marketlens/internal/config"
	"github.com/linqiu/marketlens/internal/ingest"
	"github.com/linqiu/marketlens/internal/logging"
	"github.com/linqiu/marketlens/internal/market"
	"github.com/linqiu/marketlens/internal/store"
	"github.com/linqiu/marketlens/internal/tui"
	"github.com/linqiu/marketlens/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig     string
	flagNoBackfill bool
)

var rootCmd = &cobra.Command{
	Use:   "marketlens",
	Short: "Daily market-intelligence tracker",
	Long: `marketlens collects daily electricity-market intelligence (trading results,
tenders, bid awards, demand forecasts) through grounded generative search,
keeps the records in a local store, and backfills whatever today is still
missing each time it starts.`,
	RunE: runDashboard,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.Flags().BoolVar(&flagNoBackfill, "no-backfill", false, "skip the session-start backfill")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(statsCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logging.New()
	defer log.Sync()

	st, err := store.Open(cfg.StorePath())
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	today := market.Today()

	if cfg.AIEnabled() && !flagNoBackfill {
		searcher, err := ai.New(cfg.AI, cfg.AIKey(), cfg.FetchTimeoutDuration())
		if err != nil {
			return fmt.Errorf("configuring search provider: %w", err)
		}
		sched := backfill.New(st, ingest.New(searcher, st, log), log)

		steps, err := sched.Plan(today)
		if err != nil {
			return fmt.Errorf("planning backfill: %w", err)
		}
		if len(steps) > 0 {
			if err := tui.RunBackfill(context.Background(), sched, today, steps); err != nil {
				return fmt.Errorf("running backfill: %w", err)
			}
		}
	} else if !cfg.AIEnabled() {
		fmt.Fprintln(os.Stderr, "No API key configured; showing cached records only. Set MARKETLENS_API_KEY to enable fetching.")
	}

	items, err := st.Query(market.QueryParams{StartDate: today, EndDate: today})
	if err != nil {
		return fmt.Errorf("querying today's records: %w", err)
	}

	fmt.Printf("Market intelligence for %s\n\n", today)
	fmt.Print(tui.RenderItems(items))

	if r := update.Check(cmd.Context(), version); r != nil {
		fmt.Printf("A newer version is available: %s\n", r.LatestVersion)
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("marketlens %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
