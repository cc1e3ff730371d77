package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linqiu/marketlens/internal/config"
	"github.com/linqiu/marketlens/internal/market"
	"github.com/linqiu/marketlens/internal/store"
	"github.com/linqiu/marketlens/internal/tui"
)

var flagStatusDate string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which categories a date still misses",
	RunE: func(cmd *cobra.Command, args []string) error {
		day := flagStatusDate
		if day == "" {
			day = market.Today()
		}

		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		st, err := store.Open(cfg.StorePath())
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()

		missing, err := st.MissingCategories(day)
		if err != nil {
			return fmt.Errorf("checking coverage: %w", err)
		}

		fmt.Print(tui.RenderStatus(day, missing))
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&flagStatusDate, "date", "", "date to check, YYYY-MM-DD (default: today)")
}
