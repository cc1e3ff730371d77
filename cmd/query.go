package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linqiu/marketlens/internal/browser"
	"github.com/linqiu/marketlens/internal/config"
	"github.com/linqiu/marketlens/internal/market"
	"github.com/linqiu/marketlens/internal/store"
	"github.com/linqiu/marketlens/internal/tui"
)

var (
	flagQueryFrom     string
	flagQueryTo       string
	flagQueryRegion   string
	flagQueryKeyword  string
	flagQueryCategory string
	flagQueryOpen     int
)

func queryParamsFromFlags() (market.QueryParams, error) {
	params := market.QueryParams{
		StartDate:     flagQueryFrom,
		EndDate:       flagQueryTo,
		Region:        flagQueryRegion,
		EntityKeyword: flagQueryKeyword,
	}
	if flagQueryCategory != "" {
		cat := market.Category(flagQueryCategory)
		if !cat.Valid() {
			return params, fmt.Errorf("unknown category %q (valid: trading, tender, bid-award, demand)", flagQueryCategory)
		}
		params.Category = cat
	}
	return params, nil
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search stored records",
	Long:  "Filter stored records by date range, region, entity keyword, and category. Results are newest first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := queryParamsFromFlags()
		if err != nil {
			return err
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

		items, err := st.Query(params)
		if err != nil {
			return fmt.Errorf("querying: %w", err)
		}

		if flagQueryOpen > 0 {
			if flagQueryOpen > len(items) {
				return fmt.Errorf("--open %d out of range: query matched %d record(s)", flagQueryOpen, len(items))
			}
			link := items[flagQueryOpen-1].SourceLink()
			if link == "" {
				return fmt.Errorf("record %d has no source link", flagQueryOpen)
			}
			return browser.OpenSource(link)
		}

		fmt.Print(tui.RenderItems(items))
		return nil
	},
}

func init() {
	addQueryFlags(queryCmd)
	queryCmd.Flags().IntVar(&flagQueryOpen, "open", 0, "open the Nth result's source link in the browser")
}

func addQueryFlags(c *cobra.Command) {
	c.Flags().StringVar(&flagQueryFrom, "from", "", "inclusive start date, YYYY-MM-DD")
	c.Flags().StringVar(&flagQueryTo, "to", "", "inclusive end date, YYYY-MM-DD")
	c.Flags().StringVar(&flagQueryRegion, "region", "", "region substring filter")
	c.Flags().StringVar(&flagQueryKeyword, "keyword", "", "case-insensitive entity/title keyword filter")
	c.Flags().StringVar(&flagQueryCategory, "category", "", "category filter (trading, tender, bid-award, demand)")
}
