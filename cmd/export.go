package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linqiu/marketlens/internal/config"
	"github.com/linqiu/marketlens/internal/export"
	"github.com/linqiu/marketlens/internal/store"
)

var flagExportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export records to CSV",
	Long:  "Write records matching the given filters to a UTF-8 CSV file (with BOM, for spreadsheet import).",
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

		if err := export.WriteFile(flagExportOut, items); err != nil {
			return fmt.Errorf("exporting: %w", err)
		}
		fmt.Printf("Exported %d record(s) to %s.\n", len(items), flagExportOut)
		return nil
	},
}

func init() {
	addQueryFlags(exportCmd)
	exportCmd.Flags().StringVar(&flagExportOut, "out", "marketlens.csv", "output file path")
}
