// Package export writes normalized records as CSV for spreadsheet use.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/linqiu/marketlens/internal/market"
)

// utf8BOM makes Excel detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var header = []string{"date", "category", "region", "title", "entity", "amount", "source-link"}

// WriteCSV writes items in fixed column order with a UTF-8 byte-order
// mark. Fields arrive already normalized (single-line, printable), so only
// CSV quoting is applied here.
func WriteCSV(w io.Writer, items []market.Item) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, it := range items {
		row := []string{it.Date, string(it.Category), it.Region, it.Title, it.Entity, it.Amount, it.SourceLink()}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row for item %d: %w", it.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes items to path, creating or truncating it.
func WriteFile(path string, items []market.Item) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteCSV(f, items); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
