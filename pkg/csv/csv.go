package csv

import (
	"bytes"
	stdcsv "encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"

	"github.com/yurifrl/lunchsync/pkg/models"
)

var (
	Header     = []string{"Date", "Description", "Amount", "Account"}
	FullHeader = append(append([]string(nil), Header...), "original_currency", "original_amount", "category", "reference")
)

type Options struct {
	// Full adds currency, category and reference columns.
	Full bool
	// Delimiter defaults to a comma.
	Delimiter rune
}

// TSV returns options for tab separated output.
func TSV(full bool) Options {
	return Options{Full: full, Delimiter: '\t'}
}

type FilterFunc func(models.Transaction) bool

// Filter returns the transactions accepted by keep.
func Filter(txs []models.Transaction, keep FilterFunc) []models.Transaction {
	if keep == nil {
		return txs
	}
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	return out
}

func Write(w io.Writer, txs []models.Transaction, opts Options) error {
	cw := stdcsv.NewWriter(w)
	if opts.Delimiter != 0 {
		cw.Comma = opts.Delimiter
	}
	header := Header
	if opts.Full {
		header = FullHeader
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, tx := range txs {
		if err := cw.Write(Record(tx, opts.Full)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Record renders one output row.
func Record(tx models.Transaction, full bool) []string {
	row := []string{
		tx.DateString(),
		tx.Description(),
		formatAmount(tx.Amount()),
		tx.Account(),
	}
	if !full {
		return row
	}
	original := ""
	if amt, ok := tx.OriginalAmount(); ok {
		original = formatAmount(amt)
	}
	return append(row, tx.OriginalCurrency(), original, tx.Category(), tx.Reference())
}

// formatAmount pads to two decimals and keeps any extra precision.
func formatAmount(d decimal.Decimal) string {
	if d.Exponent() < -2 {
		return d.String()
	}
	return d.StringFixed(2)
}

func Create(txs []models.Transaction, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, txs, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func WriteFile(path string, txs []models.Transaction, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	if err := Write(f, txs, opts); err != nil {
		f.Close()
		return fmt.Errorf("error writing output file: %w", err)
	}
	return f.Close()
}
