package parser

import (
	"encoding/csv"
	"strings"

	"github.com/shopspring/decimal"

	lunchcsv "github.com/yurifrl/lunchsync/pkg/csv"
	"github.com/yurifrl/lunchsync/pkg/models"
)

// Normalized reads a file this tool wrote, so a previous output can be
// merged with new exports or uploaded again. The Account column is kept
// as the account label.
type Normalized struct{}

func (Normalized) Bank() string           { return "lunchsync" }
func (Normalized) Name() string           { return "Normalized CSV" }
func (Normalized) AccountType() string    { return "" }
func (Normalized) Description() string    { return "CSV or TSV previously written by lunchsync" }
func (Normalized) FilePatterns() []string { return []string{"transactions*.csv", "transactions*.tsv"} }

func (Normalized) CanParse(content, _ string) bool {
	header, _, _ := strings.Cut(strings.TrimPrefix(content, bom), "\n")
	header = strings.TrimSpace(header)
	for _, sep := range []string{",", "\t"} {
		if strings.HasPrefix(header, strings.Join(lunchcsv.Header, sep)) {
			return true
		}
	}
	return false
}

func (Normalized) DetectAccount(string) (models.DetectedAccount, bool) {
	return models.DetectedAccount{}, false
}

// Columns: Date, Description, Amount, Account, then optionally
// original_currency, original_amount, category, reference.
func (Normalized) Parse(content string) (*Statement, error) {
	content = strings.TrimPrefix(content, bom)
	r := csv.NewReader(strings.NewReader(content))
	if header, _, _ := strings.Cut(content, "\n"); strings.Contains(header, "\t") {
		r.Comma = '\t'
	}
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, malformed("read csv: %v", err)
	}
	if len(records) == 0 {
		return nil, malformed("empty file")
	}

	st := &Statement{}
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) < len(lunchcsv.Header) {
			st.warn(line, malformed("want %d columns, got %d", len(lunchcsv.Header), len(rec)))
			continue
		}
		date, err := ParseDate(field(rec, 0))
		if err != nil {
			st.warn(line, err)
			continue
		}
		amount, err := ParseAmount(field(rec, 2))
		if err != nil {
			st.warn(line, err)
			continue
		}

		b := models.NewTransaction(date, CleanDescription(field(rec, 1)), amount).
			Account(models.AccountRef{Fallback: field(rec, 3)}).
			Category(field(rec, 6)).
			Reference(field(rec, 7))
		if ccy, raw := field(rec, 4), field(rec, 5); raw != "" {
			orig, err := decimal.NewFromString(raw)
			if err != nil {
				st.warn(line, err)
				continue
			}
			b.Original(ccy, orig)
		}

		tx, err := b.Build()
		if err != nil {
			st.warn(line, err)
			continue
		}
		st.add(tx)
	}
	return st, nil
}
