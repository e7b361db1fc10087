package parser

import (
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yurifrl/lunchsync/pkg/models"
)

// BankParser reads one export layout of one bank.
type BankParser interface {
	Bank() string
	Name() string
	Description() string
	AccountType() string
	FilePatterns() []string
	// CanParse must not panic on arbitrary input.
	CanParse(content, path string) bool
	DetectAccount(content string) (models.DetectedAccount, bool)
	Parse(content string) (*Statement, error)
}

// Statement is the result of parsing one export file.
type Statement struct {
	Transactions   []models.Transaction
	Warnings       []RowError
	PendingSkipped int
}

func (s *Statement) add(tx models.Transaction) {
	s.Transactions = append(s.Transactions, tx)
}

func (s *Statement) warn(line int, err error) {
	s.Warnings = append(s.Warnings, RowError{Line: line, Err: err})
}

// Account types reported by DetectAccount.
const (
	CreditCard = "credit_card"
	Savings    = "savings"
)

var (
	dashedCardRe = regexp.MustCompile(`\d{4}-\d{4}-\d{4}-\d{4}`)
	dmyDateRe    = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)
)

// readRecords splits CSV text into records, tolerating ragged rows and stray
// quotes the banks produce.
func readRecords(content string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, malformed("read csv: %v", err)
	}
	return records, nil
}

// headLines returns at most n lines of content.
func headLines(content string, n int) string {
	lines := strings.SplitN(content, "\n", n+1)
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// debitCredit turns a withdrawal/deposit column pair into a signed amount.
// ok is false when neither column holds a non-zero amount.
func debitCredit(debit, credit string) (decimal.Decimal, bool, error) {
	if debit != "" {
		d, err := ParseAmount(debit)
		if err != nil {
			return decimal.Zero, false, err
		}
		if !d.IsZero() {
			return d.Abs().Neg(), true, nil
		}
	}
	if credit != "" {
		c, err := ParseAmount(credit)
		if err != nil {
			return decimal.Zero, false, err
		}
		if !c.IsZero() {
			return c.Abs(), true, nil
		}
	}
	return decimal.Zero, false, nil
}

// build assembles a transaction from raw columns.
func build(rawDate, rawDesc string, amount decimal.Decimal, ref models.AccountRef) (models.Transaction, error) {
	date, err := ParseDate(rawDate)
	if err != nil {
		return models.Transaction{}, err
	}
	return buildOn(date, rawDesc, amount, ref)
}

func buildOn(date time.Time, rawDesc string, amount decimal.Decimal, ref models.AccountRef) (models.Transaction, error) {
	tx, err := models.NewTransaction(date, CleanDescription(rawDesc), amount).Account(ref).Build()
	if err != nil {
		return models.Transaction{}, fmt.Errorf("build transaction: %w", err)
	}
	return tx, nil
}
