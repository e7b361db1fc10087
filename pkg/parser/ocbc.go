package parser

import (
	"regexp"
	"strings"

	"github.com/yurifrl/lunchsync/pkg/models"
)

const bankOCBC = "OCBC"

// OCBCCredit reads the "Transaction History" CSV of OCBC credit cards.
type OCBCCredit struct{}

func (OCBCCredit) Bank() string        { return bankOCBC }
func (OCBCCredit) Name() string        { return "OCBC Credit Card" }
func (OCBCCredit) AccountType() string { return CreditCard }
func (OCBCCredit) Description() string {
	return "OCBC credit card CSV export (Rewards, 365, Frank)"
}
func (OCBCCredit) FilePatterns() []string { return []string{"TrxHistory*.csv", "*OCBC*.csv"} }

func (OCBCCredit) CanParse(content, _ string) bool {
	card := strings.Contains(content, "OCBC Rewards Card") || strings.Contains(content, "OCBC Credit Card")
	return card && strings.Contains(content, "Transaction date,Description,Withdrawals")
}

func (p OCBCCredit) DetectAccount(content string) (models.DetectedAccount, bool) {
	card := dashedCardRe.FindString(headLines(content, 10))
	if card == "" {
		return models.DetectedAccount{}, false
	}
	hint := "OCBC Credit Card"
	if strings.Contains(content, "OCBC Rewards Card") {
		hint = "OCBC Rewards Card"
	}
	return models.DetectedAccount{CardNumber: card, Bank: bankOCBC, AccountType: CreditCard, DisplayHint: hint}, true
}

func (p OCBCCredit) Parse(content string) (*Statement, error) {
	records, err := readRecords(content)
	if err != nil {
		return nil, err
	}
	start := findHeader(records, func(rec []string) bool {
		return strings.EqualFold(field(rec, 0), "Transaction date") && strings.EqualFold(field(rec, 1), "Description")
	})
	if start < 0 {
		return nil, malformed("%s: transaction header not found", p.Name())
	}

	ref := refFor(dashedCardRe.FindString(headLines(content, 10)), p.Name())
	st := &Statement{}
	for i := start; i < len(records); i++ {
		rec := records[i]
		if len(rec) < 3 || field(rec, 0) == "" {
			continue
		}
		amount, ok, err := debitCredit(field(rec, 2), field(rec, 3))
		if err != nil {
			st.warn(i+1, err)
			continue
		}
		if !ok {
			continue
		}
		tx, err := build(field(rec, 0), field(rec, 1), amount, ref)
		if err != nil {
			st.warn(i+1, err)
			continue
		}
		st.add(tx)
	}
	return st, nil
}

var ocbc360AccountRe = regexp.MustCompile(`\d{3}-\d{6}-\d{3}`)

// OCBC360 reads the OCBC 360 savings account export. Descriptions span
// several lines inside quotes.
type OCBC360 struct{}

func (OCBC360) Bank() string           { return bankOCBC }
func (OCBC360) Name() string           { return "OCBC 360 Account" }
func (OCBC360) AccountType() string    { return Savings }
func (OCBC360) Description() string    { return "OCBC 360 savings account CSV export" }
func (OCBC360) FilePatterns() []string { return []string{"TrxHistory*.csv", "*360*.csv"} }

func (OCBC360) CanParse(content, _ string) bool {
	return strings.Contains(content, "360 Account") &&
		strings.Contains(content, "Transaction date,Value date,Description")
}

func (OCBC360) DetectAccount(content string) (models.DetectedAccount, bool) {
	account := ocbc360AccountRe.FindString(headLines(content, 10))
	if account == "" {
		return models.DetectedAccount{}, false
	}
	return models.DetectedAccount{CardNumber: account, Bank: bankOCBC, AccountType: Savings, DisplayHint: "OCBC 360 Account"}, true
}

func (p OCBC360) Parse(content string) (*Statement, error) {
	records, err := readRecords(content)
	if err != nil {
		return nil, err
	}
	start := findHeader(records, func(rec []string) bool {
		return strings.EqualFold(field(rec, 0), "Transaction date") && strings.EqualFold(field(rec, 1), "Value date")
	})
	if start < 0 {
		return nil, malformed("%s: transaction header not found", p.Name())
	}

	ref := refFor(ocbc360AccountRe.FindString(headLines(content, 10)), p.Name())
	st := &Statement{}
	for i := start; i < len(records); i++ {
		rec := records[i]
		if len(rec) < 4 || field(rec, 0) == "" {
			continue
		}
		amount, ok, err := debitCredit(field(rec, 3), field(rec, 4))
		if err != nil {
			st.warn(i+1, err)
			continue
		}
		if !ok {
			continue
		}
		tx, err := build(field(rec, 0), field(rec, 2), amount, ref)
		if err != nil {
			st.warn(i+1, err)
			continue
		}
		st.add(tx)
	}
	return st, nil
}

// findHeader returns the index of the first record after the header row, or
// -1 when no record satisfies isHeader.
func findHeader(records [][]string, isHeader func([]string) bool) int {
	for i, rec := range records {
		if isHeader(rec) {
			return i + 1
		}
	}
	return -1
}

// refFor only uses the product name when no identifier was found.
func refFor(id, product string) models.AccountRef {
	if id == "" {
		return models.AccountRef{Fallback: product}
	}
	return models.AccountRef{ID: id}
}
