package parser

import (
	"regexp"
	"strings"

	"github.com/yurifrl/lunchsync/pkg/models"
)

const bankDBS = "DBS"

var dbsSavingsAccountRe = regexp.MustCompile(`DBS Savings Account\s+(\d{3}-\d-\d{6})`)

// DBSSavings reads DBS/POSB savings account exports.
type DBSSavings struct{}

func (DBSSavings) Bank() string           { return bankDBS }
func (DBSSavings) Name() string           { return "DBS Savings Account" }
func (DBSSavings) AccountType() string    { return Savings }
func (DBSSavings) Description() string    { return "DBS savings account CSV export" }
func (DBSSavings) FilePatterns() []string { return []string{"*DBS*.csv", "*POSB*.csv"} }

func (DBSSavings) CanParse(content, _ string) bool {
	return strings.Contains(content, "DBS Savings Account") && strings.Contains(content, "Transaction Code")
}

func (DBSSavings) DetectAccount(content string) (models.DetectedAccount, bool) {
	m := dbsSavingsAccountRe.FindStringSubmatch(headLines(content, 10))
	if m == nil {
		return models.DetectedAccount{}, false
	}
	return models.DetectedAccount{CardNumber: m[1], Bank: bankDBS, AccountType: Savings, DisplayHint: "DBS Savings"}, true
}

// Columns: date, code, description, ref1, ref2, ref3, status, debit, credit.
func (p DBSSavings) Parse(content string) (*Statement, error) {
	records, err := readRecords(content)
	if err != nil {
		return nil, err
	}
	start := findHeader(records, func(rec []string) bool {
		return hasColumn(rec, "Transaction Date") && hasColumn(rec, "Transaction Code")
	})
	if start < 0 {
		return nil, malformed("%s: transaction header not found", p.Name())
	}

	var id string
	if m := dbsSavingsAccountRe.FindStringSubmatch(headLines(content, 10)); m != nil {
		id = m[1]
	}
	ref := refFor(id, "DBS Savings")

	st := &Statement{}
	for i := start; i < len(records); i++ {
		rec := records[i]
		if len(rec) < 8 || field(rec, 0) == "" {
			continue
		}
		amount, ok, err := debitCredit(field(rec, 7), field(rec, 8))
		if err != nil {
			st.warn(i+1, err)
			continue
		}
		if !ok {
			continue
		}
		date, err := ParseDate(field(rec, 0))
		if err != nil {
			st.warn(i+1, err)
			continue
		}
		tx, err := models.NewTransaction(date, CleanDescription(field(rec, 2)), amount).
			Account(ref).
			Reference(field(rec, 3)).
			Build()
		if err != nil {
			st.warn(i+1, err)
			continue
		}
		st.add(tx)
	}
	return st, nil
}

// DBSCredit reads DBS credit card exports ("Card Transaction Details").
type DBSCredit struct{}

func (DBSCredit) Bank() string        { return bankDBS }
func (DBSCredit) Name() string        { return "DBS Credit Card" }
func (DBSCredit) AccountType() string { return CreditCard }
func (DBSCredit) Description() string {
	return "DBS credit card CSV export; pending rows are skipped"
}
func (DBSCredit) FilePatterns() []string { return []string{"*DBS*.csv", "CardTransactionDetails*.csv"} }

func (DBSCredit) CanParse(content, _ string) bool {
	card := strings.Contains(content, "DBS MasterCard") || strings.Contains(content, "Card Transaction Details")
	return card && strings.Contains(content, "Transaction Posting Date")
}

func (DBSCredit) DetectAccount(content string) (models.DetectedAccount, bool) {
	card := dashedCardRe.FindString(headLines(content, 10))
	if card == "" {
		return models.DetectedAccount{}, false
	}
	return models.DetectedAccount{CardNumber: card, Bank: bankDBS, AccountType: CreditCard, DisplayHint: "DBS Credit Card"}, true
}

// Columns: date, posting date, description, type, payment type, status,
// debit, credit.
func (p DBSCredit) Parse(content string) (*Statement, error) {
	records, err := readRecords(content)
	if err != nil {
		return nil, err
	}
	start := findHeader(records, func(rec []string) bool {
		return hasColumn(rec, "Transaction Date") && hasColumn(rec, "Transaction Posting Date")
	})
	if start < 0 {
		return nil, malformed("%s: transaction header not found", p.Name())
	}

	ref := refFor(dashedCardRe.FindString(headLines(content, 10)), "DBS Card")
	st := &Statement{}
	for i := start; i < len(records); i++ {
		rec := records[i]
		if len(rec) < 7 || field(rec, 0) == "" {
			continue
		}
		if strings.EqualFold(field(rec, 5), "pending") {
			st.PendingSkipped++
			continue
		}
		amount, ok, err := debitCredit(field(rec, 6), field(rec, 7))
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

func hasColumn(rec []string, name string) bool {
	for _, col := range rec {
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return true
		}
	}
	return false
}
