package parser

import (
	"encoding/csv"
	"regexp"
	"strings"

	"github.com/yurifrl/lunchsync/pkg/models"
)

const bankHSBC = "HSBC"

var hsbcMaskedCardRe = regexp.MustCompile(`•••• •••• •••• (\d{4})`)

// HSBCRevolution reads the headerless HSBC card export:
// date, description, ..., signed amount.
type HSBCRevolution struct{}

func (HSBCRevolution) Bank() string        { return bankHSBC }
func (HSBCRevolution) Name() string        { return "HSBC Revolution" }
func (HSBCRevolution) AccountType() string { return CreditCard }
func (HSBCRevolution) Description() string { return "HSBC Revolution headerless CSV export" }

func (HSBCRevolution) FilePatterns() []string {
	return []string{"*HSBC*.csv", "TransactionHistory*.csv"}
}

func (HSBCRevolution) CanParse(content, _ string) bool {
	if hsbcMaskedCardRe.MatchString(content) {
		return true
	}
	if !strings.Contains(strings.ToUpper(content), "PYMT @ AXS") {
		return false
	}
	first, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(content, bom))).Read()
	if err != nil || len(first) < 3 {
		return false
	}
	if !dmyDateRe.MatchString(strings.TrimSpace(first[0])) {
		return false
	}
	_, err = ParseAmount(first[len(first)-1])
	return err == nil
}

func (p HSBCRevolution) DetectAccount(content string) (models.DetectedAccount, bool) {
	m := hsbcMaskedCardRe.FindStringSubmatch(content)
	if m == nil {
		return models.DetectedAccount{}, false
	}
	return models.DetectedAccount{CardNumber: m[1], Bank: bankHSBC, AccountType: CreditCard, DisplayHint: p.Name()}, true
}

func (p HSBCRevolution) Parse(content string) (*Statement, error) {
	records, err := readRecords(strings.TrimPrefix(content, bom))
	if err != nil {
		return nil, err
	}

	var id string
	if m := hsbcMaskedCardRe.FindStringSubmatch(content); m != nil {
		id = m[1]
	}
	ref := refFor(id, p.Name())

	st := &Statement{}
	for i, rec := range records {
		if len(rec) < 3 {
			continue
		}
		date, err := ParseDate(field(rec, 0))
		if err != nil {
			st.warn(i+1, err)
			continue
		}
		amount, err := ParseAmount(field(rec, len(rec)-1))
		if err != nil {
			st.warn(i+1, err)
			continue
		}
		tx, err := buildOn(date, field(rec, 1), amount, ref)
		if err != nil {
			st.warn(i+1, err)
			continue
		}
		st.add(tx)
	}
	if len(st.Transactions) == 0 && len(st.Warnings) > 0 {
		return nil, malformed("%s: no parseable rows", p.Name())
	}
	return st, nil
}
