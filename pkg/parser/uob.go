package parser

import (
	"regexp"
	"strings"

	"github.com/yurifrl/lunchsync/pkg/models"
)

const bankUOB = "UOB"

var uobAccountNumberRe = regexp.MustCompile(`Account Number:,"?(\d+)`)

// UOBCredit reads UOB credit card statements. The bank only offers XLS,
// which ReadFile converts to CSV text before detection.
//
// Columns: transaction date, posting date, description, foreign currency,
// foreign amount, local currency, local amount. Amounts are positive for
// spending, so the sign is inverted.
type UOBCredit struct{}

func (UOBCredit) Bank() string           { return bankUOB }
func (UOBCredit) Name() string           { return "UOB Credit Card" }
func (UOBCredit) AccountType() string    { return CreditCard }
func (UOBCredit) Description() string    { return "UOB Lady's Solitaire / Preferred Platinum XLS export" }
func (UOBCredit) FilePatterns() []string { return []string{"*.xls", "CC_TXN_History*.xls"} }

func (UOBCredit) CanParse(content, _ string) bool {
	upper := strings.ToUpper(content)
	product := strings.Contains(upper, "LADY'S SOLITAIRE") || strings.Contains(upper, "PREFERRED PLATINUM")
	return strings.Contains(upper, "UNITED OVERSEAS BANK") && product && strings.Contains(upper, "TRANSACTION DATE")
}

func (UOBCredit) product(content string) string {
	upper := strings.ToUpper(content)
	switch {
	case strings.Contains(upper, "LADY'S SOLITAIRE"):
		return "UOB Lady's Solitaire"
	case strings.Contains(upper, "PREFERRED PLATINUM"):
		return "UOB Platinum VISA"
	default:
		return "UOB Card"
	}
}

func (p UOBCredit) DetectAccount(content string) (models.DetectedAccount, bool) {
	m := uobAccountNumberRe.FindStringSubmatch(headLines(content, 15))
	if m == nil {
		return models.DetectedAccount{}, false
	}
	return models.DetectedAccount{CardNumber: m[1], Bank: bankUOB, AccountType: CreditCard, DisplayHint: p.product(content)}, true
}

func (p UOBCredit) Parse(content string) (*Statement, error) {
	records, err := readRecords(content)
	if err != nil {
		return nil, err
	}
	start := findHeader(records, func(rec []string) bool {
		return len(rec) >= 3 && strings.Contains(rec[0], "Transaction Date") && strings.Contains(rec[1], "Posting Date")
	})
	if start < 0 {
		return nil, malformed("%s: transaction header not found", p.Name())
	}

	var id string
	if m := uobAccountNumberRe.FindStringSubmatch(headLines(content, 15)); m != nil {
		id = m[1]
	}
	ref := refFor(id, p.product(content))

	st := &Statement{}
	for i := start; i < len(records); i++ {
		rec := records[i]
		if len(rec) < 7 || isPreviousBalance(rec) {
			continue
		}
		posting := field(rec, 1)
		if strings.EqualFold(posting, "PENDING") {
			st.PendingSkipped++
			continue
		}
		if posting == "" {
			continue
		}

		raw := field(rec, len(rec)-1)
		if raw == "" {
			raw = field(rec, len(rec)-2)
		}
		local, err := ParseAmount(raw)
		if err != nil {
			st.warn(i+1, err)
			continue
		}

		date, err := ParseDate(posting)
		if err != nil {
			st.warn(i+1, err)
			continue
		}
		b := models.NewTransaction(date, CleanDescription(field(rec, 2)), local.Neg()).Account(ref)
		if ccy, amt := field(rec, 3), field(rec, 4); ccy != "" && amt != "" && !strings.EqualFold(ccy, models.DefaultCurrency) {
			if foreign, err := ParseAmount(amt); err == nil {
				b = b.Original(ccy, foreign.Neg())
			}
		}
		tx, err := b.Build()
		if err != nil {
			st.warn(i+1, err)
			continue
		}
		st.add(tx)
	}
	return st, nil
}

func isPreviousBalance(rec []string) bool {
	for _, cell := range rec {
		if strings.Contains(cell, "Previous Balance") {
			return true
		}
	}
	return false
}
