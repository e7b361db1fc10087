package parser

import (
	"encoding/csv"
	"regexp"
	"strings"

	"github.com/yurifrl/lunchsync/pkg/models"
)

const bankCiti = "Citi"

var citiCardRe = regexp.MustCompile(`'(\d{16})'`)

// Citi reads the headerless Citibank card export. Each row carries the card
// number quoted with apostrophes in its fifth column:
//
//	"15/01/2026","SHOPEE SINGAPORE SG","-45.90","","'5424180012345678'"
type Citi struct{}

func (Citi) Bank() string           { return bankCiti }
func (Citi) Name() string           { return "Citibank Credit Card" }
func (Citi) AccountType() string    { return CreditCard }
func (Citi) Description() string    { return "Citibank headerless CSV export (Rewards, Prestige)" }
func (Citi) FilePatterns() []string { return []string{"ACCT_*.csv"} }

func (Citi) CanParse(content, _ string) bool {
	first, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(content, bom))).Read()
	if err != nil || len(first) != 5 {
		return false
	}
	return dmyDateRe.MatchString(strings.TrimSpace(first[0])) && citiCardRe.MatchString(first[4])
}

func (Citi) DetectAccount(content string) (models.DetectedAccount, bool) {
	m := citiCardRe.FindStringSubmatch(content)
	if m == nil {
		return models.DetectedAccount{}, false
	}
	return models.DetectedAccount{CardNumber: m[1], Bank: bankCiti, AccountType: CreditCard, DisplayHint: "Citi Credit Card"}, true
}

func (p Citi) Parse(content string) (*Statement, error) {
	records, err := readRecords(strings.TrimPrefix(content, bom))
	if err != nil {
		return nil, err
	}

	st := &Statement{}
	for i, rec := range records {
		if len(rec) < 5 {
			continue
		}
		amount, err := ParseAmount(field(rec, 2))
		if err != nil {
			st.warn(i+1, err)
			continue
		}
		ref := models.AccountRef{Fallback: "Citi Card"}
		if m := citiCardRe.FindStringSubmatch(rec[4]); m != nil {
			ref = models.AccountRef{ID: m[1]}
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
