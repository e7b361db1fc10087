package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DateLayout is the calendar date format used for output and keys.
	DateLayout = "2006-01-02"

	DefaultCurrency    = "SGD"
	NoDescriptionLabel = "(No description)"
)

// AccountRef is what a bank parser knows about the account a row belongs to.
// ID is the raw identifier found in the export (card or account number).
// Fallback is a product label used when ID is empty or unmapped.
type AccountRef struct {
	ID       string
	Fallback string
}

// Transaction is a normalized bank transaction. Values are immutable: every
// With method returns a modified copy.
type Transaction struct {
	date             time.Time
	description      string
	amount           decimal.Decimal
	account          string
	originalCurrency string
	originalAmount   *decimal.Decimal
	category         string
	reference        string
	ref              AccountRef
}

// Key identifies a transaction for deduplication.
type Key struct {
	Date        string
	Description string
	Amount      string
	Account     string
}

type TransactionBuilder struct {
	tx Transaction
}

func NewTransaction(date time.Time, description string, amount decimal.Decimal) *TransactionBuilder {
	return &TransactionBuilder{tx: Transaction{
		date:             date,
		description:      description,
		amount:           amount,
		originalCurrency: DefaultCurrency,
	}}
}

func (b *TransactionBuilder) Account(ref AccountRef) *TransactionBuilder {
	b.tx.ref = ref
	return b
}

// Label sets an already resolved account label.
func (b *TransactionBuilder) Label(account string) *TransactionBuilder {
	b.tx.account = account
	return b
}

func (b *TransactionBuilder) Original(currency string, amount decimal.Decimal) *TransactionBuilder {
	if currency != "" {
		b.tx.originalCurrency = strings.ToUpper(currency)
	}
	b.tx.originalAmount = &amount
	return b
}

func (b *TransactionBuilder) Category(category string) *TransactionBuilder {
	b.tx.category = strings.TrimSpace(category)
	return b
}

func (b *TransactionBuilder) Reference(reference string) *TransactionBuilder {
	b.tx.reference = strings.TrimSpace(reference)
	return b
}

func (b *TransactionBuilder) Build() (Transaction, error) {
	if b.tx.date.IsZero() {
		return Transaction{}, errors.New("transaction date is required")
	}
	y, m, d := b.tx.date.Date()
	b.tx.date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if strings.TrimSpace(b.tx.description) == "" {
		b.tx.description = NoDescriptionLabel
	}
	return b.tx, nil
}

func (t Transaction) Date() time.Time { return t.date }

// DateString returns the date as YYYY-MM-DD.
func (t Transaction) DateString() string { return t.date.Format(DateLayout) }

func (t Transaction) Description() string      { return t.description }
func (t Transaction) Amount() decimal.Decimal  { return t.amount }
func (t Transaction) Account() string          { return t.account }
func (t Transaction) OriginalCurrency() string { return t.originalCurrency }
func (t Transaction) Category() string         { return t.category }
func (t Transaction) Reference() string        { return t.reference }
func (t Transaction) Ref() AccountRef          { return t.ref }

// OriginalAmount returns the amount in the original currency when the
// export carried one.
func (t Transaction) OriginalAmount() (decimal.Decimal, bool) {
	if t.originalAmount == nil {
		return decimal.Zero, false
	}
	return *t.originalAmount, true
}

// WithAccount returns a copy labelled with the given account.
func (t Transaction) WithAccount(account string) Transaction {
	t.account = account
	return t
}

func (t Transaction) WithCategory(category string) Transaction {
	t.category = category
	return t
}

// IsExpense reports whether the amount is negative.
func (t Transaction) IsExpense() bool { return t.amount.IsNegative() }

// Key returns the dedup key. Amounts are compared by value so 300.00 and
// 300 produce the same key.
func (t Transaction) Key() Key {
	return Key{
		Date:        t.DateString(),
		Description: t.description,
		Amount:      t.amount.String(),
		Account:     t.account,
	}
}

func (t Transaction) Equal(other Transaction) bool {
	return t.Key() == other.Key()
}
