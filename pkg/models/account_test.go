package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountMappingMatches(t *testing.T) {
	m := AccountMapping{Identifier: "1234-5678-9012-3456", Name: "OCBC Rewards"}

	assert.True(t, m.Matches("1234567890123456"))
	assert.True(t, m.Matches("1234 5678 9012 3456"))
	assert.True(t, m.Matches("3456"))
	assert.False(t, m.Matches("9999"))
	assert.False(t, m.Matches("456"))
	assert.False(t, m.Matches(""))
}

func TestResolve(t *testing.T) {
	ms := AccountMappings{
		{Identifier: "3456", Name: "Shared Card"},
		{Identifier: "687-123456-001", Name: "OCBC 360"},
	}

	tests := []struct {
		name string
		ref  AccountRef
		want string
	}{
		{"last four", AccountRef{ID: "1111-2222-3333-3456"}, "Shared Card"},
		{"exact", AccountRef{ID: "687123456001"}, "OCBC 360"},
		{"unmapped", AccountRef{ID: "9999-8888-7777-1234"}, "Unknown (1234)"},
		{"fallback", AccountRef{Fallback: "HSBC Revolution"}, "HSBC Revolution"},
		{"unmapped with fallback", AccountRef{ID: "3363", Fallback: "HSBC Revolution"}, "Unknown (3363)"},
		{"mapped with fallback", AccountRef{ID: "3456", Fallback: "HSBC Revolution"}, "Shared Card"},
		{"short id", AccountRef{ID: "12"}, "Unknown (12)"},
		{"empty", AccountRef{}, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ms.Resolve(tt.ref))
		})
	}
}

func TestMaskCardNumber(t *testing.T) {
	assert.Equal(t, "****3456", MaskCardNumber("1234-5678-9012-3456"))
	assert.Equal(t, "****7890", MaskCardNumber("123-4-567890"))
	assert.Equal(t, "123", MaskCardNumber("123"))
}

func TestTransactionBuild(t *testing.T) {
	date := time.Date(2026, 1, 30, 15, 4, 5, 0, time.Local)
	tx, err := NewTransaction(date, "  ", decimal.RequireFromString("-300.00")).Build()
	require.NoError(t, err)

	assert.Equal(t, "2026-01-30", tx.DateString())
	assert.Equal(t, NoDescriptionLabel, tx.Description())
	assert.Equal(t, DefaultCurrency, tx.OriginalCurrency())
	assert.True(t, tx.IsExpense())
	_, ok := tx.OriginalAmount()
	assert.False(t, ok)

	_, err = NewTransaction(time.Time{}, "X", decimal.Zero).Build()
	assert.Error(t, err)
}

func TestTransactionKeyComparesAmountByValue(t *testing.T) {
	date := time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC)
	a, err := NewTransaction(date, "GROCERY", decimal.RequireFromString("-300.00")).Label("Card").Build()
	require.NoError(t, err)
	b, err := NewTransaction(date, "GROCERY", decimal.RequireFromString("-300")).Label("Card").Build()
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(b.WithAccount("Other")))
	assert.Equal(t, "Card", a.Account(), "WithAccount must not mutate the receiver")
}
