package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"1,234.56", "1234.56"},
		{"(50.00)", "-50"},
		{"-50.00", "-50"},
		{"50.00 CR", "50"},
		{"50.00CR", "50"},
		{"50.00 DR", "-50"},
		{"50.00-", "-50"},
		{`"1,250.00"`, "1250"},
		{"S$12.30", "12.3"},
		{"SGD 99.99", "99.99"},
		{"-S$7.10", "-7.1"},
		{"+3.00", "3"},
		{"0.1", "0.1"},
		{"  12 ", "12"},
		{"1 000.05", "1000.05"},
		{"USD 12.00", "12"},
		{"12.00 USD", "12"},
		{"-US$4.50", "-4.5"},
		{"€8.20", "8.2"},
		{"MYR 30.00 DR", "-30"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseAmount(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseAmountIsExact(t *testing.T) {
	a, err := ParseAmount("0.10")
	require.NoError(t, err)
	b, err := ParseAmount("0.20")
	require.NoError(t, err)
	assert.Equal(t, "0.30", a.Add(b).StringFixed(2))
	assert.True(t, a.Add(b).Equal(mustAmount(t, "0.3")))
}

func TestParseAmountErrors(t *testing.T) {
	for _, raw := range []string{"", "abc", "12.3.4", "--", "CR", "1,2a"} {
		_, err := ParseAmount(raw)
		assert.ErrorIs(t, err, ErrUnparseableAmount, raw)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{
		"05/01/2026",
		"5/1/2026",
		"05 Jan 2026",
		"5 JAN 2026",
		"05-01-2026",
		"2026-01-05",
		"05 January 2026",
		"05-Jan-2026",
		"05 Jan 26",
		`"05/01/2026"`,
	} {
		got, err := ParseDate(raw)
		if assert.NoError(t, err, raw) {
			assert.Equal(t, want, got, raw)
		}
	}
}

func TestParseDateErrors(t *testing.T) {
	for _, raw := range []string{"", "PENDING", "31/02/2026", "2026/13/01", "yesterday"} {
		_, err := ParseDate(raw)
		assert.ErrorIs(t, err, ErrUnparseableDate, raw)
	}
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"GROCERY STORE SG", "GROCERY STORE"},
		{"FAST PAYMENT\nSwimming lessons", "FAST PAYMENT Swimming lessons"},
		{"COFFEE BEAN   XXXX-XXXX-XXXX-3456", "COFFEE BEAN"},
		{"PYMT @ AXS •••• •••• •••• 3363", "PYMT @ AXS"},
		{"AMAZON MKTPLACE Ref No: 123456 US", "AMAZON MKTPLACE"},
		{"SHOP US SG", "SHOP"},
		{"SG", "SG"},
		{"  ", ""},
		{"SINGAPORE AIRLINES", "SINGAPORE AIRLINES"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := CleanDescription(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, CleanDescription(got), "must be idempotent")
		})
	}
}
