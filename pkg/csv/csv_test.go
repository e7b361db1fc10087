package csv

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurifrl/lunchsync/pkg/models"
)

func sample(t *testing.T) []models.Transaction {
	t.Helper()
	day := func(d int) time.Time { return time.Date(2026, time.January, d, 0, 0, 0, 0, time.UTC) }

	local, err := models.NewTransaction(day(28), "COFFEE BEAN, ORCHARD", decimal.RequireFromString("-5.5")).
		Label("Shared Card").
		Build()
	require.NoError(t, err)

	foreign, err := models.NewTransaction(day(3), "AMAZON MKTPLACE", decimal.RequireFromString("-13.50")).
		Label("UOB Solitaire").
		Original("usd", decimal.RequireFromString("-10.00")).
		Category("Shopping").
		Reference("REF1").
		Build()
	require.NoError(t, err)

	return []models.Transaction{local, foreign}
}

func TestCreate(t *testing.T) {
	out, err := Create(sample(t), Options{})
	require.NoError(t, err)
	assert.Equal(t, "Date,Description,Amount,Account\n"+
		"2026-01-28,\"COFFEE BEAN, ORCHARD\",-5.50,Shared Card\n"+
		"2026-01-03,AMAZON MKTPLACE,-13.50,UOB Solitaire\n", string(out))
}

func TestCreateFull(t *testing.T) {
	out, err := Create(sample(t), Options{Full: true})
	require.NoError(t, err)
	assert.Equal(t, "Date,Description,Amount,Account,original_currency,original_amount,category,reference\n"+
		"2026-01-28,\"COFFEE BEAN, ORCHARD\",-5.50,Shared Card,SGD,,,\n"+
		"2026-01-03,AMAZON MKTPLACE,-13.50,UOB Solitaire,USD,-10.00,Shopping,REF1\n", string(out))
}

func TestRecordKeepsPrecision(t *testing.T) {
	tx, err := models.NewTransaction(time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC), "FX FEE", decimal.RequireFromString("-0.125")).
		Label("Shared Card").
		Original("eur", decimal.RequireFromString("-3")).
		Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"2026-01-05", "FX FEE", "-0.125", "Shared Card", "EUR", "-3.00", "", ""}, Record(tx, true))
}

func TestCreateTSV(t *testing.T) {
	out, err := Create(sample(t)[:1], TSV(false))
	require.NoError(t, err)
	assert.Equal(t, "Date\tDescription\tAmount\tAccount\n2026-01-28\tCOFFEE BEAN, ORCHARD\t-5.50\tShared Card\n", string(out))
}

func TestCreateEmpty(t *testing.T) {
	out, err := Create(nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Date,Description,Amount,Account\n", string(out))
}

func TestFilter(t *testing.T) {
	txs := sample(t)
	assert.Len(t, Filter(txs, nil), 2)

	kept := Filter(txs, func(tx models.Transaction) bool { return tx.Account() == "Shared Card" })
	require.Len(t, kept, 1)
	assert.Equal(t, "COFFEE BEAN, ORCHARD", kept[0].Description())
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteFile(path, sample(t), Options{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want, err := Create(sample(t), Options{})
	require.NoError(t, err)
	assert.Equal(t, string(want), string(data))

	assert.Error(t, WriteFile(filepath.Join(t.TempDir(), "missing", "out.csv"), nil, Options{}))
}
