package ynab

import (
	"testing"
	"time"

	"github.com/brunomvsouza/ynab.go/api/transaction"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurifrl/lunchsync/pkg/models"
)

func newTx(t *testing.T, desc, amount, account string) models.Transaction {
	t.Helper()
	tx, err := models.NewTransaction(time.Date(2026, time.January, 30, 0, 0, 0, 0, time.UTC), desc, decimal.RequireFromString(amount)).
		Label(account).
		Build()
	require.NoError(t, err)
	return tx
}

func TestImportID(t *testing.T) {
	a := newTx(t, "GROCERY STORE", "-300.00", "Shared Card")
	b := newTx(t, "GROCERY STORE", "-300", "Shared Card")
	c := newTx(t, "GROCERY STORE", "-300.00", "DBS Card")

	assert.Equal(t, ImportID(a), ImportID(b))
	assert.NotEqual(t, ImportID(a), ImportID(c))
	assert.Len(t, ImportID(a), 36)
}

func TestReconcile(t *testing.T) {
	synced := newTx(t, "GROCERY STORE", "-300.00", "Shared Card")
	missing := newTx(t, "COFFEE BEAN", "-5.50", "Shared Card")
	deleted := newTx(t, "REFUND", "1250.00", "Shared Card")

	syncedID, deletedID := ImportID(synced), ImportID(deleted)
	remote := []*transaction.Transaction{
		{ImportID: &syncedID},
		{ImportID: &deletedID, Deleted: true},
		{},
		nil,
	}

	report := Reconcile([]models.Transaction{synced, missing, deleted}, remote)
	require.Len(t, report.Items, 3)
	assert.Equal(t, Synced, report.Items[0].Status)
	assert.Equal(t, ToAdd, report.Items[1].Status)
	assert.Equal(t, ToAdd, report.Items[2].Status)
	assert.Equal(t, 1, report.SyncedCount())
	assert.Equal(t, 2, report.MissingCount())
}

func TestPayloads(t *testing.T) {
	tx := newTx(t, "COFFEE BEAN", "-5.50", "Shared Card")
	report := Reconcile([]models.Transaction{tx}, nil)

	payloads, err := report.Payloads("acc-1")
	require.NoError(t, err)
	require.Len(t, payloads, 1)

	p := payloads[0]
	assert.Equal(t, "acc-1", p.AccountID)
	assert.Equal(t, int64(-5500), p.Amount)
	assert.Equal(t, "2026-01-30", p.Date.Format("2006-01-02"))
	require.NotNil(t, p.PayeeName)
	assert.Equal(t, "COFFEE BEAN", *p.PayeeName)
	require.NotNil(t, p.ImportID)
	assert.Equal(t, ImportID(tx), *p.ImportID)
	assert.Nil(t, p.Memo)
}

func TestMilliunits(t *testing.T) {
	assert.Equal(t, int64(1250000), Milliunits(newTx(t, "x", "1250.00", "a")))
	assert.Equal(t, int64(-13505), Milliunits(newTx(t, "x", "-13.505", "a")))
}

func TestMemo(t *testing.T) {
	long := "PAYMENT TO A MERCHANT WITH A VERY LONG NAME THAT DOES NOT FIT"
	assert.Equal(t, long, Memo(newTx(t, long, "-1", "a")))

	foreign, err := models.NewTransaction(time.Date(2026, time.January, 3, 0, 0, 0, 0, time.UTC), "AMAZON MKTPLACE", decimal.RequireFromString("-13.50")).
		Original("usd", decimal.RequireFromString("-10")).
		Build()
	require.NoError(t, err)
	assert.Equal(t, "USD -10.00", Memo(foreign))

	assert.Empty(t, Memo(newTx(t, "KOPITIAM", "-4.50", "a")))
}
