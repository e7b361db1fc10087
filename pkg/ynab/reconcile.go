package ynab

import (
	"fmt"

	"github.com/brunomvsouza/ynab.go/api"
	"github.com/brunomvsouza/ynab.go/api/transaction"

	"github.com/yurifrl/lunchsync/pkg/models"
)

// Status indicates the reconciliation result for a local transaction.
type Status int

const (
	Synced Status = iota
	ToAdd
)

type Entry struct {
	Local    models.Transaction
	ImportID string
	Status   Status
}

// Report compares local transactions with the ones already in a YNAB
// account.
type Report struct {
	Items []Entry
}

// Reconcile matches local transactions against remote ones by import id.
// Deleted remote transactions do not count as present.
func Reconcile(local []models.Transaction, remote []*transaction.Transaction) *Report {
	existing := make(map[string]struct{}, len(remote))
	for _, rt := range remote {
		if rt == nil || rt.Deleted || rt.ImportID == nil {
			continue
		}
		existing[*rt.ImportID] = struct{}{}
	}

	items := make([]Entry, 0, len(local))
	for _, lt := range local {
		id := ImportID(lt)
		status := ToAdd
		if _, ok := existing[id]; ok {
			status = Synced
		}
		items = append(items, Entry{Local: lt, ImportID: id, Status: status})
	}
	return &Report{Items: items}
}

func (r *Report) SyncedCount() int {
	return len(r.Items) - r.MissingCount()
}

func (r *Report) MissingCount() int {
	n := 0
	for _, e := range r.Items {
		if e.Status == ToAdd {
			n++
		}
	}
	return n
}

// Payloads converts the missing transactions into YNAB API payloads.
func (r *Report) Payloads(accountID string) ([]transaction.PayloadTransaction, error) {
	out := make([]transaction.PayloadTransaction, 0, r.MissingCount())
	for _, e := range r.Items {
		if e.Status != ToAdd {
			continue
		}
		date, err := api.DateFromString(e.Local.DateString())
		if err != nil {
			return nil, fmt.Errorf("transaction %q: %w", e.Local.Description(), err)
		}
		importID := e.ImportID
		payee := truncate(e.Local.Description(), maxPayeeLength)
		p := transaction.PayloadTransaction{
			AccountID: accountID,
			Date:      date,
			Amount:    Milliunits(e.Local),
			Cleared:   transaction.ClearingStatusCleared,
			Approved:  false,
			PayeeName: &payee,
			ImportID:  &importID,
		}
		if memo := Memo(e.Local); memo != "" {
			p.Memo = &memo
		}
		out = append(out, p)
	}
	return out, nil
}

// Milliunits converts the amount to YNAB's integer milliunits.
func Milliunits(tx models.Transaction) int64 {
	return tx.Amount().Shift(3).Round(0).IntPart()
}

// Memo carries what does not fit the payee: the full description when it
// was truncated and the original currency amount for foreign spend.
func Memo(tx models.Transaction) string {
	var memo string
	if len([]rune(tx.Description())) > maxPayeeLength {
		memo = tx.Description()
	}
	if amt, ok := tx.OriginalAmount(); ok && tx.OriginalCurrency() != models.DefaultCurrency {
		orig := tx.OriginalCurrency() + " " + amt.StringFixed(2)
		if memo == "" {
			memo = orig
		} else {
			memo += " (" + orig + ")"
		}
	}
	return truncate(memo, maxMemoLength)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
