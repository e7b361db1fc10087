package executors

import (
	"sort"

	"github.com/yurifrl/lunchsync/pkg/config"
	"github.com/yurifrl/lunchsync/pkg/models"
)

// Status is the upload decision for a normalized transaction.
type Status int

const (
	ToUpload Status = iota
	Unmapped
)

// Entry links a transaction with the remote asset it maps to.
type Entry struct {
	Transaction models.Transaction
	AssetID     string
	Status      Status
}

// AccountGroup is every entry of one account label.
type AccountGroup struct {
	Account string
	AssetID string
	Entries []Entry
}

func (g AccountGroup) Mapped() bool { return g.AssetID != "" }

// Report is the upload plan for a batch. Building it is pure; the Executor
// renders or applies it.
type Report struct {
	Items []Entry
}

// BuildReport resolves each transaction's account label to an asset id.
// assets is keyed by config.Label.
func BuildReport(txs []models.Transaction, assets map[string]string) *Report {
	items := make([]Entry, 0, len(txs))
	for _, tx := range txs {
		id := assets[config.Label(tx.Account())]
		status := ToUpload
		if id == "" {
			status = Unmapped
		}
		items = append(items, Entry{Transaction: tx, AssetID: id, Status: status})
	}
	return &Report{Items: items}
}

func (r *Report) UploadCount() int {
	n := 0
	for _, e := range r.Items {
		if e.Status == ToUpload {
			n++
		}
	}
	return n
}

func (r *Report) UnmappedCount() int {
	return len(r.Items) - r.UploadCount()
}

// UnmappedAccounts lists account labels without an asset id, sorted.
func (r *Report) UnmappedAccounts() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range r.Items {
		if e.Status != Unmapped {
			continue
		}
		if _, ok := seen[e.Transaction.Account()]; ok {
			continue
		}
		seen[e.Transaction.Account()] = struct{}{}
		out = append(out, e.Transaction.Account())
	}
	sort.Strings(out)
	return out
}

// Uploads returns the mapped transactions in report order.
func (r *Report) Uploads() []models.Upload {
	out := make([]models.Upload, 0, len(r.Items))
	for _, e := range r.Items {
		if e.Status == ToUpload {
			out = append(out, models.Upload{Transaction: e.Transaction, AssetID: e.AssetID})
		}
	}
	return out
}

// ByAccount groups entries by account label, sorted by label.
func (r *Report) ByAccount() []AccountGroup {
	idx := make(map[string]int)
	var groups []AccountGroup
	for _, e := range r.Items {
		label := e.Transaction.Account()
		i, ok := idx[label]
		if !ok {
			i = len(groups)
			idx[label] = i
			groups = append(groups, AccountGroup{Account: label, AssetID: e.AssetID})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Account < groups[j].Account })
	return groups
}
