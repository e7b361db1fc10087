package ynab

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/brunomvsouza/ynab.go"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/yurifrl/lunchsync/pkg/models"
)

const (
	maxPayeeLength = 50
	maxMemoLength  = 200
)

// importNamespace scopes import ids generated by this tool.
var importNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/yurifrl/lunchsync"))

// Client uploads normalized transactions to one YNAB budget. Asset ids on
// uploads are YNAB account ids.
type Client struct {
	client   ynab.ClientServicer
	budgetID string
	logger   *log.Logger
}

func New(token, budgetID string, logger *log.Logger) *Client {
	return &Client{
		client:   ynab.NewClient(token),
		budgetID: budgetID,
		logger:   logger,
	}
}

func (c *Client) Name() string { return "YNAB" }

// ImportID is a stable id for a transaction, so re-running an import never
// creates the same transaction twice.
func ImportID(tx models.Transaction) string {
	k := tx.Key()
	return uuid.NewSHA1(importNamespace, []byte(strings.Join([]string{k.Date, k.Amount, k.Description, k.Account}, "|"))).String()
}

// Upload creates the transactions that are not yet present in their YNAB
// account, matched by import id.
func (c *Client) Upload(ctx context.Context, uploads []models.Upload) (*models.UploadResult, error) {
	if c.budgetID == "" {
		return nil, fmt.Errorf("ynab budget id is not configured")
	}
	result := &models.UploadResult{}
	service := c.client.Transaction()

	for _, accountID := range accountIDs(uploads) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		local := forAccount(uploads, accountID)

		remote, err := service.GetTransactionsByAccount(c.budgetID, accountID, nil)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("account %s: list transactions: %v", accountID, err))
			continue
		}
		report := Reconcile(local, remote)
		result.Skipped += report.SyncedCount()

		payloads, err := report.Payloads(accountID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("account %s: %v", accountID, err))
			continue
		}
		if len(payloads) == 0 {
			c.logger.Debug("account already in sync", "account", accountID)
			continue
		}
		if _, err := service.CreateTransactions(c.budgetID, payloads); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("account %s: create transactions: %v", accountID, err))
			continue
		}
		c.logger.Info("created ynab transactions", "account", accountID, "count", len(payloads))
		result.Uploaded += len(payloads)
	}
	return result, nil
}

func accountIDs(uploads []models.Upload) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, u := range uploads {
		if _, ok := seen[u.AssetID]; ok {
			continue
		}
		seen[u.AssetID] = struct{}{}
		out = append(out, u.AssetID)
	}
	sort.Strings(out)
	return out
}

func forAccount(uploads []models.Upload, accountID string) []models.Transaction {
	var out []models.Transaction
	for _, u := range uploads {
		if u.AssetID == accountID {
			out = append(out, u.Transaction)
		}
	}
	return out
}
