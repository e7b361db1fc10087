package lunchmoney

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/lunchsync/pkg/models"
)

const (
	BaseURL      = "https://dev.lunchmoney.app/v1"
	MaxBatchSize = 500

	maxExternalID = 75
	maxPayee      = 140
	maxNotes      = 350
)

// Asset is a Lunch Money manually managed account.
type Asset struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	TypeName    string `json:"type_name"`
	Currency    string `json:"currency"`
}

// Payload is one transaction of an insert request.
type Payload struct {
	Date       string      `json:"date"`
	Amount     json.Number `json:"amount"`
	Payee      string      `json:"payee"`
	Currency   string      `json:"currency"`
	AssetID    int64       `json:"asset_id"`
	ExternalID string      `json:"external_id"`
	Status     string      `json:"status"`
	Notes      string      `json:"notes,omitempty"`
}

type insertRequest struct {
	Transactions    []Payload `json:"transactions"`
	DebitAsNegative bool      `json:"debit_as_negative"`
	SkipDuplicates  bool      `json:"skip_duplicates"`
}

type insertResponse struct {
	IDs []int64 `json:"ids"`
	// Error is a string or a list of strings.
	Error json.RawMessage `json:"error"`
}

type assetsResponse struct {
	Assets []Asset `json:"assets"`
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *log.Logger
}

type Option func(*Client)

// WithBaseURL points the client at another API root.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(apiKey string, logger *log.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: BaseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string { return "Lunch Money" }

// ExternalID is the transaction reference when the export carried one,
// otherwise a hash of date, amount, description and account. Lunch Money
// skips inserts whose external id already exists on the asset.
func ExternalID(tx models.Transaction) string {
	if ref := tx.Reference(); ref != "" {
		return truncate(ref, maxExternalID)
	}
	k := tx.Key()
	sum := sha256.Sum256([]byte(strings.Join([]string{k.Date, k.Amount, k.Description, k.Account}, "|")))
	return truncate(hex.EncodeToString(sum[:]), maxExternalID)
}

// NewPayload converts a transaction for the insert endpoint. Amounts keep
// their sign; the request sets debit_as_negative. The amount is always in
// SGD, so a foreign spend goes into the notes instead of the currency.
func NewPayload(tx models.Transaction, assetID int64) Payload {
	p := Payload{
		Date:       tx.DateString(),
		Amount:     json.Number(tx.Amount().String()),
		Payee:      truncate(tx.Description(), maxPayee),
		Currency:   strings.ToLower(models.DefaultCurrency),
		AssetID:    assetID,
		ExternalID: ExternalID(tx),
		Status:     "uncleared",
	}
	if amt, ok := tx.OriginalAmount(); ok && tx.OriginalCurrency() != models.DefaultCurrency {
		p.Notes = truncate(tx.OriginalCurrency()+" "+amt.StringFixed(2), maxNotes)
	}
	return p
}

// GetAssets lists the assets of the account the key belongs to.
func (c *Client) GetAssets(ctx context.Context) ([]Asset, error) {
	var out assetsResponse
	if err := c.do(ctx, http.MethodGet, "assets", nil, &out); err != nil {
		return nil, err
	}
	return out.Assets, nil
}

// Upload inserts transactions in batches. A failing batch is recorded in
// the result and the remaining batches are still sent. Inserts the service
// drops as duplicates count as skipped.
func (c *Client) Upload(ctx context.Context, uploads []models.Upload) (*models.UploadResult, error) {
	result := &models.UploadResult{}
	payloads := make([]Payload, 0, len(uploads))
	for _, u := range uploads {
		id, err := strconv.ParseInt(u.AssetID, 10, 64)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("invalid asset id %q for account %s", u.AssetID, u.Transaction.Account()))
			continue
		}
		payloads = append(payloads, NewPayload(u.Transaction, id))
	}

	for start := 0; start < len(payloads); start += MaxBatchSize {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		end := min(start+MaxBatchSize, len(payloads))
		batch := payloads[start:end]
		n := start/MaxBatchSize + 1

		var resp insertResponse
		err := c.do(ctx, http.MethodPost, "transactions", insertRequest{
			Transactions:    batch,
			DebitAsNegative: true,
			SkipDuplicates:  true,
		}, &resp)
		if err == nil && len(resp.Error) > 0 && string(resp.Error) != "null" {
			err = fmt.Errorf("lunch money rejected batch: %s", resp.Error)
		}
		if err != nil {
			c.logger.Error("batch upload failed", "batch", n, "err", err)
			result.Errors = append(result.Errors, fmt.Sprintf("batch %d: %v", n, err))
			continue
		}

		result.Uploaded += len(resp.IDs)
		result.Skipped += len(batch) - len(resp.IDs)
		c.logger.Debug("batch uploaded", "batch", n, "sent", len(batch), "created", len(resp.IDs))
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+endpoint, r)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s %s: %s: %s", method, endpoint, resp.Status, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
