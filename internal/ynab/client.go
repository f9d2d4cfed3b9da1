package ynab

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bankpush/bankpush/internal/id"
	"github.com/bankpush/bankpush/internal/model"
)

const (
	// DefaultBaseURL is the public YNAB API.
	DefaultBaseURL = "https://api.ynab.com/v1"
	// DefaultMaxAttempts bounds the attempts per transaction.
	DefaultMaxAttempts = 5
	// DefaultInitialDelay is the first backoff delay; it doubles per retry.
	DefaultInitialDelay = 2 * time.Second

	maxBodyBytes = 64 << 10
)

// Target identifies where a transaction is booked.
type Target struct {
	BudgetID  string
	AccountID string
}

// Result describes a created transaction.
type Result struct {
	ImportID      string
	Occurrence    int
	Attempts      int
	TransactionID string // empty if the response body could not be read
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL            string
	AccessToken        string
	InsecureSkipVerify bool // accept any server certificate
	HTTPClient         *http.Client
	MaxAttempts        int
	InitialDelay       time.Duration
	Source             string     // import ID prefix
	Sleep              SleepFunc  // backoff sleep
	Occurrence         func() int // nonce source
	Logger             zerolog.Logger
}

// Client creates transactions in a YNAB budget.
type Client struct {
	baseURL      string
	token        string
	http         *http.Client
	maxAttempts  int
	initialDelay time.Duration
	source       string
	sleep        SleepFunc
	occurrence   func() int
	log          zerolog.Logger
}

// NewClient creates a Client.
func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		token:        opts.AccessToken,
		http:         opts.HTTPClient,
		maxAttempts:  opts.MaxAttempts,
		initialDelay: opts.InitialDelay,
		source:       opts.Source,
		sleep:        opts.Sleep,
		occurrence:   opts.Occurrence,
		log:          opts.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.http == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if opts.InsecureSkipVerify {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via VERIFY_SSL=false
		}
		c.http = &http.Client{Transport: transport, Timeout: 30 * time.Second}
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = DefaultMaxAttempts
	}
	if c.initialDelay <= 0 {
		c.initialDelay = DefaultInitialDelay
	}
	if c.source == "" {
		c.source = id.DefaultSource
	}
	if c.sleep == nil {
		c.sleep = Sleep
	}
	if c.occurrence == nil {
		c.occurrence = id.NewOccurrence
	}
	return c
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Backoff returns the delay before attempt (attempt >= 1).
func (c *Client) Backoff(attempt int) time.Duration {
	return c.initialDelay * time.Duration(1<<(attempt-1))
}

// Submit creates txn in target. A 409 bumps the occurrence nonce and retries
// at once; a 429 or any other failure retries with exponential backoff.
// Every attempt, including a 409, counts against the attempt budget.
//
// A nil error means the transaction was created. Any error leaves the remote
// state unknown; the import ID is the only protection against duplicates.
func (c *Client) Submit(ctx context.Context, txn model.Transaction, target Target) (Result, error) {
	importID := id.ImportID{
		Source:     c.source,
		Milliunits: txn.Milliunits(),
		Date:       txn.ISODate(),
		Occurrence: c.occurrence(),
	}
	url := fmt.Sprintf("%s/budgets/%s/transactions", c.baseURL, target.BudgetID)
	log := c.log.With().Str("payee", txn.Payee).Str("date", importID.Date).Logger()

	var lastErr *SubmissionError
	duplicate := false
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 && !duplicate {
			delay := c.Backoff(attempt)
			log.Info().Dur("delay", delay).Msgf("waiting before retry %d/%d", attempt+1, c.maxAttempts)
			if err := c.sleep(ctx, delay); err != nil {
				return Result{}, fmt.Errorf("waiting to retry: %w", err)
			}
		}
		duplicate = false
		last := attempt == c.maxAttempts-1

		status, body, err := c.post(ctx, url, newPayload(txn, target.AccountID, importID.String()))
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Msg("request failed")
			lastErr = &SubmissionError{Attempts: attempt + 1, Err: &TransportError{Err: err}}
			if last {
				return Result{}, lastErr
			}
			continue
		}

		switch status {
		case http.StatusCreated:
			res := Result{
				ImportID:      importID.String(),
				Occurrence:    importID.Occurrence,
				Attempts:      attempt + 1,
				TransactionID: transactionID(body),
			}
			log.Info().Str("amount", txn.Amount.StringFixed(2)).Str("import_id", res.ImportID).Msg("added transaction")
			return res, nil
		case http.StatusConflict:
			log.Info().Str("import_id", importID.String()).Msg("skip duplicate")
			importID.Occurrence++
			duplicate = true
		case http.StatusTooManyRequests:
			log.Warn().Int("attempt", attempt+1).Msg("rate limit reached")
			if last {
				return Result{}, ErrRateLimitExceeded
			}
		default:
			log.Warn().Int("status", status).Str("body", body).Msg("unexpected response")
			lastErr = &SubmissionError{StatusCode: status, Body: body, Attempts: attempt + 1}
			if last {
				return Result{}, lastErr
			}
		}
	}

	if lastErr != nil {
		lastErr.Attempts = c.maxAttempts
		return Result{}, lastErr
	}
	return Result{}, &SubmissionError{Attempts: c.maxAttempts}
}

func (c *Client) post(ctx context.Context, url string, payload TransactionPayload) (int, string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, "", fmt.Errorf("encoding transaction: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return 0, "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, "", fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, string(body), nil
}

func newPayload(txn model.Transaction, accountID, importID string) TransactionPayload {
	return TransactionPayload{Transaction: SaveTransaction{
		AccountID:       accountID,
		Date:            txn.ISODate(),
		Amount:          txn.Milliunits(),
		PayeeName:       txn.Payee,
		CategoryName:    txn.Category,
		Memo:            txn.Memo,
		Cleared:         clearedUncleared,
		Approved:        false,
		ImportID:        importID,
		SubTransactions: []SubTransaction{},
	}}
}

func transactionID(body string) string {
	var resp createResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return ""
	}
	if resp.Data.Transaction.ID != "" {
		return resp.Data.Transaction.ID
	}
	if len(resp.Data.TransactionIDs) > 0 {
		return resp.Data.TransactionIDs[0]
	}
	return ""
}
