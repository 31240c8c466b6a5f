package services

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/deividlukks/Fayol-sub007/pkg/client"
)

// Launch types.
const (
	LaunchIncome   = "INCOME"
	LaunchExpense  = "EXPENSE"
	LaunchTransfer = "TRANSFER"
)

// Recurrence values.
const (
	RecurrenceNone    = "NONE"
	RecurrenceDaily   = "DAILY"
	RecurrenceWeekly  = "WEEKLY"
	RecurrenceMonthly = "MONTHLY"
	RecurrenceYearly  = "YEARLY"
)

// Transaction is an income, expense or transfer entry.
type Transaction struct {
	ID                   string    `json:"id"`
	Description          string    `json:"description"`
	Amount               float64   `json:"amount"`
	Date                 time.Time `json:"date"`
	Type                 string    `json:"type"`
	AccountID            string    `json:"accountId"`
	CategoryID           string    `json:"categoryId,omitempty"`
	DestinationAccountID string    `json:"destinationAccountId,omitempty"`
	IsPaid               bool      `json:"isPaid"`
	Recurrence           string    `json:"recurrence,omitempty"`
	Notes                string    `json:"notes,omitempty"`
	Tags                 []string  `json:"tags,omitempty"`
}

// CreateTransactionInput is the body of a transaction creation.
type CreateTransactionInput struct {
	Description          string    `json:"description"`
	Amount               float64   `json:"amount"`
	Date                 time.Time `json:"date"`
	Type                 string    `json:"type"`
	AccountID            string    `json:"accountId"`
	CategoryID           string    `json:"categoryId,omitempty"`
	DestinationAccountID string    `json:"destinationAccountId,omitempty"`
	IsPaid               bool      `json:"isPaid"`
	Recurrence           string    `json:"recurrence,omitempty"`
	Notes                string    `json:"notes,omitempty"`
	Tags                 []string  `json:"tags,omitempty"`
}

// UpdateTransactionInput is a partial transaction update.
type UpdateTransactionInput struct {
	Description *string    `json:"description,omitempty"`
	Amount      *float64   `json:"amount,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Type        *string    `json:"type,omitempty"`
	AccountID   *string    `json:"accountId,omitempty"`
	CategoryID  *string    `json:"categoryId,omitempty"`
	IsPaid      *bool      `json:"isPaid,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

// TransactionFilter narrows a transaction listing. Zero values are omitted
// from the query.
type TransactionFilter struct {
	AccountID  string
	CategoryID string
	Type       string
	Search     string
	StartDate  time.Time
	EndDate    time.Time
	Page       int
	Limit      int
}

// Params encodes the filter as query parameters.
func (f TransactionFilter) Params() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("accountId", f.AccountID)
	set("categoryId", f.CategoryID)
	set("type", f.Type)
	set("search", f.Search)
	set("startDate", formatDate(f.StartDate))
	set("endDate", formatDate(f.EndDate))
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	return v
}

// TransactionList is one page of transactions.
type TransactionList struct {
	Items []Transaction `json:"items"`
	Meta  Page          `json:"meta"`
}

// Summary aggregates transactions over a period.
type Summary struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
	Count   int     `json:"count"`
}

// transactionsCacheTTL is short since balances move with every entry.
const transactionsCacheTTL = 30 * time.Second

// TransactionService manages transactions.
type TransactionService struct {
	client *client.Client
}

// NewTransactionService creates a TransactionService.
func NewTransactionService(c *client.Client) *TransactionService {
	return &TransactionService{client: c}
}

// List returns one page of transactions matching filter.
func (s *TransactionService) List(ctx context.Context, filter TransactionFilter) (*TransactionList, error) {
	var resp Envelope[TransactionList]
	err := s.client.Get(ctx, "/transactions", &resp,
		client.WithParams(filter.Params()),
		client.WithCache(transactionsCacheTTL),
	)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Get returns one transaction.
func (s *TransactionService) Get(ctx context.Context, id string) (*Transaction, error) {
	var resp Envelope[Transaction]
	if err := s.client.Get(ctx, "/transactions/"+escape(id), &resp, client.WithCache(transactionsCacheTTL)); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Create records a transaction. Cached account balances are dropped too.
func (s *TransactionService) Create(ctx context.Context, in CreateTransactionInput) (*Transaction, error) {
	var resp Envelope[Transaction]
	if err := s.client.Post(ctx, "/transactions", in, &resp); err != nil {
		return nil, err
	}
	s.client.InvalidateCache("/accounts")
	return &resp.Data, nil
}

// Update applies a partial update to a transaction.
func (s *TransactionService) Update(ctx context.Context, id string, in UpdateTransactionInput) (*Transaction, error) {
	var resp Envelope[Transaction]
	if err := s.client.Patch(ctx, "/transactions/"+escape(id), in, &resp); err != nil {
		return nil, err
	}
	s.client.InvalidateCache("/accounts")
	return &resp.Data, nil
}

// Remove deletes a transaction.
func (s *TransactionService) Remove(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, "/transactions/"+escape(id), nil); err != nil {
		return err
	}
	s.client.InvalidateCache("/accounts")
	return nil
}

// Summary returns income and expense totals between start and end.
func (s *TransactionService) Summary(ctx context.Context, start, end time.Time) (*Summary, error) {
	var resp Envelope[Summary]
	err := s.client.Get(ctx, "/transactions/summary", &resp,
		client.WithParam("startDate", formatDate(start)),
		client.WithParam("endDate", formatDate(end)),
		client.WithCache(transactionsCacheTTL),
	)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}
