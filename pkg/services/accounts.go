package services

import (
	"context"
	"time"

	"github.com/deividlukks/Fayol-sub007/pkg/client"
)

// Account types accepted by the API.
const (
	AccountChecking   = "CHECKING"
	AccountSavings    = "SAVINGS"
	AccountInvestment = "INVESTMENT"
	AccountCash       = "CASH"
	AccountCredit     = "CREDIT_CARD"
)

// Account is a user's financial account.
type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Balance   float64   `json:"balance"`
	Currency  string    `json:"currency"`
	Color     string    `json:"color,omitempty"`
	Icon      string    `json:"icon,omitempty"`
	Archived  bool      `json:"isArchived,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// CreateAccountInput is the body of an account creation.
type CreateAccountInput struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency,omitempty"`
	Color    string  `json:"color,omitempty"`
	Icon     string  `json:"icon,omitempty"`
}

// UpdateAccountInput is a partial account update. Nil fields are left
// unchanged.
type UpdateAccountInput struct {
	Name     *string  `json:"name,omitempty"`
	Type     *string  `json:"type,omitempty"`
	Balance  *float64 `json:"balance,omitempty"`
	Currency *string  `json:"currency,omitempty"`
	Color    *string  `json:"color,omitempty"`
	Icon     *string  `json:"icon,omitempty"`
	Archived *bool    `json:"isArchived,omitempty"`
}

// accountsCacheTTL applies to the account list and detail reads.
const accountsCacheTTL = 2 * time.Minute

// AccountService manages accounts.
type AccountService struct {
	client *client.Client
}

// NewAccountService creates an AccountService.
func NewAccountService(c *client.Client) *AccountService {
	return &AccountService{client: c}
}

// List returns every account of the authenticated user.
func (s *AccountService) List(ctx context.Context) ([]Account, error) {
	var resp Envelope[[]Account]
	if err := s.client.Get(ctx, "/accounts", &resp, client.WithCache(accountsCacheTTL)); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Get returns one account.
func (s *AccountService) Get(ctx context.Context, id string) (*Account, error) {
	var resp Envelope[Account]
	if err := s.client.Get(ctx, "/accounts/"+escape(id), &resp, client.WithCache(accountsCacheTTL)); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Create creates an account.
func (s *AccountService) Create(ctx context.Context, in CreateAccountInput) (*Account, error) {
	var resp Envelope[Account]
	if err := s.client.Post(ctx, "/accounts", in, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Update applies a partial update to an account.
func (s *AccountService) Update(ctx context.Context, id string, in UpdateAccountInput) (*Account, error) {
	var resp Envelope[Account]
	if err := s.client.Patch(ctx, "/accounts/"+escape(id), in, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Remove deletes an account.
func (s *AccountService) Remove(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "/accounts/"+escape(id), nil)
}
