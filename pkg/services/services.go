// Package services provides typed resource façades over the API client.
// They only shape requests and responses; caching, retries and error
// normalization all happen in the client pipeline.
package services

import (
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/deividlukks/Fayol-sub007/pkg/client"
)

// Envelope is the standard response wrapper used by the API.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// Page holds pagination metadata returned by list endpoints.
type Page struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Services groups every resource façade over one client.
type Services struct {
	Auth         *AuthService
	Accounts     *AccountService
	Transactions *TransactionService
	Categories   *CategoryService
}

// New builds all services over c.
func New(c *client.Client, logger *zap.Logger) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Services{
		Auth:         NewAuthService(c, logger),
		Accounts:     NewAccountService(c),
		Transactions: NewTransactionService(c),
		Categories:   NewCategoryService(c),
	}
}

func escape(id string) string {
	return url.PathEscape(id)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
