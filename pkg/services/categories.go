package services

import (
	"context"
	"time"

	"github.com/deividlukks/Fayol-sub007/pkg/client"
)

// Category classifies transactions. System categories have no owner.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Icon     string `json:"icon,omitempty"`
	Color    string `json:"color,omitempty"`
	ParentID string `json:"parentId,omitempty"`
	IsSystem bool   `json:"isSystem,omitempty"`
}

// CreateCategoryInput is the body of a category creation.
type CreateCategoryInput struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Icon     string `json:"icon,omitempty"`
	Color    string `json:"color,omitempty"`
	ParentID string `json:"parentId,omitempty"`
}

// CategoriesCacheTTL applies to category reads, which rarely change.
const CategoriesCacheTTL = 5 * time.Minute

// CategoryService manages categories.
type CategoryService struct {
	client *client.Client
}

// NewCategoryService creates a CategoryService.
func NewCategoryService(c *client.Client) *CategoryService {
	return &CategoryService{client: c}
}

// List returns the categories, optionally filtered by type.
func (s *CategoryService) List(ctx context.Context, typ string) ([]Category, error) {
	var resp Envelope[[]Category]
	err := s.client.Get(ctx, "/categories", &resp,
		client.WithParam("type", typ),
		client.WithCache(CategoriesCacheTTL),
	)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Subcategories returns the children of a category.
func (s *CategoryService) Subcategories(ctx context.Context, id string) ([]Category, error) {
	var resp Envelope[[]Category]
	if err := s.client.Get(ctx, "/categories/"+escape(id)+"/subcategories", &resp, client.WithCache(CategoriesCacheTTL)); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Create creates a user category.
func (s *CategoryService) Create(ctx context.Context, in CreateCategoryInput) (*Category, error) {
	var resp Envelope[Category]
	if err := s.client.Post(ctx, "/categories", in, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Remove deletes a user category.
func (s *CategoryService) Remove(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "/categories/"+escape(id), nil)
}
