package client

import (
	"context"

	"github.com/deividlukks/Fayol-sub007/pkg/storage"
)

// SetToken stores the access token.
func (c *Client) SetToken(ctx context.Context, token string) {
	c.storage.SetToken(ctx, token)
}

// Token returns the access token, if any.
func (c *Client) Token(ctx context.Context) (string, bool) {
	return c.storage.GetToken(ctx)
}

// ClearToken removes the access token and the user snapshot and drops every
// cached response, so data fetched under the old identity is never served
// again. The refresh token is kept.
func (c *Client) ClearToken(ctx context.Context) {
	c.storage.ClearToken(ctx)
	c.storage.RemoveItem(ctx, storage.KeyUser)
	c.cache.Clear()
}

// SetRefreshToken stores the refresh token.
func (c *Client) SetRefreshToken(ctx context.Context, token string) {
	c.storage.SetRefreshToken(ctx, token)
}

// RefreshToken returns the refresh token, if any.
func (c *Client) RefreshToken(ctx context.Context) (string, bool) {
	return c.storage.GetRefreshToken(ctx)
}

// SetUser stores the current-user snapshot.
func (c *Client) SetUser(ctx context.Context, user any) {
	c.storage.SetUser(ctx, user)
}

// User decodes the current-user snapshot into out.
func (c *Client) User(ctx context.Context, out any) bool {
	return c.storage.GetUser(ctx, out)
}

// IsAuthenticated reports whether an access token is stored.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	_, ok := c.storage.GetToken(ctx)
	return ok
}

// ClearSession removes tokens and user and drops the response cache.
func (c *Client) ClearSession(ctx context.Context) {
	c.storage.ClearAll(ctx)
	c.cache.Clear()
}

// ClearCache drops every cached response.
func (c *Client) ClearCache() {
	c.cache.Clear()
}

// InvalidateCache drops cached responses whose key contains pattern and
// returns how many were removed.
func (c *Client) InvalidateCache(pattern string) int {
	return c.cache.InvalidatePattern(pattern)
}
