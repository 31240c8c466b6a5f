package cache

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		params   url.Values
		expected string
	}{
		{name: "no params", path: "/accounts", expected: "/accounts"},
		{name: "empty params", path: "/accounts", params: url.Values{}, expected: "/accounts"},
		{
			name:     "sorted keys",
			path:     "/transactions",
			params:   url.Values{"type": {"EXPENSE"}, "accountId": {"7"}},
			expected: "/transactions?accountId=7&type=EXPENSE",
		},
		{
			name:     "multi values keep order",
			path:     "/transactions",
			params:   url.Values{"tag": {"b", "a"}},
			expected: "/transactions?tag=b&tag=a",
		},
		{
			name:     "merges query in path",
			path:     "/transactions?page=2",
			params:   url.Values{"limit": {"20"}},
			expected: "/transactions?limit=20&page=2",
		},
		{
			name:     "escapes values",
			path:     "/search",
			params:   url.Values{"q": {"café & pão"}},
			expected: "/search?q=caf%C3%A9+%26+p%C3%A3o",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Key(tt.path, tt.params))
		})
	}
}

func TestKey_OrderIndependent(t *testing.T) {
	a := Key("/transactions", url.Values{"startDate": {"2026-01-01"}, "endDate": {"2026-01-31"}})
	b := Key("/transactions?endDate=2026-01-31", url.Values{"startDate": {"2026-01-01"}})
	c := Key("/transactions?startDate=2026-01-01&endDate=2026-01-31", nil)
	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
}

func TestFamily(t *testing.T) {
	assert.Equal(t, "accounts", Family("/accounts"))
	assert.Equal(t, "accounts", Family("/accounts/42/balance"))
	assert.Equal(t, "transactions", Family("transactions?page=1"))
	assert.Equal(t, "", Family("/"))
	assert.Equal(t, "", Family(""))
}
