package mockapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t   *testing.T
	srv *Server
	ts  *httptest.Server
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	srv := New(opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &harness{t: t, srv: srv, ts: ts}
}

func (h *harness) do(method, path, token string, body any) (*http.Response, map[string]any) {
	h.t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(h.t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, h.ts.URL+DefaultPrefix+path, r)
	require.NoError(h.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.ts.Client().Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	var out map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	if len(data) > 0 {
		require.NoError(h.t, json.Unmarshal(data, &out), string(data))
	}
	return resp, out
}

func (h *harness) login() string {
	h.t.Helper()
	_, err := h.srv.RegisterUser("Ana", "ana@example.com", "secret123")
	require.NoError(h.t, err)
	resp, body := h.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "secret123",
	})
	require.Equal(h.t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	return data["access_token"].(string)
}

func TestAuthFlow(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Bia", "email": "bia@example.com", "password": "123456",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	resp, _ = h.do(http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Bia", "email": "BIA@example.com", "password": "123456",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = h.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email": "bia@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Credenciais inválidas", body["message"])

	resp, body = h.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email": "bia@example.com", "password": "123456",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	token := data["access_token"].(string)
	refresh := data["refresh_token"].(string)

	resp, body = h.do(http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user := body["data"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "bia@example.com", user["email"])

	resp, body = h.do(http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["data"].(map[string]any)["access_token"])

	resp, _ = h.do(http.MethodPost, "/auth/logout", token, struct{}{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = h.do(http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPasswordReset(t *testing.T) {
	h := newHarness(t)
	_, err := h.srv.RegisterUser("Ana", "ana@example.com", "secret123")
	require.NoError(t, err)

	resp, _ := h.do(http.MethodPost, "/auth/forgot-password", "", map[string]string{"email": "ana@example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	tok, ok := h.srv.ResetToken("ana@example.com")
	require.True(t, ok)

	_, body := h.do(http.MethodPost, "/auth/verify-reset-token", "", map[string]string{"token": tok})
	assert.Equal(t, true, body["data"].(map[string]any)["valid"])

	resp, _ = h.do(http.MethodPost, "/auth/reset-password", "", map[string]string{"token": tok, "newPassword": "novasenha"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = h.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "ana@example.com", "password": "novasenha"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = h.do(http.MethodPost, "/auth/verify-reset-token", "", map[string]string{"token": tok})
	assert.Equal(t, false, body["data"].(map[string]any)["valid"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(http.MethodGet, "/accounts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token não fornecido", body["message"])

	resp, _ = h.do(http.MethodGet, "/accounts", "bogus", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAccountValidation(t *testing.T) {
	h := newHarness(t)
	token := h.login()

	resp, body := h.do(http.MethodPost, "/accounts", token, map[string]any{"name": "", "type": "PIGGY"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	errs := body["errors"].(map[string]any)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "type")
}

func TestTransactionsMoveBalances(t *testing.T) {
	h := newHarness(t)
	token := h.login()

	_, body := h.do(http.MethodPost, "/accounts", token, map[string]any{"name": "Corrente", "type": "CHECKING", "balance": 100})
	accountID := body["data"].(map[string]any)["id"].(string)

	resp, body := h.do(http.MethodPost, "/transactions", token, map[string]any{
		"description": "Mercado", "amount": 40, "type": "EXPENSE", "accountId": accountID, "isPaid": true,
		"date": "2024-03-10T12:00:00Z",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	txID := body["data"].(map[string]any)["id"].(string)

	_, body = h.do(http.MethodGet, "/accounts/"+accountID, token, nil)
	assert.InDelta(t, 60, body["data"].(map[string]any)["balance"], 0.001)

	resp, _ = h.do(http.MethodDelete, "/accounts/"+accountID, token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	_, body = h.do(http.MethodGet, "/transactions/summary?startDate=2024-03-01T00:00:00Z&endDate=2024-03-31T23:59:59Z", token, nil)
	summary := body["data"].(map[string]any)
	assert.InDelta(t, 40, summary["expense"], 0.001)
	assert.InDelta(t, -40, summary["balance"], 0.001)

	resp, _ = h.do(http.MethodDelete, "/transactions/"+txID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = h.do(http.MethodGet, "/accounts/"+accountID, token, nil)
	assert.InDelta(t, 100, body["data"].(map[string]any)["balance"], 0.001)
}

func TestTransactionPagination(t *testing.T) {
	h := newHarness(t)
	token := h.login()
	_, body := h.do(http.MethodPost, "/accounts", token, map[string]any{"name": "Carteira", "type": "CASH"})
	accountID := body["data"].(map[string]any)["id"].(string)

	for i := 0; i < 5; i++ {
		resp, _ := h.do(http.MethodPost, "/transactions", token, map[string]any{
			"description": "Café", "amount": 5, "type": "EXPENSE", "accountId": accountID,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	_, body = h.do(http.MethodGet, "/transactions?page=2&limit=2", token, nil)
	data := body["data"].(map[string]any)
	assert.Len(t, data["items"], 2)
	meta := data["meta"].(map[string]any)
	assert.EqualValues(t, 5, meta["total"])
	assert.EqualValues(t, 3, meta["totalPages"])
}

func TestCategories(t *testing.T) {
	h := newHarness(t)
	token := h.login()

	_, body := h.do(http.MethodGet, "/categories?type=EXPENSE", token, nil)
	cats := body["data"].([]any)
	require.NotEmpty(t, cats)

	var foodID string
	for _, c := range cats {
		m := c.(map[string]any)
		assert.Equal(t, "EXPENSE", m["type"])
		if m["name"] == "Alimentação" {
			foodID = m["id"].(string)
		}
	}
	require.NotEmpty(t, foodID)

	_, body = h.do(http.MethodGet, "/categories/"+foodID+"/subcategories", token, nil)
	assert.Len(t, body["data"], 2)

	resp, _ := h.do(http.MethodDelete, "/categories/"+foodID, token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestFaultInjection(t *testing.T) {
	h := newHarness(t)
	token := h.login()

	h.srv.Inject(Fault{
		Method: http.MethodGet,
		Path:   "/accounts",
		Times:  2,
		Status: http.StatusServiceUnavailable,
		Header: http.Header{"Retry-After": []string{"1"}},
	})

	for i := 0; i < 2; i++ {
		resp, body := h.do(http.MethodGet, "/accounts", token, nil)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "1", resp.Header.Get("Retry-After"))
		assert.Equal(t, "Service Unavailable", body["message"])
	}
	resp, _ := h.do(http.MethodGet, "/accounts", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, h.srv.Hits(http.MethodGet, "/accounts"))
}

func TestFaultDropClosesConnection(t *testing.T) {
	h := newHarness(t)
	h.srv.Inject(Fault{Path: "/auth/me", Times: 1, Drop: true})

	req, err := http.NewRequest(http.MethodGet, h.ts.URL+DefaultPrefix+"/auth/me", nil)
	require.NoError(t, err)
	_, err = h.ts.Client().Do(req)
	assert.Error(t, err)
}

func TestRateLimit(t *testing.T) {
	h := newHarness(t, WithRateLimit(1, 2))

	for i := 0; i < 2; i++ {
		resp, _ := h.do(http.MethodGet, "/categories", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp, _ := h.do(http.MethodGet, "/categories", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))
}

func TestUnknownRoute(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Recurso não encontrado", body["message"])
}
