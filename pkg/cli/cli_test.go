package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/deividlukks/Fayol-sub007/pkg/config"
	apierrors "github.com/deividlukks/Fayol-sub007/pkg/errors"
	"github.com/deividlukks/Fayol-sub007/pkg/mockapi"
	"github.com/deividlukks/Fayol-sub007/pkg/services"
)

type harness struct {
	api        *mockapi.Server
	configPath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv(config.EnvAPIURL, "")
	t.Setenv(EnvPassword, "")
	api := mockapi.New(mockapi.WithLogger(zaptest.NewLogger(t)))
	ts := httptest.NewServer(api.Handler())
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf(`client:
  base_url: %s/api
retry:
  base_delay: 1ms
storage:
  variant: web
  dir: %s
logging:
  level: error
`, ts.URL, dir)
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0600))

	_, err := api.RegisterUser("Ana", "ana@example.com", "secret123")
	require.NoError(t, err)
	return &harness{api: api, configPath: path}
}

// run executes one fayol invocation and returns stdout and stderr.
func (h *harness) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd("test")
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--config", h.configPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	out, _, err := h.run(t, "auth", "login", "--email", "ana@example.com", "--password", "secret123")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Ana")
}

func TestLoginPersistsSession(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	out, _, err := h.run(t, "-o", "json", "auth", "whoami", "--offline")
	require.NoError(t, err)
	var user services.User
	require.NoError(t, json.Unmarshal([]byte(out), &user))
	assert.Equal(t, "ana@example.com", user.Email)

	_, _, err = h.run(t, "auth", "logout")
	require.NoError(t, err)

	_, _, err = h.run(t, "accounts", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run(t, "auth", "login", "--email", "ana@example.com", "--password", "nope")
	require.Error(t, err)
	assert.True(t, apierrors.IsUnauthorized(err))
	assert.Contains(t, DescribeError(err), "[UNAUTHORIZED]")
}

func TestAccountsAndTransactions(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	out, _, err := h.run(t, "accounts", "create", "Nubank", "--balance", "100")
	require.NoError(t, err)
	m := regexp.MustCompile(`\(([^)]+)\)`).FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	accountID := m[1]

	_, _, err = h.run(t, "transactions", "add", "Mercado", "25.50", "--account", accountID, "--date", "2024-03-10")
	require.NoError(t, err)

	out, _, err = h.run(t, "-o", "json", "accounts", "list")
	require.NoError(t, err)
	var accounts []services.Account
	require.NoError(t, json.Unmarshal([]byte(out), &accounts))
	require.Len(t, accounts, 1)
	assert.InDelta(t, 74.5, accounts[0].Balance, 0.001)

	out, _, err = h.run(t, "accounts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "BALANCE")
	assert.Contains(t, out, "BRL 74.50")

	out, _, err = h.run(t, "-o", "json", "transactions", "summary", "--from", "2024-03-01", "--to", "2024-03-31")
	require.NoError(t, err)
	var summary services.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.InDelta(t, 25.5, summary.Expense, 0.001)
	assert.Equal(t, 1, summary.Count)

	out, _, err = h.run(t, "transactions", "list", "--from", "2024-04-01")
	require.NoError(t, err)
	assert.NotContains(t, out, "Mercado")
}

func TestTransactionValidationError(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	_, _, err := h.run(t, "transactions", "add", "Mercado", "10", "--account", "missing")
	require.Error(t, err)
	assert.True(t, apierrors.IsValidation(err))
	assert.Contains(t, DescribeError(err), "accountId: account does not exist")
}

func TestGetUsesCache(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	out, stderr, err := h.run(t, "get", "/categories", "--cache", "1m", "--repeat", "3", "--stats")
	require.NoError(t, err)
	assert.Contains(t, out, `"success": true`)
	assert.Contains(t, stderr, "requests=3 cache_hits=2")
	assert.Equal(t, 1, h.api.Hits(http.MethodGet, "/categories"))
}

func TestGetRejectsBadParam(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	_, _, err := h.run(t, "get", "/transactions", "--param", "nokey")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected key=value")
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fayol.yaml")
	h := &harness{configPath: path}

	out, _, err := h.run(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, _, err = h.run(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	out, _, err = h.run(t, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "valid")

	out, _, err = h.run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "base_url: http://localhost:3333/api")
}

func TestConfigValidateWarnsUnreachableProxy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("proxy:\n  socks5_addr: 127.0.0.1:1\n  local: true\n"), 0600))
	h := &harness{configPath: path}

	out, _, err := h.run(t, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Proxy 127.0.0.1:1 is not accepting connections")
	assert.Contains(t, out, "Configuration is valid")
}

func TestConfigValidateReportsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retry:\n  max_attempts: 0\n"), 0600))
	h := &harness{configPath: path}

	out, _, err := h.run(t, "config", "validate")
	require.Error(t, err)
	assert.Contains(t, out, "max_attempts")
}

func TestInvalidOutputFormat(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run(t, "-o", "xml", "accounts", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestDescribeError(t *testing.T) {
	e := apierrors.NewValidation("Dados inválidos", map[string][]string{
		"name":  {"name is required"},
		"email": {"email is invalid"},
	})
	assert.Equal(t,
		"Dados inválidos [VALIDATION_ERROR] (HTTP 422)\n  email: email is invalid\n  name: name is required",
		DescribeError(e),
	)

	assert.Equal(t, "plain", DescribeError(fmt.Errorf("plain")))
}
