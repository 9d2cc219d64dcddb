package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storeroom/pkg/account"
	"storeroom/pkg/deletion"
	"storeroom/pkg/httpapi"
	"storeroom/pkg/ledger"
)

type harness struct {
	t      *testing.T
	server *httpapi.Server
	ledger *ledger.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	catalog := ledger.NewCatalog([]ledger.Item{
		{ID: "1", Name: "Office Supplies", LowStockThreshold: 10},
		{ID: "2", Name: "Computer Equipment", LowStockThreshold: 5},
	})
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	seed := []ledger.Transaction{
		{ID: "t1", Date: "2024-03-01", ItemID: "1", ItemName: "Office Supplies", Deposit: 20, CreatedAt: now.AddDate(0, 0, -4)},
		{ID: "t2", Date: "2024-03-05", ItemID: "1", ItemName: "Office Supplies", Withdrawal: 5, Unit: ledger.UnitAdmin, CreatedAt: now.Add(-time.Hour)},
	}
	l := ledger.NewService(catalog, seed, ledger.WithClock(func() time.Time { return now }))
	d := deletion.NewService(l)
	dir, err := account.NewDirectory(account.DemoCredentials(), bcrypt.MinCost)
	require.NoError(t, err)
	t.Cleanup(func() {
		d.Close()
		l.Close()
	})

	srv := httpapi.New(context.Background(), httpapi.Deps{
		Ledger:    l,
		Deletions: d,
		Accounts:  dir,
		Tokens:    account.NewIssuer("test-secret", time.Hour),
	}, httpapi.Options{LoginLimit: 3}, nil)
	return &harness{t: t, server: srv, ledger: l}
}

func (h *harness) do(method, path, token string, body any) (*http.Response, []byte) {
	h.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.server.App().Test(req, -1)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp, out
}

func (h *harness) login(email, password string) string {
	h.t.Helper()
	resp, body := h.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(h.t, http.StatusOK, resp.StatusCode, string(body))
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(h.t, json.Unmarshal(body, &out))
	return out.Token
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(body, &out))
	return out["error"]
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	token := h.login("admin@gmail.com", "Admin@1234")

	resp, body := h.do(http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"email":"admin@gmail.com","name":"Administrator","role":"admin","isAdmin":true}`, string(body))

	resp, body = h.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@gmail.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid credentials", errorMessage(t, body))

	resp, _ = h.do(http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = h.do(http.MethodGet, "/api/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginRateLimit(t *testing.T) {
	h := newHarness(t)
	bad := map[string]string{"email": "viewer@gmail.com", "password": "wrong"}
	for i := 0; i < 3; i++ {
		resp, _ := h.do(http.MethodPost, "/api/auth/login", "", bad)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp, body := h.do(http.MethodPost, "/api/auth/login", "", bad)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, errorMessage(t, body))
}

func TestReferenceData(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(http.MethodGet, "/api/items", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"name":"Computer Equipment"`)

	resp, body = h.do(http.MethodGet, "/api/units", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"PUBLIC RELATION"`)
}

func TestDashboardAndSummary(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(http.MethodGet, "/api/dashboard", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"date":"2024-03-05","activity":{"count":1,"totalDeposits":0,"totalWithdrawals":5}}`, string(body))

	resp, body = h.do(http.MethodGet, "/api/inventory/summary", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary ledger.InventorySummary
	require.NoError(t, json.Unmarshal(body, &summary))
	require.Len(t, summary.Items, 2)
	assert.Equal(t, 15, summary.Items[0].Quantity)
	assert.Equal(t, ledger.InStock, summary.Items[0].Status)
	assert.Equal(t, ledger.Unavailable, summary.Items[1].Status)
}

func TestCreateTransaction(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(http.MethodPost, "/api/transactions", "", map[string]any{
		"itemId": "1", "stockOut": 7, "requestingUnit": "ict",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created struct {
		Balance int    `json:"balance"`
		Type    string `json:"type"`
		Unit    string `json:"requestingUnit"`
		Date    string `json:"date"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, 8, created.Balance)
	assert.Equal(t, "withdrawal", created.Type)
	assert.Equal(t, "ICT", created.Unit)
	assert.Equal(t, "2024-03-05", created.Date)

	resp, body = h.do(http.MethodPost, "/api/transactions", "", map[string]any{
		"itemId": "1", "stockOut": 100, "requestingUnit": "ICT",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorMessage(t, body), "insufficient stock")

	resp, _ = h.do(http.MethodPost, "/api/transactions", "", map[string]any{"itemId": "9", "stockIn": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	balance, err := h.ledger.Balance(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 8, balance)
}

func TestListTransactions(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(http.MethodGet, "/api/transactions?search=office&start=2024-03-05", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(body, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "t2", rows[0]["id"])

	resp, body = h.do(http.MethodGet, "/api/transactions?grouped=true", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var groups []struct {
		Date         string           `json:"date"`
		Transactions []map[string]any `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(body, &groups))
	require.Len(t, groups, 2)
	assert.Equal(t, "2024-03-05", groups[0].Date)

	resp, _ = h.do(http.MethodGet, "/api/transactions?start=05/03/2024", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReports(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(http.MethodGet, "/api/reports?item=1&start=2024-03-01&end=2024-03-05", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report ledger.Report
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, "Inventory Report On Office Supplies", report.Title)
	assert.Equal(t, "From: Mar 1, 2024 To: Mar 5, 2024", report.Period)
	assert.Equal(t, ledger.ReportSummary{TotalDeposits: 20, TotalWithdrawals: 5, FinalBalance: 15, TransactionCount: 2}, report.Summary)

	resp, body = h.do(http.MethodGet, "/api/reports/export?format=pdf", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(string(body), "%PDF-"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "inventory_report_")

	resp, _ = h.do(http.MethodGet, "/api/reports/export?format=xlsx", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")

	resp, _ = h.do(http.MethodGet, "/api/reports/export?format=csv", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeletionWorkflow(t *testing.T) {
	h := newHarness(t)
	keeper := h.login("store@gmail.com", "Store@1234")
	admin := h.login("admin@gmail.com", "Admin@1234")

	resp, _ := h.do(http.MethodPost, "/api/deletion-requests", "", map[string]string{"transactionId": "t2", "reason": "typo"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := h.do(http.MethodPost, "/api/deletion-requests", keeper, map[string]string{"transactionId": "t2", "reason": "typo"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var req deletion.Request
	require.NoError(t, json.Unmarshal(body, &req))
	assert.Equal(t, deletion.StatusPending, req.Status)

	resp, _ = h.do(http.MethodPost, "/api/deletion-requests", keeper, map[string]string{"transactionId": "t2", "reason": "again"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = h.do(http.MethodPost, "/api/deletion-requests/"+req.ID+"/approve", keeper, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = h.do(http.MethodPost, "/api/deletion-requests/"+req.ID+"/approve", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, _ = h.do(http.MethodPost, "/api/deletion-requests/"+req.ID+"/reject", admin, map[string]string{"note": "late"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	balance, err := h.ledger.Balance(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 20, balance)

	resp, body = h.do(http.MethodGet, "/api/deletion-requests?status=approved", keeper, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []deletion.Request
	require.NoError(t, json.Unmarshal(body, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "admin@gmail.com", listed[0].ReviewedBy)

	resp, _ = h.do(http.MethodPost, "/api/deletion-requests/missing/approve", admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminUsers(t *testing.T) {
	h := newHarness(t)
	viewer := h.login("viewer@gmail.com", "Viewer@1234")
	admin := h.login("admin@gmail.com", "Admin@1234")

	resp, _ := h.do(http.MethodGet, "/api/admin/users", viewer, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := h.do(http.MethodGet, "/api/admin/users", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "viewer@gmail.com")

	resp, body = h.do(http.MethodPut, "/api/admin/users/viewer@gmail.com/role", admin, map[string]string{"role": "storekeeper"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"role":"storekeeper"`)

	// The viewer's existing token now carries the new role.
	resp, body = h.do(http.MethodGet, "/api/me", viewer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"role":"storekeeper"`)

	resp, _ = h.do(http.MethodPut, "/api/admin/users/admin@gmail.com/role", admin, map[string]string{"role": "viewer"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = h.do(http.MethodPut, "/api/admin/users/viewer@gmail.com/role", admin, map[string]string{"role": "owner"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = h.do(http.MethodPut, "/api/admin/users/ghost@gmail.com/role", admin, map[string]string{"role": "viewer"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, errorMessage(t, body))
}
