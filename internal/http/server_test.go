package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/auth"
	"expensetracker/internal/core"
	"expensetracker/internal/services"
	"expensetracker/internal/session"
	"expensetracker/internal/store/jsonfile"
)

type testEnv struct {
	srv          *Server
	users        *jsonfile.UserStore
	expenses     *jsonfile.ExpenseStore
	expensesPath string
}

type envOption func(*Deps)

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		users:        jsonfile.NewUserStore(filepath.Join(dir, "users.json"), auth.PlaintextHasher{}),
		expensesPath: filepath.Join(dir, "expenses.json"),
	}
	env.expenses = jsonfile.NewExpenseStore(env.expensesPath)

	sessions, err := session.NewManager("test-secret", time.Hour)
	require.NoError(t, err)

	deps := Deps{
		Accounts:           services.NewAccountService(env.users),
		Expenses:           services.NewExpenseService(env.expenses, nil),
		Sessions:           sessions,
		LoginRatePerMinute: 100,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	env.srv, err = NewServer(":0", deps)
	require.NoError(t, err)
	t.Cleanup(func() { env.srv.limiter.Stop() })
	return env
}

func (e *testEnv) do(method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func credentials(username, password string) url.Values {
	return url.Values{"username": {username}, "password": {password}}
}

// login registers username and returns the session cookie.
func (e *testEnv) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	require.NoError(t, e.users.Register(context.Background(), username, password))
	rr := e.do(http.MethodPost, "/login", credentials(username, password))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func expenseForm(category, amount, date, note string) url.Values {
	return url.Values{"category": {category}, "amount": {amount}, "date": {date}, "note": {note}}
}

func TestIndexShowsMenu(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Login")
	assert.Contains(t, body, "Sign Up")
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

func TestIndexRedirectsLoggedInUser(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "alice", "pw1")
	rr := env.do(http.MethodGet, "/", nil, cookie)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/app", rr.Header().Get("Location"))
}

func TestSignup(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodPost, "/signup", credentials("alice", "pw1"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), msgAccountCreated)

	rr = env.do(http.MethodPost, "/signup", credentials("alice", "other"))
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), msgUsernameTaken)

	users, err := env.users.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"alice": "pw1"}, users)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.users.Register(context.Background(), "alice", "pw1"))

	t.Run("wrong password", func(t *testing.T) {
		rr := env.do(http.MethodPost, "/login", credentials("alice", "PW1"))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), msgInvalidLogin)
		assert.Empty(t, rr.Result().Cookies())
	})

	t.Run("unknown user", func(t *testing.T) {
		rr := env.do(http.MethodPost, "/login", credentials("zed", "pw1"))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), msgInvalidLogin)
	})

	t.Run("success", func(t *testing.T) {
		rr := env.do(http.MethodPost, "/login", credentials("alice", "pw1"))
		require.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/app?welcome=1", rr.Header().Get("Location"))

		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		resp := env.do(http.MethodGet, "/app?welcome=1", nil, cookies[0])
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "Welcome, alice!")
		assert.Contains(t, resp.Body.String(), "Hello, alice")
	})
}

func TestAppRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodGet, "/app", nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))

	rr = env.do(http.MethodPost, "/app/expenses", expenseForm("Food", "10", "2024-01-05", ""))
	assert.Equal(t, http.StatusSeeOther, rr.Code)

	rr = env.do(http.MethodGet, "/api/summary", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
}

func TestAppPageEmptyStates(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "charlie", "pw")

	rr := env.do(http.MethodGet, "/app", nil, cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, msgNoExpenses)
	assert.Contains(t, body, msgNoData)
	assert.Contains(t, body, `value="`+core.Today().String()+`"`)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
}

func TestAddExpenseAndSummary(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "bob", "pw2")

	rr := env.do(http.MethodPost, "/app/expenses", expenseForm("Food", "120", "2024-01-05", ""), cookie)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/app?tab=summary&added=1", rr.Header().Get("Location"))

	rr = env.do(http.MethodPost, "/app/expenses", expenseForm("Travel", "30", "2024-01-06", "taxi"), cookie)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	rr = env.do(http.MethodPost, "/app/expenses", expenseForm("Food", "20", "2024-01-07", ""), cookie)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	rr = env.do(http.MethodGet, rr.Header().Get("Location"), nil, cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), msgExpenseAdded)
	assert.Contains(t, rr.Body.String(), "Total Expenses: ₹170.00")

	got, err := env.expenses.GetAll(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, core.Travel, got[1].Category)
	assert.Equal(t, "taxi", got[1].Note)

	rr = env.do(http.MethodGet, "/api/summary", nil, cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	var summary struct {
		Expenses []core.Expense `json:"expenses"`
		Total    json.Number    `json:"total"`
		Count    int            `json:"count"`
	}
	dec := json.NewDecoder(rr.Body)
	dec.UseNumber()
	require.NoError(t, dec.Decode(&summary))
	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, "170", summary.Total.String())
	assert.Equal(t, "2024-01-06", summary.Expenses[1].Date.String())

	rr = env.do(http.MethodGet, "/api/analytics", nil, cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	var analytics struct {
		Title      string `json:"title"`
		ByCategory []struct {
			Category string      `json:"category"`
			Amount   json.Number `json:"amount"`
		} `json:"by_category"`
	}
	dec = json.NewDecoder(rr.Body)
	dec.UseNumber()
	require.NoError(t, dec.Decode(&analytics))
	assert.Equal(t, "Expenses by Category", analytics.Title)
	require.Len(t, analytics.ByCategory, 2)
	assert.Equal(t, "Food", analytics.ByCategory[0].Category)
	assert.Equal(t, "140", analytics.ByCategory[0].Amount.String())
	assert.Equal(t, "Travel", analytics.ByCategory[1].Category)
	assert.Equal(t, "30", analytics.ByCategory[1].Amount.String())
}

func TestAddExpenseValidation(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "bob", "pw2")

	tests := []struct {
		name  string
		form  url.Values
		field string
	}{
		{"unknown category", expenseForm("Rent", "10", "2024-01-05", ""), "Category"},
		{"amount below minimum", expenseForm("Food", "0.5", "2024-01-05", ""), "Amount"},
		{"negative amount", expenseForm("Food", "-3", "2024-01-05", ""), "Amount"},
		{"amount not a number", expenseForm("Food", "abc", "2024-01-05", ""), "Amount"},
		{"bad date", expenseForm("Food", "10", "05/01/2024", ""), "Date"},
		{"missing date", expenseForm("Food", "10", "", ""), "Date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(http.MethodPost, "/app/expenses", tt.form, cookie)
			assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
			assert.Contains(t, rr.Body.String(), fieldMessages[tt.field])
		})
	}

	got, err := env.expenses.GetAll(context.Background(), "bob")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAddExpenseAcceptsCommaDecimal(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "bob", "pw2")

	rr := env.do(http.MethodPost, "/app/expenses", expenseForm("Bills", "12,50", "2024-02-01", ""), cookie)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	got, err := env.expenses.GetAll(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "12.5", got[0].Amount.String())
}

func TestReloadAfterAddDoesNotDuplicate(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "bob", "pw2")

	rr := env.do(http.MethodPost, "/app/expenses", expenseForm("Food", "10", "2024-02-01", ""), cookie)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	target := rr.Header().Get("Location")

	for i := 0; i < 2; i++ {
		rr = env.do(http.MethodGet, target, nil, cookie)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	got, err := env.expenses.GetAll(context.Background(), "bob")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestAddExpenseKeepsLongNote(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "bob", "pw2")
	note := strings.Repeat("n", 600)

	rr := env.do(http.MethodPost, "/app/expenses", expenseForm("Other", "5", "2024-02-01", note), cookie)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	got, err := env.expenses.GetAll(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, note, got[0].Note)
}

func TestEmptyUsernameGetsLoggedInLayout(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "", "pw")

	rr := env.do(http.MethodPost, "/app/expenses", expenseForm("Food", "10", "2024-02-01", ""), cookie)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	rr = env.do(http.MethodGet, "/app?tab=analytics", nil, cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Hello, ")
	assert.Contains(t, body, "/static/app.js")

	rr = env.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "/static/app.js")
}

func TestStorageErrorIsReportedInline(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "alice", "pw1")
	require.NoError(t, os.WriteFile(env.expensesPath, []byte("{broken"), 0o644))

	rr := env.do(http.MethodGet, "/app", nil, cookie)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), msgStorageError)

	rr = env.do(http.MethodGet, "/api/summary", nil, cookie)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestLoginIsRateLimited(t *testing.T) {
	env := newTestEnv(t, func(d *Deps) { d.LoginRatePerMinute = 2 })

	for i := 0; i < 2; i++ {
		rr := env.do(http.MethodPost, "/login", credentials("x", "y"))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	}
	rr := env.do(http.MethodPost, "/login", credentials("x", "y"))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.Contains(t, rr.Body.String(), msgTooManyAttempts)
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	failing := newTestEnv(t, func(d *Deps) {
		d.Ready = func(context.Context) error { return errors.New("disk gone") }
	})
	rr = failing.do(http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "not_ready")
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodGet, "/healthz", nil)

	rr := env.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "expensetracker_http_response_time_seconds")
}

func TestStaticAssets(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(http.MethodGet, "/static/app.js", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestNewServerRequiresDependencies(t *testing.T) {
	_, err := NewServer(":0", Deps{})
	assert.Error(t, err)
}
