package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cantorhq/cantor/internal/api"
	"github.com/cantorhq/cantor/internal/api/response"
	"github.com/cantorhq/cantor/internal/factory"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(factory.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		WalletService:  app.WalletService,
		PaymentService: app.PaymentService,
		Coordinator:    app.Coordinator,
		Hub:            app.Hub,
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func createGuestAccount(t *testing.T, ts *testServer, name string) string {
	t.Helper()

	body := map[string]string{"display_name": name}
	rr := ts.request(http.MethodPost, "/api/v1/accounts/guest", body, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.SessionToken
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestCreateGuestAccount(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]string{"display_name": "Alice"}
	rr := ts.request(http.MethodPost, "/api/v1/accounts/guest", body, "")

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp response.AuthResponse
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, "Alice", resp.Account.DisplayName)
	assert.True(t, resp.Account.IsGuest)
	assert.Equal(t, 100, resp.Account.Balance)
	assert.NotEmpty(t, resp.SessionToken)
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	// Register
	registerBody := map[string]string{
		"username":     "alice",
		"password":     "secret123",
		"display_name": "Alice",
	}
	rr := ts.request(http.MethodPost, "/api/v1/accounts/register", registerBody, "")
	assert.Equal(t, http.StatusCreated, rr.Code)

	var registerResp response.AuthResponse
	err := json.Unmarshal(rr.Body.Bytes(), &registerResp)
	require.NoError(t, err)
	assert.False(t, registerResp.Account.IsGuest)

	// Login
	loginBody := map[string]string{
		"username": "alice",
		"password": "secret123",
	}
	rr = ts.request(http.MethodPost, "/api/v1/accounts/login", loginBody, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var loginResp response.AuthResponse
	err = json.Unmarshal(rr.Body.Bytes(), &loginResp)
	require.NoError(t, err)
	assert.Equal(t, registerResp.Account.ID, loginResp.Account.ID)
}

func TestGetMe(t *testing.T) {
	ts := newTestServer(t)

	// Create guest first
	body := map[string]string{"display_name": "Bob"}
	rr := ts.request(http.MethodPost, "/api/v1/accounts/guest", body, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	var authResp response.AuthResponse
	err := json.Unmarshal(rr.Body.Bytes(), &authResp)
	require.NoError(t, err)

	// Get me
	rr = ts.request(http.MethodGet, "/api/v1/accounts/me", nil, authResp.SessionToken)
	assert.Equal(t, http.StatusOK, rr.Code)

	var meResp response.Account
	err = json.Unmarshal(rr.Body.Bytes(), &meResp)
	require.NoError(t, err)
	assert.Equal(t, "Bob", meResp.DisplayName)
}

func TestUnauthorizedWithoutToken(t *testing.T) {
	ts := newTestServer(t)

	// Try to get /me without token
	rr := ts.request(http.MethodGet, "/api/v1/accounts/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Try to create a room without token
	rr = ts.request(http.MethodPost, "/api/v1/rooms", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCreateAndGetRoom(t *testing.T) {
	ts := newTestServer(t)

	token := createGuestAccount(t, ts, "Alice")

	body := map[string]string{"mode": "card_caller"}
	rr := ts.request(http.MethodPost, "/api/v1/rooms", body, token)
	assert.Equal(t, http.StatusCreated, rr.Code)

	var created response.RoomCreated
	err := json.Unmarshal(rr.Body.Bytes(), &created)
	require.NoError(t, err)
	assert.NotEmpty(t, created.Key)
	assert.Equal(t, "card_caller", created.Mode)

	rr = ts.request(http.MethodGet, "/api/v1/rooms/"+created.Key, nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "lobby")
}

func TestCreateRoomInvalidMode(t *testing.T) {
	ts := newTestServer(t)

	token := createGuestAccount(t, ts, "Alice")

	body := map[string]string{"mode": "roulette"}
	rr := ts.request(http.MethodPost, "/api/v1/rooms", body, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetUnknownRoom(t *testing.T) {
	ts := newTestServer(t)

	token := createGuestAccount(t, ts, "Alice")

	rr := ts.request(http.MethodGet, "/api/v1/rooms/NOSUCH", nil, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCheckoutFlow(t *testing.T) {
	ts := newTestServer(t)

	token := createGuestAccount(t, ts, "Alice")

	// Create a checkout session
	body := map[string]int{"amount": 50}
	rr := ts.request(http.MethodPost, "/api/v1/payments/checkout", body, token)
	assert.Equal(t, http.StatusCreated, rr.Code)

	var checkout response.Checkout
	err := json.Unmarshal(rr.Body.Bytes(), &checkout)
	require.NoError(t, err)
	assert.Equal(t, "pending", checkout.Status)
	assert.NotEmpty(t, checkout.RedirectURL)

	// Provider confirms via the webhook, no auth
	webhookBody := map[string]string{"checkout_id": checkout.ID}
	rr = ts.request(http.MethodPost, "/api/v1/payments/webhook", webhookBody, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var confirmed response.Checkout
	err = json.Unmarshal(rr.Body.Bytes(), &confirmed)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", confirmed.Status)

	// The deposit lands on the account
	rr = ts.request(http.MethodGet, "/api/v1/accounts/me", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	var meResp response.Account
	err = json.Unmarshal(rr.Body.Bytes(), &meResp)
	require.NoError(t, err)
	assert.Equal(t, 150, meResp.Balance)
}

func TestCheckoutInvalidAmount(t *testing.T) {
	ts := newTestServer(t)

	token := createGuestAccount(t, ts, "Alice")

	body := map[string]int{"amount": -5}
	rr := ts.request(http.MethodPost, "/api/v1/payments/checkout", body, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTransactionHistory(t *testing.T) {
	ts := newTestServer(t)

	token := createGuestAccount(t, ts, "Alice")

	rr := ts.request(http.MethodGet, "/api/v1/accounts/me/transactions", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	var list response.TransactionList
	err := json.Unmarshal(rr.Body.Bytes(), &list)
	require.NoError(t, err)

	// The starting-balance grant is the first entry
	require.NotEmpty(t, list.Transactions)
	assert.Equal(t, "deposit", list.Transactions[0].Kind)
	assert.Equal(t, 100, list.Transactions[0].Amount)
}
