package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cantorhq/cantor/internal/api"
	"github.com/cantorhq/cantor/internal/factory"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "cantor-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/cantor")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	// Create temp token file
	tokenFile := filepath.Join(t.TempDir(), "token")

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  tokenFile,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	// Create application
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	app, err := factory.New(factory.Config{Logger: logger})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		WalletService:  app.WalletService,
		PaymentService: app.PaymentService,
		Coordinator:    app.Coordinator,
		Hub:            app.Hub,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type accountResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Balance     int    `json:"balance"`
	IsGuest     bool   `json:"is_guest"`
}

type authResponse struct {
	Account      accountResponse `json:"account"`
	SessionToken string          `json:"session_token"`
}

type roomCreatedResponse struct {
	Key  string `json:"key"`
	Mode string `json:"mode"`
}

type roomSnapshotResponse struct {
	Key    string `json:"key"`
	Status string `json:"status"`
	Mode   string `json:"mode"`
	Pot    int    `json:"pot"`
}

type checkoutResponse struct {
	ID     string `json:"id"`
	Amount int    `json:"amount"`
	Status string `json:"status"`
}

type transactionListResponse struct {
	Transactions []struct {
		Kind   string `json:"kind"`
		Amount int    `json:"amount"`
	} `json:"transactions"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_AccountCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Create guest
	output, err := cli.run("account", "guest", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)

	var authResp authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &authResp))
	assert.Equal(t, "Alice", authResp.Account.DisplayName)
	assert.True(t, authResp.Account.IsGuest)
	assert.Equal(t, 100, authResp.Account.Balance)
	assert.NotEmpty(t, authResp.SessionToken)

	// Get me (token should be saved in token file)
	output, err = cli.run("account", "me")
	require.NoError(t, err, "output: %s", output)

	var me accountResponse
	require.NoError(t, json.Unmarshal([]byte(output), &me))
	assert.Equal(t, "Alice", me.DisplayName)
	assert.Equal(t, authResp.Account.ID, me.ID)

	// History holds the starting-balance grant
	output, err = cli.run("account", "history")
	require.NoError(t, err, "output: %s", output)

	var history transactionListResponse
	require.NoError(t, json.Unmarshal([]byte(output), &history))
	require.NotEmpty(t, history.Transactions)
	assert.Equal(t, "deposit", history.Transactions[0].Kind)
	assert.Equal(t, 100, history.Transactions[0].Amount)
}

func TestCLI_RegisterAndLogin(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Register
	output, err := cli.run("account", "register",
		"--name", "Bob", "--user", "bob", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)

	var registered authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &registered))
	assert.False(t, registered.Account.IsGuest)

	// Login again
	output, err = cli.run("account", "login", "--user", "bob", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)

	var loggedIn authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &loggedIn))
	assert.Equal(t, registered.Account.ID, loggedIn.Account.ID)
}

func TestCLI_RoomCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Create guest
	output, err := cli.run("account", "guest", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)

	var authResp authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &authResp))
	token := authResp.SessionToken

	// Create room
	output, err = cli.runWithToken(token, "room", "create", "--mode", "card_caller")
	require.NoError(t, err, "output: %s", output)

	var created roomCreatedResponse
	require.NoError(t, json.Unmarshal([]byte(output), &created))
	assert.NotEmpty(t, created.Key)
	assert.Equal(t, "card_caller", created.Mode)

	// Get room
	output, err = cli.runWithToken(token, "room", "get", created.Key)
	require.NoError(t, err, "output: %s", output)

	var snap roomSnapshotResponse
	require.NoError(t, json.Unmarshal([]byte(output), &snap))
	assert.Equal(t, created.Key, snap.Key)
	assert.Equal(t, "lobby", snap.Status)
	assert.Equal(t, 0, snap.Pot)
}

func TestCLI_DepositFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Create guest
	output, err := cli.run("account", "guest", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)

	var authResp authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &authResp))
	token := authResp.SessionToken

	// Create checkout
	output, err = cli.runWithToken(token, "deposit", "create", "--amount", "50")
	require.NoError(t, err, "output: %s", output)

	var checkout checkoutResponse
	require.NoError(t, json.Unmarshal([]byte(output), &checkout))
	assert.Equal(t, "pending", checkout.Status)

	// Confirm it via the dev webhook
	output, err = cli.runWithToken(token, "deposit", "confirm", checkout.ID)
	require.NoError(t, err, "output: %s", output)

	var confirmed checkoutResponse
	require.NoError(t, json.Unmarshal([]byte(output), &confirmed))
	assert.Equal(t, "confirmed", confirmed.Status)

	// Balance reflects the deposit
	output, err = cli.runWithToken(token, "account", "me")
	require.NoError(t, err, "output: %s", output)

	var me accountResponse
	require.NoError(t, json.Unmarshal([]byte(output), &me))
	assert.Equal(t, 150, me.Balance)
}

func TestCLI_UnauthorizedWithoutToken(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	_, err := cli.run("account", "me")
	require.Error(t, err)
}
