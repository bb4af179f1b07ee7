package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cantorhq/cantor/internal/api/handler"
	"github.com/cantorhq/cantor/internal/api/middleware"
	"github.com/cantorhq/cantor/internal/coordinator"
	"github.com/cantorhq/cantor/internal/services/auth"
	"github.com/cantorhq/cantor/internal/services/payment"
	"github.com/cantorhq/cantor/internal/services/wallet"
	"github.com/cantorhq/cantor/internal/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	WalletService  *wallet.Service
	PaymentService *payment.Service
	Coordinator    *coordinator.Coordinator
	Hub            *ws.Hub
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	accountHandler := handler.NewAccountHandler(cfg.AuthService, cfg.WalletService)
	roomHandler := handler.NewRoomHandler(cfg.Coordinator)
	paymentHandler := handler.NewPaymentHandler(cfg.PaymentService)
	wsHandler := ws.NewHandler(cfg.Hub, cfg.Coordinator, cfg.AuthService, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Account routes (no auth required for creating accounts/logging in)
	api.HandleFunc("/accounts/guest", accountHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/accounts/register", accountHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/accounts/login", accountHandler.Login).Methods(http.MethodPost)

	// Protected account routes
	accountProtected := api.PathPrefix("/accounts").Subrouter()
	accountProtected.Use(authMiddleware)
	accountProtected.HandleFunc("/me", accountHandler.GetMe).Methods(http.MethodGet)
	accountProtected.HandleFunc("/me/transactions", accountHandler.GetTransactions).Methods(http.MethodGet)

	// Room routes (all require auth)
	rooms := api.PathPrefix("/rooms").Subrouter()
	rooms.Use(authMiddleware)
	rooms.HandleFunc("", roomHandler.Create).Methods(http.MethodPost)
	rooms.HandleFunc("/{key}", roomHandler.Get).Methods(http.MethodGet)

	// Payment routes. The webhook is unauthenticated: the payment provider
	// calls it, not the player.
	payments := api.PathPrefix("/payments").Subrouter()
	payments.HandleFunc("/webhook", paymentHandler.Webhook).Methods(http.MethodPost)
	checkouts := payments.NewRoute().Subrouter()
	checkouts.Use(authMiddleware)
	checkouts.HandleFunc("/checkout", paymentHandler.CreateCheckout).Methods(http.MethodPost)
	checkouts.HandleFunc("/checkout/{id}", paymentHandler.GetCheckout).Methods(http.MethodGet)

	// Websocket endpoint. The handler authenticates from the token query
	// param itself, since browsers cannot set headers on the handshake.
	gameWS := r.PathPrefix("/ws").Subrouter()
	gameWS.Use(recoveryMiddleware)
	gameWS.Use(loggingMiddleware)
	gameWS.Handle("/{key}", wsHandler).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
