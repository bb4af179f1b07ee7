package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cantorhq/cantor/internal/api/middleware"
	"github.com/cantorhq/cantor/internal/api/request"
	"github.com/cantorhq/cantor/internal/api/response"
	"github.com/cantorhq/cantor/internal/services/auth"
	"github.com/cantorhq/cantor/internal/services/wallet"
)

// AccountHandler handles account-related endpoints
type AccountHandler struct {
	authService   *auth.Service
	walletService *wallet.Service
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(authService *auth.Service, walletService *wallet.Service) *AccountHandler {
	return &AccountHandler{
		authService:   authService,
		walletService: walletService,
	}
}

// CreateGuest handles POST /api/v1/accounts/guest
func (h *AccountHandler) CreateGuest(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.DisplayName == "" {
		WriteError(w, NewInvalidRequestError("display_name is required"))
		return
	}

	session, err := h.authService.CreateGuestAccount(r.Context(), req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(session))
}

// Register handles POST /api/v1/accounts/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}
	if req.DisplayName == "" {
		WriteError(w, NewInvalidRequestError("display_name is required"))
		return
	}

	session, err := h.authService.Register(r.Context(), req.Username, req.Password, req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(session))
}

// Login handles POST /api/v1/accounts/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	session, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session))
}

// GetMe handles GET /api/v1/accounts/me. The balance comes from storage, not
// the session, so settled rounds and confirmed deposits show up.
func (h *AccountHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	account, err := h.authService.GetAccount(r.Context(), session.Token)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.AccountFromModel(account))
}

// GetTransactions handles GET /api/v1/accounts/me/transactions
func (h *AccountHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	txns, err := h.walletService.Transactions(r.Context(), account.ID, 50)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.TransactionListFromModel(txns))
}
