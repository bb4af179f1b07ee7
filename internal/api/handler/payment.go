package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cantorhq/cantor/internal/api/middleware"
	"github.com/cantorhq/cantor/internal/api/request"
	"github.com/cantorhq/cantor/internal/api/response"
	"github.com/cantorhq/cantor/internal/services/payment"
)

// PaymentHandler handles deposit checkout endpoints
type PaymentHandler struct {
	paymentService *payment.Service
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *payment.Service) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreateCheckout handles POST /api/v1/payments/checkout
func (h *PaymentHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	var req request.CreateCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	session, err := h.paymentService.CreateCheckout(r.Context(), account.ID, req.Amount)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.CheckoutFromModel(session))
}

// Webhook handles POST /api/v1/payments/webhook, the provider's completion
// callback. Unauthenticated: the checkout id is the shared secret.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var req request.CheckoutWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.CheckoutID == "" {
		WriteError(w, NewInvalidRequestError("checkout_id is required"))
		return
	}

	session, err := h.paymentService.ConfirmCheckout(r.Context(), req.CheckoutID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CheckoutFromModel(session))
}

// GetCheckout handles GET /api/v1/payments/checkout/{id}
func (h *PaymentHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	session, err := h.paymentService.GetCheckout(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.CheckoutFromModel(session))
}
