package request

// CreateGuestRequest is the request body for creating a guest account
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// RegisterRequest is the request body for registering an account
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	Mode string `json:"mode"`
}

// CreateCheckoutRequest is the request body for opening a deposit checkout
type CreateCheckoutRequest struct {
	Amount int `json:"amount"`
}

// CheckoutWebhookRequest is the payment provider's completion callback body
type CheckoutWebhookRequest struct {
	CheckoutID string `json:"checkout_id"`
}
