package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Account:
		o.printAccount(v)
	case AuthResult:
		o.printAuthResult(v)
	case RoomCreated:
		o.printRoomCreated(v)
	case RoomSnapshot:
		o.printRoomSnapshot(v)
	case Checkout:
		o.printCheckout(v)
	case TransactionList:
		o.printTransactionList(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Account response type (matches API)
type Account struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Balance     int    `json:"balance"`
	IsGuest     bool   `json:"is_guest"`
}

// AuthResult combines account and token
type AuthResult struct {
	Account      Account `json:"account"`
	SessionToken string  `json:"session_token"`
}

// RoomCreated response type
type RoomCreated struct {
	Key  string `json:"key"`
	Mode string `json:"mode"`
}

// RoomMember response type
type RoomMember struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsHost      bool   `json:"is_host"`
	IsBot       bool   `json:"is_bot"`
	Connected   bool   `json:"connected"`
	HasStaked   bool   `json:"has_staked"`
	Stake       int    `json:"stake"`
}

// RoomSnapshot response type
type RoomSnapshot struct {
	Key     string       `json:"key"`
	Status  string       `json:"status"`
	Mode    string       `json:"mode"`
	Pot     int          `json:"pot"`
	Members []RoomMember `json:"members"`
}

// Checkout response type
type Checkout struct {
	ID          string `json:"id"`
	Amount      int    `json:"amount"`
	Status      string `json:"status"`
	RedirectURL string `json:"redirect_url"`
}

// Transaction response type
type Transaction struct {
	Kind         string `json:"kind"`
	Amount       int    `json:"amount"`
	BalanceAfter int    `json:"balance_after"`
	RoomKey      string `json:"room_key"`
	CreatedAt    string `json:"created_at"`
}

// TransactionList response type
type TransactionList struct {
	Transactions []Transaction `json:"transactions"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printAccount(a Account) {
	guestStr := "no"
	if a.IsGuest {
		guestStr = "yes"
	}
	fmt.Printf("Account: %s (%s)\n", a.DisplayName, a.ID)
	fmt.Printf("Balance: %d\n", a.Balance)
	fmt.Printf("Guest: %s\n", guestStr)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printAccount(a.Account)
	fmt.Printf("Token: %s\n", a.SessionToken)
}

func (o *Output) printRoomCreated(r RoomCreated) {
	fmt.Printf("Room: %s\n", r.Key)
	fmt.Printf("Mode: %s\n", r.Mode)
}

func (o *Output) printRoomSnapshot(r RoomSnapshot) {
	fmt.Printf("Room: %s\n", r.Key)
	fmt.Printf("Status: %s\n", r.Status)
	fmt.Printf("Mode: %s\n", r.Mode)
	fmt.Printf("Pot: %d\n", r.Pot)
	fmt.Printf("Members (%d):\n", len(r.Members))
	for _, m := range r.Members {
		tags := ""
		if m.IsHost {
			tags += " [host]"
		}
		if m.IsBot {
			tags += " [bot]"
		}
		if !m.Connected {
			tags += " [away]"
		}
		stakeStr := ""
		if m.HasStaked {
			stakeStr = fmt.Sprintf(" staked %d", m.Stake)
		}
		fmt.Printf("  - %s (%s)%s%s\n", m.DisplayName, m.ID, tags, stakeStr)
	}
}

func (o *Output) printCheckout(c Checkout) {
	fmt.Printf("Checkout: %s\n", c.ID)
	fmt.Printf("Amount: %d\n", c.Amount)
	fmt.Printf("Status: %s\n", c.Status)
	if c.RedirectURL != "" {
		fmt.Printf("Pay at: %s\n", c.RedirectURL)
	}
}

func (o *Output) printTransactionList(l TransactionList) {
	if len(l.Transactions) == 0 {
		fmt.Println("No transactions")
		return
	}
	for _, t := range l.Transactions {
		room := ""
		if t.RoomKey != "" {
			room = " room " + t.RoomKey
		}
		fmt.Printf("%s  %-8s %5d  balance %d%s\n", t.CreatedAt, t.Kind, t.Amount, t.BalanceAfter, room)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
