package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var jsonOutput bool
	var interactive bool

	cmd := &cobra.Command{
		Use:   "watch <key>",
		Short: "Connect to a room and stream its events",
		Long: `Connect to the room's websocket and stream events in real-time.

Events include:
  - role: Your seat and host flag
  - room: Full room snapshot
  - pot: Pot changed after a stake or refund
  - content: Driver content (a called card, a board step, a spin)
  - claim_window: A win claim opened the grace window
  - claim_list: Pending claims for the host to resolve
  - verdict: A claim was approved or rejected
  - settlement: Round payouts
  - host_changed: Host migrated to another player

With --interactive, lines read from stdin are sent to the room as raw
JSON commands, e.g. {"type":"stake","amount":10}.

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchRoom(args[0], jsonOutput, interactive)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "Forward stdin lines as commands")

	return cmd
}

// wireEvent is the envelope the server sends on the room websocket
type wireEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func watchRoom(key string, jsonOutput, interactive bool) error {
	wsURL, err := roomSocketURL(cfg.ServerURL, key, cfg.Token)
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connection failed: %w (HTTP %d)", err, resp.StatusCode)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if !jsonOutput {
		fmt.Printf("Connected to room %s\n", key)
	}

	// Handle interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		select {
		case <-sigCh:
		case <-done:
		}
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	if interactive {
		go forwardStdin(conn)
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			close(done)
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				if !jsonOutput {
					fmt.Println("\nDisconnected")
				}
				return nil
			}
			// Interrupt closes the connection under the reader
			if !jsonOutput {
				fmt.Println("\nDisconnected")
			}
			return nil
		}

		var ev wireEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			continue
		}
		printRoomEvent(ev, jsonOutput)
	}
}

// forwardStdin sends each stdin line to the room as a raw JSON command
func forwardStdin(conn *websocket.Conn) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			return
		}
	}
}

// roomSocketURL converts the configured HTTP server URL into the room's
// websocket URL, carrying the session token as a query param
func roomSocketURL(serverURL, key, token string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws/" + key

	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

func printRoomEvent(ev wireEvent, jsonOutput bool) {
	if jsonOutput {
		data, _ := json.Marshal(ev)
		fmt.Println(string(data))
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	display := string(ev.Data)
	if len(display) > 100 {
		display = display[:100] + "..."
	}
	display = strings.ReplaceAll(display, "\n", " ")
	fmt.Printf("[%s] %s: %s\n", timestamp, ev.Type, display)
}
