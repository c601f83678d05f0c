package command

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Follow the live activity and notification stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		if token == "" {
			return fmt.Errorf("--token is required")
		}
		u, err := liveFeedURL(apiURL, token)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "🔌 Connecting to live feed...")
		conn, _, err := websocket.DefaultDialer.Dial(u, nil)
		if err != nil {
			return fmt.Errorf("connection failed: %w", err)
		}
		defer conn.Close()
		fmt.Fprintln(cmd.OutOrStdout(), "✅ Connected! Press Ctrl+C to stop.")

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)

		done := make(chan error, 1)
		go func() {
			for {
				_, raw, err := conn.ReadMessage()
				if err != nil {
					done <- err
					return
				}
				printLiveMessage(cmd.OutOrStdout(), raw)
			}
		}()

		select {
		case <-interrupt:
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		case err := <-done:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
	},
}

// liveFeedURL turns the API base URL into the websocket endpoint.
func liveFeedURL(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid api url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/feed/live"
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}

type liveMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func printLiveMessage(w io.Writer, raw []byte) {
	var msg liveMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}

	switch msg.Type {
	case "activity":
		var a struct {
			Username string `json:"username"`
			Type     string `json:"type"`
			Title    string `json:"title"`
		}
		json.Unmarshal(msg.Data, &a)
		color.New(color.FgCyan).Fprintf(w, "[%s] %s %s\n", a.Username, strings.ReplaceAll(a.Type, "_", " "), a.Title)

	case "notification":
		var n struct {
			Title   string `json:"title"`
			Message string `json:"message"`
		}
		json.Unmarshal(msg.Data, &n)
		color.New(color.FgYellow).Fprintf(w, "🔔 %s: %s\n", n.Title, n.Message)

	case "system":
		color.New(color.FgHiBlack).Fprintf(w, "%s\n", msg.Data)
	}
}
