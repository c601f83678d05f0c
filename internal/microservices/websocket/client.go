package websocket

import (
	"sync"
	"time"

	"cinetrack/internal/logging"

	"github.com/gorilla/websocket"
)

const ( // ping pong heartbeat keeps idle feed sockets alive
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = (PongWait * 9) / 10
	MaxMessageSize = 512
	sendBuffer     = 64
)

// Client is one open feed socket. A user may hold several.
type Client struct {
	ID          string
	UserID      string
	UserName    string
	Conn        *websocket.Conn
	SendChannel chan []byte
	Hub         *Hub

	sendMu sync.Mutex
	closed bool
}

func NewClient(id, userID, userName string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:          id,
		UserID:      userID,
		UserName:    userName,
		Conn:        conn,
		SendChannel: make(chan []byte, sendBuffer),
		Hub:         hub,
	}
}

// ReadPump drains client frames; the feed is server-push so only pings are answered.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(MaxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(PongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(PongWait))
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Warn().Err(err).Str("user_id", c.UserID).Msg("unexpected feed socket close")
			}
			return
		}
		msg, err := MessageFromJSON(data)
		if err != nil || msg.Type != TypePing {
			continue
		}
		if pong, err := NewMessage(TypePong, nil).ToJSON(); err == nil {
			c.SendMessage(pong)
		}
	}
}

// WritePump serializes writes to the connection and sends heartbeats.
func (c *Client) WritePump() {
	ticker := time.NewTicker(PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.SendChannel:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if !ok {
				// hub closed the channel
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage queues payload without blocking and reports whether it was accepted.
func (c *Client) SendMessage(payload []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.SendChannel <- payload:
		return true
	default:
		return false
	}
}

// closeSend closes SendChannel once; WritePump then sends a close frame.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.SendChannel)
	}
}
