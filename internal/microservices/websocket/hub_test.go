package websocket

import (
	"context"
	"testing"
	"time"

	"cinetrack/internal/microservices/http-api/service"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func receive(t *testing.T, c *Client) *Message {
	t.Helper()
	select {
	case payload, ok := <-c.SendChannel:
		require.True(t, ok, "send channel closed")
		var msg Message
		require.NoError(t, json.Unmarshal(payload, &msg))
		return &msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return nil
	}
}

func TestHub_SendToUsersReachesEverySocketOfRecipients(t *testing.T) {
	hub, _ := startHub(t)
	bobPhone := NewClient("c1", "bob", "bob", nil, hub)
	bobLaptop := NewClient("c2", "bob", "bob", nil, hub)
	carol := NewClient("c3", "carol", "carol", nil, hub)
	for _, c := range []*Client{bobPhone, bobLaptop, carol} {
		require.True(t, hub.register(c))
	}

	hub.SendToUsers([]string{"bob"}, service.LiveEvent{Type: service.LiveEventActivity, Data: map[string]string{"title": "Heat"}})

	for _, c := range []*Client{bobPhone, bobLaptop} {
		msg := receive(t, c)
		assert.Equal(t, TypeActivity, msg.Type)
		assert.Equal(t, "Heat", msg.Data.(map[string]any)["title"])
	}
	select {
	case <-carol.SendChannel:
		t.Fatal("carol should not receive bob's event")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, 3, hub.ClientCount())
	assert.True(t, hub.IsOnline("bob"))
}

func TestHub_UnregisterClosesChannel(t *testing.T) {
	hub, _ := startHub(t)
	c := NewClient("c1", "bob", "bob", nil, hub)
	require.True(t, hub.register(c))

	hub.unregister(c)

	assert.Eventually(t, func() bool { return !hub.IsOnline("bob") }, time.Second, 10*time.Millisecond)
	_, ok := <-c.SendChannel
	assert.False(t, ok)
	assert.False(t, c.SendMessage([]byte("late")))
}

func TestHub_SlowClientIsDisconnected(t *testing.T) {
	hub, _ := startHub(t)
	c := NewClient("c1", "bob", "bob", nil, hub)
	require.True(t, hub.register(c))

	for i := 0; i < sendBuffer+1; i++ {
		hub.SendToUsers([]string{"bob"}, service.LiveEvent{Type: service.LiveEventNotification})
	}

	assert.Eventually(t, func() bool { return !hub.IsOnline("bob") }, time.Second, 10*time.Millisecond)
}

func TestHub_ShutdownClosesClientsAndStopsRegistration(t *testing.T) {
	hub, cancel := startHub(t)
	c := NewClient("c1", "bob", "bob", nil, hub)
	require.True(t, hub.register(c))

	cancel()

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
	<-hub.done
	assert.False(t, hub.register(NewClient("c2", "bob", "bob", nil, hub)))
	hub.unregister(c)
}

func TestHub_SendToNobodyIsNoop(t *testing.T) {
	hub := NewHub()
	hub.SendToUsers(nil, service.LiveEvent{Type: service.LiveEventActivity})
	assert.Len(t, hub.deliver, 0)
}

func TestMessageRoundTrip(t *testing.T) {
	raw, err := NewMessage(TypePing, nil).ToJSON()
	require.NoError(t, err)

	msg, err := MessageFromJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, TypePing, msg.Type)
	assert.False(t, msg.Timestamp.IsZero())

	_, err = MessageFromJSON([]byte("{"))
	assert.Error(t, err)
}
