package hub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ladinawan-01/LiveChat/internal/bus"
	"github.com/Ladinawan-01/LiveChat/internal/config"
	"github.com/Ladinawan-01/LiveChat/internal/domain"
)

func newTestHub() (*Hub, *bus.Bus) {
	b := bus.New()
	h := NewHub(config.WebSocketConfig{})
	h.Attach(b)
	return h, b
}

func addClient(h *Hub, id string) *Client {
	c := NewClient(id, h, nil, config.WebSocketConfig{})
	h.Register(c)
	return c
}

func queued(t *testing.T, c *Client) []domain.EventMessage {
	t.Helper()
	var out []domain.EventMessage
	for {
		select {
		case data := <-c.Send:
			// domain.EventMessage.Payload is an interface, which
			// encoding/json cannot unmarshal into; decode the frame
			// with a raw payload instead.
			var env struct {
				Type    string          `json:"type"`
				Payload json.RawMessage `json:"payload"`
			}
			require.NoError(t, json.Unmarshal(data, &env))
			out = append(out, domain.EventMessage{Type: env.Type})
		default:
			return out
		}
	}
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	h, b := newTestHub()
	c1 := addClient(h, "c1")
	c2 := addClient(h, "c2")

	b.Broadcast(domain.RoomCreated{Room: domain.Room{Name: "team"}})

	for _, c := range []*Client{c1, c2} {
		frames := queued(t, c)
		require.Len(t, frames, 1)
		assert.Equal(t, domain.EventRoomCreated, frames[0].Type)
	}
}

func TestTargetedDeliverySkipsOtherClients(t *testing.T) {
	h, b := newTestHub()
	c1 := addClient(h, "c1")
	c2 := addClient(h, "c2")

	b.PublishTo(domain.NewMessage{Message: domain.Message{Text: "hi"}}, []string{"c2"})

	assert.Empty(t, queued(t, c1))
	assert.Len(t, queued(t, c2), 1)
}

func TestDeliveryToUnknownTargetIsDropped(t *testing.T) {
	h, b := newTestHub()
	c1 := addClient(h, "c1")

	b.PublishTo(domain.NewMessage{}, []string{"gone"})
	assert.Empty(t, queued(t, c1))
}

func TestUnregisterClosesSendQueueOnce(t *testing.T) {
	h, _ := newTestHub()
	c := addClient(h, "c1")
	require.Equal(t, 1, h.ClientCount())

	h.Unregister(c)
	h.Unregister(c)
	assert.Equal(t, 0, h.ClientCount())

	_, open := <-c.Send
	assert.False(t, open)
}

func TestFullQueueDropsFrameInsteadOfBlocking(t *testing.T) {
	h, b := newTestHub()
	c := addClient(h, "c1")

	for i := 0; i < cap(c.Send)+10; i++ {
		b.PublishTo(domain.NewMessage{}, []string{"c1"})
	}
	assert.Len(t, c.Send, cap(c.Send))
}
