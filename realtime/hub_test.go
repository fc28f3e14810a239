package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// dialTestClient membuka server + koneksi websocket yang terdaftar di hub
func dialTestClient(t *testing.T, role string) (*websocket.Conn, func()) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		RegisterClient(ws, role)
		for {
			_, raw, err := ws.ReadMessage()
			if err != nil {
				break
			}
			var frame struct {
				Action  string `json:"action"`
				Channel string `json:"channel"`
			}
			if err := json.Unmarshal(raw, &frame); err != nil {
				continue
			}
			switch frame.Action {
			case "join":
				JoinChannel(ws, frame.Channel)
			case "leave":
				LeaveChannel(ws, frame.Channel)
			}
		}
	}))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("failed to dial test websocket: %v", err)
	}

	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	assert.NoError(t, err)

	var msg Message
	assert.NoError(t, json.Unmarshal(raw, &msg))
	return msg
}

func TestPublishBeforeInitIsNoop(t *testing.T) {
	Shutdown()

	ok := Publish(EventReservationCreated, map[string]int{"id": 1}, "")
	assert.False(t, ok)
	assert.Equal(t, 0, ClientCount())
}

func TestPublishGlobalReachesAllClients(t *testing.T) {
	Init()
	defer Shutdown()

	conn, cleanup := dialTestClient(t, "user")
	defer cleanup()

	// Tunggu registrasi koneksi di sisi server
	assert.Eventually(t, func() bool { return ClientCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	ok := Publish(EventReservationCreated, map[string]int{"id": 42}, "")
	assert.True(t, ok)

	msg := readEvent(t, conn)
	assert.Equal(t, EventReservationCreated, msg.Event)
}

func TestPublishChannelOnlyReachesSubscribers(t *testing.T) {
	Init()
	defer Shutdown()

	subscriber, cleanupA := dialTestClient(t, "owner")
	defer cleanupA()
	outsider, cleanupB := dialTestClient(t, "user")
	defer cleanupB()

	assert.Eventually(t, func() bool { return ClientCount() == 2 },
		2*time.Second, 10*time.Millisecond)

	// Hanya subscriber yang join channel restoran
	channel := RestaurantChannel(7)
	assert.NoError(t, subscriber.WriteJSON(map[string]string{
		"action":  "join",
		"channel": channel,
	}))
	assert.Eventually(t, func() bool { return ChannelSubscribers(channel) == 1 },
		2*time.Second, 10*time.Millisecond)

	ok := Publish(EventReservationStatusChanged, map[string]int{"id": 7}, channel)
	assert.True(t, ok)

	msg := readEvent(t, subscriber)
	assert.Equal(t, EventReservationStatusChanged, msg.Event)

	outsider.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	_, _, err := outsider.ReadMessage()
	assert.Error(t, err, "client outside the channel must not receive the event")
}

func TestRestaurantChannelName(t *testing.T) {
	assert.Equal(t, "restaurant_42", RestaurantChannel(42))
}
