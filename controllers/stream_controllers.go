package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/tablewise/reserve-app/realtime"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// controlFrame adalah pesan kontrol dari client untuk join/leave channel restoran
type controlFrame struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// StreamHandler -> endpoint WebSocket untuk notifikasi real-time.
// Client bisa mengirim {"action":"join","channel":"restaurant_<id>"} untuk
// berlangganan event satu restoran; event global diterima semua client.
func StreamHandler(c *gin.Context) {
	roleInterface, exists := c.Get("role")
	if !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	role := roleInterface.(string)

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	realtime.RegisterClient(ws, role)

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			break
		}

		var frame controlFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		switch frame.Action {
		case "join":
			realtime.JoinChannel(ws, frame.Channel)
		case "leave":
			realtime.LeaveChannel(ws, frame.Channel)
		}
	}

	realtime.UnregisterClient(ws)
}
