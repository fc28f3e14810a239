package realtime

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Nama event yang disiarkan ke client
const (
	EventReservationCreated       = "reservationCreated"
	EventReservationCancelled     = "reservationCancelled"
	EventReservationUpdated       = "reservationUpdated"
	EventReservationStatusChanged = "reservationStatusChanged"
	EventRestaurantCapacityChange = "restaurantCapacityChanged"
	EventPaymentUpdated           = "paymentUpdated"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	role     string
	channels map[string]bool
}

// Hub menampung semua koneksi websocket beserta channel yang di-join.
// Channel kosong ("") berarti siaran global ke semua client.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
}

var (
	hub   *Hub
	hubMu sync.RWMutex
)

// Init mengaktifkan hub. Sebelum Init dipanggil, Publish adalah no-op
// yang mengembalikan false.
func Init() {
	hubMu.Lock()
	defer hubMu.Unlock()
	if hub == nil {
		hub = &Hub{clients: make(map[*websocket.Conn]*client)}
	}
}

// Shutdown menutup semua koneksi dan mengembalikan hub ke mode no-op
func Shutdown() {
	hubMu.Lock()
	h := hub
	hub = nil
	hubMu.Unlock()

	if h == nil {
		return
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.clients {
		conn.Close()
	}
	h.clients = make(map[*websocket.Conn]*client)
}

func activeHub() *Hub {
	hubMu.RLock()
	defer hubMu.RUnlock()
	return hub
}

// RestaurantChannel -> nama channel per restoran, mis. "restaurant_42"
func RestaurantChannel(restaurantID uint) string {
	return fmt.Sprintf("restaurant_%d", restaurantID)
}

// RegisterClient menambahkan koneksi baru dengan role-nya
func RegisterClient(conn *websocket.Conn, role string) {
	h := activeHub()
	if h == nil {
		return
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = &client{role: role, channels: make(map[string]bool)}
}

// UnregisterClient melepaskan koneksi dan menutupnya
func UnregisterClient(conn *websocket.Conn) {
	h := activeHub()
	if h == nil {
		conn.Close()
		return
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

// JoinChannel mendaftarkan koneksi ke sebuah channel (mis. restaurant_<id>)
func JoinChannel(conn *websocket.Conn, channel string) {
	h := activeHub()
	if h == nil || channel == "" {
		return
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if cl, ok := h.clients[conn]; ok {
		cl.channels[channel] = true
	}
}

// LeaveChannel mencabut koneksi dari sebuah channel
func LeaveChannel(conn *websocket.Conn, channel string) {
	h := activeHub()
	if h == nil {
		return
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if cl, ok := h.clients[conn]; ok {
		delete(cl.channels, channel)
	}
}

// ClientCount -> jumlah koneksi aktif
func ClientCount() int {
	h := activeHub()
	if h == nil {
		return 0
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// ChannelSubscribers -> jumlah koneksi yang join sebuah channel
func ChannelSubscribers(channel string) int {
	h := activeHub()
	if h == nil {
		return 0
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	count := 0
	for _, cl := range h.clients {
		if cl.channels[channel] {
			count++
		}
	}
	return count
}

// Publish mengirim payload ke semua subscriber channel, atau ke semua client
// jika channel kosong. Nilai balik true hanya berarti pengiriman dicoba,
// bukan bahwa ada client yang menerima. Fungsi ini tidak pernah panic dan
// tidak pernah mengembalikan error: kegagalan hanya dicatat di log, sehingga
// operasi bisnis pemanggil tidak ikut gagal.
func Publish(event string, payload interface{}, channel string) (attempted bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Warning: publish %s panicked: %v", event, r)
			attempted = false
		}
	}()

	h := activeHub()
	if h == nil {
		log.Printf("Warning: publish %s skipped, realtime hub not initialized", event)
		return false
	}

	data, err := json.Marshal(Message{Event: event, Data: payload})
	if err != nil {
		log.Printf("Warning: error marshaling %s event: %v", event, err)
		return false
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, cl := range h.clients {
		if channel != "" && !cl.channels[channel] {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Warning: error sending %s to client (role=%s): %v", event, cl.role, err)
			continue
		}
	}
	return true
}
