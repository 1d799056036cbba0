package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yeremiapane/bakery-app/utils"
)

// DefaultHeartbeatInterval -> jarak antar frame heartbeat supaya koneksi
// idle tidak diputus proxy/load balancer.
const DefaultHeartbeatInterval = 30 * time.Second

// sendBufferSize -> buffer antrian frame per device. Device lambat yang
// antriannya penuh kehilangan frame (delivery best-effort, tanpa replay).
const sendBufferSize = 32

// Conn adalah satu stream device produksi. Implementasi: SSE dan websocket.
type Conn interface {
	// WriteFrame mengirim satu frame data (JSON)
	WriteFrame(data []byte) error
	// WriteHeartbeat mengirim frame no-op (SSE comment / ws ping)
	WriteHeartbeat() error
	Close() error
}

type frame struct {
	heartbeat bool
	payload   []byte
}

// Client -> satu device yang terdaftar di hub
type Client struct {
	ID   string
	conn Conn
	send chan frame
}

// Hub menampung semua device produksi yang terkoneksi dan menyiarkan
// event ke semuanya. Registry ini process-local; untuk deployment
// multi-instance pasang Relay (redis) supaya frame menyeberang proses.
type Hub struct {
	mutex    sync.Mutex
	clients  map[string]*Client
	interval time.Duration
	relay    *Relay
	stop     chan struct{}
	wg       sync.WaitGroup
}

func NewHub() *Hub {
	return &Hub{
		clients:  make(map[string]*Client),
		interval: DefaultHeartbeatInterval,
	}
}

// SetHeartbeatInterval harus dipanggil sebelum Start
func (h *Hub) SetHeartbeatInterval(d time.Duration) {
	h.interval = d
}

// SetRelay memasang relay redis untuk fan-out lintas proses
func (h *Hub) SetRelay(r *Relay) {
	h.relay = r
}

// Start menjalankan loop heartbeat dan (jika ada) subscriber relay
func (h *Hub) Start() {
	h.stop = make(chan struct{})

	h.wg.Add(1)
	go h.heartbeatLoop()

	if h.relay != nil {
		h.relay.Subscribe(func(payload []byte) {
			// Frame dari instance lain -> fan-out lokal saja, jangan
			// dipublish balik ke relay (hindari loop)
			h.fanout(payload)
		})
	}
}

// Stop menghentikan heartbeat, relay, dan menutup semua stream
func (h *Hub) Stop() {
	if h.stop != nil {
		close(h.stop)
		h.wg.Wait()
	}
	if h.relay != nil {
		h.relay.Close()
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for id, client := range h.clients {
		delete(h.clients, id)
		close(client.send)
	}
}

// Register mendaftarkan satu device, mengirim frame handshake berisi
// identifier ephemeral, dan memulai write pump untuk device tersebut.
func (h *Hub) Register(conn Conn) *Client {
	client := &Client{
		ID:   uuid.NewString(),
		conn: conn,
		send: make(chan frame, sendBufferSize),
	}

	handshake, err := json.Marshal(Message{
		Event:     EventConnected,
		ClientID:  client.ID,
		Timestamp: time.Now(),
	})
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling handshake for device %s: %v", client.ID, err)
	}

	h.mutex.Lock()
	h.clients[client.ID] = client
	if err == nil {
		client.send <- frame{payload: handshake}
	}
	h.mutex.Unlock()

	go h.writePump(client)

	utils.InfoLogger.Printf("Device %s connected (%d active)", client.ID, h.ClientCount())
	return client
}

// Deregister melepaskan satu device. Aman dipanggil dua kali
// (disconnect normal dan write failure bisa balapan).
func (h *Hub) Deregister(id string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	client, exists := h.clients[id]
	if !exists {
		return
	}
	delete(h.clients, id)
	close(client.send)
}

// ClientCount -> jumlah device aktif
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Broadcast menyiarkan satu event ke semua device. Timestamp diisi di
// sini (waktu broadcast) lalu frame diteruskan ke relay jika terpasang.
func (h *Hub) Broadcast(msg Message) {
	msg.Timestamp = time.Now()

	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling event %s: %v", msg.Event, err)
		return
	}

	h.fanout(data)

	if h.relay != nil {
		if err := h.relay.Publish(data); err != nil {
			utils.ErrorLogger.Printf("Error publishing event to relay: %v", err)
		}
	}
}

// fanout -> antrikan frame ke semua device lokal
func (h *Hub) fanout(data []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for id, client := range h.clients {
		select {
		case client.send <- frame{payload: data}:
		default:
			// antrian penuh, frame di-drop untuk device ini
			utils.ErrorLogger.Printf("Device %s send queue full, dropping frame", id)
		}
	}
}

// heartbeatLoop -> kirim frame no-op ke semua device tiap interval
func (h *Hub) heartbeatLoop() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.mutex.Lock()
			for _, client := range h.clients {
				select {
				case client.send <- frame{heartbeat: true}:
				default:
				}
			}
			h.mutex.Unlock()
		case <-h.stop:
			return
		}
	}
}

// writePump -> satu goroutine per device; menulis frame dari antrian ke
// stream. Gagal tulis pada satu device tidak boleh mengganggu device
// lain: cukup log, deregister device itu, dan tutup koneksinya.
func (h *Hub) writePump(client *Client) {
	for f := range client.send {
		var err error
		if f.heartbeat {
			err = client.conn.WriteHeartbeat()
		} else {
			err = client.conn.WriteFrame(f.payload)
		}
		if err != nil {
			utils.ErrorLogger.Printf("Error writing to device %s: %v", client.ID, err)
			h.Deregister(client.ID)
			break
		}
	}
	client.conn.Close()

	// Buang sisa frame supaya fanout tidak menganggap antrian penuh
	for range client.send {
	}
}
