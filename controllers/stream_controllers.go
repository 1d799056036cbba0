package controllers

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/bakery-app/events"
	"github.com/yeremiapane/bakery-app/utils"
)

type StreamController struct {
	Hub *events.Hub
}

func NewStreamController(hub *events.Hub) *StreamController {
	return &StreamController{Hub: hub}
}

// sseConn -> satu stream SSE. Frame data "data: <json>\n\n", heartbeat
// berupa frame komentar (tanpa prefix data:) yang diabaikan consumer.
type sseConn struct {
	writer  gin.ResponseWriter
	flusher http.Flusher
	done    chan struct{}
	once    sync.Once
}

func (s *sseConn) WriteFrame(data []byte) error {
	if _, err := fmt.Fprintf(s.writer, "data: %s\n\n", data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *sseConn) WriteHeartbeat() error {
	if _, err := fmt.Fprint(s.writer, ": ping\n\n"); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *sseConn) Close() error {
	s.once.Do(func() {
		close(s.done)
	})
	return nil
}

// SSEHandler -> endpoint stream utama untuk device produksi. Koneksi
// dipegang sampai device menutup stream dari sisinya.
func (sc *StreamController) SSEHandler(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		utils.RespondError(c, http.StatusInternalServerError, ErrStreamUnsupported)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	conn := &sseConn{
		writer:  c.Writer,
		flusher: flusher,
		done:    make(chan struct{}),
	}

	client := sc.Hub.Register(conn)

	// Tahan handler sampai device memutus koneksi, atau hub menutup
	// stream ini karena gagal tulis
	select {
	case <-c.Request.Context().Done():
	case <-conn.done:
	}

	sc.Hub.Deregister(client.ID)

	// Write pump menutup conn setelah antriannya habis; ResponseWriter
	// tidak boleh disentuh lagi begitu handler ini return
	<-conn.done

	utils.InfoLogger.Printf("Device %s disconnected", client.ID)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsConn -> transport websocket di hub yang sama (dipakai device lama)
type wsConn struct {
	ws *websocket.Conn
}

func (w *wsConn) WriteFrame(data []byte) error {
	return w.ws.WriteMessage(websocket.TextMessage, data)
}

func (w *wsConn) WriteHeartbeat() error {
	return w.ws.WriteMessage(websocket.PingMessage, nil)
}

func (w *wsConn) Close() error {
	return w.ws.Close()
}

// WSHandler -> endpoint websocket; event yang sama, framing berbeda
func (sc *StreamController) WSHandler(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := sc.Hub.Register(&wsConn{ws: ws})

	// Baca pesan hanya untuk mendeteksi disconnect
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	sc.Hub.Deregister(client.ID)
	utils.InfoLogger.Printf("Device %s disconnected", client.ID)
}
