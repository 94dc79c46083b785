// Package api is the thin HTTP/WS surface consumers use to admit
// themselves, query canvas state, and subscribe to live updates. It is a
// deliberately minimal consumer of the fan-out bus (spec §4.8) and
// admission service (spec §4.7); the full collaborative-canvas query
// experience is an external concern.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"pixelcanva-indexer/internal/eventbus"
)

// Hub fans out bus events to connected websocket clients.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*client
	bus     *eventbus.Bus
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// NewHub builds a Hub and subscribes it to pixel.placed and
// canvas.resized events on bus.
func NewHub(bus *eventbus.Bus) *Hub {
	h := &Hub{clients: make(map[string]*client), bus: bus}

	pixelCh := make(chan eventbus.Event, 256)
	resizeCh := make(chan eventbus.Event, 256)
	bus.Subscribe(eventbus.EventPixelPlaced, pixelCh)
	bus.Subscribe(eventbus.EventCanvasResized, resizeCh)

	go h.forward(pixelCh)
	go h.forward(resizeCh)

	return h
}

func (h *Hub) forward(ch <-chan eventbus.Event) {
	for evt := range ch {
		payload, err := json.Marshal(struct {
			Type string      `json:"type"`
			Data interface{} `json:"data"`
		}{Type: evt.Type, Data: evt.Data})
		if err != nil {
			log.Printf("api: marshal event for broadcast: %v", err)
			continue
		}
		h.broadcast(payload)
	}
}

func (h *Hub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		select {
		case c.send <- payload:
		default:
			close(c.send)
			delete(h.clients, id)
		}
	}
}

// ServeWS upgrades an HTTP request to a websocket connection and streams
// fan-out bus events to it until the client disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("api: websocket upgrade error: %v", err)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, 256)}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, c.id)
			h.mu.Unlock()
			conn.Close()
		}()
		for msg := range c.send {
			w, err := conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(msg)
			w.Close()
		}
		conn.WriteMessage(websocket.CloseMessage, []byte{})
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
