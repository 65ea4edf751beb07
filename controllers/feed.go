package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chocobliss/services"
)

const (
	feedSendBuffer = 32
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = feedPongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// OrderFeed pushes order events to connected admin dashboards.
type OrderFeed struct {
	mu      sync.Mutex
	clients map[*feedClient]struct{}
	closed  bool
}

func NewOrderFeed() *OrderFeed {
	return &OrderFeed{clients: make(map[*feedClient]struct{})}
}

// Serve upgrades the request and keeps the connection until the client
// goes away.
func (f *OrderFeed) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &feedClient{conn: conn, send: make(chan []byte, feedSendBuffer)}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		_ = conn.Close()
		return
	}
	f.clients[c] = struct{}{}
	f.mu.Unlock()

	go f.writeLoop(c)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	f.drop(c)
}

func (f *OrderFeed) writeLoop(c *feedClient) {
	ticker := time.NewTicker(feedPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drop removes c and closes its send queue. Safe to call more than once.
func (f *OrderFeed) drop(c *feedClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clients[c]; ok {
		delete(f.clients, c)
		close(c.send)
	}
}

// OrderChanged broadcasts ev. Clients whose queue is full are disconnected.
func (f *OrderFeed) OrderChanged(ev services.OrderEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("order feed: encode %s: %v", ev.Type, err)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for c := range f.clients {
		select {
		case c.send <- data:
		default:
			delete(f.clients, c)
			close(c.send)
		}
	}
}

// Len reports the number of connected clients.
func (f *OrderFeed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

// Close disconnects every client and refuses new ones.
func (f *OrderFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for c := range f.clients {
		delete(f.clients, c)
		close(c.send)
	}
}
