// Package ws pushes availability and booking updates to connected
// clients. Each client subscribes for a set of player ids and receives
// full snapshots for those players; a snapshot replaces everything the
// client holds for the covered players.
package ws

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/mauv0809/courtside/internal/availability"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// Message is the wire envelope sent to clients.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	store      availability.Store
	feed       *availability.Feed
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan Message
	done        chan struct{}
	playerIDs   []string
	sub         <-chan availability.Snapshot
	unsubscribe func()
}

// New creates a new Hub instance with injected dependencies
func New(store availability.Store, feed *availability.Feed) *Hub {
	return &Hub{
		store:      store,
		feed:       feed,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Start begins the hub's main loop in a goroutine
func (h *Hub) Start() {
	go h.run()
}

// run handles client registration/unregistration and message broadcasting
func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Debug("Client connected", "totalClients", len(h.clients), "players", client.playerIDs)

			// Send the authoritative current state to the new client,
			// then bridge its feed subscription into its send channel.
			go client.streamSnapshots()

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.unsubscribe()
				// Closing done, not send, stops the pumps; senders
				// racing the shutdown see done and drop the message.
				close(client.done)
			}
			h.mutex.Unlock()
			log.Debug("Client disconnected", "totalClients", len(h.clients))

		case message := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's send channel is full, unregister
					go func(c *Client) {
						h.unregister <- c
					}(client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// BroadcastMessage sends a message to all connected clients
func (h *Hub) BroadcastMessage(msgType string, payload any) {
	h.broadcast <- Message{
		Type:    msgType,
		Payload: payload,
	}
}

// BroadcastSlotsChanged tells every client the free-slot set changed
// and must be re-fetched.
func (h *Hub) BroadcastSlotsChanged() {
	h.BroadcastMessage("slots_changed", nil)
}

// streamSnapshots sends the client an initial snapshot and then relays
// every feed snapshot covering its players until its subscription is
// cancelled on unregister.
func (c *Client) streamSnapshots() {
	if c.sub == nil {
		return
	}

	snapshot, err := c.hub.store.SnapshotForPlayers(c.playerIDs)
	if err != nil {
		log.Error("Failed to load initial availability snapshot", "error", err)
	} else {
		c.trySend(Message{Type: "availability_snapshot", Payload: snapshot})
	}

	for snapshot := range c.sub {
		c.trySend(Message{Type: "availability_snapshot", Payload: snapshot})
	}
}

// trySend drops the message rather than blocking the feed on a slow or
// unregistered client; the hub's broadcast path evicts slow clients
// eventually.
func (c *Client) trySend(msg Message) {
	select {
	case c.send <- msg:
	case <-c.done:
	default:
	}
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug("WebSocket error", "error", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err == nil {
			log.Debug("Received message", "type", msg.Type)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			msgBytes, _ := json.Marshal(message)
			w.Write(msgBytes)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs handles websocket requests from clients. The players query
// parameter selects which players' availability the client follows.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:         h,
		conn:        conn,
		send:        make(chan Message, 256),
		done:        make(chan struct{}),
		playerIDs:   parsePlayerIDs(r.URL.Query().Get("players")),
		unsubscribe: func() {},
	}
	if len(client.playerIDs) > 0 {
		client.sub, client.unsubscribe = h.feed.Subscribe(client.playerIDs)
	}
	h.register <- client

	// Allow collection of memory referenced by the caller by doing all work in new goroutines
	go client.writePump()
	go client.readPump()
}

func parsePlayerIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
