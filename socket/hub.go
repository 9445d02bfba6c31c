package socket

import (
	"encoding/json"
	"inkwell/internal/session"
	"inkwell/pkg/logger"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub fans auth-state events out to every websocket a user has open.
type Hub struct {
	Subscribers map[string]map[*Client]bool // userID -> clients
	Events      chan session.Event
	Register    chan *Client
	Unregister  chan *Client
	done        chan struct{}
	mu          sync.Mutex
}

type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	UserID string
	Send   chan []byte
}

func NewHub() *Hub {
	return &Hub{
		Subscribers: make(map[string]map[*Client]bool),
		Events:      make(chan session.Event, 64),
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
		done:        make(chan struct{}),
	}
}

// Publish hands an event to the hub loop. It never blocks the caller; events
// are dropped with a warning if the hub is saturated.
func (h *Hub) Publish(evt session.Event) {
	select {
	case h.Events <- evt:
	default:
		logger.Sugar.Warnf("Auth event %s for user %s dropped: hub is busy", evt.Type, evt.UserID)
	}
}

// Stop ends Run and disconnects every subscriber.
func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if h.Subscribers[client.UserID] == nil {
				h.Subscribers[client.UserID] = make(map[*Client]bool)
			}
			h.Subscribers[client.UserID][client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case evt := <-h.Events:
			payload, err := json.Marshal(evt)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling auth event: %v", err)
				continue
			}

			h.mu.Lock()
			clientsToSend := make([]*Client, 0, len(h.Subscribers[evt.UserID]))
			for client := range h.Subscribers[evt.UserID] {
				clientsToSend = append(clientsToSend, client)
			}
			h.mu.Unlock()

			for _, client := range clientsToSend {
				select {
				case client.Send <- payload:
				default:
					// The client is lagging; drop it rather than block the hub.
					logger.Sugar.Warnf("Client %s's send buffer is full. Unregistering.", client.UserID)
					h.mu.Lock()
					h.remove(client)
					h.mu.Unlock()
				}
			}

		case <-h.done:
			h.mu.Lock()
			for _, clients := range h.Subscribers {
				for client := range clients {
					h.remove(client)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

// SubscriberCount returns the number of open sockets for a user.
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Subscribers[userID])
}

// remove must be called with h.mu held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.Subscribers[client.UserID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.Subscribers, client.UserID)
	}
}
