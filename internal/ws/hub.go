package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog"

	"go-stockyng/internal/collection"
	"go-stockyng/internal/metrics"
)

// Client is the part of a websocket connection the hub writes to.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Membership ties a client to one topic.
type Membership struct {
	Topic  string
	Client Client
}

// Message is one encoded snapshot for a topic.
type Message struct {
	Topic string
	Data  []byte
}

// Hub fans live collection snapshots out to websocket clients. Each topic is
// fed by exactly one subscription; new clients get the latest snapshot right
// away.
type Hub struct {
	Register   chan Membership
	Unregister chan Membership
	Broadcast  chan Message

	mutex   sync.Mutex
	clients map[string]map[Client]bool
	last    map[string][]byte
	logger  zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		Register:   make(chan Membership),
		Unregister: make(chan Membership),
		Broadcast:  make(chan Message),
		clients:    make(map[string]map[Client]bool),
		last:       make(map[string][]byte),
		logger:     logger,
	}
}

// Run serves the channels until ctx ends, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case m := <-h.Register:
			h.mutex.Lock()
			if h.clients[m.Topic] == nil {
				h.clients[m.Topic] = make(map[Client]bool)
			}
			h.clients[m.Topic][m.Client] = true
			last := h.last[m.Topic]
			h.mutex.Unlock()
			metrics.WebsocketClients.WithLabelValues(m.Topic).Inc()
			h.logger.Debug().Str("topic", m.Topic).Msg("ws client connected")
			if last != nil {
				if err := m.Client.WriteMessage(websocket.TextMessage, last); err != nil {
					h.drop(m.Topic, m.Client)
				}
			}

		case m := <-h.Unregister:
			h.drop(m.Topic, m.Client)

		case msg := <-h.Broadcast:
			h.mutex.Lock()
			h.last[msg.Topic] = msg.Data
			targets := make([]Client, 0, len(h.clients[msg.Topic]))
			for c := range h.clients[msg.Topic] {
				targets = append(targets, c)
			}
			h.mutex.Unlock()
			for _, c := range targets {
				if err := c.WriteMessage(websocket.TextMessage, msg.Data); err != nil {
					h.drop(msg.Topic, c)
				}
			}
		}
	}
}

// Clients returns the number of clients on topic.
func (h *Hub) Clients(topic string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients[topic])
}

func (h *Hub) drop(topic string, c Client) {
	h.mutex.Lock()
	_, ok := h.clients[topic][c]
	delete(h.clients[topic], c)
	h.mutex.Unlock()
	if ok {
		_ = c.Close()
		metrics.WebsocketClients.WithLabelValues(topic).Dec()
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for topic, set := range h.clients {
		for c := range set {
			_ = c.Close()
		}
		metrics.WebsocketClients.WithLabelValues(topic).Sub(float64(len(set)))
		delete(h.clients, topic)
	}
}

// Snapshot is the frame pushed to clients.
type Snapshot struct {
	Collection string `json:"collection"`
	Items      any    `json:"items"`
}

// Feed forwards every snapshot of a live subscription to the hub until ctx
// ends or the subscription stops. view converts records to what clients may
// see.
func Feed[T any, V any](ctx context.Context, h *Hub, topic string,
	live func(context.Context) (*collection.Subscription[T], error), view func(T) V) error {
	sub, err := live(ctx)
	if err != nil {
		return err
	}
	defer sub.Cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sub.Err():
			h.logger.Warn().Err(err).Str("topic", topic).Msg("live snapshot failed")
		case items, ok := <-sub.Snapshots():
			if !ok {
				return nil
			}
			out := make([]V, len(items))
			for i, it := range items {
				out[i] = view(it)
			}
			data, err := json.Marshal(Snapshot{Collection: topic, Items: out})
			if err != nil {
				h.logger.Error().Err(err).Str("topic", topic).Msg("encode snapshot")
				continue
			}
			select {
			case h.Broadcast <- Message{Topic: topic, Data: data}:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
