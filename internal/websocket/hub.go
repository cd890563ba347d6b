package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"crowdfund-be/internal/model"
	"crowdfund-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// clusterChannel carries notification envelopes between instances.
// target_user_id "*" means fan out to every connected client.
const clusterChannel = "cluster_events"

type Hub struct {
	// A user may hold several live connections (multi-device).
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Optional Redis connection for cross-instance delivery.
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

// Run owns the client map and is the only place a Send channel is
// closed. A client enqueued on unregister more than once is closed
// exactly once, since the second pass no longer finds it in the map.
func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToCluster()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
					h.logger.Info("Hub", "Last client for user disconnected", map[string]interface{}{"user_id": client.UserID})
				}
			}
			h.mu.Unlock()
		}
	}
}

func envelope(notification model.Notification) []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": notification,
	})
	return data
}

// Broadcast delivers a notification to every connected client on every
// instance. Used for platform-wide events such as a project reaching
// its funding target.
func (h *Hub) Broadcast(notification model.Notification) {
	data := envelope(notification)
	h.deliverLocal(nil, data)
	h.publishToCluster("*", data)
}

// Send delivers a notification to a single user across all of their
// devices. The cluster publish happens unconditionally so instances
// holding other sessions of the same user deliver too.
func (h *Hub) Send(userID uuid.UUID, notification model.Notification) {
	data := envelope(notification)
	h.deliverLocal(&userID, data)
	h.publishToCluster(userID.String(), data)
}

func (h *Hub) publishToCluster(target string, data []byte) {
	if h.rdb == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"target_user_id": target,
		"message":        data,
	})
	h.rdb.Publish(context.Background(), clusterChannel, payload)
}

func (h *Hub) subscribeToCluster() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			TargetUserID string          `json:"target_user_id"`
			Message      json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("cluster message parse error: %v", err)
			continue
		}

		if payload.TargetUserID == "*" {
			h.deliverLocal(nil, payload.Message)
			continue
		}

		uid, err := uuid.Parse(payload.TargetUserID)
		if err != nil {
			continue
		}
		h.deliverLocal(&uid, payload.Message)
	}
}

// deliverLocal pushes a raw message to local clients. A nil target
// means every client. A client whose buffer is full gets dropped, but
// never here: Run is the single closer of Send channels, and handing
// it the slow clients only after the read lock is released keeps the
// unregister send from blocking against Run's write lock.
func (h *Hub) deliverLocal(target *uuid.UUID, message []byte) {
	var slow []*Client

	h.mu.RLock()
	for userID, clients := range h.clients {
		if target != nil && userID != *target {
			continue
		}
		for _, client := range clients {
			select {
			case client.Send <- message:
			default:
				slow = append(slow, client)
			}
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"user_id": client.UserID})
		h.unregister <- client
	}
}
