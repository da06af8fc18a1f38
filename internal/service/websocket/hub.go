package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"docdetect/internal/logger"
)

const writeWait = 5 * time.Second

// PredictionEvent summarizes one successful prediction for live viewers.
type PredictionEvent struct {
	RequestID  string         `json:"request_id"`
	Filename   string         `json:"filename"`
	Kind       string         `json:"kind"`
	TotalCount int            `json:"total_count"`
	Statistics map[string]int `json:"statistics"`
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	Timestamp  time.Time      `json:"timestamp"`
}

type HubService struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *logger.Logger
}

func NewHubService(logger *logger.Logger) *HubService {
	return &HubService{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves register/unregister/broadcast until ctx is done, then closes all viewers.
func (h *HubService) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Viewer connected. Total: %d", total)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Viewer disconnected. Total: %d", total)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				client.SetWriteDeadline(time.Now().Add(writeWait))
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.logger.Warning("Dropping viewer after send error: %v", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Register adds a viewer. It returns false once the hub has stopped.
func (h *HubService) Register(client *websocket.Conn) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *HubService) Unregister(client *websocket.Conn) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues event for every viewer. It never blocks: when the queue is
// full the event is dropped. Nothing is encoded while no viewer is connected.
func (h *HubService) Publish(event PredictionEvent) {
	if h.GetClientCount() == 0 {
		return
	}

	message, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to encode prediction event: %v", err)
		return
	}

	select {
	case h.broadcast <- message:
	default:
		h.logger.Warning("Live feed queue full, dropping event for %s", event.Filename)
	}
}

func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
