package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"chirp/auth"
	"chirp/logging"
	"chirp/metrics"
	"chirp/models"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256
)

// Event is the envelope of every message sent to a client.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type delivery struct {
	recipients []string
	msg        []byte
}

// Manager pushes new tweets to the connected users whose home timeline they
// belong to. One goroutine (Start) owns registration and fan-out.
type Manager struct {
	clients    map[string]map[*Client]bool
	deliver    chan delivery
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	log        logging.Logger
}

type Client struct {
	conn    *websocket.Conn
	userID  string
	send    chan []byte
	manager *Manager
}

func NewManager(log logging.Logger) *Manager {
	return &Manager{
		clients:    make(map[string]map[*Client]bool),
		deliver:    make(chan delivery, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Start runs the hub loop until ctx is done.
func (m *Manager) Start(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			m.mu.Lock()
			for _, set := range m.clients {
				for client := range set {
					close(client.send)
				}
			}
			m.clients = make(map[string]map[*Client]bool)
			m.mu.Unlock()
			metrics.LiveClients.Set(0)
			return

		case client := <-m.register:
			m.mu.Lock()
			if m.clients[client.userID] == nil {
				m.clients[client.userID] = make(map[*Client]bool)
			}
			m.clients[client.userID][client] = true
			m.mu.Unlock()
			metrics.LiveClients.Inc()

		case client := <-m.unregister:
			m.remove(client)

		case d := <-m.deliver:
			var slow []*Client
			m.mu.RLock()
			for _, userID := range d.recipients {
				for client := range m.clients[userID] {
					select {
					case client.send <- d.msg:
					default:
						slow = append(slow, client)
					}
				}
			}
			m.mu.RUnlock()
			for _, client := range slow {
				m.remove(client)
			}
		}
	}
}

func (m *Manager) remove(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.clients[client.userID]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(m.clients, client.userID)
	}
	close(client.send)
	metrics.LiveClients.Dec()
}

// TweetCreated implements services.Notifier. It never blocks the caller: when
// the hub is saturated the event is dropped.
func (m *Manager) TweetCreated(recipients []primitive.ObjectID, tweet models.TweetView) {
	msg, err := json.Marshal(Event{Type: "tweet_created", Payload: tweet})
	if err != nil {
		m.log.Error(context.Background(), "marshal live event", "error", err)
		return
	}

	ids := make([]string, len(recipients))
	for i, id := range recipients {
		ids[i] = id.Hex()
	}
	select {
	case m.deliver <- delivery{recipients: ids, msg: msg}:
	default:
		m.log.Warn(context.Background(), "live hub saturated, event dropped", "tweetId", tweet.ID.Hex())
	}
}

// ConnectedUsers returns how many distinct users have an open connection.
func (m *Manager) ConnectedUsers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Handler authenticates the ?token= access token and upgrades the connection.
func Handler(manager *Manager, tokens *auth.Tokens) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "Token required", http.StatusUnauthorized)
			return
		}
		claims, err := tokens.Verify(token)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			manager.log.Warn(r.Context(), "websocket upgrade failed", "error", err)
			return
		}

		client := &Client{
			conn:    conn,
			userID:  claims.UserID,
			send:    make(chan []byte, sendBuffer),
			manager: manager,
		}
		hello, _ := json.Marshal(Event{Type: "connected", Payload: map[string]interface{}{
			"userId": claims.UserID,
			"time":   time.Now().Unix(),
		}})
		client.send <- hello

		select {
		case manager.register <- client:
		case <-manager.done:
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.manager.unregister <- c:
		case <-c.manager.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// The stream is one-way; client frames are read only to notice closes.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.manager.log.Warn(context.Background(), "websocket read error", "userId", c.userID, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
