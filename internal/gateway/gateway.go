// Package gateway streams table events to websocket spectators.
package gateway

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"holdem-tourney/internal/codec"
	"holdem-tourney/table"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256
)

// Format selects how events are framed for a connection.
type Format string

const (
	FormatProto Format = "proto" // binary frames, protobuf Struct envelope
	FormatJSON  Format = "json"  // text frames, protojson envelope
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // spectators are read-only
	},
}

// Connection is one spectator. Spectators never send game input; anything
// they write is discarded.
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Gateway *Gateway
	Format  Format
	TableID string // "" follows every table
}

// Gateway fans table events out to connected spectators. It implements
// table.Observer.
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	nextConnID  uint64
	log         zerolog.Logger
}

func New(log zerolog.Logger) *Gateway {
	return &Gateway{
		connections: make(map[string]*Connection),
		log:         log.With().Str("component", "gateway").Logger(),
	}
}

// Routes mounts /ws and /health, plus whatever register adds.
func (g *Gateway) Routes(register ...func(chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/ws", g.HandleWebSocket)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	for _, fn := range register {
		fn(r)
	}
	return r
}

// HandleWebSocket upgrades a spectator. Query parameters: format=proto|json,
// table=<id> to follow a single table.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	format := FormatProto
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "", string(FormatProto):
	case string(FormatJSON):
		format = FormatJSON
	default:
		http.Error(w, "unknown format", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn().Err(err).Msg("upgrade failed")
		return
	}

	g.mu.Lock()
	g.nextConnID++
	c := &Connection{
		ID:      fmt.Sprintf("conn_%d", g.nextConnID),
		Conn:    conn,
		Send:    make(chan []byte, sendBuffer),
		Gateway: g,
		Format:  format,
		TableID: strings.TrimSpace(r.URL.Query().Get("table")),
	}
	g.connections[c.ID] = c
	total := len(g.connections)
	g.mu.Unlock()

	g.log.Info().Str("conn", c.ID).Str("format", string(format)).Str("table", c.TableID).Int("total", total).Msg("spectator connected")

	go c.readPump()
	go c.writePump()
}

// OnEvent encodes e once per format and queues it for every matching
// spectator. Slow spectators drop events rather than block the table.
func (g *Gateway) OnEvent(e table.Event) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if len(g.connections) == 0 {
		return
	}

	encoded := make(map[Format][]byte, 2)
	for _, c := range g.connections {
		if c.TableID != "" && c.TableID != e.TableID {
			continue
		}
		data, ok := encoded[c.Format]
		if !ok {
			var err error
			data, err = encode(c.Format, e)
			if err != nil {
				g.log.Error().Err(err).Str("hand", e.HandID).Msg("encode event failed")
				return
			}
			encoded[c.Format] = data
		}
		select {
		case c.Send <- data:
		default:
			g.log.Warn().Str("conn", c.ID).Uint64("seq", e.Seq).Msg("send buffer full, dropping event")
		}
	}
}

// Count is the number of connected spectators.
func (g *Gateway) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.connections)
}

// Close disconnects every spectator.
func (g *Gateway) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, c := range g.connections {
		close(c.Send)
		delete(g.connections, id)
	}
}

func encode(f Format, e table.Event) ([]byte, error) {
	if f == FormatJSON {
		return codec.EncodeEventJSON(e)
	}
	return codec.EncodeEvent(e)
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Gateway.log.Debug().Err(err).Str("conn", c.ID).Msg("read error")
			}
			return
		}
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	msgType := websocket.BinaryMessage
	if c.Format == FormatJSON {
		msgType = websocket.TextMessage
	}
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(msgType, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.connections[c.ID]; !ok {
		return
	}
	delete(g.connections, c.ID)
	close(c.Send)
	g.log.Info().Str("conn", c.ID).Int("total", len(g.connections)).Msg("spectator disconnected")
}
