// Package telemetry streams poses to an external scene over WebSocket and
// accepts stick input and collision events back.
package telemetry

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/san-kum/quadsim/internal/control"
	"github.com/san-kum/quadsim/internal/dynamo"
	"github.com/san-kum/quadsim/internal/logging"
)

const (
	readLimit    = 1 << 16
	pongWait     = 60 * time.Second
	pingPeriod   = 25 * time.Second
	writeWait    = 10 * time.Second
	sendBuffered = 64
)

// Frame is the pose message sent to clients after every tick.
type Frame struct {
	Tick     int            `json:"tick"`
	Time     float64        `json:"t"`
	World    [3]float64     `json:"world"`
	Rotator  dynamo.Rotator `json:"rotator"`
	Throttle float64        `json:"throttle"`
	Grounded bool           `json:"grounded"`
}

// Command is a client message. Axes left out keep their last value.
type Command struct {
	Thrust    *float64 `json:"thrust,omitempty"`
	MoveUp    *float64 `json:"move_up,omitempty"`
	MoveRight *float64 `json:"move_right,omitempty"`
	Collision bool     `json:"collision,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans frames out to every connected client. It implements
// dynamo.Observer; OnStep never blocks the simulation, clients that fall
// behind lose frames.
type Hub struct {
	manual        *control.Manual
	unitsPerMeter float64
	log           *zap.Logger
	upgrader      websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	tick    int
	dropped int
}

func NewHub(manual *control.Manual, unitsPerMeter float64, log *zap.Logger) *Hub {
	return &Hub{
		manual:        manual,
		unitsPerMeter: unitsPerMeter,
		log:           logging.OrNop(log).Named("telemetry"),
		upgrader: websocket.Upgrader{
			// Scenes are served from anywhere during development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

func (h *Hub) OnStep(s dynamo.Sample) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.tick++
	if len(h.clients) == 0 {
		return
	}

	pose := s.Pose()
	msg, err := json.Marshal(Frame{
		Tick:     h.tick,
		Time:     s.Time,
		World:    pose.World(h.unitsPerMeter),
		Rotator:  pose.Rotator(),
		Throttle: s.Throttle,
		Grounded: s.Grounded,
	})
	if err != nil {
		h.log.Error("encode frame", zap.Error(err))
		return
	}

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.dropped++
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped returns how many frames were skipped for slow clients.
func (h *Hub) Dropped() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Apply feeds a client command into the manual source.
func (h *Hub) Apply(cmd Command) {
	if cmd.Collision {
		h.manual.Collide()
	}
	if cmd.Thrust == nil && cmd.MoveUp == nil && cmd.MoveRight == nil {
		return
	}

	in := h.manual.Sample(dynamo.Sample{})
	if cmd.Thrust != nil {
		in.Thrust = *cmd.Thrust
	}
	if cmd.MoveUp != nil {
		in.MoveUp = *cmd.MoveUp
	}
	if cmd.MoveRight != nil {
		in.MoveRight = *cmd.MoveRight
	}
	h.manual.Set(in)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffered)}
	h.register(c)
	h.log.Info("client connected", zap.String("remote", r.RemoteAddr))

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
		h.log.Info("client disconnected", zap.String("remote", c.conn.RemoteAddr().String()))
	}()

	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("read", zap.Error(err))
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(msg, &cmd); err != nil {
			h.log.Debug("bad command", zap.ByteString("msg", msg), zap.Error(err))
			continue
		}
		h.Apply(cmd)
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
