package fanout

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/utakatalp/virtual-football/internal/events"
	"github.com/utakatalp/virtual-football/internal/telemetry"
)

const (
	clientSendBuf = 256
	writeDeadline = 5 * time.Second
	pongWait      = 30 * time.Second
	pingInterval  = 20 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

type feedClient struct {
	session string
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
}

// Server fans session events out to connected websocket clients. Each
// client follows exactly one session.
type Server struct {
	mu      sync.Mutex
	clients map[*feedClient]struct{}

	// tick paces commentary lines after a match_played event; 0 sends none.
	tick time.Duration
	// Exists reports whether a session may be followed. nil accepts all.
	Exists func(sessionID string) bool

	closing chan struct{}
	once    sync.Once
}

func NewServer(bus *events.Bus, tick time.Duration) *Server {
	s := &Server{
		clients: make(map[*feedClient]struct{}),
		tick:    tick,
		closing: make(chan struct{}),
	}
	bus.SubscribeAll(s.forward,
		events.EventRoundGenerated,
		events.EventMatchPlayed,
		events.EventBetPlaced,
		events.EventSlipCleared,
		events.EventSessionClosed,
	)
	return s
}

// forward is called on the publisher's goroutine. It serializes the event
// and enqueues it to the session's clients (non-blocking).
func (s *Server) forward(evt events.Event) error {
	data, err := MarshalEvent(evt)
	if err != nil {
		telemetry.Warnf("fanout: marshal error: %v", err)
		return nil
	}
	s.broadcast(evt.SessionID, data)

	if mp, ok := evt.Payload.(events.MatchPlayedEvent); ok && s.tick > 0 && len(mp.Commentary) > 0 && s.following(evt.SessionID) {
		go s.streamCommentary(evt.SessionID, mp)
	}
	return nil
}

func (s *Server) streamCommentary(sessionID string, mp events.MatchPlayedEvent) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for i, line := range mp.Commentary {
		select {
		case <-s.closing:
			return
		case <-ticker.C:
		}
		data, err := marshalCommentary(sessionID, CommentaryLine{
			Round: mp.Round,
			Home:  mp.Home,
			Away:  mp.Away,
			Index: i,
			Line:  line,
		})
		if err != nil {
			telemetry.Warnf("fanout: %v", err)
			return
		}
		s.broadcast(sessionID, data)
	}
}

func (s *Server) broadcast(sessionID string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		if c.session != sessionID {
			continue
		}
		select {
		case c.send <- data:
		default:
			telemetry.Metrics.FeedDrops.Inc()
			telemetry.Warnf("fanout: dropping message for slow client session=%s", c.session)
		}
	}
}

func (s *Server) following(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		if c.session == sessionID {
			return true
		}
	}
	return false
}

// HandleWS is the HTTP handler for WebSocket upgrade requests.
// Clients connect with ?session=<id>.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	session := r.URL.Query().Get("session")
	if session == "" {
		http.Error(w, "missing ?session= query param", http.StatusBadRequest)
		return
	}
	if s.Exists != nil && !s.Exists(session) {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		telemetry.Warnf("fanout: upgrade failed: %v", err)
		return
	}

	c := &feedClient{
		session: session,
		conn:    conn,
		send:    make(chan []byte, clientSendBuf),
		done:    make(chan struct{}),
	}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	telemetry.Metrics.FeedClients.Inc()
	telemetry.Infof("fanout: client connected session=%s", session)

	go s.writePump(c)
	go s.readPump(c)
}

// writePump drains the client's send channel and writes to the WS connection.
// It owns the client lifecycle: on exit it removes the client from the map
// (so broadcast never sends to a stale channel) and closes the connection.
func (s *Server) writePump(c *feedClient) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.removeClient(c)
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				telemetry.Warnf("fanout: write error session=%s: %v", c.session, err)
				return
			}
		case <-c.done:
			return
		case <-s.closing:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump keeps the connection alive by reading pongs / close frames.
// No upstream messages are expected from feed clients.
// On exit it signals writePump via c.done (never closes c.send).
func (s *Server) readPump(c *feedClient) {
	defer close(c.done)

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
	}
}

func (s *Server) removeClient(c *feedClient) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	telemetry.Metrics.FeedClients.Dec()
	telemetry.Infof("fanout: client disconnected session=%s", c.session)
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close stops commentary streams and disconnects every client.
func (s *Server) Close() {
	s.once.Do(func() { close(s.closing) })
}
