package game

import (
	"sync"

	"golang.org/x/time/rate"
)

// session pairs a player id with its live connection. Sessions are runtime
// state only: they are never persisted, and after a restart the snapshot is
// restored with an empty session map until players reconnect.
type session struct {
	playerID string
	conn     Conn
	limiter  *rate.Limiter
	outbox   chan []byte

	closeOnce sync.Once
	closed    chan struct{}
}

const sessionOutboxSize = 256

func newSession(playerID string, conn Conn) *session {
	return &session{
		playerID: playerID,
		conn:     conn,
		limiter:  rate.NewLimiter(rate.Limit(10), 20),
		outbox:   make(chan []byte, sessionOutboxSize),
		closed:   make(chan struct{}),
	}
}

// send queues an outbound frame without blocking the caller. Returns false
// when the session is closed or its outbox is full.
func (s *session) send(data []byte) bool {
	select {
	case <-s.closed:
		return false
	default:
	}
	select {
	case s.outbox <- data:
		return true
	default:
		return false
	}
}

// writePump drains the outbox onto the connection. One goroutine per
// session; it is the only writer to the socket.
func (s *session) writePump() {
	for {
		select {
		case data := <-s.outbox:
			if err := s.conn.Write(data); err != nil {
				return
			}
		case <-s.closed:
			return
		}
	}
}

func (s *session) close(reason string) {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.conn.Close(reason)
	})
}
