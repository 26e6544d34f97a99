package game

import (
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the duplex message channel of one connected player. The engine
// only ever reads inbound frames and writes outbound ones; closing the
// connection is the sole cancellation signal.
type Conn interface {
	Read() ([]byte, error)
	Write(data []byte) error
	Close(reason string)
}

type websocketConn struct {
	socket *websocket.Conn
}

// NewWebsocketConn wraps a gorilla connection as a Conn.
func NewWebsocketConn(conn *websocket.Conn) Conn {
	conn.SetPongHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(time.Minute))
		return nil
	})
	return &websocketConn{socket: conn}
}

func (wc *websocketConn) Read() ([]byte, error) {
	_, p, err := wc.socket.ReadMessage()
	return p, err
}

func (wc *websocketConn) Write(data []byte) error {
	return wc.socket.WriteMessage(websocket.TextMessage, data)
}

func (wc *websocketConn) Close(reason string) {
	wc.socket.SetWriteDeadline(time.Now().Add(time.Second * 20))
	wc.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))
	wc.socket.Close()
}
