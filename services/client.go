// services/client.go
package services

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"game-match-service/metrics"
)

const (
	sendBufferSize    = 64
	controlBufferSize = 16
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = 54 * time.Second
)

// Sender is the outbound half of a connection as the match subsystem sees it.
// The queue and rooms only ever talk to this interface, so tests can drive
// them with in-memory fakes instead of live websockets.
type Sender interface {
	ID() string
	UserID() uint
	UserName() string
	// Send queues an event for delivery and reports false if it could not be
	// delivered (connection closed, or a latest-wins state frame dropped
	// under backpressure). Lifecycle events are never dropped, so callers
	// never retry.
	Send(evt ServerEvent) bool
	Closed() bool
}

// Client wraps one authenticated websocket connection with two buffered
// outbound channels and a single writer goroutine. State frames and paddle
// relays ride the drop-on-full send channel; lifecycle events (matchFound,
// scoreUpdate, gameEnd, ...) ride the control channel, which is never
// dropped. Closing the client closes the doorbell exactly once, which tears
// down the writer and lets every registry holding the client observe the
// disconnect.
type Client struct {
	id       string
	userID   uint
	userName string

	conn      *websocket.Conn
	send      chan []byte
	control   chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, userID uint, userName string) *Client {
	c := &Client{
		id:       uuid.NewString(),
		userID:   userID,
		userName: userName,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		control:  make(chan []byte, controlBufferSize),
		closed:   make(chan struct{}),
	}
	go c.writePump()
	return c
}

func (c *Client) ID() string       { return c.id }
func (c *Client) UserID() uint     { return c.userID }
func (c *Client) UserName() string { return c.userName }

func (c *Client) Send(evt ServerEvent) bool {
	payload, err := json.Marshal(evt)
	if err != nil {
		log.WithFields(log.Fields{"conn_id": c.id, "event": evt.Type}).
			Warnf("failed to encode event: %v", err)
		return false
	}

	select {
	case <-c.closed:
		return false
	default:
	}

	if supersedable(evt.Type) {
		select {
		case c.send <- payload:
			return true
		default:
			// Slow consumer: drop rather than stall the simulation loop.
			// The next tick carries a fresher snapshot anyway.
			metrics.FramesDropped.Inc()
			return false
		}
	}

	// Everything else is delivered or the connection dies trying: a stuck
	// consumer trips the writer's deadline, which closes the client and
	// unblocks this send.
	select {
	case c.control <- payload:
		return true
	case <-c.closed:
		return false
	}
}

// supersedable reports whether a later event of the same type makes this one
// obsolete, so dropping it under backpressure loses nothing.
func supersedable(evtType string) bool {
	return evtType == EvtGameState || evtType == EvtOpponentPaddleMove
}

func (c *Client) Closed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Close shuts the connection down. Safe to call from any goroutine and any
// number of times.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.control:
			if !c.writeMessage(msg) {
				return
			}
		case msg := <-c.send:
			// Flush pending control events first so a scoreUpdate is never
			// reordered behind the frame that reflects it.
			if !c.flushControl() {
				return
			}
			if !c.writeMessage(msg) {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *Client) writeMessage(msg []byte) bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		c.Close()
		return false
	}
	return true
}

func (c *Client) flushControl() bool {
	for {
		select {
		case msg := <-c.control:
			if !c.writeMessage(msg) {
				return false
			}
		default:
			return true
		}
	}
}
