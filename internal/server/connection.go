package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/redtens/internal/protocol"
	"github.com/lox/redtens/internal/room"
)

// Connection is one websocket client. Its player ID is minted on connect
// and lives as long as the socket.
type Connection struct {
	conn      *websocket.Conn
	send      chan *protocol.Message
	playerID  string
	server    *Server
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection wraps an upgraded websocket.
func NewConnection(conn *websocket.Conn, playerID string, server *Server, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:     conn,
		send:     make(chan *protocol.Message, 256),
		playerID: playerID,
		server:   server,
		logger:   logger.WithPrefix("conn").With("player", playerID),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// PlayerID returns the identity assigned to this client.
func (c *Connection) PlayerID() string {
	return c.playerID
}

// Start greets the client and begins pumping messages.
func (c *Connection) Start() {
	c.sendPayload(protocol.TypeWelcome, protocol.Welcome{
		PlayerID:     c.playerID,
		TurnDuration: protocol.TurnDurationMs,
	})
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues msg for the client without blocking.
func (c *Connection) SendMessage(msg *protocol.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			// send was closed underneath us during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
			err = ErrConnectionClosed
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close() // Ignore close errors
		return ErrConnectionClosed
	}
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Voice chunks dominate inbound size.
	maxMessageSize = 512 * 1024
)

var ErrConnectionClosed = websocket.ErrCloseSent

func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendNotice(fmt.Sprintf("%v: malformed envelope", protocol.ErrInvalidPayload))
			continue
		}
		c.handleMessage(&msg)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Connection) handleMessage(msg *protocol.Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	req, err := protocol.Decode(msg)
	if err != nil {
		c.sendNotice(err.Error())
		return
	}

	err = c.dispatch(req)
	switch {
	case err == nil:
	case room.IsStructural(err) && !announcesStructural(req.Kind()):
		c.logger.Debug("Ignoring stale intent", "type", req.Kind(), "code", req.Room(), "error", err)
	default:
		c.logger.Debug("Rejected intent", "type", req.Kind(), "code", req.Room(), "error", err)
		c.sendNotice(err.Error())
	}
}

// Only a client trying to get into a room needs to hear that it is gone.
func announcesStructural(kind protocol.MessageType) bool {
	return kind == protocol.TypeJoinRoom || kind == protocol.TypeCreateRoom
}

func (c *Connection) dispatch(req protocol.Request) error {
	rooms := c.server.rooms

	switch req := req.(type) {
	case *protocol.CreateRoom:
		_, err := rooms.Create(req.Code, c.playerID, req.Name)
		return err
	case *protocol.JoinRoom:
		_, err := rooms.Join(req.Code, c.playerID, req.Name)
		return err
	case *protocol.LeaveRoom:
		return rooms.Leave(req.Code, c.playerID)
	}

	r, err := rooms.Get(req.Room())
	if err != nil {
		return err
	}

	switch req := req.(type) {
	case *protocol.TakeSeat:
		return r.TakeSeat(c.playerID, req.Seat)
	case *protocol.SetReady:
		return r.SetReady(c.playerID, req.Ready)
	case *protocol.StartGame:
		return r.Start(c.playerID)
	case *protocol.RestartGame:
		return r.Restart(c.playerID)
	case *protocol.EndGame:
		return r.End(c.playerID)
	case *protocol.ResetScores:
		return r.ResetScores(c.playerID)
	case *protocol.PlayAction:
		return r.Play(c.playerID, req.Action, req.Cards)
	case *protocol.WindChoice:
		return r.Wind(c.playerID, req.Choice, req.Cards)
	case *protocol.ChatMessage:
		return r.Chat(c.playerID, req.Text)
	case *protocol.VoiceStatus:
		return r.VoiceStatus(c.playerID, req.Speaking)
	case *protocol.VoiceChunk:
		return r.VoiceChunk(c.playerID, req.Chunk, req.MimeType)
	}
	return protocol.ErrUnknownType
}

func (c *Connection) sendPayload(typ protocol.MessageType, payload any) {
	msg, err := protocol.NewMessage(typ, payload)
	if err != nil {
		c.logger.Error("Failed to create message", "type", typ, "error", err)
		return
	}
	_ = c.SendMessage(msg) // Ignore send errors
}

func (c *Connection) sendNotice(message string) {
	c.sendPayload(protocol.TypeError, protocol.Notice{Message: message})
}
