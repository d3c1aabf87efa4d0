// handlers/realtime.go
package handlers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"game-match-service/middleware"
	"game-match-service/services"
)

const pongWait = 60 * time.Second

// SetupRealtimeRoutes mounts the websocket endpoint that carries the whole
// match protocol: queue membership, ready signals, paddle input in; match
// lifecycle and state frames out.
func SetupRealtimeRoutes(app *fiber.App, svc *services.RealtimeService) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/match", middleware.WSIdentity(), websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals(middleware.UserIDLocal).(uint)
		userName, _ := conn.Locals(middleware.UserNameLocal).(string)

		// Unauthenticated connects get an error event, then the socket is
		// dropped without ever touching the queue or a room.
		if userID == 0 || userName == "" {
			_ = conn.WriteJSON(services.ServerEvent{
				Type: services.EvtError,
				Data: services.ErrorData{Message: "authentication required"},
			})
			return
		}

		client := services.NewClient(conn, userID, userName)
		log.WithFields(log.Fields{"user_id": userID, "user_name": userName, "conn_id": client.ID()}).
			Info("realtime connection established")

		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		readLoop(conn, client, svc)

		client.Close()
		svc.HandleDisconnect(client)
		log.WithFields(log.Fields{"user_id": userID, "conn_id": client.ID()}).
			Info("realtime connection closed")
	}))
}

// readLoop dispatches inbound events until the connection dies.
func readLoop(conn *websocket.Conn, client *services.Client, svc *services.RealtimeService) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		dispatchEvent(msg, client, svc)
	}
}

// dispatchEvent routes one raw inbound message. Malformed or unknown events
// are answered with an error event; the connection stays open.
func dispatchEvent(msg []byte, client services.Sender, svc *services.RealtimeService) {
	var evt services.ClientEvent
	if err := json.Unmarshal(msg, &evt); err != nil {
		client.Send(services.ServerEvent{Type: services.EvtError, Data: services.ErrorData{Message: "malformed event"}})
		return
	}

	switch evt.Type {
	case services.EvtJoinQueue:
		svc.HandleJoinQueue(client)
	case services.EvtLeaveQueue:
		svc.HandleLeaveQueue(client)
	case services.EvtReady:
		svc.HandleReady(client)
	case services.EvtPaddleMove:
		var move services.PaddleMoveData
		if err := json.Unmarshal(evt.Data, &move); err != nil {
			client.Send(services.ServerEvent{Type: services.EvtError, Data: services.ErrorData{Message: "malformed paddleMove payload"}})
			return
		}
		svc.HandlePaddleMove(client, move.X)
	default:
		client.Send(services.ServerEvent{Type: services.EvtError, Data: services.ErrorData{Message: "unknown event type: " + evt.Type}})
	}
}
