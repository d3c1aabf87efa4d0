// services/protocol.go
package services

import "encoding/json"

// Client → server event types.
const (
	EvtJoinQueue  = "joinQueue"
	EvtLeaveQueue = "leaveQueue"
	EvtReady      = "ready"
	EvtPaddleMove = "paddleMove"
)

// Server → client event types.
const (
	EvtQueueJoined          = "queueJoined"
	EvtQueueLeft            = "queueLeft"
	EvtMatchFound           = "matchFound"
	EvtStartPreparation     = "startPreparation"
	EvtCountdown            = "countdown"
	EvtGameStart            = "gameStart"
	EvtGameState            = "gameState"
	EvtOpponentPaddleMove   = "opponentPaddleMove"
	EvtScoreUpdate          = "scoreUpdate"
	EvtGameEnd              = "gameEnd"
	EvtOpponentDisconnected = "opponentDisconnected"
	EvtError                = "error"
)

// ClientEvent is the envelope for inbound websocket messages. The payload is
// left raw so the dispatch table can decode it per event type.
type ClientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ServerEvent is the envelope for outbound websocket messages.
type ServerEvent struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type PaddleMoveData struct {
	X float64 `json:"x"`
}

type MatchFoundData struct {
	RoomID       string `json:"roomId"`
	OpponentName string `json:"opponentName"`
}

type StartPreparationData struct {
	Player1Name string `json:"player1Name"`
	Player2Name string `json:"player2Name"`
	IsPlayer1   bool   `json:"isPlayer1"`
}

type CountdownData struct {
	Count int `json:"count"`
}

type GameStartData struct {
	IsPlayer1 bool `json:"isPlayer1"`
}

type BallPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type PaddleState struct {
	X     float64 `json:"x"`
	Score int     `json:"score"`
}

// GameStateData is the per-tick authoritative snapshot. Frames are lossy
// position updates; a dropped frame is superseded by the next tick.
type GameStateData struct {
	Ball      BallPosition `json:"ball"`
	Player1   PaddleState  `json:"player1"`
	Player2   PaddleState  `json:"player2"`
	Timestamp int64        `json:"timestamp"`
}

type OpponentPaddleMoveData struct {
	X float64 `json:"x"`
}

type ScoreUpdateData struct {
	Player1Score int `json:"player1Score"`
	Player2Score int `json:"player2Score"`
}

type FinalScore struct {
	Player1 int `json:"player1"`
	Player2 int `json:"player2"`
}

type GameEndData struct {
	WinnerID   uint       `json:"winnerId"`
	FinalScore FinalScore `json:"finalScore"`
}

type ErrorData struct {
	Message string `json:"message"`
}

func errorEvent(msg string) ServerEvent {
	return ServerEvent{Type: EvtError, Data: ErrorData{Message: msg}}
}
