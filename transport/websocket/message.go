package websocket

import "encoding/json"

// Message is the envelope for every frame in both directions.
type Message struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client events.
const (
	eventCreateRoom  = "createRoom"
	eventJoinRoom    = "joinRoom"
	eventMakeMove    = "makeMove"
	eventRestartGame = "restartGame"
	eventResetScores = "resetScores"
	eventLeaveRoom   = "leaveRoom"
)

// Server events.
const (
	eventRoomCreated        = "roomCreated"
	eventGameStart          = "gameStart"
	eventMoveMade           = "moveMade"
	eventGameOver           = "gameOver"
	eventGameRestarted      = "gameRestarted"
	eventScoresReset        = "scoresReset"
	eventPlayerDisconnected = "playerDisconnected"
	eventError              = "error"
)

type roomRequest struct {
	RoomCode string `json:"roomCode"`
}

type moveRequest struct {
	RoomCode string `json:"roomCode"`
	Index    int    `json:"index"`
}

type roomCreatedPayload struct {
	RoomCode string `json:"roomCode"`
	Symbol   string `json:"symbol"`
}

type playerSeat struct {
	Symbol string `json:"symbol"`
}

type gameStartPayload struct {
	Players             []playerSeat `json:"players"`
	CurrentPlayer       int          `json:"currentPlayer"`
	CurrentPlayerSymbol string       `json:"currentPlayerSymbol"`
}

type moveMadePayload struct {
	Index               int       `json:"index"`
	Symbol              string    `json:"symbol"`
	Board               [9]string `json:"board"`
	CurrentPlayer       int       `json:"currentPlayer"`
	CurrentPlayerSymbol string    `json:"currentPlayerSymbol"`
}

type gameOverPayload struct {
	Winner       *string        `json:"winner"` // nil on a draw
	Board        [9]string      `json:"board"`
	Scores       map[string]int `json:"scores"`
	WinningCells []int          `json:"winningCells,omitempty"`
}

type gameRestartedPayload struct {
	Board         [9]string `json:"board"`
	CurrentPlayer int       `json:"currentPlayer"`
}

type scoresResetPayload struct {
	Scores map[string]int `json:"scores"`
}

type errorPayload struct {
	Message string `json:"message"`
}
