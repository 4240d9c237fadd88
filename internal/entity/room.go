package entity

const (
	StatusWaiting  = "waiting"
	StatusOngoing  = "ongoing"
	StatusFinished = "finished"

	SymbolX = "X"
	SymbolO = "O"

	EmptyCell = ""
)

const MaxPlayers = 2

// Room is an isolated game session identified by a short shareable code.
// Players are kept in insertion order; that order is the turn order, and
// CurrentPlayer indexes into it. Scores survive restarts within the room and
// are only zeroed on an explicit reset.
type Room struct {
	Code          string         `json:"code"`
	Board         [9]string      `json:"board"`
	Players       []*Player      `json:"players,omitempty"`
	CurrentPlayer int            `json:"current_player"`
	Status        string         `json:"status"`
	Winner        string         `json:"winner,omitempty"`
	Scores        map[string]int `json:"scores"`
}

func NewRoom(code string) *Room {
	return &Room{
		Code:   code,
		Status: StatusWaiting,
		Scores: map[string]int{SymbolX: 0, SymbolO: 0},
	}
}

func (that *Room) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Room) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Room) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Room) IsFull() bool {
	return len(that.Players) >= MaxPlayers
}

// NextSymbol returns the first unused symbol in fixed order, X then O.
func (that *Room) NextSymbol() string {
	for _, player := range that.Players {
		if player.Symbol == SymbolX {
			return SymbolO
		}
	}
	return SymbolX
}

// PlayerIndex returns the seat index of the given connection, or -1 if the
// connection holds no seat in this room.
func (that *Room) PlayerIndex(id string) int {
	for i, player := range that.Players {
		if player.ID == id {
			return i
		}
	}
	return -1
}

// CurrentSymbol derives the symbol whose turn it is from CurrentPlayer, which
// is the single source of truth for turn order.
func (that *Room) CurrentSymbol() string {
	if that.CurrentPlayer < 0 || that.CurrentPlayer >= len(that.Players) {
		return EmptyCell
	}
	return that.Players[that.CurrentPlayer].Symbol
}

// RemovePlayer drops the seat held by the given connection and reports whether
// it was present. Turn order of the remaining player is preserved.
func (that *Room) RemovePlayer(id string) bool {
	for i, player := range that.Players {
		if player.ID == id {
			that.Players = append(that.Players[:i], that.Players[i+1:]...)
			return true
		}
	}
	return false
}

// ResetBoard clears all nine cells and hands the turn back to the first seat.
func (that *Room) ResetBoard() {
	that.Board = [9]string{}
	that.CurrentPlayer = 0
	that.Winner = EmptyCell
}
