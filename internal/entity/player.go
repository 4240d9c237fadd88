package entity

// Player is one seat in a room. ID is the connection identity assigned by the
// transport; RoomCode is the reverse index used for disconnect cleanup.
type Player struct {
	ID       string `json:"id"`
	Symbol   string `json:"symbol,omitempty"`
	RoomCode string `json:"room_code,omitempty"`
}
